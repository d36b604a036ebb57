// Package cmd holds startup helpers shared by the site command entrypoints.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/config"
	"github.com/ffonons/site/internal/platform/otel"
)

const defaultOTelShutdownTimeout = 5 * time.Second

// Command names used for logger and trace resource tagging.
const (
	ServiceBuild = "build"
	ServiceWeb   = "web"
)

// RunOptions controls shared entrypoint behavior.
type RunOptions struct {
	// ShutdownTimeout bounds the final span flush.
	ShutdownTimeout time.Duration
	// Logger receives tracing lifecycle messages. Nil discards them.
	Logger *zap.Logger
	// Telemetry overrides the FFONONS_SITE_OTEL_* environment.
	Telemetry *otel.Config
}

// ParseConfig loads environment defaults into cfg. Flags parsed afterwards
// override them.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// Run sets up tracing for service, executes run and flushes spans on return.
func Run(ctx context.Context, service string, options RunOptions, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var telemetry otel.Config
	if options.Telemetry != nil {
		telemetry = *options.Telemetry
	} else {
		loaded, err := otel.LoadConfig()
		if err != nil {
			return err
		}
		telemetry = loaded
	}
	shutdown, err := otel.Setup(ctx, service, telemetry)
	if err != nil {
		return err
	}
	if telemetry.Active() {
		logger.Info("tracing enabled", zap.String("endpoint", telemetry.Endpoint), zap.Float64("sample_ratio", telemetry.SampleRatio))
	}
	defer func() {
		shutdownTimeout := options.ShutdownTimeout
		if shutdownTimeout <= 0 {
			shutdownTimeout = defaultOTelShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown", zap.String("service", service), zap.Error(err))
		}
	}()
	return run(ctx)
}
