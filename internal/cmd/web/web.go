// Package web parses site preview flags and launches the HTTP server.
package web

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	entrypoint "github.com/ffonons/site/internal/platform/cmd"
	"github.com/ffonons/site/internal/platform/filewatch"
	"github.com/ffonons/site/internal/platform/logging"
	"github.com/ffonons/site/internal/platform/timeouts"
	"github.com/ffonons/site/internal/services/site"
	"github.com/ffonons/site/internal/services/site/storage"
	"github.com/ffonons/site/internal/services/site/storage/sqlite"
)

// Config holds the web command configuration.
type Config struct {
	HTTPAddr         string `env:"HTTP_ADDR" envDefault:"localhost:8080"`
	FiguresDir       string `env:"FIGURES_DIR" envDefault:"figures"`
	ManifestPath     string `env:"MANIFEST_PATH"`
	SummaryDBPath    string `env:"SUMMARY_DB_PATH"`
	MetricsTablePath string `env:"METRICS_TABLE_PATH"`
	IdentifierPrefix string `env:"IDENTIFIER_PREFIX" envDefault:"mp"`
	Watch            bool   `env:"WATCH"`
	ClientScript     bool   `env:"CLIENT_SCRIPT" envDefault:"true"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.FiguresDir, "figures", cfg.FiguresDir, "Directory of pre-built figure files")
	fs.StringVar(&cfg.ManifestPath, "manifest", cfg.ManifestPath, "Figure manifest written by the build command (default <figures>/manifest.json)")
	fs.StringVar(&cfg.SummaryDBPath, "summaries-db", cfg.SummaryDBPath, "SQLite database of material summaries")
	fs.StringVar(&cfg.MetricsTablePath, "metrics-table", cfg.MetricsTablePath, "Pre-rendered HTML metrics table")
	fs.StringVar(&cfg.IdentifierPrefix, "prefix", cfg.IdentifierPrefix, "Identifier prefix shared by figure names")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "Reload the catalog when figure files change")
	fs.BoolVar(&cfg.ClientScript, "client-script", cfg.ClientScript, "Serve pages with client-side script")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.FiguresDir) == "" {
		return Config{}, fmt.Errorf("figures directory is required")
	}
	if strings.TrimSpace(cfg.ManifestPath) == "" {
		cfg.ManifestPath = site.DefaultManifestPath(cfg.FiguresDir)
	}
	return cfg, nil
}

// Run starts the site server.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(entrypoint.ServiceWeb, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.Run(ctx, entrypoint.ServiceWeb, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return serve(ctx, cfg, logger)
	})
}

func serve(ctx context.Context, cfg Config, logger *zap.Logger) error {
	server, cleanup, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve site: %w", err)
	}
	return nil
}

// catalogBuilder reads the manifest only for a static preview. A watched
// directory changes under the manifest, so every build rescans it.
func catalogBuilder(cfg Config, logger *zap.Logger) func() (*catalog.Catalog, error) {
	manifestPath := cfg.ManifestPath
	if cfg.Watch {
		if manifestPath != "" {
			logger.Info("watch mode scans figures, ignoring manifest", zap.String("manifest", manifestPath))
		}
		manifestPath = ""
	}
	return site.CatalogBuilder(cfg.FiguresDir, cfg.IdentifierPrefix, manifestPath, logger)
}

// newServer wires the catalog, summaries and optional watcher into a server.
// cleanup releases everything newServer opened.
func newServer(ctx context.Context, cfg Config, logger *zap.Logger) (*site.Server, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	source, err := catalog.NewSource(catalogBuilder(cfg, logger))
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	labels, err := catalog.EmbeddedLabels()
	if err != nil {
		return nil, nil, err
	}
	metrics, err := site.ReadMetricsTable(cfg.MetricsTablePath)
	if err != nil {
		return nil, nil, err
	}

	var summaries storage.SummaryStore
	if path := strings.TrimSpace(cfg.SummaryDBPath); path != "" {
		store, err := sqlite.OpenReadOnly(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("open summaries: %w", err)
		}
		closers = append(closers, func() { _ = store.Close() })
		summaries = store
	}

	if cfg.Watch {
		watcher, err := filewatch.Watch(ctx, cfg.FiguresDir, filewatch.Options{
			Debounce: timeouts.WatchDebounce,
			OnChange: func() {
				if err := source.Reload(); err != nil {
					logger.Warn("catalog reload failed", zap.Error(err))
				}
			},
			OnError: func(err error) {
				logger.Warn("figure watcher", zap.Error(err))
			},
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("watch figures: %w", err)
		}
		closers = append(closers, func() { _ = watcher.Close() })
		logger.Info("watching figures", zap.String("dir", cfg.FiguresDir))
	}

	server, err := site.NewServer(ctx, site.Config{
		HTTPAddr:     cfg.HTTPAddr,
		Catalog:      source,
		Summaries:    summaries,
		Labels:       labels,
		MetricsTable: metrics,
		ClientScript: cfg.ClientScript,
		LiveReload:   cfg.Watch,
		Logger:       logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("init site server: %w", err)
	}
	closers = append(closers, server.Close)
	return server, cleanup, nil
}
