// Package site hosts the browser-facing phonon figure site.
package site

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	"github.com/ffonons/site/internal/platform/timeouts"
	siteapp "github.com/ffonons/site/internal/services/site/app"
	module "github.com/ffonons/site/internal/services/site/module"
	"github.com/ffonons/site/internal/services/site/modules"
	"github.com/ffonons/site/internal/services/site/platform/httpx"
	"github.com/ffonons/site/internal/services/site/platform/observability"
	"github.com/ffonons/site/internal/services/site/routepath"
	sitestatic "github.com/ffonons/site/internal/services/site/static"
	"github.com/ffonons/site/internal/services/site/storage"
)

// Config defines startup inputs for the site.
type Config struct {
	HTTPAddr     string
	Catalog      *catalog.Source
	Summaries    storage.SummaryStore
	Labels       catalog.Labels
	MetricsTable string
	ClientScript bool
	LiveReload   bool
	Logger       *zap.Logger
}

// Server hosts the site HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	logger     *zap.Logger
}

// NewHandler builds the root handler from the default modules.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("catalog source is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	deps := module.Dependencies{
		Catalog:      cfg.Catalog,
		Summaries:    cfg.Summaries,
		Labels:       cfg.Labels,
		MetricsTable: cfg.MetricsTable,
		ClientScript: cfg.ClientScript,
		LiveReload:   cfg.LiveReload,
		Logger:       logger,
	}
	h, err := siteapp.Compose(siteapp.ComposeInput{
		Dependencies: deps,
		Modules:      modules.DefaultModules(),
	})
	if err != nil {
		return nil, err
	}
	rootMux := http.NewServeMux()
	rootMux.Handle(routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(sitestatic.FS))))
	rootMux.HandleFunc(http.MethodGet+" "+routepath.Health, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootMux.Handle("/", h)
	return httpx.Chain(rootMux,
		httpx.RecoverPanic(logger),
		httpx.RequestID(),
		observability.RequestLogger(logger),
	), nil
}

// NewServer validates config and constructs a site server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose site handler: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		httpAddr: httpAddr,
		logger:   logger,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
			ErrorLog:          zap.NewStdLog(logger),
		},
	}, nil
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("site server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("site listening", zap.String("addr", s.httpAddr))
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown site http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve site http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
