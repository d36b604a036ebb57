// Package build scans figures, imports material summaries and exports the
// static site.
package build

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	entrypoint "github.com/ffonons/site/internal/platform/cmd"
	"github.com/ffonons/site/internal/platform/logging"
	"github.com/ffonons/site/internal/services/site"
	"github.com/ffonons/site/internal/services/site/export"
	sitestatic "github.com/ffonons/site/internal/services/site/static"
	"github.com/ffonons/site/internal/services/site/storage"
	"github.com/ffonons/site/internal/services/site/storage/sqlite"
)

// Config holds the build command configuration.
type Config struct {
	FiguresDir       string `env:"FIGURES_DIR" envDefault:"figures"`
	ManifestPath     string `env:"MANIFEST_PATH"`
	SummaryCSVPath   string `env:"SUMMARY_CSV_PATH"`
	SummaryDBPath    string `env:"SUMMARY_DB_PATH"`
	OutDir           string `env:"OUT_DIR"`
	MetricsTablePath string `env:"METRICS_TABLE_PATH"`
	IdentifierPrefix string `env:"IDENTIFIER_PREFIX" envDefault:"mp"`
	ClientScript     bool   `env:"CLIENT_SCRIPT" envDefault:"true"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.FiguresDir, "figures", cfg.FiguresDir, "Directory of pre-built figure files")
	fs.StringVar(&cfg.ManifestPath, "manifest", cfg.ManifestPath, "Where to write the figure manifest (default <figures>/manifest.json)")
	fs.StringVar(&cfg.SummaryCSVPath, "summaries-csv", cfg.SummaryCSVPath, "Material summary CSV to import, plain or gzipped")
	fs.StringVar(&cfg.SummaryDBPath, "summaries-db", cfg.SummaryDBPath, "SQLite database receiving material summaries")
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Directory for the static site export; empty skips the export")
	fs.StringVar(&cfg.MetricsTablePath, "metrics-table", cfg.MetricsTablePath, "Pre-rendered HTML metrics table")
	fs.StringVar(&cfg.IdentifierPrefix, "prefix", cfg.IdentifierPrefix, "Identifier prefix shared by figure names")
	fs.BoolVar(&cfg.ClientScript, "client-script", cfg.ClientScript, "Export pages with client-side script")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.FiguresDir) == "" {
		return Config{}, errors.New("figures directory is required")
	}
	if strings.TrimSpace(cfg.ManifestPath) == "" {
		cfg.ManifestPath = site.DefaultManifestPath(cfg.FiguresDir)
	}
	if strings.TrimSpace(cfg.SummaryCSVPath) != "" && strings.TrimSpace(cfg.SummaryDBPath) == "" {
		return Config{}, errors.New("summaries-db is required when importing summaries")
	}
	return cfg, nil
}

// Run executes the build steps.
func Run(ctx context.Context, cfg Config) error {
	logger, err := logging.New(entrypoint.ServiceBuild, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.Run(ctx, entrypoint.ServiceBuild, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		return build(ctx, cfg, logger, time.Now)
	})
}

func build(ctx context.Context, cfg Config, logger *zap.Logger, now func() time.Time) error {
	c, err := writeManifest(cfg, logger, now())
	if err != nil {
		return err
	}

	var store *sqlite.Store
	if path := strings.TrimSpace(cfg.SummaryDBPath); path != "" {
		store, err = sqlite.Open(ctx, path)
		if err != nil {
			return fmt.Errorf("open summaries: %w", err)
		}
		defer func() { _ = store.Close() }()
	}
	if csvPath := strings.TrimSpace(cfg.SummaryCSVPath); csvPath != "" {
		if err := importSummaries(ctx, csvPath, store, c, logger); err != nil {
			return err
		}
	}

	if strings.TrimSpace(cfg.OutDir) == "" {
		return nil
	}
	var summaries storage.SummaryStore
	if store != nil {
		summaries = store
	}
	return exportSite(ctx, cfg, c, summaries, logger)
}

// writeManifest scans the figures and records them for the server.
func writeManifest(cfg Config, logger *zap.Logger, generatedAt time.Time) (*catalog.Catalog, error) {
	scanned, err := catalog.Scan(os.DirFS(cfg.FiguresDir), catalog.ScanOptions{Prefix: cfg.IdentifierPrefix})
	if err != nil {
		return nil, err
	}
	for _, skipped := range scanned.Skipped {
		logger.Info("skipped figure file", zap.String("path", skipped))
	}
	c, err := catalog.New(cfg.IdentifierPrefix, scanned.Artifacts)
	if err != nil {
		return nil, err
	}

	manifest := catalog.NewManifest(cfg.IdentifierPrefix, c.Artifacts(), generatedAt)
	if err := os.MkdirAll(filepath.Dir(cfg.ManifestPath), 0o755); err != nil {
		return nil, fmt.Errorf("create manifest directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(cfg.ManifestPath), ".manifest-*.json")
	if err != nil {
		return nil, fmt.Errorf("create manifest: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if err := catalog.WriteManifest(tmp, manifest); err != nil {
		_ = tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), cfg.ManifestPath); err != nil {
		return nil, fmt.Errorf("replace manifest: %w", err)
	}
	logger.Info("manifest written",
		zap.String("path", cfg.ManifestPath),
		zap.Int("artifacts", c.Len()),
		zap.Int("identifiers", len(c.Identifiers())),
	)
	return c, nil
}

func importSummaries(ctx context.Context, csvPath string, store *sqlite.Store, c *catalog.Catalog, logger *zap.Logger) error {
	file, err := os.Open(csvPath)
	if err != nil {
		return fmt.Errorf("open summaries csv: %w", err)
	}
	defer file.Close()
	summaries, err := storage.ReadSummariesCSV(file)
	if err != nil {
		return err
	}
	if err := store.UpsertSummaries(ctx, summaries); err != nil {
		return err
	}

	known := make(map[string]bool)
	for _, identifier := range c.Identifiers() {
		known[identifier] = true
	}
	orphans := make(map[string]bool)
	for _, summary := range summaries {
		if !known[summary.MaterialID] {
			orphans[summary.MaterialID] = true
		}
	}
	logger.Info("summaries imported",
		zap.String("path", csvPath),
		zap.Int("rows", len(summaries)),
		zap.Int("materials_without_figures", len(orphans)),
	)
	return nil
}

func exportSite(ctx context.Context, cfg Config, c *catalog.Catalog, summaries storage.SummaryStore, logger *zap.Logger) error {
	labels, err := catalog.EmbeddedLabels()
	if err != nil {
		return err
	}
	metrics, err := site.ReadMetricsTable(cfg.MetricsTablePath)
	if err != nil {
		return err
	}
	handler, err := site.NewHandler(site.Config{
		Catalog:      catalog.StaticSource(c),
		Summaries:    summaries,
		Labels:       labels,
		MetricsTable: metrics,
		ClientScript: cfg.ClientScript,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	report, err := export.Run(ctx, export.Options{
		Handler: handler,
		Catalog: c,
		Static:  sitestatic.FS,
		OutDir:  cfg.OutDir,
	})
	if err != nil {
		return fmt.Errorf("export site: %w", err)
	}
	logger.Info("site exported",
		zap.String("dir", cfg.OutDir),
		zap.Int("pages", report.Pages),
		zap.Int("assets", report.Assets),
	)
	return nil
}
