package web

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	apperrors "github.com/ffonons/site/internal/platform/errors"
	"github.com/ffonons/site/internal/services/site/storage/sqlite"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8080")
	}
	if cfg.FiguresDir != "figures" {
		t.Fatalf("FiguresDir = %q, want %q", cfg.FiguresDir, "figures")
	}
	if cfg.ManifestPath != filepath.Join("figures", "manifest.json") {
		t.Fatalf("ManifestPath = %q", cfg.ManifestPath)
	}
	if cfg.IdentifierPrefix != "mp" {
		t.Fatalf("IdentifierPrefix = %q, want mp", cfg.IdentifierPrefix)
	}
	if !cfg.ClientScript {
		t.Fatal("ClientScript = false, want true")
	}
	if cfg.Watch {
		t.Fatal("Watch = true, want false")
	}
}

func TestParseConfigFlagOverrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{
		"-http-addr", "127.0.0.1:9002",
		"-figures", "out/figs",
		"-manifest", "out/m.json",
		"-watch",
		"-client-script=false",
		"-prefix", "phonon-db",
	})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9002" || cfg.FiguresDir != "out/figs" || cfg.ManifestPath != "out/m.json" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.Watch || cfg.ClientScript || cfg.IdentifierPrefix != "phonon-db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseConfigReadsEnv(t *testing.T) {
	t.Setenv("FFONONS_SITE_HTTP_ADDR", "0.0.0.0:9000")
	t.Setenv("FFONONS_SITE_WATCH", "true")
	t.Setenv("FFONONS_SITE_SUMMARY_DB_PATH", "/data/summaries.db")

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "0.0.0.0:9000" || !cfg.Watch || cfg.SummaryDBPath != "/data/summaries.db" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseConfigRejectsEmptyFiguresDir(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("web", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-figures", " "}); err == nil {
		t.Fatal("expected empty figures dir to fail")
	}
}

func TestNewServerWiresDependencies(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	figures := filepath.Join(dir, "figures")
	if err := os.MkdirAll(figures, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(figures, "mp-1-bs-pbe.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write figure: %v", err)
	}
	dbPath := filepath.Join(dir, "summaries.db")
	store, err := sqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	_ = store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server, cleanup, err := newServer(ctx, Config{
		HTTPAddr:         "127.0.0.1:0",
		FiguresDir:       figures,
		ManifestPath:     filepath.Join(figures, "manifest.json"),
		SummaryDBPath:    dbPath,
		IdentifierPrefix: "mp",
		Watch:            true,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	if server == nil {
		t.Fatal("expected server")
	}
	cleanup()
}

func TestNewServerFailsForMissingFigures(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing")
	_, _, err := newServer(context.Background(), Config{
		HTTPAddr:     "127.0.0.1:0",
		FiguresDir:   missing,
		ManifestPath: filepath.Join(missing, "manifest.json"),
	}, zap.NewNop())
	if err == nil {
		t.Fatal("expected missing figures dir to fail")
	}
}

func TestNewServerFailsForMissingMetricsTable(t *testing.T) {
	t.Parallel()

	figures := t.TempDir()
	_, _, err := newServer(context.Background(), Config{
		HTTPAddr:         "127.0.0.1:0",
		FiguresDir:       figures,
		ManifestPath:     filepath.Join(figures, "manifest.json"),
		MetricsTablePath: filepath.Join(figures, "metrics.html"),
	}, zap.NewNop())
	if err == nil {
		t.Fatal("expected missing metrics table to fail")
	}
}

// writeFigureManifest records the figures currently in dir, as the build
// command does.
func writeFigureManifest(t *testing.T, dir string) string {
	t.Helper()
	scanned, err := catalog.Scan(os.DirFS(dir), catalog.ScanOptions{Prefix: "mp"})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	path := filepath.Join(dir, "manifest.json")
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create manifest: %v", err)
	}
	defer file.Close()
	if err := catalog.WriteManifest(file, catalog.NewManifest("mp", scanned.Artifacts, time.Unix(0, 0))); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestWatchedCatalogReloadSeesDirectoryChanges(t *testing.T) {
	t.Parallel()

	figures := t.TempDir()
	first := filepath.Join(figures, "mp-1-bs-pbe.svg")
	if err := os.WriteFile(first, []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write figure: %v", err)
	}
	manifest := writeFigureManifest(t, figures)

	source, err := catalog.NewSource(catalogBuilder(Config{
		FiguresDir:       figures,
		ManifestPath:     manifest,
		IdentifierPrefix: "mp",
		Watch:            true,
	}, zap.NewNop()))
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(figures, "mp-2-bs-pbe.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write figure: %v", err)
	}
	if err := os.Remove(first); err != nil {
		t.Fatalf("remove figure: %v", err)
	}
	if err := source.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	c := source.Catalog()
	if diff := cmp.Diff([]string{"mp-2"}, c.Identifiers()); diff != "" {
		t.Fatalf("identifiers after reload mismatch (-want +got):\n%s", diff)
	}
	if _, err := c.Resolve(context.Background(), "mp-2"); err != nil {
		t.Fatalf("Resolve(mp-2) error = %v", err)
	}
	if _, err := c.Resolve(context.Background(), "mp-1"); !apperrors.IsCode(err, apperrors.CodeNotFound) {
		t.Fatalf("Resolve(mp-1) error = %v, want not found", err)
	}
	if got := source.Generation(); got != 2 {
		t.Fatalf("Generation() = %d, want 2", got)
	}
}

func TestStaticCatalogPrefersManifest(t *testing.T) {
	t.Parallel()

	figures := t.TempDir()
	if err := os.WriteFile(filepath.Join(figures, "mp-1-bs-pbe.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write figure: %v", err)
	}
	manifest := writeFigureManifest(t, figures)
	if err := os.WriteFile(filepath.Join(figures, "mp-2-bs-pbe.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatalf("write figure: %v", err)
	}

	c, err := catalogBuilder(Config{FiguresDir: figures, ManifestPath: manifest, IdentifierPrefix: "mp"}, zap.NewNop())()
	if err != nil {
		t.Fatalf("build catalog: %v", err)
	}
	if diff := cmp.Diff([]string{"mp-1"}, c.Identifiers()); diff != "" {
		t.Fatalf("identifiers mismatch (-want +got):\n%s", diff)
	}
}
