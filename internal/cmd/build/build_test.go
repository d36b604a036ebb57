package build

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	"github.com/ffonons/site/internal/services/site/storage/sqlite"
)

const summaryCSV = "material_id,model,formula,n_sites,supercell,max_freq_thz,min_freq_thz,last_ph_dos_peak_thz,ph_dos_mae_thz,ph_dos_r2,has_imag_freq,has_imag_gamma_freq\n" +
	"mp-2691,pbe,CdSe,2,,6.1,0,5.9,,,False,False\n" +
	"mp-999,pbe,Xx,1,,1,0,1,,,False,False\n"

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func fixture(t *testing.T) (string, Config) {
	t.Helper()
	dir := t.TempDir()
	figures := filepath.Join(dir, "figures")
	writeFile(t, filepath.Join(figures, "mp-2691-bs-dos-pbe-vs-mace-y7uhwpje.svg"), `<svg id="a"></svg>`)
	writeFile(t, filepath.Join(figures, "mp-2691-dos-pbe.svg"), `<svg id="b"></svg>`)
	writeFile(t, filepath.Join(figures, "mp-55-bs-pbe.svg"), `<svg id="c"></svg>`)
	writeFile(t, filepath.Join(dir, "summaries.csv"), summaryCSV)
	writeFile(t, filepath.Join(dir, "metrics.html"), `<table id="metrics"></table>`)
	return dir, Config{
		FiguresDir:       figures,
		ManifestPath:     filepath.Join(figures, "manifest.json"),
		SummaryCSVPath:   filepath.Join(dir, "summaries.csv"),
		SummaryDBPath:    filepath.Join(dir, "summaries.db"),
		OutDir:           filepath.Join(dir, "out"),
		MetricsTablePath: filepath.Join(dir, "metrics.html"),
		IdentifierPrefix: "mp",
		ClientScript:     true,
	}
}

func fixedNow() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(flag.NewFlagSet("build", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.FiguresDir != "figures" || cfg.ManifestPath != filepath.Join("figures", "manifest.json") {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.OutDir != "" || !cfg.ClientScript || cfg.IdentifierPrefix != "mp" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestParseConfigRequiresDBForCSV(t *testing.T) {
	t.Parallel()

	_, err := ParseConfig(flag.NewFlagSet("build", flag.ContinueOnError), []string{"-summaries-csv", "s.csv"})
	if err == nil || !strings.Contains(err.Error(), "summaries-db") {
		t.Fatalf("ParseConfig() error = %v", err)
	}
}

func TestParseConfigReadsEnv(t *testing.T) {
	t.Setenv("FFONONS_SITE_OUT_DIR", "public")
	t.Setenv("FFONONS_SITE_CLIENT_SCRIPT", "false")

	cfg, err := ParseConfig(flag.NewFlagSet("build", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.OutDir != "public" || cfg.ClientScript {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestBuildWritesManifestSummariesAndSite(t *testing.T) {
	t.Parallel()

	_, cfg := fixture(t)
	if err := build(context.Background(), cfg, zap.NewNop(), fixedNow); err != nil {
		t.Fatalf("build() error = %v", err)
	}

	file, err := os.Open(cfg.ManifestPath)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	defer file.Close()
	manifest, err := catalog.ReadManifest(file)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	var keys []string
	for _, entry := range manifest.Artifacts {
		keys = append(keys, entry.Key)
	}
	want := []string{"mp-2691-bs-dos-pbe-vs-mace-y7uhwpje", "mp-2691-dos-pbe", "mp-55-bs-pbe"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("manifest keys mismatch (-want +got):\n%s", diff)
	}
	if !manifest.GeneratedAt.Equal(fixedNow()) {
		t.Fatalf("GeneratedAt = %v", manifest.GeneratedAt)
	}

	store, err := sqlite.OpenReadOnly(context.Background(), cfg.SummaryDBPath)
	if err != nil {
		t.Fatalf("open summaries: %v", err)
	}
	defer store.Close()
	rows, err := store.ListByMaterial(context.Background(), "mp-2691")
	if err != nil || len(rows) != 1 || rows[0].Formula != "CdSe" {
		t.Fatalf("ListByMaterial() = %+v, %v", rows, err)
	}

	for _, name := range []string{
		"index.html",
		"404.html",
		filepath.Join("mp-2691", "index.html"),
		filepath.Join("mp-55", "index.html"),
		filepath.Join("figures", "mp-2691-dos-pbe", "index.html"),
		filepath.Join("static", "site.css"),
		filepath.Join("static", "site.js"),
	} {
		if _, err := os.Stat(filepath.Join(cfg.OutDir, name)); err != nil {
			t.Fatalf("export missing %s: %v", name, err)
		}
	}
	page, err := os.ReadFile(filepath.Join(cfg.OutDir, "mp-2691", "index.html"))
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	for _, marker := range []string{`<svg id="a"></svg>`, `<svg id="b"></svg>`, "CdSe"} {
		if !strings.Contains(string(page), marker) {
			t.Fatalf("exported page missing %q", marker)
		}
	}
	index, err := os.ReadFile(filepath.Join(cfg.OutDir, "index.html"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	if !strings.Contains(string(index), `<table id="metrics"></table>`) {
		t.Fatal("exported index missing metrics table")
	}
}

func TestBuildWithoutOutDirSkipsExport(t *testing.T) {
	t.Parallel()

	dir, cfg := fixture(t)
	cfg.OutDir = ""
	cfg.SummaryCSVPath = ""
	cfg.SummaryDBPath = ""
	if err := build(context.Background(), cfg, zap.NewNop(), fixedNow); err != nil {
		t.Fatalf("build() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Fatalf("expected no export, stat err = %v", err)
	}
	if _, err := os.Stat(cfg.ManifestPath); err != nil {
		t.Fatalf("manifest missing: %v", err)
	}
}

func TestBuildRejectsDuplicateKeys(t *testing.T) {
	t.Parallel()

	_, cfg := fixture(t)
	writeFile(t, filepath.Join(cfg.FiguresDir, "nested", "mp-55-bs-pbe.png"), "png")
	if err := build(context.Background(), cfg, zap.NewNop(), fixedNow); err == nil {
		t.Fatal("expected duplicate artifact key to fail")
	}
}

func TestBuildRejectsInvalidCSV(t *testing.T) {
	t.Parallel()

	dir, cfg := fixture(t)
	writeFile(t, filepath.Join(dir, "summaries.csv"), "material_id\nmp-1\n")
	if err := build(context.Background(), cfg, zap.NewNop(), fixedNow); err == nil {
		t.Fatal("expected invalid csv to fail")
	}
}
