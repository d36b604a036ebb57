package catalog

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadScansWhenManifestMissing(t *testing.T) {
	t.Parallel()

	c, report, err := Load(LoadOptions{
		FS:           figuresFS(),
		ManifestPath: filepath.Join(t.TempDir(), "manifest.json"),
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if report.Origin != OriginScan {
		t.Fatalf("origin = %q, want %q", report.Origin, OriginScan)
	}
	if len(report.Skipped) != 1 {
		t.Fatalf("skipped = %v", report.Skipped)
	}
	if c.Len() != 4 {
		t.Fatalf("Len() = %d", c.Len())
	}
}

func TestLoadPrefersManifest(t *testing.T) {
	t.Parallel()

	fsys := figuresFS()
	scanned, err := Scan(fsys, ScanOptions{})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	// Only the first artifact goes into the manifest.
	manifest := NewManifest("mp", scanned.Artifacts[:1], time.Now())
	var buf bytes.Buffer
	if err := WriteManifest(&buf, manifest); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	manifestPath := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(manifestPath, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	c, report, err := Load(LoadOptions{FS: fsys, ManifestPath: manifestPath})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if report.Origin != OriginManifest {
		t.Fatalf("origin = %q, want %q", report.Origin, OriginManifest)
	}
	if diff := cmp.Diff([]string{"mp-2691"}, c.Identifiers()); diff != "" {
		t.Fatalf("identifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsManifestPrefixMismatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteManifest(&buf, NewManifest("phonon", nil, time.Now())); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	manifestPath := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(manifestPath, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, _, err := Load(LoadOptions{FS: figuresFS(), ManifestPath: manifestPath}); err == nil {
		t.Fatal("expected prefix mismatch error")
	}
}

func TestSourceReloadSwapsCatalog(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{"mp-1-bs-pbe.svg": {Data: []byte("<svg/>")}}
	build := func() (*Catalog, error) {
		c, _, err := Load(LoadOptions{FS: fsys})
		return c, err
	}
	source, err := NewSource(build)
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	before := source.Catalog()
	if diff := cmp.Diff([]string{"mp-1"}, before.Identifiers()); diff != "" {
		t.Fatalf("initial identifiers mismatch (-want +got):\n%s", diff)
	}

	fsys["mp-2-dos-pbe.svg"] = &fstest.MapFile{Data: []byte("<svg/>")}
	if err := source.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if diff := cmp.Diff([]string{"mp-1", "mp-2"}, source.Catalog().Identifiers()); diff != "" {
		t.Fatalf("reloaded identifiers mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"mp-1"}, before.Identifiers()); diff != "" {
		t.Fatalf("previous catalog was mutated:\n%s", diff)
	}
	if got := source.Generation(); got != 2 {
		t.Fatalf("Generation() = %d, want 2", got)
	}
}

func TestSourceReloadKeepsPreviousCatalogOnError(t *testing.T) {
	t.Parallel()

	calls := 0
	first := testCatalog(t, "mp-1-bs-pbe.svg")
	source, err := NewSource(func() (*Catalog, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("figures dir vanished")
		}
		return first, nil
	})
	if err != nil {
		t.Fatalf("NewSource() error = %v", err)
	}
	if err := source.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if source.Catalog() != first {
		t.Fatal("expected previous catalog to stay active")
	}
	if got := source.Generation(); got != 1 {
		t.Fatalf("Generation() = %d, want 1 after failed reload", got)
	}
}

func TestStaticSourceReloadIsNoop(t *testing.T) {
	t.Parallel()

	c := testCatalog(t, "mp-1-bs-pbe.svg")
	source := StaticSource(c)
	if err := source.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if source.Catalog() != c {
		t.Fatal("expected static catalog")
	}
}
