package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Origin names where a catalog's artifact list came from.
type Origin string

const (
	OriginManifest Origin = "manifest"
	OriginScan     Origin = "scan"
)

// LoadOptions selects the artifact directory and optional manifest.
type LoadOptions struct {
	// FS is the figures directory.
	FS fs.FS
	// Prefix is the identifier tag. Empty means DefaultPrefix.
	Prefix string
	// ManifestPath is an OS path to a manifest written by the build step.
	// When empty or missing, FS is scanned instead.
	ManifestPath string
}

// LoadReport describes how a catalog was built.
type LoadReport struct {
	Origin  Origin
	Skipped []string
}

// Load builds a catalog, preferring the manifest over a directory scan.
func Load(opts LoadOptions) (*Catalog, LoadReport, error) {
	prefix := normalizePrefix(opts.Prefix)
	if manifestPath := strings.TrimSpace(opts.ManifestPath); manifestPath != "" {
		manifest, err := readManifestFile(manifestPath)
		switch {
		case err == nil:
			if manifest.Prefix != prefix {
				return nil, LoadReport{}, fmt.Errorf("manifest prefix %q does not match %q", manifest.Prefix, prefix)
			}
			artifacts, err := manifest.Bind(opts.FS)
			if err != nil {
				return nil, LoadReport{}, err
			}
			c, err := New(prefix, artifacts)
			if err != nil {
				return nil, LoadReport{}, err
			}
			return c, LoadReport{Origin: OriginManifest}, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, LoadReport{}, err
		}
	}

	scanned, err := Scan(opts.FS, ScanOptions{Prefix: prefix})
	if err != nil {
		return nil, LoadReport{}, err
	}
	c, err := New(prefix, scanned.Artifacts)
	if err != nil {
		return nil, LoadReport{}, err
	}
	return c, LoadReport{Origin: OriginScan, Skipped: scanned.Skipped}, nil
}

func readManifestFile(manifestPath string) (Manifest, error) {
	file, err := os.Open(manifestPath)
	if err != nil {
		return Manifest{}, err
	}
	defer file.Close()
	return ReadManifest(file)
}

// Source hands out the current catalog. Each catalog stays immutable; a
// reload builds a fresh one and swaps the pointer, so readers never observe a
// partially built table.
type Source struct {
	current    atomic.Pointer[Catalog]
	generation atomic.Uint64
	reload     sync.Mutex
	build      func() (*Catalog, error)
}

// NewSource builds the initial catalog with build and keeps build for reloads.
func NewSource(build func() (*Catalog, error)) (*Source, error) {
	if build == nil {
		return nil, errors.New("catalog build function is required")
	}
	s := &Source{build: build}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// StaticSource wraps a fixed catalog that never reloads.
func StaticSource(c *Catalog) *Source {
	s := &Source{}
	s.current.Store(c)
	s.generation.Store(1)
	return s
}

// Catalog returns the current catalog.
func (s *Source) Catalog() *Catalog {
	if s == nil {
		return nil
	}
	return s.current.Load()
}

// Reload rebuilds the catalog. On failure the previous catalog stays active.
func (s *Source) Reload() error {
	if s == nil || s.build == nil {
		return nil
	}
	s.reload.Lock()
	defer s.reload.Unlock()
	c, err := s.build()
	if err != nil {
		return fmt.Errorf("rebuild catalog: %w", err)
	}
	s.current.Store(c)
	s.generation.Add(1)
	return nil
}

// Generation counts successful builds. Clients poll it to notice reloads.
func (s *Source) Generation() uint64 {
	if s == nil {
		return 0
	}
	return s.generation.Load()
}
