package site

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ffonons/site/internal/platform/assets/catalog"
)

// ManifestFileName is the manifest written next to the figures by default.
const ManifestFileName = "manifest.json"

// DefaultManifestPath returns the manifest location used when none is set.
func DefaultManifestPath(figuresDir string) string {
	return filepath.Join(figuresDir, ManifestFileName)
}

// CatalogBuilder returns a build function for catalog.NewSource that loads
// figuresDir, preferring the manifest at manifestPath.
func CatalogBuilder(figuresDir string, prefix string, manifestPath string, logger *zap.Logger) func() (*catalog.Catalog, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func() (*catalog.Catalog, error) {
		c, report, err := catalog.Load(catalog.LoadOptions{
			FS:           os.DirFS(figuresDir),
			Prefix:       prefix,
			ManifestPath: manifestPath,
		})
		if err != nil {
			return nil, err
		}
		for _, skipped := range report.Skipped {
			logger.Debug("skipped figure file", zap.String("path", skipped))
		}
		logger.Info("catalog loaded",
			zap.String("origin", string(report.Origin)),
			zap.Int("artifacts", c.Len()),
			zap.Int("identifiers", len(c.Identifiers())),
			zap.Int("skipped", len(report.Skipped)),
		)
		return c, nil
	}
}

// ReadMetricsTable reads the pre-rendered metrics table. An empty path means
// no table.
func ReadMetricsTable(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("metrics table %s does not exist", path)
		}
		return "", fmt.Errorf("read metrics table: %w", err)
	}
	return string(raw), nil
}
