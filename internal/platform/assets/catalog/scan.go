package catalog

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// ScanOptions controls which files Scan turns into artifacts.
type ScanOptions struct {
	// Prefix is the identifier tag every figure name starts with.
	Prefix string
	// Root is the directory inside the filesystem to walk. Empty means ".".
	Root string
}

// ScanResult lists the artifacts found by Scan and the files it passed over.
type ScanResult struct {
	Artifacts []Artifact
	Skipped   []string
}

// Scan walks fsys once and returns every figure file whose name follows the
// artifact naming convention, in lexical path order. Files with a figure
// extension but a foreign name (for example the metrics table) are reported in
// Skipped rather than failing the scan.
func Scan(fsys fs.FS, opts ScanOptions) (ScanResult, error) {
	if fsys == nil {
		return ScanResult{}, fmt.Errorf("artifact filesystem is required")
	}
	prefix := normalizePrefix(opts.Prefix)
	root := strings.TrimSpace(opts.Root)
	if root == "" {
		root = "."
	}

	var result ScanResult
	err := fs.WalkDir(fsys, root, func(filePath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			if filePath != root && strings.HasPrefix(entry.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if MediaTypeForPath(filePath) == "" {
			return nil
		}
		if !strings.HasPrefix(path.Base(filePath), prefix+tokenDelimiter) {
			result.Skipped = append(result.Skipped, filePath)
			return nil
		}
		name, err := ParseName(filePath, prefix)
		if err != nil {
			result.Skipped = append(result.Skipped, filePath)
			return nil
		}
		result.Artifacts = append(result.Artifacts, Artifact{
			Path: filePath,
			Name: name,
			Load: FileLoader(fsys, filePath, name),
		})
		return nil
	})
	if err != nil {
		return ScanResult{}, fmt.Errorf("scan artifacts: %w", err)
	}
	return result, nil
}
