package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	apperrors "github.com/ffonons/site/internal/platform/errors"
)

// ManifestVersion is the manifest schema version written by the build step.
const ManifestVersion = 1

// Manifest is the build-time listing of artifacts. Serving from a manifest
// avoids re-walking the figures directory on every start.
type Manifest struct {
	Version     int             `json:"version"`
	Prefix      string          `json:"prefix"`
	GeneratedAt time.Time       `json:"generated_at"`
	Artifacts   []ManifestEntry `json:"artifacts"`
}

// ManifestEntry records one artifact and its decoded name.
type ManifestEntry struct {
	Key        string   `json:"key"`
	Path       string   `json:"path"`
	Identifier string   `json:"identifier"`
	Kind       string   `json:"kind"`
	Models     []string `json:"models,omitempty"`
}

// NewManifest captures artifacts in catalog order.
func NewManifest(prefix string, artifacts []Artifact, generatedAt time.Time) Manifest {
	entries := make([]ManifestEntry, 0, len(artifacts))
	for _, artifact := range artifacts {
		entries = append(entries, ManifestEntry{
			Key:        artifact.Name.Key,
			Path:       artifact.Path,
			Identifier: artifact.Name.Identifier,
			Kind:       string(artifact.Name.Kind),
			Models:     append([]string(nil), artifact.Name.Models...),
		})
	}
	return Manifest{
		Version:     ManifestVersion,
		Prefix:      normalizePrefix(prefix),
		GeneratedAt: generatedAt.UTC(),
		Artifacts:   entries,
	}
}

// WriteManifest encodes m as indented JSON.
func WriteManifest(w io.Writer, m Manifest) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

// ReadManifest decodes and validates a manifest.
func ReadManifest(r io.Reader) (Manifest, error) {
	var m Manifest
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&m); err != nil {
		return Manifest{}, apperrors.Wrap(apperrors.CodeManifestInvalid, "decode manifest", err)
	}
	if m.Version != ManifestVersion {
		return Manifest{}, apperrors.New(apperrors.CodeManifestInvalid, fmt.Sprintf("unsupported manifest version %d", m.Version))
	}
	m.Prefix = normalizePrefix(m.Prefix)
	return m, nil
}

// Bind re-parses every entry against the naming convention and attaches file
// loaders reading from fsys. An entry whose recorded identifier disagrees with
// its file name is rejected.
func (m Manifest) Bind(fsys fs.FS) ([]Artifact, error) {
	artifacts := make([]Artifact, 0, len(m.Artifacts))
	for _, entry := range m.Artifacts {
		filePath := strings.TrimSpace(entry.Path)
		if filePath == "" {
			return nil, apperrors.New(apperrors.CodeManifestInvalid, "manifest entry path is required")
		}
		name, err := ParseName(filePath, m.Prefix)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeManifestInvalid, "manifest entry "+filePath, err)
		}
		if entry.Identifier != "" && entry.Identifier != name.Identifier {
			return nil, apperrors.WithMetadata(
				apperrors.CodeManifestInvalid,
				fmt.Sprintf("manifest entry %s records identifier %q, name encodes %q", filePath, entry.Identifier, name.Identifier),
				map[string]string{"path": filePath},
			)
		}
		artifacts = append(artifacts, Artifact{
			Path: filePath,
			Name: name,
			Load: FileLoader(fsys, filePath, name),
		})
	}
	return artifacts, nil
}
