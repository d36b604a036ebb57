package catalog

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/ffonons/site/internal/platform/errors"
)

func TestManifestRoundTripBindsLoaders(t *testing.T) {
	t.Parallel()

	fsys := figuresFS()
	scanned, err := Scan(fsys, ScanOptions{})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	generatedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	manifest := NewManifest("mp", scanned.Artifacts, generatedAt)

	var buf bytes.Buffer
	if err := WriteManifest(&buf, manifest); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}
	decoded, err := ReadManifest(&buf)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if diff := cmp.Diff(manifest, decoded); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}

	artifacts, err := decoded.Bind(fsys)
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}
	c, err := New(decoded.Prefix, artifacts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if diff := cmp.Diff([]string{"mp-2691", "mp-55", "mp-149"}, c.Identifiers()); diff != "" {
		t.Fatalf("identifiers mismatch (-want +got):\n%s", diff)
	}
	figure, err := c.Lookup(context.Background(), "mp-55-bs-dos-pbe-vs-m3gnet")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if figure.MediaType != MediaTypePNG {
		t.Fatalf("media type = %q", figure.MediaType)
	}
}

func TestReadManifestRejectsUnknownVersion(t *testing.T) {
	t.Parallel()

	_, err := ReadManifest(strings.NewReader(`{"version": 7, "prefix": "mp", "artifacts": []}`))
	if !apperrors.IsCode(err, apperrors.CodeManifestInvalid) {
		t.Fatalf("expected CodeManifestInvalid, got %v", err)
	}
}

func TestReadManifestRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	_, err := ReadManifest(strings.NewReader(`{"version": 1, "prefix": "mp", "extra": true}`))
	if !apperrors.IsCode(err, apperrors.CodeManifestInvalid) {
		t.Fatalf("expected CodeManifestInvalid, got %v", err)
	}
}

func TestBindRejectsIdentifierDrift(t *testing.T) {
	t.Parallel()

	manifest := Manifest{
		Version: ManifestVersion,
		Prefix:  "mp",
		Artifacts: []ManifestEntry{
			{Key: "mp-1-bs-pbe", Path: "mp-1-bs-pbe.svg", Identifier: "mp-2"},
		},
	}
	if _, err := manifest.Bind(figuresFS()); !apperrors.IsCode(err, apperrors.CodeManifestInvalid) {
		t.Fatalf("expected CodeManifestInvalid, got %v", err)
	}
}
