package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Loader produces the renderable content of one artifact on demand.
type Loader func(ctx context.Context) (Figure, error)

// Artifact is one pre-built figure known to the catalog. Artifacts are built
// once from a fixed directory and never mutated.
type Artifact struct {
	// Path is the slash-separated location relative to the artifact root.
	Path string
	Name Name
	Load Loader
}

// Key returns the artifact file name without extension.
func (a Artifact) Key() string { return a.Name.Key }

// Identifier returns the material identifier the artifact belongs to.
func (a Artifact) Identifier() string { return a.Name.Identifier }

// Figure is the realized content of an artifact.
type Figure struct {
	Key        string
	Path       string
	Identifier string
	Kind       Kind
	Models     []string
	MediaType  string
	Body       []byte
}

// Inline reports whether the figure body is markup that can be embedded
// directly into an HTML page.
func (f Figure) Inline() bool {
	switch f.MediaType {
	case MediaTypeHTML, MediaTypeSVG:
		return true
	}
	return false
}

// Media types recognized for figure files.
const (
	MediaTypeHTML = "text/html"
	MediaTypeSVG  = "image/svg+xml"
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
	MediaTypeWebP = "image/webp"
)

var mediaTypesByExt = map[string]string{
	".html": MediaTypeHTML,
	".htm":  MediaTypeHTML,
	".svg":  MediaTypeSVG,
	".png":  MediaTypePNG,
	".jpg":  MediaTypeJPEG,
	".jpeg": MediaTypeJPEG,
	".webp": MediaTypeWebP,
}

// MediaTypeForPath returns the figure media type for a file path, or "" when
// the extension is not a supported figure format.
func MediaTypeForPath(p string) string {
	return mediaTypesByExt[strings.ToLower(path.Ext(p))]
}

// FileLoader returns a Loader that reads filePath from fsys.
func FileLoader(fsys fs.FS, filePath string, name Name) Loader {
	return func(ctx context.Context) (Figure, error) {
		if err := ctx.Err(); err != nil {
			return Figure{}, err
		}
		if fsys == nil {
			return Figure{}, fmt.Errorf("artifact filesystem is not configured")
		}
		body, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return Figure{}, fmt.Errorf("read %s: %w", filePath, err)
		}
		return Figure{
			Key:        name.Key,
			Path:       filePath,
			Identifier: name.Identifier,
			Kind:       name.Kind,
			Models:     append([]string(nil), name.Models...),
			MediaType:  MediaTypeForPath(filePath),
			Body:       body,
		}, nil
	}
}
