// Package export renders the site into a directory of static files.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	"github.com/ffonons/site/internal/services/site/routepath"
)

const (
	indexFile    = "index.html"
	notFoundFile = "404.html"
	// notFoundRoute is requested to render the 404 page; no identifier can
	// contain a double underscore run like this.
	notFoundRoute = "/__not_found__"
	defaultLimit  = 8
)

// Options configures an export run.
type Options struct {
	// Handler serves the pages to capture.
	Handler http.Handler
	// Catalog lists the identifiers and figures to export.
	Catalog *catalog.Catalog
	// Static holds assets copied under static/.
	Static fs.FS
	// OutDir receives the files.
	OutDir string
	// Concurrency caps parallel page renders. Zero means a small default.
	Concurrency int
}

// Report counts what an export wrote.
type Report struct {
	Pages  int
	Assets int
}

// Run renders the catalog page, every identifier page, every figure page and
// the 404 page, then copies static assets. Any page that does not render with
// its expected status fails the export.
func Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Handler == nil {
		return Report{}, errors.New("export handler is required")
	}
	outDir := strings.TrimSpace(opts.OutDir)
	if outDir == "" {
		return Report{}, errors.New("export directory is required")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Report{}, fmt.Errorf("create export directory: %w", err)
	}

	pages := Pages(opts.Catalog)
	limit := opts.Concurrency
	if limit <= 0 {
		limit = defaultLimit
	}
	var written atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, page := range pages {
		g.Go(func() error {
			if err := renderPage(gctx, opts.Handler, outDir, page); err != nil {
				return err
			}
			written.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Pages: int(written.Load())}
	if opts.Static != nil {
		assets, err := copyStatic(opts.Static, filepath.Join(outDir, strings.Trim(routepath.StaticPrefix, "/")))
		if err != nil {
			return report, err
		}
		report.Assets = assets
	}
	return report, nil
}

// Page is one route captured to one file.
type Page struct {
	Route  string
	File   string
	Status int
}

// Pages lists the pages an export writes for c, in catalog order.
func Pages(c *catalog.Catalog) []Page {
	pages := []Page{
		{Route: routepath.Root, File: indexFile, Status: http.StatusOK},
		{Route: notFoundRoute, File: notFoundFile, Status: http.StatusNotFound},
	}
	for _, identifier := range c.Identifiers() {
		pages = append(pages, Page{
			Route:  routepath.Material(identifier),
			File:   path.Join(identifier, indexFile),
			Status: http.StatusOK,
		})
	}
	for _, artifact := range c.Artifacts() {
		pages = append(pages, Page{
			Route:  routepath.Figure(artifact.Key()),
			File:   path.Join(strings.Trim(routepath.FiguresPrefix, "/"), artifact.Key(), indexFile),
			Status: http.StatusOK,
		})
	}
	return pages
}

func renderPage(ctx context.Context, handler http.Handler, outDir string, page Page) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, page.Route, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", page.Route, err)
	}
	buffer := newResponseBuffer()
	handler.ServeHTTP(buffer, req)
	if buffer.statusCode != page.Status {
		return fmt.Errorf("render %s: status %d, want %d", page.Route, buffer.statusCode, page.Status)
	}
	return writeFile(filepath.Join(outDir, filepath.FromSlash(page.File)), buffer.body.Bytes())
}

func copyStatic(fsys fs.FS, dest string) (int, error) {
	count := 0
	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}
		if err := writeFile(filepath.Join(dest, filepath.FromSlash(name)), data); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("copy static assets: %w", err)
	}
	return count, nil
}

func writeFile(name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(name), err)
	}
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// responseBuffer captures one handler response in memory.
type responseBuffer struct {
	header      http.Header
	statusCode  int
	body        bytes.Buffer
	headerWrote bool
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header), statusCode: http.StatusOK}
}

func (w *responseBuffer) Header() http.Header {
	return w.header
}

func (w *responseBuffer) WriteHeader(status int) {
	if w.headerWrote {
		return
	}
	w.headerWrote = true
	w.statusCode = status
}

func (w *responseBuffer) Write(body []byte) (int, error) {
	w.headerWrote = true
	return w.body.Write(body)
}
