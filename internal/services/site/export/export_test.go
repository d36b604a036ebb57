package export

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/ffonons/site/internal/platform/assets/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, _, err := catalog.Load(catalog.LoadOptions{FS: fstest.MapFS{
		"mp-2691-bs-dos-pbe.svg": {Data: []byte("<svg/>")},
		"mp-2691-dos-pbe.svg":    {Data: []byte("<svg/>")},
		"mp-55-bs-pbe.svg":       {Data: []byte("<svg/>")},
	}})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/__not_found__" {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = w.Write([]byte("page " + r.URL.Path))
	})
}

func TestPagesCoversCatalog(t *testing.T) {
	t.Parallel()

	var files []string
	for _, page := range Pages(testCatalog(t)) {
		files = append(files, page.File)
	}
	want := []string{
		"index.html",
		"404.html",
		"mp-2691/index.html",
		"mp-55/index.html",
		"figures/mp-2691-bs-dos-pbe/index.html",
		"figures/mp-2691-dos-pbe/index.html",
		"figures/mp-55-bs-pbe/index.html",
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("pages mismatch (-want +got):\n%s", diff)
	}
}

func TestRunWritesPagesAndAssets(t *testing.T) {
	t.Parallel()

	out := t.TempDir()
	report, err := Run(context.Background(), Options{
		Handler:     echoHandler(),
		Catalog:     testCatalog(t),
		Static:      fstest.MapFS{"site.css": {Data: []byte("body{}")}},
		OutDir:      out,
		Concurrency: 2,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Pages != 7 || report.Assets != 1 {
		t.Fatalf("report = %+v", report)
	}
	got, err := os.ReadFile(filepath.Join(out, "mp-2691", "index.html"))
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	if string(got) != "page /mp-2691" {
		t.Fatalf("page body = %q", got)
	}
	if _, err := os.Stat(filepath.Join(out, "static", "site.css")); err != nil {
		t.Fatalf("static asset missing: %v", err)
	}
	notFound, err := os.ReadFile(filepath.Join(out, "404.html"))
	if err != nil {
		t.Fatalf("read 404 page: %v", err)
	}
	if !strings.Contains(string(notFound), "__not_found__") {
		t.Fatalf("404 body = %q", notFound)
	}
}

func TestRunFailsOnUnexpectedStatus(t *testing.T) {
	t.Parallel()

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/mp-55" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if r.URL.Path == "/__not_found__" {
			w.WriteHeader(http.StatusNotFound)
		}
	})
	_, err := Run(context.Background(), Options{Handler: failing, Catalog: testCatalog(t), OutDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "/mp-55") {
		t.Fatalf("Run() error = %v, want /mp-55 failure", err)
	}
}

func TestRunValidatesOptions(t *testing.T) {
	t.Parallel()

	if _, err := Run(context.Background(), Options{OutDir: t.TempDir()}); err == nil {
		t.Fatal("expected missing handler to fail")
	}
	if _, err := Run(context.Background(), Options{Handler: echoHandler()}); err == nil {
		t.Fatal("expected missing out dir to fail")
	}
}
