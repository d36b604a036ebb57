package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/ffonons/site/internal/platform/assets/catalog"
	module "github.com/ffonons/site/internal/services/site/module"
)

func testDeps(t *testing.T) module.Dependencies {
	t.Helper()
	fsys := fstest.MapFS{
		"mp-2691-bs-dos-a.svg": {Data: []byte("<svg/>")},
		"mp-2691-bs-dos-b.svg": {Data: []byte("<svg/>")},
		"mp-55-bs-dos-a.svg":   {Data: []byte("<svg/>")},
	}
	c, _, err := catalog.Load(catalog.LoadOptions{FS: fsys})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return module.Dependencies{Catalog: catalog.StaticSource(c)}
}

func get(t *testing.T, deps module.Dependencies, target string) *httptest.ResponseRecorder {
	t.Helper()
	mount, err := New().Mount(deps)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	rr := httptest.NewRecorder()
	mount.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestModuleIDReturnsAPI(t *testing.T) {
	t.Parallel()

	if got := New().ID(); got != "api" {
		t.Fatalf("ID() = %q, want %q", got, "api")
	}
}

func TestCatalogListsDeduplicatedIdentifiers(t *testing.T) {
	t.Parallel()

	rr := get(t, testDeps(t), "/api/catalog")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var resp CatalogResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := CatalogResponse{
		Prefix:     "mp",
		Generation: 1,
		Materials: []MaterialEntry{
			{Identifier: "mp-2691", Link: "/mp-2691", Figures: 2},
			{Identifier: "mp-55", Link: "/mp-55", Figures: 1},
		},
	}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Fatalf("catalog mismatch (-want +got):\n%s", diff)
	}
}

func TestCatalogWithoutSourceIsEmpty(t *testing.T) {
	t.Parallel()

	rr := get(t, module.Dependencies{}, "/api/catalog")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	var resp CatalogResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Materials) != 0 || resp.Prefix != "mp" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestVersionReportsGeneration(t *testing.T) {
	t.Parallel()

	rr := get(t, testDeps(t), "/api/version")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
	var resp VersionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Generation != 1 {
		t.Fatalf("generation = %d, want 1", resp.Generation)
	}
}
