package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ffonons/site/internal/services/site/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "summaries.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	store.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func floatPtr(v float64) *float64 { return &v }

func TestUpsertAndListByMaterial(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	summaries := []storage.MaterialSummary{
		{MaterialID: "mp-2691", Model: "pbe", Formula: "CdSe", NSites: 2, MaxFreq: 6.1, LastPhDOSPeak: 5.9},
		{MaterialID: "mp-2691", Model: "mace-y7uhwpje", Formula: "CdSe", NSites: 2, MaxFreq: 5.8, MinFreq: -0.1, LastPhDOSPeak: 5.5, PhDOSMAE: floatPtr(0.2), PhDOSR2: floatPtr(0.9), HasImagFreq: true},
		{MaterialID: "mp-149", Model: "pbe", Formula: "Si", NSites: 2, MaxFreq: 15.3, LastPhDOSPeak: 15.0},
	}
	if err := store.UpsertSummaries(ctx, summaries); err != nil {
		t.Fatalf("upsert summaries: %v", err)
	}

	got, err := store.ListByMaterial(ctx, "mp-2691")
	if err != nil {
		t.Fatalf("list by material: %v", err)
	}
	want := []storage.MaterialSummary{summaries[1], summaries[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.UpsertSummaries(ctx, []storage.MaterialSummary{{MaterialID: "mp-1", Model: "pbe", MaxFreq: 1}}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.UpsertSummaries(ctx, []storage.MaterialSummary{{MaterialID: "mp-1", Model: "pbe", MaxFreq: 2}}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	got, err := store.ListByMaterial(ctx, "mp-1")
	if err != nil {
		t.Fatalf("list by material: %v", err)
	}
	if len(got) != 1 || got[0].MaxFreq != 2 {
		t.Fatalf("summaries = %+v, want one row with max freq 2", got)
	}
}

func TestUpsertRejectsMissingKeys(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	if err := store.UpsertSummaries(context.Background(), []storage.MaterialSummary{{Model: "pbe"}}); err == nil {
		t.Fatal("expected missing material id to fail")
	}
	if err := store.UpsertSummaries(context.Background(), []storage.MaterialSummary{{MaterialID: "mp-1"}}); err == nil {
		t.Fatal("expected missing model to fail")
	}
}

func TestListByMaterialNotFound(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	_, err := store.ListByMaterial(context.Background(), "mp-404")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestFormulas(t *testing.T) {
	t.Parallel()

	store := openTestStore(t)
	ctx := context.Background()
	if err := store.UpsertSummaries(ctx, []storage.MaterialSummary{
		{MaterialID: "mp-2691", Model: "pbe", Formula: "CdSe"},
		{MaterialID: "mp-2691", Model: "chgnet-v0.3.0", Formula: "CdSe"},
		{MaterialID: "mp-7", Model: "pbe"},
	}); err != nil {
		t.Fatalf("upsert summaries: %v", err)
	}
	got, err := store.Formulas(ctx)
	if err != nil {
		t.Fatalf("formulas: %v", err)
	}
	if diff := cmp.Diff(map[string]string{"mp-2691": "CdSe"}, got); diff != "" {
		t.Fatalf("formulas mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenReadOnlySeesImportedRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "summaries.db")
	ctx := context.Background()
	writer, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	if err := writer.UpsertSummaries(ctx, []storage.MaterialSummary{{MaterialID: "mp-1", Model: "pbe", Formula: "Si"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	reader, err := OpenReadOnly(ctx, path)
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	t.Cleanup(func() { _ = reader.Close() })
	got, err := reader.ListByMaterial(ctx, "mp-1")
	if err != nil {
		t.Fatalf("list by material: %v", err)
	}
	if len(got) != 1 || got[0].Formula != "Si" {
		t.Fatalf("summaries = %+v, want Si row", got)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path to fail")
	}
	if _, err := OpenReadOnly(context.Background(), ""); err == nil {
		t.Fatal("expected empty path to fail")
	}
}
