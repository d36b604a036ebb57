package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/ffonons/site/internal/platform/errors"
)

func TestParseName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Name
	}{
		{
			path: "mp-2691-bs-dos-chgnet-v0.3.3-mace-y7uhwpje-pbe.svelte",
			want: Name{Key: "mp-2691-bs-dos-chgnet-v0.3.3-mace-y7uhwpje-pbe", Identifier: "mp-2691", Kind: KindBandsDOS, Models: []string{"chgnet-v0.3.3-mace-y7uhwpje-pbe"}},
		},
		{
			path: "figs/mp-661-dos-pbe-vs-mace-y7uhwpje.svg",
			want: Name{Key: "mp-661-dos-pbe-vs-mace-y7uhwpje", Identifier: "mp-661", Kind: KindDOS, Models: []string{"pbe", "mace-y7uhwpje"}},
		},
		{
			path: "mp-55-bs-pbe-vs-m3gnet-vs-gnome.html",
			want: Name{Key: "mp-55-bs-pbe-vs-m3gnet-vs-gnome", Identifier: "mp-55", Kind: KindBands, Models: []string{"pbe", "m3gnet", "gnome"}},
		},
		{
			path: "mp-7-bs-dos.png",
			want: Name{Key: "mp-7-bs-dos", Identifier: "mp-7", Kind: KindBandsDOS},
		},
	}
	for _, tc := range tests {
		got, err := ParseName(tc.path, "mp")
		if err != nil {
			t.Fatalf("ParseName(%q) error = %v", tc.path, err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("ParseName(%q) mismatch (-want +got):\n%s", tc.path, diff)
		}
	}
}

func TestParseNameWithHyphenatedPrefix(t *testing.T) {
	t.Parallel()

	got, err := ParseName("phonon-db-12-bs-dos-pbe-vs-mace-y7uhwpje.svg", "phonon-db")
	if err != nil {
		t.Fatalf("ParseName() error = %v", err)
	}
	want := Name{Key: "phonon-db-12-bs-dos-pbe-vs-mace-y7uhwpje", Identifier: "phonon-db-12", Kind: KindBandsDOS, Models: []string{"pbe", "mace-y7uhwpje"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseName() mismatch (-want +got):\n%s", diff)
	}
	if _, err := ParseName("phonon-12-bs.svg", "phonon-db"); !apperrors.IsCode(err, apperrors.CodeArtifactNameInvalid) {
		t.Fatalf("ParseName() error = %v, want CodeArtifactNameInvalid", err)
	}
}

func TestParseNameRejectsForeignNames(t *testing.T) {
	t.Parallel()

	for _, path := range []string{
		"ffonon-metrics-table-tol=0.01.html",
		"mp-2691.svg",
		"mp--bs.svg",
		"phonon-db-1-bs.svg",
	} {
		_, err := ParseName(path, "mp")
		if !apperrors.IsCode(err, apperrors.CodeArtifactNameInvalid) {
			t.Fatalf("ParseName(%q) error = %v, want CodeArtifactNameInvalid", path, err)
		}
	}
}

func TestIdentifierFromPath(t *testing.T) {
	t.Parallel()

	if got, ok := IdentifierFromPath("site/figs/mp-2691-bs-dos-a.svg"); !ok || got != "mp-2691" {
		t.Fatalf("IdentifierFromPath() = %q, %t", got, ok)
	}
	if _, ok := IdentifierFromPath("README"); ok {
		t.Fatal("expected single-token name to have no identifier")
	}
}

func TestContainsBounded(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s, sub string
		want   bool
	}{
		{s: "mp-1-bs-dos-pbe.svg", sub: "mp-1", want: true},
		{s: "mp-12-bs-dos-pbe.svg", sub: "mp-1", want: false},
		{s: "figs/mp-1.svg", sub: "mp-1", want: true},
		{s: "mp-12-bs-mp-1-dos.svg", sub: "mp-1", want: true},
		{s: "xmp-1-bs.svg", sub: "mp-1", want: false},
		{s: "mp-1", sub: "", want: false},
	}
	for _, tc := range tests {
		if got := containsBounded(tc.s, tc.sub); got != tc.want {
			t.Fatalf("containsBounded(%q, %q) = %t, want %t", tc.s, tc.sub, got, tc.want)
		}
	}
}

func TestNeedleAcceptsBareAndPrefixedIdentifiers(t *testing.T) {
	t.Parallel()

	if got := needle("mp", "2691"); got != "mp-2691" {
		t.Fatalf("needle(bare) = %q", got)
	}
	if got := needle("mp", "mp-2691"); got != "mp-2691" {
		t.Fatalf("needle(prefixed) = %q", got)
	}
	if got := needle("mp", "  "); got != "" {
		t.Fatalf("needle(blank) = %q", got)
	}
}
