package index

import (
	"errors"
	"testing"

	"github.com/armatools/rvtk/vpath"
)

func testRefs() []PBORef {
	return []PBORef{
		{Path: "/mods/a.pbo", Prefix: "a3/data", Source: SourcePrimary},
		{Path: "/mods/b.pbo", Prefix: "a3/data/models", Source: SourcePrimary},
		{Path: "/mods/c.pbo", Prefix: "ca/buildings", Source: SourceLegacyArma2},
	}
}

func TestResolveLongestPrefixWins(t *testing.T) {
	r := NewResolver(testRefs())

	res, err := r.Resolve("a3/data/models/crate.p3d")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ArchivePath != "/mods/b.pbo" {
		t.Errorf("archive = %s, want /mods/b.pbo", res.ArchivePath)
	}
	if res.EntryName != "crate.p3d" {
		t.Errorf("entry = %q, want %q", res.EntryName, "crate.p3d")
	}
	if res.Prefix != "a3/data/models" {
		t.Errorf("prefix = %q, want %q", res.Prefix, "a3/data/models")
	}

	// The shorter prefix still catches paths outside the longer one.
	res, err = r.Resolve("a3/data/tex.paa")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ArchivePath != "/mods/a.pbo" || res.EntryName != "tex.paa" {
		t.Errorf("got (%s, %q)", res.ArchivePath, res.EntryName)
	}
}

func TestResolveNormalizesInput(t *testing.T) {
	r := NewResolver(testRefs())

	res, err := r.Resolve(`A3\Data\Models\CRATE.p3d`)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.ArchivePath != "/mods/b.pbo" || res.EntryName != "crate.p3d" {
		t.Errorf("got (%s, %q)", res.ArchivePath, res.EntryName)
	}
	if res.FullPath != "a3/data/models/crate.p3d" {
		t.Errorf("full path = %q", res.FullPath)
	}
}

// Recomposing prefix + "/" + entry must reproduce the normalized input.
func TestResolveRecomposition(t *testing.T) {
	r := NewResolver(testRefs())
	paths := []string{
		"a3/data/models/crate.p3d",
		"a3/data/tex.paa",
		`CA\Buildings\house.p3d`,
	}
	for _, p := range paths {
		res, err := r.Resolve(p)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", p, err)
		}
		recomposed := vpath.ToSlashLower(res.Prefix) + "/" + res.EntryName
		if recomposed != vpath.ToSlashLower(p) {
			t.Errorf("recomposition %q != normalized input %q", recomposed, vpath.ToSlashLower(p))
		}
	}
}

func TestResolveNotFound(t *testing.T) {
	r := NewResolver(testRefs())
	if _, err := r.Resolve("other/mod/file.paa"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	// A path equal to a bare prefix (no remainder) is not resolvable.
	if _, err := r.Resolve("a3/data"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bare prefix: err = %v, want ErrNotFound", err)
	}
}
