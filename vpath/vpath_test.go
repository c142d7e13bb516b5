package vpath

import "testing"

func TestToSlashLower(t *testing.T) {
	got := ToSlashLower(`A3\Data\Crate.p3d`)
	want := "a3/data/crate.p3d"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNormalizeTrimsLeadingSlashes(t *testing.T) {
	if got := Normalize("/A3/Data"); got != "a3/data" {
		t.Fatalf("got %q", got)
	}
}

func TestJoinRecomposition(t *testing.T) {
	cases := []struct{ prefix, entry, want string }{
		{"a3/data", "crate.p3d", "a3/data/crate.p3d"},
		{"a3/data/", "crate.p3d", "a3/data/crate.p3d"},
		{"", "crate.p3d", "crate.p3d"},
	}
	for _, c := range cases {
		if got := Join(c.prefix, c.entry); got != c.want {
			t.Fatalf("Join(%q,%q) = %q want %q", c.prefix, c.entry, got, c.want)
		}
	}
}

func TestIsProceduralTexture(t *testing.T) {
	cases := map[string]bool{
		"#(argb,8,8,3)color(1,1,1,1,ca)": true,
		"a3\\data\\crate_co.paa":         false,
		"#(ai,64,64,1)fresnel(1,5)":      true,
	}
	for in, want := range cases {
		if got := IsProceduralTexture(in); got != want {
			t.Fatalf("IsProceduralTexture(%q) = %v want %v", in, got, want)
		}
	}
}

func TestGlobToLike(t *testing.T) {
	if got := GlobToLike("*.p3d"); got != "%.p3d" {
		t.Fatalf("got %q", got)
	}
	if got := GlobToLike("data?.paa"); got != "data_.paa" {
		t.Fatalf("got %q", got)
	}
}

func TestBasenameNoExt(t *testing.T) {
	if got := BasenameNoExt(`data\cargo_house_v1.p3d`); got != "cargo_house_v1" {
		t.Fatalf("got %q", got)
	}
}
