package index

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/armatools/rvtk/binio"
	"github.com/armatools/rvtk/pbo"
)

// mlodBytes assembles a minimal one-LOD MLOD model: four points, one
// normal, one triangle, and an empty TAGG block, so the build loop has
// real model metadata to index.
func mlodBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	bw := binio.NewWriter(&buf)

	write := func(steps ...error) {
		for _, err := range steps {
			if err != nil {
				t.Fatalf("building MLOD: %v", err)
			}
		}
	}

	write(
		bw.Signature("MLOD"), bw.U32(257), bw.U32(1),
		bw.Signature("P3DM"), bw.U32(0x1c), bw.U32(0x100),
		bw.U32(4), bw.U32(1), bw.U32(1), bw.U32(0),
	)
	points := [4][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 2, 0}, {0, 2, 3}}
	for _, p := range points {
		write(bw.F32Slice(p[:]), bw.U32(0))
	}
	write(bw.F32Slice([]float32{0, 1, 0}))

	write(bw.I32(3))
	for _, pt := range []int32{1, 2, 3, 0} {
		write(bw.I32(pt), bw.I32(0), bw.F32(0), bw.F32(0))
	}
	write(bw.I32(0), bw.ASCIIZ(`data\tex.paa`), bw.ASCIIZ(""))

	write(
		bw.Signature("TAGG"),
		bw.U8(1), bw.ASCIIZ("#EndOfFile#"), bw.U32(0),
		bw.F32(1.0),
	)
	return buf.Bytes()
}

func writeArchive(t *testing.T, path, prefix string, entries []pbo.WriteEntry) {
	t.Helper()
	var buf bytes.Buffer
	if err := pbo.Write(&buf, map[string]string{"prefix": prefix}, entries); err != nil {
		t.Fatalf("pbo.Write: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func buildTestIndex(t *testing.T) (dbPath string, roots []Root) {
	t.Helper()
	archiveDir := t.TempDir()
	model := mlodBytes(t)

	writeArchive(t, filepath.Join(archiveDir, "a.pbo"), `a3\data`, []pbo.WriteEntry{
		{Filename: "crate.p3d", Timestamp: 1000, Data: model},
		{Filename: "readme.txt", Timestamp: 1000, Data: []byte("hello")},
	})
	writeArchive(t, filepath.Join(archiveDir, "b.pbo"), `a3\data\models`, []pbo.WriteEntry{
		{Filename: "crate.p3d", Timestamp: 1000, Data: model},
	})

	dbPath = filepath.Join(t.TempDir(), "index.db")
	roots = []Root{{Path: archiveDir, Source: SourcePrimary}}

	res, err := Build(dbPath, roots, BuildOptions{}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if res.ArchiveCount != 2 || res.FileCount != 3 || res.ModelCount != 2 {
		t.Fatalf("build counts = %+v, want 2 archives, 3 files, 2 models", res)
	}
	return dbPath, roots
}

func TestBuildLeavesNoSidecars(t *testing.T) {
	dbPath, _ := buildTestIndex(t)

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("built database missing: %v", err)
	}
	for _, sidecar := range []string{dbPath + "-wal", dbPath + "-shm"} {
		if _, err := os.Stat(sidecar); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("sidecar %s still present (err=%v)", sidecar, err)
		}
	}
}

func TestStatAndFind(t *testing.T) {
	dbPath, _ := buildTestIndex(t)
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	stats, err := db.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if stats.SchemaVersion != schemaVersion {
		t.Errorf("schema version = %q, want %q", stats.SchemaVersion, schemaVersion)
	}
	if stats.ArchiveCount != 2 || stats.FileCount != 3 || stats.ModelCount != 2 {
		t.Errorf("stats = %+v", stats)
	}

	results, err := db.Find("*.p3d", nil, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := []string{"a3/data/crate.p3d", "a3/data/models/crate.p3d"}
	if len(results) != len(want) {
		t.Fatalf("Find returned %d rows, want %d", len(results), len(want))
	}
	for i, r := range results {
		if r.EntryPath != want[i] {
			t.Errorf("Find[%d] = %q, want %q", i, r.EntryPath, want[i])
		}
	}

	// ? matches exactly one character.
	results, err = db.Find("a3/data/crate.p?d", nil, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("single-glyph glob matched %d rows, want 1", len(results))
	}

	other := SourceWorkshop
	results, err = db.Find("*.p3d", &other, 0, 0)
	if err != nil {
		t.Fatalf("Find with source filter: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("workshop filter matched %d rows, want 0", len(results))
	}
}

func TestResolveFromDatabase(t *testing.T) {
	dbPath, _ := buildTestIndex(t)
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	resolver, err := db.Resolver()
	if err != nil {
		t.Fatalf("Resolver: %v", err)
	}

	res, err := resolver.Resolve("a3/data/models/crate.p3d")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if filepath.Base(res.ArchivePath) != "b.pbo" {
		t.Errorf("resolved archive = %s, want b.pbo", res.ArchivePath)
	}
	if res.EntryName != "crate.p3d" {
		t.Errorf("entry = %q, want %q", res.EntryName, "crate.p3d")
	}
}

func TestListDir(t *testing.T) {
	dbPath, _ := buildTestIndex(t)
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	entries, err := db.ListDir("a3/data", 0, 0)
	if err != nil {
		t.Fatalf("ListDir: %v", err)
	}
	wantNames := []string{"models", "crate.p3d", "readme.txt"}
	if len(entries) != len(wantNames) {
		t.Fatalf("ListDir returned %d entries, want %d", len(entries), len(wantNames))
	}
	for i, e := range entries {
		if e.Name != wantNames[i] {
			t.Errorf("entry[%d] = %q, want %q", i, e.Name, wantNames[i])
		}
	}
	if !entries[0].IsDir {
		t.Error("models should list as a directory, before the files")
	}
	if entries[1].IsDir || entries[1].File == nil {
		t.Error("crate.p3d should list as a file")
	}
	if entries[1].File.EntryPath != "a3/data/crate.p3d" {
		t.Errorf("file entry path = %q", entries[1].File.EntryPath)
	}

	root, err := db.ListDir("", 0, 0)
	if err != nil {
		t.Fatalf("ListDir(root): %v", err)
	}
	if len(root) != 1 || root[0].Name != "a3" || !root[0].IsDir {
		t.Errorf("root listing = %+v, want the single directory a3", root)
	}

	if _, err := db.ListDir("no/such/dir", 0, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing dir: err = %v, want ErrNotFound", err)
	}
}

func TestBoundingBoxes(t *testing.T) {
	dbPath, _ := buildTestIndex(t)
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	boxes, err := db.BoundingBoxes()
	if err != nil {
		t.Fatalf("BoundingBoxes: %v", err)
	}
	if len(boxes) != 2 {
		t.Fatalf("got %d bounding rows, want 2", len(boxes))
	}
	b, ok := boxes["a3/data/crate.p3d"]
	if !ok {
		t.Fatal("a3/data/crate.p3d missing from bounding query")
	}
	if b.VisualMin != [3]float32{0, 0, 0} || b.VisualMax != [3]float32{1, 2, 3} {
		t.Errorf("visual bounds = %v..%v, want (0,0,0)..(1,2,3)", b.VisualMin, b.VisualMax)
	}
}

func TestUpdateLifecycle(t *testing.T) {
	dbPath, roots := buildTestIndex(t)
	archiveDir := roots[0].Path

	// No filesystem changes: nothing to do.
	res, err := Update(dbPath, roots, BuildOptions{}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Added != 0 || res.Updated != 0 || res.Removed != 0 {
		t.Errorf("no-op update = %+v, want all zero", res)
	}

	// Grow a.pbo and bump its mtime: exactly one re-index.
	aPath := filepath.Join(archiveDir, "a.pbo")
	writeArchive(t, aPath, `a3\data`, []pbo.WriteEntry{
		{Filename: "crate.p3d", Timestamp: 1000, Data: mlodBytes(t)},
		{Filename: "readme.txt", Timestamp: 1000, Data: []byte("hello")},
		{Filename: "extra.txt", Timestamp: 1001, Data: []byte("new content")},
	})
	bump := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(aPath, bump, bump); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	res, err = Update(dbPath, roots, BuildOptions{}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Added != 0 || res.Updated != 1 || res.Removed != 0 {
		t.Errorf("post-modify update = %+v, want exactly one re-index", res)
	}

	// Drop b.pbo: exactly one removal, and its rows disappear.
	if err := os.Remove(filepath.Join(archiveDir, "b.pbo")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	res, err = Update(dbPath, roots, BuildOptions{}, nil)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if res.Added != 0 || res.Updated != 0 || res.Removed != 1 {
		t.Errorf("post-remove update = %+v, want exactly one removal", res)
	}

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	results, err := db.Find("*.p3d", nil, 0, 0)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(results) != 1 || results[0].EntryPath != "a3/data/crate.p3d" {
		t.Errorf("after removal Find = %+v, want only a3/data/crate.p3d", results)
	}

	stats, err := db.Stat()
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if stats.ArchiveCount != 1 || stats.FileCount != 3 || stats.ModelCount != 1 {
		t.Errorf("post-update stats = %+v, want 1 archive, 3 files, 1 model", stats)
	}
}

func TestSchemaMismatchRefusal(t *testing.T) {
	dbPath, roots := buildTestIndex(t)

	conn, err := openRaw(dbPath)
	if err != nil {
		t.Fatalf("openRaw: %v", err)
	}
	if err := setMeta(conn, "schema_version", "outdated"); err != nil {
		t.Fatalf("setMeta: %v", err)
	}
	conn.Close()

	if _, err := Open(dbPath); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Open: err = %v, want ErrSchemaMismatch", err)
	}
	if _, err := Update(dbPath, roots, BuildOptions{}, nil); !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("Update: err = %v, want ErrSchemaMismatch", err)
	}
}
