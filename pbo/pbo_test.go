package pbo

import (
	"bytes"
	"testing"
)

func buildTestPBO(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := Write(&buf,
		map[string]string{"prefix": "test_prefix"},
		[]WriteEntry{{Filename: "config.bin", Timestamp: 1000, Data: []byte("hello")}},
	)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	return buf.Bytes()
}

func TestReadBasic(t *testing.T) {
	data := buildTestPBO(t)
	a, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if prefix, ok := a.Prefix(); !ok || prefix != "test_prefix" {
		t.Fatalf("prefix = %q, %v", prefix, ok)
	}

	if len(a.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(a.Entries))
	}
	e := a.Entries[0]
	if e.Filename != "config.bin" || e.PackingMethod != 0 || e.OriginalSize != 5 ||
		e.DataSize != 5 || e.Timestamp != 1000 {
		t.Fatalf("entry = %+v", e)
	}

	if len(a.Signature) != 20 {
		t.Fatalf("signature len = %d, want 20", len(a.Signature))
	}
	for _, b := range a.Signature {
		if b != 0 {
			t.Fatalf("signature not all zero: %v", a.Signature)
		}
	}
}

func TestExtractFile(t *testing.T) {
	data := buildTestPBO(t)
	r := bytes.NewReader(data)
	a, err := Read(r)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	got, err := Extract(r, a.Entries[0])
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("Extract = %q, want hello", got)
	}
}

func TestEntryOffsetsMonotonic(t *testing.T) {
	var buf bytes.Buffer
	entries := []WriteEntry{
		{Filename: "a.bin", Data: []byte("aaa")},
		{Filename: "b.bin", Data: []byte("bbbbb")},
		{Filename: "c.bin", Data: []byte("c")},
	}
	if err := Write(&buf, nil, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	a, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(a.Entries) != 3 {
		t.Fatalf("entries = %d", len(a.Entries))
	}
	base := a.Entries[0].DataOffset
	if a.Entries[0].DataOffset != base {
		t.Fatalf("first offset mismatch")
	}
	if a.Entries[1].DataOffset != a.Entries[0].DataOffset+int64(a.Entries[0].DataSize) {
		t.Fatalf("second offset not contiguous: %+v", a.Entries)
	}
	if a.Entries[2].DataOffset != a.Entries[1].DataOffset+int64(a.Entries[1].DataSize) {
		t.Fatalf("third offset not contiguous: %+v", a.Entries)
	}
}

func TestReadMissingSignatureIsNotError(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, []WriteEntry{{Filename: "x.bin", Data: []byte("x")}}); err != nil {
		t.Fatal(err)
	}
	// Truncate off the trailing signature entirely.
	truncated := buf.Bytes()[:len(buf.Bytes())-21]
	a, err := Read(bytes.NewReader(truncated))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.Signature != nil {
		t.Fatalf("expected no signature, got %v", a.Signature)
	}
}
