package rapcfg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/armatools/rvtk/binio"
)

// buildSimpleConfig hand-assembles a minimal rapified file:
//
//	root (no parent) with one int variable "x" = 5 and one nested
//	class "Sub" (parent "") with a string variable "y" = "hi".
func buildSimpleConfig(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	bw := binio.NewWriter(&buf)

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("build: %v", err)
		}
	}

	must(bw.Bytes([]byte{0, 'r', 'a', 'P'}))
	// Pad to offset 16 (header is otherwise unused by this reader).
	must(bw.Bytes(make([]byte, 12)))

	// Root class body begins here (offset 16).
	must(bw.ASCIIZ(""))          // parent name
	must(bw.CompressedInt(2))    // 2 entries: variable + nested class

	// Entry 0: variable x=5 (subtype 2 = int)
	must(bw.U8(1))
	must(bw.U8(2))
	must(bw.ASCIIZ("x"))
	must(bw.I32(5))

	// Entry 1: nested class "Sub"
	must(bw.U8(0))
	must(bw.ASCIIZ("Sub"))
	nestedOffsetPos := buf.Len()
	must(bw.U32(0)) // placeholder, patched below

	continuation := buf.Len()
	nestedBodyOffset := uint32(continuation)

	// Nested class body.
	must(bw.ASCIIZ(""))       // parent
	must(bw.CompressedInt(1)) // 1 entry: variable
	must(bw.U8(1))
	must(bw.U8(0))
	must(bw.ASCIIZ("y"))
	must(bw.ASCIIZ("hi"))

	out := buf.Bytes()
	// Patch the nested class offset now that we know it.
	out[nestedOffsetPos] = byte(nestedBodyOffset)
	out[nestedOffsetPos+1] = byte(nestedBodyOffset >> 8)
	out[nestedOffsetPos+2] = byte(nestedBodyOffset >> 16)
	out[nestedOffsetPos+3] = byte(nestedBodyOffset >> 24)
	return out
}

func TestReadSimpleConfig(t *testing.T) {
	data := buildSimpleConfig(t)
	cfg, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(cfg.Root.Variables) != 1 || cfg.Root.Variables[0].Name != "x" {
		t.Fatalf("root variables = %+v", cfg.Root.Variables)
	}
	if cfg.Root.Variables[0].Value.Kind != KindInt || cfg.Root.Variables[0].Value.Int != 5 {
		t.Fatalf("x = %+v", cfg.Root.Variables[0].Value)
	}

	if len(cfg.Root.Classes) != 1 || cfg.Root.Classes[0].Name != "Sub" {
		t.Fatalf("nested classes = %+v", cfg.Root.Classes)
	}
	sub := cfg.Root.Classes[0]
	if len(sub.Variables) != 1 || sub.Variables[0].Name != "y" || sub.Variables[0].Value.Str != "hi" {
		t.Fatalf("sub.y = %+v", sub.Variables)
	}
}

func TestWriteTextRendersClassAndVariable(t *testing.T) {
	data := buildSimpleConfig(t)
	cfg, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	var out strings.Builder
	if err := WriteText(&out, cfg); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "x=5;") {
		t.Fatalf("missing x=5 in:\n%s", text)
	}
	if !strings.Contains(text, "class Sub") {
		t.Fatalf("missing class Sub in:\n%s", text)
	}
	if !strings.Contains(text, `y="hi";`) {
		t.Fatalf("missing y assignment in:\n%s", text)
	}
}

func TestReadInvalidSignature(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("JUNKJUNKJUNKJUNKJUNK"))); err == nil {
		t.Fatal("expected error for invalid signature")
	}
}
