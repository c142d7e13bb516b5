package binio

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderPrimitivesRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.U8(0xAB); err != nil {
		t.Fatal(err)
	}
	if err := w.U16(0x1234); err != nil {
		t.Fatal(err)
	}
	if err := w.U32(0xDEADBEEF); err != nil {
		t.Fatal(err)
	}
	if err := w.I32(-1); err != nil {
		t.Fatal(err)
	}
	if err := w.F32(3.5); err != nil {
		t.Fatal(err)
	}
	if err := w.ASCIIZ("hello"); err != nil {
		t.Fatal(err)
	}
	if err := w.Signature("ODOL"); err != nil {
		t.Fatal(err)
	}
	if err := w.CompressedInt(300); err != nil {
		t.Fatal(err)
	}

	r := NewReader(bytes.NewReader(buf.Bytes()))
	if v, err := r.U8(); err != nil || v != 0xAB {
		t.Fatalf("U8 = %v, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0x1234 {
		t.Fatalf("U16 = %v, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("U32 = %v, %v", v, err)
	}
	if v, err := r.I32(); err != nil || v != -1 {
		t.Fatalf("I32 = %v, %v", v, err)
	}
	if v, err := r.F32(); err != nil || v != 3.5 {
		t.Fatalf("F32 = %v, %v", v, err)
	}
	if v, err := r.ASCIIZ(); err != nil || v != "hello" {
		t.Fatalf("ASCIIZ = %q, %v", v, err)
	}
	if v, err := r.Signature(); err != nil || v != "ODOL" {
		t.Fatalf("Signature = %q, %v", v, err)
	}
	if v, err := r.CompressedInt(); err != nil || v != 300 {
		t.Fatalf("CompressedInt = %v, %v", v, err)
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01}))
	if _, err := r.U32(); !errors.Is(err, ErrShortRead) {
		t.Fatalf("want ErrShortRead, got %v", err)
	}
}

func TestASCIIZUnterminated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("noterm")))
	if _, err := r.ASCIIZ(); !errors.Is(err, ErrUnterminatedString) {
		t.Fatalf("want ErrUnterminatedString, got %v", err)
	}
}

func TestFixedStringTruncatesAtNUL(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte("ab\x00cd")))
	s, err := r.FixedString(5)
	if err != nil {
		t.Fatal(err)
	}
	if s != "ab" {
		t.Fatalf("FixedString = %q", s)
	}
}

func TestCompressedIntMultiByte(t *testing.T) {
	cases := []uint32{0, 1, 127, 128, 300, 1 << 20, 1 << 28}
	for _, v := range cases {
		var buf bytes.Buffer
		if err := NewWriter(&buf).CompressedInt(v); err != nil {
			t.Fatal(err)
		}
		got, err := NewReader(bytes.NewReader(buf.Bytes())).CompressedInt()
		if err != nil {
			t.Fatal(err)
		}
		if got != v {
			t.Fatalf("CompressedInt round trip: want %d got %d", v, got)
		}
	}
}
