package ogg

import (
	"bytes"
	"testing"
)

// writeOggPage writes one OGG page containing a single packet (must be
// under 255 bytes so the segment table terminates cleanly).
func writeOggPage(buf *bytes.Buffer, body []byte) {
	buf.WriteString("OggS")
	buf.WriteByte(0) // version
	buf.WriteByte(0) // header type (not continued)
	for i := 0; i < 8; i++ {
		buf.WriteByte(0) // granule position
	}
	for i := 0; i < 4; i++ {
		buf.WriteByte(0) // serial
	}
	for i := 0; i < 4; i++ {
		buf.WriteByte(0) // page sequence
	}
	for i := 0; i < 4; i++ {
		buf.WriteByte(0) // checksum
	}

	nFull := len(body) / 255
	rem := len(body) % 255
	segCount := nFull + 1
	buf.WriteByte(byte(segCount))
	for i := 0; i < nFull; i++ {
		buf.WriteByte(255)
	}
	buf.WriteByte(byte(rem))
	buf.Write(body)
}

func idPacket(channels byte, sampleRate uint32) []byte {
	p := make([]byte, 30)
	p[0] = 1
	copy(p[1:7], "vorbis")
	p[11] = channels
	p[12] = byte(sampleRate)
	p[13] = byte(sampleRate >> 8)
	p[14] = byte(sampleRate >> 16)
	p[15] = byte(sampleRate >> 24)
	return p
}

func commentPacket(vendor string, comments []string) []byte {
	var buf bytes.Buffer
	buf.WriteByte(3)
	buf.WriteString("vorbis")
	le32 := func(v uint32) {
		buf.WriteByte(byte(v))
		buf.WriteByte(byte(v >> 8))
		buf.WriteByte(byte(v >> 16))
		buf.WriteByte(byte(v >> 24))
	}
	le32(uint32(len(vendor)))
	buf.WriteString(vendor)
	le32(uint32(len(comments)))
	for _, c := range comments {
		le32(uint32(len(c)))
		buf.WriteString(c)
	}
	return buf.Bytes()
}

func TestReadHeaderIdentificationAndComment(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, idPacket(2, 44100))
	writeOggPage(&buf, commentPacket("libVorbis 1.3.7", []string{"TITLE=test"}))
	setup := make([]byte, 7)
	setup[0] = 5
	copy(setup[1:7], "vorbis")
	writeOggPage(&buf, setup)

	h, err := ReadHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if h.Channels != 2 || h.SampleRate != 44100 {
		t.Fatalf("h = %+v", h)
	}
	if h.Encoder != "libVorbis 1.3.7" {
		t.Fatalf("encoder = %q", h.Encoder)
	}
	if len(h.Comments) != 1 || h.Comments[0] != "TITLE=test" {
		t.Fatalf("comments = %v", h.Comments)
	}
}

func TestReadHeaderBadIdentification(t *testing.T) {
	var buf bytes.Buffer
	bad := make([]byte, 30)
	bad[0] = 1
	copy(bad[1:7], "XXXXXX")
	writeOggPage(&buf, bad)
	writeOggPage(&buf, commentPacket("x", nil))
	writeOggPage(&buf, []byte{5, 'v', 'o', 'r', 'b', 'i', 's'})

	if _, err := ReadHeader(bytes.NewReader(buf.Bytes())); err == nil {
		t.Fatal("expected error for bad identification packet")
	}
}

func TestIsPreOneEncoder(t *testing.T) {
	cases := map[string]bool{
		"Xiphophorus libVorbis I 20010813": true,
		"libVorbis 1.3.7":                  false,
		"beta4":                            true,
	}
	for in, want := range cases {
		if got := IsPreOneEncoder(in); got != want {
			t.Fatalf("IsPreOneEncoder(%q) = %v want %v", in, got, want)
		}
	}
}

func TestLookup1ValuesPrecisionRisk(t *testing.T) {
	if Lookup1ValuesPrecisionRisk(0, 2) {
		t.Fatal("entries=0 should never be a risk")
	}
	// A normal, exact case should not be flagged.
	if Lookup1ValuesPrecisionRisk(256, 2) {
		t.Fatal("unexpected precision risk for exact case")
	}
}
