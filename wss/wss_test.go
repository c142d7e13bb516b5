package wss

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func buildWSS0(compression uint32, channels, bps uint16, sampleRate uint32, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("WSS0")
	writeU32(&buf, compression)
	writeU16(&buf, 1) // format
	writeU16(&buf, channels)
	writeU32(&buf, sampleRate)
	writeU32(&buf, 0) // bytes/sec
	writeU16(&buf, 0) // block align
	writeU16(&buf, bps)
	writeU16(&buf, 0) // output size
	buf.Write(payload)
	return buf.Bytes()
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func TestReadWSSRawPCM(t *testing.T) {
	payload := []byte{0x01, 0x00, 0x02, 0x00} // two int16 LE samples
	data := buildWSS0(0, 1, 16, 44100, payload)
	a, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.Format != "PCM" || a.SampleRate != 44100 || a.Channels != 1 {
		t.Fatalf("a = %+v", a)
	}
	if !bytes.Equal(a.PCM, payload) {
		t.Fatalf("PCM = %v want %v", a.PCM, payload)
	}
}

func TestReadWSSNibbleADPCMMono(t *testing.T) {
	// Nibble 7 maps to a zero delta, so the stream decodes flat and silent.
	payload := []byte{0x77, 0x77, 0x77} // odd length forces Delta4 detection
	data := buildWSS0(0, 1, 16, 22050, payload)
	a, err := Read(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.Format != "Delta4" {
		t.Fatalf("format = %q, want Delta4", a.Format)
	}
	if len(a.PCM) != len(payload)*2*2 {
		t.Fatalf("PCM len = %d", len(a.PCM))
	}
}

func TestReadWAVBasic(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	writeU32(&buf, 0) // file size, unchecked
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	writeU32(&buf, 16)
	writeU16(&buf, 1) // PCM
	writeU16(&buf, 1) // mono
	writeU32(&buf, 8000)
	writeU32(&buf, 16000)
	writeU16(&buf, 2)
	writeU16(&buf, 16)

	pcm := []byte{0x10, 0x00, 0x20, 0x00}
	buf.WriteString("data")
	writeU32(&buf, uint32(len(pcm)))
	buf.Write(pcm)

	a, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if a.SampleRate != 8000 || a.Channels != 1 || a.BitsPerSample != 16 {
		t.Fatalf("a = %+v", a)
	}
	if !bytes.Equal(a.PCM, pcm) {
		t.Fatalf("PCM = %v want %v", a.PCM, pcm)
	}
}

func TestReadWAV8BitUpsampled(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	writeU32(&buf, 0)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	writeU32(&buf, 16)
	writeU16(&buf, 1)
	writeU16(&buf, 1)
	writeU32(&buf, 8000)
	writeU32(&buf, 8000)
	writeU16(&buf, 1)
	writeU16(&buf, 8)
	buf.WriteString("data")
	writeU32(&buf, 1)
	buf.WriteByte(128) // midpoint -> sample 0

	a, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(a.PCM) != 2 || a.PCM[0] != 0 || a.PCM[1] != 0 {
		t.Fatalf("PCM = %v", a.PCM)
	}
}

func TestUnknownSignature(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("JUNK"))); err == nil {
		t.Fatal("expected error for unknown signature")
	}
}
