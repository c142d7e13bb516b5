// Package wss decodes Bohemia WSS0 audio headers (with nibble/byte
// ADPCM decompression to PCM16) and standard RIFF/WAVE fmt+data
// chunks.
package wss

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrUnsupportedCompression is returned for a WSS0 compression type
// other than 0 (PCM), 4 (nibble ADPCM), or 8 (byte ADPCM).
var ErrUnsupportedCompression = errors.New("wss: unsupported compression type")

// ErrUnsupportedFormat is returned for a RIFF audio_format other than 1
// (PCM) or a bits-per-sample other than 8/16.
var ErrUnsupportedFormat = errors.New("wss: unsupported format")

// ErrMissingChunk is returned when a RIFF file lacks a required fmt or
// data chunk.
var ErrMissingChunk = errors.New("wss: missing required chunk")

// ErrUnknownSignature is returned when the leading 4 bytes are neither
// "WSS0" nor "RIFF".
var ErrUnknownSignature = errors.New("wss: unknown format signature")

// Audio is the decoded header metadata and 16-bit interleaved PCM
// payload extracted from a WSS or WAV stream.
type Audio struct {
	SampleRate    uint32
	Channels      uint16
	BitsPerSample uint16
	Format        string // "PCM", "Delta8", "Delta4"
	PCM           []byte // 16-bit signed LE, interleaved
	Duration      float64
}

// Read dispatches on the leading 4-byte signature to readWSS or readWAV.
func Read(r io.Reader) (*Audio, error) {
	var sig [4]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, fmt.Errorf("wss: reading signature: %w", err)
	}
	switch string(sig[:]) {
	case "WSS0":
		return readWSS(r)
	case "RIFF":
		return readWAV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSignature, sig[:])
	}
}

func readWSS(r io.Reader) (*Audio, error) {
	compressionRaw, err := readU32(r)
	if err != nil {
		return nil, fmt.Errorf("wss: reading compression: %w", err)
	}
	if _, err := readU16(r); err != nil { // format
		return nil, err
	}
	channels, err := readU16(r)
	if err != nil {
		return nil, err
	}
	sampleRate, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if _, err := readU32(r); err != nil { // bytes/sec
		return nil, err
	}
	if _, err := readU16(r); err != nil { // block align
		return nil, err
	}
	bps, err := readU16(r)
	if err != nil {
		return nil, err
	}
	if _, err := readU16(r); err != nil { // output size
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("wss: reading payload: %w", err)
	}

	compression := compressionRaw & 0xFF
	if compression == 0 && len(data)%2 != 0 {
		compression = 4
	}

	var pcm []byte
	var format string
	switch compression {
	case 0:
		pcm, format = data, "PCM"
	case 8:
		pcm, format = decompressChannels(data, int(channels), decompressByteMono), "Delta8"
	case 4:
		pcm, format = decompressChannels(data, int(channels), decompressNibbleMono), "Delta4"
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, compression)
	}

	return newAudio(sampleRate, channels, bps, format, pcm), nil
}

func readWAV(r io.Reader) (*Audio, error) {
	if _, err := readU32(r); err != nil { // file size
		return nil, err
	}
	wave, err := readSignature(r)
	if err != nil {
		return nil, err
	}
	if wave != "WAVE" {
		return nil, fmt.Errorf("wss: expected WAVE, got %q", wave)
	}

	var audioFormat, channels, bps uint16
	var sampleRate uint32
	var rawData []byte
	gotFmt, gotData := false, false

	for {
		chunkID, err := readSignature(r)
		if err != nil {
			break
		}
		chunkSize, err := readU32(r)
		if err != nil {
			return nil, fmt.Errorf("wss: reading chunk size: %w", err)
		}

		switch chunkID {
		case "fmt ":
			audioFormat, err = readU16(r)
			if err != nil {
				return nil, err
			}
			channels, err = readU16(r)
			if err != nil {
				return nil, err
			}
			sampleRate, err = readU32(r)
			if err != nil {
				return nil, err
			}
			if _, err := readU32(r); err != nil { // bytes/sec
				return nil, err
			}
			if _, err := readU16(r); err != nil { // block align
				return nil, err
			}
			bps, err = readU16(r)
			if err != nil {
				return nil, err
			}
			if chunkSize > 16 {
				if _, err := readSkip(r, int(chunkSize-16)); err != nil {
					return nil, err
				}
			}
			gotFmt = true
		case "data":
			rawData, err = readBytes(r, int(chunkSize))
			if err != nil {
				return nil, fmt.Errorf("wss: reading data chunk: %w", err)
			}
			gotData = true
		default:
			if _, err := readSkip(r, int(chunkSize)); err != nil {
				return nil, err
			}
		}
		if chunkSize%2 != 0 {
			if _, err := readSkip(r, 1); err != nil {
				break
			}
		}
	}

	if !gotFmt || !gotData {
		return nil, fmt.Errorf("%w: fmt=%v data=%v", ErrMissingChunk, gotFmt, gotData)
	}
	if audioFormat != 1 {
		return nil, fmt.Errorf("%w: audio_format=%d", ErrUnsupportedFormat, audioFormat)
	}

	var pcm []byte
	switch bps {
	case 16:
		pcm = rawData
	case 8:
		pcm = make([]byte, len(rawData)*2)
		for i, b := range rawData {
			sample := int16((int16(b) - 128) * 256)
			pcm[i*2] = byte(uint16(sample))
			pcm[i*2+1] = byte(uint16(sample) >> 8)
		}
	default:
		return nil, fmt.Errorf("%w: bits_per_sample=%d", ErrUnsupportedFormat, bps)
	}

	return newAudio(sampleRate, channels, bps, "PCM", pcm), nil
}

func newAudio(sampleRate uint32, channels, bps uint16, format string, pcm []byte) *Audio {
	a := &Audio{SampleRate: sampleRate, Channels: channels, BitsPerSample: bps, Format: format, PCM: pcm}
	numSamples := len(pcm) / 2
	if channels > 0 && sampleRate > 0 {
		a.Duration = float64(numSamples) / float64(channels) / float64(sampleRate)
	}
	return a
}

func readU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readSignature(r io.Reader) (string, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return "", err
	}
	return string(buf[:]), nil
}

func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if n == 0 {
		return buf, nil
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func readSkip(r io.Reader, n int) (int64, error) {
	return io.CopyN(io.Discard, r, int64(n))
}

// byteMagic is the exponential-law scale factor used by the 8-bit
// ("Delta8") ADPCM variant.
var byteMagic = math.Log(10.0) * math.Log2(math.E) / 28.12574042515172

func decompressByteMono(data []byte) []int16 {
	out := make([]int16, len(data))
	var last int16
	for i, b := range data {
		src := int8(b)
		if src != 0 {
			af := math.Abs(float64(src)) * byteMagic
			rnd := math.Round(af)
			af = math.Pow(2.0, af-rnd) * math.Pow(2.0, rnd)
			if src < 0 {
				af = -af
			}
			v := int64(math.Round(af)) + int64(last)
			last = clampI16(v)
		}
		out[i] = last
	}
	return out
}

// pcmIndex is the fixed 15-entry nibble delta table; index 15 is
// reserved and skipped.
var pcmIndex = [15]int16{-8192, -4096, -2048, -1024, -512, -256, -64, 0, 64, 256, 512, 1024, 2048, 4096, 8192}

func decompressNibbleMono(data []byte) []int16 {
	out := make([]int16, 0, len(data)*2)
	var delta int32
	for _, b := range data {
		hi := int(b>>4) & 0x0F
		lo := int(b) & 0x0F
		if hi < 15 {
			delta += int32(pcmIndex[hi])
		}
		out = append(out, clampI16(int64(delta)))
		if lo < 15 {
			delta += int32(pcmIndex[lo])
		}
		out = append(out, clampI16(int64(delta)))
	}
	return out
}

func clampI16(v int64) int16 {
	if v < math.MinInt16 {
		return math.MinInt16
	}
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(v)
}

func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		v := uint16(s)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

func decompressChannels(data []byte, channels int, decompress func([]byte) []int16) []byte {
	if channels <= 1 {
		return samplesToBytes(decompress(data))
	}

	chData := make([][]byte, channels)
	for i, b := range data {
		ch := i % channels
		chData[ch] = append(chData[ch], b)
	}

	chSamples := make([][]int16, channels)
	maxLen := 0
	for ch := 0; ch < channels; ch++ {
		chSamples[ch] = decompress(chData[ch])
		if len(chSamples[ch]) > maxLen {
			maxLen = len(chSamples[ch])
		}
	}

	out := make([]byte, maxLen*channels*2)
	for i := 0; i < maxLen; i++ {
		for ch := 0; ch < channels; ch++ {
			cs := chSamples[ch]
			if i < len(cs) {
				off := (i*channels + ch) * 2
				v := uint16(cs[i])
				out[off] = byte(v)
				out[off+1] = byte(v >> 8)
			}
		}
	}
	return out
}
