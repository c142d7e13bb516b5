// Package lzss implements the byte-oriented LZSS variant used throughout
// Real Virtuality binary formats (PBO entries, PAA non-DXT mip payloads,
// rapified config arrays). It is the classic Haruhiko Okumura LZSS scheme:
// a bitmap of eight flag bits per group selects between raw literal bytes
// and 12-bit-distance/4-bit-length back references, followed by a trailing
// 4-byte running-sum checksum.
package lzss

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ChecksumMode selects how the trailing 4-byte checksum is accumulated.
type ChecksumMode int

const (
	// ChecksumUnsigned sums raw byte values (0..255). Used by most PBO entries.
	ChecksumUnsigned ChecksumMode = iota
	// ChecksumSigned sums bytes reinterpreted as signed int8. Used by PAA
	// non-DXT mip payloads written by BI's own tools.
	ChecksumSigned
	// ChecksumNone omits the trailing checksum entirely.
	ChecksumNone
)

var (
	// ErrUnexpectedEOF is returned when the input stream ends before
	// expectedSize bytes have been produced.
	ErrUnexpectedEOF = errors.New("lzss: unexpected end of input")
	// ErrChecksumMismatch is returned when the trailing checksum does not
	// match the accumulated sum, unless lenient mode is requested.
	ErrChecksumMismatch = errors.New("lzss: checksum mismatch")
	// ErrTruncatedChecksum is returned when fewer than 4 bytes remain for
	// the trailing checksum.
	ErrTruncatedChecksum = errors.New("lzss: truncated checksum")
)

// Options configures Decompress.
type Options struct {
	// Checksum selects how the trailing checksum (if any) is computed.
	Checksum ChecksumMode
	// Lenient, if true, ignores a checksum mismatch instead of failing.
	Lenient bool
	// VerifyChecksum, if false, does not read or validate a trailing
	// checksum at all (the caller already knows src contains no trailer).
	VerifyChecksum bool
}

// DefaultOptions returns unsigned-checksum, strict verification options.
func DefaultOptions() Options {
	return Options{Checksum: ChecksumUnsigned, VerifyChecksum: true}
}

// SignedLenientOptions returns signed-checksum options that do not fail on
// mismatch, matching the tolerance BI's own tools apply to PAA mip payloads.
func SignedLenientOptions() Options {
	return Options{Checksum: ChecksumSigned, VerifyChecksum: true, Lenient: true}
}

// NoChecksumOptions returns options for payloads with no trailing checksum
// (rapified config compressed arrays).
func NoChecksumOptions() Options {
	return Options{Checksum: ChecksumNone, VerifyChecksum: false}
}

// Decompress decodes expectedSize raw bytes from src using the flag-bitmap
// LZSS scheme. src may contain more bytes than consumed; only the prefix
// needed to reach expectedSize bytes of output (plus an optional trailing
// 4-byte checksum) is read.
func Decompress(src []byte, expectedSize int, opts Options) ([]byte, error) {
	out := make([]byte, expectedSize)
	outPos := 0
	ip := 0
	var sum uint32
	var flags uint32

	next := func() (byte, error) {
		if ip >= len(src) {
			return 0, ErrUnexpectedEOF
		}
		b := src[ip]
		ip++
		return b, nil
	}

	addSum := func(b byte) {
		if opts.Checksum == ChecksumSigned {
			sum += uint32(int32(int8(b)))
		} else {
			sum += uint32(b)
		}
	}

	remaining := expectedSize
	for remaining > 0 {
		flags >>= 1
		if flags&0x100 == 0 {
			b, err := next()
			if err != nil {
				return nil, err
			}
			flags = uint32(b) | 0xff00
		}

		if flags&0x01 != 0 {
			data, err := next()
			if err != nil {
				return nil, err
			}
			addSum(data)
			out[outPos] = data
			outPos++
			remaining--
			continue
		}

		b1, err := next()
		if err != nil {
			return nil, err
		}
		b2, err := next()
		if err != nil {
			return nil, err
		}

		rpos := int(b1) | (int(b2&0xf0) << 4)
		rlen := int(b2&0x0f) + 3

		for rpos > outPos && rlen > 0 {
			addSum(0x20)
			out[outPos] = 0x20
			outPos++
			remaining--
			rlen--
			if remaining == 0 {
				break
			}
		}
		if remaining == 0 {
			break
		}

		rpos = outPos - rpos
		for ; rlen > 0; rlen-- {
			data := out[rpos]
			rpos++
			addSum(data)
			out[outPos] = data
			outPos++
			remaining--
			if remaining == 0 {
				break
			}
		}
	}

	if opts.Checksum != ChecksumNone && opts.VerifyChecksum {
		if ip+4 > len(src) {
			return nil, ErrTruncatedChecksum
		}
		checksum := binary.LittleEndian.Uint32(src[ip : ip+4])
		if checksum != sum && !opts.Lenient {
			return nil, fmt.Errorf("%w: expected %#08x, got %#08x", ErrChecksumMismatch, checksum, sum)
		}
	}

	return out, nil
}

// DecompressOrRaw mirrors the original tool's heuristic: payloads shorter
// than 1024 bytes are stored raw rather than LZSS-compressed.
func DecompressOrRaw(src []byte, expectedSize int) ([]byte, error) {
	if expectedSize < 1024 {
		if len(src) < expectedSize {
			return nil, ErrUnexpectedEOF
		}
		out := make([]byte, expectedSize)
		copy(out, src[:expectedSize])
		return out, nil
	}
	return Decompress(src, expectedSize, DefaultOptions())
}

// DecompressAuto decompresses a buffer of unknown uncompressed size, reading
// until all but the trailing 4-byte checksum has been consumed. Returns nil
// if the checksum does not match (no size is known up front to distinguish
// "truncated" from "corrupt").
func DecompressAuto(src []byte) []byte {
	if len(src) < 5 {
		return nil
	}

	out := make([]byte, 0, len(src)*2)
	ip := 0
	var sum uint32
	var flags uint32
	dataEnd := len(src) - 4

	for ip < dataEnd {
		flags >>= 1
		if flags&0x100 == 0 {
			if ip >= dataEnd {
				break
			}
			flags = uint32(src[ip]) | 0xff00
			ip++
		}

		if flags&0x01 != 0 {
			if ip >= dataEnd {
				break
			}
			data := src[ip]
			ip++
			sum += uint32(data)
			out = append(out, data)
			continue
		}

		if ip+1 >= dataEnd {
			break
		}
		b1 := src[ip]
		b2 := src[ip+1]
		ip += 2

		rpos := int(b1) | (int(b2&0xf0) << 4)
		rlen := int(b2&0x0f) + 3

		for rpos > len(out) && rlen > 0 {
			sum += 0x20
			out = append(out, 0x20)
			rlen--
		}

		rpos = len(out) - rpos
		for ; rlen > 0; rlen-- {
			data := out[rpos]
			rpos++
			sum += uint32(data)
			out = append(out, data)
		}
	}

	checksum := binary.LittleEndian.Uint32(src[dataEnd : dataEnd+4])
	if checksum != sum {
		return nil
	}
	return out
}
