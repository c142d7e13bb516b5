package lzss

import (
	"encoding/binary"
	"fmt"
	"io"
)

// DecompressStream decodes expectedSize raw bytes directly from r using
// the flag-bitmap LZSS scheme, reading one byte at a time and consuming
// no more input than the decode plus its trailing 4-byte checksum
// requires. Unlike Decompress, the caller does not need to know the
// compressed length up front -- only how many decompressed bytes to
// produce -- matching P3D's framing of compressed arrays inside a larger
// seekable file.
func DecompressStream(r io.Reader, expectedSize int) ([]byte, error) {
	out := make([]byte, expectedSize)
	outPos := 0
	var sum uint32
	var flags uint32

	var b [1]byte
	next := func() (byte, error) {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return 0, ErrUnexpectedEOF
		}
		return b[0], nil
	}

	remaining := expectedSize
	for remaining > 0 {
		flags >>= 1
		if flags&0x100 == 0 {
			v, err := next()
			if err != nil {
				return nil, err
			}
			flags = uint32(v) | 0xff00
		}

		if flags&0x01 != 0 {
			data, err := next()
			if err != nil {
				return nil, err
			}
			sum += uint32(data)
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
			sum += 0x20
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
			sum += uint32(data)
			out[outPos] = data
			outPos++
			remaining--
			if remaining == 0 {
				break
			}
		}
	}

	var cbuf [4]byte
	if _, err := io.ReadFull(r, cbuf[:]); err != nil {
		return nil, ErrTruncatedChecksum
	}
	checksum := binary.LittleEndian.Uint32(cbuf[:])
	if checksum != sum {
		return nil, fmt.Errorf("%w: expected %#08x, got %#08x", ErrChecksumMismatch, checksum, sum)
	}

	return out, nil
}

// DecompressStreamOrRaw mirrors DecompressOrRaw for a non-seekable-length
// stream source: payloads shorter than 1024 bytes are stored raw (no
// checksum) rather than LZSS-compressed.
func DecompressStreamOrRaw(r io.Reader, expectedSize int) ([]byte, error) {
	if expectedSize < 1024 {
		out := make([]byte, expectedSize)
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, ErrUnexpectedEOF
		}
		return out, nil
	}
	return DecompressStream(r, expectedSize)
}
