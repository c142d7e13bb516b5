// Package pbo reads (and, for testability, writes) Real Virtuality PBO
// archives: a flat sequence of file entries with an optional extension
// block and an optional trailing SHA-1 signature.
package pbo

import (
	"errors"
	"fmt"
	"io"

	"github.com/armatools/rvtk/binio"
	"github.com/armatools/rvtk/lzss"
)

// versSentinel is the packing_method value ("Vers") that marks the
// extension header record rather than a file entry.
const versSentinel = 0x56657273

var (
	// ErrExtensionNotFirst is returned when a "Vers" sentinel record
	// appears anywhere but the first directory record.
	ErrExtensionNotFirst = errors.New("pbo: extension header not in first position")
	// ErrEntryNotCompressed reports an entry that is not compressed. No
	// function in this package returns it.
	ErrEntryNotCompressed = errors.New("pbo: entry is not compressed")
)

// Entry describes one file record in a PBO directory.
type Entry struct {
	Filename      string
	PackingMethod uint32
	OriginalSize  uint32
	Reserved      uint32
	Timestamp     uint32
	DataSize      uint32
	DataOffset    int64
}

// Compressed reports whether the entry's stored bytes require LZSS
// decompression to recover OriginalSize bytes.
func (e Entry) Compressed() bool {
	return e.PackingMethod != 0 && e.OriginalSize > 0 && e.DataSize != e.OriginalSize
}

// Archive is a parsed PBO directory: ordered entries, the extension
// key/value map, and an optional 20-byte trailing signature.
type Archive struct {
	Extensions map[string]string
	Entries    []Entry
	Signature  []byte // 20 bytes when present, nil otherwise
}

// Prefix returns the "prefix" extension value and whether it was present.
func (a *Archive) Prefix() (string, bool) {
	p, ok := a.Extensions["prefix"]
	return p, ok
}

// Read parses a PBO directory from r, which must support Seek (the
// entry walk needs the post-directory offset as the data base, and
// Extract reseeks per entry).
func Read(r io.ReadSeeker) (*Archive, error) {
	br := binio.NewReader(r)
	extensions := make(map[string]string)
	var entries []Entry
	first := true

directory:
	for {
		filename, err := br.ASCIIZ()
		if err != nil {
			return nil, fmt.Errorf("pbo: reading entry filename: %w", err)
		}
		packingMethod, err := br.U32()
		if err != nil {
			return nil, fmt.Errorf("pbo: reading packing method: %w", err)
		}
		originalSize, err := br.U32()
		if err != nil {
			return nil, fmt.Errorf("pbo: reading original size: %w", err)
		}
		reserved, err := br.U32()
		if err != nil {
			return nil, fmt.Errorf("pbo: reading reserved: %w", err)
		}
		timestamp, err := br.U32()
		if err != nil {
			return nil, fmt.Errorf("pbo: reading timestamp: %w", err)
		}
		dataSize, err := br.U32()
		if err != nil {
			return nil, fmt.Errorf("pbo: reading data size: %w", err)
		}

		switch {
		case packingMethod == versSentinel:
			if !first {
				return nil, ErrExtensionNotFirst
			}
			for {
				key, err := br.ASCIIZ()
				if err != nil {
					return nil, fmt.Errorf("pbo: reading extension key: %w", err)
				}
				if key == "" {
					break
				}
				val, err := br.ASCIIZ()
				if err != nil {
					return nil, fmt.Errorf("pbo: reading extension value: %w", err)
				}
				extensions[key] = val
			}
		case filename == "":
			first = false
			break directory
		default:
			entries = append(entries, Entry{
				Filename:      filename,
				PackingMethod: packingMethod,
				OriginalSize:  originalSize,
				Reserved:      reserved,
				Timestamp:     timestamp,
				DataSize:      dataSize,
			})
		}
		first = false
	}

	dataBase, err := br.Pos()
	if err != nil {
		return nil, fmt.Errorf("pbo: locating data base: %w", err)
	}

	offset := dataBase
	for i := range entries {
		entries[i].DataOffset = offset
		offset += int64(entries[i].DataSize)
	}

	if _, err := br.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("pbo: seeking past file data: %w", err)
	}

	var signature []byte
	if zero, err := br.U8(); err == nil && zero == 0 {
		if sig, err := br.Bytes(20); err == nil {
			signature = sig
		}
	}

	return &Archive{Extensions: extensions, Entries: entries, Signature: signature}, nil
}

// Extract reads entry's bytes from r (seeking to entry.DataOffset
// first), decompressing via unsigned-checksum LZSS when the entry is
// flagged compressed.
func Extract(r io.ReadSeeker, entry Entry) ([]byte, error) {
	if _, err := r.Seek(entry.DataOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("pbo: seeking to %s at offset %d: %w", entry.Filename, entry.DataOffset, err)
	}

	if entry.Compressed() {
		compressed := make([]byte, entry.DataSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("pbo: reading compressed %s: %w", entry.Filename, err)
		}
		out, err := lzss.Decompress(compressed, int(entry.OriginalSize), lzss.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("pbo: decompressing %s: %w", entry.Filename, err)
		}
		return out, nil
	}

	buf := make([]byte, entry.DataSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("pbo: extracting %s: %w", entry.Filename, err)
	}
	return buf, nil
}
