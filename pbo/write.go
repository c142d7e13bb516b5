package pbo

import (
	"io"

	"github.com/armatools/rvtk/binio"
)

// WriteEntry is the in-memory description of one file to pack.
type WriteEntry struct {
	Filename  string
	Timestamp uint32
	Data      []byte
}

// Write serializes extensions and entries (uncompressed, packing
// method 0) to w in the canonical PBO layout: optional extension
// header, entry directory, end-of-directory marker, concatenated file
// data, and a zero-filled 20-byte trailing signature. It exists for
// round-trip testing; production archives are produced by BI's own
// packer.
func Write(w io.Writer, extensions map[string]string, entries []WriteEntry) error {
	bw := binio.NewWriter(w)

	if len(extensions) > 0 {
		if err := bw.ASCIIZ(""); err != nil {
			return err
		}
		if err := bw.U32(versSentinel); err != nil {
			return err
		}
		for _, v := range [4]uint32{0, 0, 0, 0} {
			if err := bw.U32(v); err != nil {
				return err
			}
		}
		for k, v := range extensions {
			if err := bw.ASCIIZ(k); err != nil {
				return err
			}
			if err := bw.ASCIIZ(v); err != nil {
				return err
			}
		}
		if err := bw.ASCIIZ(""); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if err := bw.ASCIIZ(e.Filename); err != nil {
			return err
		}
		if err := bw.U32(0); err != nil { // packing_method
			return err
		}
		if err := bw.U32(uint32(len(e.Data))); err != nil { // original_size
			return err
		}
		if err := bw.U32(0); err != nil { // reserved
			return err
		}
		if err := bw.U32(e.Timestamp); err != nil {
			return err
		}
		if err := bw.U32(uint32(len(e.Data))); err != nil { // data_size
			return err
		}
	}

	// End-of-directory marker.
	if err := bw.ASCIIZ(""); err != nil {
		return err
	}
	for i := 0; i < 5; i++ {
		if err := bw.U32(0); err != nil {
			return err
		}
	}

	for _, e := range entries {
		if err := bw.Bytes(e.Data); err != nil {
			return err
		}
	}

	if err := bw.U8(0); err != nil {
		return err
	}
	return bw.Bytes(make([]byte, 20))
}
