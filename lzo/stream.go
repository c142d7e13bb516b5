package lzo

import (
	"bufio"
	"io"
)

// streamSource adapts a buffered reader to source, for callers that know
// only the decompressed size: the compressed length is whatever the
// decoder consumes to reach it, discovered as decoding proceeds.
type streamSource struct {
	br *bufio.Reader
}

func (s *streamSource) readByte() (byte, bool) {
	b, err := s.br.ReadByte()
	if err != nil {
		return 0, false
	}
	return b, true
}

func (s *streamSource) peekByte(offset int) (byte, bool) {
	buf, err := s.br.Peek(offset + 1)
	if err != nil {
		return 0, false
	}
	return buf[offset], true
}

// DecompressStream decodes an LZO1X-1 stream read directly from r,
// consuming exactly the compressed bytes needed to produce expectedSize
// decompressed bytes and leaving r positioned right after them. Used
// where the wire format gives no explicit compressed-length field (P3D's
// ODOL v44+ compressed arrays). r must be seekable because the internal
// read-ahead buffer typically pulls in more bytes than the decoder
// actually consumes; the surplus is seeked back off before returning.
func DecompressStream(r io.ReadSeeker, expectedSize int) (out []byte, err error) {
	if expectedSize == 0 {
		return []byte{}, nil
	}
	br := bufio.NewReaderSize(r, 256)
	d := &decoder{src: &streamSource{br: br}, out: make([]byte, expectedSize), size: expectedSize}

	defer func() {
		if rec := recover(); rec != nil {
			de, ok := rec.(decodeError)
			if !ok {
				panic(rec)
			}
			err = de.err
			out = nil
		}
		if unread := br.Buffered(); unread > 0 {
			if _, serr := r.Seek(-int64(unread), io.SeekCurrent); serr != nil && err == nil {
				err = serr
			}
		}
	}()

	d.run()
	return d.out, nil
}
