// Package ogg reads just enough of an OGG/Vorbis stream's first three
// packets (identification, comment, setup) to expose channels, sample
// rate, encoder/comment strings, and a shallow codebook/floor summary.
// No audio synthesis is performed.
package ogg

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// ErrInvalidCapture is returned when an OGG page does not begin with
// the "OggS" capture pattern.
var ErrInvalidCapture = errors.New("ogg: invalid capture pattern")

// ErrNotVorbisID is returned when packet 0 is not a Vorbis
// identification header.
var ErrNotVorbisID = errors.New("ogg: not a Vorbis identification header")

// ErrNotVorbisComment is returned when packet 1 is not a Vorbis
// comment header.
var ErrNotVorbisComment = errors.New("ogg: not a Vorbis comment header")

// Codebook summarizes one Vorbis setup-header codebook.
type Codebook struct {
	Entries    int
	Dimensions int
	LookupType int
}

// Header is the subset of Vorbis header data this reader exposes.
type Header struct {
	Channels   int
	SampleRate int
	Encoder    string
	Comments   []string
	FloorType  int
	Codebooks  []Codebook
}

// page is one parsed OGG page: its segment table and reassembled body.
type page struct {
	segmentTable []byte
	body         []byte
	continued    bool
}

func readPage(r io.Reader) (*page, error) {
	var hdr [27]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("ogg: reading page header: %w", err)
	}
	if !bytes.Equal(hdr[:4], []byte("OggS")) {
		return nil, ErrInvalidCapture
	}

	p := &page{continued: hdr[5]&0x01 != 0}
	nSegments := int(hdr[26])
	p.segmentTable = make([]byte, nSegments)
	if _, err := io.ReadFull(r, p.segmentTable); err != nil {
		return nil, fmt.Errorf("ogg: reading segment table: %w", err)
	}

	bodySize := 0
	for _, s := range p.segmentTable {
		bodySize += int(s)
	}
	p.body = make([]byte, bodySize)
	if bodySize > 0 {
		if _, err := io.ReadFull(r, p.body); err != nil {
			return nil, fmt.Errorf("ogg: reading page body: %w", err)
		}
	}
	return p, nil
}

func extractPackets(p *page) [][]byte {
	var packets [][]byte
	var current []byte
	offset := 0
	for _, seg := range p.segmentTable {
		size := int(seg)
		current = append(current, p.body[offset:offset+size]...)
		offset += size
		if size < 255 {
			packets = append(packets, current)
			current = nil
		}
	}
	if len(current) > 0 {
		packets = append(packets, current)
	}
	return packets
}

// ReadHeader reads OGG pages from r until three Vorbis packets have
// accumulated, then parses identification, comment, and (best-effort)
// setup headers.
func ReadHeader(r io.Reader) (*Header, error) {
	var packets [][]byte
	for len(packets) < 3 {
		p, err := readPage(r)
		if err != nil {
			return nil, err
		}
		packets = append(packets, extractPackets(p)...)
	}

	if len(packets[0]) < 30 || packets[0][0] != 1 || string(packets[0][1:7]) != "vorbis" {
		return nil, ErrNotVorbisID
	}
	h := &Header{
		Channels:   int(packets[0][11]),
		SampleRate: int(packets[0][12]) | int(packets[0][13])<<8 | int(packets[0][14])<<16 | int(packets[0][15])<<24,
	}

	if len(packets[1]) < 7 || packets[1][0] != 3 || string(packets[1][1:7]) != "vorbis" {
		return nil, ErrNotVorbisComment
	}
	parseCommentHeader(packets[1][7:], h)

	if len(packets[2]) >= 7 && packets[2][0] == 5 && string(packets[2][1:7]) == "vorbis" {
		parseSetupHeader(packets[2][7:], h)
	}

	return h, nil
}

func parseCommentHeader(data []byte, h *Header) {
	if len(data) < 4 {
		return
	}
	vendorLen := int(data[0]) | int(data[1])<<8 | int(data[2])<<16 | int(data[3])<<24
	data = data[4:]
	if len(data) < vendorLen {
		return
	}
	h.Encoder = string(data[:vendorLen])
	data = data[vendorLen:]
	if len(data) < 4 {
		return
	}
	commentCount := int(data[0]) | int(data[1])<<8 | int(data[2])<<16 | int(data[3])<<24
	data = data[4:]
	for i := 0; i < commentCount && len(data) >= 4; i++ {
		clen := int(data[0]) | int(data[1])<<8 | int(data[2])<<16 | int(data[3])<<24
		data = data[4:]
		if len(data) < clen {
			break
		}
		h.Comments = append(h.Comments, string(data[:clen]))
		data = data[clen:]
	}
}

// bitReader is an LSB-first Vorbis-style bit packer reader.
type bitReader struct {
	data []byte
	pos  int // bit position
}

func (br *bitReader) readBits(n int) (uint32, bool) {
	if n == 0 {
		return 0, true
	}
	if n > 32 {
		return 0, false
	}
	var result uint32
	for i := 0; i < n; i++ {
		byteIdx := br.pos / 8
		bitIdx := br.pos % 8
		if byteIdx >= len(br.data) {
			return 0, false
		}
		if br.data[byteIdx]&(1<<uint(bitIdx)) != 0 {
			result |= 1 << uint(i)
		}
		br.pos++
	}
	return result, true
}

func ilog(v uint32) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}

func intPow(base, exp int) int64 {
	var result int64 = 1
	for i := 0; i < exp; i++ {
		result *= int64(base)
		if result < 0 {
			return math.MaxInt64
		}
	}
	return result
}

func lookup1Values(entries, dims int) int {
	if dims == 0 || entries == 0 {
		return 0
	}
	r := int(math.Floor(math.Pow(float64(entries), 1.0/float64(dims))))
	for intPow(r+1, dims) <= int64(entries) {
		r++
	}
	for r > 0 && intPow(r, dims) > int64(entries) {
		r--
	}
	return r
}

func parseCodebook(br *bitReader) (Codebook, bool) {
	var cb Codebook
	sync, ok := br.readBits(24)
	if !ok || sync != 0x564342 {
		return cb, false
	}
	dims, ok := br.readBits(16)
	if !ok {
		return cb, false
	}
	cb.Dimensions = int(dims)
	entries, ok := br.readBits(24)
	if !ok {
		return cb, false
	}
	cb.Entries = int(entries)

	ordered, ok := br.readBits(1)
	if !ok {
		return cb, false
	}

	if ordered == 0 {
		sparse, ok := br.readBits(1)
		if !ok {
			return cb, false
		}
		for i := 0; i < int(entries); i++ {
			if sparse == 1 {
				flag, ok := br.readBits(1)
				if !ok {
					return cb, false
				}
				if flag == 1 {
					br.readBits(5)
				}
			} else {
				br.readBits(5)
			}
		}
	} else {
		br.readBits(5)
		currentEntry := 0
		for currentEntry < int(entries) {
			bitsNeeded := ilog(uint32(int(entries) - currentEntry))
			num, ok := br.readBits(bitsNeeded)
			if !ok {
				return cb, false
			}
			currentEntry += int(num)
		}
	}

	lt, ok := br.readBits(4)
	if !ok {
		return cb, false
	}
	cb.LookupType = int(lt)

	if lt == 1 || lt == 2 {
		br.readBits(32)
		br.readBits(32)
		vbits, ok := br.readBits(4)
		if !ok {
			return cb, false
		}
		br.readBits(1)
		var lv int
		if lt == 1 {
			lv = lookup1Values(int(entries), int(dims))
		} else {
			lv = int(entries) * int(dims)
		}
		for i := 0; i < lv; i++ {
			br.readBits(int(vbits) + 1)
		}
	}

	return cb, true
}

func skipFloor0Config(br *bitReader) {
	br.readBits(8)
	br.readBits(16)
	br.readBits(16)
	br.readBits(6)
	br.readBits(8)
	nb, ok := br.readBits(4)
	if !ok {
		return
	}
	for i := 0; i < int(nb)+1; i++ {
		br.readBits(8)
	}
}

func skipFloor1Config(br *bitReader) {
	partitions, ok := br.readBits(5)
	if !ok {
		return
	}
	maxClass := -1
	classes := make([]int, partitions)
	for i := 0; i < int(partitions); i++ {
		c, ok := br.readBits(4)
		if !ok {
			return
		}
		classes[i] = int(c)
		if int(c) > maxClass {
			maxClass = int(c)
		}
	}
	classDims := make([]int, maxClass+1)
	for i := 0; i <= maxClass; i++ {
		d, ok := br.readBits(3)
		if !ok {
			return
		}
		classDims[i] = int(d) + 1
		sub, ok := br.readBits(2)
		if !ok {
			return
		}
		if sub > 0 {
			br.readBits(8)
		}
		for j := 0; j < (1 << sub); j++ {
			br.readBits(8)
		}
	}
	br.readBits(2)
	rb, ok := br.readBits(4)
	if !ok {
		return
	}
	for i := 0; i < int(partitions); i++ {
		for j := 0; j < classDims[classes[i]]; j++ {
			br.readBits(int(rb))
		}
	}
}

func parseSetupHeader(data []byte, h *Header) {
	br := &bitReader{data: data}
	cbCountRaw, ok := br.readBits(8)
	if !ok {
		return
	}
	cbCount := int(cbCountRaw) + 1

	for i := 0; i < cbCount; i++ {
		cb, ok := parseCodebook(br)
		if !ok {
			return
		}
		h.Codebooks = append(h.Codebooks, cb)
	}

	tdCount, ok := br.readBits(6)
	if !ok {
		return
	}
	for i := 0; i < int(tdCount)+1; i++ {
		br.readBits(16)
	}

	floorCount, ok := br.readBits(6)
	if !ok {
		return
	}
	for i := 0; i < int(floorCount)+1; i++ {
		ft, ok := br.readBits(16)
		if !ok {
			return
		}
		if int(ft) > h.FloorType {
			h.FloorType = int(ft)
		}
		switch ft {
		case 0:
			skipFloor0Config(br)
		case 1:
			skipFloor1Config(br)
		default:
			return
		}
	}
}

// preOneEncoderDates lists the beta-release date markers found in
// real pre-1.0 libVorbis encoder version strings.
var preOneEncoderDates = []string{
	"20000508", "20001031", "20010110", "20010225",
	"20010615", "20010813", "20011007", "20011231", "20020717",
}

// IsPreOneEncoder checks the vendor/encoder string against known
// pre-1.0 Vorbis encoder markers (beta tags and release dates), a
// heuristic for encoding-quirk detection.
func IsPreOneEncoder(encoder string) bool {
	lower := strings.ToLower(encoder)
	if strings.Contains(lower, "beta") {
		return true
	}
	if strings.Contains(lower, "xiphophorus") {
		return true
	}
	for _, d := range preOneEncoderDates {
		if strings.Contains(encoder, d) {
			return true
		}
	}
	return false
}

// Lookup1ValuesPrecisionRisk compares the float-based floor(entries^(1/dims))
// shortcut against the exact integer search lookup1Values uses, flagging
// codebooks where floating-point rounding would produce the wrong count.
func Lookup1ValuesPrecisionRisk(entries, dims int) bool {
	if dims == 0 || entries == 0 {
		return false
	}
	floatResult := int(math.Floor(math.Pow(float64(entries), 1.0/float64(dims))))
	intResult := lookup1Values(entries, dims)
	return floatResult != intResult
}
