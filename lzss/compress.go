package lzss

const (
	windowSize  = 4096 // N: max back-reference distance
	maxMatchLen = 18   // F: max match length per reference
	threshold   = 2    // min match length is threshold+1 = 3
)

// CompressOptions configures Compress.
type CompressOptions struct {
	// Checksum selects the trailing checksum mode (default ChecksumUnsigned).
	Checksum ChecksumMode
	// SearchLimit bounds how many candidate distances findMatch scans per
	// position. Zero means unbounded (full window search). BI's own
	// repacker effectively behaves like a bounded search; a limit trades
	// compression ratio for speed on large payloads.
	SearchLimit int
}

// Compress encodes data with the flag-bitmap LZSS scheme, appending a
// trailing checksum unless opts.Checksum is ChecksumNone.
func Compress(data []byte, opts *CompressOptions) ([]byte, error) {
	mode := ChecksumUnsigned
	limit := 0
	if opts != nil {
		mode = opts.Checksum
		limit = opts.SearchLimit
	}

	out := make([]byte, 0, len(data)+len(data)/8+8)
	var sum uint32
	pos := 0

	for pos < len(data) {
		flagPos := len(out)
		out = append(out, 0)
		var flags byte

		for bit := 0; bit < 8 && pos < len(data); bit++ {
			dist, matchLen := findMatch(data, pos, limit)

			if matchLen >= threshold+1 {
				rposEnc := uint16(dist) & 0xfff
				rlenEnc := byte(matchLen - 3)
				b1 := byte(rposEnc & 0xff)
				b2 := byte((rposEnc>>4)&0xf0) | rlenEnc
				out = append(out, b1, b2)

				for i := 0; i < matchLen; i++ {
					sum += sumByte(data[pos+i], mode)
				}
				pos += matchLen
			} else {
				b := data[pos]
				sum += sumByte(b, mode)
				out = append(out, b)
				flags |= 1 << uint(bit)
				pos++
			}
		}

		out[flagPos] = flags
	}

	if mode != ChecksumNone {
		var trailer [4]byte
		trailer[0] = byte(sum)
		trailer[1] = byte(sum >> 8)
		trailer[2] = byte(sum >> 16)
		trailer[3] = byte(sum >> 24)
		out = append(out, trailer[:]...)
	}

	return out, nil
}

func sumByte(b byte, mode ChecksumMode) uint32 {
	if mode == ChecksumSigned {
		return uint32(int32(int8(b)))
	}
	return uint32(b)
}

// findMatch searches data[:pos] for the longest match against data[pos:],
// allowing overlapping matches (distance < length) the way the decoder's
// byte-by-byte copy loop supports. Returns (distance, length); length is
// zero when no match meets the minimum threshold.
func findMatch(data []byte, pos int, searchLimit int) (dist int, length int) {
	maxDist := pos
	if maxDist > windowSize-1 {
		maxDist = windowSize - 1
	}
	maxLen := len(data) - pos
	if maxLen > maxMatchLen {
		maxLen = maxMatchLen
	}
	if maxLen < threshold+1 {
		return 0, 0
	}

	bestDist, bestLen := 0, 0
	tries := maxDist
	if searchLimit > 0 && searchLimit < tries {
		tries = searchLimit
	}

	for d := 1; d <= tries; d++ {
		matchStart := pos - d
		matchLen := 0
		for matchLen < maxLen {
			if data[matchStart+(matchLen%d)] != data[pos+matchLen] {
				break
			}
			matchLen++
		}
		if matchLen > bestLen {
			bestLen = matchLen
			bestDist = d
			if bestLen == maxLen {
				break
			}
		}
	}

	if bestLen < threshold+1 {
		return 0, 0
	}
	return bestDist, bestLen
}
