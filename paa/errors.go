package paa

import "errors"

// PAA decode/encode errors. Use errors.Is to check.
var (
	// ErrNoMipmaps is returned when no mipmaps are found in the PAA file.
	ErrNoMipmaps = errors.New("paa: no mipmaps found")
	// ErrInvalidMagic is returned when the magic/format is invalid.
	ErrInvalidMagic = errors.New("paa: invalid magic/format")
	// ErrMissingSFFO is returned when the SFFO tag is missing.
	ErrMissingSFFO = errors.New("paa: missing SFFO tag")
	// ErrInsufficientData is returned when a mip's pixel payload is empty or shorter than its dimensions need.
	ErrInsufficientData = errors.New("paa: not enough pixel data")
	// ErrUnsupportedPixelFmt is returned when the pixel format is unsupported for decode or encode.
	ErrUnsupportedPixelFmt = errors.New("paa: unsupported pixel format")
	// ErrUnsupportedFormat is returned when the format is unsupported for conversion.
	ErrUnsupportedFormat = errors.New("paa: unsupported format for conversion")
	// ErrLZODecompress is returned when LZO decompression failed.
	ErrLZODecompress = errors.New("paa: LZO decompression failed")
	// ErrLZSSDecompress is returned when LZSS decompression failed.
	ErrLZSSDecompress = errors.New("paa: LZSS decompression failed")
	// ErrDXTDecode is returned when DXT decode failed.
	ErrDXTDecode = errors.New("paa: DXT decode failed")
	// ErrInvalidDimensions is returned when a width or height is zero, negative, beyond the
	// PAA uint16 range, or above MaxPaletteDimension for a palette-indexed file.
	ErrInvalidDimensions = errors.New("paa: invalid dimensions")
)
