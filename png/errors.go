package png

import (
	"errors"
	"fmt"
)

// Errors shared across the codec. Every protocol violation is surfaced to
// the immediate caller as a typed error; nothing is retried internally.
var (
	// ErrCRC reports a chunk whose stored CRC does not match the CRC
	// computed over its tag and body.
	ErrCRC = errors.New("png: chunk crc mismatch")

	// ErrSignature reports a stream that does not begin with the 8-byte
	// PNG signature.
	ErrSignature = errors.New("png: invalid signature")

	// ErrMissingPalette reports an indexed-color encode attempted without
	// a palette.
	ErrMissingPalette = errors.New("png: missing palette")
)

// ChunkIDError reports a chunk tag containing non-letter bytes.
type ChunkIDError struct {
	Bytes [4]byte
}

func (e *ChunkIDError) Error() string {
	return fmt.Sprintf("png: invalid chunk id: %02x %02x %02x %02x",
		e.Bytes[0], e.Bytes[1], e.Bytes[2], e.Bytes[3])
}

// ChunkIDLenError reports a chunk tag that is not exactly 4 bytes.
type ChunkIDLenError struct {
	Len int
}

func (e *ChunkIDLenError) Error() string {
	return fmt.Sprintf("png: invalid chunk id length: %d", e.Len)
}

// ChunkLenError reports a chunk whose declared length is invalid for its
// tag, such as an IHDR that is not 13 bytes.
type ChunkLenError struct {
	ID  ChunkID
	Len uint32
}

func (e *ChunkLenError) Error() string {
	return fmt.Sprintf("png: invalid chunk length: %s, %d bytes", e.ID, e.Len)
}

// ColorTypeError reports an IHDR color type byte outside {0,2,3,4,6}.
type ColorTypeError struct {
	Raw byte
}

func (e *ColorTypeError) Error() string {
	return fmt.Sprintf("png: invalid color type: %d", e.Raw)
}

// BitDepthError reports a bit depth that is not legal for the color type.
type BitDepthError struct {
	BitDepth  uint8
	ColorType ColorType
}

func (e *BitDepthError) Error() string {
	return fmt.Sprintf("png: invalid bit depth: %s %d", e.ColorType, e.BitDepth)
}

// CompressionMethodError reports an IHDR compression method byte other
// than 0.
type CompressionMethodError struct {
	Raw byte
}

func (e *CompressionMethodError) Error() string {
	return fmt.Sprintf("png: invalid compression method: %d", e.Raw)
}

// FilterMethodError reports an IHDR filter method byte other than 0.
type FilterMethodError struct {
	Raw byte
}

func (e *FilterMethodError) Error() string {
	return fmt.Sprintf("png: invalid filter method: %d", e.Raw)
}

// FilterByteError reports a scanline whose leading filter-type byte is
// outside 0-4.
type FilterByteError struct {
	Raw byte
}

func (e *FilterByteError) Error() string {
	return fmt.Sprintf("png: invalid filter row byte: %d", e.Raw)
}

// InterlaceMethodError reports an IHDR interlace method byte other than
// 0 or 1.
type InterlaceMethodError struct {
	Raw byte
}

func (e *InterlaceMethodError) Error() string {
	return fmt.Sprintf("png: invalid interlace method: %d", e.Raw)
}

// ImageSizeError reports image dimensions outside [1, 0x7fffffff].
type ImageSizeError struct {
	Width, Height int
}

func (e *ImageSizeError) Error() string {
	return fmt.Sprintf("png: invalid image size: %dx%d", e.Width, e.Height)
}

// DuplicateChunkError reports a second IHDR, PLTE, or IDAT group.
type DuplicateChunkError struct {
	ID ChunkID
}

func (e *DuplicateChunkError) Error() string {
	return fmt.Sprintf("png: duplicate chunk: %s", e.ID)
}

// MissingChunkError reports a required chunk that never appeared.
type MissingChunkError struct {
	ID ChunkID
}

func (e *MissingChunkError) Error() string {
	return fmt.Sprintf("png: missing chunk: %s", e.ID)
}

// CriticalChunkError reports an unrecognized chunk with the critical bit
// set. Unknown ancillary chunks are skipped; unknown critical chunks are
// fatal.
type CriticalChunkError struct {
	ID ChunkID
}

func (e *CriticalChunkError) Error() string {
	return fmt.Sprintf("png: unhandled critical chunk: %s", e.ID)
}

// UnexpectedChunkError reports a recognized chunk appearing where the
// ordering rules forbid it.
type UnexpectedChunkError struct {
	ID     ChunkID
	Detail string
}

func (e *UnexpectedChunkError) Error() string {
	return fmt.Sprintf("png: unexpected chunk (%s): %s", e.ID, e.Detail)
}

// WrongChunkError reports a chunk appearing in place of another, such as
// an IDAT before any IHDR.
type WrongChunkError struct {
	Expected, Found ChunkID
}

func (e *WrongChunkError) Error() string {
	return fmt.Sprintf("png: wrong chunk id: expected %s, found %s", e.Expected, e.Found)
}

// PaletteLenError reports a palette with fewer than 1 or more than 256
// entries, or a PLTE body that is not a multiple of 3 bytes.
type PaletteLenError struct {
	Len int
}

func (e *PaletteLenError) Error() string {
	return fmt.Sprintf("png: invalid palette length: %d", e.Len)
}
