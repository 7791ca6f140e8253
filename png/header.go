package png

import (
	"encoding/binary"
	"io"

	"github.com/daggerbot/axis/pixel"
)

const (
	ihdrLength    = 13
	maxDimension  = 0x7fffffff
	maxPaletteLen = 256
)

// pngSignature is the 8-byte sequence at the start of every PNG stream.
var pngSignature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ColorType is the channel layout of a pixel, as per the PNG spec.
type ColorType uint8

const (
	ColorGray      ColorType = 0
	ColorRGB       ColorType = 2
	ColorIndex     ColorType = 3
	ColorGrayAlpha ColorType = 4
	ColorRGBAlpha  ColorType = 6
)

// ParseColorType validates the IHDR color type byte.
func ParseColorType(raw byte) (ColorType, error) {
	switch raw {
	case 0, 2, 3, 4, 6:
		return ColorType(raw), nil
	default:
		return 0, &ColorTypeError{Raw: raw}
	}
}

func (ct ColorType) String() string {
	switch ct {
	case ColorGray:
		return "gray"
	case ColorRGB:
		return "rgb"
	case ColorIndex:
		return "index"
	case ColorGrayAlpha:
		return "gray alpha"
	case ColorRGBAlpha:
		return "rgb alpha"
	default:
		return "unknown"
	}
}

// ChannelCount returns the number of channels in each pixel.
func (ct ColorType) ChannelCount() int {
	switch ct {
	case ColorGray, ColorIndex:
		return 1
	case ColorGrayAlpha:
		return 2
	case ColorRGB:
		return 3
	case ColorRGBAlpha:
		return 4
	default:
		panic("png: unreachable color type")
	}
}

// CheckBitDepth reports whether the bit depth is legal for the color
// type: Gray {1,2,4,8,16}; Index {1,2,4,8}; everything else {8,16}.
func (ct ColorType) CheckBitDepth(bitDepth uint8) error {
	ok := false
	switch ct {
	case ColorGray:
		ok = bitDepth == 1 || bitDepth == 2 || bitDepth == 4 || bitDepth == 8 || bitDepth == 16
	case ColorIndex:
		ok = bitDepth == 1 || bitDepth == 2 || bitDepth == 4 || bitDepth == 8
	case ColorRGB, ColorGrayAlpha, ColorRGBAlpha:
		ok = bitDepth == 8 || bitDepth == 16
	}
	if !ok {
		return &BitDepthError{BitDepth: bitDepth, ColorType: ct}
	}
	return nil
}

// Header is the decoded contents of the IHDR chunk. It is parsed once per
// stream and immutable thereafter.
type Header struct {
	BitDepth          uint8
	ColorType         ColorType
	CompressionMethod CompressionMethod
	FilterMethod      FilterMethod
	Width, Height     int
	InterlaceMethod   InterlaceMethod
}

func (h *Header) validateSize() error {
	if h.Width < 1 || h.Width > maxDimension || h.Height < 1 || h.Height > maxDimension {
		return &ImageSizeError{Width: h.Width, Height: h.Height}
	}
	return nil
}

// Palette is an ordered sequence of RGB8 entries, 1 to 256 long. It is
// present exactly once, and only for indexed-color images.
type Palette []pixel.RGB[uint8]

func (p Palette) validate() error {
	if len(p) == 0 || len(p) > maxPaletteLen {
		return &PaletteLenError{Len: len(p)}
	}
	return nil
}

// ReadSignature reads and checks the PNG file signature.
func ReadSignature(r io.Reader) error {
	var sig [len(pngSignature)]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return err
	}
	if sig != pngSignature {
		return ErrSignature
	}
	return nil
}

// WriteSignature writes the PNG file signature.
func WriteSignature(w io.Writer) error {
	_, err := w.Write(pngSignature[:])
	return err
}

// ReadIHDR decodes and validates the 13-byte IHDR body from an open chunk
// reader, consuming the chunk through its CRC.
func ReadIHDR(chunk *ChunkReader) (Header, error) {
	if chunk.ChunkID() != IHDR {
		return Header{}, &WrongChunkError{Expected: IHDR, Found: chunk.ChunkID()}
	}
	if chunk.ChunkLen() != ihdrLength {
		return Header{}, &ChunkLenError{ID: chunk.ChunkID(), Len: chunk.ChunkLen()}
	}

	var body [ihdrLength]byte
	if _, err := io.ReadFull(chunk, body[:]); err != nil {
		return Header{}, noEOF(err)
	}

	h := Header{
		Width:  int(binary.BigEndian.Uint32(body[0:4])),
		Height: int(binary.BigEndian.Uint32(body[4:8])),
	}
	if err := h.validateSize(); err != nil {
		return Header{}, err
	}
	h.BitDepth = body[8]
	var err error
	if h.ColorType, err = ParseColorType(body[9]); err != nil {
		return Header{}, err
	}
	if err = h.ColorType.CheckBitDepth(h.BitDepth); err != nil {
		return Header{}, err
	}
	if h.CompressionMethod, err = ParseCompressionMethod(body[10]); err != nil {
		return Header{}, err
	}
	if h.FilterMethod, err = ParseFilterMethod(body[11]); err != nil {
		return Header{}, err
	}
	if h.InterlaceMethod, err = ParseInterlaceMethod(body[12]); err != nil {
		return Header{}, err
	}

	if _, err := chunk.Finish(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// WriteIHDR validates the header and writes it as an IHDR chunk.
func WriteIHDR(w io.Writer, h *Header) error {
	if err := h.validateSize(); err != nil {
		return err
	}
	if err := h.ColorType.CheckBitDepth(h.BitDepth); err != nil {
		return err
	}

	var body [ihdrLength]byte
	binary.BigEndian.PutUint32(body[0:4], uint32(h.Width))
	binary.BigEndian.PutUint32(body[4:8], uint32(h.Height))
	body[8] = h.BitDepth
	body[9] = byte(h.ColorType)
	body[10] = byte(h.CompressionMethod)
	body[11] = byte(h.FilterMethod)
	body[12] = byte(h.InterlaceMethod)

	chunk := NewChunkWriter(w, IHDR)
	if _, err := chunk.Write(body[:]); err != nil {
		return err
	}
	_, err := chunk.Finish()
	return err
}

// ReadPLTE decodes the palette from an open chunk reader, consuming the
// chunk through its CRC. The body must be a positive multiple of 3 bytes
// no longer than 768.
func ReadPLTE(chunk *ChunkReader) (Palette, error) {
	if chunk.ChunkID() != PLTE {
		return nil, &WrongChunkError{Expected: PLTE, Found: chunk.ChunkID()}
	}
	length := chunk.ChunkLen()
	if length == 0 || length > maxPaletteLen*3 || length%3 != 0 {
		return nil, &ChunkLenError{ID: chunk.ChunkID(), Len: length}
	}

	palette := make(Palette, 0, length/3)
	var entry [3]byte
	for i := uint32(0); i < length/3; i++ {
		if _, err := io.ReadFull(chunk, entry[:]); err != nil {
			return nil, noEOF(err)
		}
		palette = append(palette, pixel.RGB[uint8]{R: entry[0], G: entry[1], B: entry[2]})
	}

	if _, err := chunk.Finish(); err != nil {
		return nil, err
	}
	return palette, nil
}

// WritePLTE validates the palette and writes it as a PLTE chunk.
func WritePLTE(w io.Writer, palette Palette) error {
	if err := palette.validate(); err != nil {
		return err
	}
	chunk := NewChunkWriter(w, PLTE)
	for _, entry := range palette {
		if _, err := chunk.Write([]byte{entry.R, entry.G, entry.B}); err != nil {
			return err
		}
	}
	_, err := chunk.Finish()
	return err
}

// WriteIEND writes the empty IEND chunk that terminates a PNG stream.
func WriteIEND(w io.Writer) error {
	_, err := NewChunkWriter(w, IEND).Finish()
	return err
}
