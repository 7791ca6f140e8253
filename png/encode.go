package png

import (
	"bufio"
	"io"
	"os"

	"github.com/daggerbot/axis/pixel"
)

// maxIDATSize bounds the body of each physical IDAT chunk.
const maxIDATSize = 64 * 1024

// Sample encoders for each pixel type, mirroring the decoders. Samples
// leave at the pixel's native component width; convertSamples translates
// to the wire depth.
func encodeIndex(p uint8, s []uint16) { s[0] = uint16(p) }

func encodeGray8(p pixel.Gray[uint8], s []uint16) {
	s[0] = uint16(p.Y)
}

func encodeGray16(p pixel.Gray[uint16], s []uint16) {
	s[0] = p.Y
}

func encodeGrayAlpha8(p pixel.GrayAlpha[uint8], s []uint16) {
	s[0], s[1] = uint16(p.Y), uint16(p.A)
}

func encodeGrayAlpha16(p pixel.GrayAlpha[uint16], s []uint16) {
	s[0], s[1] = p.Y, p.A
}

func encodeRGB8(p pixel.RGB[uint8], s []uint16) {
	s[0], s[1], s[2] = uint16(p.R), uint16(p.G), uint16(p.B)
}

func encodeRGB16(p pixel.RGB[uint16], s []uint16) {
	s[0], s[1], s[2] = p.R, p.G, p.B
}

func encodeRGBA8(p pixel.RGBA[uint8], s []uint16) {
	s[0], s[1], s[2], s[3] = uint16(p.R), uint16(p.G), uint16(p.B), uint16(p.A)
}

func encodeRGBA16(p pixel.RGBA[uint16], s []uint16) {
	s[0], s[1], s[2], s[3] = p.R, p.G, p.B, p.A
}

// Encoder writes an image as a PNG stream. Construct one with the
// constructor matching the source's pixel type, adjust it with the With
// methods, then call Encode.
type Encoder[P any] struct {
	src         pixel.Source[P]
	encode      func(P, []uint16)
	colorType   ColorType
	nativeDepth uint8
	bitDepth    uint8
	interlace   InterlaceMethod
	palette     Palette
}

func newEncoder[P any](src pixel.Source[P], encode func(P, []uint16), colorType ColorType, nativeDepth uint8) *Encoder[P] {
	return &Encoder[P]{
		src:         src,
		encode:      encode,
		colorType:   colorType,
		nativeDepth: nativeDepth,
		bitDepth:    nativeDepth,
	}
}

// NewIndexEncoder encodes palette indices. A palette must be supplied
// with WithPalette before encoding.
func NewIndexEncoder(src pixel.Source[uint8]) *Encoder[uint8] {
	return newEncoder(src, encodeIndex, ColorIndex, 8)
}

// NewGray8Encoder encodes 8-bit grayscale pixels.
func NewGray8Encoder(src pixel.Source[pixel.Gray[uint8]]) *Encoder[pixel.Gray[uint8]] {
	return newEncoder(src, encodeGray8, ColorGray, 8)
}

// NewGray16Encoder encodes 16-bit grayscale pixels.
func NewGray16Encoder(src pixel.Source[pixel.Gray[uint16]]) *Encoder[pixel.Gray[uint16]] {
	return newEncoder(src, encodeGray16, ColorGray, 16)
}

// NewGrayAlpha8Encoder encodes 8-bit grayscale pixels with alpha.
func NewGrayAlpha8Encoder(src pixel.Source[pixel.GrayAlpha[uint8]]) *Encoder[pixel.GrayAlpha[uint8]] {
	return newEncoder(src, encodeGrayAlpha8, ColorGrayAlpha, 8)
}

// NewGrayAlpha16Encoder encodes 16-bit grayscale pixels with alpha.
func NewGrayAlpha16Encoder(src pixel.Source[pixel.GrayAlpha[uint16]]) *Encoder[pixel.GrayAlpha[uint16]] {
	return newEncoder(src, encodeGrayAlpha16, ColorGrayAlpha, 16)
}

// NewRGB8Encoder encodes 8-bit truecolor pixels.
func NewRGB8Encoder(src pixel.Source[pixel.RGB[uint8]]) *Encoder[pixel.RGB[uint8]] {
	return newEncoder(src, encodeRGB8, ColorRGB, 8)
}

// NewRGB16Encoder encodes 16-bit truecolor pixels.
func NewRGB16Encoder(src pixel.Source[pixel.RGB[uint16]]) *Encoder[pixel.RGB[uint16]] {
	return newEncoder(src, encodeRGB16, ColorRGB, 16)
}

// NewRGBA8Encoder encodes 8-bit truecolor pixels with alpha.
func NewRGBA8Encoder(src pixel.Source[pixel.RGBA[uint8]]) *Encoder[pixel.RGBA[uint8]] {
	return newEncoder(src, encodeRGBA8, ColorRGBAlpha, 8)
}

// NewRGBA16Encoder encodes 16-bit truecolor pixels with alpha.
func NewRGBA16Encoder(src pixel.Source[pixel.RGBA[uint16]]) *Encoder[pixel.RGBA[uint16]] {
	return newEncoder(src, encodeRGBA16, ColorRGBAlpha, 16)
}

// WithBitDepth overrides the wire bit depth. It must be legal for the
// source's color type; samples are widened, narrowed, or masked to fit.
func (e *Encoder[P]) WithBitDepth(bitDepth uint8) error {
	if err := e.colorType.CheckBitDepth(bitDepth); err != nil {
		return err
	}
	e.bitDepth = bitDepth
	return nil
}

// WithInterlace selects the interlace method.
func (e *Encoder[P]) WithInterlace(method InterlaceMethod) {
	e.interlace = method
}

// WithPalette sets the palette written in the PLTE chunk. It is required
// for indexed color and ignored otherwise.
func (e *Encoder[P]) WithPalette(palette Palette) error {
	if err := palette.validate(); err != nil {
		return err
	}
	e.palette = palette
	return nil
}

// Encode writes the full PNG stream: signature, IHDR, PLTE when indexed,
// the progressive IDAT group, and IEND.
func (e *Encoder[P]) Encode(w io.Writer) error {
	width, height := e.src.Size()
	header := Header{
		BitDepth:          e.bitDepth,
		ColorType:         e.colorType,
		CompressionMethod: CompressionZlib,
		FilterMethod:      FilterBase,
		Width:             width,
		Height:            height,
		InterlaceMethod:   e.interlace,
	}

	if err := WriteSignature(w); err != nil {
		return err
	}
	if err := WriteIHDR(w, &header); err != nil {
		return err
	}
	if e.colorType == ColorIndex {
		if e.palette == nil {
			return ErrMissingPalette
		}
		if err := WritePLTE(w, e.palette); err != nil {
			return err
		}
	}
	if err := e.writeIDAT(w, header); err != nil {
		return err
	}
	return WriteIEND(w)
}

// EncodeFile encodes the image into a new PNG file.
func (e *Encoder[P]) EncodeFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := e.Encode(w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Close()
}

// writeIDAT drives the interlacer over the source, packing, filtering,
// and compressing pixels into the progressive IDAT chunk stream.
func (e *Encoder[P]) writeIDAT(w io.Writer, header Header) error {
	chunk := NewProgressiveChunkWriter(w, IDAT, maxIDATSize)
	compress, err := NewCompressor(chunk, header.CompressionMethod)
	if err != nil {
		return err
	}

	channels := e.colorType.ChannelCount()
	var samples [4]uint16
	var packer *pixelPacker
	prevRow := -1

	interlacer := NewInterlacer(header.Width, header.Height, header.InterlaceMethod)
	for {
		item, ok := interlacer.Next()
		if !ok {
			break
		}
		if item.Begin {
			// A fresh filter chain per pass, sized to the pass's
			// sub-image, over the still-open compressed stream.
			if packer != nil {
				if err := packer.pad(); err != nil {
					return err
				}
			}
			filter := NewFilterer(header.FilterMethod, compress, item.Size.X, item.Size.Y,
				header.BitDepth, header.ColorType)
			packer = newPixelPacker(filter, header.BitDepth)
			prevRow = -1
			continue
		}
		if prevRow != item.Pos.Y {
			if err := packer.pad(); err != nil {
				return err
			}
			prevRow = item.Pos.Y
		}
		s := samples[:channels]
		e.encode(e.src.PixelAt(item.Pos.X, item.Pos.Y), s)
		convertSamples(s, e.nativeDepth, header.BitDepth)
		if err := packer.pack(s); err != nil {
			return err
		}
	}
	if err := packer.pad(); err != nil {
		return err
	}

	inner, err := compress.Finish()
	if err != nil {
		return err
	}
	_, err = inner.(*ChunkWriter).Finish()
	return err
}
