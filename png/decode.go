package png

import (
	"bufio"
	"errors"
	"image"
	"io"
	"os"

	"github.com/daggerbot/axis/pixel"
)

// DecodedImage is a fully read and decoded PNG image. It is a closed sum
// over the (color type, component width) combinations; adding one means
// adding a variant and its switch arms.
type DecodedImage interface {
	decodedImage()
}

// IndexedImage holds palette indices and the palette they refer into.
type IndexedImage struct {
	Image   *pixel.Buffer[uint8]
	Palette Palette
}

// Gray8Image holds 8-bit grayscale pixels. Sub-byte bit depths decode
// into this variant with their raw sample values.
type Gray8Image struct {
	Image *pixel.Buffer[pixel.Gray[uint8]]
}

// Gray16Image holds 16-bit grayscale pixels.
type Gray16Image struct {
	Image *pixel.Buffer[pixel.Gray[uint16]]
}

// GrayAlpha8Image holds 8-bit grayscale pixels with alpha.
type GrayAlpha8Image struct {
	Image *pixel.Buffer[pixel.GrayAlpha[uint8]]
}

// GrayAlpha16Image holds 16-bit grayscale pixels with alpha.
type GrayAlpha16Image struct {
	Image *pixel.Buffer[pixel.GrayAlpha[uint16]]
}

// RGB8Image holds 8-bit truecolor pixels.
type RGB8Image struct {
	Image *pixel.Buffer[pixel.RGB[uint8]]
}

// RGB16Image holds 16-bit truecolor pixels.
type RGB16Image struct {
	Image *pixel.Buffer[pixel.RGB[uint16]]
}

// RGBA8Image holds 8-bit truecolor pixels with alpha.
type RGBA8Image struct {
	Image *pixel.Buffer[pixel.RGBA[uint8]]
}

// RGBA16Image holds 16-bit truecolor pixels with alpha.
type RGBA16Image struct {
	Image *pixel.Buffer[pixel.RGBA[uint16]]
}

func (*IndexedImage) decodedImage()     {}
func (*Gray8Image) decodedImage()       {}
func (*Gray16Image) decodedImage()      {}
func (*GrayAlpha8Image) decodedImage()  {}
func (*GrayAlpha16Image) decodedImage() {}
func (*RGB8Image) decodedImage()        {}
func (*RGB16Image) decodedImage()       {}
func (*RGBA8Image) decodedImage()       {}
func (*RGBA16Image) decodedImage()      {}

// Sample decoders for each variant. Wire samples arrive unscaled, so
// 8-bit (and sub-byte) conversions are raw and lossless.
func decodeIndex(s []uint16) uint8 { return uint8(s[0]) }

func decodeGray8(s []uint16) pixel.Gray[uint8] {
	return pixel.Gray[uint8]{Y: uint8(s[0])}
}

func decodeGray16(s []uint16) pixel.Gray[uint16] {
	return pixel.Gray[uint16]{Y: s[0]}
}

func decodeGrayAlpha8(s []uint16) pixel.GrayAlpha[uint8] {
	return pixel.GrayAlpha[uint8]{Y: uint8(s[0]), A: uint8(s[1])}
}

func decodeGrayAlpha16(s []uint16) pixel.GrayAlpha[uint16] {
	return pixel.GrayAlpha[uint16]{Y: s[0], A: s[1]}
}

func decodeRGB8(s []uint16) pixel.RGB[uint8] {
	return pixel.RGB[uint8]{R: uint8(s[0]), G: uint8(s[1]), B: uint8(s[2])}
}

func decodeRGB16(s []uint16) pixel.RGB[uint16] {
	return pixel.RGB[uint16]{R: s[0], G: s[1], B: s[2]}
}

func decodeRGBA8(s []uint16) pixel.RGBA[uint8] {
	return pixel.RGBA[uint8]{R: uint8(s[0]), G: uint8(s[1]), B: uint8(s[2]), A: uint8(s[3])}
}

func decodeRGBA16(s []uint16) pixel.RGBA[uint16] {
	return pixel.RGBA[uint16]{R: s[0], G: s[1], B: s[2], A: s[3]}
}

// PixelReader decodes pixels from a PNG IDAT data stream: progressive
// chunk merge, decompression, defiltering, and unpacking, in interlace
// order. When done, the caller must call Finish so the last IDAT chunk's
// CRC is verified.
type PixelReader[P any] struct {
	header     Header
	decode     func([]uint16) P
	channels   int
	progress   *ProgressiveChunkReader
	decomp     *Decompressor
	unpacker   *pixelUnpacker
	interlacer *Interlacer
	prevRow    int
	samples    [4]uint16
}

// NewPixelReader builds the decode chain over an open progressive IDAT
// reader. The decode function must produce the pixel type matching the
// header's color type and bit depth.
func NewPixelReader[P any](chunk *ProgressiveChunkReader, header Header, decode func([]uint16) P) (*PixelReader[P], error) {
	if err := header.ColorType.CheckBitDepth(header.BitDepth); err != nil {
		return nil, err
	}
	decomp, err := NewDecompressor(chunk, header.CompressionMethod)
	if err != nil {
		return nil, err
	}
	defilter := NewDefilterer(header.FilterMethod, decomp, header.Width, header.Height,
		header.BitDepth, header.ColorType)
	return &PixelReader[P]{
		header:     header,
		decode:     decode,
		channels:   header.ColorType.ChannelCount(),
		progress:   chunk,
		decomp:     decomp,
		unpacker:   newPixelUnpacker(defilter, header.BitDepth),
		interlacer: NewInterlacer(header.Width, header.Height, header.InterlaceMethod),
		prevRow:    -1,
	}, nil
}

// NextPixel returns the position and value of the next decoded pixel.
// Positions are not sequential when the image is interlaced. ok is false
// once every pass is exhausted.
func (r *PixelReader[P]) NextPixel() (pos image.Point, px P, ok bool, err error) {
	for {
		item, more := r.interlacer.Next()
		if !more {
			return image.Point{}, px, false, nil
		}
		if item.Begin {
			// Each pass gets a fresh defilter/unpack chain sized to the
			// pass's sub-image, over the still-open compressed stream.
			defilter := NewDefilterer(r.header.FilterMethod, r.decomp, item.Size.X, item.Size.Y,
				r.header.BitDepth, r.header.ColorType)
			r.unpacker = newPixelUnpacker(defilter, r.header.BitDepth)
			r.prevRow = -1
			continue
		}
		if r.prevRow != item.Pos.Y {
			r.prevRow = item.Pos.Y
			r.unpacker.pad()
		}
		s := r.samples[:r.channels]
		if err := r.unpacker.unpack(s); err != nil {
			return image.Point{}, px, false, err
		}
		return item.Pos, r.decode(s), true, nil
	}
}

// Finish skips any remaining IDAT data, validates the final chunk CRC,
// and returns the inner reader.
func (r *PixelReader[P]) Finish() (io.Reader, error) {
	return r.progress.Finish()
}

// readPixels drains a pixel reader into the caller-owned container
// through its write-only capability.
func readPixels[P any](r *PixelReader[P], buf pixel.Target[P]) error {
	for {
		pos, px, ok, err := r.NextPixel()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		buf.SetPixelAt(pos.X, pos.Y, px)
	}
	_, err := r.Finish()
	return err
}

// decodeVariant builds the concrete pixel buffer for one (color type, bit
// depth) combination.
func decodeVariant[P any](chunk *ProgressiveChunkReader, header Header, decode func([]uint16) P) (*pixel.Buffer[P], error) {
	r, err := NewPixelReader(chunk, header, decode)
	if err != nil {
		return nil, err
	}
	buf := pixel.NewBuffer[P](header.Width, header.Height)
	if err := readPixels(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readIDAT selects the pixel-type-specialized reader from the header and
// decodes the whole IDAT group into a new image buffer.
func readIDAT(chunk *ProgressiveChunkReader, header Header, palette Palette) (DecodedImage, error) {
	if chunk.ChunkID() != IDAT {
		return nil, &WrongChunkError{Expected: IDAT, Found: chunk.ChunkID()}
	}
	if err := header.ColorType.CheckBitDepth(header.BitDepth); err != nil {
		return nil, err
	}

	switch {
	case header.ColorType == ColorIndex:
		if palette == nil {
			return nil, &WrongChunkError{Expected: PLTE, Found: IDAT}
		}
		buf, err := decodeVariant(chunk, header, decodeIndex)
		if err != nil {
			return nil, err
		}
		return &IndexedImage{Image: buf, Palette: palette}, nil

	case header.ColorType == ColorGray && header.BitDepth <= 8:
		buf, err := decodeVariant(chunk, header, decodeGray8)
		if err != nil {
			return nil, err
		}
		return &Gray8Image{Image: buf}, nil

	case header.ColorType == ColorGray:
		buf, err := decodeVariant(chunk, header, decodeGray16)
		if err != nil {
			return nil, err
		}
		return &Gray16Image{Image: buf}, nil

	case header.ColorType == ColorGrayAlpha && header.BitDepth == 8:
		buf, err := decodeVariant(chunk, header, decodeGrayAlpha8)
		if err != nil {
			return nil, err
		}
		return &GrayAlpha8Image{Image: buf}, nil

	case header.ColorType == ColorGrayAlpha:
		buf, err := decodeVariant(chunk, header, decodeGrayAlpha16)
		if err != nil {
			return nil, err
		}
		return &GrayAlpha16Image{Image: buf}, nil

	case header.ColorType == ColorRGB && header.BitDepth == 8:
		buf, err := decodeVariant(chunk, header, decodeRGB8)
		if err != nil {
			return nil, err
		}
		return &RGB8Image{Image: buf}, nil

	case header.ColorType == ColorRGB:
		buf, err := decodeVariant(chunk, header, decodeRGB16)
		if err != nil {
			return nil, err
		}
		return &RGB16Image{Image: buf}, nil

	case header.ColorType == ColorRGBAlpha && header.BitDepth == 8:
		buf, err := decodeVariant(chunk, header, decodeRGBA8)
		if err != nil {
			return nil, err
		}
		return &RGBA8Image{Image: buf}, nil

	default:
		buf, err := decodeVariant(chunk, header, decodeRGBA16)
		if err != nil {
			return nil, err
		}
		return &RGBA16Image{Image: buf}, nil
	}
}

// Decode reads one PNG stream and returns the decoded image. Chunk
// ordering is enforced: exactly one IHDR first, at most one PLTE (only
// for indexed color, before IDAT), one IDAT group, then IEND. Unknown
// ancillary chunks are read and discarded; unknown critical chunks are
// fatal. Decoding stops at the first error; no partial image is returned.
func Decode(r io.Reader) (DecodedImage, error) {
	br := bufio.NewReader(r)
	if err := ReadSignature(br); err != nil {
		return nil, err
	}

	var (
		header  *Header
		palette Palette
		img     DecodedImage
	)
	for {
		chunk, err := NewChunkReader(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// The stream ended cleanly between chunks but the
				// required trailer never appeared.
				if img == nil {
					return nil, &MissingChunkError{ID: IDAT}
				}
				return nil, &MissingChunkError{ID: IEND}
			}
			return nil, err
		}
		id := chunk.ChunkID()

		switch id {
		case IEND:
			if img == nil {
				return nil, &MissingChunkError{ID: IDAT}
			}
			if _, err := chunk.Finish(); err != nil {
				return nil, err
			}
			return img, nil

		case IHDR:
			if header != nil {
				return nil, &DuplicateChunkError{ID: id}
			}
			h, err := ReadIHDR(chunk)
			if err != nil {
				return nil, err
			}
			header = &h

		case PLTE:
			if palette != nil {
				return nil, &DuplicateChunkError{ID: id}
			}
			if header == nil {
				return nil, &WrongChunkError{Expected: IHDR, Found: id}
			}
			if header.ColorType != ColorIndex {
				return nil, &UnexpectedChunkError{ID: id, Detail: "not an indexed image"}
			}
			if palette, err = ReadPLTE(chunk); err != nil {
				return nil, err
			}

		case IDAT:
			if img != nil {
				return nil, &DuplicateChunkError{ID: id}
			}
			if header == nil {
				return nil, &WrongChunkError{Expected: IHDR, Found: id}
			}
			progressive, err := NewProgressiveChunkReader(chunk)
			if err != nil {
				return nil, err
			}
			if img, err = readIDAT(progressive, *header, palette); err != nil {
				return nil, err
			}

		default:
			if id.IsCritical() {
				return nil, &CriticalChunkError{ID: id}
			}
			// Ancillary chunk: skip the body but still verify the CRC.
			if _, err := chunk.Finish(); err != nil {
				return nil, err
			}
		}
	}
}

// DecodeFile reads and decodes a PNG file.
func DecodeFile(path string) (DecodedImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
