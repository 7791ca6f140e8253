package png

import (
	"errors"
	"io"
)

// FilterMethod identifies the scanline filtering scheme named in the
// IHDR. The wire format defines only method 0, the standard per-row
// adaptive scheme with filter types None/Sub/Up/Average/Paeth.
type FilterMethod uint8

// FilterBase is the standard adaptive-filter scheme, the only filter
// method the PNG specification defines.
const FilterBase FilterMethod = 0

// ParseFilterMethod validates the IHDR filter method byte.
func ParseFilterMethod(raw byte) (FilterMethod, error) {
	if raw != 0 {
		return 0, &FilterMethodError{Raw: raw}
	}
	return FilterBase, nil
}

func (m FilterMethod) String() string {
	switch m {
	case FilterBase:
		return "base"
	default:
		return "unknown"
	}
}

// Filter type bytes, as per the PNG spec.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
)

// rowGeometry returns the byte length of one unfiltered scanline and the
// byte distance between a sample and its same-channel left neighbor.
func rowGeometry(width int, bitDepth uint8, colorType ColorType) (bytesPerRow, subPitch int) {
	switch bitDepth {
	case 1, 2, 4:
		return ceilDiv(width, 8/int(bitDepth)), 1
	case 8:
		return width * colorType.ChannelCount(), colorType.ChannelCount()
	case 16:
		return width * colorType.ChannelCount() * 2, colorType.ChannelCount() * 2
	default:
		panic("png: unreachable bit depth")
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// Filterer prefixes each scanline with its filter-type byte on the way
// into the compressor. The encoder always selects type 0 (None), which
// produces a valid stream but no filtering gain; defiltering supports all
// five types so arbitrary conforming files still decode.
type Filterer struct {
	method        FilterMethod
	bytesPerRow   int
	height        int
	inner         io.Writer
	rowByte       int
	rowIndex      int
	prefixWritten bool
}

// NewFilterer wraps w with a scanline filterer for a (sub-)image of the
// given dimensions.
func NewFilterer(method FilterMethod, w io.Writer, width, height int, bitDepth uint8, colorType ColorType) *Filterer {
	bytesPerRow, _ := rowGeometry(width, bitDepth, colorType)
	return &Filterer{
		method:      method,
		bytesPerRow: bytesPerRow,
		height:      height,
		inner:       w,
	}
}

// IntoInner returns the wrapped writer.
func (f *Filterer) IntoInner() io.Writer {
	return f.inner
}

func (f *Filterer) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if f.bytesPerRow == 0 || f.rowIndex == f.height {
			return total, io.ErrShortWrite
		}
		if !f.prefixWritten {
			if _, err := f.inner.Write([]byte{ftNone}); err != nil {
				return total, err
			}
			f.prefixWritten = true
		}
		n := len(p)
		if room := f.bytesPerRow - f.rowByte; n > room {
			n = room
		}
		if _, err := f.inner.Write(p[:n]); err != nil {
			return total, err
		}
		f.rowByte += n
		total += n
		p = p[n:]
		if f.rowByte == f.bytesPerRow {
			f.rowByte = 0
			f.rowIndex++
			f.prefixWritten = false
		}
	}
	return total, nil
}

// Defilterer reverses scanline filtering on the way out of the
// decompressor. It carries the previous defiltered row (for Up, Average,
// and Paeth) and the already-defiltered prefix of the current row (for
// Sub, Average, and Paeth), swapping them at row boundaries.
type Defilterer struct {
	method      FilterMethod
	bytesPerRow int
	height      int
	subPitch    int
	inner       io.Reader
	prevRow     []byte
	row         []byte
	rowByte     int
	rowIndex    int
	prefix      int // -1 while the current row's filter byte is unread
}

// NewDefilterer wraps r with a scanline defilterer for a (sub-)image of
// the given dimensions.
func NewDefilterer(method FilterMethod, r io.Reader, width, height int, bitDepth uint8, colorType ColorType) *Defilterer {
	bytesPerRow, subPitch := rowGeometry(width, bitDepth, colorType)
	return &Defilterer{
		method:      method,
		bytesPerRow: bytesPerRow,
		height:      height,
		subPitch:    subPitch,
		inner:       r,
		prefix:      -1,
	}
}

// IntoInner returns the wrapped reader.
func (d *Defilterer) IntoInner() io.Reader {
	return d.inner
}

func (d *Defilterer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if d.bytesPerRow == 0 || d.rowIndex == d.height {
		return 0, io.EOF
	}

	// The leading byte of each row selects that row's filter type.
	if d.prefix < 0 {
		var b [1]byte
		if _, err := io.ReadFull(d.inner, b[:]); err != nil {
			return 0, noEOF(err)
		}
		if b[0] > ftPaeth {
			return 0, &FilterByteError{Raw: b[0]}
		}
		d.prefix = int(b[0])
	}

	if rem := d.bytesPerRow - d.rowByte; len(p) > rem {
		p = p[:rem]
	}
	n, err := d.inner.Read(p)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return 0, io.ErrUnexpectedEOF
		}
		return 0, err
	}

	for i := 0; i < n; i++ {
		x := p[i]
		idx := d.rowByte + i
		switch d.prefix {
		case ftNone:
		case ftSub:
			if j := idx - d.subPitch; j >= 0 {
				x += d.row[j]
			}
		case ftUp:
			if d.rowIndex > 0 {
				x += d.prevRow[idx]
			}
		case ftAverage:
			var left, above byte
			if j := idx - d.subPitch; j >= 0 {
				left = d.row[j]
			}
			if d.rowIndex > 0 {
				above = d.prevRow[idx]
			}
			x += byte((uint16(left) + uint16(above)) / 2)
		case ftPaeth:
			var left, above, corner byte
			if j := idx - d.subPitch; j >= 0 {
				left = d.row[j]
				if d.rowIndex > 0 {
					corner = d.prevRow[j]
				}
			}
			if d.rowIndex > 0 {
				above = d.prevRow[idx]
			}
			x += paeth(left, above, corner)
		}
		p[i] = x
		d.row = append(d.row, x)
	}

	d.rowByte += n
	if d.rowByte == d.bytesPerRow {
		d.rowByte = 0
		d.rowIndex++
		d.prefix = -1
		d.prevRow, d.row = d.row, d.prevRow[:0]
	}
	return n, nil
}

// noEOF maps a bare io.EOF to io.ErrUnexpectedEOF: inside a scanline the
// stream ending early is always an error.
func noEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// paeth is the PaethPredictor algorithm as described at
// http://www.libpng.org/pub/png/spec/1.2/PNG-Filters.html. It selects the
// neighbor closest to the linear prediction left+above-corner.
func paeth(a, b, c byte) byte {
	p := int16(a) + int16(b) - int16(c)
	pa := abs16(p - int16(a))
	pb := abs16(p - int16(b))
	pc := abs16(p - int16(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}
