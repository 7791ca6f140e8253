package png

import (
	"encoding/binary"
	"io"

	"github.com/daggerbot/axis/pixel"
)

// pixelUnpacker reads raw channel samples from a decompressed, defiltered
// data stream. Sub-byte samples are packed MSB-first; a partial byte left
// at the end of a row is discarded by pad rather than carried into the
// next row.
type pixelUnpacker struct {
	bitDepth uint8
	inner    io.Reader
	cur      byte
	haveByte bool
	shift    uint8
	mask     byte
}

func newPixelUnpacker(r io.Reader, bitDepth uint8) *pixelUnpacker {
	return &pixelUnpacker{
		bitDepth: bitDepth,
		inner:    r,
		mask:     byte((uint32(1) << bitDepth) - 1),
	}
}

// pad discards the rest of a partially consumed byte. Called at the start
// of each row for bit depths below 8.
func (u *pixelUnpacker) pad() {
	u.haveByte = false
}

// unpack reads one pixel's channel samples into s, whose length is the
// color type's channel count.
func (u *pixelUnpacker) unpack(s []uint16) error {
	switch u.bitDepth {
	case 1, 2, 4:
		if !u.haveByte {
			var b [1]byte
			if _, err := io.ReadFull(u.inner, b[:]); err != nil {
				return noEOF(err)
			}
			u.cur = b[0]
			u.haveByte = true
			u.shift = 8 - u.bitDepth
		}
		s[0] = uint16((u.cur >> u.shift) & u.mask)
		if u.shift == 0 {
			u.haveByte = false
		} else {
			u.shift -= u.bitDepth
		}
		return nil

	case 8:
		var buf [4]byte
		if _, err := io.ReadFull(u.inner, buf[:len(s)]); err != nil {
			return noEOF(err)
		}
		for i := range s {
			s[i] = uint16(buf[i])
		}
		return nil

	case 16:
		var buf [8]byte
		if _, err := io.ReadFull(u.inner, buf[:len(s)*2]); err != nil {
			return noEOF(err)
		}
		for i := range s {
			s[i] = binary.BigEndian.Uint16(buf[i*2:])
		}
		return nil

	default:
		panic("png: unreachable bit depth")
	}
}

// pixelPacker writes raw channel samples as the bit-packed wire sequence:
// MSB-first within a byte for sub-byte depths, one byte per channel at
// depth 8, one big-endian word per channel at depth 16.
type pixelPacker struct {
	bitDepth uint8
	inner    io.Writer
	cur      byte
	pos      uint8
	mask     byte
}

func newPixelPacker(w io.Writer, bitDepth uint8) *pixelPacker {
	return &pixelPacker{
		bitDepth: bitDepth,
		inner:    w,
		mask:     byte((uint32(1) << bitDepth) - 1),
	}
}

// pack writes one pixel's channel samples from s.
func (p *pixelPacker) pack(s []uint16) error {
	switch p.bitDepth {
	case 1, 2, 4:
		p.cur |= (byte(s[0]) & p.mask) << (8 - p.bitDepth - p.pos)
		p.pos += p.bitDepth
		if p.pos == 8 {
			return p.pad()
		}
		return nil

	case 8:
		var buf [4]byte
		for i := range s {
			buf[i] = byte(s[i])
		}
		_, err := p.inner.Write(buf[:len(s)])
		return err

	case 16:
		var buf [8]byte
		for i := range s {
			binary.BigEndian.PutUint16(buf[i*2:], s[i])
		}
		_, err := p.inner.Write(buf[:len(s)*2])
		return err

	default:
		panic("png: unreachable bit depth")
	}
}

// pad flushes a partial byte, filling the unused low bits with zero.
// Called at the end of each row for bit depths below 8.
func (p *pixelPacker) pad() error {
	if p.pos == 0 {
		return nil
	}
	b := p.cur
	p.cur = 0
	p.pos = 0
	_, err := p.inner.Write([]byte{b})
	return err
}

// convertSamples translates channel samples between the image's native
// component width and the wire bit depth, using the component-conversion
// collaborators. Sub-byte wire depths keep 8-bit samples as-is; the
// packer masks them. Indexed samples never pass through here.
func convertSamples(s []uint16, nativeDepth, wireDepth uint8) {
	switch {
	case nativeDepth == 8 && wireDepth == 16:
		for i := range s {
			s[i] = pixel.Widen(uint8(s[i]))
		}
	case nativeDepth == 16 && wireDepth < 16:
		for i := range s {
			s[i] = uint16(pixel.Narrow(s[i]))
		}
	}
}
