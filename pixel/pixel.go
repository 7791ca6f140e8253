// Package pixel provides the pixel value types and the generic pixel
// container consumed by the codecs in this module.
package pixel

// Component is a color component type: 8 or 16 bits per sample.
type Component interface {
	~uint8 | ~uint16
}

// Gray is a grayscale pixel with a single luminance component.
type Gray[T Component] struct {
	Y T
}

// GrayAlpha is a grayscale pixel with an alpha component.
type GrayAlpha[T Component] struct {
	Y, A T
}

// RGB is a truecolor pixel.
type RGB[T Component] struct {
	R, G, B T
}

// RGBA is a truecolor pixel with an alpha component.
type RGBA[T Component] struct {
	R, G, B, A T
}

// Widen converts an 8-bit component to 16 bits, replicating the byte into
// the low half so that 0xff maps to 0xffff.
func Widen(v uint8) uint16 {
	return uint16(v) * 0x101
}

// Narrow converts a 16-bit component to 8 bits, keeping the high byte.
// The conversion is lossy.
func Narrow(v uint16) uint8 {
	return uint8(v >> 8)
}
