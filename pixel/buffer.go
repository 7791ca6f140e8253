package pixel

// Source is the read-only capability over a pixel container. Encoders
// consume images through this interface only.
type Source[P any] interface {
	// Size returns the container's dimensions in pixels.
	Size() (width, height int)
	// PixelAt returns the pixel at the given position.
	PixelAt(x, y int) P
}

// Target is the write-only capability over a pixel container. Decoders
// populate images through this interface only.
type Target[P any] interface {
	// Size returns the container's dimensions in pixels.
	Size() (width, height int)
	// SetPixelAt replaces the pixel at the given position.
	SetPixelAt(x, y int, p P)
}

// Buffer is a rectangular pixel container backed by a flat slice in
// row-major order. It implements both Source and Target.
type Buffer[P any] struct {
	width, height int
	pix           []P
}

// NewBuffer allocates a zeroed buffer with the given dimensions.
func NewBuffer[P any](width, height int) *Buffer[P] {
	if width < 0 || height < 0 {
		panic("pixel: negative buffer dimensions")
	}
	return &Buffer[P]{
		width:  width,
		height: height,
		pix:    make([]P, width*height),
	}
}

// Size returns the buffer's dimensions in pixels.
func (b *Buffer[P]) Size() (width, height int) {
	return b.width, b.height
}

// PixelAt returns the pixel at the given position.
func (b *Buffer[P]) PixelAt(x, y int) P {
	return b.pix[y*b.width+x]
}

// SetPixelAt replaces the pixel at the given position.
func (b *Buffer[P]) SetPixelAt(x, y int, p P) {
	b.pix[y*b.width+x] = p
}

// Pix returns the backing slice in row-major order.
func (b *Buffer[P]) Pix() []P {
	return b.pix
}
