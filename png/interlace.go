package png

import "image"

// InterlaceMethod identifies the pixel traversal order named in the IHDR.
type InterlaceMethod uint8

const (
	// InterlaceNone visits pixels row-major in a single pass.
	InterlaceNone InterlaceMethod = 0
	// InterlaceAdam7 visits pixels in the seven-pass Adam7 order,
	// progressively refining resolution across passes.
	InterlaceAdam7 InterlaceMethod = 1
)

// ParseInterlaceMethod validates the IHDR interlace method byte.
func ParseInterlaceMethod(raw byte) (InterlaceMethod, error) {
	switch raw {
	case 0:
		return InterlaceNone, nil
	case 1:
		return InterlaceAdam7, nil
	default:
		return 0, &InterlaceMethodError{Raw: raw}
	}
}

func (m InterlaceMethod) String() string {
	switch m {
	case InterlaceNone:
		return "none"
	case InterlaceAdam7:
		return "adam7"
	default:
		return "unknown"
	}
}

// InterlaceItem is one step of an interlace traversal: either the start
// of a pass, carrying the pass's sub-image size, or a pixel position.
type InterlaceItem struct {
	// Begin marks the start of a pass; Size is the pass's sub-image
	// size. Otherwise Pos is the next pixel position in the full image.
	Begin bool
	Size  image.Point
	Pos   image.Point
}

// Adam7 pass geometry: starting offset and stride
// of each of the seven passes.
var adam7Passes = [7]struct {
	offset, stride image.Point
}{
	{image.Pt(0, 0), image.Pt(8, 8)},
	{image.Pt(4, 0), image.Pt(8, 8)},
	{image.Pt(0, 4), image.Pt(4, 8)},
	{image.Pt(2, 0), image.Pt(4, 4)},
	{image.Pt(0, 2), image.Pt(2, 4)},
	{image.Pt(1, 0), image.Pt(2, 2)},
	{image.Pt(0, 1), image.Pt(1, 2)},
}

// Interlacer produces the pixel visitation order for an image: a
// BeginPass item before each pass (one pass when not interlaced, seven
// for Adam7), then the pass's pixel positions in ascending row-major
// order. The sequence is finite and cannot be restarted.
type Interlacer struct {
	method  InterlaceMethod
	size    image.Point
	pass    int // 0-based index of the current pass
	started bool
	pos     image.Point
	offsetX int
	stride  image.Point
}

// NewInterlacer builds a traversal over an image of the given size.
func NewInterlacer(width, height int, method InterlaceMethod) *Interlacer {
	return &Interlacer{
		method: method,
		size:   image.Pt(width, height),
	}
}

// passCount returns the number of passes in the traversal.
func (it *Interlacer) passCount() int {
	if it.method == InterlaceAdam7 {
		return len(adam7Passes)
	}
	return 1
}

// enterPass positions the cursor at the start of pass i and returns the
// pass's BeginPass item. Empty passes still begin, with a (0,0) size.
func (it *Interlacer) enterPass(i int) InterlaceItem {
	it.pass = i
	offset, stride := image.Pt(0, 0), image.Pt(1, 1)
	if it.method == InterlaceAdam7 {
		offset, stride = adam7Passes[i].offset, adam7Passes[i].stride
	}
	it.pos = offset
	it.offsetX = offset.X
	it.stride = stride
	return InterlaceItem{
		Begin: true,
		Size: image.Pt(
			passExtent(it.size.X, offset.X, stride.X),
			passExtent(it.size.Y, offset.Y, stride.Y),
		),
	}
}

// passExtent is ceil((dim-offset)/stride), clamped to 0 when the offset
// falls outside the image.
func passExtent(dim, offset, stride int) int {
	if offset >= dim {
		return 0
	}
	return ceilDiv(dim-offset, stride)
}

// Next returns the next traversal item, or ok=false when every pass is
// exhausted.
func (it *Interlacer) Next() (item InterlaceItem, ok bool) {
	if !it.started {
		it.started = true
		return it.enterPass(0), true
	}
	for {
		if it.pos.Y >= it.size.Y {
			if it.pass+1 == it.passCount() {
				return InterlaceItem{}, false
			}
			return it.enterPass(it.pass + 1), true
		}
		if it.pos.X >= it.size.X {
			it.pos.X = it.offsetX
			it.pos.Y += it.stride.Y
			continue
		}
		item = InterlaceItem{Pos: it.pos}
		it.pos.X += it.stride.X
		return item, true
	}
}
