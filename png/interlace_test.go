package png

import (
	"image"
	"testing"
)

// drainPasses runs a traversal to completion, returning per-pass sizes
// and positions.
func drainPasses(t *testing.T, it *Interlacer) (sizes []image.Point, passes [][]image.Point) {
	t.Helper()
	for {
		item, ok := it.Next()
		if !ok {
			return sizes, passes
		}
		if item.Begin {
			sizes = append(sizes, item.Size)
			passes = append(passes, nil)
			continue
		}
		if len(passes) == 0 {
			t.Fatal("pixel item before any BeginPass")
		}
		passes[len(passes)-1] = append(passes[len(passes)-1], item.Pos)
	}
}

func TestInterlacerNone(t *testing.T) {
	it := NewInterlacer(3, 2, InterlaceNone)
	sizes, passes := drainPasses(t, it)
	if len(sizes) != 1 {
		t.Fatalf("pass count = %d, want 1", len(sizes))
	}
	if sizes[0] != image.Pt(3, 2) {
		t.Fatalf("pass size = %v, want (3,2)", sizes[0])
	}
	want := []image.Point{
		{0, 0}, {1, 0}, {2, 0},
		{0, 1}, {1, 1}, {2, 1},
	}
	if len(passes[0]) != len(want) {
		t.Fatalf("pixel count = %d, want %d", len(passes[0]), len(want))
	}
	for i, p := range passes[0] {
		if p != want[i] {
			t.Fatalf("pixel %d = %v, want %v", i, p, want[i])
		}
	}
}

func TestInterlacerAdam7Counts(t *testing.T) {
	for _, tc := range []struct {
		width, height int
		counts        [7]int
	}{
		{8, 8, [7]int{1, 1, 2, 4, 8, 16, 32}},
		{3, 3, [7]int{1, 0, 0, 1, 2, 2, 3}},
		{1, 1, [7]int{1, 0, 0, 0, 0, 0, 0}},
		{16, 16, [7]int{4, 4, 8, 16, 32, 64, 128}},
	} {
		it := NewInterlacer(tc.width, tc.height, InterlaceAdam7)
		sizes, passes := drainPasses(t, it)
		if len(sizes) != 7 {
			t.Fatalf("%dx%d: pass count = %d, want 7", tc.width, tc.height, len(sizes))
		}
		total := 0
		for i, pass := range passes {
			if len(pass) != tc.counts[i] {
				t.Errorf("%dx%d pass %d: %d pixels, want %d",
					tc.width, tc.height, i+1, len(pass), tc.counts[i])
			}
			if want := sizes[i].X * sizes[i].Y; len(pass) != want {
				t.Errorf("%dx%d pass %d: size %v disagrees with %d pixels",
					tc.width, tc.height, i+1, sizes[i], len(pass))
			}
			total += len(pass)
		}
		if total != tc.width*tc.height {
			t.Errorf("%dx%d: visited %d pixels, want %d", tc.width, tc.height, total, tc.width*tc.height)
		}
	}
}

func TestInterlacerAdam7CoversEveryPixelOnce(t *testing.T) {
	const w, h = 13, 7
	it := NewInterlacer(w, h, InterlaceAdam7)
	seen := make(map[image.Point]int)
	_, passes := drainPasses(t, it)
	for _, pass := range passes {
		for _, p := range pass {
			if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
				t.Fatalf("position %v outside %dx%d", p, w, h)
			}
			seen[p]++
		}
	}
	if len(seen) != w*h {
		t.Fatalf("covered %d distinct pixels, want %d", len(seen), w*h)
	}
	for p, n := range seen {
		if n != 1 {
			t.Fatalf("position %v visited %d times", p, n)
		}
	}
}

func TestInterlacerAdam7FirstPassPositions(t *testing.T) {
	it := NewInterlacer(16, 16, InterlaceAdam7)
	item, ok := it.Next()
	if !ok || !item.Begin || item.Size != image.Pt(2, 2) {
		t.Fatalf("first item = %+v, want BeginPass size (2,2)", item)
	}
	want := []image.Point{{0, 0}, {8, 0}, {0, 8}, {8, 8}}
	for _, w := range want {
		item, ok = it.Next()
		if !ok || item.Begin || item.Pos != w {
			t.Fatalf("got %+v, want position %v", item, w)
		}
	}
	item, ok = it.Next()
	if !ok || !item.Begin {
		t.Fatalf("got %+v, want BeginPass for pass 2", item)
	}
}
