package pixel

import "testing"

func TestWiden(t *testing.T) {
	for _, tc := range []struct {
		in   uint8
		want uint16
	}{
		{0x00, 0x0000},
		{0x01, 0x0101},
		{0x7F, 0x7F7F},
		{0x80, 0x8080},
		{0xFF, 0xFFFF},
	} {
		if got := Widen(tc.in); got != tc.want {
			t.Errorf("Widen(%#x) = %#x, want %#x", tc.in, got, tc.want)
		}
	}
}

func TestNarrow(t *testing.T) {
	for _, tc := range []struct {
		in   uint16
		want uint8
	}{
		{0x0000, 0x00},
		{0x00FF, 0x00},
		{0x0100, 0x01},
		{0x7FFF, 0x7F},
		{0xFFFF, 0xFF},
	} {
		if got := Narrow(tc.in); got != tc.want {
			t.Errorf("Narrow(%#x) = %#x, want %#x", tc.in, got, tc.want)
		}
	}
}

func TestNarrowInvertsWiden(t *testing.T) {
	for v := 0; v < 256; v++ {
		if got := Narrow(Widen(uint8(v))); got != uint8(v) {
			t.Fatalf("Narrow(Widen(%d)) = %d", v, got)
		}
	}
}

func TestBuffer(t *testing.T) {
	b := NewBuffer[RGB[uint8]](3, 2)
	if w, h := b.Size(); w != 3 || h != 2 {
		t.Fatalf("Size = %dx%d, want 3x2", w, h)
	}
	if len(b.Pix()) != 6 {
		t.Fatalf("Pix length = %d, want 6", len(b.Pix()))
	}
	red := RGB[uint8]{R: 255}
	b.SetPixelAt(2, 1, red)
	if got := b.PixelAt(2, 1); got != red {
		t.Fatalf("PixelAt(2,1) = %v, want %v", got, red)
	}
	// Row-major backing order.
	if got := b.Pix()[5]; got != red {
		t.Fatalf("Pix()[5] = %v, want %v", got, red)
	}
	if got := b.PixelAt(0, 0); got != (RGB[uint8]{}) {
		t.Fatalf("PixelAt(0,0) = %v, want zero", got)
	}
}
