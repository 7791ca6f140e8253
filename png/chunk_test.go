package png

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestParseChunkID(t *testing.T) {
	for _, tc := range []struct {
		name  string
		bytes []byte
		ok    bool
	}{
		{"critical", []byte("IHDR"), true},
		{"ancillary", []byte("tEXt"), true},
		{"too short", []byte("IHD"), false},
		{"too long", []byte("IHDRx"), false},
		{"digit", []byte("IH4R"), false},
		{"control byte", []byte{'I', 'H', 0x01, 'R'}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseChunkID(tc.bytes)
			if tc.ok {
				if err != nil {
					t.Fatalf("ParseChunkID(%q) = %v", tc.bytes, err)
				}
				if id.String() != string(tc.bytes) {
					t.Fatalf("got %q, want %q", id, tc.bytes)
				}
			} else if err == nil {
				t.Fatalf("ParseChunkID(%q) succeeded, want error", tc.bytes)
			}
		})
	}
}

func TestChunkIDFlags(t *testing.T) {
	id, err := ParseChunkID([]byte("tRNs"))
	if err != nil {
		t.Fatal(err)
	}
	if !id.IsAncillary() || id.IsCritical() {
		t.Error("first letter lowercase: want ancillary")
	}
	if !id.IsPublic() || id.IsPrivate() {
		t.Error("second letter uppercase: want public")
	}
	if !id.IsSafeToCopy() {
		t.Error("fourth letter lowercase: want safe to copy")
	}
	if IHDR.IsAncillary() || !IHDR.IsCritical() || IHDR.IsSafeToCopy() {
		t.Error("IHDR: want critical, not safe to copy")
	}
}

// writeTestChunk frames body as a single chunk with the given tag.
func writeTestChunk(t *testing.T, w io.Writer, id ChunkID, body []byte) {
	t.Helper()
	cw := NewChunkWriter(w, id)
	if _, err := cw.Write(body); err != nil {
		t.Fatal(err)
	}
	if _, err := cw.Finish(); err != nil {
		t.Fatal(err)
	}
}

func TestChunkRoundTrip(t *testing.T) {
	body := []byte("hello chunk body")
	var buf bytes.Buffer
	writeTestChunk(t, &buf, TRNS, body)

	// length(4) + tag(4) + body + crc(4)
	if got, want := buf.Len(), 12+len(body); got != want {
		t.Fatalf("framed length = %d, want %d", got, want)
	}

	cr, err := NewChunkReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if cr.ChunkID() != TRNS {
		t.Fatalf("chunk id = %s, want tRNS", cr.ChunkID())
	}
	if cr.ChunkLen() != uint32(len(body)) {
		t.Fatalf("chunk len = %d, want %d", cr.ChunkLen(), len(body))
	}
	got, err := io.ReadAll(cr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, body) {
		t.Fatalf("body = %q, want %q", got, body)
	}
	if _, err := cr.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestChunkReaderSkipsUnreadBody(t *testing.T) {
	var buf bytes.Buffer
	writeTestChunk(t, &buf, TRNS, []byte("unread body bytes"))

	cr, err := NewChunkReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	// Finish without reading anything; the CRC must still verify.
	if _, err := cr.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestChunkCRCMismatch(t *testing.T) {
	body := []byte("soon to be corrupted")
	var buf bytes.Buffer
	writeTestChunk(t, &buf, TRNS, body)

	raw := buf.Bytes()
	for _, tc := range []struct {
		name string
		pos  int
	}{
		{"body bit", 8 + 3},
		{"crc bit", len(raw) - 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			corrupt := append([]byte(nil), raw...)
			corrupt[tc.pos] ^= 0x10

			cr, err := NewChunkReader(bytes.NewReader(corrupt))
			if err != nil {
				t.Fatal(err)
			}
			if _, err := cr.Finish(); !errors.Is(err, ErrCRC) {
				t.Fatalf("Finish = %v, want ErrCRC", err)
			}
		})
	}
}

func TestProgressiveChunkWriterSplits(t *testing.T) {
	logical := []byte("0123456789abcdefghij")
	var buf bytes.Buffer
	cw := NewProgressiveChunkWriter(&buf, IDAT, 8)
	if _, err := cw.Write(logical); err != nil {
		t.Fatal(err)
	}
	if _, err := cw.Finish(); err != nil {
		t.Fatal(err)
	}
	writeTestChunk(t, &buf, IEND, nil)

	// 20 bytes with max_len 8 gives chunks of 8, 8, and 4 bytes.
	wantChunks := []int{8, 8, 4}
	raw := buf.Bytes()
	off := 0
	for i, want := range wantChunks {
		length := int(raw[off])<<24 | int(raw[off+1])<<16 | int(raw[off+2])<<8 | int(raw[off+3])
		if length != want {
			t.Fatalf("chunk %d length = %d, want %d", i, length, want)
		}
		if tag := string(raw[off+4 : off+8]); tag != "IDAT" {
			t.Fatalf("chunk %d tag = %q, want IDAT", i, tag)
		}
		off += 12 + length
	}

	// The progressive reader merges the split chunks back into one
	// logical stream and leaves the IEND header unconsumed.
	br := bufio.NewReader(bytes.NewReader(raw))
	cr, err := NewChunkReader(br)
	if err != nil {
		t.Fatal(err)
	}
	pr, err := NewProgressiveChunkReader(cr)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(pr)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, logical) {
		t.Fatalf("merged body = %q, want %q", got, logical)
	}
	if _, err := pr.Finish(); err != nil {
		t.Fatal(err)
	}

	next, err := NewChunkReader(br)
	if err != nil {
		t.Fatal(err)
	}
	if next.ChunkID() != IEND {
		t.Fatalf("next chunk = %s, want IEND", next.ChunkID())
	}
}

func TestProgressiveChunkReaderCRC(t *testing.T) {
	var buf bytes.Buffer
	cw := NewProgressiveChunkWriter(&buf, IDAT, 4)
	if _, err := cw.Write([]byte("abcdefgh")); err != nil {
		t.Fatal(err)
	}
	if _, err := cw.Finish(); err != nil {
		t.Fatal(err)
	}
	writeTestChunk(t, &buf, IEND, nil)

	// Corrupt a byte in the second physical chunk's body.
	raw := buf.Bytes()
	raw[12+4+8+2] ^= 0x01

	br := bufio.NewReader(bytes.NewReader(raw))
	cr, err := NewChunkReader(br)
	if err != nil {
		t.Fatal(err)
	}
	pr, err := NewProgressiveChunkReader(cr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := io.ReadAll(pr); !errors.Is(err, ErrCRC) {
		t.Fatalf("ReadAll = %v, want ErrCRC", err)
	}
}

func TestProgressiveChunkReaderEndOfStream(t *testing.T) {
	var buf bytes.Buffer
	cw := NewProgressiveChunkWriter(&buf, IDAT, 4)
	if _, err := cw.Write([]byte("abcdefgh")); err != nil {
		t.Fatal(err)
	}
	if _, err := cw.Finish(); err != nil {
		t.Fatal(err)
	}

	t.Run("clean end at chunk boundary", func(t *testing.T) {
		// Nothing follows the last chunk: the merged stream ends with a
		// plain EOF so the caller can decide what was supposed to follow.
		br := bufio.NewReader(bytes.NewReader(buf.Bytes()))
		cr, err := NewChunkReader(br)
		if err != nil {
			t.Fatal(err)
		}
		pr, err := NewProgressiveChunkReader(cr)
		if err != nil {
			t.Fatal(err)
		}
		got, err := io.ReadAll(pr)
		if err != nil {
			t.Fatalf("ReadAll = %v", err)
		}
		if !bytes.Equal(got, []byte("abcdefgh")) {
			t.Fatalf("merged body = %q", got)
		}
		if _, err := pr.Finish(); err != nil {
			t.Fatalf("Finish: %v", err)
		}
	})

	t.Run("partial next header", func(t *testing.T) {
		raw := append(append([]byte(nil), buf.Bytes()...), 0, 0, 0)
		br := bufio.NewReader(bytes.NewReader(raw))
		cr, err := NewChunkReader(br)
		if err != nil {
			t.Fatal(err)
		}
		pr, err := NewProgressiveChunkReader(cr)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := io.ReadAll(pr); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("ReadAll = %v, want ErrUnexpectedEOF", err)
		}
	})
}

func TestAbandonedChunkWriterWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	cw := NewChunkWriter(&buf, IDAT)
	if _, err := cw.Write([]byte("discarded")); err != nil {
		t.Fatal(err)
	}
	// No Finish: the frame must never reach the inner writer.
	if buf.Len() != 0 {
		t.Fatalf("abandoned writer flushed %d bytes", buf.Len())
	}
}
