package png

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"

	"github.com/snksoft/crc"
)

// Below is visually what a chunk in the PNG datastream looks like.
//
//	+------------+ +------------+ +------------+ +-------+
//	|   LENGTH   | | CHUNK TYPE | | CHUNK DATA | |  CRC  |
//	+------------+ +------------+ +------------+ +-------+
//
// The CRC is calculated over the chunk type and data, but NOT the length.

// newChunkHash returns a CRC32 context seeded with the chunk tag bytes.
func newChunkHash(id ChunkID) *crc.Hash {
	h := crc.NewHash(crc.CRC32)
	h.Write(id[:])
	return h
}

// ChunkReader reads the data stream of one PNG chunk and checks the CRC
// at the end.
//
// The caller must call Finish when done with the chunk. A reader that is
// simply abandoned never verifies the CRC.
type ChunkReader struct {
	id     ChunkID
	crc    *crc.Hash
	inner  io.Reader
	length uint32
	pos    uint32
}

// NewChunkReader reads a chunk header (4-byte big-endian length plus
// 4-byte tag) and begins reading the chunk.
func NewChunkReader(r io.Reader) (*ChunkReader, error) {
	var header [8]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	id, err := ParseChunkID(header[4:8])
	if err != nil {
		return nil, err
	}
	return &ChunkReader{
		id:     id,
		crc:    newChunkHash(id),
		inner:  r,
		length: binary.BigEndian.Uint32(header[:4]),
	}, nil
}

// ChunkID returns the chunk's tag.
func (cr *ChunkReader) ChunkID() ChunkID {
	return cr.id
}

// ChunkLen returns the length of the chunk body, including bytes that
// have already been read.
func (cr *ChunkReader) ChunkLen() uint32 {
	return cr.length
}

// Remaining returns the number of unread bytes in the chunk body.
func (cr *ChunkReader) Remaining() uint32 {
	return cr.length - cr.pos
}

// Read streams chunk body bytes, hashing each into the running CRC.
// It returns io.EOF at the end of the body; the trailing CRC field is
// consumed and verified by Finish.
func (cr *ChunkReader) Read(p []byte) (int, error) {
	if cr.pos == cr.length {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	if rem := cr.Remaining(); uint32(len(p)) > rem {
		p = p[:rem]
	}
	n, err := cr.inner.Read(p)
	if n > 0 {
		cr.crc.Write(p[:n])
		cr.pos += uint32(n)
	} else if err == nil || errors.Is(err, io.EOF) {
		return 0, io.ErrUnexpectedEOF
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return n, err
}

// Finish reads to the end of the chunk, checks the CRC, and returns the
// inner reader.
func (cr *ChunkReader) Finish() (io.Reader, error) {
	if err := cr.checkCRC(); err != nil {
		return nil, err
	}
	return cr.inner, nil
}

// checkCRC skips to the end of the body, reads the stored CRC, and
// compares it against the running hash. The hash context survives the
// check so the reader can be re-seeded for another segment.
func (cr *ChunkReader) checkCRC() error {
	if _, err := io.Copy(io.Discard, cr); err != nil {
		return err
	}
	var stored [4]byte
	if _, err := io.ReadFull(cr.inner, stored[:]); err != nil {
		return err
	}
	if uint32(cr.crc.CRC()) != binary.BigEndian.Uint32(stored[:]) {
		return ErrCRC
	}
	return nil
}

// restart re-seeds the reader for the next chunk in a merged segment.
func (cr *ChunkReader) restart(length uint32) {
	cr.crc.Reset()
	cr.crc.Write(cr.id[:])
	cr.length = length
	cr.pos = 0
}

// ProgressiveChunkReader reads consecutive chunks that share one tag as a
// single logical data stream.
//
// This exists because some data streams, particularly IDAT, may be split
// into multiple chunks so the encoder does not have to know the length of
// the whole compressed stream before writing any of it. The inner reader
// must be a *bufio.Reader: the merge requires an 8-byte non-destructive
// lookahead to decide whether the next chunk continues the stream.
type ProgressiveChunkReader struct {
	chunk *ChunkReader
	peek  *bufio.Reader
	done  bool
}

// NewProgressiveChunkReader wraps an open chunk reader. The chunk must
// have been constructed over a *bufio.Reader.
func NewProgressiveChunkReader(chunk *ChunkReader) (*ProgressiveChunkReader, error) {
	br, ok := chunk.inner.(*bufio.Reader)
	if !ok {
		return nil, errors.New("png: progressive chunk reader requires a buffered lookahead reader")
	}
	return &ProgressiveChunkReader{chunk: chunk, peek: br}, nil
}

// ChunkID returns the shared tag of the merged chunks.
func (pr *ProgressiveChunkReader) ChunkID() ChunkID {
	return pr.chunk.id
}

// Read produces the merged body bytes. When the current chunk is
// exhausted it verifies the CRC and peeks the next chunk header: a
// matching tag continues the stream, anything else ends it with io.EOF
// and leaves the header unconsumed for the orchestrator.
func (pr *ProgressiveChunkReader) Read(p []byte) (int, error) {
	if pr.done {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	for {
		n, err := pr.chunk.Read(p)
		if n > 0 || !errors.Is(err, io.EOF) {
			return n, err
		}
		if err := pr.chunk.checkCRC(); err != nil {
			return 0, err
		}
		header, err := pr.peek.Peek(8)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Clean EOF at a chunk boundary ends the logical stream;
				// whether a required chunk is missing is the
				// orchestrator's call. A partial header is corruption.
				if len(header) == 0 {
					pr.done = true
					return 0, io.EOF
				}
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		id, err := ParseChunkID(header[4:8])
		if err != nil || id != pr.chunk.id {
			pr.done = true
			return 0, io.EOF
		}
		length := binary.BigEndian.Uint32(header[:4])
		if _, err := pr.peek.Discard(8); err != nil {
			return 0, err
		}
		pr.chunk.restart(length)
	}
}

// Finish drains any remaining merged chunks, validates the final CRC, and
// returns the inner reader positioned at the next chunk header.
func (pr *ProgressiveChunkReader) Finish() (io.Reader, error) {
	if _, err := io.Copy(io.Discard, pr); err != nil {
		return nil, err
	}
	return pr.chunk.inner, nil
}

// ChunkWriter buffers a chunk body and its running CRC, emitting the
// framed chunk (length, tag, body, CRC) on Finish.
//
// The caller must call Finish to complete the chunk; an abandoned writer
// discards everything, including the header, because the body length must
// be known before any of the frame can be written.
type ChunkWriter struct {
	id     ChunkID
	crc    *crc.Hash
	data   []byte
	inner  io.Writer
	maxLen int // 0 means unbounded
}

// NewChunkWriter begins buffering a single chunk with the given tag.
func NewChunkWriter(w io.Writer, id ChunkID) *ChunkWriter {
	return &ChunkWriter{
		id:    id,
		crc:   newChunkHash(id),
		inner: w,
	}
}

// NewProgressiveChunkWriter begins a chunk writer that flushes a full
// physical chunk whenever the buffered body reaches maxLen, so one
// logical stream may emit many chunks sharing the tag. This mirrors the
// merge behavior of ProgressiveChunkReader in reverse.
func NewProgressiveChunkWriter(w io.Writer, id ChunkID, maxLen int) *ChunkWriter {
	if maxLen <= 0 {
		panic("png: progressive chunk writer needs a positive max length")
	}
	return &ChunkWriter{
		id:     id,
		crc:    newChunkHash(id),
		inner:  w,
		maxLen: maxLen,
	}
}

// Write appends body bytes, splitting into physical chunks in progressive
// mode.
func (cw *ChunkWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		if cw.maxLen > 0 && len(cw.data) == cw.maxLen {
			if err := cw.writeChunk(); err != nil {
				return total, err
			}
		}
		n := len(p)
		if cw.maxLen > 0 {
			if room := cw.maxLen - len(cw.data); n > room {
				n = room
			}
		}
		cw.data = append(cw.data, p[:n]...)
		cw.crc.Write(p[:n])
		p = p[n:]
		total += n
	}
	return total, nil
}

// Finish emits the buffered chunk and returns the inner writer.
func (cw *ChunkWriter) Finish() (io.Writer, error) {
	if err := cw.writeChunk(); err != nil {
		return nil, err
	}
	return cw.inner, nil
}

// writeChunk frames and flushes the buffered body, then resets the body
// and CRC context for the next physical chunk.
func (cw *ChunkWriter) writeChunk() error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(cw.data)))
	copy(header[4:], cw.id[:])
	if _, err := cw.inner.Write(header[:]); err != nil {
		return err
	}
	if _, err := cw.inner.Write(cw.data); err != nil {
		return err
	}
	var trailer [4]byte
	binary.BigEndian.PutUint32(trailer[:], uint32(cw.crc.CRC()))
	if _, err := cw.inner.Write(trailer[:]); err != nil {
		return err
	}
	cw.data = cw.data[:0]
	cw.crc.Reset()
	cw.crc.Write(cw.id[:])
	return nil
}
