package png

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// CompressionMethod identifies the compression scheme of the IDAT stream.
// The wire format reserves a byte for it but defines only zlib; new
// methods are added as new values with new switch arms, never by open
// subtyping.
type CompressionMethod uint8

// CompressionZlib is a zlib (RFC 1950) wrapped DEFLATE stream, the only
// compression method the PNG specification defines.
const CompressionZlib CompressionMethod = 0

// ParseCompressionMethod validates the IHDR compression method byte.
func ParseCompressionMethod(raw byte) (CompressionMethod, error) {
	if raw != 0 {
		return 0, &CompressionMethodError{Raw: raw}
	}
	return CompressionZlib, nil
}

func (m CompressionMethod) String() string {
	switch m {
	case CompressionZlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// Compressor compresses the filtered scanline stream using the selected
// compression method.
type Compressor struct {
	method CompressionMethod
	zlib   *zlib.Writer
	inner  io.Writer
}

// NewCompressor wraps w with a compressor at maximum compression.
func NewCompressor(w io.Writer, method CompressionMethod) (*Compressor, error) {
	switch method {
	case CompressionZlib:
		zw, err := zlib.NewWriterLevel(w, zlib.BestCompression)
		if err != nil {
			return nil, err
		}
		return &Compressor{method: method, zlib: zw, inner: w}, nil
	default:
		return nil, &CompressionMethodError{Raw: byte(method)}
	}
}

func (c *Compressor) Write(p []byte) (int, error) {
	switch c.method {
	case CompressionZlib:
		return c.zlib.Write(p)
	default:
		panic("png: unreachable compression method")
	}
}

// Finish flushes the compressed stream, writes its trailer, and returns
// the inner writer.
func (c *Compressor) Finish() (io.Writer, error) {
	switch c.method {
	case CompressionZlib:
		if err := c.zlib.Close(); err != nil {
			return nil, err
		}
		return c.inner, nil
	default:
		panic("png: unreachable compression method")
	}
}

// Decompressor decompresses the IDAT stream using the selected
// compression method.
type Decompressor struct {
	method CompressionMethod
	zlib   io.ReadCloser
	inner  io.Reader
}

// NewDecompressor wraps r with a decompressor. For zlib this consumes the
// 2-byte stream header immediately.
func NewDecompressor(r io.Reader, method CompressionMethod) (*Decompressor, error) {
	switch method {
	case CompressionZlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, err
		}
		return &Decompressor{method: method, zlib: zr, inner: r}, nil
	default:
		return nil, &CompressionMethodError{Raw: byte(method)}
	}
}

func (d *Decompressor) Read(p []byte) (int, error) {
	switch d.method {
	case CompressionZlib:
		return d.zlib.Read(p)
	default:
		panic("png: unreachable compression method")
	}
}

// IntoInner returns the wrapped reader. Compressed bytes that were
// buffered but never decompressed are discarded.
func (d *Decompressor) IntoInner() io.Reader {
	return d.inner
}
