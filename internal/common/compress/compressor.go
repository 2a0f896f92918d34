package compress

import (
	"bytes"
	"compress/zlib"

	"github.com/pkg/errors"
)

// Compressor compresses whole byte slices. Implementations reuse their buffers and are
// not safe for concurrent use.
type Compressor interface {
	Compress(b []byte) ([]byte, error)
}

// ZlibCompressor compresses with zlib.
type ZlibCompressor struct {
	buffer *bytes.Buffer
	writer *zlib.Writer
}

// NewZlibCompressor returns a compressor at the given zlib level; 0 selects the default level.
func NewZlibCompressor(level int) (*ZlibCompressor, error) {
	if level == 0 {
		level = zlib.DefaultCompression
	}
	buffer := new(bytes.Buffer)
	writer, err := zlib.NewWriterLevel(buffer, level)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &ZlibCompressor{buffer: buffer, writer: writer}, nil
}

func (c *ZlibCompressor) Compress(b []byte) ([]byte, error) {
	c.buffer.Reset()
	c.writer.Reset(c.buffer)
	if _, err := c.writer.Write(b); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := c.writer.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes.Clone(c.buffer.Bytes()), nil
}
