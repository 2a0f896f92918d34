package compress

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/pkg/errors"
)

// Decompressor reverses a Compressor.
type Decompressor interface {
	Decompress(b []byte) ([]byte, error)
}

// ZlibDecompressor decompresses zlib streams, reusing its reader between calls.
type ZlibDecompressor struct {
	output *bytes.Buffer
	reader io.ReadCloser
}

func NewZlibDecompressor() (*ZlibDecompressor, error) {
	return &ZlibDecompressor{output: new(bytes.Buffer)}, nil
}

func (d *ZlibDecompressor) Decompress(b []byte) ([]byte, error) {
	input := bytes.NewReader(b)
	if d.reader == nil {
		reader, err := zlib.NewReader(input)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		d.reader = reader
	} else if err := d.reader.(zlib.Resetter).Reset(input, nil); err != nil {
		return nil, errors.WithStack(err)
	}
	d.output.Reset()
	if _, err := io.Copy(d.output, d.reader); err != nil {
		return nil, errors.WithStack(err)
	}
	return bytes.Clone(d.output.Bytes()), nil
}
