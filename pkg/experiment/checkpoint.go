package experiment

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/armadaproject/expctl/internal/common/compress"
	"github.com/armadaproject/expctl/internal/common/expctlerrors"
)

// Checkpoint is a set of named tensors, e.g. the parameters of a model at some training step.
type Checkpoint struct {
	Step    int
	Tensors map[string]NDArray
}

// CheckpointSaver writes a Checkpoint (or *Checkpoint) gob encoded and zlib compressed.
func CheckpointSaver(path string, data any) error {
	var checkpoint Checkpoint
	switch t := data.(type) {
	case Checkpoint:
		checkpoint = t
	case *Checkpoint:
		checkpoint = *t
	default:
		return errors.WithStack(&expctlerrors.ErrInvalidArgument{
			Name:    "data",
			Value:   fmt.Sprintf("%T", data),
			Message: "not a checkpoint",
		})
	}
	for name, tensor := range checkpoint.Tensors {
		if _, err := NewNDArray(tensor.Shape, tensor.Data); err != nil {
			return errors.WithMessagef(err, "invalid tensor %s", name)
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(checkpoint); err != nil {
		return errors.WithStack(err)
	}
	compressor, err := compress.NewZlibCompressor(0)
	if err != nil {
		return err
	}
	compressed, err := compressor.Compress(buf.Bytes())
	if err != nil {
		return err
	}
	return errors.WithStack(os.WriteFile(path, compressed, 0o644))
}

// CheckpointLoader reads a file written by CheckpointSaver into a *Checkpoint.
func CheckpointLoader(path string) (any, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	decompressor, err := compress.NewZlibDecompressor()
	if err != nil {
		return nil, err
	}
	data, err := decompressor.Decompress(compressed)
	if err != nil {
		return nil, err
	}
	checkpoint := &Checkpoint{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(checkpoint); err != nil {
		return nil, errors.WithStack(err)
	}
	return checkpoint, nil
}
