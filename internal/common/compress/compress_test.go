package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressAndDecompressGiveOriginalValue(t *testing.T) {
	compressor, err := NewZlibCompressor(0)
	require.NoError(t, err)
	decompressor, err := NewZlibDecompressor()
	require.NoError(t, err)

	inputs := [][]byte{
		[]byte("checkpoint"),
		bytes.Repeat([]byte{0, 1, 2, 3}, 1024),
		{},
	}
	for _, input := range inputs {
		compressed, err := compressor.Compress(input)
		require.NoError(t, err)
		decompressed, err := decompressor.Decompress(compressed)
		require.NoError(t, err)
		assert.Equal(t, len(input), len(decompressed))
		assert.True(t, bytes.Equal(input, decompressed))
	}
}

func TestZlibCompressorShrinksRepetitiveInput(t *testing.T) {
	compressor, err := NewZlibCompressor(9)
	require.NoError(t, err)
	input := bytes.Repeat([]byte("tau=0.005;"), 500)
	compressed, err := compressor.Compress(input)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(input))
}

func TestZlibDecompressor_Garbage(t *testing.T) {
	decompressor, err := NewZlibDecompressor()
	require.NoError(t, err)
	_, err = decompressor.Decompress([]byte("not zlib"))
	assert.Error(t, err)
}
