package vtk

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty-ish":      {0},
		"repetitive":     bytes.Repeat([]byte("0.000 1.000 2.000 "), 200),
		"incompressible": {7, 191, 13, 201, 255, 3, 99, 42, 17, 81, 233, 5},
	}
	for _, kind := range []CompressorKind{CompressNone, CompressZlib, CompressLZ4, CompressZstd} {
		codec, err := CodecFor(kind)
		require.NoError(t, err)
		for name, data := range payloads {
			t.Run(string(kind)+"/"+name, func(t *testing.T) {
				comp, err := codec.Compress(data)
				require.NoError(t, err)
				out, err := codec.Decompress(comp, len(data))
				require.NoError(t, err)
				assert.Equal(t, data, out)
			})
		}
	}
}

func TestCodecForUnknownKind(t *testing.T) {
	_, err := CodecFor("brotli")
	assert.Error(t, err)
}

func TestCompressorClassNames(t *testing.T) {
	for _, kind := range []CompressorKind{CompressZlib, CompressLZ4, CompressZstd} {
		class := kind.vtkClassName()
		require.NotEmpty(t, class)
		back, err := compressorKindForClass(class)
		require.NoError(t, err)
		assert.Equal(t, kind, back)
	}
	back, err := compressorKindForClass("")
	require.NoError(t, err)
	assert.Equal(t, CompressNone, back)
}
