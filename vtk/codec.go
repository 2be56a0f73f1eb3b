package vtk

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/pierrec/lz4/v4"
	"github.com/valyala/gozstd"
)

// CompressorKind selects the block compressor for binary XML output.
type CompressorKind string

const (
	CompressNone CompressorKind = "none"
	CompressZlib CompressorKind = "zlib"
	CompressLZ4  CompressorKind = "lz4"
	CompressZstd CompressorKind = "zstd"
)

// vtkClassName is the compressor class advertised in the VTKFile header.
func (k CompressorKind) vtkClassName() string {
	switch k {
	case CompressZlib:
		return "vtkZLibDataCompressor"
	case CompressLZ4:
		return "vtkLZ4DataCompressor"
	case CompressZstd:
		return "vtkZstdDataCompressor"
	default:
		return ""
	}
}

func compressorKindForClass(name string) (CompressorKind, error) {
	switch name {
	case "":
		return CompressNone, nil
	case "vtkZLibDataCompressor":
		return CompressZlib, nil
	case "vtkLZ4DataCompressor":
		return CompressLZ4, nil
	case "vtkZstdDataCompressor":
		return CompressZstd, nil
	default:
		return CompressNone, fmt.Errorf("unknown compressor class %q", name)
	}
}

// Codec compresses and decompresses one data block. Decompress is given the
// uncompressed size, which the XML block header always carries.
type Codec interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte, rawSize int) ([]byte, error)
}

// CodecFor returns the codec for kind, or an error for an unknown kind.
func CodecFor(kind CompressorKind) (Codec, error) {
	switch kind {
	case CompressNone:
		return noopCodec{}, nil
	case CompressZlib:
		return zlibCodec{}, nil
	case CompressLZ4:
		return lz4Codec{}, nil
	case CompressZstd:
		return zstdCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown compressor kind %q", kind)
	}
}

type noopCodec struct{}

var _ Codec = noopCodec{}

func (noopCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (noopCodec) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) != rawSize {
		return nil, fmt.Errorf("raw block is %d bytes, header says %d", len(data), rawSize)
	}
	return data, nil
}

type zlibCodec struct{}

var _ Codec = zlibCodec{}

func (zlibCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (zlibCodec) Decompress(data []byte, rawSize int) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]byte, rawSize)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

type lz4Codec struct{}

var _ Codec = lz4Codec{}

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var c lz4.Compressor
	n, err := c.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(data) {
		// incompressible input is stored raw; the reader detects this by
		// compressed size == raw size in the block header
		return data, nil
	}
	return dst[:n], nil
}

func (lz4Codec) Decompress(data []byte, rawSize int) ([]byte, error) {
	if len(data) == rawSize {
		return data, nil
	}
	out := make([]byte, rawSize)
	n, err := lz4.UncompressBlock(data, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

type zstdCodec struct{}

var _ Codec = zstdCodec{}

func (zstdCodec) Compress(data []byte) ([]byte, error) {
	return gozstd.Compress(nil, data), nil
}

func (zstdCodec) Decompress(data []byte, rawSize int) ([]byte, error) {
	out, err := gozstd.Decompress(nil, data)
	if err != nil {
		return nil, err
	}
	if len(out) != rawSize {
		return nil, fmt.Errorf("zstd block decompressed to %d bytes, header says %d", len(out), rawSize)
	}
	return out, nil
}
