package vtk

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

type xmlDataArray struct {
	Type          string `xml:"type,attr"`
	Name          string `xml:"Name,attr"`
	NumComponents int    `xml:"NumberOfComponents,attr"`
	NumTuples     int    `xml:"NumberOfTuples,attr"`
	Format        string `xml:"format,attr"`
	Body          string `xml:",chardata"`
}

type xmlArrayList struct {
	Arrays []xmlDataArray `xml:"DataArray"`
}

type xmlPiece struct {
	NumberOfPoints int          `xml:"NumberOfPoints,attr"`
	NumberOfPolys  int          `xml:"NumberOfPolys,attr"`
	PointData      xmlArrayList `xml:"PointData"`
	Points         xmlArrayList `xml:"Points"`
	Polys          xmlArrayList `xml:"Polys"`
}

type xmlPolyData struct {
	FieldData xmlArrayList `xml:"FieldData"`
	Piece     xmlPiece     `xml:"Piece"`
}

type xmlVTKFile struct {
	XMLName    xml.Name    `xml:"VTKFile"`
	Type       string      `xml:"type,attr"`
	ByteOrder  string      `xml:"byte_order,attr"`
	Compressor string      `xml:"compressor,attr"`
	PolyData   xmlPolyData `xml:"PolyData"`
}

// ReadPolyDataFile reads an XML PolyData (.vtp) file written by this
// package (ascii or binary, any supported compressor).
func ReadPolyDataFile(path string) (*PolyData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPolyData(f)
}

// ReadPolyData reads an XML PolyData document from r.
func ReadPolyData(r io.Reader) (*PolyData, error) {
	var doc xmlVTKFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	if doc.Type != "PolyData" {
		return nil, fmt.Errorf("VTKFile type is %q, want PolyData", doc.Type)
	}
	kind, err := compressorKindForClass(doc.Compressor)
	if err != nil {
		return nil, err
	}
	codec, err := CodecFor(kind)
	if err != nil {
		return nil, err
	}
	dec := &arrayDecoder{codec: codec, compressed: kind != CompressNone}

	pd := &PolyData{}
	piece := &doc.PolyData.Piece

	for _, xa := range doc.PolyData.FieldData.Arrays {
		a, err := dec.decode(&xa, xa.NumTuples)
		if err != nil {
			return nil, fmt.Errorf("field array %q: %w", xa.Name, err)
		}
		pd.FieldData.AddArray(a)
	}

	if len(piece.Points.Arrays) != 1 {
		return nil, fmt.Errorf("expected one Points array, got %d", len(piece.Points.Arrays))
	}
	ptsArr, err := dec.decode(&piece.Points.Arrays[0], piece.NumberOfPoints)
	if err != nil {
		return nil, fmt.Errorf("points array: %w", err)
	}
	fa, ok := ptsArr.(*FloatArray)
	if !ok || fa.NComp != 3 {
		return nil, fmt.Errorf("points array must be a 3-component float array")
	}
	pd.Points = fa.Values
	if pd.NumPoints() != piece.NumberOfPoints {
		return nil, fmt.Errorf("piece declares %d points, array holds %d",
			piece.NumberOfPoints, pd.NumPoints())
	}

	for _, xa := range piece.PointData.Arrays {
		a, err := dec.decode(&xa, piece.NumberOfPoints)
		if err != nil {
			return nil, fmt.Errorf("point array %q: %w", xa.Name, err)
		}
		pd.PointData.AddArray(a)
	}

	var conn, offs []int64
	for _, xa := range piece.Polys.Arrays {
		a, err := dec.decode(&xa, -1)
		if err != nil {
			return nil, fmt.Errorf("polys array %q: %w", xa.Name, err)
		}
		ia, ok := a.(*IntArray)
		if !ok {
			return nil, fmt.Errorf("polys array %q is not integral", xa.Name)
		}
		switch xa.Name {
		case "connectivity":
			conn = ia.Values
		case "offsets":
			offs = ia.Values
		}
	}
	if len(offs) != piece.NumberOfPolys {
		return nil, fmt.Errorf("piece declares %d polys, offsets holds %d",
			piece.NumberOfPolys, len(offs))
	}
	pd.Polys = Cells{Connectivity: conn, Offsets: offs}

	if err := CheckPointDataLengths(pd); err != nil {
		return nil, err
	}
	return pd, nil
}

type arrayDecoder struct {
	codec      Codec
	compressed bool
}

// decode turns one XML DataArray element back into a typed array. numTuples
// is the expected tuple count, or -1 when the element count is free
// (connectivity arrays).
func (d *arrayDecoder) decode(xa *xmlDataArray, numTuples int) (DataArray, error) {
	ncomp := xa.NumComponents
	if ncomp == 0 {
		ncomp = 1
	}
	atype := ArrayType(xa.Type)

	var raw []byte
	switch xa.Format {
	case "binary":
		var err error
		if raw, err = d.decodeBinaryBody(xa.Body); err != nil {
			return nil, err
		}
	case "ascii", "":
	default:
		return nil, fmt.Errorf("unsupported format %q", xa.Format)
	}

	switch atype {
	case Float32, Float64:
		var vals []float64
		if raw != nil {
			vals = decodeFloatPayload(raw, atype)
		} else {
			fields := strings.Fields(xa.Body)
			vals = make([]float64, len(fields))
			for i, f := range fields {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, fmt.Errorf("bad float value %q", f)
				}
				vals[i] = v
			}
		}
		if numTuples >= 0 && len(vals) != numTuples*ncomp {
			return nil, fmt.Errorf("expected %d values, got %d", numTuples*ncomp, len(vals))
		}
		return &FloatArray{ArrayName: xa.Name, DType: atype, NComp: ncomp, Values: vals}, nil

	case Int32, Int64:
		var vals []int64
		if raw != nil {
			vals = decodeIntPayload(raw, atype)
		} else {
			fields := strings.Fields(xa.Body)
			vals = make([]int64, len(fields))
			for i, f := range fields {
				v, err := strconv.ParseInt(f, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("bad integer value %q", f)
				}
				vals[i] = v
			}
		}
		if numTuples >= 0 && len(vals) != numTuples*ncomp {
			return nil, fmt.Errorf("expected %d values, got %d", numTuples*ncomp, len(vals))
		}
		return &IntArray{ArrayName: xa.Name, DType: atype, NComp: ncomp, Values: vals}, nil

	case String:
		if raw == nil {
			fields := strings.Fields(xa.Body)
			raw = make([]byte, len(fields))
			for i, f := range fields {
				v, err := strconv.ParseUint(f, 10, 8)
				if err != nil {
					return nil, fmt.Errorf("bad string byte value %q", f)
				}
				raw[i] = byte(v)
			}
		}
		var vals []string
		start := 0
		for i, b := range raw {
			if b == 0 {
				vals = append(vals, string(raw[start:i]))
				start = i + 1
			}
		}
		if numTuples >= 0 && len(vals) != numTuples {
			return nil, fmt.Errorf("expected %d strings, got %d", numTuples, len(vals))
		}
		return &StringArray{ArrayName: xa.Name, Values: vals}, nil

	default:
		return nil, fmt.Errorf("unsupported array type %q", xa.Type)
	}
}

// decodeBinaryBody reverses writeBinaryValues: an uncompressed single
// base64 stream of UInt32 length + data, or a base64 block header followed
// by the base64 compressed block.
func (d *arrayDecoder) decodeBinaryBody(body string) ([]byte, error) {
	body = strings.TrimSpace(body)
	enc := base64.StdEncoding
	if !d.compressed {
		blob, err := enc.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("bad base64 payload: %w", err)
		}
		if len(blob) < 4 {
			return nil, fmt.Errorf("binary payload shorter than its header")
		}
		n := binary.LittleEndian.Uint32(blob)
		if int(n) != len(blob)-4 {
			return nil, fmt.Errorf("header says %d bytes, payload has %d", n, len(blob)-4)
		}
		return blob[4:], nil
	}
	// 16 header bytes encode to 24 base64 characters
	if len(body) < 24 {
		return nil, fmt.Errorf("compressed payload shorter than its header")
	}
	hdr, err := enc.DecodeString(body[:24])
	if err != nil {
		return nil, fmt.Errorf("bad block header: %w", err)
	}
	nblocks := binary.LittleEndian.Uint32(hdr[0:])
	rawSize := binary.LittleEndian.Uint32(hdr[4:])
	compSize := binary.LittleEndian.Uint32(hdr[12:])
	if nblocks != 1 {
		return nil, fmt.Errorf("multi-block arrays are not supported (%d blocks)", nblocks)
	}
	comp, err := enc.DecodeString(body[24:])
	if err != nil {
		return nil, fmt.Errorf("bad base64 payload: %w", err)
	}
	if len(comp) != int(compSize) {
		return nil, fmt.Errorf("header says %d compressed bytes, payload has %d", compSize, len(comp))
	}
	return d.codec.Decompress(comp, int(rawSize))
}

func decodeFloatPayload(raw []byte, atype ArrayType) []float64 {
	size := 4
	if atype == Float64 {
		size = 8
	}
	vals := make([]float64, len(raw)/size)
	for i := range vals {
		b := raw[i*size:]
		if atype == Float64 {
			vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(b))
		} else {
			vals[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}
	}
	return vals
}

func decodeIntPayload(raw []byte, atype ArrayType) []int64 {
	size := 4
	if atype == Int64 {
		size = 8
	}
	vals := make([]int64, len(raw)/size)
	for i := range vals {
		b := raw[i*size:]
		if atype == Int64 {
			vals[i] = int64(binary.LittleEndian.Uint64(b))
		} else {
			vals[i] = int64(int32(binary.LittleEndian.Uint32(b)))
		}
	}
	return vals
}
