package vtk

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
)

// DataFormat selects how XML DataArray payloads are encoded.
type DataFormat string

const (
	FormatASCII  DataFormat = "ascii"
	FormatBinary DataFormat = "binary"
)

// XMLOptions controls XML PolyData serialization. The zero value writes
// ascii, uncompressed.
type XMLOptions struct {
	Format     DataFormat
	Compressor CompressorKind
}

func (o XMLOptions) normalize() (XMLOptions, error) {
	if o.Format == "" {
		o.Format = FormatASCII
	}
	if o.Compressor == "" {
		o.Compressor = CompressNone
	}
	if o.Format != FormatASCII && o.Format != FormatBinary {
		return o, fmt.Errorf("unknown data format %q", o.Format)
	}
	if o.Format == FormatASCII && o.Compressor != CompressNone {
		return o, fmt.Errorf("compression requires binary format")
	}
	return o, nil
}

// Validate reports whether the option combination can serialize anything.
func (o XMLOptions) Validate() error {
	o, err := o.normalize()
	if err != nil {
		return err
	}
	_, err = CodecFor(o.Compressor)
	return err
}

// WritePolyDataFile serializes pd to path as XML PolyData. The file is
// staged in memory and written in one call.
func WritePolyDataFile(path string, pd *PolyData, opts XMLOptions) error {
	data, err := MarshalPolyData(pd, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// MarshalPolyData serializes pd to XML PolyData bytes.
func MarshalPolyData(pd *PolyData, opts XMLOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePolyData(&buf, pd, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WritePolyData serializes pd to w as a self-describing XML PolyData file:
// point coordinates, polygon connectivity, and every named point/field
// array with its declared type.
func WritePolyData(w io.Writer, pd *PolyData, opts XMLOptions) error {
	opts, err := opts.normalize()
	if err != nil {
		return err
	}
	if err := CheckPointDataLengths(pd); err != nil {
		return err
	}
	codec, err := CodecFor(opts.Compressor)
	if err != nil {
		return err
	}
	aw := &arrayWriter{w: w, opts: opts, codec: codec}

	fmt.Fprintf(w, "<?xml version=\"1.0\"?>\n")
	fmt.Fprintf(w, "<VTKFile type=\"PolyData\" version=\"1.0\" byte_order=\"LittleEndian\" header_type=\"UInt32\"")
	if class := opts.Compressor.vtkClassName(); class != "" {
		fmt.Fprintf(w, " compressor=%q", class)
	}
	fmt.Fprintf(w, ">\n")
	fmt.Fprintf(w, "  <PolyData>\n")

	if pd.FieldData.Len() > 0 {
		fmt.Fprintf(w, "    <FieldData>\n")
		for _, a := range pd.FieldData.Arrays() {
			if err := aw.writeArray(a, "      ", true); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "    </FieldData>\n")
	}

	fmt.Fprintf(w, "    <Piece NumberOfPoints=\"%d\" NumberOfVerts=\"0\" NumberOfLines=\"0\" NumberOfStrips=\"0\" NumberOfPolys=\"%d\">\n",
		pd.NumPoints(), pd.NumPolys())

	if pd.PointData.Len() > 0 {
		fmt.Fprintf(w, "      <PointData>\n")
		for _, a := range pd.PointData.Arrays() {
			if err := aw.writeArray(a, "        ", false); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "      </PointData>\n")
	}

	fmt.Fprintf(w, "      <Points>\n")
	points := &FloatArray{ArrayName: "Points", DType: Float32, NComp: 3, Values: pd.Points}
	if err := aw.writeArray(points, "        ", false); err != nil {
		return err
	}
	fmt.Fprintf(w, "      </Points>\n")

	fmt.Fprintf(w, "      <Polys>\n")
	conn := &IntArray{ArrayName: "connectivity", DType: Int64, NComp: 1, Values: pd.Polys.Connectivity}
	offs := &IntArray{ArrayName: "offsets", DType: Int64, NComp: 1, Values: pd.Polys.Offsets}
	if err := aw.writeArray(conn, "        ", false); err != nil {
		return err
	}
	if err := aw.writeArray(offs, "        ", false); err != nil {
		return err
	}
	fmt.Fprintf(w, "      </Polys>\n")

	fmt.Fprintf(w, "    </Piece>\n")
	fmt.Fprintf(w, "  </PolyData>\n")
	fmt.Fprintf(w, "</VTKFile>\n")
	return nil
}

type arrayWriter struct {
	w     io.Writer
	opts  XMLOptions
	codec Codec
}

func (aw *arrayWriter) writeArray(a DataArray, indent string, fieldData bool) error {
	fmt.Fprintf(aw.w, "%s<DataArray type=%q Name=\"%s\"", indent, string(a.Type()), xmlEscape(a.Name()))
	if fieldData {
		fmt.Fprintf(aw.w, " NumberOfTuples=\"%d\"", a.NumTuples())
	}
	if a.NumComponents() != 1 {
		fmt.Fprintf(aw.w, " NumberOfComponents=\"%d\"", a.NumComponents())
	}
	fmt.Fprintf(aw.w, " format=%q>", string(aw.opts.Format))

	var err error
	if aw.opts.Format == FormatASCII {
		err = writeASCIIValues(aw.w, a)
	} else {
		err = aw.writeBinaryValues(a)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(aw.w, "</DataArray>\n")
	return nil
}

func writeASCIIValues(w io.Writer, a DataArray) error {
	switch arr := a.(type) {
	case *FloatArray:
		bits := 64
		if arr.DType == Float32 {
			bits = 32
		}
		for i, v := range arr.Values {
			if i > 0 {
				io.WriteString(w, " ")
			}
			io.WriteString(w, strconv.FormatFloat(v, 'g', -1, bits))
		}
	case *IntArray:
		for i, v := range arr.Values {
			if i > 0 {
				io.WriteString(w, " ")
			}
			io.WriteString(w, strconv.FormatInt(v, 10))
		}
	case *StringArray:
		// VTK convention: each string as decimal byte values with a 0
		// terminator
		first := true
		for _, s := range arr.Values {
			for _, b := range append([]byte(s), 0) {
				if !first {
					io.WriteString(w, " ")
				}
				first = false
				io.WriteString(w, strconv.Itoa(int(b)))
			}
		}
	default:
		return fmt.Errorf("unsupported array implementation %T", a)
	}
	return nil
}

// payloadBytes encodes the array values little-endian per the declared type.
func payloadBytes(a DataArray) ([]byte, error) {
	var buf bytes.Buffer
	switch arr := a.(type) {
	case *FloatArray:
		for _, v := range arr.Values {
			if arr.DType == Float64 {
				binary.Write(&buf, binary.LittleEndian, v)
			} else {
				binary.Write(&buf, binary.LittleEndian, float32(v))
			}
		}
	case *IntArray:
		for _, v := range arr.Values {
			if arr.DType == Int64 {
				binary.Write(&buf, binary.LittleEndian, v)
			} else {
				binary.Write(&buf, binary.LittleEndian, int32(v))
			}
		}
	case *StringArray:
		for _, s := range arr.Values {
			buf.WriteString(s)
			buf.WriteByte(0)
		}
	default:
		return nil, fmt.Errorf("unsupported array implementation %T", a)
	}
	return buf.Bytes(), nil
}

// writeBinaryValues emits the inline base64 payload. Uncompressed data is a
// single stream of a UInt32 length header followed by the raw bytes.
// Compressed data is the base64 of a one-block compression header
// [nblocks, blockSize, lastBlockSize, compressedSize] followed by the
// base64 of the compressed block.
func (aw *arrayWriter) writeBinaryValues(a DataArray) error {
	raw, err := payloadBytes(a)
	if err != nil {
		return err
	}
	enc := base64.StdEncoding
	if aw.opts.Compressor == CompressNone {
		hdr := make([]byte, 4)
		binary.LittleEndian.PutUint32(hdr, uint32(len(raw)))
		io.WriteString(aw.w, enc.EncodeToString(append(hdr, raw...)))
		return nil
	}
	comp, err := aw.codec.Compress(raw)
	if err != nil {
		return fmt.Errorf("compressing array %q: %w", a.Name(), err)
	}
	hdr := make([]byte, 16)
	binary.LittleEndian.PutUint32(hdr[0:], 1)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(len(raw)))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(len(comp)))
	io.WriteString(aw.w, enc.EncodeToString(hdr))
	io.WriteString(aw.w, enc.EncodeToString(comp))
	return nil
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
