package vtk

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// legacyParser walks a legacy VTK file. Header and section keyword lines are
// always text; value blocks are whitespace-separated tokens in ASCII files
// and big-endian raw data in BINARY files.
type legacyParser struct {
	r      *bufio.Reader
	binary bool
	// pending holds a section header line consumed by a sub-parser that
	// belongs to the caller's dispatch loop.
	pending string
}

func (p *legacyParser) readLine() (string, error) {
	if p.pending != "" {
		line := p.pending
		p.pending = ""
		return line, nil
	}
	for {
		line, err := p.r.ReadString('\n')
		line = strings.TrimSpace(line)
		if err != nil {
			if err == io.EOF && line != "" {
				return line, nil
			}
			return line, err
		}
		if line != "" {
			return line, nil
		}
	}
}

// nextToken returns the next whitespace-delimited word (ASCII mode only).
func (p *legacyParser) nextToken() (string, error) {
	var sb strings.Builder
	// skip leading whitespace
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			return "", err
		}
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			sb.WriteByte(b)
			break
		}
	}
	for {
		b, err := p.r.ReadByte()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			return sb.String(), nil
		}
		sb.WriteByte(b)
	}
}

// skipBinaryNewline consumes the newline a binary section is terminated with.
func (p *legacyParser) skipBinaryNewline() {
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			return
		}
		if b != '\n' && b != '\r' {
			p.r.UnreadByte()
			return
		}
	}
}

func legacyTypeSize(dtype string) (int, error) {
	switch dtype {
	case "bit", "char", "unsigned_char":
		return 1, nil
	case "short", "unsigned_short":
		return 2, nil
	case "int", "unsigned_int", "float":
		return 4, nil
	case "long", "unsigned_long", "double", "vtktypeint64":
		return 8, nil
	default:
		return 0, fmt.Errorf("unsupported legacy data type %q", dtype)
	}
}

// readFloats reads n values of the given legacy type as float64.
func (p *legacyParser) readFloats(n int, dtype string) ([]float64, error) {
	out := make([]float64, n)
	if !p.binary {
		for i := 0; i < n; i++ {
			tok, err := p.nextToken()
			if err != nil {
				return nil, fmt.Errorf("unexpected EOF reading value %d of %d", i, n)
			}
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q: %w", tok, err)
			}
			out[i] = v
		}
		return out, nil
	}
	size, err := legacyTypeSize(dtype)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n*size)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return nil, fmt.Errorf("short binary read: %w", err)
	}
	for i := 0; i < n; i++ {
		b := buf[i*size:]
		switch dtype {
		case "float":
			out[i] = float64(math.Float32frombits(binary.BigEndian.Uint32(b)))
		case "double":
			out[i] = math.Float64frombits(binary.BigEndian.Uint64(b))
		case "int":
			out[i] = float64(int32(binary.BigEndian.Uint32(b)))
		case "unsigned_int":
			out[i] = float64(binary.BigEndian.Uint32(b))
		case "short":
			out[i] = float64(int16(binary.BigEndian.Uint16(b)))
		case "unsigned_short":
			out[i] = float64(binary.BigEndian.Uint16(b))
		case "char":
			out[i] = float64(int8(b[0]))
		case "unsigned_char", "bit":
			out[i] = float64(b[0])
		case "long", "vtktypeint64":
			out[i] = float64(int64(binary.BigEndian.Uint64(b)))
		case "unsigned_long":
			out[i] = float64(binary.BigEndian.Uint64(b))
		}
	}
	p.skipBinaryNewline()
	return out, nil
}

// readInts reads n connectivity integers (legacy files store them as 32-bit
// in binary mode).
func (p *legacyParser) readInts(n int) ([]int64, error) {
	out := make([]int64, n)
	if !p.binary {
		for i := 0; i < n; i++ {
			tok, err := p.nextToken()
			if err != nil {
				return nil, fmt.Errorf("unexpected EOF reading index %d of %d", i, n)
			}
			v, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid index %q: %w", tok, err)
			}
			out[i] = v
		}
		return out, nil
	}
	buf := make([]byte, n*4)
	if _, err := io.ReadFull(p.r, buf); err != nil {
		return nil, fmt.Errorf("short binary read: %w", err)
	}
	for i := 0; i < n; i++ {
		out[i] = int64(int32(binary.BigEndian.Uint32(buf[i*4:])))
	}
	p.skipBinaryNewline()
	return out, nil
}

// ReadDataSetFile reads any supported legacy dataset kind from path.
// Structured kinds are converted to unstructured hexahedral cells so a
// single downstream cell model suffices.
func ReadDataSetFile(path string) (DataSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDataSet(f)
}

// ReadUnstructuredGridFile reads path, requiring DATASET UNSTRUCTURED_GRID.
// Unlike the generic reader it tolerates a missing CELL_TYPES section by
// inferring cell types from vertex counts, which recovers some files the
// generic pass rejects.
func ReadUnstructuredGridFile(path string) (*UnstructuredGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ds, err := readLegacy(f, true)
	if err != nil {
		return nil, err
	}
	ug, ok := ds.(*UnstructuredGrid)
	if !ok {
		return nil, fmt.Errorf("dataset is not an unstructured grid")
	}
	return ug, nil
}

// ReadDataSet reads a legacy dataset from r.
func ReadDataSet(r io.Reader) (DataSet, error) {
	return readLegacy(r, false)
}

func readLegacy(r io.Reader, requireUnstructured bool) (DataSet, error) {
	p := &legacyParser{r: bufio.NewReaderSize(r, 1<<16)}

	header, err := p.readLine()
	if err != nil {
		return nil, fmt.Errorf("missing header: %w", err)
	}
	if !strings.HasPrefix(header, "# vtk DataFile Version") {
		return nil, fmt.Errorf("not a legacy VTK file: %q", header)
	}
	if _, err = p.readLine(); err != nil { // title, free text
		return nil, fmt.Errorf("missing title: %w", err)
	}
	format, err := p.readLine()
	if err != nil {
		return nil, fmt.Errorf("missing format line: %w", err)
	}
	switch strings.ToUpper(format) {
	case "ASCII":
	case "BINARY":
		p.binary = true
	default:
		return nil, fmt.Errorf("unknown file format %q", format)
	}

	kindLine, err := p.readLine()
	if err != nil {
		return nil, fmt.Errorf("missing DATASET line: %w", err)
	}
	fields := strings.Fields(kindLine)
	if len(fields) != 2 || fields[0] != "DATASET" {
		return nil, fmt.Errorf("expected DATASET line, got %q", kindLine)
	}
	kind := fields[1]
	if requireUnstructured && kind != "UNSTRUCTURED_GRID" {
		return nil, fmt.Errorf("expected UNSTRUCTURED_GRID, got %s", kind)
	}

	switch kind {
	case "POLYDATA":
		return p.readPolyData()
	case "UNSTRUCTURED_GRID":
		return p.readUnstructuredGrid(requireUnstructured)
	case "STRUCTURED_POINTS":
		return p.readStructuredPoints()
	case "STRUCTURED_GRID":
		return p.readStructuredGrid()
	case "RECTILINEAR_GRID":
		return p.readRectilinearGrid()
	default:
		return nil, fmt.Errorf("unsupported dataset kind %s", kind)
	}
}

func (p *legacyParser) readPointsSection(line string) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[0] != "POINTS" {
		return nil, fmt.Errorf("expected POINTS section, got %q", line)
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid point count %q", fields[1])
	}
	return p.readFloats(3*n, fields[2])
}

// readCellList reads a classic count-prefixed cell list (CELLS/POLYGONS/...)
// given its already-consumed header fields.
func (p *legacyParser) readCellList(fields []string) (Cells, error) {
	var cells Cells
	if len(fields) != 3 {
		return cells, fmt.Errorf("malformed cell section header %v", fields)
	}
	n, err1 := strconv.Atoi(fields[1])
	size, err2 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || n < 0 || size < n {
		return cells, fmt.Errorf("invalid cell section counts %v", fields[1:])
	}
	raw, err := p.readInts(size)
	if err != nil {
		return cells, err
	}
	pos := 0
	for i := 0; i < n; i++ {
		if pos >= len(raw) {
			return cells, fmt.Errorf("cell list truncated at cell %d of %d", i, n)
		}
		npts := int(raw[pos])
		pos++
		if npts < 0 || pos+npts > len(raw) {
			return cells, fmt.Errorf("cell %d claims %d points beyond list end", i, npts)
		}
		cells.Add(raw[pos : pos+npts]...)
		pos += npts
	}
	return cells, nil
}

func (p *legacyParser) readPolyData() (*PolyData, error) {
	pd := &PolyData{}
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return pd, nil
		}
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "POINTS":
			if pd.Points, err = p.readPointsSection(line); err != nil {
				return nil, err
			}
		case "POLYGONS":
			if pd.Polys, err = p.readCellList(fields); err != nil {
				return nil, err
			}
		case "VERTICES", "LINES", "TRIANGLE_STRIPS":
			// parsed to keep the stream aligned, not carried
			if _, err = p.readCellList(fields); err != nil {
				return nil, err
			}
		case "POINT_DATA":
			if err = p.readAttributes(fields, &pd.PointData); err != nil {
				return nil, err
			}
		case "CELL_DATA":
			var discard AttributeSet
			if err = p.readAttributes(fields, &discard); err != nil {
				return nil, err
			}
		case "FIELD":
			if err = p.readFieldArrays(fields, &pd.FieldData); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected section %q in POLYDATA", fields[0])
		}
	}
}

func (p *legacyParser) readUnstructuredGrid(inferTypes bool) (*UnstructuredGrid, error) {
	ug := &UnstructuredGrid{}
	sawCellTypes := false
	for {
		line, err := p.readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "POINTS":
			if ug.Points, err = p.readPointsSection(line); err != nil {
				return nil, err
			}
		case "CELLS":
			if ug.Cells, err = p.readCellList(fields); err != nil {
				return nil, err
			}
		case "CELL_TYPES":
			sawCellTypes = true
			if len(fields) != 2 {
				return nil, fmt.Errorf("malformed CELL_TYPES header %q", line)
			}
			n, convErr := strconv.Atoi(fields[1])
			if convErr != nil || n < 0 {
				return nil, fmt.Errorf("invalid CELL_TYPES count %q", fields[1])
			}
			raw, err := p.readInts(n)
			if err != nil {
				return nil, err
			}
			ug.CellTypes = make([]uint8, n)
			for i, v := range raw {
				ug.CellTypes[i] = uint8(v)
			}
		case "POINT_DATA":
			if err = p.readAttributes(fields, &ug.PointData); err != nil {
				return nil, err
			}
		case "CELL_DATA":
			if err = p.readAttributes(fields, &ug.CellData); err != nil {
				return nil, err
			}
		case "FIELD":
			if err = p.readFieldArrays(fields, &ug.FieldData); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected section %q in UNSTRUCTURED_GRID", fields[0])
		}
	}
	if ug.Cells.NumCells() > 0 && !sawCellTypes {
		if !inferTypes {
			return nil, fmt.Errorf("CELLS present but CELL_TYPES missing")
		}
		ug.CellTypes = inferCellTypes(&ug.Cells)
	}
	if len(ug.CellTypes) != ug.Cells.NumCells() {
		return nil, fmt.Errorf("CELL_TYPES count %d does not match %d cells",
			len(ug.CellTypes), ug.Cells.NumCells())
	}
	return ug, nil
}

// inferCellTypes guesses linear cell types from vertex counts. 8 vertices is
// ambiguous between hexahedron and voxel; hexahedron covers the files seen
// in practice.
func inferCellTypes(cells *Cells) []uint8 {
	types := make([]uint8, cells.NumCells())
	for i := range types {
		switch len(cells.Cell(i)) {
		case 1:
			types[i] = CellVertex
		case 2:
			types[i] = CellLine
		case 3:
			types[i] = CellTriangle
		case 4:
			types[i] = CellTetra
		case 5:
			types[i] = CellPyramid
		case 6:
			types[i] = CellWedge
		case 8:
			types[i] = CellHexahedron
		default:
			types[i] = CellPolyVertex
		}
	}
	return types
}

func (p *legacyParser) readDimensions(line string) (nx, ny, nz int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "DIMENSIONS" {
		return 0, 0, 0, fmt.Errorf("expected DIMENSIONS, got %q", line)
	}
	if nx, err = strconv.Atoi(fields[1]); err != nil {
		return
	}
	if ny, err = strconv.Atoi(fields[2]); err != nil {
		return
	}
	nz, err = strconv.Atoi(fields[3])
	return
}

// structuredCells materializes the implicit cell lattice of an nx*ny*nz
// point grid: hexahedra in the volumetric case, quads when one dimension
// collapses to a single layer.
func structuredCells(nx, ny, nz int) (Cells, []uint8) {
	var cells Cells
	pid := func(i, j, k int) int64 {
		return int64(i + j*nx + k*nx*ny)
	}
	cx, cy, cz := nx-1, ny-1, nz-1
	if cx < 0 {
		cx = 0
	}
	if cy < 0 {
		cy = 0
	}
	if cz < 0 {
		cz = 0
	}
	if cz == 0 && cx > 0 && cy > 0 {
		for j := 0; j < cy; j++ {
			for i := 0; i < cx; i++ {
				cells.Add(pid(i, j, 0), pid(i+1, j, 0), pid(i+1, j+1, 0), pid(i, j+1, 0))
			}
		}
		types := make([]uint8, cells.NumCells())
		for i := range types {
			types[i] = CellQuad
		}
		return cells, types
	}
	for k := 0; k < cz; k++ {
		for j := 0; j < cy; j++ {
			for i := 0; i < cx; i++ {
				cells.Add(
					pid(i, j, k), pid(i+1, j, k), pid(i+1, j+1, k), pid(i, j+1, k),
					pid(i, j, k+1), pid(i+1, j, k+1), pid(i+1, j+1, k+1), pid(i, j+1, k+1),
				)
			}
		}
	}
	types := make([]uint8, cells.NumCells())
	for i := range types {
		types[i] = CellHexahedron
	}
	return cells, types
}

func (p *legacyParser) finishStructured(ug *UnstructuredGrid) error {
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "POINT_DATA":
			if err = p.readAttributes(fields, &ug.PointData); err != nil {
				return err
			}
		case "CELL_DATA":
			if err = p.readAttributes(fields, &ug.CellData); err != nil {
				return err
			}
		case "FIELD":
			if err = p.readFieldArrays(fields, &ug.FieldData); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unexpected section %q in structured dataset", fields[0])
		}
	}
}

func (p *legacyParser) readStructuredPoints() (*UnstructuredGrid, error) {
	var (
		nx, ny, nz int
		origin     = [3]float64{}
		spacing    = [3]float64{1, 1, 1}
		gotDims    bool
	)
	for {
		line, err := p.readLine()
		if err == io.EOF && gotDims {
			return p.buildStructuredPoints(nx, ny, nz, origin, spacing), nil
		}
		if err != nil {
			return nil, fmt.Errorf("truncated STRUCTURED_POINTS header: %w", err)
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "DIMENSIONS":
			if nx, ny, nz, err = p.readDimensions(line); err != nil {
				return nil, err
			}
			gotDims = true
		case "ORIGIN", "SPACING", "ASPECT_RATIO":
			if len(fields) != 4 {
				return nil, fmt.Errorf("malformed %s line %q", fields[0], line)
			}
			var v [3]float64
			for i := 0; i < 3; i++ {
				if v[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
					return nil, fmt.Errorf("invalid %s value: %w", fields[0], err)
				}
			}
			if fields[0] == "ORIGIN" {
				origin = v
			} else {
				spacing = v
			}
		default:
			if !gotDims {
				return nil, fmt.Errorf("unexpected section %q before DIMENSIONS", fields[0])
			}
			ug := p.buildStructuredPoints(nx, ny, nz, origin, spacing)
			p.pending = line
			if err = p.finishStructured(ug); err != nil {
				return nil, err
			}
			return ug, nil
		}
	}
}

func (p *legacyParser) buildStructuredPoints(nx, ny, nz int, origin, spacing [3]float64) *UnstructuredGrid {
	ug := &UnstructuredGrid{}
	ug.Points = make([]float64, 0, 3*nx*ny*nz)
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				ug.Points = append(ug.Points,
					origin[0]+float64(i)*spacing[0],
					origin[1]+float64(j)*spacing[1],
					origin[2]+float64(k)*spacing[2])
			}
		}
	}
	ug.Cells, ug.CellTypes = structuredCells(nx, ny, nz)
	return ug
}

func (p *legacyParser) readStructuredGrid() (*UnstructuredGrid, error) {
	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	nx, ny, nz, err := p.readDimensions(line)
	if err != nil {
		return nil, err
	}
	line, err = p.readLine()
	if err != nil {
		return nil, err
	}
	ug := &UnstructuredGrid{}
	if ug.Points, err = p.readPointsSection(line); err != nil {
		return nil, err
	}
	if len(ug.Points) != 3*nx*ny*nz {
		return nil, fmt.Errorf("STRUCTURED_GRID has %d points, DIMENSIONS imply %d",
			len(ug.Points)/3, nx*ny*nz)
	}
	ug.Cells, ug.CellTypes = structuredCells(nx, ny, nz)
	if err = p.finishStructured(ug); err != nil {
		return nil, err
	}
	return ug, nil
}

func (p *legacyParser) readRectilinearGrid() (*UnstructuredGrid, error) {
	line, err := p.readLine()
	if err != nil {
		return nil, err
	}
	nx, ny, nz, err := p.readDimensions(line)
	if err != nil {
		return nil, err
	}
	coords := map[string][]float64{}
	for _, axis := range []string{"X_COORDINATES", "Y_COORDINATES", "Z_COORDINATES"} {
		line, err = p.readLine()
		if err != nil {
			return nil, err
		}
		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != axis {
			return nil, fmt.Errorf("expected %s section, got %q", axis, line)
		}
		n, convErr := strconv.Atoi(fields[1])
		if convErr != nil {
			return nil, fmt.Errorf("invalid %s count %q", axis, fields[1])
		}
		if coords[axis], err = p.readFloats(n, fields[2]); err != nil {
			return nil, err
		}
	}
	xs, ys, zs := coords["X_COORDINATES"], coords["Y_COORDINATES"], coords["Z_COORDINATES"]
	if len(xs) != nx || len(ys) != ny || len(zs) != nz {
		return nil, fmt.Errorf("coordinate counts (%d,%d,%d) do not match DIMENSIONS (%d,%d,%d)",
			len(xs), len(ys), len(zs), nx, ny, nz)
	}
	ug := &UnstructuredGrid{}
	ug.Points = make([]float64, 0, 3*nx*ny*nz)
	for _, z := range zs {
		for _, y := range ys {
			for _, x := range xs {
				ug.Points = append(ug.Points, x, y, z)
			}
		}
	}
	ug.Cells, ug.CellTypes = structuredCells(nx, ny, nz)
	if err = p.finishStructured(ug); err != nil {
		return nil, err
	}
	return ug, nil
}

// readAttributes reads the attribute blocks following POINT_DATA/CELL_DATA n
// until EOF or the start of the other attribute section (which it then
// dispatches into other).
func (p *legacyParser) readAttributes(header []string, dst *AttributeSet) error {
	if len(header) != 2 {
		return fmt.Errorf("malformed attribute section header %v", header)
	}
	n, err := strconv.Atoi(header[1])
	if err != nil || n < 0 {
		return fmt.Errorf("invalid attribute tuple count %q", header[1])
	}
	for {
		line, err := p.readLine()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "SCALARS":
			if err = p.readScalars(fields, n, dst); err != nil {
				return err
			}
		case "VECTORS", "NORMALS":
			if len(fields) != 3 {
				return fmt.Errorf("malformed %s line %q", fields[0], line)
			}
			vals, err := p.readFloats(3*n, fields[2])
			if err != nil {
				return err
			}
			dst.AddArray(&FloatArray{ArrayName: fields[1], DType: legacyFloatType(fields[2]), NComp: 3, Values: vals})
		case "FIELD":
			if err = p.readFieldArrays(fields, dst); err != nil {
				return err
			}
		case "LOOKUP_TABLE":
			// color table payloads are not needed downstream; only the
			// implicit "default" reference (no payload) is expected here
			if len(fields) == 3 {
				cnt, convErr := strconv.Atoi(fields[2])
				if convErr != nil {
					return fmt.Errorf("invalid LOOKUP_TABLE size %q", fields[2])
				}
				if _, err = p.readFloats(4*cnt, "float"); err != nil {
					return err
				}
			}
		case "POINT_DATA", "CELL_DATA", "POINTS", "CELLS", "CELL_TYPES",
			"POLYGONS", "VERTICES", "LINES", "TRIANGLE_STRIPS":
			// next top-level section, hand it back to the dispatch loop
			p.pending = line
			return nil
		default:
			return fmt.Errorf("unsupported attribute block %q", fields[0])
		}
	}
}

func legacyFloatType(dtype string) ArrayType {
	if dtype == "double" {
		return Float64
	}
	return Float32
}

func legacyIsIntegral(dtype string) bool {
	switch dtype {
	case "bit", "char", "unsigned_char", "short", "unsigned_short",
		"int", "unsigned_int", "long", "unsigned_long", "vtktypeint64":
		return true
	}
	return false
}

func (p *legacyParser) readScalars(fields []string, n int, dst *AttributeSet) error {
	if len(fields) < 3 || len(fields) > 4 {
		return fmt.Errorf("malformed SCALARS header %v", fields)
	}
	name, dtype := fields[1], fields[2]
	ncomp := 1
	if len(fields) == 4 {
		var err error
		if ncomp, err = strconv.Atoi(fields[3]); err != nil || ncomp < 1 || ncomp > 4 {
			return fmt.Errorf("invalid SCALARS component count %q", fields[3])
		}
	}
	// optional LOOKUP_TABLE line precedes the values
	peek, err := p.r.Peek(12)
	if err == nil && strings.HasPrefix(string(peek), "LOOKUP_TABLE") {
		if _, err = p.readLine(); err != nil {
			return err
		}
	}
	vals, err := p.readFloats(n*ncomp, dtype)
	if err != nil {
		return err
	}
	if legacyIsIntegral(dtype) {
		ints := make([]int64, len(vals))
		for i, v := range vals {
			ints[i] = int64(v)
		}
		dst.AddArray(&IntArray{ArrayName: name, DType: Int32, NComp: ncomp, Values: ints})
		return nil
	}
	dst.AddArray(&FloatArray{ArrayName: name, DType: legacyFloatType(dtype), NComp: ncomp, Values: vals})
	return nil
}

// readFieldArrays reads a FIELD block: header "FIELD name numArrays", then
// numArrays entries of "name numComp numTuples dtype" followed by values.
func (p *legacyParser) readFieldArrays(fields []string, dst *AttributeSet) error {
	if len(fields) != 3 {
		return fmt.Errorf("malformed FIELD header %v", fields)
	}
	numArrays, err := strconv.Atoi(fields[2])
	if err != nil || numArrays < 0 {
		return fmt.Errorf("invalid FIELD array count %q", fields[2])
	}
	for i := 0; i < numArrays; i++ {
		line, err := p.readLine()
		if err != nil {
			return fmt.Errorf("truncated FIELD block: %w", err)
		}
		af := strings.Fields(line)
		if len(af) != 4 {
			return fmt.Errorf("malformed FIELD array header %q", line)
		}
		ncomp, err1 := strconv.Atoi(af[1])
		ntup, err2 := strconv.Atoi(af[2])
		if err1 != nil || err2 != nil || ncomp < 1 || ntup < 0 {
			return fmt.Errorf("invalid FIELD array dimensions %q", line)
		}
		vals, err := p.readFloats(ncomp*ntup, af[3])
		if err != nil {
			return err
		}
		if legacyIsIntegral(af[3]) {
			ints := make([]int64, len(vals))
			for j, v := range vals {
				ints[j] = int64(v)
			}
			dst.AddArray(&IntArray{ArrayName: af[0], DType: Int32, NComp: ncomp, Values: ints})
		} else {
			dst.AddArray(&FloatArray{ArrayName: af[0], DType: legacyFloatType(af[3]), NComp: ncomp, Values: vals})
		}
	}
	return nil
}
