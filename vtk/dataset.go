// Package vtk implements the subset of the VTK file formats needed for
// combined time-series conversion: the legacy ".vtk" reader (ASCII and
// big-endian binary) and the XML PolyData (".vtp") writer/reader with
// optional block compression.
package vtk

import "fmt"

// ArrayType is the VTK data array element type, named as it appears in
// XML output.
type ArrayType string

const (
	Float32 ArrayType = "Float32"
	Float64 ArrayType = "Float64"
	Int32   ArrayType = "Int32"
	Int64   ArrayType = "Int64"
	UInt8   ArrayType = "UInt8"
	String  ArrayType = "String"
)

// DataArray is a named attribute array attached to points, cells or the
// dataset as a whole.
type DataArray interface {
	Name() string
	Type() ArrayType
	NumComponents() int
	NumTuples() int
}

// FloatArray holds Float32/Float64 tuple data. Values are kept as float64
// in memory; DType records the declared on-disk type.
type FloatArray struct {
	ArrayName string
	DType     ArrayType
	NComp     int
	Values    []float64
}

func (a *FloatArray) Name() string       { return a.ArrayName }
func (a *FloatArray) Type() ArrayType    { return a.DType }
func (a *FloatArray) NumComponents() int { return a.NComp }
func (a *FloatArray) NumTuples() int     { return len(a.Values) / a.NComp }

// NewFloatArray returns an empty Float32 array with nc components per tuple.
func NewFloatArray(name string, nc int) *FloatArray {
	return &FloatArray{ArrayName: name, DType: Float32, NComp: nc}
}

// IntArray holds Int32/Int64 tuple data.
type IntArray struct {
	ArrayName string
	DType     ArrayType
	NComp     int
	Values    []int64
}

func (a *IntArray) Name() string       { return a.ArrayName }
func (a *IntArray) Type() ArrayType    { return a.DType }
func (a *IntArray) NumComponents() int { return a.NComp }
func (a *IntArray) NumTuples() int     { return len(a.Values) / a.NComp }

// NewIntArray returns an empty Int32 array with nc components per tuple.
func NewIntArray(name string, nc int) *IntArray {
	return &IntArray{ArrayName: name, DType: Int32, NComp: nc}
}

// StringArray holds one string per tuple. VTK serializes these as
// null-terminated byte streams.
type StringArray struct {
	ArrayName string
	Values    []string
}

func (a *StringArray) Name() string       { return a.ArrayName }
func (a *StringArray) Type() ArrayType    { return String }
func (a *StringArray) NumComponents() int { return 1 }
func (a *StringArray) NumTuples() int     { return len(a.Values) }

// AttributeSet is an ordered collection of uniquely-named data arrays,
// standing in for vtkPointData / vtkCellData / vtkFieldData.
type AttributeSet struct {
	arrays []DataArray
}

// AddArray appends a, replacing any existing array with the same name.
func (s *AttributeSet) AddArray(a DataArray) {
	for i, old := range s.arrays {
		if old.Name() == a.Name() {
			s.arrays[i] = a
			return
		}
	}
	s.arrays = append(s.arrays, a)
}

// Array returns the array with the given name, or nil.
func (s *AttributeSet) Array(name string) DataArray {
	for _, a := range s.arrays {
		if a.Name() == name {
			return a
		}
	}
	return nil
}

// Arrays returns the arrays in insertion order.
func (s *AttributeSet) Arrays() []DataArray { return s.arrays }

// Names returns the array names in insertion order.
func (s *AttributeSet) Names() []string {
	names := make([]string, len(s.arrays))
	for i, a := range s.arrays {
		names[i] = a.Name()
	}
	return names
}

func (s *AttributeSet) Len() int { return len(s.arrays) }

// Cells is shared connectivity storage: Offsets[i] is the end of cell i in
// Connectivity, matching the XML connectivity/offsets layout.
type Cells struct {
	Connectivity []int64
	Offsets      []int64
}

// NumCells returns the cell count.
func (c *Cells) NumCells() int { return len(c.Offsets) }

// Cell returns the vertex ids of cell i as a sub-slice of Connectivity.
func (c *Cells) Cell(i int) []int64 {
	start := int64(0)
	if i > 0 {
		start = c.Offsets[i-1]
	}
	return c.Connectivity[start:c.Offsets[i]]
}

// Add appends one cell.
func (c *Cells) Add(verts ...int64) {
	c.Connectivity = append(c.Connectivity, verts...)
	c.Offsets = append(c.Offsets, int64(len(c.Connectivity)))
}

// VTK cell type ids used by the legacy unstructured format.
const (
	CellVertex     uint8 = 1
	CellPolyVertex uint8 = 2
	CellLine       uint8 = 3
	CellPolyLine   uint8 = 4
	CellTriangle   uint8 = 5
	CellPolygon    uint8 = 7
	CellQuad       uint8 = 9
	CellTetra      uint8 = 10
	CellVoxel      uint8 = 11
	CellHexahedron uint8 = 12
	CellWedge      uint8 = 13
	CellPyramid    uint8 = 14
)

// DataSet is any parsed dataset. Points are packed xyz triplets.
type DataSet interface {
	NumPoints() int
	GetPoints() []float64
	GetPointData() *AttributeSet
	GetFieldData() *AttributeSet
}

// PolyData is a polygonal surface: points plus polygon connectivity.
type PolyData struct {
	Points    []float64
	Polys     Cells
	PointData AttributeSet
	FieldData AttributeSet
}

func (p *PolyData) NumPoints() int              { return len(p.Points) / 3 }
func (p *PolyData) NumPolys() int               { return p.Polys.NumCells() }
func (p *PolyData) GetPoints() []float64        { return p.Points }
func (p *PolyData) GetPointData() *AttributeSet { return &p.PointData }
func (p *PolyData) GetFieldData() *AttributeSet { return &p.FieldData }

// UnstructuredGrid is a cell dataset of mixed element types. Structured
// legacy kinds are materialized into this form on read.
type UnstructuredGrid struct {
	Points    []float64
	Cells     Cells
	CellTypes []uint8
	PointData AttributeSet
	CellData  AttributeSet
	FieldData AttributeSet
}

func (u *UnstructuredGrid) NumPoints() int              { return len(u.Points) / 3 }
func (u *UnstructuredGrid) NumCells() int               { return u.Cells.NumCells() }
func (u *UnstructuredGrid) GetPoints() []float64        { return u.Points }
func (u *UnstructuredGrid) GetPointData() *AttributeSet { return &u.PointData }
func (u *UnstructuredGrid) GetFieldData() *AttributeSet { return &u.FieldData }

// CheckPointDataLengths verifies every point array has one tuple per point.
func CheckPointDataLengths(ds DataSet) error {
	np := ds.NumPoints()
	for _, a := range ds.GetPointData().Arrays() {
		if a.NumTuples() != np {
			return fmt.Errorf("point array %q has %d tuples, dataset has %d points",
				a.Name(), a.NumTuples(), np)
		}
	}
	return nil
}
