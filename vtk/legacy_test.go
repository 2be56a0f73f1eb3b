package vtk

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create temporary test files
func createTempVTKFile(t *testing.T, content []byte) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "test.vtk")
	if err := os.WriteFile(tmpFile, content, 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	return tmpFile
}

const tetraVTK = `# vtk DataFile Version 3.0
single tetra
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 float
0 0 0
1 0 0
0 1 0
0 0 1
CELLS 1 5
4 0 1 2 3
CELL_TYPES 1
10
`

const triangleVTK = `# vtk DataFile Version 3.0
single triangle
ASCII
DATASET POLYDATA
POINTS 3 float
0 0 0
1 0 0
0 1 0
POLYGONS 1 4
3 0 1 2
POINT_DATA 3
SCALARS temperature float 1
LOOKUP_TABLE default
300.5 301 302.25
VECTORS velocity float
1 0 0
0 1 0
0 0 1
`

func TestReadPolyDataLegacy(t *testing.T) {
	path := createTempVTKFile(t, []byte(triangleVTK))
	ds, err := ReadDataSetFile(path)
	require.NoError(t, err)

	pd, ok := ds.(*PolyData)
	require.True(t, ok, "POLYDATA should parse to *PolyData")
	assert.Equal(t, 3, pd.NumPoints())
	assert.Equal(t, 1, pd.NumPolys())
	assert.Equal(t, []int64{0, 1, 2}, pd.Polys.Cell(0))

	temp, ok := pd.PointData.Array("temperature").(*FloatArray)
	require.True(t, ok)
	assert.Equal(t, []float64{300.5, 301, 302.25}, temp.Values)
	assert.Equal(t, 1, temp.NumComponents())

	vel, ok := pd.PointData.Array("velocity").(*FloatArray)
	require.True(t, ok)
	assert.Equal(t, 3, vel.NumComponents())
	assert.Equal(t, 3, vel.NumTuples())
}

func TestReadUnstructuredGridLegacy(t *testing.T) {
	path := createTempVTKFile(t, []byte(tetraVTK))
	ds, err := ReadDataSetFile(path)
	require.NoError(t, err)

	ug, ok := ds.(*UnstructuredGrid)
	require.True(t, ok)
	assert.Equal(t, 4, ug.NumPoints())
	assert.Equal(t, 1, ug.NumCells())
	assert.Equal(t, CellTetra, ug.CellTypes[0])
	assert.Equal(t, []int64{0, 1, 2, 3}, ug.Cells.Cell(0))
}

func TestReadStructuredPoints(t *testing.T) {
	content := `# vtk DataFile Version 3.0
volume
ASCII
DATASET STRUCTURED_POINTS
DIMENSIONS 3 2 2
ORIGIN 0 0 0
SPACING 1 1 1
POINT_DATA 12
SCALARS density float 1
LOOKUP_TABLE default
1 2 3 4 5 6 7 8 9 10 11 12
`
	path := createTempVTKFile(t, []byte(content))
	ds, err := ReadDataSetFile(path)
	require.NoError(t, err)

	ug, ok := ds.(*UnstructuredGrid)
	require.True(t, ok, "structured points should materialize as unstructured")
	assert.Equal(t, 12, ug.NumPoints())
	// 2x1x1 implicit hexahedral lattice
	assert.Equal(t, 2, ug.NumCells())
	assert.Equal(t, CellHexahedron, ug.CellTypes[0])
	assert.Equal(t, 12, ug.PointData.Array("density").NumTuples())
	// last grid point is origin + (i,j,k)*spacing = (2,1,1)
	assert.Equal(t, []float64{2, 1, 1}, ug.Points[33:36])
}

func TestReadRectilinearGrid(t *testing.T) {
	content := `# vtk DataFile Version 3.0
rect
ASCII
DATASET RECTILINEAR_GRID
DIMENSIONS 2 2 2
X_COORDINATES 2 float
0 10
Y_COORDINATES 2 float
0 5
Z_COORDINATES 2 float
0 1
`
	path := createTempVTKFile(t, []byte(content))
	ds, err := ReadDataSetFile(path)
	require.NoError(t, err)
	ug := ds.(*UnstructuredGrid)
	assert.Equal(t, 8, ug.NumPoints())
	assert.Equal(t, 1, ug.NumCells())
	assert.Equal(t, []float64{10, 5, 1}, ug.Points[21:24])
}

func TestReadBinaryUnstructuredGrid(t *testing.T) {
	// big-endian binary body after the text header lines
	var buf bytes.Buffer
	buf.WriteString("# vtk DataFile Version 3.0\n")
	buf.WriteString("binary tetra\n")
	buf.WriteString("BINARY\n")
	buf.WriteString("DATASET UNSTRUCTURED_GRID\n")
	buf.WriteString("POINTS 4 float\n")
	pts := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1}
	for _, v := range pts {
		binary.Write(&buf, binary.BigEndian, v)
	}
	buf.WriteString("\nCELLS 1 5\n")
	for _, v := range []int32{4, 0, 1, 2, 3} {
		binary.Write(&buf, binary.BigEndian, v)
	}
	buf.WriteString("\nCELL_TYPES 1\n")
	binary.Write(&buf, binary.BigEndian, int32(CellTetra))
	buf.WriteString("\n")

	path := createTempVTKFile(t, buf.Bytes())
	ds, err := ReadDataSetFile(path)
	require.NoError(t, err)
	ug := ds.(*UnstructuredGrid)
	assert.Equal(t, 4, ug.NumPoints())
	assert.Equal(t, []int64{0, 1, 2, 3}, ug.Cells.Cell(0))
	assert.InDelta(t, 1.0, ug.Points[3], 1e-12)
}

func TestReadBinaryDoublePoints(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("# vtk DataFile Version 3.0\ndoubles\nBINARY\nDATASET POLYDATA\nPOINTS 2 double\n")
	for _, v := range []float64{0.25, 0.5, 0.75, 1.25, 1.5, 1.75} {
		binary.Write(&buf, binary.BigEndian, math.Float64bits(v))
	}
	buf.WriteString("\n")
	path := createTempVTKFile(t, buf.Bytes())
	ds, err := ReadDataSetFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1.25, 1.5, 1.75}, ds.GetPoints())
}

func TestUnstructuredReaderInfersMissingCellTypes(t *testing.T) {
	content := `# vtk DataFile Version 3.0
no cell types
ASCII
DATASET UNSTRUCTURED_GRID
POINTS 4 float
0 0 0
1 0 0
0 1 0
0 0 1
CELLS 1 5
4 0 1 2 3
`
	path := createTempVTKFile(t, []byte(content))

	// the generic pass is strict about the missing section
	_, err := ReadDataSetFile(path)
	require.Error(t, err)

	// the dedicated unstructured reader recovers it
	ug, err := ReadUnstructuredGridFile(path)
	require.NoError(t, err)
	assert.Equal(t, CellTetra, ug.CellTypes[0])
}

func TestReadLegacyErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "not a vtk file", content: "hello world\n"},
		{name: "unknown format", content: "# vtk DataFile Version 3.0\nt\nEBCDIC\nDATASET POLYDATA\n"},
		{name: "unknown dataset kind", content: "# vtk DataFile Version 3.0\nt\nASCII\nDATASET HOLOGRAM\n"},
		{
			name: "truncated points",
			content: `# vtk DataFile Version 3.0
t
ASCII
DATASET POLYDATA
POINTS 5 float
0 0 0
`,
		},
		{
			name: "cell list overruns",
			content: `# vtk DataFile Version 3.0
t
ASCII
DATASET POLYDATA
POINTS 3 float
0 0 0
1 0 0
0 1 0
POLYGONS 2 4
3 0 1 2
`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := createTempVTKFile(t, []byte(tc.content))
			_, err := ReadDataSetFile(path)
			assert.Error(t, err)
		})
	}
}

func TestReadFieldDataBlock(t *testing.T) {
	content := `# vtk DataFile Version 3.0
fields
ASCII
DATASET POLYDATA
POINTS 1 float
0 0 0
FIELD meta 2
iteration 1 1 int
42
residual 1 2 float
0.5 0.25
`
	path := createTempVTKFile(t, []byte(content))
	ds, err := ReadDataSetFile(path)
	require.NoError(t, err)
	pd := ds.(*PolyData)

	iter, ok := pd.FieldData.Array("iteration").(*IntArray)
	require.True(t, ok)
	assert.Equal(t, []int64{42}, iter.Values)
	res, ok := pd.FieldData.Array("residual").(*FloatArray)
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, 0.25}, res.Values)
}
