package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/castmesh/vtkcombine/vtk"
)

func taggedTriangle(offset float64, id int64, name string) *vtk.PolyData {
	pd := &vtk.PolyData{
		Points: []float64{
			offset, 0, 0,
			offset + 1, 0, 0,
			offset, 1, 0,
		},
	}
	pd.Polys.Add(0, 1, 2)
	pd.PointData.AddArray(&vtk.IntArray{
		ArrayName: "ComponentID", DType: vtk.Int32, NComp: 1,
		Values: []int64{id, id, id},
	})
	pd.PointData.AddArray(&vtk.StringArray{
		ArrayName: "ComponentName",
		Values:    []string{name, name, name},
	})
	return pd
}

func TestAppendConcatenatesPointsAndAttributes(t *testing.T) {
	a := taggedTriangle(0, 1, "gravityCasting")
	b := taggedTriangle(10, 2, "inlet")

	out, err := Append([]*vtk.PolyData{a, b})
	require.NoError(t, err)

	assert.Equal(t, 6, out.NumPoints(), "point count is the sum of the inputs")
	assert.Equal(t, 2, out.NumPolys())

	ids := out.PointData.Array("ComponentID").(*vtk.IntArray)
	assert.Equal(t, []int64{1, 1, 1, 2, 2, 2}, ids.Values)
	names := out.PointData.Array("ComponentName").(*vtk.StringArray)
	assert.Equal(t, []string{
		"gravityCasting", "gravityCasting", "gravityCasting",
		"inlet", "inlet", "inlet",
	}, names.Values)
}

func TestAppendRenumbersConnectivity(t *testing.T) {
	a := taggedTriangle(0, 1, "gravityCasting")
	b := taggedTriangle(10, 2, "inlet")

	out, err := Append([]*vtk.PolyData{a, b})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 1, 2}, out.Polys.Cell(0))
	assert.Equal(t, []int64{3, 4, 5}, out.Polys.Cell(1),
		"second input's polygon must reference only its own point range")
}

func TestAppendDropsArraysMissingFromAnyInput(t *testing.T) {
	a := taggedTriangle(0, 1, "gravityCasting")
	a.PointData.AddArray(&vtk.FloatArray{
		ArrayName: "temperature", DType: vtk.Float32, NComp: 1,
		Values: []float64{1, 2, 3},
	})
	b := taggedTriangle(10, 2, "inlet")

	out, err := Append([]*vtk.PolyData{a, b})
	require.NoError(t, err)
	assert.Nil(t, out.PointData.Array("temperature"))
	assert.NotNil(t, out.PointData.Array("ComponentID"))
}

func TestAppendSingleInput(t *testing.T) {
	a := taggedTriangle(0, 3, "model")
	out, err := Append([]*vtk.PolyData{a})
	require.NoError(t, err)
	assert.Equal(t, a.Points, out.Points)
	assert.Equal(t, []int64{0, 1, 2}, out.Polys.Cell(0))
}

func TestAppendEmptyInputList(t *testing.T) {
	_, err := Append(nil)
	assert.Error(t, err)
}

func TestAppendRejectsMisalignedArrays(t *testing.T) {
	a := taggedTriangle(0, 1, "gravityCasting")
	a.PointData.AddArray(&vtk.FloatArray{
		ArrayName: "broken", DType: vtk.Float32, NComp: 1, Values: []float64{1},
	})
	_, err := Append([]*vtk.PolyData{a})
	assert.Error(t, err)
}
