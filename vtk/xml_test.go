package vtk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePolyData() *PolyData {
	pd := &PolyData{
		Points: []float64{
			0, 0, 0,
			1, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
	}
	pd.Polys.Add(0, 1, 2)
	pd.Polys.Add(0, 1, 3)
	pd.PointData.AddArray(&IntArray{
		ArrayName: "ComponentID", DType: Int32, NComp: 1,
		Values: []int64{1, 1, 1, 1},
	})
	pd.PointData.AddArray(&StringArray{
		ArrayName: "ComponentName",
		Values:    []string{"inlet", "inlet", "inlet", "inlet"},
	})
	pd.PointData.AddArray(&FloatArray{
		ArrayName: "temperature", DType: Float32, NComp: 1,
		Values: []float64{300, 301.5, 302, 303.25},
	})
	pd.FieldData.AddArray(&FloatArray{
		ArrayName: "TimeValue", DType: Float32, NComp: 1,
		Values: []float64{7},
	})
	return pd
}

func assertSamePolyData(t *testing.T, want, got *PolyData) {
	t.Helper()
	require.Equal(t, want.NumPoints(), got.NumPoints())
	require.Equal(t, want.NumPolys(), got.NumPolys())
	assert.Equal(t, want.Polys.Connectivity, got.Polys.Connectivity)
	assert.Equal(t, want.Polys.Offsets, got.Polys.Offsets)
	assert.Equal(t, want.PointData.Names(), got.PointData.Names())
	assert.Equal(t, want.FieldData.Names(), got.FieldData.Names())

	assert.Equal(t,
		want.PointData.Array("ComponentID").(*IntArray).Values,
		got.PointData.Array("ComponentID").(*IntArray).Values)
	assert.Equal(t,
		want.PointData.Array("ComponentName").(*StringArray).Values,
		got.PointData.Array("ComponentName").(*StringArray).Values)
	assert.Equal(t,
		want.PointData.Array("temperature").(*FloatArray).Values,
		got.PointData.Array("temperature").(*FloatArray).Values)
	assert.Equal(t,
		want.FieldData.Array("TimeValue").(*FloatArray).Values,
		got.FieldData.Array("TimeValue").(*FloatArray).Values)
}

func TestXMLRoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		opts XMLOptions
	}{
		{name: "ascii", opts: XMLOptions{Format: FormatASCII}},
		{name: "binary raw", opts: XMLOptions{Format: FormatBinary}},
		{name: "binary zlib", opts: XMLOptions{Format: FormatBinary, Compressor: CompressZlib}},
		{name: "binary lz4", opts: XMLOptions{Format: FormatBinary, Compressor: CompressLZ4}},
		{name: "binary zstd", opts: XMLOptions{Format: FormatBinary, Compressor: CompressZstd}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pd := samplePolyData()
			path := filepath.Join(t.TempDir(), "sample.vtp")
			require.NoError(t, WritePolyDataFile(path, pd, tc.opts))

			got, err := ReadPolyDataFile(path)
			require.NoError(t, err)
			assertSamePolyData(t, pd, got)
		})
	}
}

func TestXMLWriteIsDeterministic(t *testing.T) {
	pd := samplePolyData()
	a, err := MarshalPolyData(pd, XMLOptions{Format: FormatBinary, Compressor: CompressZlib})
	require.NoError(t, err)
	b, err := MarshalPolyData(pd, XMLOptions{Format: FormatBinary, Compressor: CompressZlib})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestXMLWriteRejectsBadOptions(t *testing.T) {
	pd := samplePolyData()
	_, err := MarshalPolyData(pd, XMLOptions{Format: FormatASCII, Compressor: CompressZlib})
	assert.Error(t, err, "ascii output cannot be compressed")

	_, err = MarshalPolyData(pd, XMLOptions{Format: "base85"})
	assert.Error(t, err)
}

func TestXMLWriteRejectsMisalignedPointData(t *testing.T) {
	pd := samplePolyData()
	pd.PointData.AddArray(&FloatArray{ArrayName: "short", DType: Float32, NComp: 1, Values: []float64{1}})
	_, err := MarshalPolyData(pd, XMLOptions{})
	assert.Error(t, err)
}

func TestXMLSelfDescribingAttributeNames(t *testing.T) {
	data, err := MarshalPolyData(samplePolyData(), XMLOptions{})
	require.NoError(t, err)
	text := string(data)
	for _, want := range []string{
		`Name="ComponentID"`, `Name="ComponentName"`, `Name="TimeValue"`,
		`type="Int32"`, `type="String"`, `type="Float32"`,
	} {
		assert.Contains(t, text, want)
	}
}
