package surface

import (
	"fmt"

	"github.com/castmesh/vtkcombine/vtk"
)

// Append concatenates the given surfaces into one PolyData. Points are the
// positional concatenation of the inputs' points in order; each input's
// polygon connectivity is renumbered by its point offset so no polygon
// references another input's points. A point array survives only if every
// input carries an array of the same name, type and component count, and
// the surviving arrays are concatenated in the same order as the points.
func Append(inputs []*vtk.PolyData) (*vtk.PolyData, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("nothing to append")
	}
	for _, in := range inputs {
		if err := vtk.CheckPointDataLengths(in); err != nil {
			return nil, err
		}
	}

	out := &vtk.PolyData{}
	for _, in := range inputs {
		base := int64(out.NumPoints())
		out.Points = append(out.Points, in.Points...)
		for ci := 0; ci < in.NumPolys(); ci++ {
			cell := in.Polys.Cell(ci)
			shifted := make([]int64, len(cell))
			for i, v := range cell {
				shifted[i] = v + base
			}
			out.Polys.Add(shifted...)
		}
	}

	for _, name := range inputs[0].PointData.Names() {
		merged, ok := mergePointArray(inputs, name)
		if ok {
			out.PointData.AddArray(merged)
		}
	}
	return out, nil
}

// mergePointArray concatenates the arrays called name across all inputs,
// or reports false if any input lacks a compatible array.
func mergePointArray(inputs []*vtk.PolyData, name string) (vtk.DataArray, bool) {
	first := inputs[0].PointData.Array(name)
	switch fa := first.(type) {
	case *vtk.FloatArray:
		merged := &vtk.FloatArray{ArrayName: name, DType: fa.DType, NComp: fa.NComp}
		for _, in := range inputs {
			a, ok := in.PointData.Array(name).(*vtk.FloatArray)
			if !ok || a.NComp != fa.NComp {
				return nil, false
			}
			merged.Values = append(merged.Values, a.Values...)
		}
		return merged, true
	case *vtk.IntArray:
		merged := &vtk.IntArray{ArrayName: name, DType: fa.DType, NComp: fa.NComp}
		for _, in := range inputs {
			a, ok := in.PointData.Array(name).(*vtk.IntArray)
			if !ok || a.NComp != fa.NComp {
				return nil, false
			}
			merged.Values = append(merged.Values, a.Values...)
		}
		return merged, true
	case *vtk.StringArray:
		merged := &vtk.StringArray{ArrayName: name}
		for _, in := range inputs {
			a, ok := in.PointData.Array(name).(*vtk.StringArray)
			if !ok {
				return nil, false
			}
			merged.Values = append(merged.Values, a.Values...)
		}
		return merged, true
	default:
		return nil, false
	}
}
