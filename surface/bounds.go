package surface

import "gonum.org/v1/gonum/floats"

// Bounds returns the axis-aligned bounding box of packed xyz points as
// [xmin xmax ymin ymax zmin zmax]. Zero points yields a zero box.
func Bounds(points []float64) [6]float64 {
	var b [6]float64
	n := len(points) / 3
	if n == 0 {
		return b
	}
	axis := make([]float64, n)
	for d := 0; d < 3; d++ {
		for i := 0; i < n; i++ {
			axis[i] = points[3*i+d]
		}
		b[2*d] = floats.Min(axis)
		b[2*d+1] = floats.Max(axis)
	}
	return b
}
