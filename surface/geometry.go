// Package surface normalizes cell datasets to polygonal surfaces and
// merges surfaces by geometric append.
package surface

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/castmesh/vtkcombine/vtk"
)

// faceTable lists the faces of each linear 3D cell type as local vertex
// indices, outward winding.
var faceTable = map[uint8][][]int{
	vtk.CellTetra: {
		{0, 1, 3}, {1, 2, 3}, {2, 0, 3}, {0, 2, 1},
	},
	vtk.CellHexahedron: {
		{0, 4, 7, 3}, {1, 2, 6, 5}, {0, 1, 5, 4},
		{3, 7, 6, 2}, {0, 3, 2, 1}, {4, 5, 6, 7},
	},
	vtk.CellVoxel: {
		{0, 2, 6, 4}, {1, 5, 7, 3}, {0, 4, 5, 1},
		{2, 3, 7, 6}, {0, 1, 3, 2}, {4, 6, 7, 5},
	},
	vtk.CellWedge: {
		{0, 2, 1}, {3, 4, 5}, {0, 1, 4, 3}, {1, 2, 5, 4}, {2, 0, 3, 5},
	},
	vtk.CellPyramid: {
		{0, 3, 2, 1}, {0, 1, 4}, {1, 2, 4}, {2, 3, 4}, {3, 0, 4},
	},
}

func isSurfaceCell(ct uint8) bool {
	switch ct {
	case vtk.CellTriangle, vtk.CellQuad, vtk.CellPolygon:
		return true
	}
	return false
}

// faceKey hashes the sorted vertex ids of a face, so the two incident
// cells of an interior face produce the same key regardless of winding.
func faceKey(verts []int64) uint64 {
	sorted := make([]int64, len(verts))
	copy(sorted, verts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	var d xxhash.Digest
	d.Reset()
	var b [8]byte
	for _, v := range sorted {
		binary.LittleEndian.PutUint64(b[:], uint64(v))
		d.Write(b[:])
	}
	return d.Sum64()
}

type faceRec struct {
	verts []int64 // first-seen winding
	count int
}

// boundaryFaces returns the polygon list of ug's surface: every 2D cell,
// plus each face of a 3D cell that is referenced by exactly one cell.
func boundaryFaces(ug *vtk.UnstructuredGrid) [][]int64 {
	var polys [][]int64
	faces := make(map[uint64]*faceRec)
	order := make([]uint64, 0)

	for ci := 0; ci < ug.NumCells(); ci++ {
		cell := ug.Cells.Cell(ci)
		ct := ug.CellTypes[ci]
		if isSurfaceCell(ct) {
			polys = append(polys, cell)
			continue
		}
		locals, ok := faceTable[ct]
		if !ok {
			continue // vertices, lines and unknown types carry no surface
		}
		for _, local := range locals {
			face := make([]int64, len(local))
			for i, li := range local {
				face[i] = cell[li]
			}
			key := faceKey(face)
			if rec, seen := faces[key]; seen {
				rec.count++
			} else {
				faces[key] = &faceRec{verts: face, count: 1}
				order = append(order, key)
			}
		}
	}
	for _, key := range order {
		if rec := faces[key]; rec.count == 1 {
			polys = append(polys, rec.verts)
		}
	}
	return polys
}

func surfaceFromCells(ug *vtk.UnstructuredGrid, polys [][]int64) *vtk.PolyData {
	pd := &vtk.PolyData{Points: ug.Points}
	for _, face := range polys {
		pd.Polys.Add(face...)
	}
	for _, a := range ug.PointData.Arrays() {
		pd.PointData.AddArray(a)
	}
	for _, a := range ug.FieldData.Arrays() {
		pd.FieldData.AddArray(a)
	}
	return pd
}

// ExtractGeometry is the primary normalization strategy: polygonal data
// passes through unchanged, cell datasets are reduced to their external
// boundary faces. All input points and point arrays are carried.
func ExtractGeometry(ds vtk.DataSet) (*vtk.PolyData, error) {
	switch d := ds.(type) {
	case *vtk.PolyData:
		return d, nil
	case *vtk.UnstructuredGrid:
		return surfaceFromCells(d, boundaryFaces(d)), nil
	default:
		return nil, fmt.Errorf("unsupported dataset type %T", ds)
	}
}

// ExtractSurface is the fallback strategy: like ExtractGeometry but every
// output polygon is fan-triangulated, including the polygons of an input
// that is already polygonal data.
func ExtractSurface(ds vtk.DataSet) (*vtk.PolyData, error) {
	switch d := ds.(type) {
	case *vtk.PolyData:
		out := &vtk.PolyData{Points: d.Points}
		for ci := 0; ci < d.NumPolys(); ci++ {
			for _, tri := range triangulate(d.Polys.Cell(ci)) {
				out.Polys.Add(tri...)
			}
		}
		for _, a := range d.PointData.Arrays() {
			out.PointData.AddArray(a)
		}
		for _, a := range d.FieldData.Arrays() {
			out.FieldData.AddArray(a)
		}
		return out, nil
	case *vtk.UnstructuredGrid:
		var tris [][]int64
		for _, face := range boundaryFaces(d) {
			tris = append(tris, triangulate(face)...)
		}
		return surfaceFromCells(d, tris), nil
	default:
		return nil, fmt.Errorf("unsupported dataset type %T", ds)
	}
}

// triangulate splits a convex polygon into a triangle fan.
func triangulate(verts []int64) [][]int64 {
	if len(verts) < 3 {
		return nil
	}
	if len(verts) == 3 {
		return [][]int64{verts}
	}
	tris := make([][]int64, 0, len(verts)-2)
	for i := 1; i < len(verts)-1; i++ {
		tris = append(tris, []int64{verts[0], verts[i], verts[i+1]})
	}
	return tris
}
