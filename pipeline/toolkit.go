package pipeline

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/castmesh/vtkcombine/surface"
	"github.com/castmesh/vtkcombine/vtk"
)

// readStrategy is one attempt at parsing a mesh file. A strategy fails by
// returning an error or a dataset with zero points; the next strategy in
// order is then tried.
type readStrategy struct {
	name string
	read func(path string) (vtk.DataSet, error)
}

// normalizeStrategy is one attempt at reducing a dataset to a polygonal
// surface, failing the same way.
type normalizeStrategy struct {
	name    string
	extract func(ds vtk.DataSet) (*vtk.PolyData, error)
}

// Toolkit bundles the mesh-format capability: the ordered read and
// normalization strategy lists and the progress logger. It is constructed
// once at startup and passed to everything that touches mesh data.
type Toolkit struct {
	readers     []readStrategy
	normalizers []normalizeStrategy
	log         *zap.Logger
}

// NewToolkit builds the standard strategy lists: a generic reader for any
// legacy dataset kind, then a stricter-scoped but more forgiving
// unstructured-grid reader; geometry extraction, then triangulated surface
// extraction.
func NewToolkit(log *zap.Logger) *Toolkit {
	if log == nil {
		log = zap.NewNop()
	}
	return &Toolkit{
		readers: []readStrategy{
			{name: "dataset", read: vtk.ReadDataSetFile},
			{name: "unstructured", read: func(path string) (vtk.DataSet, error) {
				return vtk.ReadUnstructuredGridFile(path)
			}},
		},
		normalizers: []normalizeStrategy{
			{name: "geometry", extract: surface.ExtractGeometry},
			{name: "surface", extract: surface.ExtractSurface},
		},
		log: log,
	}
}

// recoverToErr converts a panic inside a strategy into an error result so
// a malformed file can never take down the batch.
func recoverToErr(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("strategy panicked: %v", r)
	}
}

func (tk *Toolkit) tryRead(s readStrategy, path string) (ds vtk.DataSet, err error) {
	defer recoverToErr(&err)
	return s.read(path)
}

// ReadMesh tries each read strategy in order and returns the first
// non-empty dataset, or nil when every strategy fails. Failures are logged
// and never propagated.
func (tk *Toolkit) ReadMesh(path string) vtk.DataSet {
	name := filepath.Base(path)
	for _, s := range tk.readers {
		ds, err := tk.tryRead(s, path)
		if err != nil {
			tk.log.Debug("read strategy failed",
				zap.String("file", name),
				zap.String("strategy", s.name),
				zap.Error(err))
			continue
		}
		if ds == nil || ds.NumPoints() == 0 {
			tk.log.Debug("read strategy produced no points",
				zap.String("file", name),
				zap.String("strategy", s.name))
			continue
		}
		tk.log.Info("read mesh",
			zap.String("file", name),
			zap.String("strategy", s.name),
			zap.Int("points", ds.NumPoints()))
		return ds
	}
	tk.log.Warn("failed to read mesh", zap.String("file", name))
	return nil
}

func (tk *Toolkit) tryNormalize(s normalizeStrategy, ds vtk.DataSet) (pd *vtk.PolyData, err error) {
	defer recoverToErr(&err)
	return s.extract(ds)
}

// Normalize reduces ds to a polygonal surface via the strategy list, or
// returns nil when no strategy yields geometry.
func (tk *Toolkit) Normalize(ds vtk.DataSet) *vtk.PolyData {
	for _, s := range tk.normalizers {
		pd, err := tk.tryNormalize(s, ds)
		if err != nil {
			tk.log.Debug("normalize strategy failed",
				zap.String("strategy", s.name), zap.Error(err))
			continue
		}
		if pd == nil || pd.NumPoints() == 0 {
			continue
		}
		return pd
	}
	return nil
}
