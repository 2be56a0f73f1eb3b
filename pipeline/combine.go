package pipeline

import (
	"os"

	"go.uber.org/zap"

	"github.com/castmesh/vtkcombine/surface"
	"github.com/castmesh/vtkcombine/vtk"
)

// processFile runs read -> normalize -> tag for one source file and returns
// the tagged surface, or nil when the file contributes nothing.
func (tk *Toolkit) processFile(path, label string) *vtk.PolyData {
	ds := tk.ReadMesh(path)
	if ds == nil {
		return nil
	}
	pd := tk.Normalize(ds)
	if pd == nil || pd.NumPoints() == 0 {
		return nil
	}
	TagComponent(pd, label)
	return pd
}

// CombineTimestep merges every component surface belonging to one timestep
// into a single mesh: the primary file first, then each sub-component's
// file at list index == step (skipped when the index is out of range).
// Returns nil when no input contributes.
func (tk *Toolkit) CombineTimestep(step int, primaryFile string, comps map[ComponentKind][]string) *vtk.PolyData {
	log := tk.log.With(zap.Int("timestep", step))

	var inputs []*vtk.PolyData
	totalPoints := 0

	if primaryFile != "" {
		if _, err := os.Stat(primaryFile); err == nil {
			if pd := tk.processFile(primaryFile, KindPrimary.Label()); pd != nil {
				inputs = append(inputs, pd)
				totalPoints += pd.NumPoints()
			}
		}
	}

	for _, kind := range SubComponentKinds {
		files := comps[kind]
		if len(files) == 0 || step >= len(files) {
			continue
		}
		if pd := tk.processFile(files[step], kind.Label()); pd != nil {
			inputs = append(inputs, pd)
			totalPoints += pd.NumPoints()
		}
	}

	if len(inputs) == 0 {
		log.Warn("no valid data for timestep")
		return nil
	}

	combined, err := surface.Append(inputs)
	if err != nil {
		log.Error("combine failed", zap.Error(err))
		return nil
	}
	combined.FieldData.AddArray(&vtk.FloatArray{
		ArrayName: TimeValueArray,
		DType:     vtk.Float32,
		NComp:     1,
		Values:    []float64{float64(step)},
	})

	b := surface.Bounds(combined.Points)
	log.Info("combined timestep",
		zap.Int("components", len(inputs)),
		zap.Int("points", totalPoints),
		zap.Float64s("bounds", b[:]))
	return combined
}
