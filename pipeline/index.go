package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"go.uber.org/zap"
)

// timestepPattern extracts the decimal timestep embedded in a primary file
// name, e.g. gravityCasting_0042.vtk -> 42.
var timestepPattern = regexp.MustCompile(`gravityCasting_(\d+)\.vtk$`)

// TimestepFromName returns the timestep embedded in a primary file name.
// Names that do not match the pattern map to timestep 0, which can collide
// with a genuine timestep 0; that ambiguity is accepted.
func TimestepFromName(name string) int {
	m := timestepPattern.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// Index is the aligned view of a scanned source tree: one primary file per
// discovered timestep plus the ordered per-component file lists.
type Index struct {
	PrimaryByStep  map[int]string
	ComponentFiles map[ComponentKind][]string
	Steps          []int
}

// Scan walks the source tree once. Primary files are matched at the root,
// components under a subdirectory named after each kind, listed in sorted
// order (empty when the subdirectory is absent).
//
// Component files pair with timesteps by list index. Nothing validates
// that a component's sorted file order actually follows the timestep
// numbering; inconsistently named component files pair silently with the
// wrong timestep.
func Scan(root string, log *zap.Logger) (*Index, error) {
	idx := &Index{
		PrimaryByStep:  make(map[int]string),
		ComponentFiles: make(map[ComponentKind][]string),
	}

	primaries, err := filepath.Glob(filepath.Join(root, "gravityCasting_*.vtk"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(primaries)
	stepSet := make(map[int]struct{})
	for _, f := range primaries {
		step := TimestepFromName(f)
		stepSet[step] = struct{}{}
		idx.PrimaryByStep[step] = f
	}
	for step := range stepSet {
		idx.Steps = append(idx.Steps, step)
	}
	sort.Ints(idx.Steps)
	log.Info("scanned primary files",
		zap.String("root", root),
		zap.Int("files", len(primaries)),
		zap.Ints("timesteps", idx.Steps))

	for _, kind := range SubComponentKinds {
		dir := filepath.Join(root, kind.Label())
		if _, err := os.Stat(dir); err != nil {
			log.Info("component directory not found", zap.String("component", kind.Label()))
			idx.ComponentFiles[kind] = nil
			continue
		}
		files, err := filepath.Glob(filepath.Join(dir, "*.vtk"))
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", dir, err)
		}
		sort.Strings(files)
		idx.ComponentFiles[kind] = files
		log.Info("scanned component directory",
			zap.String("component", kind.Label()),
			zap.Int("files", len(files)))
	}
	return idx, nil
}
