package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTimestepFromName(t *testing.T) {
	testCases := []struct {
		name     string
		expected int
	}{
		{"gravityCasting_0.vtk", 0},
		{"gravityCasting_7.vtk", 7},
		{"gravityCasting_0042.vtk", 42},
		{"/some/dir/gravityCasting_13.vtk", 13},
		{"gravityCasting_final.vtk", 0},
		{"somethingElse_3.vtk", 0},
		{"gravityCasting_3.vtu", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, TimestepFromName(tc.name))
		})
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "gravityCasting_0.vtk"))
	touch(t, filepath.Join(root, "gravityCasting_2.vtk"))
	touch(t, filepath.Join(root, "gravityCasting_1.vtk"))
	touch(t, filepath.Join(root, "unrelated.txt"))
	touch(t, filepath.Join(root, "inlet", "inlet_a.vtk"))
	touch(t, filepath.Join(root, "inlet", "inlet_b.vtk"))
	touch(t, filepath.Join(root, "model", "model_0.vtk"))
	// riser directory absent

	idx, err := Scan(root, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 2}, idx.Steps)
	assert.Equal(t, filepath.Join(root, "gravityCasting_1.vtk"), idx.PrimaryByStep[1])
	assert.Len(t, idx.ComponentFiles[KindInlet], 2)
	assert.Equal(t, filepath.Join(root, "inlet", "inlet_a.vtk"), idx.ComponentFiles[KindInlet][0],
		"component files must be in sorted order")
	assert.Len(t, idx.ComponentFiles[KindModel], 1)
	assert.Empty(t, idx.ComponentFiles[KindRiser])
}

func TestScanUnmatchedPrimaryMapsToZero(t *testing.T) {
	root := t.TempDir()
	// matches the glob but not the timestep pattern
	touch(t, filepath.Join(root, "gravityCasting_final.vtk"))

	idx, err := Scan(root, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []int{0}, idx.Steps)
	assert.Equal(t, filepath.Join(root, "gravityCasting_final.vtk"), idx.PrimaryByStep[0])
}

func TestScanEmptyRoot(t *testing.T) {
	idx, err := Scan(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, idx.Steps)
	assert.Empty(t, idx.PrimaryByStep)
}
