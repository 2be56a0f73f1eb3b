// Package pipeline implements the combined time-series conversion: scan a
// simulation output tree, merge every component surface per timestep into a
// single tagged polygonal mesh, and write one .vtp file per timestep.
package pipeline

import (
	"github.com/castmesh/vtkcombine/vtk"
)

// ComponentKind enumerates the fixed casting components. The primary
// dataset and each sub-component carry a distinct positive identifier;
// zero is reserved for labels outside the enumeration.
type ComponentKind int

const (
	KindUnknown ComponentKind = iota
	KindPrimary
	KindInlet
	KindModel
	KindRiser
)

// SubComponentKinds lists the sub-components in processing order. The
// primary dataset is handled separately and always combined first.
var SubComponentKinds = []ComponentKind{KindInlet, KindModel, KindRiser}

// ID returns the ComponentID attribute value for this kind.
func (k ComponentKind) ID() int32 {
	switch k {
	case KindPrimary:
		return 1
	case KindInlet:
		return 2
	case KindModel:
		return 3
	case KindRiser:
		return 4
	}
	return 0
}

// Label returns the component's directory/attribute label.
func (k ComponentKind) Label() string {
	switch k {
	case KindPrimary:
		return "gravityCasting"
	case KindInlet:
		return "inlet"
	case KindModel:
		return "model"
	case KindRiser:
		return "riser"
	}
	return ""
}

// KindForLabel maps a label back to its kind; unrecognized labels map to
// KindUnknown, whose ID is 0.
func KindForLabel(label string) ComponentKind {
	for _, k := range []ComponentKind{KindPrimary, KindInlet, KindModel, KindRiser} {
		if k.Label() == label {
			return k
		}
	}
	return KindUnknown
}

// Attribute names attached by the tagger and combiner.
const (
	ComponentIDArray   = "ComponentID"
	ComponentNameArray = "ComponentName"
	TimeValueArray     = "TimeValue"
)

// TagComponent attaches the per-point ComponentID and ComponentName arrays
// to pd, both constant-valued. Empty surfaces and empty labels are left
// untouched.
func TagComponent(pd *vtk.PolyData, label string) {
	n := pd.NumPoints()
	if n == 0 || label == "" {
		return
	}
	ids := &vtk.IntArray{ArrayName: ComponentIDArray, DType: vtk.Int32, NComp: 1, Values: make([]int64, n)}
	id := int64(KindForLabel(label).ID())
	for i := range ids.Values {
		ids.Values[i] = id
	}
	names := &vtk.StringArray{ArrayName: ComponentNameArray, Values: make([]string, n)}
	for i := range names.Values {
		names.Values[i] = label
	}
	pd.PointData.AddArray(ids)
	pd.PointData.AddArray(names)
}
