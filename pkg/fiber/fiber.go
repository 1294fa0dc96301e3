// Package fiber holds pure derived-state rules for the fiber plant:
// deletability, box occupancy, splitter limits and map colours.
package fiber

import (
	"math"

	"github.com/fibradoc/fibradoc/pkg/types"
)

// BoxDeletable reports whether a box can be removed. Only fusions block
// deletion; ports and trays are removed with the box.
func BoxDeletable(box types.Box) bool {
	return box.Count == nil || box.Count.Fusions == 0
}

// CapillaryDeletable reports whether a capillary has no fusion or splitter
// links in either direction.
func CapillaryDeletable(c types.Capillary) bool {
	if c.Count == nil {
		return true
	}
	return c.Count.OutgoingFusions == 0 &&
		c.Count.IncomingFusions == 0 &&
		c.Count.SplitterInputs == 0 &&
		c.Count.SplitterOutputs == 0
}

// BoxOccupancy computes how much of a box is in use.
//
// For a CTO every port that is not available counts as occupied, so reserved
// and defective ports reduce free capacity too. A nil ports slice means the
// ports were not loaded and yields zero occupancy; a non-nil empty slice is a
// box with no available port. For a CEO the occupied figure is the fusion
// count. The result is zero when the box has no aggregate counts or a
// non-positive capacity.
func BoxOccupancy(box types.Box, ports []types.Port) types.Occupancy {
	out := types.Occupancy{Capacity: box.Capacity}
	if box.Count == nil || box.Capacity <= 0 {
		return out
	}

	switch box.Type {
	case types.BoxTypeCTO:
		if ports == nil {
			return out
		}
		available := 0
		for _, p := range ports {
			if p.Status == types.PortAvailable {
				available++
			}
		}
		out.Occupied = max(box.Capacity-available, 0)
	case types.BoxTypeCEO:
		out.Occupied = box.Count.Fusions
	default:
		return out
	}

	out.Percentage = round2(float64(out.Occupied) / float64(box.Capacity) * 100)
	return out
}

// SplitterLimit is the number of splitters a box of the given type may hold.
func SplitterLimit(t types.BoxType) int {
	switch t {
	case types.BoxTypeCTO:
		return 2
	case types.BoxTypeCEO:
		return 4
	default:
		return 0
	}
}

// CanAddSplitter reports whether the box has room for another splitter.
func CanAddSplitter(box types.Box) bool {
	current := 0
	if box.Count != nil {
		current = box.Count.Splitters
	}
	return current < SplitterLimit(box.Type)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
