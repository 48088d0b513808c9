package navigation

import (
	"github.com/banshee-data/tracknav/internal/geometry"
)

// Candidate is a surface paired with its computed intersection for the
// current trajectory state. Candidates within one sequence are ordered by
// non-decreasing path length; ties keep the scope's insertion order.
type Candidate struct {
	Surface      geometry.Surface
	Intersection geometry.Intersection
}

// LayerCandidate is a layer targeted through its representing surface.
type LayerCandidate struct {
	Candidate
	Layer *geometry.Layer
}

// BoundaryCandidate is a boundary surface of the current volume; Attached is
// the volume on the other side (nil when the geometry ends there).
type BoundaryCandidate struct {
	Candidate
	Attached *geometry.Volume
}
