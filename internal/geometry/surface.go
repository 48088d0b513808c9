// Package geometry models a static, layered detector: volumes own layers and
// boundary surfaces, layers own sensitive and approach surfaces, and every
// surface answers straight-line intersection queries. The model is built once
// and is immutable afterwards, so it can be shared between any number of
// concurrent trajectory navigations without locking.
//
// All lengths are in millimetres (see internal/units). The detector axis is z.
package geometry

import "gonum.org/v1/gonum/spatial/r3"

// Intersection is the result of a trajectory/surface intersection query.
// PathLength is measured along the supplied direction; Position is the point
// on the surface where the trajectory meets it.
type Intersection struct {
	Valid      bool
	PathLength float64
	Position   r3.Vec
}

// Corrector optionally adjusts position and direction before a surface
// equation is solved, to account for trajectory curvature between steps.
// A nil Corrector means a straight line. The bool reports whether an
// adjustment was applied.
type Corrector func(pos, dir r3.Vec) (r3.Vec, r3.Vec, bool)

// Surface is a geometric boundary that supports intersection queries.
// Implementations must be immutable after construction.
type Surface interface {
	// Name identifies the surface in traces and stored runs.
	Name() string

	// Center returns the geometric center of the surface.
	Center() r3.Vec

	// Sensitive reports whether the surface is an active detection element.
	Sensitive() bool

	// HasMaterial reports whether the surface carries associated material.
	HasMaterial() bool

	// Intersect solves for the nearest forward intersection of the
	// trajectory (pos, dir) with the surface, honouring the surface's own
	// boundary acceptance. Solutions behind the trajectory are rejected;
	// callers navigate backward by negating dir, not by asking for
	// negative path lengths.
	Intersect(pos, dir r3.Vec, corr Corrector) Intersection

	// IsOnSurface reports whether pos lies on the surface, within its
	// acceptance bounds, closer than tol.
	IsOnSurface(pos r3.Vec, tol float64) bool
}

// Passive reports whether s is neither sensitive nor material-bearing.
func Passive(s Surface) bool {
	return !s.Sensitive() && !s.HasMaterial()
}

// minForwardPath is the smallest path length Intersect reports; solutions
// closer than this are on-surface or behind and are not intersections.
const minForwardPath = 1e-9

// applyCorrector runs the optional curvature correction.
func applyCorrector(pos, dir r3.Vec, corr Corrector) (r3.Vec, r3.Vec) {
	if corr != nil {
		if p, d, ok := corr(pos, dir); ok {
			return p, d
		}
	}
	return pos, dir
}
