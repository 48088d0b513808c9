package navigation

import "github.com/banshee-data/tracknav/internal/geometry"

// BreakReason explains why navigation stopped without reaching the target.
type BreakReason string

const (
	// BreakGeometryInconsistency: the starting position resolves to no volume.
	BreakGeometryInconsistency BreakReason = "geometry_inconsistency"
	// BreakDeadEnd: the current volume is exhausted with no boundary candidate.
	BreakDeadEnd BreakReason = "dead_end"
	// BreakTargetUnreachable: the trajectory left the geometry before the
	// target surface ever appeared in a candidate set.
	BreakTargetUnreachable BreakReason = "target_unreachable"
	// BreakExitedGeometry: the trajectory crossed into unmapped space with no
	// target set; navigation simply ends.
	BreakExitedGeometry BreakReason = "exited_geometry"
)

// State is the per-trajectory navigation record, owned by the caller and
// mutated in lock-step by Navigator.Status and Navigator.Target. A zero State
// is ready for the first Status call. The navigator itself holds no
// per-trajectory data, so one Navigator may drive many States concurrently.
type State struct {
	// Volume context. CurrentVolume changes only by boundary crossing.
	StartVolume   *geometry.Volume
	CurrentVolume *geometry.Volume
	TargetVolume  *geometry.Volume

	// Surface context. CurrentSurface is nil except exactly when the
	// trajectory sits on a surface. TargetSurface, when set by the caller,
	// terminates navigation on arrival.
	StartSurface   geometry.Surface
	CurrentSurface geometry.Surface
	TargetSurface  geometry.Surface

	// Candidate sequences (sorted ascending by path length) and their
	// cursors. A nil sequence is inactive; an empty non-nil sequence has
	// been resolved and found nothing. A cursor references the next
	// unconsumed candidate.
	NavSurfaces   []Candidate
	SurfaceCursor int

	NavLayers   []LayerCandidate
	LayerCursor int

	NavBoundaries  []BoundaryCandidate
	BoundaryCursor int

	// TargetReached is terminal: the trajectory sits on TargetSurface.
	TargetReached bool

	// NavigationBreak is terminal: no further progress is possible.
	NavigationBreak bool
	Reason          BreakReason

	// activeLayer is the layer whose surfaces are currently being consumed.
	activeLayer *geometry.Layer

	// pendingBoundary is the boundary the trajectory has arrived on but not
	// yet crossed; crossing happens on the next Target call.
	pendingBoundary *BoundaryCandidate

	initialized bool
}

// ActiveLayer returns the layer whose surfaces are currently being consumed,
// or nil outside any layer.
func (s *State) ActiveLayer() *geometry.Layer { return s.activeLayer }

// Initialized reports whether the first Status call has run.
func (s *State) Initialized() bool { return s.initialized }

func (s *State) breakWith(reason BreakReason) {
	s.NavigationBreak = true
	s.Reason = reason
}

// clearSequences drops all candidate sequences, as required when entering a
// new volume.
func (s *State) clearSequences() {
	s.NavSurfaces = nil
	s.SurfaceCursor = 0
	s.NavLayers = nil
	s.LayerCursor = 0
	s.NavBoundaries = nil
	s.BoundaryCursor = 0
	s.activeLayer = nil
}
