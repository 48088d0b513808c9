// Package navigation derives geometric context for a trajectory from an
// immutable detector model and feeds step-size constraints back to an
// external integrator.
//
// The caller drives one trajectory by alternating two calls per integration
// step: Status (re-orient after the step) then Target (propose the next
// constraint), until State.TargetReached or State.NavigationBreak. The
// Navigator is stateless and reentrant; all per-trajectory data lives in the
// State.
package navigation

import (
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/tracknav/internal/geometry"
	"github.com/banshee-data/tracknav/internal/units"
)

// maxVolumeTransitions bounds volume crossings handled within one Target
// call, as a guard against cyclic boundary attachments in a malformed model.
const maxVolumeTransitions = 64

// TraceFunc receives human-readable per-call trace messages. Purely
// observational; navigation behaves identically with or without it.
type TraceFunc func(format string, args ...interface{})

// Navigator answers, for each integration step, where the trajectory is
// relative to the geometry and how far it can safely advance.
type Navigator struct {
	Geometry *geometry.TrackingGeometry

	// Category flags select which surfaces participate in candidate
	// resolution. A surface enabled by no flag is never a candidate.
	ResolveSensitive bool
	ResolveMaterial  bool
	ResolvePassive   bool

	// Tolerance is the on-surface distance; zero means the default.
	Tolerance float64

	// Trace, when set, receives per-call diagnostics.
	Trace TraceFunc
}

// New creates a Navigator with the default resolution policy: sensitive and
// material surfaces in, passive surfaces out.
func New(geo *geometry.TrackingGeometry) *Navigator {
	return &Navigator{
		Geometry:         geo,
		ResolveSensitive: true,
		ResolveMaterial:  true,
		Tolerance:        units.OnSurfaceTolerance,
	}
}

func (n *Navigator) tol() float64 {
	if n.Tolerance > 0 {
		return n.Tolerance
	}
	return units.OnSurfaceTolerance
}

func (n *Navigator) trace(format string, args ...interface{}) {
	if n.Trace != nil {
		n.Trace(format, args...)
	}
}

// effectiveDirection returns the tangent with the navigation sense applied.
// Backward navigation negates the direction before filtering, so candidate
// path lengths are always positive.
func effectiveDirection(stp Stepper) r3.Vec {
	return r3.Scale(float64(stp.NavDirection()), stp.Direction())
}

// Status re-orients the navigation state after the integrator has moved the
// trajectory (or initializes it on the very first call). It never advances
// the trajectory; all effects are mutations of state.
func (n *Navigator) Status(state *State, stp Stepper) {
	if state == nil || stp == nil {
		return
	}
	if !state.initialized {
		n.initialize(state, stp)
		return
	}
	if state.NavigationBreak || state.TargetReached {
		return
	}

	pos := stp.Position()
	tol := n.tol()

	// The trajectory has not left the last recorded surface: nothing moved,
	// nothing to update.
	if state.CurrentSurface != nil && state.CurrentSurface.IsOnSurface(pos, tol) {
		return
	}
	state.CurrentSurface = nil

	// Target surface arrival ends navigation regardless of the active scope.
	if state.TargetSurface != nil && state.TargetSurface.IsOnSurface(pos, tol) {
		state.CurrentSurface = state.TargetSurface
		state.TargetReached = true
		n.trace("status: target surface %s reached", state.TargetSurface.Name())
		return
	}

	// Check the cursor candidates for arrival, surfaces first. Every scope
	// is checked, not only the innermost active one: a Target call may have
	// proposed a layer or boundary that undercuts the surface sequence, so
	// the arrival can belong to any of the three.
	if state.SurfaceCursor < len(state.NavSurfaces) &&
		state.NavSurfaces[state.SurfaceCursor].Surface.IsOnSurface(pos, tol) {
		cand := state.NavSurfaces[state.SurfaceCursor]
		state.CurrentSurface = cand.Surface
		state.SurfaceCursor++
		n.trace("status: on surface %s", cand.Surface.Name())
	} else if state.LayerCursor < len(state.NavLayers) &&
		state.NavLayers[state.LayerCursor].Surface.IsOnSurface(pos, tol) {
		cand := state.NavLayers[state.LayerCursor]
		state.CurrentSurface = cand.Surface
		state.LayerCursor++
		state.activeLayer = cand.Layer
		n.trace("status: entered layer %s", cand.Layer.Name())
		n.resolveSurfaces(state, stp, cand.Layer)
	} else if state.BoundaryCursor < len(state.NavBoundaries) &&
		state.NavBoundaries[state.BoundaryCursor].Surface.IsOnSurface(pos, tol) {
		cand := state.NavBoundaries[state.BoundaryCursor]
		state.CurrentSurface = cand.Surface
		state.BoundaryCursor++
		pending := cand
		state.pendingBoundary = &pending
		n.trace("status: on boundary %s", cand.Surface.Name())
	}

	// A fresh volume with no sequences yet resolves its first scope here.
	n.ensureScope(state, stp)
}

// Target proposes the next step-size constraint to the integrator: the
// nearest candidate among the active layer's surfaces, the remaining layers
// and the volume boundaries. Volumes are crossed as their candidates are
// exhausted. Terminal states leave the step bound untouched, which signals
// the integrator to stop.
func (n *Navigator) Target(state *State, stp Stepper) {
	if state == nil || stp == nil || !state.initialized {
		return
	}
	if state.TargetReached || state.NavigationBreak {
		return
	}

	n.ensureScope(state, stp)
	if state.NavigationBreak {
		return
	}

	for i := 0; i < maxVolumeTransitions; i++ {
		// A consumed boundary is crossed before anything else is proposed.
		if state.pendingBoundary != nil {
			if !n.crossBoundary(state, stp) {
				return
			}
			continue
		}

		// The proposal is the nearest candidate across all three scopes.
		// A chord through the volume can put the active layer's far-side
		// module beyond a boundary or a not-yet-entered layer, and the
		// step must never skip past either, so the scopes compete on path
		// length. Surfaces win ties, then layers.
		var bestPath float64
		var bestSurf geometry.Surface

		if state.NavSurfaces != nil {
			if path, surf, ok := n.nextSurface(state, stp); ok {
				bestPath, bestSurf = path, surf
			} else {
				state.NavSurfaces = nil
				state.SurfaceCursor = 0
				state.activeLayer = nil
			}
		}
		if path, surf, ok := n.nextLayer(state, stp); ok && (bestSurf == nil || path < bestPath) {
			bestPath, bestSurf = path, surf
		}
		if state.NavBoundaries == nil {
			n.resolveBoundaries(state, stp)
		}
		if path, surf, ok := n.nextBoundary(state, stp); ok && (bestSurf == nil || path < bestPath) {
			bestPath, bestSurf = path, surf
		}
		if bestSurf != nil {
			n.propose(state, stp, bestPath, bestSurf)
			return
		}

		// Nothing ahead in this volume.
		if state.TargetSurface != nil {
			state.breakWith(BreakTargetUnreachable)
		} else {
			state.breakWith(BreakDeadEnd)
		}
		n.trace("target: no candidates left in volume %s", state.CurrentVolume.Name())
		return
	}

	// Only reachable with a cyclic boundary graph.
	state.breakWith(BreakGeometryInconsistency)
	n.trace("target: aborted after %d volume transitions", maxVolumeTransitions)
}

func (n *Navigator) initialize(state *State, stp Stepper) {
	state.initialized = true
	vol := n.Geometry.FindVolume(stp.Position())
	if vol == nil {
		state.breakWith(BreakGeometryInconsistency)
		n.trace("status: start position resolves to no volume")
		return
	}
	state.StartVolume = vol
	state.CurrentVolume = vol
	state.CurrentSurface = nil
	if state.TargetSurface != nil {
		state.TargetVolume = n.Geometry.FindVolume(state.TargetSurface.Center())
	}
	n.trace("status: initialized in volume %s (%s)", vol.Name(), stp.NavDirection())
}

// ensureScope resolves the first scope for a volume that has no candidate
// sequences yet. With no surface category enabled at all there is nothing to
// navigate towards and navigation breaks immediately.
func (n *Navigator) ensureScope(state *State, stp Stepper) {
	if state.NavigationBreak || state.TargetReached || state.pendingBoundary != nil {
		return
	}
	if state.NavSurfaces != nil || state.NavLayers != nil || state.NavBoundaries != nil {
		return
	}
	if !n.ResolveSensitive && !n.ResolveMaterial && !n.ResolvePassive {
		n.trace("no surface category enabled, nothing to resolve")
		state.breakWith(BreakDeadEnd)
		return
	}
	// Boundaries resolve eagerly alongside layers so they can cap every
	// proposal made in this volume.
	n.resolveLayers(state, stp)
	n.resolveBoundaries(state, stp)
	if len(state.NavLayers) == 0 && len(state.NavBoundaries) == 0 {
		state.breakWith(BreakDeadEnd)
		n.trace("volume %s has no eligible candidates", state.CurrentVolume.Name())
	}
}

// crossBoundary moves the state into the volume behind the pending boundary.
// It reports false when navigation terminated (geometry exit).
func (n *Navigator) crossBoundary(state *State, stp Stepper) bool {
	pending := state.pendingBoundary
	state.pendingBoundary = nil
	state.clearSequences()

	if pending.Attached == nil {
		if state.TargetSurface != nil {
			state.breakWith(BreakTargetUnreachable)
		} else {
			state.breakWith(BreakExitedGeometry)
		}
		n.trace("target: left the modeled geometry through %s", pending.Surface.Name())
		return false
	}

	state.CurrentVolume = pending.Attached
	n.trace("target: entered volume %s through %s", pending.Attached.Name(), pending.Surface.Name())

	n.ensureScope(state, stp)
	return !state.NavigationBreak
}

// nextSurface re-intersects the surface cursor candidate from the current
// position, skipping candidates that fell behind or out of acceptance.
func (n *Navigator) nextSurface(state *State, stp Stepper) (float64, geometry.Surface, bool) {
	pos, dir, corr, tol := stp.Position(), effectiveDirection(stp), stp.Corrector(), n.tol()
	for state.SurfaceCursor < len(state.NavSurfaces) {
		cand := &state.NavSurfaces[state.SurfaceCursor]
		ix := cand.Surface.Intersect(pos, dir, corr)
		if ix.Valid && ix.PathLength > tol {
			cand.Intersection = ix
			return ix.PathLength, cand.Surface, true
		}
		state.SurfaceCursor++
	}
	return 0, nil, false
}

func (n *Navigator) nextLayer(state *State, stp Stepper) (float64, geometry.Surface, bool) {
	pos, dir, corr, tol := stp.Position(), effectiveDirection(stp), stp.Corrector(), n.tol()
	for state.LayerCursor < len(state.NavLayers) {
		cand := &state.NavLayers[state.LayerCursor]
		ix := cand.Surface.Intersect(pos, dir, corr)
		if ix.Valid && ix.PathLength > tol {
			cand.Intersection = ix
			return ix.PathLength, cand.Surface, true
		}
		state.LayerCursor++
	}
	return 0, nil, false
}

func (n *Navigator) nextBoundary(state *State, stp Stepper) (float64, geometry.Surface, bool) {
	pos, dir, corr, tol := stp.Position(), effectiveDirection(stp), stp.Corrector(), n.tol()
	for state.BoundaryCursor < len(state.NavBoundaries) {
		cand := &state.NavBoundaries[state.BoundaryCursor]
		ix := cand.Surface.Intersect(pos, dir, corr)
		if ix.Valid && ix.PathLength > tol {
			cand.Intersection = ix
			return ix.PathLength, cand.Surface, true
		}
		state.BoundaryCursor++
	}
	return 0, nil, false
}

// propose tightens the integrator's step bound to the nearest constraint:
// the active candidate, or the target surface when it is closer. The user
// bound already present on the step holder caps both.
func (n *Navigator) propose(state *State, stp Stepper, path float64, surf geometry.Surface) {
	if state.TargetSurface != nil && state.TargetSurface != surf {
		ti := state.TargetSurface.Intersect(stp.Position(), effectiveDirection(stp), stp.Corrector())
		if ti.Valid && ti.PathLength > n.tol() && ti.PathLength < path {
			path = ti.PathLength
			surf = state.TargetSurface
		}
	}
	stp.StepSize().Set(path, ConstraintNavigator)
	n.trace("target: step constrained to %.4f mm towards %s", path, surf.Name())
}

// resolveLayers builds the layer candidate sequence for the current volume:
// one candidate per eligible layer whose representing surface lies ahead.
func (n *Navigator) resolveLayers(state *State, stp Stepper) {
	pos, dir, corr, tol := stp.Position(), effectiveDirection(stp), stp.Corrector(), n.tol()

	cands := []LayerCandidate{}
	for _, layer := range state.CurrentVolume.Layers {
		if !layer.Eligible(n.ResolveSensitive, n.ResolveMaterial, n.ResolvePassive) {
			continue
		}
		ix := layer.Representing.Intersect(pos, dir, corr)
		if !ix.Valid || ix.PathLength <= tol {
			continue
		}
		cands = append(cands, LayerCandidate{
			Candidate: Candidate{Surface: layer.Representing, Intersection: ix},
			Layer:     layer,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Intersection.PathLength < cands[j].Intersection.PathLength
	})
	state.NavLayers = cands
	state.LayerCursor = 0
	n.trace("resolved %d layer candidate(s) in volume %s", len(cands), state.CurrentVolume.Name())
}

// resolveSurfaces builds the surface candidate sequence for a layer the
// trajectory has entered.
func (n *Navigator) resolveSurfaces(state *State, stp Stepper, layer *geometry.Layer) {
	pos, dir, corr, tol := stp.Position(), effectiveDirection(stp), stp.Corrector(), n.tol()

	cands := []Candidate{}
	for _, surf := range layer.Surfaces(n.ResolveSensitive, n.ResolveMaterial, n.ResolvePassive) {
		ix := surf.Intersect(pos, dir, corr)
		if !ix.Valid || ix.PathLength <= tol {
			continue
		}
		cands = append(cands, Candidate{Surface: surf, Intersection: ix})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Intersection.PathLength < cands[j].Intersection.PathLength
	})
	state.NavSurfaces = cands
	state.SurfaceCursor = 0
	n.trace("resolved %d surface candidate(s) on layer %s", len(cands), layer.Name())
}

// resolveBoundaries builds the boundary candidate sequence for the current
// volume.
func (n *Navigator) resolveBoundaries(state *State, stp Stepper) {
	pos, dir, corr, tol := stp.Position(), effectiveDirection(stp), stp.Corrector(), n.tol()

	cands := []BoundaryCandidate{}
	for _, b := range state.CurrentVolume.Boundaries {
		ix := b.Surface.Intersect(pos, dir, corr)
		if !ix.Valid || ix.PathLength <= tol {
			continue
		}
		cands = append(cands, BoundaryCandidate{
			Candidate: Candidate{Surface: b.Surface, Intersection: ix},
			Attached:  b.Attached,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Intersection.PathLength < cands[j].Intersection.PathLength
	})
	state.NavBoundaries = cands
	state.BoundaryCursor = 0
	n.trace("resolved %d boundary candidate(s) in volume %s", len(cands), state.CurrentVolume.Name())
}
