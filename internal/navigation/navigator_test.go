package navigation

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/tracknav/internal/geometry"
	"github.com/banshee-data/tracknav/internal/testutil"
)

func buildTestGeometry(t *testing.T) *geometry.TrackingGeometry {
	t.Helper()
	geo, err := geometry.BuildCylindricalDetector(geometry.DefaultCylindricalConfig())
	if err != nil {
		t.Fatalf("geometry build failed: %v", err)
	}
	return geo
}

// diagonal is an in-plane direction through the center of one module per
// barrel layer (every ring has a module centered at 45 degrees).
func diagonal() r3.Vec {
	return r3.Unit(r3.Vec{X: 1, Y: 1})
}

func TestNavigator_FirstStatus(t *testing.T) {
	nav := New(buildTestGeometry(t))
	stp := NewLineStepper(r3.Vec{}, diagonal(), Forward, 1000)
	state := &State{}

	nav.Status(state, stp)

	if state.CurrentVolume == nil {
		t.Fatal("expected current volume after first status")
	}
	if state.CurrentVolume != state.StartVolume {
		t.Error("current volume should equal start volume")
	}
	if state.CurrentVolume.Name() != "beam_pipe_volume" {
		t.Errorf("expected beam_pipe_volume, got %s", state.CurrentVolume.Name())
	}
	if state.CurrentSurface != nil {
		t.Error("current surface must be nil after first status")
	}
	// First-call initialization leaves all sequences empty.
	if len(state.NavLayers)+len(state.NavSurfaces)+len(state.NavBoundaries) != 0 {
		t.Error("first status must leave candidate sequences empty")
	}
}

func TestNavigator_FirstTargetProposesInnermostRadius(t *testing.T) {
	nav := New(buildTestGeometry(t))
	stp := NewLineStepper(r3.Vec{}, diagonal(), Forward, 1000)
	state := &State{}

	nav.Status(state, stp)
	nav.Target(state, stp)

	if len(state.NavLayers) != 1 {
		t.Fatalf("expected 1 layer candidate, got %d", len(state.NavLayers))
	}
	if state.LayerCursor != 0 {
		t.Errorf("layer cursor should reference the first candidate, got %d", state.LayerCursor)
	}
	// The proposed step equals the beam pipe radius.
	testutil.AssertInDelta(t, stp.Step.Value(), 19, 1e-4)
	testutil.AssertInDelta(t, geometry.Perp(state.NavLayers[0].Intersection.Position), 19, 1e-4)
}

func TestNavigator_ForwardWalk(t *testing.T) {
	nav := New(buildTestGeometry(t))
	stp := NewLineStepper(r3.Vec{}, diagonal(), Forward, 1000)
	state := &State{}

	// Initialize and head for the beam pipe.
	nav.Status(state, stp)
	nav.Target(state, stp)
	testutil.AssertInDelta(t, stp.Advance(), 19, 1e-4)

	// On the beam pipe: the layer is consumed, the boundary comes next.
	nav.Status(state, stp)
	if state.CurrentSurface == nil || state.CurrentSurface.Name() != "beam_pipe" {
		t.Fatalf("expected arrival on beam_pipe, got %v", state.CurrentSurface)
	}
	if state.CurrentVolume != state.StartVolume {
		t.Error("arriving on a layer must not change the volume")
	}
	if state.LayerCursor != 1 {
		t.Errorf("layer cursor should have advanced, got %d", state.LayerCursor)
	}
	nav.Target(state, stp)
	if len(state.NavBoundaries) != 1 {
		t.Fatalf("expected 1 boundary candidate, got %d", len(state.NavBoundaries))
	}
	testutil.AssertInDelta(t, stp.Advance(), 8, 1e-4) // 27 - 19

	// On the volume boundary: the next target crosses into the barrel.
	nav.Status(state, stp)
	if state.CurrentSurface == nil || state.CurrentSurface.Name() != "boundary_r27" {
		t.Fatalf("expected arrival on boundary_r27, got %v", state.CurrentSurface)
	}
	nav.Target(state, stp)
	if state.CurrentVolume.Name() != "barrel_volume" {
		t.Fatalf("expected crossing into barrel_volume, got %s", state.CurrentVolume.Name())
	}
	if len(state.NavLayers) != 4 {
		t.Fatalf("expected 4 barrel layer candidates, got %d", len(state.NavLayers))
	}
	// The barrel's own boundaries replace the consumed sequence so every
	// proposal in the new volume is capped by them.
	if len(state.NavBoundaries) != 1 || state.NavBoundaries[0].Surface.Name() != "boundary_outer" {
		t.Errorf("expected the barrel's outer boundary as sole candidate, got %v", state.NavBoundaries)
	}
	if state.BoundaryCursor != 0 {
		t.Errorf("boundary cursor should be reset after crossing, got %d", state.BoundaryCursor)
	}
	testutil.AssertInDelta(t, stp.Advance(), 2, 1e-4) // approach at r=29

	// Walk the four barrel layers: approach arrival, then the module.
	moduleRadii := []float64{32, 72, 116, 172}
	for i, radius := range moduleRadii {
		nav.Status(state, stp)
		if state.ActiveLayer() == nil {
			t.Fatalf("layer %d: expected an active layer", i)
		}
		if len(state.NavSurfaces) != 1 {
			t.Fatalf("layer %d: expected exactly 1 module candidate, got %d", i, len(state.NavSurfaces))
		}
		nav.Target(state, stp)
		// The outer boundary stays unconsumed while layers remain.
		if state.BoundaryCursor != 0 {
			t.Errorf("layer %d: boundary consumed too early", i)
		}
		testutil.AssertInDelta(t, stp.Advance(), 3, 1e-4) // approach to module

		nav.Status(state, stp)
		if state.CurrentSurface == nil || !state.CurrentSurface.Sensitive() {
			t.Fatalf("layer %d: expected arrival on a sensitive module", i)
		}
		testutil.AssertInDelta(t, geometry.Perp(stp.Position()), radius, 1e-4)
		nav.Target(state, stp)
		if i < len(moduleRadii)-1 {
			// Distance to the next layer's inner approach cylinder.
			next := moduleRadii[i+1] - 3 - radius
			testutil.AssertInDelta(t, stp.Advance(), next, 1e-4)
		}
	}

	// Layers exhausted: the outer boundary is the last stop.
	testutil.AssertInDelta(t, stp.Advance(), 28, 1e-4) // 200 - 172
	nav.Status(state, stp)
	if state.CurrentSurface == nil || state.CurrentSurface.Name() != "boundary_outer" {
		t.Fatalf("expected arrival on boundary_outer, got %v", state.CurrentSurface)
	}
	nav.Target(state, stp)
	if !state.NavigationBreak {
		t.Fatal("expected navigation break after leaving the detector")
	}
	if state.Reason != BreakExitedGeometry {
		t.Errorf("expected %s, got %s", BreakExitedGeometry, state.Reason)
	}
}

func TestNavigator_InwardChordCrossesBeamPipe(t *testing.T) {
	// A trajectory heading inward through the barrel has the far side of
	// the entered layer as a surface candidate, but the proposal must stop
	// at the r=27 boundary 2mm ahead, cross into the beam-pipe volume and
	// meet its material cylinder twice before resuming on the far side.
	nav := New(buildTestGeometry(t))
	stp := NewLineStepper(r3.Vec{X: 50}, r3.Vec{X: 1}, Backward, 1000)
	state := &State{}

	nav.Status(state, stp)
	nav.Target(state, stp)
	testutil.AssertInDelta(t, stp.Advance(), 21, 1e-4) // layer-0 approach at x=29

	nav.Status(state, stp)
	if state.CurrentSurface == nil || state.CurrentSurface.Name() != "layer0_approach_inner" {
		t.Fatalf("expected arrival on layer0_approach_inner, got %v", state.CurrentSurface)
	}
	if len(state.NavSurfaces) != 1 {
		t.Fatalf("expected the far-side module as surface candidate, got %d", len(state.NavSurfaces))
	}

	// The far-side module sits 61mm away; the boundary 2mm ahead wins.
	nav.Target(state, stp)
	testutil.AssertInDelta(t, stp.Advance(), 2, 1e-4)

	nav.Status(state, stp)
	if state.CurrentSurface == nil || state.CurrentSurface.Name() != "boundary_r27" {
		t.Fatalf("expected arrival on boundary_r27, got %v", state.CurrentSurface)
	}

	// Crossing enters the beam-pipe volume; its material cylinder is next.
	nav.Target(state, stp)
	if state.CurrentVolume.Name() != "beam_pipe_volume" {
		t.Fatalf("expected crossing into beam_pipe_volume, got %s", state.CurrentVolume.Name())
	}
	testutil.AssertInDelta(t, stp.Advance(), 8, 1e-4) // 27 - 19

	nav.Status(state, stp)
	if state.CurrentSurface == nil || state.CurrentSurface.Name() != "beam_pipe" {
		t.Fatalf("expected arrival on beam_pipe, got %v", state.CurrentSurface)
	}

	// Straight through: the far side of the material cylinder.
	nav.Target(state, stp)
	testutil.AssertInDelta(t, stp.Advance(), 38, 1e-4) // 19 + 19
	nav.Status(state, stp)
	if state.CurrentSurface == nil || state.CurrentSurface.Name() != "beam_pipe" {
		t.Fatalf("expected second beam_pipe crossing, got %v", state.CurrentSurface)
	}

	// Out the other side and back into the barrel.
	nav.Target(state, stp)
	testutil.AssertInDelta(t, stp.Advance(), 8, 1e-4)
	nav.Status(state, stp)
	if state.CurrentSurface == nil || state.CurrentSurface.Name() != "boundary_r27" {
		t.Fatalf("expected arrival on boundary_r27, got %v", state.CurrentSurface)
	}
	nav.Target(state, stp)
	if state.CurrentVolume.Name() != "barrel_volume" {
		t.Fatalf("expected re-entry into barrel_volume, got %s", state.CurrentVolume.Name())
	}
	testutil.AssertInDelta(t, stp.Advance(), 2, 1e-4)

	// The far-side structures are resolved fresh on re-entry.
	nav.Status(state, stp)
	nav.Target(state, stp)
	testutil.AssertInDelta(t, stp.Advance(), 3, 1e-4)
	nav.Status(state, stp)
	if state.CurrentSurface == nil || !state.CurrentSurface.Sensitive() {
		t.Fatalf("expected the far-side sensitive module, got %v", state.CurrentSurface)
	}
	testutil.AssertInDelta(t, geometry.Perp(stp.Position()), 32, 1e-4)
	testutil.AssertInDelta(t, stp.Position().X, -32, 1e-4)
}

func TestNavigator_StatusIdempotent(t *testing.T) {
	nav := New(buildTestGeometry(t))
	stp := NewLineStepper(r3.Vec{}, diagonal(), Forward, 1000)
	state := &State{}

	nav.Status(state, stp)
	nav.Target(state, stp)
	stp.Advance()

	// First status after the step records the arrival.
	nav.Status(state, stp)
	volume, surface := state.CurrentVolume, state.CurrentSurface
	layers, surfaces, boundaries := len(state.NavLayers), len(state.NavSurfaces), len(state.NavBoundaries)
	lCur, sCur, bCur := state.LayerCursor, state.SurfaceCursor, state.BoundaryCursor

	// A second status without an intervening move must change nothing.
	nav.Status(state, stp)
	if state.CurrentVolume != volume || state.CurrentSurface != surface {
		t.Error("repeated status changed volume or surface context")
	}
	if len(state.NavLayers) != layers || len(state.NavSurfaces) != surfaces || len(state.NavBoundaries) != boundaries {
		t.Error("repeated status changed candidate sequences")
	}
	if state.LayerCursor != lCur || state.SurfaceCursor != sCur || state.BoundaryCursor != bCur {
		t.Error("repeated status moved a cursor")
	}
	if state.TargetReached || state.NavigationBreak {
		t.Error("repeated status flipped a terminal flag")
	}
}

func TestNavigator_NoCategoriesEnabled(t *testing.T) {
	nav := New(buildTestGeometry(t))
	nav.ResolveSensitive = false
	nav.ResolveMaterial = false
	nav.ResolvePassive = false
	stp := NewLineStepper(r3.Vec{}, diagonal(), Forward, 1000)
	state := &State{}

	nav.Status(state, stp)
	nav.Target(state, stp)

	if !state.NavigationBreak {
		t.Fatal("expected navigation break with no categories enabled")
	}
	if state.Reason != BreakDeadEnd {
		t.Errorf("expected %s, got %s", BreakDeadEnd, state.Reason)
	}
	if len(state.NavSurfaces)+len(state.NavLayers)+len(state.NavBoundaries) != 0 {
		t.Error("expected zero candidates in every sequence")
	}
}

func TestNavigator_CandidateOrdering(t *testing.T) {
	geo := buildTestGeometry(t)

	check := func(t *testing.T, navDir Direction, wantFirst float64) {
		nav := New(geo)
		stp := NewLineStepper(r3.Vec{X: 50}, r3.Vec{X: 1}, navDir, 1000)
		state := &State{}
		nav.Status(state, stp)
		nav.Target(state, stp)

		if len(state.NavLayers) == 0 {
			t.Fatal("expected layer candidates")
		}
		last := 0.0
		for i, c := range state.NavLayers {
			if c.Intersection.PathLength < last {
				t.Errorf("candidate %d out of order: %v < %v", i, c.Intersection.PathLength, last)
			}
			last = c.Intersection.PathLength
		}
		testutil.AssertInDelta(t, state.NavLayers[0].Intersection.PathLength, wantFirst, 1e-4)
	}

	// Forward from r=50: the layer-1 approach at r=69 is nearest.
	t.Run("forward", func(t *testing.T) { check(t, Forward, 19) })
	// Backward from r=50: the layer-0 approach at r=29 is nearest.
	t.Run("backward", func(t *testing.T) { check(t, Backward, 21) })
}

func TestNavigator_TargetSurfaceNearerThanCandidate(t *testing.T) {
	nav := New(buildTestGeometry(t))
	stp := NewLineStepper(r3.Vec{}, r3.Vec{X: 1}, Forward, 1000)
	state := &State{
		TargetSurface: geometry.NewCylinderSurface("analysis_target", 10, 400),
	}

	nav.Status(state, stp)
	nav.Target(state, stp)

	// The target at r=10 is closer than the beam pipe at r=19.
	testutil.AssertInDelta(t, stp.Step.Value(), 10, 1e-4)
	stp.Advance()

	nav.Status(state, stp)
	if !state.TargetReached {
		t.Fatal("expected target reached on arrival")
	}
	if state.CurrentSurface != state.TargetSurface {
		t.Error("current surface should be the target surface")
	}

	// Terminal: target leaves the step bound untouched.
	before := stp.Step.Value()
	nav.Target(state, stp)
	if stp.Step.Value() != before {
		t.Error("target must not modify the step bound after arrival")
	}
}

func TestNavigator_TargetSurfaceBeyondCandidate(t *testing.T) {
	nav := New(buildTestGeometry(t))
	stp := NewLineStepper(r3.Vec{}, r3.Vec{X: 1}, Forward, 1000)
	state := &State{
		TargetSurface: geometry.NewCylinderSurface("analysis_target", 100, 400),
	}

	nav.Status(state, stp)
	nav.Target(state, stp)

	// The beam pipe at r=19 is mandatory before the target at r=100.
	testutil.AssertInDelta(t, stp.Step.Value(), 19, 1e-4)
}

func TestNavigator_StartOutsideGeometry(t *testing.T) {
	nav := New(buildTestGeometry(t))
	stp := NewLineStepper(r3.Vec{X: 500}, r3.Vec{X: 1}, Forward, 1000)
	state := &State{}

	nav.Status(state, stp)

	if !state.NavigationBreak {
		t.Fatal("expected navigation break for a start outside the geometry")
	}
	if state.Reason != BreakGeometryInconsistency {
		t.Errorf("expected %s, got %s", BreakGeometryInconsistency, state.Reason)
	}
	if state.StartVolume != nil {
		t.Error("start volume should stay nil")
	}
}

func TestNavigator_EqualPathTieKeepsInsertionOrder(t *testing.T) {
	// Two layers whose representing surfaces coincide radially produce an
	// exact path-length tie; resolution must keep the volume's layer order.
	vol := geometry.NewVolume("tie_volume", 0, 100, 400)
	first := geometry.NewMaterialCylinderSurface("first_shell", 50, 400)
	second := geometry.NewMaterialCylinderSurface("second_shell", 50, 400)
	vol.Layers = []*geometry.Layer{
		geometry.NewLayer("first_layer", first),
		geometry.NewLayer("second_layer", second),
	}
	vol.Boundaries = []geometry.BoundarySurface{
		{Surface: geometry.NewCylinderSurface("tie_outer", 100, 400)},
	}
	geo, err := geometry.NewTrackingGeometry("tie", []*geometry.Volume{vol})
	if err != nil {
		t.Fatalf("geometry build failed: %v", err)
	}

	nav := New(geo)
	stp := NewLineStepper(r3.Vec{}, r3.Vec{X: 1}, Forward, 1000)
	state := &State{}
	nav.Status(state, stp)
	nav.Target(state, stp)

	if len(state.NavLayers) != 2 {
		t.Fatalf("expected 2 layer candidates, got %d", len(state.NavLayers))
	}
	if state.NavLayers[0].Surface.Name() != "first_shell" {
		t.Errorf("tie-break must keep insertion order, got %s first", state.NavLayers[0].Surface.Name())
	}
	testutil.AssertInDelta(t, stp.Step.Value(), 50, 1e-4)
}

func TestNavigator_TraceObserver(t *testing.T) {
	nav := New(buildTestGeometry(t))
	var messages int
	nav.Trace = func(format string, args ...interface{}) { messages++ }

	stp := NewLineStepper(r3.Vec{}, diagonal(), Forward, 1000)
	state := &State{}
	nav.Status(state, stp)
	nav.Target(state, stp)

	if messages == 0 {
		t.Error("expected trace messages during status/target")
	}
}
