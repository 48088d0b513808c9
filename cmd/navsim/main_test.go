package main

import (
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/tracknav/internal/geometry"
	"github.com/banshee-data/tracknav/internal/navdb"
	"github.com/banshee-data/tracknav/internal/navigation"
)

func TestParseVec(t *testing.T) {
	v, err := parseVec("1, -2,3.5")
	if err != nil {
		t.Fatalf("parseVec failed: %v", err)
	}
	if v.X != 1 || v.Y != -2 || v.Z != 3.5 {
		t.Errorf("parseVec = %+v", v)
	}

	if _, err := parseVec("1,2"); err == nil {
		t.Error("parseVec should reject a pair")
	}
	if _, err := parseVec("1,2,x"); err == nil {
		t.Error("parseVec should reject non-numeric components")
	}
}

func TestPropagateRecordsFullTraversal(t *testing.T) {
	geo, err := geometry.BuildCylindricalDetector(geometry.DefaultCylindricalConfig())
	if err != nil {
		t.Fatalf("build detector: %v", err)
	}

	ndb, err := navdb.NewNavDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer ndb.Close()

	nav := navigation.New(geo)
	start := r3.Vec{}
	dir := r3.Vec{X: 1, Y: 1}

	runID, err := ndb.BeginRun(geo.Name(), "forward", start, dir)
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}

	stp := navigation.NewLineStepper(start, dir, navigation.Forward, 50)
	res, err := propagate(nav, ndb, runID, stp, 1000)
	if err != nil {
		t.Fatalf("propagate failed: %v", err)
	}

	if res.status != "break" {
		t.Errorf("status = %q, want break", res.status)
	}
	if res.reason != string(navigation.BreakExitedGeometry) {
		t.Errorf("reason = %q, want %q", res.reason, navigation.BreakExitedGeometry)
	}
	if res.path < 199 {
		t.Errorf("path = %v, want roughly the outer radius", res.path)
	}

	steps, err := ndb.StepsForRun(runID)
	if err != nil {
		t.Fatalf("StepsForRun failed: %v", err)
	}
	if len(steps) != res.steps {
		t.Errorf("recorded %d steps, result says %d", len(steps), res.steps)
	}
	if len(steps) == 0 {
		t.Fatal("no steps recorded")
	}
	last := steps[len(steps)-1].Position
	if r := last.X*last.X + last.Y*last.Y; r < 200*200-1 {
		t.Errorf("final radius^2 = %v, want outside the barrel", r)
	}
}

func TestPropagateStopsAtMaxSteps(t *testing.T) {
	geo, err := geometry.BuildCylindricalDetector(geometry.DefaultCylindricalConfig())
	if err != nil {
		t.Fatalf("build detector: %v", err)
	}

	ndb, err := navdb.NewNavDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer ndb.Close()

	nav := navigation.New(geo)
	start := r3.Vec{}
	dir := r3.Vec{X: 1}

	runID, err := ndb.BeginRun(geo.Name(), "forward", start, dir)
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}

	stp := navigation.NewLineStepper(start, dir, navigation.Forward, 50)
	res, err := propagate(nav, ndb, runID, stp, 2)
	if err != nil {
		t.Fatalf("propagate failed: %v", err)
	}
	if res.status != "max_steps" {
		t.Errorf("status = %q, want max_steps", res.status)
	}
	if res.steps != 2 {
		t.Errorf("steps = %d, want 2", res.steps)
	}
}
