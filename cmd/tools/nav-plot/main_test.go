package main

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/tracknav/internal/geometry"
	"github.com/banshee-data/tracknav/internal/navdb"
	"github.com/banshee-data/tracknav/internal/units"
)

func TestCirclePoints(t *testing.T) {
	pts := circlePoints(50)
	if len(pts) == 0 {
		t.Fatal("no points")
	}
	// Closed loop back to the start.
	if pts[0].X != pts[len(pts)-1].X || pts[0].Y != pts[len(pts)-1].Y {
		t.Error("circle is not closed")
	}
	for i, pt := range pts {
		r := math.Hypot(pt.X, pt.Y)
		if math.Abs(r-50) > 1e-9 {
			t.Fatalf("point %d at radius %v, want 50", i, r)
		}
	}
}

func testRun(t *testing.T) (*navdb.RunSummary, []navdb.StepRecord) {
	t.Helper()

	ndb, err := navdb.NewNavDB(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { ndb.Close() })

	id, err := ndb.BeginRun("cylindrical", "forward", r3.Vec{}, r3.Vec{X: 1})
	if err != nil {
		t.Fatalf("begin run: %v", err)
	}
	for i, x := range []float64{19, 27, 32, 72} {
		if err := ndb.RecordStep(id, i, r3.Vec{X: x}, 5, "barrel_volume", ""); err != nil {
			t.Fatalf("record step: %v", err)
		}
	}
	if err := ndb.FinishRun(id, "break", "exited_geometry", 4, 72); err != nil {
		t.Fatalf("finish run: %v", err)
	}

	run, err := ndb.GetRun(id)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	steps, err := ndb.StepsForRun(id)
	if err != nil {
		t.Fatalf("load steps: %v", err)
	}
	return run, steps
}

func TestSavePNG(t *testing.T) {
	run, steps := testRun(t)

	out := filepath.Join(t.TempDir(), "run.png")
	if err := savePNG(run, steps, geometry.DefaultCylindricalConfig(), units.MM, out); err != nil {
		t.Fatalf("savePNG failed: %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output PNG is empty")
	}
}

func TestSaveHTML(t *testing.T) {
	run, steps := testRun(t)

	out := filepath.Join(t.TempDir(), "run.html")
	if err := saveHTML(run, steps, geometry.DefaultCylindricalConfig(), units.MM, out); err != nil {
		t.Fatalf("saveHTML failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if len(data) == 0 {
		t.Error("output HTML is empty")
	}
}

func TestSaveHTMLConvertedUnits(t *testing.T) {
	run, steps := testRun(t)

	out := filepath.Join(t.TempDir(), "run_cm.html")
	if err := saveHTML(run, steps, geometry.DefaultCylindricalConfig(), units.CM, out); err != nil {
		t.Fatalf("saveHTML failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	// Steps at x=19mm..72mm render as 1.9..7.2 cm.
	if !strings.Contains(string(data), "7.2") {
		t.Error("converted coordinates missing from rendered chart")
	}
	if !strings.Contains(string(data), "X (cm)") {
		t.Error("axis label should carry the display units")
	}
}
