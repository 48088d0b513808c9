package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/tracknav/internal/config"
	"github.com/banshee-data/tracknav/internal/geometry"
	"github.com/banshee-data/tracknav/internal/monitoring"
	"github.com/banshee-data/tracknav/internal/navdb"
	"github.com/banshee-data/tracknav/internal/navigation"
	"github.com/banshee-data/tracknav/internal/version"
)

// parseVec parses a comma-separated x,y,z triple in millimeters.
func parseVec(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("expected x,y,z, got %q", s)
	}
	var out [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		out[i] = v
	}
	return r3.Vec{X: out[0], Y: out[1], Z: out[2]}, nil
}

// runResult summarizes one completed propagation.
type runResult struct {
	status string
	reason string
	steps  int
	path   float64
}

// propagate drives one trajectory to termination, recording every step.
func propagate(nav *navigation.Navigator, ndb *navdb.NavDB, runID string,
	stp *navigation.LineStepper, maxSteps int) (runResult, error) {

	state := &navigation.State{}
	nav.Status(state, stp)

	steps := 0
	for steps < maxSteps {
		if state.NavigationBreak || state.TargetReached {
			break
		}

		nav.Target(state, stp)
		if state.NavigationBreak || state.TargetReached {
			break
		}

		stp.Advance()
		steps++

		volume, surface := "", ""
		nav.Status(state, stp)
		if state.CurrentVolume != nil {
			volume = state.CurrentVolume.Name()
		}
		if state.CurrentSurface != nil {
			surface = state.CurrentSurface.Name()
		}
		if err := ndb.RecordStep(runID, steps, stp.Pos, stp.Step.Value(), volume, surface); err != nil {
			return runResult{}, err
		}
	}

	res := runResult{steps: steps, path: stp.Path}
	switch {
	case state.TargetReached:
		res.status = "reached"
	case state.NavigationBreak:
		res.status = "break"
		res.reason = string(state.Reason)
	default:
		res.status = "max_steps"
	}
	return res, nil
}

func main() {
	var geoName string
	var dbPath string
	var configPath string
	var runs int
	var parallel int
	var directionStr string
	var startStr string
	var phi0Deg float64
	var verbose bool
	var showVersion bool

	flag.StringVar(&geoName, "geometry", "cylindrical", "detector model to build")
	flag.StringVar(&dbPath, "db", "nav_runs.db", "path to sqlite run database")
	flag.StringVar(&configPath, "config", "", "navigation tuning JSON (falls back to "+config.DefaultConfigPath+" when present)")
	flag.IntVar(&runs, "runs", 1, "number of trajectories, spread evenly in azimuth")
	flag.IntVar(&parallel, "parallel", 1, "number of trajectories to propagate concurrently")
	flag.StringVar(&directionStr, "direction", "forward", "traversal sense: forward or backward")
	flag.StringVar(&startStr, "start", "0,0,0", "start position as x,y,z in mm")
	flag.Float64Var(&phi0Deg, "phi0", 12.0, "azimuth of the first trajectory in degrees")
	flag.BoolVar(&verbose, "verbose", false, "log per-call navigation diagnostics")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("navsim %s (%s) built %s\n", version.Version, version.GitSHA, version.BuildTime)
		os.Exit(0)
	}

	if geoName != "cylindrical" {
		log.Fatalf("unknown geometry %q", geoName)
	}
	navDir := navigation.Forward
	switch directionStr {
	case "forward":
	case "backward":
		navDir = navigation.Backward
	default:
		log.Fatalf("invalid direction %q", directionStr)
	}
	start, err := parseVec(startStr)
	if err != nil {
		log.Fatalf("invalid start: %v", err)
	}

	// Without an explicit -config, pick up the canonical defaults file when
	// running from the repository root.
	if configPath == "" {
		if _, statErr := os.Stat(config.DefaultConfigPath); statErr == nil {
			configPath = config.DefaultConfigPath
		}
	}
	cfg := config.EmptyNavConfig()
	if configPath != "" {
		cfg, err = config.LoadNavConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	geo, err := geometry.BuildCylindricalDetector(geometry.DefaultCylindricalConfig())
	if err != nil {
		log.Fatalf("build detector: %v", err)
	}

	nav := navigation.New(geo)
	cfg.Apply(nav)
	if verbose {
		nav.Trace = monitoring.Logf
	}

	ndb, err := navdb.NewNavDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer ndb.Close()

	phi0 := phi0Deg * math.Pi / 180
	runOne := func(i int) error {
		phi := phi0 + 2*math.Pi*float64(i)/float64(runs)
		dir := r3.Vec{X: math.Cos(phi), Y: math.Sin(phi)}

		runID, err := ndb.BeginRun(geo.Name(), navDir.String(), start, dir)
		if err != nil {
			return fmt.Errorf("begin run: %w", err)
		}

		// The navigator is stateless; each trajectory gets its own stepper.
		stp := navigation.NewLineStepper(start, dir, navDir, cfg.GetStepCap())
		res, err := propagate(nav, ndb, runID, stp, cfg.GetMaxSteps())
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}

		if err := ndb.FinishRun(runID, res.status, res.reason, res.steps, math.Abs(res.path)); err != nil {
			return fmt.Errorf("finish run %s: %w", runID, err)
		}

		monitoring.Logf("run %s: phi=%.1fdeg %s after %d steps, path %.1fmm %s",
			runID, phi*180/math.Pi, res.status, res.steps, math.Abs(res.path), res.reason)
		return nil
	}

	if parallel < 1 {
		parallel = 1
	}
	indices := make(chan int)
	errc := make(chan error, runs)
	var wg sync.WaitGroup
	for w := 0; w < parallel; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				if err := runOne(i); err != nil {
					errc <- err
				}
			}
		}()
	}
	for i := 0; i < runs; i++ {
		indices <- i
	}
	close(indices)
	wg.Wait()
	close(errc)

	if err := <-errc; err != nil {
		log.Fatalf("%v", err)
	}
}
