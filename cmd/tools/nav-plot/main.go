package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/tracknav/internal/geometry"
	"github.com/banshee-data/tracknav/internal/navdb"
	"github.com/banshee-data/tracknav/internal/units"
)

// circlePoints samples a circle of the given radius for the x-y overlay.
func circlePoints(radius float64) plotter.XYs {
	const n = 180
	pts := make(plotter.XYs, n+1)
	for i := 0; i <= n; i++ {
		phi := 2 * math.Pi * float64(i) / n
		pts[i].X = radius * math.Cos(phi)
		pts[i].Y = radius * math.Sin(phi)
	}
	return pts
}

// savePNG renders the run's x-y trajectory over the detector layer radii.
// Stored coordinates are millimetres; unit selects the display units.
func savePNG(run *navdb.RunSummary, steps []navdb.StepRecord, cfg geometry.CylindricalConfig, unit, outPath string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Run %s (%s, %s)", run.ID, run.Direction, run.Status)
	p.X.Label.Text = fmt.Sprintf("X (%s)", unit)
	p.Y.Label.Text = fmt.Sprintf("Y (%s)", unit)

	// Detector outline: beam pipe, volume boundaries, and layer radii.
	outline := []float64{cfg.BeamPipeRadius, cfg.BeamPipeRMax, cfg.BarrelRMax}
	outline = append(outline, cfg.LayerRadii...)
	for _, r := range outline {
		line, err := plotter.NewLine(circlePoints(units.ConvertLength(r, unit)))
		if err != nil {
			return err
		}
		line.Color = color.Gray{Y: 180}
		line.Width = vg.Points(0.5)
		p.Add(line)
	}

	traj := make(plotter.XYs, 0, len(steps)+1)
	traj = append(traj, plotter.XY{
		X: units.ConvertLength(run.Start.X, unit),
		Y: units.ConvertLength(run.Start.Y, unit),
	})
	for _, s := range steps {
		traj = append(traj, plotter.XY{
			X: units.ConvertLength(s.Position.X, unit),
			Y: units.ConvertLength(s.Position.Y, unit),
		})
	}

	trajLine, err := plotter.NewLine(traj)
	if err != nil {
		return err
	}
	trajLine.Color = color.RGBA{R: 200, A: 255}
	trajLine.Width = vg.Points(1.5)
	p.Add(trajLine)
	p.Legend.Add("trajectory", trajLine)
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 8*vg.Inch, outPath); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// saveHTML renders the run's steps as an interactive scatter colored by
// step index.
func saveHTML(run *navdb.RunSummary, steps []navdb.StepRecord, cfg geometry.CylindricalConfig, unit, outPath string) error {
	data := make([]opts.ScatterData, 0, len(steps))
	for _, s := range steps {
		data = append(data, opts.ScatterData{Value: []interface{}{
			units.ConvertLength(s.Position.X, unit),
			units.ConvertLength(s.Position.Y, unit),
			s.Index,
		}})
	}

	pad := units.ConvertLength(cfg.BarrelRMax*1.1, unit)
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Navigation Run", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Navigation Run", Subtitle: fmt.Sprintf("run=%s dir=%s steps=%d path=%.1fmm", run.ID, run.Direction, run.Steps, run.PathLength)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: fmt.Sprintf("X (%s)", unit), NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: fmt.Sprintf("Y (%s)", unit), NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(len(steps)),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("steps", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := scatter.Render(f); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func main() {
	var dbPath string
	var runID string
	var pngPath string
	var htmlPath string
	var unit string

	flag.StringVar(&dbPath, "db", "nav_runs.db", "path to sqlite run database")
	flag.StringVar(&runID, "run", "", "run id to plot (default: most recent)")
	flag.StringVar(&pngPath, "png", "", "output PNG path (empty to skip)")
	flag.StringVar(&htmlPath, "html", "", "output HTML path (empty to skip)")
	flag.StringVar(&unit, "units", units.MM, "display units for the plots")
	flag.Parse()

	if pngPath == "" && htmlPath == "" {
		log.Fatal("nothing to do: set -png and/or -html")
	}
	if !units.IsValid(unit) {
		log.Fatalf("invalid units %q (valid: %s)", unit, units.GetValidUnitsString())
	}

	ndb, err := navdb.NewNavDB(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer ndb.Close()

	if runID == "" {
		runs, err := ndb.ListRuns(1)
		if err != nil {
			log.Fatalf("list runs: %v", err)
		}
		if len(runs) == 0 {
			log.Fatal("no runs recorded")
		}
		runID = runs[0].ID
	}

	run, err := ndb.GetRun(runID)
	if err != nil {
		log.Fatalf("load run: %v", err)
	}
	steps, err := ndb.StepsForRun(runID)
	if err != nil {
		log.Fatalf("load steps: %v", err)
	}
	if len(steps) == 0 {
		log.Fatalf("run %s has no recorded steps", runID)
	}

	cfg := geometry.DefaultCylindricalConfig()

	if pngPath != "" {
		if err := savePNG(run, steps, cfg, unit, pngPath); err != nil {
			log.Fatalf("write png: %v", err)
		}
		log.Printf("wrote %s", pngPath)
	}
	if htmlPath != "" {
		if err := saveHTML(run, steps, cfg, unit, htmlPath); err != nil {
			log.Fatalf("write html: %v", err)
		}
		log.Printf("wrote %s", htmlPath)
	}
}
