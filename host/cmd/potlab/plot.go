package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"goquarium/host/datalog"
)

// runPlot renders one session's pot trace, with the raw servo command
// overlaid so drive changes line up with the speed changes they cause.
func runPlot() error {
	db, err := datalog.NewDB(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	id, samples, err := loadSession(db)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("session %d has no samples", id)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Session %d pot trace", id)
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Counts"

	potPts := make(plotter.XYs, 0, len(samples))
	cmdPts := make(plotter.XYs, 0, len(samples))
	t0 := samples[0].TimeMS
	for _, s := range samples {
		x := float64(s.TimeMS-t0) / 1000.0
		potPts = append(potPts, plotter.XY{X: x, Y: float64(s.Pot)})
		cmdPts = append(cmdPts, plotter.XY{X: x, Y: float64(s.Cmd)})
	}

	potLine, err := plotter.NewLine(potPts)
	if err != nil {
		return err
	}
	potLine.Color = color.RGBA{B: 255, A: 255}
	potLine.Width = vg.Points(1)
	p.Add(potLine)
	p.Legend.Add("pot", potLine)

	cmdLine, err := plotter.NewLine(cmdPts)
	if err != nil {
		return err
	}
	cmdLine.Color = color.RGBA{R: 255, A: 255}
	cmdLine.Width = vg.Points(1)
	p.Add(cmdLine)
	p.Legend.Add("cmd (raw)", cmdLine)

	if err := p.Save(14*vg.Inch, 6*vg.Inch, *out); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}

	fmt.Printf("Wrote %s\n", *out)
	return nil
}
