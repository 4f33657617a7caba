package viz

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/baldhumanity/ffneat/neat"
	"github.com/baldhumanity/ffneat/neat/evolution"
)

// PlotFitness draws the champion, generation best and mean fitness of every
// recorded generation and saves the plot to outPath. The image format
// follows the file extension (png, svg, pdf, ...).
func PlotFitness(history []evolution.GenerationRecord, title, outPath string) error {
	if len(history) == 0 {
		return fmt.Errorf("no generations to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Generation"
	p.Y.Label.Text = "Fitness"

	championPts := make(plotter.XYs, len(history))
	bestPts := make(plotter.XYs, len(history))
	meanPts := make(plotter.XYs, len(history))
	for i, r := range history {
		x := float64(r.Generation)
		championPts[i].X, championPts[i].Y = x, r.ChampionFitness
		bestPts[i].X, bestPts[i].Y = x, r.GenerationChampionFitness
		meanPts[i].X, meanPts[i].Y = x, neat.Mean(r.Fitnesses)
	}

	championLine, err := plotter.NewLine(championPts)
	if err != nil {
		return err
	}
	bestLine, err := plotter.NewLine(bestPts)
	if err != nil {
		return err
	}
	meanLine, err := plotter.NewLine(meanPts)
	if err != nil {
		return err
	}
	bestLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	meanLine.Dashes = []vg.Length{vg.Points(1), vg.Points(2)}

	p.Add(championLine, bestLine, meanLine)
	p.Legend.Add("champion", championLine)
	p.Legend.Add("best", bestLine)
	p.Legend.Add("mean", meanLine)
	p.Legend.Top = true
	p.Legend.Left = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, outPath); err != nil {
		return fmt.Errorf("failed to save fitness plot '%s': %w", outPath, err)
	}
	return nil
}
