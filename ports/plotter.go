package ports

import (
	"context"
	"iter"
)

// PlotRequest describes a discrete distribution to chart.
type PlotRequest struct {
	Title  string
	Name   string
	Points iter.Seq2[int, float64]
	// Highlight is the k the calculation asked about.
	Highlight int
}

// Plotter renders a distribution and returns where the output went.
type Plotter interface {
	Plot(ctx context.Context, req PlotRequest) (string, error)
}
