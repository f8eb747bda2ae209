package descriptive

import (
	"fmt"
	"slices"

	"github.com/montanaflynn/stats"

	"statcalc/domain/core"
)

// Summary holds the descriptive statistics of one sample.
type Summary struct {
	N          int     `json:"n"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	Variance   float64 `json:"variance"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	Range      float64 `json:"range"`
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
	SumSquares float64 `json:"sum_squares"`
	Population bool    `json:"population"`
}

// Summarize computes the summary of data. Variance and deviation use
// n-1 unless population is set.
func Summarize(data []float64, population bool) (Summary, error) {
	if len(data) < 2 {
		return Summary{}, core.NewInsufficientParametersError(
			fmt.Sprintf("need at least two values, got %d", len(data)), "daten")
	}
	s := Summary{N: len(data), Population: population}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return Summary{}, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return Summary{}, err
	}
	if population {
		s.Variance, err = stats.PopulationVariance(data)
	} else {
		s.Variance, err = stats.SampleVariance(data)
	}
	if err != nil {
		return Summary{}, err
	}
	if population {
		s.StdDev, err = stats.StandardDeviationPopulation(data)
	} else {
		s.StdDev, err = stats.StandardDeviationSample(data)
	}
	if err != nil {
		return Summary{}, err
	}
	if s.Min, err = stats.Min(data); err != nil {
		return Summary{}, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return Summary{}, err
	}

	s.Range = s.Max - s.Min
	s.Q1, s.Q3 = exclusiveQuartiles(data)
	s.IQR = s.Q3 - s.Q1
	for _, x := range data {
		s.SumSquares += (x - s.Mean) * (x - s.Mean)
	}
	return s, nil
}

// exclusiveQuartiles cuts the sorted sample at positions q(n+1), q = 1/4
// and 3/4, interpolating linearly. Positions outside the sample are
// extrapolated from the first or last pair.
func exclusiveQuartiles(data []float64) (q1, q3 float64) {
	sorted := slices.Clone(data)
	slices.Sort(sorted)
	n := len(sorted)
	m := n + 1

	cut := func(i int) float64 {
		j := min(max(i*m/4, 1), n-1)
		delta := float64(i*m - 4*j)
		return (sorted[j-1]*(4-delta) + sorted[j]*delta) / 4
	}
	return cut(1), cut(3)
}
