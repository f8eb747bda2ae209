package descriptive

import (
	"fmt"
	"math"
	"slices"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"statcalc/domain/core"
	"statcalc/ports"
)

// Correlation holds Pearson's r and Spearman's rho of a paired sample.
type Correlation struct {
	N         int     `json:"n"`
	Pearson   float64 `json:"pearson_r"`
	PearsonP  float64 `json:"pearson_p"`
	Spearman  float64 `json:"spearman_rho"`
	SpearmanP float64 `json:"spearman_p"`
	RankD2    float64 `json:"rank_d2"`
}

// Correlate computes both coefficients with two-sided p-values from a
// t distribution with n-2 degrees of freedom.
func Correlate(x, y []float64, dists ports.DistributionProvider) (Correlation, error) {
	if len(x) != len(y) {
		return Correlation{}, core.NewDomainError("y", fmt.Sprintf("x has %d values, y has %d", len(x), len(y)))
	}
	if len(x) < 3 {
		return Correlation{}, core.NewInsufficientParametersError(
			fmt.Sprintf("need at least three pairs, got %d", len(x)), "x", "y")
	}
	if constant(x) || constant(y) {
		return Correlation{}, core.NewDomainError("x", "a constant series has no correlation")
	}

	r, err := stats.Pearson(x, y)
	if err != nil {
		return Correlation{}, err
	}
	rx, ry := Ranks(x), Ranks(y)
	rho := stat.Correlation(rx, ry, nil)

	c := Correlation{N: len(x), Pearson: r, Spearman: rho}
	for i := range rx {
		d := rx[i] - ry[i]
		c.RankD2 += d * d
	}
	if c.PearsonP, err = correlationPValue(r, len(x), dists); err != nil {
		return Correlation{}, err
	}
	if c.SpearmanP, err = correlationPValue(rho, len(x), dists); err != nil {
		return Correlation{}, err
	}
	return c, nil
}

func constant(xs []float64) bool {
	return slices.Min(xs) == slices.Max(xs)
}

// correlationPValue transforms r to t = r √((n-2)/(1-r²)).
func correlationPValue(r float64, n int, dists ports.DistributionProvider) (float64, error) {
	if math.Abs(r) >= 1 {
		return 0, nil
	}
	df := float64(n - 2)
	t, err := dists.StudentT(df)
	if err != nil {
		return 0, err
	}
	tStat := r * math.Sqrt(df/(1-r*r))
	return 2 * (1 - t.CDF(math.Abs(tStat))), nil
}

// Ranks assigns 1-based ranks, averaging ties.
func Ranks(xs []float64) []float64 {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case xs[a] < xs[b]:
			return -1
		case xs[a] > xs[b]:
			return 1
		}
		return 0
	})

	ranks := make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// StrengthLabel describes |r|.
func StrengthLabel(r float64) string {
	switch a := math.Abs(r); {
	case a < 0.1:
		return "Praktisch keine Korrelation"
	case a < 0.3:
		return "Schwache Korrelation"
	case a < 0.5:
		return "Mittlere Korrelation"
	case a < 0.7:
		return "Starke Korrelation"
	}
	return "Sehr starke Korrelation"
}

// DirectionLabel describes the sign of r.
func DirectionLabel(r float64) string {
	switch {
	case r > 0:
		return "Positive Korrelation"
	case r < 0:
		return "Negative Korrelation"
	}
	return "Keine lineare Korrelation"
}
