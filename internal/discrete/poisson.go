package discrete

import (
	"fmt"
	"iter"
	"math"

	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/ports"
)

const (
	// poissonSumLimit is the largest k whose lower tail is summed term by term.
	poissonSumLimit = 1000
	// poissonMaxPoints caps the length of a plotted window.
	poissonMaxPoints = 10_000
	// poissonMaxTabulated is the largest rate whose support is tabulated.
	poissonMaxTabulated = 1e12
)

// poissonMass returns λ^k e^-λ / k!.
func poissonMass(lambda float64, k int64) float64 {
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	lg, _ := math.Lgamma(float64(k) + 1)
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lg)
}

// Poisson computes P(X ~ k) for X ~ Po(λ). Lower tails up to
// poissonSumLimit are explicit sums of the mass function, longer ones and
// upper tails come from the CDF.
func (e *Engine) Poisson(res *formula.Result) error {
	vars := res.Vars
	if err := requireAll(vars, formula.SymK, formula.SymLambda); err != nil {
		return err
	}
	k, err := wholeNumber(vars, formula.SymK)
	if err != nil {
		return err
	}
	lambdaNum, _ := vars.Number(formula.SymLambda)
	if lambdaNum.Sign() < 0 {
		return core.NewDomainError(string(formula.SymLambda), fmt.Sprintf("must not be negative, got %s", lambdaNum))
	}
	lambda := lambdaNum.Float64()
	d, err := e.dists.Poisson(lambda)
	if err != nil {
		return err
	}

	lowerTail := func(to int64) float64 {
		if to < 0 {
			return 0
		}
		if to > poissonSumLimit {
			return d.CDF(float64(to))
		}
		total := 0.0
		for i := int64(0); i <= to; i++ {
			total += poissonMass(lambda, i)
		}
		return min(total, 1)
	}

	var prob float64
	switch res.Kind.OrDefault() {
	case formula.AtMost:
		prob = lowerTail(k)
	case formula.LessThan:
		prob = lowerTail(k - 1)
	case formula.AtLeast:
		prob = 1 - d.CDF(float64(k-1))
	case formula.MoreThan:
		prob = 1 - d.CDF(float64(k))
	default:
		prob = poissonMass(lambda, k)
	}

	res.Vars = vars.WithDerived(formula.SymProb, core.NewFloat(prob)).
		WithDerived(formula.SymExpected, lambdaNum).
		WithDerived(formula.SymVariance, lambdaNum).
		WithDerived(formula.SymStdDev, core.NewFloat(math.Sqrt(lambda)))
	res.Labels = append(res.Labels,
		formula.Label{Of: "P(X=k)", Text: fmt.Sprintf("%.6f", poissonMass(lambda, k))},
		formula.Label{Of: "P(X<=k)", Text: fmt.Sprintf("%.6f", lowerTail(k))},
	)
	if lambda > poissonMaxTabulated {
		res.Warn(fmt.Sprintf("λ = %g is too large to tabulate the distribution", lambda))
	}
	res.Points = poissonPoints(d, lambda, k)
	return nil
}

// poissonPoints lazily covers the bulk of the support, from λ - 10√λ (or 0)
// until the cumulative mass reaches 0.999 plus two points. The window holds
// at least 20 points and includes k when k fits within poissonMaxPoints;
// wider spreads are cut to poissonMaxPoints centred on λ. Nothing is
// evaluated until the sequence is ranged over.
func poissonPoints(d ports.Distribution, lambda float64, k int64) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		if lambda > poissonMaxTabulated {
			return
		}
		spread := 10 * math.Sqrt(lambda)
		lo := int64(math.Max(0, math.Floor(lambda-spread)))
		hi := int64(math.Ceil(lambda+spread)) + 2
		if hi-lo >= poissonMaxPoints {
			lo = max(0, int64(lambda)-poissonMaxPoints/2)
			hi = lo + poissonMaxPoints - 1
		}
		want := lo + 19
		if k+1 < lo+poissonMaxPoints {
			want = max(want, k+1)
		}
		hi = min(max(hi, want), lo+poissonMaxPoints-1)
		minLast := min(want, hi)

		cumulative := 0.0
		if lo > 0 {
			cumulative = d.CDF(float64(lo - 1))
		}
		last, reached := hi, false
		for x := lo; x <= last; x++ {
			p := poissonMass(lambda, x)
			if !yield(int(x), p) {
				return
			}
			cumulative += p
			if !reached && cumulative >= 0.999 {
				reached = true
				last = min(hi, max(x+2, minLast))
			}
		}
	}
}
