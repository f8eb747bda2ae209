// Package discrete computes point and cumulative probabilities of the
// binomial, hypergeometric and Poisson distributions.
package discrete

import (
	"fmt"
	"iter"
	"math"
	"math/big"

	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/ports"
)

// Engine evaluates discrete probabilities.
type Engine struct {
	dists      ports.DistributionProvider
	exactLimit int64
}

// NewEngine creates an engine. Binomial problems with n up to exactLimit
// are summed in exact rational arithmetic.
func NewEngine(dists ports.DistributionProvider, exactLimit int64) *Engine {
	return &Engine{dists: dists, exactLimit: exactLimit}
}

// eventRange returns the inclusive range of outcomes counted by kind,
// clipped to [lo, hi]. An empty range has from > to.
func eventRange(kind formula.CountKind, k, lo, hi int64) (from, to int64) {
	switch kind.OrDefault() {
	case formula.AtMost:
		from, to = lo, k
	case formula.LessThan:
		from, to = lo, k-1
	case formula.AtLeast:
		from, to = k, hi
	case formula.MoreThan:
		from, to = k+1, hi
	default:
		from, to = k, k
	}
	return max(from, lo), min(to, hi)
}

// wholeNumber reads a known, non-negative integer variable.
func wholeNumber(vars core.VariableSet, sym core.Symbol) (int64, error) {
	n, ok := vars.Number(sym)
	if !ok {
		return 0, core.NewInsufficientParametersError("required value missing", string(sym))
	}
	v, isInt := n.Int64()
	if !isInt {
		return 0, core.NewDomainError(string(sym), fmt.Sprintf("must be a whole number, got %s", n))
	}
	if v < 0 {
		return 0, core.NewDomainError(string(sym), fmt.Sprintf("must not be negative, got %d", v))
	}
	return v, nil
}

func requireAll(vars core.VariableSet, syms ...core.Symbol) error {
	missing := vars.Missing(syms...)
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, len(missing))
	for i, s := range missing {
		names[i] = string(s)
	}
	return core.NewInsufficientParametersError("required values missing", names...)
}

// quoFloat returns num/denom rounded to float64 without reducing the fraction.
func quoFloat(num, denom *big.Int) float64 {
	f := new(big.Float).SetPrec(64).SetInt(num)
	f.Quo(f, new(big.Float).SetPrec(64).SetInt(denom))
	v, _ := f.Float64()
	return v
}

// tally sums scaled masses in one pass: the event range [from, to], the
// point k and the lower tail up to k.
func tally(terms iter.Seq2[int64, *big.Int], from, to, k int64) (event, point, lower *big.Int) {
	event, point, lower = new(big.Int), new(big.Int), new(big.Int)
	last := max(to, k)
	for i, t := range terms {
		if i > last {
			break
		}
		if i >= from && i <= to {
			event.Add(event, t)
		}
		if i == k {
			point.Set(t)
		}
		if i <= k {
			lower.Add(lower, t)
		}
	}
	return event, point, lower
}

// scaledPoints lazily yields (i, term/denom).
func scaledPoints(terms iter.Seq2[int64, *big.Int], denom *big.Int) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for i, t := range terms {
			if !yield(int(i), quoFloat(t, denom)) {
				return
			}
		}
	}
}

// Binomial computes P(X ~ k) for X ~ B(n, p).
func (e *Engine) Binomial(res *formula.Result) error {
	vars := res.Vars
	if err := requireAll(vars, formula.SymK, formula.SymN, formula.SymP); err != nil {
		return err
	}
	n, err := wholeNumber(vars, formula.SymN)
	if err != nil {
		return err
	}
	k, err := wholeNumber(vars, formula.SymK)
	if err != nil {
		return err
	}
	p, _ := vars.Number(formula.SymP)
	if !p.IsProbability() {
		return core.NewDomainError(string(formula.SymP), fmt.Sprintf("must lie in [0,1], got %s", p))
	}
	if k > n {
		return core.NewDomainError(string(formula.SymK), fmt.Sprintf("k = %d exceeds n = %d", k, n))
	}

	from, to := eventRange(res.Kind, k, 0, n)
	var (
		prob, point, cumulative float64
		points                  iter.Seq2[int, float64]
	)
	if n <= e.exactLimit {
		mass := newBinomialMass(n, p.Rat())
		event, at, lower := tally(mass.terms(), from, to, k)
		prob = quoFloat(event, mass.denom)
		point = quoFloat(at, mass.denom)
		cumulative = quoFloat(lower, mass.denom)
		points = scaledPoints(mass.terms(), mass.denom)
	} else {
		d, err := e.dists.Binomial(n, p.Float64())
		if err != nil {
			return err
		}
		prob = rangeFromCDF(d, from, to, 0, n)
		point = d.Prob(float64(k))
		cumulative = d.CDF(float64(k))
		points = massPoints(d, 0, n)
	}

	q := core.NewInt(1).Sub(p)
	nn := core.NewInt(n)
	mean := nn.Mul(p)
	variance := mean.Mul(q)
	res.Vars = vars.WithDerived(formula.SymProb, core.NewFloat(prob)).
		WithDerived(formula.SymExpected, mean).
		WithDerived(formula.SymVariance, variance).
		WithDerived(formula.SymStdDev, core.NewFloat(math.Sqrt(variance.Float64())))
	res.Labels = append(res.Labels,
		formula.Label{Of: "P(X=k)", Text: fmt.Sprintf("%.6f", point)},
		formula.Label{Of: "P(X<=k)", Text: fmt.Sprintf("%.6f", cumulative)},
	)
	res.Points = points
	return nil
}

// rangeFromCDF sums P(from <= X <= to) through the distribution's CDF.
func rangeFromCDF(d ports.Distribution, from, to, lo, hi int64) float64 {
	if from > to {
		return 0
	}
	if from == to {
		return d.Prob(float64(from))
	}
	upper := 1.0
	if to < hi {
		upper = d.CDF(float64(to))
	}
	lower := 0.0
	if from > lo {
		lower = d.CDF(float64(from - 1))
	}
	return upper - lower
}

// massPoints lazily yields (x, P(X=x)) over [lo, hi].
func massPoints(d ports.Distribution, lo, hi int64) iter.Seq2[int, float64] {
	return func(yield func(int, float64) bool) {
		for x := lo; x <= hi; x++ {
			if !yield(int(x), d.Prob(float64(x))) {
				return
			}
		}
	}
}

// binomialMass holds B(n, a/b) with every mass scaled by b^n, so that
// P(X=i) = C(n,i) a^i (b-a)^(n-i) / b^n stays in integer arithmetic.
type binomialMass struct {
	n     int64
	a, c  *big.Int // success and failure numerators
	denom *big.Int // b^n
}

func newBinomialMass(n int64, p *big.Rat) binomialMass {
	a := new(big.Int).Set(p.Num())
	b := p.Denom()
	return binomialMass{
		n:     n,
		a:     a,
		c:     new(big.Int).Sub(b, a),
		denom: new(big.Int).Exp(b, big.NewInt(n), nil),
	}
}

// terms yields the scaled masses C(n,i) a^i c^(n-i) for i = 0..n, each
// derived from its predecessor by the ratio (n-i)/(i+1) * a/c.
func (m binomialMass) terms() iter.Seq2[int64, *big.Int] {
	return func(yield func(int64, *big.Int) bool) {
		if m.c.Sign() == 0 {
			for i := int64(0); i < m.n; i++ {
				if !yield(i, new(big.Int)) {
					return
				}
			}
			yield(m.n, new(big.Int).Set(m.denom))
			return
		}

		t := new(big.Int).Exp(m.c, big.NewInt(m.n), nil)
		div := new(big.Int)
		for i := int64(0); i <= m.n; i++ {
			if !yield(i, t) {
				return
			}
			next := new(big.Int).Mul(t, big.NewInt(m.n-i))
			next.Mul(next, m.a)
			t = next.Quo(next, div.Mul(big.NewInt(i+1), m.c))
		}
	}
}
