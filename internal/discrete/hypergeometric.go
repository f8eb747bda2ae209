package discrete

import (
	"fmt"
	"iter"
	"math/big"

	"statcalc/domain/core"
	"statcalc/domain/formula"
)

// Hypergeometric computes P(X ~ k) when drawing n of N items, M of which
// are successes, without replacement.
func (e *Engine) Hypergeometric(res *formula.Result) error {
	vars := res.Vars
	if err := requireAll(vars, formula.SymK, formula.SymN, formula.SymPopulation, formula.SymSuccesses); err != nil {
		return err
	}
	var vals [4]int64
	for i, sym := range []core.Symbol{formula.SymPopulation, formula.SymSuccesses, formula.SymN, formula.SymK} {
		v, err := wholeNumber(vars, sym)
		if err != nil {
			return err
		}
		vals[i] = v
	}
	popN, succM, n, k := vals[0], vals[1], vals[2], vals[3]

	switch {
	case popN == 0:
		return core.NewDomainError(string(formula.SymPopulation), "population must not be empty")
	case succM > popN:
		return core.NewDomainError(string(formula.SymSuccesses), fmt.Sprintf("M = %d exceeds N = %d", succM, popN))
	case n > popN:
		return core.NewDomainError(string(formula.SymN), fmt.Sprintf("n = %d exceeds N = %d", n, popN))
	case k > min(n, succM):
		return core.NewDomainError(string(formula.SymK), fmt.Sprintf("k = %d exceeds min(n, M) = %d", k, min(n, succM)))
	}

	mass := hypergeometricMass{popN: popN, succM: succM, n: n}
	from, to := eventRange(res.Kind, k, 0, min(n, succM))

	nn := core.NewInt(n)
	share := core.NewRat(big.NewRat(succM, popN))
	mean := nn.Mul(share)
	variance := core.NewInt(0)
	if popN > 1 {
		variance = mean.Mul(core.NewInt(1).Sub(share)).
			Mul(core.NewRat(big.NewRat(popN-n, popN-1)))
	}

	denom := new(big.Int).Binomial(popN, n)
	event, at, lower := tally(mass.terms(), from, to, k)

	res.Vars = vars.WithDerived(formula.SymProb, core.NewRat(new(big.Rat).SetFrac(event, denom))).
		WithDerived(formula.SymExpected, mean).
		WithDerived(formula.SymVariance, variance)
	res.Labels = append(res.Labels,
		formula.Label{Of: "P(X=k)", Text: fmt.Sprintf("%.6f", quoFloat(at, denom))},
		formula.Label{Of: "P(X<=k)", Text: fmt.Sprintf("%.6f", quoFloat(lower, denom))},
	)
	res.Points = scaledPoints(mass.terms(), denom)
	return nil
}

// hypergeometricMass holds the counts of C(M,i) C(N-M,n-i) / C(N,n).
type hypergeometricMass struct {
	popN, succM, n int64
}

// terms yields C(M,i) C(N-M,n-i) for i = 0..min(n,M). Past the first
// non-zero term each one follows from its predecessor by the ratio
// (M-i)(n-i) / ((i+1)(N-M-n+i+1)).
func (m hypergeometricMass) terms() iter.Seq2[int64, *big.Int] {
	return func(yield func(int64, *big.Int) bool) {
		failures := m.popN - m.succM
		lo := max(0, m.n-failures)
		hi := min(m.n, m.succM)
		for i := int64(0); i < lo; i++ {
			if !yield(i, new(big.Int)) {
				return
			}
		}

		t := new(big.Int).Binomial(m.succM, lo)
		t.Mul(t, new(big.Int).Binomial(failures, m.n-lo))
		div := new(big.Int)
		for i := lo; i <= hi; i++ {
			if !yield(i, t) {
				return
			}
			next := new(big.Int).Mul(t, big.NewInt(m.succM-i))
			next.Mul(next, big.NewInt(m.n-i))
			div.Mul(big.NewInt(i+1), big.NewInt(failures-m.n+i+1))
			t = next.Quo(next, div)
		}
	}
}
