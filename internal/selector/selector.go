package selector

import (
	"fmt"
	"math"
	"math/big"

	"statcalc/domain/core"
	"statcalc/domain/formula"
)

// rule maps a predicate over the supplied inputs to a family.
type rule struct {
	name   string
	when   func(formula.Request) bool
	family formula.Family
}

func known(syms ...core.Symbol) func(formula.Request) bool {
	return func(r formula.Request) bool {
		for _, s := range syms {
			if !r.Vars.IsKnown(s) {
				return false
			}
		}
		return true
	}
}

func requested(sym core.Symbol) func(formula.Request) bool {
	return func(r formula.Request) bool {
		return r.Vars.Has(sym) && !r.Vars.IsKnown(sym)
	}
}

func always(formula.Request) bool { return true }

// Decision tables, evaluated top to bottom; the first match wins.
// Explicit unknowns do not count as supplied, except in the trailing
// rules that pick the family whose deviation the caller asks to solve.
var (
	hypothesisRules = []rule{
		{"population deviation", known(formula.SymSigma), formula.ZTest},
		{"sample deviation", known(formula.SymS), formula.TTest},
		{"solve population deviation", requested(formula.SymSigma), formula.ZTest},
		{"solve sample deviation", requested(formula.SymS), formula.TTest},
	}

	intervalRules = []rule{
		{"variance flag", func(r formula.Request) bool { return r.ForVariance }, formula.Chi2Variance},
		{"deviation without mean", func(r formula.Request) bool {
			return !r.Vars.IsKnown(formula.SymXBar) && r.Vars.IsKnown(formula.SymS)
		}, formula.Chi2Variance},
		{"mean with population deviation", known(formula.SymXBar, formula.SymSigma), formula.ZTest},
		{"mean with sample deviation", known(formula.SymXBar, formula.SymS), formula.TTest},
	}

	powerRules = []rule{
		{"two samples", known(formula.SymN1, formula.SymN2, formula.SymS1, formula.SymS2, formula.SymMu1, formula.SymMu2), formula.PowerTwoSampleT},
		{"population deviation", known(formula.SymSigma), formula.PowerOneSampleZ},
		{"sample deviation", known(formula.SymS), formula.PowerOneSampleT},
	}

	correlationRules = []rule{
		{"contingency table", func(r formula.Request) bool { return len(r.Table) > 0 }, formula.Contingency},
		{"paired series", always, formula.Correlation},
	}
)

func fixed(f formula.Family) []rule {
	return []rule{{"fixed", always, f}}
}

func rulesFor(calc formula.Calculator) ([]rule, error) {
	switch calc {
	case formula.CalcZScore:
		return fixed(formula.ZScore), nil
	case formula.CalcHypothesis:
		return hypothesisRules, nil
	case formula.CalcInterval:
		return intervalRules, nil
	case formula.CalcPower:
		return powerRules, nil
	case formula.CalcBinomial:
		return fixed(formula.Binomial), nil
	case formula.CalcHypergeometric:
		return fixed(formula.Hypergeometric), nil
	case formula.CalcPoisson:
		return fixed(formula.Poisson), nil
	case formula.CalcCohensD:
		return fixed(formula.CohensD), nil
	case formula.CalcKSigma:
		return fixed(formula.KSigma), nil
	case formula.CalcDescriptive:
		return fixed(formula.Descriptive), nil
	case formula.CalcCorrelation:
		return correlationRules, nil
	}
	return nil, fmt.Errorf("unknown calculator: %s", calc)
}

// usesSampleDeviation reports whether the calculator distinguishes a
// population deviation from a sample deviation.
func usesSampleDeviation(calc formula.Calculator) bool {
	switch calc {
	case formula.CalcHypothesis, formula.CalcInterval, formula.CalcPower:
		return true
	}
	return false
}

// Select picks the formula family for a normalized request.
func Select(req formula.Request) (formula.Family, error) {
	rules, err := rulesFor(req.Calculator)
	if err != nil {
		return "", err
	}

	if usesSampleDeviation(req.Calculator) && req.Vars.IsKnown(formula.SymSigma) &&
		(req.Vars.IsKnown(formula.SymS) || req.Vars.IsKnown(formula.SymSSq)) {
		return "", core.NewAmbiguousInputError(
			"population deviation and sample deviation given together", string(formula.SymSigma), string(formula.SymS))
	}

	for _, r := range rules {
		if r.when(req) {
			return r.family, nil
		}
	}
	return "", core.NewAmbiguousInputError(
		fmt.Sprintf("no %s formula matches the given values", req.Calculator), deviationSymbols(req.Calculator)...)
}

func deviationSymbols(calc formula.Calculator) []string {
	switch calc {
	case formula.CalcInterval:
		return []string{string(formula.SymXBar), string(formula.SymSigma), string(formula.SymS)}
	case formula.CalcPower:
		return []string{string(formula.SymSigma), string(formula.SymS), string(formula.SymS1), string(formula.SymS2)}
	}
	return []string{string(formula.SymSigma), string(formula.SymS)}
}

// Normalize folds variance inputs into deviations: var into sigma for
// z-scores and s² into s elsewhere. The deviation wins when both are
// given; the returned warnings say so.
func Normalize(req formula.Request) (formula.Request, []string, error) {
	switch {
	case req.Calculator == formula.CalcZScore:
		return foldVariance(req, formula.SymVar, formula.SymSigma)
	case usesSampleDeviation(req.Calculator):
		return foldVariance(req, formula.SymSSq, formula.SymS)
	}
	return req, nil, nil
}

func foldVariance(req formula.Request, variance, deviation core.Symbol) (formula.Request, []string, error) {
	v, ok := req.Vars.Number(variance)
	if !ok {
		return req, nil, nil
	}
	if v.Sign() < 0 {
		return req, nil, core.NewDomainError(string(variance), "variance cannot be negative")
	}
	if req.Vars.IsKnown(deviation) {
		return req, []string{fmt.Sprintf("%s and %s both given; using %s", deviation, variance, deviation)}, nil
	}

	out := req
	out.Vars = req.Vars.With(deviation, core.Known(sqrt(v)))
	return out, nil, nil
}

// sqrt keeps perfect squares such as 9/4 exact.
func sqrt(n core.Number) core.Number {
	if r := n.Rat(); r != nil && n.IsExact() {
		num, den := r.Num(), r.Denom()
		sn, sd := new(big.Int).Sqrt(num), new(big.Int).Sqrt(den)
		if new(big.Int).Mul(sn, sn).Cmp(num) == 0 && new(big.Int).Mul(sd, sd).Cmp(den) == 0 {
			return core.NewRat(new(big.Rat).SetFrac(sn, sd))
		}
	}
	return core.NewFloat(math.Sqrt(n.Float64()))
}
