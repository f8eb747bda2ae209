package solver

import (
	"fmt"
	"math"

	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/internal/discrete"
	"statcalc/ports"
)

// Options bounds the numeric searches.
type Options struct {
	// Tolerance is the accepted distance between achieved and target power.
	Tolerance float64
	// MaxIterations caps every bracketing and bisection loop.
	MaxIterations int
	// MaxSampleSize is the largest n a sample size search may return.
	MaxSampleSize int64
	// ExactLimit is the largest binomial n summed in rational arithmetic.
	ExactLimit int64
}

// DefaultOptions returns the stock numeric settings.
func DefaultOptions() Options {
	return Options{
		Tolerance:     1e-6,
		MaxIterations: 200,
		MaxSampleSize: 10_000_000,
		ExactLimit:    2000,
	}
}

// Solver resolves the missing variable of a request within its family.
type Solver struct {
	dists    ports.DistributionProvider
	discrete *discrete.Engine
	opts     Options
}

// New creates a solver backed by the given distributions.
func New(dists ports.DistributionProvider, opts Options) *Solver {
	return &Solver{
		dists:    dists,
		discrete: discrete.NewEngine(dists, opts.ExactLimit),
		opts:     opts,
	}
}

// Solve computes every derivable value of req under family.
func (s *Solver) Solve(family formula.Family, req formula.Request) (formula.Result, error) {
	res := formula.Result{
		Calculator: req.Calculator,
		Family:     family,
		Vars:       req.Vars,
		Side:       req.Side.OrDefault(),
		Kind:       req.Kind.OrDefault(),
	}

	var err error
	switch family {
	case formula.ZScore:
		err = s.zScore(&res)
	case formula.ZTest, formula.TTest:
		if req.Calculator == formula.CalcInterval {
			err = s.meanInterval(&res)
		} else {
			err = s.hypothesisTest(&res)
		}
	case formula.Chi2Variance:
		err = s.varianceInterval(&res)
	case formula.PowerOneSampleZ, formula.PowerOneSampleT, formula.PowerTwoSampleT:
		err = s.power(&res)
	case formula.CohensD:
		err = s.cohensD(&res)
	case formula.KSigma:
		err = s.kSigma(&res)
	case formula.Binomial:
		err = s.discrete.Binomial(&res)
	case formula.Hypergeometric:
		err = s.discrete.Hypergeometric(&res)
	case formula.Poisson:
		err = s.discrete.Poisson(&res)
	case formula.Descriptive:
		err = describe(&res, req)
	case formula.Correlation:
		err = correlate(&res, req, s.dists)
	case formula.Contingency:
		err = contingency(&res, req, s.dists)
	default:
		err = fmt.Errorf("no solver for family %s", family)
	}
	if err != nil {
		return formula.Result{}, err
	}
	if left := res.Vars.Unknowns(); len(left) > 0 {
		return formula.Result{}, core.NewInsufficientParametersError(
			"more than one unknown; cannot solve", symbolNames(left)...)
	}
	return res, nil
}

// requireKnown fails with InsufficientParametersError naming every
// missing symbol.
func requireKnown(vars core.VariableSet, syms ...core.Symbol) error {
	missing := vars.Missing(syms...)
	if len(missing) == 0 {
		return nil
	}
	return core.NewInsufficientParametersError("required values missing", symbolNames(missing)...)
}

func symbolNames(syms []core.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = string(s)
	}
	return out
}

// checkPositive fails when a known sym is not strictly positive.
func checkPositive(vars core.VariableSet, syms ...core.Symbol) error {
	for _, sym := range syms {
		if n, ok := vars.Number(sym); ok && n.Sign() <= 0 {
			return core.NewDomainError(string(sym), fmt.Sprintf("must be positive, got %s", n))
		}
	}
	return nil
}

// checkAlpha requires a known alpha in (0,1).
func checkAlpha(vars core.VariableSet) error {
	if a, ok := vars.Number(formula.SymAlpha); ok && !a.IsOpenProbability() {
		return core.NewDomainError(string(formula.SymAlpha), fmt.Sprintf("must lie in (0,1), got %s", a))
	}
	return nil
}

// checkProbability requires a known sym in [0,1].
func checkProbability(vars core.VariableSet, sym core.Symbol) error {
	if p, ok := vars.Number(sym); ok && !p.IsProbability() {
		return core.NewDomainError(string(sym), fmt.Sprintf("must lie in [0,1], got %s", p))
	}
	return nil
}

// checkSampleSize requires a known whole n of at least min.
func checkSampleSize(vars core.VariableSet, sym core.Symbol, min int64) error {
	n, ok := vars.Number(sym)
	if !ok {
		return nil
	}
	if !n.IsInteger() {
		return core.NewDomainError(string(sym), fmt.Sprintf("must be a whole number, got %s", n))
	}
	if n.CmpInt(min) < 0 {
		return core.NewDomainError(string(sym), fmt.Sprintf("must be at least %d, got %s", min, n))
	}
	return nil
}

// critical returns the rejection boundary of the side at level alpha.
// For two-sided tests it is the upper boundary.
func critical(d ports.Distribution, side formula.TestSide, alpha float64) (float64, error) {
	switch side {
	case formula.Left:
		return d.Quantile(alpha)
	case formula.Right:
		return d.Quantile(1 - alpha)
	}
	return d.Quantile(1 - alpha/2)
}

// pValue returns the probability of a statistic at least as extreme.
func pValue(d ports.Distribution, side formula.TestSide, stat float64) float64 {
	switch side {
	case formula.Left:
		return d.CDF(stat)
	case formula.Right:
		return 1 - d.CDF(stat)
	}
	return 2 * (1 - d.CDF(math.Abs(stat)))
}

// statisticFromP inverts pValue. Two-sided tests yield the magnitude.
func statisticFromP(d ports.Distribution, side formula.TestSide, p float64) (float64, error) {
	var (
		stat float64
		err  error
	)
	switch side {
	case formula.Left:
		stat, err = d.Quantile(p)
	case formula.Right:
		stat, err = d.Quantile(1 - p)
	default:
		stat, err = d.Quantile(1 - p/2)
	}
	if err != nil {
		return 0, err
	}
	if math.IsInf(stat, 0) || math.IsNaN(stat) {
		return 0, core.NewDomainError(string(formula.SymP), fmt.Sprintf("p = %g gives an infinite statistic", p))
	}
	return stat, nil
}

// rejects reports whether stat lies in the critical region.
func rejects(side formula.TestSide, stat, crit float64) bool {
	switch side {
	case formula.Left:
		return stat < crit
	case formula.Right:
		return stat > crit
	}
	return math.Abs(stat) > math.Abs(crit)
}

func num(f float64) core.Number { return core.NewFloat(f) }

// verify warns when a given value disagrees with the one computed.
func verify(res *formula.Result, sym core.Symbol, given, computed, tol float64) {
	if math.Abs(given-computed) > tol {
		res.Warn(fmt.Sprintf("given %s = %.6g differs from computed %.6g", sym, given, computed))
	}
}
