package solver

import (
	"math"

	"statcalc/domain/formula"
)

// meanInterval computes the confidence interval for a mean with known
// (z) or estimated (t) deviation.
func (s *Solver) meanInterval(res *formula.Result) error {
	vars := res.Vars
	dev, _ := testSymbols(res.Family)
	minN := int64(1)
	if res.Family == formula.TTest {
		minN = 2
	}

	if err := requireKnown(vars, formula.SymXBar, dev, formula.SymN, formula.SymAlpha); err != nil {
		return err
	}
	if err := checkPositive(vars, dev); err != nil {
		return err
	}
	if err := checkSampleSize(vars, formula.SymN, minN); err != nil {
		return err
	}
	if err := checkAlpha(vars); err != nil {
		return err
	}

	d, _, err := s.testDistribution(res.Family, vars)
	if err != nil {
		return err
	}
	xbar := vars.MustFloat(formula.SymXBar)
	n := vars.MustFloat(formula.SymN)
	alpha := vars.MustFloat(formula.SymAlpha)
	se := vars.MustFloat(dev) / math.Sqrt(n)

	// One-sided intervals use the full alpha in a single tail.
	level := 1 - alpha/2
	if res.Side != formula.TwoSided {
		level = 1 - alpha
	}
	q, err := d.Quantile(level)
	if err != nil {
		return err
	}

	lower, upper := xbar-q*se, xbar+q*se
	switch res.Side {
	case formula.Left:
		upper = math.Inf(1)
	case formula.Right:
		lower = math.Inf(-1)
	}

	vars = vars.WithDerived(formula.SymSE, num(se)).
		WithDerived(formula.SymCrit, num(q)).
		WithDerived(formula.SymLower, num(lower)).
		WithDerived(formula.SymUpper, num(upper))
	if res.Family == formula.TTest {
		vars = vars.WithDerived(formula.SymDF, num(n-1))
	}
	res.Vars = vars
	res.Intervals = append(res.Intervals, formula.Interval{Name: "μ", Lower: lower, Upper: upper})
	return nil
}

// varianceInterval computes the chi-square interval for σ² and σ.
func (s *Solver) varianceInterval(res *formula.Result) error {
	vars := res.Vars
	if err := requireKnown(vars, formula.SymS, formula.SymN, formula.SymAlpha); err != nil {
		return err
	}
	if err := checkPositive(vars, formula.SymS); err != nil {
		return err
	}
	if err := checkSampleSize(vars, formula.SymN, 2); err != nil {
		return err
	}
	if err := checkAlpha(vars); err != nil {
		return err
	}

	n := vars.MustFloat(formula.SymN)
	alpha := vars.MustFloat(formula.SymAlpha)
	sdNum, _ := vars.Number(formula.SymS)
	sd := sdNum.Float64()
	df := n - 1
	chi, err := s.dists.ChiSquare(df)
	if err != nil {
		return err
	}
	scaled := df * sd * sd

	quantile := func(p float64) float64 {
		q, qerr := chi.Quantile(p)
		if qerr != nil && err == nil {
			err = qerr
		}
		return q
	}

	var lower, upper float64
	switch res.Side {
	case formula.Left:
		lower, upper = scaled/quantile(1-alpha), math.Inf(1)
	case formula.Right:
		lower, upper = 0, scaled/quantile(alpha)
	default:
		lower, upper = scaled/quantile(1-alpha/2), scaled/quantile(alpha/2)
	}
	if err != nil {
		return err
	}

	vars = vars.WithDerived(formula.SymDF, num(df)).
		WithDerived(formula.SymVariance, sdNum.Mul(sdNum)).
		WithDerived(formula.SymLower, num(lower)).
		WithDerived(formula.SymUpper, num(upper)).
		WithDerived(formula.SymSDLower, num(math.Sqrt(lower))).
		WithDerived(formula.SymSDUpper, num(math.Sqrt(upper)))
	res.Vars = vars
	res.Intervals = append(res.Intervals,
		formula.Interval{Name: "σ²", Lower: lower, Upper: upper},
		formula.Interval{Name: "σ", Lower: math.Sqrt(lower), Upper: math.Sqrt(upper)},
	)
	return nil
}
