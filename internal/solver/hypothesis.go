package solver

import (
	"fmt"
	"math"

	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/ports"
)

// testSymbols returns the deviation and statistic symbols of a mean test.
func testSymbols(f formula.Family) (dev, stat core.Symbol) {
	if f == formula.TTest {
		return formula.SymS, formula.SymT
	}
	return formula.SymSigma, formula.SymZ
}

// testDistribution returns N(0,1) or t(n-1). ok is false while n is unknown
// for a t test.
func (s *Solver) testDistribution(f formula.Family, vars core.VariableSet) (ports.Distribution, bool, error) {
	if f != formula.TTest {
		return s.dists.Normal(), true, nil
	}
	n, ok := vars.Float(formula.SymN)
	if !ok {
		return nil, false, nil
	}
	d, err := s.dists.StudentT(n - 1)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// hypothesisTest solves stat = (x̄ - μ0) / (dev / √n) for the one missing
// slot and evaluates the test at alpha when given.
func (s *Solver) hypothesisTest(res *formula.Result) error {
	vars := res.Vars
	side := res.Side
	dev, stat := testSymbols(res.Family)
	minN := int64(1)
	if res.Family == formula.TTest {
		minN = 2
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
	if err := checkProbability(vars, formula.SymP); err != nil {
		return err
	}

	if other := otherStatistic(stat); vars.IsKnown(other) {
		res.Warn(fmt.Sprintf("%s ignored; the %s family uses %s", other, res.Family, stat))
	}

	// The statistic slot is filled by the statistic itself or by p.
	if !vars.IsKnown(stat) && vars.IsKnown(formula.SymP) {
		d, ok, err := s.testDistribution(res.Family, vars)
		if err != nil {
			return err
		}
		if !ok {
			return core.NewInsufficientParametersError("t statistic from p needs n", string(formula.SymN))
		}
		v, err := statisticFromP(d, side, vars.MustFloat(formula.SymP))
		if err != nil {
			return err
		}
		if side == formula.TwoSided && vars.IsKnown(formula.SymXBar) && vars.IsKnown(formula.SymMu0) &&
			vars.MustFloat(formula.SymXBar) < vars.MustFloat(formula.SymMu0) {
			v = -v
		}
		vars = vars.WithDerived(stat, num(v))
	}

	slots := []core.Symbol{formula.SymXBar, formula.SymMu0, dev, formula.SymN, stat}
	missing := vars.Missing(slots...)
	switch len(missing) {
	case 0:
		computed := (vars.MustFloat(formula.SymXBar) - vars.MustFloat(formula.SymMu0)) /
			(vars.MustFloat(dev) / math.Sqrt(vars.MustFloat(formula.SymN)))
		verify(res, stat, vars.MustFloat(stat), computed, 1e-6)
	case 1:
		var err error
		if vars, err = solveTestRelation(vars, missing[0], dev, stat); err != nil {
			return err
		}
		if err := checkSampleSize(vars, formula.SymN, minN); err != nil {
			return err
		}
	default:
		return core.NewInsufficientParametersError(
			fmt.Sprintf("%s needs four of x_bar, mu0, %s, n, %s/p", res.Family, dev, stat), symbolNames(missing)...)
	}

	d, _, err := s.testDistribution(res.Family, vars)
	if err != nil {
		return err
	}
	n := vars.MustFloat(formula.SymN)
	vars = vars.WithDerived(formula.SymSE, num(vars.MustFloat(dev)/math.Sqrt(n)))
	if res.Family == formula.TTest {
		vars = vars.WithDerived(formula.SymDF, core.NewFloat(n-1))
	}

	statValue := vars.MustFloat(stat)
	p := pValue(d, side, statValue)
	if given, ok := vars.Float(formula.SymP); ok {
		verify(res, formula.SymP, given, p, 1e-4)
	} else {
		vars = vars.WithDerived(formula.SymP, num(p))
	}

	if alpha, ok := vars.Float(formula.SymAlpha); ok {
		crit, err := critical(d, side, alpha)
		if err != nil {
			return err
		}
		vars = vars.WithDerived(formula.SymCrit, num(crit))
		res.Decision = &formula.Decision{
			Statistic: stat,
			Value:     statValue,
			Critical:  crit,
			Reject:    rejects(side, statValue, crit),
		}
	}

	res.Vars = vars
	return nil
}

func otherStatistic(stat core.Symbol) core.Symbol {
	if stat == formula.SymT {
		return formula.SymZ
	}
	return formula.SymT
}

func solveTestRelation(vars core.VariableSet, target, dev, stat core.Symbol) (core.VariableSet, error) {
	xbar := vars.MustFloat(formula.SymXBar)
	mu0 := vars.MustFloat(formula.SymMu0)
	sd := vars.MustFloat(dev)
	n := vars.MustFloat(formula.SymN)
	st := vars.MustFloat(stat)

	switch target {
	case stat:
		return vars.WithDerived(stat, num((xbar-mu0)/(sd/math.Sqrt(n)))), nil
	case formula.SymXBar:
		return vars.WithDerived(formula.SymXBar, num(mu0+st*sd/math.Sqrt(n))), nil
	case formula.SymMu0:
		return vars.WithDerived(formula.SymMu0, num(xbar-st*sd/math.Sqrt(n))), nil
	case dev:
		if st == 0 {
			return vars, core.NewDomainError(string(stat), fmt.Sprintf("%s is undetermined for %s = 0", dev, stat))
		}
		v := (xbar - mu0) * math.Sqrt(n) / st
		if v <= 0 {
			return vars, core.NewDomainError(string(dev),
				fmt.Sprintf("x_bar - mu0 and %s have opposite signs; %s would be %.6g", stat, dev, v))
		}
		return vars.WithDerived(dev, num(v)), nil
	case formula.SymN:
		if xbar == mu0 {
			return vars, core.NewDomainError(string(formula.SymXBar), "n is undetermined when x_bar equals mu0")
		}
		root := st * sd / (xbar - mu0)
		return vars.WithDerived(formula.SymN, core.NewFloat(math.Max(1, math.Ceil(root*root-1e-9)))), nil
	}
	return vars, fmt.Errorf("cannot solve test relation for %s", target)
}
