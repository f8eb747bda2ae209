package solver

import (
	"fmt"
	"math"

	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/ports"
)

// powerModel evaluates 1 - β for a fixed design.
type powerModel struct {
	family formula.Family
	side   formula.TestSide
	alpha  float64
	dists  ports.DistributionProvider
}

// design holds the quantities the power depends on.
type design struct {
	effect float64 // μ1 - μ0, or μ1 - μ2 for two samples
	se     float64
	df     float64 // zero for the normal family
	small  bool    // t designs below the large-sample threshold
}

// Samples at or above these sizes take the normal alternative.
const (
	largeOneSample = 30
	largeTwoSample = 60
)

func (m powerModel) distribution(df float64) (ports.Distribution, error) {
	if m.family == formula.PowerOneSampleZ {
		return m.dists.Normal(), nil
	}
	return m.dists.StudentT(df)
}

// alternative returns the distribution of the statistic when μ1 holds and
// the shift to apply to it. Small t designs use the noncentral t; everything
// else is the standard normal shifted by δ = effect/se.
func (m powerModel) alternative(d design) (ports.Distribution, float64, error) {
	delta := d.effect / d.se
	if m.family != formula.PowerOneSampleZ && d.small {
		alt, err := m.dists.NoncentralT(d.df, delta)
		return alt, 0, err
	}
	return m.dists.Normal(), delta, nil
}

// at returns the power and the critical value of the design.
func (m powerModel) at(d design) (power, crit float64, err error) {
	dist, err := m.distribution(d.df)
	if err != nil {
		return 0, 0, err
	}
	crit, err = critical(dist, m.side, m.alpha)
	if err != nil {
		return 0, 0, err
	}
	alt, shift, err := m.alternative(d)
	if err != nil {
		return 0, 0, err
	}
	return rejectionMass(alt, m.side, crit, shift), crit, nil
}

// rejectionMass is the probability alt puts on the rejection region.
func rejectionMass(alt ports.Distribution, side formula.TestSide, crit, shift float64) float64 {
	switch side {
	case formula.Left:
		return alt.CDF(crit - shift)
	case formula.Right:
		return 1 - alt.CDF(crit-shift)
	}
	return 1 - alt.CDF(crit-shift) + alt.CDF(-crit-shift)
}

// power solves the power relation for power, n or μ1.
func (s *Solver) power(res *formula.Result) error {
	vars := res.Vars
	if err := requireKnown(vars, formula.SymAlpha); err != nil {
		return err
	}
	if err := checkAlpha(vars); err != nil {
		return err
	}
	if p, ok := vars.Number(formula.SymPower); ok && !p.IsOpenProbability() {
		return core.NewDomainError(string(formula.SymPower), fmt.Sprintf("must lie in (0,1), got %s", p))
	}

	model := powerModel{
		family: res.Family,
		side:   res.Side,
		alpha:  vars.MustFloat(formula.SymAlpha),
		dists:  s.dists,
	}

	var err error
	if res.Family == formula.PowerTwoSampleT {
		vars, err = s.twoSamplePower(res, model, vars)
	} else {
		vars, err = s.oneSamplePower(res, model, vars)
	}
	if err != nil {
		return err
	}

	power := vars.MustFloat(formula.SymPower)
	vars = vars.WithDerived(formula.SymBeta, num(1-power))
	res.Vars = vars
	res.Labels = append(res.Labels, formula.Label{Of: formula.SymPower, Text: powerLabel(power)})
	if power < 0.5 {
		res.Warn("power below 0.5: the test will miss the effect more often than not")
	}
	return nil
}

func powerLabel(power float64) string {
	switch {
	case power < 0.5:
		return "niedrig"
	case power < 0.8:
		return "moderat"
	}
	return "ausreichend"
}

func (s *Solver) oneSamplePower(res *formula.Result, model powerModel, vars core.VariableSet) (core.VariableSet, error) {
	dev, _ := testSymbols(formula.ZTest)
	minN := int64(1)
	if res.Family == formula.PowerOneSampleT {
		dev, minN = formula.SymS, 2
	}
	if err := requireKnown(vars, formula.SymMu0, dev); err != nil {
		return vars, err
	}
	if err := checkPositive(vars, dev); err != nil {
		return vars, err
	}
	if err := checkSampleSize(vars, formula.SymN, minN); err != nil {
		return vars, err
	}

	mu0 := vars.MustFloat(formula.SymMu0)
	sd := vars.MustFloat(dev)
	designFor := func(n, mu1 float64) design {
		d := design{effect: mu1 - mu0, se: sd / math.Sqrt(n)}
		if res.Family == formula.PowerOneSampleT {
			d.df = n - 1
			d.small = n < largeOneSample
		}
		return d
	}

	missing := vars.Missing(formula.SymN, formula.SymMu1, formula.SymPower)
	switch {
	case len(missing) == 0 || (len(missing) == 1 && missing[0] == formula.SymPower):
	case len(missing) == 1 && missing[0] == formula.SymN:
		target := vars.MustFloat(formula.SymPower)
		mu1 := vars.MustFloat(formula.SymMu1)
		n, err := smallestInteger(string(formula.SymN), minN, s.opts.MaxSampleSize, s.opts.MaxIterations,
			func(n int64) (bool, error) {
				p, _, err := model.at(designFor(float64(n), mu1))
				return p >= target, err
			})
		if err != nil {
			return vars, err
		}
		vars = vars.WithDerived(formula.SymN, core.NewInt(n))
	case len(missing) == 1 && missing[0] == formula.SymMu1:
		target := vars.MustFloat(formula.SymPower)
		n := vars.MustFloat(formula.SymN)
		sign := 1.0
		if model.side == formula.Left {
			sign = -1
		}
		effect, err := bisectIncreasing(string(formula.SymMu1), func(e float64) float64 {
			p, _, perr := model.at(designFor(n, mu0+sign*e))
			if perr != nil {
				return math.NaN()
			}
			return p
		}, target, sd/math.Sqrt(n), s.opts.Tolerance, s.opts.MaxIterations)
		if err != nil {
			return vars, err
		}
		vars = vars.WithDerived(formula.SymMu1, num(mu0+sign*effect))
		if model.side == formula.TwoSided {
			res.Warn("two-sided power is symmetric in μ1 - μ0; reporting μ1 above μ0")
		}
	default:
		return vars, core.NewInsufficientParametersError(
			"power needs all but one of n, mu1, power", symbolNames(missing)...)
	}

	d := designFor(vars.MustFloat(formula.SymN), vars.MustFloat(formula.SymMu1))
	power, crit, err := model.at(d)
	if err != nil {
		return vars, err
	}
	if given, ok := vars.Float(formula.SymPower); ok && !isDerived(vars, formula.SymN) && !isDerived(vars, formula.SymMu1) {
		verify(res, formula.SymPower, given, power, 1e-4)
	}
	if !vars.IsKnown(formula.SymPower) {
		vars = vars.WithDerived(formula.SymPower, num(power))
	}

	vars = vars.WithDerived(formula.SymSE, num(d.se)).
		WithDerived(formula.SymDelta, num(d.effect/d.se)).
		WithDerived(formula.SymCrit, num(crit))
	if res.Family == formula.PowerOneSampleT {
		vars = vars.WithDerived(formula.SymDF, num(d.df))
	}
	return vars, nil
}

func (s *Solver) twoSamplePower(res *formula.Result, model powerModel, vars core.VariableSet) (core.VariableSet, error) {
	if err := requireKnown(vars, formula.SymMu1, formula.SymMu2, formula.SymS1, formula.SymS2, formula.SymN1, formula.SymN2); err != nil {
		return vars, err
	}
	if err := checkPositive(vars, formula.SymS1, formula.SymS2); err != nil {
		return vars, err
	}
	for _, sym := range []core.Symbol{formula.SymN1, formula.SymN2} {
		if err := checkSampleSize(vars, sym, 2); err != nil {
			return vars, err
		}
	}

	n1, n2 := vars.MustFloat(formula.SymN1), vars.MustFloat(formula.SymN2)
	s1, s2 := vars.MustFloat(formula.SymS1), vars.MustFloat(formula.SymS2)
	df := n1 + n2 - 2
	pooled := math.Sqrt(((n1-1)*s1*s1 + (n2-1)*s2*s2) / df)
	d := design{
		effect: vars.MustFloat(formula.SymMu1) - vars.MustFloat(formula.SymMu2),
		se:     pooled * math.Sqrt(1/n1+1/n2),
		df:     df,
		small:  n1+n2 < largeTwoSample,
	}

	power, crit, err := model.at(d)
	if err != nil {
		return vars, err
	}
	if given, ok := vars.Float(formula.SymPower); ok {
		verify(res, formula.SymPower, given, power, 1e-4)
	} else {
		vars = vars.WithDerived(formula.SymPower, num(power))
	}

	return vars.WithDerived(formula.SymPooledS, num(pooled)).
		WithDerived(formula.SymSE, num(d.se)).
		WithDerived(formula.SymDelta, num(d.effect/d.se)).
		WithDerived(formula.SymCrit, num(crit)).
		WithDerived(formula.SymDF, num(df)), nil
}

func isDerived(vars core.VariableSet, sym core.Symbol) bool {
	v, ok := vars.Get(sym)
	return ok && v.Derived
}
