package solver

import (
	"fmt"
	"math"

	"statcalc/domain/core"
	"statcalc/domain/formula"
)

// cohensD solves d = (x̄ - μ0) / σ for its one missing variable.
func (s *Solver) cohensD(res *formula.Result) error {
	vars := res.Vars
	if err := checkPositive(vars, formula.SymSigma); err != nil {
		return err
	}

	d, _ := vars.Number(formula.SymD)
	xbar, _ := vars.Number(formula.SymXBar)
	mu0, _ := vars.Number(formula.SymMu0)
	sigma, _ := vars.Number(formula.SymSigma)

	missing := vars.Missing(formula.SymD, formula.SymXBar, formula.SymMu0, formula.SymSigma)
	switch len(missing) {
	case 0:
		verify(res, formula.SymD, d.Float64(), xbar.Sub(mu0).Float64()/sigma.Float64(), 1e-9)
	case 1:
		switch missing[0] {
		case formula.SymD:
			d = xbar.Sub(mu0).Quo(sigma)
		case formula.SymXBar:
			xbar = mu0.Add(d.Mul(sigma))
		case formula.SymMu0:
			mu0 = xbar.Sub(d.Mul(sigma))
		case formula.SymSigma:
			if d.Sign() == 0 {
				return core.NewDomainError(string(formula.SymD), "sigma is undetermined for d = 0")
			}
			sigma = xbar.Sub(mu0).Quo(d)
			if sigma.Sign() <= 0 {
				return core.NewDomainError(string(formula.SymSigma),
					fmt.Sprintf("x_bar - mu0 and d have opposite signs; sigma would be %s", sigma))
			}
		}
		derived := map[core.Symbol]core.Number{
			formula.SymD: d, formula.SymXBar: xbar, formula.SymMu0: mu0, formula.SymSigma: sigma,
		}
		vars = vars.WithDerived(missing[0], derived[missing[0]])
	default:
		return core.NewInsufficientParametersError("cohen's d needs three of d, x_bar, mu0, sigma", symbolNames(missing)...)
	}

	res.Vars = vars
	res.Labels = append(res.Labels, formula.Label{Of: formula.SymD, Text: effectSizeLabel(d.Float64())})
	return nil
}

// effectSizeLabel follows Cohen's conventions for |d|.
func effectSizeLabel(d float64) string {
	switch a := math.Abs(d); {
	case a < 0.2:
		return "sehr klein (vernachlässigbar)"
	case a < 0.5:
		return "klein"
	case a < 0.8:
		return "mittel"
	}
	return "groß"
}

// kSigma computes the k-sigma prediction interval μ ± kσ.
func (s *Solver) kSigma(res *formula.Result) error {
	vars := res.Vars
	if err := requireKnown(vars, formula.SymMu, formula.SymSigma); err != nil {
		return err
	}
	if err := checkPositive(vars, formula.SymSigma, formula.SymZ); err != nil {
		return err
	}
	normal := s.dists.Normal()

	var z float64
	switch {
	case vars.IsKnown(formula.SymZ):
		z = vars.MustFloat(formula.SymZ)
		if vars.IsKnown(formula.SymConf) {
			res.Warn("z and conf both given; using z")
			vars = vars.Without(formula.SymConf)
		}
		vars = vars.WithDerived(formula.SymConf, num(normal.CDF(z)-normal.CDF(-z)))
	case vars.IsKnown(formula.SymConf):
		conf, _ := vars.Number(formula.SymConf)
		if !conf.IsOpenProbability() {
			return core.NewDomainError(string(formula.SymConf), fmt.Sprintf("must lie in (0,1), got %s", conf))
		}
		q, err := normal.Quantile(1 - (1-conf.Float64())/2)
		if err != nil {
			return err
		}
		z = q
		vars = vars.WithDerived(formula.SymZ, num(z))
	default:
		return core.NewInsufficientParametersError("k-sigma needs z or conf", string(formula.SymZ), string(formula.SymConf))
	}

	mu := vars.MustFloat(formula.SymMu)
	sigma := vars.MustFloat(formula.SymSigma)
	lower, upper := mu-z*sigma, mu+z*sigma
	res.Vars = vars.WithDerived(formula.SymLower, num(lower)).
		WithDerived(formula.SymUpper, num(upper)).
		WithDerived(formula.SymProb, num(normal.CDF(z)-normal.CDF(-z)))
	res.Intervals = append(res.Intervals, formula.Interval{Name: "X", Lower: lower, Upper: upper})
	return nil
}
