package solver

import (
	"fmt"

	"statcalc/domain/core"
	"statcalc/domain/formula"
)

// zScore solves z = (x - mu) / sigma together with p = Φ(z).
func (s *Solver) zScore(res *formula.Result) error {
	vars := res.Vars
	if err := checkPositive(vars, formula.SymSigma); err != nil {
		return err
	}
	if err := checkProbability(vars, formula.SymP); err != nil {
		return err
	}
	normal := s.dists.Normal()

	if !vars.IsKnown(formula.SymZ) {
		if p, ok := vars.Number(formula.SymP); ok {
			if !p.IsOpenProbability() {
				return core.NewDomainError(string(formula.SymP), fmt.Sprintf("z is infinite for p = %s", p))
			}
			z, err := normal.Quantile(p.Float64())
			if err != nil {
				return err
			}
			vars = vars.WithDerived(formula.SymZ, num(z))
		}
	}

	relation := []core.Symbol{formula.SymZ, formula.SymX, formula.SymMu, formula.SymSigma}
	missing := vars.Missing(relation...)
	switch {
	case len(missing) == 0:
		z := vars.MustFloat(formula.SymZ)
		computed := (vars.MustFloat(formula.SymX) - vars.MustFloat(formula.SymMu)) / vars.MustFloat(formula.SymSigma)
		verify(res, formula.SymZ, z, computed, 1e-9)
	case len(missing) == 1:
		var err error
		if vars, err = solveZRelation(vars, missing[0]); err != nil {
			return err
		}
	case vars.IsKnown(formula.SymZ) && len(missing) == 3 && !anySupplied(vars, missing):
		// A bare conversion between z and p.
	default:
		return core.NewInsufficientParametersError(
			"z-score needs three of z, x, mu, sigma (or z or p alone)", symbolNames(missing)...)
	}

	if z, ok := vars.Float(formula.SymZ); ok {
		phi := normal.CDF(z)
		if p, given := vars.Float(formula.SymP); given {
			if diff := p - phi; diff > 1e-4 || diff < -1e-4 {
				res.Warn(fmt.Sprintf("given p = %.6g does not match Φ(z) = %.6g", p, phi))
			}
		} else {
			vars = vars.WithDerived(formula.SymP, num(phi))
		}
	}

	res.Vars = vars
	return nil
}

// anySupplied reports whether any of syms was named by the caller.
func anySupplied(vars core.VariableSet, syms []core.Symbol) bool {
	for _, s := range syms {
		if vars.Has(s) {
			return true
		}
	}
	return false
}

func solveZRelation(vars core.VariableSet, target core.Symbol) (core.VariableSet, error) {
	z, _ := vars.Number(formula.SymZ)
	x, _ := vars.Number(formula.SymX)
	mu, _ := vars.Number(formula.SymMu)
	sigma, _ := vars.Number(formula.SymSigma)

	switch target {
	case formula.SymZ:
		return vars.WithDerived(formula.SymZ, x.Sub(mu).Quo(sigma)), nil
	case formula.SymX:
		return vars.WithDerived(formula.SymX, mu.Add(z.Mul(sigma))), nil
	case formula.SymMu:
		return vars.WithDerived(formula.SymMu, x.Sub(z.Mul(sigma))), nil
	case formula.SymSigma:
		if z.Sign() == 0 {
			return vars, core.NewDomainError(string(formula.SymZ), "sigma is undetermined for z = 0")
		}
		sd := x.Sub(mu).Quo(z)
		if sd.Sign() <= 0 {
			return vars, core.NewDomainError(string(formula.SymSigma),
				fmt.Sprintf("x - mu and z have opposite signs; sigma would be %s", sd))
		}
		return vars.WithDerived(formula.SymSigma, sd), nil
	}
	return vars, fmt.Errorf("cannot solve z-score for %s", target)
}
