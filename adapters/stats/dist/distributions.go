package dist

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"statcalc/domain/core"
	"statcalc/ports"
)

// Provider hands out gonum-backed distributions.
type Provider struct{}

// NewProvider creates a new distribution provider
func NewProvider() *Provider {
	return &Provider{}
}

var _ ports.DistributionProvider = (*Provider)(nil)

// Normal returns the standard normal distribution.
func (p *Provider) Normal() ports.Distribution {
	return continuous{name: "N(0,1)", d: distuv.UnitNormal}
}

// StudentT returns Student's t with df degrees of freedom.
func (p *Provider) StudentT(df float64) (ports.Distribution, error) {
	if !(df > 0) || math.IsInf(df, 0) {
		return nil, core.NewDomainError("df", fmt.Sprintf("degrees of freedom must be positive, got %g", df))
	}
	return continuous{
		name: fmt.Sprintf("t(%g)", df),
		d:    distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df},
	}, nil
}

// ChiSquare returns the chi-square distribution with df degrees of freedom.
func (p *Provider) ChiSquare(df float64) (ports.Distribution, error) {
	if !(df > 0) || math.IsInf(df, 0) {
		return nil, core.NewDomainError("df", fmt.Sprintf("degrees of freedom must be positive, got %g", df))
	}
	return continuous{
		name: fmt.Sprintf("chi2(%g)", df),
		d:    distuv.ChiSquared{K: df},
	}, nil
}

// Binomial returns B(n, p). Degenerate p of 0 or 1 is a point mass.
func (p *Provider) Binomial(n int64, prob float64) (ports.Distribution, error) {
	if n < 0 {
		return nil, core.NewDomainError("n", fmt.Sprintf("must be non-negative, got %d", n))
	}
	if !(prob >= 0 && prob <= 1) {
		return nil, core.NewDomainError("p", fmt.Sprintf("must lie in [0,1], got %g", prob))
	}
	name := fmt.Sprintf("B(%d,%g)", n, prob)
	switch prob {
	case 0:
		return pointMass{name: name, at: 0}, nil
	case 1:
		return pointMass{name: name, at: float64(n)}, nil
	}
	return discrete{name: name, d: distuv.Binomial{N: float64(n), P: prob}, upper: float64(n)}, nil
}

// Poisson returns Po(lambda). A rate of zero is a point mass at 0.
func (p *Provider) Poisson(lambda float64) (ports.Distribution, error) {
	if !(lambda >= 0) || math.IsInf(lambda, 0) {
		return nil, core.NewDomainError("lambda", fmt.Sprintf("must be non-negative, got %g", lambda))
	}
	name := fmt.Sprintf("Po(%g)", lambda)
	if lambda == 0 {
		return pointMass{name: name, at: 0}, nil
	}
	return discrete{name: name, d: distuv.Poisson{Lambda: lambda}, upper: math.Inf(1)}, nil
}

func checkProbability(p float64) error {
	if !(p >= 0 && p <= 1) {
		return core.NewDomainError("p", fmt.Sprintf("quantile needs a probability in [0,1], got %g", p))
	}
	return nil
}

type quantiler interface {
	CDF(x float64) float64
	Prob(x float64) float64
	Quantile(p float64) float64
}

type continuous struct {
	name string
	d    quantiler
}

func (c continuous) Name() string           { return c.name }
func (c continuous) CDF(x float64) float64  { return c.d.CDF(x) }
func (c continuous) Prob(x float64) float64 { return c.d.Prob(x) }

func (c continuous) Quantile(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	return c.d.Quantile(p), nil
}

type massFunction interface {
	CDF(x float64) float64
	Prob(x float64) float64
}

type discrete struct {
	name  string
	d     massFunction
	upper float64
}

func (d discrete) Name() string           { return d.name }
func (d discrete) CDF(x float64) float64  { return d.d.CDF(x) }
func (d discrete) Prob(x float64) float64 { return d.d.Prob(x) }

// Quantile brackets the answer by doubling and then bisects the integer
// support; gonum has no closed form for discrete laws.
func (d discrete) Quantile(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	if p == 1 {
		return d.upper, nil
	}
	if d.d.CDF(0) >= p {
		return 0, nil
	}

	// Invariant: CDF(lo) < p <= CDF(hi).
	lo, hi := 0.0, 1.0
	for d.d.CDF(hi) < p {
		if hi >= d.upper || math.IsInf(hi, 1) {
			return d.upper, nil
		}
		lo, hi = hi, math.Min(2*hi, d.upper)
	}
	for hi-lo > 1 {
		mid := math.Floor(lo + (hi-lo)/2)
		if mid <= lo || mid >= hi {
			break
		}
		if d.d.CDF(mid) >= p {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}

type pointMass struct {
	name string
	at   float64
}

func (m pointMass) Name() string { return m.name }

func (m pointMass) CDF(x float64) float64 {
	if x < m.at {
		return 0
	}
	return 1
}

func (m pointMass) Prob(x float64) float64 {
	if x == m.at {
		return 1
	}
	return 0
}

func (m pointMass) Quantile(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	return m.at, nil
}
