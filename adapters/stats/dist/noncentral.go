package dist

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"

	"statcalc/domain/core"
	"statcalc/ports"
)

// noncentralQuadPoints is the Gauss-Legendre order used over the chi scale.
const noncentralQuadPoints = 200

// NoncentralT returns Student's t with df degrees of freedom and
// noncentrality delta. A delta of zero is the central t.
func (p *Provider) NoncentralT(df, delta float64) (ports.Distribution, error) {
	if delta == 0 {
		return p.StudentT(df)
	}
	if !(df > 0) || math.IsInf(df, 0) {
		return nil, core.NewDomainError("df", fmt.Sprintf("degrees of freedom must be positive, got %g", df))
	}
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return nil, core.NewDomainError("delta", fmt.Sprintf("noncentrality must be finite, got %g", delta))
	}
	return noncentralT{
		name:  fmt.Sprintf("t(%g, δ=%g)", df, delta),
		nu:    df,
		delta: delta,
		chi:   distuv.Chi{K: df},
	}, nil
}

// noncentralT is (Z + δ) / (V / √ν) with Z standard normal and V ~ χ(ν).
// CDF and density are expectations over V, integrated numerically.
type noncentralT struct {
	name  string
	nu    float64
	delta float64
	chi   distuv.Chi
}

func (d noncentralT) Name() string { return d.name }

// expect integrates g against the chi density. Beyond √ν + 12 the chi
// mass is below double precision.
func (d noncentralT) expect(g func(v float64) float64) float64 {
	return quad.Fixed(func(v float64) float64 {
		return g(v) * d.chi.Prob(v)
	}, 0, math.Sqrt(d.nu)+12, noncentralQuadPoints, nil, 0)
}

func (d noncentralT) CDF(x float64) float64 {
	switch {
	case math.IsInf(x, -1):
		return 0
	case math.IsInf(x, 1):
		return 1
	}
	scale := x / math.Sqrt(d.nu)
	p := d.expect(func(v float64) float64 {
		return distuv.UnitNormal.CDF(scale*v - d.delta)
	})
	return math.Min(math.Max(p, 0), 1)
}

func (d noncentralT) Prob(x float64) float64 {
	root := math.Sqrt(d.nu)
	return d.expect(func(v float64) float64 {
		return distuv.UnitNormal.Prob(x*v/root-d.delta) * v / root
	})
}

// Quantile bisects the CDF after bracketing around δ.
func (d noncentralT) Quantile(p float64) (float64, error) {
	if err := checkProbability(p); err != nil {
		return 0, err
	}
	switch p {
	case 0:
		return math.Inf(-1), nil
	case 1:
		return math.Inf(1), nil
	}

	lo, hi := d.delta-1, d.delta+1
	for step := 1.0; d.CDF(lo) > p; step *= 2 {
		lo -= step
	}
	for step := 1.0; d.CDF(hi) < p; step *= 2 {
		hi += step
	}
	for i := 0; i < 200 && hi-lo > 1e-12*math.Max(1, math.Abs(hi)); i++ {
		mid := lo + (hi-lo)/2
		if d.CDF(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo + (hi-lo)/2, nil
}
