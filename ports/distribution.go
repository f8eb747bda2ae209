package ports

// Distribution is a univariate probability distribution.
type Distribution interface {
	// Name identifies the distribution and its parameters, e.g. "t(24)".
	Name() string
	// CDF returns P(X <= x).
	CDF(x float64) float64
	// Quantile returns the smallest x with CDF(x) >= p; p must lie in [0,1].
	Quantile(p float64) (float64, error)
	// Prob returns the density, or the mass for discrete distributions.
	Prob(x float64) float64
}

// DistributionProvider constructs the distributions used by the solvers.
type DistributionProvider interface {
	Normal() Distribution
	StudentT(df float64) (Distribution, error)
	NoncentralT(df, delta float64) (Distribution, error)
	ChiSquare(df float64) (Distribution, error)
	Binomial(n int64, p float64) (Distribution, error)
	Poisson(lambda float64) (Distribution, error)
}
