package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"statcalc/domain/core"
)

func TestNormalQuantileInvertsCDF(t *testing.T) {
	normal := NewProvider().Normal()
	rapid.Check(t, func(t *rapid.T) {
		p := rapid.Float64Range(1e-6, 1-1e-6).Draw(t, "p")
		x, err := normal.Quantile(p)
		if err != nil {
			t.Fatalf("quantile(%g): %v", p, err)
		}
		if got := normal.CDF(x); math.Abs(got-p) > 1e-9 {
			t.Fatalf("cdf(quantile(%g)) = %g", p, got)
		}
	})
}

func TestStudentTQuantileInvertsCDF(t *testing.T) {
	provider := NewProvider()
	rapid.Check(t, func(t *rapid.T) {
		df := float64(rapid.IntRange(1, 200).Draw(t, "df"))
		x := rapid.Float64Range(-5, 5).Draw(t, "x")
		d, err := provider.StudentT(df)
		if err != nil {
			t.Fatal(err)
		}
		back, err := d.Quantile(d.CDF(x))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(back-x) > 1e-7*math.Max(1, math.Abs(x)) {
			t.Fatalf("df=%g: quantile(cdf(%g)) = %g", df, x, back)
		}
	})
}

func TestKnownCriticalValues(t *testing.T) {
	provider := NewProvider()

	z, err := provider.Normal().Quantile(0.975)
	require.NoError(t, err)
	assert.InDelta(t, 1.959964, z, 1e-6)

	tt, err := provider.StudentT(24)
	require.NoError(t, err)
	q, err := tt.Quantile(0.975)
	require.NoError(t, err)
	assert.InDelta(t, 2.063899, q, 1e-6)

	chi, err := provider.ChiSquare(30)
	require.NoError(t, err)
	lo, err := chi.Quantile(0.025)
	require.NoError(t, err)
	hi, err := chi.Quantile(0.975)
	require.NoError(t, err)
	assert.InDelta(t, 16.790772, lo, 1e-5)
	assert.InDelta(t, 46.979242, hi, 1e-5)
}

func TestDomainErrors(t *testing.T) {
	provider := NewProvider()

	_, err := provider.StudentT(0)
	assert.True(t, core.IsDomainError(err))
	_, err = provider.ChiSquare(-3)
	assert.True(t, core.IsDomainError(err))
	_, err = provider.Normal().Quantile(1.2)
	assert.True(t, core.IsDomainError(err))
	_, err = provider.Binomial(10, 1.5)
	assert.True(t, core.IsDomainError(err))
	_, err = provider.Poisson(-1)
	assert.True(t, core.IsDomainError(err))
}

func TestDiscreteDegenerateCases(t *testing.T) {
	provider := NewProvider()

	b, err := provider.Binomial(5, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Prob(5))
	assert.Equal(t, 0.0, b.CDF(4))

	p, err := provider.Poisson(0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, p.Prob(0))
	assert.Equal(t, 1.0, p.CDF(3))

	p, err = provider.Poisson(3)
	require.NoError(t, err)
	median, err := p.Quantile(0.5)
	require.NoError(t, err)
	assert.Equal(t, 3.0, median)
}

func TestDiscreteQuantileLargeSupport(t *testing.T) {
	provider := NewProvider()

	p, err := provider.Poisson(1e9)
	require.NoError(t, err)
	median, err := p.Quantile(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 1e9, median, 2)
	assert.GreaterOrEqual(t, p.CDF(median), 0.5)
	assert.Less(t, p.CDF(median-1), 0.5)

	b, err := provider.Binomial(10, 0.5)
	require.NoError(t, err)
	for _, tc := range []struct{ p, want float64 }{{0.0005, 0}, {0.001, 1}, {0.5, 5}, {0.95, 8}, {1, 10}} {
		q, err := b.Quantile(tc.p)
		require.NoError(t, err)
		assert.Equal(t, tc.want, q, "p=%g", tc.p)
	}
}

func TestNoncentralT(t *testing.T) {
	provider := NewProvider()

	central, err := provider.StudentT(9)
	require.NoError(t, err)
	zero, err := provider.NoncentralT(9, 0)
	require.NoError(t, err)
	assert.Equal(t, central.CDF(1.3), zero.CDF(1.3))

	shifted, err := provider.NoncentralT(9, math.Sqrt(10))
	require.NoError(t, err)
	crit, err := central.Quantile(0.975)
	require.NoError(t, err)
	power := 1 - shifted.CDF(crit) + shifted.CDF(-crit)
	assert.InDelta(t, 0.803097, power, 1e-4)

	q, err := shifted.Quantile(0.3)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, shifted.CDF(q), 1e-8)
	assert.Greater(t, shifted.Prob(math.Sqrt(10)), shifted.Prob(0))

	_, err = provider.NoncentralT(0, 1)
	assert.True(t, core.IsDomainError(err))
}
