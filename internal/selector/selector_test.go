package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/internal/parse"
)

func selectArgs(calc formula.Calculator, args ...string) (formula.Family, error) {
	req, _, err := parse.Args(calc, args)
	if err != nil {
		return "", err
	}
	req, _, err = Normalize(req)
	if err != nil {
		return "", err
	}
	return Select(req)
}

func TestSelectFamilies(t *testing.T) {
	tests := []struct {
		name string
		calc formula.Calculator
		args []string
		want formula.Family
	}{
		{"z score", formula.CalcZScore, []string{"x=85", "mu=100", "sigma=15"}, formula.ZScore},
		{"z test", formula.CalcHypothesis, []string{"x_bar=105", "mu0=100", "sigma=15", "n=25"}, formula.ZTest},
		{"t test", formula.CalcHypothesis, []string{"x_bar=105", "mu0=100", "s=15", "n=25"}, formula.TTest},
		{"t test from variance", formula.CalcHypothesis, []string{"x_bar=105", "mu0=100", "s^2=225", "n=25"}, formula.TTest},
		{"solve sigma", formula.CalcHypothesis, []string{"x_bar=105", "mu0=100", "sigma=-", "n=25", "z=2"}, formula.ZTest},
		{"variance interval flag", formula.CalcInterval, []string{"n=31", "alpha=0.05", "s=2.78", "fuer_varianz=true"}, formula.Chi2Variance},
		{"variance interval without mean", formula.CalcInterval, []string{"n=31", "alpha=0.05", "s=2.78"}, formula.Chi2Variance},
		{"z interval", formula.CalcInterval, []string{"x_bar=10", "n=31", "alpha=0.05", "sigma=2"}, formula.ZTest},
		{"t interval", formula.CalcInterval, []string{"x_bar=10", "n=31", "alpha=0.05", "s=2"}, formula.TTest},
		{"power z", formula.CalcPower, []string{"mu0=100", "mu1=105", "sigma=15", "n=25"}, formula.PowerOneSampleZ},
		{"power t", formula.CalcPower, []string{"mu0=100", "mu1=105", "s=15", "n=25"}, formula.PowerOneSampleT},
		{"power two sample", formula.CalcPower, []string{"mu1=10", "mu2=12", "s1=3", "s2=4", "n1=20", "n2=25"}, formula.PowerTwoSampleT},
		{"binomial", formula.CalcBinomial, []string{"k=2", "n=8", "p=0.1"}, formula.Binomial},
		{"contingency", formula.CalcCorrelation, []string{"kontingenz=[[1,2],[3,4]]"}, formula.Contingency},
		{"correlation", formula.CalcCorrelation, []string{"x=1,2,3", "y=3,2,1"}, formula.Correlation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := selectArgs(tt.calc, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectAmbiguous(t *testing.T) {
	_, err := selectArgs(formula.CalcHypothesis, "x_bar=105", "mu0=100", "sigma=15", "s=14", "n=25")
	assert.True(t, core.IsAmbiguousInputError(err))

	_, err = selectArgs(formula.CalcPower, "mu0=100", "mu1=105", "sigma=15", "shoch2=196", "n=25")
	assert.True(t, core.IsAmbiguousInputError(err))

	_, err = selectArgs(formula.CalcHypothesis, "x_bar=105", "mu0=100", "n=25")
	assert.True(t, core.IsAmbiguousInputError(err))

	_, err = selectArgs(formula.CalcInterval, "n=25", "alpha=0.05", "sigma=3")
	assert.True(t, core.IsAmbiguousInputError(err))
}

func TestNormalizeVariance(t *testing.T) {
	req, _, err := parse.Args(formula.CalcZScore, []string{"var=9/4", "x=1"})
	require.NoError(t, err)
	req, warnings, err := Normalize(req)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	sigma, ok := req.Vars.Number(formula.SymSigma)
	require.True(t, ok)
	assert.True(t, sigma.IsExact())
	assert.Equal(t, "3/2", sigma.String())

	req, _, err = parse.Args(formula.CalcZScore, []string{"var=9", "sigma=2"})
	require.NoError(t, err)
	req, warnings, err = Normalize(req)
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, 2.0, req.Vars.MustFloat(formula.SymSigma))

	req, _, err = parse.Args(formula.CalcHypothesis, []string{"varianz=-4"})
	require.NoError(t, err)
	_, _, err = Normalize(req)
	assert.True(t, core.IsDomainError(err))
}

func TestSelectIgnoresKeyOrder(t *testing.T) {
	args := []string{"x_bar=105", "mu0=100", "s=15", "n=25", "alpha=0.05", "test=links"}
	want, err := selectArgs(formula.CalcHypothesis, args...)
	require.NoError(t, err)

	rapid.Check(t, func(t *rapid.T) {
		shuffled := rapid.Permutation(args).Draw(t, "args")
		got, err := selectArgs(formula.CalcHypothesis, shuffled...)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("order %v selected %s, want %s", shuffled, got, want)
		}
	})
}
