package parse

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statcalc/domain/core"
	"statcalc/domain/formula"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		token   string
		want    *big.Rat
		unknown bool
		wantErr bool
	}{
		{name: "integer", token: "85", want: big.NewRat(85, 1)},
		{name: "negative decimal", token: "-1.25", want: big.NewRat(-5, 4)},
		{name: "exponent", token: "1e-3", want: big.NewRat(1, 1000)},
		{name: "fraction", token: "1/3", want: big.NewRat(1, 3)},
		{name: "decimal fraction", token: "1.5/3", want: big.NewRat(1, 2)},
		{name: "padded", token: " 2/4 ", want: big.NewRat(1, 2)},
		{name: "dash", token: "-", unknown: true},
		{name: "question mark", token: "?", unknown: true},
		{name: "none", token: "None", unknown: true},
		{name: "empty", token: "", unknown: true},
		{name: "zero denominator", token: "1/0", wantErr: true},
		{name: "double fraction", token: "1/2/3", wantErr: true},
		{name: "word", token: "abc", wantErr: true},
		{name: "infinity", token: "inf", wantErr: true},
		{name: "dangling slash", token: "3/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue("x", tt.token)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, core.IsParseError(err))
				assert.Equal(t, "x", core.ParamOf(err))
				return
			}
			require.NoError(t, err)
			if tt.unknown {
				assert.False(t, v.IsKnown())
				return
			}
			n, ok := v.Number()
			require.True(t, ok)
			assert.True(t, n.IsExact())
			assert.Equal(t, 0, n.Rat().Cmp(tt.want), "got %s", n)
		})
	}
}

func TestArgsAliasesAndIgnoredKeys(t *testing.T) {
	req, ignored, err := Args(formula.CalcHypothesis, []string{
		"xbar=105", "μ0=100", "sigma=15", "n=25", "α=0.05", "test=zweiseitig", "farbe=blau", "noequals",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"farbe=blau", "noequals"}, ignored)
	assert.Equal(t, formula.TwoSided, req.Side)
	for _, sym := range []core.Symbol{formula.SymXBar, formula.SymMu0, formula.SymSigma, formula.SymN, formula.SymAlpha} {
		assert.True(t, req.Vars.IsKnown(sym), "missing %s", sym)
	}
}

func TestArgsSubscriptMu0(t *testing.T) {
	for _, key := range []string{"μ₀", "mu₀", "mu_0"} {
		req, ignored, err := Args(formula.CalcHypothesis, []string{"x_bar=105", key + "=100", "sigma=15", "n=25"})
		require.NoError(t, err)
		assert.Empty(t, ignored, key)
		assert.Equal(t, 100.0, req.Vars.MustFloat(formula.SymMu0), key)
	}
}

func TestArgsUnknownPlaceholder(t *testing.T) {
	req, _, err := Args(formula.CalcCohensD, []string{"x_bar=105", "mu0=100", "sigma=15", "d=-"})
	require.NoError(t, err)
	assert.True(t, req.Vars.Has(formula.SymD))
	assert.Equal(t, []core.Symbol{formula.SymD}, req.Vars.Unknowns())
}

func TestArgsHypergeometricIsCaseSensitive(t *testing.T) {
	req, _, err := Args(formula.CalcHypergeometric, []string{"N=50", "M=5", "n=10", "k=2", "N_Pop=7"})
	require.NoError(t, err)

	pop, _ := req.Vars.Float(formula.SymPopulation)
	sample, _ := req.Vars.Float(formula.SymN)
	assert.Equal(t, 7.0, pop, "n_pop alias is read case-insensitively and overrides N")
	assert.Equal(t, 10.0, sample)
	assert.True(t, req.Vars.IsKnown(formula.SymSuccesses))
}

func TestArgsPowerDistinguishesGroupDeviation(t *testing.T) {
	req, _, err := Args(formula.CalcPower, []string{"s2=3", "shoch2=9"})
	require.NoError(t, err)
	assert.True(t, req.Vars.IsKnown(formula.SymS2))
	assert.True(t, req.Vars.IsKnown(formula.SymSSq))

	req, _, err = Args(formula.CalcHypothesis, []string{"s2=9"})
	require.NoError(t, err)
	assert.True(t, req.Vars.IsKnown(formula.SymSSq))
}

func TestArgsRejectsBadValue(t *testing.T) {
	_, _, err := Args(formula.CalcZScore, []string{"x=85", "mu=abc"})
	require.Error(t, err)
	assert.True(t, core.IsParseError(err))
	assert.Equal(t, "mu", core.ParamOf(err))
}

func TestArgsLists(t *testing.T) {
	req, _, err := Args(formula.CalcCorrelation, []string{"x=1,2,3", "y=[2;4;7]", "kontingenz=[[10, 20], [30, 40]]"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, req.X)
	assert.Equal(t, []float64{2, 4, 7}, req.Y)
	assert.Equal(t, [][]float64{{10, 20}, {30, 40}}, req.Table)

	_, _, err = Args(formula.CalcCorrelation, []string{"kontingenz=[[1,2],[3]]"})
	assert.True(t, core.IsParseError(err))

	req, _, err = Args(formula.CalcDescriptive, []string{"file=data.csv", "spalte=Gewicht", "population=ja"})
	require.NoError(t, err)
	assert.Equal(t, "data.csv", req.File)
	assert.Equal(t, []string{"Gewicht"}, req.Columns)
	assert.True(t, req.Population)
}

func TestSideAndKindWords(t *testing.T) {
	side, err := Side("test", "Einseitig Links")
	require.NoError(t, err)
	assert.Equal(t, formula.Left, side)

	_, err = Side("test", "diagonal")
	assert.True(t, core.IsParseError(err))

	kind, err := Kind("art", "hoechstens")
	require.NoError(t, err)
	assert.Equal(t, formula.AtMost, kind)

	ok, err := Bool("fuer_varianz", "Varianz")
	require.NoError(t, err)
	assert.True(t, ok)
}
