package report

import (
	"bytes"
	"encoding/json"
	"math"
	"math/big"
	"strings"
	"testing"

	"statcalc/domain/core"
	"statcalc/domain/formula"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zTestResult() formula.Result {
	vars := core.NewVariableSet(
		core.Variable{Name: formula.SymXBar, Value: core.Known(core.NewInt(105))},
		core.Variable{Name: formula.SymMu0, Value: core.Known(core.NewInt(100))},
		core.Variable{Name: formula.SymSigma, Value: core.Known(core.NewInt(15))},
		core.Variable{Name: formula.SymN, Value: core.Known(core.NewInt(25))},
		core.Variable{Name: formula.SymAlpha, Value: core.Known(core.NewRat(big.NewRat(1, 20)))},
	).
		WithDerived(formula.SymZ, core.NewRat(big.NewRat(5, 3))).
		WithDerived(formula.SymP, core.NewFloat(0.0955807)).
		WithDerived(formula.SymSE, core.NewInt(3))

	return formula.Result{
		Calculator: formula.CalcHypothesis,
		Family:     formula.ZTest,
		Vars:       vars,
		Side:       formula.TwoSided,
		Kind:       formula.Exactly,
		Decision:   &formula.Decision{Statistic: formula.SymZ, Value: 5.0 / 3, Critical: 1.959964, Reject: false},
		Warnings:   []string{"p-Wert gerundet"},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"":         FormatText,
		"TXT":      FormatText,
		"md":       FormatMarkdown,
		"markdown": FormatMarkdown,
		" html ":   FormatHTML,
		"json":     FormatJSON,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "25", FormatNumber(core.NewInt(25)))
	assert.Equal(t, "0.333333 (1/3)", FormatNumber(core.NewRat(big.NewRat(1, 3))))
	assert.Equal(t, "0.158655", FormatNumber(core.NewFloat(0.15865525393145707)))
	assert.Equal(t, "∞", FormatFloat(math.Inf(1)))
	assert.Equal(t, "-∞", FormatFloat(math.Inf(-1)))
	assert.Equal(t, "-", FormatFloat(math.NaN()))
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	rep := Report{ID: core.InvocationID("0190f3a6-0000-7000-8000-000000000000"), Result: zTestResult()}
	require.NoError(t, Render(&buf, FormatText, rep))

	out := buf.String()
	assert.Contains(t, out, "HYPOTHESENTEST (Z_TEST)")
	assert.Contains(t, out, "Aufruf: 0190f3a6-0000-7000-8000-000000000000")
	assert.Contains(t, out, "EINGEGEBENE WERTE:")
	assert.Contains(t, out, "BERECHNUNGEN:")
	assert.Contains(t, out, "ERGEBNIS:")
	assert.Contains(t, out, "H0 wird nicht verworfen")
	assert.Contains(t, out, "±1.95996")
	assert.Contains(t, out, "1.66667 (5/3)")
	assert.Contains(t, out, "  - p-Wert gerundet")

	// inputs follow the family vocabulary: x̄ before μ₀ before σ before n
	xbar := strings.Index(out, "x̄")
	mu0 := strings.Index(out, "μ₀")
	sigma := strings.Index(out, "σ ")
	assert.True(t, xbar < mu0 && mu0 < sigma, out)

	// warnings come after the result
	assert.Less(t, strings.Index(out, "ERGEBNIS:"), strings.Index(out, "HINWEISE:"))
}

func TestRenderMarkdownAndHTML(t *testing.T) {
	rep := Report{Result: zTestResult(), Graph: "out.xlsx"}

	var md bytes.Buffer
	require.NoError(t, Render(&md, FormatMarkdown, rep))
	assert.Contains(t, md.String(), "## Eingegebene Werte")
	assert.Contains(t, md.String(), "| α | 0.05 (1/20) |")
	assert.Contains(t, md.String(), "Grafik: `out.xlsx`")

	var page bytes.Buffer
	require.NoError(t, Render(&page, FormatHTML, rep))
	html := page.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "H0 wird nicht verworfen")
}

func TestRenderJSONHandlesInfiniteBounds(t *testing.T) {
	res := formula.Result{
		Calculator: formula.CalcInterval,
		Family:     formula.ZTest,
		Vars: core.NewVariableSet(
			core.Variable{Name: formula.SymXBar, Value: core.Known(core.NewInt(10))},
			core.Variable{Name: formula.SymS, Value: core.Unknown()},
		),
		Side:      formula.Left,
		Intervals: []formula.Interval{{Name: "μ", Lower: 9.177573, Upper: math.Inf(1)}},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, Report{Result: res}))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "konfidenzintervall", doc["calculator"])
	assert.Equal(t, []any{}, doc["warnings"])

	intervals := doc["intervals"].([]any)
	require.Len(t, intervals, 1)
	iv := intervals[0].(map[string]any)
	assert.Equal(t, "Infinity", iv["upper"])
	assert.InDelta(t, 9.177573, iv["lower"], 1e-9)

	inputs := doc["inputs"].(map[string]any)
	assert.Nil(t, inputs["s"].(map[string]any)["value"])
	assert.Equal(t, float64(10), inputs["x_bar"].(map[string]any)["value"])
}

func TestRenderJSONDecisionAndExactValues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, Report{Result: zTestResult()}))

	var doc struct {
		Side     string `json:"side"`
		Kind     string `json:"kind"`
		Decision struct {
			Statistic string  `json:"statistic"`
			Critical  float64 `json:"critical"`
			Reject    bool    `json:"reject"`
		} `json:"decision"`
		Derived map[string]struct {
			Value float64 `json:"value"`
			Exact string  `json:"exact"`
		} `json:"derived"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "zweiseitig", doc.Side)
	assert.Empty(t, doc.Kind)
	assert.Equal(t, "z", doc.Decision.Statistic)
	assert.False(t, doc.Decision.Reject)
	assert.Equal(t, "5/3", doc.Derived["z"].Exact)
	assert.InDelta(t, 5.0/3, doc.Derived["z"].Value, 1e-12)
}

func TestDiscreteResultLine(t *testing.T) {
	res := formula.Result{
		Calculator: formula.CalcBinomial,
		Family:     formula.Binomial,
		Kind:       formula.AtMost,
		Vars: core.NewVariableSet(
			core.Variable{Name: formula.SymK, Value: core.Known(core.NewInt(2))},
		).WithDerived(formula.SymProb, core.NewFloat(0.96191)),
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatText, Report{Result: res}))
	assert.Contains(t, buf.String(), "P(X <= 2) = 0.96191")
}
