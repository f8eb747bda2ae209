// Package report turns solved calculator results into text, markdown, HTML
// or JSON output.
package report

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"

	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/internal/errors"
)

// Format selects a presenter.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

// ParseFormat accepts the format names plus md and txt.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.InvalidInput(fmt.Sprintf("unknown report format %q", s))
}

// Report is everything a presenter needs for one invocation.
type Report struct {
	ID     core.InvocationID
	Result formula.Result
	// Graph is the path of the written chart, if any.
	Graph string
}

// Render writes rep to w in the given format.
func Render(w io.Writer, format Format, rep Report) error {
	switch format {
	case FormatText, "":
		return renderText(w, rep)
	case FormatMarkdown:
		return renderMarkdown(w, rep)
	case FormatHTML:
		return renderHTML(w, rep)
	case FormatJSON:
		return renderJSON(w, rep)
	}
	return errors.InvalidInput(fmt.Sprintf("unknown report format %q", format))
}

// row is one "name = value" line of a section.
type row struct {
	Name  string
	Value string
}

// view is the format-independent layout shared by the text presenters.
type view struct {
	Title    string
	ID       string
	Inputs   []row
	Derived  []row
	Result   []string
	Warnings []string
	Graph    string
}

func buildView(rep Report) view {
	res := rep.Result
	v := view{
		Title:    title(res),
		ID:       rep.ID.String(),
		Warnings: res.Warnings,
		Graph:    rep.Graph,
	}

	inputs, derived := splitVars(res)
	for _, sym := range inputs {
		val, _ := res.Vars.Get(sym)
		v.Inputs = append(v.Inputs, row{Name: DisplayName(sym), Value: formatValue(val.Value)})
	}
	for _, sym := range derived {
		val, _ := res.Vars.Get(sym)
		v.Derived = append(v.Derived, row{Name: DisplayName(sym), Value: formatValue(val.Value)})
	}
	v.Result = resultLines(res)
	return v
}

func title(res formula.Result) string {
	t := strings.ToUpper(string(res.Calculator))
	if res.Family != "" {
		t += " (" + string(res.Family) + ")"
	}
	return t
}

// splitVars orders given values by the family vocabulary and derived
// values alphabetically.
func splitVars(res formula.Result) (inputs, derived []core.Symbol) {
	order := res.Family.Symbols()
	rank := func(sym core.Symbol) int {
		if i := slices.Index(order, sym); i >= 0 {
			return i
		}
		return len(order)
	}

	for _, sym := range res.Vars.Symbols() {
		v, _ := res.Vars.Get(sym)
		if v.Derived {
			derived = append(derived, sym)
		} else {
			inputs = append(inputs, sym)
		}
	}
	slices.SortStableFunc(inputs, func(a, b core.Symbol) int { return rank(a) - rank(b) })
	return inputs, derived
}

func resultLines(res formula.Result) []string {
	var lines []string
	if d := res.Decision; d != nil {
		lines = append(lines, fmt.Sprintf("%s = %s, kritischer Wert %s (%s)",
			DisplayName(d.Statistic), FormatFloat(d.Value), criticalText(d.Critical, res.Side), res.Side.OrDefault()))
		if d.Reject {
			lines = append(lines, "H0 wird verworfen")
		} else {
			lines = append(lines, "H0 wird nicht verworfen")
		}
	}
	for _, iv := range res.Intervals {
		lines = append(lines, fmt.Sprintf("%s: %s", iv.Name, intervalText(iv)))
	}
	if prob, ok := res.Vars.Float(formula.SymProb); ok && isDiscrete(res.Family) {
		k, _ := res.Vars.Number(formula.SymK)
		lines = append(lines, fmt.Sprintf("P(X %s %s) = %s", res.Kind.Relation(), k, FormatFloat(prob)))
	}
	for _, l := range res.Labels {
		lines = append(lines, fmt.Sprintf("%s: %s", DisplayName(l.Of), l.Text))
	}
	return lines
}

func isDiscrete(f formula.Family) bool {
	return f == formula.Binomial || f == formula.Hypergeometric || f == formula.Poisson
}

func criticalText(c float64, side formula.TestSide) string {
	if side.OrDefault() == formula.TwoSided {
		return "±" + FormatFloat(math.Abs(c))
	}
	return FormatFloat(c)
}

func intervalText(iv formula.Interval) string {
	lb, rb := "[", "]"
	if math.IsInf(iv.Lower, -1) {
		lb = "("
	}
	if math.IsInf(iv.Upper, 1) {
		rb = ")"
	}
	return lb + FormatFloat(iv.Lower) + "; " + FormatFloat(iv.Upper) + rb
}

func formatValue(v core.Value) string {
	n, ok := v.Number()
	if !ok {
		return "-"
	}
	return FormatNumber(n)
}

// FormatNumber prints integers exactly, short fractions as decimal plus
// fraction, and everything else to six significant digits.
func FormatNumber(n core.Number) string {
	if !n.IsExact() {
		return FormatFloat(n.Float64())
	}
	if n.IsInteger() {
		return n.String()
	}
	r := n.Rat()
	if r.Denom().IsInt64() && r.Denom().Int64() <= 1000 {
		return FormatFloat(n.Float64()) + " (" + r.RatString() + ")"
	}
	return FormatFloat(n.Float64())
}

// FormatFloat prints f to six significant digits with ∞ for infinities.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "-"
	case math.IsInf(f, 1):
		return "∞"
	case math.IsInf(f, -1):
		return "-∞"
	}
	return strconv.FormatFloat(f, 'g', 6, 64)
}

var displayNames = map[core.Symbol]string{
	formula.SymXBar:     "x̄",
	formula.SymMu:       "μ",
	formula.SymMu0:      "μ₀",
	formula.SymMu1:      "μ₁",
	formula.SymMu2:      "μ₂",
	formula.SymSigma:    "σ",
	formula.SymVar:      "σ²",
	formula.SymSSq:      "s²",
	formula.SymS1:       "s₁",
	formula.SymS2:       "s₂",
	formula.SymN1:       "n₁",
	formula.SymN2:       "n₂",
	formula.SymAlpha:    "α",
	formula.SymPower:    "1-β",
	formula.SymBeta:     "β",
	formula.SymLambda:   "λ",
	formula.SymDelta:    "δ",
	formula.SymPooledS:  "s_p",
	formula.SymDF:       "df",
	formula.SymSE:       "SE",
	formula.SymCrit:     "kritischer Wert",
	formula.SymProb:     "P",
	formula.SymExpected: "E(X)",
	formula.SymVariance: "Var",
	formula.SymStdDev:   "Standardabweichung",
	formula.SymMean:     "Mittelwert",
	formula.SymMedian:   "Median",
	formula.SymMin:      "Minimum",
	formula.SymMax:      "Maximum",
	formula.SymRange:    "Spannweite",
	formula.SymQ1:       "Q1",
	formula.SymQ3:       "Q3",
	formula.SymIQR:      "IQR",
	formula.SymSumSq:    "Σ(x-x̄)²",
	formula.SymRho:      "ρ",
	formula.SymRhoP:     "p(ρ)",
	formula.SymRP:       "p(r)",
	formula.SymRankD2:   "Σd²",
	formula.SymChi2:     "χ²",
	formula.SymC:        "C",
	formula.SymCCorr:    "C_korr",
	formula.SymSDLower:  "σ untere Grenze",
	formula.SymSDUpper:  "σ obere Grenze",
	formula.SymLower:    "untere Grenze",
	formula.SymUpper:    "obere Grenze",
}

// DisplayName returns the printed name of sym.
func DisplayName(sym core.Symbol) string {
	if name, ok := displayNames[sym]; ok {
		return name
	}
	return string(sym)
}
