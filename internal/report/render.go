package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"statcalc/domain/core"
	"statcalc/domain/formula"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const rule = "============================================================"

func renderText(w io.Writer, rep Report) error {
	v := buildView(rep)
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n", rule, v.Title)
	if v.ID != "" {
		fmt.Fprintf(&b, "Aufruf: %s\n", v.ID)
	}
	fmt.Fprintf(&b, "%s\n", rule)

	writeRows(&b, "EINGEGEBENE WERTE", v.Inputs)
	writeRows(&b, "BERECHNUNGEN", v.Derived)

	if len(v.Result) > 0 {
		b.WriteString("\nERGEBNIS:\n")
		for _, line := range v.Result {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	if len(v.Warnings) > 0 {
		b.WriteString("\nHINWEISE:\n")
		for _, warning := range v.Warnings {
			fmt.Fprintf(&b, "  - %s\n", warning)
		}
	}
	if v.Graph != "" {
		fmt.Fprintf(&b, "\nGrafik gespeichert: %s\n", v.Graph)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRows(b *strings.Builder, heading string, rows []row) {
	if len(rows) == 0 {
		return
	}
	width := 0
	for _, r := range rows {
		width = max(width, len([]rune(r.Name)))
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for _, r := range rows {
		pad := strings.Repeat(" ", width-len([]rune(r.Name)))
		fmt.Fprintf(b, "  %s%s = %s\n", r.Name, pad, r.Value)
	}
}

func markdownDocument(rep Report) []byte {
	v := buildView(rep)
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", v.Title)
	if v.ID != "" {
		fmt.Fprintf(&b, "Aufruf `%s`\n\n", v.ID)
	}
	writeTable(&b, "Eingegebene Werte", v.Inputs)
	writeTable(&b, "Berechnungen", v.Derived)

	if len(v.Result) > 0 {
		b.WriteString("## Ergebnis\n\n")
		for _, line := range v.Result {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}
	if len(v.Warnings) > 0 {
		b.WriteString("## Hinweise\n\n")
		for _, warning := range v.Warnings {
			fmt.Fprintf(&b, "> %s\n>\n", warning)
		}
		b.WriteString("\n")
	}
	if v.Graph != "" {
		fmt.Fprintf(&b, "Grafik: `%s`\n", v.Graph)
	}
	return b.Bytes()
}

func writeTable(b *bytes.Buffer, heading string, rows []row) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n| Größe | Wert |\n|---|---|\n", heading)
	for _, r := range rows {
		fmt.Fprintf(b, "| %s | %s |\n", escapeCell(r.Name), escapeCell(r.Value))
	}
	b.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func renderMarkdown(w io.Writer, rep Report) error {
	_, err := w.Write(markdownDocument(rep))
	return err
}

func renderHTML(w io.Writer, rep Report) error {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title(rep.Result),
	})
	_, err := w.Write(markdown.ToHTML(markdownDocument(rep), p, renderer))
	return err
}

// jsonFloat encodes infinities as strings and NaN as null.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsNaN(v):
		return []byte("null"), nil
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

type jsonValue struct {
	Value *jsonFloat `json:"value"`
	Exact string     `json:"exact,omitempty"`
}

type jsonDecision struct {
	Statistic string    `json:"statistic"`
	Value     jsonFloat `json:"value"`
	Critical  jsonFloat `json:"critical"`
	Reject    bool      `json:"reject"`
}

type jsonInterval struct {
	Name  string    `json:"name"`
	Lower jsonFloat `json:"lower"`
	Upper jsonFloat `json:"upper"`
}

type jsonReport struct {
	ID         string               `json:"id,omitempty"`
	Calculator string               `json:"calculator"`
	Family     string               `json:"family"`
	Side       string               `json:"side,omitempty"`
	Kind       string               `json:"kind,omitempty"`
	Inputs     map[string]jsonValue `json:"inputs"`
	Derived    map[string]jsonValue `json:"derived"`
	Decision   *jsonDecision        `json:"decision,omitempty"`
	Intervals  []jsonInterval       `json:"intervals,omitempty"`
	Labels     []formula.Label      `json:"labels,omitempty"`
	Warnings   []string             `json:"warnings"`
	Graph      string               `json:"graph,omitempty"`
}

// JSON builds the JSON document of rep.
func JSON(rep Report) any {
	res := rep.Result
	out := jsonReport{
		ID:         rep.ID.String(),
		Calculator: string(res.Calculator),
		Family:     string(res.Family),
		Inputs:     map[string]jsonValue{},
		Derived:    map[string]jsonValue{},
		Labels:     res.Labels,
		Warnings:   res.Warnings,
		Graph:      rep.Graph,
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	if res.Decision != nil {
		out.Side = string(res.Side.OrDefault())
		out.Decision = &jsonDecision{
			Statistic: string(res.Decision.Statistic),
			Value:     jsonFloat(res.Decision.Value),
			Critical:  jsonFloat(res.Decision.Critical),
			Reject:    res.Decision.Reject,
		}
	}
	if isDiscrete(res.Family) {
		out.Kind = string(res.Kind.OrDefault())
	}
	for _, iv := range res.Intervals {
		out.Intervals = append(out.Intervals, jsonInterval{Name: iv.Name, Lower: jsonFloat(iv.Lower), Upper: jsonFloat(iv.Upper)})
	}

	inputs, derived := splitVars(res)
	for _, sym := range inputs {
		out.Inputs[string(sym)] = valueJSON(res, sym)
	}
	for _, sym := range derived {
		out.Derived[string(sym)] = valueJSON(res, sym)
	}
	return out
}

func valueJSON(res formula.Result, sym core.Symbol) jsonValue {
	n, ok := res.Vars.Number(sym)
	if !ok {
		return jsonValue{}
	}
	f := jsonFloat(n.Float64())
	v := jsonValue{Value: &f}
	if n.IsExact() && !n.IsInteger() {
		v.Exact = n.String()
	}
	return v
}

func renderJSON(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(JSON(rep))
}
