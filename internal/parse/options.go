package parse

import (
	"strings"

	"statcalc/domain/core"
	"statcalc/domain/formula"
)

func normalizeWord(raw string) string {
	w := strings.ToLower(strings.TrimSpace(raw))
	w = strings.ReplaceAll(w, " ", "_")
	return w
}

// Side reads a test direction.
func Side(key, raw string) (formula.TestSide, error) {
	switch normalizeWord(raw) {
	case "zweiseitig", "zwei-seitig", "zwei_seitig", "beidseitig", "two-sided", "two_sided", "two":
		return formula.TwoSided, nil
	case "einseitig_links", "einseitig-links", "links", "linksseitig", "left", "less":
		return formula.Left, nil
	case "einseitig_rechts", "einseitig-rechts", "rechts", "rechtsseitig", "right", "greater":
		return formula.Right, nil
	}
	return "", core.NewParseError(key, raw)
}

// Kind reads the event kind of a discrete calculator.
func Kind(key, raw string) (formula.CountKind, error) {
	switch normalizeWord(raw) {
	case "genau", "exakt", "exactly", "eq", "=":
		return formula.Exactly, nil
	case "höchstens", "hoechstens", "hochstens", "at_most", "<=":
		return formula.AtMost, nil
	case "mindestens", "at_least", ">=":
		return formula.AtLeast, nil
	case "mehr_als", "mehr-als", "more_than", ">":
		return formula.MoreThan, nil
	case "weniger_als", "weniger-als", "less_than", "<":
		return formula.LessThan, nil
	}
	return "", core.NewParseError(key, raw)
}

// Bool reads a yes/no flag. Words naming the variance count as yes so
// that "typ=varianz" selects a variance interval.
func Bool(key, raw string) (bool, error) {
	switch normalizeWord(raw) {
	case "true", "1", "yes", "ja", "y", "j", "varianz", "variance", "sigma2":
		return true, nil
	case "false", "0", "no", "nein", "mittelwert", "mean":
		return false, nil
	}
	return false, core.NewParseError(key, raw)
}

// List reads a comma or semicolon separated list of known numbers,
// optionally wrapped in brackets.
func List(key, raw string) ([]float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, core.NewParseError(key, raw)
	}

	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		n, err := ParseNumber(key, f)
		if err != nil {
			return nil, err
		}
		out = append(out, n.Float64())
	}
	return out, nil
}

// Table reads a rectangular table written as [[a,b],[c,d]].
func Table(key, raw string) ([][]float64, error) {
	s := strings.Join(strings.Fields(raw), "")
	if !strings.HasPrefix(s, "[[") || !strings.HasSuffix(s, "]]") {
		return nil, core.NewParseError(key, raw)
	}
	rows := strings.Split(s[2:len(s)-2], "],[")

	out := make([][]float64, 0, len(rows))
	for _, row := range rows {
		cells, err := List(key, row)
		if err != nil {
			return nil, err
		}
		if len(out) > 0 && len(cells) != len(out[0]) {
			return nil, &core.ParamError{Kind: core.ErrParse, Param: key, Reason: "rows differ in length"}
		}
		out = append(out, cells)
	}
	return out, nil
}
