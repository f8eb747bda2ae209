package parse

import (
	"fmt"
	"strings"

	"statcalc/domain/core"
	"statcalc/domain/formula"
)

// optionKey names a non-numeric argument.
type optionKey string

const (
	optSide        optionKey = "side"
	optKind        optionKey = "kind"
	optForVariance optionKey = "for_variance"
	optPopulation  optionKey = "population"
	optListX       optionKey = "list_x"
	optListY       optionKey = "list_y"
	optTable       optionKey = "table"
	optFile        optionKey = "file"
	optColumn      optionKey = "column"
	optColumnY     optionKey = "column_y"
)

// vocabulary maps user-facing keys to symbols and options for one calculator.
type vocabulary struct {
	caseSensitive bool
	symbols       map[string]core.Symbol
	options       map[string]optionKey
}

func (v vocabulary) lookup(key string) (core.Symbol, optionKey, bool) {
	candidates := []string{key}
	if !v.caseSensitive {
		candidates[0] = strings.ToLower(key)
	} else if len([]rune(key)) > 1 {
		candidates = append(candidates, strings.ToLower(key))
	}
	for _, k := range candidates {
		if sym, ok := v.symbols[k]; ok {
			return sym, "", true
		}
		if opt, ok := v.options[k]; ok {
			return "", opt, true
		}
	}
	return "", "", false
}

func aliases(sym core.Symbol, keys ...string) map[string]core.Symbol {
	m := make(map[string]core.Symbol, len(keys))
	for _, k := range keys {
		m[k] = sym
	}
	return m
}

func merge[V any](parts ...map[string]V) map[string]V {
	out := make(map[string]V)
	for _, p := range parts {
		for k, v := range p {
			out[k] = v
		}
	}
	return out
}

func optionAliases(opt optionKey, keys ...string) map[string]optionKey {
	m := make(map[string]optionKey, len(keys))
	for _, k := range keys {
		m[k] = opt
	}
	return m
}

var (
	aliasMu0    = aliases(formula.SymMu0, "mu0", "μ0", "μ₀", "mu₀", "mu_0", "mu_null", "populationsmittelwert", "population_mean")
	aliasXBar   = aliases(formula.SymXBar, "x_bar", "xbar", "x̄", "stichprobenmittelwert", "sample_mean")
	aliasSigma  = aliases(formula.SymSigma, "sigma", "σ", "std_pop", "standardabweichung", "standard_deviation")
	aliasS      = aliases(formula.SymS, "s", "std", "sd")
	aliasSSq    = aliases(formula.SymSSq, "shoch2", "s^2", "s²", "s_sq", "var", "varianz", "variance")
	aliasN      = aliases(formula.SymN, "n", "stichprobengroesse", "stichprobengröße", "sample_size")
	aliasAlpha  = aliases(formula.SymAlpha, "alpha", "α", "signifikanzniveau", "signifikanz", "irrtumswahrscheinlichkeit")
	aliasPValue = aliases(formula.SymP, "p", "p_wert", "pwert", "p-value", "pvalue", "p_value", "wahrscheinlichkeit", "prob", "probability")

	optionsSide = optionAliases(optSide, "test", "testart", "seite", "side", "art")
	optionsKind = optionAliases(optKind, "art", "test", "type", "typ")
	optionsFile = optionAliases(optFile, "file", "datei", "csv", "xlsx")
)

// vocabularyFor returns the key vocabulary of a calculator.
func vocabularyFor(calc formula.Calculator) (vocabulary, error) {
	switch calc {
	case formula.CalcZScore:
		return vocabulary{symbols: merge(
			aliases(formula.SymZ, "z", "z-score", "zscore", "z_score"),
			aliases(formula.SymMu, "mu", "μ", "mittelwert", "mean", "mu0", "erwartungswert"),
			aliases(formula.SymSigma, "sigma", "σ", "std", "standardabweichung", "sd"),
			aliases(formula.SymVar, "var", "varianz", "variance"),
			aliases(formula.SymX, "x", "x_bar", "xbar", "wert", "value"),
			aliases(formula.SymP, "p", "prob", "wahrscheinlichkeit", "phi", "probability"),
		)}, nil

	case formula.CalcHypothesis:
		return vocabulary{
			symbols: merge(aliasXBar, aliases(formula.SymXBar, "x"), aliasMu0, aliasSigma, aliasS, aliasSSq,
				aliases(formula.SymSSq, "s2"), aliasN, aliasAlpha, aliasPValue,
				aliases(formula.SymZ, "z"), aliases(formula.SymT, "t")),
			options: optionsSide,
		}, nil

	case formula.CalcInterval:
		return vocabulary{
			symbols: merge(aliasXBar, aliases(formula.SymXBar, "x"), aliasSigma, aliasS, aliasSSq,
				aliases(formula.SymSSq, "s2"), aliasN, aliasAlpha),
			options: merge(optionsSide,
				optionAliases(optForVariance, "fuer_varianz", "fuervarianz", "fuer_variance", "für_varianz", "typ", "type")),
		}, nil

	case formula.CalcPower:
		// "s2" is the second group's deviation here, not a variance.
		return vocabulary{
			symbols: merge(aliasMu0, aliasSigma, aliasS, aliasSSq, aliasN, aliasAlpha,
				aliases(formula.SymMu1, "mu1", "μ1", "mu_1", "x_bar1", "xbar1", "mu_a", "mu_alt"),
				aliases(formula.SymMu2, "mu2", "μ2", "mu_2", "x_bar2", "xbar2"),
				aliases(formula.SymN1, "n1", "n_1"),
				aliases(formula.SymN2, "n2", "n_2"),
				aliases(formula.SymS1, "s1", "s_1", "sigma1"),
				aliases(formula.SymS2, "s2", "s_2", "sigma2"),
				aliases(formula.SymPower, "power", "trennschaerfe", "trennschärfe", "1-beta", "macht"),
			),
			options: optionsSide,
		}, nil

	case formula.CalcBinomial:
		return vocabulary{
			symbols: merge(
				aliases(formula.SymK, "k", "erfolge", "treffer"),
				aliases(formula.SymN, "n", "versuche"),
				aliases(formula.SymP, "p", "p_erfolg", "erfolgswahrscheinlichkeit"),
			),
			options: optionsKind,
		}, nil

	case formula.CalcHypergeometric:
		return vocabulary{
			caseSensitive: true,
			symbols: merge(
				aliases(formula.SymK, "k", "treffer"),
				aliases(formula.SymN, "n", "stichprobe", "ziehungen"),
				aliases(formula.SymPopulation, "N", "n_pop", "n_total", "grundgesamtheit"),
				aliases(formula.SymSuccesses, "M", "m_erfolg", "erfolge", "merkmalstraeger"),
			),
			options: optionsKind,
		}, nil

	case formula.CalcPoisson:
		return vocabulary{
			symbols: merge(
				aliases(formula.SymK, "k"),
				aliases(formula.SymLambda, "lambda", "λ", "lambda_rate", "rate", "l"),
			),
			options: optionsKind,
		}, nil

	case formula.CalcCohensD:
		return vocabulary{symbols: merge(
			aliases(formula.SymD, "d", "cohens_d", "cohensd", "cohen"),
			aliasXBar, aliases(formula.SymXBar, "x"),
			aliasMu0, aliases(formula.SymMu0, "mu"),
			aliasSigma, aliases(formula.SymSigma, "std"),
		)}, nil

	case formula.CalcKSigma:
		return vocabulary{symbols: merge(
			aliases(formula.SymMu, "mu", "μ", "mittelwert", "mean"),
			aliases(formula.SymSigma, "sigma", "σ", "std", "standardabweichung"),
			aliases(formula.SymZ, "z", "k"),
			aliases(formula.SymConf, "conf", "konfidenz", "konfidenzniveau", "confidence", "niveau"),
		)}, nil

	case formula.CalcDescriptive:
		return vocabulary{options: merge(
			optionAliases(optListX, "daten", "data", "values", "werte"),
			optionAliases(optPopulation, "population", "grundgesamtheit"),
			optionAliases(optColumn, "spalte", "column", "col"),
			optionsFile,
		)}, nil

	case formula.CalcCorrelation:
		return vocabulary{options: merge(
			optionAliases(optListX, "x"),
			optionAliases(optListY, "y"),
			optionAliases(optTable, "kontingenz", "contingency", "tabelle", "table"),
			optionAliases(optColumn, "x_spalte", "x_col", "spalte_x"),
			optionAliases(optColumnY, "y_spalte", "y_col", "spalte_y"),
			optionsFile,
		)}, nil
	}
	return vocabulary{}, fmt.Errorf("unknown calculator: %s", calc)
}

// Args turns key=value tokens into a Request. Keys the calculator does
// not know are returned in ignored; they are not an error.
func Args(calc formula.Calculator, args []string) (req formula.Request, ignored []string, err error) {
	vocab, err := vocabularyFor(calc)
	if err != nil {
		return formula.Request{}, nil, err
	}

	req = formula.Request{Calculator: calc, Vars: core.NewVariableSet()}
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			ignored = append(ignored, arg)
			continue
		}

		sym, opt, known := vocab.lookup(key)
		switch {
		case !known:
			ignored = append(ignored, arg)
		case sym != "":
			v, err := ParseValue(key, raw)
			if err != nil {
				return formula.Request{}, nil, err
			}
			req.Vars = req.Vars.With(sym, v)
		default:
			if err := applyOption(&req, opt, key, raw); err != nil {
				return formula.Request{}, nil, err
			}
		}
	}
	return req, ignored, nil
}

func applyOption(req *formula.Request, opt optionKey, key, raw string) error {
	var err error
	switch opt {
	case optSide:
		req.Side, err = Side(key, raw)
	case optKind:
		req.Kind, err = Kind(key, raw)
	case optForVariance:
		req.ForVariance, err = Bool(key, raw)
	case optPopulation:
		req.Population, err = Bool(key, raw)
	case optListX:
		req.X, err = List(key, raw)
	case optListY:
		req.Y, err = List(key, raw)
	case optTable:
		req.Table, err = Table(key, raw)
	case optFile:
		req.File = strings.TrimSpace(raw)
	case optColumn:
		req.Columns = setColumn(req.Columns, 0, raw)
	case optColumnY:
		req.Columns = setColumn(req.Columns, 1, raw)
	}
	return err
}

func setColumn(cols []string, i int, raw string) []string {
	for len(cols) <= i {
		cols = append(cols, "")
	}
	cols[i] = strings.TrimSpace(raw)
	return cols
}
