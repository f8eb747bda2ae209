package app

import (
	"fmt"
	"strings"

	"statcalc/domain/formula"
	"statcalc/internal/errors"
)

// CalculatorInfo describes one calculator for help output and the HTTP listing.
type CalculatorInfo struct {
	Name        formula.Calculator `json:"name"`
	Aliases     []string           `json:"aliases,omitempty"`
	Description string             `json:"description"`
	Usage       string             `json:"usage"`
	// Plottable calculators produce a point sequence for --graph.
	Plottable bool `json:"plottable"`
}

var calculatorInfos = map[formula.Calculator]CalculatorInfo{
	formula.CalcZScore: {
		Name:        formula.CalcZScore,
		Aliases:     []string{"zscore", "z-score", "z"},
		Description: "z-Wert z = (x - μ) / σ und Φ(z); jede Größe aus den übrigen",
		Usage:       "z_score x=85 mu=100 sigma=15 z=-",
	},
	formula.CalcHypothesis: {
		Name:        formula.CalcHypothesis,
		Aliases:     []string{"hypothesis", "test", "ztest", "ttest"},
		Description: "Einstichproben-z- oder t-Test mit p-Wert und Testentscheidung",
		Usage:       "hypothesentest x_bar=105 mu0=100 sigma=15 n=25 alpha=0.05 test=zweiseitig",
	},
	formula.CalcInterval: {
		Name:        formula.CalcInterval,
		Aliases:     []string{"ki", "interval", "confidence_interval"},
		Description: "Konfidenzintervall für μ (z oder t) oder für σ² (χ²)",
		Usage:       "konfidenzintervall x_bar=10 s=2.78 n=31 alpha=0.05 [fuer_varianz=ja]",
	},
	formula.CalcPower: {
		Name:        formula.CalcPower,
		Aliases:     []string{"power", "teststaerke"},
		Description: "Trennschärfe (1-β), benötigter Stichprobenumfang oder nachweisbares μ₁",
		Usage:       "trennschaerfe mu0=100 mu1=105 sigma=15 n=25 alpha=0.05 power=-",
	},
	formula.CalcBinomial: {
		Name:        formula.CalcBinomial,
		Aliases:     []string{"binom", "bin"},
		Description: "Binomialwahrscheinlichkeit P(X ~ k) für X ~ B(n, p)",
		Usage:       "binomial k=2 n=8 p=0.1 art=genau",
		Plottable:   true,
	},
	formula.CalcHypergeometric: {
		Name:        formula.CalcHypergeometric,
		Aliases:     []string{"hypergeometric", "hypergeo", "hyper"},
		Description: "Hypergeometrische Wahrscheinlichkeit, Ziehen ohne Zurücklegen",
		Usage:       "hypergeometrisch N=20 M=7 n=5 k=2 art=genau",
		Plottable:   true,
	},
	formula.CalcPoisson: {
		Name:        formula.CalcPoisson,
		Aliases:     []string{"pois"},
		Description: "Poisson-Wahrscheinlichkeit P(X ~ k) für X ~ Po(λ)",
		Usage:       "poisson k=3 lambda=2.5 art=höchstens",
		Plottable:   true,
	},
	formula.CalcCohensD: {
		Name:        formula.CalcCohensD,
		Aliases:     []string{"cohen", "effektstaerke", "effect_size"},
		Description: "Effektstärke d = (x̄ - μ₀) / σ mit Einordnung",
		Usage:       "cohens_d x_bar=105 mu0=100 sigma=15 d=-",
	},
	formula.CalcKSigma: {
		Name:        formula.CalcKSigma,
		Aliases:     []string{"ksigma", "k-sigma", "prognoseintervall"},
		Description: "Prognoseintervall μ ± kσ für eine Einzelbeobachtung",
		Usage:       "k_sigma mu=50 sigma=4 z=2",
	},
	formula.CalcDescriptive: {
		Name:        formula.CalcDescriptive,
		Aliases:     []string{"descriptive", "stddev", "deskriptiv"},
		Description: "Lage- und Streuungsmaße einer Datenreihe oder Tabellenspalte",
		Usage:       "standardabweichung daten=2,4,4,4,5,5,7,9 | file=daten.csv spalte=zeit",
	},
	formula.CalcCorrelation: {
		Name:        formula.CalcCorrelation,
		Aliases:     []string{"correlation", "korr", "kontingenz"},
		Description: "Pearson- und Spearman-Korrelation oder Kontingenzanalyse",
		Usage:       "korrelation x=1,2,3,4,5 y=2,4,5,4,5 | kontingenz=[[10,20],[30,40]]",
	},
}

// LookupCalculator resolves a calculator name or alias.
func LookupCalculator(name string) (CalculatorInfo, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	for _, calc := range formula.Calculators {
		info := calculatorInfos[calc]
		if key == string(calc) {
			return info, nil
		}
		for _, alias := range info.Aliases {
			if key == strings.ReplaceAll(alias, "-", "_") {
				return info, nil
			}
		}
	}
	return CalculatorInfo{}, errors.NotFound(fmt.Sprintf("calculator %q", name))
}

// ListCalculators returns every calculator in presentation order.
func ListCalculators() []CalculatorInfo {
	out := make([]CalculatorInfo, 0, len(formula.Calculators))
	for _, calc := range formula.Calculators {
		out = append(out, calculatorInfos[calc])
	}
	return out
}
