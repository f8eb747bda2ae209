package formula

import (
	"iter"

	"statcalc/domain/core"
)

// Calculator identifies a user-facing calculator.
type Calculator string

const (
	CalcZScore         Calculator = "z_score"
	CalcHypothesis     Calculator = "hypothesentest"
	CalcInterval       Calculator = "konfidenzintervall"
	CalcPower          Calculator = "trennschaerfe"
	CalcBinomial       Calculator = "binomial"
	CalcHypergeometric Calculator = "hypergeometrisch"
	CalcPoisson        Calculator = "poisson"
	CalcCohensD        Calculator = "cohens_d"
	CalcKSigma         Calculator = "k_sigma"
	CalcDescriptive    Calculator = "standardabweichung"
	CalcCorrelation    Calculator = "korrelation"
)

// Calculators lists every calculator in presentation order.
var Calculators = []Calculator{
	CalcZScore, CalcHypothesis, CalcInterval, CalcPower,
	CalcBinomial, CalcHypergeometric, CalcPoisson,
	CalcCohensD, CalcKSigma, CalcDescriptive, CalcCorrelation,
}

// Family is the closed-form model chosen for one invocation.
type Family string

const (
	ZScore          Family = "Z_SCORE"
	ZTest           Family = "Z_TEST"
	TTest           Family = "T_TEST"
	Chi2Variance    Family = "CHI2_VARIANCE"
	PowerOneSampleZ Family = "POWER_ONE_SAMPLE_Z"
	PowerOneSampleT Family = "POWER_ONE_SAMPLE_T"
	PowerTwoSampleT Family = "POWER_TWO_SAMPLE_T"
	Binomial        Family = "BINOMIAL"
	Hypergeometric  Family = "HYPERGEOMETRIC"
	Poisson         Family = "POISSON"
	CohensD         Family = "COHENS_D"
	KSigma          Family = "K_SIGMA"
	Descriptive     Family = "DESCRIPTIVE"
	Correlation     Family = "CORRELATION"
	Contingency     Family = "CONTINGENCY"
)

// Formula symbols.
const (
	SymZ          core.Symbol = "z"
	SymT          core.Symbol = "t"
	SymP          core.Symbol = "p"
	SymX          core.Symbol = "x"
	SymXBar       core.Symbol = "x_bar"
	SymMu         core.Symbol = "mu"
	SymMu0        core.Symbol = "mu0"
	SymMu1        core.Symbol = "mu1"
	SymMu2        core.Symbol = "mu2"
	SymSigma      core.Symbol = "sigma"
	SymVar        core.Symbol = "var"
	SymS          core.Symbol = "s"
	SymSSq        core.Symbol = "s_sq"
	SymS1         core.Symbol = "s1"
	SymS2         core.Symbol = "s2"
	SymN          core.Symbol = "n"
	SymN1         core.Symbol = "n1"
	SymN2         core.Symbol = "n2"
	SymAlpha      core.Symbol = "alpha"
	SymPower      core.Symbol = "power"
	SymD          core.Symbol = "d"
	SymConf       core.Symbol = "conf"
	SymK          core.Symbol = "k"
	SymLambda     core.Symbol = "lambda"
	SymPopulation core.Symbol = "N"
	SymSuccesses  core.Symbol = "M"
)

// Derived symbols.
const (
	SymDF       core.Symbol = "df"
	SymSE       core.Symbol = "se"
	SymCrit     core.Symbol = "crit"
	SymDelta    core.Symbol = "delta"
	SymBeta     core.Symbol = "beta"
	SymPooledS  core.Symbol = "s_p"
	SymLower    core.Symbol = "lower"
	SymUpper    core.Symbol = "upper"
	SymSDLower  core.Symbol = "sd_lower"
	SymSDUpper  core.Symbol = "sd_upper"
	SymProb     core.Symbol = "prob"
	SymExpected core.Symbol = "expected"
	SymVariance core.Symbol = "variance"
	SymStdDev   core.Symbol = "sd"
	SymMean     core.Symbol = "mean"
	SymMedian   core.Symbol = "median"
	SymMin      core.Symbol = "min"
	SymMax      core.Symbol = "max"
	SymRange    core.Symbol = "range"
	SymQ1       core.Symbol = "q1"
	SymQ3       core.Symbol = "q3"
	SymIQR      core.Symbol = "iqr"
	SymSumSq    core.Symbol = "ss"
	SymR        core.Symbol = "r"
	SymRP       core.Symbol = "r_p"
	SymRho      core.Symbol = "rho"
	SymRhoP     core.Symbol = "rho_p"
	SymRankD2   core.Symbol = "d2"
	SymChi2     core.Symbol = "chi2"
	SymC        core.Symbol = "c"
	SymCCorr    core.Symbol = "c_korr"
)

// Symbols returns the ordered solve vocabulary of the family.
func (f Family) Symbols() []core.Symbol {
	switch f {
	case ZScore:
		return []core.Symbol{SymZ, SymX, SymMu, SymSigma, SymP}
	case ZTest:
		return []core.Symbol{SymXBar, SymMu0, SymSigma, SymN, SymZ, SymP, SymAlpha}
	case TTest:
		return []core.Symbol{SymXBar, SymMu0, SymS, SymN, SymT, SymP, SymAlpha}
	case Chi2Variance:
		return []core.Symbol{SymS, SymN, SymAlpha}
	case PowerOneSampleZ:
		return []core.Symbol{SymMu0, SymMu1, SymSigma, SymN, SymAlpha, SymPower}
	case PowerOneSampleT:
		return []core.Symbol{SymMu0, SymMu1, SymS, SymN, SymAlpha, SymPower}
	case PowerTwoSampleT:
		return []core.Symbol{SymMu1, SymMu2, SymS1, SymS2, SymN1, SymN2, SymAlpha, SymPower}
	case Binomial:
		return []core.Symbol{SymK, SymN, SymP}
	case Hypergeometric:
		return []core.Symbol{SymK, SymN, SymPopulation, SymSuccesses}
	case Poisson:
		return []core.Symbol{SymK, SymLambda}
	case CohensD:
		return []core.Symbol{SymD, SymXBar, SymMu0, SymSigma}
	case KSigma:
		return []core.Symbol{SymMu, SymSigma, SymZ, SymConf}
	}
	return nil
}

// TestSide is the alternative hypothesis direction.
type TestSide string

const (
	TwoSided TestSide = "zweiseitig"
	Left     TestSide = "links"
	Right    TestSide = "rechts"
)

// OrDefault maps the zero side to TwoSided.
func (s TestSide) OrDefault() TestSide {
	if s == "" {
		return TwoSided
	}
	return s
}

// CountKind selects which event of a discrete distribution is measured.
type CountKind string

const (
	Exactly  CountKind = "genau"
	AtMost   CountKind = "höchstens"
	AtLeast  CountKind = "mindestens"
	MoreThan CountKind = "mehr_als"
	LessThan CountKind = "weniger_als"
)

func (k CountKind) OrDefault() CountKind {
	if k == "" {
		return Exactly
	}
	return k
}

// Relation renders the kind as an inequality on X.
func (k CountKind) Relation() string {
	switch k.OrDefault() {
	case AtMost:
		return "<="
	case AtLeast:
		return ">="
	case MoreThan:
		return ">"
	case LessThan:
		return "<"
	}
	return "="
}

// Request is one parsed calculator invocation.
type Request struct {
	Calculator  Calculator
	Vars        core.VariableSet
	Side        TestSide
	Kind        CountKind
	ForVariance bool
	Population  bool
	X           []float64
	Y           []float64
	Table       [][]float64
	File        string
	Columns     []string
	Graph       bool
}

// Decision is the outcome of a hypothesis test.
type Decision struct {
	Statistic core.Symbol `json:"statistic"`
	Value     float64     `json:"value"`
	Critical  float64     `json:"critical"`
	Reject    bool        `json:"reject"`
}

// Interval is a closed or half-open range; infinite bounds mark open ends.
type Interval struct {
	Name  string  `json:"name"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Label is a verbal interpretation of a derived value.
type Label struct {
	Of   core.Symbol `json:"of"`
	Text string      `json:"text"`
}

// Result is the solved state of one invocation.
type Result struct {
	Calculator Calculator
	Family     Family
	Vars       core.VariableSet
	Side       TestSide
	Kind       CountKind
	Decision   *Decision
	Intervals  []Interval
	Labels     []Label
	Warnings   []string
	Points     iter.Seq2[int, float64]
}

// Warn appends a warning message.
func (r *Result) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
