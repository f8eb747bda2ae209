package solver

import (
	"fmt"

	"statcalc/domain/core"
	"statcalc/domain/formula"
	"statcalc/internal/descriptive"
	"statcalc/ports"
)

func describe(res *formula.Result, req formula.Request) error {
	if len(req.X) == 0 {
		return core.NewInsufficientParametersError("no data given", "daten")
	}
	s, err := descriptive.Summarize(req.X, req.Population)
	if err != nil {
		return err
	}

	vars := res.Vars
	for sym, v := range map[core.Symbol]float64{
		formula.SymN:        float64(s.N),
		formula.SymMean:     s.Mean,
		formula.SymMedian:   s.Median,
		formula.SymVariance: s.Variance,
		formula.SymStdDev:   s.StdDev,
		formula.SymMin:      s.Min,
		formula.SymMax:      s.Max,
		formula.SymRange:    s.Range,
		formula.SymQ1:       s.Q1,
		formula.SymQ3:       s.Q3,
		formula.SymIQR:      s.IQR,
		formula.SymSumSq:    s.SumSquares,
	} {
		vars = vars.WithDerived(sym, num(v))
	}
	res.Vars = vars

	kind := "Stichprobe (n-1)"
	if s.Population {
		kind = "Grundgesamtheit (n)"
	}
	res.Labels = append(res.Labels, formula.Label{Of: formula.SymVariance, Text: kind})
	return nil
}

func correlate(res *formula.Result, req formula.Request, dists ports.DistributionProvider) error {
	if len(req.X) == 0 || len(req.Y) == 0 {
		return core.NewInsufficientParametersError("x and y, or kontingenz, are required", "x", "y")
	}
	c, err := descriptive.Correlate(req.X, req.Y, dists)
	if err != nil {
		return err
	}

	res.Vars = res.Vars.WithDerived(formula.SymN, core.NewInt(int64(c.N))).
		WithDerived(formula.SymR, num(c.Pearson)).
		WithDerived(formula.SymRP, num(c.PearsonP)).
		WithDerived(formula.SymRho, num(c.Spearman)).
		WithDerived(formula.SymRhoP, num(c.SpearmanP)).
		WithDerived(formula.SymRankD2, num(c.RankD2))
	res.Labels = append(res.Labels,
		formula.Label{Of: formula.SymR, Text: descriptive.StrengthLabel(c.Pearson)},
		formula.Label{Of: formula.SymR, Text: descriptive.DirectionLabel(c.Pearson)},
		formula.Label{Of: formula.SymRP, Text: significance(c.PearsonP)},
		formula.Label{Of: formula.SymRho, Text: descriptive.StrengthLabel(c.Spearman)},
	)
	return nil
}

func contingency(res *formula.Result, req formula.Request, dists ports.DistributionProvider) error {
	c, err := descriptive.Contingency(req.Table, dists)
	if err != nil {
		return err
	}

	res.Vars = res.Vars.WithDerived(formula.SymN, num(c.N)).
		WithDerived(formula.SymChi2, num(c.ChiSquare)).
		WithDerived(formula.SymDF, core.NewInt(int64(c.DF))).
		WithDerived(formula.SymP, num(c.P)).
		WithDerived(formula.SymC, num(c.C)).
		WithDerived(formula.SymCCorr, num(c.CCorr))
	res.Labels = append(res.Labels,
		formula.Label{Of: formula.SymCCorr, Text: descriptive.ContingencyLabel(c.CCorr)},
		formula.Label{Of: formula.SymP, Text: significance(c.P)},
	)
	if c.Corrected {
		res.Warn("2×2 table: chi-square uses Yates' continuity correction")
	}
	for i, row := range c.Expected {
		for j, e := range row {
			if e < 5 {
				res.Warn(fmt.Sprintf("expected count %.2f in cell (%d,%d) is below 5", e, i+1, j+1))
			}
		}
	}
	return nil
}

func significance(p float64) string {
	if p < 0.05 {
		return "Signifikant (p < 0.05)"
	}
	return "Nicht signifikant (p >= 0.05)"
}
