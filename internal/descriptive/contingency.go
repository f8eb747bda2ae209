package descriptive

import (
	"fmt"
	"math"

	"statcalc/domain/core"
	"statcalc/ports"
)

// ContingencyResult holds the chi-square test of independence and the
// contingency coefficients of a table.
type ContingencyResult struct {
	N         float64     `json:"n"`
	ChiSquare float64     `json:"chi_square"`
	DF        int         `json:"df"`
	P         float64     `json:"p"`
	C         float64     `json:"c"`
	CCorr     float64     `json:"c_korr"`
	Expected  [][]float64 `json:"expected"`
	Corrected bool        `json:"yates"`
}

// Contingency tests independence of the rows and columns of table.
// 2×2 tables get Yates' continuity correction.
func Contingency(table [][]float64, dists ports.DistributionProvider) (ContingencyResult, error) {
	rows := len(table)
	if rows < 2 || len(table[0]) < 2 {
		return ContingencyResult{}, core.NewInsufficientParametersError("table needs at least 2×2 cells", "kontingenz")
	}
	cols := len(table[0])

	rowSum := make([]float64, rows)
	colSum := make([]float64, cols)
	var n float64
	for i, row := range table {
		if len(row) != cols {
			return ContingencyResult{}, core.NewDomainError("kontingenz", "rows differ in length")
		}
		for j, v := range row {
			if v < 0 {
				return ContingencyResult{}, core.NewDomainError("kontingenz", fmt.Sprintf("negative count %g", v))
			}
			rowSum[i] += v
			colSum[j] += v
			n += v
		}
	}

	res := ContingencyResult{N: n, DF: (rows - 1) * (cols - 1), Corrected: rows == 2 && cols == 2}
	res.Expected = make([][]float64, rows)
	for i := range table {
		res.Expected[i] = make([]float64, cols)
		for j := range table[i] {
			e := rowSum[i] * colSum[j] / n
			if e == 0 {
				return ContingencyResult{}, core.NewDomainError("kontingenz", "a row or column sums to zero")
			}
			res.Expected[i][j] = e

			diff := table[i][j] - e
			if res.Corrected {
				diff = math.Copysign(math.Max(math.Abs(diff)-0.5, 0), diff)
			}
			res.ChiSquare += diff * diff / e
		}
	}

	chi, err := dists.ChiSquare(float64(res.DF))
	if err != nil {
		return ContingencyResult{}, err
	}
	res.P = 1 - chi.CDF(res.ChiSquare)
	res.C = math.Sqrt(res.ChiSquare / (res.ChiSquare + n))
	m := float64(min(rows, cols))
	res.CCorr = res.C / math.Sqrt((m-1)/m)
	return res, nil
}

// ContingencyLabel describes the corrected coefficient.
func ContingencyLabel(c float64) string {
	switch {
	case c < 0.3:
		return "Schwache Kontingenz"
	case c < 0.5:
		return "Mittlere Kontingenz"
	}
	return "Starke Kontingenz"
}
