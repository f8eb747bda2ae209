package excel

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"statcalc/internal"
	"statcalc/internal/errors"
	"statcalc/ports"

	"github.com/xuri/excelize/v2"
)

const chartSheet = "Verteilung"

// ChartPlotter writes a distribution table with a mass and a cumulative
// chart into an .xlsx workbook.
type ChartPlotter struct {
	dir    string
	logger *internal.Logger
	now    func() time.Time
}

var _ ports.Plotter = (*ChartPlotter)(nil)

// NewChartPlotter creates a plotter that writes workbooks into dir.
func NewChartPlotter(dir string, logger *internal.Logger) *ChartPlotter {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ChartPlotter{dir: dir, logger: logger, now: time.Now}
}

// Plot consumes req.Points and returns the path of the written workbook.
func (p *ChartPlotter) Plot(ctx context.Context, req ports.PlotRequest) (string, error) {
	if req.Points == nil {
		return "", errors.InvalidInput("no points to plot")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", chartSheet); err != nil {
		return "", errors.Wrap(err, "failed to prepare chart sheet")
	}
	if err := f.SetSheetRow(chartSheet, "A1", &[]interface{}{"k", "P(X=k)", "P(X<=k)"}); err != nil {
		return "", errors.Wrap(err, "failed to write header")
	}

	row := 1
	highlightRow := 0
	cumulative := 0.0
	for k, prob := range req.Points {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		row++
		cumulative += prob
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(chartSheet, cell, &[]interface{}{k, prob, min(cumulative, 1)}); err != nil {
			return "", errors.Wrapf(err, "failed to write row for k=%d", k)
		}
		if k == req.Highlight {
			highlightRow = row
		}
	}
	if row == 1 {
		return "", errors.InvalidInput("no points to plot")
	}

	if highlightRow > 0 {
		if err := p.highlight(f, highlightRow); err != nil {
			return "", err
		}
	}

	title := req.Title
	if title == "" {
		title = req.Name
	}
	if err := f.AddChart(chartSheet, "E2", p.massChart(title, row)); err != nil {
		return "", errors.Wrap(err, "failed to add mass chart")
	}
	if err := f.AddChart(chartSheet, "E20", p.cumulativeChart(title, row)); err != nil {
		return "", errors.Wrap(err, "failed to add cumulative chart")
	}

	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return "", errors.FileError(p.dir, err)
	}
	path := filepath.Join(p.dir, p.fileName(req.Name))
	if err := f.SaveAs(path); err != nil {
		return "", errors.FileError(path, err)
	}

	p.logger.Debug("[ChartPlotter] wrote %d points to %s", row-1, path)
	return path, nil
}

func (p *ChartPlotter) highlight(f *excelize.File, row int) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFF2CC"}},
	})
	if err != nil {
		return errors.Wrap(err, "failed to create highlight style")
	}
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(3, row)
	return f.SetCellStyle(chartSheet, from, to, style)
}

func (p *ChartPlotter) massChart(title string, lastRow int) *excelize.Chart {
	return &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$1", chartSheet),
			Categories: rangeRef("A", lastRow),
			Values:     rangeRef("B", lastRow),
		}},
		Title:  []excelize.RichTextRun{{Text: title + ": P(X=k)"}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "k"}}},
		YAxis:  excelize.ChartAxis{MajorGridLines: true},
	}
}

func (p *ChartPlotter) cumulativeChart(title string, lastRow int) *excelize.Chart {
	return &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$C$1", chartSheet),
			Categories: rangeRef("A", lastRow),
			Values:     rangeRef("C", lastRow),
		}},
		Title:  []excelize.RichTextRun{{Text: title + ": P(X<=k)"}},
		Legend: excelize.ChartLegend{Position: "none"},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "k"}}},
		YAxis:  excelize.ChartAxis{MajorGridLines: true},
	}
}

func rangeRef(col string, lastRow int) string {
	return fmt.Sprintf("%s!$%s$2:$%s$%d", chartSheet, col, col, lastRow)
}

func (p *ChartPlotter) fileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" {
		name = "verteilung"
	}
	return fmt.Sprintf("%s_%s.xlsx", name, p.now().Format("20060102_150405.000"))
}
