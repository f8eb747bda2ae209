package excel

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"statcalc/internal"
	"statcalc/internal/errors"
	"statcalc/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func quietLogger() *internal.Logger {
	return internal.NewLoggerTo(os.Stderr, internal.LogLevelError)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCSVSemicolonWithBOM(t *testing.T) {
	path := writeFile(t, "zeiten.csv", "\ufeffname;zeit;gewicht\nA;12,5;70\nB;13;n/a\nC;\u200b14;80\n")

	table, err := NewDataReader(path, quietLogger()).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "zeit", "gewicht"}, table.Headers)
	assert.Len(t, table.Rows, 3)

	series, err := table.Columns("zeit")
	require.NoError(t, err)
	assert.Equal(t, "zeit", series[0].Name)
	assert.Equal(t, []float64{12.5, 13, 14}, series[0].Values)
}

func TestColumnsStayPaired(t *testing.T) {
	path := writeFile(t, "paare.csv", "x,y\n1,2\n2,\n3,6\nabc,8\n4,8\n")

	series, err := LoadColumns(path, quietLogger(), "0", "Y")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, []float64{1, 3, 4}, series[0].Values)
	assert.Equal(t, []float64{2, 6, 8}, series[1].Values)
}

func TestColumnErrors(t *testing.T) {
	path := writeFile(t, "a.csv", "a,b\n1,2\n")

	_, err := LoadColumns(path, quietLogger(), "c")
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = LoadColumns(path, quietLogger(), "5")
	require.Error(t, err)

	_, err = LoadColumns(filepath.Join(t.TempDir(), "missing.csv"), quietLogger(), "0")
	require.Error(t, err)
	assert.Equal(t, errors.CodeFileError, errors.GetCode(err))

	headerOnly := writeFile(t, "h.csv", "a,b\n")
	_, err = LoadColumns(headerOnly, quietLogger(), "0")
	assert.Equal(t, errors.CodeFileError, errors.GetCode(err))
}

func TestReadExcelFirstSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daten.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Messung"))
	require.NoError(t, f.SetSheetRow("Messung", "A1", &[]interface{}{"wert"}))
	for i, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, f.SetCellValue("Messung", cell, v))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	series, err := LoadColumns(path, quietLogger(), "wert")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4, 4, 4, 5, 5, 7, 9}, series[0].Values)
}

func TestReadJSONRecords(t *testing.T) {
	path := writeFile(t, "messung.json", `{"data": [
		{"id": "a", "zeit": 12.5, "gewicht": 70},
		{"id": "b", "zeit": "13", "gewicht": null},
		{"id": "c", "gewicht": 80, "zeit": 14}
	]}`)

	table, err := NewDataReader(path, quietLogger()).ReadData()
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "zeit", "gewicht"}, table.Headers)

	series, err := table.Columns("zeit", "gewicht")
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, 14}, series[0].Values)
	assert.Equal(t, []float64{70, 80}, series[1].Values)
}

func TestReadJSONScalarArray(t *testing.T) {
	rows, err := ReadJSON([]byte(`[1, 2.5, "3,5"]`))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"wert"}, {"1"}, {"2.5"}, {"3,5"}}, rows)

	_, err = ReadJSON([]byte(`{"data": 5}`))
	assert.Error(t, err)
	_, err = ReadJSON([]byte(`{not json`))
	assert.Error(t, err)
}

func TestSniffDelimiter(t *testing.T) {
	assert.Equal(t, ';', sniffDelimiter("a;b;c"))
	assert.Equal(t, ',', sniffDelimiter("a,b,c"))
	assert.Equal(t, ',', sniffDelimiter("single"))
}

func TestChartPlotterWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	plotter := NewChartPlotter(dir, quietLogger())
	plotter.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	masses := []float64{0.25, 0.5, 0.25}
	req := ports.PlotRequest{
		Title: "Binomial n=2 p=1/2",
		Name:  "binomial n=2",
		Points: func(yield func(int, float64) bool) {
			for k, m := range masses {
				if !yield(k, m) {
					return
				}
			}
		},
		Highlight: 1,
	}

	path, err := plotter.Plot(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "binomial_n_2_20240102_030405"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(chartSheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"k", "P(X=k)", "P(X<=k)"}, rows[0])
	assert.Equal(t, "2", rows[3][0])
	assert.Equal(t, "1", rows[3][2])
}

func TestChartPlotterRejectsEmptySequence(t *testing.T) {
	plotter := NewChartPlotter(t.TempDir(), quietLogger())

	_, err := plotter.Plot(context.Background(), ports.PlotRequest{Name: "leer"})
	require.Error(t, err)

	_, err = plotter.Plot(context.Background(), ports.PlotRequest{
		Name:   "leer",
		Points: func(yield func(int, float64) bool) {},
	})
	require.Error(t, err)
}

func TestChartPlotterHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewChartPlotter(t.TempDir(), quietLogger()).Plot(ctx, ports.PlotRequest{
		Name: "x",
		Points: func(yield func(int, float64) bool) {
			yield(0, 1)
		},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
