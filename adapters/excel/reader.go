package excel

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"statcalc/internal"
	"statcalc/internal/errors"

	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
)

// invisible characters that spreadsheet exports like to leave in cells
var invisibleReplacer = strings.NewReplacer("\ufeff", "", "\u200b", "", "\u00a0", " ")

// DataReader handles reading Excel, CSV and JSON files
type DataReader struct {
	filePath string
	fileType string // "xlsx", "json" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a new data reader, picking the format from the extension
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	fileType := "csv"
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".xlsx", ".xlsm":
		fileType = "xlsx"
	case ".json":
		fileType = "json"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// ReadData reads the header row and all data rows.
func (r *DataReader) ReadData() (*Table, error) {
	r.logger.Debug("[DataReader] reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); err != nil {
		return nil, errors.FileError(r.filePath, err)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	switch r.fileType {
	case "xlsx":
		rows, err = r.readExcelRows()
	case "json":
		rows, err = r.readJSONRows()
	default:
		rows, err = r.readCSVRows()
	}
	if err != nil {
		return nil, errors.FileError(r.filePath, err)
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", r.filePath, float64(time.Since(start).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.FileError(r.filePath, fmt.Errorf("file must have a header row and at least one data row"))
	}
	return processRows(rows), nil
}

// readExcelRows reads the first sheet of the workbook.
func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheets[0], err)
	}
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()
	return ReadCSV(file)
}

func (r *DataReader) readJSONRows() ([][]string, error) {
	content, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return ReadJSON(content)
}

// ReadJSON flattens an array of records, or the "data" array of an object,
// into a header row and cell rows. Record keys become headers in order of
// first appearance. A bare array of scalars becomes the single column "wert".
func ReadJSON(content []byte) ([][]string, error) {
	if !gjson.ValidBytes(content) {
		return nil, fmt.Errorf("invalid JSON")
	}
	data := gjson.ParseBytes(content)
	if data.IsObject() {
		data = data.Get("data")
	}
	if !data.IsArray() {
		return nil, fmt.Errorf("expected an array of records or an object with a data array")
	}
	records := data.Array()

	var headers []string
	position := make(map[string]int)
	for _, rec := range records {
		if !rec.IsObject() {
			continue
		}
		rec.ForEach(func(key, _ gjson.Result) bool {
			if _, ok := position[key.String()]; !ok {
				position[key.String()] = len(headers)
				headers = append(headers, key.String())
			}
			return true
		})
	}

	if len(headers) == 0 {
		rows := [][]string{{"wert"}}
		for _, rec := range records {
			rows = append(rows, []string{rec.String()})
		}
		return rows, nil
	}

	rows := [][]string{headers}
	for _, rec := range records {
		row := make([]string, len(headers))
		if !rec.IsObject() {
			rows = append(rows, row)
			continue
		}
		rec.ForEach(func(key, value gjson.Result) bool {
			row[position[key.String()]] = value.String()
			return true
		})
		rows = append(rows, row)
	}
	return rows, nil
}

// ReadCSV reads comma or semicolon separated rows, picking the delimiter
// from the header line.
func ReadCSV(src io.Reader) ([][]string, error) {
	br := bufio.NewReader(src)
	header, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	firstLine, _, _ := strings.Cut(string(header), "\n")

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(firstLine)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return rows, nil
}

func sniffDelimiter(line string) rune {
	if strings.Count(line, ";") > strings.Count(line, ",") {
		return ';'
	}
	return ','
}

// processRows strips invisible characters and splits off the header.
func processRows(rows [][]string) *Table {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = cleanCell(h)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cleanCell(cell)
		}
		data = append(data, cells)
	}
	return &Table{Headers: headers, Rows: data}
}

func cleanCell(s string) string {
	return strings.TrimSpace(invisibleReplacer.Replace(s))
}

// ColumnIndex resolves a column by header name (case-insensitive) or 0-based index.
func (t *Table) ColumnIndex(ref string) (int, error) {
	ref = cleanCell(ref)
	for i, h := range t.Headers {
		if strings.EqualFold(h, ref) {
			return i, nil
		}
	}
	if idx, err := strconv.Atoi(ref); err == nil {
		if idx < 0 || idx >= len(t.Headers) {
			return 0, fmt.Errorf("column index %d out of range (file has %d columns)", idx, len(t.Headers))
		}
		return idx, nil
	}
	return 0, fmt.Errorf("column %q not found (available: %s)", ref, strings.Join(t.Headers, ", "))
}

// Columns extracts the referenced columns row by row. A row is kept only
// when every referenced cell is numeric, so the returned series stay paired.
func (t *Table) Columns(refs ...string) ([]Series, error) {
	indices := make([]int, len(refs))
	series := make([]Series, len(refs))
	for i, ref := range refs {
		idx, err := t.ColumnIndex(ref)
		if err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
		indices[i] = idx
		series[i].Name = t.Headers[idx]
	}

	values := make([]float64, len(refs))
rows:
	for _, row := range t.Rows {
		for i, idx := range indices {
			if idx >= len(row) {
				continue rows
			}
			v, ok := parseCell(row[idx])
			if !ok {
				continue rows
			}
			values[i] = v
		}
		for i := range series {
			series[i].Values = append(series[i].Values, values[i])
		}
	}
	return series, nil
}

// parseCell accepts plain floats and decimal commas.
func parseCell(cell string) (float64, bool) {
	if cell == "" {
		return 0, false
	}
	if strings.Count(cell, ",") == 1 && !strings.Contains(cell, ".") {
		cell = strings.Replace(cell, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// LoadColumns reads path and returns the referenced numeric columns.
func LoadColumns(path string, logger *internal.Logger, refs ...string) ([]Series, error) {
	table, err := NewDataReader(path, logger).ReadData()
	if err != nil {
		return nil, err
	}
	return table.Columns(refs...)
}
