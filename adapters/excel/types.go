package excel

// Table is a header row plus raw string cells, as read from CSV or Excel.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Series is one numeric column pulled out of a Table.
type Series struct {
	Name   string
	Values []float64
}
