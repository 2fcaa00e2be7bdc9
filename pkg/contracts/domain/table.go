package domain

// Value is a single raw cell. A null value is a cell that was absent or empty
// in the uploaded export.
type Value struct {
	Text  string `json:"text"`
	Valid bool   `json:"valid"`
}

// NullValue returns an absent cell.
func NullValue() Value {
	return Value{}
}

// StringValue returns a present cell holding s.
func StringValue(s string) Value {
	return Value{Text: s, Valid: true}
}

// IsNull reports whether the cell is absent.
func (v Value) IsNull() bool {
	return !v.Valid
}

// String returns the cell text, or the empty string for a null cell.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return v.Text
}

// RawTable is the rectangular table produced by ingestion. Rows are addressed
// by index and cells by column position; every row has exactly one value per
// declared column.
type RawTable struct {
	Columns []string  `json:"columns"`
	Rows    [][]Value `json:"-"`
}

// NumRows returns the number of data rows.
func (t *RawTable) NumRows() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *RawTable) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at row and column position. Out of range positions
// yield a null value.
func (t *RawTable) Cell(row, col int) Value {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return NullValue()
	}
	return t.Rows[row][col]
}

// Lookup returns the value of the named column in the given row.
func (t *RawTable) Lookup(row int, column string) Value {
	return t.Cell(row, t.ColumnIndex(column))
}
