// Package table provides the in-memory tabular values the MATT pipeline
// operates on. A Table is an ordered set of named columns over string
// cells; the empty string is the null value. Keeping cells as strings means
// every column of the raw extract survives the pipeline untouched, even
// the ones the transform knows nothing about.
package table

import (
	"fmt"
)

// Table is an ordered collection of named columns over string-cell rows.
// The zero value is not usable; construct with New.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates a table with the given column names. Column names must be
// unique; the caller controls ordering.
func New(columns []string) (*Table, error) {
	index := make(map[string]int, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}
	return &Table{
		columns: append([]string(nil), columns...),
		index:   index,
	}, nil
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	return len(t.columns)
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// AppendRow adds a row. Short rows are padded with empty cells so a ragged
// source file cannot produce out-of-range reads later; long rows are an
// error because they indicate a structural problem in the source.
func (t *Table) AppendRow(cells []string) error {
	if len(cells) > len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	row := make([]string, len(t.columns))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Get returns the cell at the given row for the named column. The empty
// string doubles as both the null value and the missing-column answer only
// when ok is consulted; callers that validated their columns up front may
// ignore ok.
func (t *Table) Get(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return ""
	}
	return t.rows[row][i]
}

// Set overwrites the cell at the given row for the named column.
func (t *Table) Set(row int, column, value string) error {
	i, ok := t.index[column]
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	t.rows[row][i] = value
	return nil
}

// Row returns a copy of the row at the given index.
func (t *Table) Row(i int) []string {
	if i < 0 || i >= len(t.rows) {
		return nil
	}
	return append([]string(nil), t.rows[i]...)
}

// AddColumn appends a new column populated from values. values may be
// shorter than the row count; missing entries become null. A nil values
// slice adds an all-null column.
func (t *Table) AddColumn(name string, values []string) error {
	if _, dup := t.index[name]; dup {
		return fmt.Errorf("column %q already exists", name)
	}
	if len(values) > len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		v := ""
		if i < len(values) {
			v = values[i]
		}
		t.rows[i] = append(t.rows[i], v)
	}
	return nil
}

// RenameColumn renames a column in place, preserving its position.
func (t *Table) RenameColumn(from, to string) error {
	i, ok := t.index[from]
	if !ok {
		return fmt.Errorf("unknown column %q", from)
	}
	if _, dup := t.index[to]; dup {
		return fmt.Errorf("column %q already exists", to)
	}
	delete(t.index, from)
	t.index[to] = i
	t.columns[i] = to
	return nil
}

// Clone returns a deep copy. The pipeline never mutates caller-supplied
// tables; each stage clones before writing.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: append([]string(nil), t.columns...),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]string, len(t.rows)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for i, row := range t.rows {
		out.rows[i] = append([]string(nil), row...)
	}
	return out
}

// MissingColumns returns the entries of required that the table lacks, in
// the order given.
func (t *Table) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
