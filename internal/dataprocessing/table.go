package dataprocessing

import (
	"strings"
)

// Table is a cleaned CSV table with a column directory built from its header.
// Tables are read-only once the classifier has returned them.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// NewTable creates an empty table for the given normalized header
func NewTable(columns []string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, name := range t.columns {
		if _, exists := t.index[name]; !exists {
			t.index[name] = i
		}
	}
	return t
}

// Columns returns a copy of the column names
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column looks up a column position by exact name
func (t *Table) Column(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// ColumnsContaining returns the positions of every column whose name contains substr, in header order
func (t *Table) ColumnsContaining(substr string) []int {
	var positions []int
	for i, name := range t.columns {
		if strings.Contains(name, substr) {
			positions = append(positions, i)
		}
	}
	return positions
}

// FirstColumn returns the exact-name column when present, else the first column containing name
func (t *Table) FirstColumn(name string) (int, bool) {
	if i, ok := t.Column(name); ok {
		return i, true
	}
	if positions := t.ColumnsContaining(name); len(positions) > 0 {
		return positions[0], true
	}
	return 0, false
}

// Len is the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Value returns the cell at row i, column col
func (t *Table) Value(i, col int) string {
	return t.rows[i][col]
}

// Row returns a copy of row i
func (t *Table) Row(i int) []string {
	out := make([]string, len(t.rows[i]))
	copy(out, t.rows[i])
	return out
}

func (t *Table) appendRow(fields []string) {
	t.rows = append(t.rows, fields)
}
