package domain

import (
	"strings"
)

// RawTable is an uninterpreted tabular input: a header plus string records,
// exactly as loaded from the source file. Row order is the source file order.
type RawTable struct {
	Header  []string
	Records [][]string
}

// ColumnIndex returns the position of the named column, matching
// case-insensitively against trimmed header cells. Returns -1 when absent.
func (r *RawTable) ColumnIndex(name string) int {
	for i, h := range r.Header {
		if strings.EqualFold(strings.TrimSpace(h), name) {
			return i
		}
	}
	return -1
}

// Table is an ordered collection of transactions plus the set of logical
// columns that have been populated so far. Row order is preserved through
// every stage except aggregation.
type Table struct {
	columns []string
	Rows    []Transaction
}

// NewTable creates a table advertising the given columns.
func NewTable(columns ...string) *Table {
	t := &Table{}
	for _, c := range columns {
		t.AddColumn(c)
	}
	return t
}

// Columns returns the logical columns in the order they were added.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// HasColumn reports whether the named column has been populated.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn records that the named column is now populated. Adding an
// existing column is a no-op.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.columns = append(t.columns, name)
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// MissingColumns returns the subset of required that the table does not have,
// preserving the order of required.
func (t *Table) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}
