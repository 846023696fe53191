// Package table models a meet-result sheet: named columns over rows of text cells.
//
// Every cell is stored as text. Lookups are by exact, case-sensitive column
// name. Every row always holds exactly one cell per column.
package table

import (
	"fmt"
	"strings"
)

// NotFound is returned by Index when a column is absent.
const NotFound = -1

// Delimiter separates fields when a table is serialized.
const Delimiter = ','

// Table is an ordered set of columns and the rows aligned to them.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New builds a Table after checking that column names are unique and that
// every row has one cell per column.
func New(columns []string, rows [][]string) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, ok := seen[c]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedRow, i+1, len(row), len(columns))
		}
	}
	return &Table{Columns: columns, Rows: rows}, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Index returns the position of the named column, or NotFound.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return NotFound
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool { return t.Index(name) != NotFound }

// AppendColumn adds a trailing column and an empty cell to every row.
// Callers check Has first; duplicates are not guarded here.
func (t *Table) AppendColumn(name string) {
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
}

// AppendColumns adds several trailing columns at once.
func (t *Table) AppendColumns(names ...string) {
	for _, name := range names {
		t.AppendColumn(name)
	}
}

// RemoveColumn deletes the named column. It reports whether anything was removed.
func (t *Table) RemoveColumn(name string) bool {
	idx := t.Index(name)
	if idx == NotFound {
		return false
	}
	t.removeAt(idx)
	return true
}

// RemoveEmptyColumns deletes every column whose cells are all empty and
// returns the names that were dropped.
func (t *Table) RemoveEmptyColumns() []string {
	var dropped []string
	for idx := len(t.Columns) - 1; idx >= 0; idx-- {
		if t.columnEmpty(idx) {
			dropped = append(dropped, t.Columns[idx])
			t.removeAt(idx)
		}
	}
	// Report in column order.
	for i, j := 0, len(dropped)-1; i < j; i, j = i+1, j-1 {
		dropped[i], dropped[j] = dropped[j], dropped[i]
	}
	return dropped
}

// Cat appends the rows of other, adding any columns this table lacks and
// placing cells by column name.
func (t *Table) Cat(other *Table) {
	var missing []string
	for _, c := range other.Columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	t.AppendColumns(missing...)
	mapping := make([]int, len(other.Columns))
	for i, c := range other.Columns {
		mapping[i] = t.Index(c)
	}
	for _, row := range other.Rows {
		build := make([]string, len(t.Columns))
		for i, cell := range row {
			build[mapping[i]] = cell
		}
		t.Rows = append(t.Rows, build)
	}
}

// ShallowClone returns a table with fresh column and row slices. Mutating
// the clone's layout or cells never shows through to t.
func (t *Table) ShallowClone() *Table {
	c := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = append(make([]string, 0, len(row)+1), row...)
	}
	return c
}

// Escape renders a cell for output, quoting it when it holds the delimiter,
// a quote, or a line break.
func Escape(value string) string {
	if !strings.ContainsAny(value, string(Delimiter)+"\"\r\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func (t *Table) columnEmpty(idx int) bool {
	for _, row := range t.Rows {
		if row[idx] != "" {
			return false
		}
	}
	return true
}

func (t *Table) removeAt(idx int) {
	t.Columns = append(t.Columns[:idx], t.Columns[idx+1:]...)
	for i, row := range t.Rows {
		t.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
}
