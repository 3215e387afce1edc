// Package dataset holds the immutable, loaded table that a visualization pass
// reads. Columns are stored as trimmed raw strings; numeric parsing happens on
// read and is cached per column.
package dataset

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Common errors for table construction.
var (
	ErrNoColumns       = errors.New("dataset has no columns")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedRow       = errors.New("row length does not match header")
)

// Table is a column-major, immutable dataset.
type Table struct {
	names []string
	index map[string]int
	cols  [][]string

	once   []sync.Once
	floats [][]float64
	valid  [][]bool
}

// New builds a Table from a header and row-major records. Short rows are
// padded with empty (missing) cells; long rows are an error.
func New(names []string, rows [][]string) (*Table, error) {
	if len(names) == 0 {
		return nil, ErrNoColumns
	}
	t := &Table{
		names:  make([]string, len(names)),
		index:  make(map[string]int, len(names)),
		cols:   make([][]string, len(names)),
		once:   make([]sync.Once, len(names)),
		floats: make([][]float64, len(names)),
		valid:  make([][]bool, len(names)),
	}
	for i, n := range names {
		n = strings.TrimSpace(n)
		if _, dup := t.index[n]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		t.names[i] = n
		t.index[n] = i
		t.cols[i] = make([]string, len(rows))
	}
	for r, row := range rows {
		if len(row) > len(names) {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrRaggedRow, r, len(row), len(names))
		}
		for c := range names {
			if c < len(row) {
				t.cols[c][r] = strings.TrimSpace(row[c])
			}
		}
	}
	return t, nil
}

// MustNew is New for tests and literals; it panics on error.
func MustNew(names []string, rows [][]string) *Table {
	t, err := New(names, rows)
	if err != nil {
		panic(err)
	}
	return t
}

// FromColumns builds a Table from named columns of equal length.
func FromColumns(names []string, columns [][]string) (*Table, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%d names for %d columns", len(names), len(columns))
	}
	n := 0
	if len(columns) > 0 {
		n = len(columns[0])
	}
	rows := make([][]string, n)
	for r := range rows {
		rows[r] = make([]string, len(columns))
		for c, col := range columns {
			if len(col) != n {
				return nil, fmt.Errorf("%w: column %q has %d values, want %d", ErrRaggedRow, names[c], len(col), n)
			}
			rows[r][c] = col[r]
		}
	}
	return New(names, rows)
}

func (t *Table) Len() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0])
}

func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) Value(i int, name string) string {
	c, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.cols[c]) {
		return ""
	}
	return t.cols[c][i]
}

func (t *Table) Float(i int, name string) (float64, bool) {
	c, ok := t.index[name]
	if !ok || i < 0 || i >= len(t.cols[c]) {
		return 0, false
	}
	t.once[c].Do(func() { t.parseColumn(c) })
	return t.floats[c][i], t.valid[c][i]
}

func (t *Table) parseColumn(c int) {
	col := t.cols[c]
	fs := make([]float64, len(col))
	ok := make([]bool, len(col))
	for i, s := range col {
		fs[i], ok[i] = ParseFloat(s)
	}
	t.floats[c] = fs
	t.valid[c] = ok
}
