// Package table holds the in-memory descriptor table: named numeric
// columns over a fixed set of compound rows.
package table

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTable is returned when a table has no columns or no rows.
	ErrEmptyTable = errors.New("table: empty table")
	// ErrUnknownColumn is returned when a named column does not exist.
	ErrUnknownColumn = errors.New("table: unknown column")
)

// ErrDuplicateColumn indicates a descriptor name appearing more than once.
type ErrDuplicateColumn struct {
	Name string
}

func (e *ErrDuplicateColumn) Error() string {
	return fmt.Sprintf("table: duplicate column %q", e.Name)
}

// ErrRaggedColumn indicates a column whose length differs from the others.
type ErrRaggedColumn struct {
	Name string
	Want int
	Got  int
}

func (e *ErrRaggedColumn) Error() string {
	return fmt.Sprintf("table: column %q has %d rows, want %d", e.Name, e.Got, e.Want)
}

// Table is a rectangular matrix of named numeric descriptor columns.
// Rows are compounds; row order is stable for the session. A Table is
// immutable; dropping or selecting columns yields a new Table sharing
// the column slices.
type Table struct {
	names []string
	cols  [][]float64
	index map[string]int
}

// New builds a Table from column names and column-major values.
func New(names []string, cols [][]float64) (*Table, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("table: %d names for %d columns", len(names), len(cols))
	}
	if len(cols) == 0 || len(cols[0]) == 0 {
		return nil, ErrEmptyTable
	}

	rows := len(cols[0])
	index := make(map[string]int, len(names))
	for i, name := range names {
		if _, ok := index[name]; ok {
			return nil, &ErrDuplicateColumn{Name: name}
		}
		index[name] = i
		if len(cols[i]) != rows {
			return nil, &ErrRaggedColumn{Name: name, Want: rows, Got: len(cols[i])}
		}
	}

	return &Table{names: names, cols: cols, index: index}, nil
}

// Rows returns the number of compounds.
func (t *Table) Rows() int {
	return len(t.cols[0])
}

// Columns returns the number of descriptors.
func (t *Table) Columns() int {
	return len(t.cols)
}

// Names returns the descriptor names in column order.
// The returned slice must not be modified.
func (t *Table) Names() []string {
	return t.names
}

// Column returns the values of the i-th descriptor.
// The returned slice must not be modified.
func (t *Table) Column(i int) []float64 {
	return t.cols[i]
}

// ColumnByName returns the values of the named descriptor.
func (t *Table) ColumnByName(name string) ([]float64, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return t.cols[i], nil
}

// Select returns a new Table containing only the columns at the given
// indices, in the given order. Column data is shared, not copied.
func (t *Table) Select(indices []int) (*Table, error) {
	names := make([]string, len(indices))
	cols := make([][]float64, len(indices))
	for k, i := range indices {
		if i < 0 || i >= len(t.cols) {
			return nil, fmt.Errorf("table: column index %d out of range [0,%d)", i, len(t.cols))
		}
		names[k] = t.names[i]
		cols[k] = t.cols[i]
	}
	return New(names, cols)
}

// Drop returns a new Table without the columns at the given indices.
func (t *Table) Drop(indices []int) (*Table, error) {
	dropped := make(map[int]bool, len(indices))
	for _, i := range indices {
		dropped[i] = true
	}

	keep := make([]int, 0, len(t.cols)-len(dropped))
	for i := range t.cols {
		if !dropped[i] {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, ErrEmptyTable
	}
	return t.Select(keep)
}
