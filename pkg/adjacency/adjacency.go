// Package adjacency provides a square, label-indexed adjacency matrix.
//
// Rows and columns share the same labels in the same order. Cell (r, c) is
// true when there is an edge from label r to label c.
package adjacency

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Common errors
var (
	ErrUnknownLabel = errors.New("unknown row label")
	ErrNotSquare    = errors.New("matrix is not square")
	ErrInvalidCell  = errors.New("invalid adjacency cell")
	ErrLabelOrder   = errors.New("row labels do not match column labels")
)

// Table is a read-only view of an adjacency matrix.
//
// Row returns the cells of the row labelled label, aligned with Columns().
// An unknown label must return an error wrapping ErrUnknownLabel.
type Table interface {
	Columns() []string
	Row(label string) ([]bool, error)
}

// Matrix is an in-memory adjacency matrix.
type Matrix struct {
	labels []string
	index  map[string]int
	cells  [][]bool
}

// NewMatrix builds a Matrix from labels and a len(labels) x len(labels)
// grid of cells. Labels must be unique.
func NewMatrix(labels []string, cells [][]bool) (*Matrix, error) {
	if len(cells) != len(labels) {
		return nil, fmt.Errorf("%w: %d labels, %d rows", ErrNotSquare, len(labels), len(cells))
	}
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		if _, dup := index[l]; dup {
			return nil, fmt.Errorf("duplicate label %q", l)
		}
		index[l] = i
	}
	grid := make([][]bool, len(cells))
	for i, row := range cells {
		if len(row) != len(labels) {
			return nil, fmt.Errorf("%w: row %q has %d cells, want %d", ErrNotSquare, labels[i], len(row), len(labels))
		}
		grid[i] = append([]bool(nil), row...)
	}
	return &Matrix{
		labels: append([]string(nil), labels...),
		index:  index,
		cells:  grid,
	}, nil
}

// Columns returns the column labels in order.
func (m *Matrix) Columns() []string {
	return append([]string(nil), m.labels...)
}

// Len returns the number of labels.
func (m *Matrix) Len() int { return len(m.labels) }

// Row returns the row labelled label.
func (m *Matrix) Row(label string) ([]bool, error) {
	i, ok := m.index[label]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}
	return append([]bool(nil), m.cells[i]...), nil
}

// Children returns the labels of the truthy cells of a row, in column order.
func Children(t Table, label string) ([]string, error) {
	row, err := t.Row(label)
	if err != nil {
		return nil, err
	}
	cols := t.Columns()
	if len(row) != len(cols) {
		return nil, fmt.Errorf("%w: row %q has %d cells, want %d", ErrNotSquare, label, len(row), len(cols))
	}
	children := make([]string, 0, len(row))
	for i, edge := range row {
		if edge {
			children = append(children, cols[i])
		}
	}
	return children, nil
}

// ParseCell interprets a cell as a truth value.
//
// Accepted true values: 1, true, t, yes, y, x, and any non-zero number.
// Accepted false values: 0, false, f, no, n, and the empty string.
func ParseCell(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "false", "f", "no", "n":
		return false, nil
	case "1", "true", "t", "yes", "y", "x":
		return true, nil
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f != 0, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidCell, s)
}

// ParseCSV reads a matrix in the layout written by spreadsheet tools:
//
//	,A,B,C
//	A,0,1,1
//	B,0,0,1
//	C,1,0,0
//
// The corner cell is ignored. Row labels must match the header labels, in
// the same order.
func ParseCSV(r io.Reader) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("empty adjacency csv")
	}

	header := records[0]
	labels := make([]string, len(header)-1)
	for i, h := range header[1:] {
		labels[i] = strings.TrimSpace(h)
	}

	rows := records[1:]
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("%w: %d columns, %d rows", ErrNotSquare, len(labels), len(rows))
	}

	cells := make([][]bool, len(rows))
	for i, rec := range rows {
		if got := strings.TrimSpace(rec[0]); got != labels[i] {
			return nil, fmt.Errorf("%w: row %d is %q, want %q", ErrLabelOrder, i+1, got, labels[i])
		}
		cells[i] = make([]bool, len(labels))
		for j, raw := range rec[1:] {
			v, err := ParseCell(raw)
			if err != nil {
				return nil, fmt.Errorf("row %q column %q: %w", labels[i], labels[j], err)
			}
			cells[i][j] = v
		}
	}
	return NewMatrix(labels, cells)
}
