// Package table provides a small string-typed tabular value used to collect
// HTML tables captured during web traversals.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// Common errors
var (
	ErrNoTable       = errors.New("no table found")
	ErrUnknownColumn = errors.New("unknown column")
)

// Table is an ordered set of named columns and string rows. Every row has
// exactly len(Columns) cells. Row indices are positions in Rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates a table, padding or truncating rows to the column count.
func New(columns []string, rows [][]string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

// Append adds a row, padding with empty cells or truncating as needed.
func (t *Table) Append(row []string) {
	cells := make([]string, len(t.Columns))
	copy(cells, row)
	t.Rows = append(t.Rows, cells)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]string, error) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}
	return out, nil
}

// Concat stacks tables vertically.
//
// The result's columns are the union of the inputs' columns in first-seen
// order. Cells for columns a source table lacks are empty. Rows keep their
// source order and are re-indexed from zero.
func Concat(tables ...*Table) *Table {
	out := &Table{}
	pos := make(map[string]int)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if _, ok := pos[c]; !ok {
				pos[c] = len(out.Columns)
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, r := range t.Rows {
			cells := make([]string, len(out.Columns))
			for i, c := range t.Columns {
				cells[pos[c]] = r[i]
			}
			out.Rows = append(out.Rows, cells)
		}
	}
	return out
}

// WriteCSV writes the table as CSV. With withIndex the first column holds
// the row index under an empty header.
func (t *Table) WriteCSV(w io.Writer, withIndex bool) error {
	cw := csv.NewWriter(w)

	header := t.Columns
	if withIndex {
		header = append([]string{""}, t.Columns...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, r := range t.Rows {
		rec := r
		if withIndex {
			rec = append([]string{strconv.Itoa(i)}, r...)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads a table written by WriteCSV. A first column with an empty
// header is taken to be the row index and dropped.
func ReadCSV(r io.Reader) (*Table, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoTable
	}

	skip := 0
	if len(records[0]) > 0 && records[0][0] == "" {
		skip = 1
	}
	t := &Table{Columns: append([]string(nil), records[0][skip:]...)}
	for _, rec := range records[1:] {
		t.Append(rec[skip:])
	}
	return t, nil
}

// Render writes the table as aligned text.
func (t *Table) Render(w io.Writer) {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.SetHeader(t.Columns)
	tw.AppendBulk(t.Rows)
	tw.Render()
}
