package table

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FirstTable returns the first <table> under sel, or ErrNoTable.
//
// The header is taken from the last row of <thead>, or from the first row
// when it consists only of <th> cells. Without a header the columns are
// named "0", "1", ... . Repeated column names get a ".1", ".2", ... suffix.
// Cell text has its whitespace collapsed. Tables with no rows are skipped.
// colspan and rowspan are not expanded.
func FirstTable(sel *goquery.Selection) (*Table, error) {
	var first *Table
	sel.Find("table").EachWithBreak(func(_ int, tbl *goquery.Selection) bool {
		first = parseTable(tbl)
		return first == nil
	})
	if first == nil {
		return nil, ErrNoTable
	}
	return first, nil
}

func parseTable(tbl *goquery.Selection) *Table {
	// Rows belonging to this table, not to tables nested inside it.
	rows := tbl.Find("tr").FilterFunction(func(_ int, tr *goquery.Selection) bool {
		return tr.Closest("table").IsSelection(tbl)
	})
	if rows.Length() == 0 {
		return nil
	}

	var header []string
	var body [][]string

	if thead := rows.Filter("thead tr"); thead.Length() > 0 {
		header = rowCells(thead.Last())
		rows = rows.Not("thead tr")
	} else if first := rows.First(); first.Children().Length() > 0 &&
		first.ChildrenFiltered("th").Length() == first.Children().Length() {
		header = rowCells(first)
		rows = rows.Slice(1, rows.Length())
	}

	width := len(header)
	rows.Each(func(_ int, tr *goquery.Selection) {
		cells := rowCells(tr)
		if len(cells) == 0 {
			return
		}
		if len(cells) > width {
			width = len(cells)
		}
		body = append(body, cells)
	})

	columns := make([]string, width)
	for i := range columns {
		if i < len(header) && header[i] != "" {
			columns[i] = header[i]
		} else {
			columns[i] = strconv.Itoa(i)
		}
	}
	return New(uniqueColumns(columns), body)
}

// uniqueColumns suffixes repeated names so no two columns collide.
func uniqueColumns(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	for i, c := range columns {
		name := c
		for n := 1; seen[name]; n++ {
			name = c + "." + strconv.Itoa(n)
		}
		seen[name] = true
		columns[i] = name
	}
	return columns
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.ChildrenFiltered("td, th").Each(func(_ int, c *goquery.Selection) {
		cells = append(cells, strings.Join(strings.Fields(c.Text()), " "))
	})
	return cells
}
