// Package expand provides the expansion strategies a traverse.Searcher
// walks: adjacency matrices, directories of linked text files, and web pages
// reached through hyperlinks.
//
// Each strategy owns its data source for its whole lifetime. Side data the
// strategy collects while expanding (Files.Message, Web.Table) accumulates
// across searches and is only discarded by building a new strategy.
package expand

import (
	"context"
	"errors"

	"github.com/orneryd/graphwalk/pkg/adjacency"
	"github.com/orneryd/graphwalk/pkg/traverse"
)

// Matrix expands a node to the columns set in its adjacency row.
type Matrix struct {
	table adjacency.Table
}

var _ traverse.Expander[string] = (*Matrix)(nil)

// NewMatrix binds a Matrix strategy to an adjacency table.
func NewMatrix(t adjacency.Table) *Matrix {
	return &Matrix{table: t}
}

// Expand returns the labels of the truthy cells in node's row, in column
// order. An unknown row label is a KindNotFound error.
func (m *Matrix) Expand(_ context.Context, node string) ([]string, error) {
	children, err := adjacency.Children(m.table, node)
	if err != nil {
		kind := traverse.KindParse
		if errors.Is(err, adjacency.ErrUnknownLabel) {
			kind = traverse.KindNotFound
		}
		return nil, traverse.NewExpandError(node, kind, err)
	}
	return children, nil
}
