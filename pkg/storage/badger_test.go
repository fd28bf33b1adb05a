package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/graphwalk/pkg/adjacency"
	"github.com/orneryd/graphwalk/pkg/expand"
	"github.com/orneryd/graphwalk/pkg/traverse"
)

func setupTestStore(t *testing.T) *MatrixStore {
	t.Helper()
	store, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testMatrix(t *testing.T) *adjacency.Matrix {
	t.Helper()
	m, err := adjacency.NewMatrix(
		[]string{"A", "B", "C"},
		[][]bool{
			{false, true, false},
			{false, false, true},
			{true, false, false},
		},
	)
	require.NoError(t, err)
	return m
}

func TestMatrixStore_SaveAndLoad(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveMatrix("cycle", testMatrix(t)))

	sm, err := store.Matrix("cycle")
	require.NoError(t, err)
	assert.Equal(t, "cycle", sm.Name())
	assert.Equal(t, []string{"A", "B", "C"}, sm.Columns())

	row, err := sm.Row("B")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, false, true}, row)

	_, err = sm.Row("Z")
	assert.ErrorIs(t, err, adjacency.ErrUnknownLabel)
}

func TestMatrixStore_Traversal(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveMatrix("cycle", testMatrix(t)))

	sm, err := store.Matrix("cycle")
	require.NoError(t, err)

	s := traverse.New[string](expand.NewMatrix(sm))
	require.NoError(t, s.DFS(context.Background(), "A"))
	assert.Equal(t, []string{"A", "B", "C"}, s.Order())

	err = s.BFS(context.Background(), "Q")
	assert.ErrorIs(t, err, traverse.ErrNotFound)
}

func TestMatrixStore_Replace(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveMatrix("g", testMatrix(t)))

	small, err := adjacency.NewMatrix([]string{"X"}, [][]bool{{true}})
	require.NoError(t, err)
	require.NoError(t, store.SaveMatrix("g", small))

	sm, err := store.Matrix("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"X"}, sm.Columns())

	_, err = sm.Row("A")
	assert.ErrorIs(t, err, adjacency.ErrUnknownLabel, "old rows removed")
}

// brokenTable fails to produce one of its rows.
type brokenTable struct {
	*adjacency.Matrix
	bad string
}

func (b brokenTable) Row(label string) ([]bool, error) {
	if label == b.bad {
		return nil, errors.New("row unavailable")
	}
	return b.Matrix.Row(label)
}

func TestMatrixStore_FailedReplaceKeepsOld(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveMatrix("g", testMatrix(t)))

	other, err := adjacency.NewMatrix([]string{"A", "B"}, [][]bool{{true, true}, {true, true}})
	require.NoError(t, err)
	err = store.SaveMatrix("g", brokenTable{Matrix: other, bad: "B"})
	require.Error(t, err)

	sm, err := store.Matrix("g")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, sm.Columns())
	row, err := sm.Row("A")
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, row)
}

func TestMatrixStore_CopyStoredMatrix(t *testing.T) {
	store := setupTestStore(t)
	require.NoError(t, store.SaveMatrix("src", testMatrix(t)))

	src, err := store.Matrix("src")
	require.NoError(t, err)
	require.NoError(t, store.SaveMatrix("dst", src))

	dst, err := store.Matrix("dst")
	require.NoError(t, err)
	row, err := dst.Row("C")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, row)
}

func TestMatrixStore_NamesAndDelete(t *testing.T) {
	store := setupTestStore(t)
	m := testMatrix(t)
	require.NoError(t, store.SaveMatrix("b", m))
	require.NoError(t, store.SaveMatrix("a", m))
	// "ab" shares a prefix with "a"; row keys must not collide.
	require.NoError(t, store.SaveMatrix("ab", m))

	names, err := store.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ab", "b"}, names)

	require.NoError(t, store.DeleteMatrix("a"))
	_, err = store.Matrix("a")
	assert.ErrorIs(t, err, ErrNotFound)

	sm, err := store.Matrix("ab")
	require.NoError(t, err)
	_, err = sm.Row("A")
	assert.NoError(t, err)

	assert.ErrorIs(t, store.DeleteMatrix("a"), ErrNotFound)
}

func TestMatrixStore_Errors(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Matrix("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.SaveMatrix("", testMatrix(t)), ErrInvalidName)
	assert.ErrorIs(t, store.SaveMatrix("a\x00b", testMatrix(t)), ErrInvalidName)

	require.NoError(t, store.Close())
	require.NoError(t, store.Close(), "close is idempotent")
	_, err = store.Names()
	assert.ErrorIs(t, err, ErrStorageClosed)
}

func TestMatrixStore_Persistence(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(BadgerOptions{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, store.SaveMatrix("g", testMatrix(t)))
	require.NoError(t, store.Close())

	store, err = Open(BadgerOptions{DataDir: dir})
	require.NoError(t, err)
	defer store.Close()

	sm, err := store.Matrix("g")
	require.NoError(t, err)
	row, err := sm.Row("C")
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false}, row)
}
