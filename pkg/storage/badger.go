// Package storage provides persistent storage for adjacency matrices.
//
// MatrixStore keeps named matrices in BadgerDB so large graphs can be
// imported once and traversed many times without re-parsing their source.
// Only the graph data is stored; traversal state never is.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/orneryd/graphwalk/pkg/adjacency"
)

// Key prefixes for BadgerDB storage organization
const (
	prefixColumns = byte(0x01) // columns:name -> JSON([]string)
	prefixRow     = byte(0x02) // row:name:label -> JSON([]bool)
)

// Common errors
var (
	ErrNotFound      = errors.New("matrix not found")
	ErrInvalidName   = errors.New("invalid matrix name")
	ErrStorageClosed = errors.New("storage closed")
)

// MatrixStore persists adjacency matrices in BadgerDB.
//
// Key Structure:
//   - Columns: 0x01 + name -> JSON([]string)
//   - Rows:    0x02 + name + 0x00 + label -> JSON([]bool)
//
// Example:
//
//	store, err := storage.Open(storage.BadgerOptions{DataDir: "./data"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
//
//	store.SaveMatrix("campus", m)
//	sm, _ := store.Matrix("campus")
//	s := traverse.New[string](expand.NewMatrix(sm))
//
// Thread Safety:
//
//	Safe for concurrent use from multiple goroutines.
type MatrixStore struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// BadgerOptions configures the BadgerDB engine.
type BadgerOptions struct {
	// DataDir is the directory for storing data files.
	// Required unless InMemory is set.
	DataDir string

	// InMemory runs BadgerDB in memory-only mode.
	// Useful for testing. Data is not persisted.
	InMemory bool

	// SyncWrites forces fsync after each write.
	SyncWrites bool

	// Logger for BadgerDB internal logging. A *logrus.Entry satisfies it.
	// If nil, BadgerDB logging is silenced.
	Logger badger.Logger
}

// Open opens (or creates) a matrix store.
func Open(opts BadgerOptions) (*MatrixStore, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)

	if opts.InMemory {
		badgerOpts = badgerOpts.WithDir("").WithValueDir("").WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	badgerOpts = badgerOpts.WithLogger(opts.Logger)

	// Adjacency rows are small; keep the footprint modest.
	badgerOpts = badgerOpts.
		WithMemTableSize(16 << 20).
		WithValueLogFileSize(64 << 20).
		WithNumMemtables(2).
		WithNumLevelZeroTables(2).
		WithNumLevelZeroTablesStall(4).
		WithBlockCacheSize(32 << 20).
		WithIndexCacheSize(16 << 20)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}
	return &MatrixStore{db: db}, nil
}

// OpenInMemory opens a store that lives only in RAM.
func OpenInMemory() (*MatrixStore, error) {
	return Open(BadgerOptions{InMemory: true})
}

// ============================================================================
// Key encoding helpers
// ============================================================================

func columnsKey(name string) []byte {
	return append([]byte{prefixColumns}, name...)
}

func rowPrefix(name string) []byte {
	key := make([]byte, 0, 1+len(name)+1)
	key = append(key, prefixRow)
	key = append(key, name...)
	return append(key, 0x00)
}

func rowKey(name, label string) []byte {
	return append(rowPrefix(name), label...)
}

func validName(name string) error {
	if name == "" {
		return ErrInvalidName
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0x00 {
			return fmt.Errorf("%w: contains NUL", ErrInvalidName)
		}
	}
	return nil
}

func (s *MatrixStore) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrStorageClosed
	}
	return nil
}

// ============================================================================
// Matrix operations
// ============================================================================

// SaveMatrix stores m under name, replacing any matrix already stored there.
// Every row is read and encoded before the store is touched, and the old
// matrix is removed in the same transaction that writes the new one, so a
// failed save leaves the previous matrix in place.
func (s *MatrixStore) SaveMatrix(name string, m adjacency.Table) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	cols := m.Columns()
	colData, err := json.Marshal(cols)
	if err != nil {
		return fmt.Errorf("encoding columns: %w", err)
	}
	rows := make([][]byte, len(cols))
	for i, label := range cols {
		row, err := m.Row(label)
		if err != nil {
			return fmt.Errorf("reading row %q: %w", label, err)
		}
		if len(row) != len(cols) {
			return fmt.Errorf("%w: row %q has %d cells, want %d", adjacency.ErrNotSquare, label, len(row), len(cols))
		}
		if rows[i], err = json.Marshal(row); err != nil {
			return fmt.Errorf("encoding row %q: %w", label, err)
		}
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := deleteMatrix(txn, name); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := txn.Set(columnsKey(name), colData); err != nil {
			return fmt.Errorf("writing columns: %w", err)
		}
		for i, label := range cols {
			if err := txn.Set(rowKey(name, label), rows[i]); err != nil {
				return fmt.Errorf("writing row %q: %w", label, err)
			}
		}
		return nil
	})
}

// Matrix returns a read view of the matrix stored under name. Rows are
// read from BadgerDB on demand.
func (s *MatrixStore) Matrix(name string) (*StoredMatrix, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var cols []string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(columnsKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cols)
		})
	})
	if err != nil {
		return nil, err
	}
	return &StoredMatrix{store: s, name: name, columns: cols}, nil
}

// Names returns the names of all stored matrices, sorted.
func (s *MatrixStore) Names() ([]string, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{prefixColumns}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, string(it.Item().Key()[1:]))
		}
		return nil
	})
	sort.Strings(names)
	return names, err
}

// DeleteMatrix removes the matrix stored under name.
func (s *MatrixStore) DeleteMatrix(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := s.checkOpen(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return deleteMatrix(txn, name)
	})
}

// deleteMatrix removes the columns and row keys of name within txn.
func deleteMatrix(txn *badger.Txn, name string) error {
	if _, err := txn.Get(columnsKey(name)); errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	} else if err != nil {
		return err
	}
	if err := txn.Delete(columnsKey(name)); err != nil {
		return err
	}

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	prefix := rowPrefix(name)
	opts.Prefix = prefix
	it := txn.NewIterator(opts)
	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	it.Close()

	for _, k := range keys {
		if err := txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the BadgerDB database.
func (s *MatrixStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// StoredMatrix is an adjacency.Table backed by a MatrixStore.
type StoredMatrix struct {
	store   *MatrixStore
	name    string
	columns []string
}

var _ adjacency.Table = (*StoredMatrix)(nil)

// Name returns the name the matrix is stored under.
func (m *StoredMatrix) Name() string { return m.name }

// Columns returns the column labels in order.
func (m *StoredMatrix) Columns() []string {
	return append([]string(nil), m.columns...)
}

// Row reads the row labelled label.
func (m *StoredMatrix) Row(label string) ([]bool, error) {
	if err := m.store.checkOpen(); err != nil {
		return nil, err
	}

	var row []bool
	err := m.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rowKey(m.name, label))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %q", adjacency.ErrUnknownLabel, label)
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &row)
		})
	})
	return row, err
}
