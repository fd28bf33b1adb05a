package traverse

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrNotFound       = errors.New("node not found")
	ErrParse          = errors.New("parse failure")
	ErrNotImplemented = errors.New("expand not implemented")
)

// Kind classifies why an expansion failed.
type Kind int

const (
	// KindUnknown is an error the expander did not classify.
	KindUnknown Kind = iota
	// KindNotFound means the node is absent from the backing data source
	// (matrix row, file, unreachable URL).
	KindNotFound
	// KindParse means the data behind the node could not be parsed
	// (malformed cell, HTML page without a table).
	KindParse
	// KindNotImplemented means no concrete expander was supplied.
	KindNotImplemented
	// KindCanceled means the context was done before the node was expanded.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindParse:
		return "parse"
	case KindNotImplemented:
		return "not implemented"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ExpandError reports a failed expansion of a single node.
//
// The Searcher returns it as-is when an expander produced one, and wraps any
// other error in one. Use errors.As to recover the failing node, or errors.Is
// with ErrNotFound / ErrParse / ErrNotImplemented to test the kind.
type ExpandError struct {
	Node any
	Kind Kind
	Err  error
}

// NewExpandError builds an ExpandError for node.
func NewExpandError(node any, kind Kind, err error) *ExpandError {
	return &ExpandError{Node: node, Kind: kind, Err: err}
}

func (e *ExpandError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("expand %v: %s", e.Node, e.Kind)
	}
	return fmt.Sprintf("expand %v: %s: %v", e.Node, e.Kind, e.Err)
}

func (e *ExpandError) Unwrap() error { return e.Err }

// Is matches the sentinel error for the error's kind.
func (e *ExpandError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrParse:
		return e.Kind == KindParse
	case ErrNotImplemented:
		return e.Kind == KindNotImplemented
	}
	return false
}

// KindOf returns the Kind of err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var ee *ExpandError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindUnknown
}
