// Package traverse provides depth-first and breadth-first graph search over
// pluggable expansion strategies.
//
// A Searcher knows nothing about where nodes come from. It asks an Expander
// for the ordered children of each node it visits, and keeps the traversal
// bookkeeping (visited set, discovery order, hop depth) itself. Backends for
// adjacency matrices, linked text files and web pages live in package expand.
//
// Example Usage:
//
//	m, _ := adjacency.NewMatrix([]string{"A", "B"}, [][]bool{{false, true}, {false, false}})
//	s := traverse.New[string](expand.NewMatrix(m))
//	if err := s.DFS(ctx, "A"); err != nil {
//		return err
//	}
//	fmt.Println(s.Order()) // [A B]
//
// Traversal-scoped state is cleared at the start of every DFS/BFS call.
// State held by the expander (accumulated text, captured tables) is not: it
// belongs to the expander and lives as long as the expander does.
package traverse

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// Expander returns the ordered children of a node.
//
// Implementations may accumulate side data while expanding (see
// expand.Files.Message and expand.Web.Table). Errors should be
// *ExpandError values so callers can tell lookup failures from parse
// failures; anything else is wrapped with KindUnknown.
type Expander[N comparable] interface {
	Expand(ctx context.Context, node N) ([]N, error)
}

// ExpanderFunc adapts a plain function to the Expander interface.
type ExpanderFunc[N comparable] func(ctx context.Context, node N) ([]N, error)

// Expand calls f(ctx, node).
func (f ExpanderFunc[N]) Expand(ctx context.Context, node N) ([]N, error) {
	return f(ctx, node)
}

// Unimplemented is the expander used when none is supplied. Every call fails
// with ErrNotImplemented.
type Unimplemented[N comparable] struct{}

// Expand always fails.
func (Unimplemented[N]) Expand(_ context.Context, node N) ([]N, error) {
	return nil, NewExpandError(node, KindNotImplemented, ErrNotImplemented)
}

// Searcher runs DFS and BFS over the graph described by its Expander.
//
// A Searcher is not safe for concurrent use. Run searches against one
// Searcher (and one expander) sequentially.
type Searcher[N comparable] struct {
	expander Expander[N]
	log      *logrus.Entry

	visited map[N]struct{}
	depth   map[N]int
	order   []N
}

// Option configures a Searcher.
type Option func(*options)

type options struct {
	log *logrus.Entry
}

// WithLogger sets the logger used for per-visit debug output.
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		if log != nil {
			o.log = log
		}
	}
}

// New creates a Searcher over exp. A nil exp yields a Searcher whose
// searches fail with ErrNotImplemented on the first expansion.
func New[N comparable](exp Expander[N], opts ...Option) *Searcher[N] {
	o := options{log: logrus.NewEntry(logrus.StandardLogger())}
	for _, opt := range opts {
		opt(&o)
	}
	if exp == nil {
		exp = Unimplemented[N]{}
	}
	return &Searcher[N]{
		expander: exp,
		log:      o.log,
		visited:  make(map[N]struct{}),
		depth:    make(map[N]int),
	}
}

// Search runs a traversal in the given mode.
func (s *Searcher[N]) Search(ctx context.Context, mode Mode, start N) error {
	switch mode {
	case DepthFirst:
		return s.DFS(ctx, start)
	case BreadthFirst:
		return s.BFS(ctx, start)
	default:
		return errors.New("traverse: unknown search mode " + mode.String())
	}
}

// DFS performs a pre-order depth-first traversal from start.
//
// The order produced is exactly that of the recursive definition: visit a
// node, expand it, then visit each child in the order returned, skipping
// children already visited. The recursion is replaced by an explicit stack,
// so deep graphs do not grow the goroutine stack.
//
// On error the traversal stops and the partial order remains readable.
func (s *Searcher[N]) DFS(ctx context.Context, start N) error {
	s.reset()

	type frame struct {
		node  N
		depth int
	}
	stack := []frame{{node: start}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if s.Visited(top.node) {
			continue
		}
		s.mark(top.node, top.depth)
		s.order = append(s.order, top.node)

		children, err := s.expand(ctx, DepthFirst, top.node, top.depth)
		if err != nil {
			return err
		}
		// Push in reverse so the first child is visited first.
		for i := len(children) - 1; i >= 0; i-- {
			if !s.Visited(children[i]) {
				stack = append(stack, frame{node: children[i], depth: top.depth + 1})
			}
		}
	}
	return nil
}

// BFS performs a level-order breadth-first traversal from start.
//
// Nodes are marked visited when they are discovered (enqueued), not when they
// are dequeued, so a node reachable through two parents is queued once.
// Discovery order is cleared first, the same as DFS.
func (s *Searcher[N]) BFS(ctx context.Context, start N) error {
	s.reset()

	s.mark(start, 0)
	queue := []N{start}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		s.order = append(s.order, curr)

		d := s.depth[curr]
		children, err := s.expand(ctx, BreadthFirst, curr, d)
		if err != nil {
			return err
		}
		for _, child := range children {
			if s.Visited(child) {
				continue
			}
			s.mark(child, d+1)
			queue = append(queue, child)
		}
	}
	return nil
}

// Order returns the discovery order of the last search.
func (s *Searcher[N]) Order() []N {
	out := make([]N, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of nodes discovered by the last search.
func (s *Searcher[N]) Len() int {
	return len(s.order)
}

// Visited reports whether n was marked visited by the last search.
func (s *Searcher[N]) Visited(n N) bool {
	_, ok := s.visited[n]
	return ok
}

// Depth returns the hop distance at which n was first reached. For BFS this
// is the shortest distance from the start node; for DFS it is the depth in
// the DFS tree.
func (s *Searcher[N]) Depth(n N) (int, bool) {
	d, ok := s.depth[n]
	return d, ok
}

func (s *Searcher[N]) reset() {
	clear(s.visited)
	clear(s.depth)
	s.order = s.order[:0]
}

func (s *Searcher[N]) mark(n N, depth int) {
	s.visited[n] = struct{}{}
	s.depth[n] = depth
}

func (s *Searcher[N]) expand(ctx context.Context, mode Mode, n N, depth int) ([]N, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewExpandError(n, KindCanceled, err)
	}

	s.log.WithFields(logrus.Fields{
		"mode":  mode.String(),
		"node":  n,
		"depth": depth,
	}).Debug("expanding node")

	children, err := s.expander.Expand(ctx, n)
	if err != nil {
		var ee *ExpandError
		if errors.As(err, &ee) {
			return nil, err
		}
		return nil, NewExpandError(n, KindUnknown, err)
	}
	return children, nil
}
