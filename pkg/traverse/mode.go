package traverse

import (
	"fmt"
	"strings"
)

// Mode selects the traversal algorithm.
type Mode int

const (
	DepthFirst Mode = iota
	BreadthFirst
)

func (m Mode) String() string {
	switch m {
	case DepthFirst:
		return "dfs"
	case BreadthFirst:
		return "bfs"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "dfs"/"depth-first" or "bfs"/"breadth-first".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dfs", "depth-first", "depth":
		return DepthFirst, nil
	case "bfs", "breadth-first", "breadth":
		return BreadthFirst, nil
	default:
		return 0, fmt.Errorf("unknown search mode %q (want dfs or bfs)", s)
	}
}
