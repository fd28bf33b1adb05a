package expand

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/orneryd/graphwalk/pkg/traverse"
)

// DefaultLinkMarker marks the children line of a node file.
const DefaultLinkMarker = ".txt"

// Files expands nodes stored as text files under one root.
//
// File format: a line containing the link marker (".txt" by default) lists
// the node's children, comma separated. Every other line is message text;
// it is trimmed and appended to the accumulated message with no separator.
// If a file has several children lines the last one wins.
type Files struct {
	fsys   fs.FS
	marker string
	msg    strings.Builder
}

var _ traverse.Expander[string] = (*Files)(nil)

// FilesOption configures a Files strategy.
type FilesOption func(*Files)

// WithLinkMarker sets the substring that identifies the children line.
func WithLinkMarker(marker string) FilesOption {
	return func(f *Files) {
		if marker != "" {
			f.marker = marker
		}
	}
}

// NewFiles binds a Files strategy to the directory root.
func NewFiles(root string, opts ...FilesOption) *Files {
	return NewFilesFS(os.DirFS(root), opts...)
}

// NewFilesFS binds a Files strategy to fsys.
func NewFilesFS(fsys fs.FS, opts ...FilesOption) *Files {
	f := &Files{fsys: fsys, marker: DefaultLinkMarker}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Expand reads the file named node and returns its children, or nil when
// the file has no children line.
func (f *Files) Expand(_ context.Context, node string) ([]string, error) {
	if !fs.ValidPath(node) {
		return nil, traverse.NewExpandError(node, traverse.KindNotFound,
			fmt.Errorf("%w: invalid file name", traverse.ErrNotFound))
	}

	file, err := f.fsys.Open(node)
	if err != nil {
		kind := traverse.KindUnknown
		if errors.Is(err, fs.ErrNotExist) {
			kind = traverse.KindNotFound
		}
		return nil, traverse.NewExpandError(node, kind, err)
	}
	defer file.Close()

	var children []string
	r := bufio.NewReader(file)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			children = f.parseLine(strings.TrimSuffix(line, "\n"), children)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, traverse.NewExpandError(node, traverse.KindParse, fmt.Errorf("reading: %w", err))
		}
	}
	return children, nil
}

// parseLine appends a message line to the accumulated message, or returns
// the entries of a children line in place of children.
func (f *Files) parseLine(line string, children []string) []string {
	if !strings.Contains(line, f.marker) {
		f.msg.WriteString(strings.TrimSpace(line))
		return children
	}
	parts := strings.Split(strings.TrimSpace(line), ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// Message returns the text accumulated from every file expanded so far.
func (f *Files) Message() string {
	return f.msg.String()
}
