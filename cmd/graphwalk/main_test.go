package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "graphwalk v")
}

func TestFilesCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1.txt", "M\n2.txt,3.txt\n")
	writeFile(t, dir, "2.txt", "A\n4.txt\n")
	writeFile(t, dir, "3.txt", "D\n")
	writeFile(t, dir, "4.txt", "S\n")

	t.Run("dfs", func(t *testing.T) {
		out, err := execute(t, "files", "--root", dir, "--start", "1.txt")
		require.NoError(t, err)
		assert.Equal(t, "1.txt\n2.txt\n4.txt\n3.txt\nmessage: MASD\n", out)
	})

	t.Run("bfs", func(t *testing.T) {
		out, err := execute(t, "files", "--root", dir, "--start", "1.txt", "--mode", "bfs")
		require.NoError(t, err)
		assert.Equal(t, "1.txt\n2.txt\n3.txt\n4.txt\nmessage: MADS\n", out)
	})

	t.Run("missing start file", func(t *testing.T) {
		_, err := execute(t, "files", "--root", dir, "--start", "9.txt")
		assert.Error(t, err)
	})

	t.Run("bad mode", func(t *testing.T) {
		_, err := execute(t, "files", "--root", dir, "--start", "1.txt", "--mode", "astar")
		assert.Error(t, err)
	})
}

func TestMatrixCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "m.csv", ",A,B,C\nA,0,1,1\nB,0,0,0\nC,0,1,0\n")
	dataDir := filepath.Join(dir, "data")

	t.Run("from csv", func(t *testing.T) {
		out, err := execute(t, "matrix", "--csv", csvPath, "--start", "A")
		require.NoError(t, err)
		assert.Equal(t, "A\nB\nC\n", out)
	})

	t.Run("import, list and search", func(t *testing.T) {
		_, err := execute(t, "matrix", "import", csvPath, "--name", "tri", "--data-dir", dataDir)
		require.NoError(t, err)

		out, err := execute(t, "matrix", "list", "--data-dir", dataDir)
		require.NoError(t, err)
		assert.Equal(t, "tri\n", out)

		out, err = execute(t, "matrix", "--name", "tri", "--start", "C", "--data-dir", dataDir, "--mode", "bfs")
		require.NoError(t, err)
		assert.Equal(t, "C\nB\n", out)
	})

	t.Run("no source", func(t *testing.T) {
		_, err := execute(t, "matrix", "--start", "A")
		assert.Error(t, err)
	})
}

func TestWebCommand(t *testing.T) {
	mux := http.NewServeMux()
	page := func(clue, links string) string {
		return fmt.Sprintf(`<table><tr><th>clue</th></tr><tr><td>%s</td></tr></table>%s`, clue, links)
	}
	mux.HandleFunc("/1.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page("K", `<a href="2.html">2</a>`))
	})
	mux.HandleFunc("/2.html", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, page("Y", `<a href="1.html">1</a>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	outPath := filepath.Join(t.TempDir(), "travel.csv")
	out, err := execute(t, "web", "--start", srv.URL+"/1.html", "--out", outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, srv.URL+"/1.html\n"+srv.URL+"/2.html\n"))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, ",clue\n0,K\n1,Y\n", string(data))

	clues, err := readClues(outPath, "clue")
	require.NoError(t, err)
	assert.Equal(t, []string{"K", "Y"}, clues)
}
