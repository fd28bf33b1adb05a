package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html><body>ua=%s</body></html>", r.UserAgent())
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/page", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()

	t.Run("html before navigate", func(t *testing.T) {
		s := NewHTTPSession(nil, "")
		_, err := s.HTML(ctx)
		assert.ErrorIs(t, err, ErrNoPage)
		_, err = s.Location(ctx)
		assert.ErrorIs(t, err, ErrNoPage)
	})

	t.Run("navigate and read", func(t *testing.T) {
		s := NewHTTPSession(srv.Client(), "graphwalk-test")
		require.NoError(t, s.Navigate(ctx, srv.URL+"/page"))

		html, err := s.HTML(ctx)
		require.NoError(t, err)
		assert.Contains(t, html, "ua=graphwalk-test")
	})

	t.Run("follows redirects", func(t *testing.T) {
		s := NewHTTPSession(srv.Client(), "")
		require.NoError(t, s.Navigate(ctx, srv.URL+"/moved"))
		loc, err := s.Location(ctx)
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/page", loc)
	})

	t.Run("error status keeps previous page", func(t *testing.T) {
		s := NewHTTPSession(srv.Client(), "")
		require.NoError(t, s.Navigate(ctx, srv.URL+"/page"))

		err := s.Navigate(ctx, srv.URL+"/missing")
		assert.ErrorIs(t, err, ErrHTTPStatus)

		html, err := s.HTML(ctx)
		require.NoError(t, err)
		assert.Contains(t, html, "ua=")
	})

	t.Run("unreachable host", func(t *testing.T) {
		s := NewHTTPSession(srv.Client(), "")
		err := s.Navigate(ctx, "http://127.0.0.1:1/nope")
		assert.Error(t, err)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, closeFn, err := Open(ctx, Options{Kind: "http"})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &HTTPSession{}, s)

	_, _, err = Open(ctx, Options{Kind: "netscape"})
	assert.ErrorIs(t, err, ErrUnknownKind)
}
