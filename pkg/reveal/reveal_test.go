package reveal

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePage records interactions and answers attribute/text reads.
type fakePage struct {
	url     string
	typed   map[string]string
	clicks  []string
	attrs   map[string]string
	texts   map[string]string
	failOn  string
	visited []string
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	if p.failOn == "navigate" {
		return errors.New("navigate failed")
	}
	p.url = url
	p.visited = append(p.visited, url)
	return nil
}

func (p *fakePage) HTML(context.Context) (string, error) { return "<html></html>", nil }

func (p *fakePage) SendKeys(_ context.Context, sel, text string) error {
	if p.typed == nil {
		p.typed = make(map[string]string)
	}
	p.typed[sel] += text
	return nil
}

func (p *fakePage) Click(_ context.Context, sel string) error {
	if p.failOn == sel {
		return errors.New("no such element")
	}
	p.clicks = append(p.clicks, sel)
	return nil
}

func (p *fakePage) Attribute(_ context.Context, sel, name string) (string, error) {
	return p.attrs[sel+"@"+name], nil
}

func (p *fakePage) Text(_ context.Context, sel string) (string, error) {
	return p.texts[sel], nil
}

// redirectedPage reports a loaded location different from the requested URL.
type redirectedPage struct {
	fakePage
	location string
}

func (p *redirectedPage) Location(context.Context) (string, error) {
	return p.location, nil
}

func TestPhrase(t *testing.T) {
	assert.Equal(t, "", Phrase(nil))
	assert.Equal(t, "BADGERS", Phrase([]string{"B", "AD", "GERS"}))
}

func TestRun(t *testing.T) {
	img := []byte{0xff, 0xd8, 0xff, 0xe0}
	mux := http.NewServeMux()
	mux.HandleFunc("/images/spot.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(img)
	})
	mux.HandleFunc("/vault/images/spot.jpg", func(w http.ResponseWriter, _ *http.Request) {
		w.Write(img)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()

	t.Run("unlocks and downloads", func(t *testing.T) {
		page := &fakePage{
			attrs: map[string]string{"#image@src": "images/spot.jpg"},
			texts: map[string]string{"#location": "Lake Mendota"},
		}
		var out bytes.Buffer
		res, err := Run(ctx, page, Options{
			URL:    srv.URL + "/index.html",
			Clues:  []string{"se", "cr", "et"},
			Image:  &out,
			Client: srv.Client(),
		})
		require.NoError(t, err)

		assert.Equal(t, "secret", page.typed["#password"])
		assert.Equal(t, []string{"#attempt-button", "#securityBtn"}, page.clicks)
		assert.Equal(t, "Lake Mendota", res.Location)
		assert.Equal(t, srv.URL+"/images/spot.jpg", res.ImageURL)
		assert.Equal(t, int64(len(img)), res.Bytes)
		assert.Equal(t, img, out.Bytes())
	})

	t.Run("custom selectors", func(t *testing.T) {
		sel := Selectors{Password: "#pw", Attempt: "#go", Security: "#sec", Image: "#img", Location: "#loc"}
		page := &fakePage{
			attrs: map[string]string{"#img@src": srv.URL + "/images/spot.jpg"},
			texts: map[string]string{"#loc": "here"},
		}
		res, err := Run(ctx, page, Options{URL: srv.URL, Selectors: &sel, Client: srv.Client()})
		require.NoError(t, err)
		assert.Equal(t, []string{"#go", "#sec"}, page.clicks)
		assert.Equal(t, "here", res.Location)
	})

	t.Run("image resolves against the loaded page", func(t *testing.T) {
		page := &redirectedPage{
			fakePage: fakePage{attrs: map[string]string{"#image@src": "images/spot.jpg"}},
			location: srv.URL + "/vault/index.html",
		}
		res, err := Run(ctx, page, Options{URL: srv.URL + "/index.html", Client: srv.Client()})
		require.NoError(t, err)
		assert.Equal(t, srv.URL+"/vault/images/spot.jpg", res.ImageURL)
	})

	t.Run("missing image", func(t *testing.T) {
		page := &fakePage{attrs: map[string]string{"#image@src": "/nope.jpg"}}
		_, err := Run(ctx, page, Options{URL: srv.URL, Client: srv.Client()})
		assert.Error(t, err)
	})

	t.Run("click failure stops the workflow", func(t *testing.T) {
		page := &fakePage{failOn: "#attempt-button"}
		_, err := Run(ctx, page, Options{URL: srv.URL, Client: srv.Client()})
		assert.EqualError(t, err, "no such element")
		assert.Empty(t, page.clicks)
	})

	t.Run("navigation failure", func(t *testing.T) {
		page := &fakePage{failOn: "navigate"}
		_, err := Run(ctx, page, Options{URL: srv.URL})
		assert.Error(t, err)
		assert.Empty(t, page.visited)
	})
}
