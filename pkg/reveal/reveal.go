// Package reveal drives the "reveal secret" page: it types a phrase built
// from clues collected during a web traversal, unlocks the page, and
// downloads the image it reveals.
package reveal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/orneryd/graphwalk/pkg/browser"
)

// Selectors name the page elements the workflow touches.
type Selectors struct {
	Password string
	Attempt  string
	Security string
	Image    string
	Location string
}

// DefaultSelectors matches the reveal page layout.
var DefaultSelectors = Selectors{
	Password: "#password",
	Attempt:  "#attempt-button",
	Security: "#securityBtn",
	Image:    "#image",
	Location: "#location",
}

// Options configures Run.
type Options struct {
	// URL of the reveal page.
	URL string
	// Clues are concatenated, in order, into the password phrase.
	Clues []string
	// Image receives the downloaded image bytes.
	Image io.Writer
	// Client downloads the image. Defaults to http.DefaultClient.
	Client *http.Client
	// Selectors defaults to DefaultSelectors.
	Selectors *Selectors
	Log       *logrus.Entry
}

// Result is what the unlocked page reveals.
type Result struct {
	Location string
	ImageURL string
	Bytes    int64
}

// Phrase joins clues with no separator.
func Phrase(clues []string) string {
	return strings.Join(clues, "")
}

// Run performs the workflow in session.
func Run(ctx context.Context, session browser.Interactor, opts Options) (*Result, error) {
	sel := DefaultSelectors
	if opts.Selectors != nil {
		sel = *opts.Selectors
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	log := opts.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	phrase := Phrase(opts.Clues)
	log.WithFields(logrus.Fields{"url": opts.URL, "clues": len(opts.Clues)}).Info("unlocking page")

	if err := session.Navigate(ctx, opts.URL); err != nil {
		return nil, err
	}
	if err := session.SendKeys(ctx, sel.Password, phrase); err != nil {
		return nil, err
	}
	if err := session.Click(ctx, sel.Attempt); err != nil {
		return nil, err
	}
	if err := session.Click(ctx, sel.Security); err != nil {
		return nil, err
	}

	src, err := session.Attribute(ctx, sel.Image, "src")
	if err != nil {
		return nil, err
	}
	location, err := session.Text(ctx, sel.Location)
	if err != nil {
		return nil, err
	}

	page := opts.URL
	if loc, ok := session.(browser.Locator); ok {
		if u, err := loc.Location(ctx); err == nil && u != "" {
			page = u
		}
	}
	imageURL, err := resolve(page, src)
	if err != nil {
		return nil, err
	}
	n, err := download(ctx, client, imageURL, opts.Image)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{"image": imageURL, "bytes": n}).Info("image downloaded")

	return &Result{Location: location, ImageURL: imageURL, Bytes: n}, nil
}

func resolve(page, src string) (string, error) {
	base, err := url.Parse(page)
	if err != nil {
		return "", fmt.Errorf("parsing page url: %w", err)
	}
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return "", fmt.Errorf("parsing image src %q: %w", src, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func download(ctx context.Context, client *http.Client, u string, w io.Writer) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, fmt.Errorf("building image request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return 0, fmt.Errorf("%w: image %s returned %d", browser.ErrHTTPStatus, u, resp.StatusCode)
	}
	if w == nil {
		w = io.Discard
	}
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("writing image: %w", err)
	}
	return n, nil
}
