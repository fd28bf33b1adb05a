// Package browser provides the page sessions the web expander drives.
//
// A Session navigates to a URL and hands back the resulting HTML. Two
// implementations are provided: HTTPSession fetches pages with net/http and
// suits static sites; ChromeSession drives a headless Chrome through chromedp
// and also implements Interactor for scripted form workflows.
package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Common errors
var (
	ErrNoPage      = errors.New("no page loaded")
	ErrHTTPStatus  = errors.New("unexpected http status")
	ErrUnknownKind = errors.New("unknown session kind")
	ErrNoAttribute = errors.New("attribute not set")
)

// Session is a controllable page session.
type Session interface {
	// Navigate loads url, replacing the current page.
	Navigate(ctx context.Context, url string) error
	// HTML returns the markup of the current page.
	HTML(ctx context.Context) (string, error)
}

// Locator is implemented by sessions that know the URL of the loaded page,
// which differs from the requested URL after a redirect.
type Locator interface {
	Location(ctx context.Context) (string, error)
}

// Interactor is a Session that can also fill in and click page elements.
// Selectors are CSS selectors.
type Interactor interface {
	Session
	SendKeys(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	Attribute(ctx context.Context, selector, name string) (string, error)
	Text(ctx context.Context, selector string) (string, error)
}

// Options configures session construction.
type Options struct {
	// Kind is "http" or "chrome".
	Kind string
	// Timeout bounds each page load. Zero means no bound.
	Timeout time.Duration
	// UserAgent overrides the default user agent when non-empty.
	UserAgent string
	// Headless runs Chrome without a window. Ignored for "http".
	Headless bool
	// ExecPath points at the Chrome binary. Empty uses chromedp's lookup.
	ExecPath string
}

// Open creates a session of the configured kind. The returned close
// function releases browser resources and is safe to call once.
func Open(ctx context.Context, opts Options) (Session, func(), error) {
	switch opts.Kind {
	case "", "http":
		return NewHTTPSession(&http.Client{Timeout: opts.Timeout}, opts.UserAgent), func() {}, nil
	case "chrome":
		s, err := NewChromeSession(ctx, opts)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}

// HTTPSession fetches pages with plain GET requests.
type HTTPSession struct {
	client    *http.Client
	userAgent string

	url  string
	body string
	done bool
}

var _ Locator = (*HTTPSession)(nil)

// NewHTTPSession creates a session using client, or http.DefaultClient when
// client is nil.
func NewHTTPSession(client *http.Client, userAgent string) *HTTPSession {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSession{client: client, userAgent: userAgent}
}

// Navigate fetches url. Statuses of 400 and above are errors.
func (s *HTTPSession) Navigate(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %s returned %d", ErrHTTPStatus, url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", url, err)
	}
	s.url = resp.Request.URL.String()
	s.body = string(data)
	s.done = true
	return nil
}

// HTML returns the body of the last successful Navigate.
func (s *HTTPSession) HTML(context.Context) (string, error) {
	if !s.done {
		return "", ErrNoPage
	}
	return s.body, nil
}

// Location returns the final URL of the last successful Navigate, after
// redirects.
func (s *HTTPSession) Location(context.Context) (string, error) {
	if !s.done {
		return "", ErrNoPage
	}
	return s.url, nil
}
