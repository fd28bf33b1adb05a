package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeSession drives one Chrome tab through chromedp.
type ChromeSession struct {
	tab     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

var (
	_ Interactor = (*ChromeSession)(nil)
	_ Locator    = (*ChromeSession)(nil)
)

// NewChromeSession launches Chrome and opens a tab. The browser lives until
// Close is called or parent is done.
func NewChromeSession(parent context.Context, opts Options) (*ChromeSession, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", opts.Headless))
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	tab, tabCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so launch failures surface here.
	if err := chromedp.Run(tab); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	return &ChromeSession{
		tab: tab,
		cancel: func() {
			tabCancel()
			allocCancel()
		},
		timeout: opts.Timeout,
	}, nil
}

// Close shuts the browser down.
func (s *ChromeSession) Close() {
	s.cancel()
}

// run executes actions in the tab, bounded by ctx and the session timeout.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tab)
	defer cancel()
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, s.timeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url in the tab.
func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// HTML returns the rendered document markup.
func (s *ChromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	if err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading page source: %w", err)
	}
	return html, nil
}

// Location returns the URL of the document loaded in the tab.
func (s *ChromeSession) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return loc, nil
}

// SendKeys types text into the element matching selector.
func (s *ChromeSession) SendKeys(ctx context.Context, selector, text string) error {
	if err := s.run(ctx, chromedp.SendKeys(selector, text, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("typing into %s: %w", selector, err)
	}
	return nil
}

// Click clicks the element matching selector once it is visible.
func (s *ChromeSession) Click(ctx context.Context, selector string) error {
	if err := s.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("clicking %s: %w", selector, err)
	}
	return nil
}

// Attribute returns an attribute of the element matching selector.
func (s *ChromeSession) Attribute(ctx context.Context, selector, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	if err := s.run(ctx, chromedp.AttributeValue(selector, name, &value, &ok, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading %s of %s: %w", name, selector, err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrNoAttribute, name, selector)
	}
	return value, nil
}

// Text returns the rendered inner text of the element matching selector.
func (s *ChromeSession) Text(ctx context.Context, selector string) (string, error) {
	var text string
	if err := s.run(ctx, chromedp.Text(selector, &text, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return "", fmt.Errorf("reading text of %s: %w", selector, err)
	}
	return text, nil
}
