package expand

import (
	"context"
	"fmt"
	neturl "net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/orneryd/graphwalk/pkg/browser"
	"github.com/orneryd/graphwalk/pkg/table"
	"github.com/orneryd/graphwalk/pkg/traverse"
)

// Web expands a URL to the hyperlinks on its page and captures the page's
// first HTML table.
//
// Links are returned exactly as written in each <a href>, in document order;
// anchors without href yield "". Wrap a Web in ResolveLinks to get absolute,
// crawlable URLs.
type Web struct {
	session browser.Session
	tables  []*table.Table
	base    string
}

var _ traverse.Expander[string] = (*Web)(nil)

// NewWeb binds a Web strategy to a browser session.
func NewWeb(session browser.Session) *Web {
	return &Web{session: session}
}

// Expand navigates to url, records the page's first table and returns the
// page's links. A navigation failure is KindNotFound; a page without a table
// or with unparsable markup is KindParse.
func (w *Web) Expand(ctx context.Context, url string) ([]string, error) {
	w.base = ""
	if err := w.session.Navigate(ctx, url); err != nil {
		return nil, traverse.NewExpandError(url, traverse.KindNotFound, err)
	}
	html, err := w.session.HTML(ctx)
	if err != nil {
		return nil, traverse.NewExpandError(url, traverse.KindNotFound, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, traverse.NewExpandError(url, traverse.KindParse, fmt.Errorf("parsing html: %w", err))
	}

	first, err := table.FirstTable(doc.Selection)
	if err != nil {
		return nil, traverse.NewExpandError(url, traverse.KindParse, err)
	}
	w.tables = append(w.tables, first)
	w.base = documentBase(ctx, w.session, url, doc)

	var links []string
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		links = append(links, href)
	})
	return links, nil
}

// BaseURL returns the URL the links of the last successfully expanded page
// are relative to: its <base href>, resolved against the loaded page URL
// when the session reports one, otherwise against the requested URL.
func (w *Web) BaseURL() string {
	return w.base
}

func documentBase(ctx context.Context, session browser.Session, requested string, doc *goquery.Document) string {
	page := requested
	if loc, ok := session.(browser.Locator); ok {
		if u, err := loc.Location(ctx); err == nil && u != "" {
			page = u
		}
	}
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return page
	}
	pageURL, err := neturl.Parse(page)
	if err != nil {
		return page
	}
	ref, err := neturl.Parse(strings.TrimSpace(href))
	if err != nil {
		return page
	}
	return pageURL.ResolveReference(ref).String()
}

// Table returns every captured table stacked into one, in capture order,
// with rows re-indexed from zero.
func (w *Web) Table() *table.Table {
	return table.Concat(w.tables...)
}

// Tables returns the number of tables captured so far.
func (w *Web) Tables() int {
	return len(w.tables)
}
