package expand

import (
	"context"
	"net/url"
	"strings"

	"github.com/orneryd/graphwalk/pkg/traverse"
)

// LinkResolver turns the raw links of a web expander into absolute http(s)
// URLs that can be fed back into a traversal.
type LinkResolver struct {
	inner    traverse.Expander[string]
	sameHost bool
}

var _ traverse.Expander[string] = (*LinkResolver)(nil)

// BaseReporter is implemented by expanders that know the URL the links of
// the page they last expanded are relative to. Web implements it.
type BaseReporter interface {
	BaseURL() string
}

// ResolveOption configures a LinkResolver.
type ResolveOption func(*LinkResolver)

// SameHost keeps only links on the same host as the page they appear on,
// after redirects.
func SameHost() ResolveOption {
	return func(r *LinkResolver) { r.sameHost = true }
}

// ResolveLinks wraps inner. Each child is resolved against the page it was
// found on: the inner expander's BaseURL when it is a BaseReporter (which
// follows redirects and <base href>), otherwise the parent URL. Fragments
// are removed; empty, unparsable and non-http(s) links are dropped.
func ResolveLinks(inner traverse.Expander[string], opts ...ResolveOption) *LinkResolver {
	r := &LinkResolver{inner: inner}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expand expands node with the wrapped expander and resolves the result.
func (r *LinkResolver) Expand(ctx context.Context, node string) ([]string, error) {
	links, err := r.inner.Expand(ctx, node)
	if err != nil {
		return nil, err
	}
	page := node
	if br, ok := r.inner.(BaseReporter); ok && br.BaseURL() != "" {
		page = br.BaseURL()
	}
	base, err := url.Parse(page)
	if err != nil {
		return nil, traverse.NewExpandError(node, traverse.KindParse, err)
	}

	out := make([]string, 0, len(links))
	for _, l := range links {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		ref, err := url.Parse(l)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		if r.sameHost && abs.Host != base.Host {
			continue
		}
		abs.Fragment = ""
		abs.RawFragment = ""
		out = append(out, abs.String())
	}
	return out, nil
}
