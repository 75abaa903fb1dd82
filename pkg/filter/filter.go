package filter

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultExcludedExtensions are the URL suffixes skipped by default.
var DefaultExcludedExtensions = []string{".pdf", ".jpg", ".png", ".gif"}

// Filter decides whether a candidate URL is worth crawling. It is a pure
// predicate: no I/O, no state mutation, and it never fails. A URL that
// cannot even be parsed is simply not crawlable.
type Filter struct {
	origin   *url.URL
	excluded []string
}

// New builds a Filter scoped to the host of baseURL. excluded is the list
// of file extensions to reject; nil selects DefaultExcludedExtensions.
func New(baseURL string, excluded []string) (*Filter, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if origin.Hostname() == "" {
		return nil, fmt.Errorf("base URL %q has no host", baseURL)
	}

	if excluded == nil {
		excluded = DefaultExcludedExtensions
	}
	normalized := make([]string, 0, len(excluded))
	for _, ext := range excluded {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}

	return &Filter{origin: origin, excluded: normalized}, nil
}

// Origin returns the host the filter is scoped to.
func (f *Filter) Origin() string {
	return f.origin.Hostname()
}

// Crawlable reports whether candidate should be fetched: http(s) scheme,
// a non-empty host equal to the origin host (no subdomain generalization),
// and not ending in an excluded extension. The extension check is a
// case-insensitive suffix match on the whole URL string.
func (f *Filter) Crawlable(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Hostname() == "" {
		return false
	}

	lower := strings.ToLower(candidate)
	for _, ext := range f.excluded {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}

	return u.Hostname() == f.origin.Hostname()
}
