package crawler

import (
	"context"

	"sitewalker/internal/models"
)

// Fetcher retrieves a page. It owns network I/O and its own timeouts; the
// crawl core only sees content or an error.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor turns fetched content into candidate links and the metadata
// persisted with each result. Implementations must never fail on malformed
// content: bad markup means zero links and empty strings.
type Extractor interface {
	// Links returns absolute candidate URLs found in content.
	Links(content, baseURL string) []string

	// Title returns the page title, or "".
	Title(content string) string

	// Text returns the readable text of the page, or "".
	Text(content string) string
}

// ResultSink persists each successfully fetched page. Implementations must
// be safe for concurrent callers; a sink backed by a single store has to
// serialize its own writes.
type ResultSink interface {
	Store(ctx context.Context, result models.CrawlResult) error
}
