package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// FetchError reports a failed page fetch. StatusCode is zero when the
// request never got a response.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Options configures the HTTP fetcher.
type Options struct {
	Timeout           time.Duration // total request timeout, default 15s
	RequestsPerSecond int           // 0 disables rate limiting
	UserAgent         string
}

// HTTP fetches pages over the network. It owns the client, its timeouts and
// the request rate; the crawl core never touches the transport.
type HTTP struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewHTTP builds a fetcher with a pooled transport.
func NewHTTP(opts Options) *HTTP {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "SiteWalker/1.0"
	}

	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     30 * time.Second,
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.RequestsPerSecond)
	}

	return &HTTP{
		client:    &http.Client{Transport: transport, Timeout: opts.Timeout},
		limiter:   limiter,
		userAgent: opts.UserAgent,
	}
}

// Fetch retrieves pageURL and returns its body. Non-2xx responses and
// transport failures come back as a *FetchError.
func (h *HTTP) Fetch(ctx context.Context, pageURL string) (string, error) {
	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			return "", &FetchError{URL: pageURL, Cause: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Cause: err}
	}
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := h.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: pageURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: pageURL, Cause: err}
	}
	return string(body), nil
}
