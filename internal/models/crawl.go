package models

import "time"

// FrontierEntry is one unit of crawl work: a URL and the depth at which it
// was discovered. Entries are immutable and consumed exactly once.
type FrontierEntry struct {
	URL   string `json:"url"`
	Depth int    `json:"depth"`
}

// CrawlResult is a successfully fetched page handed to the result sink.
type CrawlResult struct {
	URL       string    `json:"url"`
	Content   string    `json:"content"`
	Text      string    `json:"text"`
	Title     string    `json:"title"`
	Depth     int       `json:"depth"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CrawlReport summarizes a finished crawl run. It is built once from the
// final counters and the visited set, and is read-only afterwards.
type CrawlReport struct {
	BaseURL           string         `json:"base_url"`
	PagesCrawled      int64          `json:"pages_crawled"`
	MaxDepth          int            `json:"max_depth_configured"`
	TotalTimeSeconds  float64        `json:"total_time_seconds"`
	ErrorsEncountered int64          `json:"errors_encountered"`
	VisitedURLs       []string       `json:"visited_urls"`
	ExternalHosts     map[string]int `json:"external_hosts,omitempty"`
}
