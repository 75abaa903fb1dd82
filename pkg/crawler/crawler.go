package crawler

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"sitewalker/internal/models"
	"sitewalker/pkg/filter"
	"sitewalker/pkg/frontier"
)

// Options configures one crawl run. The zero value of each limit falls back
// to its default.
type Options struct {
	BaseURL            string
	MaxDepth           int           // default 3
	MaxPages           int           // default 100
	Workers            int           // default 5
	IdleTimeout        time.Duration // worker dequeue timeout, default 5s
	ExcludedExtensions []string      // nil selects filter.DefaultExcludedExtensions
}

func (o *Options) withDefaults() {
	if o.MaxDepth <= 0 {
		o.MaxDepth = 3
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 100
	}
	if o.Workers <= 0 {
		o.Workers = 5
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = 5 * time.Second
	}
}

// Crawler coordinates a bounded pool of workers over a shared frontier.
// The frontier's visited set and the two atomic counters are the only
// mutable state shared between workers.
type Crawler struct {
	opts       Options
	originHost string

	fetcher   Fetcher
	extractor Extractor
	sink      ResultSink
	filter    *filter.Filter
	frontier  *frontier.Frontier

	pagesCrawled      atomic.Int64
	errorsEncountered atomic.Int64

	externalMu    sync.Mutex
	externalHosts map[string]int
}

// New validates the options and builds a crawler. The fetcher, extractor
// and sink are required collaborators.
func New(opts Options, f Fetcher, e Extractor, sink ResultSink) (*Crawler, error) {
	opts.withDefaults()

	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("base URL %q has no host", opts.BaseURL)
	}

	urlFilter, err := filter.New(opts.BaseURL, opts.ExcludedExtensions)
	if err != nil {
		return nil, err
	}

	return &Crawler{
		opts:          opts,
		originHost:    u.Hostname(),
		fetcher:       f,
		extractor:     e,
		sink:          sink,
		filter:        urlFilter,
		frontier:      frontier.New(),
		externalHosts: make(map[string]int),
	}, nil
}

// Run seeds the frontier with the base URL at depth zero, drives the worker
// pool until the frontier is quiescent or the limits are hit, and returns
// the final report. Per-URL failures only surface in the error counter; Run
// itself fails only when it cannot start.
func (c *Crawler) Run(ctx context.Context) (*models.CrawlReport, error) {
	start := time.Now()

	if !c.frontier.TryEnqueue(c.opts.BaseURL, 0) {
		return nil, fmt.Errorf("failed to seed frontier with %s", c.opts.BaseURL)
	}

	log.Infof("starting crawl of %s: max_depth=%d max_pages=%d workers=%d",
		c.opts.BaseURL, c.opts.MaxDepth, c.opts.MaxPages, c.opts.Workers)

	var wg sync.WaitGroup
	for i := 0; i < c.opts.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			c.worker(ctx, id)
		}(i)
	}
	wg.Wait()
	c.frontier.Close()

	report := &models.CrawlReport{
		BaseURL:           c.opts.BaseURL,
		PagesCrawled:      c.pagesCrawled.Load(),
		MaxDepth:          c.opts.MaxDepth,
		TotalTimeSeconds:  time.Since(start).Seconds(),
		ErrorsEncountered: c.errorsEncountered.Load(),
		VisitedURLs:       c.frontier.Visited(),
		ExternalHosts:     c.externalHostsSnapshot(),
	}

	log.Infof("crawl finished: pages=%d errors=%d elapsed=%.2fs",
		report.PagesCrawled, report.ErrorsEncountered, report.TotalTimeSeconds)

	return report, nil
}

// worker pulls entries until the frontier closes, the idle timeout expires
// or the context is canceled.
func (c *Crawler) worker(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			log.Warnf("worker %d: context canceled", id)
			return
		}

		entry, ok := c.frontier.Dequeue(c.opts.IdleTimeout)
		if !ok {
			log.Debugf("worker %d: no work, stopping", id)
			return
		}
		c.process(ctx, entry)
		c.frontier.Done()
	}
}

// process runs one entry through the admission check, the fetch, the sink
// and link discovery. Every failure mode is terminal for this URL only.
func (c *Crawler) process(ctx context.Context, entry models.FrontierEntry) {
	if entry.Depth > c.opts.MaxDepth {
		return
	}
	// Reserve a slot in the page budget before fetching, so two workers
	// racing on the last slot cannot both fetch. A failed fetch returns
	// the slot.
	if !c.reservePage() {
		return
	}

	content, err := c.fetcher.Fetch(ctx, entry.URL)
	if err != nil {
		c.releasePage()
		c.errorsEncountered.Add(1)
		log.Warnf("fetch failed for %s: %v", entry.URL, err)
		return
	}

	result := models.CrawlResult{
		URL:       entry.URL,
		Content:   content,
		Text:      c.extractor.Text(content),
		Title:     c.extractor.Title(content),
		Depth:     entry.Depth,
		FetchedAt: time.Now().UTC(),
	}
	if err := c.sink.Store(ctx, result); err != nil {
		log.Errorf("store failed for %s: %v", entry.URL, err)
	}

	log.WithFields(log.Fields{"url": entry.URL, "depth": entry.Depth}).Debug("crawled page")

	for _, link := range c.extractor.Links(content, entry.URL) {
		if !c.filter.Crawlable(link) {
			c.noteExternal(link)
			continue
		}
		c.frontier.TryEnqueue(link, entry.Depth+1)
	}
}

// reservePage claims one unit of the page budget. pagesCrawled can never
// exceed MaxPages because the claim happens before the fetch.
func (c *Crawler) reservePage() bool {
	limit := int64(c.opts.MaxPages)
	for {
		n := c.pagesCrawled.Load()
		if n >= limit {
			return false
		}
		if c.pagesCrawled.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *Crawler) releasePage() {
	c.pagesCrawled.Add(-1)
}

// noteExternal tallies rejected links that point at a different host. Other
// rejection reasons (bad scheme, excluded extension) are not counted.
func (c *Crawler) noteExternal(link string) {
	u, err := url.Parse(link)
	if err != nil {
		return
	}
	host := u.Hostname()
	if host == "" || host == c.originHost {
		return
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return
	}

	c.externalMu.Lock()
	c.externalHosts[host]++
	c.externalMu.Unlock()
}

func (c *Crawler) externalHostsSnapshot() map[string]int {
	c.externalMu.Lock()
	defer c.externalMu.Unlock()

	if len(c.externalHosts) == 0 {
		return nil
	}
	snapshot := make(map[string]int, len(c.externalHosts))
	for host, count := range c.externalHosts {
		snapshot[host] = count
	}
	return snapshot
}
