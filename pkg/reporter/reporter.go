package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/net/publicsuffix"

	"sitewalker/internal/models"
)

// Format selects the rendering of a crawl report.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Render serializes a crawl report in the requested format.
func Render(report *models.CrawlReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return renderJSON(report)
	case FormatMarkdown:
		return renderMarkdown(report), nil
	case FormatText:
		return renderText(report), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func renderJSON(report *models.CrawlReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(data), nil
}

func renderMarkdown(report *models.CrawlReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Crawl report for %s\n\n", report.BaseURL)
	fmt.Fprintf(&b, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Pages crawled | %d |\n", report.PagesCrawled)
	fmt.Fprintf(&b, "| Errors encountered | %d |\n", report.ErrorsEncountered)
	fmt.Fprintf(&b, "| Max depth configured | %d |\n", report.MaxDepth)
	fmt.Fprintf(&b, "| Total time | %.2fs |\n", report.TotalTimeSeconds)
	fmt.Fprintf(&b, "| URLs discovered | %d |\n", len(report.VisitedURLs))

	if domains := externalDomainSummary(report.ExternalHosts); len(domains) > 0 {
		b.WriteString("\n## External domains linked\n\n")
		b.WriteString("| Domain | Links |\n|---|---|\n")
		for _, d := range domains {
			fmt.Fprintf(&b, "| %s | %d |\n", d.domain, d.count)
		}
	}

	if len(report.VisitedURLs) > 0 {
		b.WriteString("\n## Visited URLs\n\n")
		for _, u := range report.VisitedURLs {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}

	return b.String()
}

func renderText(report *models.CrawlReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Crawl of %s\n", report.BaseURL)
	fmt.Fprintf(&b, "  pages crawled:      %d\n", report.PagesCrawled)
	fmt.Fprintf(&b, "  errors encountered: %d\n", report.ErrorsEncountered)
	fmt.Fprintf(&b, "  max depth:          %d\n", report.MaxDepth)
	fmt.Fprintf(&b, "  total time:         %.2fs\n", report.TotalTimeSeconds)
	fmt.Fprintf(&b, "  urls discovered:    %d\n", len(report.VisitedURLs))

	if domains := externalDomainSummary(report.ExternalHosts); len(domains) > 0 {
		b.WriteString("  external domains:\n")
		for _, d := range domains {
			fmt.Fprintf(&b, "    %-40s %d\n", d.domain, d.count)
		}
	}

	return b.String()
}

type domainEntry struct {
	domain string
	count  int
}

// externalDomainSummary collapses per-host tallies into registered domains
// (eTLD+1), sorted by link count descending, then name. Hosts that have no
// recognizable public suffix keep their raw name.
func externalDomainSummary(hosts map[string]int) []domainEntry {
	if len(hosts) == 0 {
		return nil
	}

	byDomain := make(map[string]int)
	for host, count := range hosts {
		domain, err := publicsuffix.EffectiveTLDPlusOne(host)
		if err != nil {
			domain = host
		}
		byDomain[domain] += count
	}

	entries := make([]domainEntry, 0, len(byDomain))
	for domain, count := range byDomain {
		entries = append(entries, domainEntry{domain, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].domain < entries[j].domain
		}
		return entries[i].count > entries[j].count
	})
	return entries
}
