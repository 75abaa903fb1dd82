package reporter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitewalker/internal/models"
)

func sampleReport() *models.CrawlReport {
	return &models.CrawlReport{
		BaseURL:           "https://example.com",
		PagesCrawled:      12,
		MaxDepth:          3,
		TotalTimeSeconds:  1.5,
		ErrorsEncountered: 2,
		VisitedURLs:       []string{"https://example.com/", "https://example.com/about"},
		ExternalHosts: map[string]int{
			"cdn.other.com":  3,
			"www.other.com":  2,
			"lonely.example": 1,
		},
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := Render(sampleReport(), FormatJSON)
	require.NoError(t, err)

	var decoded models.CrawlReport
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, int64(12), decoded.PagesCrawled)
	assert.Equal(t, int64(2), decoded.ErrorsEncountered)
	assert.Len(t, decoded.VisitedURLs, 2)
}

func TestRenderMarkdown(t *testing.T) {
	out, err := Render(sampleReport(), FormatMarkdown)
	require.NoError(t, err)

	assert.Contains(t, out, "# Crawl report for https://example.com")
	assert.Contains(t, out, "| Pages crawled | 12 |")
	assert.Contains(t, out, "- https://example.com/about")
	// cdn.other.com and www.other.com collapse into one registered domain.
	assert.Contains(t, out, "| other.com | 5 |")
}

func TestRenderText(t *testing.T) {
	out, err := Render(sampleReport(), FormatText)
	require.NoError(t, err)

	assert.Contains(t, out, "pages crawled:      12")
	assert.Contains(t, out, "errors encountered: 2")
	assert.Contains(t, out, "other.com")
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(sampleReport(), Format("yaml"))
	assert.Error(t, err)
}

func TestExternalDomainSummaryOrder(t *testing.T) {
	entries := externalDomainSummary(map[string]int{
		"a.example.com": 1,
		"b.example.org": 5,
	})
	require.Len(t, entries, 2)
	assert.Equal(t, "example.org", entries[0].domain)
	assert.Equal(t, 5, entries[0].count)
	assert.Equal(t, "example.com", entries[1].domain)
}
