package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	fetchTimeout  = 10 * time.Second
	maxRegionLen  = 2000
)

var mainContentSelectors = []string{"main", "article", "#content", ".content", "p"}

// fetchURL retrieves the page at rawURL with a browser-like user agent and
// parses it into a region-truncated corpus (spec §4.6 URL path).
func fetchURL(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("unreachable url: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	return extractCorpusFromDocument(doc), nil
}

func extractCorpusFromDocument(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	var regions []string

	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		regions = append(regions, truncate(title, maxRegionLen))
	}
	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		regions = append(regions, truncate(desc, maxRegionLen))
	}
	if ogDesc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		regions = append(regions, truncate(ogDesc, maxRegionLen))
	}

	for _, sel := range mainContentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if text != "" {
				regions = append(regions, truncate(text, maxRegionLen))
			}
		})
	}

	return strings.Join(regions, "\n\n")
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
