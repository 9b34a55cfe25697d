package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// extractPagesWithTimeout bounds PDF extraction to pdfParseTimeout (spec
// §5). Parsing is CPU-bound and not itself context-aware, so it runs on a
// background goroutine and the caller returns as soon as either it
// finishes or the timeout/ctx elapses first.
func extractPagesWithTimeout(ctx context.Context, data []byte) ([]string, error) {
	type result struct {
		pages []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		pages, err := extractPages(data)
		done <- result{pages, err}
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, pdfParseTimeout)
	defer cancel()

	select {
	case r := <-done:
		return r.pages, r.err
	case <-timeoutCtx.Done():
		return nil, fmt.Errorf("pdf extraction: %w", timeoutCtx.Err())
	}
}

// extractPages returns one string per PDF page. It tries the structured
// extractor (ledongthuc/pdf, which walks the page tree and font encodings
// to produce clean text) first, and falls back to a crude content-stream
// token scrape via pdfcpu when the structured extractor errors — a
// malformed xref table or unsupported encoding, typically (spec §4.6).
func extractPages(data []byte) ([]string, error) {
	pages, err := extractStructured(data)
	if err == nil && len(pages) > 0 {
		return pages, nil
	}

	fallbackPages, ferr := extractBasic(data)
	if ferr != nil {
		if err != nil {
			return nil, fmt.Errorf("pdf extraction failed: structured: %w; basic: %v", err, ferr)
		}
		return nil, fmt.Errorf("pdf extraction failed: %w", ferr)
	}
	return fallbackPages, nil
}

func extractStructured(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	n := reader.NumPage()
	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("reading page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

var contentStringToken = regexp.MustCompile(`\(((?:[^()\\]|\\.)*)\)\s*T[jJ]`)

// extractBasic scrapes Tj/TJ string-literal operands directly out of raw
// content streams. It does not handle every PDF text-positioning operator
// correctly, but recovers enough readable tokens to keep the pipeline
// degraded rather than failed when the structured extractor cannot open a
// file at all.
func extractBasic(data []byte) ([]string, error) {
	dir, err := os.MkdirTemp("", "pitchscope-pdf-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	if err := api.ExtractContent(bytes.NewReader(data), dir, "ingest", nil, nil); err != nil {
		return nil, fmt.Errorf("extracting raw content streams: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scratch dir: %w", err)
	}

	var pages []string
	for _, entry := range entries {
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		pages = append(pages, scrapeContentStream(raw))
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no content streams recovered")
	}
	return pages, nil
}

func scrapeContentStream(raw []byte) string {
	matches := contentStringToken.FindAllSubmatch(raw, -1)
	var b strings.Builder
	for _, m := range matches {
		token := strings.ReplaceAll(string(m[1]), `\(`, "(")
		token = strings.ReplaceAll(token, `\)`, ")")
		b.WriteString(token)
		b.WriteString(" ")
	}
	return b.String()
}

// pdfIsReadable is used by callers to decide "empty corpus" ingestion
// failures: a PDF that opens but yields zero non-whitespace page text.
func pdfIsReadable(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
