package ingestion

import (
	"regexp"
	"strings"
)

// Slide is one segmented unit of a pitch deck.
type Slide struct {
	Index int
	Text  string
}

var slideHeaderPattern = regexp.MustCompile(`(?im)^\s*slide\s+(\d+)\b`)

// segmentSlides chunks raw page text into slide candidates, in order of
// preference: form-feed characters, explicit "Slide N" headers, page
// breaks (one slide per extracted page), then heuristic paragraph grouping
// when none of the above yields more than one slide (spec §4.6 step 2).
func segmentSlides(pages []string) []Slide {
	joined := strings.Join(pages, "\f")

	if strings.Contains(joined, "\f") && strings.Count(joined, "\f") > 0 {
		if slides := splitOnFormFeed(joined); len(slides) > 1 {
			return slides
		}
	}

	if slides := splitOnSlideHeaders(joined); len(slides) > 1 {
		return slides
	}

	if len(pages) > 1 {
		return splitOnPages(pages)
	}

	return splitOnParagraphs(joined)
}

func splitOnFormFeed(joined string) []Slide {
	parts := strings.Split(joined, "\f")
	return toSlides(parts)
}

func splitOnSlideHeaders(joined string) []Slide {
	locs := slideHeaderPattern.FindAllStringIndex(joined, -1)
	if len(locs) == 0 {
		return nil
	}
	var parts []string
	for i, loc := range locs {
		end := len(joined)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		parts = append(parts, joined[loc[0]:end])
	}
	return toSlides(parts)
}

func splitOnPages(pages []string) []Slide {
	return toSlides(pages)
}

func splitOnParagraphs(joined string) []Slide {
	raw := regexp.MustCompile(`\n\s*\n`).Split(joined, -1)
	return toSlides(raw)
}

func toSlides(parts []string) []Slide {
	var slides []Slide
	idx := 0
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		idx++
		slides = append(slides, Slide{Index: idx, Text: trimmed})
	}
	return slides
}
