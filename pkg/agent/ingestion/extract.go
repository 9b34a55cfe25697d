package ingestion

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

const (
	extractModel       = "gemini-1.5-pro"
	extractTemperature = 0.3
	extractMaxTokens   = 2048
)

var factsFieldOrder = []string{
	"name", "description", "problem", "solution", "traction", "team", "market",
	"business_model", "competition", "funding", "stage", "technology", "sector",
}

// extractFacts sends the collapsed corpus to the LLM for structured
// extraction of the 13 StartupFacts fields, falling back to keyword
// heuristics per field when the LLM is unavailable or its response cannot
// be parsed (spec §4.6 step 5).
func extractFacts(ctx context.Context, gateway llmgateway.Invoker, corpus string) models.StartupFacts {
	heuristic := heuristicExtract(corpus)

	if gateway == nil {
		return heuristic
	}

	prompt := buildExtractionPrompt(corpus)
	result, err := gateway.Invoke(ctx, extractModel, prompt, llmgateway.Options{
		Temperature: extractTemperature,
		MaxTokens:   extractMaxTokens,
		SystemPrompt: "You extract structured facts about a startup from raw pitch material. " +
			"Respond with a single strict JSON object only; use an empty string for any field " +
			"you cannot determine.",
	})
	if err != nil || !result.OK {
		return heuristic
	}

	obj, ok := llmgateway.ExtractJSON(result.Text)
	if !ok {
		return heuristic
	}

	return mergeExtractedFields(heuristic, obj)
}

func buildExtractionPrompt(corpus string) string {
	var b strings.Builder
	b.WriteString("Extract the following fields from this startup pitch material:\n")
	b.WriteString(strings.Join(factsFieldOrder, ", "))
	b.WriteString("\n\nMATERIAL:\n")
	b.WriteString(corpus)
	b.WriteString("\n\nRespond with strict JSON with exactly these keys, all string values.")
	return b.String()
}

func mergeExtractedFields(base models.StartupFacts, obj map[string]any) models.StartupFacts {
	set := func(dst *string, key string) {
		if v, ok := llmgateway.StringField(obj, key); ok && v != "" {
			*dst = v
		}
	}
	set(&base.Name, "name")
	set(&base.Description, "description")
	set(&base.Problem, "problem")
	set(&base.Solution, "solution")
	set(&base.Traction, "traction")
	set(&base.Team, "team")
	set(&base.Market, "market")
	set(&base.BusinessModel, "business_model")
	set(&base.Competition, "competition")
	set(&base.Funding, "funding")
	set(&base.Stage, "stage")
	set(&base.Technology, "technology")
	set(&base.Sector, "sector")
	return base
}

var (
	nameLinePattern    = regexp.MustCompile(`(?im)^\s*(?:company|startup)\s*:\s*(.+)$`)
	fundingPattern     = regexp.MustCompile(`(?i)(?:raised|raising|seeking)\s+\$?([\d,.]+\s?[kmb]?)`)
	stageKeywords      = map[string][]string{
		"pre-seed": {"pre-seed"},
		"seed":     {"seed round", "seed stage", "seed funding"},
		"series a": {"series a"},
		"series b": {"series b"},
		"series c": {"series c"},
	}
	sectorKeywords = map[string][]string{
		"technology":    {"software", "saas", "platform", "ai", "app"},
		"fintech":       {"fintech", "payments", "banking", "lending"},
		"healthcare":    {"healthcare", "health", "medical", "clinical", "patient"},
		"e-commerce":    {"e-commerce", "ecommerce", "marketplace", "retail"},
		"food-delivery": {"food delivery", "restaurant delivery", "meal delivery"},
	}
)

// heuristicExtract applies cheap keyword/regex rules per field when the LLM
// path is unavailable; every field defaults to empty, letting
// StartupFacts.WithDefaults apply its own defaults downstream.
func heuristicExtract(corpus string) models.StartupFacts {
	var f models.StartupFacts
	lower := strings.ToLower(corpus)

	if m := nameLinePattern.FindStringSubmatch(corpus); m != nil {
		f.Name = strings.TrimSpace(m[1])
	}

	f.Description = firstSentences(corpus, 2)

	if m := fundingPattern.FindStringSubmatch(corpus); m != nil {
		f.Funding = fmt.Sprintf("$%s", m[1])
	}

	for stage, kws := range stageKeywords {
		if containsAny(lower, kws) {
			f.Stage = stage
			break
		}
	}
	// Sectors are checked in a fixed order with the broad "technology"
	// keywords last, so a specific sector wins over an incidental match
	// such as "ai" inside "raising".
	for _, sector := range []string{"fintech", "healthcare", "e-commerce", "food-delivery", "technology"} {
		if containsAny(lower, sectorKeywords[sector]) {
			f.Sector = sector
			break
		}
	}

	f.Traction = grabSentencesContaining(corpus, []string{"revenue", "arr", "mrr", "customers", "users", "growth"})
	f.Team = grabSentencesContaining(corpus, []string{"founder", "ceo", "cto", "team"})
	f.Market = grabSentencesContaining(corpus, []string{"market", "tam", "industry"})
	f.Competition = grabSentencesContaining(corpus, []string{"competitor", "competition", "alternative"})
	f.BusinessModel = grabSentencesContaining(corpus, []string{"pricing", "subscription", "revenue model", "business model"})
	f.Problem = grabSentencesContaining(corpus, []string{"problem", "pain point", "challenge"})
	f.Solution = grabSentencesContaining(corpus, []string{"solution", "our product", "we built", "we offer"})
	f.Technology = grabSentencesContaining(corpus, []string{"technology", "algorithm", "proprietary", "patent"})

	return f
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

var sentenceSplit = regexp.MustCompile(`(?:[.!?]\s+|\n)`)

func firstSentences(text string, n int) string {
	sentences := sentenceSplit.Split(strings.TrimSpace(text), -1)
	var out []string
	for _, s := range sentences {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
		if len(out) >= n {
			break
		}
	}
	return strings.Join(out, ". ")
}

// grabSentencesContaining returns the first sentence that matches any
// keyword, or "" if none do.
func grabSentencesContaining(text string, keywords []string) string {
	sentences := sentenceSplit.Split(text, -1)
	for _, s := range sentences {
		lower := strings.ToLower(s)
		if containsAny(lower, keywords) {
			return strings.TrimSpace(s)
		}
	}
	return ""
}
