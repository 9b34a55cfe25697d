package scoring

import (
	"regexp"
	"strings"

	"github.com/pitchscope/pitchscope/pkg/models"
)

// keywordClusters maps each dimension to its keyword cluster (spec §4.2.3).
// Presence of the cluster — any one matching keyword — adds a flat +1;
// this is a presence test, not a per-keyword accumulator.
var keywordClusters = map[models.Dimension][]string{
	models.DimensionIdea:     {"ai", "platform", "proprietary", "patent"},
	models.DimensionTeam:     {"founder", "ex-", "phd", "years"},
	models.DimensionTraction: {"users", "mrr", "arr", "customers", "growth"},
	models.DimensionMarket:   {"tam", "billion", "cagr", "global"},
}

// quantitativeToken matches one "$" or "%" sign, or one digit-run of length
// 3+; each match adds +0.5 (spec §4.2.3), so "$50M, 30%, 1000 users" scores
// three matches, not one.
var quantitativeToken = regexp.MustCompile(`[\$%]|\d{3,}`)

// heuristicScore produces a deterministic, LLM-free ScoreReport. It is used
// both as the fallback when the Gateway cannot reach a provider and to
// backfill any individual field the LLM's JSON response omitted.
func heuristicScore(f Fields) models.ScoreReport {
	return models.ScoreReport{
		Idea:     heuristicDimension(models.DimensionIdea, f.Idea),
		Team:     heuristicDimension(models.DimensionTeam, f.Team),
		Traction: heuristicDimension(models.DimensionTraction, f.Traction),
		Market:   heuristicDimension(models.DimensionMarket, f.Market),
	}
}

func heuristicDimension(dim models.Dimension, field string) models.DimensionAssessment {
	trimmed := strings.TrimSpace(field)
	lower := strings.ToLower(trimmed)

	score := 5.0
	clusterPresent := false
	var matched, unmatched []string
	for _, kw := range keywordClusters[dim] {
		if strings.Contains(lower, kw) {
			matched = append(matched, kw)
		} else {
			unmatched = append(unmatched, kw)
		}
	}
	if len(matched) > 0 {
		clusterPresent = true
		score += 1.0
	}

	quantMatches := quantitativeToken.FindAllString(trimmed, -1)
	score += 0.5 * float64(len(quantMatches))

	if score > 9.0 {
		score = 9.0
	}

	assessment := "Limited detail provided; heuristic estimate only."
	var strengths, concerns []string
	if clusterPresent {
		assessment = "Detected relevant signal terms: " + strings.Join(matched, ", ") + "."
		strengths = capList(matched)
	}
	if len(unmatched) > 0 {
		concerns = capList(unmatched)
	}
	if len(quantMatches) == 0 {
		concerns = append(concerns, "No quantitative evidence found")
		concerns = capList(concerns)
	}

	return models.DimensionAssessment{
		Score:      score,
		Assessment: assessment,
		Strengths:  strengths,
		Concerns:   concerns,
	}
}
