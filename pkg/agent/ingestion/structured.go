package ingestion

import (
	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/models"
)

// factsFromStructured merges an already-parsed field map directly into a
// StartupFacts, with blanks filled from the companion free-text fields
// (spec §4.6 structured path).
func factsFromStructured(input agent.StructuredInput) models.StartupFacts {
	var f models.StartupFacts

	get := func(key string) string { return input.Fields[key] }

	f.Name = firstNonEmpty(get("name"), input.StartupName)
	f.Description = firstNonEmpty(get("description"), input.Description)
	f.Problem = get("problem")
	f.Solution = get("solution")
	f.Traction = firstNonEmpty(get("traction"), input.Traction)
	f.Team = firstNonEmpty(get("team"), input.Team)
	f.Market = firstNonEmpty(get("market"), input.Market)
	f.BusinessModel = get("business_model")
	f.Competition = get("competition")
	f.Funding = get("funding")
	f.Stage = get("stage")
	f.Technology = get("technology")
	f.Sector = get("sector")

	return f
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
