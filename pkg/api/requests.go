package api

import "github.com/pitchscope/pitchscope/pkg/models"

// ScoreRequest is the body for POST /score (spec §6).
type ScoreRequest struct {
	Idea        string `json:"idea"`
	Team        string `json:"team"`
	Traction    string `json:"traction"`
	Market      string `json:"market"`
	StartupName string `json:"startup_name,omitempty"`
}

// CritiqueRequest is the body for POST /critique (spec §6).
type CritiqueRequest struct {
	ScoreReport      models.ScoreReport `json:"score_report"`
	PitchdeckSummary string             `json:"pitchdeck_summary"`
	StartupName      string             `json:"startup_name,omitempty"`
}

// NarrativeRequest is the body for POST /narrative (spec §6).
type NarrativeRequest struct {
	StartupData string `json:"startup_data"`
	StartupID   string `json:"startup_id,omitempty"`
	UseCache    bool   `json:"use_cache,omitempty"`
}

// IngestRequest is the JSON-body variant of POST /ingest (multipart file
// and form url are handled separately; see handler_ingest.go).
type IngestRequest struct {
	Fields map[string]string `json:"fields,omitempty"`
	Name   string            `json:"name,omitempty"`
}
