package api

import (
	"github.com/pitchscope/pitchscope/pkg/config"
	"github.com/pitchscope/pitchscope/pkg/models"
)

// EvaluateResponse wraps EvaluationResult with its report download URL
// (spec §6: "EvaluationResult + report_url").
type EvaluateResponse struct {
	models.EvaluationResult
	ReportURL string `json:"report_url"`
}

// DeleteAckResponse is returned by DELETE /narrative/cache/{id}.
type DeleteAckResponse struct {
	Deleted bool   `json:"deleted"`
	Key     string `json:"key"`
}

// HealthResponse is returned by GET /health (spec §6: "liveness +
// configuration summary").
type HealthResponse struct {
	Status        string         `json:"status"`
	Configuration config.Summary `json:"configuration"`
}

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
