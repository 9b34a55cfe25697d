// Package models defines the data types shared across every agent and the
// orchestrator: the normalized StartupFacts ingestion product, the four
// agent output types, and the aggregate EvaluationResult.
package models

// SourceType identifies how a StartupFacts record was produced.
type SourceType string

const (
	SourceTypePDF        SourceType = "pdf"
	SourceTypeURL        SourceType = "url"
	SourceTypeStructured SourceType = "structured"
)

// StartupFacts is the normalized, ingestion-independent view of a startup.
// All fields are optional strings except Name, which defaults to
// "Unknown Startup" when absent. Sector is matched case-insensitively
// against a known set by the Benchmark Agent.
type StartupFacts struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Problem        string `json:"problem"`
	Solution       string `json:"solution"`
	Traction       string `json:"traction"`
	Team           string `json:"team"`
	Market         string `json:"market"`
	BusinessModel  string `json:"business_model"`
	Competition    string `json:"competition"`
	Funding        string `json:"funding"`
	Stage          string `json:"stage"`
	Technology     string `json:"technology"`
	Sector         string `json:"sector"`

	// Ingestion metadata.
	SourceType        SourceType `json:"source_type"`
	SourceRef         string     `json:"source_ref,omitempty"`
	SlideCount        int        `json:"slide_count,omitempty"`
	RawContentLength  int        `json:"raw_content_length"`
}

// DefaultName is substituted when ingestion cannot determine a startup name.
const DefaultName = "Unknown Startup"

// WithDefaults returns a copy of facts with required defaults applied.
// Name defaults to DefaultName; Sector defaults to "technology" (the
// Benchmark Agent's default industry) when blank.
func (f StartupFacts) WithDefaults() StartupFacts {
	if f.Name == "" {
		f.Name = DefaultName
	}
	if f.Sector == "" {
		f.Sector = "technology"
	}
	return f
}
