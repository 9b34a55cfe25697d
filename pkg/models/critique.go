package models

import "time"

// Severity is the closed set of RedFlag severities.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Category is the closed set of RedFlag categories.
type Category string

const (
	CategoryIdea      Category = "idea"
	CategoryTeam      Category = "team"
	CategoryTraction  Category = "traction"
	CategoryMarket    Category = "market"
	CategoryFinancial Category = "financial"
	CategoryTechnical Category = "technical"
	CategoryOther     Category = "other"
)

// RedFlag is a single structured concern emitted by the Critique Agent.
type RedFlag struct {
	Flag        string   `json:"flag"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
	Category    Category `json:"category"`
}

// MaxRedFlags bounds CritiqueReport.RedFlags per spec §3.
const MaxRedFlags = 5

// RiskLabel is the deterministic, list-derived overall risk summary.
type RiskLabel string

const (
	RiskLow      RiskLabel = "low_risk"
	RiskModerate RiskLabel = "moderate_risk"
	RiskHigh     RiskLabel = "high_risk"
	RiskVeryHigh RiskLabel = "very_high_risk"
)

// OverallRiskLabel computes the risk label deterministically from a
// red flag list per spec §3: c critical, h high, m medium counts.
//
//	c≥1            → very_high_risk
//	h≥2            → high_risk
//	h=1 or m≥2     → moderate_risk
//	else           → low_risk
func OverallRiskLabel(flags []RedFlag) RiskLabel {
	var c, h, m int
	for _, f := range flags {
		switch f.Severity {
		case SeverityCritical:
			c++
		case SeverityHigh:
			h++
		case SeverityMedium:
			m++
		}
	}
	switch {
	case c >= 1:
		return RiskVeryHigh
	case h >= 2:
		return RiskHigh
	case h == 1 || m >= 2:
		return RiskModerate
	default:
		return RiskLow
	}
}

// CritiqueReport is the Critique Agent's output.
type CritiqueReport struct {
	RedFlags         []RedFlag `json:"red_flags"`
	OverallRiskLabel RiskLabel `json:"overall_risk_label"`
	Summary          string    `json:"summary"`
	AnalysisTime     time.Time `json:"analysis_timestamp"`
	Degraded         bool      `json:"degraded"`
}
