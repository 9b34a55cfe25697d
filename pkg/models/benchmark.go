package models

// Position summarizes a BenchmarkReport's overall standing against priors.
type Position string

const (
	PositionTopDecile     Position = "top_decile"
	PositionTopQuartile   Position = "top_quartile"
	PositionAboveAverage  Position = "above_average"
	PositionAverage       Position = "average"
	PositionBelowAverage  Position = "below_average"
)

// MetricComparison is a single startup-vs-industry metric comparison.
type MetricComparison struct {
	Metric        string  `json:"metric"`
	StartupValue  float64 `json:"startup_value"`
	SectorAvg     float64 `json:"sector_avg"`
	Percentile    int     `json:"percentile"`
	Insight       string  `json:"insight"`
}

// BenchmarkReport is the Benchmark Agent's output.
type BenchmarkReport struct {
	Industry       string             `json:"industry"`
	Comparisons    []MetricComparison `json:"comparisons"`
	OverallPosition Position          `json:"overall_position"`
	Summary        string             `json:"summary"`
	Degraded       bool               `json:"degraded"`
}
