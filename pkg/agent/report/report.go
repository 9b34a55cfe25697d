// Package report implements the Report Agent (spec §4.7): it renders an
// aggregated EvaluationResult to an HTML document and converts that to PDF
// bytes, assigning a stable 128-bit report id.
package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/htmlbasic"
	"github.com/google/uuid"

	"github.com/pitchscope/pitchscope/pkg/models"
)

// ContentType is the fixed MIME type of every rendered report.
const ContentType = "application/pdf"

// Agent is the Report Agent.
type Agent struct {
	logger *slog.Logger
}

// New constructs a Report Agent.
func New() *Agent {
	return &Agent{logger: slog.With("agent", "report")}
}

// Render implements the Reporter interface: it materializes the full
// evaluation into PDF bytes and assigns a stable report id.
func (a *Agent) Render(ctx context.Context, eval *models.EvaluationResult) (string, []byte, error) {
	reportID := uuid.New().String()

	html, err := renderHTML(eval)
	if err != nil {
		return "", nil, fmt.Errorf("report: rendering html: %w", err)
	}

	blob, err := htmlToPDF(html)
	if err != nil {
		return "", nil, fmt.Errorf("report: converting to pdf: %w", err)
	}

	return reportID, blob, nil
}

// Filename returns the original download filename for a given startup name
// (spec §4.7: "{startup_name_slug}_evaluation.pdf").
func Filename(startupName string) string {
	return fmt.Sprintf("%s_evaluation.pdf", slugify(startupName))
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		lower = "unknown-startup"
	}
	slug := nonSlugChars.ReplaceAllString(lower, "-")
	return strings.Trim(slug, "-")
}

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"bar": func(score float64) string {
		filled := int(score)
		if filled > 10 {
			filled = 10
		}
		return strings.Repeat("#", filled) + strings.Repeat("-", 10-filled)
	},
}).Parse(`
<h1>Investment Evaluation: {{.StartupName}}</h1>
<h2>Executive Summary</h2>
<p>Overall score: {{printf "%.1f" .Scores.OverallScore}}/10 &mdash; {{.Scores.Recommendation}}</p>
<p>Overall risk: {{.Critique.OverallRiskLabel}}</p>

<h2>Scores</h2>
<p>Idea    [{{bar .Scores.Idea.Score}}] {{printf "%.1f" .Scores.Idea.Score}}</p>
<p>Team    [{{bar .Scores.Team.Score}}] {{printf "%.1f" .Scores.Team.Score}}</p>
<p>Traction[{{bar .Scores.Traction.Score}}] {{printf "%.1f" .Scores.Traction.Score}}</p>
<p>Market  [{{bar .Scores.Market.Score}}] {{printf "%.1f" .Scores.Market.Score}}</p>

<h2>Narrative</h2>
<p><b>Vision:</b> {{.Narrative.Vision}}</p>
<p><b>Differentiation:</b> {{.Narrative.Differentiation}}</p>
<p><b>Timing:</b> {{.Narrative.Timing}}</p>
<p><b>Tagline:</b> {{.Narrative.Tagline}}</p>

<h2>Red Flags</h2>
{{range .Critique.RedFlags}}<p>[{{.Severity}}] {{.Flag}} ({{.Category}}): {{.Explanation}}</p>
{{else}}<p>No material concerns identified.</p>
{{end}}

<h2>Benchmarks</h2>
<p>Industry: {{.Benchmarks.Industry}} &mdash; Position: {{.Benchmarks.OverallPosition}}</p>
{{range .Benchmarks.Comparisons}}<p>{{.Metric}}: {{printf "%.1f" .StartupValue}} vs sector {{printf "%.1f" .SectorAvg}} (p{{.Percentile}})</p>
{{end}}
`))

func renderHTML(eval *models.EvaluationResult) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, eval); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func htmlToPDF(htmlStr string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 11)

	html := htmlbasic.New(pdf)
	html.Write(5, htmlStr)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
