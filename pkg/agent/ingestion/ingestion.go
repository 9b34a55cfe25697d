// Package ingestion implements the Ingestion Agent (spec §4.6): it
// normalizes a PDF, URL, or structured-text source into a StartupFacts
// record. It is the only agent permitted to return a non-nil error —
// every failure here is an IngestionFailed that aborts the pipeline.
package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pitchscope/pitchscope/pkg/agent"
	"github.com/pitchscope/pitchscope/pkg/evalerrors"
	"github.com/pitchscope/pitchscope/pkg/llmgateway"
	"github.com/pitchscope/pitchscope/pkg/models"
)

// pdfParseTimeout bounds PDF text extraction (spec §5: "a PDF parse 30 s").
const pdfParseTimeout = 30 * time.Second

// Agent is the Ingestion Agent.
type Agent struct {
	gateway    llmgateway.Invoker // may be nil: extraction/classification fall back to keyword rules
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs an Ingestion Agent. gateway may be nil.
func New(gateway llmgateway.Invoker, httpClient *http.Client) *Agent {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}
	return &Agent{gateway: gateway, httpClient: httpClient, logger: slog.With("agent", "ingestion")}
}

// Ingest implements the Ingester interface.
func (a *Agent) Ingest(ctx context.Context, source agent.Source) (*models.StartupFacts, error) {
	if err := source.Validate(); err != nil {
		return nil, evalerrors.NewInputError("source", err.Error())
	}

	switch source.Kind {
	case agent.SourceKindPDF:
		return a.ingestPDF(ctx, source.PDFBytes)
	case agent.SourceKindURL:
		return a.ingestURL(ctx, source.URL)
	case agent.SourceKindStructured:
		return a.ingestStructured(ctx, source.Structured)
	default:
		return nil, evalerrors.NewInputError("source", "unknown source kind")
	}
}

func (a *Agent) ingestPDF(ctx context.Context, data []byte) (*models.StartupFacts, error) {
	pages, err := extractPagesWithTimeout(ctx, data)
	if err != nil {
		return nil, evalerrors.NewIngestionError("pdf", err)
	}
	if !pdfIsReadable(pages) {
		return nil, evalerrors.NewIngestionError("pdf", fmt.Errorf("empty corpus: no extractable text"))
	}

	slides := segmentSlides(pages)
	classified := classifySlides(ctx, a.gateway, slides)
	completeness := missingSlidesReport(classified)
	a.logger.Info("slide classification complete",
		"slide_count", len(slides), "completeness_score", completeness.CompletenessScore,
		"missing_types", completeness.MissingTypes)

	corpus := corpusFromSlides(classified)
	facts := extractFacts(ctx, a.gateway, corpus)
	facts.SourceType = models.SourceTypePDF
	facts.SlideCount = len(slides)
	facts.RawContentLength = len(corpus)

	result := facts.WithDefaults()
	return &result, nil
}

func (a *Agent) ingestURL(ctx context.Context, rawURL string) (*models.StartupFacts, error) {
	corpus, err := fetchURL(ctx, a.httpClient, rawURL)
	if err != nil {
		return nil, evalerrors.NewIngestionError("url", err)
	}
	if strings.TrimSpace(corpus) == "" {
		return nil, evalerrors.NewIngestionError("url", fmt.Errorf("empty corpus: no extractable text"))
	}

	facts := extractFacts(ctx, a.gateway, corpus)
	facts.SourceType = models.SourceTypeURL
	facts.SourceRef = rawURL
	facts.RawContentLength = len(corpus)

	result := facts.WithDefaults()
	return &result, nil
}

func (a *Agent) ingestStructured(ctx context.Context, input agent.StructuredInput) (*models.StartupFacts, error) {
	facts := factsFromStructured(input)
	facts.SourceType = models.SourceTypeStructured
	facts.RawContentLength = len(companionCorpus(input))

	result := facts.WithDefaults()
	return &result, nil
}

func companionCorpus(input agent.StructuredInput) string {
	var b strings.Builder
	for _, v := range input.Fields {
		b.WriteString(v)
		b.WriteString(" ")
	}
	b.WriteString(input.Description)
	b.WriteString(" ")
	b.WriteString(input.Market)
	b.WriteString(" ")
	b.WriteString(input.Team)
	b.WriteString(" ")
	b.WriteString(input.Traction)
	return b.String()
}

func corpusFromSlides(classified []ClassifiedSlide) string {
	var b strings.Builder
	for _, c := range classified {
		b.WriteString(c.Slide.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
