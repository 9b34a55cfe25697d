package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitchscope/pitchscope/pkg/llmgateway"
)

// SlideType is one of the standard pitch-deck slide categories (spec §4.6
// step 3).
type SlideType string

const (
	SlideTypeTitle                 SlideType = "Title"
	SlideTypeProblem               SlideType = "Problem"
	SlideTypeSolution              SlideType = "Solution"
	SlideTypeMarketOpportunity     SlideType = "Market Opportunity"
	SlideTypeProductService        SlideType = "Product/Service"
	SlideTypeBusinessModel         SlideType = "Business Model"
	SlideTypeTraction              SlideType = "Traction"
	SlideTypeTeam                  SlideType = "Team"
	SlideTypeCompetition           SlideType = "Competition"
	SlideTypeFinancialProjections  SlideType = "Financial Projections"
	SlideTypeFundingAsk            SlideType = "Funding Ask"
	SlideTypeRoadmap               SlideType = "Roadmap"
	SlideTypeContact               SlideType = "Contact"
	SlideTypeOther                 SlideType = "Other"
)

// standardSlideTypes excludes "Other", which is not a completeness target.
var standardSlideTypes = []SlideType{
	SlideTypeTitle, SlideTypeProblem, SlideTypeSolution, SlideTypeMarketOpportunity,
	SlideTypeProductService, SlideTypeBusinessModel, SlideTypeTraction, SlideTypeTeam,
	SlideTypeCompetition, SlideTypeFinancialProjections, SlideTypeFundingAsk,
	SlideTypeRoadmap, SlideTypeContact,
}

// keywordsByType back the classify-by-keyword fallback; first matching
// type wins, in the order listed above.
var keywordsByType = map[SlideType][]string{
	SlideTypeTitle:                {"pitch deck", "confidential", "presents"},
	SlideTypeProblem:              {"problem", "pain point", "challenge"},
	SlideTypeSolution:             {"solution", "how it works", "our approach"},
	SlideTypeMarketOpportunity:    {"market size", "tam", "sam", "som", "opportunity"},
	SlideTypeProductService:       {"product", "feature", "demo"},
	SlideTypeBusinessModel:        {"business model", "revenue model", "pricing"},
	SlideTypeTraction:             {"traction", "growth", "customers", "revenue"},
	SlideTypeTeam:                 {"team", "founder", "advisor"},
	SlideTypeCompetition:          {"competitor", "competitive landscape", "vs."},
	SlideTypeFinancialProjections: {"projection", "forecast", "financials"},
	SlideTypeFundingAsk:           {"ask", "raising", "use of funds", "investment"},
	SlideTypeRoadmap:              {"roadmap", "milestone", "timeline"},
	SlideTypeContact:              {"contact", "email", "website", "thank you"},
}

// ClassifiedSlide pairs a Slide with its assigned type and confidence.
type ClassifiedSlide struct {
	Slide      Slide
	Type       SlideType
	Confidence float64
}

// CompletenessReport summarizes which standard slide types were not found.
type CompletenessReport struct {
	MissingTypes      []SlideType
	CompletenessScore float64
}

const (
	classifyModel       = "gemini-1.5-pro"
	classifyTemperature = 0.2
	classifyMaxTokens   = 512
)

// classifySlides assigns a type and confidence to each slide, using the LLM
// when available and falling back to keyword matching otherwise (spec
// §4.6 step 3 — this step is itself optional; callers tolerate a nil
// gateway or a gateway fallback identically).
func classifySlides(ctx context.Context, gateway llmgateway.Invoker, slides []Slide) []ClassifiedSlide {
	classified := make([]ClassifiedSlide, len(slides))
	for i, s := range slides {
		classified[i] = classifyOne(ctx, gateway, s)
	}
	return classified
}

func classifyOne(ctx context.Context, gateway llmgateway.Invoker, slide Slide) ClassifiedSlide {
	if gateway != nil {
		if t, conf, ok := classifyWithLLM(ctx, gateway, slide); ok {
			return ClassifiedSlide{Slide: slide, Type: t, Confidence: conf}
		}
	}
	t, conf := classifyWithKeywords(slide.Text)
	return ClassifiedSlide{Slide: slide, Type: t, Confidence: conf}
}

func classifyWithLLM(ctx context.Context, gateway llmgateway.Invoker, slide Slide) (SlideType, float64, bool) {
	prompt := fmt.Sprintf(
		"Classify this pitch deck slide into exactly one of: Title, Problem, Solution, "+
			"Market Opportunity, Product/Service, Business Model, Traction, Team, Competition, "+
			"Financial Projections, Funding Ask, Roadmap, Contact, Other.\n\nSLIDE TEXT:\n%s\n\n"+
			`Respond with strict JSON: {"type": "...", "confidence": 0.0-1.0}`, slide.Text)

	result, err := gateway.Invoke(ctx, classifyModel, prompt, llmgateway.Options{
		Temperature: classifyTemperature,
		MaxTokens:   classifyMaxTokens,
	})
	if err != nil || !result.OK {
		return "", 0, false
	}
	obj, ok := llmgateway.ExtractJSON(result.Text)
	if !ok {
		return "", 0, false
	}
	typeStr, ok := llmgateway.StringField(obj, "type")
	if !ok {
		return "", 0, false
	}
	conf, _ := llmgateway.NumberField(obj, "confidence")
	if conf <= 0 {
		conf = 0.6
	}
	return normalizeSlideType(typeStr), conf, true
}

func normalizeSlideType(raw string) SlideType {
	for _, t := range standardSlideTypes {
		if strings.EqualFold(string(t), raw) {
			return t
		}
	}
	return SlideTypeOther
}

// classifyWithKeywords checks standard types in a fixed order and returns
// the first whose keyword set matches; confidence is a flat 0.5 for a
// keyword match, 0.2 for the Other default.
func classifyWithKeywords(text string) (SlideType, float64) {
	lower := strings.ToLower(text)
	for _, t := range standardSlideTypes {
		for _, kw := range keywordsByType[t] {
			if strings.Contains(lower, kw) {
				return t, 0.5
			}
		}
	}
	return SlideTypeOther, 0.2
}

// missingSlidesReport implements spec §4.6 step 4: which standard types
// were never assigned, and the identified/standard completeness ratio.
func missingSlidesReport(classified []ClassifiedSlide) CompletenessReport {
	seen := make(map[SlideType]bool, len(standardSlideTypes))
	for _, c := range classified {
		seen[c.Type] = true
	}

	var missing []SlideType
	for _, t := range standardSlideTypes {
		if !seen[t] {
			missing = append(missing, t)
		}
	}

	identified := len(standardSlideTypes) - len(missing)
	return CompletenessReport{
		MissingTypes:      missing,
		CompletenessScore: float64(identified) / float64(len(standardSlideTypes)),
	}
}
