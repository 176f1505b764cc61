package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/sirupsen/logrus"

	"jetrent/internal/dialogue"
	"jetrent/internal/model"
	"jetrent/internal/utils"
)

// ParameterExtractor extracts search parameters with the language model and
// falls back to rules when the model is not configured
type ParameterExtractor struct {
	aiClient AIClient
	fallback dialogue.Extractor
	logger   *logrus.Logger
}

// NewParameterExtractor creates a new parameter extractor. aiClient may be nil.
func NewParameterExtractor(aiClient AIClient, fallback dialogue.Extractor, logger *logrus.Logger) *ParameterExtractor {
	return &ParameterExtractor{
		aiClient: aiClient,
		fallback: fallback,
		logger:   logger,
	}
}

// Extract implements dialogue.Extractor
func (p *ParameterExtractor) Extract(ctx context.Context, text string) (*model.ExtractionResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return &model.ExtractionResult{MissingFields: append([]string(nil), model.RequiredSlots...)}, nil
	}

	if p.aiClient == nil || !p.aiClient.IsEnabled() {
		if p.fallback == nil {
			return nil, fmt.Errorf("no parameter extractor is configured")
		}
		return p.fallback.Extract(ctx, text)
	}

	resp, err := p.aiClient.ExtractSearchParameters(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parameter extraction failed: %w", err)
	}

	result := SanitizeExtraction(resp)
	p.logger.WithFields(logrus.Fields{
		"location": result.LocationValue(),
		"state":    result.StateValue(),
		"bedrooms": result.Bedrooms,
		"budget":   result.Budget,
		"missing":  result.MissingFields,
		"greeting": result.IsGreeting,
	}).Debug("parameters extracted")

	return result, nil
}

// SanitizeExtraction turns a raw model answer into an ExtractionResult:
//   - values the model itself listed as missing are dropped
//   - state names become two-letter codes and unknown states are dropped
//   - greetings carry no values
//   - the missing list holds known slot names in canonical order, including
//     every required slot that has no value
func SanitizeExtraction(resp *AIExtractionResponse) *model.ExtractionResult {
	result := &model.ExtractionResult{IsGreeting: resp.IsGreeting}
	if resp.IsGreeting {
		return result
	}

	listed := pie.Map(resp.MissingParameters, func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	})
	keep := func(name string) bool { return !pie.Contains(listed, name) }

	if keep(model.SlotLocation) && nonBlank(resp.Location) {
		result.Location = model.StringPtr(strings.TrimSpace(*resp.Location))
	}
	if keep(model.SlotState) && nonBlank(resp.State) {
		if code, ok := utils.StateAbbreviation(*resp.State); ok {
			result.State = model.StringPtr(code)
		}
	}
	if keep(model.SlotZipcode) && nonBlank(resp.Zipcode) {
		result.Zipcode = model.StringPtr(strings.TrimSpace(*resp.Zipcode))
	}
	if keep(model.SlotBedrooms) && resp.Bedrooms != nil {
		result.Bedrooms = model.IntPtr(int(math.Round(*resp.Bedrooms)))
	}
	if keep(model.SlotBudget) && resp.Budget != nil {
		result.Budget = model.Float64Ptr(*resp.Budget)
	}

	for _, name := range []string{model.SlotLocation, model.SlotState, model.SlotZipcode, model.SlotBedrooms, model.SlotBudget} {
		if result.Has(name) {
			continue
		}
		if pie.Contains(listed, name) || pie.Contains(model.RequiredSlots, name) {
			result.MissingFields = append(result.MissingFields, name)
		}
	}

	return result
}

func nonBlank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}
