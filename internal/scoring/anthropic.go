package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/kestrelworks/resolv/pkg/models"
)

const qualitySystemPrompt = `You evaluate a proposed software-task solution.
Respond with a single JSON object whose keys are exactly:
completeness, correctness, maintainability, performance, security, testability, documentation-quality.
Every value must be a number between 0 and 1. No prose, no markdown fences.`

// AnthropicQualityScorer scores candidate solutions with a Claude model.
// It implements QualityScorer and can be swapped in for the deterministic
// assessor heuristic via configuration.
type AnthropicQualityScorer struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewAnthropicQualityScorer builds a scorer against the direct Anthropic
// API. An empty apiKey falls back to the ANTHROPIC_API_KEY environment
// variable; an empty model falls back to a small default.
func NewAnthropicQualityScorer(apiKey string, model string) (*AnthropicQualityScorer, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
	}
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaude3_5Haiku20241022
	}
	return &AnthropicQualityScorer{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  m,
	}, nil
}

func (s *AnthropicQualityScorer) ScoreQuality(ctx context.Context, candidate *models.CandidateSolution, analysis *models.Analysis, convergence float64) (map[models.QualityDimension]float64, error) {
	prompt := buildQualityPrompt(candidate, analysis, convergence)

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     s.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: qualitySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("quality scoring call: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	return parseQualityResponse(text.String())
}

func buildQualityPrompt(candidate *models.CandidateSolution, analysis *models.Analysis, convergence float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task intent: %s\nDomain: %s\nComplexity tier: %s\n", analysis.Intent, analysis.Domain, analysis.Tier)
	fmt.Fprintf(&b, "Worker convergence: %.2f\n\n", convergence)
	fmt.Fprintf(&b, "Proposed approach: %s\n", candidate.Approach)
	if len(candidate.Steps) > 0 {
		b.WriteString("Steps:\n")
		for i, step := range candidate.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	fmt.Fprintf(&b, "Artifacts produced: %d\n", candidate.ArtifactCount())
	return b.String()
}

func parseQualityResponse(raw string) (map[models.QualityDimension]float64, error) {
	// Models occasionally fence the object despite instructions.
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed map[string]float64
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("parse quality response: %w", err)
	}

	dims := make(map[models.QualityDimension]float64, len(models.QualityDimensions))
	for _, dim := range models.QualityDimensions {
		v, ok := parsed[string(dim)]
		if !ok {
			return nil, fmt.Errorf("quality response missing dimension %q", dim)
		}
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		dims[dim] = v
	}
	return dims, nil
}
