package scoring

import (
	"strings"

	"github.com/kestrelworks/resolv/pkg/models"
)

// intentRules are evaluated in priority order; the first rule with a
// keyword hit wins. Question phrases are matched before bug keywords so
// "how do I fix" reads as a question, not a bug report.
var intentRules = []struct {
	intent   models.Intent
	keywords []string
}{
	{models.IntentQuestion, []string{"how do i", "how to", "how can i", "why does", "is it possible", "question"}},
	{models.IntentFeatureRequest, []string{"feature", "add support", "would be nice", "proposal", "request"}},
	{models.IntentBugReport, []string{"bug", "fix", "broken", "crash", "error", "fails", "failure", "regression", "500", "exception", "stack trace"}},
	{models.IntentEnhancement, []string{"improve", "enhancement", "optimize", "refactor", "cleanup", "performance", "slow"}},
	{models.IntentDocumentation, []string{"docs", "documentation", "readme", "typo", "clarify"}},
}

// KeywordIntentClassifier is the default intent classifier. It scans
// lowercased task text and labels against a fixed priority-ordered
// keyword table.
type KeywordIntentClassifier struct{}

func (c *KeywordIntentClassifier) Classify(text string, labels []string) models.Intent {
	haystack := strings.ToLower(text + " " + strings.Join(labels, " "))
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(haystack, kw) {
				return rule.intent
			}
		}
	}
	return models.IntentGeneral
}

// Complexity factor weights. They sum to 1.0 so the score stays in
// [0,1] without a final clamp doing real work.
const (
	weightTextLength      = 0.15
	weightTechnicalTerms  = 0.25
	weightCodeBlocks      = 0.20
	weightStackTrace      = 0.15
	weightLabels          = 0.10
	weightCrossReferences = 0.15
)

// WeightedComplexityScorer is the default complexity scorer. Each raw
// factor saturates at 10 before weighting, so one extreme signal cannot
// dominate the score.
type WeightedComplexityScorer struct{}

func (s *WeightedComplexityScorer) Score(f ComplexityFactors) float64 {
	score := weightTextLength*saturate(f.TextLength) +
		weightTechnicalTerms*saturate(f.TechnicalTerms) +
		weightCodeBlocks*saturate(f.CodeBlocks) +
		weightStackTrace*saturate(f.StackTraceLines) +
		weightLabels*saturate(f.Labels) +
		weightCrossReferences*saturate(f.CrossReferences)
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// saturate maps a raw count into [0,1] with a ceiling at 10.
func saturate(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n >= 10 {
		return 1
	}
	return float64(n) / 10
}

// TierFor maps a complexity score onto its tier.
func TierFor(score float64) models.ComplexityTier {
	switch {
	case score < 0.3:
		return models.TierLow
	case score < 0.6:
		return models.TierMedium
	case score < 0.8:
		return models.TierHigh
	default:
		return models.TierVeryHigh
	}
}
