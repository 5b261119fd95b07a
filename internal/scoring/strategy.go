// Package scoring isolates the pipeline's scoring decisions behind
// narrow interfaces. The default implementations are deterministic
// keyword/weight tables; a learned scorer can be substituted behind the
// same contracts without touching pipeline control flow.
package scoring

import (
	"context"

	"github.com/kestrelworks/resolv/pkg/models"
)

// ComplexityFactors are the raw signals feeding the complexity score.
// Each factor is a non-negative count extracted from the task.
type ComplexityFactors struct {
	// TextLength is the task text length in 100-word units.
	TextLength int
	// TechnicalTerms is the number of recognized technical terms.
	TechnicalTerms int
	// CodeBlocks is the number of embedded code blocks.
	CodeBlocks int
	// StackTraceLines is the number of stack-trace-like lines.
	StackTraceLines int
	// Labels is the number of labels on the task.
	Labels int
	// CrossReferences is the number of cross-reference tokens.
	CrossReferences int
}

// IntentClassifier classifies task text into the closed intent set.
type IntentClassifier interface {
	Classify(text string, labels []string) models.Intent
}

// ComplexityScorer folds complexity factors into a score in [0,1].
type ComplexityScorer interface {
	Score(f ComplexityFactors) float64
}

// QualityScorer scores a candidate solution across the fixed quality
// dimensions. Every returned dimension must be in [0,1].
type QualityScorer interface {
	ScoreQuality(ctx context.Context, candidate *models.CandidateSolution, analysis *models.Analysis, convergence float64) (map[models.QualityDimension]float64, error)
}

// Strategy bundles the scoring seams the pipeline consumes. A nil
// Quality means the assessor's built-in deterministic heuristic is used.
type Strategy struct {
	Intent     IntentClassifier
	Complexity ComplexityScorer
	Quality    QualityScorer
}

// Deterministic returns the default strategy backed by the fixed
// keyword and weight tables.
func Deterministic() Strategy {
	return Strategy{
		Intent:     &KeywordIntentClassifier{},
		Complexity: &WeightedComplexityScorer{},
	}
}
