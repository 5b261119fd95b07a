// Package analyzer derives the immutable Analysis snapshot for one task.
// Analysis is a pure function of the task and the knowledge store
// contents at the time of the call: no randomness, no hidden state.
package analyzer

import (
	"fmt"
	"strings"

	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/internal/scoring"
	"github.com/kestrelworks/resolv/pkg/models"
)

// Analyzer produces Analysis snapshots. Safe for concurrent use.
type Analyzer struct {
	patterns   knowledge.PatternReader
	intent     scoring.IntentClassifier
	complexity scoring.ComplexityScorer
}

// New builds an Analyzer over the given pattern reader and scoring
// strategy. Nil strategy members fall back to the deterministic tables.
func New(patterns knowledge.PatternReader, strategy scoring.Strategy) *Analyzer {
	if strategy.Intent == nil {
		strategy.Intent = &scoring.KeywordIntentClassifier{}
	}
	if strategy.Complexity == nil {
		strategy.Complexity = &scoring.WeightedComplexityScorer{}
	}
	return &Analyzer{
		patterns:   patterns,
		intent:     strategy.Intent,
		complexity: strategy.Complexity,
	}
}

// Analyze derives the full Analysis for a task. Malformed or empty task
// text never causes an error; only a knowledge store read failure does.
func (a *Analyzer) Analyze(task *models.Task) (*models.Analysis, error) {
	text := strings.TrimSpace(task.Title + "\n" + task.Body)
	lower := strings.ToLower(text)
	haystack := lower + " " + strings.ToLower(strings.Join(task.Labels, " "))
	tokens := tokenize(lower)

	entities := extractEntities(text)
	factors := complexityFactors(task, tokens, entities)
	score := a.complexity.Score(factors)
	tier := scoring.TierFor(score)
	domain := classifyDomain(haystack)

	analysis := &models.Analysis{
		TaskID:     task.ID,
		KeyTerms:   keyTerms(tokens),
		Sentiment:  classifySentiment(tokens),
		Entities:   entities,
		Intent:     a.intent.Classify(text, task.Labels),
		Complexity: score,
		Tier:       tier,
		Domain:     domain,
		Priority:   scorePriority(haystack, task.Labels),
		Risks:      assessRisks(haystack, factors.CodeBlocks),
	}

	if a.patterns != nil {
		stored, err := a.patterns.ListPatterns()
		if err != nil {
			return nil, fmt.Errorf("list patterns: %w", err)
		}
		analysis.Patterns = matchPatterns(stored, domain, tier, analysis.KeyTerms, analysis.Intent)
	}
	analysis.Approaches = rankApproaches(analysis.Intent, analysis.Patterns)

	return analysis, nil
}
