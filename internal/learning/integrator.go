// Package learning folds terminal session outcomes back into the
// knowledge store: new patterns and knowledge records from successful
// sessions, success-rate feedback for the patterns that were matched.
package learning

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/pkg/models"
)

// maxPatternTerms bounds the key terms stored on a learned pattern.
const maxPatternTerms = 10

// Integrator writes learning output. Safe for concurrent use; the
// store provides record-level atomicity.
type Integrator struct {
	patterns knowledge.PatternWriter
	records  knowledge.RecordStore
}

// New builds an Integrator over the knowledge store's write side.
func New(patterns knowledge.PatternWriter, records knowledge.RecordStore) *Integrator {
	return &Integrator{patterns: patterns, records: records}
}

// Integrate learns from one session outcome. Successful sessions with a
// selected solution yield a new pattern and a knowledge record; every
// matched pattern gets an outcome update either way.
func (i *Integrator) Integrate(session *models.Session, analysis *models.Analysis, success bool) error {
	for _, match := range analysis.Patterns {
		if err := i.patterns.RecordPatternOutcome(match.Pattern.ID, success); err != nil {
			return fmt.Errorf("pattern outcome %s: %w", match.Pattern.ID, err)
		}
	}

	if !success || session.Best == nil {
		return nil
	}

	score := 0.0
	if session.Assessment != nil {
		score = session.Assessment.Score
	}

	pattern := &models.Pattern{
		ID:          uuid.New().String(),
		Domain:      analysis.Domain,
		Tier:        analysis.Tier,
		KeyTerms:    termStrings(analysis.KeyTerms),
		Category:    string(analysis.Intent),
		Approach:    session.Best.Approach,
		SuccessRate: score,
		Uses:        1,
		CreatedAt:   time.Now().UTC(),
	}
	if err := i.patterns.PutPattern(pattern); err != nil {
		return fmt.Errorf("store pattern: %w", err)
	}

	record := &models.KnowledgeRecord{
		ID:            uuid.New().String(),
		Domain:        analysis.Domain,
		Approach:      session.Best.Approach,
		Effectiveness: score,
		Detail:        fmt.Sprintf("session %s resolved a %s-tier %s task", session.ID, analysis.Tier, analysis.Domain),
		CreatedAt:     time.Now().UTC(),
	}
	if err := i.records.PutRecord(record); err != nil {
		return fmt.Errorf("store knowledge record: %w", err)
	}
	return nil
}

func termStrings(terms []models.KeyTerm) []string {
	n := len(terms)
	if n > maxPatternTerms {
		n = maxPatternTerms
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = terms[i].Term
	}
	return out
}
