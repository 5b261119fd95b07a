// Package planner turns an Analysis into a worker allocation plan.
package planner

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kestrelworks/resolv/internal/config"
	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/pkg/models"
)

// tierCounts is the fixed complexity-tier to worker-count table.
var tierCounts = map[models.ComplexityTier]int{
	models.TierLow:      2,
	models.TierMedium:   4,
	models.TierHigh:     6,
	models.TierVeryHigh: 8,
}

// minWorkers is the floor of the clamp applied to the tier table.
const minWorkers = 2

// Expected-outcome prediction constants. The prediction is advisory and
// never gates execution.
const (
	outcomeBase          = 0.7
	outcomeTierAdjust    = 0.2
	outcomePatternBoost  = 0.1
	outcomePatternCap    = 3
	outcomeCoverageBoost = 0.1
)

// Planner allocates workers for one session. Safe for concurrent use.
type Planner struct {
	profiles []config.WorkerProfile
	records  knowledge.RecordStore
}

// New builds a Planner over the worker-profile catalog. records may be
// nil; workers then carry no knowledge references.
func New(profiles []config.WorkerProfile, records knowledge.RecordStore) *Planner {
	return &Planner{profiles: profiles, records: records}
}

// Plan computes the worker allocation for an analysis. The returned
// count is the tier-recommended count clamped to [2, maxWorkers].
func (p *Planner) Plan(analysis *models.Analysis, maxWorkers int) (*models.WorkerPlan, error) {
	recommended := tierCounts[analysis.Tier]
	if recommended == 0 {
		recommended = minWorkers
	}

	count := recommended
	if maxWorkers >= minWorkers && count > maxWorkers {
		count = maxWorkers
	}
	if count < minWorkers {
		count = minWorkers
	}

	knowledgeIDs, err := p.relevantKnowledge(analysis.Domain)
	if err != nil {
		return nil, err
	}

	workers := make([]*models.Worker, count)
	for i := 0; i < count; i++ {
		workerType := models.WorkerTypes[i%len(models.WorkerTypes)]
		profile := config.ProfileFor(p.profiles, workerType)
		workers[i] = &models.Worker{
			ID:             fmt.Sprintf("%s-%s", workerType, uuid.New().String()[:8]),
			Type:           workerType,
			Specialization: profile.Specialization,
			Capabilities:   profile.Capabilities,
			KnowledgeIDs:   knowledgeIDs,
			Quality:        0.5,
		}
	}

	return &models.WorkerPlan{
		Workers:          workers,
		RecommendedCount: recommended,
		ExpectedOutcome:  expectedOutcome(analysis, count, recommended),
	}, nil
}

// relevantKnowledge collects the ids of the strongest knowledge records
// for the session domain, at most three.
func (p *Planner) relevantKnowledge(domain string) ([]string, error) {
	if p.records == nil {
		return nil, nil
	}
	records, err := p.records.RecordsByDomain(domain)
	if err != nil {
		return nil, fmt.Errorf("records for domain %q: %w", domain, err)
	}
	var ids []string
	for _, r := range records {
		ids = append(ids, r.ID)
		if len(ids) == 3 {
			break
		}
	}
	return ids, nil
}

// expectedOutcome predicts success confidence: 0.7 base, adjusted for
// the complexity extremes, boosted per matched pattern (capped) and for
// meeting the recommended worker count, capped at 1.0.
func expectedOutcome(analysis *models.Analysis, planned, recommended int) float64 {
	outcome := outcomeBase
	switch analysis.Tier {
	case models.TierLow:
		outcome += outcomeTierAdjust
	case models.TierVeryHigh:
		outcome -= outcomeTierAdjust
	}

	patterns := len(analysis.Patterns)
	if patterns > outcomePatternCap {
		patterns = outcomePatternCap
	}
	outcome += outcomePatternBoost * float64(patterns)

	if planned >= recommended {
		outcome += outcomeCoverageBoost
	}
	if outcome > 1 {
		outcome = 1
	}
	return outcome
}
