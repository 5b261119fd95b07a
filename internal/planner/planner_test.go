package planner

import (
	"math"
	"testing"

	"github.com/kestrelworks/resolv/internal/config"
	"github.com/kestrelworks/resolv/pkg/models"
)

func newTestPlanner(t *testing.T) *Planner {
	t.Helper()
	profiles, err := config.LoadWorkerProfiles("")
	if err != nil {
		t.Fatalf("LoadWorkerProfiles: %v", err)
	}
	return New(profiles, nil)
}

func TestPlanTierCounts(t *testing.T) {
	tests := []struct {
		tier models.ComplexityTier
		want int
	}{
		{models.TierLow, 2},
		{models.TierMedium, 4},
		{models.TierHigh, 6},
		{models.TierVeryHigh, 8},
	}

	p := newTestPlanner(t)
	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			plan, err := p.Plan(&models.Analysis{Tier: tt.tier}, 100)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if len(plan.Workers) != tt.want {
				t.Errorf("worker count = %d, want %d", len(plan.Workers), tt.want)
			}
			if plan.RecommendedCount != tt.want {
				t.Errorf("recommended = %d, want %d", plan.RecommendedCount, tt.want)
			}
		})
	}
}

func TestPlanClampsToMaxWorkers(t *testing.T) {
	p := newTestPlanner(t)
	plan, err := p.Plan(&models.Analysis{Tier: models.TierVeryHigh}, 3)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(plan.Workers) != 3 {
		t.Errorf("worker count = %d, want clamp to 3", len(plan.Workers))
	}
	// The recommendation itself is reported unclamped.
	if plan.RecommendedCount != 8 {
		t.Errorf("recommended = %d, want 8", plan.RecommendedCount)
	}
}

func TestPlanRoundRobinTypes(t *testing.T) {
	p := newTestPlanner(t)
	plan, err := p.Plan(&models.Analysis{Tier: models.TierVeryHigh}, 100)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i, w := range plan.Workers {
		want := models.WorkerTypes[i%len(models.WorkerTypes)]
		if w.Type != want {
			t.Errorf("worker %d type = %q, want %q", i, w.Type, want)
		}
		if w.Specialization == "" {
			t.Errorf("worker %d has no specialization", i)
		}
		if w.ID == "" {
			t.Errorf("worker %d has no id", i)
		}
	}
}

func TestExpectedOutcome(t *testing.T) {
	patterns := func(n int) []models.PatternMatch {
		out := make([]models.PatternMatch, n)
		return out
	}

	tests := []struct {
		name     string
		analysis *models.Analysis
		planned  int
		want     float64
	}{
		{"low tier full coverage", &models.Analysis{Tier: models.TierLow}, 2, 1.0},
		{"very high shorthanded", &models.Analysis{Tier: models.TierVeryHigh}, 3, 0.5},
		{"medium with patterns", &models.Analysis{Tier: models.TierMedium, Patterns: patterns(2)}, 4, 1.0},
		{"pattern boost capped", &models.Analysis{Tier: models.TierVeryHigh, Patterns: patterns(5)}, 3, 0.8},
	}

	p := newTestPlanner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maxWorkers := tt.planned
			plan, err := p.Plan(tt.analysis, maxWorkers)
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if math.Abs(plan.ExpectedOutcome-tt.want) > 1e-9 {
				t.Errorf("expected outcome = %v, want %v", plan.ExpectedOutcome, tt.want)
			}
		})
	}
}
