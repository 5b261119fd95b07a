package learning

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/pkg/models"
)

func openTestStore(t *testing.T) *knowledge.Store {
	t.Helper()
	store, err := knowledge.Open(filepath.Join(t.TempDir(), "knowledge.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func completedSession() *models.Session {
	return &models.Session{
		ID:    "s-1",
		State: models.StateCompleted,
		Best:  &models.CandidateSolution{ID: "candidate-1", Approach: "targeted-fix"},
		Assessment: &models.Assessment{
			CandidateID: "candidate-1",
			Score:       0.85,
		},
	}
}

func backendAnalysis() *models.Analysis {
	return &models.Analysis{
		TaskID:   "t-1",
		Domain:   "backend",
		Tier:     models.TierMedium,
		Intent:   models.IntentBugReport,
		KeyTerms: []models.KeyTerm{{Term: "login", Count: 3}, {Term: "server", Count: 2}},
	}
}

func TestIntegrateCompletedStoresPatternAndRecord(t *testing.T) {
	store := openTestStore(t)
	integrator := New(store, store)

	if err := integrator.Integrate(completedSession(), backendAnalysis(), true); err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	patterns, err := store.ListPatterns()
	if err != nil {
		t.Fatalf("ListPatterns: %v", err)
	}
	if len(patterns) != 1 {
		t.Fatalf("got %d patterns, want 1", len(patterns))
	}
	p := patterns[0]
	if p.Domain != "backend" || p.Tier != models.TierMedium || p.Approach != "targeted-fix" {
		t.Errorf("pattern = %+v", p)
	}
	if p.Category != "bug-report" {
		t.Errorf("category = %q, want bug-report", p.Category)
	}
	if math.Abs(p.SuccessRate-0.85) > 1e-9 {
		t.Errorf("success rate = %v, want 0.85", p.SuccessRate)
	}

	records, err := store.RecordsByDomain("backend")
	if err != nil {
		t.Fatalf("RecordsByDomain: %v", err)
	}
	if len(records) != 1 || records[0].Approach != "targeted-fix" {
		t.Errorf("records = %+v", records)
	}
}

func TestIntegrateUpdatesMatchedPatternOutcomes(t *testing.T) {
	store := openTestStore(t)
	seed := &models.Pattern{
		ID: "p-1", Domain: "backend", Tier: models.TierMedium,
		Category: "bug-report", Approach: "targeted-fix", SuccessRate: 1.0, Uses: 1,
	}
	if err := store.PutPattern(seed); err != nil {
		t.Fatalf("PutPattern: %v", err)
	}

	analysis := backendAnalysis()
	analysis.Patterns = []models.PatternMatch{{Pattern: *seed, Similarity: 0.9, Confidence: 0.9}}

	failed := &models.Session{ID: "s-2", State: models.StateFailed}
	integrator := New(store, store)
	if err := integrator.Integrate(failed, analysis, false); err != nil {
		t.Fatalf("Integrate: %v", err)
	}

	updated, err := store.GetPattern("p-1")
	if err != nil {
		t.Fatalf("GetPattern: %v", err)
	}
	if updated.Uses != 2 {
		t.Errorf("uses = %d, want 2", updated.Uses)
	}
	if math.Abs(updated.SuccessRate-0.5) > 1e-9 {
		t.Errorf("success rate = %v, want 0.5 after one failure", updated.SuccessRate)
	}

	// A failed session must not mint new patterns.
	patterns, _ := store.ListPatterns()
	if len(patterns) != 1 {
		t.Errorf("got %d patterns, want only the seed", len(patterns))
	}
}

func TestIntegrateSuccessWithoutSelectionLearnsNothing(t *testing.T) {
	store := openTestStore(t)
	integrator := New(store, store)
	session := &models.Session{ID: "s-3", State: models.StateCompleted}
	if err := integrator.Integrate(session, backendAnalysis(), true); err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	patterns, _ := store.ListPatterns()
	if len(patterns) != 0 {
		t.Errorf("got %d patterns, want none without a selected solution", len(patterns))
	}
}
