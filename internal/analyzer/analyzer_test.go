package analyzer

import (
	"reflect"
	"testing"

	"github.com/kestrelworks/resolv/internal/scoring"
	"github.com/kestrelworks/resolv/pkg/models"
)

type fakePatterns struct {
	patterns []*models.Pattern
}

func (f *fakePatterns) ListPatterns() ([]*models.Pattern, error) { return f.patterns, nil }
func (f *fakePatterns) GetPattern(id string) (*models.Pattern, error) {
	for _, p := range f.patterns {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func newTestAnalyzer(patterns ...*models.Pattern) *Analyzer {
	return New(&fakePatterns{patterns: patterns}, scoring.Deterministic())
}

func TestAnalyzeProductionBug(t *testing.T) {
	task := &models.Task{
		ID:     "t-1",
		Title:  "Login fails with 500",
		Body:   "stack trace attached, production issue",
		Labels: []string{"bug", "urgent"},
	}

	a, err := newTestAnalyzer().Analyze(task)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if a.Domain != "backend" {
		t.Errorf("domain = %q, want backend", a.Domain)
	}
	if a.Intent != models.IntentBugReport {
		t.Errorf("intent = %q, want bug-report", a.Intent)
	}
	if a.Priority < 0.8 {
		t.Errorf("priority = %v, want >= 0.8", a.Priority)
	}
	if !a.Tier.Valid() {
		t.Errorf("invalid tier %q", a.Tier)
	}
	if a.Complexity < 0 || a.Complexity > 1 {
		t.Errorf("complexity %v out of [0,1]", a.Complexity)
	}

	found := false
	for _, r := range a.Risks {
		if r.Type == "service-disruption" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a service-disruption risk, got %v", a.Risks)
	}
}

func TestAnalyzeEmptyBody(t *testing.T) {
	a, err := newTestAnalyzer().Analyze(&models.Task{ID: "t-2"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.KeyTerms) != 0 {
		t.Errorf("key terms = %v, want empty", a.KeyTerms)
	}
	if a.Domain != "general" {
		t.Errorf("domain = %q, want general", a.Domain)
	}
	if a.Tier != models.TierLow {
		t.Errorf("tier = %q, want low", a.Tier)
	}
	if a.Sentiment != models.SentimentNeutral {
		t.Errorf("sentiment = %q, want neutral", a.Sentiment)
	}
	if a.Priority < 0 || a.Priority > 1 {
		t.Errorf("priority %v out of [0,1]", a.Priority)
	}
}

func TestAnalyzeIdempotent(t *testing.T) {
	task := &models.Task{
		ID:     "t-3",
		Title:  "Add support for OAuth tokens",
		Body:   "The api server should accept auth tokens. See #42 and docs/auth.md",
		Labels: []string{"feature"},
	}
	an := newTestAnalyzer(&models.Pattern{
		ID: "p-1", Domain: "backend", Tier: models.TierMedium,
		Category: "feature-request", Approach: "incremental-build", SuccessRate: 0.9,
	})

	first, err := an.Analyze(task)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	second, err := an.Analyze(task)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated analysis differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAnalyzeEntities(t *testing.T) {
	task := &models.Task{
		ID:    "t-4",
		Title: "Crash in parser",
		Body:  "See https://example.com/report and parser/lex.go, relates to #17 and #17",
	}
	a, err := newTestAnalyzer().Analyze(task)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.Entities.URLs) != 1 {
		t.Errorf("urls = %v, want one", a.Entities.URLs)
	}
	if len(a.Entities.Files) != 1 || a.Entities.Files[0] != "parser/lex.go" {
		t.Errorf("files = %v, want [parser/lex.go]", a.Entities.Files)
	}
	if len(a.Entities.References) != 1 || a.Entities.References[0] != "#17" {
		t.Errorf("references = %v, want deduplicated [#17]", a.Entities.References)
	}
}

func TestKeyTermsTopTwenty(t *testing.T) {
	body := ""
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf",
		"hotel", "india", "juliet", "kilo", "lima", "mike", "november",
		"oscar", "papa", "quebec", "romeo", "sierra", "tango", "uniform",
		"victor", "whiskey",
	}
	for i, w := range words {
		for j := 0; j <= i; j++ {
			body += w + " "
		}
	}

	a, err := newTestAnalyzer().Analyze(&models.Task{ID: "t-5", Body: body})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(a.KeyTerms) != 20 {
		t.Fatalf("got %d key terms, want 20", len(a.KeyTerms))
	}
	for i := 1; i < len(a.KeyTerms); i++ {
		if a.KeyTerms[i].Count > a.KeyTerms[i-1].Count {
			t.Errorf("key terms not sorted descending at %d: %v", i, a.KeyTerms)
		}
	}
	// The least frequent words fall off the end.
	if a.KeyTerms[0].Term != "whiskey" {
		t.Errorf("top term = %q, want whiskey", a.KeyTerms[0].Term)
	}
}

func TestMatchPatternsOrdering(t *testing.T) {
	// Identical except tier distance, so the closer pattern scores higher.
	near := &models.Pattern{
		ID: "near", Domain: "backend", Tier: models.TierMedium,
		KeyTerms: []string{"login", "server"}, Category: "bug-report", SuccessRate: 1.0,
	}
	far := &models.Pattern{
		ID: "far", Domain: "backend", Tier: models.TierHigh,
		KeyTerms: []string{"login", "server"}, Category: "bug-report", SuccessRate: 1.0,
	}

	termSet := []models.KeyTerm{{Term: "login", Count: 2}, {Term: "server", Count: 1}}
	matches := matchPatterns([]*models.Pattern{far, near}, "backend", models.TierMedium, termSet, models.IntentBugReport)

	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(matches), matches)
	}
	if matches[0].Pattern.ID != "near" {
		t.Errorf("first match = %q, want near", matches[0].Pattern.ID)
	}
	for _, m := range matches {
		if m.Similarity <= similarityThreshold {
			t.Errorf("match %q similarity %v not above threshold", m.Pattern.ID, m.Similarity)
		}
	}
}

func TestMatchPatternsThreshold(t *testing.T) {
	unrelated := &models.Pattern{
		ID: "other", Domain: "frontend", Tier: models.TierVeryHigh,
		KeyTerms: []string{"css"}, Category: "documentation", SuccessRate: 1.0,
	}
	termSet := []models.KeyTerm{{Term: "login", Count: 1}}
	matches := matchPatterns([]*models.Pattern{unrelated}, "backend", models.TierLow, termSet, models.IntentBugReport)
	if len(matches) != 0 {
		t.Errorf("unrelated pattern matched: %+v", matches)
	}
}

func TestSuccessRateBreaksConfidenceTies(t *testing.T) {
	strong := &models.Pattern{
		ID: "strong", Domain: "backend", Tier: models.TierLow,
		KeyTerms: []string{"login"}, Category: "bug-report", SuccessRate: 0.9,
	}
	weak := &models.Pattern{
		ID: "weak", Domain: "backend", Tier: models.TierLow,
		KeyTerms: []string{"login"}, Category: "bug-report", SuccessRate: 0.4,
	}
	termSet := []models.KeyTerm{{Term: "login", Count: 1}}
	matches := matchPatterns([]*models.Pattern{weak, strong}, "backend", models.TierLow, termSet, models.IntentBugReport)
	if len(matches) != 2 || matches[0].Pattern.ID != "strong" {
		t.Fatalf("expected strong first, got %+v", matches)
	}
}
