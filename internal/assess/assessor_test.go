package assess

import (
	"context"
	"math"
	"testing"

	"github.com/kestrelworks/resolv/pkg/models"
)

func fullCandidate() *models.CandidateSolution {
	return &models.CandidateSolution{
		ID:       "candidate-1",
		Approach: "targeted-fix",
		Steps: []string{
			"reproduce the issue",
			"apply the fix",
			"follow the agreed direction",
			"write tests covering the changed behavior",
			"document the change",
		},
		Artifacts: []models.Artifact{
			{Name: "impl.md", Kind: models.ArtifactImplementation},
			{Name: "tests.md", Kind: models.ArtifactTest},
			{Name: "notes.md", Kind: models.ArtifactDocumentation},
		},
	}
}

func TestAssessBoundsAndMean(t *testing.T) {
	a := New(nil)
	assessment, err := a.Assess(context.Background(), fullCandidate(), &models.Analysis{Tier: models.TierMedium}, 0.8)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	if len(assessment.Dimensions) != len(models.QualityDimensions) {
		t.Fatalf("got %d dimensions, want %d", len(assessment.Dimensions), len(models.QualityDimensions))
	}
	sum := 0.0
	for dim, v := range assessment.Dimensions {
		if v < 0 || v > 1 {
			t.Errorf("dimension %s = %v out of [0,1]", dim, v)
		}
		sum += v
	}
	mean := sum / float64(len(models.QualityDimensions))
	if math.Abs(assessment.Score-mean) > 1e-9 {
		t.Errorf("score %v is not the dimension mean %v", assessment.Score, mean)
	}
}

func TestAssessRecommendationsBelowThreshold(t *testing.T) {
	bare := &models.CandidateSolution{ID: "candidate-2", Approach: "alternative-1"}
	a := New(nil)
	assessment, err := a.Assess(context.Background(), bare, &models.Analysis{}, 0)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}

	below := 0
	for _, dim := range models.QualityDimensions {
		if assessment.Dimensions[dim] < a.recommendThreshold {
			below++
		}
	}
	if below == 0 {
		t.Fatal("test setup expected at least one low dimension")
	}
	if len(assessment.Recommendations) != below {
		t.Errorf("got %d recommendations, want %d (one per low dimension)", len(assessment.Recommendations), below)
	}
}

func TestSelectBestStrictMaxFirstWins(t *testing.T) {
	c1 := &models.CandidateSolution{ID: "candidate-1"}
	c2 := &models.CandidateSolution{ID: "candidate-2"}
	c3 := &models.CandidateSolution{ID: "candidate-3"}

	best, bestAssessment := SelectBest(
		[]*models.CandidateSolution{c1, c2, c3},
		[]*models.Assessment{
			{CandidateID: "candidate-1", Score: 0.8},
			{CandidateID: "candidate-2", Score: 0.9},
			{CandidateID: "candidate-3", Score: 0.9},
		},
	)
	if best == nil || best.ID != "candidate-2" {
		t.Fatalf("best = %+v, want candidate-2 (tie keeps earlier)", best)
	}
	if bestAssessment.Score != 0.9 {
		t.Errorf("best score = %v, want 0.9", bestAssessment.Score)
	}
}

func TestSelectBestEmpty(t *testing.T) {
	best, assessment := SelectBest(nil, nil)
	if best != nil || assessment != nil {
		t.Errorf("expected nil results for empty input, got %v, %v", best, assessment)
	}
}

func TestSecurityRiskLowersSecurityScore(t *testing.T) {
	a := New(nil)
	risky := &models.Analysis{Risks: []models.Risk{{Type: "security-vulnerability", Severity: models.RiskMedium}}}

	safe, err := a.Assess(context.Background(), fullCandidate(), &models.Analysis{}, 0.5)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	flagged, err := a.Assess(context.Background(), fullCandidate(), risky, 0.5)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	if flagged.Dimension(models.DimSecurity) >= safe.Dimension(models.DimSecurity) {
		t.Errorf("security risk did not lower the security dimension: %v vs %v",
			flagged.Dimension(models.DimSecurity), safe.Dimension(models.DimSecurity))
	}
}
