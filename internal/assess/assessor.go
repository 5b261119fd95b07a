// Package assess scores candidate solutions across the fixed quality
// dimensions and selects the best candidate.
package assess

import (
	"context"
	"fmt"
	"strings"

	"github.com/kestrelworks/resolv/internal/orchestrator/policy"
	"github.com/kestrelworks/resolv/internal/scoring"
	"github.com/kestrelworks/resolv/pkg/models"
)

// Assessor computes assessments. A configured external scorer replaces
// the built-in heuristic; the aggregate and recommendation rules stay
// the same either way.
type Assessor struct {
	scorer scoring.QualityScorer

	// recommendThreshold: any dimension below it yields one
	// improvement note.
	recommendThreshold float64
}

// New builds an Assessor. scorer may be nil for the deterministic
// built-in heuristic.
func New(scorer scoring.QualityScorer) *Assessor {
	return &Assessor{
		scorer:             scorer,
		recommendThreshold: policy.Default().Assessment.RecommendationThreshold,
	}
}

// Assess scores one candidate. Every dimension is bounded to [0,1] and
// the aggregate is their arithmetic mean.
func (a *Assessor) Assess(ctx context.Context, candidate *models.CandidateSolution, analysis *models.Analysis, convergence float64) (*models.Assessment, error) {
	var dims map[models.QualityDimension]float64
	if a.scorer != nil {
		scored, err := a.scorer.ScoreQuality(ctx, candidate, analysis, convergence)
		if err != nil {
			return nil, fmt.Errorf("external quality scorer: %w", err)
		}
		dims = scored
	} else {
		dims = heuristicDimensions(candidate, analysis, convergence)
	}

	sum := 0.0
	for _, dim := range models.QualityDimensions {
		v := clamp01(dims[dim])
		dims[dim] = v
		sum += v
	}

	return &models.Assessment{
		CandidateID:     candidate.ID,
		Dimensions:      dims,
		Score:           sum / float64(len(models.QualityDimensions)),
		Recommendations: recommendations(dims, a.recommendThreshold),
	}, nil
}

// SelectBest picks the strict maximum aggregate score; ties keep the
// earlier candidate so selection is deterministic in generation order.
func SelectBest(candidates []*models.CandidateSolution, assessments []*models.Assessment) (*models.CandidateSolution, *models.Assessment) {
	var best *models.CandidateSolution
	var bestAssessment *models.Assessment
	for i, c := range candidates {
		if i >= len(assessments) || assessments[i] == nil {
			continue
		}
		if bestAssessment == nil || assessments[i].Score > bestAssessment.Score {
			best = c
			bestAssessment = assessments[i]
		}
	}
	return best, bestAssessment
}

// heuristicDimensions is the deterministic scoring table used when no
// external scorer is configured.
func heuristicDimensions(candidate *models.CandidateSolution, analysis *models.Analysis, convergence float64) map[models.QualityDimension]float64 {
	var hasImpl, hasTest, hasDocs bool
	for _, art := range candidate.Artifacts {
		switch art.Kind {
		case models.ArtifactImplementation:
			hasImpl = true
		case models.ArtifactTest:
			hasTest = true
		case models.ArtifactDocumentation:
			hasDocs = true
		}
	}

	completeness := 0.7
	if hasImpl && hasTest && hasDocs {
		completeness += 0.15
	}
	if len(candidate.Steps) >= 5 {
		completeness += 0.1
	}

	correctness := 0.6 + 0.25*convergence
	if len(analysis.Patterns) > 0 {
		correctness += 0.1
	}

	maintainability := 0.75
	if len(candidate.Steps) <= 5 {
		maintainability += 0.1
	}

	performance := 0.7
	if strings.Contains(candidate.Approach, "optimize") || strings.Contains(candidate.Approach, "measure") {
		performance += 0.15
	}

	security := 0.85
	for _, risk := range analysis.Risks {
		if risk.Type == "security-vulnerability" {
			security -= 0.2
			break
		}
	}

	testability := 0.6
	if hasTest {
		testability += 0.2
	}
	if stepsMention(candidate.Steps, "test") {
		testability += 0.1
	}

	documentation := 0.5
	if hasDocs {
		documentation += 0.25
	}
	if stepsMention(candidate.Steps, "document") {
		documentation += 0.1
	}

	return map[models.QualityDimension]float64{
		models.DimCompleteness:    clamp01(completeness),
		models.DimCorrectness:     clamp01(correctness),
		models.DimMaintainability: clamp01(maintainability),
		models.DimPerformance:     clamp01(performance),
		models.DimSecurity:        clamp01(security),
		models.DimTestability:     clamp01(testability),
		models.DimDocumentation:   clamp01(documentation),
	}
}

// recommendationNotes phrases the improvement note per dimension.
var recommendationNotes = map[models.QualityDimension]string{
	models.DimCompleteness:    "cover the remaining parts of the request before shipping",
	models.DimCorrectness:     "verify the change against a reproduction of the original problem",
	models.DimMaintainability: "simplify the change so the next reader can follow it",
	models.DimPerformance:     "measure the hot path before and after the change",
	models.DimSecurity:        "review input handling and authorization around the change",
	models.DimTestability:     "add tests that fail without the change",
	models.DimDocumentation:   "document the behavior change for users and reviewers",
}

func recommendations(dims map[models.QualityDimension]float64, threshold float64) []string {
	var notes []string
	for _, dim := range models.QualityDimensions {
		if dims[dim] < threshold {
			notes = append(notes, fmt.Sprintf("%s: %s", dim, recommendationNotes[dim]))
		}
	}
	return notes
}

func stepsMention(steps []string, keyword string) bool {
	for _, s := range steps {
		if strings.Contains(strings.ToLower(s), keyword) {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
