// Package synth generates candidate solutions from a coordination
// result. The generation strategy here is deliberately simple and
// replaceable; the candidate shape (distinct approach label, five-step
// outline, implementation/test/documentation artifact triple) is fixed
// contract for the rest of the pipeline.
package synth

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/kestrelworks/resolv/internal/swarm"
	"github.com/kestrelworks/resolv/pkg/models"
)

const maxCandidates = 3

// Effort estimates are random but bounded to this range in hours.
const (
	effortMin = 4
	effortMax = 40
)

// Synthesizer produces candidate solutions. The random source only
// feeds effort estimates; everything else is deterministic.
type Synthesizer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New builds a Synthesizer seeded for reproducible effort estimates.
func New(seed int64) *Synthesizer {
	return &Synthesizer{rng: rand.New(rand.NewSource(seed))}
}

// Synthesize generates min(3, matchedPatterns+1) candidates, always at
// least one, each with a distinct approach label.
func (s *Synthesizer) Synthesize(coordination *swarm.Result, analysis *models.Analysis) ([]*models.CandidateSolution, error) {
	if analysis == nil {
		return nil, fmt.Errorf("nil analysis")
	}

	count := len(analysis.Patterns) + 1
	if count > maxCandidates {
		count = maxCandidates
	}

	approaches := approachLabels(analysis, count)
	candidates := make([]*models.CandidateSolution, count)
	for i := 0; i < count; i++ {
		candidates[i] = &models.CandidateSolution{
			ID:              fmt.Sprintf("candidate-%d", i+1),
			Approach:        approaches[i],
			Steps:           outline(approaches[i], analysis, coordination),
			Artifacts:       artifactTriple(approaches[i], analysis),
			EstimatedEffort: s.estimateEffort(),
		}
	}
	return candidates, nil
}

// approachLabels picks the first count distinct labels from the ranked
// analysis approaches, padding with generic variants when the analysis
// ranked fewer than needed.
func approachLabels(analysis *models.Analysis, count int) []string {
	labels := make([]string, 0, count)
	seen := make(map[string]bool, count)
	for _, app := range analysis.Approaches {
		if seen[app] {
			continue
		}
		seen[app] = true
		labels = append(labels, app)
		if len(labels) == count {
			return labels
		}
	}
	for i := len(labels); i < count; i++ {
		labels = append(labels, fmt.Sprintf("alternative-%d", i+1))
	}
	return labels
}

// outline is the fixed five-step implementation outline, phrased
// against the approach and what the workers converged on.
func outline(approach string, analysis *models.Analysis, coordination *swarm.Result) []string {
	consensus := "no clear consensus formed; proceed with the highest-confidence findings"
	if coordination != nil && coordination.OverallConsensus {
		consensus = "workers converged; follow the agreed direction"
	}
	return []string{
		fmt.Sprintf("reproduce and scope the %s issue", analysis.Domain),
		fmt.Sprintf("apply the %s approach to the affected area", approach),
		consensus,
		"write tests covering the changed behavior",
		"document the change and prepare it for review",
	}
}

// artifactTriple is the fixed artifact set: one implementation unit,
// one test unit, one documentation unit.
func artifactTriple(approach string, analysis *models.Analysis) []models.Artifact {
	slug := strings.ReplaceAll(approach, " ", "-")
	return []models.Artifact{
		{
			Name:    fmt.Sprintf("%s-implementation.md", slug),
			Kind:    models.ArtifactImplementation,
			Content: fmt.Sprintf("Implementation outline for the %s approach in the %s domain.", approach, analysis.Domain),
		},
		{
			Name:    fmt.Sprintf("%s-tests.md", slug),
			Kind:    models.ArtifactTest,
			Content: fmt.Sprintf("Test plan for the %s approach.", approach),
		},
		{
			Name:    fmt.Sprintf("%s-notes.md", slug),
			Kind:    models.ArtifactDocumentation,
			Content: fmt.Sprintf("Reviewer notes for the %s approach.", approach),
		},
	}
}

func (s *Synthesizer) estimateEffort() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return effortMin + s.rng.Intn(effortMax-effortMin+1)
}
