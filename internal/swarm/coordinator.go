// Package swarm runs the three-phase worker coordination for one
// session: individual analysis, collaboration rounds, consensus. Phases
// are strict barriers; a phase sees only fully collected output of the
// previous one.
package swarm

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/kestrelworks/resolv/internal/orchestrator/policy"
	"github.com/kestrelworks/resolv/pkg/models"
)

// Finding is one worker's individual-analysis output.
type Finding struct {
	WorkerID        string            `json:"worker_id"`
	Type            models.WorkerType `json:"type"`
	Findings        []string          `json:"findings"`
	Recommendations []string          `json:"recommendations"`
	Confidence      float64           `json:"confidence"`
}

// Topic is one discussion topic inside a collaboration round.
type Topic struct {
	Name       string   `json:"name"`
	Consensus  bool     `json:"consensus"`
	Confidence float64  `json:"confidence"`
	Holders    []string `json:"holders,omitempty"`
}

// Round is one collaboration round.
type Round struct {
	Number       int      `json:"number"`
	Participants []string `json:"participants"`
	Topics       []Topic  `json:"topics"`
}

// Result is the coordination outcome handed to synthesis.
type Result struct {
	// Findings holds each responding worker's individual analysis.
	Findings []Finding `json:"findings"`
	// Rounds holds the collaboration rounds in order.
	Rounds []Round `json:"rounds"`
	// Convergence is the consensus strength in [0,1].
	Convergence float64 `json:"convergence"`
	// OverallConsensus marks convergence > 0.7. Advisory only:
	// synthesis proceeds either way.
	OverallConsensus bool `json:"overall_consensus"`
	// Confidence is the whole-coordination confidence in [0,1].
	Confidence float64 `json:"confidence"`
	// ExcludedWorkers counts workers dropped for missing the
	// individual-analysis deadline.
	ExcludedWorkers int `json:"excluded_workers"`
}

// Coordinator drives the phase sequence. Safe for concurrent use.
type Coordinator struct {
	workerDeadline time.Duration
	pol            policy.CoordinationPolicy
	logger         *log.Logger

	// analyzeFn produces one worker's individual finding. Overridden
	// in tests to simulate slow workers.
	analyzeFn func(ctx context.Context, w *models.Worker, analysis *models.Analysis) Finding
}

// New builds a Coordinator with the given per-worker deadline for the
// individual-analysis phase.
func New(workerDeadline time.Duration) *Coordinator {
	return &Coordinator{
		workerDeadline: workerDeadline,
		pol:            policy.Default().Coordination,
		logger:         log.New(log.Writer(), "[swarm] ", log.LstdFlags),
		analyzeFn:      individualAnalysis,
	}
}

// SetAnalyzeFunc replaces the per-worker individual analysis. The
// replacement must be safe for concurrent calls.
func (c *Coordinator) SetAnalyzeFunc(fn func(ctx context.Context, w *models.Worker, analysis *models.Analysis) Finding) {
	c.analyzeFn = fn
}

// Coordinate runs all three phases. It errors when the context expires
// or when not a single worker responded in time.
func (c *Coordinator) Coordinate(ctx context.Context, workers []*models.Worker, analysis *models.Analysis) (*Result, error) {
	if len(workers) == 0 {
		return nil, fmt.Errorf("no workers to coordinate")
	}

	findings, excluded, err := c.runIndividualPhase(ctx, workers, analysis)
	if err != nil {
		return nil, err
	}
	if len(findings) == 0 {
		return nil, fmt.Errorf("all %d workers missed the analysis deadline", len(workers))
	}
	if excluded > 0 {
		c.logger.Printf("excluded %d of %d workers after %s", excluded, len(workers), c.workerDeadline)
	}

	rounds := c.runCollaborationPhase(findings)
	convergence := buildConsensus(rounds, c.pol.ConsensusThreshold)

	return &Result{
		Findings:         findings,
		Rounds:           rounds,
		Convergence:      convergence,
		OverallConsensus: convergence > c.pol.ConsensusThreshold,
		Confidence:       coordinationConfidence(findings, rounds, convergence),
		ExcludedWorkers:  excluded,
	}, nil
}

// runIndividualPhase fans every worker out concurrently and joins on
// all of them, dropping workers that miss the deadline instead of
// stalling the session on a straggler.
func (c *Coordinator) runIndividualPhase(ctx context.Context, workers []*models.Worker, analysis *models.Analysis) ([]Finding, int, error) {
	results := make(chan Finding, len(workers))
	for _, w := range workers {
		go func(w *models.Worker) {
			results <- c.analyzeFn(ctx, w, analysis)
		}(w)
	}

	timer := time.NewTimer(c.workerDeadline)
	defer timer.Stop()

	findings := make([]Finding, 0, len(workers))
	for range workers {
		select {
		case f := <-results:
			findings = append(findings, f)
		case <-timer.C:
			return findings, len(workers) - len(findings), nil
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	return findings, 0, nil
}

// runCollaborationPhase holds min(3, ceil(n/2)) discussion rounds, each
// with up to four participants drawn in rotation.
func (c *Coordinator) runCollaborationPhase(findings []Finding) []Round {
	n := len(findings)
	roundCount := (n + 1) / 2
	if roundCount > c.pol.MaxRounds {
		roundCount = c.pol.MaxRounds
	}

	rounds := make([]Round, 0, roundCount)
	for r := 0; r < roundCount; r++ {
		size := c.pol.MaxRoundParticipants
		if size > n {
			size = n
		}
		participants := make([]Finding, 0, size)
		names := make([]string, 0, size)
		for i := 0; i < size; i++ {
			f := findings[(r*c.pol.MaxRoundParticipants+i)%n]
			participants = append(participants, f)
			names = append(names, f.WorkerID)
		}
		rounds = append(rounds, Round{
			Number:       r + 1,
			Participants: names,
			Topics:       discussTopics(participants),
		})
	}
	return rounds
}

// buildConsensus aggregates all rounds into the convergence score: the
// mean confidence of topics that reached consensus above the threshold,
// or 0.5 when no topic did.
func buildConsensus(rounds []Round, threshold float64) float64 {
	sum, n := 0.0, 0
	for _, round := range rounds {
		for _, topic := range round.Topics {
			if topic.Consensus && topic.Confidence > threshold {
				sum += topic.Confidence
				n++
			}
		}
	}
	if n == 0 {
		return 0.5
	}
	return sum / float64(n)
}

// coordinationConfidence is the mean of the three phase scores. All
// three inputs are always present, so no divide-by-zero cases exist.
func coordinationConfidence(findings []Finding, rounds []Round, convergence float64) float64 {
	individual := 0.0
	for _, f := range findings {
		individual += f.Confidence
	}
	individual /= float64(len(findings))

	collaboration := 0.5
	topicSum, topicCount := 0.0, 0
	for _, round := range rounds {
		for _, topic := range round.Topics {
			topicSum += topic.Confidence
			topicCount++
		}
	}
	if topicCount > 0 {
		collaboration = topicSum / float64(topicCount)
	}

	return (individual + collaboration + convergence) / 3
}
