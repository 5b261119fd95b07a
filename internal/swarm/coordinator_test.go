package swarm

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kestrelworks/resolv/internal/orchestrator/policy"
	"github.com/kestrelworks/resolv/pkg/models"
)

func makeWorkers(n int) []*models.Worker {
	workers := make([]*models.Worker, n)
	for i := 0; i < n; i++ {
		t := models.WorkerTypes[i%len(models.WorkerTypes)]
		workers[i] = &models.Worker{
			ID:      fmt.Sprintf("%s-%d", t, i),
			Type:    t,
			Quality: 0.5,
		}
	}
	return workers
}

func testAnalysis() *models.Analysis {
	return &models.Analysis{
		TaskID: "t-1",
		Domain: "backend",
		Tier:   models.TierMedium,
	}
}

func TestCoordinateRunsAllPhases(t *testing.T) {
	c := New(time.Second)
	result, err := c.Coordinate(context.Background(), makeWorkers(4), testAnalysis())
	if err != nil {
		t.Fatalf("Coordinate: %v", err)
	}

	if len(result.Findings) != 4 {
		t.Errorf("findings = %d, want 4", len(result.Findings))
	}
	if len(result.Rounds) != 2 {
		t.Errorf("rounds = %d, want 2", len(result.Rounds))
	}
	if result.Convergence < 0 || result.Convergence > 1 {
		t.Errorf("convergence %v out of [0,1]", result.Convergence)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		t.Errorf("confidence %v out of [0,1]", result.Confidence)
	}
	if result.OverallConsensus != (result.Convergence > policy.Default().Coordination.ConsensusThreshold) {
		t.Errorf("overall consensus %v inconsistent with convergence %v", result.OverallConsensus, result.Convergence)
	}
	if result.ExcludedWorkers != 0 {
		t.Errorf("excluded = %d, want 0", result.ExcludedWorkers)
	}

	for _, f := range result.Findings {
		if len(f.Findings) == 0 {
			t.Errorf("worker %s produced no findings", f.WorkerID)
		}
		for _, text := range f.Findings {
			if strings.Contains(text, "%s") {
				t.Errorf("unexpanded template in finding %q", text)
			}
		}
	}
}

func TestCollaborationRoundCount(t *testing.T) {
	tests := []struct {
		workers int
		rounds  int
	}{
		{1, 1},
		{2, 1},
		{4, 2},
		{5, 3},
		{6, 3},
		{8, 3},
	}
	c := New(time.Second)
	for _, tt := range tests {
		result, err := c.Coordinate(context.Background(), makeWorkers(tt.workers), testAnalysis())
		if err != nil {
			t.Fatalf("Coordinate(%d workers): %v", tt.workers, err)
		}
		if len(result.Rounds) != tt.rounds {
			t.Errorf("%d workers: rounds = %d, want %d", tt.workers, len(result.Rounds), tt.rounds)
		}
		for _, round := range result.Rounds {
			if len(round.Participants) > c.pol.MaxRoundParticipants {
				t.Errorf("round %d has %d participants", round.Number, len(round.Participants))
			}
		}
	}
}

func TestStragglersExcluded(t *testing.T) {
	c := New(50 * time.Millisecond)
	c.analyzeFn = func(ctx context.Context, w *models.Worker, analysis *models.Analysis) Finding {
		if strings.HasPrefix(w.ID, "slow") {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
		}
		return individualAnalysis(ctx, w, analysis)
	}

	workers := makeWorkers(3)
	workers[1].ID = "slow-1"
	result, err := c.Coordinate(context.Background(), workers, testAnalysis())
	if err != nil {
		t.Fatalf("Coordinate: %v", err)
	}
	if result.ExcludedWorkers != 1 {
		t.Errorf("excluded = %d, want 1", result.ExcludedWorkers)
	}
	if len(result.Findings) != 2 {
		t.Errorf("findings = %d, want 2", len(result.Findings))
	}
	for _, f := range result.Findings {
		if f.WorkerID == "slow-1" {
			t.Error("straggler's finding leaked into the phase result")
		}
	}
}

func TestAllStragglersFailPhase(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.analyzeFn = func(ctx context.Context, w *models.Worker, analysis *models.Analysis) Finding {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
		return Finding{WorkerID: w.ID}
	}
	if _, err := c.Coordinate(context.Background(), makeWorkers(2), testAnalysis()); err == nil {
		t.Error("expected error when every worker misses the deadline")
	}
}

func TestCoordinateHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })

	c := New(time.Minute)
	c.analyzeFn = func(ctx context.Context, w *models.Worker, analysis *models.Analysis) Finding {
		<-block
		return Finding{WorkerID: w.ID}
	}
	if _, err := c.Coordinate(ctx, makeWorkers(2), testAnalysis()); err == nil {
		t.Error("expected context error")
	}
}

func TestCoordinateNoWorkers(t *testing.T) {
	c := New(time.Second)
	if _, err := c.Coordinate(context.Background(), nil, testAnalysis()); err == nil {
		t.Error("expected error for empty worker set")
	}
}

func TestBuildConsensus(t *testing.T) {
	rounds := []Round{{
		Number: 1,
		Topics: []Topic{
			{Name: "approach", Consensus: true, Confidence: 0.8},
			{Name: "risk", Consensus: true, Confidence: 0.6},
			{Name: "testing", Consensus: false, Confidence: 0.9},
		},
	}}
	threshold := policy.Default().Coordination.ConsensusThreshold
	// Only the consensus topic above the threshold counts.
	if got := buildConsensus(rounds, threshold); got != 0.8 {
		t.Errorf("buildConsensus = %v, want 0.8", got)
	}
	if got := buildConsensus(nil, threshold); got != 0.5 {
		t.Errorf("buildConsensus(nil) = %v, want 0.5 fallback", got)
	}
}

func TestDomainOverlapBoostsConfidence(t *testing.T) {
	analysis := testAnalysis()
	plain := individualAnalysis(context.Background(), &models.Worker{
		ID: "w-1", Type: models.WorkerImplementer, Quality: 0.5,
	}, analysis)
	matched := individualAnalysis(context.Background(), &models.Worker{
		ID: "w-2", Type: models.WorkerImplementer, Quality: 0.5,
		Specialization: "backend services",
	}, analysis)

	if matched.Confidence <= plain.Confidence {
		t.Errorf("domain overlap did not boost confidence: %v vs %v", matched.Confidence, plain.Confidence)
	}
}
