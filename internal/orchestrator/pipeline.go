package orchestrator

import (
	"fmt"
	"time"

	"github.com/kestrelworks/resolv/internal/analyzer"
	"github.com/kestrelworks/resolv/internal/assess"
	"github.com/kestrelworks/resolv/internal/config"
	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/internal/learning"
	"github.com/kestrelworks/resolv/internal/planner"
	"github.com/kestrelworks/resolv/internal/scoring"
	"github.com/kestrelworks/resolv/internal/swarm"
	"github.com/kestrelworks/resolv/internal/synth"
	"github.com/kestrelworks/resolv/internal/tracker"
)

// PipelineContext carries every dependency the pipeline stages need.
// It is built once and passed explicitly; there is no global registry.
type PipelineContext struct {
	Config      *config.Config
	Store       knowledge.KnowledgeStore
	Tracker     tracker.Tracker
	Analyzer    *analyzer.Analyzer
	Planner     *planner.Planner
	Coordinator *swarm.Coordinator
	Synthesizer *synth.Synthesizer
	Assessor    *assess.Assessor
	Integrator  *learning.Integrator
}

// NewPipelineContext wires the standard pipeline: every stage built
// against the given store, tracker and scoring strategy.
func NewPipelineContext(cfg *config.Config, store knowledge.KnowledgeStore, trk tracker.Tracker, strategy scoring.Strategy) (*PipelineContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if store == nil {
		return nil, fmt.Errorf("nil knowledge store")
	}
	if trk == nil {
		return nil, fmt.Errorf("nil tracker")
	}

	profiles, err := config.LoadWorkerProfiles("")
	if err != nil {
		return nil, fmt.Errorf("loading worker profiles: %w", err)
	}

	return &PipelineContext{
		Config:      cfg,
		Store:       store,
		Tracker:     trk,
		Analyzer:    analyzer.New(store, strategy),
		Planner:     planner.New(profiles, store),
		Coordinator: swarm.New(cfg.Pipeline.WorkerDeadline),
		Synthesizer: synth.New(time.Now().UnixNano()),
		Assessor:    assess.New(strategy.Quality),
		Integrator:  learning.New(store, store),
	}, nil
}
