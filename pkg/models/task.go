package models

import "time"

// Task is the unit of work submitted to the resolution pipeline.
// It is immutable once fetched from the originating tracker.
type Task struct {
	// ID is the identifier of the task in the originating system.
	ID string `json:"id"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Body is the free-text description of the task.
	Body string `json:"body,omitempty"`
	// Labels are the labels attached in the originating system.
	Labels []string `json:"labels,omitempty"`
	// Repository identifies the originating repository, if any.
	Repository string `json:"repository,omitempty"`
	// Author is the reporter in the originating system.
	Author string `json:"author,omitempty"`
	// CreatedAt is when the task was created upstream.
	CreatedAt time.Time `json:"created_at"`
}

// HasLabel reports whether the task carries the given label (case-sensitive).
func (t *Task) HasLabel(label string) bool {
	for _, l := range t.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// SessionState is a stage in the session state machine. Transitions are
// strictly forward; Failed is reachable from any non-terminal state.
type SessionState string

const (
	StateInitializing SessionState = "initializing"
	StateAnalyzing    SessionState = "analyzing"
	StateSpawning     SessionState = "spawning"
	StateCoordinating SessionState = "coordinating"
	StateSynthesizing SessionState = "synthesizing"
	StateValidating   SessionState = "validating"
	StateLearning     SessionState = "learning"
	StateCompleted    SessionState = "completed"
	StateFailed       SessionState = "failed"
)

// Terminal reports whether the state is terminal.
func (s SessionState) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Valid returns true if the state is a known value.
func (s SessionState) Valid() bool {
	switch s {
	case StateInitializing, StateAnalyzing, StateSpawning, StateCoordinating,
		StateSynthesizing, StateValidating, StateLearning, StateCompleted, StateFailed:
		return true
	default:
		return false
	}
}

// stageOrder encodes the forward-only ordering of non-terminal states.
var stageOrder = map[SessionState]int{
	StateInitializing: 0,
	StateAnalyzing:    1,
	StateSpawning:     2,
	StateCoordinating: 3,
	StateSynthesizing: 4,
	StateValidating:   5,
	StateLearning:     6,
	StateCompleted:    7,
}

// CanTransition reports whether moving from s to next is a legal
// state-machine transition. Failed is reachable from any non-terminal
// state; all other transitions must move exactly one stage forward.
func (s SessionState) CanTransition(next SessionState) bool {
	if s.Terminal() {
		return false
	}
	if next == StateFailed {
		return true
	}
	from, ok := stageOrder[s]
	if !ok {
		return false
	}
	to, ok := stageOrder[next]
	if !ok {
		return false
	}
	return to == from+1
}

// StageResult records the outcome of one pipeline stage within a session.
type StageResult struct {
	// Stage is the state the session was in while the stage ran.
	Stage SessionState `json:"stage"`
	// Duration is how long the stage took.
	Duration time.Duration `json:"duration"`
	// Detail is a short human-readable summary of the stage outcome.
	Detail string `json:"detail,omitempty"`
}

// SessionMetrics aggregates counters for a completed session. Individual
// workers are never persisted; only these aggregates survive.
type SessionMetrics struct {
	WorkersSpawned  int           `json:"workers_spawned"`
	PatternsMatched int           `json:"patterns_matched"`
	CandidatesTried int           `json:"candidates_tried"`
	Convergence     float64       `json:"convergence"`
	QualityScore    float64       `json:"quality_score"`
	Duration        time.Duration `json:"duration"`
	PublishDegraded bool          `json:"publish_degraded"`
	ExcludedWorkers int           `json:"excluded_workers"`
	RoundsHeld      int           `json:"rounds_held"`
}

// Session is one end-to-end resolution attempt for one task. It is owned
// exclusively by the orchestrator for its lifetime and never mutated after
// its terminal record is persisted.
type Session struct {
	// ID is the unique session identifier. Never reused.
	ID string `json:"id"`
	// TaskID references the task being resolved.
	TaskID string `json:"task_id"`
	// State is the current state-machine state.
	State SessionState `json:"state"`
	// StartedAt is when the session was admitted.
	StartedAt time.Time `json:"started_at"`
	// Stages is the ordered list of completed stage results.
	Stages []StageResult `json:"stages,omitempty"`
	// Best is the selected candidate solution, set on success.
	Best *CandidateSolution `json:"best,omitempty"`
	// Assessment is the quality assessment of Best, set on success.
	Assessment *Assessment `json:"assessment,omitempty"`
	// Alternates are the non-selected candidates, in generation order.
	Alternates []*CandidateSolution `json:"alternates,omitempty"`
	// Metrics aggregates session counters, set on any terminal transition.
	Metrics SessionMetrics `json:"metrics"`
	// FailureStage names the stage that failed, set on failure.
	FailureStage SessionState `json:"failure_stage,omitempty"`
	// FailureMessage is the human-readable failure description.
	FailureMessage string `json:"failure_message,omitempty"`
}
