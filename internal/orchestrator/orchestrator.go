// Package orchestrator owns the session lifecycle: admission under the
// concurrency cap, the forward-only state machine, stage sequencing,
// and the exactly-once terminal side effects (ledger append, result
// publish, change request). It is the pipeline's single error boundary.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kestrelworks/resolv/internal/assess"
	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/internal/orchestrator/policy"
	"github.com/kestrelworks/resolv/internal/swarm"
	"github.com/kestrelworks/resolv/internal/tracker"
	"github.com/kestrelworks/resolv/pkg/models"
)

// Event is one observable session state change.
type Event struct {
	SessionID string
	TaskID    string
	State     models.SessionState
	Message   string
	Time      time.Time
}

// Orchestrator runs sessions. Safe for concurrent use.
type Orchestrator struct {
	pc     *PipelineContext
	pol    *policy.Config
	logger *log.Logger

	mu       sync.Mutex
	sessions map[string]*models.Session
	active   int

	events chan Event
	wg     sync.WaitGroup
}

// New builds an Orchestrator over a wired pipeline context.
func New(pc *PipelineContext) *Orchestrator {
	pol := policy.Default()
	return &Orchestrator{
		pc:       pc,
		pol:      pol,
		logger:   log.New(log.Writer(), "[orchestrator] ", log.LstdFlags),
		sessions: make(map[string]*models.Session),
		events:   make(chan Event, pol.Events.BufferSize),
	}
}

// Events exposes the session event stream. Events are dropped, never
// blocked on, when no consumer keeps up.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Submit admits a session for a task id and runs it in the background.
// It returns immediately: ErrCapacityExceeded when the concurrency cap
// is hit, ErrInvalidTask for an unusable id, otherwise the admitted
// session. The task itself is fetched inside the session.
func (o *Orchestrator) Submit(taskID string) (*models.Session, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, fmt.Errorf("%w: empty task id", ErrInvalidTask)
	}
	sess, err := o.admit(taskID)
	if err != nil {
		return nil, err
	}
	o.wg.Add(1)
	go o.run(context.Background(), sess, nil)
	return sess, nil
}

// Resolve runs one session synchronously for an already-materialized
// task and returns the terminal session.
func (o *Orchestrator) Resolve(ctx context.Context, task *models.Task) (*models.Session, error) {
	if task == nil || strings.TrimSpace(task.ID) == "" {
		return nil, fmt.Errorf("%w: missing task", ErrInvalidTask)
	}
	sess, err := o.admit(task.ID)
	if err != nil {
		return nil, err
	}
	o.wg.Add(1)
	o.run(ctx, sess, task)
	return o.Session(sess.ID)
}

// Session returns a snapshot of one session.
func (o *Orchestrator) Session(id string) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sess, ok := o.sessions[id]
	if !ok {
		return nil, fmt.Errorf("unknown session %q", id)
	}
	snapshot := *sess
	return &snapshot, nil
}

// Sessions returns a snapshot of all sessions.
func (o *Orchestrator) Sessions() []*models.Session {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*models.Session, 0, len(o.sessions))
	for _, sess := range o.sessions {
		snapshot := *sess
		out = append(out, &snapshot)
	}
	return out
}

// Wait blocks until every admitted session reached a terminal state.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// admit reserves a concurrency slot and registers the session. The cap
// counts non-terminal sessions; rejected submissions are the caller's
// to retry.
func (o *Orchestrator) admit(taskID string) (*models.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.active >= o.pc.Config.Pipeline.MaxConcurrentSessions {
		return nil, fmt.Errorf("%w: %d sessions running", ErrCapacityExceeded, o.active)
	}

	sess := &models.Session{
		ID:        uuid.New().String()[:8],
		TaskID:    taskID,
		State:     models.StateInitializing,
		StartedAt: time.Now().UTC(),
	}
	o.sessions[sess.ID] = sess
	o.active++
	return sess, nil
}

// run drives one session end to end. task may be nil, in which case it
// is fetched from the tracker first.
func (o *Orchestrator) run(ctx context.Context, sess *models.Session, task *models.Task) {
	defer o.wg.Done()

	ctx, cancel := context.WithTimeout(ctx, o.pc.Config.Pipeline.MaxResolutionTime)
	defer cancel()
	start := time.Now()

	if task == nil {
		fetched, err := o.pc.Tracker.FetchTask(ctx, sess.TaskID)
		if err != nil {
			o.fail(sess, nil, start, fmt.Errorf("%w: %v", ErrCollaboratorFetch, err))
			return
		}
		task = fetched
	}

	analysis, err := o.runPipeline(ctx, sess, task)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = &StageError{Stage: o.currentState(sess), Err: fmt.Errorf("%w after %s", ErrTimeout, o.pc.Config.Pipeline.MaxResolutionTime)}
		}
		o.fail(sess, analysis, start, err)
		return
	}
	o.complete(sess, analysis, start)
}

// runPipeline executes the stage sequence. Any returned error carries
// the failing stage via StageError.
func (o *Orchestrator) runPipeline(ctx context.Context, sess *models.Session, task *models.Task) (*models.Analysis, error) {
	var (
		analysis     *models.Analysis
		plan         *models.WorkerPlan
		coordination *swarm.Result
		candidates   []*models.CandidateSolution
	)

	err := o.stage(sess, models.StateAnalyzing, func() (string, error) {
		a, err := o.pc.Analyzer.Analyze(task)
		if err != nil {
			return "", err
		}
		analysis = a
		o.update(sess, func(s *models.Session) {
			s.Metrics.PatternsMatched = len(a.Patterns)
		})
		return fmt.Sprintf("domain=%s tier=%s patterns=%d", a.Domain, a.Tier, len(a.Patterns)), nil
	})
	if err != nil {
		return analysis, err
	}

	err = o.stage(sess, models.StateSpawning, func() (string, error) {
		p, err := o.pc.Planner.Plan(analysis, o.pc.Config.Pipeline.MaxWorkers)
		if err != nil {
			return "", err
		}
		plan = p
		o.update(sess, func(s *models.Session) {
			s.Metrics.WorkersSpawned = len(p.Workers)
		})
		return fmt.Sprintf("workers=%d expected=%.2f", len(p.Workers), p.ExpectedOutcome), nil
	})
	if err != nil {
		return analysis, err
	}

	err = o.stage(sess, models.StateCoordinating, func() (string, error) {
		c, err := o.pc.Coordinator.Coordinate(ctx, plan.Workers, analysis)
		if err != nil {
			return "", err
		}
		coordination = c
		o.update(sess, func(s *models.Session) {
			s.Metrics.Convergence = c.Convergence
			s.Metrics.ExcludedWorkers = c.ExcludedWorkers
			s.Metrics.RoundsHeld = len(c.Rounds)
		})
		return fmt.Sprintf("convergence=%.2f rounds=%d excluded=%d", c.Convergence, len(c.Rounds), c.ExcludedWorkers), nil
	})
	if err != nil {
		return analysis, err
	}

	err = o.stage(sess, models.StateSynthesizing, func() (string, error) {
		cs, err := o.pc.Synthesizer.Synthesize(coordination, analysis)
		if err != nil {
			return "", err
		}
		candidates = cs
		o.update(sess, func(s *models.Session) {
			s.Metrics.CandidatesTried = len(cs)
		})
		return fmt.Sprintf("candidates=%d", len(cs)), nil
	})
	if err != nil {
		return analysis, err
	}

	err = o.stage(sess, models.StateValidating, func() (string, error) {
		assessments := make([]*models.Assessment, len(candidates))
		for i, c := range candidates {
			a, err := o.pc.Assessor.Assess(ctx, c, analysis, coordination.Convergence)
			if err != nil {
				return "", err
			}
			assessments[i] = a
		}
		best, bestAssessment := assess.SelectBest(candidates, assessments)
		if best == nil {
			return "", fmt.Errorf("no candidate survived assessment")
		}
		o.update(sess, func(s *models.Session) {
			s.Best = best
			s.Assessment = bestAssessment
			s.Metrics.QualityScore = bestAssessment.Score
			for _, c := range candidates {
				if c.ID != best.ID {
					s.Alternates = append(s.Alternates, c)
				}
			}
		})
		return fmt.Sprintf("best=%s score=%.2f", best.ID, bestAssessment.Score), nil
	})
	if err != nil {
		return analysis, err
	}

	err = o.stage(sess, models.StateLearning, func() (string, error) {
		snapshot, serr := o.Session(sess.ID)
		if serr != nil {
			return "", serr
		}
		if err := o.pc.Integrator.Integrate(snapshot, analysis, true); err != nil {
			return "", err
		}
		return "patterns and knowledge stored", nil
	})
	return analysis, err
}

// stage transitions into state, runs fn, and records the stage result.
// Errors come back wrapped with the stage name.
func (o *Orchestrator) stage(sess *models.Session, state models.SessionState, fn func() (string, error)) error {
	if err := o.transition(sess, state); err != nil {
		return &StageError{Stage: state, Err: err}
	}
	begin := time.Now()
	detail, err := fn()
	o.update(sess, func(s *models.Session) {
		s.Stages = append(s.Stages, models.StageResult{
			Stage:    state,
			Duration: time.Since(begin),
			Detail:   detail,
		})
	})
	if err != nil {
		return &StageError{Stage: state, Err: err}
	}
	return nil
}

// transition moves the session forward, enforcing the state machine.
func (o *Orchestrator) transition(sess *models.Session, next models.SessionState) error {
	o.mu.Lock()
	if !sess.State.CanTransition(next) {
		cur := sess.State
		o.mu.Unlock()
		return fmt.Errorf("illegal transition %s -> %s", cur, next)
	}
	sess.State = next
	taskID := sess.TaskID
	o.mu.Unlock()

	o.emit(Event{SessionID: sess.ID, TaskID: taskID, State: next, Time: time.Now()})
	return nil
}

func (o *Orchestrator) update(sess *models.Session, fn func(*models.Session)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn(sess)
}

func (o *Orchestrator) currentState(sess *models.Session) models.SessionState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return sess.State
}

// complete finishes a successful session and fires the terminal side
// effects exactly once.
func (o *Orchestrator) complete(sess *models.Session, analysis *models.Analysis, start time.Time) {
	if err := o.transition(sess, models.StateCompleted); err != nil {
		o.logger.Printf("session %s: %v", sess.ID, err)
		return
	}
	o.update(sess, func(s *models.Session) {
		s.Metrics.Duration = time.Since(start)
	})
	o.finalize(sess, analysis)
}

// fail converts any pipeline error into a failed session. The failing
// stage and a readable message are recorded, then the same terminal
// side effects run as for success.
func (o *Orchestrator) fail(sess *models.Session, analysis *models.Analysis, start time.Time, err error) {
	stage := o.currentState(sess)
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		stage = stageErr.Stage
	}

	if terr := o.transition(sess, models.StateFailed); terr != nil {
		o.logger.Printf("session %s: %v", sess.ID, terr)
		return
	}
	o.update(sess, func(s *models.Session) {
		s.FailureStage = stage
		s.FailureMessage = err.Error()
		s.Metrics.Duration = time.Since(start)
	})
	o.logger.Printf("session %s failed at %s: %v", sess.ID, stage, err)

	if analysis != nil {
		if ierr := o.pc.Integrator.Integrate(sess, analysis, false); ierr != nil {
			o.logger.Printf("session %s: learning from failure: %v", sess.ID, ierr)
		}
	}
	o.finalize(sess, analysis)
}

// finalize runs the terminal-transition side effects: release the
// concurrency slot, append the ledger record, publish the result, and
// open a change request when the quality gate passes. It runs exactly
// once per session; publish failure only degrades the session, it never
// fails it.
func (o *Orchestrator) finalize(sess *models.Session, analysis *models.Analysis) {
	o.mu.Lock()
	o.active--
	snapshot := *sess
	o.mu.Unlock()

	o.emit(Event{
		SessionID: snapshot.ID,
		TaskID:    snapshot.TaskID,
		State:     snapshot.State,
		Message:   snapshot.FailureMessage,
		Time:      time.Now(),
	})

	if err := o.pc.Store.AppendLedger(ledgerRecord(&snapshot)); err != nil {
		o.logger.Printf("session %s: ledger append: %v", snapshot.ID, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.pol.Publish.Timeout)
	defer cancel()

	result := buildResult(&snapshot)
	if err := o.pc.Tracker.PublishResult(ctx, snapshot.TaskID, result); err != nil {
		o.logger.Printf("session %s: publish degraded: %v", snapshot.ID, err)
		o.update(sess, func(s *models.Session) {
			s.Metrics.PublishDegraded = true
		})
	}

	label := "resolv:resolved"
	if snapshot.State == models.StateFailed {
		label = "resolv:failed"
	}
	if err := o.pc.Tracker.AddLabels(ctx, snapshot.TaskID, []string{label}); err != nil {
		o.logger.Printf("session %s: add labels: %v", snapshot.ID, err)
	}

	if shouldOpenChange(&snapshot, o.pol.Publish) {
		branch := fmt.Sprintf("resolv/%s", snapshot.TaskID)
		ref, err := o.pc.Tracker.OpenChange(ctx, snapshot.TaskID, branch, snapshot.Best.Artifacts)
		if err != nil {
			o.logger.Printf("session %s: open change: %v", snapshot.ID, err)
		} else {
			o.logger.Printf("session %s: opened change %s", snapshot.ID, ref)
		}
	}
}

// shouldOpenChange is the change-request gate. All three conditions
// are required; the AND must not be weakened.
func shouldOpenChange(sess *models.Session, pub policy.PublishPolicy) bool {
	if sess.State != models.StateCompleted || sess.Best == nil || sess.Assessment == nil {
		return false
	}
	return sess.Assessment.Score > pub.ChangeMinScore &&
		sess.Assessment.Dimension(models.DimCompleteness) > pub.ChangeMinCompleteness &&
		sess.Best.ArtifactCount() > 0
}

func buildResult(sess *models.Session) *tracker.Result {
	return &tracker.Result{
		SessionID:    sess.ID,
		TaskID:       sess.TaskID,
		Success:      sess.State == models.StateCompleted,
		Message:      sess.FailureMessage,
		FailureStage: string(sess.FailureStage),
		Best:         sess.Best,
		Assessment:   sess.Assessment,
		Alternates:   sess.Alternates,
		Metrics:      sess.Metrics,
	}
}

func ledgerRecord(sess *models.Session) *knowledge.LedgerRecord {
	summary := "resolved"
	if sess.State == models.StateFailed {
		summary = "failed"
	} else if sess.Best != nil {
		summary = fmt.Sprintf("resolved via %s", sess.Best.Approach)
	}
	return &knowledge.LedgerRecord{
		SessionID:      sess.ID,
		TaskID:         sess.TaskID,
		State:          sess.State,
		StartedAt:      sess.StartedAt,
		Duration:       sess.Metrics.Duration,
		QualityScore:   sess.Metrics.QualityScore,
		WorkersSpawned: sess.Metrics.WorkersSpawned,
		Summary:        summary,
		FailureStage:   string(sess.FailureStage),
		FailureMessage: sess.FailureMessage,
	}
}

func (o *Orchestrator) emit(event Event) {
	select {
	case o.events <- event:
	default:
		// Drop rather than block the pipeline on a slow consumer.
	}
}
