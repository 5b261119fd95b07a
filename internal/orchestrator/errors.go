package orchestrator

import (
	"errors"
	"fmt"

	"github.com/kestrelworks/resolv/pkg/models"
)

// Sentinel errors of the pipeline's error taxonomy. Stage-internal
// failures are wrapped in StageError instead.
var (
	// ErrCapacityExceeded rejects a submission when the concurrent
	// session cap is hit. The caller retries later; nothing queues.
	ErrCapacityExceeded = errors.New("concurrent session capacity exceeded")
	// ErrInvalidTask rejects a missing or malformed task id.
	ErrInvalidTask = errors.New("invalid task")
	// ErrCollaboratorFetch marks an upstream task read failure. Fatal
	// to the session, never retried internally.
	ErrCollaboratorFetch = errors.New("collaborator fetch failed")
	// ErrTimeout marks a session that exceeded max resolution time.
	ErrTimeout = errors.New("session timed out")
)

// StageError wraps a stage-internal failure with the stage that raised
// it. It always forces the session to failed.
type StageError struct {
	Stage models.SessionState
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
