// Package tracker defines the boundary with the external issue-tracking
// collaborator: fetching tasks inbound, publishing results, labels and
// change requests outbound.
package tracker

import (
	"context"
	"errors"

	"github.com/kestrelworks/resolv/pkg/models"
)

// Typed collaborator errors. Callers distinguish these from transient
// network failure via errors.Is.
var (
	// ErrNotFound means the task id does not exist upstream.
	ErrNotFound = errors.New("task not found")
	// ErrAccessDenied means the caller lacks permission for the task.
	ErrAccessDenied = errors.New("access denied")
	// ErrUnavailable marks a transient upstream failure.
	ErrUnavailable = errors.New("tracker unavailable")
)

// Result is the terminal outcome published for one session: either a
// success carrying the best candidate, or a failure carrying the error.
type Result struct {
	SessionID string `json:"session_id"`
	TaskID    string `json:"task_id"`
	Success   bool   `json:"success"`
	// Message is the human-readable failure message; empty on success.
	Message string `json:"message,omitempty"`
	// FailureStage names the stage that failed; empty on success.
	FailureStage string `json:"failure_stage,omitempty"`

	Best       *models.CandidateSolution   `json:"best,omitempty"`
	Assessment *models.Assessment          `json:"assessment,omitempty"`
	Alternates []*models.CandidateSolution `json:"alternates,omitempty"`
	Metrics    models.SessionMetrics       `json:"metrics"`
}

// Tracker is the full collaborator contract.
type Tracker interface {
	// FetchTask reads one task. Fails with ErrNotFound or
	// ErrAccessDenied for permanent conditions.
	FetchTask(ctx context.Context, taskID string) (*models.Task, error)
	// PublishResult posts the terminal session outcome.
	PublishResult(ctx context.Context, taskID string, result *Result) error
	// AddLabels attaches labels to the task.
	AddLabels(ctx context.Context, taskID string, labels []string) error
	// OpenChange opens a change request carrying the artifacts and
	// returns its reference.
	OpenChange(ctx context.Context, taskID, branch string, artifacts []models.Artifact) (string, error)
}
