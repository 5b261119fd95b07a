package tracker

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrelworks/resolv/pkg/models"
)

// Change is one opened change request recorded by the in-memory tracker.
type Change struct {
	TaskID    string
	Branch    string
	Ref       string
	Artifacts []models.Artifact
}

// InMemory is a tracker backed by process memory. It serves inline
// CLI tasks and tests; error injection fields simulate upstream
// failure modes.
type InMemory struct {
	mu        sync.Mutex
	tasks     map[string]*models.Task
	published map[string][]*Result
	labels    map[string][]string
	changes   []Change

	// FetchErr, PublishErr and ChangeErr, when set, are returned by
	// the corresponding operations.
	FetchErr   error
	PublishErr error
	ChangeErr  error
}

// NewInMemory builds an empty in-memory tracker.
func NewInMemory() *InMemory {
	return &InMemory{
		tasks:     make(map[string]*models.Task),
		published: make(map[string][]*Result),
		labels:    make(map[string][]string),
	}
}

// AddTask seeds a task.
func (m *InMemory) AddTask(task *models.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = task
}

func (m *InMemory) FetchTask(_ context.Context, taskID string) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchErr != nil {
		return nil, m.FetchErr
	}
	task, ok := m.tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	return task, nil
}

func (m *InMemory) PublishResult(_ context.Context, taskID string, result *Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishErr != nil {
		return m.PublishErr
	}
	m.published[taskID] = append(m.published[taskID], result)
	return nil
}

func (m *InMemory) AddLabels(_ context.Context, taskID string, labels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[taskID] = append(m.labels[taskID], labels...)
	return nil
}

func (m *InMemory) OpenChange(_ context.Context, taskID, branch string, artifacts []models.Artifact) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ChangeErr != nil {
		return "", m.ChangeErr
	}
	ref := fmt.Sprintf("change/%s/%d", taskID, len(m.changes)+1)
	m.changes = append(m.changes, Change{
		TaskID:    taskID,
		Branch:    branch,
		Ref:       ref,
		Artifacts: artifacts,
	})
	return ref, nil
}

// Published returns the results published for a task.
func (m *InMemory) Published(taskID string) []*Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Result(nil), m.published[taskID]...)
}

// Labels returns the labels added to a task.
func (m *InMemory) Labels(taskID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.labels[taskID]...)
}

// Changes returns all opened change requests.
func (m *InMemory) Changes() []Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Change(nil), m.changes...)
}

var _ Tracker = (*InMemory)(nil)
