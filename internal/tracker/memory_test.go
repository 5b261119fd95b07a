package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/kestrelworks/resolv/pkg/models"
)

func TestFetchTask(t *testing.T) {
	m := NewInMemory()
	m.AddTask(&models.Task{ID: "t-1", Title: "crash on start"})

	task, err := m.FetchTask(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("FetchTask: %v", err)
	}
	if task.Title != "crash on start" {
		t.Errorf("title = %q", task.Title)
	}

	_, err = m.FetchTask(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing task error = %v, want ErrNotFound", err)
	}
}

func TestFetchErrInjection(t *testing.T) {
	m := NewInMemory()
	m.AddTask(&models.Task{ID: "t-1"})
	m.FetchErr = ErrUnavailable

	_, err := m.FetchTask(context.Background(), "t-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
	// Transient failure is distinguishable from the permanent kinds.
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAccessDenied) {
		t.Error("transient error matched a permanent error kind")
	}
}

func TestPublishAndLabels(t *testing.T) {
	m := NewInMemory()
	if err := m.PublishResult(context.Background(), "t-1", &Result{SessionID: "s-1", Success: true}); err != nil {
		t.Fatalf("PublishResult: %v", err)
	}
	if err := m.AddLabels(context.Background(), "t-1", []string{"resolved"}); err != nil {
		t.Fatalf("AddLabels: %v", err)
	}

	published := m.Published("t-1")
	if len(published) != 1 || !published[0].Success {
		t.Errorf("published = %+v", published)
	}
	if labels := m.Labels("t-1"); len(labels) != 1 || labels[0] != "resolved" {
		t.Errorf("labels = %v", labels)
	}
}

func TestOpenChange(t *testing.T) {
	m := NewInMemory()
	ref, err := m.OpenChange(context.Background(), "t-1", "resolv/t-1", []models.Artifact{
		{Name: "impl.md", Kind: models.ArtifactImplementation},
	})
	if err != nil {
		t.Fatalf("OpenChange: %v", err)
	}
	if ref == "" {
		t.Error("empty change ref")
	}
	changes := m.Changes()
	if len(changes) != 1 || changes[0].Branch != "resolv/t-1" {
		t.Errorf("changes = %+v", changes)
	}
}
