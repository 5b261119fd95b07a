package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kestrelworks/resolv/internal/config"
)

func resetResolveFlags() {
	resolveTitle = ""
	resolveBody = ""
	resolveLabels = nil
	resolveFile = ""
	resolveWatch = false
}

func TestBuildTask_Flags(t *testing.T) {
	resetResolveFlags()
	resolveTitle = "Login returns 500"
	resolveBody = "Stack trace attached"
	resolveLabels = []string{"bug", "urgent"}

	task, err := buildTask([]string{"TASK-42"})
	if err != nil {
		t.Fatalf("buildTask: %v", err)
	}
	if task.ID != "TASK-42" {
		t.Errorf("ID = %q, want TASK-42", task.ID)
	}
	if task.Title != "Login returns 500" {
		t.Errorf("Title = %q", task.Title)
	}
	if len(task.Labels) != 2 {
		t.Errorf("Labels = %v", task.Labels)
	}
}

func TestBuildTask_GeneratesID(t *testing.T) {
	resetResolveFlags()
	resolveTitle = "Add search endpoint"

	task, err := buildTask(nil)
	if err != nil {
		t.Fatalf("buildTask: %v", err)
	}
	if len(task.ID) != 8 {
		t.Errorf("generated ID = %q, want 8 chars", task.ID)
	}
}

func TestBuildTask_RequiresTitle(t *testing.T) {
	resetResolveFlags()

	if _, err := buildTask(nil); err == nil {
		t.Fatal("expected error for missing title")
	}
}

func TestBuildTask_FileWithFlagOverride(t *testing.T) {
	resetResolveFlags()

	path := filepath.Join(t.TempDir(), "task.yaml")
	data := "id: TASK-7\ntitle: From file\nbody: file body\nlabels:\n  - bug\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	resolveFile = path
	resolveTitle = "From flag"

	task, err := buildTask(nil)
	if err != nil {
		t.Fatalf("buildTask: %v", err)
	}
	if task.ID != "TASK-7" {
		t.Errorf("ID = %q, want TASK-7", task.ID)
	}
	if task.Title != "From flag" {
		t.Errorf("Title = %q, want flag to win", task.Title)
	}
	if task.Body != "file body" {
		t.Errorf("Body = %q", task.Body)
	}
}

func TestConfigValueRoundTrip(t *testing.T) {
	cfg := config.Default()

	if err := setConfigValue(cfg, "pipeline.max_workers", "6"); err != nil {
		t.Fatalf("setConfigValue: %v", err)
	}
	got, err := getConfigValue(cfg, "pipeline.max_workers")
	if err != nil {
		t.Fatalf("getConfigValue: %v", err)
	}
	if got != "6" {
		t.Errorf("max_workers = %q, want 6", got)
	}

	if err := setConfigValue(cfg, "scoring.strategy", "invalid"); err == nil {
		t.Error("expected error for invalid strategy")
	}
	if err := setConfigValue(cfg, "nope", "1"); err == nil {
		t.Error("expected error for unknown key")
	}
}
