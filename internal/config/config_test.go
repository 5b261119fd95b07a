package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kestrelworks/resolv/pkg/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadFromPathDefaults(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Pipeline.MaxConcurrentSessions != 4 {
		t.Errorf("max_concurrent_sessions = %d, want 4", cfg.Pipeline.MaxConcurrentSessions)
	}
	if cfg.Pipeline.MaxWorkers != 8 {
		t.Errorf("max_workers = %d, want 8", cfg.Pipeline.MaxWorkers)
	}
	if cfg.Pipeline.WorkerDeadline != 5*time.Second {
		t.Errorf("worker_deadline = %s, want 5s", cfg.Pipeline.WorkerDeadline)
	}
	if cfg.Scoring.Strategy != StrategyDeterministic {
		t.Errorf("strategy = %q, want deterministic", cfg.Scoring.Strategy)
	}
	if cfg.TUI.RefreshRate != 100*time.Millisecond {
		t.Errorf("refresh_rate = %s, want 100ms", cfg.TUI.RefreshRate)
	}
}

func TestLoadFromPathOverrides(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, `
pipeline:
  max_concurrent_sessions: 2
  max_resolution_time: 1m
scoring:
  strategy: anthropic
  model: claude-3-5-haiku-20241022
`))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Pipeline.MaxConcurrentSessions != 2 {
		t.Errorf("max_concurrent_sessions = %d, want 2", cfg.Pipeline.MaxConcurrentSessions)
	}
	if cfg.Pipeline.MaxResolutionTime != time.Minute {
		t.Errorf("max_resolution_time = %s, want 1m", cfg.Pipeline.MaxResolutionTime)
	}
	if cfg.Scoring.Strategy != StrategyAnthropic {
		t.Errorf("strategy = %q, want anthropic", cfg.Scoring.Strategy)
	}
	// Untouched sections keep defaults.
	if cfg.Pipeline.MaxWorkers != 8 {
		t.Errorf("max_workers = %d, want default 8", cfg.Pipeline.MaxWorkers)
	}
}

func TestLoadFromPathRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero sessions", "pipeline:\n  max_concurrent_sessions: 0\n"},
		{"one worker", "pipeline:\n  max_workers: 1\n"},
		{"bad strategy", "scoring:\n  strategy: mystery\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFromPath(writeConfig(t, tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("RESOLV_TEST_KEY", "sk-ant-test")
	if got := expandEnv("${RESOLV_TEST_KEY}"); got != "sk-ant-test" {
		t.Errorf("expandEnv = %q, want sk-ant-test", got)
	}
	if got := expandEnv("plain"); got != "plain" {
		t.Errorf("expandEnv(plain) = %q", got)
	}
}

func TestValidateAPIKey(t *testing.T) {
	if err := ValidateAPIKey("sk-ant-0123456789abcdef"); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if err := ValidateAPIKey(""); err == nil {
		t.Error("empty key accepted")
	}
	if err := ValidateAPIKey("sk-other-0123456789"); err == nil {
		t.Error("wrong prefix accepted")
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("MaskAPIKey(\"\") = %q", got)
	}
	if got := MaskAPIKey("sk-ant-api03-abcdefgh1234"); got != "sk-ant-...1234" {
		t.Errorf("MaskAPIKey = %q", got)
	}
	if got := MaskAPIKey("short"); got != "***" {
		t.Errorf("MaskAPIKey(short) = %q", got)
	}
}

func TestGetAPIKey(t *testing.T) {
	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")
		cfg := &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-from-config"}}
		key, err := GetAPIKey(cfg)
		if err != nil {
			t.Fatalf("GetAPIKey: %v", err)
		}
		if key != "sk-ant-from-env" {
			t.Errorf("key = %q, want env value", key)
		}
		if got := GetAPIKeySource(cfg); got != KeySourceEnv {
			t.Errorf("source = %q, want %q", got, KeySourceEnv)
		}
	})

	t.Run("config fallback", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		cfg := &Config{Anthropic: AnthropicConfig{APIKey: "sk-ant-from-config"}}
		key, err := GetAPIKey(cfg)
		if err != nil {
			t.Fatalf("GetAPIKey: %v", err)
		}
		if key != "sk-ant-from-config" {
			t.Errorf("key = %q, want config value", key)
		}
		if got := GetAPIKeySource(cfg); got != KeySourceConfig {
			t.Errorf("source = %q, want %q", got, KeySourceConfig)
		}
	})

	t.Run("none configured", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		cfg := &Config{}
		if _, err := GetAPIKey(cfg); !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("err = %v, want ErrNoAPIKey", err)
		}
		if got := GetAPIKeySource(cfg); got != KeySourceNone {
			t.Errorf("source = %q, want %q", got, KeySourceNone)
		}
	})

	t.Run("unresolved placeholder rejected", func(t *testing.T) {
		t.Setenv("ANTHROPIC_API_KEY", "")
		t.Setenv("RESOLV_KEY_REF", "")
		cfg := &Config{Anthropic: AnthropicConfig{APIKey: "${RESOLV_KEY_REF}"}}
		if _, err := GetAPIKey(cfg); !errors.Is(err, ErrNoAPIKey) {
			t.Errorf("err = %v, want ErrNoAPIKey for empty expansion", err)
		}
	})
}

func TestLoadWorkerProfilesDefaults(t *testing.T) {
	profiles, err := LoadWorkerProfiles("")
	if err != nil {
		t.Fatalf("LoadWorkerProfiles: %v", err)
	}
	if len(profiles) != len(models.WorkerTypes) {
		t.Fatalf("got %d profiles, want %d", len(profiles), len(models.WorkerTypes))
	}
	for i, p := range profiles {
		if p.Type != models.WorkerTypes[i] {
			t.Errorf("profile %d type = %q, want %q", i, p.Type, models.WorkerTypes[i])
		}
		if p.Specialization == "" || len(p.Capabilities) == 0 {
			t.Errorf("profile %q missing specialization or capabilities", p.Type)
		}
	}
}

func TestLoadWorkerProfilesOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workers.yaml")
	content := `
workers:
  - type: tester
    specialization: "property-based testing only"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing profiles: %v", err)
	}

	profiles, err := LoadWorkerProfiles(path)
	if err != nil {
		t.Fatalf("LoadWorkerProfiles: %v", err)
	}
	tester := ProfileFor(profiles, models.WorkerTester)
	if tester.Specialization != "property-based testing only" {
		t.Errorf("override not applied: %q", tester.Specialization)
	}
	// Capabilities untouched by a partial override.
	if len(tester.Capabilities) == 0 {
		t.Error("override dropped default capabilities")
	}
}

func TestLoadWorkerProfilesRejectsUnknownType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workers.yaml")
	if err := os.WriteFile(path, []byte("workers:\n  - type: wizard\n"), 0600); err != nil {
		t.Fatalf("writing profiles: %v", err)
	}
	if _, err := LoadWorkerProfiles(path); err == nil {
		t.Error("unknown worker type accepted")
	}
}
