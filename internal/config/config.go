// Package config handles configuration loading and management for resolv.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for resolv.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Store     StoreConfig     `mapstructure:"store"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// PipelineConfig holds orchestration limits.
type PipelineConfig struct {
	// MaxConcurrentSessions caps non-terminal sessions; further
	// submissions are rejected outright.
	MaxConcurrentSessions int `mapstructure:"max_concurrent_sessions"`
	// MaxWorkers caps the planner's worker count per session.
	MaxWorkers int `mapstructure:"max_workers"`
	// MaxResolutionTime bounds one session end to end. Expiry forces
	// the session to failed with a timeout error.
	MaxResolutionTime time.Duration `mapstructure:"max_resolution_time"`
	// WorkerDeadline bounds each worker's individual-analysis phase.
	// Stragglers past the deadline are excluded from the phase result.
	WorkerDeadline time.Duration `mapstructure:"worker_deadline"`
}

// ScoringConfig selects the scoring strategy.
type ScoringConfig struct {
	// Strategy is "deterministic" or "anthropic".
	Strategy string `mapstructure:"strategy"`
	// Model overrides the Claude model for the anthropic strategy.
	Model string `mapstructure:"model"`
}

// StoreConfig holds knowledge store settings.
type StoreConfig struct {
	// Path overrides the default database location when non-empty.
	Path string `mapstructure:"path"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Scoring strategy names accepted in ScoringConfig.Strategy.
const (
	StrategyDeterministic = "deterministic"
	StrategyAnthropic     = "anthropic"
)

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.resolv.yaml in current directory or a parent)
// 3. User config (~/.config/resolv/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, cfg.Validate()
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, cfg.Validate()
}

// Validate rejects limits that would wedge or trivialize the pipeline.
func (c *Config) Validate() error {
	if c.Pipeline.MaxConcurrentSessions < 1 {
		return fmt.Errorf("pipeline.max_concurrent_sessions must be at least 1, got %d", c.Pipeline.MaxConcurrentSessions)
	}
	if c.Pipeline.MaxWorkers < 2 {
		return fmt.Errorf("pipeline.max_workers must be at least 2, got %d", c.Pipeline.MaxWorkers)
	}
	if c.Pipeline.MaxResolutionTime <= 0 {
		return fmt.Errorf("pipeline.max_resolution_time must be positive, got %s", c.Pipeline.MaxResolutionTime)
	}
	if c.Pipeline.WorkerDeadline <= 0 {
		return fmt.Errorf("pipeline.worker_deadline must be positive, got %s", c.Pipeline.WorkerDeadline)
	}
	switch c.Scoring.Strategy {
	case StrategyDeterministic, StrategyAnthropic:
	default:
		return fmt.Errorf("scoring.strategy must be %q or %q, got %q", StrategyDeterministic, StrategyAnthropic, c.Scoring.Strategy)
	}
	return nil
}

// Default returns a configuration carrying only the built-in defaults.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxConcurrentSessions: 4,
			MaxWorkers:            8,
			MaxResolutionTime:     10 * time.Minute,
			WorkerDeadline:        5 * time.Second,
		},
		Scoring: ScoringConfig{Strategy: StrategyDeterministic},
		TUI:     TUIConfig{RefreshRate: 100 * time.Millisecond},
	}
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("pipeline.max_concurrent_sessions", cfg.Pipeline.MaxConcurrentSessions)
	v.Set("pipeline.max_workers", cfg.Pipeline.MaxWorkers)
	v.Set("pipeline.max_resolution_time", cfg.Pipeline.MaxResolutionTime.String())
	v.Set("pipeline.worker_deadline", cfg.Pipeline.WorkerDeadline.String())
	v.Set("scoring.strategy", cfg.Scoring.Strategy)
	v.Set("scoring.model", cfg.Scoring.Model)
	v.Set("store.path", cfg.Store.Path)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")

	v.SetDefault("pipeline.max_concurrent_sessions", 4)
	v.SetDefault("pipeline.max_workers", 8)
	v.SetDefault("pipeline.max_resolution_time", "10m")
	v.SetDefault("pipeline.worker_deadline", "5s")

	v.SetDefault("scoring.strategy", StrategyDeterministic)
	v.SetDefault("scoring.model", "")

	v.SetDefault("store.path", "")

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for resolv.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "resolv")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "resolv")
	}
	return filepath.Join(home, ".config", "resolv")
}

// findProjectConfig searches for .resolv.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		configPath := filepath.Join(cwd, ".resolv.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}
	return ""
}

var envRefPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnv expands ${VAR} references against the environment.
func expandEnv(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := envRefPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})
}
