package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kestrelworks/resolv/internal/config"
	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/internal/scoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "resolv",
	Short: "Task Resolution Pipeline",
	Long: `Resolv runs reported tasks through a multi-stage resolution pipeline:
analysis, worker planning, swarm coordination, solution synthesis,
quality assessment, and learning.

Every completed session feeds the persistent knowledge store, so
future sessions start from what earlier ones learned.

Core capabilities:
- Classifies intent and scores complexity deterministically
- Plans a worker swarm sized to the task's complexity tier
- Coordinates workers through individual, collaboration, and consensus phases
- Synthesizes ranked candidate solutions with implementation artifacts
- Assesses quality across seven dimensions
- Records patterns and knowledge for reuse`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Config file path (default: XDG config plus .resolv.yaml overrides)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(patternsCmd)
	rootCmd.AddCommand(knowledgeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// shortID truncates an identifier for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// loadConfig loads configuration, honoring the --config override.
func loadConfig() (*config.Config, error) {
	if cfgPath != "" {
		return config.LoadFromPath(cfgPath)
	}
	return config.Load()
}

// openStore opens the knowledge store named by the config, falling back
// to the project database and then the global one.
func openStore(cfg *config.Config) (*knowledge.Store, error) {
	path := cfg.Store.Path
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path = knowledge.ProjectDBPath(cwd)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = knowledge.GlobalDBPath()
		}
	}

	store, err := knowledge.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge store: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate knowledge store: %w", err)
	}
	return store, nil
}

// buildStrategy constructs the scoring strategy selected in the config.
// The anthropic strategy keeps deterministic intent and complexity
// scoring and swaps in the Claude-backed quality scorer.
func buildStrategy(cfg *config.Config) (scoring.Strategy, error) {
	strategy := scoring.Deterministic()

	switch cfg.Scoring.Strategy {
	case "", config.StrategyDeterministic:
		return strategy, nil
	case config.StrategyAnthropic:
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return strategy, fmt.Errorf("anthropic scoring: %w", err)
		}
		scorer, err := scoring.NewAnthropicQualityScorer(key, cfg.Scoring.Model)
		if err != nil {
			return strategy, fmt.Errorf("anthropic scoring: %w", err)
		}
		strategy.Quality = scorer
		return strategy, nil
	default:
		return strategy, fmt.Errorf("unknown scoring strategy %q", cfg.Scoring.Strategy)
	}
}
