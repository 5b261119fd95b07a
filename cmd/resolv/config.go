package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/kestrelworks/resolv/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify resolv configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/resolv/config.yaml
Project-specific overrides can be placed in .resolv.yaml`,
	Args: cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s (source: %s)\n",
		config.MaskAPIKey(cfg.Anthropic.APIKey), config.GetAPIKeySource(cfg))
	fmt.Printf("pipeline.max_concurrent_sessions: %d\n", cfg.Pipeline.MaxConcurrentSessions)
	fmt.Printf("pipeline.max_workers: %d\n", cfg.Pipeline.MaxWorkers)
	fmt.Printf("pipeline.max_resolution_time: %s\n", cfg.Pipeline.MaxResolutionTime)
	fmt.Printf("pipeline.worker_deadline: %s\n", cfg.Pipeline.WorkerDeadline)
	fmt.Printf("scoring.strategy: %s\n", cfg.Scoring.Strategy)
	fmt.Printf("scoring.model: %s\n", cfg.Scoring.Model)
	fmt.Printf("store.path: %s\n", cfg.Store.Path)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue returns the string form of a configuration key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "pipeline.max_concurrent_sessions":
		return strconv.Itoa(cfg.Pipeline.MaxConcurrentSessions), nil
	case "pipeline.max_workers":
		return strconv.Itoa(cfg.Pipeline.MaxWorkers), nil
	case "pipeline.max_resolution_time":
		return cfg.Pipeline.MaxResolutionTime.String(), nil
	case "pipeline.worker_deadline":
		return cfg.Pipeline.WorkerDeadline.String(), nil
	case "scoring.strategy":
		return cfg.Scoring.Strategy, nil
	case "scoring.model":
		return cfg.Scoring.Model, nil
	case "store.path":
		return cfg.Store.Path, nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setConfigValue parses and applies a configuration value.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "anthropic.api_key":
		if err := config.ValidateAPIKey(value); err != nil {
			return err
		}
		cfg.Anthropic.APIKey = value
	case "pipeline.max_concurrent_sessions":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Pipeline.MaxConcurrentSessions = n
	case "pipeline.max_workers":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Pipeline.MaxWorkers = n
	case "pipeline.max_resolution_time":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		cfg.Pipeline.MaxResolutionTime = d
	case "pipeline.worker_deadline":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		cfg.Pipeline.WorkerDeadline = d
	case "scoring.strategy":
		if value != config.StrategyDeterministic && value != config.StrategyAnthropic {
			return fmt.Errorf("scoring.strategy must be %q or %q",
				config.StrategyDeterministic, config.StrategyAnthropic)
		}
		cfg.Scoring.Strategy = value
	case "scoring.model":
		cfg.Scoring.Model = value
	case "store.path":
		cfg.Store.Path = value
	case "tui.refresh_rate":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		cfg.TUI.RefreshRate = d
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}
