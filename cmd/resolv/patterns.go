package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/pkg/models"
)

var (
	patternsTop    int
	patternsDomain string
)

var patternsCmd = &cobra.Command{
	Use:   "patterns [show <id>]",
	Short: "Inspect learned resolution patterns",
	Long: `List or inspect the resolution patterns the pipeline has learned.

Patterns link a domain, complexity tier, and key terms to a solution
approach with its observed success rate. The analyzer matches them
against new tasks to seed the pipeline with prior knowledge.

Usage:
  resolv patterns                 # List top patterns by confidence
  resolv patterns --domain backend
  resolv patterns show <id>       # Show pattern details`,
	Args: cobra.MaximumNArgs(2),
	RunE: runPatterns,
}

func init() {
	patternsCmd.Flags().IntVar(&patternsTop, "top", 20, "Maximum patterns to display")
	patternsCmd.Flags().StringVar(&patternsDomain, "domain", "", "Filter patterns by domain")
}

func runPatterns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(args) >= 1 && args[0] == "show" {
		if len(args) < 2 {
			return fmt.Errorf("usage: resolv patterns show <id>")
		}
		return showPattern(store, args[1])
	}

	patterns, err := store.TopPatterns(patternsTop)
	if err != nil {
		return fmt.Errorf("list patterns: %w", err)
	}

	shown := 0
	for _, p := range patterns {
		if patternsDomain != "" && p.Domain != patternsDomain {
			continue
		}
		fmt.Printf("%s  %s/%s  %s  %s  %d uses\n",
			shortID(p.ID), p.Domain, p.Tier, p.Approach,
			formatRate(p.SuccessRate), p.Uses)
		shown++
	}
	if shown == 0 {
		fmt.Println("No patterns learned yet.")
	}
	return nil
}

// showPattern prints one pattern by id. GetPattern returns nil without
// error for an absent id, so the lookup miss is reported here.
func showPattern(store knowledge.PatternReader, id string) error {
	pattern, err := store.GetPattern(id)
	if err != nil {
		return fmt.Errorf("get pattern: %w", err)
	}
	if pattern == nil {
		return fmt.Errorf("pattern %s not found", id)
	}
	displayPattern(pattern)
	return nil
}

// displayPattern prints the full detail of one pattern.
func displayPattern(p *models.Pattern) {
	fmt.Printf("Pattern %s\n", p.ID)
	fmt.Printf("  Domain:       %s\n", p.Domain)
	fmt.Printf("  Tier:         %s\n", p.Tier)
	fmt.Printf("  Category:     %s\n", p.Category)
	fmt.Printf("  Approach:     %s\n", p.Approach)
	fmt.Printf("  Success rate: %s over %d uses\n", formatRate(p.SuccessRate), p.Uses)
	fmt.Printf("  Key terms:    %s\n", strings.Join(p.KeyTerms, ", "))
	fmt.Printf("  Created:      %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
}

// formatRate colors a success rate by rough health.
func formatRate(rate float64) string {
	s := fmt.Sprintf("%.0f%%", rate*100)
	switch {
	case rate >= 0.7:
		return color.GreenString(s)
	case rate >= 0.4:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}
