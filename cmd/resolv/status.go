package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kestrelworks/resolv/internal/knowledge"
	"github.com/kestrelworks/resolv/pkg/models"
)

var (
	statusLimit  int
	statusFailed bool
	statusPurge  time.Duration
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent session outcomes",
	Long: `Display recent terminal sessions from the append-only ledger.

Shows:
  - Session and task identifiers
  - Terminal state, quality score, and duration
  - Failure stage and message for failed sessions

With --purge, ledger entries older than the given duration are deleted
before listing (e.g. --purge 720h for a 30-day retention).`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Maximum sessions to display")
	statusCmd.Flags().BoolVar(&statusFailed, "failed", false, "Show only failed sessions")
	statusCmd.Flags().DurationVar(&statusPurge, "purge", 0, "Delete ledger entries older than this duration")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if statusPurge > 0 {
		purged, err := store.PurgeLedger(statusPurge)
		if err != nil {
			return fmt.Errorf("purge ledger: %w", err)
		}
		fmt.Printf("Purged %d ledger entries older than %s.\n", purged, statusPurge)
	}

	var stateFilter *models.SessionState
	if statusFailed {
		failed := models.StateFailed
		stateFilter = &failed
	}

	records, err := store.ListLedger(stateFilter, statusLimit)
	if err != nil {
		return fmt.Errorf("list ledger: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No sessions recorded.")
		return nil
	}

	fmt.Printf("Recent sessions (%s):\n\n", store.Path())
	for _, r := range records {
		displayLedgerRecord(r)
	}
	return nil
}

// displayLedgerRecord prints one ledger entry.
func displayLedgerRecord(r *knowledge.LedgerRecord) {
	marker := color.GreenString("✓")
	if r.State == models.StateFailed {
		marker = color.RedString("✗")
	}

	fmt.Printf("%s %s  task %s  %s  score %.2f  %d workers  %s\n",
		marker, r.SessionID, r.TaskID,
		r.StartedAt.Local().Format("2006-01-02 15:04"),
		r.QualityScore, r.WorkersSpawned,
		r.Duration.Round(time.Millisecond))

	if r.State == models.StateFailed {
		fmt.Printf("    failed at %s: %s\n", r.FailureStage, r.FailureMessage)
	} else if r.Summary != "" {
		fmt.Printf("    %s\n", r.Summary)
	}
}
