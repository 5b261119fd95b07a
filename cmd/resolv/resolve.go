package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/kestrelworks/resolv/internal/config"
	"github.com/kestrelworks/resolv/internal/orchestrator"
	"github.com/kestrelworks/resolv/internal/tracker"
	"github.com/kestrelworks/resolv/internal/tui"
	"github.com/kestrelworks/resolv/pkg/models"
)

var (
	resolveTitle  string
	resolveBody   string
	resolveLabels []string
	resolveFile   string
	resolveWatch  bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [task-id]",
	Short: "Resolve a task through the full pipeline",
	Long: `Resolve a task through analysis, planning, coordination, synthesis,
assessment, and learning.

The task is described inline with --title/--body/--label, or loaded
from a YAML file with --file. The task id defaults to a generated one.

The session runs until it completes, fails, or hits the configured
resolution deadline. The terminal outcome is appended to the session
ledger either way.

Examples:
  resolv resolve --title "Login returns 500" --body "Stack trace attached" --label bug
  resolv resolve TASK-42 --file task.yaml --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveTitle, "title", "", "Task title")
	resolveCmd.Flags().StringVar(&resolveBody, "body", "", "Task body text")
	resolveCmd.Flags().StringArrayVar(&resolveLabels, "label", nil, "Task label (repeatable)")
	resolveCmd.Flags().StringVar(&resolveFile, "file", "", "Load the task from a YAML file")
	resolveCmd.Flags().BoolVar(&resolveWatch, "watch", false, "Watch the session in the TUI")
}

// taskFile is the YAML shape accepted by --file.
type taskFile struct {
	ID     string   `yaml:"id"`
	Title  string   `yaml:"title"`
	Body   string   `yaml:"body"`
	Labels []string `yaml:"labels"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	task, err := buildTask(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	strategy, err := buildStrategy(cfg)
	if err != nil {
		return err
	}

	trk := tracker.NewInMemory()
	trk.AddTask(task)

	pc, err := orchestrator.NewPipelineContext(cfg, store, trk, strategy)
	if err != nil {
		return fmt.Errorf("wire pipeline: %w", err)
	}
	orch := orchestrator.New(pc)

	if resolveWatch {
		if cfgPath != "" {
			watcher, werr := config.Watch(cfgPath, func(_ *config.Config) {
				log.Printf("[resolv] config %s changed, restart to apply", cfgPath)
			})
			if werr != nil {
				log.Printf("[resolv] config watch: %v", werr)
			} else {
				defer watcher.Close()
			}
		}
		if _, err := orch.Submit(task.ID); err != nil {
			return err
		}
		if err := tui.Run(orch, cfg.TUI.RefreshRate); err != nil {
			return fmt.Errorf("run TUI: %w", err)
		}
		orch.Wait()
		return printOutcome(orch, trk, task.ID)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("Resolving task %s: %s\n", task.ID, task.Title)
	if _, err := orch.Resolve(ctx, task); err != nil {
		return err
	}
	return printOutcome(orch, trk, task.ID)
}

// buildTask materializes the task from flags, the --file YAML, or both.
// Flags win over file values.
func buildTask(args []string) (*models.Task, error) {
	task := &models.Task{CreatedAt: time.Now().UTC()}

	if resolveFile != "" {
		data, err := os.ReadFile(resolveFile)
		if err != nil {
			return nil, fmt.Errorf("read task file: %w", err)
		}
		var tf taskFile
		if err := yaml.Unmarshal(data, &tf); err != nil {
			return nil, fmt.Errorf("parse task file: %w", err)
		}
		task.ID = tf.ID
		task.Title = tf.Title
		task.Body = tf.Body
		task.Labels = tf.Labels
	}

	if len(args) == 1 {
		task.ID = args[0]
	}
	if resolveTitle != "" {
		task.Title = resolveTitle
	}
	if resolveBody != "" {
		task.Body = resolveBody
	}
	if len(resolveLabels) > 0 {
		task.Labels = resolveLabels
	}

	if task.ID == "" {
		task.ID = uuid.New().String()[:8]
	}
	if strings.TrimSpace(task.Title) == "" {
		return nil, fmt.Errorf("task title is required (use --title or --file)")
	}
	return task, nil
}

// printOutcome renders the terminal session for a task id.
func printOutcome(orch *orchestrator.Orchestrator, trk *tracker.InMemory, taskID string) error {
	var sess *models.Session
	for _, s := range orch.Sessions() {
		if s.TaskID == taskID {
			sess = s
			break
		}
	}
	if sess == nil {
		return fmt.Errorf("no session found for task %s", taskID)
	}

	fmt.Println()
	switch sess.State {
	case models.StateCompleted:
		fmt.Printf("%s Session %s completed in %s\n",
			color.GreenString("✓"), sess.ID, sess.Metrics.Duration.Round(time.Millisecond))
		if sess.Best != nil {
			fmt.Printf("  Approach:  %s\n", sess.Best.Approach)
			fmt.Printf("  Effort:    %dh estimated\n", sess.Best.EstimatedEffort)
			fmt.Printf("  Artifacts: %d\n", sess.Best.ArtifactCount())
		}
		if sess.Assessment != nil {
			fmt.Printf("  Score:     %.2f\n", sess.Assessment.Score)
			for _, rec := range sess.Assessment.Recommendations {
				fmt.Printf("  %s %s\n", color.YellowString("⚠"), rec)
			}
		}
		for _, change := range trk.Changes() {
			fmt.Printf("  Change:    %s\n", change.Ref)
		}
	case models.StateFailed:
		fmt.Printf("%s Session %s failed at %s: %s\n",
			color.RedString("✗"), sess.ID, sess.FailureStage, sess.FailureMessage)
		return fmt.Errorf("resolution failed")
	default:
		fmt.Printf("Session %s is %s\n", sess.ID, sess.State)
	}
	return nil
}
