package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kestrelworks/resolv/pkg/models"
)

var knowledgeDomain string

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect stored knowledge records",
	Long: `List the knowledge records accumulated from completed sessions.

A record links a domain and solution approach to an observed
effectiveness score. The planner consults records for the task's
domain when sizing the swarm.`,
	RunE: runKnowledge,
}

func init() {
	knowledgeCmd.Flags().StringVar(&knowledgeDomain, "domain", "", "Filter records by domain")
}

func runKnowledge(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var records []*models.KnowledgeRecord
	if knowledgeDomain != "" {
		records, err = store.RecordsByDomain(knowledgeDomain)
	} else {
		records, err = store.ListRecords()
	}
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No knowledge records yet.")
		return nil
	}

	for _, r := range records {
		fmt.Printf("%s  %s  %s  %s\n",
			shortID(r.ID), r.Domain, r.Approach, formatRate(r.Effectiveness))
		if r.Detail != "" {
			fmt.Printf("    %s\n", r.Detail)
		}
	}
	return nil
}
