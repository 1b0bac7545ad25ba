package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/guardline/restoreaudit/internal/config"
)

func newSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Inspect persisted assessment snapshots",
	}

	cmd.AddCommand(newSnapshotsListCmd())
	cmd.AddCommand(newSnapshotsShowCmd())
	return cmd
}

func newSnapshotsListCmd() *cobra.Command {
	var (
		org   string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if org == "" {
				org = cfg.Assessment.Org
			}

			repo, err := openRepository(cfg, quietLogger())
			if err != nil {
				return err
			}

			snaps, err := repo.List(context.Background(), org, limit)
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(snaps)
			}

			if len(snaps) == 0 {
				fmt.Println("No snapshots found for", org)
				return nil
			}

			table := NewTable("ID", "CREATED", "SCORE", "GRADE", "VMS", "PASS RATE", "FINDINGS")
			for _, s := range snaps {
				table.AddRow(
					truncate(s.ID, 11),
					s.CreatedAt.Format("2006-01-02 15:04"),
					fmt.Sprintf("%.1f", s.Score.OverallScore),
					s.Score.Grade,
					strconv.Itoa(s.TotalVMs),
					fmt.Sprintf("%.1f%%", s.PassRate),
					strconv.Itoa(len(s.Findings)),
				)
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization to list snapshots for")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum snapshots to list (0 = all)")
	return cmd
}

func newSnapshotsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one snapshot in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			repo, err := openRepository(cfg, quietLogger())
			if err != nil {
				return err
			}

			snap, err := repo.Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			if getOutputFormat() != "table" {
				return printOutput(snap)
			}

			fmt.Printf("Snapshot %s\n", snap.ID)
			fmt.Printf("Org: %s  Run: %s  Created: %s\n",
				snap.Org, truncate(snap.RunID, 11), snap.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Printf("Score: %.1f (%s)  VMs: %d  Tests: %d  Pass rate: %.1f%%\n\n",
				snap.Score.OverallScore, snap.Score.Grade, snap.TotalVMs, snap.TotalTests, snap.PassRate)

			if len(snap.Findings) > 0 {
				table := NewTable("SEVERITY", "CATEGORY", "TITLE")
				for _, f := range snap.Findings {
					table.AddRow(formatSeverity(f.Severity), f.Category, truncate(f.Title, 70))
				}
				table.Render()
			}
			return nil
		},
	}
	return cmd
}
