package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/guardline/restoreaudit/internal/config"
	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/services"
)

func newAssessCmd() *cobra.Command {
	var (
		org               string
		sourceDir         string
		sourceSpecs       []string
		requiredPlatforms []string
		stalenessDays     int
		passRateBar       float64
		defaultRTO        int
		exportDir         string
	)

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run a recoverability posture assessment",
		Long: `Assess ingests restore test evidence from the configured sources,
aggregates it into a run summary, computes the weighted posture score,
evaluates advisory findings, and persists a snapshot for trend tracking.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if org == "" {
				org = cfg.Assessment.Org
			}
			if sourceDir == "" {
				sourceDir = cfg.Assessment.SourceDir
			}
			if len(requiredPlatforms) == 0 {
				requiredPlatforms = cfg.Assessment.RequiredPlatforms
			}
			if stalenessDays == 0 {
				stalenessDays = cfg.Assessment.StalenessDays
			}
			if passRateBar == 0 {
				passRateBar = cfg.Assessment.PassRateBar
			}
			if defaultRTO == 0 {
				defaultRTO = cfg.Assessment.DefaultRTOMinutes
			}

			sources, err := resolveSources(sourceSpecs, sourceDir)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return fmt.Errorf("no result sources found in %s and none given via --source", sourceDir)
			}

			log := quietLogger()
			repo, err := openRepository(cfg, log)
			if err != nil {
				return err
			}

			service := services.NewAssessmentService(ingest.New(log), repo, log)
			bundle, err := service.Run(context.Background(), services.RunOptions{
				Org:               org,
				Sources:           sources,
				RequiredPlatforms: requiredPlatforms,
				StalenessDays:     stalenessDays,
				PassRateBar:       passRateBar,
				DefaultRTOMinutes: defaultRTO,
			})
			if err != nil {
				return err
			}

			if exportDir != "" {
				exporter := services.NewExportService(log)
				written, err := exporter.Export(bundle, exportDir)
				if err != nil {
					return err
				}
				for _, path := range written {
					fmt.Println("exported", path)
				}
			}

			if getOutputFormat() != "table" {
				return printOutput(bundle)
			}
			renderBundle(bundle)
			return nil
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization the run belongs to")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "directory scanned for result files")
	cmd.Flags().StringArrayVar(&sourceSpecs, "source", nil, "explicit source as path:kind (repeatable)")
	cmd.Flags().StringSliceVar(&requiredPlatforms, "required-platforms", nil, "platforms that must contribute evidence")
	cmd.Flags().IntVar(&stalenessDays, "staleness-days", 0, "age in days after which evidence counts as stale")
	cmd.Flags().Float64Var(&passRateBar, "pass-rate-bar", 0, "pass rate for the positive posture finding")
	cmd.Flags().IntVar(&defaultRTO, "default-rto-minutes", 0, "RTO target applied to records that carry none")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "write results.csv, results.json, findings.csv and delta.csv here")

	return cmd
}

// resolveSources prefers explicit --source specs over directory discovery.
func resolveSources(specs []string, dir string) ([]ingest.Source, error) {
	if len(specs) == 0 {
		return ingest.Discover(dir)
	}

	sources := make([]ingest.Source, 0, len(specs))
	for _, spec := range specs {
		idx := strings.LastIndex(spec, ":")
		if idx <= 0 || idx == len(spec)-1 {
			return nil, fmt.Errorf("invalid --source %q, expected path:kind", spec)
		}
		sources = append(sources, ingest.Source{Path: spec[:idx], Kind: spec[idx+1:]})
	}
	return sources, nil
}

func renderBundle(bundle *services.PostureBundle) {
	s := bundle.Summary

	fmt.Printf("\nPosture Score: %.1f (%s)\n\n", bundle.Score.OverallScore, bundle.Score.Grade)

	scoreTable := NewTable("DIMENSION", "SCORE", "WEIGHT", "BASIS")
	for _, sub := range bundle.Score.SubScores {
		scoreTable.AddRow(
			sub.Dimension,
			fmt.Sprintf("%.1f", sub.Score),
			fmt.Sprintf("%.0f", sub.Weight),
			sub.Basis,
		)
	}
	scoreTable.Render()

	fmt.Printf("\nVMs: %d  Tests: %d  Passed: %d  Failed: %d  Pass rate: %.1f%%\n",
		s.TotalVMs, s.TotalTests, s.PassedTests, s.FailedTests, s.PassRate)
	if len(s.RTOTagged()) > 0 {
		fmt.Printf("Avg RTO: %.2f min  RTO compliance: %.1f%%\n", s.AvgRTOMinutes, s.RTOComplianceRate)
	}

	if bundle.Delta != nil {
		fmt.Printf("\nTrend vs. prior run %s:\n", truncate(bundle.Delta.PriorRunID, 11))
		deltaTable := NewTable("METRIC", "PRIOR", "CURRENT", "CHANGE")
		deltaTable.AddRow("Score",
			fmt.Sprintf("%.1f", bundle.Delta.Score.Prior),
			fmt.Sprintf("%.1f", bundle.Delta.Score.Current),
			fmt.Sprintf("%+.2f", bundle.Delta.Score.Diff))
		deltaTable.AddRow("Pass rate",
			fmt.Sprintf("%.1f", bundle.Delta.PassRate.Prior),
			fmt.Sprintf("%.1f", bundle.Delta.PassRate.Current),
			fmt.Sprintf("%+.2f", bundle.Delta.PassRate.Diff))
		deltaTable.AddRow("VMs",
			strconv.Itoa(int(bundle.Delta.TotalVMs.Prior)),
			strconv.Itoa(int(bundle.Delta.TotalVMs.Current)),
			fmt.Sprintf("%+.0f", bundle.Delta.TotalVMs.Diff))
		deltaTable.AddRow("Findings",
			strconv.Itoa(int(bundle.Delta.FindingCount.Prior)),
			strconv.Itoa(int(bundle.Delta.FindingCount.Current)),
			fmt.Sprintf("%+.0f", bundle.Delta.FindingCount.Diff))
		deltaTable.Render()
	} else {
		fmt.Println("\nBaseline run; no prior snapshot to compare against.")
	}

	fmt.Printf("\nFindings (%d):\n", len(bundle.Findings))
	if len(bundle.Findings) > 0 {
		findingTable := NewTable("SEVERITY", "CATEGORY", "TITLE", "FRAMEWORK")
		for _, f := range bundle.Findings {
			findingTable.AddRow(formatSeverity(f.Severity), f.Category, truncate(f.Title, 60), f.Framework)
		}
		findingTable.Render()
	}
	fmt.Println()
}
