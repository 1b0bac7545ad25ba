package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/guardline/restoreaudit/internal/config"
	"github.com/guardline/restoreaudit/internal/ingest"
	"github.com/guardline/restoreaudit/internal/report"
	"github.com/guardline/restoreaudit/internal/services"
)

func newReportCmd() *cobra.Command {
	var (
		org       string
		sourceDir string
		out       string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run an assessment and write the HTML posture report",
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

			sources, err := ingest.Discover(sourceDir)
			if err != nil {
				return err
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
				RequiredPlatforms: cfg.Assessment.RequiredPlatforms,
				StalenessDays:     cfg.Assessment.StalenessDays,
				PassRateBar:       cfg.Assessment.PassRateBar,
				DefaultRTOMinutes: cfg.Assessment.DefaultRTOMinutes,
			})
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			if err := report.WriteHTML(f, org, bundle); err != nil {
				return err
			}

			fmt.Println("wrote", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization the run belongs to")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "directory scanned for result files")
	cmd.Flags().StringVar(&out, "out", "posture-report.html", "output HTML file")
	return cmd
}
