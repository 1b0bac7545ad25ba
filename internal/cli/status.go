package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guardline/restoreaudit/internal/config"
	"github.com/guardline/restoreaudit/pkg/client"
)

func newStatusCmd() *cobra.Command {
	var org string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show API server health and the latest posture",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if org == "" {
				org = cfg.Assessment.Org
			}

			url := viper.GetString("server_url")
			if serverURL != "" {
				url = serverURL
			}
			c := client.NewClient(client.Config{BaseURL: url})

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			health, err := c.Health(ctx)
			if err != nil {
				return fmt.Errorf("server unreachable at %s: %w", url, err)
			}
			fmt.Printf("Server: %s (version %s, up %s)\n", health.Status, health.Version, health.Uptime)

			snap, err := c.LatestPosture(ctx, org)
			if err != nil {
				fmt.Printf("No posture for %s yet: %v\n", org, err)
				return nil
			}

			if getOutputFormat() != "table" {
				return printOutput(snap)
			}

			fmt.Printf("Latest posture for %s: %.1f (%s), %d VMs, %d findings, assessed %s\n",
				snap.Org, snap.Score.OverallScore, snap.Score.Grade,
				snap.TotalVMs, len(snap.Findings),
				snap.CreatedAt.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}

	cmd.Flags().StringVar(&org, "org", "", "organization to query")
	return cmd
}
