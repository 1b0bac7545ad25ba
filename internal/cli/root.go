package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/guardline/restoreaudit/internal/config"
	"github.com/guardline/restoreaudit/internal/domain/snapshot"
	"github.com/guardline/restoreaudit/internal/pkg/logger"
	"github.com/guardline/restoreaudit/internal/repository/filestore"
	"github.com/guardline/restoreaudit/internal/repository/sqlstore"
)

var (
	cfgFile      string
	outputFormat string
	serverURL    string
)

var rootCmd = &cobra.Command{
	Use:   "restoreaudit",
	Short: "RestoreAudit CLI - Recoverability Posture Assessment",
	Long: `RestoreAudit turns raw backup restore test evidence into an auditable
recoverability posture: a weighted score, graded posture, compliance-mapped
findings, and trend deltas across assessment runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.restoreaudit/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "API server URL (status command)")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))

	rootCmd.AddCommand(newAssessCmd())
	rootCmd.AddCommand(newSnapshotsCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newStatusCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		configDir := home + "/.restoreaudit"
		_ = os.MkdirAll(configDir, 0o700)
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RESTOREAUDIT")
	viper.AutomaticEnv()

	viper.SetDefault("server_url", "http://localhost:8080")
	viper.SetDefault("output", "table")

	_ = viper.ReadInConfig()
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}

// openRepository builds the configured snapshot repository. CLI commands
// log quietly; request-level logging belongs to the API server.
func openRepository(cfg *config.Config, log *logger.Logger) (snapshot.Repository, error) {
	switch cfg.Store.Backend {
	case "sql":
		db, err := sqlstore.Open(cfg.Store.Driver, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return sqlstore.NewSnapshotRepository(db, cfg.Store.Driver), nil
	default:
		return filestore.NewSnapshotRepository(cfg.Store.Dir, log)
	}
}

func quietLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "warn", Format: "console", Output: os.Stderr})
}
