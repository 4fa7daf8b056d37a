// Command bhctl runs operator tasks against the BoardingHub database without
// starting the HTTP server.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/boardinghub/boardinghub-api/internal/config"
	"github.com/boardinghub/boardinghub-api/internal/database"
	"github.com/boardinghub/boardinghub-api/internal/logging"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "bhctl",
	Short: "BoardingHub operator tool",
	Long: `Operator commands for BoardingHub.

Database settings come from the same DB_* environment variables the server
reads.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup()
		cfg = config.Load()
		return database.Connect(cfg)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := database.Close(); err != nil {
			slog.Warn("database close error", "error", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(exportReportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
