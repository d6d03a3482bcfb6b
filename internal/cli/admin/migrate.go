package admin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexgraph/lexgraph/internal/config"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply all pending database migrations and exit",
		RunE:  runMigrate,
	}

	cmd.Flags().String("path", "migrations", "Path to the migrations directory")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path, _ := cmd.Flags().GetString("path")
	return runMigrations(cfg.DatabaseURL, path)
}
