package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()
			slog.Info("schema is up to date", "database", as.Config.GetDatabasePath())
			return nil
		},
	}
}
