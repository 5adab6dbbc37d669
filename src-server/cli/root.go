package cli

import (
	"context"
	"fmt"
	"os"

	"eventdesk/src-server/model"
	"eventdesk/src-server/utils"

	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	serveCmd := newServeCmd()
	rootCmd := &cobra.Command{
		Use:   "eventdesk",
		Short: "eventdesk - event, attendee and task management API",
		Long: `eventdesk serves a JSON API for events, their attendees and tasks,
plus user registration. Configuration is read from the environment
(and a .env file in the working directory).`,
		SilenceUsage: true,
		// serve when no subcommand is given
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveCmd.RunE(cmd, args)
		},
	}
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCreateUserCmd())
	return rootCmd
}

// Called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Opens the database from env config and makes sure the schema exists.
// The caller owns the returned state and must call GracefulShutdown.
func openAppState(ctx context.Context) (*utils.AppState, error) {
	as, err := utils.NewAppState(utils.NewConfig())
	if err != nil {
		return nil, err
	}
	if err := model.CreateSchema(ctx, as.BunDB); err != nil {
		as.GracefulShutdown()
		return nil, fmt.Errorf("can't create database schema: %w", err)
	}
	return as, nil
}
