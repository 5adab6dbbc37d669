package cli

import (
	"errors"
	"fmt"

	"eventdesk/src-server/model"
	"eventdesk/src-server/utils"

	"github.com/spf13/cobra"
)

func newCreateUserCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:     "createuser",
		Short:   "Register a user from the command line",
		Example: `  eventdesk createuser --username alice --password 'correct horse'`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleaned := utils.CleanupUsername(username)
			if cleaned == "" || password == "" {
				return errors.New("Please provide username and password")
			}

			as, err := openAppState(cmd.Context())
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()

			userModel, err := model.CreateUser(cmd.Context(), as.BunDB, cleaned, password)
			if err != nil {
				if errors.Is(err, model.ErrUsernameTaken) {
					return errors.New("Username already exists")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d)\n", userModel.Username, userModel.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "username of the new user")
	cmd.Flags().StringVar(&password, "password", "", "password of the new user")
	return cmd
}
