package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finchdesk/finch/pkg/finch"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Look up users",
	}

	cmd.AddCommand(newUsersShowCommand())
	cmd.AddCommand(newUsersLookupCommand())

	return cmd
}

func newUsersShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show SCREEN_NAME",
		Short: "Show a single user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			user, err := client.Users().Show(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to fetch user %s: %w", args[0], err)
			}

			return renderUsers([]finch.User{*user})
		},
	}
}

func newUsersLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup SCREEN_NAME...",
		Short: "Look up several users at once",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			users, err := client.Users().Lookup(context.Background(), args)
			if err != nil {
				return fmt.Errorf("failed to look up users: %w", err)
			}

			return renderUsers(users)
		},
	}
}
