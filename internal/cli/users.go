package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/users"
)

func newCreateUserCommand() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account for the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()

			db, err := database.NewDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			service, err := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
			if err != nil {
				return err
			}

			user, err := service.Register(email, password, "", "")
			if errors.Is(err, auth.ErrEmailInUse) {
				return fmt.Errorf("a user with email %s already exists", email)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&password, "password", "", "password, at least 8 characters (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
