package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"task-tracker-client/core"
)

func loginCmd(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := app.session.Login(cmd.Context(), core.Credentials{
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			if message != "" {
				fmt.Println(message)
			}
			if user, ok := app.session.CurrentUser(); ok {
				fmt.Printf("logged in as %s\n", user.FullName)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")

	return cmd
}

func registerCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account (does not log in)",
		RunE: func(cmd *cobra.Command, args []string) error {
			message, err := app.session.Register(cmd.Context(), core.Registration{
				FullName: name,
				Email:    email,
				Password: password,
			})
			if err != nil {
				return err
			}
			if message == "" {
				message = "registered, you can log in now"
			}
			fmt.Println(message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")

	return cmd
}

func logoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the session and clear cached tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.session.Logout()
			fmt.Println("logged out")
			return nil
		},
	}
}

func whoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(cmd.Context()); err != nil {
				return err
			}
			user, ok := app.session.CurrentUser()
			if !ok {
				return fmt.Errorf("no user in session")
			}
			fmt.Printf("%s <%s> (id %s)\n", user.FullName, user.Email, user.UserID)
			return nil
		},
	}
}

func profileCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage the account profile",
	}

	var name, email string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update the current user's profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(cmd.Context()); err != nil {
				return err
			}
			user, ok := app.session.CurrentUser()
			if !ok {
				return fmt.Errorf("no user in session")
			}

			var patch core.UserPatch
			if cmd.Flags().Changed("name") {
				patch.FullName = &name
			}
			if cmd.Flags().Changed("email") {
				patch.Email = &email
			}

			updated, err := app.session.UpdateUserProfile(cmd.Context(), user.UserID, patch)
			if err != nil {
				return err
			}
			fmt.Printf("profile updated: %s <%s>\n", updated.FullName, updated.Email)
			return nil
		},
	}
	update.Flags().StringVarP(&name, "name", "n", "", "full name")
	update.Flags().StringVarP(&email, "email", "e", "", "account email")

	cmd.AddCommand(update)
	return cmd
}
