package cli

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/accunode/accunode-go/pkg/errors"
)

func init() {
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if email == "" {
				return errors.NewValidationError("email", "required")
			}
			if password == "" {
				var err error
				password, err = promptPassword("Password: ")
				if err != nil {
					return err
				}
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.AuthStore.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Printf("Signed in as %s (%s)\n", user.Email, user.Role)
			return nil
		},
	}
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password (prompted when omitted)")

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			if email == "" {
				return errors.NewValidationError("email", "required")
			}
			password, err := promptPassword("Choose a password: ")
			if err != nil {
				return err
			}

			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.AuthStore.Register(cmd.Context(), email, password, name)
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Printf("Account created for %s\n", user.Email)
			return nil
		},
	}
	registerCmd.Flags().String("email", "", "Account email")
	registerCmd.Flags().String("name", "", "Full name")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			a.AuthStore.Logout(cmd.Context())
			fmt.Println("Signed out")
			return nil
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.AuthStore.Profile(cmd.Context(), false)
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			return printJSON(user)
		},
	}

	joinCmd := &cobra.Command{
		Use:   "join <join-token>",
		Short: "Join an organization with a join token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.Auth.Join(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			// The role changed server-side; refetch so the cached profile agrees.
			if _, err := a.AuthStore.Profile(cmd.Context(), true); err == nil {
				fmt.Printf("Joined organization %s as %s\n", user.OrganizationID, user.Role)
			}
			return nil
		},
	}

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd, joinCmd)
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
