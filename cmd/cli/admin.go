package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/accunode/accunode-go/internal/app"
	"github.com/accunode/accunode-go/internal/store/auth"
	"github.com/accunode/accunode-go/pkg/constants"
	"github.com/accunode/accunode-go/pkg/errors"
)

func init() {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative commands (role-gated server-side)",
	}
	adminCmd.AddCommand(newUsersCmd(), newOrgsCmd(), newTenantsCmd())
	rootCmd.AddCommand(adminCmd)
}

// requireRole fails fast locally when the signed-in role cannot perform the
// command. The server enforces the same rule; this just saves a round-trip.
func requireRole(a *app.App, check func(*auth.Store) bool, needed string) error {
	if !check(a.AuthStore) {
		return errors.NewAuthError(fmt.Sprintf("requires %s role, signed in as %s", needed, a.AuthStore.Role()))
	}
	return nil
}

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users in your scope",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List visible users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageUsers, "org_admin"); err != nil {
				return err
			}
			users, err := a.Users.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			return printJSON(users)
		},
	}

	setRoleCmd := &cobra.Command{
		Use:   "set-role <user-id> <role>",
		Short: "Change a user's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role := constants.Role(args[1])
			if !role.Valid() {
				return errors.NewValidationError("role", "unknown role: "+args[1])
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageUsers, "org_admin"); err != nil {
				return err
			}
			user, err := a.Users.SetRole(cmd.Context(), args[0], role)
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Printf("%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageUsers, "org_admin"); err != nil {
				return err
			}
			if err := a.Users.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Println("Deleted", args[0])
			return nil
		},
	}

	usersCmd.AddCommand(listCmd, setRoleCmd, deleteCmd)
	return usersCmd
}

func newOrgsCmd() *cobra.Command {
	orgsCmd := &cobra.Command{
		Use:   "orgs",
		Short: "Manage organizations",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List organizations in your tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageOrganizations, "tenant_admin"); err != nil {
				return err
			}
			orgs, err := a.Organizations.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			return printJSON(orgs)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetString("description")
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageOrganizations, "tenant_admin"); err != nil {
				return err
			}
			org, err := a.Organizations.Create(cmd.Context(), args[0], desc)
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Printf("Created %s (join token: %s)\n", org.ID, org.JoinToken)
			return nil
		},
	}
	createCmd.Flags().String("description", "", "Organization description")

	rotateCmd := &cobra.Command{
		Use:   "rotate-token <org-id>",
		Short: "Rotate an organization's join token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageOrganizations, "tenant_admin"); err != nil {
				return err
			}
			org, err := a.Organizations.RotateJoinToken(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Println("New join token:", org.JoinToken)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <org-id>",
		Short: "Delete an organization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageOrganizations, "tenant_admin"); err != nil {
				return err
			}
			if err := a.Organizations.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Println("Deleted", args[0])
			return nil
		},
	}

	orgsCmd.AddCommand(listCmd, createCmd, rotateCmd, deleteCmd)
	return orgsCmd
}

func newTenantsCmd() *cobra.Command {
	tenantsCmd := &cobra.Command{
		Use:   "tenants",
		Short: "Manage tenants (super-admin only)",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageTenants, "super_admin"); err != nil {
				return err
			}
			tenants, err := a.Tenants.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			return printJSON(tenants)
		},
	}

	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, _ := cmd.Flags().GetString("domain")
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageTenants, "super_admin"); err != nil {
				return err
			}
			tenant, err := a.Tenants.Create(cmd.Context(), args[0], domain)
			if err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Println("Created tenant", tenant.ID)
			return nil
		},
	}
	createCmd.Flags().String("domain", "", "Tenant domain")

	deleteCmd := &cobra.Command{
		Use:   "delete <tenant-id>",
		Short: "Delete a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := requireRole(a, (*auth.Store).CanManageTenants, "super_admin"); err != nil {
				return err
			}
			if err := a.Tenants.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", errors.Humanize(err))
			}
			fmt.Println("Deleted", args[0])
			return nil
		},
	}

	tenantsCmd.AddCommand(listCmd, createCmd, deleteCmd)
	return tenantsCmd
}
