package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/adamanr/onboarding_dashboard/internal/access"
	"github.com/spf13/cobra"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				return errors.New("both --email and --password are required")
			}

			sess, err := a.ctrl.AuthController.Login(cmd.Context(), SessionKey, email, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.asJSON {
				return a.print(out, sess.User, nil)
			}

			_, err = fmt.Fprintf(out, "Signed in as %s (%s), dashboard: %s\n",
				sess.User.FullName(), sess.User.Role, access.SelectDashboard(sess.User.Role))
			return err
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")

	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ctrl.AuthController.Logout(cmd.Context(), SessionKey); err != nil {
				return err
			}

			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return err
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return guarded(&cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user := a.session.User

			t := &table{headers: []string{"ID", "NAME", "EMAIL", "ROLE", "EXPIRES"}}
			expires := "-"
			if !a.session.ExpiresAt.IsZero() {
				expires = a.session.ExpiresAt.Local().Format(time.DateTime)
			}
			t.add(user.ID, user.FullName(), user.Email, string(user.Role), expires)

			return a.print(cmd.OutOrStdout(), user, t)
		},
	}, "/dashboard")
}

func (a *app) dashboardCmd() *cobra.Command {
	return guarded(&cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard variant and navigation of the signed-in role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role := a.session.User.Role
			variant := access.SelectDashboard(role)
			items := access.NavigationItems(role)

			out := cmd.OutOrStdout()
			if a.asJSON {
				return a.print(out, map[string]any{"variant": variant.String(), "navigation": items}, nil)
			}

			if _, err := fmt.Fprintf(out, "Dashboard: %s\n\n", variant); err != nil {
				return err
			}

			t := &table{headers: []string{"TITLE", "ROUTE"}}
			for _, item := range items {
				t.add(item.Title, item.Href)
			}

			return t.render(out)
		},
	}, "/dashboard")
}
