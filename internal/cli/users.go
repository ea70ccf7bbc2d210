package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/adamanr/onboarding_dashboard/internal/controllers"
	"github.com/adamanr/onboarding_dashboard/internal/entity"
	"github.com/spf13/cobra"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(
		a.usersListCmd(),
		a.usersActiveCmd("activate", true),
		a.usersActiveCmd("deactivate", false),
		a.usersRoleCmd(),
		a.usersEditCmd(),
		a.usersCreateCmd(),
	)

	return cmd
}

func (a *app) printUsers(cmd *cobra.Command, view controllers.DirectoryView) error {
	t := &table{headers: []string{"ID", "NAME", "EMAIL", "ROLE", "ACTIVE", "DEPARTMENT", "POSITION"}}
	for _, u := range view.Users {
		t.add(u.ID, u.Name, u.Email, string(u.Role), strconv.FormatBool(u.IsActive), u.Department, u.Position)
	}

	if err := a.print(cmd.OutOrStdout(), view, t); err != nil {
		return err
	}

	if a.asJSON {
		return nil
	}

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "\nShowing %d of %d (skip %d)\n", len(view.Users), view.Total, view.Skip)
	return err
}

func (a *app) usersListCmd() *cobra.Command {
	var (
		skip, limit int
		rawRoles    []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			roles := make([]entity.Role, 0, len(rawRoles))
			for _, raw := range rawRoles {
				role, err := entity.ParseRole(raw)
				if err != nil {
					return fmt.Errorf("--role %q: %w", raw, err)
				}
				roles = append(roles, role)
			}

			dir := a.workspace().Directory
			if _, err := dir.List(cmd.Context(), skip, limit, roles...); err != nil {
				return err
			}

			return a.printUsers(cmd, dir.View())
		},
	}

	cmd.Flags().IntVar(&skip, "skip", 0, "records to skip")
	cmd.Flags().IntVar(&limit, "limit", controllers.DefaultPageLimit, "page size")
	cmd.Flags().StringSliceVar(&rawRoles, "role", nil, "only show users with these roles (employee, manager, hr)")

	return guarded(cmd, "/user-management")
}

func (a *app) usersActiveCmd(use string, active bool) *cobra.Command {
	return guarded(&cobra.Command{
		Use:   use + " <user-id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ack, err := a.workspace().Directory.SetActive(cmd.Context(), args[0], active)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ack.Message)
			return err
		},
	}, "/user-management")
}

func (a *app) usersRoleCmd() *cobra.Command {
	return guarded(&cobra.Command{
		Use:       "role <user-id> <employee|manager|hr>",
		Short:     "Change the role of a user",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(entity.RoleEmployee), string(entity.RoleManager), string(entity.RoleHR)},
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := entity.ParseRole(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[1])
			}

			ack, err := a.workspace().Directory.ChangeRole(cmd.Context(), args[0], role)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ack.Message)
			return err
		},
	}, "/user-management")
}

// usersEditCmd buffers each --set field=value and saves them as one update.
func (a *app) usersEditCmd() *cobra.Command {
	var (
		sets        []string
		skip, limit int
	)

	cmd := &cobra.Command{
		Use:   "edit <user-id> --set field=value...",
		Short: "Update profile fields of a user",
		Long:  "Update profile fields of a user. Editable fields: " + strings.Join(entity.EditableFields, ", ") + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			dir := a.workspace().Directory

			if _, err := dir.List(cmd.Context(), skip, limit); err != nil {
				return err
			}

			for _, set := range sets {
				field, value, ok := strings.Cut(set, "=")
				if !ok {
					return fmt.Errorf("--set %q: expected field=value", set)
				}

				if err := dir.SetPendingEdit(id, strings.TrimSpace(field), value); err != nil {
					if errors.Is(err, controllers.ErrRecordNotLoaded) {
						return fmt.Errorf("user %s is not on the page (use --skip/--limit): %w", id, err)
					}
					return err
				}
			}

			ack, err := dir.UpdateFields(cmd.Context(), id)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), ack.Message)
			return err
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change, repeatable")
	cmd.Flags().IntVar(&skip, "skip", 0, "page offset holding the user")
	cmd.Flags().IntVar(&limit, "limit", 100, "page size used to find the user")
	_ = cmd.MarkFlagRequired("set")

	return guarded(cmd, "/user-management")
}

func (a *app) usersCreateCmd() *cobra.Command {
	var (
		user entity.NewUser
		role string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user.Role = entity.Role(strings.ToLower(strings.TrimSpace(role)))

			resp, err := a.workspace().Directory.Create(cmd.Context(), user)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (id %s)\n", resp.Message, resp.UserID)
			return err
		},
	}

	cmd.Flags().StringVar(&user.Name, "name", "", "full name")
	cmd.Flags().StringVar(&user.Email, "email", "", "email")
	cmd.Flags().StringVar(&user.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&role, "role", string(entity.RoleEmployee), "employee, manager or hr")
	cmd.Flags().StringVar(&user.Position, "position", "", "job title")
	cmd.Flags().StringVar(&user.Department, "department", "", "department")

	return guarded(cmd, "/create-user")
}
