package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/disgoorg/snowflake/v2"
	"github.com/spf13/cobra"

	"github.com/sglre6355/karaoke/internal/modules/karaoke/application/usecases"
	"github.com/sglre6355/karaoke/internal/modules/karaoke/domain"
)

// operator is the actor behind role changes made from the CLI. Having
// direct access to the database already grants full control.
var operator = domain.Actor{Name: "karaokectl", Role: domain.RolePrivileged}

// RoleEntry is one explicit role assignment.
type RoleEntry struct {
	UserID string `json:"user_id"        yaml:"user_id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
	Role   string `json:"role"           yaml:"role"`
}

// NewRoleCommand creates the role command group.
func NewRoleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "role",
		Short: "Manage participant roles",
		Long: `Manage explicit roles of Discord accounts.

An explicit role overrides the Discord admin role mapping. Roles are keyed by
Discord user ID; the name is only a label for listings.

Examples:
  karaokectl role list --db ./karaoke.db
  karaokectl role set --db ./karaoke.db 123456789012345678 admin --name Alice`,
	}

	var name string
	set := &cobra.Command{
		Use:   "set <user-id> <admin|user>",
		Short: "Assign a role to a Discord account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoleSet(rootOpts, cmd, args[0], args[1], name)
		},
	}
	set.Flags().StringVar(&name, "name", "", "display name shown in listings")

	cmd.AddCommand(set)
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List explicit role assignments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoleList(rootOpts, cmd)
		},
	})

	return cmd
}

func runRoleSet(opts *RootOptions, cmd *cobra.Command, userArg, roleName, name string) error {
	userID, err := snowflake.Parse(strings.TrimSpace(userArg))
	if err != nil {
		return WrapExitError(ExitFailure, "invalid user ID", err)
	}

	role, err := domain.ParseRole(roleName)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid role", err)
	}

	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	service := usecases.NewRoleService(st)
	err = service.SetRole(context.Background(), usecases.SetRoleInput{
		Actor:  operator,
		UserID: userID,
		Name:   name,
		Role:   role,
	})
	switch {
	case errors.Is(err, domain.ErrValidation):
		return WrapExitError(ExitFailure, "rejected role assignment", err)
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to set role", err)
	}

	entry := roleEntry(domain.RoleAssignment{UserID: userID, Name: strings.TrimSpace(name), Role: role})
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(entry, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s is now %s.\n", entry.label(), entry.Role)
		return err
	})
}

func runRoleList(opts *RootOptions, cmd *cobra.Command) error {
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer st.Close()

	output, err := usecases.NewRoleService(st).ListRoles(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list roles", err)
	}

	entries := make([]RoleEntry, 0, len(output.Roles))
	for _, assignment := range output.Roles {
		entries = append(entries, roleEntry(assignment))
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(entries, func(w io.Writer) error {
		if len(entries) == 0 {
			_, err := fmt.Fprintln(w, "No explicit roles assigned.")
			return err
		}

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "USER ID\tNAME\tROLE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", e.UserID, e.Name, e.Role)
		}
		return tw.Flush()
	})
}

func roleEntry(a domain.RoleAssignment) RoleEntry {
	return RoleEntry{UserID: a.UserID.String(), Name: a.Name, Role: string(a.Role)}
}

// label is the name if known, otherwise the user ID.
func (e RoleEntry) label() string {
	if e.Name != "" {
		return fmt.Sprintf("%s (%s)", e.Name, e.UserID)
	}
	return e.UserID
}
