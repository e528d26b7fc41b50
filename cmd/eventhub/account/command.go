// Package account holds the commands that sign in, register and inspect the
// current session.
package account

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eventhub/eventhub-client/internal/auth"
	"github.com/eventhub/eventhub-client/internal/cmdutils"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

var errNotSignedIn = serviceerr.New(serviceerr.CodeAuthentication, "Not signed in. Run 'eventhub login' first.")

func Cmds(buildInfo string) []*cobra.Command {
	return []*cobra.Command{
		loginCmd(buildInfo),
		registerCmd(buildInfo),
		logoutCmd(buildInfo),
		statusCmd(buildInfo),
		whoamiCmd(buildInfo),
	}
}

func printSession(cmd *cobra.Command, client *cmdutils.Client) error {
	view := cmdutils.NewSessionView(client.State.Snapshot())
	return cmdutils.Print(cmd, view, view.Table)
}

func loginCmd(buildInfo string) *cobra.Command {
	var email, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		if passwordStdin {
			lines, err := cmdutils.ReadLines(cmd.InOrStdin(), 1)
			if err != nil {
				return err
			}
			password = lines[0]
		}

		if _, err := client.Flows.Login(ctx, email, password); err != nil {
			return err
		}

		return printSession(cmd, client)
	})

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func registerCmd(buildInfo string) *cobra.Command {
	var in auth.RegisterInput
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long:  "Create an account. Depending on the client profile the new account is signed in right away.",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		if passwordStdin {
			lines, err := cmdutils.ReadLines(cmd.InOrStdin(), 2)
			if err != nil {
				return err
			}
			in.Password, in.Confirm = lines[0], lines[1]
		}

		snap, err := client.Flows.Register(ctx, in)
		if err != nil {
			return err
		}
		if !snap.Authenticated() {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Account created.")
			return nil
		}

		return printSession(cmd, client)
	})

	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.Confirm, "confirm", "", "password confirmation")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password and its confirmation from two lines of stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")
	cmd.MarkFlagsMutuallyExclusive("confirm", "password-stdin")

	return cmd
}

func logoutCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		client.Flows.Logout(ctx)
		return printSession(cmd, client)
	})

	return cmd
}

func statusCmd(buildInfo string) *cobra.Command {
	cmd := cmdutils.CobraCommand("status", "Show the stored session",
		"Show the session restored from the credential store. Nothing is sent to the backend.",
		buildInfo, cmdutils.Navigator{W: os.Stderr},
		func(_ context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
			return printSession(cmd, client)
		})
	cmd.Args = cobra.NoArgs

	return cmd
}

func whoamiCmd(buildInfo string) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed in user",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		snap := client.State.Snapshot()
		if !snap.Authenticated() {
			return errNotSignedIn
		}
		if !remote {
			return printSession(cmd, client)
		}

		user, err := client.API.Me(ctx)
		if err != nil {
			return err
		}

		return cmdutils.Print(cmd, user, func() cmdutils.Table { return cmdutils.UserTable(user) })
	})

	cmd.Flags().BoolVar(&remote, "remote", false, "ask the backend instead of the stored session")

	return cmd
}
