// Package biometric holds the commands that manage biometric login.
package biometric

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eventhub/eventhub-client/internal/cmdutils"
)

type statusView struct {
	Supported bool   `json:"supported"`
	Type      string `json:"type"`
	Enabled   bool   `json:"enabled"`
}

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "biometric",
		Short: "Manage biometric login",
	}

	cmd.AddCommand(
		enableCmd(buildInfo),
		disableCmd(buildInfo),
		loginCmd(buildInfo),
		statusCmd(buildInfo),
	)

	return cmd
}

func enableCmd(buildInfo string) *cobra.Command {
	var email, password string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "enable",
		Short: "Store the credentials for biometric login after a successful verification",
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
		if email == "" {
			email = client.State.Snapshot().Session.Email
		}

		if err := client.Flows.EnableBiometric(ctx, email, password); err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Biometric login enabled.")
		return nil
	})

	cmd.Flags().StringVar(&email, "email", "", "account email, defaults to the signed in user")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.MarkFlagsMutuallyExclusive("password", "password-stdin")

	return cmd
}

func disableCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disable",
		Short: "Forget the credentials stored for biometric login",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		client.Flows.DisableBiometric(ctx)

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Biometric login disabled.")
		return nil
	})

	return cmd
}

func loginCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with the stored credentials after a biometric verification",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		snap, err := client.Flows.AuthenticateWithBiometric(ctx)
		if err != nil {
			return err
		}

		view := cmdutils.NewSessionView(snap)
		return cmdutils.Print(cmd, view, view.Table)
	})

	return cmd
}

func statusCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether biometric login is available and enabled",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		view := statusView{
			Supported: client.Gate.IsSupported(ctx),
			Type:      string(client.Gate.Type(ctx)),
			Enabled:   client.Store.HasCredential(ctx),
		}

		return cmdutils.Print(cmd, view, func() cmdutils.Table {
			return cmdutils.Table{Rows: [][]string{
				{"Supported", fmt.Sprint(view.Supported)},
				{"Type", view.Type},
				{"Enabled", fmt.Sprint(view.Enabled)},
			}}
		})
	})

	return cmd
}
