package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/openkcm/common-sdk/pkg/utils"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/eventhub/eventhub-client/cmd/eventhub/account"
	biometriccmd "github.com/eventhub/eventhub-client/cmd/eventhub/biometric"
	"github.com/eventhub/eventhub-client/cmd/eventhub/events"
	"github.com/eventhub/eventhub-client/cmd/eventhub/smoke"
	"github.com/eventhub/eventhub-client/internal/cmdutils"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

// BuildInfo will be set by the build system
var BuildInfo = "{}"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "EventHub client version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		value, err := utils.ExtractFromComplexValue(BuildInfo)
		if err != nil {
			return err
		}

		slog.InfoContext(cmd.Context(), value)
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)

		return nil
	},
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "eventhub",
		Short:         "EventHub client",
		Long:          "Command line client for the EventHub backend: sign in, manage events and attendees.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String(cmdutils.ConfigDirFlag, "", "directory searched first for config.yaml")
	cmd.PersistentFlags().StringP(cmdutils.OutputFlag, "o", string(cmdutils.FormatTable), "output format: table, json or yaml")

	cmd.AddCommand(versionCmd)
	cmd.AddCommand(account.Cmds(BuildInfo)...)
	cmd.AddCommand(
		biometriccmd.Cmd(BuildInfo),
		events.Cmd(BuildInfo),
		smoke.Cmd(BuildInfo),
	)

	return cmd
}

func execute() error {
	ctx, cancelOnSignal := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancelOnSignal()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		slogctx.Debug(ctx, "Command failed", "error", err)
		_, _ = fmt.Fprintln(os.Stderr, "Error:", serviceerr.Message(err))

		return err
	}

	return nil
}

func main() {
	if err := execute(); err != nil {
		os.Exit(1)
	}
}
