package cmdutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/openkcm/common-sdk/pkg/otlp"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	slogctx "github.com/veqryn/slog-context"

	"github.com/eventhub/eventhub-client/internal/auth"
	"github.com/eventhub/eventhub-client/internal/config"
)

// ConfigDirFlag is the persistent root flag that adds a directory in front
// of the default configuration search path.
const ConfigDirFlag = "config-dir"

// ClientFunc is the body of a command that talks to the backend.
type ClientFunc func(ctx context.Context, cmd *cobra.Command, client *Client, args []string) error

// CobraCommand builds a command whose RunE loads the configuration, wires a
// Client and hands it to fn. nav receives the flows' navigation requests.
func CobraCommand(use, short, long, buildInfo string, nav auth.Navigator, fn ClientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunE(cmd, args, buildInfo, nav, fn)
		},
	}
}

// ClientRunE adapts fn into a RunE that prints navigation hints to the
// command's stderr.
func ClientRunE(buildInfo string, fn ClientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return RunE(cmd, args, buildInfo, Navigator{W: cmd.ErrOrStderr()}, fn)
	}
}

// RunE is the body of CobraCommand.
func RunE(cmd *cobra.Command, args []string, buildInfo string, nav auth.Navigator, fn ClientFunc) error {
	dir, _ := cmd.Flags().GetString(ConfigDirFlag)

	cfg, err := LoadConfig(buildInfo, dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	return Run(cmd.Context(), cfg, nav, func(ctx context.Context, client *Client) error {
		return fn(ctx, cmd, client, args)
	})
}

// Run initialises logging and telemetry, wires the client stack, restores
// the persisted session and runs fn.
func Run(ctx context.Context, cfg *config.Config, nav auth.Navigator, fn func(context.Context, *Client) error) error {
	// LoggerConfig
	err := logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}
	slogctx.Debug(ctx, "Starting the client", slog.String("profile", string(cfg.Profile)))

	// OpenTelemetry
	err = otlp.Init(ctx, &cfg.Application, &cfg.Telemetry, &cfg.Logger)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to load the telemetry")
	}

	client, err := NewClient(ctx, cfg, nav)
	if err != nil {
		return oops.In("main").Wrapf(err, "Failed to set up the client")
	}
	defer client.Close()

	client.State.Restore(ctx)

	return fn(ctx, client)
}

// LoadConfig reads config.yaml from dir, if given, then from the default
// locations, and resolves the client profile.
func LoadConfig(buildInfo, dir string) (*config.Config, error) {
	defaultValues := map[string]any{}
	cfg := &config.Config{}

	paths := []string{"/etc/eventhub", "$HOME/.eventhub", "."}
	if dir != "" {
		paths = append([]string{dir}, paths...)
	}

	err := commoncfg.LoadConfig(cfg, defaultValues, paths...)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	// Update Version
	err = commoncfg.UpdateConfigVersion(
		&cfg.BaseConfig,
		buildInfo,
	)
	if err != nil {
		return nil, fmt.Errorf("updating the version configuration: %w", err)
	}

	err = cfg.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolving the client profile: %w", err)
	}

	return cfg, nil
}
