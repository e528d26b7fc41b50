// Package smoke checks that the backend answers the event listing.
package smoke

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eventhub/eventhub-client/internal/apiclient"
	"github.com/eventhub/eventhub-client/internal/cmdutils"
)

type result struct {
	BaseURL  string        `json:"base_url"`
	Events   int           `json:"events"`
	Duration time.Duration `json:"duration"`
}

func Cmd(buildInfo string) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Check that the backend serves the event listing",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		return Check(ctx, cmd, client.API, client.Config.API.BaseURL, timeout)
	})

	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "time allowed for the backend to answer")

	return cmd
}

// Lister is the part of the API client the check needs.
type Lister interface {
	ListEvents(ctx context.Context, opts apiclient.ListOptions) (apiclient.Page[apiclient.Event], error)
}

// Check lists events once within timeout and prints the outcome.
func Check(ctx context.Context, cmd *cobra.Command, api Lister, baseURL string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	page, err := api.ListEvents(ctx, apiclient.ListOptions{})
	if err != nil {
		return fmt.Errorf("smoke test failed: %w", err)
	}

	res := result{
		BaseURL:  baseURL,
		Events:   len(page.Data),
		Duration: time.Since(start).Round(time.Millisecond),
	}

	return cmdutils.Print(cmd, res, func() cmdutils.Table {
		return cmdutils.Table{Rows: [][]string{
			{"Backend", res.BaseURL},
			{"Events", fmt.Sprint(res.Events)},
			{"Duration", res.Duration.String()},
			{"Result", "OK"},
		}}
	})
}
