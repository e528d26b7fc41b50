package cmdutils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/eventhub/eventhub-client/internal/auth"
)

// OutputFlag is the persistent root flag selecting the output format.
const OutputFlag = "output"

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Table is the tabular rendering of a value.
type Table struct {
	Header []string
	Rows   [][]string
}

func OutputFormat(cmd *cobra.Command) (Format, error) {
	v, _ := cmd.Flags().GetString(OutputFlag)
	if v == "" {
		return FormatTable, nil
	}

	switch f := Format(v); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, v)
	}
}

// Print writes v to the command's output in the selected format. table is
// only built for the table format.
func Print(cmd *cobra.Command, v any, table func() Table) error {
	format, err := OutputFormat(cmd)
	if err != nil {
		return err
	}

	return Write(cmd.OutOrStdout(), format, v, table)
}

func Write(w io.Writer, format Format, v any, table func() Table) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		b, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		return writeTable(w, table())
	}
}

func writeTable(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.Header) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Header, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// Navigator prints the next step after a flow asks to move on.
type Navigator struct {
	W io.Writer
}

var _ auth.Navigator = Navigator{}

func (n Navigator) Navigate(_ context.Context, route auth.Route) {
	switch route {
	case auth.RouteLogin:
		fmt.Fprintln(n.W, "Next: run 'eventhub login' to sign in.")
	case auth.RouteHome:
		fmt.Fprintln(n.W, "Next: run 'eventhub events list' to browse events.")
	}
}
