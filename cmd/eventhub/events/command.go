// Package events holds the commands that browse and manage events and their
// attendees.
package events

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/eventhub/eventhub-client/internal/apiclient"
	"github.com/eventhub/eventhub-client/internal/cmdutils"
	"github.com/eventhub/eventhub-client/internal/serviceerr"
)

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Browse and manage events",
	}

	cmd.AddCommand(
		listCmd(buildInfo),
		getCmd(buildInfo),
		createCmd(buildInfo),
		updateCmd(buildInfo),
		deleteCmd(buildInfo),
		attendeesCmd(buildInfo),
		joinCmd(buildInfo),
		leaveCmd(buildInfo),
		attendingCmd(buildInfo),
	)

	return cmd
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, serviceerr.New(serviceerr.CodeValidation, fmt.Sprintf("invalid event id %q", arg))
	}

	return id, nil
}

func printPage(cmd *cobra.Command, page apiclient.Page[apiclient.Event]) error {
	return cmdutils.Print(cmd, page, func() cmdutils.Table {
		t := cmdutils.EventsTable(page.Data)
		if p := page.Pagination; p.TotalPages > 0 {
			t.Rows = append(t.Rows, []string{"", fmt.Sprintf("page %d of %d, %d events", p.Page, p.TotalPages, p.Total)})
		}
		return t
	})
}

func printEvent(cmd *cobra.Command, e apiclient.Event) error {
	return cmdutils.Print(cmd, e, func() cmdutils.Table { return cmdutils.EventTable(e) })
}

func listCmd(buildInfo string) *cobra.Command {
	var opts apiclient.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		page, err := client.API.ListEvents(ctx, opts)
		if err != nil {
			return err
		}

		return printPage(cmd, page)
	})

	cmd.Flags().IntVar(&opts.Page, "page", 0, "page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "events per page")
	cmd.Flags().StringVar(&opts.Search, "search", "", "only events matching the text")

	return cmd
}

func getCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		e, err := client.API.GetEvent(ctx, id)
		if err != nil {
			return err
		}

		return printEvent(cmd, e)
	})

	return cmd
}

func createCmd(buildInfo string) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:     "create",
		Short:   "Create an event",
		Example: "eventhub events create --field name='Go meetup' --field date=2026-11-05 --field location=Berlin",
		Args:    cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		in, err := eventInput(apiclient.EventInput{}, fields)
		if err != nil {
			return err
		}

		e, err := client.API.CreateEvent(ctx, in)
		if err != nil {
			return err
		}

		return printEvent(cmd, e)
	})

	cmd.Flags().StringArrayVar(&fields, "field", nil, "event field as key=value (name, description, date, location)")

	return cmd
}

func updateCmd(buildInfo string) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "update EVENT_ID",
		Short: "Change fields of an event",
		Long:  "Change fields of an event. Fields that are not given keep their current value.",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		current, err := client.API.GetEvent(ctx, id)
		if err != nil {
			return err
		}

		in, err := eventInput(apiclient.EventInput{
			Name:        current.Name,
			Description: current.Description,
			Date:        current.Date,
			Location:    current.Location,
		}, fields)
		if err != nil {
			return err
		}

		e, err := client.API.UpdateEvent(ctx, id, in)
		if err != nil {
			return err
		}

		return printEvent(cmd, e)
	})

	cmd.Flags().StringArrayVar(&fields, "field", nil, "event field as key=value (name, description, date, location)")

	return cmd
}

func eventInput(base apiclient.EventInput, pairs []string) (apiclient.EventInput, error) {
	fields, err := cmdutils.ParseFields(pairs)
	if err != nil {
		return apiclient.EventInput{}, serviceerr.New(serviceerr.CodeValidation, err.Error())
	}
	if err := cmdutils.DecodeFields(fields, &base); err != nil {
		return apiclient.EventInput{}, serviceerr.New(serviceerr.CodeValidation, err.Error())
	}

	return base, nil
}

func deleteCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event you own",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if err := client.API.DeleteEvent(ctx, id); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Event %d deleted.\n", id)
		return nil
	})

	return cmd
}

func attendeesCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attendees EVENT_ID",
		Short: "List the attendees of an event",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		users, err := client.API.ListAttendees(ctx, id)
		if err != nil {
			return err
		}

		return cmdutils.Print(cmd, users, func() cmdutils.Table { return cmdutils.UsersTable(users) })
	})

	return cmd
}

// currentUser is the signed in subject, required by the attendance commands.
func currentUser(client *cmdutils.Client) (int64, error) {
	snap := client.State.Snapshot()
	if !snap.Authenticated() {
		return 0, serviceerr.ErrAuthentication
	}

	return snap.Session.SubjectID, nil
}

func joinCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join EVENT_ID",
		Short: "Attend an event",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		userID, err := currentUser(client)
		if err != nil {
			return err
		}

		if _, err := client.API.AddAttendee(ctx, id, userID); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Joined event %d.\n", id)
		return nil
	})

	return cmd
}

func leaveCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave EVENT_ID",
		Short: "Stop attending an event",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		userID, err := currentUser(client)
		if err != nil {
			return err
		}

		if err := client.API.RemoveAttendee(ctx, id, userID); err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Left event %d.\n", id)
		return nil
	})

	return cmd
}

func attendingCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attending",
		Short: "List the events you attend",
		Args:  cobra.NoArgs,
	}
	cmd.RunE = cmdutils.ClientRunE(buildInfo, func(ctx context.Context, cmd *cobra.Command, client *cmdutils.Client, _ []string) error {
		userID, _ := currentUser(client)

		page, err := client.API.ListAttending(ctx, userID)
		if err != nil {
			return err
		}

		return printPage(cmd, page)
	})

	return cmd
}
