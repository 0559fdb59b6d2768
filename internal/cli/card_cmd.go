package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/mnemo/internal/cli/formatter"
	"github.com/alexanderramin/mnemo/internal/service"
	"github.com/spf13/cobra"
)

func newCardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Suspend, bury and reschedule cards",
	}

	cmd.AddCommand(
		newCardBatchCmd(app, "suspend", "Suspend cards", "Suspended", service.StudyService.Suspend),
		newCardBatchCmd(app, "unsuspend", "Restore suspended cards", "Unsuspended", service.StudyService.Unsuspend),
		newCardBatchCmd(app, "bury", "Hide cards until the next day", "Buried", service.StudyService.Bury),
		newCardForgetCmd(app),
		newCardBuryNoteCmd(app),
		newCardReschedCmd(app),
		newCardPreviewCmd(app),
	)

	return cmd
}

// newCardBatchCmd builds a command applying op to the card ids given as
// arguments. op is a method expression so the service is looked up only
// when the command runs.
func newCardBatchCmd(app *App, use, short, verb string, op func(service.StudyService, context.Context, ...int64) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " CARD_ID...",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			n, err := op(app.Study, context.Background(), ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d cards\n", verb, n)
			return nil
		},
	}
}

func newCardForgetCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "forget CARD_ID...",
		Short: "Move cards to the end of the new queue",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ok, err := confirm(ctx, app, yes, fmt.Sprintf("Forget %d cards? Their intervals are lost.", len(ids)), "Forget")
			if err != nil || !ok {
				return err
			}
			n, err := app.Study.Forget(ctx, ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reset %d cards\n", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newCardBuryNoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bury-note NOTE_ID",
		Short: "Bury every card of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			n, err := app.Study.BuryNote(context.Background(), ids[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Buried %d cards\n", n)
			return nil
		},
	}
}

func newCardReschedCmd(app *App) *cobra.Command {
	var minDays, maxDays int

	cmd := &cobra.Command{
		Use:   "resched CARD_ID...",
		Short: "Make cards reviews due in a random number of days",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			n, err := app.Study.Resched(context.Background(), minDays, maxDays, ids...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rescheduled %d cards\n", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&minDays, "min", 0, "Earliest due day, relative to today")
	cmd.Flags().IntVar(&maxDays, "max", 0, "Latest due day, relative to today")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

func newCardPreviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview CARD_ID",
		Short: "Show what each answer button would schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			ivls, err := app.Study.Preview(context.Background(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatIntervals(ivls))
			return nil
		},
	}
}
