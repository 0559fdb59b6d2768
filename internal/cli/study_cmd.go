package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/mnemo/internal/cli/formatter"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/study"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newStudyCmd(app *App) *cobra.Command {
	var deck string

	cmd := &cobra.Command{
		Use:   "study",
		Short: "Review cards interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if !app.interactive() {
				return fmt.Errorf("study needs a terminal; use next and answer instead")
			}
			if err := selectDeckFlag(ctx, app, deck); err != nil {
				return err
			}
			_, err := tea.NewProgram(newStudyModel(app), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&deck, "deck", "", "Deck to study (default: current deck)")
	return cmd
}

func newNextCmd(app *App) *cobra.Command {
	var deck string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next card due, with its answer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := selectDeckFlag(ctx, app, deck); err != nil {
				return err
			}
			sc, err := app.Study.Next(ctx)
			if errors.Is(err, study.ErrNoCard) {
				fin, ferr := app.Study.Finished(ctx)
				if ferr != nil {
					return ferr
				}
				fmt.Fprintln(cmd.OutOrStdout(), fin.Message(time.Now()))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStudyCard(sc))
			return nil
		},
	}

	cmd.Flags().StringVar(&deck, "deck", "", "Deck to study (default: current deck)")
	return cmd
}

func newAnswerCmd(app *App) *cobra.Command {
	var took time.Duration

	cmd := &cobra.Command{
		Use:   "answer CARD_ID GRADE",
		Short: "Answer a card: 1/again, 2/hard, 3/good or 4/easy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid id %q", args[0])
			}
			grade, err := domain.ParseGrade(args[1])
			if err != nil {
				return err
			}
			card, err := app.Study.Answer(context.Background(), id, grade, took)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Card %d %s, due %s\n", card.ID, formatter.GradeLabel(grade), describeDue(card, time.Now()))
			return nil
		},
	}

	cmd.Flags().DurationVar(&took, "took", 0, "Time spent on the card, e.g. 8s")
	return cmd
}

// describeDue says when an answered card comes back.
func describeDue(c *domain.Card, now time.Time) string {
	if c.Queue.DueIsTimestamp() {
		return "in " + formatter.FormatInterval(time.Unix(c.Due, 0).Sub(now))
	}
	if c.Queue == domain.QueueDayLearn {
		return "tomorrow"
	}
	return "in " + formatter.FormatInterval(time.Duration(c.Ivl)*24*time.Hour)
}

func newCountsCmd(app *App) *cobra.Command {
	var deck string

	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Show cards due in the current deck and the time they take",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := selectDeckFlag(ctx, app, deck); err != nil {
				return err
			}
			ov, err := app.Overview.Overview(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n",
				formatter.FormatCounts(ov.Counts),
				formatter.Dim("about "+formatter.FormatMinutes(ov.ETAMinutes)))
			return nil
		},
	}

	cmd.Flags().StringVar(&deck, "deck", "", "Deck to count (default: current deck)")
	return cmd
}

func newOverviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show every deck with its due cards",
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := app.Overview.Overview(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOverview(ov, app.Study.CurrentDeckID()))
			return nil
		},
	}
}

func newLimitsCmd(app *App) *cobra.Command {
	var newDelta, revDelta int
	var deck string

	cmd := &cobra.Command{
		Use:   "extend-limits",
		Short: "Raise today's new and review limits of the current deck",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if newDelta == 0 && revDelta == 0 {
				return fmt.Errorf("give --new or --rev")
			}
			if err := selectDeckFlag(ctx, app, deck); err != nil {
				return err
			}
			if err := app.Study.ExtendLimits(ctx, newDelta, revDelta); err != nil {
				return err
			}
			counts, err := app.Study.Counts(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Now due  %s\n", formatter.FormatCounts(counts))
			return nil
		},
	}

	cmd.Flags().IntVar(&newDelta, "new", 0, "Extra new cards for today")
	cmd.Flags().IntVar(&revDelta, "rev", 0, "Extra reviews for today")
	cmd.Flags().StringVar(&deck, "deck", "", "Deck to extend (default: current deck)")
	return cmd
}
