package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/cli/formatter"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/spf13/cobra"
)

func newDeckCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks",
	}

	cmd.AddCommand(
		newDeckAddCmd(app),
		newDeckListCmd(app),
		newDeckTreeCmd(app),
		newDeckRenameCmd(app),
		newDeckDeleteCmd(app),
		newDeckSelectCmd(app),
		newDeckConfigCmd(app),
		newDeckUnburyCmd(app),
	)

	return cmd
}

func newDeckAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Create a deck; use :: to nest, e.g. Lang::Spanish",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deck, err := app.Decks.Create(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deck %s (%d)\n", deck.Name, deck.ID)
			return nil
		},
	}
}

func newDeckListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks",
		RunE: func(cmd *cobra.Command, args []string) error {
			decks, err := app.Decks.List(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDeckList(decks))
			return nil
		},
	}
}

func newDeckTreeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show decks nested with their due counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := app.Overview.Overview(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDeckTree(ov.Tree, app.Study.CurrentDeckID()))
			return nil
		},
	}
}

func newDeckRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename DECK NEW_NAME",
		Short: "Rename a deck, moving its subdecks along",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDeck(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Decks.Rename(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", args[1])
			return nil
		},
	}
}

func newDeckDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete DECK",
		Short: "Delete an empty deck and its empty subdecks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDeck(ctx, app, args[0])
			if err != nil {
				return err
			}
			ok, err := confirm(ctx, app, yes, fmt.Sprintf("Delete deck %s?", args[0]), "Delete")
			if err != nil || !ok {
				return err
			}
			if err := app.Decks.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newDeckSelectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "select DECK",
		Short: "Make a deck the one studied by default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			if err := selectDeckFlag(ctx, app, args[0]); err != nil {
				return err
			}
			counts, err := app.Study.Counts(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Studying %s  %s\n", args[0], formatter.FormatCounts(counts))
			return nil
		},
	}
}

func newDeckConfigCmd(app *App) *cobra.Command {
	var (
		newPerDay, revPerDay int
		preset               string
	)

	cmd := &cobra.Command{
		Use:   "config DECK",
		Short: "Show or change a deck's options group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDeck(ctx, app, args[0])
			if err != nil {
				return err
			}
			conf, err := app.Decks.Config(ctx, id)
			if err != nil {
				return err
			}

			if preset != "" {
				conf, err = usePreset(ctx, app, id, conf, preset)
				if err != nil {
					return err
				}
			}
			changed := false
			if cmd.Flags().Changed("new-per-day") {
				conf.New.PerDay, changed = newPerDay, true
			}
			if cmd.Flags().Changed("rev-per-day") {
				conf.Rev.PerDay, changed = revPerDay, true
			}
			if changed {
				if err := app.Decks.SaveConfig(ctx, conf); err != nil {
					return err
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDeckConfig(conf))
			return nil
		},
	}

	cmd.Flags().IntVar(&newPerDay, "new-per-day", 0, "New cards per day")
	cmd.Flags().IntVar(&revPerDay, "rev-per-day", 0, "Reviews per day")
	cmd.Flags().StringVar(&preset, "preset", "", "Switch to the named options group, copying the current one if it does not exist")
	return cmd
}

// usePreset assigns the options group called name to the deck, creating it
// as a copy of current when missing.
func usePreset(ctx context.Context, app *App, deckID int64, current *domain.DeckConfig, name string) (*domain.DeckConfig, error) {
	confs, err := app.Decks.ListConfigs(ctx)
	if err != nil {
		return nil, err
	}
	var target *domain.DeckConfig
	for _, c := range confs {
		if c.Name == name {
			target = c
			break
		}
	}
	if target == nil {
		target = current.Clone()
		target.ID = 0
		target.Name = name
		if err := app.Decks.CreateConfig(ctx, target); err != nil {
			return nil, err
		}
	}
	if err := app.Decks.AssignConfig(ctx, deckID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

func newDeckUnburyCmd(app *App) *cobra.Command {
	var scope string
	var all bool

	cmd := &cobra.Command{
		Use:   "unbury [DECK]",
		Short: "Restore buried cards of a deck tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var id int64
			if !all {
				var name string
				if len(args) > 0 {
					name = args[0]
				}
				var err error
				if id, err = resolveDeck(ctx, app, name); err != nil {
					return err
				}
			}
			n, err := app.Study.Unbury(ctx, id, domain.UnburyScope(scope))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unburied %d cards\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", string(domain.UnburyAll), "Which buried cards: all, manual or siblings")
	cmd.Flags().BoolVar(&all, "all", false, "Unbury across the whole collection")
	return cmd
}
