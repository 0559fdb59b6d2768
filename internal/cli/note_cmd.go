package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/mnemo/internal/service"
	"github.com/spf13/cobra"
)

func newNoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Add notes",
	}

	cmd.AddCommand(newNoteAddCmd(app))
	return cmd
}

// noteInput backs both the flags and the interactive form.
type noteInput struct {
	deckID  int64
	front   string
	back    string
	tags    string
	reverse bool
}

func newNoteAddCmd(app *App) *cobra.Command {
	var in noteInput
	var deck string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note; prompts for the fields when --front is missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, err := resolveDeck(ctx, app, deck)
			if err != nil {
				return err
			}
			in.deckID = id

			if strings.TrimSpace(in.front) == "" {
				if !app.interactive() {
					return fmt.Errorf("--front is required")
				}
				decks, err := app.Decks.List(ctx)
				if err != nil {
					return err
				}
				if err := runForm(ctx, noteForm(decks, &in)); err != nil {
					return err
				}
			}

			note, cards, err := app.Notes.Add(ctx, service.NewNote{
				DeckID:  in.deckID,
				Front:   in.front,
				Back:    in.back,
				Tags:    strings.Fields(in.tags),
				Reverse: in.reverse,
			})
			if err != nil {
				return err
			}
			ids := make([]string, len(cards))
			for i, c := range cards {
				ids[i] = fmt.Sprintf("%d", c.ID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added note %d with cards %s\n", note.ID, strings.Join(ids, ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&deck, "deck", "", "Deck name or id (default: current deck)")
	cmd.Flags().StringVar(&in.front, "front", "", "Front of the note; basic HTML is kept")
	cmd.Flags().StringVar(&in.back, "back", "", "Back of the note")
	cmd.Flags().StringVar(&in.tags, "tags", "", "Space-separated tags")
	cmd.Flags().BoolVar(&in.reverse, "reverse", false, "Also add a card asking back to front")
	return cmd
}
