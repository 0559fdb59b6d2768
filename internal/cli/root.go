package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/alexanderramin/mnemo/internal/config"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Decks    service.DeckService
	Notes    service.NoteService
	Study    service.StudyService
	Overview service.OverviewService

	// Setup wires the services once flags are parsed. Tests fill the
	// services directly and leave it nil.
	Setup func(cmd *cobra.Command) error
	// IsInteractive reports whether stdin is a terminal. Prompts and the
	// study screen are only offered when it returns true.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "mnemo" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "mnemo",
		Short:         "Spaced-repetition flashcards in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Setup == nil {
				return nil
			}
			return app.Setup(cmd)
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newDeckCmd(app),
		newFilteredCmd(app),
		newNoteCmd(app),
		newCardCmd(app),
		newStudyCmd(app),
		newNextCmd(app),
		newAnswerCmd(app),
		newCountsCmd(app),
		newOverviewCmd(app),
		newLimitsCmd(app),
	)

	return root
}

// resolveDeck accepts a deck name or a numeric id. An empty value means
// the current deck.
func resolveDeck(ctx context.Context, app *App, value string) (int64, error) {
	if value == "" {
		return app.Study.CurrentDeckID(), nil
	}
	deck, err := app.Decks.GetByName(ctx, value)
	if err == nil {
		return deck.ID, nil
	}
	if id, perr := strconv.ParseInt(value, 10, 64); perr == nil && id > 0 && errors.Is(err, repository.ErrNotFound) {
		return id, nil
	}
	return 0, fmt.Errorf("deck %q: %w", value, err)
}

// selectDeckFlag switches the session to the --deck value when given.
func selectDeckFlag(ctx context.Context, app *App, value string) error {
	if value == "" {
		return nil
	}
	id, err := resolveDeck(ctx, app, value)
	if err != nil {
		return err
	}
	return app.Study.SelectDeck(ctx, id)
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q", a)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
