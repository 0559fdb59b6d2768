package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/mnemo/internal/cli/formatter"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// mnemoHuhTheme returns a huh theme matching the formatter palette.
func mnemoHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// confirmForm asks a yes/no question.
func confirmForm(title, affirmative string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(result),
		),
	).WithTheme(mnemoHuhTheme()).WithShowHelp(false)
}

// confirm asks before a destructive command when a terminal is attached.
// It reports true without asking when yes is set or no one can answer.
func confirm(ctx context.Context, app *App, yes bool, title, affirmative string) (bool, error) {
	if yes || !app.interactive() {
		return true, nil
	}
	var ok bool
	if err := runForm(ctx, confirmForm(title, affirmative, &ok)); err != nil {
		return false, err
	}
	return ok, nil
}

// noteForm collects the fields of a new note. Deck options list every
// regular deck.
func noteForm(decks []*domain.Deck, in *noteInput) *huh.Form {
	opts := make([]huh.Option[int64], 0, len(decks))
	for _, d := range decks {
		if !d.Dyn {
			opts = append(opts, huh.NewOption(d.Name, d.ID))
		}
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int64]().
				Title("Deck").
				Options(opts...).
				Value(&in.deckID),
			huh.NewText().
				Title("Front").
				Value(&in.front).
				Validate(requiredField("front")),
			huh.NewText().
				Title("Back").
				Value(&in.back),
			huh.NewInput().
				Title("Tags").
				Placeholder("space separated").
				Value(&in.tags),
			huh.NewConfirm().
				Title("Add reverse card?").
				Value(&in.reverse),
		),
	).WithTheme(mnemoHuhTheme())
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

// runForm runs a form, mapping an aborted form to errAborted.
func runForm(ctx context.Context, f *huh.Form) error {
	if err := f.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errAborted
		}
		return err
	}
	return nil
}

var errAborted = errors.New("aborted")
