package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/mnemo/internal/cli/formatter"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/service"
	"github.com/alexanderramin/mnemo/internal/study"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ── keys ─────────────────────────────────────────────────────────────────────

type studyKeyMap struct {
	Show    key.Binding
	Again   key.Binding
	Hard    key.Binding
	Good    key.Binding
	Easy    key.Binding
	Suspend key.Binding
	Bury    key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func newStudyKeyMap() studyKeyMap {
	return studyKeyMap{
		Show:    key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "show answer")),
		Again:   key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "again")),
		Hard:    key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "hard")),
		Good:    key.NewBinding(key.WithKeys("3", " ", "enter"), key.WithHelp("3/space", "good")),
		Easy:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "easy")),
		Suspend: key.NewBinding(key.WithKeys("!"), key.WithHelp("!", "suspend")),
		Bury:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "bury")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// studyHelp adapts the key map to the help bubble for the current side of
// the card.
type studyHelp struct {
	keys     studyKeyMap
	answered bool
}

func (h studyHelp) ShortHelp() []key.Binding {
	if h.answered {
		return []key.Binding{h.keys.Again, h.keys.Good, h.keys.Help, h.keys.Quit}
	}
	return []key.Binding{h.keys.Show, h.keys.Help, h.keys.Quit}
}

func (h studyHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.keys.Show, h.keys.Again, h.keys.Hard, h.keys.Good, h.keys.Easy},
		{h.keys.Suspend, h.keys.Bury, h.keys.Help, h.keys.Quit},
	}
}

// ── messages ─────────────────────────────────────────────────────────────────

// cardLoadedMsg carries the next card, or the end-of-session text once
// the deck is done.
type cardLoadedMsg struct {
	card     *service.StudyCard
	finished string
	err      error
}

// ── model ────────────────────────────────────────────────────────────────────

// studyModel is the review screen: question, then answer and buttons.
type studyModel struct {
	app  *App
	keys studyKeyMap
	help help.Model
	now  func() time.Time

	card      *service.StudyCard
	answered  bool
	shownAt   time.Time
	finished  string
	status    string
	err       error
	reviewed  int
	width     int
	quitting  bool
	loading   bool
}

func newStudyModel(app *App) studyModel {
	return studyModel{
		app:     app,
		keys:    newStudyKeyMap(),
		help:    help.New(),
		now:     time.Now,
		loading: true,
	}
}

func (m studyModel) Init() tea.Cmd {
	return m.loadNext()
}

func (m studyModel) loadNext() tea.Cmd {
	app := m.app
	now := m.now
	return func() tea.Msg {
		ctx := context.Background()
		sc, err := app.Study.Next(ctx)
		if errors.Is(err, study.ErrNoCard) {
			fin, err := app.Study.Finished(ctx)
			if err != nil {
				return cardLoadedMsg{err: err}
			}
			return cardLoadedMsg{finished: fin.Message(now())}
		}
		return cardLoadedMsg{card: sc, err: err}
	}
}

func (m studyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case cardLoadedMsg:
		m.loading = false
		m.answered = false
		m.card, m.finished, m.err = msg.card, msg.finished, msg.err
		m.shownAt = m.now()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m studyModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	if m.card == nil || m.loading {
		return m, nil
	}

	if !m.answered {
		switch {
		case key.Matches(msg, m.keys.Show):
			m.answered = true
		case key.Matches(msg, m.keys.Suspend):
			return m.act("Suspended", service.StudyService.Suspend)
		case key.Matches(msg, m.keys.Bury):
			return m.act("Buried", service.StudyService.Bury)
		}
		return m, nil
	}

	for g, b := range map[domain.Grade]key.Binding{
		domain.GradeAgain: m.keys.Again,
		domain.GradeHard:  m.keys.Hard,
		domain.GradeGood:  m.keys.Good,
		domain.GradeEasy:  m.keys.Easy,
	} {
		if key.Matches(msg, b) {
			return m.grade(g)
		}
	}
	switch {
	case key.Matches(msg, m.keys.Suspend):
		return m.act("Suspended", service.StudyService.Suspend)
	case key.Matches(msg, m.keys.Bury):
		return m.act("Buried", service.StudyService.Bury)
	}
	return m, nil
}

// grade answers the shown card and loads the next one. Grades the card
// does not offer are ignored.
func (m studyModel) grade(g domain.Grade) (tea.Model, tea.Cmd) {
	if !slices.Contains(m.card.Grades, g) {
		return m, nil
	}
	took := m.now().Sub(m.shownAt)
	if _, err := m.app.Study.Answer(context.Background(), m.card.Card.ID, g, took); err != nil {
		m.err = err
		return m, nil
	}
	m.reviewed++
	m.status = ""
	m.loading = true
	return m, m.loadNext()
}

func (m studyModel) act(verb string, op func(service.StudyService, context.Context, ...int64) (int, error)) (tea.Model, tea.Cmd) {
	if _, err := op(m.app.Study, context.Background(), m.card.Card.ID); err != nil {
		m.err = err
		return m, nil
	}
	m.status = fmt.Sprintf("%s card %d", verb, m.card.Card.ID)
	m.loading = true
	return m, m.loadNext()
}

// ── view ─────────────────────────────────────────────────────────────────────

var cardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(formatter.ColorDim).
	Padding(1, 3)

func (m studyModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	switch {
	case m.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+m.err.Error()) + "\n\n")
	case m.loading:
		b.WriteString(formatter.Dim("Loading…") + "\n")
	case m.card == nil:
		b.WriteString(cardStyle.Render(m.finished) + "\n")
		if m.reviewed > 0 {
			b.WriteString(formatter.Dim(fmt.Sprintf("%d cards studied this session", m.reviewed)) + "\n")
		}
	default:
		b.WriteString(formatter.FormatCounts(m.card.Counts, m.card.Card.Queue) + "\n\n")
		body := formatter.Bold(formatter.Question(m.card))
		if m.answered {
			body += "\n\n" + formatter.Dim(strings.Repeat("─", 24)) + "\n\n" + formatter.AnswerText(m.card)
		}
		b.WriteString(cardStyle.Render(body) + "\n\n")
		if m.answered {
			b.WriteString(formatter.FormatGradeButtons(m.card) + "\n")
		}
	}
	if m.status != "" {
		b.WriteString(formatter.Dim(m.status) + "\n")
	}
	b.WriteString("\n" + m.help.View(studyHelp{keys: m.keys, answered: m.answered}))
	return b.String()
}
