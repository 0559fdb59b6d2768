package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)

	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
)

// Count colors follow the usual study-screen convention: new is blue,
// learning red, review green.
var (
	StyleNew    = StyleBlue
	StyleLearn  = StyleRed
	StyleReview = StyleGreen
)

// QueueStyle returns the count color a card in queue q is shown with.
func QueueStyle(q domain.QueueType) lipgloss.Style {
	switch q {
	case domain.QueueNew:
		return StyleNew
	case domain.QueueLearning, domain.QueueDayLearn, domain.QueuePreview:
		return StyleLearn
	case domain.QueueReview:
		return StyleReview
	default:
		return StyleDim
	}
}

// GradeStyle colors an answer button.
func GradeStyle(g domain.Grade) lipgloss.Style {
	switch g {
	case domain.GradeAgain:
		return StyleRed
	case domain.GradeHard:
		return StyleYellow
	case domain.GradeGood:
		return StyleGreen
	default:
		return StyleBlue
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
