package formatter

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// FormatInterval renders a scheduling interval the way answer buttons show
// it: "<1m", "10m", "3h", "4d", "2.5mo", "1.2y".
func FormatInterval(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(math.Round(d.Minutes())))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(math.Round(d.Hours())))
	}
	days := d.Hours() / 24
	switch {
	case days < 30:
		return fmt.Sprintf("%dd", int(math.Round(days)))
	case days < 365:
		return trimZero(fmt.Sprintf("%.1fmo", days/30))
	}
	return trimZero(fmt.Sprintf("%.1fy", days/365))
}

func trimZero(s string) string {
	return strings.Replace(s, ".0", "", 1)
}

// FormatCounts renders the new+learning+review triple in study colors.
// The component a highlighted queue counts under is underlined.
func FormatCounts(c domain.Counts, highlight ...domain.QueueType) string {
	part := func(n int, style lipgloss.Style, queues ...domain.QueueType) string {
		for _, q := range queues {
			if slices.Contains(highlight, q) {
				style = style.Underline(true).Bold(true)
			}
		}
		return style.Render(fmt.Sprintf("%d", n))
	}
	return part(c.New, StyleNew, domain.QueueNew) + Dim(" + ") +
		part(c.Learning, StyleLearn, domain.QueueLearning, domain.QueueDayLearn, domain.QueuePreview) + Dim(" + ") +
		part(c.Review, StyleReview, domain.QueueReview)
}

// FormatMinutes converts raw minutes into human-friendly format.
func FormatMinutes(min int) string {
	if min <= 0 {
		return "0m"
	}
	h := min / 60
	m := min % 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}

// CountCell renders a zero count dimmed so busy decks stand out in tables.
func CountCell(n int, style lipgloss.Style) string {
	if n == 0 {
		return Dim("0")
	}
	return style.Render(fmt.Sprintf("%d", n))
}
