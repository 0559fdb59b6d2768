package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title  string
	Level  int
	IsLast bool
	// Current marks the selected deck with an amber ▶.
	Current bool
	// Columns are right-aligned cells rendered after the title.
	Columns []string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
)

// RenderTree renders TreeItems as an indented tree using box-drawing
// connectors, with each item's columns aligned into a grid on the right.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	titles := make([]string, len(items))
	titleWidth := 0
	var colWidths []int

	// Pass 1: build each title and measure visible widths.
	for idx, item := range items {
		var prefix string
		if item.Level > 0 {
			prefix = strings.Repeat(treePipe, item.Level-1)
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		if item.Current {
			title = StyleYellowBold.Render("▶ " + title)
		}
		titles[idx] = Dim(prefix) + title
		titleWidth = max(titleWidth, lipgloss.Width(titles[idx]))

		for i, col := range item.Columns {
			if i >= len(colWidths) {
				colWidths = append(colWidths, 0)
			}
			colWidths[i] = max(colWidths[i], lipgloss.Width(col))
		}
	}

	// Pass 2: pad titles and right-align columns.
	var b strings.Builder
	for idx, item := range items {
		b.WriteString(titles[idx])
		if len(item.Columns) > 0 {
			b.WriteString(strings.Repeat(" ", titleWidth-lipgloss.Width(titles[idx])))
			for i, col := range item.Columns {
				b.WriteString(strings.Repeat(" ", 2+colWidths[i]-lipgloss.Width(col)))
				b.WriteString(col)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
