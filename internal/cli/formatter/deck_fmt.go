package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/scheduler"
)

// FormatDeckTree renders the due tree with new, learning and review
// columns. The deck with currentID is marked.
func FormatDeckTree(tree *scheduler.DueTree, currentID int64) string {
	if tree == nil || len(tree.Nodes) == 0 {
		return Dim("No decks.") + "\n"
	}

	items := []TreeItem{{
		Title:   Dim("Deck"),
		Columns: []string{StyleHeader.Render("New"), StyleHeader.Render("Learn"), StyleHeader.Render("Due")},
	}}
	isLast := func(n *scheduler.DueNode, idx int) bool {
		siblings := tree.Roots
		if n.Parent >= 0 {
			siblings = tree.Nodes[n.Parent].Children
		}
		return len(siblings) > 0 && siblings[len(siblings)-1] == idx
	}
	for _, root := range tree.Roots {
		var visit func(idx int)
		visit = func(idx int) {
			n := &tree.Nodes[idx]
			items = append(items, TreeItem{
				Title:   n.Name,
				Level:   n.Depth,
				IsLast:  isLast(n, idx),
				Current: n.DeckID == currentID,
				Columns: []string{
					CountCell(n.New, StyleNew),
					CountCell(n.Learning, StyleLearn),
					CountCell(n.Review, StyleReview),
				},
			})
			for _, c := range n.Children {
				visit(c)
			}
		}
		visit(root)
	}
	return RenderTree(items)
}

// FormatDeckList renders decks as a table with their ids and kind.
func FormatDeckList(decks []*domain.Deck) string {
	rows := make([][]string, 0, len(decks))
	for _, d := range decks {
		kind := Dim("regular")
		if d.Dyn {
			kind = StylePurple.Render("filtered")
		}
		rows = append(rows, []string{fmt.Sprintf("%d", d.ID), d.Name, kind})
	}
	return Table{Headers: []string{"ID", "NAME", "KIND"}, Rows: rows, Numeric: []int{0}}.Render()
}

// FormatDeckConfig renders an options group the way the deck options
// screen lists it.
func FormatDeckConfig(c *domain.DeckConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", Bold(c.Name), Dim(fmt.Sprintf("(#%d)", c.ID)))

	b.WriteString(Header("New cards") + "\n")
	fmt.Fprintf(&b, "  Steps            %s\n", formatSteps(c.New.Delays))
	fmt.Fprintf(&b, "  Graduating ivl   %dd\n", c.New.Ints[0])
	fmt.Fprintf(&b, "  Easy ivl         %dd\n", c.New.Ints[1])
	fmt.Fprintf(&b, "  Starting ease    %d%%\n", c.New.InitialFactor/10)
	fmt.Fprintf(&b, "  Per day          %d\n", c.New.PerDay)
	fmt.Fprintf(&b, "  Bury siblings    %s\n\n", yesNo(c.New.Bury))

	b.WriteString(Header("Reviews") + "\n")
	fmt.Fprintf(&b, "  Per day          %d\n", c.Rev.PerDay)
	fmt.Fprintf(&b, "  Easy bonus       %.0f%%\n", c.Rev.Ease4*100)
	fmt.Fprintf(&b, "  Interval factor  %.0f%%\n", c.Rev.IvlFct*100)
	fmt.Fprintf(&b, "  Hard factor      %.0f%%\n", c.Rev.HardFactor*100)
	fmt.Fprintf(&b, "  Maximum ivl      %dd\n", c.Rev.MaxIvl)
	fmt.Fprintf(&b, "  Bury siblings    %s\n\n", yesNo(c.Rev.Bury))

	b.WriteString(Header("Lapses") + "\n")
	fmt.Fprintf(&b, "  Steps            %s\n", formatSteps(c.Lapse.Delays))
	fmt.Fprintf(&b, "  New ivl          %.0f%%\n", c.Lapse.Mult*100)
	fmt.Fprintf(&b, "  Minimum ivl      %dd\n", c.Lapse.MinInt)
	fmt.Fprintf(&b, "  Leech threshold  %d\n", c.Lapse.LeechFails)
	action := "tag only"
	if c.Lapse.LeechAction == domain.LeechSuspend {
		action = "suspend card"
	}
	fmt.Fprintf(&b, "  Leech action     %s\n", action)
	return b.String()
}

func formatSteps(delays []float64) string {
	if len(delays) == 0 {
		return Dim("none")
	}
	parts := make([]string, len(delays))
	for i, d := range delays {
		parts[i] = strconv.FormatFloat(d, 'f', -1, 64) + "m"
	}
	return strings.Join(parts, " ")
}

func yesNo(b bool) string {
	if b {
		return StyleGreen.Render("yes")
	}
	return Dim("no")
}
