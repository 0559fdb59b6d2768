package formatter

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/service"
	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy = bluemonday.StrictPolicy()
	lineBreak  = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li)>`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// PlainText turns a stored note field into terminal text: line-level tags
// become newlines, all other markup is dropped and entities are decoded.
func PlainText(field string) string {
	s := lineBreak.ReplaceAllString(field, "\n")
	s = html.UnescapeString(textPolicy.Sanitize(s))
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Question is the side of the note a card asks.
func Question(sc *service.StudyCard) string {
	if sc.Reversed() {
		return PlainText(sc.Note.Back())
	}
	return PlainText(sc.Note.Front())
}

// AnswerText is the side of the note a card reveals.
func AnswerText(sc *service.StudyCard) string {
	if sc.Reversed() {
		return PlainText(sc.Note.Front())
	}
	return PlainText(sc.Note.Back())
}

// GradeLabel is the button caption: "Again", "Hard", "Good", "Easy".
func GradeLabel(g domain.Grade) string {
	name := g.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// FormatGradeButtons renders the answer buttons with the interval each
// would schedule, e.g. "1 Again 1m   2 Hard 6m   3 Good 10m   4 Easy 4d".
func FormatGradeButtons(sc *service.StudyCard) string {
	parts := make([]string, 0, len(sc.Grades))
	for _, g := range sc.Grades {
		label := fmt.Sprintf("%d %s", int(g), GradeLabel(g))
		ivl := ""
		if d, ok := sc.Intervals[g]; ok {
			ivl = " " + Dim(FormatInterval(d))
		}
		parts = append(parts, GradeStyle(g).Render(label)+ivl)
	}
	return strings.Join(parts, "   ")
}

// FormatStudyCard renders a card for the non-interactive next command:
// counts, question, answer and the buttons.
func FormatStudyCard(sc *service.StudyCard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n\n", FormatCounts(sc.Counts, sc.Card.Queue), Dim(fmt.Sprintf("card %d", sc.Card.ID)))
	b.WriteString(Bold(Question(sc)) + "\n")
	b.WriteString(Dim(strings.Repeat("─", 20)) + "\n")
	b.WriteString(AnswerText(sc) + "\n\n")
	b.WriteString(FormatGradeButtons(sc) + "\n")
	return b.String()
}

// FormatIntervals lists what each button would schedule for a card.
func FormatIntervals(ivls map[domain.Grade]time.Duration) string {
	rows := make([][]string, 0, len(ivls))
	for _, g := range []domain.Grade{domain.GradeAgain, domain.GradeHard, domain.GradeGood, domain.GradeEasy} {
		if ivl, ok := ivls[g]; ok {
			rows = append(rows, []string{GradeStyle(g).Render(GradeLabel(g)), FormatInterval(ivl)})
		}
	}
	return Table{Headers: []string{"BUTTON", "NEXT"}, Rows: rows, Numeric: []int{1}}.Render()
}

// FormatOverview renders the deck list screen: the tree, today's totals and
// an estimate of the remaining study time.
func FormatOverview(ov *service.Overview, currentID int64) string {
	var b strings.Builder
	b.WriteString(FormatDeckTree(ov.Tree, currentID))
	b.WriteString("\n")

	remaining := ov.Counts.Total()
	fmt.Fprintf(&b, "Today     %s\n", RenderProgress(ov.ReviewedToday, ov.ReviewedToday+remaining, 20))
	fmt.Fprintf(&b, "Due now   %s\n", FormatCounts(ov.Counts))
	if remaining > 0 {
		fmt.Fprintf(&b, "Estimate  %s\n", FormatMinutes(max(ov.ETAMinutes, 1)))
	}

	if len(ov.Stats) > 0 {
		rows := make([][]string, 0, len(ov.Stats))
		for _, st := range ov.Stats {
			rows = append(rows, []string{
				st.Type.String(),
				fmt.Sprintf("%d", st.Count),
				fmt.Sprintf("%.1fs", st.AvgTimeMs/1000),
				fmt.Sprintf("%.0f%%", st.PassRate*100),
			})
		}
		b.WriteString("\n")
		b.WriteString(Table{Headers: []string{"TYPE", "REPS", "AVG", "PASS"}, Rows: rows, Numeric: []int{1, 2, 3}}.Render())
	}
	return b.String()
}
