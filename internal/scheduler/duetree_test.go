package scheduler

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func langRows() []DeckCountRow {
	return []DeckCountRow{
		{Name: "Lang::Spanish", DeckID: 3, New: 3, Learning: 0, Review: 9, NewLimit: 20, ReviewLimit: 100},
		{Name: "Lang", DeckID: 1, New: 5, Learning: 1, Review: 10, NewLimit: 8, ReviewLimit: 12},
		{Name: "Lang::French", DeckID: 2, New: 6, Learning: 2, Review: 7, NewLimit: 4, ReviewLimit: 100},
	}
}

func TestBuildDueTree_Shape(t *testing.T) {
	tree := BuildDueTree(langRows(), TreeOptions{})

	require.Len(t, tree.Roots, 1)
	root := tree.Nodes[tree.Roots[0]]
	assert.Equal(t, "Lang", root.Name)
	require.Len(t, root.Children, 2)
	assert.Equal(t, "French", tree.Nodes[root.Children[0]].Name)
	assert.Equal(t, "Lang::French", tree.Nodes[root.Children[0]].FullName)
	assert.Equal(t, "Spanish", tree.Nodes[root.Children[1]].Name)
	assert.Equal(t, 1, tree.Nodes[root.Children[1]].Depth)

	var order []string
	tree.Walk(func(n *DueNode) { order = append(order, n.FullName) })
	assert.Equal(t, []string{"Lang", "Lang::French", "Lang::Spanish"}, order)
}

func TestBuildDueTree_RollupThenClamp(t *testing.T) {
	tree := BuildDueTree(langRows(), TreeOptions{})

	french, ok := tree.Find("Lang::French")
	require.True(t, ok)
	assert.Equal(t, 4, french.New, "child clamped to its own allowance")

	lang, ok := tree.Find("lang")
	require.True(t, ok)
	assert.Equal(t, 8, lang.New, "5+4+3 clamped to the parent's 8")
	assert.Equal(t, 3, lang.Learning, "learning always rolls up")
	assert.Equal(t, 10, lang.Review, "review not rolled up without RollUpReview")
}

func TestBuildDueTree_RollUpReview(t *testing.T) {
	tree := BuildDueTree(langRows(), TreeOptions{RollUpReview: true})
	lang, _ := tree.Find("Lang")
	assert.Equal(t, 12, lang.Review, "10+7+9 clamped to 12")
	assert.Equal(t, domain.Counts{New: 8, Learning: 3, Review: 12}, tree.Total())
}

func TestBuildDueTree_ExhaustedChildDoesNotZeroParent(t *testing.T) {
	rows := []DeckCountRow{
		{Name: "P", DeckID: 1, New: 3, NewLimit: 10, ReviewLimit: 10},
		{Name: "P::C", DeckID: 2, New: 5, NewLimit: 0, ReviewLimit: 10},
	}
	tree := BuildDueTree(rows, TreeOptions{})
	p, _ := tree.Find("P")
	c, _ := tree.Find("P::C")
	assert.Equal(t, 0, c.New)
	assert.Equal(t, 3, p.New)
}

func TestBuildDueTree_ParentNeverExceedsAllowance(t *testing.T) {
	rows := []DeckCountRow{
		{Name: "P", DeckID: 1, New: 0, NewLimit: 5, ReviewLimit: 5},
		{Name: "P::A", DeckID: 2, New: 9, NewLimit: 20, ReviewLimit: 20},
		{Name: "P::B", DeckID: 3, New: 9, NewLimit: 20, ReviewLimit: 20},
		{Name: "P::B::X", DeckID: 4, New: 9, NewLimit: 20, ReviewLimit: 20},
	}
	tree := BuildDueTree(rows, TreeOptions{RollUpReview: true})
	for _, n := range tree.Nodes {
		var limit int
		for _, r := range rows {
			if r.DeckID == n.DeckID {
				limit = r.NewLimit
			}
		}
		assert.LessOrEqual(t, n.New, limit, n.FullName)
	}
	b, _ := tree.Find("P::B")
	assert.Equal(t, 18, b.New)
}

func TestBuildDueTree_UnlimitedRows(t *testing.T) {
	rows := []DeckCountRow{
		{Name: "Filtered", DeckID: 7, New: 500, Review: 900, NewLimit: Unlimited, ReviewLimit: Unlimited},
	}
	tree := BuildDueTree(rows, TreeOptions{})
	f, _ := tree.Find("Filtered")
	assert.Equal(t, 500, f.New)
	assert.Equal(t, 900, f.Review)
}

func TestBuildDueTree_SkipsMalformedRows(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	rows := []DeckCountRow{
		{Name: "Good", DeckID: 1, New: 1, NewLimit: 10, ReviewLimit: 10},
		{Name: "good", DeckID: 2, New: 50, NewLimit: 100, ReviewLimit: 100},
		{Name: "Good::::Bad", DeckID: 3, New: 50, NewLimit: 100, ReviewLimit: 100},
		{Name: "Orphan::Child", DeckID: 4, New: 50, NewLimit: 100, ReviewLimit: 100},
		{Name: "Orphan::Child::Leaf", DeckID: 5, New: 50, NewLimit: 100, ReviewLimit: 100},
	}
	tree := BuildDueTree(rows, TreeOptions{Logger: logger})

	require.Len(t, tree.Nodes, 1)
	assert.Equal(t, int64(1), tree.Nodes[0].DeckID)
	assert.Equal(t, 1, tree.Nodes[0].New)

	out := buf.String()
	assert.Contains(t, out, "skipping duplicate deck name")
	assert.Contains(t, out, "skipping deck with empty name component")
	assert.Contains(t, out, "skipping deck without parent")
}

func TestBuildDueTree_Empty(t *testing.T) {
	tree := BuildDueTree(nil, TreeOptions{})
	assert.Empty(t, tree.Nodes)
	assert.Equal(t, domain.Counts{}, tree.Total())
}
