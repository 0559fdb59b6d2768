package scheduler

import (
	"io"
	"log/slog"
	"strings"

	"github.com/alexanderramin/mnemo/internal/domain"
)

// Unlimited marks a row without a daily allowance (filtered decks).
const Unlimited = -1

// DeckCountRow is the due count of one deck before tree folding.
type DeckCountRow struct {
	Name     string
	DeckID   int64
	New      int
	Learning int
	Review   int
	// NewLimit and ReviewLimit are the deck's own remaining allowance for
	// today, or Unlimited.
	NewLimit    int
	ReviewLimit int
}

// DueNode is one deck in a DueTree. Children index into DueTree.Nodes.
type DueNode struct {
	Name     string
	FullName string
	DeckID   int64
	New      int
	Learning int
	Review   int
	Parent   int
	Children []int
	Depth    int
}

// Counts returns the node's counts as a triple.
func (n *DueNode) Counts() domain.Counts {
	return domain.Counts{New: n.New, Learning: n.Learning, Review: n.Review}
}

// DueTree is an arena of deck nodes. Parents always precede their
// descendants in Nodes.
type DueTree struct {
	Nodes []DueNode
	Roots []int
}

type TreeOptions struct {
	// RollUpReview adds children's review counts into their parents.
	RollUpReview bool
	Logger       *slog.Logger
}

// BuildDueTree folds flat per-deck counts into a tree. Children's new and
// learning counts (and review counts with RollUpReview) are summed into the
// parent, which is then clamped to its own remaining allowance. Rows with an
// empty path component, a duplicate name, or no parent row are logged and
// skipped.
func BuildDueTree(rows []DeckCountRow, opts TreeOptions) *DueTree {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	sorted := append([]DeckCountRow(nil), rows...)
	SortDeckRows(sorted)

	tree := &DueTree{}
	index := make(map[string]int, len(sorted))
	limits := make([]DeckCountRow, 0, len(sorted))

	for _, row := range sorted {
		parts := domain.SplitDeckName(row.Name)
		if hasEmptyComponent(parts) {
			logger.Warn("skipping deck with empty name component", "deck", row.Name, "deck_id", row.DeckID)
			continue
		}
		key := strings.ToLower(row.Name)
		if _, dup := index[key]; dup {
			logger.Warn("skipping duplicate deck name", "deck", row.Name, "deck_id", row.DeckID)
			continue
		}
		parent := -1
		if p := domain.ParentDeckName(row.Name); p != "" {
			idx, ok := index[strings.ToLower(p)]
			if !ok {
				logger.Warn("skipping deck without parent", "deck", row.Name, "deck_id", row.DeckID, "parent", p)
				continue
			}
			parent = idx
		}

		idx := len(tree.Nodes)
		tree.Nodes = append(tree.Nodes, DueNode{
			Name:     parts[len(parts)-1],
			FullName: row.Name,
			DeckID:   row.DeckID,
			New:      row.New,
			Learning: row.Learning,
			Review:   row.Review,
			Parent:   parent,
			Depth:    len(parts) - 1,
		})
		limits = append(limits, row)
		index[key] = idx
		if parent < 0 {
			tree.Roots = append(tree.Roots, idx)
		} else {
			tree.Nodes[parent].Children = append(tree.Nodes[parent].Children, idx)
		}
	}

	for i := len(tree.Nodes) - 1; i >= 0; i-- {
		n := &tree.Nodes[i]
		n.New = clampToLimit(n.New, limits[i].NewLimit)
		n.Review = clampToLimit(n.Review, limits[i].ReviewLimit)
		n.Learning = max(n.Learning, 0)
		if n.Parent < 0 {
			continue
		}
		p := &tree.Nodes[n.Parent]
		p.New += n.New
		p.Learning += n.Learning
		if opts.RollUpReview {
			p.Review += n.Review
		}
	}
	return tree
}

func hasEmptyComponent(parts []string) bool {
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return true
		}
	}
	return false
}

func clampToLimit(v, limit int) int {
	if limit != Unlimited {
		v = min(v, limit)
	}
	return max(v, 0)
}

// Find returns the node with the given full name.
func (t *DueTree) Find(fullName string) (*DueNode, bool) {
	for i := range t.Nodes {
		if strings.EqualFold(t.Nodes[i].FullName, fullName) {
			return &t.Nodes[i], true
		}
	}
	return nil, false
}

// Walk visits nodes depth-first, parents before children, in display
// order.
func (t *DueTree) Walk(fn func(n *DueNode)) {
	var visit func(idx int)
	visit = func(idx int) {
		fn(&t.Nodes[idx])
		for _, c := range t.Nodes[idx].Children {
			visit(c)
		}
	}
	for _, r := range t.Roots {
		visit(r)
	}
}

// Total sums the root counts.
func (t *DueTree) Total() domain.Counts {
	var c domain.Counts
	for _, r := range t.Roots {
		c = c.Add(t.Nodes[r].Counts())
	}
	return c
}
