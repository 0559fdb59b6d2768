package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortDeckRows_ParentBeforeDescendants(t *testing.T) {
	rows := []DeckCountRow{
		{Name: "Spanish", DeckID: 4},
		{Name: "French::Verbs", DeckID: 3},
		{Name: "French", DeckID: 2},
		{Name: "French-Extra", DeckID: 5},
		{Name: "French::Nouns", DeckID: 6},
	}

	SortDeckRows(rows)

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"French", "French::Nouns", "French::Verbs", "French-Extra", "Spanish"}, names)
}

func TestSortDeckRows_CaseInsensitive(t *testing.T) {
	rows := []DeckCountRow{{Name: "beta", DeckID: 1}, {Name: "Alpha", DeckID: 2}}
	SortDeckRows(rows)
	assert.Equal(t, "Alpha", rows[0].Name)
}

func TestSortDeckRows_IDTiebreak(t *testing.T) {
	rows := []DeckCountRow{{Name: "Same", DeckID: 9}, {Name: "same", DeckID: 3}}
	SortDeckRows(rows)
	assert.Equal(t, int64(3), rows[0].DeckID)
}
