package scheduler

import (
	"sort"

	"github.com/alexanderramin/mnemo/internal/domain"
)

// SortDeckRows sorts rows by deck name path so that every parent sorts
// immediately before its descendants:
// 1. Path components compared case-insensitively, left to right
// 2. Shorter path first when one is a prefix of the other
// 3. Deck ID ascending
func SortDeckRows(rows []DeckCountRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if c := domain.CompareDeckNames(a.Name, b.Name); c != 0 {
			return c < 0
		}
		return a.DeckID < b.DeckID
	})
}
