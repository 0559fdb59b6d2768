package domain

import (
	"strings"
	"time"
)

// DeckSeparator joins the components of a deck name path.
const DeckSeparator = "::"

// DefaultDeckID is the deck created together with a fresh collection.
const DefaultDeckID int64 = 1

// DayCount is a per-day counter keyed to the day number it was last
// touched on, so that a stale counter reads as zero after rollover.
type DayCount struct {
	Day   int
	Count int
}

// On returns the counter value for the given day.
func (d DayCount) On(today int) int {
	if d.Day != today {
		return 0
	}
	return d.Count
}

// Add increments the counter for today, resetting it first if it belongs to
// an earlier day.
func (d *DayCount) Add(today, delta int) {
	if d.Day != today {
		d.Day = today
		d.Count = 0
	}
	d.Count += delta
}

// DynTerm is one search of a filtered deck.
type DynTerm struct {
	Search string
	Limit  int
	Order  DynOrder
}

type Deck struct {
	ID     int64
	Name   string
	Dyn    bool
	ConfID int64
	Mod    time.Time

	NewToday  DayCount
	RevToday  DayCount
	LrnToday  DayCount
	TimeToday DayCount

	// Filtered decks only.
	Terms        []DynTerm
	Resched      bool
	PreviewDelay int
}

// Path splits the name into its components.
func (d *Deck) Path() []string {
	return SplitDeckName(d.Name)
}

// ParentName returns the full name of the parent deck, or "" for a
// top-level deck.
func (d *Deck) ParentName() string {
	return ParentDeckName(d.Name)
}

// Depth is zero for top-level decks.
func (d *Deck) Depth() int {
	return len(d.Path()) - 1
}

// SplitDeckName splits a "::"-delimited deck name.
func SplitDeckName(name string) []string {
	return strings.Split(name, DeckSeparator)
}

// ParentDeckName strips the last path component.
func ParentDeckName(name string) string {
	parts := SplitDeckName(name)
	if len(parts) < 2 {
		return ""
	}
	return strings.Join(parts[:len(parts)-1], DeckSeparator)
}

// AncestorDeckNames lists the full names of every ancestor, root first.
func AncestorDeckNames(name string) []string {
	parts := SplitDeckName(name)
	out := make([]string, 0, len(parts)-1)
	for i := 1; i < len(parts); i++ {
		out = append(out, strings.Join(parts[:i], DeckSeparator))
	}
	return out
}

// IsDescendantName reports whether child sits anywhere below parent.
func IsDescendantName(parent, child string) bool {
	return strings.HasPrefix(child, parent+DeckSeparator)
}

// CompareDeckNames orders decks so that a parent sorts immediately before
// its descendants, comparing component by component.
func CompareDeckNames(a, b string) int {
	pa, pb := SplitDeckName(a), SplitDeckName(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		x, y := strings.ToLower(pa[i]), strings.ToLower(pb[i])
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return len(pa) - len(pb)
}
