package domain

import "time"

// StartingFactor is the ease assigned to a card on graduation when the deck
// config does not override it.
const StartingFactor = 2500

// MinFactor is the floor applied to the ease factor after lapses and hard
// answers.
const MinFactor = 1300

type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
	Mod    time.Time
	Type   CardType
	Queue  QueueType
	Due    int64
	Ivl    int
	Factor int
	Reps   int
	Lapses int
	// Left packs the remaining learning steps: Left%1000 is the total
	// still to go, Left/1000 how many of those fit before the day cutoff.
	Left int
	ODue int64
	ODid int64
}

// StepsLeft returns the total number of learning steps remaining.
func (c *Card) StepsLeft() int {
	return c.Left % 1000
}

// StepsLeftToday returns the number of remaining steps that can be completed
// before the next day cutoff.
func (c *Card) StepsLeftToday() int {
	return c.Left / 1000
}

// InFilteredDeck reports whether the card is parked in a filtered deck.
func (c *Card) InFilteredDeck() bool {
	return c.ODid != 0
}

// HomeDeckID returns the deck the card belongs to outside of any filtered
// deck.
func (c *Card) HomeDeckID() int64 {
	if c.ODid != 0 {
		return c.ODid
	}
	return c.DeckID
}

// IsLearningType reports whether the card is in one of the step-based
// phases.
func (c *Card) IsLearningType() bool {
	return c.Type == CardLearning || c.Type == CardRelearning
}

// PackLeft combines the steps remaining today with the total remaining into
// the Card.Left encoding.
func PackLeft(today, total int) int {
	return today*1000 + total
}

// Clone returns a copy that can be mutated without affecting c.
func (c *Card) Clone() *Card {
	cp := *c
	return &cp
}
