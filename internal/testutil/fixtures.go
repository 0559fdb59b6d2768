package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/google/uuid"
)

var testPosCounter atomic.Int64

// Note options
type NoteOption func(*domain.Note)

func WithTags(tags ...string) NoteOption {
	return func(n *domain.Note) {
		n.Tags = tags
	}
}

func WithBack(back string) NoteOption {
	return func(n *domain.Note) {
		if len(n.Fields) < 2 {
			n.Fields = append(n.Fields, "")
		}
		n.Fields[1] = back
	}
}

func NewTestNote(front string, opts ...NoteOption) *domain.Note {
	n := &domain.Note{
		GUID:   uuid.New().String(),
		Fields: []string{front, fmt.Sprintf("answer to %s", front)},
		Mod:    time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Card options
type CardOption func(*domain.Card)

func InDeck(deckID int64) CardOption {
	return func(c *domain.Card) {
		c.DeckID = deckID
	}
}

func WithOrd(ord int) CardOption {
	return func(c *domain.Card) {
		c.Ord = ord
	}
}

func WithQueue(q domain.QueueType) CardOption {
	return func(c *domain.Card) {
		c.Queue = q
	}
}

func WithDue(due int64) CardOption {
	return func(c *domain.Card) {
		c.Due = due
	}
}

func WithLeft(left int) CardOption {
	return func(c *domain.Card) {
		c.Left = left
	}
}

func WithLapses(n int) CardOption {
	return func(c *domain.Card) {
		c.Lapses = n
	}
}

// AsReview makes the card a graduated review card due on day due.
func AsReview(due int64, ivl int) CardOption {
	return func(c *domain.Card) {
		c.Type = domain.CardReview
		c.Queue = domain.QueueReview
		c.Due = due
		c.Ivl = ivl
		c.Factor = domain.StartingFactor
		c.Reps = 3
	}
}

// AsLearning puts the card in the sub-day learning queue, due at the epoch
// second due with left steps packed as given.
func AsLearning(due int64, left int) CardOption {
	return func(c *domain.Card) {
		c.Type = domain.CardLearning
		c.Queue = domain.QueueLearning
		c.Due = due
		c.Left = left
		c.Reps = 1
	}
}

// NewTestCard returns a new card in the default deck. Due positions
// increase with every call so that creation order is study order.
func NewTestCard(noteID int64, opts ...CardOption) *domain.Card {
	c := &domain.Card{
		NoteID: noteID,
		DeckID: domain.DefaultDeckID,
		Type:   domain.CardNew,
		Queue:  domain.QueueNew,
		Due:    testPosCounter.Add(1),
		Mod:    time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Deck options
type DeckOption func(*domain.Deck)

func WithConfID(id int64) DeckOption {
	return func(d *domain.Deck) {
		d.ConfID = id
	}
}

// Filtered turns the deck into a filtered deck pulling the given terms.
func Filtered(resched bool, terms ...domain.DynTerm) DeckOption {
	return func(d *domain.Deck) {
		d.Dyn = true
		d.Resched = resched
		d.Terms = terms
	}
}

func NewTestDeck(name string, opts ...DeckOption) *domain.Deck {
	d := &domain.Deck{
		Name:         name,
		ConfID:       domain.DefaultConfigID,
		Resched:      true,
		PreviewDelay: 10,
		Terms:        []domain.DynTerm{},
		Mod:          time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewTestDeckConfig returns the default options group under a new name.
func NewTestDeckConfig(name string, mutate ...func(*domain.DeckConfig)) *domain.DeckConfig {
	c := domain.DefaultDeckConfig()
	c.ID = 0
	c.Name = name
	for _, m := range mutate {
		m(c)
	}
	return c
}
