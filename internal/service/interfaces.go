package service

import (
	"context"
	"time"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/scheduler"
	"github.com/alexanderramin/mnemo/internal/study"
)

type DeckService interface {
	// Create adds a regular deck, creating any missing parents. An existing
	// deck with the same name is returned as is.
	Create(ctx context.Context, name string) (*domain.Deck, error)
	CreateFiltered(ctx context.Context, name string, resched bool, terms ...domain.DynTerm) (*domain.Deck, error)
	GetByName(ctx context.Context, name string) (*domain.Deck, error)
	List(ctx context.Context) ([]*domain.Deck, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error

	Config(ctx context.Context, deckID int64) (*domain.DeckConfig, error)
	ListConfigs(ctx context.Context) ([]*domain.DeckConfig, error)
	CreateConfig(ctx context.Context, c *domain.DeckConfig) error
	SaveConfig(ctx context.Context, c *domain.DeckConfig) error
	AssignConfig(ctx context.Context, deckID, confID int64) error
}

// NewNote is the input of NoteService.Add.
type NewNote struct {
	DeckID int64
	Front  string
	Back   string
	Tags   []string
	// Reverse adds a second card asking back to front.
	Reverse bool
}

type NoteService interface {
	Add(ctx context.Context, in NewNote) (*domain.Note, []*domain.Card, error)
	GetByID(ctx context.Context, id int64) (*domain.Note, error)
	Cards(ctx context.Context, noteID int64) ([]*domain.Card, error)
}

// StudyCard is a card ready to be shown, with everything the study screen
// needs next to it.
type StudyCard struct {
	Card   *domain.Card
	Note   *domain.Note
	Counts domain.Counts
	// Grades are the buttons the card accepts, with the interval each one
	// would schedule.
	Grades    []domain.Grade
	Intervals map[domain.Grade]time.Duration
}

// Reversed reports whether the card asks the back of its note.
func (c *StudyCard) Reversed() bool { return c.Card.Ord == 1 }

// CollectionSettings are the study preferences stored with the collection.
type CollectionSettings struct {
	RolloverHour  int
	CollapseTime  time.Duration
	DayLearnFirst bool
	NewSpread     domain.NewSpread
}

type StudyService interface {
	Configure(ctx context.Context, settings CollectionSettings) error
	SelectDeck(ctx context.Context, deckID int64) error
	CurrentDeckID() int64

	// Next returns the next card, or study.ErrNoCard.
	Next(ctx context.Context) (*StudyCard, error)
	Answer(ctx context.Context, cardID int64, grade domain.Grade, took time.Duration) (*domain.Card, error)
	Preview(ctx context.Context, cardID int64) (map[domain.Grade]time.Duration, error)
	Counts(ctx context.Context) (domain.Counts, error)
	Finished(ctx context.Context) (*study.Finished, error)

	Suspend(ctx context.Context, ids ...int64) (int, error)
	Unsuspend(ctx context.Context, ids ...int64) (int, error)
	Bury(ctx context.Context, ids ...int64) (int, error)
	BuryNote(ctx context.Context, noteID int64) (int, error)
	Unbury(ctx context.Context, deckID int64, scope domain.UnburyScope) (int, error)
	Forget(ctx context.Context, ids ...int64) (int, error)
	Resched(ctx context.Context, minDays, maxDays int, ids ...int64) (int, error)
	ExtendLimits(ctx context.Context, newDelta, revDelta int) error

	RebuildFiltered(ctx context.Context, deckID int64) (int, error)
	EmptyFiltered(ctx context.Context, deckID int64) (int, error)
}

// Overview summarises the collection for the deck list screen.
type Overview struct {
	Tree          *scheduler.DueTree
	Counts        domain.Counts
	ETAMinutes    int
	ReviewedToday int
	Stats         []domain.RevlogTypeStat
}

type OverviewService interface {
	Overview(ctx context.Context) (*Overview, error)
}
