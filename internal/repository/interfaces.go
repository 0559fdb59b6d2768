package repository

import (
	"context"

	"github.com/alexanderramin/mnemo/internal/domain"
)

// CardDue is the projection a queue fill needs.
type CardDue struct {
	ID   int64
	Due  int64
	Left int
}

type CardRepo interface {
	Create(ctx context.Context, c *domain.Card) error
	GetByID(ctx context.Context, id int64) (*domain.Card, error)
	Update(ctx context.Context, c *domain.Card) error
	ListByNote(ctx context.Context, noteID int64) ([]*domain.Card, error)
	QueryIDs(ctx context.Context, q CardQuery) ([]int64, error)
	QueryDue(ctx context.Context, q CardQuery) ([]CardDue, error)
	Count(ctx context.Context, q CardQuery) (int, error)
	CountByDeck(ctx context.Context, q CardQuery) (map[int64]int, error)
	// SumStepsToday adds up the steps each matching card can still do
	// before the day cutoff.
	SumStepsToday(ctx context.Context, q CardQuery) (int, error)
}

type NoteRepo interface {
	Create(ctx context.Context, n *domain.Note) error
	GetByID(ctx context.Context, id int64) (*domain.Note, error)
	Update(ctx context.Context, n *domain.Note) error
	Delete(ctx context.Context, id int64) error
}

type DeckRepo interface {
	Create(ctx context.Context, d *domain.Deck) error
	GetByID(ctx context.Context, id int64) (*domain.Deck, error)
	GetByName(ctx context.Context, name string) (*domain.Deck, error)
	// AllSorted returns every deck with parents ahead of their children.
	AllSorted(ctx context.Context) ([]*domain.Deck, error)
	// ParentsOf returns the ancestors of a deck, root first.
	ParentsOf(ctx context.Context, id int64) ([]*domain.Deck, error)
	// ChildrenOf returns every descendant of a deck.
	ChildrenOf(ctx context.Context, id int64) ([]*domain.Deck, error)
	Save(ctx context.Context, d *domain.Deck) error
	Delete(ctx context.Context, id int64) error

	CreateConfig(ctx context.Context, c *domain.DeckConfig) error
	GetConfig(ctx context.Context, id int64) (*domain.DeckConfig, error)
	// ConfigForDeck resolves the options group of a deck. Filtered decks
	// have none and get the default group.
	ConfigForDeck(ctx context.Context, d *domain.Deck) (*domain.DeckConfig, error)
	ListConfigs(ctx context.Context) ([]*domain.DeckConfig, error)
	SaveConfig(ctx context.Context, c *domain.DeckConfig) error
}

type RevlogRepo interface {
	Append(ctx context.Context, l *domain.ReviewLog) error
	ListByCard(ctx context.Context, cardID int64) ([]*domain.ReviewLog, error)
	// StatsSince groups rows logged at or after sinceMs by type.
	StatsSince(ctx context.Context, sinceMs int64) ([]domain.RevlogTypeStat, error)
	CountSince(ctx context.Context, sinceMs int64) (int, error)
}

type CollectionRepo interface {
	Get(ctx context.Context) (*domain.CollectionConf, error)
	Upsert(ctx context.Context, c *domain.CollectionConf) error
}
