package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/search"
)

// defaultPreviewDelay is the relearn delay, in minutes, of cards answered
// Again in a filtered deck that does not reschedule.
const defaultPreviewDelay = 10

type deckService struct {
	decks    repository.DeckRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewDeckService(decks repository.DeckRepo, uow db.UnitOfWork, observers ...UseCaseObserver) DeckService {
	return &deckService{decks: decks, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *deckService) Create(ctx context.Context, name string) (deck *domain.Deck, err error) {
	defer observe(ctx, s.observer, "create-deck", map[string]any{"deck": name}, time.Now(), &err)

	name = normalizeDeckName(name)
	if err := validateDeckName(name); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		deck, err = ensureDeckPath(ctx, repository.NewSQLiteDeckRepo(tx), name)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("creating deck %q: %w", name, err)
	}
	return deck, nil
}

// ensureDeckPath returns the regular deck at name, creating it and any
// missing ancestors.
func ensureDeckPath(ctx context.Context, decks repository.DeckRepo, name string) (*domain.Deck, error) {
	parts := domain.SplitDeckName(name)
	var deck *domain.Deck
	for i := range parts {
		path := strings.Join(parts[:i+1], domain.DeckSeparator)
		existing, err := decks.GetByName(ctx, path)
		switch {
		case err == nil:
			if existing.Dyn {
				return nil, fmt.Errorf("%w: %q is a filtered deck", ErrDeckExists, existing.Name)
			}
			deck = existing
			continue
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
		deck = &domain.Deck{
			Name:         path,
			ConfID:       domain.DefaultConfigID,
			Resched:      true,
			PreviewDelay: defaultPreviewDelay,
			Mod:          time.Now().UTC(),
		}
		if err := decks.Create(ctx, deck); err != nil {
			return nil, err
		}
	}
	return deck, nil
}

// ensureParent creates the ancestors of name, which must all be regular
// decks.
func ensureParent(ctx context.Context, decks repository.DeckRepo, name string) error {
	parent := domain.ParentDeckName(name)
	if parent == "" {
		return nil
	}
	_, err := ensureDeckPath(ctx, decks, parent)
	return err
}

func (s *deckService) CreateFiltered(ctx context.Context, name string, resched bool, terms ...domain.DynTerm) (deck *domain.Deck, err error) {
	defer observe(ctx, s.observer, "create-filtered-deck", map[string]any{"deck": name, "terms": len(terms)}, time.Now(), &err)

	name = normalizeDeckName(name)
	if err := validateDeckName(name); err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("filtered deck %q needs at least one search", name)
	}
	for i, t := range terms {
		if _, err := search.Parse(t.Search); err != nil {
			return nil, fmt.Errorf("search %d: %w", i+1, err)
		}
		if t.Limit <= 0 {
			return nil, fmt.Errorf("search %d: limit must be positive", i+1)
		}
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		decks := repository.NewSQLiteDeckRepo(tx)
		if _, err := decks.GetByName(ctx, name); err == nil {
			return fmt.Errorf("%w: %q", ErrDeckExists, name)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if err := ensureParent(ctx, decks, name); err != nil {
			return err
		}
		deck = &domain.Deck{
			Name:         name,
			Dyn:          true,
			ConfID:       domain.DefaultConfigID,
			Terms:        terms,
			Resched:      resched,
			PreviewDelay: defaultPreviewDelay,
			Mod:          time.Now().UTC(),
		}
		return decks.Create(ctx, deck)
	})
	if err != nil {
		return nil, fmt.Errorf("creating filtered deck %q: %w", name, err)
	}
	return deck, nil
}

func (s *deckService) GetByName(ctx context.Context, name string) (*domain.Deck, error) {
	return s.decks.GetByName(ctx, normalizeDeckName(name))
}

func (s *deckService) List(ctx context.Context) ([]*domain.Deck, error) {
	return s.decks.AllSorted(ctx)
}

// Rename moves a deck and its subdecks to a new path.
func (s *deckService) Rename(ctx context.Context, id int64, name string) (err error) {
	defer observe(ctx, s.observer, "rename-deck", map[string]any{"deck_id": id, "name": name}, time.Now(), &err)

	name = normalizeDeckName(name)
	if err := validateDeckName(name); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		decks := repository.NewSQLiteDeckRepo(tx)
		deck, err := decks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if strings.EqualFold(deck.Name, name) {
			deck.Name = name
			return decks.Save(ctx, deck)
		}
		if _, err := decks.GetByName(ctx, name); err == nil {
			return fmt.Errorf("%w: %q", ErrDeckExists, name)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		oldPrefix := strings.ToLower(deck.Name + domain.DeckSeparator)
		if strings.HasPrefix(strings.ToLower(name+domain.DeckSeparator), oldPrefix) {
			return fmt.Errorf("%w: cannot move %q under itself", ErrInvalidDeckName, deck.Name)
		}
		children, err := decks.ChildrenOf(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureParent(ctx, decks, name); err != nil {
			return err
		}
		for _, c := range children {
			c.Name = name + c.Name[len(deck.Name):]
			c.Mod = time.Now().UTC()
			if err := decks.Save(ctx, c); err != nil {
				return err
			}
		}
		deck.Name = name
		deck.Mod = time.Now().UTC()
		return decks.Save(ctx, deck)
	})
}

// Delete removes an empty deck and its empty subdecks.
func (s *deckService) Delete(ctx context.Context, id int64) (err error) {
	defer observe(ctx, s.observer, "delete-deck", map[string]any{"deck_id": id}, time.Now(), &err)

	if id == domain.DefaultDeckID {
		return ErrProtectedDeck
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		decks := repository.NewSQLiteDeckRepo(tx)
		cards := repository.NewSQLiteCardRepo(tx)
		deck, err := decks.GetByID(ctx, id)
		if err != nil {
			return err
		}
		children, err := decks.ChildrenOf(ctx, id)
		if err != nil {
			return err
		}
		ids := []int64{id}
		for _, c := range children {
			ids = append(ids, c.ID)
		}
		n, err := cards.Count(ctx, repository.CardQuery{HomeDeckIDs: ids, Limit: 1})
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: %q", ErrDeckNotEmpty, deck.Name)
		}
		// Deepest first.
		for i := len(children) - 1; i >= 0; i-- {
			if err := decks.Delete(ctx, children[i].ID); err != nil {
				return err
			}
		}
		if err := decks.Delete(ctx, id); err != nil {
			return err
		}
		col, err := repository.NewSQLiteCollectionRepo(tx).Get(ctx)
		if err != nil {
			return err
		}
		for _, did := range ids {
			if col.CurrentDeckID == did {
				col.CurrentDeckID = domain.DefaultDeckID
				return repository.NewSQLiteCollectionRepo(tx).Upsert(ctx, col)
			}
		}
		return nil
	})
}

func (s *deckService) Config(ctx context.Context, deckID int64) (*domain.DeckConfig, error) {
	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	return s.decks.ConfigForDeck(ctx, deck)
}

func (s *deckService) ListConfigs(ctx context.Context) ([]*domain.DeckConfig, error) {
	return s.decks.ListConfigs(ctx)
}

func (s *deckService) CreateConfig(ctx context.Context, c *domain.DeckConfig) (err error) {
	defer observe(ctx, s.observer, "create-deck-config", map[string]any{"config": c.Name}, time.Now(), &err)

	if err := validateConfig(c); err != nil {
		return err
	}
	return s.decks.CreateConfig(ctx, c)
}

func (s *deckService) SaveConfig(ctx context.Context, c *domain.DeckConfig) (err error) {
	defer observe(ctx, s.observer, "save-deck-config", map[string]any{"config_id": c.ID}, time.Now(), &err)

	if err := validateConfig(c); err != nil {
		return err
	}
	return s.decks.SaveConfig(ctx, c)
}

func (s *deckService) AssignConfig(ctx context.Context, deckID, confID int64) (err error) {
	defer observe(ctx, s.observer, "assign-deck-config", map[string]any{"deck_id": deckID, "config_id": confID}, time.Now(), &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		decks := repository.NewSQLiteDeckRepo(tx)
		deck, err := decks.GetByID(ctx, deckID)
		if err != nil {
			return err
		}
		if deck.Dyn {
			return fmt.Errorf("filtered deck %q has no options group", deck.Name)
		}
		if _, err := decks.GetConfig(ctx, confID); err != nil {
			return err
		}
		deck.ConfID = confID
		deck.Mod = time.Now().UTC()
		return decks.Save(ctx, deck)
	})
}

// normalizeDeckName trims whitespace around every path component.
func normalizeDeckName(name string) string {
	parts := domain.SplitDeckName(name)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, domain.DeckSeparator)
}
