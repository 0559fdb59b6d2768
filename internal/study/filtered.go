package study

import (
	"context"
	"fmt"
	"math/rand"
	"slices"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/search"
)

const (
	// filteredDueBase is the due of the first card moved into a filtered
	// deck; later cards follow in order.
	filteredDueBase = -100000

	defaultTermLimit = 100
)

var dynOrderCardOrder = map[domain.DynOrder]repository.CardOrder{
	domain.DynOrderOldest:           repository.OrderLastReviewed,
	domain.DynOrderSmallestInterval: repository.OrderIvlAsc,
	domain.DynOrderLargestInterval:  repository.OrderIvlDesc,
	domain.DynOrderMostLapses:       repository.OrderLapsesDesc,
	domain.DynOrderAdded:            repository.OrderNoteAdded,
	domain.DynOrderReverseAdded:     repository.OrderNoteAddedDesc,
	domain.DynOrderDue:              repository.OrderDue,
	domain.DynOrderDuePriority:      repository.OrderDuePriority,
}

// RebuildFiltered empties a filtered deck and refills it from its search
// terms. The deck becomes the current deck. Returns how many cards were
// moved in.
func (s *Scheduler) RebuildFiltered(ctx context.Context, deckID int64) (int, error) {
	if err := s.ensureQueues(ctx); err != nil {
		return 0, err
	}
	var moved int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := StoresFor(tx)
		deck, err := filteredDeck(ctx, st, deckID)
		if err != nil {
			return err
		}
		if _, err := s.emptyFiltered(ctx, st, repository.CardQuery{DeckIDs: []int64{deckID}}); err != nil {
			return err
		}
		moved, err = s.fillFiltered(ctx, st, deck)
		if err != nil {
			return err
		}
		col, err := st.Collection.Get(ctx)
		if err != nil {
			return fmt.Errorf("loading collection: %w", err)
		}
		col.CurrentDeckID = deckID
		return st.Collection.Upsert(ctx, col)
	})
	if err != nil {
		return 0, fmt.Errorf("rebuilding filtered deck %d: %w", deckID, err)
	}
	s.logger.Info("filtered deck rebuilt", "deck_id", deckID, "cards", moved)
	s.col.CurrentDeckID = deckID
	s.invalidate()
	return moved, nil
}

func filteredDeck(ctx context.Context, st Stores, deckID int64) (*domain.Deck, error) {
	deck, err := st.Decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("loading deck %d: %w", deckID, err)
	}
	if !deck.Dyn {
		return nil, fmt.Errorf("deck %q: %w", deck.Name, ErrNotFiltered)
	}
	return deck, nil
}

func (s *Scheduler) fillFiltered(ctx context.Context, st Stores, deck *domain.Deck) (int, error) {
	total := 0
	for i, term := range deck.Terms {
		ids, err := s.searchTerm(ctx, st, term)
		if err != nil {
			return 0, fmt.Errorf("term %d %q: %w", i+1, term.Search, err)
		}
		if err := s.moveToFiltered(ctx, st, deck, ids, filteredDueBase+total); err != nil {
			return 0, err
		}
		total += len(ids)
	}
	return total, nil
}

// searchTerm selects the cards one term pulls in. Suspended, buried and
// already filtered cards never qualify.
func (s *Scheduler) searchTerm(ctx context.Context, st Stores, term domain.DynTerm) ([]int64, error) {
	q, err := search.Compile(ctx, term.Search, st.Decks, search.Options{Today: s.today, DayCutoff: s.dayCutoff})
	if err != nil {
		return nil, err
	}
	eligible := s.variant.filterableQueues()
	if len(q.Queues) > 0 {
		q.Queues = slices.DeleteFunc(q.Queues, func(qt domain.QueueType) bool {
			return !slices.Contains(eligible, qt)
		})
		if len(q.Queues) == 0 {
			return nil, nil
		}
	} else {
		q.Queues = eligible
	}
	q.NotFiltered = true

	limit := term.Limit
	if limit <= 0 {
		limit = defaultTermLimit
	}
	if term.Order == domain.DynOrderRandom {
		ids, err := st.Cards.QueryIDs(ctx, q)
		if err != nil {
			return nil, err
		}
		rng := rand.New(rand.NewSource(int64(s.today)))
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		return ids[:min(limit, len(ids))], nil
	}
	q.Order = dynOrderCardOrder[term.Order]
	q.Today = s.today
	q.Limit = limit
	return st.Cards.QueryIDs(ctx, q)
}

// moveToFiltered parks cards in a filtered deck, remembering their home
// deck and due.
func (s *Scheduler) moveToFiltered(ctx context.Context, st Stores, deck *domain.Deck, ids []int64, start int) error {
	for i, id := range ids {
		c, err := st.Cards.GetByID(ctx, id)
		if err != nil {
			return err
		}
		c.ODid = c.DeckID
		c.ODue = c.Due
		c.DeckID = deck.ID
		switch {
		case !deck.Resched:
			c.Queue = domain.QueueReview
		case s.variant.ExcludeLearningFromFiltered:
			// Reviews not yet due are studied early from the new queue.
			if c.Type == domain.CardReview && c.Due <= int64(s.today) {
				c.Queue = domain.QueueReview
			} else {
				c.Queue = domain.QueueNew
			}
		}
		if c.Due > 0 {
			c.Due = int64(start + i)
		}
		c.Mod = s.now()
		if err := st.Cards.Update(ctx, c); err != nil {
			return fmt.Errorf("moving card %d to %q: %w", id, deck.Name, err)
		}
	}
	return nil
}

// EmptyFiltered returns every card of a filtered deck to its home deck.
func (s *Scheduler) EmptyFiltered(ctx context.Context, deckID int64) (int, error) {
	var n int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := StoresFor(tx)
		if _, err := filteredDeck(ctx, st, deckID); err != nil {
			return err
		}
		var err error
		n, err = s.emptyFiltered(ctx, st, repository.CardQuery{DeckIDs: []int64{deckID}})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("emptying filtered deck %d: %w", deckID, err)
	}
	s.invalidate()
	return n, nil
}

// EmptyFilteredCards returns the given cards to their home decks. Cards not
// in a filtered deck are skipped.
func (s *Scheduler) EmptyFilteredCards(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		n, err = s.emptyFiltered(ctx, StoresFor(tx), repository.CardQuery{IDs: ids})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("removing cards from filtered decks: %w", err)
	}
	s.invalidate()
	return n, nil
}

func (s *Scheduler) emptyFiltered(ctx context.Context, st Stores, q repository.CardQuery) (int, error) {
	q.Order = repository.OrderID
	return s.updateMatching(ctx, st, q, func(c *domain.Card) bool {
		if c.ODid == 0 {
			return false
		}
		if c.ODue > 0 {
			c.Due = c.ODue
		}
		if c.Queue >= domain.QueueNew {
			restoreQueue(c)
		}
		c.DeckID = c.ODid
		c.ODid = 0
		c.ODue = 0
		return true
	})
}
