package study

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
)

// timestampFloor separates epoch-second dues from day numbers.
const timestampFloor = 1_000_000_000

func buriedQueues() []domain.QueueType {
	return []domain.QueueType{domain.QueueSiblingBuried, domain.QueueManuallyBuried}
}

// restoreQueue puts a card back in the queue its type implies. Learning
// cards go to the sub-day queue when their due is a timestamp and to the
// day-learning queue otherwise.
func restoreQueue(c *domain.Card) {
	switch c.Type {
	case domain.CardLearning, domain.CardRelearning:
		due := c.Due
		if c.ODid != 0 && c.ODue != 0 {
			due = c.ODue
		}
		if due > timestampFloor {
			c.Queue = domain.QueueLearning
		} else {
			c.Queue = domain.QueueDayLearn
		}
	case domain.CardReview:
		c.Queue = domain.QueueReview
	default:
		c.Queue = domain.QueueNew
	}
}

// updateMatching loads every card matching q and applies fn to it, saving
// the cards fn reports as changed.
func (s *Scheduler) updateMatching(ctx context.Context, st Stores, q repository.CardQuery, fn func(c *domain.Card) bool) (int, error) {
	ids, err := st.Cards.QueryIDs(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("selecting cards: %w", err)
	}
	n := 0
	for _, id := range ids {
		c, err := st.Cards.GetByID(ctx, id)
		if err != nil {
			return n, err
		}
		if !fn(c) {
			continue
		}
		c.Mod = s.now()
		if err := st.Cards.Update(ctx, c); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Scheduler) unburyMatching(ctx context.Context, st Stores, queues []domain.QueueType, deckIDs []int64) (int, error) {
	n, err := s.updateMatching(ctx, st, repository.CardQuery{Queues: queues, DeckIDs: deckIDs},
		func(c *domain.Card) bool {
			restoreQueue(c)
			return true
		})
	if err != nil {
		return n, fmt.Errorf("unburying cards: %w", err)
	}
	return n, nil
}

// mutateCards runs fn over the given cards in one unit of work and drops
// the queues afterwards.
func (s *Scheduler) mutateCards(ctx context.Context, ids []int64, fn func(c *domain.Card) bool) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		n, err = s.updateMatching(ctx, StoresFor(tx), repository.CardQuery{IDs: ids, Order: repository.OrderID}, fn)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.invalidate()
	return n, nil
}

// SuspendCards moves cards to the suspended queue. Already suspended cards
// are left alone.
func (s *Scheduler) SuspendCards(ctx context.Context, ids []int64) (int, error) {
	n, err := s.mutateCards(ctx, ids, func(c *domain.Card) bool {
		if c.Queue == domain.QueueSuspended {
			return false
		}
		c.Queue = domain.QueueSuspended
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("suspending cards: %w", err)
	}
	return n, nil
}

// UnsuspendCards restores suspended cards to the queue of their type.
func (s *Scheduler) UnsuspendCards(ctx context.Context, ids []int64) (int, error) {
	n, err := s.mutateCards(ctx, ids, func(c *domain.Card) bool {
		if c.Queue != domain.QueueSuspended {
			return false
		}
		restoreQueue(c)
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("unsuspending cards: %w", err)
	}
	return n, nil
}

// BuryCards hides cards until the next day. Manual burial uses its own
// queue when the variant keeps the two apart.
func (s *Scheduler) BuryCards(ctx context.Context, ids []int64, manual bool) (int, error) {
	target := domain.QueueSiblingBuried
	if manual {
		target = s.variant.manualBuryQueue()
	}
	n, err := s.mutateCards(ctx, ids, func(c *domain.Card) bool {
		if c.Queue == target || c.Queue == domain.QueueSuspended {
			return false
		}
		c.Queue = target
		return true
	})
	if err != nil {
		return 0, fmt.Errorf("burying cards: %w", err)
	}
	return n, nil
}

// BuryNote manually buries every studyable card of a note.
func (s *Scheduler) BuryNote(ctx context.Context, noteID int64) (int, error) {
	cards, err := s.stores.Cards.ListByNote(ctx, noteID)
	if err != nil {
		return 0, fmt.Errorf("listing cards of note %d: %w", noteID, err)
	}
	var ids []int64
	for _, c := range cards {
		if c.Queue >= domain.QueueNew {
			ids = append(ids, c.ID)
		}
	}
	return s.BuryCards(ctx, ids, true)
}

// UnburyCards restores every buried card in the collection.
func (s *Scheduler) UnburyCards(ctx context.Context) (int, error) {
	return s.unbury(ctx, buriedQueues(), nil)
}

// UnburyCardsForDeck restores buried cards of a deck and its subdecks.
func (s *Scheduler) UnburyCardsForDeck(ctx context.Context, deckID int64, scope domain.UnburyScope) (int, error) {
	var queues []domain.QueueType
	switch scope {
	case domain.UnburyAll, "":
		queues = buriedQueues()
	case domain.UnburyManual:
		queues = []domain.QueueType{domain.QueueManuallyBuried}
	case domain.UnburySiblings:
		queues = []domain.QueueType{domain.QueueSiblingBuried}
	default:
		return 0, fmt.Errorf("unknown unbury scope %q", scope)
	}
	children, err := s.stores.Decks.ChildrenOf(ctx, deckID)
	if err != nil {
		return 0, fmt.Errorf("loading subdecks: %w", err)
	}
	dids := []int64{deckID}
	for _, c := range children {
		dids = append(dids, c.ID)
	}
	return s.unbury(ctx, queues, dids)
}

func (s *Scheduler) unbury(ctx context.Context, queues []domain.QueueType, deckIDs []int64) (int, error) {
	var n int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		n, err = s.unburyMatching(ctx, StoresFor(tx), queues, deckIDs)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.invalidate()
	return n, nil
}
