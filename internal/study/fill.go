package study

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/scheduler"
)

func entriesOf(rows []repository.CardDue) []scheduler.QueueEntry {
	out := make([]scheduler.QueueEntry, len(rows))
	for i, r := range rows {
		out[i] = scheduler.QueueEntry{ID: r.ID, Due: r.Due}
	}
	return out
}

// fillLrn loads sub-day learning and preview cards due within the collapse
// window.
func (s *Scheduler) fillLrn(ctx context.Context) (bool, error) {
	if s.lrnCount == 0 {
		return false, nil
	}
	if !s.lrnQueue.IsEmpty() {
		return true, nil
	}
	cutoff := s.now().Unix() + int64(s.col.CollapseTime)
	rows, err := s.stores.Cards.QueryDue(ctx, repository.CardQuery{
		DeckIDs:   s.active,
		Queues:    []domain.QueueType{domain.QueueLearning, domain.QueuePreview},
		DueBefore: repository.Int64(cutoff),
		Order:     repository.OrderDue,
		Limit:     reportLimit,
	})
	if err != nil {
		return false, fmt.Errorf("filling learning queue: %w", err)
	}
	for _, e := range entriesOf(rows) {
		s.lrnQueue.Push(e)
	}
	return !s.lrnQueue.IsEmpty(), nil
}

// fillLrnDay loads day-learning cards one deck at a time, shuffled with the
// day number so the order is stable within a day.
func (s *Scheduler) fillLrnDay(ctx context.Context) (bool, error) {
	if s.lrnCount == 0 {
		return false, nil
	}
	if !s.lrnDayQueue.IsEmpty() {
		return true, nil
	}
	for len(s.lrnDids) > 0 {
		did := s.lrnDids[0]
		rows, err := s.stores.Cards.QueryDue(ctx, repository.CardQuery{
			DeckIDs:   []int64{did},
			Queues:    []domain.QueueType{domain.QueueDayLearn},
			DueAtMost: repository.Int64(int64(s.today)),
			Order:     repository.OrderID,
			Limit:     s.queueLimit,
		})
		if err != nil {
			return false, fmt.Errorf("filling day learning queue: %w", err)
		}
		if len(rows) > 0 {
			s.lrnDayQueue = scheduler.NewQueue(entriesOf(rows)...)
			s.lrnDayQueue.Shuffle(int64(s.today))
			if len(rows) < s.queueLimit {
				s.lrnDids = s.lrnDids[1:]
			}
			return true, nil
		}
		s.lrnDids = s.lrnDids[1:]
	}
	return false, nil
}

func (s *Scheduler) fillNew(ctx context.Context) (bool, error) {
	return s.fillNewOnce(ctx, true)
}

func (s *Scheduler) fillNewOnce(ctx context.Context, retry bool) (bool, error) {
	if !s.newQueue.IsEmpty() {
		return true, nil
	}
	if s.newCount == 0 {
		return false, nil
	}
	for len(s.newDids) > 0 {
		did := s.newDids[0]
		lim, err := s.deckLimit(ctx, did, s.deckNewLimitSingle)
		if err != nil {
			return false, fmt.Errorf("computing new limit: %w", err)
		}
		lim = min(s.queueLimit, lim)
		if lim > 0 {
			rows, err := s.stores.Cards.QueryDue(ctx, repository.CardQuery{
				DeckIDs: []int64{did},
				Queues:  []domain.QueueType{domain.QueueNew},
				Order:   repository.OrderDue,
				Limit:   lim,
			})
			if err != nil {
				return false, fmt.Errorf("filling new queue: %w", err)
			}
			if len(rows) > 0 {
				s.newQueue = scheduler.NewQueue(entriesOf(rows)...)
				return true, nil
			}
		}
		s.newDids = s.newDids[1:]
	}
	if retry && s.newCount != 0 {
		// The count is stale: cards were removed from the queue without
		// being buried. Recount once and try again.
		if err := s.resetNew(ctx); err != nil {
			return false, err
		}
		return s.fillNewOnce(ctx, false)
	}
	return false, nil
}

func (s *Scheduler) fillRev(ctx context.Context) (bool, error) {
	return s.fillRevOnce(ctx, true)
}

// fillRevOnce loads due review cards ordered by due day. Cards due on the
// same day come out in an order fixed by the day number.
func (s *Scheduler) fillRevOnce(ctx context.Context, retry bool) (bool, error) {
	if !s.revQueue.IsEmpty() {
		return true, nil
	}
	if s.revCount == 0 {
		return false, nil
	}
	if s.variant.RollUpReview {
		for len(s.revDids) > 0 {
			did := s.revDids[0]
			lim, err := s.deckLimit(ctx, did, s.deckRevLimitSingle)
			if err != nil {
				return false, fmt.Errorf("computing review limit: %w", err)
			}
			lim = min(s.queueLimit, lim)
			if lim > 0 {
				ok, err := s.loadRev(ctx, []int64{did}, lim)
				if err != nil || ok {
					return ok, err
				}
			}
			s.revDids = s.revDids[1:]
		}
	} else {
		lim, err := s.currentRevLimit(ctx)
		if err != nil {
			return false, err
		}
		lim = min(s.queueLimit, lim)
		if lim > 0 {
			ok, err := s.loadRev(ctx, s.active, lim)
			if err != nil || ok {
				return ok, err
			}
		}
	}
	if retry && s.revCount != 0 {
		if err := s.resetRev(ctx); err != nil {
			return false, err
		}
		return s.fillRevOnce(ctx, false)
	}
	return false, nil
}

func (s *Scheduler) loadRev(ctx context.Context, decks []int64, lim int) (bool, error) {
	rows, err := s.stores.Cards.QueryDue(ctx, repository.CardQuery{
		DeckIDs:   decks,
		Queues:    []domain.QueueType{domain.QueueReview},
		DueAtMost: repository.Int64(int64(s.today)),
		Order:     repository.OrderDue,
		Limit:     lim,
	})
	if err != nil {
		return false, fmt.Errorf("filling review queue: %w", err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	s.revQueue = scheduler.NewQueue(entriesOf(rows)...)
	s.revQueue.Shuffle(int64(s.today))
	if !s.variant.RollUpReview {
		// Most overdue first; the shuffle only breaks ties.
		s.revQueue.SortByDue()
	}
	return true, nil
}
