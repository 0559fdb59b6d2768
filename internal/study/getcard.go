package study

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/scheduler"
)

// GetCard returns the next card to study, or ErrNoCard when the session is
// over. The returned card is counted as shown: it no longer appears in
// Counts until it is answered back into a queue.
func (s *Scheduler) GetCard(ctx context.Context) (*domain.Card, error) {
	if err := s.ensureQueues(ctx); err != nil {
		return nil, err
	}
	c, err := s.nextCard(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNoCard
	}
	s.decrementCounts(c)
	s.reps++
	return c, nil
}

func (s *Scheduler) nextCard(ctx context.Context) (*domain.Card, error) {
	steps := []func(context.Context) (*domain.Card, error){
		func(ctx context.Context) (*domain.Card, error) { return s.getLrnCard(ctx, false) },
		func(ctx context.Context) (*domain.Card, error) {
			if !s.timeForNewCard() {
				return nil, nil
			}
			return s.getNewCard(ctx)
		},
		func(ctx context.Context) (*domain.Card, error) {
			if !s.col.DayLearnFirst {
				return nil, nil
			}
			return s.getLrnDayCard(ctx)
		},
		s.getRevCard,
		func(ctx context.Context) (*domain.Card, error) {
			if s.col.DayLearnFirst {
				return nil, nil
			}
			return s.getLrnDayCard(ctx)
		},
		s.getNewCard,
		func(ctx context.Context) (*domain.Card, error) { return s.getLrnCard(ctx, true) },
	}
	for _, step := range steps {
		c, err := step(ctx)
		if err != nil || c != nil {
			return c, err
		}
	}
	return nil, nil
}

// decrementCounts takes a dispatched card out of the session counts.
func (s *Scheduler) decrementCounts(c *domain.Card) {
	switch c.Queue {
	case domain.QueueNew:
		s.newCount--
	case domain.QueueLearning:
		if s.variant.LearnCountBySteps {
			s.lrnCount -= c.StepsLeftToday()
		} else {
			s.lrnCount--
		}
	case domain.QueueDayLearn, domain.QueuePreview:
		s.lrnCount--
	case domain.QueueReview:
		s.revCount--
	}
	s.newCount = max(s.newCount, 0)
	s.lrnCount = max(s.lrnCount, 0)
	s.revCount = max(s.revCount, 0)
}

// loadCard fetches a queued card. Cards that vanished or moved out of the
// expected queue since the fill are reported as nil.
func (s *Scheduler) loadCard(ctx context.Context, id int64, queues ...domain.QueueType) (*domain.Card, error) {
	c, err := s.stores.Cards.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn("queued card no longer exists", "card_id", id)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading card %d: %w", id, err)
	}
	for _, q := range queues {
		if c.Queue == q {
			return c, nil
		}
	}
	s.logger.Debug("queued card changed queue", "card_id", id, "queue", c.Queue)
	return nil, nil
}

func (s *Scheduler) getLrnCard(ctx context.Context, collapse bool) (*domain.Card, error) {
	if err := s.maybeResetLrn(ctx, collapse && s.lrnCount == 0); err != nil {
		return nil, err
	}
	for {
		ok, err := s.fillLrn(ctx)
		if err != nil || !ok {
			return nil, err
		}
		cutoff := s.now().Unix()
		if collapse {
			cutoff += int64(s.col.CollapseTime)
		}
		due, _ := s.lrnQueue.PeekFirstDue()
		if due >= cutoff {
			return nil, nil
		}
		e, err := s.lrnQueue.PopFront()
		if err != nil {
			return nil, err
		}
		c, err := s.loadCard(ctx, e.ID, domain.QueueLearning, domain.QueuePreview)
		if err != nil || c != nil {
			return c, err
		}
	}
}

func (s *Scheduler) getLrnDayCard(ctx context.Context) (*domain.Card, error) {
	return s.popFrom(ctx, s.fillLrnDay, func() *scheduler.Queue[scheduler.QueueEntry] { return s.lrnDayQueue },
		domain.QueueDayLearn)
}

func (s *Scheduler) getNewCard(ctx context.Context) (*domain.Card, error) {
	return s.popFrom(ctx, s.fillNew, func() *scheduler.Queue[scheduler.QueueEntry] { return s.newQueue },
		domain.QueueNew)
}

func (s *Scheduler) getRevCard(ctx context.Context) (*domain.Card, error) {
	return s.popFrom(ctx, s.fillRev, func() *scheduler.Queue[scheduler.QueueEntry] { return s.revQueue },
		domain.QueueReview)
}

// popFrom pops the first live card of a FIFO queue, refilling it as
// needed. The queue is looked up after each fill since fills replace it.
func (s *Scheduler) popFrom(
	ctx context.Context,
	fill func(context.Context) (bool, error),
	queue func() *scheduler.Queue[scheduler.QueueEntry],
	want domain.QueueType,
) (*domain.Card, error) {
	for {
		ok, err := fill(ctx)
		if err != nil || !ok {
			return nil, err
		}
		e, err := queue().PopFront()
		if err != nil {
			return nil, err
		}
		c, err := s.loadCard(ctx, e.ID, want)
		if err != nil || c != nil {
			return c, err
		}
	}
}

// removeFromQueues drops a card from every in-memory queue. Returns true if
// it was still queued.
func (s *Scheduler) removeFromQueues(id int64) bool {
	found := s.newQueue.RemoveByID(id)
	found = s.lrnQueue.RemoveByID(id) || found
	found = s.lrnDayQueue.RemoveByID(id) || found
	found = s.revQueue.RemoveByID(id) || found
	return found
}
