package study

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/scheduler"
)

const day = 24 * time.Hour

// NextInterval previews how far away the card would be scheduled if
// answered with grade now. Nothing is written and no fuzz is applied. A
// zero duration means the card would leave the session without a new
// schedule.
func (s *Scheduler) NextInterval(ctx context.Context, c *domain.Card, grade domain.Grade) (time.Duration, error) {
	if err := s.ensureQueues(ctx); err != nil {
		return 0, err
	}
	deck, conf, err := s.cardContext(ctx, s.stores, c)
	if err != nil {
		return 0, err
	}
	if unscheduled(deck) {
		if s.variant.PreviewQueue && grade == domain.GradeAgain {
			return time.Duration(deck.PreviewDelay) * time.Minute, nil
		}
		return 0, nil
	}

	early := c.ODid != 0 && c.ODue > int64(s.today)
	switch {
	case c.Queue == domain.QueueNew && c.Type == domain.CardReview:
		return s.nextRevIvl(c, grade, conf, early), nil
	case c.Queue == domain.QueueNew || c.Queue == domain.QueueLearning || c.Queue == domain.QueueDayLearn:
		return s.nextLrnIvl(c, grade, conf), nil
	}
	return s.nextRevIvl(c, grade, conf, early), nil
}

func (s *Scheduler) nextLrnIvl(c *domain.Card, grade domain.Grade, conf *domain.DeckConfig) time.Duration {
	c = c.Clone()
	if c.Queue == domain.QueueNew {
		c.Left = s.startingLeft(c, conf, s.now())
	}
	delays := lrnDelays(c, conf)
	secs := func(n int) time.Duration { return time.Duration(n) * time.Second }
	switch grade {
	case domain.GradeAgain:
		return secs(scheduler.DelayForGrade(delays, len(delays)))
	case domain.GradeHard:
		return secs(scheduler.DelayForRepeatingGrade(delays, c.Left))
	case domain.GradeEasy:
		return time.Duration(s.graduationDays(c, graduatingIvl(c, conf, true, nil))) * day
	}
	left := c.StepsLeft() - 1
	if left <= 0 {
		return time.Duration(s.graduationDays(c, graduatingIvl(c, conf, false, nil))) * day
	}
	return secs(scheduler.DelayForGrade(delays, left))
}

func (s *Scheduler) nextRevIvl(c *domain.Card, grade domain.Grade, conf *domain.DeckConfig, early bool) time.Duration {
	if grade == domain.GradeAgain {
		if len(conf.Lapse.Delays) > 0 {
			return time.Duration(conf.Lapse.Delays[0] * float64(time.Minute))
		}
		return time.Duration(scheduler.LapseInterval(c.Ivl, conf.Lapse)) * day
	}
	if early {
		return time.Duration(scheduler.EarlyReviewInterval(c.Ivl, c.Factor, int(c.ODue)-s.today, grade, conf.Rev)) * day
	}
	st := scheduler.ReviewState{Ivl: c.Ivl, Factor: c.Factor, DaysLate: scheduler.DaysLate(c, s.today)}
	return time.Duration(scheduler.NextReviewInterval(st, grade, conf.Rev, nil)) * day
}

// ForgetCards turns cards back into new cards at the end of the new queue.
// Lapse and rep history is kept.
func (s *Scheduler) ForgetCards(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := StoresFor(tx)
		col, err := st.Collection.Get(ctx)
		if err != nil {
			return fmt.Errorf("loading collection: %w", err)
		}
		n, err = s.updateMatching(ctx, st, repository.CardQuery{IDs: ids, Order: repository.OrderID},
			func(c *domain.Card) bool {
				removeFromFiltered(c)
				c.ODue = 0
				c.Type = domain.CardNew
				c.Queue = domain.QueueNew
				c.Due = col.NextPos
				col.NextPos++
				c.Ivl = 0
				c.Factor = domain.StartingFactor
				c.Left = 0
				return true
			})
		if err != nil {
			return err
		}
		return st.Collection.Upsert(ctx, col)
	})
	if err != nil {
		return 0, fmt.Errorf("forgetting cards: %w", err)
	}
	s.invalidate()
	return n, nil
}

// ReschedCards makes cards review cards due on a random day between
// minDays and maxDays from today, inclusive.
func (s *Scheduler) ReschedCards(ctx context.Context, ids []int64, minDays, maxDays int) (int, error) {
	if minDays < 0 || minDays > maxDays {
		return 0, fmt.Errorf("rescheduling %d..%d days: %w", minDays, maxDays, ErrInvalidRange)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := s.ensureQueues(ctx); err != nil {
		return 0, err
	}
	var n int
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		n, err = s.updateMatching(ctx, StoresFor(tx), repository.CardQuery{IDs: ids, Order: repository.OrderID},
			func(c *domain.Card) bool {
				r := minDays + s.rng.Intn(maxDays-minDays+1)
				removeFromFiltered(c)
				c.ODue = 0
				c.Type = domain.CardReview
				c.Queue = domain.QueueReview
				c.Ivl = max(1, r)
				c.Due = int64(s.today + r)
				c.Left = 0
				if c.Factor == 0 {
					c.Factor = domain.StartingFactor
				}
				return true
			})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("rescheduling cards: %w", err)
	}
	s.invalidate()
	return n, nil
}

// ExtendLimits raises today's new and review allowance of the current deck,
// its parents and its subdecks.
func (s *Scheduler) ExtendLimits(ctx context.Context, newDelta, revDelta int) error {
	if err := s.ensureQueues(ctx); err != nil {
		return err
	}
	did := s.col.CurrentDeckID
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := StoresFor(tx)
		cur, err := st.Decks.GetByID(ctx, did)
		if err != nil {
			return err
		}
		parents, err := st.Decks.ParentsOf(ctx, did)
		if err != nil {
			return err
		}
		children, err := st.Decks.ChildrenOf(ctx, did)
		if err != nil {
			return err
		}
		decks := append(append([]*domain.Deck{cur}, parents...), children...)
		for _, d := range decks {
			d.NewToday.Add(s.today, -newDelta)
			d.RevToday.Add(s.today, -revDelta)
			d.Mod = s.now()
			if err := st.Decks.Save(ctx, d); err != nil {
				return fmt.Errorf("saving %q: %w", d.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("extending limits: %w", err)
	}
	s.invalidate()
	return nil
}

// SelectDeck makes deckID the current deck and rebuilds the session
// around it and its subdecks.
func (s *Scheduler) SelectDeck(ctx context.Context, deckID int64) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := StoresFor(tx)
		if _, err := st.Decks.GetByID(ctx, deckID); err != nil {
			return err
		}
		col, err := st.Collection.Get(ctx)
		if err != nil {
			return err
		}
		col.CurrentDeckID = deckID
		return st.Collection.Upsert(ctx, col)
	})
	if err != nil {
		return fmt.Errorf("selecting deck %d: %w", deckID, err)
	}
	return s.Reset(ctx)
}
