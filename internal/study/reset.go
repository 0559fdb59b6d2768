package study

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
)

// Reset reloads the collection settings, rolls the day if needed and
// rebuilds every queue and count from the store.
func (s *Scheduler) Reset(ctx context.Context) error {
	col, err := s.stores.Collection.Get(ctx)
	if err != nil {
		return fmt.Errorf("loading collection: %w", err)
	}
	s.col = col
	if err := s.updateCutoff(ctx); err != nil {
		return err
	}
	if err := s.loadActiveDecks(ctx); err != nil {
		return err
	}
	if err := s.resetLrn(ctx); err != nil {
		return err
	}
	if err := s.resetRev(ctx); err != nil {
		return err
	}
	if err := s.resetNew(ctx); err != nil {
		return err
	}
	s.haveQueues = true
	s.logger.Debug("queues reset",
		"deck_id", s.col.CurrentDeckID, "today", s.today,
		"new", s.newCount, "learning", s.lrnCount, "review", s.revCount)
	return nil
}

func (s *Scheduler) ensureQueues(ctx context.Context) error {
	if !s.haveQueues {
		return s.Reset(ctx)
	}
	return s.checkDay(ctx)
}

// loadActiveDecks resolves the current deck and its descendants. A current
// deck that no longer exists falls back to the default deck.
func (s *Scheduler) loadActiveDecks(ctx context.Context) error {
	current, err := s.stores.Decks.GetByID(ctx, s.col.CurrentDeckID)
	if errors.Is(err, repository.ErrNotFound) {
		s.col.CurrentDeckID = domain.DefaultDeckID
		current, err = s.stores.Decks.GetByID(ctx, domain.DefaultDeckID)
	}
	if err != nil {
		return fmt.Errorf("loading current deck: %w", err)
	}
	children, err := s.stores.Decks.ChildrenOf(ctx, current.ID)
	if err != nil {
		return fmt.Errorf("loading subdecks of %q: %w", current.Name, err)
	}
	s.active = make([]int64, 0, len(children)+1)
	s.active = append(s.active, current.ID)
	for _, c := range children {
		s.active = append(s.active, c.ID)
	}
	return nil
}

func (s *Scheduler) resetNew(ctx context.Context) error {
	if err := s.resetNewCount(ctx); err != nil {
		return err
	}
	s.newDids = append([]int64(nil), s.active...)
	s.newQueue.Clear()
	s.updateNewCardRatio()
	return nil
}

func (s *Scheduler) resetNewCount(ctx context.Context) error {
	n, err := s.walkingCount(ctx, s.deckNewLimitSingle, s.newForDeck)
	if err != nil {
		return fmt.Errorf("counting new cards: %w", err)
	}
	s.newCount = n
	return nil
}

func (s *Scheduler) resetRev(ctx context.Context) error {
	if err := s.resetRevCount(ctx); err != nil {
		return err
	}
	s.revDids = append([]int64(nil), s.active...)
	s.revQueue.Clear()
	return nil
}

func (s *Scheduler) resetRevCount(ctx context.Context) error {
	if s.variant.RollUpReview {
		n, err := s.walkingCount(ctx, s.deckRevLimitSingle, s.revForDeck)
		if err != nil {
			return fmt.Errorf("counting review cards: %w", err)
		}
		s.revCount = n
		return nil
	}
	lim, err := s.currentRevLimit(ctx)
	if err != nil {
		return err
	}
	if lim == 0 {
		s.revCount = 0
		return nil
	}
	n, err := s.stores.Cards.Count(ctx, repository.CardQuery{
		DeckIDs:   s.active,
		Queues:    []domain.QueueType{domain.QueueReview},
		DueAtMost: repository.Int64(int64(s.today)),
		Limit:     min(lim, reportLimit),
	})
	if err != nil {
		return fmt.Errorf("counting review cards: %w", err)
	}
	s.revCount = n
	return nil
}

func (s *Scheduler) resetLrn(ctx context.Context) error {
	s.updateLrnCutoff(true)
	if err := s.resetLrnCount(ctx); err != nil {
		return err
	}
	s.lrnQueue.Clear()
	s.lrnDayQueue.Clear()
	s.lrnDids = append([]int64(nil), s.active...)
	return nil
}

func (s *Scheduler) maybeResetLrn(ctx context.Context, force bool) error {
	if s.updateLrnCutoff(force) {
		return s.resetLrn(ctx)
	}
	return nil
}

func (s *Scheduler) resetLrnCount(ctx context.Context) error {
	n, err := s.learningCount(ctx, s.active, s.lrnCutoff)
	if err != nil {
		return fmt.Errorf("counting learning cards: %w", err)
	}
	s.lrnCount = n
	return nil
}

// learningCount counts learning work in decks: sub-day cards due before
// cutoff, day-learning cards due today and, with the preview queue,
// previewed cards.
func (s *Scheduler) learningCount(ctx context.Context, decks []int64, cutoff int64) (int, error) {
	subDay := repository.CardQuery{
		DeckIDs:   decks,
		Queues:    []domain.QueueType{domain.QueueLearning},
		DueBefore: repository.Int64(cutoff),
		Limit:     reportLimit,
	}
	var n int
	var err error
	if s.variant.LearnCountBySteps {
		subDay.DueBefore = repository.Int64(s.dayCutoff)
		n, err = s.stores.Cards.SumStepsToday(ctx, subDay)
	} else {
		n, err = s.stores.Cards.Count(ctx, subDay)
	}
	if err != nil {
		return 0, err
	}
	day, err := s.stores.Cards.Count(ctx, repository.CardQuery{
		DeckIDs:   decks,
		Queues:    []domain.QueueType{domain.QueueDayLearn},
		DueAtMost: repository.Int64(int64(s.today)),
		Limit:     reportLimit,
	})
	if err != nil {
		return 0, err
	}
	n += day
	if s.variant.PreviewQueue {
		preview, err := s.stores.Cards.Count(ctx, repository.CardQuery{
			DeckIDs:   decks,
			Queues:    []domain.QueueType{domain.QueuePreview},
			DueBefore: repository.Int64(cutoff),
			Limit:     reportLimit,
		})
		if err != nil {
			return 0, err
		}
		n += preview
	}
	return n, nil
}

// Daily limits.

type limitFunc func(ctx context.Context, d *domain.Deck) (int, error)

type countFunc func(ctx context.Context, did int64, lim int) (int, error)

func (s *Scheduler) deckNewLimitSingle(ctx context.Context, d *domain.Deck) (int, error) {
	if d.Dyn {
		return dynReportLimit, nil
	}
	conf, err := s.stores.Decks.ConfigForDeck(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("loading options of %q: %w", d.Name, err)
	}
	return max(0, conf.New.PerDay-d.NewToday.On(s.today)), nil
}

func (s *Scheduler) deckRevLimitSingle(ctx context.Context, d *domain.Deck) (int, error) {
	if d.Dyn {
		return dynReportLimit, nil
	}
	conf, err := s.stores.Decks.ConfigForDeck(ctx, d)
	if err != nil {
		return 0, fmt.Errorf("loading options of %q: %w", d.Name, err)
	}
	return max(0, conf.Rev.PerDay-d.RevToday.On(s.today)), nil
}

// deckLimit is the smallest remaining allowance of the deck and its
// ancestors.
func (s *Scheduler) deckLimit(ctx context.Context, did int64, single limitFunc) (int, error) {
	d, err := s.stores.Decks.GetByID(ctx, did)
	if err != nil {
		return 0, err
	}
	lim, err := single(ctx, d)
	if err != nil {
		return 0, err
	}
	parents, err := s.stores.Decks.ParentsOf(ctx, did)
	if err != nil {
		return 0, err
	}
	for _, p := range parents {
		pl, err := single(ctx, p)
		if err != nil {
			return 0, err
		}
		lim = min(lim, pl)
	}
	return lim, nil
}

func (s *Scheduler) currentRevLimit(ctx context.Context) (int, error) {
	lim, err := s.deckLimit(ctx, s.col.CurrentDeckID, s.deckRevLimitSingle)
	if err != nil {
		return 0, fmt.Errorf("computing review limit: %w", err)
	}
	return lim, nil
}

func (s *Scheduler) newForDeck(ctx context.Context, did int64, lim int) (int, error) {
	if lim <= 0 {
		return 0, nil
	}
	return s.stores.Cards.Count(ctx, repository.CardQuery{
		DeckIDs: []int64{did},
		Queues:  []domain.QueueType{domain.QueueNew},
		Limit:   min(lim, reportLimit),
	})
}

func (s *Scheduler) revForDeck(ctx context.Context, did int64, lim int) (int, error) {
	if lim <= 0 {
		return 0, nil
	}
	return s.stores.Cards.Count(ctx, repository.CardQuery{
		DeckIDs:   []int64{did},
		Queues:    []domain.QueueType{domain.QueueReview},
		DueAtMost: repository.Int64(int64(s.today)),
		Limit:     min(lim, reportLimit),
	})
}

// walkingCount sums cntFn over the active decks while charging each deck's
// count against the remaining allowance of all its ancestors, so a parent
// limit caps its whole subtree.
func (s *Scheduler) walkingCount(ctx context.Context, limFn limitFunc, cntFn countFunc) (int, error) {
	tot := 0
	remaining := make(map[int64]int)
	for _, did := range s.active {
		d, err := s.stores.Decks.GetByID(ctx, did)
		if err != nil {
			return 0, err
		}
		lim, err := limFn(ctx, d)
		if err != nil {
			return 0, err
		}
		if lim == 0 {
			continue
		}
		parents, err := s.stores.Decks.ParentsOf(ctx, did)
		if err != nil {
			return 0, err
		}
		for _, p := range parents {
			if _, ok := remaining[p.ID]; !ok {
				pl, err := limFn(ctx, p)
				if err != nil {
					return 0, err
				}
				remaining[p.ID] = pl
			}
			lim = min(lim, remaining[p.ID])
		}
		cnt, err := cntFn(ctx, did, lim)
		if err != nil {
			return 0, err
		}
		for _, p := range parents {
			remaining[p.ID] -= cnt
		}
		remaining[did] = lim - cnt
		tot += cnt
	}
	return tot, nil
}

func (s *Scheduler) updateNewCardRatio() {
	s.newCardModulus = 0
	if s.col.NewSpread != domain.NewSpreadDistribute || s.newCount == 0 {
		return
	}
	s.newCardModulus = (s.newCount + s.revCount) / s.newCount
	if s.revCount != 0 {
		s.newCardModulus = max(2, s.newCardModulus)
	}
}

// timeForNewCard reports whether the next card should be a new one when
// new cards are mixed in with reviews.
func (s *Scheduler) timeForNewCard() bool {
	if s.newCount == 0 {
		return false
	}
	switch s.col.NewSpread {
	case domain.NewSpreadLast:
		return false
	case domain.NewSpreadFirst:
		return true
	}
	return s.newCardModulus != 0 && s.reps != 0 && s.reps%s.newCardModulus == 0
}
