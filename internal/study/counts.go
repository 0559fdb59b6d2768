package study

import (
	"context"
	"fmt"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/scheduler"
)

// Count indexes, as returned by CountIdx.
const (
	CountIdxNew = iota
	CountIdxLearning
	CountIdxReview
)

// Counts returns what is left to study in the current deck this session.
func (s *Scheduler) Counts(ctx context.Context) (domain.Counts, error) {
	if err := s.ensureQueues(ctx); err != nil {
		return domain.Counts{}, err
	}
	return domain.Counts{New: s.newCount, Learning: s.lrnCount, Review: s.revCount}.NonNegative(), nil
}

// CountsFor is Counts with the card being shown added back in, so the
// displayed totals include it.
func (s *Scheduler) CountsFor(ctx context.Context, c *domain.Card) (domain.Counts, error) {
	counts, err := s.Counts(ctx)
	if err != nil {
		return counts, err
	}
	switch s.CountIdx(c) {
	case CountIdxNew:
		counts.New++
	case CountIdxLearning:
		if s.variant.LearnCountBySteps && c.Queue == domain.QueueLearning {
			counts.Learning += c.StepsLeftToday()
		} else {
			counts.Learning++
		}
	case CountIdxReview:
		counts.Review++
	}
	return counts, nil
}

// CountIdx tells which count a card is shown under.
func (s *Scheduler) CountIdx(c *domain.Card) int {
	switch c.Queue {
	case domain.QueueLearning, domain.QueueDayLearn, domain.QueuePreview:
		return CountIdxLearning
	case domain.QueueReview:
		return CountIdxReview
	}
	return CountIdxNew
}

// DeckDueList computes the due counts of every deck, each clamped to its
// own and its parents' remaining allowance. Cancelling ctx aborts with
// ErrTreeUnavailable.
func (s *Scheduler) DeckDueList(ctx context.Context) ([]scheduler.DeckCountRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTreeUnavailable, err)
	}
	if err := s.ensureQueues(ctx); err != nil {
		return nil, err
	}
	decks, err := s.stores.Decks.AllSorted(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}

	type limits struct{ new, rev int }
	lims := make(map[string]limits, len(decks))
	rows := make([]scheduler.DeckCountRow, 0, len(decks))
	for _, d := range decks {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrTreeUnavailable, err)
		}
		nlim, err := s.deckNewLimitSingle(ctx, d)
		if err != nil {
			return nil, err
		}
		rlim, err := s.deckRevLimitSingle(ctx, d)
		if err != nil {
			return nil, err
		}
		if p, ok := lims[domain.ParentDeckName(d.Name)]; ok {
			nlim = min(nlim, p.new)
			rlim = min(rlim, p.rev)
		}

		row := scheduler.DeckCountRow{Name: d.Name, DeckID: d.ID, NewLimit: nlim, ReviewLimit: rlim}
		if row.New, err = s.newForDeck(ctx, d.ID, nlim); err != nil {
			return nil, fmt.Errorf("counting new cards of %q: %w", d.Name, err)
		}
		if row.Learning, err = s.lrnForDeck(ctx, d.ID); err != nil {
			return nil, fmt.Errorf("counting learning cards of %q: %w", d.Name, err)
		}
		if row.Review, err = s.revForDeckTree(ctx, d, rlim); err != nil {
			return nil, fmt.Errorf("counting review cards of %q: %w", d.Name, err)
		}
		rows = append(rows, row)
		lims[d.Name] = limits{new: nlim, rev: rlim}
	}
	return rows, nil
}

// DeckDueTree folds DeckDueList into the deck hierarchy.
func (s *Scheduler) DeckDueTree(ctx context.Context) (*scheduler.DueTree, error) {
	rows, err := s.DeckDueList(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.BuildDueTree(rows, scheduler.TreeOptions{
		RollUpReview: s.variant.RollUpReview,
		Logger:       s.logger,
	}), nil
}

func (s *Scheduler) lrnForDeck(ctx context.Context, did int64) (int, error) {
	cutoff := s.now().Unix() + int64(s.col.CollapseTime)
	return s.learningCount(ctx, []int64{did}, cutoff)
}

// revForDeckTree counts due reviews for one deck row. Without review
// roll-up the row already includes every subdeck.
func (s *Scheduler) revForDeckTree(ctx context.Context, d *domain.Deck, lim int) (int, error) {
	if s.variant.RollUpReview {
		return s.revForDeck(ctx, d.ID, lim)
	}
	if lim <= 0 {
		return 0, nil
	}
	children, err := s.stores.Decks.ChildrenOf(ctx, d.ID)
	if err != nil {
		return 0, err
	}
	dids := []int64{d.ID}
	for _, c := range children {
		dids = append(dids, c.ID)
	}
	return s.stores.Cards.Count(ctx, repository.CardQuery{
		DeckIDs:   dids,
		Queues:    []domain.QueueType{domain.QueueReview},
		DueAtMost: repository.Int64(int64(s.today)),
		Limit:     min(lim, reportLimit),
	})
}
