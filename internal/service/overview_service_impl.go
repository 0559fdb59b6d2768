package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/scheduler"
	"github.com/alexanderramin/mnemo/internal/study"
	"golang.org/x/sync/errgroup"
)

type overviewService struct {
	sched    *study.Scheduler
	revlog   repository.RevlogRepo
	now      func() time.Time
	observer UseCaseObserver
}

func NewOverviewService(sched *study.Scheduler, revlog repository.RevlogRepo, observers ...UseCaseObserver) OverviewService {
	return &overviewService{
		sched:    sched,
		revlog:   revlog,
		now:      time.Now,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Overview builds the deck tree and reads the review history alongside.
// The scheduler is only touched from the calling goroutine.
func (s *overviewService) Overview(ctx context.Context) (ov *Overview, err error) {
	fields := map[string]any{}
	defer observe(ctx, s.observer, "overview", fields, time.Now(), &err)

	// Counting first settles the study day for the tree and the history reads.
	counts, err := s.sched.Counts(ctx)
	if err != nil {
		return nil, err
	}
	dayStart := s.sched.DayCutoff().Add(-24 * time.Hour)
	tree, err := s.sched.DeckDueTree(ctx)
	if err != nil {
		return nil, err
	}

	var (
		stats    []domain.RevlogTypeStat
		reviewed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		since := s.now().Add(-scheduler.ETAWindowDays * 24 * time.Hour).UnixMilli()
		rows, err := s.revlog.StatsSince(gctx, since)
		if err != nil {
			return fmt.Errorf("loading review statistics: %w", err)
		}
		stats = rows
		n, err := s.revlog.CountSince(gctx, dayStart.UnixMilli())
		if err != nil {
			return fmt.Errorf("counting recent reviews: %w", err)
		}
		reviewed = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ov = &Overview{
		Tree:          tree,
		Counts:        counts,
		ETAMinutes:    scheduler.EstimateMinutes(counts, scheduler.ETARatesFromStats(stats)),
		ReviewedToday: reviewed,
		Stats:         stats,
	}
	fields["decks"] = len(tree.Nodes)
	fields["eta_min"] = ov.ETAMinutes
	return ov, nil
}
