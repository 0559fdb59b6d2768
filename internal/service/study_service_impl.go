package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/study"
)

type studyService struct {
	sched    *study.Scheduler
	cards    repository.CardRepo
	notes    repository.NoteRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewStudyService(
	sched *study.Scheduler,
	cards repository.CardRepo,
	notes repository.NoteRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) StudyService {
	return &studyService{
		sched:    sched,
		cards:    cards,
		notes:    notes,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
	}
}

// Configure stores the collection-wide study settings and rebuilds the
// session with them.
func (s *studyService) Configure(ctx context.Context, settings CollectionSettings) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		cols := repository.NewSQLiteCollectionRepo(tx)
		col, err := cols.Get(ctx)
		if err != nil {
			return err
		}
		col.RolloverHour = settings.RolloverHour
		col.CollapseTime = int(settings.CollapseTime / time.Second)
		col.DayLearnFirst = settings.DayLearnFirst
		if settings.NewSpread != "" {
			col.NewSpread = settings.NewSpread
		}
		return cols.Upsert(ctx, col)
	})
	if err != nil {
		return fmt.Errorf("saving study settings: %w", err)
	}
	return s.sched.Reset(ctx)
}

func (s *studyService) SelectDeck(ctx context.Context, deckID int64) (err error) {
	defer observe(ctx, s.observer, "select-deck", map[string]any{"deck_id": deckID}, time.Now(), &err)
	return s.sched.SelectDeck(ctx, deckID)
}

func (s *studyService) CurrentDeckID() int64 {
	return s.sched.CurrentDeckID()
}

func (s *studyService) Next(ctx context.Context) (*StudyCard, error) {
	card, err := s.sched.GetCard(ctx)
	if err != nil {
		return nil, err
	}
	note, err := s.notes.GetByID(ctx, card.NoteID)
	if err != nil {
		return nil, fmt.Errorf("loading note of card %d: %w", card.ID, err)
	}
	counts, err := s.sched.CountsFor(ctx, card)
	if err != nil {
		return nil, err
	}
	grades, err := s.sched.AllowedGrades(ctx, card)
	if err != nil {
		return nil, err
	}
	intervals, err := s.intervals(ctx, card, grades)
	if err != nil {
		return nil, err
	}
	return &StudyCard{Card: card, Note: note, Counts: counts, Grades: grades, Intervals: intervals}, nil
}

func (s *studyService) intervals(ctx context.Context, card *domain.Card, grades []domain.Grade) (map[domain.Grade]time.Duration, error) {
	out := make(map[domain.Grade]time.Duration, len(grades))
	for _, g := range grades {
		ivl, err := s.sched.NextInterval(ctx, card, g)
		if err != nil {
			return nil, fmt.Errorf("previewing %s: %w", g, err)
		}
		out[g] = ivl
	}
	return out, nil
}

func (s *studyService) Answer(ctx context.Context, cardID int64, grade domain.Grade, took time.Duration) (card *domain.Card, err error) {
	fields := map[string]any{"card_id": cardID, "grade": grade.String()}
	defer observe(ctx, s.observer, "answer-card", fields, time.Now(), &err)

	card, err = s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	fields["queue"] = card.Queue.String()
	if err = s.sched.AnswerCard(ctx, card, grade, took); err != nil {
		return nil, err
	}
	fields["ivl"] = card.Ivl
	return card, nil
}

func (s *studyService) Preview(ctx context.Context, cardID int64) (map[domain.Grade]time.Duration, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}
	grades, err := s.sched.AllowedGrades(ctx, card)
	if err != nil {
		return nil, err
	}
	return s.intervals(ctx, card, grades)
}

func (s *studyService) Counts(ctx context.Context) (domain.Counts, error) {
	return s.sched.Counts(ctx)
}

func (s *studyService) Finished(ctx context.Context) (*study.Finished, error) {
	return s.sched.Finished(ctx)
}

func (s *studyService) Suspend(ctx context.Context, ids ...int64) (n int, err error) {
	defer observe(ctx, s.observer, "suspend-cards", map[string]any{"cards": len(ids)}, time.Now(), &err)
	return s.sched.SuspendCards(ctx, ids)
}

func (s *studyService) Unsuspend(ctx context.Context, ids ...int64) (n int, err error) {
	defer observe(ctx, s.observer, "unsuspend-cards", map[string]any{"cards": len(ids)}, time.Now(), &err)
	return s.sched.UnsuspendCards(ctx, ids)
}

func (s *studyService) Bury(ctx context.Context, ids ...int64) (n int, err error) {
	defer observe(ctx, s.observer, "bury-cards", map[string]any{"cards": len(ids)}, time.Now(), &err)
	return s.sched.BuryCards(ctx, ids, true)
}

func (s *studyService) BuryNote(ctx context.Context, noteID int64) (n int, err error) {
	defer observe(ctx, s.observer, "bury-note", map[string]any{"note_id": noteID}, time.Now(), &err)
	return s.sched.BuryNote(ctx, noteID)
}

// Unbury restores buried cards of a deck tree, or of the whole collection
// when deckID is zero.
func (s *studyService) Unbury(ctx context.Context, deckID int64, scope domain.UnburyScope) (n int, err error) {
	defer observe(ctx, s.observer, "unbury-cards", map[string]any{"deck_id": deckID, "scope": string(scope)}, time.Now(), &err)
	if deckID == 0 {
		if scope != domain.UnburyAll && scope != "" {
			return 0, errors.New("collection-wide unbury restores every buried card")
		}
		return s.sched.UnburyCards(ctx)
	}
	return s.sched.UnburyCardsForDeck(ctx, deckID, scope)
}

func (s *studyService) Forget(ctx context.Context, ids ...int64) (n int, err error) {
	defer observe(ctx, s.observer, "forget-cards", map[string]any{"cards": len(ids)}, time.Now(), &err)
	return s.sched.ForgetCards(ctx, ids)
}

func (s *studyService) Resched(ctx context.Context, minDays, maxDays int, ids ...int64) (n int, err error) {
	fields := map[string]any{"cards": len(ids), "min_days": minDays, "max_days": maxDays}
	defer observe(ctx, s.observer, "resched-cards", fields, time.Now(), &err)
	return s.sched.ReschedCards(ctx, ids, minDays, maxDays)
}

func (s *studyService) ExtendLimits(ctx context.Context, newDelta, revDelta int) (err error) {
	defer observe(ctx, s.observer, "extend-limits", map[string]any{"new": newDelta, "review": revDelta}, time.Now(), &err)
	return s.sched.ExtendLimits(ctx, newDelta, revDelta)
}

func (s *studyService) RebuildFiltered(ctx context.Context, deckID int64) (n int, err error) {
	fields := map[string]any{"deck_id": deckID}
	defer observe(ctx, s.observer, "rebuild-filtered", fields, time.Now(), &err)
	n, err = s.sched.RebuildFiltered(ctx, deckID)
	fields["cards"] = n
	return n, err
}

func (s *studyService) EmptyFiltered(ctx context.Context, deckID int64) (n int, err error) {
	defer observe(ctx, s.observer, "empty-filtered", map[string]any{"deck_id": deckID}, time.Now(), &err)
	return s.sched.EmptyFiltered(ctx, deckID)
}
