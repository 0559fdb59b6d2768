package study

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/alexanderramin/mnemo/internal/db"
	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	db     *sql.DB
	clock  *testutil.Clock
	stores Stores
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		db:     database,
		clock:  testutil.NewClock(sessionStart),
		stores: StoresFor(database),
	}
	ctx := context.Background()
	col, err := f.stores.Collection.Get(ctx)
	require.NoError(t, err)
	col.CreatedAt = sessionStart
	require.NoError(t, f.stores.Collection.Upsert(ctx, col))
	return f
}

func (f *fixture) scheduler(uow db.UnitOfWork, opts ...Option) *Scheduler {
	all := append([]Option{
		WithClock(f.clock.Now),
		WithRand(rand.New(rand.NewSource(7))),
	}, opts...)
	return NewScheduler(f.stores, uow, all...)
}

func newTestScheduler(t *testing.T, opts ...Option) (*Scheduler, *fixture) {
	t.Helper()
	f := newFixture(t)
	return f.scheduler(testutil.NewTestUoW(f.db), opts...), f
}

func (f *fixture) addNote(t *testing.T, front string, opts ...testutil.NoteOption) *domain.Note {
	t.Helper()
	n := testutil.NewTestNote(front, opts...)
	require.NoError(t, f.stores.Notes.Create(context.Background(), n))
	return n
}

func (f *fixture) addCard(t *testing.T, noteID int64, opts ...testutil.CardOption) *domain.Card {
	t.Helper()
	c := testutil.NewTestCard(noteID, opts...)
	require.NoError(t, f.stores.Cards.Create(context.Background(), c))
	return c
}

// addCards creates n single-card notes.
func (f *fixture) addCards(t *testing.T, n int, opts ...testutil.CardOption) []*domain.Card {
	t.Helper()
	out := make([]*domain.Card, n)
	for i := range out {
		out[i] = f.addCard(t, f.addNote(t, "front").ID, opts...)
	}
	return out
}

func (f *fixture) card(t *testing.T, id int64) *domain.Card {
	t.Helper()
	c, err := f.stores.Cards.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (f *fixture) editDefaultConfig(t *testing.T, edit func(*domain.DeckConfig)) {
	t.Helper()
	ctx := context.Background()
	conf, err := f.stores.Decks.GetConfig(ctx, domain.DefaultConfigID)
	require.NoError(t, err)
	edit(conf)
	require.NoError(t, f.stores.Decks.SaveConfig(ctx, conf))
}

func counts(t *testing.T, s *Scheduler) domain.Counts {
	t.Helper()
	c, err := s.Counts(context.Background())
	require.NoError(t, err)
	return c
}

func TestScheduler_EmptyCollectionHasNoCard(t *testing.T) {
	s, _ := newTestScheduler(t)

	_, err := s.GetCard(context.Background())

	assert.ErrorIs(t, err, ErrNoCard)
	assert.Equal(t, domain.Counts{}, counts(t, s))
}

func TestScheduler_DayNumbersFollowRollover(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()

	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, 0, s.Today())
	assert.Equal(t, time.Date(2026, 3, 3, 4, 0, 0, 0, time.UTC), s.DayCutoff().UTC())

	// 03:59 next morning is still day 0; 04:00 starts day 1.
	f.clock.Set(time.Date(2026, 3, 3, 3, 59, 0, 0, time.UTC))
	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, 0, s.Today())

	f.clock.Set(time.Date(2026, 3, 3, 4, 0, 0, 0, time.UTC))
	require.NoError(t, s.Reset(ctx))
	assert.Equal(t, 1, s.Today())
}

func TestScheduler_CutoffStartsNewDay(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	f.addCards(t, 1)
	require.NoError(t, s.Reset(ctx))
	require.Equal(t, 0, s.Today())

	f.clock.Set(s.DayCutoff())
	_, err := s.Counts(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, s.Today())
	assert.Equal(t, time.Date(2026, 3, 4, 4, 0, 0, 0, time.UTC), s.DayCutoff().UTC())
}

func TestScheduler_RepsAndRevlogGrowWithEveryAnswer(t *testing.T) {
	for _, v := range []Variant{VariantStd(), VariantV2()} {
		t.Run(v.Name, func(t *testing.T) {
			s, f := newTestScheduler(t, WithVariant(v))
			ctx := context.Background()
			card := f.addCards(t, 1)[0]

			for i := 1; i <= 3; i++ {
				got, err := s.GetCard(ctx)
				require.NoError(t, err)
				require.Equal(t, card.ID, got.ID)
				require.NoError(t, s.AnswerCard(ctx, got, domain.GradeAgain, 4*time.Second))

				assert.Equal(t, i, got.Reps)
				logs, err := f.stores.Revlog.ListByCard(ctx, card.ID)
				require.NoError(t, err)
				assert.Len(t, logs, i)
			}
			assert.Equal(t, 3, s.Reps())
		})
	}
}

func TestScheduler_CountsMatchCardsDrawn(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	f.addCards(t, 5)

	seen := map[int64]bool{}
	for i := 0; ; i++ {
		c := counts(t, s)
		assert.Equal(t, 5-i, c.New)
		assert.Zero(t, c.Learning)
		assert.Zero(t, c.Review)

		card, err := s.GetCard(ctx)
		if errors.Is(err, ErrNoCard) {
			break
		}
		require.NoError(t, err)
		require.False(t, seen[card.ID], "card %d drawn twice", card.ID)
		seen[card.ID] = true
		require.NoError(t, s.AnswerCard(ctx, card, domain.GradeEasy, time.Second))
	}
	assert.Len(t, seen, 5)
}

func TestScheduler_FiveNewCardsWithoutSteps(t *testing.T) {
	s, f := newTestScheduler(t, WithVariant(VariantStd()))
	ctx := context.Background()
	f.editDefaultConfig(t, func(c *domain.DeckConfig) { c.New.Delays = []float64{} })
	f.addCards(t, 5)

	assert.Equal(t, domain.Counts{New: 5}, counts(t, s))

	card, err := s.GetCard(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Counts{New: 4}, counts(t, s))

	buttons, err := s.AnswerButtons(ctx, card)
	require.NoError(t, err)
	assert.Equal(t, 3, buttons)

	require.NoError(t, s.AnswerCard(ctx, card, domain.GradeGood, 3*time.Second))

	stored := f.card(t, card.ID)
	assert.Equal(t, domain.CardReview, stored.Type)
	assert.Equal(t, domain.QueueReview, stored.Queue)
	assert.Equal(t, 1, stored.Ivl)
	assert.Equal(t, int64(s.Today()+1), stored.Due)
	assert.Equal(t, domain.StartingFactor, stored.Factor)
	assert.Equal(t, domain.Counts{New: 4}, counts(t, s))
}

func TestScheduler_LearningStepsThenGraduation(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	card := f.addCards(t, 1)[0]

	got, err := s.GetCard(ctx)
	require.NoError(t, err)
	require.NoError(t, s.AnswerCard(ctx, got, domain.GradeGood, time.Second))

	assert.Equal(t, domain.QueueLearning, got.Queue)
	assert.Equal(t, 1, got.StepsLeft())
	// Second step is 10 minutes plus at most 150s of fuzz.
	wait := time.Unix(got.Due, 0).Sub(f.clock.Now())
	assert.GreaterOrEqual(t, wait, 10*time.Minute)
	assert.Less(t, wait, 13*time.Minute)
	assert.Equal(t, domain.Counts{Learning: 1}, counts(t, s))

	f.clock.Advance(15 * time.Minute)
	got, err = s.GetCard(ctx)
	require.NoError(t, err)
	require.Equal(t, card.ID, got.ID)
	require.NoError(t, s.AnswerCard(ctx, got, domain.GradeGood, time.Second))

	assert.Equal(t, domain.QueueReview, got.Queue)
	assert.Equal(t, 1, got.Ivl)
	logs, err := f.stores.Revlog.ListByCard(ctx, card.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, domain.RevlogLearn, logs[1].Type)
	assert.Equal(t, 1, logs[1].Ivl)
	assert.Equal(t, -600, logs[1].LastIvl)

	_, err = s.GetCard(ctx)
	assert.ErrorIs(t, err, ErrNoCard)
}

func TestScheduler_ReviewPassAndLapse(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	pass := f.addCards(t, 1, testutil.AsReview(0, 10))[0]
	lapse := f.addCards(t, 1, testutil.AsReview(0, 10))[0]
	assert.Equal(t, domain.Counts{Review: 2}, counts(t, s))

	for range 2 {
		card, err := s.GetCard(ctx)
		require.NoError(t, err)
		grade := domain.GradeGood
		if card.ID == lapse.ID {
			grade = domain.GradeAgain
		}
		require.NoError(t, s.AnswerCard(ctx, card, grade, time.Second))
	}

	passed := f.card(t, pass.ID)
	assert.Equal(t, domain.QueueReview, passed.Queue)
	assert.GreaterOrEqual(t, passed.Ivl, 22)
	assert.LessOrEqual(t, passed.Ivl, 28)
	assert.Equal(t, domain.StartingFactor, passed.Factor)

	lapsed := f.card(t, lapse.ID)
	assert.Equal(t, domain.CardRelearning, lapsed.Type)
	assert.Equal(t, domain.QueueLearning, lapsed.Queue)
	assert.Equal(t, 1, lapsed.Lapses)
	assert.Equal(t, domain.StartingFactor-200, lapsed.Factor)
	assert.Equal(t, 1, lapsed.Ivl)

	logs, err := f.stores.Revlog.ListByCard(ctx, lapse.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.RevlogReview, logs[0].Type)
	assert.Equal(t, -600, logs[0].Ivl)
	assert.Equal(t, 10, logs[0].LastIvl)
}

func TestScheduler_RelearningReturnsToStashedDue(t *testing.T) {
	tests := []struct {
		name    string
		wait    int
		wantDue int64
	}{
		{name: "graduates on the lapse due", wait: 2, wantDue: 5},
		{name: "never before tomorrow", wait: 6, wantDue: 7},
	}
	for _, v := range []Variant{VariantStd(), VariantV2()} {
		for _, tt := range tests {
			t.Run(v.Name+"/"+tt.name, func(t *testing.T) {
				s, f := newTestScheduler(t, WithVariant(v))
				ctx := context.Background()
				f.editDefaultConfig(t, func(c *domain.DeckConfig) {
					c.Lapse.Delays = []float64{2880}
					c.Lapse.Mult = 0.5
				})
				card := f.addCards(t, 1, testutil.AsReview(0, 10))[0]

				got, err := s.GetCard(ctx)
				require.NoError(t, err)
				require.NoError(t, s.AnswerCard(ctx, got, domain.GradeAgain, time.Second))

				lapsed := f.card(t, card.ID)
				assert.Equal(t, domain.QueueDayLearn, lapsed.Queue)
				assert.Equal(t, 5, lapsed.Ivl)
				assert.Equal(t, int64(2), lapsed.Due)
				assert.Equal(t, int64(5), lapsed.ODue, "lapse due is stashed")
				assert.Zero(t, lapsed.ODid)

				f.clock.Advance(time.Duration(tt.wait) * 24 * time.Hour)
				got, err = s.GetCard(ctx)
				require.NoError(t, err)
				require.Equal(t, card.ID, got.ID)

				preview, err := s.NextInterval(ctx, got, domain.GradeGood)
				require.NoError(t, err)
				assert.Equal(t, time.Duration(tt.wantDue-int64(tt.wait))*24*time.Hour, preview)

				require.NoError(t, s.AnswerCard(ctx, got, domain.GradeGood, time.Second))

				graduated := f.card(t, card.ID)
				assert.Equal(t, domain.QueueReview, graduated.Queue)
				assert.Equal(t, 5, graduated.Ivl)
				assert.Equal(t, tt.wantDue, graduated.Due)
				assert.Zero(t, graduated.ODue)
			})
		}
	}
}

func TestScheduler_RelearningStashSurvivesSecondLapse(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	f.editDefaultConfig(t, func(c *domain.DeckConfig) {
		c.Lapse.Delays = []float64{2880}
		c.Lapse.Mult = 0.5
	})
	card := f.addCards(t, 1, testutil.AsReview(0, 10))[0]

	got, err := s.GetCard(ctx)
	require.NoError(t, err)
	require.NoError(t, s.AnswerCard(ctx, got, domain.GradeAgain, time.Second))

	f.clock.Advance(48 * time.Hour)
	got, err = s.GetCard(ctx)
	require.NoError(t, err)
	require.NoError(t, s.AnswerCard(ctx, got, domain.GradeAgain, time.Second))

	assert.Equal(t, int64(5), f.card(t, card.ID).ODue)
}

func TestScheduler_AnswerRejectsInvalidInput(t *testing.T) {
	s, f := newTestScheduler(t, WithVariant(VariantStd()))
	ctx := context.Background()
	card := f.addCards(t, 1)[0]

	err := s.AnswerCard(ctx, card, domain.GradeHard, time.Second)
	assert.ErrorIs(t, err, ErrInvalidQueueTransition)

	card.Queue = domain.QueueSuspended
	err = s.AnswerCard(ctx, card, domain.GradeGood, time.Second)
	assert.ErrorIs(t, err, ErrInvalidQueueTransition)

	assert.Equal(t, domain.QueueNew, f.card(t, card.ID).Queue)
}

func TestScheduler_LeechThreshold(t *testing.T) {
	tests := []struct {
		name          string
		lapsesBefore  int
		wantLeech     bool
		wantSuspended bool
	}{
		{name: "eighth lapse", lapsesBefore: 7, wantLeech: true, wantSuspended: true},
		{name: "ninth lapse", lapsesBefore: 8},
		{name: "twelfth lapse", lapsesBefore: 11, wantLeech: true, wantSuspended: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, f := newTestScheduler(t)
			ctx := context.Background()
			f.editDefaultConfig(t, func(c *domain.DeckConfig) { c.Lapse.LeechAction = domain.LeechSuspend })
			note := f.addNote(t, "tricky")
			f.addCard(t, note.ID, testutil.AsReview(0, 5), testutil.WithLapses(tt.lapsesBefore))

			card, err := s.GetCard(ctx)
			require.NoError(t, err)
			require.NoError(t, s.AnswerCard(ctx, card, domain.GradeAgain, time.Second))

			stored := f.card(t, card.ID)
			assert.Equal(t, tt.lapsesBefore+1, stored.Lapses)
			assert.Equal(t, tt.wantSuspended, stored.Queue == domain.QueueSuspended)
			n, err := f.stores.Notes.GetByID(ctx, note.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLeech, n.HasTag(domain.LeechTag))
		})
	}
}

func TestScheduler_FailedAnswerRollsBack(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("disk full")
	s := f.scheduler(&testutil.FailOnNthExecUoW{DB: f.db, FailOn: 2, Err: boom})
	ctx := context.Background()
	f.addCards(t, 1, testutil.AsReview(0, 10))

	card, err := s.GetCard(ctx)
	require.NoError(t, err)
	before := *card

	err = s.AnswerCard(ctx, card, domain.GradeGood, time.Second)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, before, *card)
	stored := f.card(t, card.ID)
	assert.Equal(t, domain.QueueReview, stored.Queue)
	assert.Equal(t, int64(0), stored.Due)
	assert.Equal(t, 10, stored.Ivl)
	logs, err := f.stores.Revlog.ListByCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.Equal(t, domain.Counts{}, counts(t, s))
}

func TestScheduler_DayLearnFirstOrdering(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	col, err := f.stores.Collection.Get(ctx)
	require.NoError(t, err)
	col.DayLearnFirst = true
	require.NoError(t, f.stores.Collection.Upsert(ctx, col))

	f.addCards(t, 1, testutil.AsReview(0, 3))
	dayLearn := f.addCards(t, 1, testutil.WithQueue(domain.QueueDayLearn), testutil.WithDue(0), testutil.WithLeft(1001))[0]

	card, err := s.GetCard(ctx)
	require.NoError(t, err)
	assert.Equal(t, dayLearn.ID, card.ID)
}

func TestScheduler_DayRolloverResetsAndUnburies(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	card := f.addCards(t, 1, testutil.AsReview(0, 3))[0]

	n, err := s.BuryCards(ctx, []int64{card.ID}, true)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	assert.Equal(t, domain.QueueManuallyBuried, f.card(t, card.ID).Queue)
	_, err = s.GetCard(ctx)
	require.ErrorIs(t, err, ErrNoCard)

	f.clock.Advance(24 * time.Hour)
	got, err := s.GetCard(ctx)
	require.NoError(t, err)
	assert.Equal(t, card.ID, got.ID)
	assert.Equal(t, 1, s.Today())

	col, err := f.stores.Collection.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, col.LastUnburied)
}
