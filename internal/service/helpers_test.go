package service

import (
	"bytes"
	"context"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/study"
	"github.com/alexanderramin/mnemo/internal/testutil"
	"github.com/stretchr/testify/require"
)

type env struct {
	stores   study.Stores
	decks    DeckService
	notes    NoteService
	study    StudyService
	overview OverviewService
	sched    *study.Scheduler
	log      *bytes.Buffer
}

func setupServices(t *testing.T, opts ...study.Option) *env {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	stores := study.StoresFor(database)

	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf, slog.LevelInfo)
	opts = append([]study.Option{study.WithRand(rand.New(rand.NewSource(1)))}, opts...)
	sched := study.NewScheduler(stores, uow, opts...)
	return &env{
		stores:   stores,
		decks:    NewDeckService(stores.Decks, uow, obs),
		notes:    NewNoteService(stores.Notes, stores.Cards, uow, obs),
		study:    NewStudyService(sched, stores.Cards, stores.Notes, uow, obs),
		overview: NewOverviewService(sched, stores.Revlog, obs),
		sched:    sched,
		log:      &buf,
	}
}

func (e *env) addNote(t *testing.T, deckID int64, front string, reverse bool) (*domain.Note, []*domain.Card) {
	t.Helper()
	n, cards, err := e.notes.Add(context.Background(), NewNote{DeckID: deckID, Front: front, Back: "back of " + front, Reverse: reverse})
	require.NoError(t, err)
	return n, cards
}
