package study

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerCard_BuriesSiblings(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	note := f.addNote(t, "perro")
	first := f.addCard(t, note.ID, testutil.WithOrd(0))
	second := f.addCard(t, note.ID, testutil.WithOrd(1))
	assert.Equal(t, domain.Counts{New: 2}, counts(t, s))

	card, err := s.GetCard(ctx)
	require.NoError(t, err)
	require.Equal(t, first.ID, card.ID)
	require.NoError(t, s.AnswerCard(ctx, card, domain.GradeGood, time.Second))

	assert.Equal(t, domain.QueueSiblingBuried, f.card(t, second.ID).Queue)
	assert.Zero(t, counts(t, s).New)

	fin, err := s.Finished(ctx)
	require.NoError(t, err)
	assert.True(t, fin.HaveBuried)
	assert.Contains(t, fin.Message(f.clock.Now()), "delayed until a later session")
}

func TestAnswerCard_SiblingBuryDisabled(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	f.editDefaultConfig(t, func(c *domain.DeckConfig) { c.New.Bury = false })
	note := f.addNote(t, "gato")
	f.addCard(t, note.ID, testutil.WithOrd(0))
	second := f.addCard(t, note.ID, testutil.WithOrd(1))

	card, err := s.GetCard(ctx)
	require.NoError(t, err)
	require.NoError(t, s.AnswerCard(ctx, card, domain.GradeGood, time.Second))

	assert.Equal(t, domain.QueueNew, f.card(t, second.ID).Queue)
}

func TestUnburyCards_Idempotent(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	cards := f.addCards(t, 2, testutil.AsReview(0, 4))
	ids := []int64{cards[0].ID, cards[1].ID}

	n, err := s.BuryCards(ctx, ids, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, domain.Counts{}, counts(t, s))

	n, err = s.UnburyCards(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, domain.Counts{Review: 2}, counts(t, s))

	n, err = s.UnburyCards(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, domain.Counts{Review: 2}, counts(t, s))
	assert.Equal(t, domain.QueueReview, f.card(t, cards[0].ID).Queue)
}

func TestUnburyCardsForDeck_Scope(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	cards := f.addCards(t, 2)

	_, err := s.BuryCards(ctx, []int64{cards[0].ID}, true)
	require.NoError(t, err)
	_, err = s.BuryCards(ctx, []int64{cards[1].ID}, false)
	require.NoError(t, err)

	n, err := s.UnburyCardsForDeck(ctx, domain.DefaultDeckID, domain.UnburyManual)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.QueueNew, f.card(t, cards[0].ID).Queue)
	assert.Equal(t, domain.QueueSiblingBuried, f.card(t, cards[1].ID).Queue)

	_, err = s.UnburyCardsForDeck(ctx, domain.DefaultDeckID, "everything")
	assert.Error(t, err)
}

func TestBuryCards_StdUsesOneBuryQueue(t *testing.T) {
	s, f := newTestScheduler(t, WithVariant(VariantStd()))
	ctx := context.Background()
	card := f.addCards(t, 1)[0]

	_, err := s.BuryCards(ctx, []int64{card.ID}, true)
	require.NoError(t, err)

	assert.Equal(t, domain.QueueSiblingBuried, f.card(t, card.ID).Queue)
}

func TestBuryNote_BuriesEveryCard(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	note := f.addNote(t, "casa")
	a := f.addCard(t, note.ID, testutil.WithOrd(0))
	b := f.addCard(t, note.ID, testutil.WithOrd(1), testutil.AsReview(0, 2))

	n, err := s.BuryNote(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, domain.QueueManuallyBuried, f.card(t, a.ID).Queue)
	assert.Equal(t, domain.QueueManuallyBuried, f.card(t, b.ID).Queue)
}

func TestSuspendCards_RoundTrip(t *testing.T) {
	s, f := newTestScheduler(t)
	ctx := context.Background()
	lrn := f.addCards(t, 1, testutil.AsLearning(sessionStart.Unix()+300, 1001))[0]
	rev := f.addCards(t, 1, testutil.AsReview(0, 2))[0]
	ids := []int64{lrn.ID, rev.ID}

	n, err := s.SuspendCards(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	n, err = s.SuspendCards(ctx, ids)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, domain.Counts{}, counts(t, s))

	n, err = s.UnsuspendCards(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, domain.QueueLearning, f.card(t, lrn.ID).Queue)
	assert.Equal(t, domain.QueueReview, f.card(t, rev.ID).Queue)
}
