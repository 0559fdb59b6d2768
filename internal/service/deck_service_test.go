package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/repository"
	"github.com/alexanderramin/mnemo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckService_Create_MakesParents(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	deck, err := e.decks.Create(ctx, " Lang :: Spanish ::Verbs")
	require.NoError(t, err)
	assert.Equal(t, "Lang::Spanish::Verbs", deck.Name)

	for _, name := range []string{"Lang", "Lang::Spanish"} {
		_, err := e.decks.GetByName(ctx, name)
		assert.NoError(t, err, name)
	}

	again, err := e.decks.Create(ctx, "lang::spanish::verbs")
	require.NoError(t, err)
	assert.Equal(t, deck.ID, again.ID)
	assert.Contains(t, e.log.String(), "use_case=create-deck")
	assert.Contains(t, e.log.String(), "session_id=")
}

func TestDeckService_Create_InvalidNames(t *testing.T) {
	e := setupServices(t)

	for _, name := range []string{"", "  ", "Lang::", "::Lang", "A:: ::B"} {
		_, err := e.decks.Create(context.Background(), name)
		assert.ErrorIs(t, err, ErrInvalidDeckName, "name %q", name)
	}
}

func TestDeckService_CreateFiltered(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	deck, err := e.decks.CreateFiltered(ctx, "Cram::Today", true,
		domain.DynTerm{Search: "deck:Default is:due", Limit: 50, Order: domain.DynOrderDue})
	require.NoError(t, err)
	assert.True(t, deck.Dyn)

	parent, err := e.decks.GetByName(ctx, "Cram")
	require.NoError(t, err)
	assert.False(t, parent.Dyn)

	_, err = e.decks.CreateFiltered(ctx, "Cram::Today", true, domain.DynTerm{Search: "is:new", Limit: 5})
	assert.ErrorIs(t, err, ErrDeckExists)

	_, err = e.decks.CreateFiltered(ctx, "Broken", true, domain.DynTerm{Search: "colour:red", Limit: 5})
	assert.Error(t, err)

	_, err = e.decks.Create(ctx, "Cram::Today::Sub")
	assert.ErrorIs(t, err, ErrDeckExists)
}

func TestDeckService_Rename_MovesSubdecks(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()
	lang, err := e.decks.Create(ctx, "Lang")
	require.NoError(t, err)
	_, err = e.decks.Create(ctx, "Lang::Spanish")
	require.NoError(t, err)

	require.NoError(t, e.decks.Rename(ctx, lang.ID, "Languages"))

	_, err = e.decks.GetByName(ctx, "Languages::Spanish")
	assert.NoError(t, err)
	_, err = e.decks.GetByName(ctx, "Lang::Spanish")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = e.decks.Rename(ctx, lang.ID, "languages::spanish")
	assert.ErrorIs(t, err, ErrDeckExists)
	err = e.decks.Rename(ctx, lang.ID, "Languages::Other")
	assert.ErrorIs(t, err, ErrInvalidDeckName)
}

func TestDeckService_Delete(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()
	full, err := e.decks.Create(ctx, "Full")
	require.NoError(t, err)
	e.addNote(t, full.ID, "hola", false)
	empty, err := e.decks.Create(ctx, "Empty::Child")
	require.NoError(t, err)
	parent, err := e.decks.GetByName(ctx, "Empty")
	require.NoError(t, err)

	assert.ErrorIs(t, e.decks.Delete(ctx, domain.DefaultDeckID), ErrProtectedDeck)
	assert.ErrorIs(t, e.decks.Delete(ctx, full.ID), ErrDeckNotEmpty)

	require.NoError(t, e.decks.Delete(ctx, parent.ID))
	_, err = e.stores.Decks.GetByID(ctx, empty.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeckService_SaveConfig_Validates(t *testing.T) {
	e := setupServices(t)
	ctx := context.Background()

	bad := testutil.NewTestDeckConfig("Bad", func(c *domain.DeckConfig) {
		c.New.Delays = []float64{1, -5}
		c.Rev.PerDay = -1
	})
	err := e.decks.CreateConfig(ctx, bad)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "Delays")
	assert.Contains(t, err.Error(), "PerDay")

	inverted := testutil.NewTestDeckConfig("Inverted", func(c *domain.DeckConfig) { c.New.Ints = [2]int{4, 1} })
	assert.ErrorIs(t, e.decks.CreateConfig(ctx, inverted), ErrInvalidConfig)

	good := testutil.NewTestDeckConfig("Fast", func(c *domain.DeckConfig) { c.New.PerDay = 50 })
	require.NoError(t, e.decks.CreateConfig(ctx, good))

	deck, err := e.decks.Create(ctx, "Speed")
	require.NoError(t, err)
	require.NoError(t, e.decks.AssignConfig(ctx, deck.ID, good.ID))

	conf, err := e.decks.Config(ctx, deck.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, conf.New.PerDay)
}
