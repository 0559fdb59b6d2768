package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevlogRepo_AppendBumpsCollidingIDs(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRevlogRepo(db)
	ctx := context.Background()

	n := seedNote(t, db, "q")
	c := seedCard(t, db, n.ID)

	first := &domain.ReviewLog{ID: 1000, CardID: c.ID, Ease: domain.GradeGood, Ivl: -600, Factor: 2500, TimeMs: 3000, Type: domain.RevlogLearn}
	second := &domain.ReviewLog{ID: 1000, CardID: c.ID, Ease: domain.GradeGood, Ivl: 1, LastIvl: -600, Factor: 2500, TimeMs: 2000, Type: domain.RevlogLearn}
	require.NoError(t, repo.Append(ctx, first))
	require.NoError(t, repo.Append(ctx, second))
	assert.Equal(t, int64(1000), first.ID)
	assert.Equal(t, int64(1001), second.ID)

	logs, err := repo.ListByCard(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, -600, logs[0].Ivl)
	assert.Equal(t, 1, logs[1].Ivl)
	assert.Equal(t, -600, logs[1].LastIvl)
	assert.Equal(t, domain.GradeGood, logs[1].Ease)
}

func TestRevlogRepo_StatsSince(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteRevlogRepo(db)
	ctx := context.Background()

	n := seedNote(t, db, "q")
	c := seedCard(t, db, n.ID)

	entries := []domain.ReviewLog{
		{ID: 10, Ease: domain.GradeGood, TimeMs: 9000, Type: domain.RevlogReview}, // before window
		{ID: 100, Ease: domain.GradeGood, TimeMs: 4000, Type: domain.RevlogReview},
		{ID: 101, Ease: domain.GradeAgain, TimeMs: 8000, Type: domain.RevlogReview},
		{ID: 102, Ease: domain.GradeGood, TimeMs: 1000, Type: domain.RevlogLearn},
	}
	for i := range entries {
		entries[i].CardID = c.ID
		require.NoError(t, repo.Append(ctx, &entries[i]))
	}

	stats, err := repo.StatsSince(ctx, 100)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, domain.RevlogLearn, stats[0].Type)
	assert.Equal(t, 1, stats[0].Count)
	assert.InDelta(t, 1000.0, stats[0].AvgTimeMs, 0.001)
	assert.InDelta(t, 1.0, stats[0].PassRate, 0.001)

	assert.Equal(t, domain.RevlogReview, stats[1].Type)
	assert.Equal(t, 2, stats[1].Count)
	assert.InDelta(t, 6000.0, stats[1].AvgTimeMs, 0.001)
	assert.InDelta(t, 0.5, stats[1].PassRate, 0.001)

	n2, err := repo.CountSince(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, n2)
}
