package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/mnemo/internal/domain"
	"github.com/alexanderramin/mnemo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteRepo_CreateGetUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	ctx := context.Background()

	n := testutil.NewTestNote("perro & gato", testutil.WithBack("dog <and> cat"), testutil.WithTags("animals"))
	require.NoError(t, repo.Create(ctx, n))
	assert.NotZero(t, n.ID)

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.GUID, got.GUID)
	assert.Equal(t, []string{"perro & gato", "dog <and> cat"}, got.Fields)
	assert.Equal(t, []string{"animals"}, got.Tags)

	got.AddTag(domain.LeechTag)
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.True(t, again.HasTag("leech"))
}

func TestNoteRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)

	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(context.Background(), &domain.Note{ID: 42}), ErrNotFound)
}

func TestNoteRepo_DeleteCascadesToCards(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	ctx := context.Background()

	n := seedNote(t, db, "q")
	c := seedCard(t, db, n.ID)
	require.NoError(t, repo.Delete(ctx, n.ID))

	_, err := NewSQLiteCardRepo(db).GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNoteRepo_DuplicateGUIDRejected(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteNoteRepo(db)
	ctx := context.Background()

	n := testutil.NewTestNote("a")
	require.NoError(t, repo.Create(ctx, n))
	dup := testutil.NewTestNote("b")
	dup.GUID = n.GUID
	assert.Error(t, repo.Create(ctx, dup))
}
