package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFollowIdempotent(t *testing.T) {
	db := setupDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "user")
	author := seedUser(t, db, "author")

	// repeated follows collapse onto the unique (user, author) key
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, user.ID, author.ID))
	}
	cnt, err := repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, cnt)

	ok, err := repo.Exists(ctx, user.ID, author.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// the reverse direction is a distinct pair
	require.NoError(t, repo.Create(ctx, author.ID, user.ID))
	cnt, err = repo.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, cnt)
}

func TestUnfollowMissingPairIsNoop(t *testing.T) {
	db := setupDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "user")
	author := seedUser(t, db, "author")

	require.NoError(t, repo.Delete(ctx, user.ID, author.ID))
	cnt, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Zero(t, cnt)

	require.NoError(t, repo.Create(ctx, user.ID, author.ID))
	require.NoError(t, repo.Delete(ctx, user.ID, author.ID))
	ok, err := repo.Exists(ctx, user.ID, author.ID)
	require.NoError(t, err)
	require.False(t, ok)
}
