package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepository(t *testing.T) (context.Context, UserRepository, *storage.SQLiteStorage) {
	t.Helper()

	ctx := context.Background()

	store, err := storage.NewSQLiteStorage(ctx, filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return ctx, NewUserRepository(store), store
}

func TestUserRepository_Save(t *testing.T) {
	ctx, repo, store := newUserRepository(t)

	// Given: a freshly logged in user
	user := entity.NewUser("u1", "Alice", time.Now().UTC())

	// When: the login session is saved
	err := repo.Save(ctx, "s1", user, 24*time.Hour)

	// Then: both the session and the user key hold the record
	require.NoError(t, err)

	for _, key := range []string{"session:s1", "user:u1"} {
		raw, err := store.Get(ctx, key)
		require.NoError(t, err, key)
		assert.Contains(t, string(raw), `"user_id":"u1"`)
		assert.Contains(t, string(raw), `"is_active":true`)
	}

	// And: game listings never see them
	values, err := store.ListByPrefix(ctx, keyPrefix)
	require.NoError(t, err)
	assert.Empty(t, values)

	found, err := repo.FindBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Username)

	found, err = repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", found.ID)
}

func TestUserRepository_FindBySession(t *testing.T) {
	t.Run("Unknown session is unauthorized", func(t *testing.T) {
		ctx, repo, _ := newUserRepository(t)

		_, err := repo.FindBySession(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("Garbage record is a storage failure", func(t *testing.T) {
		ctx, repo, store := newUserRepository(t)

		require.NoError(t, store.Set(ctx, "session:bad", []byte("{"), time.Hour))

		_, err := repo.FindBySession(ctx, "bad")

		require.ErrorIs(t, err, apperror.ErrStorageFailure)
	})

	t.Run("Closed store is a storage failure", func(t *testing.T) {
		ctx, repo, store := newUserRepository(t)

		require.NoError(t, store.Close())

		_, err := repo.FindBySession(ctx, "s1")

		require.ErrorIs(t, err, apperror.ErrStorageFailure)
	})
}

func TestUserRepository_DeleteSession(t *testing.T) {
	ctx, repo, _ := newUserRepository(t)

	require.NoError(t, repo.Save(ctx, "s1", entity.NewUser("u1", "Alice", time.Now().UTC()), time.Hour))

	// When: the session is deleted twice
	require.NoError(t, repo.DeleteSession(ctx, "s1"))
	require.NoError(t, repo.DeleteSession(ctx, "s1"))

	// Then: the session is gone but the user record stays until it expires
	_, err := repo.FindBySession(ctx, "s1")
	require.ErrorIs(t, err, apperror.ErrUnauthorized)

	user, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Username)
}
