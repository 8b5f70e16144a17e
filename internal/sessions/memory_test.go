package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thermopolio/thermopolio/internal/models"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, "uid-1")
	require.NoError(t, err)
	assert.Len(t, token, 64) // 32 random bytes, hex encoded

	sess, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", sess.UserUID)
	assert.Nil(t, sess.User)
	assert.True(t, sess.ExpiresAt.After(time.Now()))
}

func TestMemoryStore_GetUnknownToken(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	_, err := store.Get(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ExpiredSessionIsGone(t *testing.T) {
	store := NewMemoryStore(-time.Minute)
	ctx := context.Background()

	token, err := store.Create(ctx, "uid-1")
	require.NoError(t, err)

	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveUser(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, "uid-1")
	require.NoError(t, err)

	user := &models.User{UID: "uid-1", Username: "mario", Role: models.RoleCustomer}
	require.NoError(t, store.SaveUser(ctx, token, user))

	sess, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, sess.UserUID, sess.User.UID)
	assert.Equal(t, "mario", sess.User.Username)
}

func TestMemoryStore_SaveUserUnknownToken(t *testing.T) {
	store := NewMemoryStore(time.Hour)

	err := store.SaveUser(context.Background(), "missing", &models.User{UID: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Destroy(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, "uid-1")
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, token))
	_, err = store.Get(ctx, token)
	assert.ErrorIs(t, err, ErrNotFound)

	// destroying twice is fine
	require.NoError(t, store.Destroy(ctx, token))
}

func TestMemoryStore_TokensAreUnique(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 50 {
		token, err := store.Create(ctx, "uid-1")
		require.NoError(t, err)
		assert.False(t, seen[token])
		seen[token] = true
	}
}
