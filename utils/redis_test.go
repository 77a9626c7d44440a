package utils_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostluggage/models"
	"lostluggage/utils"
)

func newRedisStore(t *testing.T) (*utils.RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return utils.NewRedisSessionStore(client), mr
}

func TestOpenRedisPool(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := utils.OpenRedisPool(ctx, "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	_ = client.Close()

	_, err = utils.OpenRedisPool(ctx, "not a url")
	assert.Error(t, err)
}

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	s := &models.Session{
		SessionToken: "tok-1",
		UserID:       42,
		Name:         "Alice",
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		ExpiresAt:    now.Add(time.Hour),
		LastActivity: now,
		CSRFToken:    "csrf-1",
		UserAgent:    "test-agent",
		IPAddress:    "127.0.0.1",
	}
	s.AddFlash("success", "Status updated successfully!")
	require.NoError(t, store.Save(ctx, s))

	assert.True(t, mr.Exists("session:tok-1"))
	members, err := mr.Members("user_sessions:42")
	require.NoError(t, err)
	assert.Equal(t, []string{"session:tok-1"}, members)

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, "csrf-1", got.CSRFToken)
	assert.True(t, got.ExpiresAt.Equal(s.ExpiresAt))
	assert.Equal(t, s.Flashes, got.Flashes)

	require.NoError(t, store.Delete(ctx, "tok-1"))
	assert.False(t, mr.Exists("session:tok-1"))
	members, _ = mr.Members("user_sessions:42")
	assert.Empty(t, members)

	_, err = store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
}

func TestRedisSessionStore_AnonymousSessionNotIndexed(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{
		SessionToken: "anon",
		CSRFToken:    "c",
		ExpiresAt:    time.Now().Add(time.Hour),
	}))
	assert.False(t, mr.Exists("user_sessions:0"))

	got, err := store.Get(ctx, "anon")
	require.NoError(t, err)
	assert.False(t, got.IsAuthenticated())
	assert.Empty(t, got.Flashes)

	// deleting an unknown token is not an error
	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestRedisSessionStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.Session{
		SessionToken: "short",
		ExpiresAt:    time.Now().Add(time.Minute),
	}))
	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "short")
	assert.ErrorIs(t, err, utils.ErrSessionNotFound)
}
