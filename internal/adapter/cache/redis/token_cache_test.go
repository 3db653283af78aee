package redis

import (
	"context"
	"testing"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/core/ports"
	"github.com/GoArmGo/RecipeApp/internal/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ ports.TokenCache = (*TokenCache)(nil)
	_ ports.TokenCache = NopTokenCache{}
)

func newTestCache(t *testing.T, ttl time.Duration) (*TokenCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenCache(client, ttl, logger.Discard()), mr
}

func TestTokenCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)
	userID := uuid.New()

	_, ok, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "abc", userID))
	assert.True(t, mr.Exists("authtoken:abc"))

	got, ok, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, userID, got)

	require.NoError(t, cache.Delete(ctx, "abc"))
	_, ok, err = cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenCache_Expires(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)

	require.NoError(t, cache.Set(ctx, "abc", uuid.New()))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenCache_CorruptValueIsMiss(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set("authtoken:abc", "not-a-uuid"))

	_, ok, err := cache.Get(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists("authtoken:abc"))
}

func TestNewClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	defer client.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = NewClient(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
