package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenStore(rdb), mr
}

func TestTokenStore_TrackAndList(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	older := TokenInfo{JTI: "a", IssuedAt: now.Add(-time.Hour), ExpiresAt: now.Add(time.Hour)}
	newer := TokenInfo{JTI: "b", IssuedAt: now, ExpiresAt: now.Add(2 * time.Hour)}

	require.NoError(t, store.Track(ctx, 1, older))
	require.NoError(t, store.Track(ctx, 1, newer))

	tokens, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, "b", tokens[0].JTI)
	assert.Equal(t, "a", tokens[1].JTI)

	other, err := store.List(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestTokenStore_ListPrunesExpired(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Track(ctx, 1, TokenInfo{JTI: "short", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Track(ctx, 1, TokenInfo{JTI: "long", IssuedAt: now, ExpiresAt: now.Add(3 * time.Hour)}))

	store.now = func() time.Time { return now.Add(2 * time.Hour) }

	tokens, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "long", tokens[0].JTI)
	keys, err := mr.HKeys(UserTokensKey(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"long"}, keys)
}

func TestTokenStore_Revoke(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, store.Track(ctx, 1, TokenInfo{JTI: "jti-1", IssuedAt: time.Now(), ExpiresAt: exp}))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, 1, "jti-1", exp))

	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists(RevokedTokenKey("jti-1")))

	tokens, err := store.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, tokens)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists(RevokedTokenKey("jti-1")))
}

func TestTokenStore_NilClient(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	assert.NoError(t, store.Track(ctx, 1, TokenInfo{JTI: "x", ExpiresAt: time.Now().Add(time.Hour)}))
	assert.NoError(t, store.Revoke(ctx, 1, "x", time.Now().Add(time.Hour)))

	revoked, err := store.IsRevoked(ctx, "x")
	assert.NoError(t, err)
	assert.False(t, revoked)

	tokens, err := store.List(ctx, 1)
	assert.NoError(t, err)
	assert.NotNil(t, tokens)
	assert.Empty(t, tokens)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "blacklist:abc", RevokedTokenKey("abc"))
	assert.Equal(t, "tokens:user:42", UserTokensKey(42))
}
