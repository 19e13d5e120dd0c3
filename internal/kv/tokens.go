package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenInfo describes an issued access token without its secret material.
type TokenInfo struct {
	JTI       string    `json:"jti"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenStore records issued tokens per user and the revocation list checked
// by the auth middleware. A nil client turns every write into a no-op.
type TokenStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewTokenStore creates a TokenStore on rdb.
func NewTokenStore(rdb *redis.Client) *TokenStore {
	return &TokenStore{rdb: rdb, now: time.Now}
}

// Track remembers an issued token for the user's token listing.
func (s *TokenStore) Track(ctx context.Context, userID uint, info TokenInfo) error {
	ttl := info.ExpiresAt.Sub(s.now())
	if s.rdb == nil || ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal token info: %w", err)
	}

	key := UserTokensKey(userID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, info.JTI, raw)
	// Tokens share one TTL, so the newest token always outlives the rest.
	pipe.Expire(ctx, key, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// List returns the user's unexpired, unrevoked tokens, newest first. Expired
// entries are pruned as a side effect.
func (s *TokenStore) List(ctx context.Context, userID uint) ([]TokenInfo, error) {
	tokens := []TokenInfo{}
	if s.rdb == nil {
		return tokens, nil
	}

	key := UserTokensKey(userID)
	entries, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	now := s.now()
	var stale []string
	for jti, raw := range entries {
		var info TokenInfo
		if err := json.Unmarshal([]byte(raw), &info); err != nil || !info.ExpiresAt.After(now) {
			stale = append(stale, jti)
			continue
		}
		tokens = append(tokens, info)
	}
	if len(stale) > 0 {
		s.rdb.HDel(ctx, key, stale...)
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].IssuedAt.After(tokens[j].IssuedAt)
	})
	return tokens, nil
}

// Revoke blacklists jti until expiresAt and drops it from the user's listing.
func (s *TokenStore) Revoke(ctx context.Context, userID uint, jti string, expiresAt time.Time) error {
	if s.rdb == nil {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, RevokedTokenKey(jti), "1", ttl)
	pipe.HDel(ctx, UserTokensKey(userID), jti)
	_, err := pipe.Exec(ctx)
	return err
}

// IsRevoked reports whether jti has been blacklisted.
func (s *TokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if s.rdb == nil {
		return false, nil
	}
	err := s.rdb.Get(ctx, RevokedTokenKey(jti)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
