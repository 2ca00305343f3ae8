package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blockfunders/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	tokenVersionKeyPrefix = "token_version:"
)

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uint, username string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uint, username string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	TokenVersion(ctx context.Context, userID uint) (int64, bool)
	BumpTokenVersion(ctx context.Context, userID uint) error
}

// TokenStore handles storage and retrieval of tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, username string, ttl time.Duration) error {
	data := map[string]interface{}{
		"user_id":  userID,
		"username": username,
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}

	key := refreshTokenKeyPrefix + tokenID
	return s.cache.Set(ctx, key, payload, ttl)
}

// GetRefreshToken retrieves refresh token data from Redis.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (userID uint, username string, err error) {
	key := refreshTokenKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return 0, "", fmt.Errorf("refresh token not found")
	}

	var tokenData map[string]interface{}
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return 0, "", fmt.Errorf("unmarshal token data: %w", err)
	}

	uid, ok := tokenData["user_id"].(float64)
	if !ok {
		return 0, "", fmt.Errorf("invalid user_id in token data")
	}
	userID = uint(uid)

	username, ok = tokenData["username"].(string)
	if !ok {
		return 0, "", fmt.Errorf("invalid username in token data")
	}

	return userID, username, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	key := refreshTokenKeyPrefix + tokenID
	return s.cache.Delete(ctx, key)
}

// TokenVersion returns the user's current token version. ok=false means
// redis was unreachable; callers fail open and accept the token, matching
// the cache wrapper's fail-safe behavior.
func (s *TokenStore) TokenVersion(ctx context.Context, userID uint) (int64, bool) {
	return s.cache.GetInt64(ctx, fmt.Sprintf("%s%d", tokenVersionKeyPrefix, userID))
}

// BumpTokenVersion invalidates every outstanding token of the user.
func (s *TokenStore) BumpTokenVersion(ctx context.Context, userID uint) error {
	_, _ = s.cache.Incr(ctx, fmt.Sprintf("%s%d", tokenVersionKeyPrefix, userID))
	return nil
}
