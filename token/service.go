package token

import (
	"context"
	"fmt"
	"time"

	"github.com/devlog/devlog-server/staging"
)

const (
	blacklistPrefix   = "blacklist:"
	refreshPrefix     = "refresh:"
	blacklistSentinel = "1"

	// refreshSetMargin keeps the per-user refresh set alive slightly
	// longer than the longest-lived token it can contain, so a token
	// nearing expiry still finds its registration during rotation.
	refreshSetMargin = 24 * time.Hour
)

// Service keeps the token blacklist and the per-user refresh-token
// registry in the staging store.
type Service struct {
	store      staging.Store
	refreshTTL time.Duration
}

func NewService(store staging.Store, refreshTTL time.Duration) *Service {
	return &Service{
		store:      store,
		refreshTTL: refreshTTL,
	}
}

// Blacklist denylists a token for its remaining lifetime. Blacklisting
// an already-blacklisted token is harmless.
func (s *Service) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	return s.store.Set(ctx, blacklistPrefix+token, blacklistSentinel, ttl)
}

// IsBlacklisted reports whether the token has been denylisted. A store
// failure surfaces as an error, never as "not blacklisted".
func (s *Service) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return s.store.Exists(ctx, blacklistPrefix+token)
}

// StoreRefresh registers a refresh token under the user's set. The
// set's TTL is re-asserted on every store, including re-stores during
// a refresh exchange: backends have been observed to drop a
// registration after a write, so every exchange re-asserts membership
// instead of trusting the earlier write.
func (s *Service) StoreRefresh(ctx context.Context, userID int64, token string) error {
	_, err := s.store.SAddExpire(ctx, refreshKey(userID), s.refreshTTL+refreshSetMargin, token)
	return err
}

// ValidateRefresh is a set-membership check.
func (s *Service) ValidateRefresh(ctx context.Context, userID int64, token string) (bool, error) {
	return s.store.SIsMember(ctx, refreshKey(userID), token)
}

// RevokeRefresh removes one refresh token, or the user's entire set
// (all devices) when token is empty.
func (s *Service) RevokeRefresh(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return s.store.Del(ctx, refreshKey(userID))
	}
	_, err := s.store.SRem(ctx, refreshKey(userID), token)
	return err
}

func refreshKey(userID int64) string {
	return fmt.Sprintf("%s%d", refreshPrefix, userID)
}
