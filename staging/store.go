// Package staging provides the TTL-capable key-value store used for
// token bookkeeping and media deletion-candidate sets.
package staging

import (
	"context"
	"time"
)

// Store is the staging-store surface the token service and the media
// reconciler depend on. Implementations must report backend
// unavailability as an error rather than answering "not found": a
// silent miss would let a blacklisted token through or drop a
// deletion candidate.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error

	// SAddExpire adds members to a set and re-asserts the set's TTL in
	// a single pipeline. A zero ttl adds without touching expiry.
	SAddExpire(ctx context.Context, key string, ttl time.Duration, members ...string) (int64, error)
	SRem(ctx context.Context, key string, members ...string) (int64, error)
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)

	// Rename moves a key. Renaming a missing key is a no-op.
	Rename(ctx context.Context, src, dst string) error

	Ping(ctx context.Context) error
	Close() error
}
