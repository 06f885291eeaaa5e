package staging_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	apperrors "github.com/devlog/devlog-server/internal/errors"
	"github.com/devlog/devlog-server/staging"
)

func setupStore(t *testing.T) (*staging.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := staging.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })
	return store, mr
}

func TestSetAndExists(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "blacklist:abc", "1", time.Minute))

	exists, err := store.Exists(ctx, "blacklist:abc")
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, time.Minute, mr.TTL("blacklist:abc"))

	exists, err = store.Exists(ctx, "blacklist:missing")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSetExpiry(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "blacklist:abc", "1", time.Second))
	mr.FastForward(2 * time.Second)

	exists, err := store.Exists(ctx, "blacklist:abc")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestSAddExpireReassertsTTL(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	added, err := store.SAddExpire(ctx, "refresh:1", time.Hour, "token-a")
	require.NoError(t, err)
	require.Equal(t, int64(1), added)
	require.Equal(t, time.Hour, mr.TTL("refresh:1"))

	mr.FastForward(30 * time.Minute)

	// Re-adding an existing member still pushes the TTL back out.
	added, err = store.SAddExpire(ctx, "refresh:1", time.Hour, "token-a")
	require.NoError(t, err)
	require.Equal(t, int64(0), added)
	require.Equal(t, time.Hour, mr.TTL("refresh:1"))
}

func TestSAddExpireZeroTTLLeavesExpiryAlone(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	_, err := store.SAddExpire(ctx, "delete_image_candidates:0", 0, "/media/a.png")
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), mr.TTL("delete_image_candidates:0"))
}

func TestSetMembership(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.SAddExpire(ctx, "refresh:1", time.Hour, "token-a", "token-b")
	require.NoError(t, err)

	ok, err := store.SIsMember(ctx, "refresh:1", "token-a")
	require.NoError(t, err)
	require.True(t, ok)

	removed, err := store.SRem(ctx, "refresh:1", "token-a")
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	ok, err = store.SIsMember(ctx, "refresh:1", "token-a")
	require.NoError(t, err)
	require.False(t, ok)

	members, err := store.SMembers(ctx, "refresh:1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"token-b"}, members)
}

func TestRename(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.SAddExpire(ctx, "delete_image_candidates:0", 0, "/media/a.png")
	require.NoError(t, err)

	require.NoError(t, store.Rename(ctx, "delete_image_candidates:0", "delete_image_candidates:42"))

	members, err := store.SMembers(ctx, "delete_image_candidates:42")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"/media/a.png"}, members)

	exists, err := store.Exists(ctx, "delete_image_candidates:0")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestRenameMissingSourceIsNoOp(t *testing.T) {
	store, _ := setupStore(t)
	require.NoError(t, store.Rename(context.Background(), "delete_image_candidates:0", "delete_image_candidates:42"))
}

func TestDel(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "key", "1", 0))
	require.NoError(t, store.Del(ctx, "key"))

	exists, err := store.Exists(ctx, "key")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestUnavailableBackendSurfacesError(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()
	mr.Close()

	_, err := store.Exists(ctx, "blacklist:abc")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrStoreUnavailable))
}
