package media_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/devlog/devlog-server/media"
	"github.com/devlog/devlog-server/staging"
)

func setupReconciler(t *testing.T) (*media.Reconciler, *staging.RedisStore, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := staging.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	mediaDir := t.TempDir()
	return media.NewReconciler(store, mediaDir, "/media", zerolog.Nop()), store, mediaDir
}

// writeMediaFile creates the on-disk file a /media URL resolves to.
func writeMediaFile(t *testing.T, mediaDir, url string) string {
	t.Helper()
	path := filepath.Join(mediaDir, filepath.FromSlash(url[len("/media/"):]))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))
	return path
}

func TestMarkAndUnmark(t *testing.T) {
	r, store, _ := setupReconciler(t)
	ctx := context.Background()
	key := media.CandidateKey{Kind: media.KindImage, Owner: media.StagingOwner}

	added, err := r.Mark(ctx, key, []string{"/media/quills/img/1/u1.png", "/media/quills/img/1/u2.png"})
	require.NoError(t, err)
	require.Equal(t, int64(2), added)

	// Marking the same URL again is collapsed by set semantics.
	added, err = r.Mark(ctx, key, []string{"/media/quills/img/1/u1.png"})
	require.NoError(t, err)
	require.Equal(t, int64(0), added)

	removed, err := r.Unmark(ctx, key, []string{"/media/quills/img/1/u1.png"})
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	members, err := store.SMembers(ctx, key.String())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"/media/quills/img/1/u2.png"}, members)
}

func TestPromote(t *testing.T) {
	r, store, _ := setupReconciler(t)
	ctx := context.Background()
	stagingKey := media.CandidateKey{Kind: media.KindImage, Owner: media.StagingOwner}

	_, err := r.Mark(ctx, stagingKey, []string{"/media/quills/img/1/u1.png"})
	require.NoError(t, err)

	require.NoError(t, r.Promote(ctx, media.KindImage, media.StagingOwner, 42))

	promoted := media.CandidateKey{Kind: media.KindImage, Owner: 42}
	members, err := store.SMembers(ctx, promoted.String())
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"/media/quills/img/1/u1.png"}, members)

	exists, err := store.Exists(ctx, stagingKey.String())
	require.NoError(t, err)
	require.False(t, exists)
}

func TestPromoteNothingStaged(t *testing.T) {
	r, _, _ := setupReconciler(t)
	require.NoError(t, r.Promote(context.Background(), media.KindVideo, media.StagingOwner, 42))
}

func TestReconcileDeletesUnreferencedCandidates(t *testing.T) {
	r, store, mediaDir := setupReconciler(t)
	ctx := context.Background()
	key := media.CandidateKey{Kind: media.KindImage, Owner: 42}

	u1 := writeMediaFile(t, mediaDir, "/media/quills/img/1/u1.png")
	u2 := writeMediaFile(t, mediaDir, "/media/quills/img/1/u2.png")

	_, err := r.Mark(ctx, key, []string{"/media/quills/img/1/u1.png", "/media/quills/img/1/u2.png"})
	require.NoError(t, err)

	// The final body still embeds u2: last state wins, only u1 goes.
	finalBody := `<img src="/media/quills/img/1/u2.png">`
	require.NoError(t, r.Reconcile(ctx, key, finalBody))

	require.NoFileExists(t, u1)
	require.FileExists(t, u2)

	exists, err := store.Exists(ctx, key.String())
	require.NoError(t, err)
	require.False(t, exists)
}

func TestReconcileNoCandidates(t *testing.T) {
	r, _, _ := setupReconciler(t)
	key := media.CandidateKey{Kind: media.KindImage, Owner: 42}
	require.NoError(t, r.Reconcile(context.Background(), key, `<img src="/media/a.png">`))
}

func TestReconcileMissingFilesTolerated(t *testing.T) {
	r, store, _ := setupReconciler(t)
	ctx := context.Background()
	key := media.CandidateKey{Kind: media.KindImage, Owner: 42}

	_, err := r.Mark(ctx, key, []string{"/media/quills/img/1/gone.png"})
	require.NoError(t, err)

	require.NoError(t, r.Reconcile(ctx, key, ""))

	exists, err := store.Exists(ctx, key.String())
	require.NoError(t, err)
	require.False(t, exists)
}

func TestFullDelete(t *testing.T) {
	r, store, mediaDir := setupReconciler(t)
	ctx := context.Background()
	key := media.CandidateKey{Kind: media.KindImage, Owner: 42}

	u1 := writeMediaFile(t, mediaDir, "/media/quills/img/1/u1.png")
	u2 := writeMediaFile(t, mediaDir, "/media/quills/img/1/u2.png")
	ownerDir := filepath.Dir(u1)

	_, err := r.Mark(ctx, key, []string{"/media/quills/img/1/u1.png"})
	require.NoError(t, err)

	body := `<img src="/media/quills/img/1/u1.png"><img src="/media/quills/img/1/u2.png">`
	require.NoError(t, r.FullDelete(ctx, key, body, ownerDir))

	require.NoFileExists(t, u1)
	require.NoFileExists(t, u2)
	require.NoDirExists(t, ownerDir)

	exists, err := store.Exists(ctx, key.String())
	require.NoError(t, err)
	require.False(t, exists)
}

func TestReconcileRejectsPathTraversal(t *testing.T) {
	r, store, mediaDir := setupReconciler(t)
	ctx := context.Background()
	key := media.CandidateKey{Kind: media.KindImage, Owner: 42}

	// A file outside the media root that a traversal URL would resolve to.
	victim := filepath.Join(filepath.Dir(mediaDir), "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("payload"), 0o644))

	_, err := r.Mark(ctx, key, []string{"/media/../victim.txt"})
	require.NoError(t, err)

	require.NoError(t, r.Reconcile(ctx, key, "<p>no images</p>"))

	require.FileExists(t, victim)

	exists, err := store.Exists(ctx, key.String())
	require.NoError(t, err)
	require.False(t, exists)
}

func TestFullDeleteRejectsPathTraversal(t *testing.T) {
	r, _, mediaDir := setupReconciler(t)
	key := media.CandidateKey{Kind: media.KindImage, Owner: 42}

	victim := filepath.Join(filepath.Dir(mediaDir), "victim.txt")
	require.NoError(t, os.WriteFile(victim, []byte("payload"), 0o644))

	body := `<img src="/media/../victim.txt">`
	require.NoError(t, r.FullDelete(context.Background(), key, body, ""))

	require.FileExists(t, victim)
}

func TestFullDeleteKeepsNonEmptyOwnerDir(t *testing.T) {
	r, _, mediaDir := setupReconciler(t)
	ctx := context.Background()
	key := media.CandidateKey{Kind: media.KindImage, Owner: 42}

	u1 := writeMediaFile(t, mediaDir, "/media/quills/img/1/u1.png")
	unrelated := writeMediaFile(t, mediaDir, "/media/quills/img/1/other-article.png")
	ownerDir := filepath.Dir(u1)

	require.NoError(t, r.FullDelete(ctx, key, `<img src="/media/quills/img/1/u1.png">`, ownerDir))

	require.NoFileExists(t, u1)
	require.FileExists(t, unrelated)
	require.DirExists(t, ownerDir)
}
