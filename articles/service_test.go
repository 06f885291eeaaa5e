package articles_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/devlog/devlog-server/articles"
	apperrors "github.com/devlog/devlog-server/internal/errors"
	"github.com/devlog/devlog-server/media"
	"github.com/devlog/devlog-server/staging"
	"github.com/devlog/devlog-server/users"
)

type articleFixture struct {
	service  *articles.Service
	store    *staging.RedisStore
	media    *media.Reconciler
	mediaDir string
	author   *users.User
	other    *users.User
}

func setupArticleFixture(t *testing.T) *articleFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	store := staging.NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = store.Close() })

	mediaDir := t.TempDir()
	reconciler := media.NewReconciler(store, mediaDir, "/media", zerolog.Nop())

	imageDir := filepath.Join(mediaDir, "quills", "img")
	videoDir := filepath.Join(mediaDir, "quills", "video")
	service, err := articles.NewService(articles.NewInMemoryRepo(), reconciler, imageDir, videoDir, zerolog.Nop())
	require.NoError(t, err)

	return &articleFixture{
		service:  service,
		store:    store,
		media:    reconciler,
		mediaDir: mediaDir,
		author:   &users.User{ID: 1, Username: "johndoe", Email: "john.doe@example.com"},
		other:    &users.User{ID: 2, Username: "janedoe", Email: "jane.doe@example.com"},
	}
}

// writeQuillImage creates the file behind a quills image URL for the
// given user.
func (f *articleFixture) writeQuillImage(t *testing.T, userID int64, name string) (url, path string) {
	t.Helper()
	url = "/media/quills/img/" + strconv.FormatInt(userID, 10) + "/" + name
	path = filepath.Join(f.mediaDir, "quills", "img", strconv.FormatInt(userID, 10), name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))
	return url, path
}

func TestCreateAdoptsStagedCandidates(t *testing.T) {
	f := setupArticleFixture(t)
	ctx := context.Background()

	// The author uploaded two images while drafting, then removed one
	// from the editor; the editor marked both as staged candidates.
	keptURL, keptPath := f.writeQuillImage(t, f.author.ID, "kept.png")
	droppedURL, droppedPath := f.writeQuillImage(t, f.author.ID, "dropped.png")
	stagingKey := media.CandidateKey{Kind: media.KindImage, Owner: media.StagingOwner}
	_, err := f.media.Mark(ctx, stagingKey, []string{keptURL, droppedURL})
	require.NoError(t, err)

	article, err := f.service.Create(ctx, f.author, "title", `<img src="`+keptURL+`">`, "")
	require.NoError(t, err)
	require.NotZero(t, article.ID)
	require.Equal(t, f.author.ID, article.AuthorID)

	require.FileExists(t, keptPath)
	require.NoFileExists(t, droppedPath)

	// Both the staging key and the promoted key are gone.
	for _, owner := range []int64{media.StagingOwner, article.ID} {
		exists, err := f.store.Exists(ctx, media.CandidateKey{Kind: media.KindImage, Owner: owner}.String())
		require.NoError(t, err)
		require.False(t, exists)
	}
}

func TestUpdateRequiresAuthor(t *testing.T) {
	f := setupArticleFixture(t)
	ctx := context.Background()

	article, err := f.service.Create(ctx, f.author, "title", "<p>body</p>", "")
	require.NoError(t, err)

	_, err = f.service.Update(ctx, f.other, article.ID, "new title", "<p>new</p>", "")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrNotAuthor))
}

func TestUpdateSweepsDroppedMedia(t *testing.T) {
	f := setupArticleFixture(t)
	ctx := context.Background()

	oldURL, oldPath := f.writeQuillImage(t, f.author.ID, "old.png")
	newURL, newPath := f.writeQuillImage(t, f.author.ID, "new.png")

	article, err := f.service.Create(ctx, f.author, "title", `<img src="`+oldURL+`">`, "")
	require.NoError(t, err)

	updated, err := f.service.Update(ctx, f.author, article.ID, "title", `<img src="`+newURL+`">`, "")
	require.NoError(t, err)
	require.Contains(t, updated.Content, newURL)

	require.NoFileExists(t, oldPath)
	require.FileExists(t, newPath)
}

func TestUpdateMissingArticle(t *testing.T) {
	f := setupArticleFixture(t)

	_, err := f.service.Update(context.Background(), f.author, 999, "t", "c", "")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrArticleNotFound))
}

func TestDeleteRemovesMediaAndPrunesDir(t *testing.T) {
	f := setupArticleFixture(t)
	ctx := context.Background()

	url, path := f.writeQuillImage(t, f.author.ID, "only.png")
	ownerDir := filepath.Dir(path)

	article, err := f.service.Create(ctx, f.author, "title", `<img src="`+url+`">`, "")
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(ctx, f.author, article.ID))

	require.NoFileExists(t, path)
	require.NoDirExists(t, ownerDir)

	_, err = f.service.Get(ctx, article.ID)
	require.True(t, apperrors.Is(err, apperrors.ErrArticleNotFound))

	exists, err := f.store.Exists(ctx, media.CandidateKey{Kind: media.KindImage, Owner: article.ID}.String())
	require.NoError(t, err)
	require.False(t, exists)
}

func TestDeleteRequiresAuthor(t *testing.T) {
	f := setupArticleFixture(t)
	ctx := context.Background()

	article, err := f.service.Create(ctx, f.author, "title", "<p>body</p>", "")
	require.NoError(t, err)

	err = f.service.Delete(ctx, f.other, article.ID)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrNotAuthor))

	_, err = f.service.Get(ctx, article.ID)
	require.NoError(t, err)
}

func TestListNewestFirst(t *testing.T) {
	f := setupArticleFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, f.author, "first", "<p>1</p>", "")
	require.NoError(t, err)
	second, err := f.service.Create(ctx, f.author, "second", "<p>2</p>", "")
	require.NoError(t, err)

	list, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID)
	require.Equal(t, first.ID, list[1].ID)
}
