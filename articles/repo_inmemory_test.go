package articles_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/devlog/devlog-server/articles"
)

func TestCreateStampsCreatedAt(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	repo := articles.NewInMemoryRepo(articles.WithNowFunc(func() time.Time { return now }))

	created, err := repo.Create(context.Background(), &articles.Article{Title: "title", Content: "content", AuthorID: 1})
	require.NoError(t, err)
	require.Equal(t, now, created.CreatedAt)

	fetched, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, now, fetched.CreatedAt)
}

func TestCreateKeepsSuppliedCreatedAt(t *testing.T) {
	repo := articles.NewInMemoryRepo()
	supplied := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	created, err := repo.Create(context.Background(), &articles.Article{Title: "title", Content: "content", CreatedAt: supplied})
	require.NoError(t, err)
	require.Equal(t, supplied, created.CreatedAt)
}
