package articles

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/devlog/devlog-server/internal/errors"
)

// InMemoryRepo is a map backed Repo used for local development and tests.
type InMemoryRepo struct {
	mu       sync.RWMutex
	articles map[int64]*Article
	nextID   int64
	nowFunc  func() time.Time
}

// InMemoryRepoOption configures an InMemoryRepo.
type InMemoryRepoOption func(*InMemoryRepo)

// WithNowFunc overrides the clock used to stamp new articles.
func WithNowFunc(nowFunc func() time.Time) InMemoryRepoOption {
	return func(r *InMemoryRepo) {
		r.nowFunc = nowFunc
	}
}

func NewInMemoryRepo(options ...InMemoryRepoOption) *InMemoryRepo {
	repo := &InMemoryRepo{
		articles: make(map[int64]*Article),
		nextID:   1,
		nowFunc:  time.Now,
	}
	for _, option := range options {
		option(repo)
	}
	return repo
}

func (r *InMemoryRepo) Create(_ context.Context, article *Article) (*Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *article
	stored.ID = r.nextID
	r.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.nowFunc()
	}
	r.articles[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepo) GetByID(_ context.Context, id int64) (*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	article, ok := r.articles[id]
	if !ok {
		return nil, apperrors.ErrArticleNotFound
	}
	out := *article
	return &out, nil
}

func (r *InMemoryRepo) Update(_ context.Context, article *Article) (*Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[article.ID]; !ok {
		return nil, apperrors.ErrArticleNotFound
	}
	stored := *article
	r.articles[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *InMemoryRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.articles[id]; !ok {
		return apperrors.ErrArticleNotFound
	}
	delete(r.articles, id)
	return nil
}

func (r *InMemoryRepo) List(_ context.Context) ([]*Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Article, 0, len(r.articles))
	for _, article := range r.articles {
		copied := *article
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}
