package articles

import "context"

// Repo persists articles.
type Repo interface {
	Create(ctx context.Context, article *Article) (*Article, error)
	GetByID(ctx context.Context, id int64) (*Article, error)
	Update(ctx context.Context, article *Article) (*Article, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Article, error)
}
