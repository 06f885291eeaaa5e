package users

import "context"

// Repo is the principal store the auth service resolves users from.
type Repo interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Upsert(ctx context.Context, user *User) error
}
