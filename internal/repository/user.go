package repository

import (
	"context"

	"mediafeed/internal/model"
)

// UserRepository mirrors identity-provider accounts into the users table so
// the feed join always finds an author for every post.
type UserRepository interface {
	// Upsert inserts the user or refreshes its email if the row exists.
	Upsert(ctx context.Context, id, email string) (*model.User, error)

	// FindByID returns a user by ID, or sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.User, error)
}
