// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"context"

	"mediafeed/internal/model"
)

// FeedRow is one post joined with its author, as returned by the listing
// query. Viewer-specific annotation (is_owner) happens in the service layer.
type FeedRow struct {
	Post        model.Post
	AuthorEmail string
}

// PostRepository defines data access for posts using SQL queries only.
// No business logic here — strictly persistence operations.
type PostRepository interface {
	// Create inserts a new post row in a single statement.
	// The caller provides all fields (ID, CreatedAt included); the stored
	// record is returned as persisted.
	Create(ctx context.Context, post *model.Post) (*model.Post, error)

	// FindByID returns a post by its ID, or sql.ErrNoRows if absent.
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// ListWithAuthors returns every post joined with its author, ordered by
	// created_at descending with id as the stable tie-break.
	ListWithAuthors(ctx context.Context) ([]FeedRow, error)

	// Delete removes a post by ID in a single statement. It returns
	// sql.ErrNoRows if no row was deleted.
	Delete(ctx context.Context, id string) error
}
