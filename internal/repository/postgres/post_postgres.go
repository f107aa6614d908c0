package postgres

import (
	"context"
	"database/sql"

	"mediafeed/internal/model"
	"mediafeed/internal/repository"
)

// PostPostgres is a PostgreSQL implementation of repository.PostRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type PostPostgres struct {
	db *sql.DB
}

// NewPostPostgres creates a new PostPostgres repository.
func NewPostPostgres(db *sql.DB) *PostPostgres {
	return &PostPostgres{db: db}
}

var _ repository.PostRepository = (*PostPostgres)(nil)

// Create inserts a new post row and returns the stored record.
func (r *PostPostgres) Create(ctx context.Context, post *model.Post) (*model.Post, error) {
	const q = `
		INSERT INTO posts (id, user_id, caption, url, file_type, file_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, user_id, caption, url, file_type, file_name, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		post.ID,
		post.UserID,
		post.Caption,
		post.URL,
		post.FileType,
		post.FileName,
		post.CreatedAt,
	)
	var out model.Post
	if err := row.Scan(
		&out.ID,
		&out.UserID,
		&out.Caption,
		&out.URL,
		&out.FileType,
		&out.FileName,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single post by its ID.
func (r *PostPostgres) FindByID(ctx context.Context, id string) (*model.Post, error) {
	const q = `
		SELECT id, user_id, caption, url, file_type, file_name, created_at
		FROM posts
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var p model.Post
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Caption,
		&p.URL,
		&p.FileType,
		&p.FileName,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListWithAuthors returns all posts joined with their author, newest first.
// The id tie-break keeps the ordering stable for posts sharing a timestamp.
func (r *PostPostgres) ListWithAuthors(ctx context.Context) ([]repository.FeedRow, error) {
	const q = `
		SELECT p.id, p.user_id, p.caption, p.url, p.file_type, p.file_name, p.created_at, u.email
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]repository.FeedRow, 0)
	for rows.Next() {
		var fr repository.FeedRow
		if err := rows.Scan(
			&fr.Post.ID,
			&fr.Post.UserID,
			&fr.Post.Caption,
			&fr.Post.URL,
			&fr.Post.FileType,
			&fr.Post.FileName,
			&fr.Post.CreatedAt,
			&fr.AuthorEmail,
		); err != nil {
			return nil, err
		}
		items = append(items, fr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a post by ID. It returns sql.ErrNoRows when nothing matched
// so callers can distinguish a repeated delete.
func (r *PostPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM posts WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
