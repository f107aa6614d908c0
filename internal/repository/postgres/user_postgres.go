package postgres

import (
	"context"
	"database/sql"

	"mediafeed/internal/model"
	"mediafeed/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

// Upsert inserts the user row or refreshes its email on conflict.
func (r *UserPostgres) Upsert(ctx context.Context, id, email string) (*model.User, error) {
	const q = `
		INSERT INTO users (id, email)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email
		RETURNING id, email, created_at
	`
	row := r.db.QueryRowContext(ctx, q, id, email)
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByID fetches a single user by its ID.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `
		SELECT id, email, created_at
		FROM users
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
