package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/content-ratings/internal/store"
)

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrConflict indicates a uniqueness constraint rejected the write.
	ErrConflict = errors.New("repository: conflict")
)

// Repository aggregates all domain-specific repositories.
type Repository struct {
	Content *ContentRepository
	Ratings *RatingsRepository
	Users   *UsersRepository
	pool    *pgxpool.Pool
}

// New constructs a Repository backed by the provided store.
func New(st *store.Store) *Repository {
	return NewWithPool(st.Pool())
}

// NewWithPool allows constructing repositories directly from a pgx pool.
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{
		Content: &ContentRepository{pool: pool},
		Ratings: &RatingsRepository{pool: pool},
		Users:   &UsersRepository{pool: pool},
		pool:    pool,
	}
}

// Truncate removes every row from all tables. Used by the seed command.
func (r *Repository) Truncate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `TRUNCATE ratings, content, users`)
	return err
}

// validID reports whether id can name a row; ids are UUIDs.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
