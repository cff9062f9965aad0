package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/content-ratings/internal/domain"
)

// UsersRepository reads and seeds the accounts owned by the credential issuer.
type UsersRepository struct {
	pool *pgxpool.Pool
}

// Create inserts a user and returns it with its assigned id.
func (r *UsersRepository) Create(ctx context.Context, email, username, passwordHash string) (domain.User, error) {
	const query = `
        INSERT INTO users (email, username, password_hash)
        VALUES ($1,$2,$3)
        RETURNING id::text, email, username, password_hash
    `
	var u domain.User
	err := r.pool.QueryRow(ctx, query, email, username, passwordHash).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash)
	return u, err
}

// GetByID fetches a user by id.
func (r *UsersRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	if !validID(id) {
		return domain.User{}, ErrNotFound
	}
	const query = `SELECT id::text, email, username, password_hash FROM users WHERE id = $1`
	var u domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}
