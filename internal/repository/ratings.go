package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/metrics"
)

const (
	uniqueViolation         = "23505"
	ratingsUniqueConstraint = "ratings_user_content_key"
)

// RatingsRepository provides helpers for content ratings.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// RatingParams identifies a rating by (user, content) and carries its value.
type RatingParams struct {
	UserID    string
	ContentID string
	Value     int
}

const ratingColumns = `r.id::text, r.user_id, r.content_id::text, r.rating, r.created_at, r.updated_at`

// Find retrieves the rating a user gave a content item.
func (r *RatingsRepository) Find(ctx context.Context, userID, contentID string) (domain.Rating, error) {
	if !validID(contentID) {
		return domain.Rating{}, ErrNotFound
	}
	defer metrics.ObserveStore("select", "ratings", time.Now())

	const query = `SELECT ` + ratingColumns + ` FROM ratings r WHERE r.user_id = $1 AND r.content_id = $2`
	rating, err := scanRating(r.pool.QueryRow(ctx, query, userID, contentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// Insert stores a new rating. A rating already present for the same (user, content)
// pair makes it fail with ErrConflict.
func (r *RatingsRepository) Insert(ctx context.Context, params RatingParams) (domain.Rating, error) {
	defer metrics.ObserveStore("insert", "ratings", time.Now())

	const query = `
        INSERT INTO ratings AS r (user_id, content_id, rating)
        VALUES ($1,$2,$3)
        RETURNING ` + ratingColumns

	rating, err := scanRating(r.pool.QueryRow(ctx, query, params.UserID, params.ContentID, params.Value))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == ratingsUniqueConstraint {
			return domain.Rating{}, ErrConflict
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// UpdateValue changes the value of an existing rating and refreshes updated_at.
func (r *RatingsRepository) UpdateValue(ctx context.Context, id string, value int) (domain.Rating, error) {
	if !validID(id) {
		return domain.Rating{}, ErrNotFound
	}
	defer metrics.ObserveStore("update", "ratings", time.Now())

	const query = `
        UPDATE ratings AS r
        SET rating = $2, updated_at = now()
        WHERE r.id = $1
        RETURNING ` + ratingColumns

	rating, err := scanRating(r.pool.QueryRow(ctx, query, id, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// ListByContent returns the ratings of a content item joined with each rater's username.
func (r *RatingsRepository) ListByContent(ctx context.Context, contentID string) ([]domain.RatingWithUser, error) {
	items := make([]domain.RatingWithUser, 0)
	if !validID(contentID) {
		return items, nil
	}
	defer metrics.ObserveStore("list_by_content", "ratings", time.Now())

	const query = `
        SELECT ` + ratingColumns + `, COALESCE(u.username, '')
        FROM ratings r
        LEFT JOIN users u ON u.id::text = r.user_id
        WHERE r.content_id = $1
        ORDER BY r.seq
    `
	rows, err := r.pool.Query(ctx, query, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.RatingWithUser
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ContentID,
			&item.Value,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Username,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUser returns a user's ratings joined with each content item's title.
// Ratings whose content was deleted carry an empty title.
func (r *RatingsRepository) ListByUser(ctx context.Context, userID string) ([]domain.RatingWithContent, error) {
	defer metrics.ObserveStore("list_by_user", "ratings", time.Now())

	const query = `
        SELECT ` + ratingColumns + `, COALESCE(c.title, '')
        FROM ratings r
        LEFT JOIN content c ON c.id = r.content_id
        WHERE r.user_id = $1
        ORDER BY r.seq
    `
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.RatingWithContent, 0)
	for rows.Next() {
		var item domain.RatingWithContent
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ContentID,
			&item.Value,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.ContentTitle,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanRating(row pgx.Row) (domain.Rating, error) {
	var rating domain.Rating
	err := row.Scan(
		&rating.ID,
		&rating.UserID,
		&rating.ContentID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	return rating, err
}
