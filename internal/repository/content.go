package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/metrics"
)

// ContentRepository provides persistence helpers for content entities.
type ContentRepository struct {
	pool *pgxpool.Pool
}

const contentColumns = `
    id::text,
    title,
    description,
    category,
    thumbnail_url,
    content_url,
    created_at,
    updated_at
`

// Create inserts a new content row and returns the stored entity.
func (r *ContentRepository) Create(ctx context.Context, fields domain.ContentFields) (domain.Content, error) {
	defer metrics.ObserveStore("insert", "content", time.Now())

	query := fmt.Sprintf(`
        INSERT INTO content (title, description, category, thumbnail_url, content_url)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING %s
    `, contentColumns)

	row := r.pool.QueryRow(ctx, query, fields.Title, fields.Description, string(fields.Category), fields.ThumbnailURL, fields.ContentURL)
	return scanContent(row)
}

// GetByID fetches a content item by its identifier.
func (r *ContentRepository) GetByID(ctx context.Context, id string) (domain.Content, error) {
	if !validID(id) {
		return domain.Content{}, ErrNotFound
	}
	defer metrics.ObserveStore("select", "content", time.Now())

	query := fmt.Sprintf(`SELECT %s FROM content WHERE id = $1`, contentColumns)
	content, err := scanContent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Content{}, ErrNotFound
		}
		return domain.Content{}, err
	}
	return content, nil
}

// List returns every content item in insertion order.
func (r *ContentRepository) List(ctx context.Context) ([]domain.Content, error) {
	defer metrics.ObserveStore("list", "content", time.Now())

	query := fmt.Sprintf(`SELECT %s FROM content ORDER BY seq`, contentColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Content, 0)
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, content)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Update overwrites the fields present in patch and refreshes updated_at.
func (r *ContentRepository) Update(ctx context.Context, id string, patch domain.ContentPatch) (domain.Content, error) {
	if !validID(id) {
		return domain.Content{}, ErrNotFound
	}
	defer metrics.ObserveStore("update", "content", time.Now())

	var category *string
	if patch.Category != nil {
		c := string(*patch.Category)
		category = &c
	}

	query := fmt.Sprintf(`
        UPDATE content
        SET title = COALESCE($2, title),
            description = COALESCE($3, description),
            category = COALESCE($4, category),
            thumbnail_url = COALESCE($5, thumbnail_url),
            content_url = COALESCE($6, content_url),
            updated_at = now()
        WHERE id = $1
        RETURNING %s
    `, contentColumns)

	row := r.pool.QueryRow(ctx, query, id, patch.Title, patch.Description, category, patch.ThumbnailURL, patch.ContentURL)
	content, err := scanContent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Content{}, ErrNotFound
		}
		return domain.Content{}, err
	}
	return content, nil
}

// Delete removes a content item. Ratings referencing it are left untouched.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	defer metrics.ObserveStore("delete", "content", time.Now())

	tag, err := r.pool.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanContent(row pgx.Row) (domain.Content, error) {
	var (
		content  domain.Content
		category string
	)
	err := row.Scan(
		&content.ID,
		&content.Title,
		&content.Description,
		&category,
		&content.ThumbnailURL,
		&content.ContentURL,
		&content.CreatedAt,
		&content.UpdatedAt,
	)
	if err != nil {
		return domain.Content{}, err
	}
	content.Category = domain.Category(category)
	return content, nil
}
