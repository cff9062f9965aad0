// Package service holds the catalog and rating use cases. Both services depend on
// store interfaces so the PostgreSQL repositories and the in-memory store are
// interchangeable.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/repository"
)

// ContentStore persists content entities.
type ContentStore interface {
	Create(ctx context.Context, fields domain.ContentFields) (domain.Content, error)
	GetByID(ctx context.Context, id string) (domain.Content, error)
	List(ctx context.Context) ([]domain.Content, error)
	Update(ctx context.Context, id string, patch domain.ContentPatch) (domain.Content, error)
	Delete(ctx context.Context, id string) error
}

// RatingStore persists ratings. Insert must fail with repository.ErrConflict when
// a rating for the same (user, content) pair already exists.
type RatingStore interface {
	Find(ctx context.Context, userID, contentID string) (domain.Rating, error)
	Insert(ctx context.Context, params repository.RatingParams) (domain.Rating, error)
	UpdateValue(ctx context.Context, id string, value int) (domain.Rating, error)
	ListByContent(ctx context.Context, contentID string) ([]domain.RatingWithUser, error)
	ListByUser(ctx context.Context, userID string) ([]domain.RatingWithContent, error)
}

// storeError maps repository failures onto the domain taxonomy.
func storeError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return domain.ErrNotFound
	}
	return &domain.StoreError{Op: op, Err: err}
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
