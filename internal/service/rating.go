package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/logging"
	"github.com/Clark-Hu/content-ratings/internal/metrics"
	"github.com/Clark-Hu/content-ratings/internal/repository"
)

// RatingService implements rate/re-rate and the read views.
type RatingService struct {
	store  RatingStore
	logger zerolog.Logger
}

// NewRatingService wires the rating service.
func NewRatingService(store RatingStore, logger zerolog.Logger) *RatingService {
	return &RatingService{store: store, logger: logger}
}

// Rate records the principal's rating of a content item, creating it on the first
// call for the pair and updating it in place afterwards.
//
// An insert that loses a race against a concurrent insert for the same pair is
// resolved by looking the winner up once more and updating it.
// The content id is not checked for existence.
func (s *RatingService) Rate(ctx context.Context, p domain.Principal, contentID string, value int) (domain.Rating, domain.Disposition, error) {
	if !p.Authenticated() {
		return domain.Rating{}, "", domain.ErrUnauthenticated
	}
	if !domain.ValidRating(value) {
		return domain.Rating{}, "", domain.NewValidationError("rating", "rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	if !isUUID(contentID) {
		return domain.Rating{}, "", domain.NewValidationError("content", "content must be a valid id")
	}

	existing, err := s.store.Find(ctx, p.ID, contentID)
	switch {
	case err == nil:
		return s.update(ctx, existing, value)
	case !errors.Is(err, repository.ErrNotFound):
		return domain.Rating{}, "", &domain.StoreError{Op: "find rating", Err: err}
	}

	created, err := s.store.Insert(ctx, repository.RatingParams{UserID: p.ID, ContentID: contentID, Value: value})
	if err == nil {
		metrics.RatingsSubmitted.WithLabelValues(string(domain.DispositionCreated)).Inc()
		logging.Ctx(ctx, s.logger).Debug().Str("rating_id", created.ID).Str("content_id", contentID).Msg("rating created")
		return created, domain.DispositionCreated, nil
	}
	if !errors.Is(err, repository.ErrConflict) {
		return domain.Rating{}, "", &domain.StoreError{Op: "insert rating", Err: err}
	}

	metrics.RatingConflicts.Inc()
	logging.Ctx(ctx, s.logger).Info().Str("principal", p.ID).Str("content_id", contentID).Msg("concurrent rating insert, retrying as update")
	existing, err = s.store.Find(ctx, p.ID, contentID)
	if err != nil {
		return domain.Rating{}, "", &domain.StoreError{Op: "find rating after conflict", Err: err}
	}
	return s.update(ctx, existing, value)
}

func (s *RatingService) update(ctx context.Context, existing domain.Rating, value int) (domain.Rating, domain.Disposition, error) {
	updated, err := s.store.UpdateValue(ctx, existing.ID, value)
	if err != nil {
		return domain.Rating{}, "", &domain.StoreError{Op: "update rating", Err: err}
	}
	metrics.RatingsSubmitted.WithLabelValues(string(domain.DispositionUpdated)).Inc()
	logging.Ctx(ctx, s.logger).Debug().Str("rating_id", updated.ID).Int("previous", existing.Value).Int("rating", value).Msg("rating updated")
	return updated, domain.DispositionUpdated, nil
}

// ListRatingsForContent returns every rating of a content item with the rater's display name.
func (s *RatingService) ListRatingsForContent(ctx context.Context, contentID string) ([]domain.RatingWithUser, error) {
	if !isUUID(contentID) {
		return []domain.RatingWithUser{}, nil
	}
	items, err := s.store.ListByContent(ctx, contentID)
	if err != nil {
		return nil, &domain.StoreError{Op: "list ratings by content", Err: err}
	}
	return items, nil
}

// ListRatingsForUser returns every rating a user gave with the rated content's title.
func (s *RatingService) ListRatingsForUser(ctx context.Context, userID string) ([]domain.RatingWithContent, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, &domain.StoreError{Op: "list ratings by user", Err: err}
	}
	return items, nil
}
