// Package memstore is an in-memory stand-in for the PostgreSQL repositories.
// It enforces the same (user, content) uniqueness and not-found rules and is
// safe for concurrent use.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/repository"
)

// Store holds content, ratings and user display names.
type Store struct {
	mu       sync.Mutex
	content  []domain.Content
	ratings  []domain.Rating
	users    map[string]string
	now      func() time.Time
	failWith error
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users: make(map[string]string),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// AddUser registers a display name for a principal id.
func (s *Store) AddUser(id, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = username
}

// FailWith makes every subsequent call return err; nil restores normal behaviour.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = err
}

// Content exposes the content operations.
func (s *Store) Content() *ContentStore { return &ContentStore{s: s} }

// Ratings exposes the rating operations.
func (s *Store) Ratings() *RatingStore { return &RatingStore{s: s} }

// ContentStore mirrors repository.ContentRepository.
type ContentStore struct{ s *Store }

func (c *ContentStore) Create(_ context.Context, fields domain.ContentFields) (domain.Content, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return domain.Content{}, s.failWith
	}
	now := s.now()
	item := domain.Content{
		ID:           uuid.NewString(),
		Title:        fields.Title,
		Description:  fields.Description,
		Category:     fields.Category,
		ThumbnailURL: fields.ThumbnailURL,
		ContentURL:   fields.ContentURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.content = append(s.content, item)
	return item, nil
}

func (c *ContentStore) GetByID(_ context.Context, id string) (domain.Content, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return domain.Content{}, s.failWith
	}
	if i := s.contentIndex(id); i >= 0 {
		return s.content[i], nil
	}
	return domain.Content{}, repository.ErrNotFound
}

func (c *ContentStore) List(_ context.Context) ([]domain.Content, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append(make([]domain.Content, 0, len(s.content)), s.content...), nil
}

func (c *ContentStore) Update(_ context.Context, id string, patch domain.ContentPatch) (domain.Content, error) {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return domain.Content{}, s.failWith
	}
	i := s.contentIndex(id)
	if i < 0 {
		return domain.Content{}, repository.ErrNotFound
	}
	item := &s.content[i]
	if patch.Title != nil {
		item.Title = *patch.Title
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Category != nil {
		item.Category = *patch.Category
	}
	if patch.ThumbnailURL != nil {
		item.ThumbnailURL = *patch.ThumbnailURL
	}
	if patch.ContentURL != nil {
		item.ContentURL = *patch.ContentURL
	}
	item.UpdatedAt = s.now()
	return *item, nil
}

func (c *ContentStore) Delete(_ context.Context, id string) error {
	s := c.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	i := s.contentIndex(id)
	if i < 0 {
		return repository.ErrNotFound
	}
	s.content = append(s.content[:i], s.content[i+1:]...)
	return nil
}

func (s *Store) contentIndex(id string) int {
	for i := range s.content {
		if s.content[i].ID == id {
			return i
		}
	}
	return -1
}

// RatingStore mirrors repository.RatingsRepository.
type RatingStore struct{ s *Store }

func (r *RatingStore) Find(_ context.Context, userID, contentID string) (domain.Rating, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return domain.Rating{}, s.failWith
	}
	for _, rating := range s.ratings {
		if rating.UserID == userID && rating.ContentID == contentID {
			return rating, nil
		}
	}
	return domain.Rating{}, repository.ErrNotFound
}

func (r *RatingStore) Insert(_ context.Context, params repository.RatingParams) (domain.Rating, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return domain.Rating{}, s.failWith
	}
	for _, rating := range s.ratings {
		if rating.UserID == params.UserID && rating.ContentID == params.ContentID {
			return domain.Rating{}, repository.ErrConflict
		}
	}
	now := s.now()
	rating := domain.Rating{
		ID:        uuid.NewString(),
		UserID:    params.UserID,
		ContentID: params.ContentID,
		Value:     params.Value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.ratings = append(s.ratings, rating)
	return rating, nil
}

func (r *RatingStore) UpdateValue(_ context.Context, id string, value int) (domain.Rating, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return domain.Rating{}, s.failWith
	}
	for i := range s.ratings {
		if s.ratings[i].ID == id {
			s.ratings[i].Value = value
			s.ratings[i].UpdatedAt = s.now()
			return s.ratings[i], nil
		}
	}
	return domain.Rating{}, repository.ErrNotFound
}

func (r *RatingStore) ListByContent(_ context.Context, contentID string) ([]domain.RatingWithUser, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	items := make([]domain.RatingWithUser, 0)
	for _, rating := range s.ratings {
		if rating.ContentID == contentID {
			items = append(items, domain.RatingWithUser{Rating: rating, Username: s.users[rating.UserID]})
		}
	}
	return items, nil
}

func (r *RatingStore) ListByUser(_ context.Context, userID string) ([]domain.RatingWithContent, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	items := make([]domain.RatingWithContent, 0)
	for _, rating := range s.ratings {
		if rating.UserID != userID {
			continue
		}
		var title string
		if i := s.contentIndex(rating.ContentID); i >= 0 {
			title = s.content[i].Title
		}
		items = append(items, domain.RatingWithContent{Rating: rating, ContentTitle: title})
	}
	return items, nil
}
