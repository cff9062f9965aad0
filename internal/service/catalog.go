package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Clark-Hu/content-ratings/internal/cache"
	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/logging"
	"github.com/Clark-Hu/content-ratings/internal/metrics"
)

// CatalogService manages the content lifecycle.
type CatalogService struct {
	store      ContentStore
	cache      cache.ContentCache
	categories domain.CategorySet
	logger     zerolog.Logger
}

// NewCatalogService wires the catalog. A nil cache disables caching.
func NewCatalogService(store ContentStore, c cache.ContentCache, categories domain.CategorySet, logger zerolog.Logger) *CatalogService {
	if c == nil {
		c = cache.Noop{}
	}
	if len(categories) == 0 {
		categories = domain.NewCategorySet(domain.DefaultCategories...)
	}
	return &CatalogService{store: store, cache: c, categories: categories, logger: logger}
}

// CreateContent validates and stores a new content item.
func (s *CatalogService) CreateContent(ctx context.Context, p domain.Principal, fields domain.ContentFields) (domain.Content, error) {
	if !p.Authenticated() {
		return domain.Content{}, domain.ErrUnauthenticated
	}
	fields.Title = strings.TrimSpace(fields.Title)
	fields.Category = normalizeCategory(fields.Category)
	if fields.Title == "" {
		return domain.Content{}, domain.NewValidationError("title", "title is required")
	}
	if fields.Category == "" {
		return domain.Content{}, domain.NewValidationError("category", "category is required")
	}
	if err := s.checkCategory(fields.Category); err != nil {
		return domain.Content{}, err
	}

	content, err := s.store.Create(ctx, fields)
	if err != nil {
		return domain.Content{}, &domain.StoreError{Op: "create content", Err: err}
	}
	logging.Ctx(ctx, s.logger).Info().Str("content_id", content.ID).Str("principal", p.ID).Msg("content created")
	return content, nil
}

// ListContent returns every content item in store order.
func (s *CatalogService) ListContent(ctx context.Context) ([]domain.Content, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return nil, &domain.StoreError{Op: "list content", Err: err}
	}
	return items, nil
}

// GetContent fetches one content item, consulting the cache first.
func (s *CatalogService) GetContent(ctx context.Context, id string) (domain.Content, error) {
	if !isUUID(id) {
		return domain.Content{}, domain.ErrNotFound
	}
	cached, gen, hit, cacheErr := s.cache.Get(ctx, id)
	if cacheErr != nil {
		logging.Ctx(ctx, s.logger).Warn().Err(cacheErr).Str("content_id", id).Msg("content cache read failed")
	} else if hit {
		metrics.CacheHits.Inc()
		return cached, nil
	}
	metrics.CacheMisses.Inc()

	content, err := s.store.GetByID(ctx, id)
	if err != nil {
		return domain.Content{}, storeError("get content", err)
	}
	// Without a generation the fill could not be checked against invalidations.
	if cacheErr == nil {
		if err := s.cache.Set(ctx, content, gen); err != nil {
			logging.Ctx(ctx, s.logger).Warn().Err(err).Str("content_id", id).Msg("content cache write failed")
		}
	}
	return content, nil
}

// UpdateContent overwrites the fields present in patch.
func (s *CatalogService) UpdateContent(ctx context.Context, p domain.Principal, id string, patch domain.ContentPatch) (domain.Content, error) {
	if !p.Authenticated() {
		return domain.Content{}, domain.ErrUnauthenticated
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return domain.Content{}, domain.NewValidationError("title", "title must not be empty")
		}
		patch.Title = &title
	}
	if patch.Category != nil {
		category := normalizeCategory(*patch.Category)
		if err := s.checkCategory(category); err != nil {
			return domain.Content{}, err
		}
		patch.Category = &category
	}
	if !isUUID(id) {
		return domain.Content{}, domain.ErrNotFound
	}

	content, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return domain.Content{}, storeError("update content", err)
	}
	s.invalidate(ctx, id)
	logging.Ctx(ctx, s.logger).Info().Str("content_id", id).Str("principal", p.ID).Msg("content updated")
	return content, nil
}

// DeleteContent removes a content item. Ratings that reference it are kept.
func (s *CatalogService) DeleteContent(ctx context.Context, p domain.Principal, id string) error {
	if !p.Authenticated() {
		return domain.ErrUnauthenticated
	}
	if !isUUID(id) {
		return domain.ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return storeError("delete content", err)
	}
	s.invalidate(ctx, id)
	logging.Ctx(ctx, s.logger).Info().Str("content_id", id).Str("principal", p.ID).Msg("content deleted")
	return nil
}

func (s *CatalogService) checkCategory(c domain.Category) error {
	if !s.categories.Allows(c) {
		names := s.categories.Names()
		sort.Strings(names)
		return domain.NewValidationError("category", "category must be one of: %s", strings.Join(names, ", "))
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, id); err != nil && !errors.Is(err, context.Canceled) {
		logging.Ctx(ctx, s.logger).Warn().Err(err).Str("content_id", id).Msg("content cache invalidation failed")
	}
}

func normalizeCategory(c domain.Category) domain.Category {
	return domain.Category(strings.ToLower(strings.TrimSpace(string(c))))
}
