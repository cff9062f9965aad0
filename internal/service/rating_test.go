package service_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Clark-Hu/content-ratings/internal/domain"
	"github.com/Clark-Hu/content-ratings/internal/logging"
	"github.com/Clark-Hu/content-ratings/internal/metrics"
	"github.com/Clark-Hu/content-ratings/internal/repository"
	"github.com/Clark-Hu/content-ratings/internal/repository/memstore"
	"github.com/Clark-Hu/content-ratings/internal/service"
)

var alice = domain.Principal{ID: "user-alice", Username: "alice"}

// countingStore records how many store calls were made.
type countingStore struct {
	service.RatingStore
	calls atomic.Int64
}

func (c *countingStore) Find(ctx context.Context, userID, contentID string) (domain.Rating, error) {
	c.calls.Add(1)
	return c.RatingStore.Find(ctx, userID, contentID)
}

func (c *countingStore) Insert(ctx context.Context, p repository.RatingParams) (domain.Rating, error) {
	c.calls.Add(1)
	return c.RatingStore.Insert(ctx, p)
}

func (c *countingStore) UpdateValue(ctx context.Context, id string, value int) (domain.Rating, error) {
	c.calls.Add(1)
	return c.RatingStore.UpdateValue(ctx, id, value)
}

// staleFindStore misses on the first Find to simulate losing an insert race.
type staleFindStore struct {
	service.RatingStore
	missed atomic.Bool
}

func (s *staleFindStore) Find(ctx context.Context, userID, contentID string) (domain.Rating, error) {
	if s.missed.CompareAndSwap(false, true) {
		return domain.Rating{}, repository.ErrNotFound
	}
	return s.RatingStore.Find(ctx, userID, contentID)
}

func newRatingService(st service.RatingStore) *service.RatingService {
	return service.NewRatingService(st, logging.Nop())
}

func TestRate_CreateThenUpdate(t *testing.T) {
	ms := memstore.New()
	svc := newRatingService(ms.Ratings())
	ctx := context.Background()
	contentID := uuid.NewString()

	created, disp, err := svc.Rate(ctx, alice, contentID, 4)
	if err != nil {
		t.Fatalf("first rate: %v", err)
	}
	if disp != domain.DispositionCreated {
		t.Fatalf("expected created, got %s", disp)
	}
	if created.UserID != alice.ID || created.ContentID != contentID || created.Value != 4 {
		t.Fatalf("unexpected rating: %+v", created)
	}

	for _, v := range []int{2, 5} {
		updated, disp, err := svc.Rate(ctx, alice, contentID, v)
		if err != nil {
			t.Fatalf("re-rate %d: %v", v, err)
		}
		if disp != domain.DispositionUpdated {
			t.Fatalf("expected updated, got %s", disp)
		}
		if updated.ID != created.ID {
			t.Fatalf("re-rate changed id: %s -> %s", created.ID, updated.ID)
		}
		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Fatalf("createdAt changed on re-rate")
		}
	}

	list, err := svc.ListRatingsForContent(ctx, contentID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Value != 5 {
		t.Fatalf("expected one rating with value 5, got %+v", list)
	}
}

func TestRate_OutOfRangeWritesNothing(t *testing.T) {
	ms := memstore.New()
	st := &countingStore{RatingStore: ms.Ratings()}
	svc := newRatingService(st)
	contentID := uuid.NewString()

	for _, v := range []int{0, -1, 6, 100} {
		_, _, err := svc.Rate(context.Background(), alice, contentID, v)
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("value %d: expected validation error, got %v", v, err)
		}
		if verr.Message != "rating must be between 1 and 5" {
			t.Fatalf("unexpected message %q", verr.Message)
		}
	}
	if n := st.calls.Load(); n != 0 {
		t.Fatalf("expected no store calls, got %d", n)
	}
}

func TestRate_UnauthenticatedBeforeStoreAccess(t *testing.T) {
	ms := memstore.New()
	st := &countingStore{RatingStore: ms.Ratings()}
	svc := newRatingService(st)

	_, _, err := svc.Rate(context.Background(), domain.Principal{}, uuid.NewString(), 99)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if n := st.calls.Load(); n != 0 {
		t.Fatalf("expected no store calls, got %d", n)
	}
}

func TestRate_InvalidContentID(t *testing.T) {
	svc := newRatingService(memstore.New().Ratings())
	_, _, err := svc.Rate(context.Background(), alice, "not-a-uuid", 3)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRate_ConflictResolvedAsUpdate(t *testing.T) {
	ms := memstore.New()
	ctx := context.Background()
	contentID := uuid.NewString()
	winner, err := ms.Ratings().Insert(ctx, repository.RatingParams{UserID: alice.ID, ContentID: contentID, Value: 1})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	before := testutil.ToFloat64(metrics.RatingConflicts)
	svc := newRatingService(&staleFindStore{RatingStore: ms.Ratings()})
	rating, disp, err := svc.Rate(ctx, alice, contentID, 3)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if disp != domain.DispositionUpdated {
		t.Fatalf("expected updated, got %s", disp)
	}
	if rating.ID != winner.ID || rating.Value != 3 {
		t.Fatalf("expected winner row updated to 3, got %+v", rating)
	}
	if got := testutil.ToFloat64(metrics.RatingConflicts) - before; got != 1 {
		t.Fatalf("expected one conflict counted, got %v", got)
	}
}

func TestRate_StoreFailure(t *testing.T) {
	ms := memstore.New()
	boom := errors.New("connection reset")
	ms.FailWith(boom)
	svc := newRatingService(ms.Ratings())

	_, _, err := svc.Rate(context.Background(), alice, uuid.NewString(), 3)
	if !errors.Is(err, domain.ErrStore) || !errors.Is(err, boom) {
		t.Fatalf("expected store error wrapping cause, got %v", err)
	}
}

func TestRate_ConcurrentDuplicatesLeaveOneRating(t *testing.T) {
	ms := memstore.New()
	svc := newRatingService(ms.Ratings())
	contentID := uuid.NewString()

	const workers = 16
	var (
		wg      sync.WaitGroup
		created atomic.Int64
		failed  atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, disp, err := svc.Rate(context.Background(), alice, contentID, v%5+1)
			if err != nil {
				failed.Add(1)
				return
			}
			if disp == domain.DispositionCreated {
				created.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if failed.Load() != 0 {
		t.Fatalf("expected all rates to succeed, %d failed", failed.Load())
	}
	if created.Load() != 1 {
		t.Fatalf("expected exactly one created disposition, got %d", created.Load())
	}
	list, err := svc.ListRatingsForContent(context.Background(), contentID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one rating, got %d", len(list))
	}
}

func TestRate_CountsDispositions(t *testing.T) {
	svc := newRatingService(memstore.New().Ratings())
	contentID := uuid.NewString()
	createdBefore := testutil.ToFloat64(metrics.RatingsSubmitted.WithLabelValues("created"))
	updatedBefore := testutil.ToFloat64(metrics.RatingsSubmitted.WithLabelValues("updated"))

	for _, v := range []int{1, 2, 3} {
		if _, _, err := svc.Rate(context.Background(), alice, contentID, v); err != nil {
			t.Fatalf("rate: %v", err)
		}
	}
	if got := testutil.ToFloat64(metrics.RatingsSubmitted.WithLabelValues("created")) - createdBefore; got != 1 {
		t.Fatalf("created delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.RatingsSubmitted.WithLabelValues("updated")) - updatedBefore; got != 2 {
		t.Fatalf("updated delta = %v, want 2", got)
	}
}

func TestListRatings_Views(t *testing.T) {
	ms := memstore.New()
	ms.AddUser(alice.ID, alice.Username)
	ctx := context.Background()
	catalog := newCatalog(ms, nil)
	svc := newRatingService(ms.Ratings())

	c, err := catalog.CreateContent(ctx, alice, domain.ContentFields{Title: "Chess", Category: domain.CategoryGame})
	if err != nil {
		t.Fatalf("create content: %v", err)
	}
	orphan := uuid.NewString()
	bob := domain.Principal{ID: "user-bob"}
	mustRate(t, svc, alice, c.ID, 5)
	mustRate(t, svc, bob, c.ID, 2)
	mustRate(t, svc, alice, orphan, 3)

	byContent, err := svc.ListRatingsForContent(ctx, c.ID)
	if err != nil {
		t.Fatalf("by content: %v", err)
	}
	if len(byContent) != 2 {
		t.Fatalf("expected 2 ratings, got %d", len(byContent))
	}
	if byContent[0].Username != "alice" || byContent[1].Username != "" {
		t.Fatalf("unexpected usernames: %q %q", byContent[0].Username, byContent[1].Username)
	}

	byUser, err := svc.ListRatingsForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("by user: %v", err)
	}
	if len(byUser) != 2 || byUser[0].ContentTitle != "Chess" || byUser[1].ContentTitle != "" {
		t.Fatalf("unexpected user view: %+v", byUser)
	}

	malformed, err := svc.ListRatingsForContent(ctx, "nope")
	if err != nil || len(malformed) != 0 {
		t.Fatalf("expected empty list for malformed id, got %v %v", malformed, err)
	}
}

func mustRate(t testing.TB, svc *service.RatingService, p domain.Principal, contentID string, v int) domain.Rating {
	t.Helper()
	r, _, err := svc.Rate(context.Background(), p, contentID, v)
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	return r
}

func BenchmarkRate(b *testing.B) {
	svc := newRatingService(memstore.New().Ratings())
	contentID := uuid.NewString()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := svc.Rate(ctx, alice, contentID, i%5+1); err != nil {
			b.Fatalf("rate: %v", err)
		}
	}
}
