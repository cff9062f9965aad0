package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Clark-Hu/content-ratings/internal/domain"
)

func TestNoop(t *testing.T) {
	var c ContentCache = Noop{}
	if err := c.Set(context.Background(), domain.Content{ID: "x"}, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, _, ok, err := c.Get(context.Background(), "x"); ok || err != nil {
		t.Fatalf("Get = %v, %v; want miss", ok, err)
	}
}

func TestParseGen(t *testing.T) {
	tests := []struct {
		in      interface{}
		want    int64
		wantErr bool
	}{
		{nil, 0, false},
		{"7", 7, false},
		{"x", 0, true},
	}
	for _, tt := range tests {
		got, err := parseGen(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("parseGen(%v) = %d, %v", tt.in, got, err)
		}
	}
}

func newRedisFromEnv(t *testing.T) (*Redis, context.Context) {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not provided")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	r, err := NewRedis(ctx, url, time.Minute)
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })
	return r, ctx
}

// TestRedisRoundTrip runs against a live server when REDIS_URL is set.
func TestRedisRoundTrip(t *testing.T) {
	r, ctx := newRedisFromEnv(t)

	want := domain.Content{
		ID:        uuid.NewString(),
		Title:     "Sample Game",
		Category:  domain.CategoryGame,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, gen, ok, err := r.Get(ctx, want.ID)
	if err != nil || ok || gen != 0 {
		t.Fatalf("Get on empty = gen %d, hit %v, err %v", gen, ok, err)
	}
	if err := r.Set(ctx, want, gen); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, ok, err := r.Get(ctx, want.ID)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got.Title != want.Title || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("Get = %+v, want %+v", got, want)
	}
	if err := r.Delete(ctx, want.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, _, ok, _ := r.Get(ctx, want.ID); ok {
		t.Fatalf("entry still cached after Delete")
	}
}

func TestRedisSetSkippedAfterInvalidation(t *testing.T) {
	r, ctx := newRedisFromEnv(t)

	item := domain.Content{ID: uuid.NewString(), Title: "Stale", Category: domain.CategoryGame}
	_, gen, _, err := r.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if err := r.Delete(ctx, item.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Set(ctx, item, gen); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, newGen, ok, _ := r.Get(ctx, item.ID); ok || newGen != gen+1 {
		t.Fatalf("stale fill was stored (hit %v, gen %d)", ok, newGen)
	}
}
