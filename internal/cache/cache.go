// Package cache provides a read-through cache for single content lookups.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/Clark-Hu/content-ratings/internal/domain"
)

const (
	keyPrefix = "content:"
	genPrefix = "content:gen:"
	// genTTL bounds how long an invalidation is remembered; it only has to
	// outlive an in-flight store read.
	genTTL = 24 * time.Hour
)

// ContentCache stores content entities by id.
//
// Every Delete bumps a per-id generation. Get reports the generation current at
// read time and Set stores only while that generation is unchanged, so a fill
// racing with an update or delete never writes back a stale row.
type ContentCache interface {
	Get(ctx context.Context, id string) (c domain.Content, gen int64, hit bool, err error)
	Set(ctx context.Context, c domain.Content, gen int64) error
	Delete(ctx context.Context, id string) error
}

// Noop never hits; used when no Redis is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (domain.Content, int64, bool, error) {
	return domain.Content{}, 0, false, nil
}

func (Noop) Set(context.Context, domain.Content, int64) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

// Redis caches content as JSON strings with a fixed TTL.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the given redis:// URL and pings it.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// setIfGen writes KEYS[1] only when the generation in KEYS[2] (missing = 0) equals ARGV[1].
var setIfGen = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
  return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

type entry struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ThumbnailURL string    `json:"thumbnail_url"`
	ContentURL   string    `json:"content_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Redis) Get(ctx context.Context, id string) (domain.Content, int64, bool, error) {
	vals, err := r.client.MGet(ctx, keyPrefix+id, genPrefix+id).Result()
	if err != nil {
		return domain.Content{}, 0, false, err
	}
	gen, err := parseGen(vals[1])
	if err != nil {
		return domain.Content{}, 0, false, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return domain.Content{}, gen, false, nil
	}
	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return domain.Content{}, gen, false, fmt.Errorf("decode cached content: %w", err)
	}
	return domain.Content{
		ID:           e.ID,
		Title:        e.Title,
		Description:  e.Description,
		Category:     domain.Category(e.Category),
		ThumbnailURL: e.ThumbnailURL,
		ContentURL:   e.ContentURL,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}, gen, true, nil
}

func (r *Redis) Set(ctx context.Context, c domain.Content, gen int64) error {
	payload, err := json.Marshal(entry{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Category:     string(c.Category),
		ThumbnailURL: c.ThumbnailURL,
		ContentURL:   c.ContentURL,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	})
	if err != nil {
		return err
	}
	keys := []string{keyPrefix + c.ID, genPrefix + c.ID}
	return setIfGen.Run(ctx, r.client, keys, strconv.FormatInt(gen, 10), string(payload), r.ttl.Milliseconds()).Err()
}

// Delete bumps the generation and drops the entry in one transaction.
func (r *Redis) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genPrefix+id)
		pipe.Expire(ctx, genPrefix+id, genTTL)
		pipe.Del(ctx, keyPrefix+id)
		return nil
	})
	return err
}

// Close releases the client connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func parseGen(v interface{}) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("decode cache generation: %w", err)
	}
	return gen, nil
}
