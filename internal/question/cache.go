package question

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultListCacheTTL = 2 * time.Minute
	cacheVersionKey     = "questions:list:version"
)

// Cache provides Redis-backed catalog listing caching. Invalidation bumps a
// version counter that is baked into every key, so stale entries simply age
// out under the TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ListCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultListCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(ctx context.Context, f Filter) string {
	version, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		version = 0
	}

	tags := append([]string(nil), f.Tags...)
	sort.Strings(tags)

	return strings.Join([]string{
		"questions:list",
		fmt.Sprint(version),
		f.Difficulty,
		f.Category,
		strings.Join(tags, "|"),
		strings.ToLower(f.Search),
	}, ":")
}

func (c *Cache) Get(ctx context.Context, f Filter) ([]Question, error) {
	data, err := c.client.Get(ctx, c.key(ctx, f)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (c *Cache) Set(ctx context.Context, f Filter, qs []Question) error {
	data, err := json.Marshal(qs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(ctx, f), data, c.ttl).Err()
}

// Invalidate bumps the version counter so all existing listing keys become
// unreachable.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, cacheVersionKey).Err()
}
