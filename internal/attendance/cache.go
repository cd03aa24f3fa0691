package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// MonthCache caches assembled month views in Redis. A nil cache is valid and
// turns every operation into a no-op, so callers need no configured-or-not
// branching.
type MonthCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMonthCache wraps a redis client. ttl bounds staleness for reads that
// race a writer on another process.
func NewMonthCache(client *redis.Client, ttl time.Duration) *MonthCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MonthCache{client: client, ttl: ttl}
}

func monthKey(year, month int) string {
	return fmt.Sprintf("calendar:%04d-%02d", year, month)
}

// Get returns the cached days for (year, month), or ok=false on miss or any
// redis error. Cache failures never fail the read path.
func (c *MonthCache) Get(ctx context.Context, year, month int) ([]Day, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, monthKey(year, month)).Bytes()
	if err != nil {
		return nil, false
	}
	var days []Day
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, false
	}
	return days, true
}

// Set stores the days for (year, month) with the cache TTL.
func (c *MonthCache) Set(ctx context.Context, year, month int, days []Day) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(days)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, monthKey(year, month), data, c.ttl).Err()
}

// Invalidate drops the cached month containing date so the next read
// observes the write.
func (c *MonthCache) Invalidate(ctx context.Context, date time.Time) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, monthKey(date.Year(), int(date.Month()))).Err()
}
