package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReportCache stores rendered report documents keyed by client and
// snapshot fingerprint, so an unchanged snapshot is rendered once.
type ReportCache interface {
	Get(ctx context.Context, clientID, fingerprint string) ([]byte, bool, error)
	Set(ctx context.Context, clientID, fingerprint string, html []byte) error
}

type redisReportCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewReportCache builds a Redis backed cache. A zero ttl keeps entries
// until evicted.
func NewReportCache(client redis.Cmdable, ttl time.Duration) ReportCache {
	return &redisReportCache{client: client, ttl: ttl}
}

// CacheKey is the Redis key of one rendered report.
func CacheKey(clientID, fingerprint string) string {
	return fmt.Sprintf("report:html:%s:%s", clientID, fingerprint)
}

func (c *redisReportCache) Get(ctx context.Context, clientID, fingerprint string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, CacheKey(clientID, fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (c *redisReportCache) Set(ctx context.Context, clientID, fingerprint string, html []byte) error {
	return c.client.Set(ctx, CacheKey(clientID, fingerprint), html, c.ttl).Err()
}
