package redis

import (
	"context"
	"time"
)

const rateLimitPrefix = "rate_limit:"

// RateCounter is a fixed-window request counter shared by all API instances
type RateCounter struct {
	client *Client
}

func NewRateCounter(client *Client) *RateCounter {
	return &RateCounter{client: client}
}

// Hit increments key's counter for the current window and returns the new count
func (r *RateCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := rateLimitPrefix + key
	pipe := r.client.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
