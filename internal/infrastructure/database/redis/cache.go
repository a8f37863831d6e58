package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/optommarket/backend/internal/domain/product"
)

const categoryTreeKey = "catalog:category_tree"

// CategoryTreeCache implements product.TreeCache. A Redis outage degrades to
// cache misses.
type CategoryTreeCache struct {
	client *Client
	ttl    time.Duration
}

var _ product.TreeCache = (*CategoryTreeCache)(nil)

func NewCategoryTreeCache(client *Client, ttl time.Duration) *CategoryTreeCache {
	return &CategoryTreeCache{client: client, ttl: ttl}
}

func (c *CategoryTreeCache) GetCategoryTree(ctx context.Context) ([]product.Category, bool) {
	raw, err := c.client.rdb.Get(ctx, categoryTreeKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.client.log.WithError(err).Warn("category tree cache read failed")
		}
		return nil, false
	}

	var tree []product.Category
	if err := json.Unmarshal(raw, &tree); err != nil {
		c.client.log.WithError(err).Warn("category tree cache is corrupt")
		return nil, false
	}
	return tree, true
}

func (c *CategoryTreeCache) SetCategoryTree(ctx context.Context, tree []product.Category) {
	raw, err := json.Marshal(tree)
	if err != nil {
		return
	}
	if err := c.client.rdb.Set(ctx, categoryTreeKey, raw, c.ttl).Err(); err != nil {
		c.client.log.WithError(err).Warn("category tree cache write failed")
	}
}

func (c *CategoryTreeCache) InvalidateCategoryTree(ctx context.Context) {
	if err := c.client.rdb.Del(ctx, categoryTreeKey).Err(); err != nil {
		c.client.log.WithError(err).Warn("category tree cache invalidation failed")
	}
}
