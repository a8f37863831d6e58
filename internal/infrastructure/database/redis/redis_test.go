package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/pkg/logger"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })
	return NewClient(rdb, logger.Discard())
}

func TestCategoryTreeCacheRoundTrip(t *testing.T) {
	c := NewCategoryTreeCache(testClient(t), time.Minute)
	ctx := context.Background()

	if _, ok := c.GetCategoryTree(ctx); ok {
		t.Fatalf("expected miss on empty cache")
	}
	tree := []product.Category{{ID: 1, NameUz: "Kiyim", Children: []product.Category{{ID: 2, NameUz: "Bolalar"}}}}
	c.SetCategoryTree(ctx, tree)

	got, ok := c.GetCategoryTree(ctx)
	if !ok || len(got) != 1 || len(got[0].Children) != 1 {
		t.Fatalf("unexpected cached tree %+v", got)
	}
	c.InvalidateCategoryTree(ctx)
	if _, ok := c.GetCategoryTree(ctx); ok {
		t.Fatalf("expected miss after invalidation")
	}
}

func TestTokenRevoker(t *testing.T) {
	r := NewTokenRevoker(testClient(t))
	ctx := context.Background()

	if err := r.Revoke(ctx, "jti-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := r.IsRevoked(ctx, "jti-1"); !revoked {
		t.Fatalf("expected revoked")
	}
	if revoked, _ := r.IsRevoked(ctx, "jti-2"); revoked {
		t.Fatalf("unexpected revocation")
	}
}

func TestRateCounterCounts(t *testing.T) {
	r := NewRateCounter(testClient(t))
	ctx := context.Background()
	for i := int64(1); i <= 3; i++ {
		n, err := r.Hit(ctx, "1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("hit: %v", err)
		}
		if n != i {
			t.Fatalf("expected %d, got %d", i, n)
		}
	}
}
