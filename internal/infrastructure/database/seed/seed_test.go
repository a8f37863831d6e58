package seed

import (
	"context"
	"testing"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/domain/user"
	"github.com/optommarket/backend/internal/infrastructure/database/memory"
	"github.com/optommarket/backend/internal/pkg/auth"
	"github.com/optommarket/backend/internal/pkg/logger"
)

func TestRunIsIdempotent(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{
			SeedData:      true,
			AdminUsername: "admin",
			AdminEmail:    "admin@example.uz",
			AdminPassword: "admin12345",
		},
		Security: config.SecurityConfig{BcryptCost: 4},
	}
	store := memory.New()
	s := New(store, auth.NewPasswordManager(cfg), cfg, logger.Discard())
	ctx := context.Background()

	if err := s.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := s.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}

	admin, err := store.GetUserByUsername(ctx, "admin")
	if err != nil || admin.Role != user.RoleAdmin {
		t.Fatalf("admin not created: %v", err)
	}
	if n, _ := store.CountUsers(ctx); n != 1 {
		t.Fatalf("expected 1 user, got %d", n)
	}
	if n, _ := store.CountProducts(ctx); int(n) != len(sampleProducts) {
		t.Fatalf("expected %d products, got %d", len(sampleProducts), n)
	}

	categories, _ := store.ListCategories(ctx, true)
	tree := product.BuildCategoryTree(categories)
	if len(tree) != len(sampleCategories) {
		t.Fatalf("expected %d roots, got %d", len(sampleCategories), len(tree))
	}
	if _, err := store.GetDiscountByCode(ctx, "WELCOME10"); err != nil {
		t.Fatalf("welcome discount missing: %v", err)
	}
}
