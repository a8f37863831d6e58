package product_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/infrastructure/database/memory"
	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/pkg/logger"
)

// countingCache is an in-process TreeCache that records invalidations
type countingCache struct {
	tree        []product.Category
	invalidated int
}

func (c *countingCache) GetCategoryTree(context.Context) ([]product.Category, bool) {
	return c.tree, c.tree != nil
}

func (c *countingCache) SetCategoryTree(_ context.Context, tree []product.Category) { c.tree = tree }

func (c *countingCache) InvalidateCategoryTree(context.Context) {
	c.tree = nil
	c.invalidated++
}

func newService(t *testing.T) (*product.Service, *memory.Storage, *countingCache) {
	t.Helper()
	store := memory.New()
	log := logger.Discard()
	cache := &countingCache{}
	return product.NewService(store, cache, activity.NewRecorder(store, log), log), store, cache
}

func uintPtr(v uint) *uint { return &v }

func productRequest(categoryID uint, nameRu string) *product.ProductRequest {
	return &product.ProductRequest{
		NameUz:         nameRu,
		NameRu:         nameRu,
		CategoryID:     categoryID,
		Price:          decimal.NewFromInt(12000),
		WholesalePrice: decimal.NewFromInt(10000),
		MinQuantity:    10,
	}
}

func TestBuildCategoryTree(t *testing.T) {
	cats := []product.Category{
		{ID: 1, NameUz: "B", SortOrder: 2},
		{ID: 2, NameUz: "A", SortOrder: 1},
		{ID: 3, NameUz: "Child", ParentID: uintPtr(1)},
		{ID: 4, NameUz: "Orphan", ParentID: uintPtr(99)},
	}

	tree := product.BuildCategoryTree(cats)
	if len(tree) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(tree))
	}
	if tree[0].ID != 2 || tree[1].ID != 1 {
		t.Fatalf("roots must be ordered by sortOrder, got %d, %d", tree[0].ID, tree[1].ID)
	}
	if len(tree[1].Children) != 1 || tree[1].Children[0].ID != 3 {
		t.Fatalf("expected child 3 under 1, got %+v", tree[1].Children)
	}

	if empty := product.BuildCategoryTree(nil); empty == nil || len(empty) != 0 {
		t.Fatalf("empty input must give an empty, non-nil tree")
	}
}

func TestCategoryTreeIsCachedAndInvalidated(t *testing.T) {
	svc, _, cache := newService(t)
	ctx := context.Background()

	root, err := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Kiyim", NameRu: "Одежда"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if root.Slug != "odezhda" {
		t.Fatalf("slug must come from the Russian name, got %q", root.Slug)
	}

	if _, err := svc.GetCategoryTree(ctx); err != nil {
		t.Fatalf("tree: %v", err)
	}
	if cache.tree == nil {
		t.Fatalf("tree must be cached")
	}

	if _, err := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Bolalar", NameRu: "Детская", ParentID: &root.ID}); err != nil {
		t.Fatalf("create child: %v", err)
	}
	if cache.tree != nil || cache.invalidated != 2 {
		t.Fatalf("writes must invalidate the cached tree")
	}

	tree, _ := svc.GetCategoryTree(ctx)
	if len(tree) != 1 || len(tree[0].Children) != 1 {
		t.Fatalf("unexpected tree %+v", tree)
	}
}

func TestDeleteCategoryRefusesNonEmpty(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	parent, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Oziq", NameRu: "Еда"})
	child, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Non", NameRu: "Хлеб", ParentID: &parent.ID})

	if err := svc.DeleteCategory(ctx, parent.ID); !errors.Is(err, product.ErrCategoryNotEmpty) {
		t.Fatalf("category with children must not be deleted, got %v", err)
	}

	p, err := svc.CreateProduct(ctx, productRequest(child.ID, "Батон"))
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if err := svc.DeleteCategory(ctx, child.ID); !errors.Is(err, product.ErrCategoryNotEmpty) {
		t.Fatalf("category with products must not be deleted, got %v", err)
	}

	if err := svc.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}
	if err := svc.DeleteCategory(ctx, child.ID); err != nil {
		t.Fatalf("empty category must be deleted: %v", err)
	}
}

func TestUpdateCategoryRejectsCycles(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	a, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "A", NameRu: "А"})
	b, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "B", NameRu: "Б", ParentID: &a.ID})

	_, err := svc.UpdateCategory(ctx, a.ID, &product.CategoryRequest{NameUz: "A", NameRu: "А", ParentID: &b.ID})
	if !errors.Is(err, product.ErrCategoryCycle) {
		t.Fatalf("expected ErrCategoryCycle, got %v", err)
	}
	_, err = svc.UpdateCategory(ctx, a.ID, &product.CategoryRequest{NameUz: "A", NameRu: "А", ParentID: &a.ID})
	if !errors.Is(err, product.ErrCategoryCycle) {
		t.Fatalf("a category cannot be its own parent, got %v", err)
	}
}

func TestCreateProductSlugs(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	cat, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Shirinliklar", NameRu: "Сладости"})

	first, err := svc.CreateProduct(ctx, productRequest(cat.ID, "Сахар"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := svc.CreateProduct(ctx, productRequest(cat.ID, "Сахар"))
	if err != nil {
		t.Fatalf("create duplicate name: %v", err)
	}
	if first.Slug == second.Slug || second.Slug != first.Slug+"-2" {
		t.Fatalf("expected %q and %q-2, got %q", first.Slug, first.Slug, second.Slug)
	}
	if !first.IsActive || first.Unit == "" || first.Images == nil {
		t.Fatalf("defaults not applied: %+v", first)
	}

	req := productRequest(404, "Мёд")
	if _, err := svc.CreateProduct(ctx, req); apperror.HTTPStatus(err) != 400 {
		t.Fatalf("unknown category must be a validation error, got %v", err)
	}
}

func TestListProductsIncludesSubcategories(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()

	root, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Ichimlik", NameRu: "Напитки"})
	sub, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Sharbat", NameRu: "Соки", ParentID: &root.ID})
	other, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Boshqa", NameRu: "Прочее"})

	svc.CreateProduct(ctx, productRequest(root.ID, "Вода"))
	svc.CreateProduct(ctx, productRequest(sub.ID, "Сок яблочный"))
	svc.CreateProduct(ctx, productRequest(other.ID, "Спички"))

	products, err := svc.ListProducts(ctx, product.ListQuery{CategoryID: &root.ID}, activity.Actor{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected root and subcategory products, got %d", len(products))
	}

	found, _ := svc.ListProducts(ctx, product.ListQuery{Search: " сок "}, activity.Actor{SessionID: "s1"})
	if len(found) != 1 {
		t.Fatalf("expected one search hit, got %d", len(found))
	}

	acts, _ := store.ListActivities(ctx, time.Time{}, activity.TypeSearch)
	if len(acts) != 1 || acts[0].Metadata[activity.MetaQuery] != "сок" || acts[0].Metadata[activity.MetaResults] != "1" {
		t.Fatalf("search must be recorded with its result count, got %+v", acts)
	}
}

func TestGetProductHidesInactive(t *testing.T) {
	svc, store, _ := newService(t)
	ctx := context.Background()
	cat, _ := svc.CreateCategory(ctx, &product.CategoryRequest{NameUz: "Un", NameRu: "Мука"})

	inactive := false
	req := productRequest(cat.ID, "Мука пшеничная")
	req.IsActive = &inactive
	p, _ := svc.CreateProduct(ctx, req)

	if _, err := svc.GetProduct(ctx, p.Slug, activity.Actor{}); !apperror.IsNotFound(err) {
		t.Fatalf("inactive product must be hidden, got %v", err)
	}
	if _, err := svc.GetProductByID(ctx, p.ID); err != nil {
		t.Fatalf("admin lookup must see inactive products: %v", err)
	}

	active := true
	req.IsActive = &active
	if _, err := svc.UpdateProduct(ctx, p.ID, req); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := svc.GetProduct(ctx, "1", activity.Actor{SessionID: "s1"})
	if err != nil || got.ID != p.ID {
		t.Fatalf("lookup by numeric id failed: %v", err)
	}

	views, _ := store.ListActivities(ctx, time.Time{}, activity.TypeProductView)
	if len(views) != 1 {
		t.Fatalf("expected one product view, got %d", len(views))
	}
}
