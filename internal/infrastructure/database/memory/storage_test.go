package memory

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

func TestAddToCartMergesSameProduct(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.AddToCart(ctx, "a", 7, 3); err != nil {
		t.Fatalf("add: %v", err)
	}
	item, err := s.AddToCart(ctx, "a", 7, 4)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", item.Quantity)
	}

	items, _ := s.GetCartItems(ctx, "a")
	if len(items) != 1 {
		t.Fatalf("expected one row, got %d", len(items))
	}
	other, _ := s.GetCartItems(ctx, "b")
	if len(other) != 0 {
		t.Fatalf("cart leaked across sessions")
	}
}

func TestAddToCartRejectsOverflow(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.AddToCart(ctx, "a", 7, math.MaxInt); !errors.Is(err, cart.ErrQuantityLimit) {
		t.Fatalf("expected ErrQuantityLimit, got %v", err)
	}
	if _, err := s.AddToCart(ctx, "a", 7, cart.MaxQuantity); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddToCart(ctx, "a", 7, math.MaxInt); !errors.Is(err, cart.ErrQuantityLimit) {
		t.Fatalf("expected ErrQuantityLimit, got %v", err)
	}
	if _, err := s.AddToCart(ctx, "a", 7, 1); !errors.Is(err, cart.ErrQuantityLimit) {
		t.Fatalf("expected ErrQuantityLimit, got %v", err)
	}

	items, _ := s.GetCartItems(ctx, "a")
	if len(items) != 1 || items[0].Quantity != cart.MaxQuantity {
		t.Fatalf("expected one row at the limit, got %+v", items)
	}
}

func TestConcurrentAddToCart(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddToCart(ctx, "a", 1, 1)
		}()
	}
	wg.Wait()

	items, _ := s.GetCartItems(ctx, "a")
	if len(items) != 1 || items[0].Quantity != 50 {
		t.Fatalf("expected one row with 50, got %+v", items)
	}
}

func TestCartItemIsScopedBySession(t *testing.T) {
	s := New()
	ctx := context.Background()
	item, _ := s.AddToCart(ctx, "owner", 1, 1)

	if _, err := s.SetCartItemQuantity(ctx, "intruder", item.ID, 5); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if removed, _ := s.RemoveFromCart(ctx, "intruder", item.ID); removed {
		t.Fatalf("removed another session's item")
	}
	if removed, _ := s.RemoveFromCart(ctx, "owner", item.ID); !removed {
		t.Fatalf("owner could not remove item")
	}
}

func testDiscount(maxUses int) *discount.Discount {
	now := time.Now()
	return &discount.Discount{
		Code: "ONCE", Type: discount.TypeFixed, Value: decimal.NewFromInt(1000), IsActive: true,
		ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour),
		MaxUses: maxUses, TargetType: discount.TargetAllProducts,
	}
}

func testOrder(discountID *uint) *order.Order {
	return &order.Order{
		TotalAmount:    decimal.NewFromInt(500000),
		DiscountID:     discountID,
		Status:         order.StatusPending,
		PaymentStatus:  order.PaymentStatusPending,
		DeliveryMethod: order.DeliveryPickup,
		PaymentMethod:  order.PaymentCash,
		CustomerName:   "Ali",
		CustomerPhone:  "+998901234567",
		Items: []order.OrderItem{
			{ProductID: 1, CategoryID: 1, ProductName: "A", Quantity: 5, UnitPrice: decimal.NewFromInt(50000), TotalPrice: decimal.NewFromInt(250000)},
			{ProductID: 2, CategoryID: 1, ProductName: "B", Quantity: 5, UnitPrice: decimal.NewFromInt(50000), TotalPrice: decimal.NewFromInt(250000)},
		},
	}
}

func TestCreateOrderAssignsNumberAndItems(t *testing.T) {
	fixed := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	s := New().WithClock(func() time.Time { return fixed })
	ctx := context.Background()

	o := testOrder(nil)
	if err := s.CreateOrder(ctx, o, nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.OrderNumber != "ORD-20240305-00001" {
		t.Fatalf("unexpected number %q", o.OrderNumber)
	}

	stored, err := s.GetOrderByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Items) != 2 || stored.Items[0].OrderID != o.ID {
		t.Fatalf("items not stored: %+v", stored.Items)
	}
}

func TestCreateOrderRejectsExhaustedDiscount(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := testDiscount(1)
	if err := s.CreateDiscount(ctx, d); err != nil {
		t.Fatalf("create discount: %v", err)
	}

	if err := s.CreateOrder(ctx, testOrder(&d.ID), &d.ID); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if err := s.CreateOrder(ctx, testOrder(&d.ID), &d.ID); !errors.Is(err, discount.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	orders, _ := s.ListOrders(ctx, order.ListFilter{})
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}
	stored, _ := s.GetDiscountByID(ctx, d.ID)
	if stored.UsedCount != 1 {
		t.Fatalf("expected usedCount 1, got %d", stored.UsedCount)
	}
}

func TestConcurrentOrdersNeverOverspendDiscount(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := testDiscount(3)
	s.CreateDiscount(ctx, d)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.CreateOrder(ctx, testOrder(&d.ID), &d.ID); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if ok != 3 {
		t.Fatalf("expected 3 successful orders, got %d", ok)
	}
}

func TestUpdateDiscountKeepsUsage(t *testing.T) {
	s := New()
	ctx := context.Background()
	d := testDiscount(0)
	s.CreateDiscount(ctx, d)
	s.CreateOrder(ctx, testOrder(&d.ID), &d.ID)

	d.UsedCount = 0
	d.Value = decimal.NewFromInt(2000)
	if err := s.UpdateDiscount(ctx, d); err != nil {
		t.Fatalf("update: %v", err)
	}
	if d.UsedCount != 1 {
		t.Fatalf("usage was reset")
	}
}

func TestUpdateOrderStatusCompareAndSet(t *testing.T) {
	s := New()
	ctx := context.Background()
	o := testOrder(nil)
	s.CreateOrder(ctx, o, nil)

	h := &order.StatusHistory{Field: order.FieldStatus, FromValue: "pending", ToValue: "confirmed"}
	updated, err := s.UpdateOrderStatus(ctx, o.ID, order.StatusPending, order.StatusConfirmed, h)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != order.StatusConfirmed || len(updated.StatusHistory) != 1 {
		t.Fatalf("unexpected order: %+v", updated)
	}
	if _, err := s.UpdateOrderStatus(ctx, o.ID, order.StatusPending, order.StatusCancelled, h); !errors.Is(err, order.ErrStatusChanged) {
		t.Fatalf("expected ErrStatusChanged, got %v", err)
	}
	if _, err := s.UpdateOrderStatus(ctx, 99, order.StatusPending, order.StatusCancelled, h); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeletedProductIsHidden(t *testing.T) {
	s := New()
	ctx := context.Background()
	p := &product.Product{NameUz: "Choynak", NameRu: "Чайник", Slug: "choynak", IsActive: true,
		Price: decimal.NewFromInt(10), WholesalePrice: decimal.NewFromInt(8), MinQuantity: 1}
	s.CreateProduct(ctx, p)

	if err := s.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetProductByID(ctx, p.ID); !apperror.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	list, _ := s.ListProducts(ctx, product.Filter{IncludeInactive: true})
	if len(list) != 0 {
		t.Fatalf("deleted product listed")
	}

	again := &product.Product{NameUz: "Choynak", NameRu: "Чайник", Slug: "choynak", IsActive: true}
	if err := s.CreateProduct(ctx, again); err != nil {
		t.Fatalf("slug of a deleted product should be reusable: %v", err)
	}
}

func TestListActivitiesFiltersBySinceAndType(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	s := New()
	ctx := context.Background()

	s.CreateActivity(ctx, &activity.Activity{ActivityType: activity.TypeVisit, CreatedAt: now.AddDate(0, 0, -5)})
	s.CreateActivity(ctx, &activity.Activity{ActivityType: activity.TypeVisit, CreatedAt: now})
	s.CreateActivity(ctx, &activity.Activity{ActivityType: activity.TypeSearch, CreatedAt: now})

	got, _ := s.ListActivities(ctx, now.AddDate(0, 0, -1), activity.TypeVisit)
	if len(got) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(got))
	}
	all, _ := s.ListActivities(ctx, time.Time{})
	if len(all) != 3 || !all[0].CreatedAt.Before(all[1].CreatedAt) {
		t.Fatalf("expected all activities oldest first, got %+v", all)
	}
}

func TestAddFavoriteIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()
	a, _ := s.AddFavorite(ctx, 1, 2)
	b, _ := s.AddFavorite(ctx, 1, 2)
	if a.ID != b.ID {
		t.Fatalf("duplicate favorite created")
	}
	list, _ := s.ListFavorites(ctx, 1)
	if len(list) != 1 {
		t.Fatalf("expected 1 favorite, got %d", len(list))
	}
}
