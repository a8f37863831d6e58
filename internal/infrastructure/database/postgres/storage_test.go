package postgres

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/pkg/logger"
)

// openTestStorage connects to TEST_DATABASE_HOST and recreates the schema.
// The tests are skipped when it is not set.
func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}

	cfg := &config.Config{Database: config.DatabaseConfig{
		Driver:       config.StorageDriverPostgres,
		Host:         host,
		Port:         envOr("TEST_DATABASE_PORT", "5432"),
		Name:         envOr("TEST_DATABASE_NAME", "optommarket_test"),
		User:         envOr("TEST_DATABASE_USER", "postgres"),
		Password:     os.Getenv("TEST_DATABASE_PASSWORD"),
		SSLMode:      "disable",
		MaxOpenConns: 10,
		MaxIdleConns: 2,
		MaxLifetime:  time.Minute,
	}}

	log := logger.Discard()
	conn, err := NewConnection(cfg, log)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	m := NewMigration(conn.GetDB(), log)
	if err := m.DropAllTables(); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := m.RunAutoMigrations(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewStorage(conn)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seedProduct(t *testing.T, s *Storage) *product.Product {
	t.Helper()
	ctx := context.Background()
	c := &product.Category{NameUz: "Kiyim", NameRu: "Одежда", Slug: "kiyim", IsActive: true}
	if err := s.CreateCategory(ctx, c); err != nil {
		t.Fatalf("create category: %v", err)
	}
	p := &product.Product{
		NameUz: "Futbolka", NameRu: "Футболка", CategoryID: c.ID,
		Price: decimal.NewFromInt(50000), WholesalePrice: decimal.NewFromInt(40000),
		MinQuantity: 10, Unit: "dona", Slug: "futbolka", IsActive: true,
	}
	if err := s.CreateProduct(ctx, p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestConcurrentAddToCartKeepsOneRow(t *testing.T) {
	s := openTestStorage(t)
	p := seedProduct(t, s)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.AddToCart(ctx, "sess-1", p.ID, 2); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	items, err := s.GetCartItems(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 40 {
		t.Fatalf("expected one row with quantity 40, got %+v", items)
	}
}

func TestAddToCartStopsAtQuantityLimit(t *testing.T) {
	s := openTestStorage(t)
	p := seedProduct(t, s)
	ctx := context.Background()

	if _, err := s.AddToCart(ctx, "sess-2", p.ID, cart.MaxQuantity-1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddToCart(ctx, "sess-2", p.ID, 2); !errors.Is(err, cart.ErrQuantityLimit) {
		t.Fatalf("expected ErrQuantityLimit, got %v", err)
	}

	items, err := s.GetCartItems(ctx, "sess-2")
	if err != nil {
		t.Fatalf("get cart: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != cart.MaxQuantity-1 {
		t.Fatalf("the row must be left unchanged, got %+v", items)
	}
}

func TestCreateOrderRollsBackOnExhaustedDiscount(t *testing.T) {
	s := openTestStorage(t)
	p := seedProduct(t, s)
	ctx := context.Background()

	d := &discount.Discount{
		Code: "ONCE", Type: discount.TypeFixed, Value: decimal.NewFromInt(1000), IsActive: true,
		ValidFrom: time.Now().Add(-time.Hour), ValidUntil: time.Now().Add(time.Hour),
		MaxUses: 1, TargetType: discount.TargetAllProducts,
	}
	if err := s.CreateDiscount(ctx, d); err != nil {
		t.Fatalf("create discount: %v", err)
	}

	newOrder := func() *order.Order {
		return &order.Order{
			TotalAmount: decimal.NewFromInt(499000), DiscountID: &d.ID, DiscountAmount: decimal.NewFromInt(1000),
			Status: order.StatusPending, PaymentStatus: order.PaymentStatusPending,
			DeliveryMethod: order.DeliveryPickup, PaymentMethod: order.PaymentCash,
			CustomerName: "Ali", CustomerPhone: "+998901234567",
			Items: []order.OrderItem{{
				ProductID: p.ID, CategoryID: p.CategoryID, ProductName: p.NameUz,
				Quantity: 10, UnitPrice: decimal.NewFromInt(50000), TotalPrice: decimal.NewFromInt(500000),
			}},
		}
	}

	first := newOrder()
	if err := s.CreateOrder(ctx, first, &d.ID); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if first.OrderNumber != order.NumberFor(first.CreatedAt, first.ID) {
		t.Fatalf("unexpected order number %q", first.OrderNumber)
	}

	if err := s.CreateOrder(ctx, newOrder(), &d.ID); !errors.Is(err, discount.ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
	orders, err := s.ListOrders(ctx, order.ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 || len(orders[0].Items) != 1 {
		t.Fatalf("expected exactly the first order, got %d", len(orders))
	}
}

func TestUpdateOrderStatusIsCompareAndSet(t *testing.T) {
	s := openTestStorage(t)
	p := seedProduct(t, s)
	ctx := context.Background()

	o := &order.Order{
		TotalAmount: decimal.NewFromInt(500000), Status: order.StatusPending, PaymentStatus: order.PaymentStatusPending,
		DeliveryMethod: order.DeliveryPickup, PaymentMethod: order.PaymentCash,
		CustomerName: "Ali", CustomerPhone: "+998901234567",
		Items: []order.OrderItem{{ProductID: p.ID, CategoryID: p.CategoryID, ProductName: p.NameUz,
			Quantity: 10, UnitPrice: decimal.NewFromInt(50000), TotalPrice: decimal.NewFromInt(500000)}},
	}
	if err := s.CreateOrder(ctx, o, nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	h := &order.StatusHistory{Field: order.FieldStatus, FromValue: "pending", ToValue: "confirmed"}
	updated, err := s.UpdateOrderStatus(ctx, o.ID, order.StatusPending, order.StatusConfirmed, h)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != order.StatusConfirmed || len(updated.StatusHistory) != 1 {
		t.Fatalf("unexpected order %+v", updated)
	}
	if _, err := s.UpdateOrderStatus(ctx, o.ID, order.StatusPending, order.StatusCancelled, h); !errors.Is(err, order.ErrStatusChanged) {
		t.Fatalf("expected ErrStatusChanged, got %v", err)
	}
}
