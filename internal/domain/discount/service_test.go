package discount_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/infrastructure/database/memory"
	"github.com/optommarket/backend/internal/pkg/apperror"
	"github.com/optommarket/backend/internal/pkg/logger"
)

var now = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(t *testing.T) (*discount.Service, *memory.Storage) {
	t.Helper()
	store := memory.New()
	svc := discount.NewService(store, logger.Discard()).WithClock(func() time.Time { return now })
	return svc, store
}

func seedCode(t *testing.T, store *memory.Storage, d discount.Discount) *discount.Discount {
	t.Helper()
	if d.ValidFrom.IsZero() {
		d.ValidFrom = now.Add(-24 * time.Hour)
	}
	if d.ValidUntil.IsZero() {
		d.ValidUntil = now.Add(24 * time.Hour)
	}
	if d.TargetType == "" {
		d.TargetType = discount.TargetAllProducts
	}
	if err := store.CreateDiscount(context.Background(), &d); err != nil {
		t.Fatalf("create discount: %v", err)
	}
	return &d
}

func TestComputePercentage(t *testing.T) {
	d := &discount.Discount{Type: discount.TypePercentage, Value: dec("10"), TargetType: discount.TargetAllProducts}
	r := discount.Compute(d, []discount.Line{{ProductID: 1, CategoryID: 1, Total: dec("1000000")}})

	if !r.DiscountAmount.Equal(dec("100000")) {
		t.Fatalf("expected 100000 off, got %s", r.DiscountAmount)
	}
	if !r.FinalAmount.Equal(dec("900000")) {
		t.Fatalf("expected 900000 final, got %s", r.FinalAmount)
	}
	if !r.Subtotal.Equal(r.FinalAmount.Add(r.DiscountAmount)) {
		t.Fatalf("subtotal must equal final + discount")
	}
}

func TestComputeFixedNeverGoesNegative(t *testing.T) {
	d := &discount.Discount{Type: discount.TypeFixed, Value: dec("500000"), TargetType: discount.TargetAllProducts}
	r := discount.Compute(d, []discount.Line{{ProductID: 1, Total: dec("200000")}})

	if !r.FinalAmount.IsZero() {
		t.Fatalf("expected final 0, got %s", r.FinalAmount)
	}
	if !r.DiscountAmount.Equal(dec("200000")) {
		t.Fatalf("discount must be capped at the eligible amount, got %s", r.DiscountAmount)
	}
}

func TestComputeOnlyTargetedLines(t *testing.T) {
	lines := []discount.Line{
		{ProductID: 1, CategoryID: 10, Total: dec("300000")},
		{ProductID: 2, CategoryID: 20, Total: dec("100000")},
	}

	byProduct := &discount.Discount{Type: discount.TypePercentage, Value: dec("50"), TargetType: discount.TargetSpecificProducts, TargetIDs: []uint{2}}
	r := discount.Compute(byProduct, lines)
	if !r.EligibleAmount.Equal(dec("100000")) || !r.DiscountAmount.Equal(dec("50000")) {
		t.Fatalf("product target: eligible %s discount %s", r.EligibleAmount, r.DiscountAmount)
	}
	if !r.FinalAmount.Equal(dec("350000")) {
		t.Fatalf("expected final 350000, got %s", r.FinalAmount)
	}

	byCategory := &discount.Discount{Type: discount.TypeFixed, Value: dec("400000"), TargetType: discount.TargetSpecificCategories, TargetIDs: []uint{10}}
	r = discount.Compute(byCategory, lines)
	if !r.DiscountAmount.Equal(dec("300000")) {
		t.Fatalf("fixed discount must stop at the category total, got %s", r.DiscountAmount)
	}
}

func TestApplyNormalizesCode(t *testing.T) {
	svc, store := newService(t)
	seedCode(t, store, discount.Discount{Code: "WELCOME10", Type: discount.TypePercentage, Value: dec("10"), IsActive: true})

	d, err := svc.Apply(context.Background(), "  welcome10 ")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if d.Code != "WELCOME10" {
		t.Fatalf("unexpected code %q", d.Code)
	}
}

func TestApplyRejectsEveryInvalidCodeTheSameWay(t *testing.T) {
	svc, store := newService(t)
	seedCode(t, store, discount.Discount{Code: "OFF", Type: discount.TypeFixed, Value: dec("1000"), IsActive: false})
	seedCode(t, store, discount.Discount{Code: "OLD", Type: discount.TypeFixed, Value: dec("1000"), IsActive: true,
		ValidFrom: now.Add(-48 * time.Hour), ValidUntil: now.Add(-time.Hour)})
	seedCode(t, store, discount.Discount{Code: "SOON", Type: discount.TypeFixed, Value: dec("1000"), IsActive: true,
		ValidFrom: now.Add(time.Hour), ValidUntil: now.Add(48 * time.Hour)})
	seedCode(t, store, discount.Discount{Code: "USEDUP", Type: discount.TypeFixed, Value: dec("1000"), IsActive: true,
		MaxUses: 2, UsedCount: 2})

	for _, code := range []string{"", "NOPE", "OFF", "OLD", "SOON", "USEDUP"} {
		_, err := svc.Apply(context.Background(), code)
		if !errors.Is(err, discount.ErrInvalidCode) {
			t.Fatalf("code %q: expected ErrInvalidCode, got %v", code, err)
		}
	}
}

func TestCreateDiscountValidates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	req := &discount.Request{
		Code:       "summer",
		Type:       discount.TypePercentage,
		Value:      dec("150"),
		ValidFrom:  now,
		ValidUntil: now.Add(time.Hour),
	}
	if _, err := svc.CreateDiscount(ctx, req); apperror.HTTPStatus(err) != 400 {
		t.Fatalf("expected validation error for 150%%, got %v", err)
	}

	req.Value = dec("15")
	d, err := svc.CreateDiscount(ctx, req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.Code != "SUMMER" || !d.IsActive || d.TargetType != discount.TargetAllProducts {
		t.Fatalf("unexpected discount %+v", d)
	}

	if _, err := svc.CreateDiscount(ctx, req); apperror.HTTPStatus(err) != 409 {
		t.Fatalf("expected conflict on duplicate code, got %v", err)
	}

	req.ValidUntil = now.Add(-time.Hour)
	req.Code = "BACKWARDS"
	if _, err := svc.CreateDiscount(ctx, req); apperror.HTTPStatus(err) != 400 {
		t.Fatalf("expected validation error for inverted window, got %v", err)
	}
}
