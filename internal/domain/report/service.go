// internal/domain/report/service.go
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
)

const (
	topProductsLimit   = 10
	topCategoriesLimit = 5
	popularLimit       = 10
)

// OrderSource lists orders for aggregation
type OrderSource interface {
	ListOrders(ctx context.Context, f order.ListFilter) ([]order.Order, error)
}

// CatalogSource resolves product and category names
type CatalogSource interface {
	ListProducts(ctx context.Context, f product.Filter) ([]product.Product, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]product.Category, error)
	CountProducts(ctx context.Context) (int64, error)
}

// UserCounter counts accounts
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// Service builds admin reports. Every call rescans the underlying orders and
// activities; nothing is cached or pre-aggregated.
type Service struct {
	orders     OrderSource
	activities activity.Repository
	catalog    CatalogSource
	users      UserCounter
	loc        *time.Location
	now        func() time.Time
	log        *logrus.Logger
}

// NewService creates a new report service
func NewService(orders OrderSource, activities activity.Repository, catalog CatalogSource, users UserCounter, log *logrus.Logger) *Service {
	return &Service{
		orders:     orders,
		activities: activities,
		catalog:    catalog,
		users:      users,
		loc:        time.UTC,
		now:        time.Now,
		log:        log,
	}
}

// WithLocation sets the timezone used for bucket keys
func (s *Service) WithLocation(loc *time.Location) *Service {
	if loc != nil {
		s.loc = loc
	}
	return s
}

// WithClock replaces the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ClampDays bounds the reporting window
func ClampDays(days int) int {
	if days <= 0 {
		return DefaultDays
	}
	if days > MaxDays {
		return MaxDays
	}
	return days
}

func (s *Service) since(days int) time.Time {
	now := s.now().In(s.loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	return start.AddDate(0, 0, -(days - 1))
}

func (s *Service) names(ctx context.Context) (Names, error) {
	products, err := s.catalog.ListProducts(ctx, product.Filter{IncludeInactive: true})
	if err != nil {
		return Names{}, fmt.Errorf("failed to load products: %w", err)
	}
	categories, err := s.catalog.ListCategories(ctx, true)
	if err != nil {
		return Names{}, fmt.Errorf("failed to load categories: %w", err)
	}
	return NewNames(products, categories), nil
}

func (s *Service) ordersSince(ctx context.Context, since time.Time) ([]order.Order, error) {
	orders, err := s.orders.ListOrders(ctx, order.ListFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

// Summary returns all-time totals plus today's figures
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	orders, err := s.orders.ListOrders(ctx, order.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	today := DayKey(s.now().In(s.loc))
	sum := &Summary{
		TotalRevenue:      decimal.Zero,
		TotalDiscounts:    decimal.Zero,
		AverageOrderValue: decimal.Zero,
		RevenueToday:      decimal.Zero,
	}

	counted := 0
	for _, o := range orders {
		sum.TotalOrders++
		switch o.Status {
		case order.StatusPending:
			sum.PendingOrders++
		case order.StatusCancelled:
			sum.CancelledOrders++
			continue
		}
		counted++
		sum.TotalRevenue = sum.TotalRevenue.Add(o.TotalAmount)
		sum.TotalDiscounts = sum.TotalDiscounts.Add(o.DiscountAmount)
		if DayKey(o.CreatedAt.In(s.loc)) == today {
			sum.OrdersToday++
			sum.RevenueToday = sum.RevenueToday.Add(o.TotalAmount)
		}
	}
	if counted > 0 {
		sum.AverageOrderValue = sum.TotalRevenue.Div(decimal.NewFromInt(int64(counted))).Round(2)
	}

	if sum.TotalUsers, err = s.users.CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if sum.TotalProducts, err = s.catalog.CountProducts(ctx); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	visits, err := s.activities.ListActivities(ctx, s.since(1), activity.TypeVisit)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}
	sum.VisitsToday = len(visits)

	return sum, nil
}

// UserActivity buckets visits and registrations over the last days
func (s *Service) UserActivity(ctx context.Context, days int) (*UserActivityReport, error) {
	days = ClampDays(days)
	acts, err := s.activities.ListActivities(ctx, s.since(days), activity.TypeVisit, activity.TypeRegister)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	r := BuildUserActivity(acts, s.loc)
	r.Days = days
	return &r, nil
}

// Sales aggregates orders placed in the last days
func (s *Service) Sales(ctx context.Context, days int) (*SalesReport, error) {
	days = ClampDays(days)
	orders, err := s.ordersSince(ctx, s.since(days))
	if err != nil {
		return nil, err
	}
	n, err := s.names(ctx)
	if err != nil {
		return nil, err
	}

	r := BuildSales(orders, n, topProductsLimit, topCategoriesLimit, s.loc)
	r.Days = days
	return &r, nil
}

// PopularProducts ranks products by views, cart adds and ordered quantity.
// The three sources are loaded concurrently.
func (s *Service) PopularProducts(ctx context.Context, days int) (*PopularProductsReport, error) {
	days = ClampDays(days)
	since := s.since(days)

	var (
		acts   []activity.Activity
		orders []order.Order
		n      Names
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		acts, err = s.activities.ListActivities(gctx, since, activity.TypeProductView, activity.TypeAddToCart)
		if err != nil {
			return fmt.Errorf("failed to load activities: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		orders, err = s.ordersSince(gctx, since)
		return err
	})
	g.Go(func() error {
		var err error
		n, err = s.names(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := BuildPopularProducts(acts, orders, n, popularLimit)
	r.Days = days
	return &r, nil
}

// SearchTerms groups search queries of the last days
func (s *Service) SearchTerms(ctx context.Context, days int) (*SearchTermsReport, error) {
	days = ClampDays(days)
	acts, err := s.activities.ListActivities(ctx, s.since(days), activity.TypeSearch)
	if err != nil {
		return nil, fmt.Errorf("failed to load activities: %w", err)
	}

	r := BuildSearchTerms(acts)
	r.Days = days
	return &r, nil
}
