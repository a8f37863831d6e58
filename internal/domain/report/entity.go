// internal/domain/report/entity.go
package report

import (
	"github.com/shopspring/decimal"
)

// Bucket key layouts
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Window limits for the days query parameter
const (
	DefaultDays = 30
	MaxDays     = 365
)

// Summary is the dashboard header
type Summary struct {
	TotalOrders       int             `json:"totalOrders"`
	PendingOrders     int             `json:"pendingOrders"`
	CancelledOrders   int             `json:"cancelledOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalDiscounts    decimal.Decimal `json:"totalDiscounts"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	OrdersToday       int             `json:"ordersToday"`
	RevenueToday      decimal.Decimal `json:"revenueToday"`
	TotalUsers        int64           `json:"totalUsers"`
	TotalProducts     int64           `json:"totalProducts"`
	VisitsToday       int             `json:"visitsToday"`
}

// Point is a count in one period bucket
type Point struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// Buckets holds the same series at three granularities
type Buckets struct {
	Daily   []Point `json:"daily"`
	Weekly  []Point `json:"weekly"`
	Monthly []Point `json:"monthly"`
}

// UserActivityReport counts visits and registrations over time
type UserActivityReport struct {
	Days               int     `json:"days"`
	TotalVisits        int     `json:"totalVisits"`
	UniqueVisitors     int     `json:"uniqueVisitors"`
	TotalRegistrations int     `json:"totalRegistrations"`
	Visits             Buckets `json:"visits"`
	Registrations      Buckets `json:"registrations"`
}

// RevenuePoint is order count and revenue in one period
type RevenuePoint struct {
	Period  string          `json:"period"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductSales is per-product sales in the window
type ProductSales struct {
	ProductID uint            `json:"productId"`
	NameUz    string          `json:"nameUz"`
	NameRu    string          `json:"nameRu"`
	Quantity  int             `json:"quantity"`
	Orders    int             `json:"orders"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// CategorySales is per-category sales in the window
type CategorySales struct {
	CategoryID uint            `json:"categoryId"`
	NameUz     string          `json:"nameUz"`
	NameRu     string          `json:"nameRu"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// SalesReport aggregates non-cancelled orders in the window. Product and
// category revenue are line totals before order-level discounts.
type SalesReport struct {
	Days              int             `json:"days"`
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	ItemsRevenue      decimal.Decimal `json:"itemsRevenue"`
	TotalDiscounts    decimal.Decimal `json:"totalDiscounts"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	Daily             []RevenuePoint  `json:"daily"`
	Monthly           []RevenuePoint  `json:"monthly"`
	TopProducts       []ProductSales  `json:"topProducts"`
	TopCategories     []CategorySales `json:"topCategories"`
}

// RankedProduct is a product with an event count
type RankedProduct struct {
	ProductID uint   `json:"productId"`
	NameUz    string `json:"nameUz"`
	NameRu    string `json:"nameRu"`
	Count     int    `json:"count"`
}

// PopularProductsReport ranks products by views, cart adds and ordered quantity
type PopularProductsReport struct {
	Days            int             `json:"days"`
	MostViewed      []RankedProduct `json:"mostViewed"`
	MostAddedToCart []RankedProduct `json:"mostAddedToCart"`
	MostOrdered     []RankedProduct `json:"mostOrdered"`
}

// SearchTerm is one normalized query
type SearchTerm struct {
	Term           string  `json:"term"`
	Count          int     `json:"count"`
	AverageResults float64 `json:"averageResults"`
	NoResults      bool    `json:"noResults"`
}

// SearchTermsReport lists queries by frequency
type SearchTermsReport struct {
	Days          int          `json:"days"`
	TotalSearches int          `json:"totalSearches"`
	Terms         []SearchTerm `json:"terms"`
	NoResultTerms []SearchTerm `json:"noResultTerms"`
}

// Names resolves display names for products and categories
type Names struct {
	products   map[uint][2]string
	categories map[uint][2]string
}
