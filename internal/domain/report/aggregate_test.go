package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
)

func at(day int) time.Time { return time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC) }

func amount(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func placed(day int, status order.Status, discount int64, items ...order.OrderItem) order.Order {
	o := order.Order{Status: status, CreatedAt: at(day), DiscountAmount: amount(discount), Items: items}
	o.TotalAmount = o.ItemsTotal().Sub(o.DiscountAmount)
	return o
}

func line(productID, categoryID uint, qty int, unit int64) order.OrderItem {
	return order.OrderItem{
		ProductID:   productID,
		CategoryID:  categoryID,
		ProductName: "snapshot",
		Quantity:    qty,
		UnitPrice:   amount(unit),
		TotalPrice:  amount(unit * int64(qty)),
	}
}

func TestBucketKeys(t *testing.T) {
	d := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	if DayKey(d) != "2024-12-30" || MonthKey(d) != "2024-12" {
		t.Fatalf("unexpected keys %s %s", DayKey(d), MonthKey(d))
	}
	// 30 Dec 2024 belongs to ISO week 1 of 2025
	if WeekKey(d) != "2025-W01" {
		t.Fatalf("got %s", WeekKey(d))
	}
}

func TestClampDays(t *testing.T) {
	cases := map[int]int{0: DefaultDays, -5: DefaultDays, 7: 7, 1000: MaxDays}
	for in, want := range cases {
		if got := ClampDays(in); got != want {
			t.Fatalf("ClampDays(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBuildSalesExcludesCancelled(t *testing.T) {
	orders := []order.Order{
		placed(1, order.StatusDelivered, 50000, line(1, 10, 7, 50000)),
		placed(1, order.StatusPending, 0, line(2, 20, 2, 100000), line(1, 10, 1, 60000)),
		placed(2, order.StatusCancelled, 0, line(2, 20, 100, 100000)),
	}
	names := NewNames(
		[]product.Product{{ID: 1, NameUz: "Un", NameRu: "Мука"}},
		[]product.Category{{ID: 10, NameUz: "Oziq", NameRu: "Еда"}},
	)

	r := BuildSales(orders, names, 10, 5, time.UTC)

	if r.TotalOrders != 2 {
		t.Fatalf("expected 2 orders, got %d", r.TotalOrders)
	}
	// 300 000 + 260 000
	if !r.TotalRevenue.Equal(amount(560000)) {
		t.Fatalf("expected revenue 560000, got %s", r.TotalRevenue)
	}
	if !r.ItemsRevenue.Equal(r.TotalRevenue.Add(r.TotalDiscounts)) {
		t.Fatalf("items revenue must equal revenue + discounts")
	}
	if !r.AverageOrderValue.Equal(amount(280000)) {
		t.Fatalf("expected average 280000, got %s", r.AverageOrderValue)
	}
	if len(r.Daily) != 1 || r.Daily[0].Period != "2024-03-01" || r.Daily[0].Orders != 2 {
		t.Fatalf("cancelled day must not appear, got %+v", r.Daily)
	}

	if len(r.TopProducts) != 2 || r.TopProducts[0].ProductID != 1 {
		t.Fatalf("product 1 (410000) must lead, got %+v", r.TopProducts)
	}
	top := r.TopProducts[0]
	if top.Quantity != 8 || top.Orders != 2 || top.NameRu != "Мука" {
		t.Fatalf("unexpected top product %+v", top)
	}
	if r.TopProducts[1].NameUz != "snapshot" {
		t.Fatalf("unknown products fall back to the order snapshot name")
	}
	if len(r.TopCategories) != 2 || r.TopCategories[0].CategoryID != 10 {
		t.Fatalf("unexpected categories %+v", r.TopCategories)
	}
}

func TestBuildSalesTruncatesTopLists(t *testing.T) {
	var orders []order.Order
	for id := uint(1); id <= 4; id++ {
		orders = append(orders, placed(3, order.StatusPending, 0, line(id, id, 1, int64(id)*1000)))
	}

	r := BuildSales(orders, NewNames(nil, nil), 2, 1, time.UTC)
	if len(r.TopProducts) != 2 || r.TopProducts[0].ProductID != 4 || r.TopProducts[1].ProductID != 3 {
		t.Fatalf("unexpected top products %+v", r.TopProducts)
	}
	if len(r.TopCategories) != 1 {
		t.Fatalf("expected one category, got %d", len(r.TopCategories))
	}
}

func TestBuildUserActivity(t *testing.T) {
	s1, s2 := "s1", "s2"
	uid := uint(7)
	acts := []activity.Activity{
		{ActivityType: activity.TypeVisit, SessionID: &s1, CreatedAt: at(4)},
		{ActivityType: activity.TypeVisit, SessionID: &s1, CreatedAt: at(4)},
		{ActivityType: activity.TypeVisit, SessionID: &s2, CreatedAt: at(5)},
		{ActivityType: activity.TypeVisit, UserID: &uid, SessionID: &s2, CreatedAt: at(11)},
		{ActivityType: activity.TypeRegister, UserID: &uid, CreatedAt: at(11)},
	}

	r := BuildUserActivity(acts, time.UTC)
	if r.TotalVisits != 4 || r.UniqueVisitors != 3 || r.TotalRegistrations != 1 {
		t.Fatalf("unexpected totals %+v", r)
	}
	if len(r.Visits.Daily) != 3 || r.Visits.Daily[0].Count != 2 {
		t.Fatalf("unexpected daily buckets %+v", r.Visits.Daily)
	}
	// 4 and 5 March share ISO week 10, 11 March is week 11
	if len(r.Visits.Weekly) != 2 || r.Visits.Weekly[0].Period != "2024-W10" || r.Visits.Weekly[0].Count != 3 {
		t.Fatalf("unexpected weekly buckets %+v", r.Visits.Weekly)
	}
	if len(r.Visits.Monthly) != 1 || r.Visits.Monthly[0].Count != 4 {
		t.Fatalf("unexpected monthly buckets %+v", r.Visits.Monthly)
	}
}

func TestBuildPopularProducts(t *testing.T) {
	p1, p2 := uint(1), uint(2)
	acts := []activity.Activity{
		{ActivityType: activity.TypeProductView, TargetID: &p2},
		{ActivityType: activity.TypeProductView, TargetID: &p2},
		{ActivityType: activity.TypeProductView, TargetID: &p1},
		{ActivityType: activity.TypeAddToCart, TargetID: &p1},
		{ActivityType: activity.TypeProductView},
	}
	orders := []order.Order{
		placed(1, order.StatusPending, 0, line(1, 1, 3, 1000)),
		placed(1, order.StatusCancelled, 0, line(2, 1, 50, 1000)),
	}

	r := BuildPopularProducts(acts, orders, NewNames(nil, nil), 1)
	if len(r.MostViewed) != 1 || r.MostViewed[0].ProductID != 2 || r.MostViewed[0].Count != 2 {
		t.Fatalf("unexpected most viewed %+v", r.MostViewed)
	}
	if len(r.MostAddedToCart) != 1 || r.MostAddedToCart[0].ProductID != 1 {
		t.Fatalf("unexpected cart ranking %+v", r.MostAddedToCart)
	}
	if len(r.MostOrdered) != 1 || r.MostOrdered[0].ProductID != 1 || r.MostOrdered[0].Count != 3 {
		t.Fatalf("cancelled orders must not count, got %+v", r.MostOrdered)
	}
}

func TestBuildSearchTerms(t *testing.T) {
	search := func(q, results string) activity.Activity {
		return activity.Activity{
			ActivityType: activity.TypeSearch,
			Metadata:     activity.Metadata{activity.MetaQuery: q, activity.MetaResults: results},
		}
	}
	acts := []activity.Activity{
		search("Shakar", "4"),
		search("shakar ", "2"),
		search("kofe", "0"),
		search("  ", "0"),
	}

	r := BuildSearchTerms(acts)
	if r.TotalSearches != 3 || len(r.Terms) != 2 {
		t.Fatalf("unexpected report %+v", r)
	}
	if r.Terms[0].Term != "shakar" || r.Terms[0].Count != 2 || r.Terms[0].AverageResults != 3 {
		t.Fatalf("unexpected top term %+v", r.Terms[0])
	}
	if len(r.NoResultTerms) != 1 || r.NoResultTerms[0].Term != "kofe" || !r.NoResultTerms[0].NoResults {
		t.Fatalf("unexpected no-result terms %+v", r.NoResultTerms)
	}
}

func TestSalesWorkbookSheets(t *testing.T) {
	r := BuildSales([]order.Order{placed(1, order.StatusPending, 0, line(1, 1, 2, 5000))}, NewNames(nil, nil), 10, 5, time.UTC)
	r.Days = 30

	book, err := SalesWorkbook(&r)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	if len(book.Sheets) != 4 {
		t.Fatalf("expected 4 sheets, got %d", len(book.Sheets))
	}
	products := book.Sheet["Top products"]
	if products == nil || len(products.Rows) != 2 {
		t.Fatalf("expected header plus one product row")
	}
	if got := products.Rows[1].Cells[5].String(); got != "10000.00" {
		t.Fatalf("unexpected revenue cell %q", got)
	}
}
