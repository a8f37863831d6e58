// internal/domain/report/aggregate.go
package report

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/domain/product"
)

// DayKey formats t as YYYY-MM-DD
func DayKey(t time.Time) string { return t.Format(DayLayout) }

// WeekKey formats t as its ISO week, YYYY-Www
func WeekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// MonthKey formats t as YYYY-MM
func MonthKey(t time.Time) string { return t.Format(MonthLayout) }

func NewNames(products []product.Product, categories []product.Category) Names {
	n := Names{
		products:   make(map[uint][2]string, len(products)),
		categories: make(map[uint][2]string, len(categories)),
	}
	for _, p := range products {
		n.products[p.ID] = [2]string{p.NameUz, p.NameRu}
	}
	for _, c := range categories {
		n.categories[c.ID] = [2]string{c.NameUz, c.NameRu}
	}
	return n
}

type counter map[string]int

func (c counter) points() []Point {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Point, 0, len(keys))
	for _, k := range keys {
		out = append(out, Point{Period: k, Count: c[k]})
	}
	return out
}

func bucketize(times []time.Time, loc *time.Location) Buckets {
	daily, weekly, monthly := counter{}, counter{}, counter{}
	for _, t := range times {
		t = t.In(loc)
		daily[DayKey(t)]++
		weekly[WeekKey(t)]++
		monthly[MonthKey(t)]++
	}
	return Buckets{Daily: daily.points(), Weekly: weekly.points(), Monthly: monthly.points()}
}

// BuildUserActivity groups visit and registration events by day, ISO week and month
func BuildUserActivity(acts []activity.Activity, loc *time.Location) UserActivityReport {
	var visits, registrations []time.Time
	visitors := make(map[string]struct{})

	for _, a := range acts {
		switch a.ActivityType {
		case activity.TypeVisit:
			visits = append(visits, a.CreatedAt)
			if key := visitorKey(a); key != "" {
				visitors[key] = struct{}{}
			}
		case activity.TypeRegister:
			registrations = append(registrations, a.CreatedAt)
		}
	}

	return UserActivityReport{
		TotalVisits:        len(visits),
		UniqueVisitors:     len(visitors),
		TotalRegistrations: len(registrations),
		Visits:             bucketize(visits, loc),
		Registrations:      bucketize(registrations, loc),
	}
}

func visitorKey(a activity.Activity) string {
	if a.UserID != nil {
		return "u:" + strconv.FormatUint(uint64(*a.UserID), 10)
	}
	if a.SessionID != nil && *a.SessionID != "" {
		return "s:" + *a.SessionID
	}
	return ""
}

type revenueAcc struct {
	orders  int
	revenue decimal.Decimal
}

type productAcc struct {
	id       uint
	snapshot string
	quantity int
	orders   int
	revenue  decimal.Decimal
}

type categoryAcc struct {
	id       uint
	quantity int
	revenue  decimal.Decimal
}

// BuildSales aggregates non-cancelled orders. Top lists are ranked by
// revenue, ties broken by id, and truncated to the given sizes.
func BuildSales(orders []order.Order, n Names, topProducts, topCategories int, loc *time.Location) SalesReport {
	r := SalesReport{
		TotalRevenue:      decimal.Zero,
		ItemsRevenue:      decimal.Zero,
		TotalDiscounts:    decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}

	daily := make(map[string]*revenueAcc)
	monthly := make(map[string]*revenueAcc)
	byProduct := make(map[uint]*productAcc)
	byCategory := make(map[uint]*categoryAcc)

	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		r.TotalOrders++
		r.TotalRevenue = r.TotalRevenue.Add(o.TotalAmount)
		r.TotalDiscounts = r.TotalDiscounts.Add(o.DiscountAmount)

		created := o.CreatedAt.In(loc)
		addRevenue(daily, DayKey(created), o.TotalAmount)
		addRevenue(monthly, MonthKey(created), o.TotalAmount)

		seen := make(map[uint]bool)
		for _, item := range o.Items {
			r.ItemsRevenue = r.ItemsRevenue.Add(item.TotalPrice)

			pa, ok := byProduct[item.ProductID]
			if !ok {
				pa = &productAcc{id: item.ProductID, snapshot: item.ProductName, revenue: decimal.Zero}
				byProduct[item.ProductID] = pa
			}
			pa.quantity += item.Quantity
			pa.revenue = pa.revenue.Add(item.TotalPrice)
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				pa.orders++
			}

			ca, ok := byCategory[item.CategoryID]
			if !ok {
				ca = &categoryAcc{id: item.CategoryID, revenue: decimal.Zero}
				byCategory[item.CategoryID] = ca
			}
			ca.quantity += item.Quantity
			ca.revenue = ca.revenue.Add(item.TotalPrice)
		}
	}

	if r.TotalOrders > 0 {
		r.AverageOrderValue = r.TotalRevenue.Div(decimal.NewFromInt(int64(r.TotalOrders))).Round(2)
	}
	r.Daily = revenuePoints(daily)
	r.Monthly = revenuePoints(monthly)

	products := make([]*productAcc, 0, len(byProduct))
	for _, pa := range byProduct {
		products = append(products, pa)
	}
	sort.Slice(products, func(i, j int) bool {
		if c := products[i].revenue.Cmp(products[j].revenue); c != 0 {
			return c > 0
		}
		return products[i].id < products[j].id
	})
	if len(products) > topProducts {
		products = products[:topProducts]
	}
	r.TopProducts = make([]ProductSales, 0, len(products))
	for _, pa := range products {
		nameUz, nameRu := n.product(pa.id, pa.snapshot)
		r.TopProducts = append(r.TopProducts, ProductSales{
			ProductID: pa.id,
			NameUz:    nameUz,
			NameRu:    nameRu,
			Quantity:  pa.quantity,
			Orders:    pa.orders,
			Revenue:   pa.revenue,
		})
	}

	categories := make([]*categoryAcc, 0, len(byCategory))
	for _, ca := range byCategory {
		categories = append(categories, ca)
	}
	sort.Slice(categories, func(i, j int) bool {
		if c := categories[i].revenue.Cmp(categories[j].revenue); c != 0 {
			return c > 0
		}
		return categories[i].id < categories[j].id
	})
	if len(categories) > topCategories {
		categories = categories[:topCategories]
	}
	r.TopCategories = make([]CategorySales, 0, len(categories))
	for _, ca := range categories {
		pair := n.categories[ca.id]
		r.TopCategories = append(r.TopCategories, CategorySales{
			CategoryID: ca.id,
			NameUz:     pair[0],
			NameRu:     pair[1],
			Quantity:   ca.quantity,
			Revenue:    ca.revenue,
		})
	}

	return r
}

func addRevenue(m map[string]*revenueAcc, key string, amount decimal.Decimal) {
	acc, ok := m[key]
	if !ok {
		acc = &revenueAcc{revenue: decimal.Zero}
		m[key] = acc
	}
	acc.orders++
	acc.revenue = acc.revenue.Add(amount)
}

func revenuePoints(m map[string]*revenueAcc) []RevenuePoint {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]RevenuePoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, RevenuePoint{Period: k, Orders: m[k].orders, Revenue: m[k].revenue})
	}
	return out
}

func (n Names) product(id uint, snapshot string) (string, string) {
	if pair, ok := n.products[id]; ok {
		return pair[0], pair[1]
	}
	return snapshot, snapshot
}

// BuildPopularProducts ranks products three independent ways and keeps the top limit of each
func BuildPopularProducts(acts []activity.Activity, orders []order.Order, n Names, limit int) PopularProductsReport {
	views := make(map[uint]int)
	carts := make(map[uint]int)
	ordered := make(map[uint]int)
	snapshots := make(map[uint]string)

	for _, a := range acts {
		if a.TargetID == nil {
			continue
		}
		switch a.ActivityType {
		case activity.TypeProductView:
			views[*a.TargetID]++
		case activity.TypeAddToCart:
			carts[*a.TargetID]++
		}
	}
	for _, o := range orders {
		if o.Status == order.StatusCancelled {
			continue
		}
		for _, item := range o.Items {
			ordered[item.ProductID] += item.Quantity
			snapshots[item.ProductID] = item.ProductName
		}
	}

	return PopularProductsReport{
		MostViewed:      n.rank(views, snapshots, limit),
		MostAddedToCart: n.rank(carts, snapshots, limit),
		MostOrdered:     n.rank(ordered, snapshots, limit),
	}
}

func (n Names) rank(counts map[uint]int, snapshots map[uint]string, limit int) []RankedProduct {
	out := make([]RankedProduct, 0, len(counts))
	for id, count := range counts {
		nameUz, nameRu := n.product(id, snapshots[id])
		out = append(out, RankedProduct{ProductID: id, NameUz: nameUz, NameRu: nameRu, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].ProductID < out[j].ProductID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// BuildSearchTerms groups search events by lower-cased query. A term whose
// average result count is zero is flagged as a no-result search.
func BuildSearchTerms(acts []activity.Activity) SearchTermsReport {
	type acc struct {
		count   int
		results int
	}
	terms := make(map[string]*acc)
	total := 0

	for _, a := range acts {
		if a.ActivityType != activity.TypeSearch {
			continue
		}
		term := strings.ToLower(strings.TrimSpace(a.Metadata[activity.MetaQuery]))
		if term == "" {
			continue
		}
		results, _ := strconv.Atoi(a.Metadata[activity.MetaResults])

		t, ok := terms[term]
		if !ok {
			t = &acc{}
			terms[term] = t
		}
		t.count++
		t.results += results
		total++
	}

	r := SearchTermsReport{
		TotalSearches: total,
		Terms:         make([]SearchTerm, 0, len(terms)),
		NoResultTerms: []SearchTerm{},
	}
	for term, t := range terms {
		avg := float64(t.results) / float64(t.count)
		r.Terms = append(r.Terms, SearchTerm{
			Term:           term,
			Count:          t.count,
			AverageResults: avg,
			NoResults:      t.results == 0,
		})
	}
	sort.Slice(r.Terms, func(i, j int) bool {
		if r.Terms[i].Count != r.Terms[j].Count {
			return r.Terms[i].Count > r.Terms[j].Count
		}
		return r.Terms[i].Term < r.Terms[j].Term
	})
	for _, t := range r.Terms {
		if t.NoResults {
			r.NoResultTerms = append(r.NoResultTerms, t)
		}
	}
	return r
}
