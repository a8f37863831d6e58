// internal/domain/report/export.go
package report

import (
	"fmt"

	"github.com/tealeg/xlsx"
)

// SalesWorkbook renders a sales report as a workbook with summary, daily,
// product and category sheets.
func SalesWorkbook(r *SalesReport) (*xlsx.File, error) {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	addRow(summary, "Period (days)", r.Days)
	addRow(summary, "Orders", r.TotalOrders)
	addRow(summary, "Revenue", r.TotalRevenue.StringFixed(2))
	addRow(summary, "Items revenue", r.ItemsRevenue.StringFixed(2))
	addRow(summary, "Discounts", r.TotalDiscounts.StringFixed(2))
	addRow(summary, "Average order value", r.AverageOrderValue.StringFixed(2))

	daily, err := file.AddSheet("Daily")
	if err != nil {
		return nil, fmt.Errorf("failed to create daily sheet: %w", err)
	}
	addRow(daily, "Date", "Orders", "Revenue")
	for _, p := range r.Daily {
		addRow(daily, p.Period, p.Orders, p.Revenue.StringFixed(2))
	}

	products, err := file.AddSheet("Top products")
	if err != nil {
		return nil, fmt.Errorf("failed to create products sheet: %w", err)
	}
	addRow(products, "ID", "Name (uz)", "Name (ru)", "Quantity", "Orders", "Revenue")
	for _, p := range r.TopProducts {
		addRow(products, p.ProductID, p.NameUz, p.NameRu, p.Quantity, p.Orders, p.Revenue.StringFixed(2))
	}

	categories, err := file.AddSheet("Top categories")
	if err != nil {
		return nil, fmt.Errorf("failed to create categories sheet: %w", err)
	}
	addRow(categories, "ID", "Name (uz)", "Name (ru)", "Quantity", "Revenue")
	for _, c := range r.TopCategories {
		addRow(categories, c.CategoryID, c.NameUz, c.NameRu, c.Quantity, c.Revenue.StringFixed(2))
	}

	return file, nil
}

func addRow(sheet *xlsx.Sheet, values ...interface{}) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().SetValue(v)
	}
}
