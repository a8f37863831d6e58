// internal/pkg/pdf/service.go
package pdf

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
	"github.com/shopspring/decimal"

	"github.com/optommarket/backend/internal/config"
	"github.com/optommarket/backend/internal/domain/order"
)

// Service renders order invoices
type Service struct {
	company  config.CompanyConfig
	currency string
	tmpl     *template.Template
}

// NewService creates a new PDF service
func NewService(cfg *config.Config) *Service {
	tmpl := template.Must(template.New("invoice").Funcs(template.FuncMap{
		"money": FormatMoney,
		"inc":   func(i int) int { return i + 1 },
	}).Parse(invoiceTemplate))

	return &Service{
		company:  cfg.Company,
		currency: cfg.Business.Currency,
		tmpl:     tmpl,
	}
}

// InvoiceData represents the data passed to the invoice template
type InvoiceData struct {
	InvoiceNumber string
	InvoiceDate   string
	Order         *order.Order
	ItemsTotal    decimal.Decimal
	Company       config.CompanyConfig
	Currency      string
	Labels        Labels
}

// Labels are the localized captions of the invoice
type Labels struct {
	Title, Date, Customer, Phone, Address, Delivery, Payment string
	Product, Quantity, UnitPrice, Total                      string
	Subtotal, Discount, GrandTotal                           string
}

var labels = map[string]Labels{
	"uz": {
		Title: "Hisob-faktura", Date: "Sana", Customer: "Mijoz", Phone: "Telefon",
		Address: "Manzil", Delivery: "Yetkazib berish", Payment: "To'lov",
		Product: "Mahsulot", Quantity: "Miqdor", UnitPrice: "Narx", Total: "Jami",
		Subtotal: "Oraliq jami", Discount: "Chegirma", GrandTotal: "Umumiy summa",
	},
	"ru": {
		Title: "Счёт-фактура", Date: "Дата", Customer: "Клиент", Phone: "Телефон",
		Address: "Адрес", Delivery: "Доставка", Payment: "Оплата",
		Product: "Товар", Quantity: "Кол-во", UnitPrice: "Цена", Total: "Сумма",
		Subtotal: "Подытог", Discount: "Скидка", GrandTotal: "Итого",
	},
}

// LabelsFor returns the captions for lang, falling back to Uzbek
func LabelsFor(lang string) Labels {
	if l, ok := labels[strings.ToLower(lang)]; ok {
		return l
	}
	return labels["uz"]
}

// RenderHTML renders the invoice markup for an order
func (s *Service) RenderHTML(o *order.Order, lang string) ([]byte, error) {
	data := InvoiceData{
		InvoiceNumber: "INV-" + o.OrderNumber,
		InvoiceDate:   o.CreatedAt.Format("02.01.2006"),
		Order:         o,
		ItemsTotal:    o.ItemsTotal(),
		Company:       s.company,
		Currency:      s.currency,
		Labels:        LabelsFor(lang),
	}

	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// GenerateInvoice renders the invoice and converts it with wkhtmltopdf
func (s *Service) GenerateInvoice(o *order.Order, lang string) ([]byte, error) {
	html, err := s.RenderHTML(o, lang)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF generator: %w", err)
	}
	pdfg.Dpi.Set(300)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationPortrait)
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("utf-8")
	page.FooterRight.Set("[page]")
	page.FooterFontSize.Set(9)
	pdfg.AddPage(page)

	if err := pdfg.Create(); err != nil {
		return nil, fmt.Errorf("failed to create PDF: %w", err)
	}
	return pdfg.Bytes(), nil
}

// FormatMoney renders an amount with space-grouped thousands: 1 250 000.50
func FormatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	if frac != "00" {
		return sign + b.String() + "." + frac
	}
	return sign + b.String()
}

const invoiceTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>{{.Labels.Title}} {{.InvoiceNumber}}</title>
<style>
body { font-family: Arial, sans-serif; font-size: 12px; color: #333; margin: 20px; }
.header { display: flex; justify-content: space-between; border-bottom: 2px solid #2563eb; padding-bottom: 12px; }
.company { font-size: 20px; font-weight: bold; color: #2563eb; }
table { width: 100%; border-collapse: collapse; margin-top: 20px; }
th { background: #f3f4f6; text-align: left; padding: 8px; border-bottom: 1px solid #ddd; }
td { padding: 8px; border-bottom: 1px solid #eee; }
.num { text-align: right; }
.totals { margin-top: 20px; width: 40%; margin-left: auto; }
.totals td { border: none; }
.grand { font-weight: bold; font-size: 14px; }
</style>
</head>
<body>
<div class="header">
  <div>
    <div class="company">{{.Company.Name}}</div>
    <div>{{.Company.Address}}</div>
    <div>{{.Company.Phone}} {{.Company.Email}}</div>
  </div>
  <div>
    <h2>{{.Labels.Title}}</h2>
    <div>{{.InvoiceNumber}}</div>
    <div>{{.Labels.Date}}: {{.InvoiceDate}}</div>
  </div>
</div>

<p>
  <strong>{{.Labels.Customer}}:</strong> {{.Order.CustomerName}}<br>
  <strong>{{.Labels.Phone}}:</strong> {{.Order.CustomerPhone}}<br>
  {{if .Order.ShippingAddress}}<strong>{{.Labels.Address}}:</strong> {{.Order.ShippingAddress}}<br>{{end}}
  <strong>{{.Labels.Delivery}}:</strong> {{.Order.DeliveryMethod}} &middot;
  <strong>{{.Labels.Payment}}:</strong> {{.Order.PaymentMethod}}
</p>

<table>
  <thead>
    <tr><th>#</th><th>{{.Labels.Product}}</th><th class="num">{{.Labels.Quantity}}</th><th class="num">{{.Labels.UnitPrice}}</th><th class="num">{{.Labels.Total}}</th></tr>
  </thead>
  <tbody>
  {{range $i, $item := .Order.Items}}
    <tr><td>{{inc $i}}</td><td>{{$item.ProductName}}</td><td class="num">{{$item.Quantity}}</td><td class="num">{{money $item.UnitPrice}}</td><td class="num">{{money $item.TotalPrice}}</td></tr>
  {{end}}
  </tbody>
</table>

<table class="totals">
  <tr><td>{{.Labels.Subtotal}}</td><td class="num">{{money .ItemsTotal}} {{.Currency}}</td></tr>
  {{if .Order.DiscountAmount.IsPositive}}<tr><td>{{.Labels.Discount}}</td><td class="num">-{{money .Order.DiscountAmount}} {{.Currency}}</td></tr>{{end}}
  <tr class="grand"><td>{{.Labels.GrandTotal}}</td><td class="num">{{money .Order.TotalAmount}} {{.Currency}}</td></tr>
</table>
</body>
</html>`
