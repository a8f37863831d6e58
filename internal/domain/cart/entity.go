// internal/domain/cart/entity.go
package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/optommarket/backend/internal/domain/product"
)

// MaxQuantity caps a single cart or order line
const MaxQuantity = 10000

// CartItem is one product line of an anonymous, session-scoped cart.
// Quantity is always between 1 and MaxQuantity.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:100;not null;uniqueIndex:idx_cart_session_product,priority:1" json:"sessionId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_session_product,priority:2;index" json:"productId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}

// ProductSnapshot is the live product data joined onto a cart line
type ProductSnapshot struct {
	ID             uint            `json:"id"`
	NameUz         string          `json:"nameUz"`
	NameRu         string          `json:"nameRu"`
	CategoryID     uint            `json:"categoryId"`
	Price          decimal.Decimal `json:"price"`
	WholesalePrice decimal.Decimal `json:"wholesalePrice"`
	MinQuantity    int             `json:"minQuantity"`
	Images         []string        `json:"images"`
	Slug           string          `json:"slug"`
	Unit           string          `json:"unit"`
	StockQuantity  int             `json:"stockQuantity"`
	IsActive       bool            `json:"isActive"`
}

func snapshotOf(p *product.Product) *ProductSnapshot {
	return &ProductSnapshot{
		ID:             p.ID,
		NameUz:         p.NameUz,
		NameRu:         p.NameRu,
		CategoryID:     p.CategoryID,
		Price:          p.Price,
		WholesalePrice: p.WholesalePrice,
		MinQuantity:    p.MinQuantity,
		Images:         p.Images,
		Slug:           p.Slug,
		Unit:           p.Unit,
		StockQuantity:  p.StockQuantity,
		IsActive:       p.IsActive,
	}
}

// Line is a cart item with its product join. Product is nil when the
// product no longer exists; such lines contribute nothing to the total.
type Line struct {
	CartItem
	Product   *ProductSnapshot `json:"product"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	LineTotal decimal.Decimal  `json:"lineTotal"`
}

// Cart is a session's lines plus derived totals
type Cart struct {
	SessionID   string          `json:"sessionId"`
	Items       []Line          `json:"items"`
	ItemCount   int             `json:"itemCount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// Repository persists cart items. Every call is scoped by session.
type Repository interface {
	GetCartItems(ctx context.Context, sessionID string) ([]CartItem, error)
	// AddToCart inserts the (session, product) row or atomically increments
	// its quantity, returning the resulting row. A merge that would pass
	// MaxQuantity leaves the row unchanged and returns ErrQuantityLimit.
	AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) (*CartItem, error)
	SetCartItemQuantity(ctx context.Context, sessionID string, id uint, quantity int) (*CartItem, error)
	RemoveFromCart(ctx context.Context, sessionID string, id uint) (bool, error)
	ClearCart(ctx context.Context, sessionID string) error
}

// ProductSource is the catalog lookup the cart needs
type ProductSource interface {
	GetProductByID(ctx context.Context, id uint) (*product.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uint) ([]product.Product, error)
}
