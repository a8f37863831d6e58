// internal/domain/product/entity.go
package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category is a node of the catalog tree
type Category struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	NameUz        string    `gorm:"size:255;not null" json:"nameUz"`
	NameRu        string    `gorm:"size:255;not null" json:"nameRu"`
	DescriptionUz *string   `gorm:"type:text" json:"descriptionUz,omitempty"`
	DescriptionRu *string   `gorm:"type:text" json:"descriptionRu,omitempty"`
	Image         *string   `gorm:"size:500" json:"image,omitempty"`
	Slug          string    `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	ParentID      *uint     `gorm:"index" json:"parentId,omitempty"`
	SortOrder     int       `gorm:"not null;default:0" json:"sortOrder"`
	IsActive      bool      `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Children []Category `gorm:"-" json:"children,omitempty"`
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// MaxAmount is the smallest money value a numeric(14,2) column cannot hold
var MaxAmount = decimal.New(1, 12)

// Specifications is a free-form attribute map shown on the product page
type Specifications map[string]string

// Product represents a wholesale catalog item
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	NameUz         string          `gorm:"size:255;not null" json:"nameUz"`
	NameRu         string          `gorm:"size:255;not null" json:"nameRu"`
	DescriptionUz  string          `gorm:"type:text" json:"descriptionUz"`
	DescriptionRu  string          `gorm:"type:text" json:"descriptionRu"`
	CategoryID     uint            `gorm:"not null;index" json:"categoryId"`
	SellerID       *uint           `gorm:"index" json:"sellerId,omitempty"`
	Price          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	WholesalePrice decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"wholesalePrice"`
	MinQuantity    int             `gorm:"not null;default:1" json:"minQuantity"`
	StockQuantity  int             `gorm:"not null;default:0" json:"stockQuantity"`
	Unit           string          `gorm:"size:32;not null" json:"unit"`
	Specifications Specifications  `gorm:"type:jsonb;serializer:json" json:"specifications"`
	Images         []string        `gorm:"type:jsonb;serializer:json" json:"images"`
	VideoURL       *string         `gorm:"size:500" json:"videoUrl,omitempty"`
	Slug           string          `gorm:"uniqueIndex:idx_products_slug,where:deleted_at IS NULL;size:255;not null" json:"slug"`
	IsActive       bool            `gorm:"not null;index" json:"isActive"`
	IsFeatured     bool            `gorm:"not null;index" json:"isFeatured"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// UnitPriceFor returns the per-unit price for an ordered quantity: the
// wholesale price once quantity reaches MinQuantity, otherwise the retail price.
func (p *Product) UnitPriceFor(quantity int) decimal.Decimal {
	if quantity >= p.MinQuantity && p.WholesalePrice.IsPositive() {
		return p.WholesalePrice
	}
	return p.Price
}

// Filter narrows ListProducts. Zero values mean no constraint.
type Filter struct {
	CategoryIDs     []uint
	Featured        *bool
	Search          string
	SellerID        *uint
	IncludeInactive bool
}

// Repository persists the catalog
type Repository interface {
	ListCategories(ctx context.Context, includeInactive bool) ([]Category, error)
	GetCategoryByID(ctx context.Context, id uint) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	CreateCategory(ctx context.Context, c *Category) error
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uint) error
	CountProductsInCategory(ctx context.Context, categoryID uint) (int64, error)

	ListProducts(ctx context.Context, f Filter) ([]Product, error)
	GetProductByID(ctx context.Context, id uint) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	// GetProductsByIDs returns the non-deleted products among ids, active or not.
	GetProductsByIDs(ctx context.Context, ids []uint) ([]Product, error)
	CreateProduct(ctx context.Context, p *Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id uint) error
	CountProducts(ctx context.Context) (int64, error)
}

// TreeCache stores the built category tree
type TreeCache interface {
	GetCategoryTree(ctx context.Context) ([]Category, bool)
	SetCategoryTree(ctx context.Context, tree []Category)
	InvalidateCategoryTree(ctx context.Context)
}
