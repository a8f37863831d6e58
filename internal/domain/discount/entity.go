// internal/domain/discount/entity.go
package discount

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Type is how the discount value is interpreted
type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// TargetType scopes which order lines a discount applies to
type TargetType string

const (
	TargetAllProducts        TargetType = "all_products"
	TargetSpecificProducts   TargetType = "specific_products"
	TargetSpecificCategories TargetType = "specific_categories"
)

// Discount is a redeemable code
type Discount struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Code       string          `gorm:"uniqueIndex;size:50;not null" json:"code"`
	Type       Type            `gorm:"type:varchar(20);not null" json:"type"`
	Value      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"value"`
	IsActive   bool            `gorm:"not null" json:"isActive"`
	ValidFrom  time.Time       `gorm:"not null" json:"validFrom"`
	ValidUntil time.Time       `gorm:"not null" json:"validUntil"`
	MaxUses    int             `gorm:"not null;default:0" json:"maxUses"`
	UsedCount  int             `gorm:"not null;default:0" json:"usedCount"`
	TargetType TargetType      `gorm:"type:varchar(32);not null;default:'all_products'" json:"targetType"`
	TargetIDs  []uint          `gorm:"type:jsonb;serializer:json" json:"targetIds,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// TableName overrides the table name for Discount
func (Discount) TableName() string {
	return "discounts"
}

// IsRedeemable reports whether the code can be used at now: active, inside
// its validity window and below its usage cap (0 = unlimited).
func (d *Discount) IsRedeemable(now time.Time) bool {
	if !d.IsActive {
		return false
	}
	if now.Before(d.ValidFrom) || now.After(d.ValidUntil) {
		return false
	}
	return d.MaxUses == 0 || d.UsedCount < d.MaxUses
}

// Repository persists discounts
type Repository interface {
	GetDiscountByCode(ctx context.Context, code string) (*Discount, error)
	GetDiscountByID(ctx context.Context, id uint) (*Discount, error)
	ListDiscounts(ctx context.Context) ([]Discount, error)
	CreateDiscount(ctx context.Context, d *Discount) error
	UpdateDiscount(ctx context.Context, d *Discount) error
	DeleteDiscount(ctx context.Context, id uint) error
}
