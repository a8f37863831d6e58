// internal/domain/favorite/entity.go
package favorite

import (
	"context"
	"time"

	"github.com/optommarket/backend/internal/domain/product"
)

// Favorite marks a product as saved by a user
type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_favorites_user_product,priority:1" json:"userId"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_favorites_user_product,priority:2;index" json:"productId"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name
func (Favorite) TableName() string {
	return "favorites"
}

// Item is a favorite joined with its product. Product is nil once the
// product is deleted.
type Item struct {
	Favorite
	Product *product.Product `json:"product"`
}

// Repository persists favorites
type Repository interface {
	// AddFavorite is idempotent: it returns the existing row when the pair is
	// already saved.
	AddFavorite(ctx context.Context, userID, productID uint) (*Favorite, error)
	RemoveFavorite(ctx context.Context, userID, productID uint) (bool, error)
	ListFavorites(ctx context.Context, userID uint) ([]Favorite, error)
}
