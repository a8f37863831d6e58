// internal/domain/favorite/service.go
package favorite

import (
	"context"
	"fmt"

	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

// ProductSource is the catalog lookup used to join favorites
type ProductSource interface {
	GetProductByID(ctx context.Context, id uint) (*product.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uint) ([]product.Product, error)
}

// Service handles favorites business logic
type Service struct {
	repo     Repository
	products ProductSource
}

// NewService creates a new favorites service
func NewService(repo Repository, products ProductSource) *Service {
	return &Service{repo: repo, products: products}
}

// AddRequest represents add to favorites request
type AddRequest struct {
	ProductID uint `json:"productId" binding:"required"`
}

// Add saves a product for the user
func (s *Service) Add(ctx context.Context, userID, productID uint) (*Favorite, error) {
	p, err := s.products.GetProductByID(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("product not found")
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, apperror.NotFound("product not found")
	}

	fav, err := s.repo.AddFavorite(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return fav, nil
}

// Remove unsaves a product. It reports whether a row was removed.
func (s *Service) Remove(ctx context.Context, userID, productID uint) (bool, error) {
	return s.repo.RemoveFavorite(ctx, userID, productID)
}

// List returns the user's favorites joined with products
func (s *Service) List(ctx context.Context, userID uint) ([]Item, error) {
	favs, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(favs) == 0 {
		return []Item{}, nil
	}

	ids := make([]uint, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.ProductID)
	}
	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]Item, 0, len(favs))
	for _, f := range favs {
		items = append(items, Item{Favorite: f, Product: byID[f.ProductID]})
	}
	return items, nil
}
