// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

var (
	ErrMissingSession     = apperror.Validation("cart session id is required")
	ErrInvalidQuantity    = apperror.Validation("quantity must be at least 1")
	ErrQuantityLimit      = apperror.New(apperror.KindValidation, "QUANTITY_LIMIT", fmt.Sprintf("quantity cannot exceed %d", MaxQuantity))
	ErrProductUnavailable = apperror.New(apperror.KindNotFound, "PRODUCT_UNAVAILABLE", "product not found or inactive")
	ErrItemNotFound       = apperror.New(apperror.KindNotFound, "CART_ITEM_NOT_FOUND", "cart item not found")
)

// Service handles cart business logic
type Service struct {
	repo       Repository
	products   ProductSource
	activities *activity.Recorder
	log        *logrus.Logger
}

// NewService creates a new cart service
func NewService(repo Repository, products ProductSource, activities *activity.Recorder, log *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		products:   products,
		activities: activities,
		log:        log,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID uint `json:"productId" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1,max=10000"`
}

// UpdateCartItemRequest represents update cart item request. Zero or less removes the item.
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=10000"`
}

// GetCart returns the session's items joined with current product data
func (s *Service) GetCart(ctx context.Context, sessionID string) (*Cart, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingSession
	}

	items, err := s.repo.GetCartItems(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}

	lines, err := s.join(ctx, items)
	if err != nil {
		return nil, err
	}

	return Summarize(sessionID, lines), nil
}

// AddToCart adds quantity of a product to the session cart
func (s *Service) AddToCart(ctx context.Context, actor activity.Actor, req *AddToCartRequest) (*CartItem, error) {
	if strings.TrimSpace(actor.SessionID) == "" {
		return nil, ErrMissingSession
	}
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if req.Quantity > MaxQuantity {
		return nil, ErrQuantityLimit
	}

	p, err := s.products.GetProductByID(ctx, req.ProductID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrProductUnavailable
		}
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProductUnavailable
	}

	item, err := s.repo.AddToCart(ctx, actor.SessionID, req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, ErrQuantityLimit) {
			return nil, ErrQuantityLimit
		}
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.activities.Record(ctx, activity.Entry{
		UserID:     actor.UserID,
		SessionID:  actor.SessionID,
		Type:       activity.TypeAddToCart,
		TargetID:   &p.ID,
		TargetType: "product",
		Metadata:   activity.Metadata{"quantity": fmt.Sprint(req.Quantity)},
	})
	return item, nil
}

// UpdateCartItem sets a line's quantity. A quantity of zero or less deletes
// the line and returns a nil item.
func (s *Service) UpdateCartItem(ctx context.Context, sessionID string, id uint, quantity int) (*CartItem, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrMissingSession
	}

	if quantity <= 0 {
		removed, err := s.repo.RemoveFromCart(ctx, sessionID, id)
		if err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
		if !removed {
			return nil, ErrItemNotFound
		}
		return nil, nil
	}
	if quantity > MaxQuantity {
		return nil, ErrQuantityLimit
	}

	item, err := s.repo.SetCartItemQuantity(ctx, sessionID, id, quantity)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	return item, nil
}

// RemoveFromCart deletes a line. It reports whether anything was removed.
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, id uint) (bool, error) {
	if strings.TrimSpace(sessionID) == "" {
		return false, ErrMissingSession
	}
	return s.repo.RemoveFromCart(ctx, sessionID, id)
}

// ClearCart deletes every line of the session
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrMissingSession
	}
	return s.repo.ClearCart(ctx, sessionID)
}

func (s *Service) join(ctx context.Context, items []CartItem) ([]Line, error) {
	if len(items) == 0 {
		return []Line{}, nil
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart products: %w", err)
	}
	byID := make(map[uint]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	lines := make([]Line, 0, len(items))
	for _, item := range items {
		line := Line{CartItem: item, UnitPrice: decimal.Zero, LineTotal: decimal.Zero}
		if p, ok := byID[item.ProductID]; ok {
			line.Product = snapshotOf(p)
			line.UnitPrice = p.UnitPriceFor(item.Quantity)
			line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Summarize derives itemCount and totalAmount from joined lines
func Summarize(sessionID string, lines []Line) *Cart {
	c := &Cart{SessionID: sessionID, Items: lines, TotalAmount: decimal.Zero}
	for _, line := range lines {
		c.ItemCount += line.Quantity
		if line.Product != nil {
			c.TotalAmount = c.TotalAmount.Add(line.LineTotal)
		}
	}
	return c
}
