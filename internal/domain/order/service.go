// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/activity"
	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/product"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

var (
	ErrMinimumOrderNotMet = apperror.New(apperror.KindBusinessRule, "MINIMUM_ORDER_NOT_MET", "order total is below the minimum order amount")
	ErrEmptyOrder         = apperror.New(apperror.KindValidation, "EMPTY_ORDER", "order has no items")
	ErrInvalidTransition  = apperror.New(apperror.KindBusinessRule, "INVALID_STATUS_TRANSITION", "status transition is not allowed")
	ErrStatusChanged      = apperror.Conflict("STATUS_CHANGED", "order status was changed concurrently")
	ErrOrderNotFound      = apperror.New(apperror.KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrOrderTooLarge      = apperror.New(apperror.KindValidation, "ORDER_TOO_LARGE", "order total is too large")
)

// ProductSource is the catalog lookup used for server-side pricing
type ProductSource interface {
	GetProductsByIDs(ctx context.Context, ids []uint) ([]product.Product, error)
}

// Service handles checkout and order management
type Service struct {
	repo       Repository
	products   ProductSource
	carts      cart.Repository
	discounts  *discount.Service
	activities *activity.Recorder
	minimum    decimal.Decimal
	log        *logrus.Logger
}

// NewService creates a new order service. minimum is the smallest accepted
// order total after discounts.
func NewService(repo Repository, products ProductSource, carts cart.Repository, discounts *discount.Service, activities *activity.Recorder, minimum decimal.Decimal, log *logrus.Logger) *Service {
	return &Service{
		repo:       repo,
		products:   products,
		carts:      carts,
		discounts:  discounts,
		activities: activities,
		minimum:    minimum,
		log:        log,
	}
}

// MinimumOrderAmount returns the configured threshold
func (s *Service) MinimumOrderAmount() decimal.Decimal {
	return s.minimum
}

// ItemRequest is one requested line. Client prices are accepted for
// compatibility but ignored: lines are priced from the live catalog.
type ItemRequest struct {
	ProductID  uint             `json:"productId" binding:"required"`
	Quantity   int              `json:"quantity" binding:"required,min=1,max=10000"`
	UnitPrice  *decimal.Decimal `json:"unitPrice,omitempty"`
	TotalPrice *decimal.Decimal `json:"totalPrice,omitempty"`
}

// CreateOrderRequest represents the checkout form
type CreateOrderRequest struct {
	CustomerName    string         `json:"customerName" binding:"required,max=255"`
	CustomerPhone   string         `json:"customerPhone" binding:"required,max=32"`
	CustomerEmail   *string        `json:"customerEmail" binding:"omitempty,email"`
	ShippingAddress string         `json:"shippingAddress"`
	DeliveryMethod  DeliveryMethod `json:"deliveryMethod" binding:"required,oneof=pickup courier"`
	PaymentMethod   PaymentMethod  `json:"paymentMethod" binding:"required,oneof=cash card qr"`
	Notes           *string        `json:"notes"`
	DiscountCode    string         `json:"discountCode" binding:"max=50"`
	Items           []ItemRequest  `json:"items" binding:"omitempty,dive"`
}

// UpdateStatusRequest is the admin status change body
type UpdateStatusRequest struct {
	Status  Status `json:"status" binding:"required,oneof=pending confirmed shipped delivered cancelled"`
	Comment string `json:"comment"`
}

// UpdatePaymentStatusRequest is the admin payment status change body
type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" binding:"required,oneof=pending paid cancelled"`
	Comment       string        `json:"comment"`
}

// CreateOrder prices the requested lines (or the session cart when the
// request carries none), applies an optional discount code, enforces the
// minimum order amount and stores the order atomically. The session cart is
// cleared only after the order is stored.
func (s *Service) CreateOrder(ctx context.Context, actor activity.Actor, req *CreateOrderRequest) (*Order, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	requested, err := s.requestedLines(ctx, actor.SessionID, req.Items)
	if err != nil {
		return nil, err
	}
	if len(requested) == 0 {
		return nil, ErrEmptyOrder
	}

	items, err := s.priceLines(ctx, requested)
	if err != nil {
		return nil, err
	}

	lines := discountLines(items)
	itemsSum := decimal.Zero
	for _, l := range lines {
		itemsSum = itemsSum.Add(l.Total)
	}
	if itemsSum.GreaterThanOrEqual(product.MaxAmount) {
		return nil, ErrOrderTooLarge
	}

	var (
		applied *discount.Discount
		result  discount.Result
	)
	if code := strings.TrimSpace(req.DiscountCode); code != "" {
		applied, result, err = s.discounts.Quote(ctx, code, lines)
		if err != nil {
			return nil, err
		}
	} else {
		result = discount.Result{Subtotal: itemsSum, EligibleAmount: itemsSum, DiscountAmount: decimal.Zero, FinalAmount: itemsSum}
	}

	if result.FinalAmount.LessThan(s.minimum) {
		s.log.WithFields(logrus.Fields{
			"total":   result.FinalAmount.String(),
			"minimum": s.minimum.String(),
		}).Info("order rejected below minimum amount")
		return nil, ErrMinimumOrderNotMet
	}

	o := &Order{
		UserID:          actor.UserID,
		TotalAmount:     result.FinalAmount,
		DiscountAmount:  result.DiscountAmount,
		Status:          StatusPending,
		DeliveryMethod:  req.DeliveryMethod,
		PaymentMethod:   req.PaymentMethod,
		PaymentStatus:   PaymentStatusPending,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerEmail:   req.CustomerEmail,
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Notes:           req.Notes,
		Items:           items,
		StatusHistory: []StatusHistory{{
			Field:     FieldStatus,
			ToValue:   string(StatusPending),
			Comment:   "Order created",
			CreatedBy: actor.UserID,
		}},
	}
	if actor.SessionID != "" {
		sid := actor.SessionID
		o.SessionID = &sid
	}

	var discountID *uint
	if applied != nil {
		id := applied.ID
		discountID = &id
		o.DiscountID = &id
	}

	if err := s.repo.CreateOrder(ctx, o, discountID); err != nil {
		if errors.Is(err, discount.ErrInvalidCode) {
			return nil, discount.ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if actor.SessionID != "" {
		if err := s.carts.ClearCart(ctx, actor.SessionID); err != nil {
			s.log.WithError(err).WithField("order_id", o.ID).Warn("failed to clear cart after order")
		}
	}

	s.activities.Record(ctx, activity.Entry{
		UserID:     actor.UserID,
		SessionID:  actor.SessionID,
		Type:       activity.TypeOrder,
		TargetID:   &o.ID,
		TargetType: "order",
		Metadata:   activity.Metadata{"total": o.TotalAmount.String()},
	})

	s.log.WithFields(logrus.Fields{
		"order_id":        o.ID,
		"order_number":    o.OrderNumber,
		"total":           o.TotalAmount.String(),
		"discount_amount": o.DiscountAmount.String(),
		"items":           len(o.Items),
	}).Info("order created")

	return o, nil
}

func discountLines(items []OrderItem) []discount.Line {
	lines := make([]discount.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, discount.Line{ProductID: item.ProductID, CategoryID: item.CategoryID, Total: item.TotalPrice})
	}
	return lines
}

// QuoteDiscount validates code and, when there is something to price (the
// given items, else the session cart), computes what the discount would take
// off. The returned result is nil for an empty cart.
func (s *Service) QuoteDiscount(ctx context.Context, sessionID, code string, items []ItemRequest) (*discount.Discount, *discount.Result, error) {
	d, err := s.discounts.Apply(ctx, code)
	if err != nil {
		return nil, nil, err
	}

	requested, err := s.requestedLines(ctx, sessionID, items)
	if err != nil {
		return nil, nil, err
	}
	if len(requested) == 0 {
		return d, nil, nil
	}
	priced, err := s.priceLines(ctx, requested)
	if err != nil {
		return nil, nil, err
	}

	result := discount.Compute(d, discountLines(priced))
	return d, &result, nil
}

func validateCheckout(req *CreateOrderRequest) error {
	if strings.TrimSpace(req.CustomerName) == "" || strings.TrimSpace(req.CustomerPhone) == "" {
		return apperror.Validation("customer name and phone are required")
	}
	switch req.DeliveryMethod {
	case DeliveryPickup:
	case DeliveryCourier:
		if strings.TrimSpace(req.ShippingAddress) == "" {
			return apperror.Validation("shipping address is required for courier delivery")
		}
	default:
		return apperror.Validation("unknown delivery method")
	}
	switch req.PaymentMethod {
	case PaymentCash, PaymentCard, PaymentQR:
	default:
		return apperror.Validation("unknown payment method")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return apperror.Validation("item quantity must be at least 1")
		}
		if item.Quantity > cart.MaxQuantity {
			return cart.ErrQuantityLimit
		}
	}
	return nil
}

type requestedLine struct {
	productID uint
	quantity  int
}

func (s *Service) requestedLines(ctx context.Context, sessionID string, items []ItemRequest) ([]requestedLine, error) {
	if len(items) > 0 {
		lines := make([]requestedLine, 0, len(items))
		for _, item := range items {
			lines = append(lines, requestedLine{productID: item.ProductID, quantity: item.Quantity})
		}
		return lines, nil
	}

	if sessionID == "" {
		return nil, nil
	}
	cartItems, err := s.carts.GetCartItems(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	lines := make([]requestedLine, 0, len(cartItems))
	for _, item := range cartItems {
		lines = append(lines, requestedLine{productID: item.ProductID, quantity: item.Quantity})
	}
	return lines, nil
}

// priceLines pins unit and total prices from the live product records
func (s *Service) priceLines(ctx context.Context, requested []requestedLine) ([]OrderItem, error) {
	ids := make([]uint, 0, len(requested))
	for _, r := range requested {
		ids = append(ids, r.productID)
	}

	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byID := make(map[uint]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	items := make([]OrderItem, 0, len(requested))
	for _, r := range requested {
		p, ok := byID[r.productID]
		if !ok || !p.IsActive {
			return nil, apperror.New(apperror.KindValidation, "PRODUCT_UNAVAILABLE", fmt.Sprintf("product %d is not available", r.productID))
		}
		unit := p.UnitPriceFor(r.quantity)
		items = append(items, OrderItem{
			ProductID:   p.ID,
			CategoryID:  p.CategoryID,
			ProductName: p.NameUz,
			Quantity:    r.quantity,
			UnitPrice:   unit,
			TotalPrice:  unit.Mul(decimal.NewFromInt(int64(r.quantity))),
		})
	}
	return items, nil
}

// GetOrder returns an order with its items and history
func (s *Service) GetOrder(ctx context.Context, id uint) (*Order, error) {
	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return o, nil
}

// ListOrders returns orders newest first
func (s *Service) ListOrders(ctx context.Context, f ListFilter) ([]Order, error) {
	return s.repo.ListOrders(ctx, f)
}

// UpdateStatus advances the order through its state machine
func (s *Service) UpdateStatus(ctx context.Context, id uint, to Status, comment string, by *uint) (*Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if to == StatusCancelled && !o.CanBeCancelled() {
		return nil, apperror.Wrap(ErrInvalidTransition.Kind, ErrInvalidTransition.Code,
			fmt.Sprintf("order is already %s and can no longer be cancelled", o.Status), ErrInvalidTransition)
	}
	if !CanTransition(o.Status, to) {
		return nil, apperror.Wrap(ErrInvalidTransition.Kind, ErrInvalidTransition.Code,
			fmt.Sprintf("cannot change status from %s to %s", o.Status, to), ErrInvalidTransition)
	}

	h := &StatusHistory{Field: FieldStatus, FromValue: string(o.Status), ToValue: string(to), Comment: comment, CreatedBy: by}
	updated, err := s.repo.UpdateOrderStatus(ctx, id, o.Status, to, h)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": id, "from": o.Status, "to": to}).Info("order status changed")
	return updated, nil
}

// UpdatePaymentStatus records a payment outcome
func (s *Service) UpdatePaymentStatus(ctx context.Context, id uint, to PaymentStatus, comment string, by *uint) (*Order, error) {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransitionPayment(o.PaymentStatus, to) {
		return nil, apperror.Wrap(ErrInvalidTransition.Kind, ErrInvalidTransition.Code,
			fmt.Sprintf("cannot change payment status from %s to %s", o.PaymentStatus, to), ErrInvalidTransition)
	}

	h := &StatusHistory{Field: FieldPaymentStatus, FromValue: string(o.PaymentStatus), ToValue: string(to), Comment: comment, CreatedBy: by}
	updated, err := s.repo.UpdatePaymentStatus(ctx, id, o.PaymentStatus, to, h)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": id, "from": o.PaymentStatus, "to": to}).Info("payment status changed")
	return updated, nil
}
