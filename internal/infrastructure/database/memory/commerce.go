package memory

import (
	"context"
	"sort"

	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

func (s *Storage) GetCartItems(ctx context.Context, sessionID string) ([]cart.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cart.CartItem, 0)
	for _, item := range s.cartItems {
		if item.SessionID == sessionID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddToCart performs the find-or-insert and the increment under one lock
func (s *Storage) AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) (*cart.CartItem, error) {
	if quantity > cart.MaxQuantity {
		return nil, cart.ErrQuantityLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	for _, item := range s.cartItems {
		if item.SessionID == sessionID && item.ProductID == productID {
			if item.Quantity > cart.MaxQuantity-quantity {
				return nil, cart.ErrQuantityLimit
			}
			item.Quantity += quantity
			item.UpdatedAt = now
			cp := *item
			return &cp, nil
		}
	}

	item := &cart.CartItem{
		ID:        s.nextID("cart_items"),
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.cartItems[item.ID] = item
	cp := *item
	return &cp, nil
}

func (s *Storage) SetCartItemQuantity(ctx context.Context, sessionID string, id uint, quantity int) (*cart.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[id]
	if !ok || item.SessionID != sessionID {
		return nil, apperror.ErrNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = s.now().UTC()
	cp := *item
	return &cp, nil
}

func (s *Storage) RemoveFromCart(ctx context.Context, sessionID string, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[id]
	if !ok || item.SessionID != sessionID {
		return false, nil
	}
	delete(s.cartItems, id)
	return true, nil
}

func (s *Storage) ClearCart(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.cartItems {
		if item.SessionID == sessionID {
			delete(s.cartItems, id)
		}
	}
	return nil
}

func copyDiscount(d *discount.Discount) discount.Discount {
	cp := *d
	cp.TargetIDs = append([]uint(nil), d.TargetIDs...)
	return cp
}

func (s *Storage) GetDiscountByCode(ctx context.Context, code string) (*discount.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.discounts {
		if d.Code == code {
			cp := copyDiscount(d)
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (s *Storage) GetDiscountByID(ctx context.Context, id uint) (*discount.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.discounts[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := copyDiscount(d)
	return &cp, nil
}

func (s *Storage) ListDiscounts(ctx context.Context) ([]discount.Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]discount.Discount, 0, len(s.discounts))
	for _, d := range s.discounts {
		out = append(out, copyDiscount(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Storage) CreateDiscount(ctx context.Context, d *discount.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.discounts {
		if existing.Code == d.Code {
			return apperror.Conflict("DISCOUNT_CODE_TAKEN", "discount code already exists")
		}
	}
	d.ID = s.nextID("discounts")
	s.stamp(&d.CreatedAt)
	d.UpdatedAt = d.CreatedAt
	cp := copyDiscount(d)
	s.discounts[d.ID] = &cp
	return nil
}

// UpdateDiscount keeps the stored usage counter
func (s *Storage) UpdateDiscount(ctx context.Context, d *discount.Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.discounts[d.ID]
	if !ok {
		return apperror.ErrNotFound
	}
	d.UsedCount = existing.UsedCount
	d.UpdatedAt = s.now().UTC()
	cp := copyDiscount(d)
	s.discounts[d.ID] = &cp
	return nil
}

func (s *Storage) DeleteDiscount(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.discounts[id]; !ok {
		return apperror.ErrNotFound
	}
	delete(s.discounts, id)
	return nil
}

func copyOrder(o *order.Order) order.Order {
	cp := *o
	cp.Items = append([]order.OrderItem(nil), o.Items...)
	cp.StatusHistory = append([]order.StatusHistory(nil), o.StatusHistory...)
	return cp
}

// CreateOrder validates and increments the discount counter, then stores the
// order, items and history, all under one write lock.
func (s *Storage) CreateOrder(ctx context.Context, o *order.Order, discountID *uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if discountID != nil {
		d, ok := s.discounts[*discountID]
		if !ok || (d.MaxUses > 0 && d.UsedCount >= d.MaxUses) {
			return discount.ErrInvalidCode
		}
		d.UsedCount++
	}

	now := s.stamp(&o.CreatedAt)
	o.UpdatedAt = now
	o.ID = s.nextID("orders")
	o.OrderNumber = order.NumberFor(now, o.ID)

	for i := range o.Items {
		o.Items[i].ID = s.nextID("order_items")
		o.Items[i].OrderID = o.ID
		o.Items[i].CreatedAt = now
	}
	for i := range o.StatusHistory {
		o.StatusHistory[i].ID = s.nextID("order_status_history")
		o.StatusHistory[i].OrderID = o.ID
		o.StatusHistory[i].CreatedAt = now
	}

	cp := copyOrder(o)
	s.orders[o.ID] = &cp
	return nil
}

func (s *Storage) GetOrderByID(ctx context.Context, id uint) (*order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (s *Storage) ListOrders(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.Order, 0)
	for _, o := range s.orders {
		if f.UserID != nil && (o.UserID == nil || *o.UserID != *f.UserID) {
			continue
		}
		if f.SessionID != nil && (o.SessionID == nil || *o.SessionID != *f.SessionID) {
			continue
		}
		if f.Status != nil && o.Status != *f.Status {
			continue
		}
		if f.Since != nil && o.CreatedAt.Before(*f.Since) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Storage) UpdateOrderStatus(ctx context.Context, id uint, from, to order.Status, h *order.StatusHistory) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	if o.Status != from {
		return nil, order.ErrStatusChanged
	}
	o.Status = to
	s.appendHistory(o, h)
	cp := copyOrder(o)
	return &cp, nil
}

func (s *Storage) UpdatePaymentStatus(ctx context.Context, id uint, from, to order.PaymentStatus, h *order.StatusHistory) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	if o.PaymentStatus != from {
		return nil, order.ErrStatusChanged
	}
	o.PaymentStatus = to
	s.appendHistory(o, h)
	cp := copyOrder(o)
	return &cp, nil
}

func (s *Storage) appendHistory(o *order.Order, h *order.StatusHistory) {
	now := s.now().UTC()
	o.UpdatedAt = now
	if h == nil {
		return
	}
	entry := *h
	entry.ID = s.nextID("order_status_history")
	entry.OrderID = o.ID
	entry.CreatedAt = now
	o.StatusHistory = append(o.StatusHistory, entry)
}
