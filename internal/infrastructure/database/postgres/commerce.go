// internal/infrastructure/database/postgres/commerce.go
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/pkg/apperror"
)

func (s *Storage) GetCartItems(ctx context.Context, sessionID string) ([]cart.CartItem, error) {
	items := make([]cart.CartItem, 0)
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id ASC").Find(&items).Error
	return items, err
}

// AddToCart is a single INSERT ... ON CONFLICT DO UPDATE so concurrent adds
// of the same product never produce two rows or lose an increment. The
// update only fires while the merged quantity stays within cart.MaxQuantity.
func (s *Storage) AddToCart(ctx context.Context, sessionID string, productID uint, quantity int) (*cart.CartItem, error) {
	if quantity > cart.MaxQuantity {
		return nil, cart.ErrQuantityLimit
	}

	db := s.db.WithContext(ctx)
	item := cart.CartItem{SessionID: sessionID, ProductID: productID, Quantity: quantity}

	res := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			gorm.Expr("cart_items.quantity + excluded.quantity <= ?", cart.MaxQuantity),
		}},
	}).Create(&item)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, cart.ErrQuantityLimit
	}

	var stored cart.CartItem
	if err := db.Where("session_id = ? AND product_id = ?", sessionID, productID).First(&stored).Error; err != nil {
		return nil, notFound(err)
	}
	return &stored, nil
}

func (s *Storage) SetCartItemQuantity(ctx context.Context, sessionID string, id uint, quantity int) (*cart.CartItem, error) {
	db := s.db.WithContext(ctx)
	res := db.Model(&cart.CartItem{}).
		Where("id = ? AND session_id = ?", id, sessionID).
		Update("quantity", quantity)
	if err := affected(res); err != nil {
		return nil, err
	}

	var item cart.CartItem
	if err := db.First(&item, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &item, nil
}

func (s *Storage) RemoveFromCart(ctx context.Context, sessionID string, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND session_id = ?", id, sessionID).Delete(&cart.CartItem{})
	return res.RowsAffected > 0, res.Error
}

func (s *Storage) ClearCart(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&cart.CartItem{}).Error
}

func (s *Storage) GetDiscountByCode(ctx context.Context, code string) (*discount.Discount, error) {
	var d discount.Discount
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&d).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *Storage) GetDiscountByID(ctx context.Context, id uint) (*discount.Discount, error) {
	var d discount.Discount
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

func (s *Storage) ListDiscounts(ctx context.Context) ([]discount.Discount, error) {
	discounts := make([]discount.Discount, 0)
	err := s.db.WithContext(ctx).Order("id DESC").Find(&discounts).Error
	return discounts, err
}

func (s *Storage) CreateDiscount(ctx context.Context, d *discount.Discount) error {
	return translate(s.db.WithContext(ctx).Create(d).Error, "DISCOUNT_CODE_TAKEN", "discount code already exists")
}

// UpdateDiscount never writes used_count; it only moves inside CreateOrder
func (s *Storage) UpdateDiscount(ctx context.Context, d *discount.Discount) error {
	db := s.db.WithContext(ctx)
	res := db.Model(d).Select("*").Omit("created_at", "used_count").Updates(d)
	if res.Error != nil {
		return translate(res.Error, "DISCOUNT_CODE_TAKEN", "discount code already exists")
	}
	if err := affected(res); err != nil {
		return err
	}
	return db.Model(&discount.Discount{}).Where("id = ?", d.ID).Pluck("used_count", &d.UsedCount).Error
}

func (s *Storage) DeleteDiscount(ctx context.Context, id uint) error {
	return affected(s.db.WithContext(ctx).Delete(&discount.Discount{}, id))
}

// CreateOrder claims a discount use, inserts the order with its items and
// history, then stamps the order number, all in one transaction
func (s *Storage) CreateOrder(ctx context.Context, o *order.Order, discountID *uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if discountID != nil {
			res := tx.Model(&discount.Discount{}).
				Where("id = ? AND (max_uses = 0 OR used_count < max_uses)", *discountID).
				UpdateColumn("used_count", gorm.Expr("used_count + 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected != 1 {
				return discount.ErrInvalidCode
			}
		}

		o.OrderNumber = "PENDING-" + uuid.NewString()
		if err := tx.Create(o).Error; err != nil {
			return err
		}

		o.OrderNumber = order.NumberFor(o.CreatedAt, o.ID)
		return tx.Model(&order.Order{}).Where("id = ?", o.ID).
			UpdateColumn("order_number", o.OrderNumber).Error
	})
}

func preloadOrder(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") })
}

func (s *Storage) GetOrderByID(ctx context.Context, id uint) (*order.Order, error) {
	var o order.Order
	if err := preloadOrder(s.db.WithContext(ctx)).First(&o, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Storage) ListOrders(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	q := s.db.WithContext(ctx).Model(&order.Order{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.SessionID != nil {
		q = q.Where("session_id = ?", *f.SessionID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.Since != nil {
		q = q.Where("created_at >= ?", *f.Since)
	}

	orders := make([]order.Order, 0)
	err := preloadOrder(q).Order("id DESC").Find(&orders).Error
	return orders, err
}

func (s *Storage) UpdateOrderStatus(ctx context.Context, id uint, from, to order.Status, h *order.StatusHistory) (*order.Order, error) {
	return s.compareAndSet(ctx, id, "status", string(from), string(to), h)
}

func (s *Storage) UpdatePaymentStatus(ctx context.Context, id uint, from, to order.PaymentStatus, h *order.StatusHistory) (*order.Order, error) {
	return s.compareAndSet(ctx, id, "payment_status", string(from), string(to), h)
}

// compareAndSet updates column only while it still holds from
func (s *Storage) compareAndSet(ctx context.Context, id uint, column, from, to string, h *order.StatusHistory) (*order.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&order.Order{}).
			Where("id = ? AND "+column+" = ?", id, from).
			Updates(map[string]interface{}{column: to, "updated_at": time.Now().UTC()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&order.Order{}).Where("id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return apperror.ErrNotFound
			}
			return order.ErrStatusChanged
		}

		if h == nil {
			return nil
		}
		entry := *h
		entry.ID = 0
		entry.OrderID = id
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return s.GetOrderByID(ctx, id)
}
