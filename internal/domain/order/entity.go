// internal/domain/order/entity.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status represents the fulfilment state of an order
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus is tracked independently of Status
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

type DeliveryMethod string

const (
	DeliveryPickup  DeliveryMethod = "pickup"
	DeliveryCourier DeliveryMethod = "courier"
)

type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentQR   PaymentMethod = "qr"
)

var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusPaid, PaymentStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPayment reports whether a payment status change is allowed
func CanTransitionPayment(from, to PaymentStatus) bool {
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order represents a placed order. Orders are never deleted.
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderNumber     string          `gorm:"uniqueIndex;size:50;not null" json:"orderNumber"`
	UserID          *uint           `gorm:"index" json:"userId,omitempty"`
	SessionID       *string         `gorm:"size:100;index" json:"-"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"totalAmount"`
	DiscountID      *uint           `gorm:"index" json:"discountId,omitempty"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"discountAmount"`
	Status          Status          `gorm:"type:varchar(20);not null;index" json:"status"`
	DeliveryMethod  DeliveryMethod  `gorm:"type:varchar(20);not null" json:"deliveryMethod"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null" json:"paymentStatus"`
	CustomerName    string          `gorm:"size:255;not null" json:"customerName"`
	CustomerPhone   string          `gorm:"size:32;not null" json:"customerPhone"`
	CustomerEmail   *string         `gorm:"size:255" json:"customerEmail,omitempty"`
	ShippingAddress string          `gorm:"type:text" json:"shippingAddress"`
	Notes           *string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt       time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	Items         []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	StatusHistory []StatusHistory `gorm:"foreignKey:OrderID" json:"statusHistory,omitempty"`
}

// OrderItem is an immutable price snapshot of one ordered product
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"orderId"`
	ProductID   uint            `gorm:"not null;index" json:"productId"`
	CategoryID  uint            `gorm:"not null;index" json:"categoryId"`
	ProductName string          `gorm:"size:255;not null" json:"productName"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unitPrice"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"totalPrice"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// History fields
const (
	FieldStatus        = "status"
	FieldPaymentStatus = "payment_status"
)

// StatusHistory records every status and payment status change
type StatusHistory struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"orderId"`
	Field     string    `gorm:"size:20;not null" json:"field"`
	FromValue string    `gorm:"size:20" json:"from"`
	ToValue   string    `gorm:"size:20;not null" json:"to"`
	Comment   string    `gorm:"type:text" json:"comment,omitempty"`
	CreatedBy *uint     `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName overrides the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName overrides the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// TableName overrides the table name for StatusHistory
func (StatusHistory) TableName() string {
	return "order_status_history"
}

// NumberFor formats the public order number: ORD-YYYYMMDD-NNNNN
func NumberFor(createdAt time.Time, id uint) string {
	return fmt.Sprintf("ORD-%s-%05d", createdAt.Format("20060102"), id)
}

// ItemsTotal sums the line totals
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range o.Items {
		sum = sum.Add(item.TotalPrice)
	}
	return sum
}

// VisibleTo reports whether a non-admin caller may read the order: the
// signed-in owner, or the cart session that placed it.
func (o *Order) VisibleTo(userID *uint, sessionID string) bool {
	if o.UserID != nil && userID != nil && *o.UserID == *userID {
		return true
	}
	return o.SessionID != nil && sessionID != "" && *o.SessionID == sessionID
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return CanTransition(o.Status, StatusCancelled)
}

// ListFilter narrows ListOrders. Zero values mean no constraint.
type ListFilter struct {
	UserID    *uint
	SessionID *string
	Status    *Status
	Since     *time.Time
}

// Repository persists orders
type Repository interface {
	// CreateOrder stores the order with its items and initial history in one
	// transaction and assigns ID and OrderNumber. When discountID is set the
	// discount's usage counter is incremented in the same transaction; if the
	// discount is exhausted by then nothing is written and
	// discount.ErrInvalidCode is returned.
	CreateOrder(ctx context.Context, o *Order, discountID *uint) error
	GetOrderByID(ctx context.Context, id uint) (*Order, error)
	ListOrders(ctx context.Context, f ListFilter) ([]Order, error)
	// UpdateOrderStatus moves the order from one status to another only if
	// it is still in from. It returns ErrStatusChanged otherwise.
	UpdateOrderStatus(ctx context.Context, id uint, from, to Status, h *StatusHistory) (*Order, error)
	UpdatePaymentStatus(ctx context.Context, id uint, from, to PaymentStatus, h *StatusHistory) (*Order, error)
}
