// internal/domain/discount/service.go
package discount

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/pkg/apperror"
)

// ErrInvalidCode covers unknown, inactive, expired and exhausted codes alike.
var ErrInvalidCode = apperror.New(apperror.KindBusinessRule, "INVALID_DISCOUNT", "discount code is invalid or expired")

var hundred = decimal.NewFromInt(100)

// Line is an order or cart line as seen by discount targeting
type Line struct {
	ProductID  uint
	CategoryID uint
	Total      decimal.Decimal
}

// Result is the outcome of applying a discount to a set of lines.
// Subtotal = FinalAmount + DiscountAmount always holds.
type Result struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	EligibleAmount decimal.Decimal `json:"eligibleAmount"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	FinalAmount    decimal.Decimal `json:"finalAmount"`
}

// Compute applies d to lines. Percentage discounts take value/100 of the
// eligible amount, fixed discounts take value; either way the discount never
// exceeds the eligible amount, so the final amount is never negative.
func Compute(d *Discount, lines []Line) Result {
	subtotal := decimal.Zero
	eligible := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Total)
		if d.applies(l) {
			eligible = eligible.Add(l.Total)
		}
	}

	var amount decimal.Decimal
	switch d.Type {
	case TypePercentage:
		amount = eligible.Mul(d.Value).Div(hundred).Round(2)
	default:
		amount = d.Value
	}
	if amount.GreaterThan(eligible) {
		amount = eligible
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	final := subtotal.Sub(amount)
	if final.IsNegative() {
		final = decimal.Zero
	}

	return Result{
		Subtotal:       subtotal,
		EligibleAmount: eligible,
		DiscountAmount: amount,
		FinalAmount:    final,
	}
}

func (d *Discount) applies(l Line) bool {
	switch d.TargetType {
	case TargetSpecificProducts:
		return containsID(d.TargetIDs, l.ProductID)
	case TargetSpecificCategories:
		return containsID(d.TargetIDs, l.CategoryID)
	default:
		return true
	}
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// NormalizeCode trims and upper-cases a user-entered code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Service handles discount business logic
type Service struct {
	repo Repository
	log  *logrus.Logger
	now  func() time.Time
}

// NewService creates a new discount service
func NewService(repo Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// WithClock replaces the time source, for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ApplyRequest is the body of POST /discounts/apply
type ApplyRequest struct {
	Code string `json:"code" binding:"required,max=50"`
}

// Request is the admin create/update body
type Request struct {
	Code       string          `json:"code" binding:"required,max=50"`
	Type       Type            `json:"type" binding:"required,oneof=percentage fixed"`
	Value      decimal.Decimal `json:"value" binding:"required,gt=0"`
	IsActive   *bool           `json:"isActive"`
	ValidFrom  time.Time       `json:"validFrom" binding:"required"`
	ValidUntil time.Time       `json:"validUntil" binding:"required"`
	MaxUses    int             `json:"maxUses" binding:"min=0"`
	TargetType TargetType      `json:"targetType" binding:"omitempty,oneof=all_products specific_products specific_categories"`
	TargetIDs  []uint          `json:"targetIds"`
}

// Apply looks up a code and checks it can be redeemed now
func (s *Service) Apply(ctx context.Context, code string) (*Discount, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, ErrInvalidCode
	}

	d, err := s.repo.GetDiscountByCode(ctx, code)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to load discount: %w", err)
	}

	if !d.IsRedeemable(s.now()) {
		return nil, ErrInvalidCode
	}
	return d, nil
}

// Quote applies a code to lines
func (s *Service) Quote(ctx context.Context, code string, lines []Line) (*Discount, Result, error) {
	d, err := s.Apply(ctx, code)
	if err != nil {
		return nil, Result{}, err
	}
	return d, Compute(d, lines), nil
}

// ListDiscounts returns every code, for the admin panel
func (s *Service) ListDiscounts(ctx context.Context) ([]Discount, error) {
	return s.repo.ListDiscounts(ctx)
}

// CreateDiscount creates a code
func (s *Service) CreateDiscount(ctx context.Context, req *Request) (*Discount, error) {
	d := &Discount{}
	if err := applyRequest(d, req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetDiscountByCode(ctx, d.Code); err == nil {
		return nil, apperror.Conflict("DISCOUNT_CODE_TAKEN", "discount code already exists")
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	if err := s.repo.CreateDiscount(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to create discount: %w", err)
	}
	s.log.WithFields(logrus.Fields{"discount_id": d.ID, "code": d.Code}).Info("discount created")
	return d, nil
}

// UpdateDiscount replaces a code's settings. UsedCount is preserved.
func (s *Service) UpdateDiscount(ctx context.Context, id uint, req *Request) (*Discount, error) {
	d, err := s.repo.GetDiscountByID(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NotFound("discount not found")
		}
		return nil, err
	}
	if err := applyRequest(d, req); err != nil {
		return nil, err
	}

	if other, err := s.repo.GetDiscountByCode(ctx, d.Code); err == nil && other.ID != id {
		return nil, apperror.Conflict("DISCOUNT_CODE_TAKEN", "discount code already exists")
	} else if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}

	if err := s.repo.UpdateDiscount(ctx, d); err != nil {
		return nil, fmt.Errorf("failed to update discount: %w", err)
	}
	return d, nil
}

// DeleteDiscount removes a code. Orders keep their recorded discount amount.
func (s *Service) DeleteDiscount(ctx context.Context, id uint) error {
	if err := s.repo.DeleteDiscount(ctx, id); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NotFound("discount not found")
		}
		return err
	}
	return nil
}

func applyRequest(d *Discount, req *Request) error {
	code := NormalizeCode(req.Code)
	if code == "" {
		return apperror.Validation("code is required")
	}
	if req.Type != TypePercentage && req.Type != TypeFixed {
		return apperror.Validation("type must be percentage or fixed")
	}
	if !req.Value.IsPositive() {
		return apperror.Validation("value must be positive")
	}
	if req.Type == TypePercentage && req.Value.GreaterThan(hundred) {
		return apperror.Validation("percentage cannot exceed 100")
	}
	if !req.ValidFrom.Before(req.ValidUntil) {
		return apperror.Validation("validFrom must be before validUntil")
	}
	if req.MaxUses < 0 {
		return apperror.Validation("maxUses must not be negative")
	}

	target := req.TargetType
	if target == "" {
		target = TargetAllProducts
	}
	if target != TargetAllProducts && len(req.TargetIDs) == 0 {
		return apperror.Validation("targetIds are required for a targeted discount")
	}

	d.Code = code
	d.Type = req.Type
	d.Value = req.Value.Round(2)
	d.IsActive = req.IsActive == nil || *req.IsActive
	d.ValidFrom = req.ValidFrom.UTC()
	d.ValidUntil = req.ValidUntil.UTC()
	d.MaxUses = req.MaxUses
	d.TargetType = target
	d.TargetIDs = req.TargetIDs
	if target == TargetAllProducts {
		d.TargetIDs = nil
	}
	return nil
}
