package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/discount"
	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
)

// DiscountHandler handles discount code endpoints
type DiscountHandler struct {
	discountService *discount.Service
	orderService    *order.Service
	log             *logrus.Logger
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(discountService *discount.Service, orderService *order.Service, log *logrus.Logger) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
		orderService:    orderService,
		log:             log,
	}
}

type applyDiscountRequest struct {
	Code  string              `json:"code" binding:"required,max=50"`
	Items []order.ItemRequest `json:"items" binding:"omitempty,dive"`
}

// ApplyDiscount handles POST /discounts/apply. The code is checked and, when
// the request items or the session cart are non-empty, priced against them.
func (h *DiscountHandler) ApplyDiscount(c *gin.Context) {
	var req applyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	d, result, err := h.orderService.QuoteDiscount(c.Request.Context(), middleware.GetSessionID(c), req.Code, req.Items)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	data := gin.H{"discount": d}
	if result != nil {
		data["subtotal"] = result.Subtotal
		data["discountAmount"] = result.DiscountAmount
		data["finalAmount"] = result.FinalAmount
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount applied successfully",
		"data":    data,
	})
}

// ListDiscounts handles GET /admin/discounts
func (h *DiscountHandler) ListDiscounts(c *gin.Context) {
	discounts, err := h.discountService.ListDiscounts(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discounts retrieved successfully",
		"data":    discounts,
	})
}

// CreateDiscount handles POST /admin/discounts
func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	var req discount.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	d, err := h.discountService.CreateDiscount(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Discount created successfully",
		"data":    d,
	})
}

// UpdateDiscount handles PUT /admin/discounts/:id
func (h *DiscountHandler) UpdateDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req discount.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	d, err := h.discountService.UpdateDiscount(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount updated successfully",
		"data":    d,
	})
}

// DeleteDiscount handles DELETE /admin/discounts/:id
func (h *DiscountHandler) DeleteDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.discountService.DeleteDiscount(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Discount deleted successfully",
	})
}
