// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/cart"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints. Every route runs behind CartSession.
type CartHandler struct {
	cartService *cart.Service
	log         *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, log *logrus.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		log:         log,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	cartResponse, err := h.cartService.GetCart(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    cartResponse,
	})
}

// AddToCart handles POST /cart
func (h *CartHandler) AddToCart(c *gin.Context) {
	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.cartService.AddToCart(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    item,
	})
}

// UpdateCartItem handles PUT /cart/:id. A quantity of zero or less removes the row.
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := h.cartService.UpdateCartItem(c.Request.Context(), middleware.GetSessionID(c), id, *req.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	if item == nil {
		c.JSON(http.StatusOK, gin.H{
			"message": "Item removed from cart successfully",
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    item,
	})
}

// RemoveFromCart handles DELETE /cart/:id
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	removed, err := h.cartService.RemoveFromCart(c.Request.Context(), middleware.GetSessionID(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    gin.H{"removed": removed},
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.ClearCart(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
	})
}
