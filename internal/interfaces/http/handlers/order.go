// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/optommarket/backend/internal/domain/order"
	"github.com/optommarket/backend/internal/interfaces/http/middleware"
	"github.com/optommarket/backend/internal/pkg/pdf"
)

// OrderHandler handles checkout and order endpoints
type OrderHandler struct {
	orderService *order.Service
	invoices     *pdf.Service
	log          *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *order.Service, invoices *pdf.Service, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		invoices:     invoices,
		log:          log,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.CreateOrder(c.Request.Context(), middleware.Actor(c), &req)
	if err != nil {
		if errors.Is(err, order.ErrMinimumOrderNotMet) {
			status, body := errorBody(err)
			body["minimumAmount"] = h.orderService.MinimumOrderAmount()
			c.JSON(status, body)
			return
		}
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    o,
	})
}

// ListOrders handles GET /orders: the caller's own orders, by account when
// signed in and by cart session otherwise
func (h *OrderHandler) ListOrders(c *gin.Context) {
	f, ok := statusFilter(c)
	if !ok {
		return
	}
	if uid := middleware.UserIDPtr(c); uid != nil {
		f.UserID = uid
	} else {
		session := middleware.GetSessionID(c)
		f.SessionID = &session
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, ok := h.visibleOrder(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// GetInvoice handles GET /orders/:id/invoice. format=html returns the
// rendered page instead of the PDF.
func (h *OrderHandler) GetInvoice(c *gin.Context) {
	o, ok := h.visibleOrder(c)
	if !ok {
		return
	}
	lang := middleware.Language(c)

	if c.Query("format") == "html" {
		page, err := h.invoices.RenderHTML(o, lang)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
		return
	}

	doc, err := h.invoices.GenerateInvoice(o, lang)
	if err != nil {
		respondError(c, h.log, fmt.Errorf("failed to generate invoice for order %d: %w", o.ID, err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, o.OrderNumber))
	c.Data(http.StatusOK, "application/pdf", doc)
}

// visibleOrder loads the order named by :id. Callers that neither own it
// nor placed it from this cart session get a 404.
func (h *OrderHandler) visibleOrder(c *gin.Context) (*order.Order, bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return nil, false
	}
	if !middleware.IsAdminFromContext(c) && !o.VisibleTo(middleware.UserIDPtr(c), middleware.GetSessionID(c)) {
		respondError(c, h.log, order.ErrOrderNotFound)
		return nil, false
	}
	return o, true
}

// AdminListOrders handles GET /admin/orders
func (h *OrderHandler) AdminListOrders(c *gin.Context) {
	f, ok := statusFilter(c)
	if !ok {
		return
	}
	if raw := c.Query("userId"); raw != "" {
		uid, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid userId",
				"code":  "VALIDATION_ERROR",
			})
			return
		}
		id := uint(uid)
		f.UserID = &id
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// AdminGetOrder handles GET /admin/orders/:id
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	o, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// UpdateOrderStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), id, req.Status, req.Comment, middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    o,
	})
}

// UpdatePaymentStatus handles PUT /admin/orders/:id/payment-status
func (h *OrderHandler) UpdatePaymentStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req order.UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	o, err := h.orderService.UpdatePaymentStatus(c.Request.Context(), id, req.PaymentStatus, req.Comment, middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment status updated successfully",
		"data":    o,
	})
}

func statusFilter(c *gin.Context) (order.ListFilter, bool) {
	var f order.ListFilter
	raw := c.Query("status")
	if raw == "" {
		return f, true
	}

	status := order.Status(raw)
	switch status {
	case order.StatusPending, order.StatusConfirmed, order.StatusShipped, order.StatusDelivered, order.StatusCancelled:
		f.Status = &status
		return f, true
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error": "Invalid status filter",
		"code":  "VALIDATION_ERROR",
	})
	return f, false
}
