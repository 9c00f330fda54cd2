// internal/interfaces/http/handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/order"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/interfaces/http/middleware"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/email"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/pdf"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// newOrderService wires the order service with its email and PDF adapters
func newOrderService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) *order.Service {
	return order.NewService(db, redisClient, cfg, log,
		email.NewNotifier(cfg, log),
		pdf.NewRenderer(cfg),
	)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: newOrderService(db, redisClient, cfg, log),
		config:       cfg,
	}
}

// GetOrders handles GET /orders (the authenticated user's orders)
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := h.orderService.GetUserOrders(userID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	o, err := h.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	// Non-admin users can only see their own orders
	userID, _ := middleware.GetUserIDFromContext(c)
	if o.UserID != userID && !middleware.IsAdminFromContext(c) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": o,
	})
}

// CancelOrder handles PUT /orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	o, err := h.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	if o.UserID != userID && !middleware.IsAdminFromContext(c) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.orderService.CancelOrder(c.Request.Context(), orderID, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order cancelled successfully",
	})
}

// AdminGetOrders handles GET /admin/orders
func (h *OrderHandler) AdminGetOrders(c *gin.Context) {
	var req order.OrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	resp, err := h.orderService.GetOrders(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": resp,
	})
}

// AdminGetOrder handles GET /admin/orders/:id
func (h *OrderHandler) AdminGetOrder(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	o, err := h.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": o,
	})
}

// adminStatusUpdateRequest is the PATCH body for order status updates.
// Absent fields leave the corresponding order field unchanged.
type adminStatusUpdateRequest struct {
	Status          *string `json:"status"`
	IsPaid          *bool   `json:"is_paid"`
	GenerateInvoice bool    `json:"generate_invoice"`
}

// AdminUpdateOrderStatus handles PATCH /admin/orders/:id
func (h *OrderHandler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req adminStatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	upd := &order.StatusUpdate{
		IsPaid:           req.IsPaid,
		InvoiceRequested: req.GenerateInvoice,
	}
	if req.Status != nil {
		status, err := order.ParseStatus(*req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Unknown order status: " + *req.Status,
			})
			return
		}
		upd.Status = &status
	}

	o, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, upd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order updated successfully",
		"data":    o,
	})
}

// AdminImportOrder handles POST /admin/orders/import
func (h *OrderHandler) AdminImportOrder(c *gin.Context) {
	var req order.ImportOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	o, err := h.orderService.ImportOrder(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order imported successfully",
		"data":    o,
	})
}
