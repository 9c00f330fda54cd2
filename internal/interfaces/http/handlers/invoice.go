// internal/interfaces/http/handlers/invoice.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/order"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/interfaces/http/middleware"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// InvoiceHandler handles invoice endpoints
type InvoiceHandler struct {
	orderService *order.Service
	config       *config.Config
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		orderService: newOrderService(db, redisClient, cfg, log),
		config:       cfg,
	}
}

// GenerateInvoice handles POST /admin/orders/:id/invoice. Generation is
// idempotent; repeating the request returns the existing invoice.
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	inv, err := h.orderService.GenerateInvoice(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, apperrors.ErrAlreadyGenerated) {
			c.JSON(http.StatusOK, gin.H{
				"message": "Invoice already generated",
				"data":    inv,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invoice generated successfully",
		"data":    inv,
	})
}

// GetInvoice handles GET /orders/:id/invoice
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if !h.authorizeOrderAccess(c, orderID) {
		return
	}

	inv, err := h.orderService.GetInvoice(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": inv,
	})
}

// DownloadInvoice handles GET /orders/:id/invoice.pdf
func (h *InvoiceHandler) DownloadInvoice(c *gin.Context) {
	orderID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if !h.authorizeOrderAccess(c, orderID) {
		return
	}

	inv, document, err := h.orderService.RenderInvoiceDocument(orderID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.pdf\"", inv.InvoiceNumber))
	c.Data(http.StatusOK, "application/pdf", document)
}

// authorizeOrderAccess ensures the caller owns the order or is an admin
func (h *InvoiceHandler) authorizeOrderAccess(c *gin.Context, orderID uint) bool {
	if middleware.IsAdminFromContext(c) {
		return true
	}

	o, err := h.orderService.GetOrder(orderID)
	if err != nil {
		respondError(c, err)
		return false
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	if o.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
		return false
	}

	return true
}
