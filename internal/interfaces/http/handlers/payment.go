// internal/interfaces/http/handlers/payment.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/payment"
	"gorm.io/gorm"
)

// PaymentHandler handles payment method endpoints
type PaymentHandler struct {
	paymentService *payment.Service
	config         *config.Config
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(db *gorm.DB, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{
		paymentService: payment.NewService(db, cfg),
		config:         cfg,
	}
}

// GetPaymentMethods handles GET /payment-methods
func (h *PaymentHandler) GetPaymentMethods(c *gin.Context) {
	methods, err := h.paymentService.ListMethods()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": methods,
	})
}
