// internal/interfaces/http/handlers/shipping.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/shipping"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ShippingHandler handles delivery fee administration
type ShippingHandler struct {
	shippingService *shipping.Service
	config          *config.Config
}

// NewShippingHandler creates a new shipping handler
func NewShippingHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *ShippingHandler {
	return &ShippingHandler{
		shippingService: shipping.NewService(db, redisClient, cfg),
		config:          cfg,
	}
}

// AdminListFees handles GET /admin/delivery-fees
func (h *ShippingHandler) AdminListFees(c *gin.Context) {
	fees, err := h.shippingService.ListFees()
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": fees,
	})
}

// AdminUpsertFee handles PUT /admin/delivery-fees
func (h *ShippingHandler) AdminUpsertFee(c *gin.Context) {
	var req shipping.UpsertFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	fee, err := h.shippingService.UpsertFee(&req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Delivery fee saved successfully",
		"data":    fee,
	})
}
