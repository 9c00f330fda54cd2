// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/order"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/shipping"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/interfaces/http/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CheckoutHandler handles the order placement endpoint
type CheckoutHandler struct {
	orderService    *order.Service
	shippingService *shipping.Service
	config          *config.Config
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		orderService:    newOrderService(db, redisClient, cfg, log),
		shippingService: shipping.NewService(db, redisClient, cfg),
		config:          cfg,
	}
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Authentication required",
		})
		return
	}

	var req order.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	placed, err := h.orderService.PlaceOrder(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order placed successfully",
		"data":    placed,
	})
}

// QuoteDeliveryFee handles GET /checkout/delivery-fee
func (h *CheckoutHandler) QuoteDeliveryFee(c *gin.Context) {
	country := c.DefaultQuery("country", "BD")
	city := c.Query("city")

	amount, err := h.shippingService.ResolveFee(nil, country, city)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"country": country,
			"city":    city,
			"amount":  amount,
		},
	})
}
