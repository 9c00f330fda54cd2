// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/cart"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	config      *config.Config
}

// NewCartHandler creates a new cart handler
func NewCartHandler(db *gorm.DB, cfg *config.Config) *CartHandler {
	return &CartHandler{
		cartService: cart.NewService(db, cfg),
		config:      cfg,
	}
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	cartResponse, err := h.cartService.GetCart(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": cartResponse,
	})
}

// AddToCart handles POST /cart/items
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req cart.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.AddToCart(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    cartResponse,
	})
}

// UpdateCartItem handles PUT /cart/items/:id
func (h *CartHandler) UpdateCartItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	itemID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req cart.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	cartResponse, err := h.cartService.UpdateCartItem(userID, itemID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    cartResponse,
	})
}

// RemoveCartItem handles DELETE /cart/items/:id
func (h *CartHandler) RemoveCartItem(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	itemID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	cartResponse, err := h.cartService.RemoveCartItem(userID, itemID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"data":    cartResponse,
	})
}
