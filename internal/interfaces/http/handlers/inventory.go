// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/inventory"
	"gorm.io/gorm"
)

// InventoryHandler handles stock administration endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	config           *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventory.NewService(db, cfg),
		config:           cfg,
	}
}

// adjustStockRequest is the body for manual stock corrections
type adjustStockRequest struct {
	StockAmount int    `json:"stock_amount" binding:"min=0"`
	Notes       string `json:"notes"`
}

// AdminAdjustStock handles PUT /admin/products/:id/stock
func (h *InventoryHandler) AdminAdjustStock(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	if err := h.inventoryService.Adjust(productID, req.StockAmount, req.Notes); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock adjusted successfully",
	})
}

// AdminGetMovements handles GET /admin/products/:id/movements
func (h *InventoryHandler) AdminGetMovements(c *gin.Context) {
	productID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	movements, err := h.inventoryService.GetMovements(productID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": movements,
	})
}
