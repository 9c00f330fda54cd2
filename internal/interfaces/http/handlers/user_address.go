// internal/interfaces/http/handlers/user_address.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/user"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// AddressHandler handles user address book endpoints
type AddressHandler struct {
	addressService *user.AddressService
	config         *config.Config
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(db *gorm.DB, cfg *config.Config) *AddressHandler {
	return &AddressHandler{
		addressService: user.NewAddressService(db, cfg),
		config:         cfg,
	}
}

// GetAddresses handles GET /users/addresses
func (h *AddressHandler) GetAddresses(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	addresses, err := h.addressService.GetUserAddresses(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": addresses,
	})
}

// CreateAddress handles POST /users/addresses
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req user.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	address, err := h.addressService.CreateAddress(userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Address created successfully",
		"data":    address,
	})
}

// UpdateAddress handles PUT /users/addresses/:id
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	addressID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	var req user.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	address, err := h.addressService.UpdateAddress(userID, addressID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address updated successfully",
		"data":    address,
	})
}

// DeleteAddress handles DELETE /users/addresses/:id
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	addressID, err := parseIDParam(c, "id")
	if err != nil {
		return
	}

	if err := h.addressService.DeleteAddress(userID, addressID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Address deleted successfully",
	})
}

// parseIDParam parses a uint path parameter, writing a 400 response on failure
func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid " + name + " parameter",
		})
		return 0, err
	}
	return uint(id), nil
}
