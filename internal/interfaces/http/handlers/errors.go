// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
)

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	var stockErr *apperrors.InsufficientStockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Insufficient stock",
			"product":   stockErr.Name,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	var stateErr *apperrors.StateError
	if errors.As(err, &stateErr) {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Invalid status transition",
			"current":   stateErr.Current,
			"attempted": stateErr.Attempted,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Resource not found",
		})
	case errors.Is(err, apperrors.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Cart is empty",
		})
	case errors.Is(err, apperrors.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid shipping address",
		})
	case errors.Is(err, apperrors.ErrMissingTransactionProof):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Transaction number is required for this payment method",
		})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, apperrors.ErrConcurrencyConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Operation aborted, please retry",
			"retryable": true,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
