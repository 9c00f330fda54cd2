// internal/domain/inventory/service.go
package inventory

import (
	"fmt"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/product"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service is the inventory ledger. It owns stock counts on product rows and
// performs all mutations as conditional writes so that two concurrent
// checkouts can never oversell the last unit.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory ledger service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Line is one (product, quantity) pair requested from the ledger
type Line struct {
	ProductID uint
	Quantity  int
}

// CheckAvailability confirms stock_amount >= quantity for every line. The
// first failing line aborts the whole check with an InsufficientStockError
// naming the product; there is no partial reservation.
func (s *Service) CheckAvailability(db *gorm.DB, lines []Line) error {
	for _, line := range lines {
		var prod product.Product
		if err := db.Select("id", "name", "stock_amount").First(&prod, line.ProductID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("product %d: %w", line.ProductID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to read stock for product %d: %w", line.ProductID, err)
		}

		if prod.StockAmount < line.Quantity {
			return &apperrors.InsufficientStockError{
				ProductID: prod.ID,
				Name:      prod.Name,
				Available: prod.StockAmount,
				Requested: line.Quantity,
			}
		}
	}
	return nil
}

// Decrement applies a conditional decrement for every line inside the caller's
// transaction. Each line is a single UPDATE guarded by stock_amount >= quantity,
// so a concurrent order that consumed the stock between check and write makes
// the update match zero rows and the whole transaction rolls back. The sales
// counter is bumped in the same statement.
func (s *Service) Decrement(tx *gorm.DB, lines []Line, referenceType string, referenceID uint) error {
	for _, line := range lines {
		result := tx.Model(&product.Product{}).
			Where("id = ? AND stock_amount >= ?", line.ProductID, line.Quantity).
			Updates(map[string]interface{}{
				"stock_amount": gorm.Expr("stock_amount - ?", line.Quantity),
				"total_sales":  gorm.Expr("total_sales + ?", line.Quantity),
			})

		if result.Error != nil {
			return fmt.Errorf("failed to decrement stock for product %d: %w", line.ProductID, result.Error)
		}

		if result.RowsAffected == 0 {
			// Stock was consumed concurrently, or the product vanished.
			var prod product.Product
			if err := tx.Select("id", "name", "stock_amount").First(&prod, line.ProductID).Error; err != nil {
				return fmt.Errorf("product %d: %w", line.ProductID, apperrors.ErrNotFound)
			}
			return &apperrors.InsufficientStockError{
				ProductID: prod.ID,
				Name:      prod.Name,
				Available: prod.StockAmount,
				Requested: line.Quantity,
			}
		}

		movement := Movement{
			ProductID:     line.ProductID,
			Direction:     DirectionOutbound,
			Quantity:      line.Quantity,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
	}
	return nil
}

// Restore returns stock to the ledger, used when a stock-committed order is
// cancelled. Sales counters are monotonic and are not decremented.
func (s *Service) Restore(tx *gorm.DB, lines []Line, referenceType string, referenceID uint) error {
	for _, line := range lines {
		result := tx.Model(&product.Product{}).
			Where("id = ?", line.ProductID).
			UpdateColumn("stock_amount", gorm.Expr("stock_amount + ?", line.Quantity))

		if result.Error != nil {
			return fmt.Errorf("failed to restore stock for product %d: %w", line.ProductID, result.Error)
		}

		movement := Movement{
			ProductID:     line.ProductID,
			Direction:     DirectionInbound,
			Quantity:      line.Quantity,
			ReferenceType: referenceType,
			ReferenceID:   referenceID,
		}
		if err := tx.Create(&movement).Error; err != nil {
			return fmt.Errorf("failed to record stock movement: %w", err)
		}
	}
	return nil
}

// Adjust sets an explicit stock level for a product, recording the delta as a
// movement. Used by the admin surface.
func (s *Service) Adjust(productID uint, newAmount int, notes string) error {
	if newAmount < 0 {
		return fmt.Errorf("%w: stock amount cannot be negative", apperrors.ErrValidation)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var prod product.Product
		if err := tx.Select("id", "stock_amount").First(&prod, productID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("product %d: %w", productID, apperrors.ErrNotFound)
			}
			return err
		}

		delta := newAmount - prod.StockAmount
		if delta == 0 {
			return nil
		}

		if err := tx.Model(&product.Product{}).
			Where("id = ?", productID).
			UpdateColumn("stock_amount", newAmount).Error; err != nil {
			return fmt.Errorf("failed to adjust stock: %w", err)
		}

		direction := DirectionInbound
		quantity := delta
		if delta < 0 {
			direction = DirectionOutbound
			quantity = -delta
		}

		movement := Movement{
			ProductID:     productID,
			Direction:     direction,
			Quantity:      quantity,
			ReferenceType: "adjustment",
			Notes:         notes,
		}
		return tx.Create(&movement).Error
	})
}

// GetMovements returns the audit trail for a product, newest first
func (s *Service) GetMovements(productID uint, limit int) ([]Movement, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var movements []Movement
	if err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve movements: %w", err)
	}
	return movements, nil
}
