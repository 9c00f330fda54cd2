// internal/domain/order/importer.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/payment"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/product"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/user"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ImportItem is one pre-resolved line of a historical sale. Prices are
// explicit; no live price or stock lookup happens.
type ImportItem struct {
	ProductID     uint   `json:"product_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	PricePaid     int64  `json:"price_paid" binding:"min=0"`
	ProductName   string `json:"product_name"`
	SelectedSize  string `json:"selected_size"`
	SelectedColor string `json:"selected_color"`
}

// ImportOrderRequest represents an admin-entered historical order
type ImportOrderRequest struct {
	Email             string          `json:"email" binding:"required,email"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	PaymentMethodID   uint            `json:"payment_method_id" binding:"required"`
	TransactionNumber string          `json:"transaction_number"`
	DeliveryFee       int64           `json:"delivery_fee" binding:"min=0"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	Items             []ImportItem    `json:"items" binding:"required,min=1,dive"`
}

// ImportOrder records a sale that was fulfilled outside the system. The user
// is created if absent (idempotent on email), and the order, its items and
// its invoice are created together in one transaction with status DELIVERED,
// paid and invoice-generated. The availability check is deliberately skipped
// and the ledger is left untouched: this fulfillment already happened.
func (s *Service) ImportOrder(ctx context.Context, req *ImportOrderRequest) (*Order, error) {
	var created Order

	err := s.withWorkflowTx(ctx, func(tx *gorm.DB) error {
		u, outcome, err := s.userService.FindOrCreateByEmail(tx, req.Email, req.FirstName, req.LastName)
		if err != nil {
			return err
		}
		if outcome == user.OutcomeCreated {
			s.log.WithFields(logrus.Fields{"email": u.Email}).Info("created user for imported order")
		}

		var method payment.Method
		if err := tx.First(&method, req.PaymentMethodID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("payment method %d: %w", req.PaymentMethodID, apperrors.ErrNotFound)
			}
			return fmt.Errorf("failed to resolve payment method: %w", err)
		}

		transactionNumber := req.TransactionNumber
		if transactionNumber == "" {
			transactionNumber = payment.SynthesizeTransactionNumber()
		}

		var subtotal int64
		for _, item := range req.Items {
			subtotal += item.PricePaid * int64(item.Quantity)
		}

		now := time.Now().UTC()
		created = Order{
			UserID:             u.ID,
			Email:              u.Email,
			Status:             StatusDelivered,
			IsPaid:             true,
			IsInvoiceGenerated: true,
			StockCommitted:     false,
			PaymentMethodID:    method.ID,
			TransactionNumber:  transactionNumber,
			SubtotalAmount:     subtotal,
			DeliveryFee:        req.DeliveryFee,
			TotalAmount:        subtotal + req.DeliveryFee,
			ShippingAddress:    req.ShippingAddress,
			ProcessedAt:        &now,
			DeliveredAt:        &now,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create imported order: %w", err)
		}

		created.OrderNumber = s.generateOrderNumber(created.ID)
		if err := tx.Model(&created).Update("order_number", created.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to update order number: %w", err)
		}

		for _, line := range req.Items {
			name := line.ProductName
			sku := ""
			var prod product.Product
			if err := tx.Select("id", "name", "sku").First(&prod, line.ProductID).Error; err == nil {
				if name == "" {
					name = prod.Name
				}
				sku = prod.SKU
			} else if name == "" {
				return fmt.Errorf("product %d: %w", line.ProductID, apperrors.ErrNotFound)
			}

			item := OrderItem{
				OrderID:       created.ID,
				ProductID:     line.ProductID,
				Quantity:      line.Quantity,
				PricePaid:     line.PricePaid,
				ProductName:   name,
				ProductSKU:    sku,
				SelectedSize:  line.SelectedSize,
				SelectedColor: line.SelectedColor,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		inv := Invoice{
			OrderID:       created.ID,
			InvoiceNumber: s.generateInvoiceNumber(),
			DocumentURL:   fmt.Sprintf("/api/v1/orders/%d/invoice.pdf", created.ID),
		}
		if err := tx.Create(&inv).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Items").Preload("Invoice").First(&created, created.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load imported order: %w", err)
	}

	return &created, nil
}
