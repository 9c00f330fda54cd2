// internal/domain/order/invoice.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/inventory"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GenerateInvoice produces the order's invoice exactly once. If the invoice
// already exists the call is an idempotent no-op returning the existing row
// together with ErrAlreadyGenerated. Invoice generation is only permitted
// while the order is PENDING and force-transitions it to PROCESSING in the
// same atomic update. Orders whose stock was not committed at creation time
// (deferred/manual flows) commit it here.
func (s *Service) GenerateInvoice(ctx context.Context, orderID uint) (*Invoice, error) {
	var o Order
	if err := s.db.Preload("Items").First(&o, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order %d: %w", orderID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}

	if o.IsInvoiceGenerated {
		var inv Invoice
		err := s.db.Where("order_id = ?", orderID).First(&inv).Error
		if err == nil {
			return &inv, apperrors.ErrAlreadyGenerated
		}
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to retrieve invoice: %w", err)
		}

		// A crash between the state flip and the invoice insert leaves the
		// flag set with no row. Recreate the missing row here; the unique
		// index on order_id resolves a concurrent repair by re-fetch.
		inv = Invoice{
			OrderID:       orderID,
			InvoiceNumber: s.generateInvoiceNumber(),
			DocumentURL:   fmt.Sprintf("/api/v1/orders/%d/invoice.pdf", orderID),
		}
		if err := s.db.Create(&inv).Error; err != nil {
			var existing Invoice
			if ferr := s.db.Where("order_id = ?", orderID).First(&existing).Error; ferr == nil {
				return &existing, apperrors.ErrAlreadyGenerated
			}
			return nil, fmt.Errorf("failed to persist invoice: %w", err)
		}
		return &inv, apperrors.ErrAlreadyGenerated
	}

	if o.Status != StatusPending {
		return nil, &apperrors.StateError{Current: o.Status.String(), Attempted: "generate invoice"}
	}

	err := s.withWorkflowTx(ctx, func(tx *gorm.DB) error {
		// Conditional flip: a concurrent generation or status change since
		// the read above makes this match zero rows.
		now := time.Now().UTC()
		result := tx.Model(&Order{}).
			Where("id = ? AND status = ? AND is_invoice_generated = ?", orderID, StatusPending, false).
			Updates(map[string]interface{}{
				"is_invoice_generated": true,
				"status":               StatusProcessing,
				"processed_at":         now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update order: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			var current Order
			if err := tx.First(&current, orderID).Error; err != nil {
				return fmt.Errorf("order %d: %w", orderID, apperrors.ErrNotFound)
			}
			if current.IsInvoiceGenerated {
				return apperrors.ErrAlreadyGenerated
			}
			return &apperrors.StateError{Current: current.Status.String(), Attempted: "generate invoice"}
		}

		if !o.StockCommitted {
			lines := make([]inventory.Line, len(o.Items))
			for i, item := range o.Items {
				lines[i] = inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
			}
			if err := s.ledger.Decrement(tx, lines, "invoice", orderID); err != nil {
				return err
			}
			if err := tx.Model(&Order{}).Where("id = ?", orderID).
				UpdateColumn("stock_committed", true).Error; err != nil {
				return fmt.Errorf("failed to mark stock committed: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// The invoice row is persisted after the state transition committed;
	// numbering never reuses a suffix so a crash between the two leaves a
	// regenerable gap, not a duplicate.
	inv := Invoice{
		OrderID:       orderID,
		InvoiceNumber: s.generateInvoiceNumber(),
		DocumentURL:   fmt.Sprintf("/api/v1/orders/%d/invoice.pdf", orderID),
	}
	if err := s.db.Create(&inv).Error; err != nil {
		return nil, fmt.Errorf("failed to persist invoice: %w", err)
	}

	// Rendering and emailing are retryable side effects; their failure must
	// not un-create the invoice.
	go s.renderAndSendInvoice(o, inv)

	return &inv, nil
}

// GetInvoice returns an order's invoice
func (s *Service) GetInvoice(orderID uint) (*Invoice, error) {
	var inv Invoice
	if err := s.db.Where("order_id = ?", orderID).First(&inv).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invoice for order %d: %w", orderID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve invoice: %w", err)
	}
	return &inv, nil
}

// RenderInvoiceDocument renders the invoice's printable document on demand
func (s *Service) RenderInvoiceDocument(orderID uint) (*Invoice, []byte, error) {
	inv, err := s.GetInvoice(orderID)
	if err != nil {
		return nil, nil, err
	}
	if s.renderer == nil {
		return nil, nil, fmt.Errorf("document rendering is not configured")
	}

	o, err := s.GetOrder(orderID)
	if err != nil {
		return nil, nil, err
	}

	document, err := s.renderer.RenderInvoice(o, inv)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render invoice document: %w", err)
	}
	return inv, document, nil
}

func (s *Service) generateInvoiceNumber() string {
	// Format: INV-YYYYMMDD-XXXXXXXX
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("%s-%s-%s", s.config.Checkout.InvoicePrefix, time.Now().Format("20060102"), suffix)
}

func (s *Service) renderAndSendInvoice(o Order, inv Invoice) {
	if s.renderer == nil || s.notifier == nil {
		return
	}

	fields := logrus.Fields{
		"order_id":       o.ID,
		"invoice_number": inv.InvoiceNumber,
	}

	document, err := s.renderer.RenderInvoice(&o, &inv)
	if err != nil {
		s.log.WithFields(fields).WithError(err).Warn("failed to render invoice document")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.notifier.SendInvoiceEmail(ctx, &o, &inv, document); err != nil {
		s.log.WithFields(fields).WithError(err).Warn("failed to email invoice")
	}
}
