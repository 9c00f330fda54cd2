package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/inventory"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/product"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
)

func TestGenerateInvoice(t *testing.T) {
	db, svc := setupOrderTest(t, "invoice_generate")
	fx := seedCheckout(t, db)

	o, err := svc.PlaceOrder(context.Background(), fx.user.ID, &PlaceOrderRequest{
		ShippingAddressID: fx.address.ID,
		PaymentMethodID:   fx.cod.ID,
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	inv, err := svc.GenerateInvoice(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("GenerateInvoice failed: %v", err)
	}
	if !strings.HasPrefix(inv.InvoiceNumber, "INV-") {
		t.Errorf("unexpected invoice number %q", inv.InvoiceNumber)
	}

	after, err := svc.GetOrder(o.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if after.Status != StatusProcessing {
		t.Errorf("expected status PROCESSING after invoice generation, got %s", after.Status)
	}
	if after.ProcessedAt == nil {
		t.Error("expected processed_at to be set")
	}
	if !after.IsInvoiceGenerated {
		t.Error("expected is_invoice_generated true")
	}
}

func TestGenerateInvoiceIsIdempotent(t *testing.T) {
	db, svc := setupOrderTest(t, "invoice_idempotent")
	fx := seedCheckout(t, db)

	o, err := svc.PlaceOrder(context.Background(), fx.user.ID, &PlaceOrderRequest{
		ShippingAddressID: fx.address.ID,
		PaymentMethodID:   fx.cod.ID,
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	first, err := svc.GenerateInvoice(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("first GenerateInvoice failed: %v", err)
	}

	second, err := svc.GenerateInvoice(context.Background(), o.ID)
	if !errors.Is(err, apperrors.ErrAlreadyGenerated) {
		t.Fatalf("expected ErrAlreadyGenerated, got %v", err)
	}
	if second == nil || second.InvoiceNumber != first.InvoiceNumber {
		t.Errorf("expected the existing invoice back, got %+v", second)
	}

	var count int64
	db.Model(&Invoice{}).Where("order_id = ?", o.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected exactly 1 invoice row, got %d", count)
	}
}

func TestGenerateInvoiceRejectsNonPending(t *testing.T) {
	db, svc := setupOrderTest(t, "invoice_state")
	fx := seedCheckout(t, db)

	o, err := svc.PlaceOrder(context.Background(), fx.user.ID, &PlaceOrderRequest{
		ShippingAddressID: fx.address.ID,
		PaymentMethodID:   fx.cod.ID,
	})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}

	shipped := StatusShipped
	if _, err := svc.UpdateStatus(context.Background(), o.ID, &StatusUpdate{Status: &shipped}); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	_, err = svc.GenerateInvoice(context.Background(), o.ID)
	var stateErr *apperrors.StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError for shipped order, got %v", err)
	}

	// Ledger untouched by the rejected generation
	var p product.Product
	db.First(&p, fx.product.ID)
	if p.StockAmount != 8 {
		t.Errorf("expected stock 8, got %d", p.StockAmount)
	}
}

func TestGenerateInvoiceCommitsDeferredStock(t *testing.T) {
	db, svc := setupOrderTest(t, "invoice_deferred")
	fx := seedCheckout(t, db)

	// A deferred order: PENDING with stock not yet committed
	o := Order{
		UserID:            fx.user.ID,
		OrderNumber:       "ORD-TEST-00001",
		Email:             fx.user.Email,
		Status:            StatusPending,
		StockCommitted:    false,
		PaymentMethodID:   fx.cod.ID,
		TransactionNumber: "TXN-TEST",
		SubtotalAmount:    2000,
		TotalAmount:       2000,
	}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	item := OrderItem{OrderID: o.ID, ProductID: fx.product.ID, Quantity: 3, PricePaid: 1000, ProductName: fx.product.Name}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("failed to seed order item: %v", err)
	}

	if _, err := svc.GenerateInvoice(context.Background(), o.ID); err != nil {
		t.Fatalf("GenerateInvoice failed: %v", err)
	}

	var p product.Product
	db.First(&p, fx.product.ID)
	if p.StockAmount != 7 {
		t.Errorf("expected deferred stock commit to leave 7, got %d", p.StockAmount)
	}

	var after Order
	db.First(&after, o.ID)
	if !after.StockCommitted {
		t.Error("expected stock_committed true after deferred commit")
	}

	var movement inventory.Movement
	if err := db.Where("product_id = ? AND reference_type = ?", fx.product.ID, "invoice").First(&movement).Error; err != nil {
		t.Fatalf("expected an invoice-referenced movement: %v", err)
	}
	if movement.ReferenceID != o.ID || movement.Quantity != 3 {
		t.Errorf("unexpected movement: %+v", movement)
	}
}

func TestGenerateInvoiceRecreatesMissingRow(t *testing.T) {
	db, svc := setupOrderTest(t, "invoice_heal")
	fx := seedCheckout(t, db)

	// Flag set but no invoice row, as left by a crash between the state
	// flip and the invoice insert
	o := Order{
		UserID:             fx.user.ID,
		OrderNumber:        "ORD-TEST-00002",
		Email:              fx.user.Email,
		Status:             StatusProcessing,
		IsInvoiceGenerated: true,
		StockCommitted:     true,
		PaymentMethodID:    fx.cod.ID,
		TransactionNumber:  "TXN-TEST",
		SubtotalAmount:     2000,
		TotalAmount:        2000,
	}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}

	inv, err := svc.GenerateInvoice(context.Background(), o.ID)
	if !errors.Is(err, apperrors.ErrAlreadyGenerated) {
		t.Fatalf("expected ErrAlreadyGenerated, got %v", err)
	}
	if inv == nil || !strings.HasPrefix(inv.InvoiceNumber, "INV-") {
		t.Fatalf("expected a recreated invoice, got %+v", inv)
	}

	var count int64
	db.Model(&Invoice{}).Where("order_id = ?", o.ID).Count(&count)
	if count != 1 {
		t.Errorf("expected the invoice row persisted, got %d rows", count)
	}

	// Repair must not touch the ledger or the order state
	var p product.Product
	db.First(&p, fx.product.ID)
	if p.StockAmount != 10 {
		t.Errorf("expected stock untouched at 10, got %d", p.StockAmount)
	}
	var after Order
	db.First(&after, o.ID)
	if after.Status != StatusProcessing {
		t.Errorf("expected status unchanged, got %s", after.Status)
	}
}

func TestGetInvoiceNotFound(t *testing.T) {
	_, svc := setupOrderTest(t, "invoice_missing")

	if _, err := svc.GetInvoice(999); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
