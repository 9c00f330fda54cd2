package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/inventory"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/product"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/user"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
)

func TestImportOrder(t *testing.T) {
	db, svc := setupOrderTest(t, "import_basic")
	fx := seedCheckout(t, db)

	o, err := svc.ImportOrder(context.Background(), &ImportOrderRequest{
		Email:           "walkin@example.com",
		FirstName:       "Karim",
		PaymentMethodID: fx.cod.ID,
		DeliveryFee:     5000,
		ShippingAddress: ShippingAddress{Street: "4 Old Market", City: "Dhaka", Country: "BD"},
		Items: []ImportItem{
			{ProductID: fx.product.ID, Quantity: 2, PricePaid: 900},
		},
	})
	if err != nil {
		t.Fatalf("ImportOrder failed: %v", err)
	}

	if o.Status != StatusDelivered {
		t.Errorf("expected status DELIVERED, got %s", o.Status)
	}
	if !o.IsPaid || !o.IsInvoiceGenerated {
		t.Errorf("expected paid and invoiced, got paid=%v invoiced=%v", o.IsPaid, o.IsInvoiceGenerated)
	}
	if o.StockCommitted {
		t.Error("imported orders must never commit stock")
	}
	if o.SubtotalAmount != 1800 || o.TotalAmount != 6800 {
		t.Errorf("expected subtotal 1800 total 6800, got %d %d", o.SubtotalAmount, o.TotalAmount)
	}
	if o.ProcessedAt == nil || o.DeliveredAt == nil {
		t.Error("expected processed_at and delivered_at set")
	}
	if !strings.HasPrefix(o.TransactionNumber, "TXN-") {
		t.Errorf("expected synthesized transaction number, got %q", o.TransactionNumber)
	}
	if o.Invoice == nil {
		t.Fatal("expected invoice created in the same transaction")
	}
	if !strings.HasPrefix(o.Invoice.InvoiceNumber, "INV-") {
		t.Errorf("unexpected invoice number %q", o.Invoice.InvoiceNumber)
	}
	if len(o.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(o.Items))
	}
	// Name and SKU backfilled from the product row, price is the given one
	if o.Items[0].ProductName != fx.product.Name || o.Items[0].ProductSKU != fx.product.SKU {
		t.Errorf("expected product snapshot backfill, got %+v", o.Items[0])
	}
	if o.Items[0].PricePaid != 900 {
		t.Errorf("expected explicit price 900, got %d", o.Items[0].PricePaid)
	}

	var u user.User
	if err := db.Where("email = ?", "walkin@example.com").First(&u).Error; err != nil {
		t.Fatalf("expected user created: %v", err)
	}
	if u.FirstName != "Karim" {
		t.Errorf("expected first name Karim, got %q", u.FirstName)
	}

	// The ledger is untouched for historical sales
	var p product.Product
	db.First(&p, fx.product.ID)
	if p.StockAmount != 10 {
		t.Errorf("expected stock untouched at 10, got %d", p.StockAmount)
	}
	var movements int64
	db.Model(&inventory.Movement{}).Count(&movements)
	if movements != 0 {
		t.Errorf("expected no movements, got %d", movements)
	}
}

func TestImportOrderReusesExistingUser(t *testing.T) {
	db, svc := setupOrderTest(t, "import_existing_user")
	fx := seedCheckout(t, db)

	o, err := svc.ImportOrder(context.Background(), &ImportOrderRequest{
		Email:           fx.user.Email,
		FirstName:       "Different",
		PaymentMethodID: fx.cod.ID,
		Items: []ImportItem{
			{ProductID: fx.product.ID, Quantity: 1, PricePaid: 1000},
		},
	})
	if err != nil {
		t.Fatalf("ImportOrder failed: %v", err)
	}

	if o.UserID != fx.user.ID {
		t.Errorf("expected existing user %d, got %d", fx.user.ID, o.UserID)
	}

	var count int64
	db.Model(&user.User{}).Where("email = ?", fx.user.Email).Count(&count)
	if count != 1 {
		t.Errorf("expected a single user row, got %d", count)
	}
}

func TestImportOrderUnknownProduct(t *testing.T) {
	db, svc := setupOrderTest(t, "import_unknown_product")
	fx := seedCheckout(t, db)

	// No product row and no name to snapshot: rejected
	_, err := svc.ImportOrder(context.Background(), &ImportOrderRequest{
		Email:           "walkin@example.com",
		PaymentMethodID: fx.cod.ID,
		Items: []ImportItem{
			{ProductID: 999, Quantity: 1, PricePaid: 500},
		},
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	var orders int64
	db.Model(&Order{}).Count(&orders)
	if orders != 0 {
		t.Errorf("expected rollback to leave no orders, got %d", orders)
	}

	// With an explicit name the missing product row is acceptable
	o, err := svc.ImportOrder(context.Background(), &ImportOrderRequest{
		Email:           "walkin@example.com",
		PaymentMethodID: fx.cod.ID,
		Items: []ImportItem{
			{ProductID: 999, Quantity: 1, PricePaid: 500, ProductName: "Discontinued Jacket"},
		},
	})
	if err != nil {
		t.Fatalf("ImportOrder with name snapshot failed: %v", err)
	}
	if o.Items[0].ProductName != "Discontinued Jacket" || o.Items[0].ProductSKU != "" {
		t.Errorf("unexpected item snapshot: %+v", o.Items[0])
	}
}

func TestImportOrderPreservesSuppliedTransactionNumber(t *testing.T) {
	db, svc := setupOrderTest(t, "import_txn")
	fx := seedCheckout(t, db)

	o, err := svc.ImportOrder(context.Background(), &ImportOrderRequest{
		Email:             "walkin@example.com",
		PaymentMethodID:   fx.bkash.ID,
		TransactionNumber: "BK-HIST-001",
		Items: []ImportItem{
			{ProductID: fx.product.ID, Quantity: 1, PricePaid: 1000},
		},
	})
	if err != nil {
		t.Fatalf("ImportOrder failed: %v", err)
	}
	if o.TransactionNumber != "BK-HIST-001" {
		t.Errorf("expected supplied transaction number, got %q", o.TransactionNumber)
	}
}
