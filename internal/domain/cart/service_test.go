package cart

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/product"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCartTest(t *testing.T, name string) (*gorm.DB, *Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&product.Product{}, &Cart{}, &CartItem{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		Checkout: config.CheckoutConfig{
			DefaultDeliveryFee: 20000,
			TransactionTimeout: 10 * time.Second,
		},
	}

	return db, NewService(db, cfg)
}

func seedProduct(t *testing.T, db *gorm.DB, sku string, price int64, stock int) *product.Product {
	t.Helper()

	p := product.Product{
		SKU:         sku,
		Name:        "Product " + sku,
		Slug:        "product-" + sku,
		Price:       price,
		StockAmount: stock,
		IsActive:    true,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return &p
}

func TestMergeCombinesDuplicateLines(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
		{ProductID: 1, Quantity: 3},
	}

	merged := Merge(items)

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(merged))
	}
	if merged[0].ProductID != 1 || merged[0].Quantity != 5 {
		t.Errorf("expected product 1 with quantity 5, got product %d quantity %d", merged[0].ProductID, merged[0].Quantity)
	}
	if merged[1].ProductID != 2 || merged[1].Quantity != 1 {
		t.Errorf("expected product 2 with quantity 1, got product %d quantity %d", merged[1].ProductID, merged[1].Quantity)
	}
}

func TestMergeKeepsDistinctVariantsApart(t *testing.T) {
	items := []CartItem{
		{ProductID: 1, Quantity: 1, SelectedSize: "M"},
		{ProductID: 1, Quantity: 1, SelectedSize: "L"},
		{ProductID: 1, Quantity: 2, SelectedSize: "M"},
	}

	merged := Merge(items)

	if len(merged) != 2 {
		t.Fatalf("expected 2 merged lines, got %d", len(merged))
	}
	if merged[0].SelectedSize != "M" || merged[0].Quantity != 3 {
		t.Errorf("expected size M quantity 3, got size %s quantity %d", merged[0].SelectedSize, merged[0].Quantity)
	}
	if merged[1].SelectedSize != "L" || merged[1].Quantity != 1 {
		t.Errorf("expected size L quantity 1, got size %s quantity %d", merged[1].SelectedSize, merged[1].Quantity)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	if merged := Merge(nil); len(merged) != 0 {
		t.Fatalf("expected no merged lines, got %d", len(merged))
	}
}

func TestAddToCartAllowsDuplicateLines(t *testing.T) {
	db, svc := setupCartTest(t, "cart_add_dup")
	p := seedProduct(t, db, "TS-001", 1000, 10)

	for i := 0; i < 2; i++ {
		if _, err := svc.AddToCart(7, &AddToCartRequest{ProductID: p.ID, Quantity: 2, SelectedSize: "M"}); err != nil {
			t.Fatalf("AddToCart failed: %v", err)
		}
	}

	resp, err := svc.GetCart(7)
	if err != nil {
		t.Fatalf("GetCart failed: %v", err)
	}
	if len(resp.Cart.Items) != 2 {
		t.Fatalf("expected 2 cart lines, got %d", len(resp.Cart.Items))
	}
	if resp.Subtotal != 4000 {
		t.Errorf("expected subtotal 4000, got %d", resp.Subtotal)
	}
}

func TestAddToCartRejectsInsufficientStock(t *testing.T) {
	db, svc := setupCartTest(t, "cart_add_stock")
	p := seedProduct(t, db, "TS-002", 1000, 1)

	_, err := svc.AddToCart(7, &AddToCartRequest{ProductID: p.ID, Quantity: 3})

	var stockErr *apperrors.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 1 || stockErr.Requested != 3 {
		t.Errorf("expected available 1 requested 3, got available %d requested %d", stockErr.Available, stockErr.Requested)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	_, svc := setupCartTest(t, "cart_add_missing")

	_, err := svc.AddToCart(7, &AddToCartRequest{ProductID: 999, Quantity: 1})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateCartItemZeroRemovesLine(t *testing.T) {
	db, svc := setupCartTest(t, "cart_update_zero")
	p := seedProduct(t, db, "TS-003", 500, 10)

	resp, err := svc.AddToCart(7, &AddToCartRequest{ProductID: p.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}
	itemID := resp.Cart.Items[0].ID

	resp, err = svc.UpdateCartItem(7, itemID, &UpdateCartItemRequest{Quantity: 0})
	if err != nil {
		t.Fatalf("UpdateCartItem failed: %v", err)
	}
	if len(resp.Cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(resp.Cart.Items))
	}
}

func TestRemoveCartItemNotOwned(t *testing.T) {
	db, svc := setupCartTest(t, "cart_remove_foreign")
	p := seedProduct(t, db, "TS-004", 500, 10)

	resp, err := svc.AddToCart(7, &AddToCartRequest{ProductID: p.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("AddToCart failed: %v", err)
	}

	// A different user must not be able to delete the line
	_, err = svc.RemoveCartItem(8, resp.Cart.Items[0].ID)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
