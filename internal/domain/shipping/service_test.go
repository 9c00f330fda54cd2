package shipping

import (
	"fmt"
	"testing"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupShippingTest(t *testing.T, name string) (*gorm.DB, *Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&DeliveryFee{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	cfg := &config.Config{
		Checkout: config.CheckoutConfig{DefaultDeliveryFee: 20000},
	}
	return db, NewService(db, nil, cfg)
}

func TestResolveFeeFallbackChain(t *testing.T) {
	db, svc := setupShippingTest(t, "ship_fallback")

	rows := []DeliveryFee{
		{Country: "BD", City: "Dhaka", Amount: 6000},
		{Country: "BD", City: "", Amount: 12000},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("failed to seed fee: %v", err)
		}
	}

	tests := []struct {
		name    string
		country string
		city    string
		want    int64
	}{
		{"exact city match", "BD", "Dhaka", 6000},
		{"country-wide fallback", "BD", "Sylhet", 12000},
		{"country-wide with empty city", "BD", "", 12000},
		{"platform default", "IN", "Mumbai", 20000},
		{"case and whitespace normalized", " bd ", "Dhaka", 6000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveFee(nil, tt.country, tt.city)
			if err != nil {
				t.Fatalf("ResolveFee(%q, %q) failed: %v", tt.country, tt.city, err)
			}
			if got != tt.want {
				t.Errorf("ResolveFee(%q, %q) = %d, want %d", tt.country, tt.city, got, tt.want)
			}
		})
	}
}

func TestResolveFeeReportsDatabaseFailure(t *testing.T) {
	db, svc := setupShippingTest(t, "ship_db_error")

	// A broken schema must surface as an error, not as the default fee
	if err := db.Migrator().DropTable(&DeliveryFee{}); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	if _, err := svc.ResolveFee(nil, "BD", "Dhaka"); err == nil {
		t.Fatal("expected an error when the fee lookup fails")
	}
}

func TestUpsertFee(t *testing.T) {
	db, svc := setupShippingTest(t, "ship_upsert")

	fee, err := svc.UpsertFee(&UpsertFeeRequest{Country: "bd", City: "Khulna", Amount: 9000})
	if err != nil {
		t.Fatalf("UpsertFee create failed: %v", err)
	}
	if fee.Country != "BD" {
		t.Errorf("expected normalized country BD, got %q", fee.Country)
	}

	if _, err := svc.UpsertFee(&UpsertFeeRequest{Country: "BD", City: "Khulna", Amount: 11000}); err != nil {
		t.Fatalf("UpsertFee update failed: %v", err)
	}

	var count int64
	db.Model(&DeliveryFee{}).Count(&count)
	if count != 1 {
		t.Errorf("expected a single row after upsert, got %d", count)
	}

	got, err := svc.ResolveFee(nil, "BD", "Khulna")
	if err != nil {
		t.Fatalf("ResolveFee failed: %v", err)
	}
	if got != 11000 {
		t.Errorf("expected updated amount 11000, got %d", got)
	}
}
