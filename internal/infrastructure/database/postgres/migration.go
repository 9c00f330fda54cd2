// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/cart"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/inventory"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/order"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/payment"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/product"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/shipping"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Define all models that need migration in dependency order
	models := []interface{}{
		// User domain - Base tables
		&user.User{},
		&user.Address{},

		// Catalog
		&product.Product{},

		// Payment methods
		&payment.Method{},

		// Shipping fee table
		&shipping.DeliveryFee{},

		// Cart domain
		&cart.Cart{},
		&cart.CartItem{},

		// Order domain - Dependent tables
		&order.Order{},
		&order.OrderItem{},
		&order.Invoice{},

		// Stock movement audit trail
		&inventory.Movement{},
	}

	// Run auto-migration for each model
	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_active ON products(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)",
		"CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)",
		"CREATE INDEX IF NOT EXISTS idx_products_total_sales ON products(total_sales DESC)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_cart_product ON cart_items(cart_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_is_paid ON orders(is_paid)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Invoice indexes
		"CREATE INDEX IF NOT EXISTS idx_invoices_invoice_number ON invoices(invoice_number)",

		// Stock movement indexes
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_product ON inventory_movements(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_movements_reference ON inventory_movements(reference_type, reference_id)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",

		// Delivery fee lookup
		"CREATE INDEX IF NOT EXISTS idx_delivery_fees_country ON delivery_fees(country)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData seeds the reference data the API needs to take orders
func (m *Migration) SeedInitialData() error {
	log.Println("🌱 Seeding initial data...")

	// Create payment methods
	if err := m.seedPaymentMethods(); err != nil {
		return fmt.Errorf("failed to seed payment methods: %w", err)
	}

	// Create delivery fee table
	if err := m.seedDeliveryFees(); err != nil {
		return fmt.Errorf("failed to seed delivery fees: %w", err)
	}

	// Create default admin user
	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("✅ Initial data seeded successfully")
	return nil
}

// seedPaymentMethods creates the default payment methods
func (m *Migration) seedPaymentMethods() error {
	log.Println("💳 Seeding payment methods...")

	methods := []payment.Method{
		{
			Name:             "Cash on Delivery",
			Slug:             "cash-on-delivery",
			Description:      "Pay in cash when the order is delivered",
			IsCashOnDelivery: true,
			IsActive:         true,
		},
		{
			Name:        "bKash",
			Slug:        "bkash",
			Description: "Pay with bKash mobile banking",
			IsActive:    true,
		},
		{
			Name:        "Nagad",
			Slug:        "nagad",
			Description: "Pay with Nagad mobile banking",
			IsActive:    true,
		},
		{
			Name:        "Bank Transfer",
			Slug:        "bank-transfer",
			Description: "Direct bank transfer",
			IsActive:    true,
		},
	}

	for _, method := range methods {
		var existing payment.Method
		result := m.db.Where("slug = ?", method.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&method).Error; err != nil {
				return err
			}
			log.Printf("✅ Created payment method: %s", method.Name)
		} else {
			log.Printf("⏭️ Payment method already exists: %s", method.Name)
		}
	}

	return nil
}

// seedDeliveryFees creates the default delivery fee table. A row with an
// empty city is the country-wide fallback.
func (m *Migration) seedDeliveryFees() error {
	log.Println("🚚 Seeding delivery fees...")

	fees := []shipping.DeliveryFee{
		{Country: "BD", City: "Dhaka", Amount: 6000},
		{Country: "BD", City: "Chattogram", Amount: 10000},
		{Country: "BD", City: "", Amount: 12000},
	}

	for _, fee := range fees {
		var existing shipping.DeliveryFee
		result := m.db.Where("country = ? AND city = ?", fee.Country, fee.City).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&fee).Error; err != nil {
				return err
			}
			log.Printf("✅ Created delivery fee: %s/%s = %d", fee.Country, fee.City, fee.Amount)
		} else {
			log.Printf("⏭️ Delivery fee already exists: %s/%s", fee.Country, fee.City)
		}
	}

	return nil
}

// seedAdminUser creates the default admin account
func (m *Migration) seedAdminUser() error {
	log.Println("👤 Seeding admin user...")

	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte("admin123"), 10)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		adminUser := user.User{
			Email:     "admin@example.com",
			Password:  string(hashedPassword),
			FirstName: "Admin",
			LastName:  "User",
			IsActive:  true,
			IsAdmin:   true,
		}

		if err := m.db.Create(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}

		log.Println("✅ Created admin user: admin@example.com (password: admin123)")
	} else {
		log.Printf("⏭️ Admin user already exists with ID: %d", existing.ID)
	}

	return nil
}

// DropAllTables drops every application table. Development use only.
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Define tables in reverse dependency order
	tables := []string{
		"inventory_movements",
		"invoices",
		"order_items",
		"orders",
		"cart_items",
		"carts",
		"delivery_fees",
		"payment_methods",
		"products",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	// Get list of tables
	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}
