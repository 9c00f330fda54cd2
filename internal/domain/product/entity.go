// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents the product entity
type Product struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	SKU         string `gorm:"uniqueIndex;not null;size:100" json:"sku"`
	Name        string `gorm:"not null;size:255" json:"name"`
	Slug        string `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"` // Price in cents

	// StockAmount must never go negative; the inventory ledger enforces this
	// with conditional decrements. TotalSales only ever increases.
	StockAmount int `gorm:"not null;default:0" json:"stock_amount"`
	TotalSales  int `gorm:"not null;default:0" json:"total_sales"`

	// Variant selectors offered for this product, comma separated
	Sizes  string `gorm:"size:255" json:"sizes"`
	Colors string `gorm:"size:255" json:"colors"`

	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// InStock reports whether the requested quantity can currently be fulfilled.
// This is a point-in-time read; the authoritative check happens inside the
// order transaction.
func (p *Product) InStock(quantity int) bool {
	return p.StockAmount >= quantity
}

// GetFormattedPrice returns the price as a float
func (p *Product) GetFormattedPrice() float64 {
	return float64(p.Price) / 100
}
