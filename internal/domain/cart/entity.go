// internal/domain/cart/entity.go
package cart

import (
	"time"

	"gorm.io/gorm"
)

// Cart represents a user's shopping cart, one per user
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem represents one cart line. Independent add-to-cart calls may create
// multiple rows for the same product and variant selectors; those rows are
// merged by quantity before any stock check.
type CartItem struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CartID        uint           `gorm:"not null;index" json:"cart_id"`
	ProductID     uint           `gorm:"not null;index" json:"product_id"`
	Quantity      int            `gorm:"not null;default:1" json:"quantity"`
	SelectedSize  string         `gorm:"size:50" json:"selected_size"`
	SelectedColor string         `gorm:"size:50" json:"selected_color"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// MergedLine is one deduplicated (product, size, color) line with summed
// quantity, produced by the aggregator.
type MergedLine struct {
	ProductID     uint   `json:"product_id"`
	Quantity      int    `json:"quantity"`
	SelectedSize  string `json:"selected_size"`
	SelectedColor string `json:"selected_color"`
}

// TableName overrides
func (Cart) TableName() string     { return "carts" }
func (CartItem) TableName() string { return "cart_items" }
