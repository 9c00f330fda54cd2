// internal/domain/shipping/entity.go
package shipping

import (
	"time"
)

// DeliveryFee is a lookup row keyed by (country, optional city). A row with
// an empty city is the country-wide fallback. The order flow reads these but
// never mutates them.
type DeliveryFee struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Country   string    `gorm:"size:2;not null;index:idx_delivery_fee_location,unique" json:"country"`
	City      string    `gorm:"size:100;index:idx_delivery_fee_location,unique" json:"city"`
	Amount    int64     `gorm:"not null" json:"amount"` // Fee in cents
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (DeliveryFee) TableName() string {
	return "delivery_fees"
}
