// internal/domain/payment/entity.go
package payment

import (
	"time"
)

// Method represents a payment method offered at checkout. Cash-on-delivery
// methods require no upfront transaction proof.
type Method struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"not null;size:100" json:"name"`
	Slug             string    `gorm:"uniqueIndex;not null;size:100" json:"slug"`
	Description      string    `gorm:"size:255" json:"description"`
	IsCashOnDelivery bool      `gorm:"default:false" json:"is_cash_on_delivery"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Method) TableName() string {
	return "payment_methods"
}
