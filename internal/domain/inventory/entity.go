// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// MovementDirection distinguishes stock leaving (sale) from stock returning
// (cancellation) the ledger.
type MovementDirection string

const (
	DirectionOutbound MovementDirection = "outbound"
	DirectionInbound  MovementDirection = "inbound"
)

// Movement is an audit row written alongside every ledger mutation. The
// authoritative balance lives on the product row; movements exist to explain
// how it got there.
type Movement struct {
	ID            uint              `gorm:"primaryKey" json:"id"`
	ProductID     uint              `gorm:"not null;index" json:"product_id"`
	Direction     MovementDirection `gorm:"not null;size:20" json:"direction"`
	Quantity      int               `gorm:"not null" json:"quantity"`
	ReferenceType string            `gorm:"size:50" json:"reference_type"` // order, invoice, adjustment
	ReferenceID   uint              `gorm:"index" json:"reference_id"`
	Notes         string            `gorm:"size:255" json:"notes"`
	CreatedAt     time.Time         `json:"created_at"`
}

// TableName overrides the table name
func (Movement) TableName() string {
	return "inventory_movements"
}
