// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status represents the order status
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipped    Status = "SHIPPED"
	StatusDelivered  Status = "DELIVERED"
	StatusCancelled  Status = "CANCELLED"
)

// Order represents the order entity. Identity is immutable once created; the
// mutable fields are Status, IsPaid and IsInvoiceGenerated.
type Order struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	OrderNumber string `gorm:"uniqueIndex;not null;size:50" json:"order_number"`
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	Email       string `gorm:"not null;size:255" json:"email"`
	Status      Status `gorm:"not null;default:'PENDING'" json:"status"`

	IsPaid             bool `gorm:"default:false" json:"is_paid"`
	IsInvoiceGenerated bool `gorm:"default:false" json:"is_invoice_generated"`

	// StockCommitted records whether this order's inventory decrement has
	// happened. Checkout orders commit stock at creation; deferred orders
	// commit at invoice generation; imported historical orders never touch
	// the ledger. Guards against double-decrement.
	StockCommitted bool `gorm:"default:false" json:"stock_committed"`

	// Payment
	PaymentMethodID   uint   `gorm:"not null;index" json:"payment_method_id"`
	TransactionNumber string `gorm:"not null;size:100" json:"transaction_number"`

	// Financial information, in cents
	SubtotalAmount int64 `gorm:"not null" json:"subtotal_amount"`
	DeliveryFee    int64 `gorm:"default:0" json:"delivery_fee"`
	TotalAmount    int64 `gorm:"not null" json:"total_amount"`

	// Shipping address, snapshotted at order creation. Later edits to the
	// user's address book must not alter historical orders.
	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	// Timestamps
	ProcessedAt *time.Time     `json:"processed_at"`
	ShippedAt   *time.Time     `json:"shipped_at"`
	DeliveredAt *time.Time     `json:"delivered_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Items   []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`
	Invoice *Invoice    `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"invoice,omitempty"`
}

// ShippingAddress is the address snapshot embedded in an order
type ShippingAddress struct {
	FirstName  string `gorm:"size:100" json:"first_name"`
	LastName   string `gorm:"size:100" json:"last_name"`
	Street     string `gorm:"size:255" json:"street"`
	City       string `gorm:"size:100" json:"city"`
	PostalCode string `gorm:"size:20" json:"postal_code"`
	Country    string `gorm:"size:2" json:"country"`
	Phone      string `gorm:"size:20" json:"phone"`
}

// OrderItem captures one purchased line. PricePaid is the price at purchase
// time and is never recomputed; the snapshot fields preserve product data
// that may change or be deleted later.
type OrderItem struct {
	ID        uint  `gorm:"primaryKey" json:"id"`
	OrderID   uint  `gorm:"not null;index" json:"order_id"`
	ProductID uint  `gorm:"not null;index" json:"product_id"`
	Quantity  int   `gorm:"not null" json:"quantity"`
	PricePaid int64 `gorm:"not null" json:"price_paid"` // Price per unit in cents

	// Product snapshot at purchase time
	ProductName   string `gorm:"not null;size:255" json:"product_name"`
	ProductSKU    string `gorm:"size:100" json:"product_sku"`
	SelectedSize  string `gorm:"size:50" json:"selected_size"`
	SelectedColor string `gorm:"size:50" json:"selected_color"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Invoice is created exactly once per order and never regenerated
type Invoice struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	OrderID       uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	InvoiceNumber string    `gorm:"uniqueIndex;not null;size:50" json:"invoice_number"`
	DocumentURL   string    `gorm:"size:500" json:"document_url"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }
func (Invoice) TableName() string   { return "invoices" }

// LineTotal returns quantity times price paid
func (i *OrderItem) LineTotal() int64 {
	return i.PricePaid * int64(i.Quantity)
}

// GetFormattedTotal returns total amount as float
func (o *Order) GetFormattedTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// IsTerminal reports whether the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status == StatusDelivered || o.Status == StatusCancelled
}

// CanBeCancelled checks if the order can still be cancelled
func (o *Order) CanBeCancelled() bool {
	return !o.IsTerminal()
}

func (s Status) String() string {
	return string(s)
}

// ParseStatus validates an incoming status value
func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(v), nil
	}
	return "", fmt.Errorf("unknown order status %q", v)
}
