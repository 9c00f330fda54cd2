// internal/domain/user/entity.go
package user

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents the user entity
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password    string         `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	FirstName   string         `gorm:"size:100" json:"first_name"`
	LastName    string         `gorm:"size:100" json:"last_name"`
	Phone       string         `gorm:"size:20" json:"phone"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsAdmin     bool           `gorm:"default:false" json:"is_admin"`
	LastLoginAt *time.Time     `json:"last_login_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Addresses []Address `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"addresses,omitempty"`
}

// Address represents a user's shipping address. Orders never reference these
// rows directly; the fields are snapshotted into the order at creation time.
type Address struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	FirstName  string    `gorm:"size:100" json:"first_name"`
	LastName   string    `gorm:"size:100" json:"last_name"`
	Street     string    `gorm:"size:255;not null" json:"street"`
	City       string    `gorm:"size:100;not null" json:"city"`
	PostalCode string    `gorm:"size:20" json:"postal_code"`
	Country    string    `gorm:"size:2;not null;default:'BD'" json:"country"` // ISO 2-letter code
	Phone      string    `gorm:"size:20" json:"phone"`
	IsDefault  bool      `gorm:"default:false" json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// FullName returns the user's full name
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
