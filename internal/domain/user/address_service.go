// internal/domain/user/address_service.go
package user

import (
	"fmt"
	"strings"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// AddressService handles address business logic
type AddressService struct {
	db     *gorm.DB
	config *config.Config
}

// NewAddressService creates a new address service
func NewAddressService(db *gorm.DB, cfg *config.Config) *AddressService {
	return &AddressService{
		db:     db,
		config: cfg,
	}
}

// CreateAddressRequest represents address creation data
type CreateAddressRequest struct {
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
	Street     string `json:"street" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country" binding:"required,len=2"` // ISO 2-letter code
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

// UpdateAddressRequest represents address update data
type UpdateAddressRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	Street     *string `json:"street"`
	City       *string `json:"city"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country" binding:"omitempty,len=2"`
	Phone      *string `json:"phone"`
	IsDefault  *bool   `json:"is_default"`
}

// GetUserAddresses retrieves all addresses for a user
func (s *AddressService) GetUserAddresses(userID uint) ([]Address, error) {
	var addresses []Address
	if err := s.db.Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve addresses: %w", err)
	}
	return addresses, nil
}

// GetAddress retrieves an address and verifies it belongs to the requesting
// user. An address owned by someone else is reported as ErrInvalidAddress,
// not leaked as a different error.
func (s *AddressService) GetAddress(db *gorm.DB, userID, addressID uint) (*Address, error) {
	var address Address
	if err := db.First(&address, addressID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("address %d: %w", addressID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve address: %w", err)
	}

	if address.UserID != userID {
		return nil, apperrors.ErrInvalidAddress
	}

	return &address, nil
}

// CreateAddress creates a new address for a user
func (s *AddressService) CreateAddress(userID uint, req *CreateAddressRequest) (*Address, error) {
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	if len(country) != 2 {
		return nil, fmt.Errorf("%w: country must be a 2-letter ISO code", apperrors.ErrValidation)
	}

	var address Address
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := tx.Model(&Address{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return fmt.Errorf("failed to unset default address: %w", err)
			}
		}

		address = Address{
			UserID:     userID,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Street:     req.Street,
			City:       req.City,
			PostalCode: req.PostalCode,
			Country:    country,
			Phone:      req.Phone,
			IsDefault:  req.IsDefault,
		}
		if err := tx.Create(&address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &address, nil
}

// UpdateAddress updates an address owned by the user
func (s *AddressService) UpdateAddress(userID, addressID uint, req *UpdateAddressRequest) (*Address, error) {
	address, err := s.GetAddress(s.db, userID, addressID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Street != nil {
		updates["street"] = *req.Street
	}
	if req.City != nil {
		updates["city"] = *req.City
	}
	if req.PostalCode != nil {
		updates["postal_code"] = *req.PostalCode
	}
	if req.Country != nil {
		updates["country"] = strings.ToUpper(strings.TrimSpace(*req.Country))
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault != nil && *req.IsDefault {
			if err := tx.Model(&Address{}).
				Where("user_id = ? AND is_default = ?", userID, true).
				Update("is_default", false).Error; err != nil {
				return fmt.Errorf("failed to unset default address: %w", err)
			}
			updates["is_default"] = true
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(address).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update address: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return address, nil
}

// DeleteAddress deletes an address owned by the user
func (s *AddressService) DeleteAddress(userID, addressID uint) error {
	address, err := s.GetAddress(s.db, userID, addressID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(address).Error; err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}
