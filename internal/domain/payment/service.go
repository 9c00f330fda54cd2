// internal/domain/payment/service.go
package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles payment method resolution for checkout
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new payment service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Resolution is the outcome of resolving a payment method at checkout time
type Resolution struct {
	Method            *Method
	TransactionNumber string
}

// Resolve loads an active payment method and determines the transaction
// number for the order. Non cash-on-delivery methods require the caller to
// supply external payment proof; cash-on-delivery synthesizes a unique one.
func (s *Service) Resolve(db *gorm.DB, methodID uint, transactionNumber string) (*Resolution, error) {
	var method Method
	if err := db.Where("id = ? AND is_active = ?", methodID, true).First(&method).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("payment method %d: %w", methodID, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve payment method: %w", err)
	}

	transactionNumber = strings.TrimSpace(transactionNumber)

	if method.IsCashOnDelivery {
		if transactionNumber == "" {
			transactionNumber = SynthesizeTransactionNumber()
		}
		return &Resolution{Method: &method, TransactionNumber: transactionNumber}, nil
	}

	if transactionNumber == "" {
		return nil, apperrors.ErrMissingTransactionProof
	}

	return &Resolution{Method: &method, TransactionNumber: transactionNumber}, nil
}

// ListMethods returns all active payment methods
func (s *Service) ListMethods() ([]Method, error) {
	var methods []Method
	if err := s.db.Where("is_active = ?", true).Order("id").Find(&methods).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve payment methods: %w", err)
	}
	return methods, nil
}

// SynthesizeTransactionNumber builds a unique transaction number for
// cash-on-delivery orders, where no external proof exists.
// Format: TXN-<unix-nano>-<8 char suffix>.
func SynthesizeTransactionNumber() string {
	suffix := strings.ToUpper(uuid.NewString()[:8])
	return fmt.Sprintf("TXN-%d-%s", time.Now().UnixNano(), suffix)
}
