// internal/domain/shipping/service.go
package shipping

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Service resolves delivery fees for a shipping destination
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
}

// NewService creates a new shipping service. The redis client is optional;
// without it every lookup goes to the database.
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
	}
}

// UpsertFeeRequest represents delivery fee admin input
type UpsertFeeRequest struct {
	Country string `json:"country" binding:"required,len=2"`
	City    string `json:"city"`
	Amount  int64  `json:"amount" binding:"required,min=0"`
}

// ResolveFee returns the delivery fee for a destination. Lookup order:
// exact (country, city) row, then the country-wide row with empty city, then
// the configured platform default. Only a missing row falls through; any
// other database failure is returned so callers never misprice an order.
func (s *Service) ResolveFee(db *gorm.DB, country, city string) (int64, error) {
	if db == nil {
		db = s.db
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	city = strings.TrimSpace(city)

	if amount, ok := s.cachedFee(country, city); ok {
		return amount, nil
	}

	var fee DeliveryFee
	if city != "" {
		err := db.Where("country = ? AND city = ?", country, city).First(&fee).Error
		if err == nil {
			s.cacheFee(country, city, fee.Amount)
			return fee.Amount, nil
		}
		if err != gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("failed to resolve delivery fee: %w", err)
		}
	}

	err := db.Where("country = ? AND (city = '' OR city IS NULL)", country).First(&fee).Error
	if err == nil {
		s.cacheFee(country, city, fee.Amount)
		return fee.Amount, nil
	}
	if err != gorm.ErrRecordNotFound {
		return 0, fmt.Errorf("failed to resolve delivery fee: %w", err)
	}

	return s.config.Checkout.DefaultDeliveryFee, nil
}

// UpsertFee creates or updates a delivery fee row and drops any cached value
func (s *Service) UpsertFee(req *UpsertFeeRequest) (*DeliveryFee, error) {
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	city := strings.TrimSpace(req.City)

	var fee DeliveryFee
	err := s.db.Where("country = ? AND city = ?", country, city).First(&fee).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		fee = DeliveryFee{Country: country, City: city, Amount: req.Amount}
		if err := s.db.Create(&fee).Error; err != nil {
			return nil, fmt.Errorf("failed to create delivery fee: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up delivery fee: %w", err)
	default:
		if err := s.db.Model(&fee).Update("amount", req.Amount).Error; err != nil {
			return nil, fmt.Errorf("failed to update delivery fee: %w", err)
		}
	}

	s.invalidateFee(country, city)
	return &fee, nil
}

// ListFees returns all delivery fee rows
func (s *Service) ListFees() ([]DeliveryFee, error) {
	var fees []DeliveryFee
	if err := s.db.Order("country, city").Find(&fees).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve delivery fees: %w", err)
	}
	return fees, nil
}

// Cache helpers. Cache misses and redis failures fall through silently to the
// database; the cache is an optimization only.

func feeCacheKey(country, city string) string {
	return fmt.Sprintf("delivery_fee:%s:%s", country, city)
}

func (s *Service) cachedFee(country, city string) (int64, bool) {
	if s.redisClient == nil {
		return 0, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	val, err := s.redisClient.Get(ctx, feeCacheKey(country, city)).Result()
	if err != nil {
		return 0, false
	}
	amount, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}

func (s *Service) cacheFee(country, city string, amount int64) {
	if s.redisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.redisClient.Set(ctx, feeCacheKey(country, city), strconv.FormatInt(amount, 10), time.Hour)
}

func (s *Service) invalidateFee(country, city string) {
	if s.redisClient == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.redisClient.Del(ctx, feeCacheKey(country, city))
}
