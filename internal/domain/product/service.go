// internal/domain/product/service.go
package product

import (
	"fmt"
	"strings"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles product administration. Catalog browsing and search live
// elsewhere; the order workflow only needs products to exist and carry
// accurate stock and price.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	SKU         string `json:"sku" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" binding:"required,min=0"`
	StockAmount int    `json:"stock_amount" binding:"min=0"`
	Sizes       string `json:"sizes"`
	Colors      string `json:"colors"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	Sizes       *string `json:"sizes"`
	Colors      *string `json:"colors"`
	IsActive    *bool   `json:"is_active"`
}

// GetProduct retrieves a product by ID
func (s *Service) GetProduct(id uint) (*Product, error) {
	var prod Product
	if err := s.db.First(&prod, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &prod, nil
}

// GetProducts retrieves active products
func (s *Service) GetProducts(page, limit int) ([]Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var products []Product
	if err := s.db.Where("is_active = ?", true).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}
	return products, nil
}

// CreateProduct creates a new product
func (s *Service) CreateProduct(req *CreateProductRequest) (*Product, error) {
	var existing Product
	if err := s.db.Where("sku = ?", req.SKU).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("%w: SKU '%s' already exists", apperrors.ErrValidation, req.SKU)
	}

	prod := Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Slug:        generateSlug(req.Name),
		Description: req.Description,
		Price:       req.Price,
		StockAmount: req.StockAmount,
		Sizes:       req.Sizes,
		Colors:      req.Colors,
		IsActive:    true,
	}
	if err := s.db.Create(&prod).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return &prod, nil
}

// UpdateProduct updates mutable product fields. Stock changes go through the
// inventory ledger, not here.
func (s *Service) UpdateProduct(id uint, req *UpdateProductRequest) (*Product, error) {
	prod, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
		updates["slug"] = generateSlug(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Sizes != nil {
		updates["sizes"] = *req.Sizes
	}
	if req.Colors != nil {
		updates["colors"] = *req.Colors
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(prod).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}
	return prod, nil
}

// DeleteProduct soft-deletes a product. Existing order items keep their
// snapshots and are unaffected.
func (s *Service) DeleteProduct(id uint) error {
	result := s.db.Delete(&Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func generateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", "-")
	var b strings.Builder
	for _, r := range slug {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
