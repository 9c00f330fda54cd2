// internal/domain/cart/service.go
package cart

import (
	"fmt"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/product"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"gorm.io/gorm"
)

// Service handles cart business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID     uint   `json:"product_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,min=1"`
	SelectedSize  string `json:"selected_size"`
	SelectedColor string `json:"selected_color"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=0"`
}

// CartResponse represents a cart with product details and totals
type CartResponse struct {
	Cart     *Cart                     `json:"cart"`
	Products map[uint]*product.Product `json:"products,omitempty"`
	Subtotal int64                     `json:"subtotal"`
}

// GetOrCreateCart returns the user's cart, creating the row on first use.
// Carts are 1:1 per user.
func (s *Service) GetOrCreateCart(db *gorm.DB, userID uint) (*Cart, error) {
	var c Cart
	err := db.Preload("Items").Where("user_id = ?", userID).First(&c).Error
	if err == gorm.ErrRecordNotFound {
		c = Cart{UserID: userID}
		if err := db.Create(&c).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve cart: %w", err)
	}
	return &c, nil
}

// GetCart retrieves the cart with product details and subtotal
func (s *Service) GetCart(userID uint) (*CartResponse, error) {
	c, err := s.GetOrCreateCart(s.db, userID)
	if err != nil {
		return nil, err
	}

	products := make(map[uint]*product.Product)
	var subtotal int64
	for _, item := range c.Items {
		prod, ok := products[item.ProductID]
		if !ok {
			var p product.Product
			if err := s.db.First(&p, item.ProductID).Error; err != nil {
				continue // product deleted since it was added
			}
			products[item.ProductID] = &p
			prod = &p
		}
		subtotal += prod.Price * int64(item.Quantity)
	}

	return &CartResponse{
		Cart:     c,
		Products: products,
		Subtotal: subtotal,
	}, nil
}

// AddToCart appends a new cart line. Duplicate (product, size, color) rows are
// allowed here; the aggregator merges them at checkout time.
func (s *Service) AddToCart(userID uint, req *AddToCartRequest) (*CartResponse, error) {
	var prod product.Product
	if err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&prod).Error; err != nil {
		return nil, fmt.Errorf("product %d: %w", req.ProductID, apperrors.ErrNotFound)
	}

	if !prod.InStock(req.Quantity) {
		return nil, &apperrors.InsufficientStockError{
			ProductID: prod.ID,
			Name:      prod.Name,
			Available: prod.StockAmount,
			Requested: req.Quantity,
		}
	}

	c, err := s.GetOrCreateCart(s.db, userID)
	if err != nil {
		return nil, err
	}

	item := CartItem{
		CartID:        c.ID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		SelectedSize:  req.SelectedSize,
		SelectedColor: req.SelectedColor,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	return s.GetCart(userID)
}

// UpdateCartItem updates a cart line's quantity; zero removes the line
func (s *Service) UpdateCartItem(userID uint, itemID uint, req *UpdateCartItemRequest) (*CartResponse, error) {
	c, err := s.GetOrCreateCart(s.db, userID)
	if err != nil {
		return nil, err
	}

	var item CartItem
	if err := s.db.Where("id = ? AND cart_id = ?", itemID, c.ID).First(&item).Error; err != nil {
		return nil, fmt.Errorf("cart item %d: %w", itemID, apperrors.ErrNotFound)
	}

	if req.Quantity == 0 {
		if err := s.db.Delete(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to remove cart item: %w", err)
		}
	} else {
		if err := s.db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	}

	return s.GetCart(userID)
}

// RemoveCartItem deletes one cart line
func (s *Service) RemoveCartItem(userID uint, itemID uint) (*CartResponse, error) {
	c, err := s.GetOrCreateCart(s.db, userID)
	if err != nil {
		return nil, err
	}

	result := s.db.Where("id = ? AND cart_id = ?", itemID, c.ID).Delete(&CartItem{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("cart item %d: %w", itemID, apperrors.ErrNotFound)
	}

	return s.GetCart(userID)
}

// ClearItems deletes all of a cart's lines inside the caller's transaction.
// Clearing the cart is part of the same atomic unit as order creation.
func (s *Service) ClearItems(tx *gorm.DB, cartID uint) error {
	if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart items: %w", err)
	}
	return nil
}

// Merge collapses raw cart lines into unique (product, size, color) lines with
// summed quantities. It must run before any stock check: checking stock against
// un-merged rows under-validates when the same variant appears twice.
func Merge(items []CartItem) []MergedLine {
	type key struct {
		productID uint
		size      string
		color     string
	}

	index := make(map[key]int, len(items))
	merged := make([]MergedLine, 0, len(items))

	for _, item := range items {
		k := key{item.ProductID, item.SelectedSize, item.SelectedColor}
		if i, ok := index[k]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, MergedLine{
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			SelectedSize:  item.SelectedSize,
			SelectedColor: item.SelectedColor,
		})
	}

	return merged
}
