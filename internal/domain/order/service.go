// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/config"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/cart"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/inventory"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/payment"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/product"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/shipping"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/domain/user"
	"github.com/jahirul84090-cell/cutebullecommerce-sub001/internal/pkg/apperrors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Notifier sends order notifications. Implementations must be safe to call
// concurrently; failures are logged and never affect a committed order.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *Order) error
	SendOperatorAlert(ctx context.Context, o *Order) error
	SendInvoiceEmail(ctx context.Context, o *Order, inv *Invoice, document []byte) error
}

// DocumentRenderer turns a persisted order and invoice into printable bytes
type DocumentRenderer interface {
	RenderInvoice(o *Order, inv *Invoice) ([]byte, error)
}

// Service is the order workflow engine. Every multi-step mutation runs inside
// one bounded transaction; notifications and document rendering happen after
// commit and are fire-and-forget.
type Service struct {
	db              *gorm.DB
	config          *config.Config
	log             *logrus.Logger
	cartService     *cart.Service
	ledger          *inventory.Service
	shippingService *shipping.Service
	paymentService  *payment.Service
	addressService  *user.AddressService
	userService     *user.Service
	notifier        Notifier
	renderer        DocumentRenderer
}

// NewService creates a new order service. notifier and renderer may be nil,
// in which case the corresponding side effects are skipped.
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger, notifier Notifier, renderer DocumentRenderer) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		log:             log,
		cartService:     cart.NewService(db, cfg),
		ledger:          inventory.NewService(db, cfg),
		shippingService: shipping.NewService(db, redisClient, cfg),
		paymentService:  payment.NewService(db, cfg),
		addressService:  user.NewAddressService(db, cfg),
		userService:     user.NewService(db, cfg),
		notifier:        notifier,
		renderer:        renderer,
	}
}

// PlaceOrderRequest represents checkout input
type PlaceOrderRequest struct {
	ShippingAddressID uint   `json:"shipping_address_id" binding:"required"`
	PaymentMethodID   uint   `json:"payment_method_id" binding:"required"`
	TransactionNumber string `json:"transaction_number"`
}

// StatusUpdate is the explicit partial-update body for the admin PATCH.
// Nil pointer fields are absent; status and payment flag are independent axes
// and may be updated together.
type StatusUpdate struct {
	Status           *Status
	IsPaid           *bool
	InvoiceRequested bool
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page      int    `form:"page,default=1"`
	Limit     int    `form:"limit,default=20"`
	Status    Status `form:"status"`
	UserID    uint   `form:"user_id"`
	SortOrder string `form:"sort_order,default=desc"`
}

// OrderListResponse represents orders with pagination
type OrderListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// PlaceOrder turns the user's cart into a durable order. All steps up to and
// including clearing the cart run in one atomic transaction; either a complete
// order exists afterwards or nothing changed.
func (s *Service) PlaceOrder(ctx context.Context, userID uint, req *PlaceOrderRequest) (*Order, error) {
	var created Order

	err := s.withWorkflowTx(ctx, func(tx *gorm.DB) error {
		// Shipping address must belong to the requester; its fields are
		// snapshotted into the order below.
		addr, err := s.addressService.GetAddress(tx, userID, req.ShippingAddressID)
		if err != nil {
			return err
		}

		c, err := s.cartService.GetOrCreateCart(tx, userID)
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return apperrors.ErrEmptyCart
		}

		resolution, err := s.paymentService.Resolve(tx, req.PaymentMethodID, req.TransactionNumber)
		if err != nil {
			return err
		}

		// Merge duplicate product+variant rows before any stock work.
		merged := cart.Merge(c.Items)
		lines := make([]inventory.Line, len(merged))
		for i, line := range merged {
			lines[i] = inventory.Line{ProductID: line.ProductID, Quantity: line.Quantity}
		}

		if err := s.ledger.CheckAvailability(tx, lines); err != nil {
			return err
		}

		products, err := s.loadProducts(tx, merged)
		if err != nil {
			return err
		}

		var subtotal int64
		for _, line := range merged {
			subtotal += products[line.ProductID].Price * int64(line.Quantity)
		}
		deliveryFee, err := s.shippingService.ResolveFee(tx, addr.Country, addr.City)
		if err != nil {
			return err
		}

		var u user.User
		if err := tx.Select("id", "email", "first_name", "last_name").First(&u, userID).Error; err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		created = Order{
			UserID:            userID,
			Email:             u.Email,
			Status:            StatusPending,
			IsPaid:            false,
			StockCommitted:    true,
			PaymentMethodID:   resolution.Method.ID,
			TransactionNumber: resolution.TransactionNumber,
			SubtotalAmount:    subtotal,
			DeliveryFee:       deliveryFee,
			TotalAmount:       subtotal + deliveryFee,
			ShippingAddress: ShippingAddress{
				FirstName:  addr.FirstName,
				LastName:   addr.LastName,
				Street:     addr.Street,
				City:       addr.City,
				PostalCode: addr.PostalCode,
				Country:    addr.Country,
				Phone:      addr.Phone,
			},
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		created.OrderNumber = s.generateOrderNumber(created.ID)
		if err := tx.Model(&created).Update("order_number", created.OrderNumber).Error; err != nil {
			return fmt.Errorf("failed to update order number: %w", err)
		}

		for _, line := range merged {
			prod := products[line.ProductID]
			item := OrderItem{
				OrderID:       created.ID,
				ProductID:     line.ProductID,
				Quantity:      line.Quantity,
				PricePaid:     prod.Price,
				ProductName:   prod.Name,
				ProductSKU:    prod.SKU,
				SelectedSize:  line.SelectedSize,
				SelectedColor: line.SelectedColor,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}

		// Conditional decrements; a concurrent checkout that consumed the
		// stock since the availability check rolls the whole order back here.
		if err := s.ledger.Decrement(tx, lines, "order", created.ID); err != nil {
			return err
		}

		return s.cartService.ClearItems(tx, c.ID)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Items").First(&created, created.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load created order: %w", err)
	}

	// Notifications are best effort and must never fail the committed order.
	go s.notifyOrderPlaced(&created)

	return &created, nil
}

// GetOrder retrieves a single order by ID
func (s *Service) GetOrder(id uint) (*Order, error) {
	var o Order
	if err := s.db.Preload("Items").Preload("Invoice").First(&o, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order %d: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &o, nil
}

// GetOrders retrieves orders with filtering and pagination
func (s *Service) GetOrders(req *OrderListRequest) (*OrderListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	var orders []Order
	var total int64

	query := s.db.Model(&Order{}).Preload("Items").Preload("Invoice")
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.UserID > 0 {
		query = query.Where("user_id = ?", req.UserID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	sortOrder := "desc"
	if req.SortOrder == "asc" {
		sortOrder = "asc"
	}

	offset := (req.Page - 1) * req.Limit
	if err := query.Order("created_at " + sortOrder).Offset(offset).Limit(req.Limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// GetUserOrders retrieves orders for a specific user
func (s *Service) GetUserOrders(userID uint, page, limit int) (*OrderListResponse, error) {
	return s.GetOrders(&OrderListRequest{Page: page, Limit: limit, UserID: userID})
}

// UpdateStatus applies the admin partial update. Invoice generation, when
// requested, runs first and force-transitions the order to PROCESSING; the
// explicit status change (if any) is then validated against the resulting
// state. Status and the payment flag update in one transaction.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, upd *StatusUpdate) (*Order, error) {
	if upd.InvoiceRequested {
		if _, err := s.GenerateInvoice(ctx, orderID); err != nil && !errors.Is(err, apperrors.ErrAlreadyGenerated) {
			return nil, err
		}
	}

	err := s.withWorkflowTx(ctx, func(tx *gorm.DB) error {
		var o Order
		if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("order %d: %w", orderID, apperrors.ErrNotFound)
			}
			return err
		}

		updates := map[string]interface{}{}
		statusGuard := false

		if upd.Status != nil {
			target := *upd.Status
			if !IsValidTransition(o.Status, target) {
				return &apperrors.StateError{Current: o.Status.String(), Attempted: "transition to " + target.String()}
			}

			if target != o.Status {
				if target == StatusCancelled {
					if err := s.applyCancel(tx, &o); err != nil {
						return err
					}
				} else {
					statusGuard = true
					updates["status"] = target
					now := time.Now().UTC()
					switch target {
					case StatusProcessing:
						updates["processed_at"] = now
					case StatusShipped:
						updates["shipped_at"] = now
					case StatusDelivered:
						updates["delivered_at"] = now
					}
				}
			}
		}

		if upd.IsPaid != nil {
			updates["is_paid"] = *upd.IsPaid
		}

		if len(updates) == 0 {
			return nil
		}

		query := tx.Model(&Order{}).Where("id = ?", orderID)
		if statusGuard {
			// Claim the transition against the status we validated; a
			// concurrent transition makes this match zero rows.
			query = query.Where("status = ?", o.Status)
		}
		result := query.Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update order: %w", result.Error)
		}
		if statusGuard && result.RowsAffected == 0 {
			var current Order
			if err := tx.First(&current, orderID).Error; err != nil {
				return fmt.Errorf("order %d: %w", orderID, apperrors.ErrNotFound)
			}
			return &apperrors.StateError{Current: current.Status.String(), Attempted: "transition to " + upd.Status.String()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetOrder(orderID)
}

// CancelOrder cancels an order, restoring stock if this order had committed it
func (s *Service) CancelOrder(ctx context.Context, orderID uint, reason string) error {
	return s.withWorkflowTx(ctx, func(tx *gorm.DB) error {
		var o Order
		if err := tx.Preload("Items").First(&o, orderID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("order %d: %w", orderID, apperrors.ErrNotFound)
			}
			return err
		}

		if !o.CanBeCancelled() {
			return &apperrors.StateError{Current: o.Status.String(), Attempted: "cancel"}
		}

		if err := s.applyCancel(tx, &o); err != nil {
			return err
		}

		s.log.WithFields(logrus.Fields{
			"order_id": orderID,
			"reason":   reason,
		}).Info("order cancelled")
		return nil
	})
}

// Internal helpers

// withWorkflowTx runs fn inside one transaction bounded by the configured
// timeout. A timeout or abort surfaces as a retryable conflict, never as
// partial state.
func (s *Service) withWorkflowTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.Checkout.TransactionTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(fn)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%v: %w", err, apperrors.ErrConcurrencyConflict)
	}
	return err
}

func (s *Service) loadProducts(tx *gorm.DB, merged []cart.MergedLine) (map[uint]*product.Product, error) {
	products := make(map[uint]*product.Product, len(merged))
	for _, line := range merged {
		if _, ok := products[line.ProductID]; ok {
			continue
		}
		var prod product.Product
		if err := tx.Where("id = ? AND is_active = ?", line.ProductID, true).First(&prod).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("product %d: %w", line.ProductID, apperrors.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
		}
		products[line.ProductID] = &prod
	}
	return products, nil
}

// applyCancel claims the cancellation with a conditional write before any
// stock is restored. The claim matches the exact status and commitment state
// loaded in o; a concurrent cancel or transition that got there first makes
// it match zero rows, so the restore can never run twice for one order.
func (s *Service) applyCancel(tx *gorm.DB, o *Order) error {
	updates := map[string]interface{}{"status": StatusCancelled}
	query := tx.Model(&Order{}).Where("id = ? AND status = ?", o.ID, o.Status)
	if o.StockCommitted {
		updates["stock_committed"] = false
		query = query.Where("stock_committed = ?", true)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to cancel order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var current Order
		if err := tx.First(&current, o.ID).Error; err != nil {
			return fmt.Errorf("order %d: %w", o.ID, apperrors.ErrNotFound)
		}
		return &apperrors.StateError{Current: current.Status.String(), Attempted: "cancel"}
	}

	if o.StockCommitted {
		return s.restoreOrderStock(tx, o)
	}
	return nil
}

func (s *Service) restoreOrderStock(tx *gorm.DB, o *Order) error {
	lines := make([]inventory.Line, len(o.Items))
	for i, item := range o.Items {
		lines[i] = inventory.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return s.ledger.Restore(tx, lines, "order", o.ID)
}

func (s *Service) generateOrderNumber(orderID uint) string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("%s-%s-%05d", s.config.Checkout.OrderNumberPrefix, time.Now().Format("20060102"), orderID)
}

func (s *Service) notifyOrderPlaced(o *Order) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.notifier.SendOrderConfirmation(ctx, o); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id":     o.ID,
			"order_number": o.OrderNumber,
			"error":        err,
		}).Warn("failed to send order confirmation")
	}
	if err := s.notifier.SendOperatorAlert(ctx, o); err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id":     o.ID,
			"order_number": o.OrderNumber,
			"error":        err,
		}).Warn("failed to send operator alert")
	}
}
