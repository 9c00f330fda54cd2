// internal/pkg/apperrors/errors.go
package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the order workflow. Callers branch on these with
// errors.Is; handlers map them to HTTP statuses in one place.
var (
	// ErrNotFound indicates the requested order, address or product does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrEmptyCart indicates checkout was attempted with no cart items.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidAddress indicates the address does not belong to the requester.
	ErrInvalidAddress = errors.New("address does not belong to user")

	// ErrMissingTransactionProof indicates a non cash-on-delivery payment
	// method was selected without a transaction number.
	ErrMissingTransactionProof = errors.New("transaction number is required for this payment method")

	// ErrAlreadyGenerated signals the invoice already exists. It is an
	// idempotent no-op outcome, not a failure.
	ErrAlreadyGenerated = errors.New("invoice already generated")

	// ErrConcurrencyConflict indicates the workflow transaction timed out or
	// was aborted under contention. The caller should retry.
	ErrConcurrencyConflict = errors.New("transaction aborted, please retry")

	// ErrValidation indicates missing or malformed required input.
	ErrValidation = errors.New("validation failed")
)

// InsufficientStockError names the product that could not be fulfilled.
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("insufficient stock for product '%s': available %d, requested %d", e.Name, e.Available, e.Requested)
	}
	return fmt.Sprintf("insufficient stock for product %d: available %d, requested %d", e.ProductID, e.Available, e.Requested)
}

// StateError indicates an operation was attempted in a state that does not
// permit it, e.g. invoice generation on a non-pending order.
type StateError struct {
	Current   string
	Attempted string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("operation '%s' not allowed while order is '%s'", e.Attempted, e.Current)
}

// IsRetryable reports whether the caller may retry the failed operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}
