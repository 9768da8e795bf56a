package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidQuantity     = errors.New("quantity must be a positive whole number")
	ErrQuantityTooLarge    = fmt.Errorf("quantity must not exceed %d", MaxAdjustQuantity)
	ErrInvalidReference    = errors.New("invalid product or branch reference")
	ErrInvalidDirection    = errors.New("direction must be 'in' or 'out'")
	ErrProductNotFound     = errors.New("product not found")
	ErrNotStockable        = errors.New("product has variants, adjust one of its variants instead")
	ErrIdempotencyConflict = errors.New("idempotency key already used for another product")
	ErrTransactionWrite    = errors.New("failed to record stock transaction")
	ErrQuantityWrite       = errors.New("failed to update stock quantity, the product may have been deleted or the reference is stale")
	ErrSKUExists           = errors.New("SKU already exists")
	ErrInvalidParent       = errors.New("parent product must exist in the branch and must not be a variant")
	ErrHasVariants         = errors.New("product still has variants")
)

// InsufficientStockError reports an outgoing movement larger than the stock on hand.
type InsufficientStockError struct {
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: %d available, %d requested", e.Available, e.Requested)
}
