package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sale errors.
var (
	ErrEmptyCart           = errors.New("sale must have at least one item")
	ErrInvalidQuantity     = errors.New("quantity must be greater than 0")
	ErrInvalidDiscount     = errors.New("discount must be greater than or equal to 0")
	ErrInvalidDiscountType = errors.New("discount type must be percentage or fixed")
	ErrInvalidPrice        = errors.New("price must be greater than or equal to 0")
	ErrReceiptExhausted    = errors.New("could not allocate a unique receipt number")
)

// ErrUnknownEntity is returned for import, export or template requests naming
// an entity that is not registered for that operation.
var ErrUnknownEntity = errors.New("unknown entity")

// ProductNotFoundError is returned when a cart line names an unknown product.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("product not found: %s", e.ProductID)
}

// Is makes errors.Is(err, ErrNotFound) hold for missing products.
func (e *ProductNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// InsufficientStockError names every stock code whose quantity would go negative.
type InsufficientStockError struct {
	StockCodes []string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for: %s", strings.Join(e.StockCodes, ", "))
}

// IsInsufficientStock reports whether err is an *InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

// IsProductNotFound reports whether err is a *ProductNotFoundError.
func IsProductNotFound(err error) bool {
	var target *ProductNotFoundError
	return errors.As(err, &target)
}
