package orders

import (
	"errors"
	"fmt"
)

// ErrInventoryUnavailable means the inventory store itself could not be
// reached. Transient; the caller may retry. Distinct from a stock shortfall.
var ErrInventoryUnavailable = errors.New("inventory store unavailable")

// ErrNotFound is returned by store reads for unknown order ids.
var ErrNotFound = errors.New("order not found")

// ValidationError rejects a malformed creation request before any external
// call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Reason)
}

// InsufficientStockError carries one shortfall per deficient line, in request
// order. The order was not persisted.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortfalls) == 1 {
		s := e.Shortfalls[0]
		return fmt.Sprintf("item %s is out of stock: available %d, requested %d",
			s.ProductKey, s.Available, s.Requested)
	}
	return fmt.Sprintf("%d items are out of stock", len(e.Shortfalls))
}
