package inventory

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ariefcatur/go-order-service/internal/orders"
)

// KV is the slice of the inventory store the checker needs: a consistent
// point read of one field. The go-redis implementation lives in
// internal/redisx.
type KV interface {
	// HGet returns the field value, with found=false when the record or
	// field does not exist. A non-nil error means the store itself could
	// not be read.
	HGet(ctx context.Context, key, field string) (value string, found bool, err error)
}

// stock field on the inventory record, e.g. HGET inventory:laptop-003 stock.
const stockField = "stock"

// Checker verifies availability per requested line against the external
// inventory store. It holds no lock between check and commit: this is a
// snapshot read, not a reservation.
type Checker struct {
	KV      KV
	Enforce bool
	Prefix  string
}

// CheckStock passes when every line's available stock covers its requested
// quantity. With enforcement disabled it passes unconditionally without
// touching the store (test/dev escape hatch).
func (c *Checker) CheckStock(ctx context.Context, items []orders.CreateOrderItem) error {
	if !c.Enforce {
		return nil
	}

	var shortfalls []orders.StockShortfall
	for _, it := range items {
		key := it.InventoryKey()
		available, err := c.availableStock(ctx, key)
		if err != nil {
			return err
		}
		if available < it.Quantity {
			shortfalls = append(shortfalls, orders.StockShortfall{
				ProductKey: key,
				Requested:  it.Quantity,
				Available:  available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return &orders.InsufficientStockError{Shortfalls: shortfalls}
	}
	return nil
}

// availableStock reads one normalized key. Absent records and non-numeric
// stock values count as zero (fail closed); only transport failures are
// fatal.
func (c *Checker) availableStock(ctx context.Context, key string) (int, error) {
	v, found, err := c.KV.HGet(ctx, c.Prefix+":"+key, stockField)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %v", orders.ErrInventoryUnavailable, key, err)
	}
	if !found {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, nil
	}
	return n, nil
}
