package orders

import (
	"strconv"
	"strings"
)

// NormalizeProductKey bridges the catalog's numeric ids and the inventory
// store's string keys: trimmed lower-cased SKU when one is given, otherwise
// the stringified product id. The inventory and reservation systems depend on
// this exact format, so keep lower-casing and trimming as-is.
func NormalizeProductKey(productID int64, sku string) string {
	if s := strings.TrimSpace(sku); s != "" {
		return strings.ToLower(s)
	}
	return strconv.FormatInt(productID, 10)
}

// InventoryKey returns the line's normalized inventory key.
func (l OrderLine) InventoryKey() string {
	return NormalizeProductKey(l.ProductID, l.ProductSKU)
}

// InventoryKey returns the requested item's normalized inventory key.
func (i CreateOrderItem) InventoryKey() string {
	return NormalizeProductKey(i.ProductID, i.ProductSKU)
}

// PartitionKey keeps all events of one order on the same partition.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
