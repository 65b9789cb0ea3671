package orders

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the persisted aggregate. Identity and creation timestamp are
// assigned by the store on save; after that the order is immutable.
type Order struct {
	ID          string          `json:"id"`
	CustomerID  string          `json:"customerId"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// OrderLine is owned by its Order and has no lifecycle of its own.
type OrderLine struct {
	ProductID  int64           `json:"productId"`
	ProductSKU string          `json:"productSku,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

// StockShortfall reports one deficient line from the availability check.
// Transient only, never persisted.
type StockShortfall struct {
	ProductKey string `json:"productId"`
	Requested  int    `json:"requested"`
	Available  int    `json:"available"`
}

type CreateOrderItem struct {
	ProductID  int64           `json:"productId"`
	ProductSKU string          `json:"productSku"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
}

type CreateOrderRequest struct {
	CustomerID string            `json:"customerId"`
	Items      []CreateOrderItem `json:"items"`
}

func (r CreateOrderRequest) Validate() error {
	if strings.TrimSpace(r.CustomerID) == "" {
		return &ValidationError{Field: "customerId", Reason: "customer id is required"}
	}
	if len(r.Items) == 0 {
		return &ValidationError{Field: "items", Reason: "at least one item is required"}
	}
	for _, it := range r.Items {
		if it.Quantity < 1 {
			return &ValidationError{Field: "items.quantity", Reason: "quantity must be at least 1"}
		}
		if it.UnitPrice.IsNegative() {
			return &ValidationError{Field: "items.unitPrice", Reason: "unit price must not be negative"}
		}
	}
	return nil
}

// NewOrder builds the in-memory aggregate from a validated request. The total
// is the exact decimal sum of quantity x unit price over all lines, in request
// order; unit prices come from the caller and are not re-priced here.
func NewOrder(req CreateOrderRequest) Order {
	items := make([]OrderLine, 0, len(req.Items))
	total := decimal.Zero
	for _, it := range req.Items {
		items = append(items, OrderLine{
			ProductID:  it.ProductID,
			ProductSKU: it.ProductSKU,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return Order{
		CustomerID:  req.CustomerID,
		Items:       items,
		TotalAmount: total,
	}
}
