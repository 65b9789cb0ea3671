package orders

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced = "order.placed"
)

// Envelope wraps every event written to the bus.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// OrderPlacedItem carries both the normalized inventory key and the original
// catalog product id, since downstream consumers are keyed differently.
type OrderPlacedItem struct {
	ProductKey string          `json:"product_key"`
	ProductID  int64           `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

type OrderPlacedPayload struct {
	OrderID     string            `json:"order_id"`
	CustomerID  string            `json:"customer_id"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	CreatedAt   time.Time         `json:"created_at"`
	Items       []OrderPlacedItem `json:"items"`
}

func NewOrderPlacedPayload(o Order) OrderPlacedPayload {
	items := make([]OrderPlacedItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderPlacedItem{
			ProductKey: it.InventoryKey(),
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
		})
	}
	return OrderPlacedPayload{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
		Items:       items,
	}
}
