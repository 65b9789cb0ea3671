package reservation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-order-service/internal/orders"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	connectTimeout = 2 * time.Second
	overallTimeout = 10 * time.Second
)

// Notifier issues a single best-effort call telling the reservation system to
// decrement stock for a persisted order. 200 and an idempotent 409 "already
// reserved" both count as accepted; no retry either way. An empty URL
// disables the call.
type Notifier struct {
	URL    string
	Client *http.Client
	Log    *zap.Logger
}

func New(url string, log *zap.Logger) *Notifier {
	return &Notifier{
		URL: strings.TrimSpace(url),
		Client: &http.Client{
			Timeout: overallTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
		Log: log,
	}
}

type reserveEvent struct {
	Detail reserveRequest `json:"detail"`
}

type reserveRequest struct {
	OrderID    string        `json:"orderId"`
	CustomerID string        `json:"customerId"`
	UserID     string        `json:"userId"`
	TotalCents int64         `json:"totalCents"`
	Items      []reserveItem `json:"items"`
}

type reserveItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

func (n *Notifier) Reserve(ctx context.Context, o orders.Order) error {
	if n.URL == "" {
		return nil
	}

	body, err := json.Marshal(newReserveEvent(o))
	if err != nil {
		return fmt.Errorf("marshal reserve request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build reserve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("reserve call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusConflict {
		n.Log.Info("inventory reserve triggered",
			zap.Int("status", resp.StatusCode), zap.String("order_id", o.ID))
		return nil
	}

	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("reserve returned status %d: %s", resp.StatusCode, b)
}

func newReserveEvent(o orders.Order) reserveEvent {
	items := make([]reserveItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, reserveItem{ProductID: it.InventoryKey(), Quantity: it.Quantity})
	}
	return reserveEvent{Detail: reserveRequest{
		OrderID:    o.ID,
		CustomerID: o.CustomerID,
		UserID:     o.CustomerID,
		TotalCents: toCents(o.TotalAmount),
		Items:      items,
	}}
}

// toCents converts a currency-neutral amount to minor units, half-up.
func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
