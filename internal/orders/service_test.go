package orders

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChecker struct {
	err   error
	calls int
}

func (f *fakeChecker) CheckStock(_ context.Context, _ []CreateOrderItem) error {
	f.calls++
	return f.err
}

type fakeStore struct {
	mu    sync.Mutex
	saved []Order
	err   error
}

func (f *fakeStore) Save(_ context.Context, o Order) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return Order{}, f.err
	}
	o.ID = fmt.Sprintf("ord-%d", len(f.saved)+1)
	o.CreatedAt = time.Now().UTC()
	f.saved = append(f.saved, o)
	return o, nil
}

func (f *fakeStore) FindByID(_ context.Context, id string) (Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.saved {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (f *fakeStore) FindByCustomer(_ context.Context, customerID string) ([]Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Order
	for _, o := range f.saved {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) FindAll(_ context.Context) ([]Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Order(nil), f.saved...), nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

type fakeNotifier struct {
	err   error
	calls int
}

func (f *fakeNotifier) Reserve(_ context.Context, _ Order) error {
	f.calls++
	return f.err
}

type fakePublisher struct {
	err       error
	published []Order
}

func (f *fakePublisher) PublishOrderPlaced(_ context.Context, o Order) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, o)
	return nil
}

func newTestService() (*Service, *fakeChecker, *fakeStore, *fakeNotifier, *fakePublisher) {
	checker := &fakeChecker{}
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	publisher := &fakePublisher{}
	svc := &Service{
		Checker:  checker,
		Store:    store,
		Notifier: notifier,
		Events:   publisher,
		Log:      zap.NewNop(),
	}
	return svc, checker, store, notifier, publisher
}

func laptopRequest() CreateOrderRequest {
	return CreateOrderRequest{
		CustomerID: "c1",
		Items:      []CreateOrderItem{item(7, "laptop-003", 2, "500.00")},
	}
}

func TestPlaceOrderSuccess(t *testing.T) {
	svc, checker, store, notifier, publisher := newTestService()

	o, err := svc.PlaceOrder(context.Background(), laptopRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())
	assert.True(t, o.TotalAmount.Equal(decimal.RequireFromString("1000.00")),
		"got total %s", o.TotalAmount)
	assert.Equal(t, 1, checker.calls)
	assert.Equal(t, 1, store.count())
	assert.Equal(t, 1, notifier.calls)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, o.ID, publisher.published[0].ID)
}

func TestPlaceOrderValidationSkipsExternalCalls(t *testing.T) {
	svc, checker, store, notifier, publisher := newTestService()

	_, err := svc.PlaceOrder(context.Background(), CreateOrderRequest{CustomerID: "c1"})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, checker.calls, "no external call before validation passes")
	assert.Zero(t, store.count())
	assert.Zero(t, notifier.calls)
	assert.Empty(t, publisher.published)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	svc, checker, store, notifier, publisher := newTestService()
	checker.err = &InsufficientStockError{Shortfalls: []StockShortfall{
		{ProductKey: "laptop-003", Requested: 2, Available: 1},
	}}

	_, err := svc.PlaceOrder(context.Background(), laptopRequest())

	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	require.Len(t, ise.Shortfalls, 1)
	assert.Equal(t, StockShortfall{ProductKey: "laptop-003", Requested: 2, Available: 1}, ise.Shortfalls[0])
	assert.Zero(t, store.count(), "no order may be persisted on shortfall")
	assert.Zero(t, notifier.calls)
	assert.Empty(t, publisher.published)
}

func TestPlaceOrderInventoryUnavailable(t *testing.T) {
	svc, checker, store, _, _ := newTestService()
	checker.err = fmt.Errorf("%w: dial tcp: connection refused", ErrInventoryUnavailable)

	_, err := svc.PlaceOrder(context.Background(), laptopRequest())

	require.ErrorIs(t, err, ErrInventoryUnavailable)
	assert.Zero(t, store.count(), "no order may be persisted when inventory is unreachable")
}

func TestPlaceOrderPersistenceFailure(t *testing.T) {
	svc, _, store, notifier, publisher := newTestService()
	store.err = errors.New("connection lost")

	_, err := svc.PlaceOrder(context.Background(), laptopRequest())

	require.Error(t, err)
	assert.Zero(t, notifier.calls, "post-commit steps must not run after a failed save")
	assert.Empty(t, publisher.published)
}

func TestPlaceOrderNotifierFailureIsAbsorbed(t *testing.T) {
	svc, _, _, notifier, publisher := newTestService()
	notifier.err = errors.New("reserve returned status 500")

	o, err := svc.PlaceOrder(context.Background(), laptopRequest())

	require.NoError(t, err, "reservation failure never fails order creation")
	assert.NotEmpty(t, o.ID)
	require.Len(t, publisher.published, 1, "publish still runs after a failed notify")
}

func TestPlaceOrderPublishFailureIsAbsorbed(t *testing.T) {
	svc, _, store, _, publisher := newTestService()
	publisher.err = errors.New("marshal order.placed payload: boom")

	o, err := svc.PlaceOrder(context.Background(), laptopRequest())

	require.NoError(t, err, "publish failure never changes the reported outcome")
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, 1, store.count())
}

func TestReadPassThroughs(t *testing.T) {
	svc, _, _, _, _ := newTestService()

	placed, err := svc.PlaceOrder(context.Background(), laptopRequest())
	require.NoError(t, err)

	got, err := svc.GetOrder(context.Background(), placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, got.ID)

	_, err = svc.GetOrder(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	byCustomer, err := svc.OrdersForCustomer(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, byCustomer, 1)

	all, err := svc.AllOrders(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
