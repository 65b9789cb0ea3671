package orders

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// StockChecker decides whether the requested lines may proceed. It returns
// *InsufficientStockError when one or more lines fall short, and an error
// wrapping ErrInventoryUnavailable when the store itself cannot be read.
type StockChecker interface {
	CheckStock(ctx context.Context, items []CreateOrderItem) error
}

// Store persists orders atomically and assigns identity on save.
type Store interface {
	Save(ctx context.Context, o Order) (Order, error)
	FindByID(ctx context.Context, id string) (Order, error)
	FindByCustomer(ctx context.Context, customerID string) ([]Order, error)
	FindAll(ctx context.Context) ([]Order, error)
}

// ReservationNotifier tells the reservation system to decrement stock for a
// persisted order. Best-effort: its error never fails the placement.
type ReservationNotifier interface {
	Reserve(ctx context.Context, o Order) error
}

// EventPublisher emits the order.placed event for a persisted order.
// Best-effort, same as the notifier.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, o Order) error
}

// Service sequences the placement workflow:
//
//	Received -> StockChecked -> Persisted -> Notified -> Published -> Done
//
// Fatal exits exist only before persistence. The stock check is a snapshot
// read with no lock held through the save, so two concurrent placements can
// both pass the check for the same stock and over-sell it; that gap is an
// accepted property of this design, not a guarantee the checker makes.
// Closing it means swapping the StockChecker for a reserving implementation.
type Service struct {
	Checker  StockChecker
	Store    Store
	Notifier ReservationNotifier
	Events   EventPublisher
	Log      *zap.Logger
}

// PlaceOrder validates the request, checks stock, persists the order and runs
// the two best-effort post-commit steps. The returned order carries the
// store-assigned id and timestamp.
func (s *Service) PlaceOrder(ctx context.Context, req CreateOrderRequest) (Order, error) {
	state := StateReceived

	if err := req.Validate(); err != nil {
		return Order{}, err
	}

	if err := s.Checker.CheckStock(ctx, req.Items); err != nil {
		s.advance(&state, StateFailed, req.CustomerID, "")
		return Order{}, err
	}
	s.advance(&state, StateStockChecked, req.CustomerID, "")

	saved, err := s.Store.Save(ctx, NewOrder(req))
	if err != nil {
		s.advance(&state, StateFailed, req.CustomerID, "")
		return Order{}, fmt.Errorf("save order: %w", err)
	}
	s.advance(&state, StatePersisted, saved.CustomerID, saved.ID)

	// The order is durable from here on. Everything below is logged and
	// absorbed; a failure or crash leaves a committed order without its
	// reservation or event, which this design does not recover.
	if err := s.Notifier.Reserve(ctx, saved); err != nil {
		s.Log.Warn("reservation notify failed",
			zap.String("order_id", saved.ID), zap.Error(err))
	}
	s.advance(&state, StateNotified, saved.CustomerID, saved.ID)

	if err := s.Events.PublishOrderPlaced(ctx, saved); err != nil {
		s.Log.Error("order.placed publish failed",
			zap.String("order_id", saved.ID), zap.Error(err))
	}
	s.advance(&state, StatePublished, saved.CustomerID, saved.ID)

	s.advance(&state, StateDone, saved.CustomerID, saved.ID)
	return saved, nil
}

func (s *Service) advance(cur *PlacementState, next PlacementState, customerID, orderID string) {
	if !CanTransition(*cur, next) {
		s.Log.Error("invalid placement transition",
			zap.String("from", string(*cur)), zap.String("to", string(next)))
		return
	}
	*cur = next
	s.Log.Debug("placement advanced",
		zap.String("state", string(next)),
		zap.String("customer_id", customerID),
		zap.String("order_id", orderID))
}

func (s *Service) GetOrder(ctx context.Context, id string) (Order, error) {
	return s.Store.FindByID(ctx, id)
}

func (s *Service) OrdersForCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return s.Store.FindByCustomer(ctx, customerID)
}

func (s *Service) AllOrders(ctx context.Context) ([]Order, error) {
	return s.Store.FindAll(ctx)
}
