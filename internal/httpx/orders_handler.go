package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-order-service/internal/orders"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	Orders *orders.Service
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	o, err := h.Orders.PlaceOrder(ctx, req)
	if err != nil {
		h.writeOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// writeOrderError maps the placement error taxonomy onto HTTP statuses.
// Insufficient stock keeps the {message, items} body shape the storefront
// depends on.
func (h *OrdersHandler) writeOrderError(w http.ResponseWriter, err error) {
	var ve *orders.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
		return
	}
	var ise *orders.InsufficientStockError
	if errors.As(err, &ise) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"message": ise.Error(),
			"items":   ise.Shortfalls,
		})
		return
	}
	if errors.Is(err, orders.ErrInventoryUnavailable) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "inventory service unavailable"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not create order"})
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Orders.GetOrder(ctx, id)
	if errors.Is(err, orders.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// listOrders returns a customer's orders when customerId is given, otherwise
// all orders (dev convenience).
func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	var (
		out []orders.Order
		err error
	)
	if customerID := strings.TrimSpace(r.URL.Query().Get("customerId")); customerID != "" {
		out, err = h.Orders.OrdersForCustomer(ctx, customerID)
	} else {
		out, err = h.Orders.AllOrders(ctx)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if out == nil {
		out = []orders.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}
