package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repo is the pgx-backed Store.
//
// Schema:
//
//	orders(id TEXT PK, customer_id TEXT, total_amount NUMERIC, created_at TIMESTAMPTZ)
//	order_items(order_id TEXT REFERENCES orders, line_no INT, product_id BIGINT,
//	            product_sku TEXT, quantity INT, unit_price NUMERIC,
//	            PRIMARY KEY(order_id, line_no))
//
// NUMERIC values cross the wire as strings so totals survive the round trip
// without float precision loss.
type Repo struct{ DB *pgxpool.Pool }

// Save writes the order and its lines in one transaction and returns the
// order with a freshly assigned id and creation timestamp. A failed save
// leaves nothing behind. Every attempt assigns a new identity, so retrying a
// timed-out save can duplicate the order.
func (r *Repo) Save(ctx context.Context, o Order) (Order, error) {
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, customer_id, total_amount, created_at)
		VALUES ($1, $2, $3, $4)`,
		o.ID, o.CustomerID, o.TotalAmount.String(), o.CreatedAt,
	)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, line_no, product_id, product_sku, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			o.ID, i, it.ProductID, it.ProductSKU, it.Quantity, it.UnitPrice.String(),
		)
		if err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (Order, error) {
	var (
		o     Order
		total string
	)
	err := r.DB.QueryRow(ctx, `
		SELECT id, customer_id, total_amount, created_at
		FROM orders WHERE id=$1`, id,
	).Scan(&o.ID, &o.CustomerID, &total, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
		return Order{}, fmt.Errorf("total_amount for order %s: %w", id, err)
	}
	if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *Repo) FindByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return r.list(ctx, `
		SELECT id, customer_id, total_amount, created_at
		FROM orders WHERE customer_id=$1 ORDER BY created_at DESC`, customerID)
}

func (r *Repo) FindAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `
		SELECT id, customer_id, total_amount, created_at
		FROM orders ORDER BY created_at DESC`)
}

func (r *Repo) list(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var (
			o     Order
			total string
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &total, &o.CreatedAt); err != nil {
			return nil, err
		}
		if o.TotalAmount, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("total_amount for order %s: %w", o.ID, err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].Items, err = r.loadItems(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Repo) loadItems(ctx context.Context, orderID string) ([]OrderLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT product_id, product_sku, quantity, unit_price
		FROM order_items WHERE order_id=$1 ORDER BY line_no`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderLine
	for rows.Next() {
		var (
			it    OrderLine
			price string
		)
		if err := rows.Scan(&it.ProductID, &it.ProductSKU, &it.Quantity, &price); err != nil {
			return nil, err
		}
		if it.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("unit_price for order %s: %w", orderID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
