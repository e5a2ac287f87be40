package postgres

import (
	"context"
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tdhoang/teahouse/internal/domain/order"
)

// ordersChannel is the LISTEN/NOTIFY channel pinged by the orders trigger.
const ordersChannel = "orders_changed"

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Line items are serialized to JSON for the
// JSONB column.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO orders (id, items, total_amount, status, order_time) VALUES ($1, $2, $3, $4, $5)`,
		o.ID, itemsJSON, o.TotalAmount, string(o.Status), o.OrderTime)
	if err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}
	return nil
}

// Get fetches one order by id.
func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, items, total_amount, status, order_time FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	return o, nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, items, total_amount, status, order_time FROM orders ORDER BY order_time DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "query orders")
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// UpdateStatus sets the fulfillment status of one order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return errors.Wrapf(err, "update status of order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// UpdateItems replaces an order's items and total in one atomic statement.
func (r *OrderRepository) UpdateItems(ctx context.Context, id string, items []order.LineItem, total decimal.Decimal) error {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET items = $2, total_amount = $3 WHERE id = $1`, id, itemsJSON, total)
	if err != nil {
		return errors.Wrapf(err, "update items of order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes one order.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete order %q", id)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Subscribe holds a dedicated connection on LISTEN and delivers a full
// snapshot immediately and after every change notification. The feed does
// not reconnect on its own: any error is passed to onError once and the
// subscription ends. The returned stop function releases the listening
// connection.
func (r *OrderRepository) Subscribe(ctx context.Context, onUpdate func([]order.Order), onError func(error)) (func(), error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "acquire listen connection")
	}
	if _, err := conn.Exec(ctx, "LISTEN "+ordersChannel); err != nil {
		conn.Release()
		return nil, errors.Wrap(err, "listen on orders channel")
	}

	subCtx, cancel := context.WithCancel(ctx)

	go func() {
		defer conn.Release()

		snapshot, err := r.List(subCtx)
		if err != nil {
			if subCtx.Err() == nil {
				onError(errors.Wrap(err, "initial snapshot"))
			}
			return
		}
		onUpdate(snapshot)

		for {
			if _, err := conn.Conn().WaitForNotification(subCtx); err != nil {
				if subCtx.Err() == nil {
					onError(errors.Wrap(err, "wait for order change"))
				}
				return
			}

			snapshot, err := r.List(subCtx)
			if err != nil {
				if subCtx.Err() == nil {
					onError(errors.Wrap(err, "fetch snapshot"))
				}
				return
			}
			onUpdate(snapshot)
		}
	}()

	return cancel, nil
}

// scanOrder reads one order row, decoding the JSONB items column.
func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		status    string
	)
	if err := row.Scan(&o.ID, &itemsJSON, &o.TotalAmount, &status, &o.OrderTime); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, errors.Wrap(err, "unmarshal order items")
	}
	o.Status = order.Status(status)
	return &o, nil
}
