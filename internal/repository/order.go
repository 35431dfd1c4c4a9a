package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/mealbox/internal/domain/order"
)

const orderColumns = `id::text, customer_id, meal_id, provider_id, portion_size,
	delivery_address, phone, status, start_date, end_date, extra_items,
	pricing, number_of_days, created_at, updated_at`

const (
	createOrderSQL = `INSERT INTO orders (id, customer_id, meal_id, provider_id, portion_size,
		delivery_address, phone, status, start_date, end_date, extra_items,
		pricing, number_of_days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersByCustomerSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE customer_id = $1 ORDER BY created_at DESC, id`

	listOrdersByProviderSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE provider_id = $1 ORDER BY created_at DESC, id`

	// No version check: concurrent writers resolve as last write wins.
	updateOrderStatusSQL = `UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 RETURNING ` + orderColumns
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	extra := o.ExtraItems
	if extra == nil {
		extra = []string{}
	}
	_, err := r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.CustomerID, o.MealID, o.ProviderID, o.PortionSize,
		o.DeliveryAddress, o.Phone, string(o.Status), o.Schedule.Start, o.Schedule.End, extra,
		o.Pricing, o.NumberOfDays, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create order %q", o.ID)
	}
	return nil
}

// GetByID returns a single order. Ids that are not UUIDs cannot exist and
// report order.ErrNotFound without a round trip.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, order.ErrNotFound
	}
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	return collectOne(rows, id)
}

// ListByCustomer returns the orders a customer placed, newest first.
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByCustomerSQL, customerID)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders of customer %q", customerID)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListByProvider returns the orders addressed to a provider, newest first.
func (r *OrderRepository) ListByProvider(ctx context.Context, providerID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersByProviderSQL, providerID)
	if err != nil {
		return nil, errors.Wrapf(err, "list orders of provider %q", providerID)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus overwrites the order status and returns the stored row.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, order.ErrNotFound
	}
	rows, err := r.pool.Query(ctx, updateOrderStatusSQL, id, string(status))
	if err != nil {
		return nil, errors.Wrapf(err, "update order %q", id)
	}
	return collectOne(rows, id)
}

func collectOne(rows pgx.Rows, id string) (*order.Order, error) {
	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "scan order %q", id)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o      order.Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.CustomerID, &o.MealID, &o.ProviderID, &o.PortionSize,
		&o.DeliveryAddress, &o.Phone, &status, &o.Schedule.Start, &o.Schedule.End, &o.ExtraItems,
		&o.Pricing, &o.NumberOfDays, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	o.Schedule.Start = o.Schedule.Start.UTC()
	o.Schedule.End = o.Schedule.End.UTC()
	return o, nil
}
