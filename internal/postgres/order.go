// Package postgres implements the storage interfaces on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// OrderRepository implements domain.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// Compile-time check that OrderRepository implements domain.OrderRepository.
var _ domain.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const insertOrder = `
INSERT INTO orders (
    id, order_number, payment_method,
    cep, street, street_number, complement, district, city, state,
    subtotal_cents, delivery_cents, total_cents,
    delivery_days_min, delivery_days_max, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const insertOrderItem = `
INSERT INTO order_items (order_id, position, sku, name, quantity, unit_price_cents)
VALUES ($1, $2, $3, $4, $5, $6)`

// CreateOrder inserts the order and its items in one transaction.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		a := order.Address
		s := order.Summary
		if _, err := tx.Exec(ctx, insertOrder,
			order.ID, order.Number, string(order.PaymentMethod),
			a.CEP, a.Street, a.Number, a.Complement, a.District, a.City, a.State,
			s.SubtotalCents, s.DeliveryCents, s.TotalCents,
			order.DeliveryDaysMin, order.DeliveryDaysMax, order.CreatedAt,
		); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, item := range s.Items {
			batch.Queue(insertOrderItem, order.ID, i, item.SKU, item.Name, item.Quantity, item.UnitPriceCents)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Conflict("order.create", "order already exists")
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

const selectOrder = `
SELECT id, order_number, payment_method,
       cep, street, street_number, complement, district, city, state,
       subtotal_cents, delivery_cents, total_cents,
       delivery_days_min, delivery_days_max, created_at
FROM orders
WHERE id = $1`

const selectOrderItems = `
SELECT sku, name, quantity, unit_price_cents
FROM order_items
WHERE order_id = $1
ORDER BY position`

// GetOrder loads an order and its items.
func (r *OrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var (
		o             domain.Order
		paymentMethod string
	)
	err := r.pool.QueryRow(ctx, selectOrder, id).Scan(
		&o.ID, &o.Number, &paymentMethod,
		&o.Address.CEP, &o.Address.Street, &o.Address.Number, &o.Address.Complement,
		&o.Address.District, &o.Address.City, &o.Address.State,
		&o.Summary.SubtotalCents, &o.Summary.DeliveryCents, &o.Summary.TotalCents,
		&o.DeliveryDaysMin, &o.DeliveryDaysMax, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	o.PaymentMethod = domain.PaymentMethod(paymentMethod)

	rows, err := r.pool.Query(ctx, selectOrderItems, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CartItem, error) {
		var item domain.CartItem
		err := row.Scan(&item.SKU, &item.Name, &item.Quantity, &item.UnitPriceCents)
		return item, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan order items: %w", err)
	}

	o.Summary.Items = items
	for _, item := range items {
		o.Summary.ItemCount += item.Quantity
	}
	return &o, nil
}
