// Package memory holds in-process implementations of the storage
// interfaces, used when no database is configured.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// OrderRepository keeps orders in a map. Orders are lost on restart.
type OrderRepository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]domain.Order
}

// Compile-time check that OrderRepository implements domain.OrderRepository.
var _ domain.OrderRepository = (*OrderRepository)(nil)

// NewOrderRepository creates an empty repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[uuid.UUID]domain.Order)}
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return domain.Conflict("order.create", "order already exists")
	}
	r.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	out := cloneOrder(order)
	return &out, nil
}

func cloneOrder(o domain.Order) domain.Order {
	o.Summary.Items = append([]domain.CartItem(nil), o.Summary.Items...)
	return o
}
