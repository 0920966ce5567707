// Package events publishes checkout events to the message bus.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// SubjectOrderPlaced is the default subject for placed orders.
const SubjectOrderPlaced = "checkout.order.placed"

// Publisher announces domain events.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, order *domain.Order) error
}

// OrderPlaced is the message body published when an order is placed.
type OrderPlaced struct {
	EventID    uuid.UUID     `json:"event_id"`
	OccurredAt time.Time     `json:"occurred_at"`
	Order      *domain.Order `json:"order"`
}

// NopPublisher drops every event. Used when no message bus is configured.
type NopPublisher struct{}

// PublishOrderPlaced does nothing.
func (NopPublisher) PublishOrderPlaced(context.Context, *domain.Order) error {
	return nil
}
