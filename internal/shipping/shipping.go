package shipping

import (
	"context"
	"time"
)

// Provider quotes delivery for an order.
// The storefront ships with FlatRateProvider; carrier integrations can
// implement the same interface.
type Provider interface {
	// GetRates returns available delivery options, cheapest first.
	GetRates(ctx context.Context, params RateParams) ([]Rate, error)
}

// RateParams contains parameters for calculating delivery rates.
type RateParams struct {
	Destination ShippingAddress
	ItemCount   int
}

// ShippingAddress is the part of the delivery address rates depend on.
type ShippingAddress struct {
	PostalCode string
	City       string
	State      string
}

// Rate represents a delivery option.
type Rate struct {
	RateID                string
	Carrier               string
	ServiceName           string
	ServiceCode           string
	CostCents             int64
	EstimatedDaysMin      int
	EstimatedDaysMax      int
	EstimatedDeliveryDate time.Time
}
