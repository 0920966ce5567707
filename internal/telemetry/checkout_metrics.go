package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CheckoutMetrics holds Prometheus metrics for the checkout funnel and the
// postal-code autofill.
type CheckoutMetrics struct {
	// Postal-code autofill
	LookupsTotal     *prometheus.CounterVec
	LookupLatency    *prometheus.HistogramVec
	LookupsTriggered prometheus.Counter
	LookupsDiscarded *prometheus.CounterVec
	FieldResets      prometheus.Counter

	// Checkout funnel
	CheckoutStarted   prometheus.Counter
	CheckoutRejected  *prometheus.CounterVec
	OrdersPlaced      *prometheus.CounterVec
	OrderValue        prometheus.Histogram
	EventsPublished   *prometheus.CounterVec
	SessionsActive    prometheus.Gauge
	SessionsExpired   prometheus.Counter
	CartItemsAdded    prometheus.Counter
}

// NewCheckoutMetrics creates and registers all checkout metrics with reg.
func NewCheckoutMetrics(namespace string, reg prometheus.Registerer) *CheckoutMetrics {
	if namespace == "" {
		namespace = "coffee_delivery"
	}

	factory := promauto.With(reg)
	subsystem := "checkout"

	return &CheckoutMetrics{
		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cep_lookups_total",
				Help:      "Upstream postal-code lookups by outcome",
			},
			[]string{"directory", "outcome"}, // outcome: found, not_found, error
		),
		LookupLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cep_lookup_duration_seconds",
				Help:      "Upstream postal-code lookup duration",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"directory"},
		),
		LookupsTriggered: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cep_lookups_triggered_total",
				Help:      "Lookups issued by address forms after a complete, changed CEP",
			},
		),
		LookupsDiscarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cep_lookups_discarded_total",
				Help:      "Lookup responses not applied to the form",
			},
			[]string{"reason"}, // reason: stale, error, closed
		),
		FieldResets: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "address_field_resets_total",
				Help:      "Times the derived address fields were cleared after a complete CEP was edited",
			},
		),
		CheckoutStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "started_total",
				Help:      "Checkout page views with a non-empty cart",
			},
		),
		CheckoutRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rejected_total",
				Help:      "Order submissions rejected before placement",
			},
			[]string{"reason"}, // reason: validation, empty_cart, payment_method
		),
		OrdersPlaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "orders_placed_total",
				Help:      "Orders placed by payment method",
			},
			[]string{"payment_method"},
		),
		OrderValue: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "order_value_cents",
				Help:      "Order totals in cents",
				Buckets:   []float64{1000, 2500, 5000, 10000, 25000, 50000},
			},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "events_published_total",
				Help:      "Order events published by outcome",
			},
			[]string{"outcome"},
		),
		SessionsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions_active",
				Help:      "Checkout sessions held in memory",
			},
		),
		SessionsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "sessions_expired_total",
				Help:      "Idle checkout sessions removed by the sweeper",
			},
		),
		CartItemsAdded: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cart_items_added_total",
				Help:      "Add-to-cart actions",
			},
		),
	}
}

// Global instance for easy access from handlers. Nil until
// InitCheckoutMetrics runs; callers must nil-check.
var Checkout *CheckoutMetrics

// InitCheckoutMetrics initializes the global checkout metrics instance on the
// default Prometheus registry.
func InitCheckoutMetrics(namespace string) *CheckoutMetrics {
	Checkout = NewCheckoutMetrics(namespace, prometheus.DefaultRegisterer)
	return Checkout
}
