package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/coffee-delivery/internal/address"
	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/dukerupert/coffee-delivery/internal/events"
	"github.com/dukerupert/coffee-delivery/internal/shipping"
	"github.com/dukerupert/coffee-delivery/internal/telemetry"
)

// OrderService provides business logic for order operations
type OrderService interface {
	// PlaceOrder validates the address and payment method, prices the items
	// and stores the order. A failure to announce the order is logged and
	// does not fail the call.
	PlaceOrder(ctx context.Context, params PlaceOrderParams) (*domain.Order, error)

	// GetOrder retrieves a single order by ID
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// PlaceOrderParams is what the checkout form submits.
type PlaceOrderParams struct {
	Address       domain.AddressForm
	PaymentMethod domain.PaymentMethod
	Items         []domain.CartItem
}

type orderService struct {
	repo             domain.OrderRepository
	validator        address.Validator
	shippingProvider shipping.Provider
	publisher        events.Publisher
	logger           *slog.Logger
	now              func() time.Time
}

// NewOrderService creates a new OrderService instance
func NewOrderService(
	repo domain.OrderRepository,
	validator address.Validator,
	shippingProvider shipping.Provider,
	publisher events.Publisher,
	logger *slog.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &orderService{
		repo:             repo,
		validator:        validator,
		shippingProvider: shippingProvider,
		publisher:        publisher,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, params PlaceOrderParams) (*domain.Order, error) {
	const op = "order.place"

	if len(params.Items) == 0 {
		s.reject("empty_cart")
		return nil, ErrEmptyCart
	}

	result, err := s.validator.Validate(ctx, params.Address)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to validate address")
	}
	verr := result.Err(op)
	if !params.PaymentMethod.Valid() {
		verr = domain.AddFieldError(verr, op, "payment_method", "Choose a payment method")
	}
	if verr != nil {
		s.reject("validation")
		return nil, verr
	}

	summary, rate, err := quote(ctx, s.shippingProvider, params.Items, shipping.ShippingAddress{
		PostalCode: params.Address.CEP,
		City:       params.Address.City,
		State:      params.Address.State,
	})
	if err != nil {
		return nil, domain.Unavailable(err, op, "Delivery is unavailable right now")
	}

	id := uuid.New()
	order := &domain.Order{
		ID:              id,
		Number:          orderNumber(id),
		Address:         params.Address,
		PaymentMethod:   params.PaymentMethod,
		Summary:         *summary,
		DeliveryDaysMin: rate.EstimatedDaysMin,
		DeliveryDaysMax: rate.EstimatedDaysMax,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, domain.Internal(err, op, "failed to save order")
	}

	s.logger.Info("order placed",
		"order_id", order.ID,
		"order_number", order.Number,
		"payment_method", order.PaymentMethod,
		"total_cents", order.Summary.TotalCents,
	)
	if telemetry.Checkout != nil {
		telemetry.Checkout.OrdersPlaced.WithLabelValues(string(order.PaymentMethod)).Inc()
		telemetry.Checkout.OrderValue.Observe(float64(order.Summary.TotalCents))
	}

	s.publish(ctx, order)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to load order")
	}
	return order, nil
}

func (s *orderService) publish(ctx context.Context, order *domain.Order) {
	outcome := "ok"
	if err := s.publisher.PublishOrderPlaced(ctx, order); err != nil {
		outcome = "error"
		s.logger.Warn("failed to publish order event", "order_id", order.ID, "error", err)
		telemetry.CaptureError(ctx, err, map[string]interface{}{"order_number": order.Number})
	}
	if telemetry.Checkout != nil {
		telemetry.Checkout.EventsPublished.WithLabelValues(outcome).Inc()
	}
}

func (s *orderService) reject(reason string) {
	if telemetry.Checkout != nil {
		telemetry.Checkout.CheckoutRejected.WithLabelValues(reason).Inc()
	}
}

// orderNumber derives the customer-facing order number from the order id,
// e.g. CD-7B0A4C1E.
func orderNumber(id uuid.UUID) string {
	return "CD-" + strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
