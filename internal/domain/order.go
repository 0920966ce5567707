package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PaymentMethod is how the customer intends to pay on delivery. It is shown
// on the confirmation page only; nothing is charged online.
type PaymentMethod string

const (
	PaymentCredit PaymentMethod = "credit"
	PaymentDebit  PaymentMethod = "debit"
	PaymentCash   PaymentMethod = "cash"
)

// Label returns the customer-facing name of the payment method.
func (p PaymentMethod) Label() string {
	switch p {
	case PaymentCredit:
		return "Cartão de Crédito"
	case PaymentDebit:
		return "Cartão de Débito"
	case PaymentCash:
		return "Dinheiro"
	}
	return string(p)
}

// Valid reports whether p is one of the accepted payment methods.
func (p PaymentMethod) Valid() bool {
	return p == PaymentCredit || p == PaymentDebit || p == PaymentCash
}

// Product is a catalog entry.
type Product struct {
	SKU         string
	Name        string
	Description string
	Tags        []string
	PriceCents  int64
	ImageURL    string
}

// CartItem is a line in a cart or a placed order.
type CartItem struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// LineTotalCents is quantity times unit price.
func (i CartItem) LineTotalCents() int64 {
	return int64(i.Quantity) * i.UnitPriceCents
}

// OrderSummary is the price breakdown shown next to the address form and on
// the confirmation page.
type OrderSummary struct {
	Items         []CartItem `json:"items"`
	ItemCount     int        `json:"item_count"`
	SubtotalCents int64      `json:"subtotal_cents"`
	DeliveryCents int64      `json:"delivery_cents"`
	TotalCents    int64      `json:"total_cents"`
}

// Order is a placed order.
type Order struct {
	ID              uuid.UUID     `json:"id"`
	Number          string        `json:"number"`
	Address         AddressForm   `json:"address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Summary         OrderSummary  `json:"summary"`
	DeliveryDaysMin int           `json:"delivery_days_min"`
	DeliveryDaysMax int           `json:"delivery_days_max"`
	CreatedAt       time.Time     `json:"created_at"`
}

// OrderRepository stores placed orders.
type OrderRepository interface {
	// CreateOrder persists order. ID and Number must already be set.
	CreateOrder(ctx context.Context, order *Order) error

	// GetOrder returns ErrOrderNotFound when no order has the given id.
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
}

var (
	// ErrCartEmpty is returned when checking out with no items.
	ErrCartEmpty = &Error{
		Code:    EINVALID,
		Message: "Your cart is empty",
	}

	// ErrUnknownProduct is returned for a SKU that is not in the catalog.
	ErrUnknownProduct = &Error{
		Code:    ENOTFOUND,
		Message: "Product not found",
	}

	// ErrOrderNotFound is returned when an order does not exist.
	ErrOrderNotFound = &Error{
		Code:    ENOTFOUND,
		Message: "Order not found",
	}
)
