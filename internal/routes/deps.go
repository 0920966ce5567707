package routes

import (
	"net/http"

	"github.com/dukerupert/coffee-delivery/internal/handler/storefront"
	"github.com/dukerupert/coffee-delivery/internal/router"
)

// StorefrontDeps contains dependencies for storefront routes
type StorefrontDeps struct {
	// Home (catalog)
	HomeHandler http.Handler

	// Cart
	CartHandler *storefront.CartHandler

	// Checkout (address form, CEP autofill, order placement)
	CheckoutHandler *storefront.CheckoutHandler

	// Order confirmation
	OrderConfirmationHandler http.Handler

	// Generated theme stylesheet
	StylesheetHandler http.HandlerFunc

	// LookupLimiter guards the routes that reach the postal-code directory.
	// Nil leaves them unlimited.
	LookupLimiter router.Middleware
}
