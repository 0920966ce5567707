package routes

import (
	"github.com/dukerupert/coffee-delivery/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing storefront routes.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Home page
	r.Get("/{$}", deps.HomeHandler.ServeHTTP)

	// Shopping cart
	r.Post("/cart/items", deps.CartHandler.Add)
	r.Post("/cart/items/{sku}", deps.CartHandler.Update)
	r.Post("/cart/items/{sku}/remove", deps.CartHandler.Remove)

	// Checkout flow
	r.Get("/checkout", deps.CheckoutHandler.Page)
	r.Post("/checkout", deps.CheckoutHandler.PlaceOrder)
	r.Get("/order-confirmation/{id}", deps.OrderConfirmationHandler.ServeHTTP)

	// Postal-code autofill (every keystroke may reach the directory)
	lookup := r
	if deps.LookupLimiter != nil {
		lookup = r.Group(deps.LookupLimiter)
	}
	lookup.Post("/checkout/cep", deps.CheckoutHandler.CEP)
	lookup.Get("/api/cep/{cep}", deps.CheckoutHandler.Lookup)

	// Theme stylesheet; registered before the static file tree so the more
	// specific pattern wins.
	r.Get("/static/theme.css", deps.StylesheetHandler)
}
