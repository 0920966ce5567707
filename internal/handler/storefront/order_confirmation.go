package storefront

import (
	"net/http"

	"github.com/dukerupert/coffee-delivery/internal/handler"
	"github.com/dukerupert/coffee-delivery/internal/service"
)

// OrderConfirmationHandler displays the order confirmation page
type OrderConfirmationHandler struct {
	renderer     *handler.Renderer
	orderService service.OrderService
}

// NewOrderConfirmationHandler creates a new order confirmation handler
func NewOrderConfirmationHandler(renderer *handler.Renderer, orderService service.OrderService) *OrderConfirmationHandler {
	return &OrderConfirmationHandler{
		renderer:     renderer,
		orderService: orderService,
	}
}

// ServeHTTP handles GET /order-confirmation/{id}
func (h *OrderConfirmationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if handler.AcceptsJSON(r) {
		handler.JSON(w, http.StatusOK, order)
		return
	}

	data := BaseTemplateData(r)
	data["Order"] = order
	data["AddressLine"] = order.Address.SingleLine()
	data["Locality"] = order.Address.Locality()
	data["PaymentLabel"] = order.PaymentMethod.Label()

	h.renderer.RenderHTTP(w, http.StatusOK, "order-confirmation", data)
}
