package storefront

import (
	"net/http"

	"github.com/dukerupert/coffee-delivery/internal/handler"
	"github.com/dukerupert/coffee-delivery/internal/service"
)

// HomeHandler handles the storefront homepage
type HomeHandler struct {
	catalog     service.CatalogService
	cartService service.CartService
	renderer    *handler.Renderer
}

// NewHomeHandler creates a new home handler
func NewHomeHandler(catalog service.CatalogService, cartService service.CartService, renderer *handler.Renderer) *HomeHandler {
	return &HomeHandler{
		catalog:     catalog,
		cartService: cartService,
		renderer:    renderer,
	}
}

// ServeHTTP handles GET /
func (h *HomeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, err := requireSession(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		handler.InternalErrorResponse(w, r, err)
		return
	}

	summary, err := h.cartService.GetCartSummary(ctx, sess.Cart)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	quantities := make(map[string]int, len(summary.Items))
	for _, item := range summary.Items {
		quantities[item.SKU] = item.Quantity
	}

	data := BaseTemplateData(r)
	data["Products"] = products
	data["Summary"] = summary
	data["InCart"] = quantities

	h.renderer.RenderHTTP(w, http.StatusOK, "home", data)
}
