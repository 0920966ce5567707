package storefront

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/dukerupert/coffee-delivery/internal/handler"
	"github.com/dukerupert/coffee-delivery/internal/service"
)

// CartHandler handles all cart-related storefront routes. Form posts are
// answered with a redirect back to the page named by the "redirect" field;
// JSON clients get the updated summary.
type CartHandler struct {
	cartService service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

// Add handles POST /cart/items
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handler.BadRequestResponse(w, r, "Invalid form data")
		return
	}

	quantity := 1
	if q := r.FormValue("quantity"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			handler.ErrorResponse(w, r, service.ErrInvalidQuantity)
			return
		}
		quantity = n
	}

	sess, err := requireSession(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.cartService.AddItem(r.Context(), sess.Cart, r.FormValue("sku"), quantity)
	h.respond(w, r, summary, err, "/")
}

// Update handles POST /cart/items/{sku}
func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handler.BadRequestResponse(w, r, "Invalid form data")
		return
	}

	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		handler.ErrorResponse(w, r, service.ErrInvalidQuantity)
		return
	}

	sess, err := requireSession(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.cartService.UpdateItemQuantity(r.Context(), sess.Cart, r.PathValue("sku"), quantity)
	h.respond(w, r, summary, err, "/checkout")
}

// Remove handles POST /cart/items/{sku}/remove
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handler.BadRequestResponse(w, r, "Invalid form data")
		return
	}

	sess, err := requireSession(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.cartService.RemoveItem(r.Context(), sess.Cart, r.PathValue("sku"))
	h.respond(w, r, summary, err, "/checkout")
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, summary *domain.OrderSummary, err error, fallback string) {
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if handler.AcceptsJSON(r) {
		handler.JSON(w, http.StatusOK, summary)
		return
	}

	http.Redirect(w, r, safeRedirect(r.FormValue("redirect"), fallback), http.StatusSeeOther)
}
