package storefront

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/coffee-delivery/internal/address"
	"github.com/dukerupert/coffee-delivery/internal/cep"
	"github.com/dukerupert/coffee-delivery/internal/checkout"
	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/dukerupert/coffee-delivery/internal/form"
	"github.com/dukerupert/coffee-delivery/internal/handler"
	"github.com/dukerupert/coffee-delivery/internal/middleware"
	"github.com/dukerupert/coffee-delivery/internal/service"
	"github.com/dukerupert/coffee-delivery/internal/session"
	"github.com/dukerupert/coffee-delivery/internal/telemetry"
)

// DefaultSettleTimeout bounds how long a CEP change waits for its lookup.
const DefaultSettleTimeout = 3 * time.Second

// PaymentMethods are offered on the checkout page, in display order.
var PaymentMethods = []domain.PaymentMethod{
	domain.PaymentCredit,
	domain.PaymentDebit,
	domain.PaymentCash,
}

// CheckoutHandler handles all checkout-related storefront routes
type CheckoutHandler struct {
	renderer      *handler.Renderer
	cartService   service.CartService
	orderService  service.OrderService
	store         *session.Store
	directory     address.Directory
	settleTimeout time.Duration
}

// NewCheckoutHandler creates a new checkout handler. settleTimeout caps the
// wait for an address lookup on POST /checkout/cep and POST /checkout; zero
// means DefaultSettleTimeout.
func NewCheckoutHandler(
	renderer *handler.Renderer,
	cartService service.CartService,
	orderService service.OrderService,
	store *session.Store,
	directory address.Directory,
	settleTimeout time.Duration,
) *CheckoutHandler {
	if settleTimeout <= 0 {
		settleTimeout = DefaultSettleTimeout
	}
	return &CheckoutHandler{
		renderer:      renderer,
		cartService:   cartService,
		orderService:  orderService,
		store:         store,
		directory:     directory,
		settleTimeout: settleTimeout,
	}
}

// FieldView is one address input as the template renders it.
type FieldView struct {
	Name      string
	Value     string
	Rules     form.Rules
	Error     string
	Autofocus bool
}

// AddressSnapshot is the JSON document returned after a CEP change. The
// page script copies it into the inputs and focuses Focus when set.
type AddressSnapshot struct {
	CEP        string `json:"cep"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	Focus      string `json:"focus,omitempty"`
	Phase      string `json:"phase"`
	Pending    bool   `json:"pending"`
	Rejected   bool   `json:"rejected,omitempty"`

	// Stale is set when a newer edit was already applied; the snapshot
	// reflects that edit, not this request's.
	Stale bool `json:"stale,omitempty"`
}

// LookupResponse is the body of GET /api/cep/{cep}.
type LookupResponse struct {
	CEP      string `json:"cep"`
	Street   string `json:"street"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
}

// Page handles GET /checkout
func (h *CheckoutHandler) Page(w http.ResponseWriter, r *http.Request) {
	sess, err := requireSession(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	summary, err := h.cartService.GetCartSummary(r.Context(), sess.Cart)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	if len(summary.Items) == 0 {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if telemetry.Checkout != nil {
		telemetry.Checkout.CheckoutStarted.Inc()
	}

	h.renderPage(w, r, http.StatusOK, sess, summary, nil, "")
}

// CEP handles POST /checkout/cep. It applies one edit of the postal-code
// field, waits for the lookup it may have started and returns the form.
// The page script numbers its edits in the seq field so a keystroke whose
// request arrives late cannot undo a newer one.
func (h *CheckoutHandler) CEP(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handler.BadRequestResponse(w, r, "Invalid form data")
		return
	}

	sess, err := requireSession(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	seq, err := strconv.ParseUint(r.FormValue("seq"), 10, 64)
	if err != nil {
		seq = 0
	}

	f, ctrl := sess.Checkout()
	in, applied := ctrl.ChangeSeq(seq, r.FormValue("cep"))
	if !applied {
		snap := snapshot(f, ctrl, false)
		snap.Stale = true
		handler.JSON(w, http.StatusOK, snap)
		return
	}
	h.settle(r.Context(), ctrl)

	snap := snapshot(f, ctrl, true)
	snap.Rejected = in.Rejected
	handler.JSON(w, http.StatusOK, snap)
}

// Lookup handles GET /api/cep/{cep}
func (h *CheckoutHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	const op = "cep.lookup"
	code := r.PathValue("cep")

	result, err := h.directory.Lookup(r.Context(), code)
	if err != nil {
		if errors.Is(err, address.ErrInvalidCEP) {
			handler.ErrorResponse(w, r, domain.Invalid(op, "CEP must have exactly 8 digits"))
			return
		}
		handler.ErrorResponse(w, r, domain.Unavailable(err, op, "Postal code lookup is unavailable"))
		return
	}

	digits, _ := cep.Normalize(code)
	if result.NotFound {
		handler.ErrorResponse(w, r, domain.NotFound(op, "CEP", cep.Mask(digits)))
		return
	}

	handler.JSON(w, http.StatusOK, LookupResponse{
		CEP:      cep.Mask(digits),
		Street:   result.Street,
		District: result.District,
		City:     result.City,
		State:    result.State,
	})
}

// PlaceOrder handles POST /checkout
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := middleware.GetLogger(ctx)

	if err := r.ParseForm(); err != nil {
		handler.BadRequestResponse(w, r, "Invalid form data")
		return
	}

	sess, err := requireSession(r)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	f, ctrl := sess.Checkout()

	// The CEP goes through the controller so a browser without the page
	// script still gets its lookup.
	if _, ok := r.PostForm[string(form.FieldCEP)]; ok {
		ctrl.Change(r.PostFormValue(string(form.FieldCEP)))
		h.settle(ctx, ctrl)
	}

	// Browsers post every input, so the derived ones arrive blank when the
	// page script never filled them; blanks must not erase a resolved address.
	resolved := ctrl.Phase() == checkout.PhaseCompleteResolved
	submitted := make(map[form.Field]string)
	for _, field := range f.Fields() {
		vs, ok := r.PostForm[string(field)]
		if !ok || len(vs) == 0 {
			continue
		}
		if resolved && form.IsDerived(field) && strings.TrimSpace(vs[0]) == "" {
			continue
		}
		submitted[field] = vs[0]
	}
	f.Fill(submitted, form.FieldCEP)

	paymentMethod := domain.PaymentMethod(r.PostFormValue("payment_method"))
	order, err := h.orderService.PlaceOrder(ctx, service.PlaceOrderParams{
		Address:       f.Address(),
		PaymentMethod: paymentMethod,
		Items:         sess.Cart.Items(),
	})
	if err != nil {
		if domain.IsValidationError(err) && !handler.AcceptsJSON(r) {
			summary, qerr := h.cartService.GetCartSummary(ctx, sess.Cart)
			if qerr != nil {
				handler.ErrorResponse(w, r, qerr)
				return
			}
			h.renderPage(w, r, http.StatusBadRequest, sess, summary, domain.GetValidationFields(err), paymentMethod)
			return
		}
		if errors.Is(err, service.ErrEmptyCart) && !handler.AcceptsJSON(r) {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	h.store.ResetCheckout(sess)
	sess.Cart.Clear()

	logger.Info("checkout completed", "order_id", order.ID, "order_number", order.Number)
	http.Redirect(w, r, "/order-confirmation/"+order.ID.String(), http.StatusSeeOther)
}

// settle waits for the controller's lookup, bounded by settleTimeout and the
// request. A lookup still running afterwards keeps going; the next request
// sees its result.
func (h *CheckoutHandler) settle(ctx context.Context, ctrl *checkout.AddressController) {
	ctx, cancel := context.WithTimeout(ctx, h.settleTimeout)
	defer cancel()
	if err := ctrl.Settle(ctx); err != nil {
		middleware.GetLogger(ctx).Debug("cep lookup still pending", "error", err)
	}
}

func (h *CheckoutHandler) renderPage(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	sess *session.Session,
	summary *domain.OrderSummary,
	fieldErrors map[string]string,
	paymentMethod domain.PaymentMethod,
) {
	f, ctrl := sess.Checkout()
	focus := f.TakeFocus()

	values := f.Values()
	fields := make(map[string]FieldView)
	for _, name := range f.Fields() {
		fields[string(name)] = FieldView{
			Name:      string(name),
			Value:     values[name],
			Rules:     f.Rules(name),
			Error:     fieldErrors[string(name)],
			Autofocus: name == focus,
		}
	}

	data := BaseTemplateData(r)
	data["Summary"] = summary
	data["Fields"] = fields
	data["Phase"] = ctrl.Phase().String()
	data["PaymentMethods"] = PaymentMethods
	data["PaymentMethod"] = paymentMethod
	data["PaymentError"] = fieldErrors["payment_method"]
	data["HasErrors"] = len(fieldErrors) > 0

	h.renderer.RenderHTTP(w, status, "checkout", data)
}

// snapshot copies the form for the page script. takeFocus consumes the focus
// mark; a stale response leaves it for the request that owns it.
func snapshot(f *form.State, ctrl *checkout.AddressController, takeFocus bool) AddressSnapshot {
	values := f.Values()
	var focus form.Field
	if takeFocus {
		focus = f.TakeFocus()
	}
	return AddressSnapshot{
		CEP:        values[form.FieldCEP],
		Street:     values[form.FieldStreet],
		Number:     values[form.FieldNumber],
		Complement: values[form.FieldComplement],
		District:   values[form.FieldDistrict],
		City:       values[form.FieldCity],
		State:      values[form.FieldState],
		Focus:      string(focus),
		Phase:      ctrl.Phase().String(),
		Pending:    ctrl.Pending(),
	}
}
