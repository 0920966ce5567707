package storefront

import (
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/dukerupert/coffee-delivery/internal/middleware"
	"github.com/dukerupert/coffee-delivery/internal/session"
)

// StoreName is shown in the page header and title.
const StoreName = "Coffee Delivery"

// BaseTemplateData returns common data for all templates
func BaseTemplateData(r *http.Request) map[string]interface{} {
	data := map[string]interface{}{
		"StoreName": StoreName,
		"Year":      time.Now().Year(),
		"CSRFToken": middleware.GetCSRFToken(r.Context()),
		"CartCount": 0,
	}

	if sess := middleware.GetSession(r.Context()); sess != nil {
		count := 0
		for _, item := range sess.Cart.Items() {
			count += item.Quantity
		}
		data["CartCount"] = count
	}

	return data
}

// requireSession returns the visitor session. Routes are mounted behind
// middleware.WithSession, so a missing session is a wiring error.
func requireSession(r *http.Request) (*session.Session, error) {
	sess := middleware.GetSession(r.Context())
	if sess == nil {
		return nil, domain.Errorf(domain.EINTERNAL, "session.get", "no session in request context")
	}
	return sess, nil
}

// safeRedirect returns target when it is a local path, fallback otherwise.
func safeRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
