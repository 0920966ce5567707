package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dukerupert/coffee-delivery/internal/domain"
)

// contextKey is the type of every context key set by this package.
type contextKey string

// Rejections raised by middleware are written here rather than through
// handler.ErrorResponse, which imports this package for GetLogger. The
// response shape is the same.

var (
	errCSRFMismatch  = domain.Errorf(domain.EFORBIDDEN, "csrf.verify", "The form expired. Reload the page and try again")
	errTooManyLookup = domain.Errorf(domain.ERATELIMIT, "ratelimit.allow", "Too many requests. Slow down and try again")
	errNoSession     = errors.New("csrf: no session in request context")
)

func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := domain.HTTPStatus(code)

	attrs := []any{"error", err.Error(), "code", code, "status", status}
	logger := GetLogger(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request rejected", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	message := domain.ErrorMessage(err)
	if !acceptsJSON(r) {
		http.Error(w, message, status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}

func respondInternalError(w http.ResponseWriter, r *http.Request, err error) {
	respondWithError(w, r, domain.Internal(err, "", "An unexpected error occurred"))
}

func respondTooLarge(w http.ResponseWriter, r *http.Request, message string) {
	respondWithError(w, r, domain.Errorf(domain.ETOOLARGE, "", "%s", message))
}

// acceptsJSON matches handler.AcceptsJSON for the requests middleware sees:
// the page script sends Accept: application/json, API routes live under
// /api/.
func acceptsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
