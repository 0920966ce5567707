package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/coffee-delivery/internal/cookie"
	"github.com/dukerupert/coffee-delivery/internal/session"
)

const (
	// SessionContextKey is the context key for the visitor session
	SessionContextKey contextKey = "session"
)

// WithSession loads the visitor's session from the session cookie, starting
// a new one (and setting the cookie) when there is none or it expired.
// The request logger gains a session_id attribute.
func WithSession(store *session.Store, cookies *cookie.Config, ttl time.Duration) func(http.Handler) http.Handler {
	maxAge := int(ttl / time.Second)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := cookie.Get(r, cookie.SessionCookieName)
			sess, created := store.GetOrCreate(id)
			if created {
				cookies.SetSession(w, cookie.SessionCookieName, sess.ID, maxAge)
			}

			logger := GetLogger(r.Context()).With(slog.String("session_id", sess.ID))
			ctx := WithLogger(r.Context(), logger)
			ctx = context.WithValue(ctx, SessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSession retrieves the visitor session from the context, or nil if
// WithSession did not run.
func GetSession(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(SessionContextKey).(*session.Session); ok {
		return s
	}
	return nil
}
