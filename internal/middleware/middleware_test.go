package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/coffee-delivery/internal/address"
	"github.com/dukerupert/coffee-delivery/internal/cookie"
	"github.com/dukerupert/coffee-delivery/internal/domain"
	"github.com/dukerupert/coffee-delivery/internal/session"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// =============================================================================
// REQUEST ID
// =============================================================================

func TestRequestID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{name: "generated", incoming: "", keep: false},
		{name: "propagated", incoming: "lb-1234", keep: true},
		{name: "control characters", incoming: "abc\ndef", keep: false},
		{name: "too long", incoming: strings.Repeat("a", maxRequestIDLength+1), keep: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
			if tt.keep {
				assert.Equal(t, tt.incoming, seen)
			} else {
				assert.NotEqual(t, tt.incoming, seen)
			}
		})
	}
}

// =============================================================================
// LOGGER
// =============================================================================

func TestWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestID(WithClientIP(false)(WithRequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		GetLogger(r.Context()).Info("hello")
	}))))

	req := httptest.NewRequest(http.MethodPost, "/checkout/cep", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "POST", entry["method"])
	assert.Equal(t, "/checkout/cep", entry["path"])
	assert.Equal(t, "203.0.113.7", entry["client_ip"])
	assert.NotEmpty(t, entry["request_id"])
}

func TestGetLogger_Fallback(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.Same(t, fallback, GetLogger(context.Background(), fallback))
	assert.Same(t, slog.Default(), GetLogger(context.Background()))
}

// =============================================================================
// CLIENT IP
// =============================================================================

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		trustProxy bool
		headers    map[string]string
		want       string
	}{
		{name: "remote addr", want: "198.51.100.1"},
		{name: "xff ignored without trust", headers: map[string]string{"X-Forwarded-For": "203.0.113.9"}, want: "198.51.100.1"},
		{name: "xff first entry", trustProxy: true, headers: map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, want: "203.0.113.9"},
		{name: "xff garbage falls through", trustProxy: true, headers: map[string]string{"X-Forwarded-For": "not-an-ip"}, want: "198.51.100.1"},
		{name: "x-real-ip", trustProxy: true, headers: map[string]string{"X-Real-IP": "2001:db8::1"}, want: "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "198.51.100.1:4242"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req, tt.trustProxy))
		})
	}
}

// =============================================================================
// LIMITS
// =============================================================================

func TestMaxBodySize(t *testing.T) {
	handler := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "too big", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader("cep=1")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader("cep=01310930")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// =============================================================================
// RATE LIMIT
// =============================================================================

func TestRateLimiter(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 1, BurstSize: 2, IdleTTL: time.Minute}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rl.now = func() time.Time { return now }

	handler := rl.Middleware(okHandler)
	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/cep/01310930", nil)
		req.RemoteAddr = ip + ":1000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("203.0.113.1"))
	assert.Equal(t, http.StatusOK, call("203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("203.0.113.1"))
	assert.Equal(t, http.StatusOK, call("203.0.113.2"), "limits are per client")

	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, call("203.0.113.1"), "a token refills after a second")

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, rl.Cleanup())
}

func TestRateLimiter_JSONError(t *testing.T) {
	rl := NewRateLimiter(RateLimiterConfig{RequestsPerSecond: 0, BurstSize: 0}, nil)

	rec := httptest.NewRecorder()
	rl.Middleware(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cep/01310930", nil))

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), `"code":"rate_limit"`)
}

// =============================================================================
// CSRF
// =============================================================================

func TestCSRF(t *testing.T) {
	store := session.NewStore(address.NewMockDirectory(), time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(store.Close)
	sess := store.Create()

	var token string
	handler := CSRF(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = GetCSRFToken(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	withSession := func(req *http.Request) *http.Request {
		return req.WithContext(context.WithValue(req.Context(), SessionContextKey, sess))
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, withSession(httptest.NewRequest(http.MethodGet, "/checkout", nil)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, sess.CSRFToken, token)

	tests := []struct {
		name   string
		header string
		form   string
		want   int
	}{
		{name: "missing token", want: http.StatusForbidden},
		{name: "header token", header: sess.CSRFToken, want: http.StatusOK},
		{name: "form token", form: "csrf_token=" + sess.CSRFToken, want: http.StatusOK},
		{name: "forged header", header: "forged", want: http.StatusForbidden},
		{name: "token of another session", header: store.Create().CSRFToken, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/checkout/cep", strings.NewReader(tt.form))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, withSession(req))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	t.Run("json rejection", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/checkout/cep", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, withSession(req))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), `"code":"forbidden"`)
	})

	t.Run("no session", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checkout", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

// =============================================================================
// SECURITY HEADERS
// =============================================================================

func TestSecurityHeaders(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig()
	rec := httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	h := rec.Header()
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "script-src 'self'; style-src")
	assert.Equal(t, "max-age=31536000; includeSubDomains", h.Get("Strict-Transport-Security"))

	cfg.HSTS = 0
	cfg.FrameOptions = ""
	rec = httptest.NewRecorder()
	SecurityHeaders(cfg)(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
	_, sent := rec.Header()["X-Frame-Options"]
	assert.False(t, sent)
}

// =============================================================================
// SESSION
// =============================================================================

func TestWithSession(t *testing.T) {
	store := session.NewStore(address.NewMockDirectory(), time.Hour, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(store.Close)

	var seen *session.Session
	handler := WithSession(store, cookie.NewConfig("", false), time.Hour)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetSession(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, seen)
	first := seen

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, cookie.SessionCookieName, cookies[0].Name)
	assert.Equal(t, first.ID, cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	// The cookie brings the visitor back to the same session.
	req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Same(t, first, seen)
	assert.Empty(t, rec.Result().Cookies())
}

func TestGetSession_Missing(t *testing.T) {
	assert.Nil(t, GetSession(context.Background()))
}

// =============================================================================
// ERRORS
// =============================================================================

func TestRespondWithError(t *testing.T) {
	t.Run("plain text", func(t *testing.T) {
		rec := httptest.NewRecorder()
		respondTooLarge(rec, httptest.NewRequest(http.MethodPost, "/checkout", nil), "Request body too large")
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "Request body too large\n", rec.Body.String())
	})

	t.Run("internal details stay in the log", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/cep/01310100", nil)
		rec := httptest.NewRecorder()
		respondInternalError(rec, req, errors.New("dial tcp 10.0.0.5:5432: refused"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		var body map[string]map[string]string
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, domain.EINTERNAL, body["error"]["code"])
		assert.NotContains(t, body["error"]["message"], "10.0.0.5")
	})
}
