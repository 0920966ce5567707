package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/checkout", "/checkout"},
		{"/checkout/cep", "/checkout/cep"},
		{"/static/theme.css", "/static/*"},
		{"/static/js/checkout.js", "/static/*"},
		{"/order-confirmation/7b0a4c1e-7c7f-4e0b-9d7e-2b3c4d5e6f70", "/order-confirmation/:id"},
		{"/api/cep/01310930", "/api/cep/:cep"},
		{"/cart/items", "/cart/items"},
		{"/cart/items/latte", "/cart/items/:sku"},
		{"/cart/items/latte/remove", "/cart/items/:sku/remove"},
		{"/wp-login.php", "other"},
		{"/api/cep/01310930/extra", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizePath(tt.path))
		})
	}
}

func TestMetrics_Middleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cep/01310930", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	count := testutil.ToFloat64(m.requestsTotal.WithLabelValues(http.MethodGet, "/api/cep/:cep", "418"))
	assert.Equal(t, float64(1), count)

	// The handler exposes what was registered on reg.
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_http_requests_total{method="GET",path="/api/cep/:cep",status="418"} 1`)
}
