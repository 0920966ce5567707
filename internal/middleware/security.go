package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// SecurityHeadersConfig lists the response headers every storefront page
// carries. Empty values are not sent.
type SecurityHeadersConfig struct {
	// ContentSecurityPolicy directives, joined with "; ".
	ContentSecurityPolicy []string
	FrameOptions          string
	ReferrerPolicy        string
	PermissionsPolicy     string

	// HSTS is the Strict-Transport-Security max-age. Zero disables the
	// header, which is what local development over plain HTTP needs.
	HSTS time.Duration
}

// DefaultSecurityHeadersConfig allows the storefront's own script and
// stylesheets plus Google Fonts, and nothing else.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: []string{
			"default-src 'self'",
			"script-src 'self'",
			"style-src 'self' https://fonts.googleapis.com",
			"font-src https://fonts.gstatic.com",
			"img-src 'self' data:",
			"connect-src 'self'",
			"form-action 'self'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
		},
		FrameOptions:      "DENY",
		ReferrerPolicy:    "same-origin",
		PermissionsPolicy: "camera=(), microphone=(), geolocation=(), payment=()",
		HSTS:              365 * 24 * time.Hour,
	}
}

// SecurityHeaders sets the headers of config on every response. The header
// set is built once.
func SecurityHeaders(config SecurityHeadersConfig) func(http.Handler) http.Handler {
	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"Content-Security-Policy": strings.Join(config.ContentSecurityPolicy, "; "),
		"X-Frame-Options":         config.FrameOptions,
		"Referrer-Policy":         config.ReferrerPolicy,
		"Permissions-Policy":      config.PermissionsPolicy,
	}
	if config.HSTS > 0 {
		headers["Strict-Transport-Security"] = "max-age=" + strconv.Itoa(int(config.HSTS/time.Second)) + "; includeSubDomains"
	}
	for name, value := range headers {
		if value == "" {
			delete(headers, name)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for name, value := range headers {
				h.Set(name, value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
