package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
)

const (
	// CSRFHeaderName carries the token on fetch requests from the page script.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormFieldName carries the token on plain form posts.
	CSRFFormFieldName = "csrf_token"

	// CSRFContextKey is the context key for the CSRF token
	CSRFContextKey contextKey = "csrf_token"
)

// CSRF guards state-changing requests with the token issued to the visitor's
// session. It must run after WithSession. Safe methods pass and get the token
// in their context so templates can embed it; every other method must echo
// the token in the X-CSRF-Token header or the csrf_token form field.
func CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := GetSession(r.Context())
		if sess == nil {
			respondInternalError(w, r, errNoSession)
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), CSRFContextKey, sess.CSRFToken))

		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		if !tokensEqual(sess.CSRFToken, submittedCSRFToken(r)) {
			GetLogger(r.Context()).Warn("csrf token mismatch", "path", r.URL.Path)
			respondWithError(w, r, errCSRFMismatch)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetCSRFToken returns the token CSRF put in ctx. Templates render it in a
// hidden csrf_token input and in the <meta name="csrf-token"> tag the
// checkout script reads.
func GetCSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(CSRFContextKey).(string)
	return token
}

func submittedCSRFToken(r *http.Request) string {
	if token := r.Header.Get(CSRFHeaderName); token != "" {
		return token
	}
	// PostFormValue parses the body once; handlers reuse r.PostForm.
	return r.PostFormValue(CSRFFormFieldName)
}

func tokensEqual(want, got string) bool {
	return want != "" && got != "" && subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
