package storefront

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/dukerupert/coffee-delivery/internal/theme"
)

// StylesheetHandler serves the stylesheet generated from t. The CSS is
// rendered once; clients revalidate with the ETag.
func StylesheetHandler(t theme.Theme) http.HandlerFunc {
	css := []byte(t.Stylesheet())
	sum := sha256.Sum256(css)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "public, max-age=300")
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		_, _ = w.Write(css)
	}
}
