package middleware

import (
	"net/http"
	"strings"
)

// CORS header values. The API is consumed by browser clients on the
// marketing site and by third-party beacon scripts, so all origins are
// permitted. Credentials are never allowed together with the wildcard.
var (
	corsAllowMethods = strings.Join([]string{
		http.MethodGet, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodOptions,
	}, ", ")
	corsAllowHeaders = strings.Join([]string{
		"Content-Type", "Authorization", "X-Project-ID", "X-Request-ID",
	}, ", ")
)

// CORS returns a middleware that answers cross-origin requests permissively.
// Preflight OPTIONS requests are answered with an empty body.
func CORS() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
