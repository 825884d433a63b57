// Package middleware provides HTTP middleware for the function endpoints.
package middleware

import "net/http"

// CORS headers match what browser clients of the kudos app expect when
// invoking the function endpoints cross-origin.
const (
	allowOrigin  = "*"
	allowHeaders = "authorization, x-client-info, apikey, content-type"
	allowMethods = "POST, OPTIONS"
)

// CORS sets permissive cross-origin headers on every response and answers
// OPTIONS preflight requests directly with 200 and an empty body, without
// invoking the wrapped handler. Preflight requests carry no credentials,
// so they bypass authentication by construction.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
		w.Header().Set("Access-Control-Allow-Methods", allowMethods)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
