// Package auth guards the function endpoints with a shared service token.
// The endpoints are invoked by the scheduler and by trusted backend clients,
// never by end users, so a single bearer credential is sufficient.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"kudos-dispatch/internal/handler/http/respond"
)

// ServiceToken returns middleware that requires "Authorization: Bearer <token>"
// on every request. The comparison is constant-time so response timing leaks
// nothing about the expected token.
//
// An empty expected token disables the endpoint entirely rather than leaving
// it open: misconfiguration must fail closed.
func ServiceToken(token string) func(http.Handler) http.Handler {
	expected := []byte(token)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(expected) == 0 {
				respond.SafeError(w, http.StatusUnauthorized,
					errors.New("a service token is required but none is configured"))
				return
			}
			presented, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				respond.SafeError(w, http.StatusUnauthorized, err)
				return
			}
			if subtle.ConstantTimeCompare([]byte(presented), expected) != 1 {
				respond.SafeError(w, http.StatusUnauthorized,
					errors.New("invalid service token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(authz string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		return "", errors.New("a bearer token is required")
	}
	tok := strings.TrimPrefix(authz, prefix)
	if tok == "" {
		return "", errors.New("a bearer token is required")
	}
	return tok, nil
}
