package middleware

import (
	"context"
	"net/http"

	"pigeon/internal/auth"
)

type contextKey string

const claimsKey contextKey = "claims"

// Auth verifies the token cookie and stores the resolved identity in
// the request context.
func Auth(resolver *auth.Resolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := resolver.FromRequest(r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFrom returns the identity attached by Auth, or nil.
func ClaimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(claimsKey).(*auth.Claims)
	return claims
}
