// Package middleware provides HTTP middlewares for role checks and logging.
package middleware

import (
	"context"
	"net/http"
	"slices"
)

type ctxKey string

const roleKey ctxKey = "role"

// RequireRole is a middleware that enforces a role header.
//
// Requests without the header, or with a value outside roles, are rejected
// with 403. The accepted role is stored in the request context.
func RequireRole(header string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := r.Header.Get(header)
			if role == "" || !slices.Contains(roles, role) {
				writeForbidden(w)
				return
			}
			ctx := context.WithValue(r.Context(), roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRoleFromContext returns the role accepted by RequireRole, or an
// empty string.
func GetRoleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(roleKey).(string); ok {
		return s
	}
	return ""
}

func writeForbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"message":"forbidden"}` + "\n"))
}
