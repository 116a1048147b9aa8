// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"spa-directory/internal/auth"
	"spa-directory/internal/logging"

	"github.com/go-chi/render"
)

type contextKey string

const (
	identityKey contextKey = "identity"
	tokenKey    contextKey = "bearer_token"
)

// IdentityFromContext returns the verified identity attached by BearerAuth.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	ident, ok := ctx.Value(identityKey).(auth.Identity)
	return ident, ok
}

// TokenFromContext returns the raw bearer token attached by BearerAuth.
// Logout needs it to invalidate the matching session row.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// BearerAuth verifies the Authorization bearer token and attaches the
// identity to the request context. Missing tokens get 401, invalid or
// expired ones 403, matching the original API contract.
func BearerAuth(verify func(string) (auth.Identity, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				unauthorized(w, r, http.StatusUnauthorized, "Access denied. No token provided.")
				return
			}

			ident, err := verify(token)
			if err != nil {
				logging.FromContext(r.Context()).Warn("auth: invalid token",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				unauthorized(w, r, http.StatusForbidden, "Invalid or expired token.")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, ident)
			ctx = context.WithValue(ctx, tokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated requests whose identity lacks the role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return RequireAnyRole(role)
}

// RequireAnyRole rejects authenticated requests whose identity has none of
// the given roles. Must run after BearerAuth.
func RequireAnyRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ident, ok := IdentityFromContext(r.Context())
			if !ok {
				unauthorized(w, r, http.StatusUnauthorized, "Authentication required.")
				return
			}

			for _, role := range roles {
				if ident.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logging.FromContext(r.Context()).Warn("auth: insufficient role",
				"path", r.URL.Path,
				"role", ident.Role,
				"required", strings.Join(roles, ","),
			)
			unauthorized(w, r, http.StatusForbidden, "Access denied. Required role: "+strings.Join(roles, ", "))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header, or "" when absent or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{
		"success": false,
		"message": message,
	})
}
