package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/flocklink/flocklink/internal/httputil"
	"github.com/flocklink/flocklink/pkg/auth"
	"github.com/flocklink/flocklink/pkg/domain"
)

type contextKey string

// ClaimsKey is the context key for the verified session claims.
const ClaimsKey contextKey = "claims"

// tokenFromRequest checks the Authorization header first (API clients),
// then falls back to the session cookie (web clients).
func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	if token, ok := httputil.GetSessionTokenFromCookie(r); ok {
		return token
	}
	return ""
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		httputil.Error(w, http.StatusForbidden, "insufficient privileges")
	default:
		httputil.Error(w, http.StatusUnauthorized, "authentication required")
	}
}

// RequireRole creates middleware that authorizes the request against the
// route's minimum role. Unauthenticated and under-privileged callers are
// rejected before any handler logic runs, with distinct status codes.
func RequireRole(guard *auth.Guard, minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := guard.Authorize(tokenFromRequest(r), minRole)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoleSensitive is RequireRole plus a revocation check against the
// guard's denylist. Used on state-changing routes; plain reads stay
// lookup-free.
func RequireRoleSensitive(guard *auth.Guard, minRole domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := guard.AuthorizeSensitive(r.Context(), tokenFromRequest(r), minRole)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClaims extracts the session claims from the request context.
func GetClaims(ctx context.Context) (*auth.SessionClaims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*auth.SessionClaims)
	return claims, ok
}
