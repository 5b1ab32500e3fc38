package middleware

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/rubiogarciadental/iadental/internal/services/session"
	"github.com/rubiogarciadental/iadental/pkg/httpext"
)

type contextKey string

const surfaceSessionKey contextKey = "surfaceSession"

// RequireSession validates the surface cookie and stores its claims in the
// request context. Requests without a valid surface session are rejected.
func RequireSession(sessionService *session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := sessionService.ValidateSession(r)
			if err != nil {
				log.Warn().Err(err).Str("path", r.URL.Path).Msg("Surface session validation failed")
				httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if claims == nil {
				httpext.JsonError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), surfaceSessionKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the surface session claims stored by
// RequireSession, or nil when absent.
func ClaimsFromContext(ctx context.Context) *session.SessionClaims {
	claims, _ := ctx.Value(surfaceSessionKey).(*session.SessionClaims)
	return claims
}
