package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/isdelr/pulse-be/internal/api/respond"
	"github.com/rs/zerolog/log"
)

// APIKeyHeader carries the shared secret for internal callers.
const APIKeyHeader = "X-API-KEY"

type contextKey string

const identityKey = contextKey("identity")

// Resolver turns a bearer token into the caller's identity.
type Resolver interface {
	ResolveCurrentUser(tokenStr string) (Identity, error)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the identity stored by JWTMiddleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// JWTMiddleware creates a middleware for protecting routes.
func JWTMiddleware(resolver Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			tokenStr = strings.TrimSpace(tokenStr)
			if !ok || tokenStr == "" {
				respond.Fail(w, http.StatusUnauthorized, "No token provided")
				return
			}

			id, err := resolver.ResolveCurrentUser(tokenStr)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Rejected bearer token")
				respond.Fail(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// APIKeyMiddleware admits requests whose X-API-KEY matches key.
// An empty key rejects every request.
func APIKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(APIKeyHeader)
			if provided == "" {
				respond.Fail(w, http.StatusForbidden, "API key is required. Provide X-API-KEY header.")
				return
			}
			if key == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Invalid API key")
				respond.Fail(w, http.StatusForbidden, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
