package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/complegal/comprate/internal/api/response"
)

// AuthMiddleware enforces the single static API token. There are no user
// accounts; an empty token disables the check entirely.
type AuthMiddleware struct {
	token string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(token string) *AuthMiddleware {
	return &AuthMiddleware{token: token}
}

// Authenticate validates the bearer token
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.token == "" {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			response.Unauthorized(w, "invalid authorization header format")
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(m.token)) != 1 {
			response.Unauthorized(w, "invalid API token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
