package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/iho/bankledger/internal/infrastructure/auth"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// ClaimsContextKey is the context key for the verified token claims
	ClaimsContextKey ContextKey = "claims"
)

// Auth failure reasons used as metric labels.
const (
	authReasonMissing   = "missing_token"
	authReasonMalformed = "malformed_header"
	authReasonInvalid   = "invalid_token"
	authReasonExpired   = "expired_token"
	authReasonForbidden = "forbidden"
)

// AuthMiddleware verifies bearer tokens and enforces read-only access for viewers.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	failures   *prometheus.CounterVec
}

// NewAuthMiddleware creates an authentication middleware. failures may be nil.
func NewAuthMiddleware(jwtManager *auth.JWTManager, failures *prometheus.CounterVec) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		failures:   failures,
	}
}

// Wrap wraps an http.Handler with authentication.
func (m *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.reject(w, http.StatusUnauthorized, authReasonMissing, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.reject(w, http.StatusUnauthorized, authReasonMalformed, "invalid authorization header format")
			return
		}

		claims, err := m.jwtManager.Verify(parts[1])
		if err != nil {
			reason := authReasonInvalid
			if errors.Is(err, auth.ErrExpiredToken) {
				reason = authReasonExpired
			}
			m.reject(w, http.StatusUnauthorized, reason, "invalid or expired token")
			return
		}

		if isMutating(r.Method) && !claims.Role.CanWrite() {
			m.reject(w, http.StatusForbidden, authReasonForbidden, "insufficient permissions")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, status int, reason, message string) {
	if m.failures != nil {
		m.failures.WithLabelValues(reason).Inc()
	}
	writeJSONError(w, status, message)
}

// ClaimsFromContext extracts the verified token claims from context
func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*auth.Claims)
	return claims, ok
}

func isMutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
