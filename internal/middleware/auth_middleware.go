package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/businesspro/auth-api/internal/service"
)

type contextKey string

const accountIDKey contextKey = "account_id"

// AccountIDFromContext returns the authenticated account ID set by
// RequireAuth.
func AccountIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok
}

type AuthMiddleware struct {
	tokens *service.TokenService
	logger *logrus.Logger
}

func NewAuthMiddleware(tokens *service.TokenService, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireAuth validates the bearer token and injects the account ID
// into the request context. Expired and invalid tokens get distinct
// messages so clients can tell a stale session from a bad one.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respondUnauthorized(w, "Access denied. No token provided.")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			m.respondUnauthorized(w, "Access denied. Invalid token format.")
			return
		}

		accountID, err := m.tokens.Verify(parts[1])
		if err != nil {
			m.logger.WithError(err).Debug("Token verification failed")
			if errors.Is(err, service.ErrExpiredToken) {
				m.respondUnauthorized(w, "Access denied. Token expired.")
			} else {
				m.respondUnauthorized(w, "Access denied. Invalid token.")
			}
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
