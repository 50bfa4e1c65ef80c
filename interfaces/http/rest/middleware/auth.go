package middleware

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"flowengine/pkg/auth"
	apperrors "flowengine/pkg/errors"
)

// TokenValidator checks a bearer token and returns its claims
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token. Browsers cannot
// set headers on a WebSocket upgrade, so the token query parameter is also
// accepted.
func Authenticate(validator TokenValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				writeAppError(w, apperrors.NewUnauthorizedError("Missing authentication token"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.Warn("Invalid token",
					zap.Error(err),
					zap.String("path", r.URL.Path),
				)
				switch {
				case errors.Is(err, auth.ErrExpiredToken):
					writeAppError(w, apperrors.NewUnauthorizedError("Token has expired"))
				case errors.Is(err, auth.ErrInvalidSignature):
					writeAppError(w, apperrors.NewUnauthorizedError("Invalid token signature"))
				default:
					writeAppError(w, apperrors.NewUnauthorizedError("Invalid token"))
				}
				return
			}

			logger.Debug("Request authenticated",
				zap.String("user_id", claims.UserID),
				zap.String("path", r.URL.Path),
			)
			next.ServeHTTP(w, r.WithContext(auth.SetUserInContext(r.Context(), claims.UserID)))
		})
	}
}

func extractToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return r.URL.Query().Get("token")
}

func writeAppError(w http.ResponseWriter, err *apperrors.AppError) {
	writeError(w, apperrors.HTTPStatus(err), string(err.Type), err.Message)
}
