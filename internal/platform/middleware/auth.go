package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	dErrors "lifeline/pkg/domain-errors"
	"lifeline/pkg/platform/httputil"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	UserID  string
	IsAdmin bool
}

// Context keys for storing authenticated caller information.
type contextKeyUserID struct{}
type contextKeyIsAdmin struct{}

var (
	ContextKeyUserID  = contextKeyUserID{}
	ContextKeyIsAdmin = contextKeyIsAdmin{}
)

// WithUserID returns a context carrying the given user ID, as RequireAuth
// would set it. Intended for tests and internal callers.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// WithAdmin returns a context carrying the admin flag.
func WithAdmin(ctx context.Context, isAdmin bool) context.Context {
	return context.WithValue(ctx, ContextKeyIsAdmin, isAdmin)
}

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return userID
}

// IsAdmin reports whether the authenticated caller carries the admin flag.
func IsAdmin(ctx context.Context) bool {
	isAdmin, ok := ctx.Value(ContextKeyIsAdmin).(bool)
	return ok && isAdmin
}

// RequireAuth validates the Authorization bearer token and stores the caller's
// identity in the request context. Requests without a valid token are
// rejected with 401 before reaching any handler.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyIsAdmin, claims.IsAdmin)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
