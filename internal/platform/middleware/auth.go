package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenValidator defines the interface for validating portal access tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims represents the claims we expect from the token validator. OrgID is
// the organization the caller acts for; zero means no organization binding
// (platform admins).
type Claims struct {
	Subject string
	OrgID   int64
	Role    string
}

type contextKeyOrgID struct{}
type contextKeySubject struct{}

var (
	// ContextKeyOrgID is exported for use in handlers.
	ContextKeyOrgID = contextKeyOrgID{}
	// ContextKeySubject is exported for use in handlers.
	ContextKeySubject = contextKeySubject{}
)

// GetOrgID retrieves the authenticated organization ID from the context.
func GetOrgID(ctx context.Context) int64 {
	orgID, ok := ctx.Value(ContextKeyOrgID).(int64)
	if !ok {
		return 0
	}
	return orgID
}

// GetSubject retrieves the authenticated subject from the context.
func GetSubject(ctx context.Context) string {
	sub, ok := ctx.Value(ContextKeySubject).(string)
	if !ok {
		return ""
	}
	return sub
}

// RequireAuth rejects requests without a valid bearer token and stores the
// validated claims in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "token rejected",
					"request_id", GetRequestID(r.Context()),
					"error", err.Error(),
				)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeyOrgID, claims.OrgID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
