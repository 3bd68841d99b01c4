package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const callerKey contextKey = "caller"

// TokenFromRequest returns the bearer token from the Authorization header,
// falling back to the token query parameter used by WebSocket clients.
func TokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			return "", ErrInvalidToken
		}
		return token, nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", ErrMissingToken
}

// Middleware returns an HTTP middleware that validates access tokens and
// stores the caller name in the request context.
func Middleware(jwtMgr *JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := TokenFromRequest(r)
			if err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusUnauthorized)
				return
			}
			claims, err := jwtMgr.ValidateToken(token, UseAccess)
			if err != nil {
				http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), claims.Caller)))
		})
	}
}

// WithCaller stores the authenticated caller name in ctx.
func WithCaller(ctx context.Context, caller string) context.Context {
	return context.WithValue(ctx, callerKey, caller)
}

// CallerFromContext extracts the authenticated caller name from the request context.
func CallerFromContext(ctx context.Context) string {
	c, _ := ctx.Value(callerKey).(string)
	return c
}
