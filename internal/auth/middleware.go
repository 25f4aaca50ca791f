package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sulytrack/internal/apperr"
	"sulytrack/internal/logx"
)

type ctxKey struct{}

// WithClaims stores claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// ClaimsFrom returns the claims of an authenticated request, or nil.
func ClaimsFrom(ctx context.Context) *Claims {
	c, _ := ctx.Value(ctxKey{}).(*Claims)
	return c
}

// Middleware guards routes by role.
type Middleware struct {
	issuer *Issuer
	logger logx.Logger
}

// NewMiddleware creates a Middleware.
func NewMiddleware(issuer *Issuer, logger logx.Logger) *Middleware {
	return &Middleware{issuer: issuer, logger: logger}
}

// RequireRole answers 401 for a missing or invalid token and 403 for a valid token with another role.
func (m *Middleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := m.Authorize(r, role)
			switch {
			case errors.Is(err, apperr.ErrForbidden):
				deny(w, http.StatusForbidden, `{"error":"forbidden"}`)
			case err != nil:
				deny(w, http.StatusUnauthorized, `{"error":"unauthorized"}`)
			default:
				next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
			}
		})
	}
}

// Authorize returns the claims of r when it carries a valid token for role.
// It fails with apperr.ErrUnauthorized or apperr.ErrForbidden.
func (m *Middleware) Authorize(r *http.Request, role string) (*Claims, error) {
	raw, ok := bearer(r)
	if !ok {
		return nil, apperr.ErrUnauthorized
	}
	claims, err := m.issuer.Parse(raw)
	if err != nil {
		m.logger.Debug("token rejected", logx.String("path", r.URL.Path), logx.Err(err))
		return nil, apperr.ErrUnauthorized
	}
	if claims.Role != role {
		return nil, fmt.Errorf("role %q required: %w", role, apperr.ErrForbidden)
	}
	return claims, nil
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func deny(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="sulytrack"`)
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
