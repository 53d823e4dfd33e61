package middleware

import (
	"context"
	"net/http"
	"strings"

	"user-management/internal/domain"
	"user-management/internal/service"
)

// ErrorWriter renders a rejected request.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type identityKey struct{}
type tokenKey struct{}

func WithIdentity(ctx context.Context, id domain.Identity, token string) context.Context {
	ctx = context.WithValue(ctx, identityKey{}, id)
	return context.WithValue(ctx, tokenKey{}, token)
}

// IdentityFrom returns the identity the gate attached to ctx.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(domain.Identity)
	return id, ok
}

// TokenFrom returns the raw bearer token of an authenticated request.
func TokenFrom(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// BearerToken extracts the token from "Authorization: Bearer <token>". The
// scheme is matched case-insensitively.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) < len("bearer ") || !strings.EqualFold(raw[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(raw[len("bearer "):])
}

// RequireAuth rejects requests without a live session.
func RequireAuth(gate service.AuthGate, onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := BearerToken(r)
			id, err := gate.Check(r.Context(), tok)
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id, tok)))
		})
	}
}

// OptionalAuth never rejects; callers without a valid session proceed with
// the anonymous identity.
func OptionalAuth(gate service.AuthGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := BearerToken(r)
			id := gate.CheckOptional(r.Context(), tok)
			if id.Anonymous {
				tok = ""
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id, tok)))
		})
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(gate service.AuthGate, onError ErrorWriter, roles ...domain.UserType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				id = domain.AnonymousIdentity()
			}
			if err := gate.RequireRole(id, roles...); err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
