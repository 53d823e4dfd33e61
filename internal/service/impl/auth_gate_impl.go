package impl

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"user-management/internal/domain"
	"user-management/internal/observability/metrics"
	"user-management/internal/observability/middleware"
	"user-management/internal/service"
	"user-management/internal/store"

	"github.com/google/uuid"
)

type sessionLookup interface {
	FindActiveByDigest(ctx context.Context, digest string, now time.Time) (*domain.UserSession, error)
}

// AuthGateImpl reconciles a bearer token against both its signature and a
// live session row. Each check costs one verification and one lookup; there
// is no cache, so revocation takes effect on the next request.
type AuthGateImpl struct {
	Tokens   service.TokenService
	Sessions sessionLookup
	Now      func() time.Time
}

func NewAuthGateImpl(st *store.Store, tokens service.TokenService) *AuthGateImpl {
	return &AuthGateImpl{Tokens: tokens, Sessions: st.Sessions(), Now: time.Now}
}

func (g *AuthGateImpl) Check(ctx context.Context, token string) (domain.Identity, error) {
	id, err := g.check(ctx, token)
	reason := "none"
	result := "success"
	if err != nil {
		result = "failure"
		if de, ok := domain.AsError(err); ok && de.Reason != "" {
			reason = de.Reason
		} else {
			reason = "error"
		}
		slog.Debug("auth gate rejected request", append(middleware.LogAttrs(ctx), "reason", reason, "error", err)...)
	}
	metrics.AuthGateChecksTotal.WithLabelValues(result, reason).Inc()
	return id, err
}

func (g *AuthGateImpl) check(ctx context.Context, token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}

	claims, err := g.Tokens.Validate(token)
	if err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return domain.Identity{}, domain.ErrExpiredToken.Wrap(err)
		}
		return domain.Identity{}, domain.ErrInvalidToken.Wrap(err)
	}

	digest, err := g.Tokens.Digest(token)
	if err != nil {
		return domain.Identity{}, domain.ErrInvalidToken.Wrap(err)
	}
	sess, err := g.Sessions.FindActiveByDigest(ctx, digest, g.Now().UTC())
	if err != nil {
		return domain.Identity{}, err
	}
	// a digest collision across users is treated as a dead session
	if sess == nil || sess.UserID != claims.UserID {
		return domain.Identity{}, domain.ErrSessionInvalid
	}

	return domain.Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		TypeUser:  claims.TypeUser,
		SessionID: sess.ID,
	}, nil
}

// CheckOptional never fails; any rejection yields the anonymous identity.
func (g *AuthGateImpl) CheckOptional(ctx context.Context, token string) domain.Identity {
	if token == "" {
		return domain.AnonymousIdentity()
	}
	id, err := g.Check(ctx, token)
	if err != nil {
		return domain.AnonymousIdentity()
	}
	return id
}

func (g *AuthGateImpl) RequireRole(id domain.Identity, roles ...domain.UserType) error {
	if id.Anonymous || id.UserID == uuid.Nil {
		return domain.ErrUnauthenticated
	}
	if !id.HasRole(roles...) {
		return domain.ErrForbidden
	}
	return nil
}
