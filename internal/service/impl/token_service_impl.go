package impl

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"user-management/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ====== Config ======

type TokenConfig struct {
	Issuer     string        // e.g. "user-management"
	DefaultTTL time.Duration // used when Issue is called with ttl <= 0
	SigningKey []byte        // HS256 secret
}

const DefaultTokenTTL = 24 * time.Hour

// ====== Claims ======

type accessClaims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	TypeUser string `json:"type_user"`
	jwt.RegisteredClaims
}

// ====== Service ======

type TokenServiceImpl struct {
	cfg    TokenConfig
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenServiceHS256(cfg TokenConfig) (*TokenServiceImpl, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrEmptySecret
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTokenTTL
	}
	t := &TokenServiceImpl{cfg: cfg}
	t.setClock(time.Now)
	return t, nil
}

// WithClock swaps the time source used for both issuing and validating.
func (t *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	t.setClock(now)
	return t
}

func (t *TokenServiceImpl) setClock(now func() time.Time) {
	t.now = now
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}
	t.parser = jwt.NewParser(opts...)
}

func (t *TokenServiceImpl) DefaultTTL() time.Duration { return t.cfg.DefaultTTL }

// Issue signs claims for ttl; a non-positive ttl falls back to the default.
func (t *TokenServiceImpl) Issue(claims *domain.Claims, ttl time.Duration) (string, error) {
	if claims == nil {
		return "", ErrNilClaims
	}
	if claims.UserID == uuid.Nil {
		return "", ErrNilClaims.WithMessage("claims must carry a user id")
	}
	if ttl <= 0 {
		ttl = t.cfg.DefaultTTL
	}
	now := t.now().UTC()
	c := accessClaims{
		UserID:   claims.UserID.String(),
		Email:    claims.Email,
		TypeUser: string(claims.TypeUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   claims.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(), // unique per token, so equal claims never share a digest
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(t.cfg.SigningKey)
	if err != nil {
		return "", domain.InternalError(domain.CodeInternal, err)
	}
	return signed, nil
}

// Validate verifies signature, algorithm and expiry. Expired tokens yield
// TOKEN_EXPIRED; every other failure yields TOKEN_INVALID.
func (t *TokenServiceImpl) Validate(token string) (*domain.Claims, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid.WithMessage("token is empty")
	}
	c := &accessClaims{}
	_, err := t.parser.ParseWithClaims(token, c, func(*jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired.Wrap(err)
		}
		return nil, domain.ErrTokenInvalid.Wrap(err)
	}
	return toDomainClaims(c)
}

// Decode reads claims without verifying the signature or expiry. It is meant
// for operator diagnostics, never for authentication.
func (t *TokenServiceImpl) Decode(token string) (*domain.Claims, error) {
	c := &accessClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, c); err != nil {
		return nil, domain.ErrTokenInvalid.Wrap(err)
	}
	return toDomainClaims(c)
}

// Digest is the SHA-256 hex of the exact token string; it is the session lookup key.
func (t *TokenServiceImpl) Digest(token string) (string, error) {
	if token == "" {
		return "", ErrEmptyToken
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:]), nil
}

func toDomainClaims(c *accessClaims) (*domain.Claims, error) {
	sub := c.Subject
	if sub == "" {
		sub = c.UserID
	}
	uid, err := uuid.Parse(sub)
	if err != nil {
		return nil, domain.ErrTokenInvalid.WithMessage("token subject is not a user id").Wrap(err)
	}
	out := &domain.Claims{
		UserID:   uid,
		Email:    c.Email,
		TypeUser: domain.UserType(c.TypeUser),
		TokenID:  c.ID,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time.UTC()
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time.UTC()
	}
	return out, nil
}
