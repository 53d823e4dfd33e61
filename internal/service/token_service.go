package service

import (
	"time"

	"user-management/internal/domain"
)

type TokenService interface {
	Issue(claims *domain.Claims, ttl time.Duration) (string, error)
	Validate(token string) (*domain.Claims, error)
	Digest(token string) (string, error)
}
