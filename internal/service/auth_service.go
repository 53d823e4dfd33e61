package service

import (
	"context"

	"user-management/internal/domain"
	"user-management/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, token string, userID domain.UserID) (*dto.LogoutResponse, error)
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
	LogoutEverywhere(ctx context.Context, userID domain.UserID) (int64, error)
	ActiveSessions(ctx context.Context, userID domain.UserID, current domain.SessionID) (*dto.SessionsResponse, error)
	SetAccountStatus(ctx context.Context, userID domain.UserID, status domain.AccountStatus) error
	SessionSweeper
}

type SessionSweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// AuthGate decides, per request, whether a bearer token maps to a live session.
type AuthGate interface {
	Check(ctx context.Context, token string) (domain.Identity, error)
	CheckOptional(ctx context.Context, token string) domain.Identity
	RequireRole(id domain.Identity, roles ...domain.UserType) error
}
