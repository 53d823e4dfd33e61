package dto

import (
	"time"

	"user-management/internal/domain"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      domain.PublicUser `json:"user"`
	Token     string            `json:"token"`
	SessionID string            `json:"session_id"`
	ExpiresAt time.Time         `json:"expires_at"`
}

type LogoutResponse struct {
	SessionID string `json:"session_id"`
}
