package dto

import "time"

type SessionView struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Current   bool      `json:"current"`
}

type SessionsResponse struct {
	Sessions []SessionView `json:"sessions"`
}

type LogoutAllResponse struct {
	Invalidated int64 `json:"invalidated"`
}

type SweepResponse struct {
	Deleted int64 `json:"deleted"`
}
