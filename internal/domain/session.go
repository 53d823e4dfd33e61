package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserSession is the server-side record of an issued token. Only the token
// digest is stored; the raw token never reaches persistence.
type UserSession struct {
	ID          SessionID `gorm:"type:uuid;primaryKey" db:"id" json:"session_id"`
	UserID      UserID    `gorm:"type:uuid;not null;index:ix_user_sessions_user_id" db:"user_id" json:"user_id"`
	TokenDigest string    `gorm:"type:text;not null;index:ix_user_sessions_token_digest" db:"token_digest" json:"-"`
	CreatedAt   time.Time `gorm:"not null" db:"created_at" json:"created_at"`
	ExpiresAt   time.Time `gorm:"not null;index:ix_user_sessions_expires_at" db:"expires_at" json:"expires_at"`
	IsActive    bool      `gorm:"not null" db:"is_active" json:"is_active"`
	IP          string    `gorm:"type:text" db:"ip" json:"ip,omitempty"`
	UserAgent   string    `gorm:"type:text" db:"user_agent" json:"user_agent,omitempty"`
}

func (UserSession) TableName() string { return "user_sessions" }

// NewSession opens an active session for userID valid for ttl from now.
func NewSession(userID UserID, digest string, now time.Time, ttl time.Duration) *UserSession {
	now = now.UTC()
	return &UserSession{
		ID:          uuid.New(),
		UserID:      userID,
		TokenDigest: digest,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		IsActive:    true,
	}
}

// IsValidAt is the single session validity predicate: active and not yet expired.
// The store applies the same condition in SQL with an application supplied clock.
func (s *UserSession) IsValidAt(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}

func (s *UserSession) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Invalidate is one-way; a session is never reactivated.
func (s *UserSession) Invalidate() { s.IsActive = false }

// Extend moves the expiry to now+d. Inactive sessions are left untouched.
func (s *UserSession) Extend(now time.Time, d time.Duration) {
	if !s.IsActive {
		return
	}
	s.ExpiresAt = now.UTC().Add(d)
}
