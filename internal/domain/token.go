package domain

import "time"

// Claims is the payload carried inside an issued access token.
type Claims struct {
	UserID    UserID
	Email     string
	TypeUser  UserType
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is what the authentication gate attaches to a request.
type Identity struct {
	UserID    UserID    `json:"user_id"`
	Email     string    `json:"email"`
	TypeUser  UserType  `json:"type_user"`
	SessionID SessionID `json:"session_id"`
	Anonymous bool      `json:"-"`
}

func AnonymousIdentity() Identity { return Identity{Anonymous: true} }

func (i Identity) HasRole(roles ...UserType) bool {
	if i.Anonymous {
		return false
	}
	for _, r := range roles {
		if i.TypeUser == r {
			return true
		}
	}
	return false
}
