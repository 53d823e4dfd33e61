package events

import "time"

type UserRegistered struct {
	UserID   string    `json:"userId"`
	Email    string    `json:"email"`
	TypeUser string    `json:"typeUser"`
	At       time.Time `json:"at"`
}

func (UserRegistered) Action() string { return "user.registered" }

type ProfileUpdated struct {
	UserID          string    `json:"userId"`
	Fields          []string  `json:"fields"`
	PasswordChanged bool      `json:"passwordChanged"`
	At              time.Time `json:"at"`
}

func (ProfileUpdated) Action() string { return "user.profile_updated" }

type AccountStatusChanged struct {
	UserID string    `json:"userId"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

func (AccountStatusChanged) Action() string { return "user.status_changed" }
