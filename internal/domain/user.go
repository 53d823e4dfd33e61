package domain

import (
	"strings"
	"time"
)

type UserType string

const (
	UserTypeStudent    UserType = "student"
	UserTypeInstructor UserType = "instructor"
	UserTypeAdmin      UserType = "admin"
)

func (t UserType) Valid() bool {
	switch t {
	case UserTypeStudent, UserTypeInstructor, UserTypeAdmin:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountSuspended AccountStatus = "suspended"
)

type User struct {
	ID             UserID        `gorm:"type:uuid;primaryKey" db:"id" json:"user_id"`
	Identification string        `gorm:"type:text;not null;uniqueIndex:ux_users_identification" db:"identification" json:"identification"`
	Email          string        `gorm:"type:text;not null;uniqueIndex:ux_users_email" db:"email" json:"email"`
	PasswordHash   string        `gorm:"type:text;not null" db:"password_hash" json:"-"`
	Name           string        `gorm:"type:text;not null" db:"name" json:"name"`
	Phone          *string       `gorm:"type:text" db:"phone" json:"phone,omitempty"`
	Address        *string       `gorm:"type:text" db:"address" json:"address,omitempty"`
	TypeUser       UserType      `gorm:"type:text;not null" db:"type_user" json:"type_user"`
	AccountStatus  AccountStatus `gorm:"type:text;not null" db:"account_status" json:"account_status"`
	LastLoginAt    *time.Time    `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt      time.Time     `gorm:"not null" db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null" db:"updated_at" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool { return u.AccountStatus == AccountActive }

// PublicUser is the user as exposed to clients; it never carries the password hash.
type PublicUser struct {
	ID             UserID        `json:"user_id"`
	Identification string        `json:"identification"`
	Email          string        `json:"email"`
	Name           string        `json:"name"`
	Phone          *string       `json:"phone,omitempty"`
	Address        *string       `json:"address,omitempty"`
	TypeUser       UserType      `json:"type_user"`
	AccountStatus  AccountStatus `json:"account_status"`
	LastLoginAt    *time.Time    `json:"last_login_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Identification: u.Identification,
		Email:          u.Email,
		Name:           u.Name,
		Phone:          u.Phone,
		Address:        u.Address,
		TypeUser:       u.TypeUser,
		AccountStatus:  u.AccountStatus,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

// NormalizeEmail is applied on every write and lookup so that addresses compare case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
