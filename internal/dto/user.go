package dto

import (
	"time"

	"user-management/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// UpdateProfileRequest is a partial update; nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Address  *string `json:"address,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (r UpdateProfileRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Phone == nil && r.Address == nil && r.Password == nil
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(3, 254), is.Email),
		validation.Field(&r.Phone, validation.Length(0, 20)),
		validation.Field(&r.Address, validation.Length(0, 300)),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.Length(MinPasswordLength, 72)),
	)
}

type ProfileResponse struct {
	User domain.PublicUser `json:"user"`
}

type DashboardInfo struct {
	LastLogin     *time.Time           `json:"last_login"`
	AccountStatus domain.AccountStatus `json:"account_status"`
	MemberSince   time.Time            `json:"member_since"`
}

type DashboardResponse struct {
	User          domain.PublicUser `json:"user"`
	DashboardInfo DashboardInfo     `json:"dashboard_info"`
}
