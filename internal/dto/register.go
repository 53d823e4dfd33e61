package dto

import (
	"user-management/internal/domain"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const MinPasswordLength = 8

type RegisterRequest struct {
	Identification string  `json:"identification"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Password       string  `json:"password"`
	Phone          *string `json:"phone,omitempty"`
	Address        *string `json:"address,omitempty"`
	TypeUser       string  `json:"type_user,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identification, validation.Required, validation.Length(1, 50)),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 72)),
		validation.Field(&r.Phone, validation.NilOrNotEmpty, validation.Length(6, 20)),
		validation.Field(&r.Address, validation.Length(0, 300)),
		validation.Field(&r.TypeUser, validation.In(
			string(domain.UserTypeStudent),
			string(domain.UserTypeInstructor),
			string(domain.UserTypeAdmin),
		)),
	)
}

type RegisterResponse struct {
	User domain.PublicUser `json:"user"`
}
