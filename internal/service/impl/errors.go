package impl

import "user-management/internal/domain"

var (
	ErrEmptyPassword = domain.InputError(domain.CodeInvalidInput, "password must not be empty")
	ErrEmptyDigest   = domain.InputError(domain.CodeInvalidInput, "password digest must not be empty")
	ErrNilClaims     = domain.InputError(domain.CodeInvalidInput, "claims are required")
	ErrEmptyToken    = domain.InputError(domain.CodeInvalidInput, "token must not be empty")
	ErrEmptySecret   = domain.ConfigError("token signing secret is required")
)
