package domain

import (
	"errors"
	"strings"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInput
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindConfig
	KindStore
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConfig:
		return "config"
	case KindStore:
		return "store"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error codes surfaced to clients.
const (
	CodeInvalidInput                = "INVALID_INPUT"
	CodeMissingCredentials          = "MISSING_CREDENTIALS"
	CodeMissingParameters           = "MISSING_PARAMETERS"
	CodeMissingUserID               = "MISSING_USER_ID"
	CodeMissingPathID               = "MISSING_PATH_ID"
	CodeMissingCourseID             = "MISSING_COURSE_ID"
	CodeNoUpdates                   = "NO_UPDATES"
	CodeRegistrationValidation      = "REGISTRATION_VALIDATION_FAILED"
	CodeReferentialIntegrity        = "REFERENTIAL_INTEGRITY"
	CodeInvalidCredentials          = "INVALID_CREDENTIALS"
	CodeSessionExpired              = "SESSION_EXPIRED"
	CodeTokenExpired                = "TOKEN_EXPIRED"
	CodeTokenInvalid                = "TOKEN_INVALID"
	CodeUnauthenticated             = "UNAUTHENTICATED"
	CodeAccountSuspended            = "ACCOUNT_SUSPENDED"
	CodeForbidden                   = "FORBIDDEN"
	CodeSessionNotFound             = "SESSION_NOT_FOUND"
	CodeUserNotFound                = "USER_NOT_FOUND"
	CodeLearningPathNotFound        = "LEARNING_PATH_NOT_FOUND"
	CodeCourseProgressUpdateFailed  = "COURSE_PROGRESS_UPDATE_FAILED"
	CodeConflict                    = "CONFLICT"
	CodeEmailExists                 = "EMAIL_EXISTS"
	CodeEmailAlreadyExists          = "EMAIL_ALREADY_EXISTS"
	CodeIdentificationAlreadyExists = "IDENTIFICATION_ALREADY_EXISTS"
	CodeConfig                      = "CONFIG_ERROR"
	CodeStore                       = "STORE_ERROR"
	CodeInternal                    = "INTERNAL_ERROR"
	CodeLoginError                  = "LOGIN_ERROR"
	CodeLogoutError                 = "LOGOUT_ERROR"
	CodeRegistrationError           = "REGISTRATION_ERROR"
	CodeUpdateError                 = "UPDATE_ERROR"
)

// Reasons refine CodeUnauthenticated.
const (
	ReasonMissingToken   = "MISSING_TOKEN"
	ReasonExpired        = "EXPIRED"
	ReasonInvalid        = "INVALID"
	ReasonSessionInvalid = "SESSION_INVALID"
)

// Error is the tagged error value used across the service. Two errors match
// under errors.Is when their codes match and, if the target names a reason,
// their reasons match too.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Reason  string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	if e.Reason != "" {
		b.WriteString("(" + e.Reason + ")")
	}
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Reason == "" || t.Reason == e.Reason
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	c := *e
	c.Err = cause
	return &c
}

// WithMessage returns a copy of e with msg.
func (e *Error) WithMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// WithDetails returns a copy of e with details attached.
func (e *Error) WithDetails(details map[string]string) *Error {
	c := *e
	c.Details = details
	return &c
}

func NewError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func InputError(code, msg string) *Error     { return NewError(KindInput, code, msg) }
func AuthError(code, msg string) *Error      { return NewError(KindAuth, code, msg) }
func NotFoundError(code, msg string) *Error  { return NewError(KindNotFound, code, msg) }
func ConflictError(code, msg string) *Error  { return NewError(KindConflict, code, msg) }
func ForbiddenError(code, msg string) *Error { return NewError(KindForbidden, code, msg) }

func ConfigError(msg string) *Error { return NewError(KindConfig, CodeConfig, msg) }

func StoreError(op string, cause error) *Error {
	return &Error{Kind: KindStore, Code: CodeStore, Message: op, Err: cause}
}

func InternalError(code string, cause error) *Error {
	return &Error{Kind: KindInternal, Code: code, Err: cause}
}

// Unauthenticated is the gate failure; reason is one of the Reason* constants.
func Unauthenticated(reason, msg string) *Error {
	return &Error{Kind: KindAuth, Code: CodeUnauthenticated, Reason: reason, Message: msg}
}

var (
	ErrMissingCredentials = InputError(CodeMissingCredentials, "email and password are required")
	ErrMissingParameters  = InputError(CodeMissingParameters, "token and user id are required")
	ErrMissingUserID      = InputError(CodeMissingUserID, "user id is required")
	ErrMissingPathID      = InputError(CodeMissingPathID, "path id is required")
	ErrMissingCourseID    = InputError(CodeMissingCourseID, "course id is required")
	ErrNoUpdates          = InputError(CodeNoUpdates, "no fields to update")
	ErrInvalidInput       = InputError(CodeInvalidInput, "invalid input")

	ErrInvalidCredentials = AuthError(CodeInvalidCredentials, "invalid email or password")
	ErrSessionExpired     = AuthError(CodeSessionExpired, "session expired")
	ErrTokenExpired       = AuthError(CodeTokenExpired, "token expired")
	ErrTokenInvalid       = AuthError(CodeTokenInvalid, "token invalid")
	ErrUnauthenticated    = AuthError(CodeUnauthenticated, "authentication required")

	ErrMissingToken   = Unauthenticated(ReasonMissingToken, "missing bearer token")
	ErrExpiredToken   = Unauthenticated(ReasonExpired, "token expired")
	ErrInvalidToken   = Unauthenticated(ReasonInvalid, "token invalid")
	ErrSessionInvalid = Unauthenticated(ReasonSessionInvalid, "session revoked or expired")

	ErrAccountSuspended = ForbiddenError(CodeAccountSuspended, "account suspended")
	ErrForbidden        = ForbiddenError(CodeForbidden, "insufficient permissions")

	ErrSessionNotFound        = NotFoundError(CodeSessionNotFound, "session not found")
	ErrUserNotFound           = NotFoundError(CodeUserNotFound, "user not found")
	ErrLearningPathNotFound   = NotFoundError(CodeLearningPathNotFound, "learning path not found")
	ErrCourseProgressNotFound = NotFoundError(CodeCourseProgressUpdateFailed, "course progress could not be updated")

	ErrConflict                    = ConflictError(CodeConflict, "resource already exists")
	ErrEmailExists                 = ConflictError(CodeEmailExists, "email already registered")
	ErrEmailAlreadyExists          = ConflictError(CodeEmailAlreadyExists, "email already registered")
	ErrIdentificationAlreadyExists = ConflictError(CodeIdentificationAlreadyExists, "identification already registered")

	ErrConfig = ConfigError("")
	ErrStore  = &Error{Kind: KindStore, Code: CodeStore}
)

// AsError extracts the outermost tagged error from err's chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func KindOf(err error) ErrorKind {
	if de, ok := AsError(err); ok {
		return de.Kind
	}
	return KindUnknown
}

// IsRecognized reports whether err already carries a business code that
// should reach the caller unchanged. Store, internal and untagged errors are not.
func IsRecognized(err error) bool {
	switch KindOf(err) {
	case KindUnknown, KindStore, KindInternal:
		return false
	}
	return true
}
