package users

import (
	"database/sql"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Localization keys for rule violations and domain failures. The rule
// chains and error constructors attach these; only the HTTP boundary
// turns them into human text.
const (
	MsgUsernameNull    = "username_null"
	MsgUsernameSize    = "username_size"
	MsgEmailNull       = "email_null"
	MsgEmailInvalid    = "email_invalid"
	MsgPasswordNull    = "password_null"
	MsgPasswordSize    = "password_size"
	MsgPasswordPattern = "password_pattern"
	MsgFieldNotAllowed = "field_not_allowed"

	MsgValidationFailure  = "validation_failure"
	MsgFieldAlreadyExists = "field_already_exists"
	MsgAuthFailure        = "authentication_failure"
	MsgInactiveAccount    = "inactive_authentication_failure"
	MsgUnauthorized       = "unauthorized_request"
	MsgActivationFailure  = "account_activation_failure"
	MsgUserNotFound       = "user_not_found"
	MsgTooManyAttempts    = "too_many_attempts"
	MsgUnknownError       = "unknown_error"
	MsgMalformedBody      = "malformed_request_body"

	MsgUserCreated      = "user_create_success"
	MsgUserUpdated      = "user_update_success"
	MsgUserDeleted      = "user_delete_success"
	MsgAccountActivated = "account_activation_success"
)

// ErrAuthenticationFailed is the generic credential failure. It covers
// both unknown e-mail and wrong password so callers cannot tell which.
var ErrAuthenticationFailed = goerrors.New("incorrect credentials", goerrors.CategoryAuth).
	WithTextCode(MsgAuthFailure).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountInactive rejects logins against unconfirmed accounts.
var ErrAccountInactive = goerrors.New("account is inactive", goerrors.CategoryAuth).
	WithTextCode(MsgInactiveAccount).
	WithCode(goerrors.CodeForbidden)

// ErrUnauthorized rejects requests acting on another user's resource.
var ErrUnauthorized = goerrors.New("not authorized for this operation", goerrors.CategoryAuthz).
	WithTextCode(MsgUnauthorized).
	WithCode(goerrors.CodeForbidden)

// ErrInvalidActivationToken covers unknown and already-consumed tokens.
var ErrInvalidActivationToken = goerrors.New("account is active or token is invalid", goerrors.CategoryBadInput).
	WithTextCode(MsgActivationFailure).
	WithCode(goerrors.CodeBadRequest)

// ErrUserNotFound is returned for lookups of missing or inactive users.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(MsgUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTooManyLoginAttempts enforces the login cool down window.
var ErrTooManyLoginAttempts = goerrors.New("too many failed login attempts", goerrors.CategoryRateLimit).
	WithTextCode(MsgTooManyAttempts).
	WithCode(429)

// ErrNoEmptyString rejects hashing an empty password.
var ErrNoEmptyString = goerrors.New("password cannot be empty", goerrors.CategoryValidation).
	WithTextCode(MsgPasswordNull).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the bcrypt compare failure.
var ErrMismatchedHashAndPassword = goerrors.New("password does not match hash", goerrors.CategoryAuth).
	WithTextCode(MsgAuthFailure).
	WithCode(goerrors.CodeUnauthorized)

// NewDuplicateFieldError signals a uniqueness collision on signup or
// update. Field and value feed the localized message template and the
// single-entry validationErrors map.
func NewDuplicateFieldError(field, value string) *goerrors.Error {
	return goerrors.New(field+" already exists", goerrors.CategoryConflict).
		WithTextCode(MsgFieldAlreadyExists).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{
			"field": field,
			"value": value,
		})
}

// NewRecordNotFound wraps a missing row with lookup context.
func NewRecordNotFound(column string, value any) *goerrors.Error {
	return goerrors.New("record not found", goerrors.CategoryNotFound).
		WithTextCode(MsgUserNotFound).
		WithCode(goerrors.CodeNotFound).
		WithMetadata(map[string]any{
			"column": column,
			"value":  value,
		})
}

// IsRecordNotFound reports whether err is a missing-row failure, either
// ours or the driver's.
func IsRecordNotFound(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryNotFound
	}
	return false
}

// IsDuplicateField reports whether err is a uniqueness collision.
func IsDuplicateField(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == MsgFieldAlreadyExists
	}
	return false
}

// mapUniqueViolation translates a storage-level unique constraint error
// into the matching duplicate-field failure. The workflow pre-check
// usually fires first; this catches the racing insert the store
// rejected (the constraint is the authoritative enforcement point).
func mapUniqueViolation(err error, record *User) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(strings.ToLower(msg), "unique") {
		return err
	}
	switch {
	case strings.Contains(msg, "users.username"), strings.Contains(msg, "username"):
		return NewDuplicateFieldError("username", record.Username)
	case strings.Contains(msg, "users.email"), strings.Contains(msg, "email"):
		return NewDuplicateFieldError("email", record.Email)
	}
	return goerrors.Wrap(err, goerrors.CategoryConflict, "unique constraint violation").
		WithCode(goerrors.CodeBadRequest)
}
