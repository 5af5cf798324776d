package users

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// SignUpRequest is the new-account payload
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules. Rules are checked in order and
// only the first violation per field is reported, so a too-short
// password reports its size before its composition.
func (r SignUpRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required.Error(MsgUsernameNull),
			validation.Length(3, 30).Error(MsgUsernameSize),
		),
		validation.Field(
			&r.Email,
			validation.Required.Error(MsgEmailNull),
			is.Email.Error(MsgEmailInvalid),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error(MsgPasswordNull),
			validation.Length(8, 72).Error(MsgPasswordSize),
			validation.By(ValidatePasswordComposition),
		),
	)
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required.Error(MsgEmailNull),
			is.Email.Error(MsgEmailInvalid),
		),
		validation.Field(
			&r.Password,
			validation.Required.Error(MsgPasswordNull),
		),
	)
}

// UpdateUserRequest is the owner-update payload. E-mail is optional;
// when present it must be well formed and is subject to the same
// uniqueness rule as signup.
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Validate will run validation rules
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required.Error(MsgUsernameNull),
			validation.Length(3, 30).Error(MsgUsernameSize),
		),
		validation.Field(
			&r.Email,
			is.Email.Error(MsgEmailInvalid),
		),
	)
}

// ValidatePasswordComposition requires at least one uppercase letter,
// one lowercase letter, one digit and one symbol. Any rune that is not
// a letter or digit counts as the symbol, spaces included.
func ValidatePasswordComposition(value any) error {
	s, _ := value.(string)
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errors.New(MsgPasswordPattern)
	}
	return nil
}

// DecodeStrict parses a JSON request body into out, rejecting fields
// the target schema does not declare. Undeclared fields surface as a
// per-field validation failure, anything else as a parse failure.
func DecodeStrict(body []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(out); err != nil {
		if name, ok := unknownFieldName(err); ok {
			return validation.Errors{name: errors.New(MsgFieldNotAllowed)}
		}
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "unable to parse request body").
			WithTextCode(MsgMalformedBody).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}

func unknownFieldName(err error) (string, bool) {
	const marker = `json: unknown field `
	msg := err.Error()
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	name := strings.Trim(msg[i+len(marker):], `"`)
	if name == "" {
		return "", false
	}
	return name, true
}
