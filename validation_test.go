package users_test

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/stretchr/testify/require"

	users "github.com/mvelaz/go-users"
)

func fieldErrors(t *testing.T, err error) validation.Errors {
	t.Helper()
	require.Error(t, err)
	fieldErrs, ok := err.(validation.Errors)
	require.True(t, ok, "expected field level validation errors, got %T: %v", err, err)
	return fieldErrs
}

func TestSignUpRequestValid(t *testing.T) {
	req := users.SignUpRequest{
		Username: "user1",
		Email:    "user1@gmail.com",
		Password: "A4GuaN@SmZ",
	}
	require.NoError(t, req.Validate())
}

func TestSignUpRequestFieldRules(t *testing.T) {
	valid := users.SignUpRequest{
		Username: "user1",
		Email:    "user1@gmail.com",
		Password: "A4GuaN@SmZ",
	}

	tests := []struct {
		name   string
		mutate func(r *users.SignUpRequest)
		field  string
		key    string
	}{
		{
			name:   "missing username",
			mutate: func(r *users.SignUpRequest) { r.Username = "" },
			field:  "username",
			key:    users.MsgUsernameNull,
		},
		{
			name:   "username too short",
			mutate: func(r *users.SignUpRequest) { r.Username = "ab" },
			field:  "username",
			key:    users.MsgUsernameSize,
		},
		{
			name:   "username too long",
			mutate: func(r *users.SignUpRequest) { r.Username = "abcdefghijklmnopqrstuvwxyz01234" },
			field:  "username",
			key:    users.MsgUsernameSize,
		},
		{
			name:   "missing email",
			mutate: func(r *users.SignUpRequest) { r.Email = "" },
			field:  "email",
			key:    users.MsgEmailNull,
		},
		{
			name:   "malformed email",
			mutate: func(r *users.SignUpRequest) { r.Email = "not-an-email" },
			field:  "email",
			key:    users.MsgEmailInvalid,
		},
		{
			name:   "missing password",
			mutate: func(r *users.SignUpRequest) { r.Password = "" },
			field:  "password",
			key:    users.MsgPasswordNull,
		},
		{
			name: "short password reports size even when composition also fails",
			mutate: func(r *users.SignUpRequest) {
				r.Password = "abc"
			},
			field: "password",
			key:   users.MsgPasswordSize,
		},
		{
			name:   "password without composition",
			mutate: func(r *users.SignUpRequest) { r.Password = "alllowercase" },
			field:  "password",
			key:    users.MsgPasswordPattern,
		},
		{
			name:   "password without symbol",
			mutate: func(r *users.SignUpRequest) { r.Password = "Password1" },
			field:  "password",
			key:    users.MsgPasswordPattern,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)

			fieldErrs := fieldErrors(t, req.Validate())
			require.Contains(t, fieldErrs, tc.field)
			require.Equal(t, tc.key, fieldErrs[tc.field].Error())
		})
	}
}

func TestSignUpRequestReportsEveryInvalidField(t *testing.T) {
	req := users.SignUpRequest{}
	fieldErrs := fieldErrors(t, req.Validate())

	require.Len(t, fieldErrs, 3)
	require.Equal(t, users.MsgUsernameNull, fieldErrs["username"].Error())
	require.Equal(t, users.MsgEmailNull, fieldErrs["email"].Error())
	require.Equal(t, users.MsgPasswordNull, fieldErrs["password"].Error())
}

func TestLoginRequestValidate(t *testing.T) {
	require.NoError(t, users.LoginRequest{
		Email:    "user1@gmail.com",
		Password: "A4GuaN@SmZ",
	}.Validate())

	fieldErrs := fieldErrors(t, users.LoginRequest{}.Validate())
	require.Equal(t, users.MsgEmailNull, fieldErrs["email"].Error())
	require.Equal(t, users.MsgPasswordNull, fieldErrs["password"].Error())
}

func TestUpdateUserRequestValidate(t *testing.T) {
	require.NoError(t, users.UpdateUserRequest{Username: "user1-updated"}.Validate())

	fieldErrs := fieldErrors(t, users.UpdateUserRequest{Username: "ab", Email: "bad"}.Validate())
	require.Equal(t, users.MsgUsernameSize, fieldErrs["username"].Error())
	require.Equal(t, users.MsgEmailInvalid, fieldErrs["email"].Error())
}

func TestDecodeStrict(t *testing.T) {
	req := users.SignUpRequest{}
	err := users.DecodeStrict(
		[]byte(`{"username":"user1","email":"user1@gmail.com","password":"A4GuaN@SmZ"}`),
		&req,
	)
	require.NoError(t, err)
	require.Equal(t, "user1", req.Username)
}

func TestDecodeStrictUnknownField(t *testing.T) {
	req := users.SignUpRequest{}
	err := users.DecodeStrict(
		[]byte(`{"username":"user1","email":"user1@gmail.com","password":"A4GuaN@SmZ","admin":true}`),
		&req,
	)

	fieldErrs := fieldErrors(t, err)
	require.Equal(t, users.MsgFieldNotAllowed, fieldErrs["admin"].Error())
}

func TestDecodeStrictMalformedBody(t *testing.T) {
	req := users.SignUpRequest{}
	err := users.DecodeStrict([]byte(`{"username":`), &req)

	require.Error(t, err)
	_, ok := err.(validation.Errors)
	require.False(t, ok, "parse failures are not field errors")
}
