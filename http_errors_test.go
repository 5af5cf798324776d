package users_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"

	users "github.com/mvelaz/go-users"
)

type testLogger struct{ t *testing.T }

func (l testLogger) Debug(format string, args ...any) { l.t.Logf("[DBG] "+format, args...) }
func (l testLogger) Info(format string, args ...any)  { l.t.Logf("[INF] "+format, args...) }
func (l testLogger) Warn(format string, args ...any)  { l.t.Logf("[WRN] "+format, args...) }
func (l testLogger) Error(format string, args ...any) { l.t.Logf("[ERR] "+format, args...) }

func errorApp(t *testing.T, err error) *fiber.App {
	t.Helper()

	localizer, lerr := users.NewLocalizer()
	require.NoError(t, lerr)

	app := fiber.New(fiber.Config{
		ErrorHandler: users.NewErrorHandler(localizer, testLogger{t}),
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return err
	})
	return app
}

func decodeAPIError(t *testing.T, resp *http.Response) users.APIError {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	body := users.APIError{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func doRequest(t *testing.T, app *fiber.App, req *http.Request) *http.Response {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestErrorHandlerFieldErrors(t *testing.T) {
	app := errorApp(t, validation.Errors{
		"username": errors.New(users.MsgUsernameNull),
		"password": errors.New(users.MsgPasswordSize),
	})

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeAPIError(t, resp)
	require.Equal(t, "/boom", body.Path)
	require.Greater(t, body.Timestamp, int64(0))
	require.Equal(t, "Validation Failure", body.Message)
	require.Equal(t, map[string]string{
		"username": "Username cannot be null",
		"password": "Password must be at least 8 and at most 72 characters",
	}, body.ValidationErrors)
}

func TestErrorHandlerLocalizesByHeader(t *testing.T) {
	app := errorApp(t, validation.Errors{
		"username": errors.New(users.MsgUsernameNull),
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(fiber.HeaderAcceptLanguage, "id")

	body := decodeAPIError(t, doRequest(t, app, req))
	require.Equal(t, "Kesalahan validasi", body.Message)
	require.Equal(t, "Username tidak boleh kosong", body.ValidationErrors["username"])
}

func TestErrorHandlerFallsBackToEnglish(t *testing.T) {
	app := errorApp(t, users.ErrAuthenticationFailed)

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(fiber.HeaderAcceptLanguage, "fr-FR")

	resp := doRequest(t, app, req)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Incorrect credentials", decodeAPIError(t, resp).Message)
}

func TestErrorHandlerTypedErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"authentication", users.ErrAuthenticationFailed, http.StatusUnauthorized, "Incorrect credentials"},
		{"inactive", users.ErrAccountInactive, http.StatusForbidden, "Account is inactive"},
		{"forbidden", users.ErrUnauthorized, http.StatusForbidden, "You are not authorized to perform this operation"},
		{"activation", users.ErrInvalidActivationToken, http.StatusBadRequest, "This account is either active or the token is invalid"},
		{"not found", users.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"throttled", users.ErrTooManyLoginAttempts, http.StatusTooManyRequests, "Too many failed login attempts, try again later"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := errorApp(t, tc.err)
			resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
			require.Equal(t, tc.status, resp.StatusCode)
			require.Equal(t, tc.message, decodeAPIError(t, resp).Message)
		})
	}
}

func TestErrorHandlerDuplicateField(t *testing.T) {
	app := errorApp(t, users.NewDuplicateFieldError("email", "user1@gmail.com"))

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeAPIError(t, resp)
	require.Equal(t, "Validation Failure", body.Message)
	require.Equal(t, "email user1@gmail.com already exists", body.ValidationErrors["email"])
}

func TestErrorHandlerUnexpectedError(t *testing.T) {
	app := errorApp(t, errors.New("database on fire"))

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// The detail stays server-side.
	body := decodeAPIError(t, resp)
	require.Equal(t, "Unknown Error", body.Message)
	require.NotContains(t, body.Message, "database")
}

func TestErrorHandlerWrappedInternalError(t *testing.T) {
	app := errorApp(t, goerrors.Wrap(
		errors.New("connection refused"),
		goerrors.CategoryInternal,
		"storage unavailable",
	))

	resp := doRequest(t, app, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Unknown Error", decodeAPIError(t, resp).Message)
}
