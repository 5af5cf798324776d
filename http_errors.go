package users

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// APIError is the failure envelope every handler error collapses into.
// Timestamp is milliseconds since the epoch.
type APIError struct {
	Path             string            `json:"path"`
	Timestamp        int64             `json:"timeStamp"`
	Message          string            `json:"message"`
	ValidationErrors map[string]string `json:"validationErrors,omitempty"`
}

// APIMessage is the success envelope for operations with no resource
// body.
type APIMessage struct {
	Message string `json:"message"`
}

// NewErrorHandler builds the fiber error handler. It is the single
// place request failures are turned into wire responses, and the only
// place message keys become human text: handlers and workflows below it
// deal in keys and typed errors exclusively.
func NewErrorHandler(localizer *Localizer, logger Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		lang := c.Get(fiber.HeaderAcceptLanguage)

		body := APIError{
			Path:      c.Path(),
			Timestamp: time.Now().UnixMilli(),
		}

		var fieldErrs validation.Errors
		if errors.As(err, &fieldErrs) {
			body.Message = localizer.Translate(lang, MsgValidationFailure, nil)
			body.ValidationErrors = localizeFieldErrors(localizer, lang, fieldErrs)
			return c.Status(fiber.StatusBadRequest).JSON(body)
		}

		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			status := richErr.Code
			if status < fiber.StatusBadRequest {
				// No explicit status means the unexpected bucket.
				status = fiber.StatusBadRequest
				logger.Error("request failed: %s %s: %v", c.Method(), c.Path(), err)
			}

			key := richErr.TextCode
			if key == "" {
				key = MsgUnknownError
			}
			body.Message = localizer.Translate(lang, key, templateData(richErr.Metadata))

			// A uniqueness collision reads like any other field
			// violation on the wire.
			if key == MsgFieldAlreadyExists {
				if field, ok := richErr.Metadata["field"].(string); ok {
					body.ValidationErrors = map[string]string{field: body.Message}
					body.Message = localizer.Translate(lang, MsgValidationFailure, nil)
				}
			}

			return c.Status(status).JSON(body)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			body.Message = fiberErr.Message
			return c.Status(fiberErr.Code).JSON(body)
		}

		logger.Error("unhandled error: %s %s: %v", c.Method(), c.Path(), err)
		body.Message = localizer.Translate(lang, MsgUnknownError, nil)
		return c.Status(fiber.StatusBadRequest).JSON(body)
	}
}

// localizeFieldErrors renders a per-field violation map. Each rule
// error carries its message key as the error text.
func localizeFieldErrors(localizer *Localizer, lang string, fieldErrs validation.Errors) map[string]string {
	out := make(map[string]string, len(fieldErrs))
	for field, err := range fieldErrs {
		if err == nil {
			continue
		}
		out[field] = localizer.Translate(lang, err.Error(), nil)
	}
	return out
}

// templateData lifts error metadata into exported template keys, so
// metadata {"field": "email"} satisfies a {{.Field}} placeholder.
func templateData(meta map[string]any) map[string]any {
	if len(meta) == 0 {
		return nil
	}
	data := make(map[string]any, len(meta))
	for k, v := range meta {
		if k == "" {
			continue
		}
		data[strings.ToUpper(k[:1])+k[1:]] = v
	}
	return data
}
