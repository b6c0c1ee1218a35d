package handler

import (
	"bytes"
	"encoding/json"
	"errors"

	"sweet-shop-api/internal/apperror"
	"sweet-shop-api/internal/logging"

	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	Available *int              `json:"available,omitempty"`
	ID        string            `json:"id,omitempty"`
}

// ErrorHandler is the app-level fiber.ErrorHandler. It turns apperror kinds
// into status codes; anything unrecognised is logged and reported as a bare 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorBody{Error: fe.Message, Code: codeForStatus(fe.Code)})
	}

	body := ErrorBody{Error: err.Error(), Code: apperror.Code(err)}
	status := statusFor(err)

	var verr *apperror.ValidationError
	if errors.As(err, &verr) {
		for field, msg := range verr.Fields {
			if field == "" {
				continue
			}
			if body.Fields == nil {
				body.Fields = make(map[string]string, len(verr.Fields))
			}
			body.Fields[field] = msg
		}
	}

	var stockErr *apperror.InsufficientStockError
	if errors.As(err, &stockErr) {
		available := stockErr.Available
		body.Available = &available
	}

	var nf *apperror.NotFoundError
	if errors.As(err, &nf) {
		body.ID = nf.ID
	}

	if status == fiber.StatusInternalServerError {
		logging.FromContext(c.UserContext()).Error("request failed", "error", err)
		body.Error = "Internal Server Error"
	}

	return c.Status(status).JSON(body)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrInsufficientStock):
		return fiber.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthenticated):
		return fiber.StatusUnauthorized
	case errors.Is(err, apperror.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, apperror.ErrNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "validation_error"
	case fiber.StatusUnauthorized:
		return "authentication_error"
	case fiber.StatusForbidden:
		return "authorization_error"
	case fiber.StatusNotFound:
		return "not_found"
	}
	if status >= fiber.StatusInternalServerError {
		return "internal_error"
	}
	return "request_error"
}

// bind decodes a JSON body into out whatever the Content-Type header says.
// An empty body leaves out untouched.
func bind(c *fiber.Ctx, out interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := c.App().Config().JSONDecoder(body, out); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperror.Validation(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
		}
		return apperror.Validation("", "Invalid JSON")
	}
	return nil
}
