package http

import (
	"errors"
	"log/slog"
	"net/http"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var httpErr *echo.HTTPError
	var validationErrs validator.ValidationErrors

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.As(err, &validationErrs),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, commands.ErrNameIsRequired):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrNotRequester):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewErrorHandler renders errors returned by handlers and middleware as Error
// bodies. Internal failures are logged and hidden from the client.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	logger = logger.With("component", "http")

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := statusFor(err)
		message := err.Error()

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"error", err,
			)
			message = http.StatusText(code)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = c.JSON(code, Error{Code: code, Message: message})
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "failed to write error response", "error", writeErr)
		}
	}
}
