package http

import (
	"errors"
	"fmt"
	"net/http"

	"client-vault/internal/http/middleware"
	apperrors "client-vault/pkg/errors"
	"client-vault/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	unknownRequestID = "unknown"
	msgInternalError = "Internal server error"
	jsonKeyErrorBody = "error"
	jsonKeyRequestID = "request_id"
)

type statusMapping struct {
	target  error
	code    int
	message string
}

// errorStatuses maps sentinel errors to responses; first match wins.
var errorStatuses = []statusMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "Resource not found"},
	{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{apperrors.ErrExpired, http.StatusUnauthorized, "Credentials expired"},
	{apperrors.ErrForbidden, http.StatusForbidden, "Forbidden"},
	{apperrors.ErrValidation, http.StatusBadRequest, "Validation error"},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "Bad request"},
	{apperrors.ErrUsernameTaken, http.StatusConflict, "Username already exists"},
	{apperrors.ErrEmailExists, http.StatusConflict, "Email already exists"},
	{apperrors.ErrConflict, http.StatusConflict, "Resource already exists"},
}

// CustomHTTPErrorHandler handles all errors returned by handlers and middleware.
// It maps sentinel errors to appropriate HTTP status codes, sanitizes internal errors,
// and logs errors with request context.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code, message := resolveError(err)

	requestID := middleware.GetRequestID(c)
	if requestID == "" {
		requestID = unknownRequestID
	}

	logMsg := logger.SanitizeLogMessage(err.Error())
	if code >= http.StatusInternalServerError {
		c.Logger().Errorf("internal_server_error request_id=%s status=%d error=%s", requestID, code, logMsg)
		// Don't expose internal errors to clients
		message = msgInternalError
	} else {
		c.Logger().Warnf("client_error request_id=%s status=%d error=%s", requestID, code, logMsg)
	}

	if err := c.JSON(code, map[string]any{
		jsonKeyErrorBody: message,
		jsonKeyRequestID: requestID,
	}); err != nil {
		c.Logger().Error(err)
	}
}

func resolveError(err error) (int, string) {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code, fmt.Sprintf("%v", httpErr.Message)
	}

	code := http.StatusInternalServerError
	message := msgInternalError
	for _, m := range errorStatuses {
		if errors.Is(err, m.target) {
			code, message = m.code, m.message
			break
		}
	}

	// Client errors carry the AppError's own message.
	var appErr *apperrors.AppError
	if code < http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}

	return code, message
}
