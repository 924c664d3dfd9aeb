package apperr

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatusCode maps a Kind to its HTTP status.
func StatusCode(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindConflict:
		return http.StatusConflict
	case KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts a service error into an echo HTTPError. Internal errors are
// given a generic message so storage details never reach clients.
func ToHTTP(err error) *echo.HTTPError {
	kind := KindOf(err)
	msg := err.Error()
	if kind == KindInternal {
		msg = "internal server error"
	}
	return echo.NewHTTPError(StatusCode(kind), msg)
}
