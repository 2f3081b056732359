package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roomsync/reservation-system/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors. Code is
// the stable machine discriminator; message is for humans. Internal details
// never appear here.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusForCode maps domain error codes to HTTP statuses. The mapping lives
// here at the boundary; the core knows nothing about HTTP.
var statusForCode = map[string]int{
	domain.ErrInvalidCredentials.Code:  http.StatusUnauthorized,
	domain.ErrMissingToken.Code:        http.StatusUnauthorized,
	domain.ErrInvalidAccessToken.Code:  http.StatusUnauthorized,
	domain.ErrInvalidRefreshToken.Code: http.StatusUnauthorized,
	domain.ErrInvalidResetToken.Code:   http.StatusUnauthorized,
	domain.ErrForbidden.Code:           http.StatusForbidden,
	domain.ErrUserNotFound.Code:        http.StatusNotFound,
	domain.ErrReservationNotFound.Code: http.StatusNotFound,
	domain.ErrNonExistentEmail.Code:    http.StatusNotFound,
	domain.ErrDuplicateEmail.Code:      http.StatusConflict,
	domain.ErrInvalidTransition.Code:   http.StatusUnprocessableEntity,
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error codes to their HTTP statuses.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"code": ..., "message": ...}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Code: "HTTP_ERROR", Message: fmt.Sprintf("%v", he.Message)}
	}

	var de *domain.Error
	if errors.As(err, &de) {
		if status, ok := statusForCode[de.Code]; ok {
			return status, errorResponse{Code: de.Code, Message: de.Message}
		}
	}

	// Unexpected error: log the real cause, return a generic envelope.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{
		Code:    domain.ErrUnexpected.Code,
		Message: domain.ErrUnexpected.Message,
	}
}
