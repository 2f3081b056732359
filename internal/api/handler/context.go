package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roomsync/reservation-system/internal/api/middleware"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

// ctxClaims extracts the redacted identity injected by the Auth middleware
// and fast-fails when it is absent: a missing role means the route was wired
// without the middleware, which is a configuration error, not a user error.
func ctxClaims(c echo.Context) (ports.Claims, error) {
	role, _ := c.Get(middleware.CtxRole).(string)
	userID, _ := c.Get(middleware.CtxUserID).(string)
	if role == "" || userID == "" {
		return ports.Claims{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Claims{UserID: userID, Role: role}, nil
}
