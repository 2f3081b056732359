package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/roomsync/reservation-system/internal/api/metrics"
	"github.com/roomsync/reservation-system/internal/core/domain"
)

// RBAC enforces role-based access control. The required role set is declared
// per route; one generic middleware interprets it against the role injected
// by Auth. Runs after Auth.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowed[role]; !ok {
				metrics.AuthRejectionsTotal.WithLabelValues("forbidden").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
