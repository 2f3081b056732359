package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/roomsync/reservation-system/internal/api/metrics"
	"github.com/roomsync/reservation-system/internal/api/middleware"
	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

// UserHandler serves the user management routes.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// Create creates a user with an arbitrary role. The route is admin-gated by
// the RBAC middleware; requests from non-admins never reach this handler.
//
// @Summary      Create a user (admin only)
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.CreateUserByAdmin(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	metrics.RegistrationsTotal.WithLabelValues(user.Role).Inc()
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Me returns the authenticated user's own record. The route is wired with
// WithUserFetch, so the full user is already in the request context.
//
// @Summary      Get the authenticated user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := c.Get(middleware.CtxUser).(*domain.User)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
