package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roomsync/reservation-system/internal/api/metrics"
	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

// ReservationHandler handles HTTP requests for reservation operations.
type ReservationHandler struct {
	service ports.ReservationService
}

func NewReservationHandler(service ports.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// --- Request / Response types ---

type createReservationRequest struct {
	RoomID    string    `json:"room_id"    validate:"required"`
	GuestName string    `json:"guest_name" validate:"required"`
	Starts    time.Time `json:"starts"     validate:"required"`
	Ends      time.Time `json:"ends"       validate:"required,gtfield=Starts"`
}

type reservationResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	RoomID    string    `json:"room_id"`
	GuestName string    `json:"guest_name"`
	Starts    time.Time `json:"starts"`
	Ends      time.Time `json:"ends"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:        r.ID,
		ClientID:  r.ClientID,
		RoomID:    r.RoomID,
		GuestName: r.GuestName,
		Starts:    r.Starts,
		Ends:      r.Ends,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
	}
}

type listReservationsResponse struct {
	Items []reservationResponse `json:"items"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
}

// Create handles POST /reservations.
//
// @Summary      Create a reservation
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createReservationRequest  true  "Reservation details"
// @Success      201   {object}  reservationResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	r, err := h.service.Create(c.Request().Context(), ports.CreateReservationInput{
		ClientID:  caller.UserID,
		RoomID:    req.RoomID,
		GuestName: req.GuestName,
		Starts:    req.Starts,
		Ends:      req.Ends,
	})
	if err != nil {
		return err
	}

	metrics.ReservationsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// Get handles GET /reservations/:id.
//
// @Summary      Get a reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reservation id"
// @Success      200  {object}  reservationResponse
// @Failure      404  {object}  errorResponse
// @Router       /reservations/{id} [get]
func (h *ReservationHandler) Get(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	r, err := h.service.Get(c.Request().Context(), c.Param("id"), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// List handles GET /reservations.
//
// @Summary      List reservations
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        room_id  query     string  false  "Filter by room"
// @Param        status   query     string  false  "Filter by status"
// @Param        page     query     int     false  "Page (1-based)"
// @Param        limit    query     int     false  "Page size (max 100)"
// @Success      200      {object}  listReservationsResponse
// @Router       /reservations [get]
func (h *ReservationHandler) List(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	items, total, err := h.service.List(c.Request().Context(), ports.ListReservationsFilter{
		RoomID: c.QueryParam("room_id"),
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	}, caller)
	if err != nil {
		return err
	}

	out := make([]reservationResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toReservationResponse(r))
	}
	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, listReservationsResponse{Items: out, Total: total, Page: page})
}

// Confirm handles POST /reservations/:id/confirm.
//
// @Summary      Confirm a pending reservation
// @Tags         reservations
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Reservation id"
// @Success      200  {object}  reservationResponse
// @Failure      422  {object}  errorResponse
// @Router       /reservations/{id}/confirm [post]
func (h *ReservationHandler) Confirm(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	r, err := h.service.Confirm(c.Request().Context(), c.Param("id"), caller)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// Cancel handles DELETE /reservations/:id.
//
// @Summary      Cancel a reservation
// @Tags         reservations
// @Security     BearerAuth
// @Param        id  path  string  true  "Reservation id"
// @Success      204  "cancelled"
// @Failure      404  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	caller, err := ctxClaims(c)
	if err != nil {
		return err
	}

	if err := h.service.Cancel(c.Request().Context(), c.Param("id"), caller); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
