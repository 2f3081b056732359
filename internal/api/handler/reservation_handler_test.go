package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roomsync/reservation-system/internal/api/middleware"
	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

type stubReservationService struct {
	createFn  func(ctx context.Context, in ports.CreateReservationInput) (*domain.Reservation, error)
	getFn     func(ctx context.Context, id string, caller ports.Claims) (*domain.Reservation, error)
	listFn    func(ctx context.Context, filter ports.ListReservationsFilter, caller ports.Claims) ([]*domain.Reservation, int64, error)
	confirmFn func(ctx context.Context, id string, caller ports.Claims) (*domain.Reservation, error)
	cancelFn  func(ctx context.Context, id string, caller ports.Claims) error
}

func (s *stubReservationService) Create(ctx context.Context, in ports.CreateReservationInput) (*domain.Reservation, error) {
	return s.createFn(ctx, in)
}

func (s *stubReservationService) Get(ctx context.Context, id string, caller ports.Claims) (*domain.Reservation, error) {
	return s.getFn(ctx, id, caller)
}

func (s *stubReservationService) List(ctx context.Context, filter ports.ListReservationsFilter, caller ports.Claims) ([]*domain.Reservation, int64, error) {
	return s.listFn(ctx, filter, caller)
}

func (s *stubReservationService) Confirm(ctx context.Context, id string, caller ports.Claims) (*domain.Reservation, error) {
	return s.confirmFn(ctx, id, caller)
}

func (s *stubReservationService) Cancel(ctx context.Context, id string, caller ports.Claims) error {
	return s.cancelFn(ctx, id, caller)
}

func authedRequest(t *testing.T, method, path, body string, claims ports.Claims) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims.UserID != "" {
		c.Set(middleware.CtxUserID, claims.UserID)
		c.Set(middleware.CtxRole, claims.Role)
	}
	return c, rec
}

func TestReservationHandler_Create(t *testing.T) {
	var input ports.CreateReservationInput
	svc := &stubReservationService{
		createFn: func(_ context.Context, in ports.CreateReservationInput) (*domain.Reservation, error) {
			input = in
			return &domain.Reservation{
				ID:       "res-1",
				ClientID: in.ClientID,
				RoomID:   in.RoomID,
				Status:   domain.StatusPending,
				Starts:   in.Starts,
				Ends:     in.Ends,
			}, nil
		},
	}
	h := NewReservationHandler(svc)

	starts := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	ends := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"room_id":"room-7","guest_name":"A Guest","starts":"` + starts + `","ends":"` + ends + `"}`

	c, rec := authedRequest(t, http.MethodPost, "/reservations", body,
		ports.Claims{UserID: "user-1", Role: domain.RoleMember})
	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	// Ownership comes from the verified token, never from the payload.
	if input.ClientID != "user-1" {
		t.Fatalf("expected client id from claims, got %q", input.ClientID)
	}
}

func TestReservationHandler_Create_EndsBeforeStarts(t *testing.T) {
	h := NewReservationHandler(&stubReservationService{})

	starts := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	ends := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"room_id":"room-7","guest_name":"A Guest","starts":"` + starts + `","ends":"` + ends + `"}`

	c, _ := authedRequest(t, http.MethodPost, "/reservations", body,
		ports.Claims{UserID: "user-1", Role: domain.RoleMember})
	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestReservationHandler_Create_MissingClaims(t *testing.T) {
	h := NewReservationHandler(&stubReservationService{})

	starts := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
	ends := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	body := `{"room_id":"room-7","guest_name":"A Guest","starts":"` + starts + `","ends":"` + ends + `"}`

	c, _ := authedRequest(t, http.MethodPost, "/reservations", body, ports.Claims{})
	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestReservationHandler_List(t *testing.T) {
	var gotFilter ports.ListReservationsFilter
	var gotCaller ports.Claims
	svc := &stubReservationService{
		listFn: func(_ context.Context, filter ports.ListReservationsFilter, caller ports.Claims) ([]*domain.Reservation, int64, error) {
			gotFilter = filter
			gotCaller = caller
			return []*domain.Reservation{{ID: "res-1", ClientID: caller.UserID}}, 1, nil
		},
	}
	h := NewReservationHandler(svc)

	c, rec := authedRequest(t, http.MethodGet, "/reservations?room_id=room-7&status=pending&page=2&limit=10", "",
		ports.Claims{UserID: "user-1", Role: domain.RoleMember})
	if err := h.List(c); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotFilter.RoomID != "room-7" || gotFilter.Status != "pending" || gotFilter.Page != 2 || gotFilter.Limit != 10 {
		t.Fatalf("query params not forwarded: %+v", gotFilter)
	}
	if gotCaller.UserID != "user-1" {
		t.Fatalf("caller not forwarded: %+v", gotCaller)
	}

	var resp listReservationsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Total != 1 || len(resp.Items) != 1 || resp.Page != 2 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestReservationHandler_Cancel(t *testing.T) {
	var cancelledID string
	svc := &stubReservationService{
		cancelFn: func(_ context.Context, id string, _ ports.Claims) error {
			cancelledID = id
			return nil
		},
	}
	h := NewReservationHandler(svc)

	c, rec := authedRequest(t, http.MethodDelete, "/reservations/res-1", "",
		ports.Claims{UserID: "user-1", Role: domain.RoleMember})
	c.SetParamNames("id")
	c.SetParamValues("res-1")

	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if cancelledID != "res-1" {
		t.Fatalf("expected res-1, got %q", cancelledID)
	}
}

func TestReservationHandler_Confirm_InvalidTransitionPassThrough(t *testing.T) {
	svc := &stubReservationService{
		confirmFn: func(_ context.Context, _ string, _ ports.Claims) (*domain.Reservation, error) {
			return nil, domain.ErrInvalidTransition
		},
	}
	h := NewReservationHandler(svc)

	c, _ := authedRequest(t, http.MethodPost, "/reservations/res-1/confirm", "",
		ports.Claims{UserID: "user-1", Role: domain.RoleMember})
	c.SetParamNames("id")
	c.SetParamValues("res-1")

	if err := h.Confirm(c); err != domain.ErrInvalidTransition {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
