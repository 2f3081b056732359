package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/roomsync/reservation-system/internal/api/middleware"
	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

func TestUserHandler_Create(t *testing.T) {
	var gotRole string
	svc := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			gotRole = in.Role
			return &domain.User{ID: "user-2", Email: in.Email, Name: in.Name, Role: in.Role}, nil
		},
	}
	h := NewUserHandler(svc)

	c, rec := authedRequest(t, http.MethodPost, "/users",
		`{"email":"new@example.com","name":"New User","password":"s3cret-pass","role":"admin"}`,
		ports.Claims{UserID: "admin-1", Role: domain.RoleAdmin})
	if err := h.Create(c); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if gotRole != domain.RoleAdmin {
		t.Fatalf("requested role not forwarded, got %q", gotRole)
	}
}

func TestUserHandler_Create_RejectsUnknownRole(t *testing.T) {
	h := NewUserHandler(&stubAuthService{})

	c, _ := authedRequest(t, http.MethodPost, "/users",
		`{"email":"new@example.com","name":"New User","password":"s3cret-pass","role":"superuser"}`,
		ports.Claims{UserID: "admin-1", Role: domain.RoleAdmin})
	err := h.Create(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError for unknown role, got %v", err)
	}
}

func TestUserHandler_Me(t *testing.T) {
	h := NewUserHandler(&stubAuthService{})

	c, rec := authedRequest(t, http.MethodGet, "/users/me", "",
		ports.Claims{UserID: "user-1", Role: domain.RoleMember})
	c.Set(middleware.CtxUser, &domain.User{ID: "user-1", Email: "a@example.com", Role: domain.RoleMember})

	if err := h.Me(c); err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ID != "user-1" || resp.Email != "a@example.com" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestUserHandler_Me_WithoutUserInContext(t *testing.T) {
	h := NewUserHandler(&stubAuthService{})

	c, _ := authedRequest(t, http.MethodGet, "/users/me", "", ports.Claims{})
	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
