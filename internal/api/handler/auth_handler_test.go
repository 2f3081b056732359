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

	"github.com/roomsync/reservation-system/internal/core/domain"
	"github.com/roomsync/reservation-system/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*ports.TokenPair, error)
	requestFn  func(ctx context.Context, email string) error
	confirmFn  func(ctx context.Context, resetToken, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) CreateUserByAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestFn(ctx, email)
}

func (s *stubAuthService) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword string) error {
	return s.confirmFn(ctx, resetToken, newPassword)
}

func postJSON(t *testing.T, h echo.HandlerFunc, path, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()

	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, h(c)
}

func TestAuthHandler_Register(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			return &domain.User{
				ID:    "user-1",
				Email: in.Email,
				Name:  in.Name,
				Role:  domain.RoleMember,
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	rec, err := postJSON(t, h.Register, "/users/register",
		`{"email":"alice@example.com","name":"Alice","password":"s3cret-pass"}`)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.ID != "user-1" || resp.Email != "alice@example.com" {
		t.Fatalf("unexpected response %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "s3cret-pass") {
		t.Fatalf("password must never appear in responses")
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"name":"Alice","password":"s3cret-pass"}`},
		{"bad email", `{"email":"not-an-email","name":"Alice","password":"s3cret-pass"}`},
		{"short password", `{"email":"a@example.com","name":"Alice","password":"short"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := postJSON(t, h.Register, "/users/register", tc.body)
			he, ok := err.(*echo.HTTPError)
			if !ok || he.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 HTTPError, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_DuplicateEmailPassesThrough(t *testing.T) {
	svc := &stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrDuplicateEmail
		},
	}
	h := NewAuthHandler(svc)

	// Domain errors are returned untouched for the central error handler.
	if _, err := postJSON(t, h.Register, "/users/register",
		`{"email":"a@example.com","name":"Alice","password":"s3cret-pass"}`); err != domain.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	expires := time.Now().Add(15 * time.Minute).UTC()
	svc := &stubAuthService{
		loginFn: func(_ context.Context, email, _ string) (*ports.LoginResult, error) {
			return &ports.LoginResult{
				User: &domain.User{ID: "user-1", Email: email, Role: domain.RoleMember},
				Tokens: ports.TokenPair{
					AccessToken:  ports.AccessToken{Token: "jwt-token", ExpiresAt: expires},
					RefreshToken: "refresh-token",
				},
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	rec, err := postJSON(t, h.Login, "/users/login",
		`{"email":"alice@example.com","password":"s3cret-pass"}`)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp loginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Tokens.AccessToken != "jwt-token" || resp.Tokens.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected tokens %+v", resp.Tokens)
	}
}

func TestAuthHandler_Login_InvalidCredentialsPassThrough(t *testing.T) {
	svc := &stubAuthService{
		loginFn: func(_ context.Context, _, _ string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(svc)

	if _, err := postJSON(t, h.Login, "/users/login",
		`{"email":"alice@example.com","password":"wrong-pass"}`); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	svc := &stubAuthService{
		refreshFn: func(_ context.Context, refreshToken string) (*ports.TokenPair, error) {
			if refreshToken != "old-refresh" {
				return nil, domain.ErrInvalidRefreshToken
			}
			return &ports.TokenPair{
				AccessToken:  ports.AccessToken{Token: "new-jwt", ExpiresAt: time.Now().Add(time.Minute)},
				RefreshToken: "new-refresh",
			}, nil
		},
	}
	h := NewAuthHandler(svc)

	rec, err := postJSON(t, h.Refresh, "/users/refresh", `{"refresh_token":"old-refresh"}`)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp tokenPairResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.RefreshToken != "new-refresh" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestAuthHandler_ResetFlow(t *testing.T) {
	var requestedEmail, confirmedToken string
	svc := &stubAuthService{
		requestFn: func(_ context.Context, email string) error {
			requestedEmail = email
			return nil
		},
		confirmFn: func(_ context.Context, resetToken, _ string) error {
			confirmedToken = resetToken
			return nil
		},
	}
	h := NewAuthHandler(svc)

	rec, err := postJSON(t, h.RequestReset, "/users/reset-password",
		`{"email":"alice@example.com"}`)
	if err != nil {
		t.Fatalf("RequestReset returned error: %v", err)
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	if requestedEmail != "alice@example.com" {
		t.Fatalf("service called with %q", requestedEmail)
	}

	rec, err = postJSON(t, h.ConfirmReset, "/users/reset-password/confirm",
		`{"reset_token":"tok-123","new_password":"brand-new-pass"}`)
	if err != nil {
		t.Fatalf("ConfirmReset returned error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if confirmedToken != "tok-123" {
		t.Fatalf("service called with %q", confirmedToken)
	}
}
