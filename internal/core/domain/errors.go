package domain

// Error is a domain failure carrying a stable machine-readable code alongside
// the human message. Use cases return these unchanged so the transport layer
// can map codes to HTTP statuses without string matching.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Is matches two domain errors by code, so errors.Is works on the sentinels
// below regardless of the message text.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password"
	// so login failures cannot be used to enumerate accounts.
	ErrInvalidCredentials = &Error{Code: "INVALID_CREDENTIALS", Message: "invalid email or password"}

	ErrDuplicateEmail      = &Error{Code: "DUPLICATE_EMAIL", Message: "email is already registered"}
	ErrNonExistentEmail    = &Error{Code: "NONEXISTENT_EMAIL", Message: "email address is not registered"}
	ErrInvalidAccessToken  = &Error{Code: "INVALID_ACCESS_TOKEN", Message: "access token is invalid or expired"}
	ErrInvalidRefreshToken = &Error{Code: "INVALID_REFRESH_TOKEN", Message: "refresh token is invalid, expired or already used"}
	ErrInvalidResetToken   = &Error{Code: "INVALID_RESET_TOKEN", Message: "reset token is invalid, expired or already used"}
	ErrMissingToken        = &Error{Code: "MISSING_TOKEN", Message: "missing authorization header"}
	ErrForbidden           = &Error{Code: "FORBIDDEN", Message: "insufficient role for this operation"}
	ErrUserNotFound        = &Error{Code: "USER_NOT_FOUND", Message: "user not found"}
	ErrReservationNotFound = &Error{Code: "RESERVATION_NOT_FOUND", Message: "reservation not found"}
	ErrInvalidTransition   = &Error{Code: "INVALID_TRANSITION", Message: "invalid reservation status transition"}

	// ErrUnexpected classifies collaborator failures that have no domain
	// meaning. The original cause is logged at the boundary, never returned.
	ErrUnexpected = &Error{Code: "UNEXPECTED_ERROR", Message: "unexpected internal error"}
)
