package service

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike, so
	// the response never reveals which one failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrNotFound           = errors.New("not found")
	ErrInvalidOTP         = errors.New("invalid or expired OTP")
	ErrForbidden          = errors.New("not authorized to access this data")
	ErrValidation         = errors.New("invalid input")
)

// NotVerifiedError is the soft login failure for accounts that still have a
// pending OTP challenge. It carries the user ID so the client can re-enter
// the verification flow.
type NotVerifiedError struct {
	UserID string
}

func (e *NotVerifiedError) Error() string {
	return fmt.Sprintf("account not verified: %s", e.UserID)
}
