package domain

import "time"

// User is the domain entity for an account.
// Не зависит от Gin, Postgres, Redis.
type User struct {
	ID           string
	Name         string
	Phone        string
	Email        string
	PasswordHash string
	IsVerified   bool
	OTP          *OTP
	CreatedAt    time.Time
}

// OTP is an outstanding one-time verification challenge.
// Code and ExpiresAt are always set together; a nil *OTP means no
// challenge is outstanding.
type OTP struct {
	Code      string
	ExpiresAt time.Time
}
