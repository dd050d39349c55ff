// Package otp generates and checks one-time verification codes.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"esiapp/internal/domain"
)

const DefaultTTL = 10 * time.Minute

var codeSpace = big.NewInt(1000000)

// Issuer mints and validates 6-digit codes with a fixed validity window.
type Issuer struct {
	ttl time.Duration
	now func() time.Time
}

// NewIssuer returns an Issuer. ttl <= 0 selects DefaultTTL.
func NewIssuer(ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{ttl: ttl, now: time.Now}
}

// Issue attaches a fresh uniformly random 6-digit code to u and returns it.
// Any previous challenge is overwritten: a single outstanding code per user.
// The caller persists the mutation.
func (i *Issuer) Issue(u *domain.User) (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("otp rand: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	u.OTP = &domain.OTP{
		Code:      code,
		ExpiresAt: i.now().Add(i.ttl),
	}
	return code, nil
}

// Validate reports whether submitted matches u's outstanding code within its
// validity window. A code submitted at exactly the expiry instant is still
// accepted. Validate never mutates u: clearing the challenge and flipping
// the verified flag is the caller's job after the first success.
func (i *Issuer) Validate(u *domain.User, submitted string) bool {
	if u.OTP == nil || u.OTP.Code == "" {
		return false
	}
	if submitted != u.OTP.Code {
		return false
	}
	return !i.now().After(u.OTP.ExpiresAt)
}
