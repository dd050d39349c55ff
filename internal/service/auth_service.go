package service

import (
	"context"
	"errors"
	"strings"

	"esiapp/internal/auth"
	dom "esiapp/internal/domain"
	"esiapp/internal/mail"
	"esiapp/internal/otp"
	"esiapp/internal/repo"
	"esiapp/internal/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// AuthService drives the account lifecycle:
// unregistered -> pending verification (OTP outstanding) -> verified.
// VerifyOTP is the only transition that sets the verified flag.
type AuthService struct {
	users    repo.UserRepo
	hasher   auth.PasswordHasher
	otp      *otp.Issuer
	tokens   auth.TokenManager
	notifier mail.Notifier
	log      *zap.Logger
}

// NewAuthService returns a new AuthService.
func NewAuthService(users repo.UserRepo, hasher auth.PasswordHasher, issuer *otp.Issuer,
	tokens auth.TokenManager, notifier mail.Notifier, log *zap.Logger) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		otp:      issuer,
		tokens:   tokens,
		notifier: notifier,
		log:      log,
	}
}

// Register creates an unverified account with an outstanding OTP challenge and
// attempts to mail the code. No session is issued before verification.
func (s *AuthService) Register(ctx context.Context, name, email, phone, password string) (dom.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if name == "" || email == "" || password == "" {
		return dom.User{}, ErrValidation
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return dom.User{}, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return dom.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return dom.User{}, err
	}
	u := dom.User{
		Name:         name,
		Phone:        phone,
		Email:        email,
		PasswordHash: hash,
	}
	code, err := s.otp.Issue(&u)
	if err != nil {
		return dom.User{}, err
	}

	created, err := s.users.Create(ctx, u)
	if err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}

	s.deliverOTP(ctx, created, code, "Welcome to ESI App!")
	return created, nil
}

// VerifyOTP consumes the outstanding challenge. On the first success it marks
// the account verified, clears the challenge and issues a session token.
// Replaying a consumed code fails because the challenge is gone.
func (s *AuthService) VerifyOTP(ctx context.Context, userID, code string) (dom.User, string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, "", ErrNotFound
		}
		return dom.User{}, "", err
	}

	if !s.otp.Validate(&u, code) {
		return dom.User{}, "", ErrInvalidOTP
	}

	u.IsVerified = true
	u.OTP = nil
	if err := s.users.Save(ctx, u); err != nil {
		return dom.User{}, "", err
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return dom.User{}, "", err
	}
	return u, token, nil
}

// Login checks credentials and issues a session token for verified accounts.
// An unverified account with correct credentials gets a fresh OTP (the old
// code is invalidated) and a NotVerifiedError instead of a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (dom.User, string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return dom.User{}, "", ErrValidation
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, "", ErrInvalidCredentials
		}
		return dom.User{}, "", err
	}
	if !s.hasher.Compare(u.PasswordHash, password) {
		return dom.User{}, "", ErrInvalidCredentials
	}

	if !u.IsVerified {
		code, err := s.otp.Issue(&u)
		if err != nil {
			return dom.User{}, "", err
		}
		if err := s.users.Save(ctx, u); err != nil {
			return dom.User{}, "", err
		}
		s.deliverOTP(ctx, u, code, "Welcome to ESI App!")
		return dom.User{}, "", &NotVerifiedError{UserID: u.ID}
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return dom.User{}, "", err
	}
	return u, token, nil
}

// ResendOTP replaces any outstanding challenge with a fresh one and mails it,
// regardless of the account's verification state.
func (s *AuthService) ResendOTP(ctx context.Context, userID string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	code, err := s.otp.Issue(&u)
	if err != nil {
		return err
	}
	if err := s.users.Save(ctx, u); err != nil {
		return err
	}

	s.deliverOTP(ctx, u, code, "ESI App - OTP Resent")
	return nil
}

// deliverOTP mails the code best-effort. Delivery failures are logged and
// swallowed: the enclosing operation still succeeds.
func (s *AuthService) deliverOTP(ctx context.Context, u dom.User, code, heading string) {
	// Logged so the code is recoverable in dev environments without SMTP.
	s.log.Info("OTP issued", zap.String("email", u.Email), zap.String("otp", code))

	if err := s.notifier.Send(ctx, u.Email, mail.OTPSubject(), mail.OTPBody(heading, code)); err != nil {
		s.log.Error("OTP email delivery failed",
			zap.String("email", u.Email),
			zap.Error(err),
		)
	}
}
