package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"esiapp/internal/auth"
	dom "esiapp/internal/domain"
	"esiapp/internal/otp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	byID map[string]dom.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]dom.User{}}
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (dom.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u dom.User) (dom.User, error) {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return dom.User{}, &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.byID[u.ID] = u
	return u, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u dom.User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.byID[u.ID] = u
	return nil
}

type fakeNotifier struct {
	sent []string // destination addresses
	err  error
}

func (n *fakeNotifier) Send(_ context.Context, to, _, _ string) error {
	n.sent = append(n.sent, to)
	return n.err
}

func newAuthService(users *fakeUserRepo, notifier *fakeNotifier) *AuthService {
	return NewAuthService(
		users,
		auth.NewBcryptHasher(bcrypt.MinCost),
		otp.NewIssuer(10*time.Minute),
		auth.NewJWTManager([]byte("test-secret"), time.Hour),
		notifier,
		zap.NewNop(),
	)
}

func TestRegister_CreatesPendingVerification(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newAuthService(users, notifier)

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)

	stored := users.byID[u.ID]
	assert.False(t, stored.IsVerified)
	require.NotNil(t, stored.OTP)
	assert.Len(t, stored.OTP.Code, 6)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.Equal(t, []string{"alice@example.com"}, notifier.sent)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newAuthService(users, &fakeNotifier{})

	_, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other Alice", "alice@example.com", "", "different")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserRepo(), &fakeNotifier{})

	_, err := svc.Register(context.Background(), "", "alice@example.com", "", "secret123")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Register(context.Background(), "Alice", "alice@example.com", "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_NotifierFailureIsSwallowed(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	svc := newAuthService(users, notifier)

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err, "delivery failure must not fail registration")
	assert.NotEmpty(t, u.ID)
}

func TestVerifyOTP_TransitionsToVerified(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newAuthService(users, &fakeNotifier{})

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)
	code := users.byID[u.ID].OTP.Code

	verified, token, err := svc.VerifyOTP(context.Background(), u.ID, code)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, verified.IsVerified)
	assert.Nil(t, verified.OTP, "challenge is consumed")

	stored := users.byID[u.ID]
	assert.True(t, stored.IsVerified)
	assert.Nil(t, stored.OTP)
}

func TestVerifyOTP_ReplayFails(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newAuthService(users, &fakeNotifier{})

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)
	code := users.byID[u.ID].OTP.Code

	_, _, err = svc.VerifyOTP(context.Background(), u.ID, code)
	require.NoError(t, err)

	_, _, err = svc.VerifyOTP(context.Background(), u.ID, code)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestVerifyOTP_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserRepo(), &fakeNotifier{})
	_, _, err := svc.VerifyOTP(context.Background(), uuid.NewString(), "123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyOTP_WrongCode(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newAuthService(users, &fakeNotifier{})

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)

	wrong := "000000"
	if users.byID[u.ID].OTP.Code == wrong {
		wrong = "000001"
	}
	_, _, err = svc.VerifyOTP(context.Background(), u.ID, wrong)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	assert.False(t, users.byID[u.ID].IsVerified, "failed validation never mutates")
	assert.NotNil(t, users.byID[u.ID].OTP)
}

func TestResendOTP_InvalidatesPriorCode(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newAuthService(users, &fakeNotifier{})

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)
	first := users.byID[u.ID].OTP.Code

	require.NoError(t, svc.ResendOTP(context.Background(), u.ID))
	second := users.byID[u.ID].OTP.Code

	if first != second {
		_, _, err = svc.VerifyOTP(context.Background(), u.ID, first)
		assert.ErrorIs(t, err, ErrInvalidOTP, "old code must fail after resend")
	}
	_, _, err = svc.VerifyOTP(context.Background(), u.ID, second)
	assert.NoError(t, err)
}

func TestResendOTP_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newAuthService(newFakeUserRepo(), &fakeNotifier{})
	err := svc.ResendOTP(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLogin_IdenticalErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newAuthService(users, &fakeNotifier{})

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)
	code := users.byID[u.ID].OTP.Code
	_, _, err = svc.VerifyOTP(context.Background(), u.ID, code)
	require.NoError(t, err)

	_, _, errUnknown := svc.Login(context.Background(), "nobody@example.com", "secret123")
	_, _, errWrongPass := svc.Login(context.Background(), "alice@example.com", "wrong")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrongPass.Error(),
		"the response must not reveal whether the email exists")
}

func TestLogin_UnverifiedGetsFreshOTPAndNoSession(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	svc := newAuthService(users, notifier)

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)
	sendsAfterRegister := len(notifier.sent)

	_, token, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	assert.Empty(t, token)

	var notVerified *NotVerifiedError
	require.ErrorAs(t, err, &notVerified)
	assert.Equal(t, u.ID, notVerified.UserID)
	assert.Len(t, notifier.sent, sendsAfterRegister+1, "a fresh code is mailed")
	assert.NotNil(t, users.byID[u.ID].OTP)
}

func TestLogin_VerifiedGetsSession(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newAuthService(users, &fakeNotifier{})

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)
	code := users.byID[u.ID].OTP.Code
	_, _, err = svc.VerifyOTP(context.Background(), u.ID, code)
	require.NoError(t, err)

	got, token, err := svc.Login(context.Background(), "alice@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, u.ID, got.ID)
}

func TestLogin_NotifierFailureStillSoftFails(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo()
	svc := newAuthService(users, &fakeNotifier{})

	u, err := svc.Register(context.Background(), "Alice", "alice@example.com", "", "secret123")
	require.NoError(t, err)

	// Notifier starts failing after registration.
	failing := &fakeNotifier{err: errors.New("smtp down")}
	svcFailing := newAuthService(users, failing)

	_, _, err = svcFailing.Login(context.Background(), "alice@example.com", "secret123")
	var notVerified *NotVerifiedError
	require.ErrorAs(t, err, &notVerified,
		"delivery failure must not change the login outcome")
	assert.Equal(t, u.ID, notVerified.UserID)
}
