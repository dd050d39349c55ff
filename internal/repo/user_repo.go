package repo

import (
	"context"
	"time"

	dom "esiapp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepo provides account persistence.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (dom.User, error)
	GetByID(ctx context.Context, id string) (dom.User, error)
	Create(ctx context.Context, u dom.User) (dom.User, error)
	Save(ctx context.Context, u dom.User) error
}

// PGUserRepo implements UserRepo with Postgres.
type PGUserRepo struct {
	db *pgxpool.Pool
}

// NewPGUserRepo returns a new PGUserRepo.
func NewPGUserRepo(db *pgxpool.Pool) *PGUserRepo {
	return &PGUserRepo{db: db}
}

const userColumns = `id, name, phone, email, password_hash, is_verified, otp_code, otp_expires_at, created_at`

func scanUser(row interface{ Scan(...any) error }) (dom.User, error) {
	var (
		u         dom.User
		phone     *string
		otpCode   *string
		otpExpiry *time.Time
	)
	err := row.Scan(&u.ID, &u.Name, &phone, &u.Email, &u.PasswordHash,
		&u.IsVerified, &otpCode, &otpExpiry, &u.CreatedAt)
	if err != nil {
		return dom.User{}, err
	}
	if phone != nil {
		u.Phone = *phone
	}
	if otpCode != nil && otpExpiry != nil {
		u.OTP = &dom.OTP{Code: *otpCode, ExpiresAt: *otpExpiry}
	}
	return u, nil
}

// GetByEmail returns the user by email.
func (r *PGUserRepo) GetByEmail(ctx context.Context, email string) (dom.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByID returns the user by ID.
func (r *PGUserRepo) GetByID(ctx context.Context, id string) (dom.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// Create inserts a new user and returns it with ID and created_at assigned.
func (r *PGUserRepo) Create(ctx context.Context, u dom.User) (dom.User, error) {
	query := `
		INSERT INTO users (id, name, phone, email, password_hash, is_verified, otp_code, otp_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	code, expiry := otpFields(u.OTP)
	row := r.db.QueryRow(ctx, query,
		uuid.NewString(), u.Name, nullable(u.Phone), u.Email, u.PasswordHash,
		u.IsVerified, code, expiry)
	return scanUser(row)
}

// Save persists mutations to an existing user (OTP state, verified flag, details).
func (r *PGUserRepo) Save(ctx context.Context, u dom.User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, email = $4, password_hash = $5,
		    is_verified = $6, otp_code = $7, otp_expires_at = $8
		WHERE id = $1`
	code, expiry := otpFields(u.OTP)
	_, err := r.db.Exec(ctx, query,
		u.ID, u.Name, nullable(u.Phone), u.Email, u.PasswordHash,
		u.IsVerified, code, expiry)
	return err
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func otpFields(o *dom.OTP) (code *string, expiresAt *time.Time) {
	if o == nil {
		return nil, nil
	}
	return &o.Code, &o.ExpiresAt
}
