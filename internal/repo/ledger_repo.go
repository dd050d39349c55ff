package repo

import (
	"context"

	dom "esiapp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LedgerRepo provides persistence for the per-user numbers map. Implementations
// return pgx.ErrNoRows (or an equivalent wrapped no-rows error) when a lookup
// or key-targeting update matches nothing; callers map that to not-found.
type LedgerRepo interface {
	GetByUserID(ctx context.Context, userID string) (dom.Ledger, error)
	GetByID(ctx context.Context, id string) (dom.Ledger, error)
	UpsertAdd(ctx context.Context, userID, key string, delta float64) (dom.Ledger, error)
	UpsertSet(ctx context.Context, userID, key string, value float64) (dom.Ledger, error)
	SetKey(ctx context.Context, userID, key string, value float64) (dom.Ledger, error)
	DeleteKey(ctx context.Context, userID, key string) (dom.Ledger, error)
	ClearAll(ctx context.Context, userID string) (dom.Ledger, error)
	ReplaceNumbers(ctx context.Context, id string, numbers map[string]float64) (dom.Ledger, error)
	DeleteByID(ctx context.Context, id string) error
}

// PGLedgerRepo implements LedgerRepo with Postgres. The numbers map lives in a
// jsonb column and every mutation is a single statement, so concurrent adds on
// the same key accumulate instead of racing read-modify-write.
type PGLedgerRepo struct {
	db *pgxpool.Pool
}

func NewPGLedgerRepo(db *pgxpool.Pool) *PGLedgerRepo {
	return &PGLedgerRepo{db: db}
}

const ledgerColumns = `id, user_id, numbers, created_at`

func scanLedger(row interface{ Scan(...any) error }) (dom.Ledger, error) {
	var l dom.Ledger
	err := row.Scan(&l.ID, &l.UserID, &l.Numbers, &l.CreatedAt)
	return l, err
}

func (r *PGLedgerRepo) GetByUserID(ctx context.Context, userID string) (dom.Ledger, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE user_id = $1`, userID)
	return scanLedger(row)
}

func (r *PGLedgerRepo) GetByID(ctx context.Context, id string) (dom.Ledger, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+ledgerColumns+` FROM ledgers WHERE id = $1`, id)
	return scanLedger(row)
}

// UpsertAdd adds delta to numbers[key], creating the ledger (and the key, from
// zero) when absent.
func (r *PGLedgerRepo) UpsertAdd(ctx context.Context, userID, key string, delta float64) (dom.Ledger, error) {
	query := `
		INSERT INTO ledgers (id, user_id, numbers)
		VALUES ($1, $2, jsonb_build_object($3::text, $4::double precision))
		ON CONFLICT (user_id) DO UPDATE
		SET numbers = jsonb_set(ledgers.numbers, ARRAY[$3::text],
			to_jsonb(COALESCE((ledgers.numbers->>$3)::double precision, 0) + $4::double precision))
		RETURNING ` + ledgerColumns
	row := r.db.QueryRow(ctx, query, uuid.NewString(), userID, key, delta)
	return scanLedger(row)
}

// UpsertSet overwrites numbers[key], creating the ledger when absent.
func (r *PGLedgerRepo) UpsertSet(ctx context.Context, userID, key string, value float64) (dom.Ledger, error) {
	query := `
		INSERT INTO ledgers (id, user_id, numbers)
		VALUES ($1, $2, jsonb_build_object($3::text, $4::double precision))
		ON CONFLICT (user_id) DO UPDATE
		SET numbers = jsonb_set(ledgers.numbers, ARRAY[$3::text], to_jsonb($4::double precision))
		RETURNING ` + ledgerColumns
	row := r.db.QueryRow(ctx, query, uuid.NewString(), userID, key, value)
	return scanLedger(row)
}

// SetKey overwrites numbers[key] on an existing ledger only.
func (r *PGLedgerRepo) SetKey(ctx context.Context, userID, key string, value float64) (dom.Ledger, error) {
	query := `
		UPDATE ledgers
		SET numbers = jsonb_set(numbers, ARRAY[$2::text], to_jsonb($3::double precision))
		WHERE user_id = $1
		RETURNING ` + ledgerColumns
	row := r.db.QueryRow(ctx, query, userID, key, value)
	return scanLedger(row)
}

// DeleteKey removes key from the map. No row matches when the ledger is absent
// or the key is not present, so both surface as no-rows.
func (r *PGLedgerRepo) DeleteKey(ctx context.Context, userID, key string) (dom.Ledger, error) {
	query := `
		UPDATE ledgers
		SET numbers = numbers - $2::text
		WHERE user_id = $1 AND numbers ? $2::text
		RETURNING ` + ledgerColumns
	row := r.db.QueryRow(ctx, query, userID, key)
	return scanLedger(row)
}

// ClearAll resets the map to empty on an existing ledger. It never creates one.
func (r *PGLedgerRepo) ClearAll(ctx context.Context, userID string) (dom.Ledger, error) {
	query := `
		UPDATE ledgers SET numbers = '{}'::jsonb
		WHERE user_id = $1
		RETURNING ` + ledgerColumns
	row := r.db.QueryRow(ctx, query, userID)
	return scanLedger(row)
}

// ReplaceNumbers swaps the whole map on the record with the given id.
func (r *PGLedgerRepo) ReplaceNumbers(ctx context.Context, id string, numbers map[string]float64) (dom.Ledger, error) {
	query := `
		UPDATE ledgers SET numbers = $2
		WHERE id = $1
		RETURNING ` + ledgerColumns
	row := r.db.QueryRow(ctx, query, id, numbers)
	return scanLedger(row)
}

func (r *PGLedgerRepo) DeleteByID(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM ledgers WHERE id = $1`, id)
	return err
}
