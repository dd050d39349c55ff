package service

import (
	"context"
	"testing"
	"time"

	dom "esiapp/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedgerRepo struct {
	byUser map[string]*dom.Ledger
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{byUser: map[string]*dom.Ledger{}}
}

func copyLedger(l *dom.Ledger) dom.Ledger {
	numbers := make(map[string]float64, len(l.Numbers))
	for k, v := range l.Numbers {
		numbers[k] = v
	}
	out := *l
	out.Numbers = numbers
	return out
}

func (r *fakeLedgerRepo) GetByUserID(_ context.Context, userID string) (dom.Ledger, error) {
	l, ok := r.byUser[userID]
	if !ok {
		return dom.Ledger{}, pgx.ErrNoRows
	}
	return copyLedger(l), nil
}

func (r *fakeLedgerRepo) GetByID(_ context.Context, id string) (dom.Ledger, error) {
	for _, l := range r.byUser {
		if l.ID == id {
			return copyLedger(l), nil
		}
	}
	return dom.Ledger{}, pgx.ErrNoRows
}

func (r *fakeLedgerRepo) ensure(userID string) *dom.Ledger {
	l, ok := r.byUser[userID]
	if !ok {
		l = &dom.Ledger{
			ID:        uuid.NewString(),
			UserID:    userID,
			Numbers:   map[string]float64{},
			CreatedAt: time.Now(),
		}
		r.byUser[userID] = l
	}
	return l
}

func (r *fakeLedgerRepo) UpsertAdd(_ context.Context, userID, key string, delta float64) (dom.Ledger, error) {
	l := r.ensure(userID)
	l.Numbers[key] += delta
	return copyLedger(l), nil
}

func (r *fakeLedgerRepo) UpsertSet(_ context.Context, userID, key string, value float64) (dom.Ledger, error) {
	l := r.ensure(userID)
	l.Numbers[key] = value
	return copyLedger(l), nil
}

func (r *fakeLedgerRepo) SetKey(_ context.Context, userID, key string, value float64) (dom.Ledger, error) {
	l, ok := r.byUser[userID]
	if !ok {
		return dom.Ledger{}, pgx.ErrNoRows
	}
	l.Numbers[key] = value
	return copyLedger(l), nil
}

func (r *fakeLedgerRepo) DeleteKey(_ context.Context, userID, key string) (dom.Ledger, error) {
	l, ok := r.byUser[userID]
	if !ok {
		return dom.Ledger{}, pgx.ErrNoRows
	}
	if _, present := l.Numbers[key]; !present {
		return dom.Ledger{}, pgx.ErrNoRows
	}
	delete(l.Numbers, key)
	return copyLedger(l), nil
}

func (r *fakeLedgerRepo) ClearAll(_ context.Context, userID string) (dom.Ledger, error) {
	l, ok := r.byUser[userID]
	if !ok {
		return dom.Ledger{}, pgx.ErrNoRows
	}
	l.Numbers = map[string]float64{}
	return copyLedger(l), nil
}

func (r *fakeLedgerRepo) ReplaceNumbers(_ context.Context, id string, numbers map[string]float64) (dom.Ledger, error) {
	for _, l := range r.byUser {
		if l.ID == id {
			l.Numbers = make(map[string]float64, len(numbers))
			for k, v := range numbers {
				l.Numbers[k] = v
			}
			return copyLedger(l), nil
		}
	}
	return dom.Ledger{}, pgx.ErrNoRows
}

func (r *fakeLedgerRepo) DeleteByID(_ context.Context, id string) error {
	for userID, l := range r.byUser {
		if l.ID == id {
			delete(r.byUser, userID)
			return nil
		}
	}
	return nil
}

func TestGetNumbers_EmptyWithoutLedger(t *testing.T) {
	t.Parallel()

	repo := newFakeLedgerRepo()
	svc := NewLedgerService(repo, nil)

	numbers, err := svc.GetNumbers(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, numbers)
	assert.NotContains(t, repo.byUser, "u1", "a read never creates a ledger")
}

func TestUpsert_AddFromAbsentLedgerStartsAtZero(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(newFakeLedgerRepo(), nil)

	numbers, err := svc.Upsert(context.Background(), "u1", "01", 50, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"01": 50}, numbers)
}

func TestUpsert_SetThenAddAccumulates(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(newFakeLedgerRepo(), nil)

	_, err := svc.Upsert(context.Background(), "u1", "01", 50, false)
	require.NoError(t, err)
	numbers, err := svc.Upsert(context.Background(), "u1", "01", 10, true)
	require.NoError(t, err)
	assert.Equal(t, 60.0, numbers["01"])
}

func TestUpsert_SetOverwrites(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(newFakeLedgerRepo(), nil)

	_, err := svc.Upsert(context.Background(), "u1", "01", 50, false)
	require.NoError(t, err)
	numbers, err := svc.Upsert(context.Background(), "u1", "01", 7, false)
	require.NoError(t, err)
	assert.Equal(t, 7.0, numbers["01"])
}

func TestUpsert_EmptyKeyRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeLedgerRepo()
	svc := NewLedgerService(repo, nil)

	_, err := svc.Upsert(context.Background(), "u1", "  ", 1, false)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, repo.byUser, "validation failures never touch the store")
}

func TestClearAll_IdempotentWithoutLedger(t *testing.T) {
	t.Parallel()

	repo := newFakeLedgerRepo()
	svc := NewLedgerService(repo, nil)

	numbers, err := svc.ClearAll(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, numbers)
	assert.NotContains(t, repo.byUser, "u1", "clearAll never creates a record")
}

func TestClearAll_ResetsExistingLedger(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(newFakeLedgerRepo(), nil)

	_, err := svc.Upsert(context.Background(), "u1", "01", 50, false)
	require.NoError(t, err)

	numbers, err := svc.ClearAll(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, numbers)
}

func TestResetKey_DefaultsAndNotFound(t *testing.T) {
	t.Parallel()

	svc := NewLedgerService(newFakeLedgerRepo(), nil)

	_, err := svc.ResetKey(context.Background(), "u1", "01", 50)
	assert.ErrorIs(t, err, ErrNotFound, "reset requires an existing ledger")

	_, err = svc.Upsert(context.Background(), "u1", "01", 99, false)
	require.NoError(t, err)
	numbers, err := svc.ResetKey(context.Background(), "u1", "01", 50)
	require.NoError(t, err)
	assert.Equal(t, 50.0, numbers["01"])
}

func TestDeleteKey_AbsentKeyLeavesLedgerUnchanged(t *testing.T) {
	t.Parallel()

	repo := newFakeLedgerRepo()
	svc := NewLedgerService(repo, nil)

	_, err := svc.DeleteKey(context.Background(), "u1", "01")
	assert.ErrorIs(t, err, ErrNotFound, "no ledger at all")

	_, err = svc.Upsert(context.Background(), "u1", "01", 50, false)
	require.NoError(t, err)

	_, err = svc.DeleteKey(context.Background(), "u1", "02")
	assert.ErrorIs(t, err, ErrNotFound, "ledger present, key absent")
	assert.Equal(t, map[string]float64{"01": 50}, repo.byUser["u1"].Numbers)

	numbers, err := svc.DeleteKey(context.Background(), "u1", "01")
	require.NoError(t, err)
	assert.NotContains(t, numbers, "01", "the key becomes absent, not zero")
}

func TestGetByID_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	repo := newFakeLedgerRepo()
	svc := NewLedgerService(repo, nil)

	_, err := svc.Upsert(context.Background(), "owner", "01", 50, false)
	require.NoError(t, err)
	id := repo.byUser["owner"].ID

	l, err := svc.GetByID(context.Background(), "owner", id)
	require.NoError(t, err)
	assert.Equal(t, "owner", l.UserID)

	_, err = svc.GetByID(context.Background(), "intruder", id)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = svc.GetByID(context.Background(), "owner", uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRecord_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	repo := newFakeLedgerRepo()
	svc := NewLedgerService(repo, nil)

	_, err := svc.Upsert(context.Background(), "owner", "01", 50, false)
	require.NoError(t, err)
	id := repo.byUser["owner"].ID

	err = svc.DeleteRecord(context.Background(), "intruder", id)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, repo.byUser, "owner")

	require.NoError(t, svc.DeleteRecord(context.Background(), "owner", id))
	assert.NotContains(t, repo.byUser, "owner")
}

func TestUpdateRecord_ReplacesNumbers(t *testing.T) {
	t.Parallel()

	repo := newFakeLedgerRepo()
	svc := NewLedgerService(repo, nil)

	_, err := svc.Upsert(context.Background(), "owner", "01", 50, false)
	require.NoError(t, err)
	id := repo.byUser["owner"].ID

	l, err := svc.UpdateRecord(context.Background(), "owner", id, map[string]float64{"02": 3})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"02": 3}, l.Numbers)

	_, err = svc.UpdateRecord(context.Background(), "intruder", id, map[string]float64{})
	assert.ErrorIs(t, err, ErrForbidden)
}
