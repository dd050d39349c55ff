package service

import (
	"context"
	"errors"
	"strings"

	"esiapp/internal/cache"
	dom "esiapp/internal/domain"
	"esiapp/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
)

// LedgerService owns the per-user sparse numbers map. If c is nil, caching
// is disabled.
type LedgerService struct {
	repo  repo.LedgerRepo
	cache *cache.LedgerCache
	sf    singleflight.Group
}

func NewLedgerService(r repo.LedgerRepo, c *cache.LedgerCache) *LedgerService {
	return &LedgerService{repo: r, cache: c}
}

// GetNumbers returns the user's map. A user without a ledger gets an empty
// map, never an error.
func (s *LedgerService) GetNumbers(ctx context.Context, userID string) (map[string]float64, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("numbers:"+userID, func() (interface{}, error) {
			if numbers, err := s.cache.GetNumbers(ctx, userID); err == nil && numbers != nil {
				return numbers, nil
			}
			numbers, err := s.loadNumbers(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetNumbers(ctx, userID, numbers)
			return numbers, nil
		})
		if err != nil {
			return nil, err
		}
		return v.(map[string]float64), nil
	}
	return s.loadNumbers(ctx, userID)
}

func (s *LedgerService) loadNumbers(ctx context.Context, userID string) (map[string]float64, error) {
	l, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return map[string]float64{}, nil
		}
		return nil, err
	}
	if l.Numbers == nil {
		return map[string]float64{}, nil
	}
	return l.Numbers, nil
}

// Upsert sets numbers[key] = value, or adds value to the existing entry when
// isAdd is true (an absent key counts as zero). The ledger is created lazily
// on first write.
func (s *LedgerService) Upsert(ctx context.Context, userID, key string, value float64, isAdd bool) (map[string]float64, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrValidation
	}
	var (
		l   dom.Ledger
		err error
	)
	if isAdd {
		l, err = s.repo.UpsertAdd(ctx, userID, key, value)
	} else {
		l, err = s.repo.UpsertSet(ctx, userID, key, value)
	}
	if err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, userID)
	return l.Numbers, nil
}

// ClearAll resets the map to empty. Idempotent: a user without a ledger gets
// an empty map back and no record is created.
func (s *LedgerService) ClearAll(ctx context.Context, userID string) (map[string]float64, error) {
	l, err := s.repo.ClearAll(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return map[string]float64{}, nil
		}
		return nil, err
	}
	s.invalidateCache(ctx, userID)
	return l.Numbers, nil
}

// ResetKey unconditionally overwrites numbers[key] on an existing ledger.
func (s *LedgerService) ResetKey(ctx context.Context, userID, key string, value float64) (map[string]float64, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrValidation
	}
	l, err := s.repo.SetKey(ctx, userID, key, value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidateCache(ctx, userID)
	return l.Numbers, nil
}

// DeleteKey removes the entry entirely. The key becomes absent, not zero.
func (s *LedgerService) DeleteKey(ctx context.Context, userID, key string) (map[string]float64, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrValidation
	}
	l, err := s.repo.DeleteKey(ctx, userID, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.invalidateCache(ctx, userID)
	return l.Numbers, nil
}

// GetByID fetches a ledger record by its own id, enforcing that the requester
// owns it.
func (s *LedgerService) GetByID(ctx context.Context, requesterID, id string) (dom.Ledger, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Ledger{}, ErrNotFound
		}
		return dom.Ledger{}, err
	}
	if l.UserID != requesterID {
		return dom.Ledger{}, ErrForbidden
	}
	return l, nil
}

// UpdateRecord replaces the whole numbers map on an owned record.
func (s *LedgerService) UpdateRecord(ctx context.Context, requesterID, id string, numbers map[string]float64) (dom.Ledger, error) {
	if _, err := s.GetByID(ctx, requesterID, id); err != nil {
		return dom.Ledger{}, err
	}
	if numbers == nil {
		numbers = map[string]float64{}
	}
	l, err := s.repo.ReplaceNumbers(ctx, id, numbers)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Ledger{}, ErrNotFound
		}
		return dom.Ledger{}, err
	}
	s.invalidateCache(ctx, requesterID)
	return l, nil
}

// DeleteRecord removes an owned ledger record entirely.
func (s *LedgerService) DeleteRecord(ctx context.Context, requesterID, id string) error {
	if _, err := s.GetByID(ctx, requesterID, id); err != nil {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx, requesterID)
	return nil
}

func (s *LedgerService) invalidateCache(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}
