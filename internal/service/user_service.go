package service

import (
	"context"
	"errors"
	"strings"

	dom "esiapp/internal/domain"
	"esiapp/internal/repo"
	"esiapp/internal/utils"

	"github.com/jackc/pgx/v5"
)

// UserService serves the account detail endpoints.
type UserService struct {
	users repo.UserRepo
}

// NewUserService returns a new UserService.
func NewUserService(users repo.UserRepo) *UserService {
	return &UserService{users: users}
}

// Me returns the account for userID.
func (s *UserService) Me(ctx context.Context, userID string) (dom.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}
	return u, nil
}

// UpdateDetails changes name and/or email; empty fields keep current values.
func (s *UserService) UpdateDetails(ctx context.Context, userID, name, email string) (dom.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.User{}, ErrNotFound
		}
		return dom.User{}, err
	}

	if name = strings.TrimSpace(name); name != "" {
		u.Name = name
	}
	if email = strings.TrimSpace(email); email != "" {
		u.Email = email
	}

	if err := s.users.Save(ctx, u); err != nil {
		if utils.IsPGUniqueViolation(err) {
			return dom.User{}, ErrEmailTaken
		}
		return dom.User{}, err
	}
	return u, nil
}
