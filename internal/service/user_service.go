package service

import (
	"context"
	"fmt"

	"github.com/shortlink-service/shortlink/internal/models"
	"github.com/shortlink-service/shortlink/pkg/trx"
)

// UserService manages user profiles.
type UserService struct {
	repo    UserRepository
	factory trx.Factory
}

func NewUserService(repo UserRepository, factory trx.Factory) *UserService {
	return &UserService{
		repo:    repo,
		factory: factory,
	}
}

// ChangeName updates the user's display name. Fetch and update run in one
// transaction so a concurrent profile change cannot be partially overwritten.
func (s *UserService) ChangeName(ctx context.Context, userID int64, name string) error {
	const op = "service.UserService.ChangeName"

	err := s.factory.Begin(ctx, func(tc trx.Context) error {
		user, err := s.repo.FindByID(ctx, userID, tc)
		if err != nil {
			return err
		}

		user.Name = name

		return s.repo.Update(ctx, user, tc)
	})
	if err != nil {
		return fmt.Errorf("%s: failed to change user name: %w", op, err)
	}

	return nil
}

// GetUserInfo returns the public projection of a user.
func (s *UserService) GetUserInfo(ctx context.Context, userID int64) (*models.UserInfo, error) {
	const op = "service.UserService.GetUserInfo"

	user, err := s.repo.FindByID(ctx, userID, trx.Empty())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get user info: %w", op, err)
	}

	info := user.Info()

	return &info, nil
}
