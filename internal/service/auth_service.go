package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shortlink-service/shortlink/internal/database"
	"github.com/shortlink-service/shortlink/internal/models"
	"github.com/shortlink-service/shortlink/pkg/trx"
)

// UserRepository defines the persistence operations shared by the auth and
// user services.
type UserRepository interface {
	Save(ctx context.Context, user *models.User, tc trx.Context) (int64, error)
	Update(ctx context.Context, user *models.User, tc trx.Context) error
	FindByID(ctx context.Context, id int64, tc trx.Context) (*models.User, error)
	FindByEmail(ctx context.Context, email string, tc trx.Context) (*models.User, error)
	FindByCredentials(ctx context.Context, email, passwordDigest string, tc trx.Context) (*models.User, error)
}

// AuthService handles registration and login. It consumes password digests,
// never plaintext passwords; hashing happens at the transport boundary.
type AuthService struct {
	repo    UserRepository
	factory trx.Factory
}

func NewAuthService(repo UserRepository, factory trx.Factory) *AuthService {
	return &AuthService{
		repo:    repo,
		factory: factory,
	}
}

// Register creates a new user unless the email is already taken. The existence
// check and the insert run in one transaction.
func (s *AuthService) Register(ctx context.Context, name, email, passwordDigest string) (int64, error) {
	const op = "service.AuthService.Register"

	var userID int64

	err := s.factory.Begin(ctx, func(tc trx.Context) error {
		_, err := s.repo.FindByEmail(ctx, email, tc)
		if err == nil {
			return database.ErrUserExists
		}
		if !errors.Is(err, database.ErrUserNotFound) {
			return err
		}

		user := &models.User{
			Name:           name,
			Email:          email,
			PasswordDigest: passwordDigest,
		}

		userID, err = s.repo.Save(ctx, user, tc)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("%s: failed to register user: %w", op, err)
	}

	return userID, nil
}

// Login returns the user matching the email and password digest.
func (s *AuthService) Login(ctx context.Context, email, passwordDigest string) (*models.User, error) {
	const op = "service.AuthService.Login"

	user, err := s.repo.FindByCredentials(ctx, email, passwordDigest, trx.Empty())
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: failed to login user: %w", op, err)
	}

	return user, nil
}
