package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/shortlink-service/shortlink/internal/database"
	"github.com/shortlink-service/shortlink/internal/models"
)

func setupUserService(t testing.TB) (*UserService, *MockUserRepository, *fakeFactory) {
	t.Helper()

	repo := new(MockUserRepository)
	factory := new(fakeFactory)
	svc := NewUserService(repo, factory)

	return svc, repo, factory
}

func TestUserService_ChangeName(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		svc, repo, _ := setupUserService(t)

		repo.On("FindByID", mock.Anything, int64(7), mock.Anything).
			Once().
			Return(nil, database.ErrUserNotFound)

		err := svc.ChangeName(context.TODO(), 7, "bob")

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		repo.AssertExpectations(t)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("success", func(t *testing.T) {
		svc, repo, factory := setupUserService(t)

		repo.On("FindByID", mock.Anything, int64(7), mock.Anything).
			Once().
			Return(&models.User{ID: 7, Name: "alice"}, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(user *models.User) bool {
			return user.ID == 7 && user.Name == "bob"
		}), mock.Anything).
			Once().
			Return(nil)

		err := svc.ChangeName(context.TODO(), 7, "bob")

		assert.NoError(t, err)
		assert.Equal(t, 1, factory.begun)
		repo.AssertExpectations(t)
	})
}

func TestUserService_GetUserInfo(t *testing.T) {
	t.Run("user not found", func(t *testing.T) {
		svc, repo, _ := setupUserService(t)

		repo.On("FindByID", mock.Anything, int64(7), mock.Anything).
			Once().
			Return(nil, database.ErrUserNotFound)

		info, err := svc.GetUserInfo(context.TODO(), 7)

		assert.Error(t, err)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
		assert.Nil(t, info)
		repo.AssertExpectations(t)
	})

	t.Run("success", func(t *testing.T) {
		svc, repo, _ := setupUserService(t)

		repo.On("FindByID", mock.Anything, int64(7), mock.Anything).
			Once().
			Return(&models.User{ID: 7, Name: "alice", Email: "alice@example.com", PasswordDigest: "digest"}, nil)

		info, err := svc.GetUserInfo(context.TODO(), 7)

		assert.NoError(t, err)
		assert.Equal(t, &models.UserInfo{ID: 7, Name: "alice", Email: "alice@example.com"}, info)
		repo.AssertExpectations(t)
	})
}
