package service

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/shortlink-service/shortlink/internal/models"
	"github.com/shortlink-service/shortlink/pkg/trx"
)

// fakeFactory runs transactional work against an empty context. It mirrors the
// commit-on-success contract without touching a database: the work's error is
// what Begin returns.
type fakeFactory struct {
	beginErr error
	begun    int
}

func (f *fakeFactory) Begin(ctx context.Context, work func(tc trx.Context) error) error {
	if f.beginErr != nil {
		return f.beginErr
	}

	f.begun++

	return work(trx.Empty())
}

func (f *fakeFactory) ExtractOrCreate(ctx context.Context, tc trx.Context) (*trx.Handle, trx.Release, error) {
	return nil, nil, errors.New("not supported by fakeFactory")
}

type MockLinkRepository struct {
	mock.Mock
}

func (m *MockLinkRepository) NextLinkID(ctx context.Context, tc trx.Context) (models.LinkID, error) {
	args := m.Called(ctx, tc)
	return args.Get(0).(models.LinkID), args.Error(1)
}

func (m *MockLinkRepository) Save(ctx context.Context, link *models.Link, tc trx.Context) error {
	args := m.Called(ctx, link, tc)
	return args.Error(0)
}

func (m *MockLinkRepository) FindByID(ctx context.Context, id models.LinkID, tc trx.Context) (*models.Link, error) {
	args := m.Called(ctx, id, tc)

	link, ok := args.Get(0).(*models.Link)
	if !ok {
		return nil, args.Error(1)
	}

	return link, args.Error(1)
}

func (m *MockLinkRepository) IncrementViews(ctx context.Context, id models.LinkID, tc trx.Context) error {
	args := m.Called(ctx, id, tc)
	return args.Error(0)
}

func (m *MockLinkRepository) Delete(ctx context.Context, id models.LinkID, tc trx.Context) error {
	args := m.Called(ctx, id, tc)
	return args.Error(0)
}

type MockLinkCache struct {
	mock.Mock
}

func (m *MockLinkCache) Get(ctx context.Context, id models.LinkID) (*models.Link, error) {
	args := m.Called(ctx, id)

	link, ok := args.Get(0).(*models.Link)
	if !ok {
		return nil, args.Error(1)
	}

	return link, args.Error(1)
}

func (m *MockLinkCache) Set(ctx context.Context, link *models.Link, ttl time.Duration) error {
	args := m.Called(ctx, link, ttl)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Save(ctx context.Context, user *models.User, tc trx.Context) (int64, error) {
	args := m.Called(ctx, user, tc)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User, tc trx.Context) error {
	args := m.Called(ctx, user, tc)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id int64, tc trx.Context) (*models.User, error) {
	args := m.Called(ctx, id, tc)

	user, ok := args.Get(0).(*models.User)
	if !ok {
		return nil, args.Error(1)
	}

	return user, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string, tc trx.Context) (*models.User, error) {
	args := m.Called(ctx, email, tc)

	user, ok := args.Get(0).(*models.User)
	if !ok {
		return nil, args.Error(1)
	}

	return user, args.Error(1)
}

func (m *MockUserRepository) FindByCredentials(ctx context.Context, email, passwordDigest string, tc trx.Context) (*models.User, error) {
	args := m.Called(ctx, email, passwordDigest, tc)

	user, ok := args.Get(0).(*models.User)
	if !ok {
		return nil, args.Error(1)
	}

	return user, args.Error(1)
}
