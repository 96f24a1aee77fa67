package service

import (
	"context"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/stretchr/testify/mock"
)

type mockGameRepo struct {
	mock.Mock
}

func (that *mockGameRepo) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	args := that.Called(ctx, session)
	return args.Error(0)
}

func (that *mockGameRepo) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	args := that.Called(ctx, id)

	session, _ := args.Get(0).(*entity.Session)

	return session, args.Error(1)
}

func (that *mockGameRepo) List(ctx context.Context) (*repository.ListResult, error) {
	args := that.Called(ctx)

	result, _ := args.Get(0).(*repository.ListResult)

	return result, args.Error(1)
}

func (that *mockGameRepo) DeleteByID(ctx context.Context, id string) error {
	args := that.Called(ctx, id)
	return args.Error(0)
}

func (that *mockGameRepo) Ping(ctx context.Context) error {
	args := that.Called(ctx)
	return args.Error(0)
}
