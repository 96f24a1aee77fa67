package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository/storage"
)

const (
	loginKeyPrefix = "session:"
	userKeyPrefix  = "user:"
)

// UserRepository - login sessions live under session:<id>, the user record under user:<id>.
// Both keys share the login ttl.
type UserRepository interface {
	Save(ctx context.Context, sessionID string, user *entity.User, ttl time.Duration) error
	FindBySession(ctx context.Context, sessionID string) (*entity.User, error)
	FindByID(ctx context.Context, userID string) (*entity.User, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type dbUser struct {
	store Store
}

func NewUserRepository(store Store) UserRepository {
	return &dbUser{
		store: store,
	}
}

func loginKey(sessionID string) string {
	return loginKeyPrefix + sessionID
}

func userKey(userID string) string {
	return userKeyPrefix + userID
}

func (that *dbUser) ready() error {
	if that.store == nil {
		return fmt.Errorf("%w: %w", apperror.ErrStorageFailure, storage.ErrNotInitialized)
	}

	return nil
}

func (that *dbUser) Save(ctx context.Context, sessionID string, user *entity.User, ttl time.Duration) error {
	if err := that.ready(); err != nil {
		return err
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("could not marshal user: %w", err)
	}

	if err = that.store.Set(ctx, loginKey(sessionID), userJSON, ttl); err != nil {
		return fmt.Errorf("%w: can't save login session: %w", apperror.ErrStorageFailure, err)
	}

	if err = that.store.Set(ctx, userKey(user.ID), userJSON, ttl); err != nil {
		return fmt.Errorf("%w: can't save user: %w", apperror.ErrStorageFailure, err)
	}

	return nil
}

// FindBySession - an unknown or expired session is ErrUnauthorized.
func (that *dbUser) FindBySession(ctx context.Context, sessionID string) (*entity.User, error) {
	return that.find(ctx, loginKey(sessionID))
}

func (that *dbUser) FindByID(ctx context.Context, userID string) (*entity.User, error) {
	return that.find(ctx, userKey(userID))
}

func (that *dbUser) find(ctx context.Context, key string) (*entity.User, error) {
	if err := that.ready(); err != nil {
		return nil, err
	}

	response, err := that.store.Get(ctx, key)
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, apperror.ErrUnauthorized
	}

	if err != nil {
		return nil, fmt.Errorf("%w: can't find %s: %w", apperror.ErrStorageFailure, key, err)
	}

	var user entity.User
	if err = json.Unmarshal(response, &user); err != nil {
		return nil, fmt.Errorf("%w: %s is not a user record: %w", apperror.ErrStorageFailure, key, err)
	}

	return &user, nil
}

// DeleteSession - deleting a session that is already gone is not an error.
func (that *dbUser) DeleteSession(ctx context.Context, sessionID string) error {
	if err := that.ready(); err != nil {
		return err
	}

	err := that.store.Delete(ctx, loginKey(sessionID))
	if err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		return fmt.Errorf("%w: can't delete login session: %w", apperror.ErrStorageFailure, err)
	}

	return nil
}
