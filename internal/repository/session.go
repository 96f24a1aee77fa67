package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository/storage"
)

const keyPrefix = "game:"

var ErrCorruptRecord = errors.New("corrupt game record")

// Store - key-value contract the sessions are persisted through.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	ListByPrefix(ctx context.Context, prefix string) ([][]byte, error)
	Ping(ctx context.Context) error
}

type SessionRepository interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	List(ctx context.Context) (*ListResult, error)
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// ListResult - decodable sessions newest first, and how many records were dropped.
type ListResult struct {
	Sessions []*entity.Session
	Skipped  int
}

type dbSession struct {
	store Store
	now   func() time.Time
}

func NewSessionRepository(store Store) SessionRepository {
	return &dbSession{
		store: store,
		now:   time.Now,
	}
}

func (that *dbSession) ready() error {
	if that.store == nil {
		return fmt.Errorf("%w: %w", apperror.ErrStorageFailure, storage.ErrNotInitialized)
	}

	return nil
}

func sessionKey(id string) string {
	return keyPrefix + id
}

// CreateOrUpdate - writes the snapshot with whatever lifetime is left until ExpiresAt,
// so updates never extend the TTL set at creation.
func (that *dbSession) CreateOrUpdate(ctx context.Context, session *entity.Session) error {
	if err := that.ready(); err != nil {
		return err
	}

	ttl := session.ExpiresAt.Sub(that.now())
	if ttl <= 0 {
		return fmt.Errorf("%w: game %s has expired", apperror.ErrSessionNotFound, session.ID)
	}

	sessionJSON, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("could not marshal game: %w", err)
	}

	if err = that.store.Set(ctx, sessionKey(session.ID), sessionJSON, ttl); err != nil {
		return fmt.Errorf("%w: failed to set game: %w", apperror.ErrStorageFailure, err)
	}

	return nil
}

func (that *dbSession) GetByID(ctx context.Context, id string) (*entity.Session, error) {
	if err := that.ready(); err != nil {
		return nil, err
	}

	response, err := that.store.Get(ctx, sessionKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: failed to get game by id: %w", apperror.ErrStorageFailure, err)
	}

	session, err := decodeSession(response)
	if err != nil {
		return nil, fmt.Errorf("%w: game %s: %w", apperror.ErrStorageFailure, id, err)
	}

	return session, nil
}

// List - records that fail to decode or validate are skipped, not reported as errors.
func (that *dbSession) List(ctx context.Context) (*ListResult, error) {
	if err := that.ready(); err != nil {
		return nil, err
	}

	values, err := that.store.ListByPrefix(ctx, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list games: %w", apperror.ErrStorageFailure, err)
	}

	result := &ListResult{Sessions: make([]*entity.Session, 0, len(values))}
	for _, value := range values {
		session, err := decodeSession(value)
		if err != nil {
			result.Skipped++
			continue
		}

		result.Sessions = append(result.Sessions, session)
	}

	sort.SliceStable(result.Sessions, func(i, j int) bool {
		return result.Sessions[i].CreatedAt.After(result.Sessions[j].CreatedAt)
	})

	return result, nil
}

func (that *dbSession) DeleteByID(ctx context.Context, id string) error {
	if err := that.ready(); err != nil {
		return err
	}

	err := that.store.Delete(ctx, sessionKey(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", apperror.ErrSessionNotFound, id)
	}

	if err != nil {
		return fmt.Errorf("%w: failed to delete game by id: %w", apperror.ErrStorageFailure, err)
	}

	return nil
}

func (that *dbSession) Ping(ctx context.Context) error {
	if err := that.ready(); err != nil {
		return err
	}

	if err := that.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrStorageFailure, err)
	}

	return nil
}

func decodeSession(data []byte) (*entity.Session, error) {
	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	if err := session.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
	}

	return &session, nil
}
