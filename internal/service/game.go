package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
)

const DefaultSessionTTL = time.Hour

type GameService interface {
	CreateGame(ctx context.Context, creatorID, creatorName string, mode entity.Mode) (*entity.Session, error)
	UpdateGame(ctx context.Context, session *entity.Session) error
	DeleteGame(ctx context.Context, id string) error

	GetGameByID(ctx context.Context, id string) (*entity.Session, error)
	ListGames(ctx context.Context) (*repository.ListResult, error)

	Ping(ctx context.Context) error
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error

	GetByID(ctx context.Context, id string) (*entity.Session, error)
	List(ctx context.Context) (*repository.ListResult, error)

	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type gameService struct {
	gameRepo gameRepo
	ttl      time.Duration

	now   func() time.Time
	newID func() string
}

func NewGameService(gameRepo gameRepo, ttl time.Duration) GameService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &gameService{
		gameRepo: gameRepo,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

func (that *gameService) CreateGame(ctx context.Context, creatorID, creatorName string, mode entity.Mode) (*entity.Session, error) {
	if strings.TrimSpace(creatorID) == "" {
		return nil, fmt.Errorf("%w: creator id is required", apperror.ErrInvalidRequest)
	}

	if mode != entity.ModeVsHuman && mode != entity.ModeVsAI {
		return nil, fmt.Errorf("%w: %w: %q", apperror.ErrInvalidRequest, entity.ErrUnknownMode, mode)
	}

	creator := entity.NewHumanPlayer(creatorID, creatorName, entity.PlayerX)
	session := entity.NewSession(that.newID(), creator, mode, that.now(), that.ttl)

	if err := that.gameRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create game from storage: %w", err)
	}

	return session, nil
}

func (that *gameService) GetGameByID(ctx context.Context, id string) (*entity.Session, error) {
	session, err := that.gameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve game from storage: %w", err)
	}

	return session, nil
}

func (that *gameService) ListGames(ctx context.Context) (*repository.ListResult, error) {
	result, err := that.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games from storage: %w", err)
	}

	return result, nil
}

func (that *gameService) UpdateGame(ctx context.Context, session *entity.Session) error {
	if err := that.gameRepo.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	return nil
}

func (that *gameService) DeleteGame(ctx context.Context, id string) error {
	if err := that.gameRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	return nil
}

func (that *gameService) Ping(ctx context.Context) error {
	if err := that.gameRepo.Ping(ctx); err != nil {
		return fmt.Errorf("storage is unavailable: %w", err)
	}

	return nil
}
