package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/repository"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/service"
)

// SessionManager - the operations every transport exposes.
type SessionManager interface {
	CreateSession(ctx context.Context, creatorID, creatorName string, mode entity.Mode) (*entity.Session, error)
	JoinSession(ctx context.Context, sessionID, playerID, playerName string) (*entity.Session, error)
	MakeMove(ctx context.Context, sessionID, playerID string, position int) (*service.MoveResult, error)
	AbandonSession(ctx context.Context, sessionID string) (*entity.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error

	GetSession(ctx context.Context, sessionID string) (*entity.Session, error)
	ListSessions(ctx context.Context) (*repository.ListResult, error)

	Health(ctx context.Context) error
}

// Notifier - receives every snapshot after it has been persisted.
type Notifier interface {
	Publish(session *entity.Session)
}

type gameService interface {
	CreateGame(ctx context.Context, creatorID, creatorName string, mode entity.Mode) (*entity.Session, error)
	DeleteGame(ctx context.Context, id string) error
	GetGameByID(ctx context.Context, id string) (*entity.Session, error)
	ListGames(ctx context.Context) (*repository.ListResult, error)
	Ping(ctx context.Context) error
}

type gamePlayService interface {
	JoinGame(ctx context.Context, gameID, playerID, playerName string) (*entity.Session, error)
	MakeTurn(ctx context.Context, gameID, playerID string, cell int) (*service.MoveResult, error)
	AbandonGame(ctx context.Context, gameID string) (*entity.Session, error)
}

type nopNotifier struct{}

func (nopNotifier) Publish(*entity.Session) {}

type sessionManager struct {
	logger *slog.Logger

	gameService     gameService
	gamePlayService gamePlayService
	notifier        Notifier
}

func NewSessionManager(logger *slog.Logger, gameService gameService, gamePlayService gamePlayService, notifier Notifier) SessionManager {
	if notifier == nil {
		notifier = nopNotifier{}
	}

	return &sessionManager{
		logger: logger.With("component", "session_manager"),

		gameService:     gameService,
		gamePlayService: gamePlayService,
		notifier:        notifier,
	}
}

func (that *sessionManager) CreateSession(ctx context.Context, creatorID, creatorName string, mode entity.Mode) (*entity.Session, error) {
	log := that.logger.With("method", "CreateSession")

	session, err := that.gameService.CreateGame(ctx, creatorID, creatorName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info("game created", "game_id", session.ID, "game_mode", session.Mode, "created_by", creatorID)
	that.notifier.Publish(session)

	return session, nil
}

func (that *sessionManager) JoinSession(ctx context.Context, sessionID, playerID, playerName string) (*entity.Session, error) {
	log := that.logger.With("method", "JoinSession")

	session, err := that.gamePlayService.JoinGame(ctx, sessionID, playerID, playerName)
	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	log.Info("player joined", "game_id", session.ID, "player_id", playerID)
	that.notifier.Publish(session)

	return session, nil
}

func (that *sessionManager) MakeMove(ctx context.Context, sessionID, playerID string, position int) (*service.MoveResult, error) {
	log := that.logger.With("method", "MakeMove")

	result, err := that.gamePlayService.MakeTurn(ctx, sessionID, playerID, position)
	if err != nil {
		return nil, fmt.Errorf("failed to make turn: %w", err)
	}

	attrs := []any{"game_id", sessionID, "player_id", playerID, "position", position, "status", result.Session.Status}
	if result.AIMove != nil {
		attrs = append(attrs, "ai_move", *result.AIMove)
	}

	if result.IsGameOver() {
		attrs = append(attrs, "winner", result.Session.Winner.String())
	}

	log.Info("move made", attrs...)
	that.notifier.Publish(result.Session)

	return result, nil
}

func (that *sessionManager) AbandonSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	log := that.logger.With("method", "AbandonSession")

	session, err := that.gamePlayService.AbandonGame(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to abandon game: %w", err)
	}

	log.Info("game abandoned", "game_id", session.ID)
	that.notifier.Publish(session)

	return session, nil
}

func (that *sessionManager) DeleteSession(ctx context.Context, sessionID string) error {
	if err := that.gameService.DeleteGame(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}

	that.logger.Info("game deleted", "method", "DeleteSession", "game_id", sessionID)

	return nil
}

func (that *sessionManager) GetSession(ctx context.Context, sessionID string) (*entity.Session, error) {
	session, err := that.gameService.GetGameByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return session, nil
}

// ListSessions - records that cannot be decoded are skipped, never returned as an error.
func (that *sessionManager) ListSessions(ctx context.Context) (*repository.ListResult, error) {
	log := that.logger.With("method", "ListSessions")

	result, err := that.gameService.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	if result.Skipped > 0 {
		log.Warn("skipped unreadable game records", "skipped", result.Skipped)
	}

	return result, nil
}

func (that *sessionManager) Health(ctx context.Context) error {
	if err := that.gameService.Ping(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	return nil
}
