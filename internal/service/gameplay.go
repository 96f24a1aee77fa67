package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/tictactoe"
)

// MoveResult - the persisted session after a move, and the AI's reply when it made one.
type MoveResult struct {
	Session *entity.Session
	AIMove  *int
}

func (that *MoveResult) IsGameOver() bool {
	return that.Session.IsFinished()
}

type GamePlayService interface {
	JoinGame(ctx context.Context, gameID, playerID, playerName string) (*entity.Session, error)
	MakeTurn(ctx context.Context, gameID, playerID string, cell int) (*MoveResult, error)
	AbandonGame(ctx context.Context, gameID string) (*entity.Session, error)
}

type gamePlayService struct {
	gameService GameService
	botService  BotService

	now func() time.Time
}

func NewGamePlayService(gameService GameService, botService BotService) GamePlayService {
	return &gamePlayService{
		gameService: gameService,
		botService:  botService,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// JoinGame - seats the second human as O and starts the game.
func (that *gamePlayService) JoinGame(ctx context.Context, gameID, playerID, playerName string) (*entity.Session, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	switch {
	case game.IsAbandoned():
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidState, apperror.ErrGameAbandoned)
	case game.IsFinished():
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidState, apperror.ErrGameFinished)
	case !game.IsWaiting():
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidState, apperror.ErrGameNotWaiting)
	case game.Players.Count() != 1:
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidState, apperror.ErrGameFull)
	case game.Players.ByID(playerID) != nil:
		// The creator cannot take the O seat of their own game.
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidState, apperror.ErrAlreadyJoined)
	}

	if err = game.Players.Seat(entity.NewHumanPlayer(playerID, playerName, entity.PlayerO)); err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidState, err)
	}

	game.Status = entity.StatusActive
	game.Touch(that.now())

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

// MakeTurn - applies the player's move, then the AI's reply in vs_ai games.
// The session is only written once, after both moves.
func (that *gamePlayService) MakeTurn(ctx context.Context, gameID, playerID string, cell int) (*MoveResult, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	if err = validateTurn(game, playerID, cell); err != nil {
		return nil, err
	}

	player := game.Players.ByID(playerID)
	if player == nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrPlayerNotFound)
	}

	game.Board = tictactoe.ApplyMove(game.Board, cell, player.Symbol)
	game.MovesCount++
	game.Touch(that.now())

	result := &MoveResult{Session: game}

	opponent := game.Players.Opponent(playerID)

	switch outcome := tictactoe.CheckOutcome(game.Board); {
	case outcome.IsDecided():
		game.Finish(outcome)
	case opponent.IsBot():
		position, err := that.botService.MakeTurn(game)
		if err != nil && !errors.Is(err, ErrNoAvailableMoves) {
			return nil, fmt.Errorf("bot failed to make turn: %w", err)
		}

		if err == nil {
			result.AIMove = &position
		}
	case opponent != nil:
		game.CurrentTurn = opponent.ID
	}

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return result, nil
}

// AbandonGame - ends a waiting or active game without a winner.
func (that *gamePlayService) AbandonGame(ctx context.Context, gameID string) (*entity.Session, error) {
	game, err := that.gameService.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game by id: %w", err)
	}

	switch {
	case game.IsAbandoned():
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidState, apperror.ErrGameAbandoned)
	case !game.IsWaiting() && !game.IsActive():
		return nil, fmt.Errorf("%w: %w", apperror.ErrInvalidState, apperror.ErrGameFinished)
	}

	game.Status = entity.StatusAbandoned
	game.Touch(that.now())

	if err = that.gameService.UpdateGame(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}

	return game, nil
}

func validateTurn(game *entity.Session, playerID string, cell int) error {
	switch {
	case game.IsFinished():
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrGameFinished)
	case !game.IsActive():
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrGameNotActive)
	case game.CurrentTurn != playerID:
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrNotYourTurn)
	case tictactoe.IsValidMove(game.Board, cell):
		return nil
	case cell < 0 || cell >= entity.BoardSize:
		return fmt.Errorf("%w: %w: %d", apperror.ErrInvalidMove, apperror.ErrCellOutOfRange, cell)
	default:
		return fmt.Errorf("%w: %w: %d", apperror.ErrInvalidMove, apperror.ErrCellOccupied, cell)
	}
}
