package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/tictactoe"
)

var (
	ErrBotNotFound      = errors.New("bot player not found")
	ErrNoAvailableMoves = errors.New("no available moves")
	ErrInvalidBotMove   = errors.New("bot chose an invalid cell")
)

type BotService interface {
	MakeTurn(session *entity.Session) (int, error)
}

type botService struct {
	strategy tictactoe.Strategy
}

func NewBotService(strategy tictactoe.Strategy) BotService {
	if strategy == nil {
		strategy = tictactoe.NewRandomStrategy()
	}

	return &botService{
		strategy: strategy,
	}
}

// MakeTurn - places the bot's mark and finishes the game if that move decides it.
// current_turn is left alone: the human moves next either way.
func (that *botService) MakeTurn(session *entity.Session) (int, error) {
	var botPlayer *entity.Player
	for _, player := range session.Players.List() {
		if player.IsBot() {
			botPlayer = player
			break
		}
	}

	if botPlayer == nil {
		return tictactoe.NoMove, ErrBotNotFound
	}

	position := that.strategy.ChooseMove(session.Board)
	if position == tictactoe.NoMove {
		return tictactoe.NoMove, ErrNoAvailableMoves
	}

	if !tictactoe.IsValidMove(session.Board, position) {
		return tictactoe.NoMove, fmt.Errorf("%w: %d", ErrInvalidBotMove, position)
	}

	session.Board = tictactoe.ApplyMove(session.Board, position, botPlayer.Symbol)
	session.MovesCount++

	if outcome := tictactoe.CheckOutcome(session.Board); outcome.IsDecided() {
		session.Finish(outcome)
	}

	return position, nil
}
