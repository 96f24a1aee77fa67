package service

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newHumanGame(ctx context.Context, t *testing.T, fx *fixture) *entity.Session {
	t.Helper()

	game, err := fx.games.CreateGame(ctx, "p1", "Alice", entity.ModeVsHuman)
	require.NoError(t, err)

	game, err = fx.gameplay.JoinGame(ctx, game.ID, "p2", "Bob")
	require.NoError(t, err)

	return game
}

func playMoves(ctx context.Context, t *testing.T, fx *fixture, gameID string, moves ...int) *MoveResult {
	t.Helper()

	var result *MoveResult
	for i, cell := range moves {
		playerID := "p1"
		if i%2 == 1 {
			playerID = "p2"
		}

		var err error
		result, err = fx.gameplay.MakeTurn(ctx, gameID, playerID, cell)
		require.NoError(t, err)
	}

	return result
}

func TestGamePlayService_JoinGame(t *testing.T) {
	t.Run("Second player takes O and the game starts", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		// Given: a waiting game
		game, err := fx.games.CreateGame(ctx, "p1", "Alice", entity.ModeVsHuman)
		require.NoError(t, err)

		// When: another player joins
		joined, err := fx.gameplay.JoinGame(ctx, game.ID, "p2", "Bob")

		// Then: the game is active with p2 as O and p1 still to move
		require.NoError(t, err)
		assert.Equal(t, entity.StatusActive, joined.Status)
		assert.Equal(t, 2, joined.Players.Count())
		assert.Equal(t, "p2", joined.Players.O.ID)
		assert.Equal(t, entity.PlayerO, joined.Players.O.Symbol)
		assert.Equal(t, "p1", joined.CurrentTurn)
		assert.False(t, joined.UpdatedAt.Before(game.UpdatedAt))

		// And: the change is persisted
		stored, err := fx.games.GetGameByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusActive, stored.Status)
	})

	t.Run("Joining an active game is an invalid state", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game := newHumanGame(ctx, t, fx)

		_, err := fx.gameplay.JoinGame(ctx, game.ID, "p3", "Carol")

		require.ErrorIs(t, err, apperror.ErrInvalidState)
		require.ErrorIs(t, err, apperror.ErrGameNotWaiting)
	})

	t.Run("Joining a vs_ai game is an invalid state", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game, err := fx.games.CreateGame(ctx, "p1", "Alice", entity.ModeVsAI)
		require.NoError(t, err)

		_, err = fx.gameplay.JoinGame(ctx, game.ID, "p2", "Bob")

		require.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("Creator cannot join their own game", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game, err := fx.games.CreateGame(ctx, "p1", "Alice", entity.ModeVsHuman)
		require.NoError(t, err)

		_, err = fx.gameplay.JoinGame(ctx, game.ID, "p1", "Alice")

		require.ErrorIs(t, err, apperror.ErrInvalidState)
		require.ErrorIs(t, err, apperror.ErrAlreadyJoined)
	})

	t.Run("Unknown game is not found", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		_, err := fx.gameplay.JoinGame(ctx, "missing", "p2", "Bob")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}

func TestGamePlayService_MakeTurn(t *testing.T) {
	t.Run("vs_ai move gets an immediate AI reply", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		// Given: a fresh vs_ai game
		game, err := fx.games.CreateGame(ctx, "p1", "Alice", entity.ModeVsAI)
		require.NoError(t, err)

		// When: the human plays the centre
		result, err := fx.gameplay.MakeTurn(ctx, game.ID, "p1", 4)

		// Then: both moves are on the board and the game goes on
		require.NoError(t, err)
		assert.Equal(t, entity.PlayerX, result.Session.Board[4])
		assert.Equal(t, 2, result.Session.MovesCount)
		assert.Equal(t, entity.StatusActive, result.Session.Status)
		assert.False(t, result.IsGameOver())

		require.NotNil(t, result.AIMove)
		assert.Equal(t, 0, *result.AIMove)
		assert.Equal(t, entity.PlayerO, result.Session.Board[0])

		// And: the human still holds the turn
		assert.Equal(t, "p1", result.Session.CurrentTurn)

		stored, err := fx.games.GetGameByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, result.Session.Board, stored.Board)
		assert.Equal(t, 2, stored.MovesCount)
	})

	t.Run("AI can win the game", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game, err := fx.games.CreateGame(ctx, "p1", "Alice", entity.ModeVsAI)
		require.NoError(t, err)

		// Given: the AI filling the top row while X plays 4, 8, 3
		for _, cell := range []int{4, 8} {
			_, err = fx.gameplay.MakeTurn(ctx, game.ID, "p1", cell)
			require.NoError(t, err)
		}

		// When: X makes a move that blocks nothing
		result, err := fx.gameplay.MakeTurn(ctx, game.ID, "p1", 3)

		// Then: O completes the row and wins
		require.NoError(t, err)
		require.NotNil(t, result.AIMove)
		assert.Equal(t, 2, *result.AIMove)
		assert.True(t, result.IsGameOver())
		assert.Equal(t, entity.WinnerOf(entity.PlayerO), result.Session.Winner)
		assert.Equal(t, entity.AIPlayerID, result.Session.WinnerPlayer().ID)
		assert.Equal(t, 6, result.Session.MovesCount)
	})

	t.Run("Turn passes to the other human", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game := newHumanGame(ctx, t, fx)

		// When: p1 plays
		result, err := fx.gameplay.MakeTurn(ctx, game.ID, "p1", 0)

		// Then: p2 is next and there is no AI reply
		require.NoError(t, err)
		assert.Equal(t, "p2", result.Session.CurrentTurn)
		assert.Nil(t, result.AIMove)

		// And: p1 cannot move twice
		_, err = fx.gameplay.MakeTurn(ctx, game.ID, "p1", 1)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
	})

	t.Run("Completing a row finishes the game", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game := newHumanGame(ctx, t, fx)

		// When: X takes 0, 1, 2 while O takes 3, 4
		result := playMoves(ctx, t, fx, game.ID, 0, 3, 1, 4, 2)

		// Then: the game is finished and X wins
		assert.Equal(t, entity.StatusFinished, result.Session.Status)
		assert.Equal(t, entity.WinnerOf(entity.PlayerX), result.Session.Winner)
		assert.Equal(t, "p1", result.Session.WinnerPlayer().ID)
		assert.Equal(t, 5, result.Session.MovesCount)

		// And: no further moves are accepted
		_, err := fx.gameplay.MakeTurn(ctx, game.ID, "p2", 5)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		require.ErrorIs(t, err, apperror.ErrGameFinished)
	})

	t.Run("Full board without a line is a draw", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game := newHumanGame(ctx, t, fx)

		result := playMoves(ctx, t, fx, game.ID, 0, 1, 2, 4, 3, 5, 7, 6, 8)

		assert.Equal(t, entity.StatusFinished, result.Session.Status)
		assert.True(t, result.Session.Winner.IsDraw())
		assert.Nil(t, result.Session.WinnerPlayer())
		assert.Equal(t, 9, result.Session.MovesCount)
	})

	t.Run("Rejected moves leave the stored game untouched", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game := newHumanGame(ctx, t, fx)
		playMoves(ctx, t, fx, game.ID, 4)

		before, err := fx.games.GetGameByID(ctx, game.ID)
		require.NoError(t, err)

		cases := []struct {
			name     string
			playerID string
			cell     int
			detail   error
		}{
			{name: "occupied", playerID: "p2", cell: 4, detail: apperror.ErrCellOccupied},
			{name: "negative", playerID: "p2", cell: -1, detail: apperror.ErrCellOutOfRange},
			{name: "past the board", playerID: "p2", cell: 9, detail: apperror.ErrCellOutOfRange},
			{name: "wrong player", playerID: "p1", cell: 0, detail: apperror.ErrNotYourTurn},
			{name: "stranger", playerID: "p3", cell: 0, detail: apperror.ErrNotYourTurn},
		}

		for _, tc := range cases {
			_, err = fx.gameplay.MakeTurn(ctx, game.ID, tc.playerID, tc.cell)
			require.ErrorIs(t, err, apperror.ErrInvalidMove, tc.name)
			require.ErrorIs(t, err, tc.detail, tc.name)
		}

		after, err := fx.games.GetGameByID(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("Waiting game does not accept moves", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game, err := fx.games.CreateGame(ctx, "p1", "Alice", entity.ModeVsHuman)
		require.NoError(t, err)

		_, err = fx.gameplay.MakeTurn(ctx, game.ID, "p1", 0)

		require.ErrorIs(t, err, apperror.ErrInvalidMove)
		require.ErrorIs(t, err, apperror.ErrGameNotActive)
	})

	t.Run("Unknown game is not found", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		_, err := fx.gameplay.MakeTurn(ctx, "missing", "p1", 0)

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("Storage failure on write is reported", func(t *testing.T) {
		// Given: a stored vs_human game whose write fails
		now := time.Now().UTC()
		game := entity.NewSession("g1", entity.NewHumanPlayer("p1", "Alice", entity.PlayerX), entity.ModeVsHuman, now, time.Hour)
		require.NoError(t, game.Players.Seat(entity.NewHumanPlayer("p2", "Bob", entity.PlayerO)))
		game.Status = entity.StatusActive

		repo := &mockGameRepo{}
		repo.On("GetByID", mock.Anything, "g1").Return(game, nil).Once()
		repo.On("CreateOrUpdate", mock.Anything, mock.AnythingOfType("*entity.Session")).
			Return(apperror.ErrStorageFailure).
			Once()

		gameplay := NewGamePlayService(NewGameService(repo, time.Hour), NewBotService(nil))

		// When: a valid move is made
		result, err := gameplay.MakeTurn(context.Background(), "g1", "p1", 0)

		// Then: the failure surfaces and no result is returned
		require.ErrorIs(t, err, apperror.ErrStorageFailure)
		assert.Nil(t, result)
		repo.AssertExpectations(t)
	})
}

func TestGamePlayService_AbandonGame(t *testing.T) {
	t.Run("Active game can be abandoned once", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game := newHumanGame(ctx, t, fx)

		abandoned, err := fx.gameplay.AbandonGame(ctx, game.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusAbandoned, abandoned.Status)
		assert.False(t, abandoned.Winner.IsDecided())

		_, err = fx.gameplay.AbandonGame(ctx, game.ID)
		require.ErrorIs(t, err, apperror.ErrInvalidState)
		require.ErrorIs(t, err, apperror.ErrGameAbandoned)
		assert.NotErrorIs(t, err, apperror.ErrGameFinished)

		_, err = fx.gameplay.MakeTurn(ctx, game.ID, "p1", 0)
		require.ErrorIs(t, err, apperror.ErrInvalidMove)

		_, err = fx.gameplay.JoinGame(ctx, game.ID, "p3", "Carol")
		require.ErrorIs(t, err, apperror.ErrInvalidState)
	})

	t.Run("Abandoned waiting game rejects joins as abandoned", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		// Given: a waiting game that its creator walked away from
		game, err := fx.games.CreateGame(ctx, "p1", "Alice", entity.ModeVsHuman)
		require.NoError(t, err)

		_, err = fx.gameplay.AbandonGame(ctx, game.ID)
		require.NoError(t, err)

		// When: a second player tries to join
		_, err = fx.gameplay.JoinGame(ctx, game.ID, "p2", "Bob")

		// Then: the error names the abandonment, not a finished game
		require.ErrorIs(t, err, apperror.ErrInvalidState)
		require.ErrorIs(t, err, apperror.ErrGameAbandoned)
		assert.Equal(t, "invalid game state: game was abandoned", err.Error())
	})

	t.Run("Finished game cannot be abandoned", func(t *testing.T) {
		ctx, fx := newFixture(t, nil)

		game := newHumanGame(ctx, t, fx)
		playMoves(ctx, t, fx, game.ID, 0, 3, 1, 4, 2)

		_, err := fx.gameplay.AbandonGame(ctx, game.ID)

		require.ErrorIs(t, err, apperror.ErrInvalidState)
		require.ErrorIs(t, err, apperror.ErrGameFinished)
		assert.Equal(t, "invalid game state: game is already finished", err.Error())
	})
}
