package apperror

import "errors"

var (
	ErrSessionNotFound = errors.New("game not found")
	ErrInvalidState    = errors.New("invalid game state")
	ErrInvalidMove     = errors.New("invalid move")
	ErrStorageFailure  = errors.New("storage failure")
)

// Details wrapped under ErrInvalidMove.
var (
	ErrGameNotActive  = errors.New("game is not active")
	ErrNotYourTurn    = errors.New("it's not your turn")
	ErrCellOccupied   = errors.New("cell is already occupied")
	ErrCellOutOfRange = errors.New("cell is out of range")
	ErrPlayerNotFound = errors.New("player is not in this game")
)

// Details wrapped under ErrInvalidState.
var (
	ErrGameFull       = errors.New("game is full")
	ErrGameNotWaiting = errors.New("game is not waiting for players")
	ErrGameFinished   = errors.New("game is already finished")
	ErrGameAbandoned  = errors.New("game was abandoned")
	ErrAlreadyJoined  = errors.New("player is already in this game")
)

var ErrInvalidRequest = errors.New("invalid request")

var ErrUnauthorized = errors.New("invalid or expired session")
