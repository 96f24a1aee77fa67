package entity

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusActive    Status = "active"
	StatusFinished  Status = "finished"
	StatusAbandoned Status = "abandoned"
)

type Mode string

const (
	ModeVsHuman Mode = "vs_human"
	ModeVsAI    Mode = "vs_ai"
)

var (
	ErrInvalidSession = errors.New("invalid session")
	ErrUnknownMode    = errors.New("unknown game mode")
)

func ParseMode(value string) (Mode, error) {
	switch Mode(value) {
	case ModeVsHuman, ModeVsAI:
		return Mode(value), nil
	case "":
		return ModeVsHuman, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, value)
	}
}

type Session struct {
	ID          string    `json:"game_id"`
	Board       Board     `json:"board"`
	Players     Players   `json:"players"`
	CurrentTurn string    `json:"current_turn"`
	Status      Status    `json:"status"`
	Winner      Winner    `json:"winner"`
	Mode        Mode      `json:"game_mode"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	MovesCount  int       `json:"moves_count"`
}

// NewSession - creator always plays X and holds the first turn.
// In vs_ai mode the AI takes O right away and the game starts immediately.
func NewSession(id string, creator *Player, mode Mode, now time.Time, ttl time.Duration) *Session {
	creator.Symbol = PlayerX

	session := &Session{
		ID:          id,
		Board:       NewBoard(),
		Players:     Players{X: creator},
		CurrentTurn: creator.ID,
		Status:      StatusWaiting,
		Winner:      NoOutcome(),
		Mode:        mode,
		CreatedAt:   now,
		UpdatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}

	if mode == ModeVsAI {
		session.Players.O = NewAIPlayer(PlayerO)
		session.Status = StatusActive
	}

	return session
}

func (that *Session) IsWaiting() bool {
	return that.Status == StatusWaiting
}

func (that *Session) IsActive() bool {
	return that.Status == StatusActive
}

func (that *Session) IsFinished() bool {
	return that.Status == StatusFinished
}

func (that *Session) IsAbandoned() bool {
	return that.Status == StatusAbandoned
}

func (that *Session) IsWithBot() bool {
	return that.Mode == ModeVsAI
}

// Finish - moves the session to its terminal state with a decided outcome.
func (that *Session) Finish(winner Winner) {
	that.Status = StatusFinished
	that.Winner = winner
}

// WinnerPlayer - the player holding the winning mark, nil for a draw or an undecided game.
func (that *Session) WinnerPlayer() *Player {
	if that.Winner.Kind != MarkWinner {
		return nil
	}

	return that.Players.BySymbol(that.Winner.Mark)
}

func (that *Session) Touch(now time.Time) {
	that.UpdatedAt = now
}

// Validate - checks the invariants every persisted snapshot must hold.
func (that *Session) Validate() error {
	if that.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidSession)
	}

	switch that.Status {
	case StatusWaiting, StatusActive, StatusFinished, StatusAbandoned:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSession, that.Status)
	}

	switch that.Mode {
	case ModeVsHuman, ModeVsAI:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSession, that.Mode)
	}

	if that.Players.X == nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, ErrMissingPlayer)
	}

	if that.MovesCount != that.Board.Occupied() {
		return fmt.Errorf("%w: moves count %d does not match %d occupied cells",
			ErrInvalidSession, that.MovesCount, that.Board.Occupied())
	}

	if diff := that.Board.Count(PlayerX) - that.Board.Count(PlayerO); diff < 0 || diff > 1 {
		return fmt.Errorf("%w: unbalanced board", ErrInvalidSession)
	}

	if that.IsFinished() != that.Winner.IsDecided() {
		return fmt.Errorf("%w: winner %q with status %q", ErrInvalidSession, that.Winner, that.Status)
	}

	return nil
}
