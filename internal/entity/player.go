package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	AIPlayerID   = "ai_player"
	AIPlayerName = "AI"
)

var (
	ErrSeatTaken     = errors.New("mark is already taken")
	ErrInvalidMark   = errors.New("invalid mark")
	ErrMissingPlayer = errors.New("player X is missing")
)

type Player struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
	Symbol   Mark   `json:"symbol"`
	IsAI     bool   `json:"is_ai"`
}

func NewHumanPlayer(id, username string, mark Mark) *Player {
	return &Player{
		ID:       id,
		Username: username,
		Symbol:   mark,
	}
}

func NewAIPlayer(mark Mark) *Player {
	return &Player{
		ID:       AIPlayerID,
		Username: AIPlayerName,
		Symbol:   mark,
		IsAI:     true,
	}
}

func (that *Player) IsBot() bool {
	return that != nil && that.IsAI
}

// Players - two seats, one per mark. A second player can never take a mark that is already seated.
type Players struct {
	X *Player
	O *Player
}

// Seat - places the player on the seat matching its symbol.
func (that *Players) Seat(player *Player) error {
	switch player.Symbol {
	case PlayerX:
		if that.X != nil {
			return fmt.Errorf("%w: %s", ErrSeatTaken, player.Symbol)
		}
		that.X = player
	case PlayerO:
		if that.O != nil {
			return fmt.Errorf("%w: %s", ErrSeatTaken, player.Symbol)
		}
		that.O = player
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMark, player.Symbol)
	}

	return nil
}

func (that Players) Count() int {
	count := 0
	if that.X != nil {
		count++
	}
	if that.O != nil {
		count++
	}

	return count
}

func (that Players) BySymbol(mark Mark) *Player {
	switch mark {
	case PlayerX:
		return that.X
	case PlayerO:
		return that.O
	default:
		return nil
	}
}

func (that Players) ByID(id string) *Player {
	for _, player := range that.List() {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// Opponent - returns the seated player that is not the given one.
func (that Players) Opponent(id string) *Player {
	for _, player := range that.List() {
		if player.ID != id {
			return player
		}
	}

	return nil
}

// List - returns seated players in mark order, X first.
func (that Players) List() []*Player {
	players := make([]*Player, 0, 2)
	if that.X != nil {
		players = append(players, that.X)
	}
	if that.O != nil {
		players = append(players, that.O)
	}

	return players
}

func (that Players) MarshalJSON() ([]byte, error) {
	return json.Marshal(that.List())
}

func (that *Players) UnmarshalJSON(data []byte) error {
	var players []*Player
	if err := json.Unmarshal(data, &players); err != nil {
		return fmt.Errorf("failed to unmarshal players: %w", err)
	}

	seats := Players{}
	for _, player := range players {
		if player == nil {
			continue
		}

		if err := seats.Seat(player); err != nil {
			return err
		}
	}

	if seats.O != nil && seats.X == nil {
		return ErrMissingPlayer
	}

	*that = seats

	return nil
}
