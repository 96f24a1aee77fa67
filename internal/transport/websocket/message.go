package websocket

import (
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

const (
	EventSnapshot    = "snapshot"
	EventStateUpdate = "state_update"
)

// Message - what subscribers of a game receive.
type Message struct {
	Event     string          `json:"event"`
	SessionID string          `json:"session_id"`
	GameState *entity.Session `json:"game_state"`
}

func encodeMessage(event string, session *entity.Session) ([]byte, error) {
	data, err := json.Marshal(Message{
		Event:     event,
		SessionID: session.ID,
		GameState: session,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", event, err)
	}

	return data, nil
}
