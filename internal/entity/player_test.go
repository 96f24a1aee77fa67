package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayers_Seat(t *testing.T) {
	t.Run("Second player cannot take a seated mark", func(t *testing.T) {
		// Given: X is already seated
		players := Players{X: NewHumanPlayer("p1", "Alice", PlayerX)}

		// When: another player asks for X
		err := players.Seat(NewHumanPlayer("p2", "Bob", PlayerX))

		// Then: the seat is refused and the original player stays
		require.ErrorIs(t, err, ErrSeatTaken)
		assert.Equal(t, "p1", players.X.ID)
	})

	t.Run("Rejects an empty mark", func(t *testing.T) {
		players := Players{}

		err := players.Seat(NewHumanPlayer("p1", "Alice", EmptyCell))

		require.ErrorIs(t, err, ErrInvalidMark)
		assert.Zero(t, players.Count())
	})
}

func TestPlayers_Lookup(t *testing.T) {
	// Given: a full table
	players := Players{
		X: NewHumanPlayer("p1", "Alice", PlayerX),
		O: NewHumanPlayer("p2", "Bob", PlayerO),
	}

	// Then: players are found by id, mark and as opponents
	assert.Equal(t, "p2", players.ByID("p2").ID)
	assert.Nil(t, players.ByID("p3"))
	assert.Equal(t, "p1", players.BySymbol(PlayerX).ID)
	assert.Equal(t, "p2", players.Opponent("p1").ID)
	assert.Equal(t, "p1", players.Opponent("p2").ID)
}

func TestPlayers_UnmarshalJSON(t *testing.T) {
	t.Run("Rejects duplicated marks", func(t *testing.T) {
		data := `[{"user_id":"p1","username":"a","symbol":"X","is_ai":false},{"user_id":"p2","username":"b","symbol":"X","is_ai":false}]`

		var players Players
		err := json.Unmarshal([]byte(data), &players)

		assert.ErrorIs(t, err, ErrSeatTaken)
	})

	t.Run("Seats players by symbol regardless of order", func(t *testing.T) {
		data := `[{"user_id":"ai_player","username":"AI","symbol":"O","is_ai":true},{"user_id":"p1","username":"a","symbol":"X","is_ai":false}]`

		var players Players
		require.NoError(t, json.Unmarshal([]byte(data), &players))

		assert.Equal(t, "p1", players.X.ID)
		assert.True(t, players.O.IsBot())
	})

	t.Run("Rejects O without X", func(t *testing.T) {
		data := `[{"user_id":"p2","username":"b","symbol":"O","is_ai":false}]`

		var players Players
		err := json.Unmarshal([]byte(data), &players)

		assert.ErrorIs(t, err, ErrMissingPlayer)
	})
}
