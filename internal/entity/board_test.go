package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_JSON(t *testing.T) {
	t.Run("Empty cells are encoded as null", func(t *testing.T) {
		board := Board{PlayerX, EmptyCell, PlayerO}

		data, err := json.Marshal(board)

		require.NoError(t, err)
		assert.JSONEq(t, `["X",null,"O",null,null,null,null,null,null]`, string(data))
	})

	t.Run("Rejects boards of the wrong size", func(t *testing.T) {
		var board Board

		err := json.Unmarshal([]byte(`["X",null]`), &board)

		assert.ErrorIs(t, err, ErrInvalidBoard)
	})

	t.Run("Rejects unknown marks", func(t *testing.T) {
		var board Board

		err := json.Unmarshal([]byte(`["Z",null,null,null,null,null,null,null,null]`), &board)

		assert.ErrorIs(t, err, ErrInvalidBoard)
	})
}

func TestWinner_JSON(t *testing.T) {
	tests := []struct {
		name   string
		winner Winner
		json   string
	}{
		{name: "undecided", winner: NoOutcome(), json: `null`},
		{name: "draw", winner: DrawOutcome(), json: `"draw"`},
		{name: "mark", winner: WinnerOf(PlayerO), json: `"O"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.winner)
			require.NoError(t, err)
			assert.JSONEq(t, tt.json, string(data))

			var decoded Winner
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.winner, decoded)
		})
	}

	t.Run("Rejects a player id in place of a mark", func(t *testing.T) {
		var decoded Winner

		err := json.Unmarshal([]byte(`"p1"`), &decoded)

		assert.ErrorIs(t, err, ErrInvalidWinner)
	})
}
