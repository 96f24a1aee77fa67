package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

const BoardSize = 9

const (
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
	EmptyCell Mark = ""
)

var ErrInvalidBoard = errors.New("invalid board")

type Mark string

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

func (that Mark) Opponent() Mark {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// Board - 3x3 grid stored row by row, cells 0..8.
type Board [BoardSize]Mark

func NewBoard() Board {
	return Board{}
}

// Count - number of cells holding the given mark.
func (that Board) Count(mark Mark) int {
	count := 0
	for _, cell := range that {
		if cell == mark {
			count++
		}
	}

	return count
}

func (that Board) Occupied() int {
	return BoardSize - that.Count(EmptyCell)
}

func (that Board) IsFull() bool {
	return that.Occupied() == BoardSize
}

// MarshalJSON - empty cells are encoded as null.
func (that Board) MarshalJSON() ([]byte, error) {
	cells := make([]*string, BoardSize)
	for i, cell := range that {
		if cell == EmptyCell {
			continue
		}

		value := string(cell)
		cells[i] = &value
	}

	return json.Marshal(cells)
}

func (that *Board) UnmarshalJSON(data []byte) error {
	var cells []*string
	if err := json.Unmarshal(data, &cells); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidBoard, err)
	}

	if len(cells) != BoardSize {
		return fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidBoard, BoardSize, len(cells))
	}

	var board Board
	for i, cell := range cells {
		if cell == nil || *cell == "" {
			continue
		}

		mark := Mark(*cell)
		if !mark.IsPlayer() {
			return fmt.Errorf("%w: cell %d holds %q", ErrInvalidBoard, i, *cell)
		}

		board[i] = mark
	}

	*that = board

	return nil
}
