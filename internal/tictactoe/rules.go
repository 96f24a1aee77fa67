// Package tictactoe holds the board rules: move validity, applying marks,
// outcome detection and the AI move choice. Every function is pure.
package tictactoe

import (
	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

// NoMove - returned by a strategy when the board has no empty cell left.
const NoMove = -1

// WinCombos - 3 rows, 3 columns, 2 diagonals.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// IsValidMove - position is on the board and the cell is empty.
func IsValidMove(board entity.Board, position int) bool {
	return position >= 0 && position < entity.BoardSize && board[position] == entity.EmptyCell
}

// ApplyMove - returns a copy of the board with the mark placed. Validity is the caller's job;
// a position off the board leaves the copy unchanged.
func ApplyMove(board entity.Board, position int, mark entity.Mark) entity.Board {
	if position < 0 || position >= entity.BoardSize {
		return board
	}

	board[position] = mark

	return board
}

// CheckOutcome - a completed line wins even on a full board; a full board without one is a draw.
func CheckOutcome(board entity.Board) entity.Winner {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != entity.EmptyCell && a == b && b == c {
			return entity.WinnerOf(a)
		}
	}

	if board.IsFull() {
		return entity.DrawOutcome()
	}

	return entity.NoOutcome()
}

// AvailableMoves - empty cell positions in ascending order.
func AvailableMoves(board entity.Board) []int {
	moves := make([]int, 0, entity.BoardSize)
	for i, cell := range board {
		if cell == entity.EmptyCell {
			moves = append(moves, i)
		}
	}

	return moves
}

// ChooseAIMove - picks with the default random strategy.
func ChooseAIMove(board entity.Board) int {
	return defaultStrategy.ChooseMove(board)
}
