package tictactoe

import (
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe-sessions/internal/entity"
)

var defaultStrategy Strategy = NewRandomStrategy()

// Strategy - picks the AI's next cell, or NoMove when the board is full.
type Strategy interface {
	ChooseMove(board entity.Board) int
}

// RandomStrategy - uniform choice over the empty cells, no look-ahead.
type RandomStrategy struct {
	intN func(n int) int
}

func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{intN: rand.IntN} //nolint: gosec // game AI, not crypto
}

// NewSeededRandomStrategy - deterministic sequence for tests and replays. Not safe for concurrent use.
func NewSeededRandomStrategy(seed uint64) *RandomStrategy {
	rnd := rand.New(rand.NewPCG(seed, seed)) //nolint: gosec // game AI, not crypto

	return &RandomStrategy{intN: rnd.IntN}
}

func (that *RandomStrategy) ChooseMove(board entity.Board) int {
	available := AvailableMoves(board)
	if len(available) == 0 {
		return NoMove
	}

	return available[that.intN(len(available))]
}

// StrategyFunc - adapts a plain function to Strategy.
type StrategyFunc func(board entity.Board) int

func (that StrategyFunc) ChooseMove(board entity.Board) int {
	return that(board)
}
