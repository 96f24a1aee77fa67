package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

const drawValue = "draw"

var ErrInvalidWinner = errors.New("invalid winner")

type WinnerKind int

const (
	NoWinner WinnerKind = iota
	Draw
	MarkWinner
)

// Winner - outcome of a board: nobody yet, a draw, or the mark that completed a line.
type Winner struct {
	Kind WinnerKind
	Mark Mark
}

func NoOutcome() Winner {
	return Winner{Kind: NoWinner}
}

func DrawOutcome() Winner {
	return Winner{Kind: Draw}
}

func WinnerOf(mark Mark) Winner {
	return Winner{Kind: MarkWinner, Mark: mark}
}

func (that Winner) IsDecided() bool {
	return that.Kind != NoWinner
}

func (that Winner) IsDraw() bool {
	return that.Kind == Draw
}

func (that Winner) String() string {
	switch that.Kind {
	case Draw:
		return drawValue
	case MarkWinner:
		return string(that.Mark)
	default:
		return ""
	}
}

// MarshalJSON - null while undecided, "draw", or the winning mark.
func (that Winner) MarshalJSON() ([]byte, error) {
	if !that.IsDecided() {
		return []byte("null"), nil
	}

	return json.Marshal(that.String())
}

func (that *Winner) UnmarshalJSON(data []byte) error {
	var value *string
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWinner, err)
	}

	switch {
	case value == nil || *value == "":
		*that = NoOutcome()
	case *value == drawValue:
		*that = DrawOutcome()
	case Mark(*value).IsPlayer():
		*that = WinnerOf(Mark(*value))
	default:
		return fmt.Errorf("%w: %q", ErrInvalidWinner, *value)
	}

	return nil
}
