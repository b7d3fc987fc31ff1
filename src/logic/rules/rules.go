// Package rules answers the questions the board itself never decides:
// which squares a piece may move to and what the position is after a
// sequence of moves. The hosts use it to fill in the render options.
package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/notnil/chess"

	"evilboard/src/base"
)

var ErrIllegalMove = errors.New("illegal move")

func newGame(fen string) (*chess.Game, error) {
	if strings.TrimSpace(fen) == "" {
		return chess.NewGame(), nil
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse fen: %w", err)
	}
	return chess.NewGame(opt), nil
}

// LegalTargets lists the destination squares of the legal moves starting
// on from, sorted and without duplicates (promotions share a square).
func LegalTargets(fen, from string) ([]string, error) {
	if _, err := base.SquareFromAlgebraic(from); err != nil {
		return nil, err
	}
	game, err := newGame(fen)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []string
	for _, m := range game.ValidMoves() {
		if m.S1().String() != from {
			continue
		}
		to := m.S2().String()
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	sort.Strings(out)
	return out, nil
}

// FirstToMove reports whether the upper case side is to move.
func FirstToMove(fen string) (bool, error) {
	game, err := newGame(fen)
	if err != nil {
		return false, err
	}
	return game.Position().Turn() == chess.White, nil
}

type Result struct {
	FEN      string
	LastFrom string
	LastTo   string
}

// Replay plays UCI moves (e2e4, e7e8q) from fen and returns the final
// position and the last move played.
func Replay(fen string, moves []string) (Result, error) {
	game, err := newGame(fen)
	if err != nil {
		return Result{}, err
	}

	res := Result{}
	for i, code := range moves {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		m, err := chess.UCINotation{}.Decode(game.Position(), code)
		if err != nil {
			return Result{}, fmt.Errorf("%w: move %d %q: %v", ErrIllegalMove, i+1, code, err)
		}
		if err := game.Move(m); err != nil {
			return Result{}, fmt.Errorf("%w: move %d %q: %v", ErrIllegalMove, i+1, code, err)
		}
		res.LastFrom, res.LastTo = m.S1().String(), m.S2().String()
	}
	res.FEN = game.Position().String()
	return res, nil
}
