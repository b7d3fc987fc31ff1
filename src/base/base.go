package base

import (
	"fmt"
	"unicode"
)

// Forsyth–Edwards Notation
const FEN_START_GAME string = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// EmptyPlacement is the placement used when a position carries none.
const EmptyPlacement string = "8/8/8/8/8/8/8/8"

// Piece is the literal glyph letter of the notation, NoPiece for an empty square.
type Piece rune

const NoPiece Piece = 0

func (p Piece) String() string {
	if p == NoPiece {
		return "."
	}
	return string(rune(p))
}

// Side is the owner of a piece, derived from the glyph case.
type Side uint8

const (
	NoSide Side = iota
	First
	Second
)

func (s Side) String() string {
	switch s {
	case First:
		return "first"
	case Second:
		return "second"
	default:
		return "none"
	}
}

// SideOf reports First for upper case glyphs and Second for everything else.
func SideOf(p Piece) Side {
	if p == NoPiece {
		return NoSide
	}
	if unicode.IsUpper(rune(p)) {
		return First
	}
	return Second
}

// Square is a linear board index rank*8+file, a1 == 0 and h8 == 63.
type Square int

const NoSquare Square = -1

func NewSquare(file, rank int) Square {
	return Square(rank*8 + file)
}

func (sq Square) File() int { return int(sq) % 8 }

func (sq Square) Rank() int { return int(sq) / 8 }

func (sq Square) Valid() bool { return sq >= 0 && sq < 64 }

func (sq Square) String() string {
	s, err := AlgebraicFromSquare(sq)
	if err != nil {
		return "-"
	}
	return s
}

func SquareFromAlgebraic(pos string) (Square, error) {
	// 'a' ~ 'h' to 0-7
	// '1' ~ '8' to 0-7
	if len(pos) != 2 || pos[0] < 'a' || pos[0] > 'h' || pos[1] < '1' || pos[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", pos)
	}
	return NewSquare(int(pos[0]-'a'), int(pos[1]-'1')), nil
}

func AlgebraicFromSquare(sq Square) (string, error) {
	if !sq.Valid() {
		return "", fmt.Errorf("invalid square index %d", int(sq))
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())}), nil
}

// ParseSquare is the fail-soft form of SquareFromAlgebraic.
func ParseSquare(pos string) Square {
	sq, err := SquareFromAlgebraic(pos)
	if err != nil {
		return NoSquare
	}
	return sq
}

// ParseMove splits a from+to code such as "e2e4" or "e7e8q".
func ParseMove(code string) (from, to Square, ok bool) {
	if len(code) < 4 {
		return NoSquare, NoSquare, false
	}
	from, to = ParseSquare(code[0:2]), ParseSquare(code[2:4])
	if from == NoSquare || to == NoSquare {
		return NoSquare, NoSquare, false
	}
	return from, to, true
}

// SquareSet is a membership-only set of squares, one bit per index.
type SquareSet uint64

func NewSquareSet(sqs ...Square) SquareSet {
	var s SquareSet
	for _, sq := range sqs {
		s = s.Add(sq)
	}
	return s
}

func (s SquareSet) Add(sq Square) SquareSet {
	if !sq.Valid() {
		return s
	}
	return s | 1<<uint(sq)
}

func (s SquareSet) Has(sq Square) bool {
	return sq.Valid() && s&(1<<uint(sq)) != 0
}

func (s SquareSet) Len() int {
	n := 0
	for v := uint64(s); v != 0; v &= v - 1 {
		n++
	}
	return n
}

// Squares lists members in index order.
func (s SquareSet) Squares() []Square {
	out := make([]Square, 0, s.Len())
	for sq := Square(0); sq < 64; sq++ {
		if s.Has(sq) {
			out = append(out, sq)
		}
	}
	return out
}
