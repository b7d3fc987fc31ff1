package base

import (
	"strconv"
	"strings"
)

// Mailbox holds one optional glyph per square, indexed rank*8+file.
type Mailbox [64]Piece

// DecodeBoard reads the placement field of a position string.
// It never fails: a placement without exactly eight rank groups decodes
// to an empty board, and glyphs past the eighth file of a group are dropped.
func DecodeBoard(state string) Mailbox {
	var mb Mailbox

	placement := EmptyPlacement
	if fields := strings.Fields(state); len(fields) > 0 {
		placement = fields[0]
	}

	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return mb
	}

	for g, row := range ranks {
		rank := 7 - g
		file := 0
		for _, ch := range row {
			if file >= 8 {
				break
			}
			if ch >= '0' && ch <= '9' {
				file += int(ch - '0')
				continue
			}
			mb[rank*8+file] = Piece(ch)
			file++
		}
	}
	return mb
}

func (mb *Mailbox) Piece(sq Square) Piece {
	if mb == nil || !sq.Valid() {
		return NoPiece
	}
	return mb[sq]
}

// Count returns the number of occupied squares.
func (mb *Mailbox) Count() int {
	n := 0
	for _, p := range mb {
		if p != NoPiece {
			n++
		}
	}
	return n
}

// String re-encodes the placement field: rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR
func (mb *Mailbox) String() string {
	var b strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := mb[rank*8+file]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteRune(rune(pc))
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			b.WriteByte('/')
		}
	}
	return b.String()
}
