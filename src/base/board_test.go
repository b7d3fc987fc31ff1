package base

import (
	"fmt"
	"strings"
	"testing"
)

func TestDecodeStartPosition(t *testing.T) {
	mb := DecodeBoard(FEN_START_GAME)

	if mb[0] != 'R' || mb[63] != 'r' {
		t.Fatalf("a1 = %s, h8 = %s, want R and r", mb[0], mb[63])
	}
	back := "RNBQKBNR"
	for file := 0; file < 8; file++ {
		if got := mb[file]; got != Piece(back[file]) {
			t.Errorf("rank 1 file %d = %s, want %c", file, got, back[file])
		}
		if got := mb[8+file]; got != 'P' {
			t.Errorf("rank 2 file %d = %s, want P", file, got)
		}
		if got := mb[48+file]; got != 'p' {
			t.Errorf("rank 7 file %d = %s, want p", file, got)
		}
		if got := mb[56+file]; got != Piece(strings.ToLower(back)[file]) {
			t.Errorf("rank 8 file %d = %s, want %c", file, got, strings.ToLower(back)[file])
		}
	}
	for sq := 16; sq < 48; sq++ {
		if mb[sq] != NoPiece {
			t.Fatalf("square %s should be empty, got %s", Square(sq), mb[sq])
		}
	}
	for sq := 0; sq < 16; sq++ {
		if SideOf(mb[sq]) != First {
			t.Fatalf("square %s should hold a first side piece", Square(sq))
		}
	}
	if mb.Count() != 32 {
		t.Fatalf("Count = %d, want 32", mb.Count())
	}
	if got := mb.String(); got != "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR" {
		t.Fatalf("String = %s", got)
	}
}

func TestDecodeDegradesToEmpty(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"rnbqkbnr/pppppppp/8/8 w - - 0 1",
		"8/8/8/8/8/8/8/8/8",
		"nonsense",
	}
	for _, c := range cases {
		mb := DecodeBoard(c)
		if mb.Count() != 0 {
			t.Errorf("DecodeBoard(%q) has %d pieces, want empty", c, mb.Count())
		}
	}
}

func TestDecodePlacementWithoutFields(t *testing.T) {
	mb := DecodeBoard("4k3/8/8/8/8/8/8/4K3")
	if mb[ParseSquare("e1")] != 'K' || mb[ParseSquare("e8")] != 'k' {
		t.Fatalf("kings not decoded: %s", mb.String())
	}
}

func TestDecodeDropsOverflow(t *testing.T) {
	// the first group places eight rooks then one extra glyph
	mb := DecodeBoard("rrrrrrrrQ/8/8/8/8/8/8/7K w - - 0 1")
	if mb.Count() != 9 {
		t.Fatalf("Count = %d, want 9", mb.Count())
	}
	for _, p := range mb {
		if p == 'Q' {
			t.Fatal("overflow glyph should have been dropped")
		}
	}

	mb = DecodeBoard("9p/8/8/8/8/8/8/8")
	if mb.Count() != 0 {
		t.Fatalf("glyph after a nine-square skip should be dropped, got %s", mb.String())
	}
}

func TestDecodeKeepsUnknownGlyphs(t *testing.T) {
	mb := DecodeBoard("8/8/8/3x4/8/8/8/8 w - - 0 1")
	if got := mb[ParseSquare("d5")]; got != 'x' {
		t.Fatalf("d5 = %s, want literal x", got)
	}
}

func ExampleDecodeBoard() {
	mb := DecodeBoard("8/8/8/8/4P3/8/8/8 b - e3 0 1")
	fmt.Println(mb.Piece(ParseSquare("e4")), mb.Count())
	// Output: P 1
}

func BenchmarkDecodeBoard(b *testing.B) {
	for i := 0; i < b.N; i++ {
		DecodeBoard(FEN_START_GAME)
	}
}
