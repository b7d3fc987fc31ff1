package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"evilboard/src/base"
	"evilboard/src/scene"
)

// A terminal cell shows one background, so layers collapse by precedence:
// hover, selection, in-progress, last move, heat, then the square colour.
var (
	bgLight      = []color.Attribute{color.BgWhite}
	bgDark       = []color.Attribute{color.BgHiBlack}
	bgHover      = []color.Attribute{color.BgMagenta}
	bgSelected   = []color.Attribute{color.BgCyan}
	bgInProgress = []color.Attribute{color.BgHiYellow}
	bgLastMove   = []color.Attribute{color.BgYellow}
	bgHeatPos    = []color.Attribute{color.BgGreen}
	bgHeatNeg    = []color.Attribute{color.BgRed}
)

// ColorEnabled reports whether f is a terminal that should get colours.
func ColorEnabled(f *os.File) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Print writes s as text rows in display order, labels outside the board
// unless the scene hides them, and arrows listed below it. Without colorize, square markers are drawn
// with brackets instead of backgrounds.
func Print(w io.Writer, s *scene.Scene, colorize bool) error {
	glyphs := make(map[base.Square]string, len(s.Pieces))
	for _, p := range s.Pieces {
		glyphs[p.Square] = p.Glyph
	}
	for _, sq := range s.Unknown {
		glyphs[sq] = "?"
	}

	labels := len(s.Labels) > 0
	var b strings.Builder
	b.WriteString("\n")
	if labels {
		b.WriteString(fileLine(s) + "\n")
	}
	for row := 0; row < 8; row++ {
		rank := s.Cells[row*8].Square.Rank() + 1
		if labels {
			fmt.Fprintf(&b, "%d ", rank)
		}
		for col := 0; col < 8; col++ {
			c := &s.Cells[row*8+col]
			b.WriteString(cellText(c, glyphs[c.Square], colorize))
		}
		if labels {
			fmt.Fprintf(&b, " %d", rank)
		}
		b.WriteString("\n")
	}
	if labels {
		b.WriteString(fileLine(s) + "\n")
	}

	if len(s.Arrows) > 0 {
		names := make([]string, len(s.Arrows))
		for i, a := range s.Arrows {
			names[i] = a.Arrow.String()
		}
		fmt.Fprintf(&b, "arrows: %s\n", strings.Join(names, " "))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func fileLine(s *scene.Scene) string {
	var b strings.Builder
	b.WriteString("  ")
	for col := 0; col < 8; col++ {
		fmt.Fprintf(&b, " %c ", 'a'+rune(s.Cells[56+col].Square.File()))
	}
	return b.String()
}

func cellText(c *scene.Cell, glyph string, colorize bool) string {
	if glyph == "" {
		glyph = " "
		if c.LegalTarget {
			glyph = "·"
		}
	}
	if !colorize {
		l, r := brackets(c)
		return l + glyph + r
	}

	attrs := background(c)
	switch {
	case c.Piece == base.NoPiece:
		attrs = append(attrs, color.FgHiBlack)
	case base.SideOf(c.Piece) == base.First && !c.Light:
		attrs = append(attrs, color.FgHiWhite)
	default:
		attrs = append(attrs, color.FgBlack)
	}
	if c.LegalTarget && c.Piece != base.NoPiece {
		attrs = append(attrs, color.Underline)
	}
	col := color.New(attrs...)
	col.EnableColor()
	return col.Sprint(" " + glyph + " ")
}

func background(c *scene.Cell) []color.Attribute {
	var bg []color.Attribute
	switch {
	case c.Hovered:
		bg = bgHover
	case c.Selected:
		bg = bgSelected
	case c.InProgress:
		bg = bgInProgress
	case c.LastMove:
		bg = bgLastMove
	case c.HasHeat && c.Heat > 0:
		bg = bgHeatPos
	case c.HasHeat:
		bg = bgHeatNeg
	case c.Light:
		bg = bgLight
	default:
		bg = bgDark
	}
	return append([]color.Attribute{}, bg...)
}

func brackets(c *scene.Cell) (string, string) {
	switch {
	case c.Hovered:
		return "<", ">"
	case c.Selected:
		return "[", "]"
	case c.InProgress:
		return "{", "}"
	case c.LastMove:
		return "(", ")"
	case c.LegalTarget && c.Piece != base.NoPiece:
		return ">", "<"
	}
	return " ", " "
}
