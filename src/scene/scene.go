// Package scene composes a board position, interaction state and overlays
// into a layered vector scene.
//
// Compose is a pure function of its Options: nothing is cached between
// calls and the returned Scene shares no mutable state with other scenes.
package scene

import (
	"math"

	"evilboard/src/base"
	"evilboard/src/geometry"
)

// Cell is one display cell with every layer decided independently.
type Cell struct {
	Display int
	Square  base.Square
	X, Y    float64
	Size    float64
	Light   bool

	HasHeat     bool
	Heat        float64
	HeatOpacity float64

	LastMove    bool
	InProgress  bool
	Selected    bool
	LegalTarget bool
	Hovered     bool

	Piece base.Piece
}

type ArrowShape struct {
	Arrow  base.Arrow
	X1, Y1 float64 // origin center
	X2, Y2 float64 // head tip, target center
}

type PieceShape struct {
	Square base.Square
	Piece  base.Piece
	Side   base.Side
	Glyph  string
	X, Y   float64 // cell center
	Size   float64 // font size
	Fill   string
}

type Anchor uint8

const (
	AnchorStart Anchor = iota
	AnchorMiddle
	AnchorEnd
)

type Label struct {
	Text   string
	X, Y   float64
	Size   float64
	Fill   string
	Anchor Anchor
}

type Scene struct {
	Size        float64
	Orientation geometry.Orientation
	Theme       Theme
	Board       base.Mailbox

	Cells  [64]Cell // display order
	Arrows []ArrowShape
	Pieces []PieceShape
	Labels []Label

	// Unknown lists squares whose glyph had no entry in the glyph table.
	Unknown []base.Square
	// SkippedArrows counts arrows dropped for malformed squares.
	SkippedArrows int

	Events Events
}

// Cell returns the display cell showing sq.
func (s *Scene) Cell(sq base.Square) *Cell {
	if !sq.Valid() {
		return nil
	}
	return &s.Cells[geometry.BoardToDisplay(sq, s.Orientation)]
}

// Compose builds the scene for opts on the fixed geometry.CanvasSize canvas.
func Compose(opts Options) *Scene {
	theme := opts.Theme
	if theme.Name == "" {
		theme = LightTheme
	}
	glyphs := opts.Glyphs
	if glyphs.isZero() {
		glyphs = DefaultGlyphs()
	}

	size := geometry.CanvasSize
	o := opts.Orientation
	s := &Scene{
		Size:        size,
		Orientation: o,
		Theme:       theme,
		Board:       base.DecodeBoard(opts.Position),
		Events:      newEvents(opts.Handler, o, size),
	}

	in := resolve(opts)
	cell := geometry.CellSize(size)

	for d := 0; d < 64; d++ {
		sq := geometry.DisplayToBoard(d, o)
		x, y := geometry.CellOrigin(sq, size, o)
		c := Cell{
			Display: d,
			Square:  sq,
			X:       x,
			Y:       y,
			Size:    cell,
			Light:   isLight(sq),
			Piece:   s.Board[sq],
		}

		if v, ok := in.heat[sq]; ok && v != 0 {
			c.HasHeat = true
			c.Heat = v
			c.HeatOpacity = geometry.HeatOpacity(v)
		}
		c.LastMove = in.lastMove.Has(sq)
		c.InProgress = in.inProgress.Has(sq)
		c.Selected = sq == in.selected
		c.LegalTarget = in.legal.Has(sq)
		c.Hovered = sq == in.hovered

		s.Cells[d] = c
	}

	for _, spec := range opts.Arrows {
		a, ok := spec.arrow()
		if !ok {
			s.SkippedArrows++
			continue
		}
		x1, y1 := geometry.SquareToPixel(a.From, size, o)
		x2, y2 := geometry.SquareToPixel(a.To, size, o)
		s.Arrows = append(s.Arrows, ArrowShape{Arrow: a, X1: x1, Y1: y1, X2: x2, Y2: y2})
	}

	// pieces in display order so renderers draw top to bottom
	for d := 0; d < 64; d++ {
		c := &s.Cells[d]
		if c.Piece == base.NoPiece {
			continue
		}
		glyph, ok := glyphs.Glyph(c.Piece)
		if !ok {
			s.Unknown = append(s.Unknown, c.Square)
			continue
		}
		side := base.SideOf(c.Piece)
		fill := theme.PieceSecond
		if side == base.First {
			fill = theme.PieceFirst
		}
		cx, cy := c.X+cell/2, c.Y+cell/2
		s.Pieces = append(s.Pieces, PieceShape{
			Square: c.Square,
			Piece:  c.Piece,
			Side:   side,
			Glyph:  glyph,
			X:      cx,
			Y:      cy,
			Size:   cell * 0.78,
			Fill:   fill,
		})
	}

	if !opts.HideCoordinates {
		s.Labels = coordinateLabels(s, cell)
	}
	return s
}

// input is Options with every square resolved; invalid names become absent.
type input struct {
	selected   base.Square
	hovered    base.Square
	legal      base.SquareSet
	lastMove   base.SquareSet
	inProgress base.SquareSet
	heat       map[base.Square]float64
}

func resolve(opts Options) input {
	in := input{
		selected: base.ParseSquare(opts.Selected),
		hovered:  base.ParseSquare(opts.Hovered),
		heat:     make(map[base.Square]float64, len(opts.Heatmap)),
	}
	for _, name := range opts.LegalTargets {
		in.legal = in.legal.Add(base.ParseSquare(name))
	}
	if opts.LastMove != nil {
		in.lastMove = base.NewSquareSet(base.ParseSquare(opts.LastMove.From), base.ParseSquare(opts.LastMove.To))
	}
	if from, to, ok := base.ParseMove(opts.InProgressMove); ok {
		in.inProgress = base.NewSquareSet(from, to)
	}
	for name, v := range opts.Heatmap {
		if sq := base.ParseSquare(name); sq != base.NoSquare && !math.IsNaN(v) {
			in.heat[sq] = v
		}
	}
	return in
}

// isLight follows the usual board colouring: a1 is dark, h1 is light.
// Ranks are counted 1..8 as in the notation.
func isLight(sq base.Square) bool {
	return (sq.File()+sq.Rank()+1)%2 == 0
}

// coordinateLabels places file letters along the bottom row and rank
// digits along the left column, in the order the orientation shows them.
func coordinateLabels(s *Scene, cell float64) []Label {
	fontSize := cell * 0.18
	pad := cell * 0.05
	labels := make([]Label, 0, 16)

	labelFill := func(c *Cell) string {
		if c.Light {
			return s.Theme.LabelOnLight
		}
		return s.Theme.LabelOnDark
	}

	for col := 0; col < 8; col++ {
		c := &s.Cells[56+col]
		labels = append(labels, Label{
			Text:   string(rune('a' + c.Square.File())),
			X:      c.X + cell - pad,
			Y:      c.Y + cell - pad,
			Size:   fontSize,
			Fill:   labelFill(c),
			Anchor: AnchorEnd,
		})
	}
	for row := 0; row < 8; row++ {
		c := &s.Cells[row*8]
		labels = append(labels, Label{
			Text:   string(rune('1' + c.Square.Rank())),
			X:      c.X + pad,
			Y:      c.Y + pad + fontSize,
			Size:   fontSize,
			Fill:   labelFill(c),
			Anchor: AnchorStart,
		})
	}
	return labels
}
