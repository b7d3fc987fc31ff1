package scene

import (
	"evilboard/src/base"
	"evilboard/src/geometry"
)

// Options is the whole render input. The zero value renders an empty,
// unannotated board in the primary orientation; square fields take
// algebraic names and an empty or invalid name means absent.
type Options struct {
	Position        string               `json:"position"`
	Orientation     geometry.Orientation `json:"orientation"`
	Selected        string               `json:"selectedSquare,omitempty"`
	Hovered         string               `json:"hoveredSquare,omitempty"`
	LegalTargets    []string             `json:"legalTargets,omitempty"`
	LastMove        *MoveRef             `json:"lastMove,omitempty"`
	InProgressMove  string               `json:"inProgressMove,omitempty"`
	Heatmap         map[string]float64   `json:"heatmap,omitempty"`
	Arrows          []ArrowSpec          `json:"arrows,omitempty"`
	HideCoordinates bool                 `json:"hideCoordinates,omitempty"`

	Theme   Theme      `json:"-"` // zero => LightTheme
	Glyphs  GlyphTable `json:"-"` // zero => DefaultGlyphs()
	Handler Handler    `json:"-"` // nil => NopHandler
}

type MoveRef struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ArrowSpec is an arrow as the caller describes it; unset styling takes
// the base.DefaultArrow* values.
type ArrowSpec struct {
	From    string  `json:"from"`
	To      string  `json:"to"`
	Color   string  `json:"color,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Opacity float64 `json:"opacity,omitempty"`
}

func SpecFromArrow(a base.Arrow) ArrowSpec {
	return ArrowSpec{From: a.From.String(), To: a.To.String(), Color: a.Color, Width: a.Width, Opacity: a.Opacity}
}

func (as ArrowSpec) arrow() (base.Arrow, bool) {
	from, to := base.ParseSquare(as.From), base.ParseSquare(as.To)
	if from == base.NoSquare || to == base.NoSquare || from == to {
		return base.Arrow{}, false
	}
	return base.Arrow{From: from, To: to, Color: as.Color, Width: as.Width, Opacity: as.Opacity}.WithDefaults(), true
}

// ---- Styles (palettes) ----

type Theme struct {
	Name         string
	Light        string
	Dark         string
	HeatPositive string
	HeatNegative string
	LastMove     string
	InProgress   string
	Selected     string
	Legal        string
	Hover        string
	PieceFirst   string
	PieceSecond  string
	LabelOnLight string
	LabelOnDark  string
}

var LightTheme = Theme{
	Name:         "light",
	Light:        "#f0d9b5",
	Dark:         "#b58863",
	HeatPositive: "#d9342b",
	HeatNegative: "#2b6cd9",
	LastMove:     "#cdd26a",
	InProgress:   "#f2a33a",
	Selected:     "#14a8a0",
	Legal:        "#1f3d2b",
	Hover:        "#ffffff",
	PieceFirst:   "#fafafa",
	PieceSecond:  "#1b1b1b",
	LabelOnLight: "#b58863",
	LabelOnDark:  "#f0d9b5",
}

var DarkTheme = Theme{
	Name:         "dark",
	Light:        "#8ca2ad",
	Dark:         "#4a5f6a",
	HeatPositive: "#ff5a4f",
	HeatNegative: "#4fa3ff",
	LastMove:     "#9bc700",
	InProgress:   "#ffb347",
	Selected:     "#2aa1d1",
	Legal:        "#0d1b22",
	Hover:        "#eeeeee",
	PieceFirst:   "#f4f4f4",
	PieceSecond:  "#121212",
	LabelOnLight: "#4a5f6a",
	LabelOnDark:  "#8ca2ad",
}

func ThemeFromString(name string) Theme {
	switch name {
	case "dark":
		return DarkTheme
	default:
		return LightTheme
	}
}

// GlyphTable maps piece letters to display glyphs. It is copied on
// construction and never modified afterwards.
type GlyphTable struct {
	glyphs map[base.Piece]string
}

func NewGlyphTable(m map[base.Piece]string) GlyphTable {
	g := GlyphTable{glyphs: make(map[base.Piece]string, len(m))}
	for p, s := range m {
		g.glyphs[p] = s
	}
	return g
}

// DefaultGlyphs is the 12-entry unicode table.
func DefaultGlyphs() GlyphTable {
	return NewGlyphTable(map[base.Piece]string{
		'K': "♔",
		'Q': "♕",
		'R': "♖",
		'B': "♗",
		'N': "♘",
		'P': "♙",
		'k': "♚",
		'q': "♛",
		'r': "♜",
		'b': "♝",
		'n': "♞",
		'p': "♟",
	})
}

// LetterGlyphs renders pieces as their notation letters.
func LetterGlyphs() GlyphTable {
	m := make(map[base.Piece]string, 12)
	for _, p := range "KQRBNPkqrbnp" {
		m[base.Piece(p)] = string(p)
	}
	return NewGlyphTable(m)
}

func (g GlyphTable) Glyph(p base.Piece) (string, bool) {
	s, ok := g.glyphs[p]
	return s, ok
}

func (g GlyphTable) Len() int { return len(g.glyphs) }

func (g GlyphTable) isZero() bool { return g.glyphs == nil }
