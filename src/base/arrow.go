package base

import "fmt"

const (
	DefaultArrowColor   = "#15781b"
	DefaultArrowWidth   = 12.0
	DefaultArrowOpacity = 0.8
)

// Arrow is a directional overlay from one square to another.
type Arrow struct {
	From    Square
	To      Square
	Color   string
	Width   float64
	Opacity float64
}

// WithDefaults fills unset styling.
func (a Arrow) WithDefaults() Arrow {
	if a.Color == "" {
		a.Color = DefaultArrowColor
	}
	if a.Width <= 0 {
		a.Width = DefaultArrowWidth
	}
	if a.Opacity <= 0 {
		a.Opacity = DefaultArrowOpacity
	}
	return a
}

func (a Arrow) String() string {
	return fmt.Sprintf("%s%s", a.From, a.To)
}

// ArrowFromMove builds an arrow from a move code of at least four characters.
// It reports false for an empty or malformed code.
func ArrowFromMove(code, color string, width, opacity float64) (Arrow, bool) {
	from, to, ok := ParseMove(code)
	if !ok {
		return Arrow{}, false
	}
	return Arrow{From: from, To: to, Color: color, Width: width, Opacity: opacity}.WithDefaults(), true
}
