package scene

import (
	"math"

	"evilboard/src/base"
)

// Layer is the z-order of the scene, bottom first.
type Layer uint8

const (
	LayerBase Layer = iota
	LayerHeat
	LayerLastMove
	LayerInProgress
	LayerSelection
	LayerLegal
	LayerHover
	LayerArrows
	LayerPieces
	LayerLabels
)

var layerNames = [...]string{
	LayerBase:       "base",
	LayerHeat:       "heat",
	LayerLastMove:   "last-move",
	LayerInProgress: "in-progress",
	LayerSelection:  "selection",
	LayerLegal:      "legal",
	LayerHover:      "hover",
	LayerArrows:     "arrows",
	LayerPieces:     "pieces",
	LayerLabels:     "labels",
}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return "unknown"
}

// Layers lists every layer in draw order.
func Layers() []Layer {
	out := make([]Layer, 0, len(layerNames))
	for l := LayerBase; l <= LayerLabels; l++ {
		out = append(out, l)
	}
	return out
}

type Kind uint8

const (
	KindRect   Kind = iota // filled rectangle X,Y,W,H
	KindFrame              // stroked rectangle X,Y,W,H
	KindDisc               // filled circle X,Y,R
	KindCircle             // stroked circle X,Y,R
	KindArrow              // shaft X,Y -> X2,Y2 with head, see ArrowHead
	KindText               // Text anchored at X,Y (baseline)
)

// Primitive is one drawing instruction of a flattened scene.
type Primitive struct {
	Layer  Layer
	Kind   Kind
	Square base.Square

	X, Y   float64
	W, H   float64
	R      float64
	X2, Y2 float64

	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64

	Text     string
	FontSize float64
	Anchor   Anchor
}

type Point struct{ X, Y float64 }

// ring insets as a fraction of the cell, so coexisting rings stay visible
const (
	lastMoveInset   = 0.0
	inProgressInset = 0.06
	selectionInset  = 0.12
	hoverInset      = 0.18
	ringWidth       = 0.055
)

// Primitives flattens the scene into draw order: base squares, heat tint,
// last-move ring, in-progress ring, selection ring, legal-target marker,
// hover ring, arrows, piece glyphs, coordinate labels.
func (s *Scene) Primitives() []Primitive {
	out := make([]Primitive, 0, 64+len(s.Arrows)+len(s.Pieces)+len(s.Labels)+16)
	t := s.Theme

	for l := LayerBase; l <= LayerHover; l++ {
		for i := range s.Cells {
			c := &s.Cells[i]
			if p, ok := c.primitive(l, t); ok {
				out = append(out, p)
			}
		}
	}

	for _, a := range s.Arrows {
		out = append(out, Primitive{
			Layer:       LayerArrows,
			Kind:        KindArrow,
			Square:      a.Arrow.To,
			X:           a.X1,
			Y:           a.Y1,
			X2:          a.X2,
			Y2:          a.Y2,
			Stroke:      a.Arrow.Color,
			Fill:        a.Arrow.Color,
			StrokeWidth: a.Arrow.Width,
			Opacity:     a.Arrow.Opacity,
		})
	}

	for _, pc := range s.Pieces {
		out = append(out, Primitive{
			Layer:    LayerPieces,
			Kind:     KindText,
			Square:   pc.Square,
			X:        pc.X,
			Y:        pc.Y + pc.Size*0.35,
			Fill:     pc.Fill,
			Opacity:  1,
			Text:     pc.Glyph,
			FontSize: pc.Size,
			Anchor:   AnchorMiddle,
		})
	}

	for _, lb := range s.Labels {
		out = append(out, Primitive{
			Layer:    LayerLabels,
			Kind:     KindText,
			Square:   base.NoSquare,
			X:        lb.X,
			Y:        lb.Y,
			Fill:     lb.Fill,
			Opacity:  1,
			Text:     lb.Text,
			FontSize: lb.Size,
			Anchor:   lb.Anchor,
		})
	}
	return out
}

func (c *Cell) primitive(l Layer, t Theme) (Primitive, bool) {
	p := Primitive{Layer: l, Square: c.Square, X: c.X, Y: c.Y, W: c.Size, H: c.Size, Opacity: 1}
	frame := func(inset float64, color string) Primitive {
		in := c.Size * inset
		sw := c.Size * ringWidth
		p.Kind = KindFrame
		p.X, p.Y = c.X+in+sw/2, c.Y+in+sw/2
		p.W, p.H = c.Size-2*in-sw, c.Size-2*in-sw
		p.Stroke = color
		p.StrokeWidth = sw
		return p
	}

	switch l {
	case LayerBase:
		p.Kind = KindRect
		p.Fill = t.Dark
		if c.Light {
			p.Fill = t.Light
		}
		return p, true
	case LayerHeat:
		if !c.HasHeat {
			return p, false
		}
		p.Kind = KindRect
		p.Fill = t.HeatPositive
		if c.Heat < 0 {
			p.Fill = t.HeatNegative
		}
		p.Opacity = c.HeatOpacity
		return p, true
	case LayerLastMove:
		return frame(lastMoveInset, t.LastMove), c.LastMove
	case LayerInProgress:
		return frame(inProgressInset, t.InProgress), c.InProgress
	case LayerSelection:
		return frame(selectionInset, t.Selected), c.Selected
	case LayerLegal:
		if !c.LegalTarget {
			return p, false
		}
		p.X, p.Y = c.X+c.Size/2, c.Y+c.Size/2
		p.W, p.H = 0, 0
		p.Opacity = 0.55
		if c.Piece != base.NoPiece {
			// occupied targets get a ring so the glyph stays readable
			p.Kind = KindCircle
			p.R = c.Size * 0.44
			p.Stroke = t.Legal
			p.StrokeWidth = c.Size * 0.07
		} else {
			p.Kind = KindDisc
			p.R = c.Size * 0.15
			p.Fill = t.Legal
		}
		return p, true
	case LayerHover:
		return frame(hoverInset, t.Hover), c.Hovered
	}
	return p, false
}

// ArrowHead returns the tip and the two base corners of an arrow primitive's
// head, and the point where the shaft meets the head.
func (p Primitive) ArrowHead() (tip, left, right, shaftEnd Point) {
	dx, dy := p.X2-p.X, p.Y2-p.Y
	length := math.Hypot(dx, dy)
	tip = Point{p.X2, p.Y2}
	if length == 0 {
		return tip, tip, tip, tip
	}
	ux, uy := dx/length, dy/length
	headLen := math.Min(p.StrokeWidth*2.4, length*0.6)
	headHalf := p.StrokeWidth * 1.3

	bx, by := p.X2-ux*headLen, p.Y2-uy*headLen
	left = Point{bx - uy*headHalf, by + ux*headHalf}
	right = Point{bx + uy*headHalf, by - ux*headHalf}
	// shaft stops a little inside the head to avoid a seam
	inner := headLen * 0.8
	shaftEnd = Point{p.X2 - ux*inner, p.Y2 - uy*inner}
	return tip, left, right, shaftEnd
}
