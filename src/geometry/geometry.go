// Package geometry maps board squares to the on-screen grid and to pixels.
//
// The display grid is always read row-major with row 0 on top. Orientation
// only decides which board square lands in which display cell.
package geometry

import (
	"fmt"
	"math"
	"strings"

	"evilboard/src/base"
)

// CanvasSize is the side of the square canvas a scene is composed on.
const CanvasSize = 640.0

const (
	heatCap  = 0.42
	heatBase = 0.08
	heatGain = 0.06
)

type Orientation uint8

const (
	Primary Orientation = iota
	Flipped
)

func (o Orientation) String() string {
	if o == Flipped {
		return "flipped"
	}
	return "primary"
}

func (o Orientation) Toggle() Orientation {
	if o == Flipped {
		return Primary
	}
	return Flipped
}

func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "primary", "white":
		return Primary, nil
	case "flipped", "black":
		return Flipped, nil
	}
	return Primary, fmt.Errorf("unknown orientation %q", s)
}

func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Orientation) UnmarshalText(text []byte) error {
	v, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// DisplayToBoard converts a display index (row-major, row 0 on top) to a board index.
func DisplayToBoard(display int, o Orientation) base.Square {
	row, col := display/8, display%8
	if o == Flipped {
		return base.NewSquare(7-col, row)
	}
	return base.NewSquare(col, 7-row)
}

// BoardToDisplay is the inverse of DisplayToBoard.
func BoardToDisplay(sq base.Square, o Orientation) int {
	file, rank := sq.File(), sq.Rank()
	if o == Flipped {
		return rank*8 + (7 - file)
	}
	return (7-rank)*8 + file
}

// CellSize is the side of one of the 64 equal cells.
func CellSize(size float64) float64 {
	return size / 8
}

// CellOrigin returns the top-left corner of the cell showing sq.
func CellOrigin(sq base.Square, size float64, o Orientation) (x, y float64) {
	d := BoardToDisplay(sq, o)
	cell := CellSize(size)
	return float64(d%8) * cell, float64(d/8) * cell
}

// SquareToPixel returns the center of the cell showing sq.
func SquareToPixel(sq base.Square, size float64, o Orientation) (x, y float64) {
	x, y = CellOrigin(sq, size, o)
	half := CellSize(size) / 2
	return x + half, y + half
}

// PixelToSquare hit-tests a canvas point. It reports false outside the canvas.
func PixelToSquare(x, y, size float64, o Orientation) (base.Square, bool) {
	if x < 0 || y < 0 || x >= size || y >= size || size <= 0 {
		return base.NoSquare, false
	}
	cell := CellSize(size)
	col := int(x / cell)
	row := int(y / cell)
	if col > 7 {
		col = 7
	}
	if row > 7 {
		row = 7
	}
	return DisplayToBoard(row*8+col, o), true
}

// HeatOpacity maps a signed heat value to a tint opacity, saturating at the cap.
func HeatOpacity(v float64) float64 {
	return math.Min(heatCap, heatBase+math.Abs(v)*heatGain)
}
