package scene

import (
	"evilboard/src/base"
	"evilboard/src/geometry"
)

// Handler receives pointer interaction. OnHover gets base.NoSquare when the
// pointer leaves the board.
type Handler interface {
	OnActivate(sq base.Square)
	OnHover(sq base.Square)
}

// HandlerFuncs adapts two optional functions to Handler; a nil func is a no-op.
type HandlerFuncs struct {
	Activate func(sq base.Square)
	Hover    func(sq base.Square)
}

func (h HandlerFuncs) OnActivate(sq base.Square) {
	if h.Activate != nil {
		h.Activate(sq)
	}
}

func (h HandlerFuncs) OnHover(sq base.Square) {
	if h.Hover != nil {
		h.Hover(sq)
	}
}

type NopHandler struct{}

func (NopHandler) OnActivate(base.Square) {}

func (NopHandler) OnHover(base.Square) {}

// Events forwards per-square pointer events to the caller's Handler,
// synchronously and without keeping any state.
type Events struct {
	handler     Handler
	orientation geometry.Orientation
	size        float64
}

func newEvents(h Handler, o geometry.Orientation, size float64) Events {
	if h == nil {
		h = NopHandler{}
	}
	return Events{handler: h, orientation: o, size: size}
}

// Enter reports sq as hovered.
func (e Events) Enter(sq base.Square) {
	e.target().OnHover(sq)
}

// Leave reports that no square is hovered.
func (e Events) Leave(base.Square) {
	e.target().OnHover(base.NoSquare)
}

// Click reports sq as activated.
func (e Events) Click(sq base.Square) {
	e.target().OnActivate(sq)
}

func (e Events) target() Handler {
	if e.handler == nil {
		return NopHandler{}
	}
	return e.handler
}

// PointerAt resolves a canvas point to the square drawn there.
func (e Events) PointerAt(x, y float64) (base.Square, bool) {
	return geometry.PixelToSquare(x, y, e.size, e.orientation)
}
