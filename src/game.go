package src

import (
	"fmt"

	"evilboard/src/analysis"
	"evilboard/src/base"
	"evilboard/src/geometry"
	"evilboard/src/logic/rules"
	"evilboard/src/logx"
	"evilboard/src/scene"
)

// ViewBuilder owns the interaction state a host keeps around the stateless
// scene: the move list, selection, hover and overlays. It is the scene
// Handler for the scenes it composes. Start with a Create* method.
type ViewBuilder struct {
	start  string
	moves  []string
	cursor int // moves[:cursor] are on the board
	fen    string
	last   *scene.MoveRef

	orientation geometry.Orientation
	selected    string
	hovered     string
	legal       []string
	pending     string // previewed move, committed by Commit

	overlay    *analysis.Overlay
	overlayFEN string
	theme      scene.Theme
	glyphs     scene.GlyphTable
	hideCoords bool

	logger logx.Logger
	warned string // last logged composer drop
}

func NewViewBuilder(logger logx.Logger) *ViewBuilder {
	if logger == nil {
		logger = logx.Nop()
	}
	return &ViewBuilder{theme: scene.LightTheme, logger: logger}
}

func (vb *ViewBuilder) CreateFromFEN(fen string) error {
	vb.logger.Debugf("create view by FEN: %v", fen)
	res, err := rules.Replay(fen, nil)
	if err != nil {
		return fmt.Errorf("error parse FEN: %w", err)
	}
	vb.start, vb.fen = res.FEN, res.FEN
	vb.moves, vb.cursor, vb.last = nil, 0, nil
	vb.clearSelection()
	return nil
}

func (vb *ViewBuilder) CreateClassic() {
	vb.logger.Debugf("create classic view")
	_ = vb.CreateFromFEN(base.FEN_START_GAME)
}

// Play appends UCI moves after the current one, dropping any redo tail.
func (vb *ViewBuilder) Play(moves ...string) error {
	next := append(append([]string{}, vb.moves[:vb.cursor]...), moves...)
	if err := vb.replay(next, len(next)); err != nil {
		return err
	}
	vb.logger.Infof("played %v", moves)
	return nil
}

func (vb *ViewBuilder) Undo() bool {
	if vb.cursor == 0 {
		return false
	}
	return vb.replay(vb.moves, vb.cursor-1) == nil
}

func (vb *ViewBuilder) Redo() bool {
	if vb.cursor >= len(vb.moves) {
		return false
	}
	return vb.replay(vb.moves, vb.cursor+1) == nil
}

func (vb *ViewBuilder) replay(moves []string, cursor int) error {
	res, err := rules.Replay(vb.start, moves[:cursor])
	if err != nil {
		return err
	}
	vb.moves, vb.cursor, vb.fen = moves, cursor, res.FEN
	vb.last = nil
	if res.LastFrom != "" {
		vb.last = &scene.MoveRef{From: res.LastFrom, To: res.LastTo}
	}
	vb.clearSelection()
	return nil
}

func (vb *ViewBuilder) FEN() string { return vb.fen }

// Moves returns the moves on the board.
func (vb *ViewBuilder) Moves() []string { return append([]string{}, vb.moves[:vb.cursor]...) }

func (vb *ViewBuilder) Orientation() geometry.Orientation { return vb.orientation }

func (vb *ViewBuilder) SetOrientation(o geometry.Orientation) { vb.orientation = o }

func (vb *ViewBuilder) Flip() {
	vb.orientation = vb.orientation.Toggle()
	vb.logger.Debugf("orientation %s", vb.orientation)
}

func (vb *ViewBuilder) SetTheme(t scene.Theme) { vb.theme = t }

func (vb *ViewBuilder) SetGlyphs(g scene.GlyphTable) { vb.glyphs = g }

func (vb *ViewBuilder) SetHideCoordinates(hide bool) { vb.hideCoords = hide }

// SetOverlay shows analysis heat and arrows for the current position only;
// nil clears them.
func (vb *ViewBuilder) SetOverlay(ov *analysis.Overlay) {
	vb.overlay, vb.overlayFEN = ov, vb.fen
}

func (vb *ViewBuilder) Selected() string { return vb.selected }

func (vb *ViewBuilder) Pending() string { return vb.pending }

// Options is the render input for the current state with vb as Handler.
func (vb *ViewBuilder) Options() scene.Options {
	opts := scene.Options{
		Position:        vb.fen,
		Orientation:     vb.orientation,
		Selected:        vb.selected,
		Hovered:         vb.hovered,
		LegalTargets:    append([]string{}, vb.legal...),
		InProgressMove:  vb.pending,
		HideCoordinates: vb.hideCoords,
		Theme:           vb.theme,
		Glyphs:          vb.glyphs,
		Handler:         vb,
	}
	if vb.last != nil {
		last := *vb.last
		opts.LastMove = &last
	}
	if vb.overlay != nil && vb.overlayFEN == vb.fen {
		vb.overlay.Apply(&opts)
	}
	return opts
}

// Scene composes the current state. Hosts call it every frame, so what the
// composer dropped is logged once per distinct result.
func (vb *ViewBuilder) Scene() *scene.Scene {
	s := scene.Compose(vb.Options())
	if len(s.Unknown) == 0 && s.SkippedArrows == 0 {
		return s
	}
	key := fmt.Sprintf("%s %v %d", vb.fen, s.Unknown, s.SkippedArrows)
	if key == vb.warned {
		return s
	}
	vb.warned = key
	if len(s.Unknown) > 0 {
		vb.logger.Warnf("no glyph for pieces on %v", s.Unknown)
	}
	if s.SkippedArrows > 0 {
		vb.logger.Warnf("skipped %d malformed arrows", s.SkippedArrows)
	}
	return s
}

func (vb *ViewBuilder) OnHover(sq base.Square) {
	vb.hovered = ""
	if sq.Valid() {
		vb.hovered = sq.String()
	}
}

// OnActivate runs the click protocol: a piece is selected and its legal
// targets shown, a click on a target previews the move, a click on the
// selection or an empty square clears it.
func (vb *ViewBuilder) OnActivate(sq base.Square) {
	if vb.pending != "" {
		vb.Commit()
	}
	if !sq.Valid() {
		vb.clearSelection()
		return
	}
	name := sq.String()

	if vb.selected != "" {
		if name == vb.selected {
			vb.clearSelection()
			return
		}
		for _, t := range vb.legal {
			if t == name {
				vb.pending = vb.moveCode(vb.selected, sq)
				vb.logger.Debugf("preview %s", vb.pending)
				return
			}
		}
	}

	mb := base.DecodeBoard(vb.fen)
	if mb.Piece(sq) == base.NoPiece {
		vb.clearSelection()
		return
	}
	legal, err := rules.LegalTargets(vb.fen, name)
	if err != nil {
		vb.logger.Errorf("legal targets for %s: %v", name, err)
		legal = nil
	}
	vb.selected, vb.legal = name, legal
}

// Commit plays the previewed move, if any.
func (vb *ViewBuilder) Commit() bool {
	code := vb.pending
	if code == "" {
		return false
	}
	vb.pending = ""
	if err := vb.Play(code); err != nil {
		vb.logger.Errorf("play %s: %v", code, err)
		vb.clearSelection()
		return false
	}
	return true
}

// moveCode builds the UCI code, promoting pawns to a queen.
func (vb *ViewBuilder) moveCode(from string, to base.Square) string {
	code := from + to.String()
	mb := base.DecodeBoard(vb.fen)
	p := mb.Piece(base.ParseSquare(from))
	if (p == 'P' && to.Rank() == 7) || (p == 'p' && to.Rank() == 0) {
		code += "q"
	}
	return code
}

func (vb *ViewBuilder) clearSelection() {
	vb.selected, vb.legal, vb.pending = "", nil, ""
}
