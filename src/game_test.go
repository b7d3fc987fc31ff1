package src

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"evilboard/src/analysis"
	"evilboard/src/base"
	"evilboard/src/geometry"
	"evilboard/src/logx"
	"evilboard/src/scene"
)

func newClassic(t *testing.T) *ViewBuilder {
	t.Helper()
	vb := NewViewBuilder(logx.Nop())
	vb.CreateClassic()
	return vb
}

func TestClickProtocol(t *testing.T) {
	vb := newClassic(t)
	e2, e4 := base.ParseSquare("e2"), base.ParseSquare("e4")

	vb.OnActivate(e2)
	if vb.Selected() != "e2" {
		t.Fatalf("selected = %q, want e2", vb.Selected())
	}
	opts := vb.Options()
	if !reflect.DeepEqual(opts.LegalTargets, []string{"e3", "e4"}) {
		t.Fatalf("legal = %v, want [e3 e4]", opts.LegalTargets)
	}

	vb.OnActivate(e4)
	if vb.Pending() != "e2e4" || vb.Options().InProgressMove != "e2e4" {
		t.Fatalf("pending = %q, want e2e4", vb.Pending())
	}
	if !vb.Commit() {
		t.Fatal("commit failed")
	}
	if !strings.HasPrefix(vb.FEN(), "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b") {
		t.Fatalf("FEN = %s", vb.FEN())
	}
	last := vb.Options().LastMove
	if last == nil || last.From != "e2" || last.To != "e4" {
		t.Fatalf("last move = %v, want e2-e4", last)
	}
	if vb.Selected() != "" || vb.Pending() != "" {
		t.Fatal("selection should clear after a move")
	}
}

func TestClickDeselect(t *testing.T) {
	vb := newClassic(t)
	g1 := base.ParseSquare("g1")
	vb.OnActivate(g1)
	vb.OnActivate(g1)
	if vb.Selected() != "" {
		t.Fatal("second click on the selection should clear it")
	}
	vb.OnActivate(g1)
	vb.OnActivate(base.ParseSquare("d5"))
	if vb.Selected() != "" {
		t.Fatal("click on an empty non-target square should clear the selection")
	}
	vb.OnActivate(base.NoSquare)
	if vb.Selected() != "" {
		t.Fatal("NoSquare should clear")
	}
}

func TestPendingCommitsOnNextClick(t *testing.T) {
	vb := newClassic(t)
	vb.OnActivate(base.ParseSquare("e2"))
	vb.OnActivate(base.ParseSquare("e4"))
	vb.OnActivate(base.ParseSquare("e7"))
	if len(vb.Moves()) != 1 {
		t.Fatalf("moves = %v, want the preview committed", vb.Moves())
	}
	if vb.Selected() != "e7" {
		t.Fatalf("selected = %q, want e7", vb.Selected())
	}
}

func TestPromotionCode(t *testing.T) {
	vb := NewViewBuilder(nil)
	if err := vb.CreateFromFEN("8/4P3/8/8/8/8/k7/4K3 w - - 0 1"); err != nil {
		t.Fatalf("CreateFromFEN: %v", err)
	}
	vb.OnActivate(base.ParseSquare("e7"))
	vb.OnActivate(base.ParseSquare("e8"))
	if vb.Pending() != "e7e8q" {
		t.Fatalf("pending = %q, want e7e8q", vb.Pending())
	}
	if !vb.Commit() {
		t.Fatal("promotion should play")
	}
	mb := base.DecodeBoard(vb.FEN())
	if mb.Piece(base.ParseSquare("e8")) != 'Q' {
		t.Fatal("pawn should promote to a queen")
	}
}

func TestUndoRedo(t *testing.T) {
	vb := newClassic(t)
	if err := vb.Play("e2e4", "e7e5"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	after := vb.FEN()
	if !vb.Undo() || !vb.Undo() {
		t.Fatal("undo failed")
	}
	if vb.Undo() {
		t.Fatal("undo past the start should fail")
	}
	if vb.Options().LastMove != nil {
		t.Fatal("no last move at the start")
	}
	if !vb.Redo() || !vb.Redo() || vb.FEN() != after {
		t.Fatalf("redo FEN = %s, want %s", vb.FEN(), after)
	}
	if vb.Redo() {
		t.Fatal("redo past the end should fail")
	}

	vb.Undo()
	if err := vb.Play("d7d5"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if !reflect.DeepEqual(vb.Moves(), []string{"e2e4", "d7d5"}) {
		t.Fatalf("moves = %v, redo tail should be dropped", vb.Moves())
	}
}

func TestPlayIllegalKeepsState(t *testing.T) {
	vb := newClassic(t)
	before := vb.FEN()
	if err := vb.Play("e2e5"); err == nil {
		t.Fatal("expected an error")
	}
	if vb.FEN() != before {
		t.Fatal("illegal move changed the position")
	}
}

func TestCreateFromBadFEN(t *testing.T) {
	vb := NewViewBuilder(nil)
	if err := vb.CreateFromFEN("nonsense"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSceneWiresHandler(t *testing.T) {
	vb := newClassic(t)
	vb.Flip()
	s := vb.Scene()
	if s.Orientation != geometry.Flipped {
		t.Fatalf("orientation = %v", s.Orientation)
	}

	// a pointer on the top-left cell of the flipped board is h1
	sq, ok := s.Events.PointerAt(10, 10)
	if !ok || sq.String() != "h1" {
		t.Fatalf("PointerAt = %v %t, want h1", sq, ok)
	}
	s.Events.Enter(sq)
	s.Events.Click(sq)
	if vb.Selected() != "h1" || vb.Options().Hovered != "h1" {
		t.Fatalf("selected %q hovered %q, want h1", vb.Selected(), vb.Options().Hovered)
	}
	s.Events.Leave(sq)
	if vb.Options().Hovered != "" {
		t.Fatal("leave should clear the hover")
	}
}

func TestOverlay(t *testing.T) {
	vb := newClassic(t)
	best := "e2e4"
	snap := &analysis.Snapshot{
		BestMove: &best,
		Heatmap:  map[string]float64{"e4": 2},
	}
	ov := snap.Overlay(2)
	vb.SetOverlay(&ov)
	s := vb.Scene()
	if len(s.Arrows) != 1 || s.Arrows[0].Arrow.To.String() != "e4" {
		t.Fatalf("arrows = %v", s.Arrows)
	}
	if !s.Cell(base.ParseSquare("e4")).HasHeat {
		t.Fatal("e4 should carry heat")
	}
	if err := vb.Play("e2e4"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(vb.Scene().Arrows) != 0 {
		t.Fatal("overlay belongs to the position it was made for")
	}
	vb.Undo()
	if len(vb.Scene().Arrows) != 1 {
		t.Fatal("overlay should show again on its position")
	}
	vb.SetOverlay(nil)
	if len(vb.Scene().Arrows) != 0 {
		t.Fatal("overlay should clear")
	}
	vb.SetTheme(scene.DarkTheme)
	if vb.Scene().Theme.Name != scene.DarkTheme.Name {
		t.Fatal("theme not applied")
	}
}

func TestSceneLogsDropsOnce(t *testing.T) {
	var buf bytes.Buffer
	l := logx.NewLogx(zapcore.DebugLevel, false, false)
	l.InitLogger(&buf)
	vb := NewViewBuilder(l)
	vb.CreateClassic()
	vb.SetGlyphs(scene.NewGlyphTable(map[base.Piece]string{'K': "K", 'k': "k"}))

	for i := 0; i < 5; i++ {
		vb.Scene()
	}
	if n := strings.Count(buf.String(), "no glyph"); n != 1 {
		t.Fatalf("got %d glyph warnings over 5 frames, want 1:\n%s", n, buf.String())
	}
	if strings.Contains(buf.String(), "composed scene") {
		t.Fatal("per-frame compose should not log")
	}

	if err := vb.Play("e2e4"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	vb.Scene()
	if n := strings.Count(buf.String(), "no glyph"); n != 2 {
		t.Fatalf("got %d glyph warnings, want one more for the new position", n)
	}
}
