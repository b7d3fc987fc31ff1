package scene

import (
	"strings"
	"testing"

	"evilboard/src/base"
	"evilboard/src/geometry"
)

const startFEN = base.FEN_START_GAME

func sq(name string) base.Square { return base.ParseSquare(name) }

func TestComposeStartPosition(t *testing.T) {
	s := Compose(Options{Position: startFEN})

	if s.Size != geometry.CanvasSize {
		t.Fatalf("Size = %v, want %v", s.Size, geometry.CanvasSize)
	}
	if len(s.Pieces) != 32 {
		t.Fatalf("pieces = %d, want 32", len(s.Pieces))
	}
	if len(s.Unknown) != 0 {
		t.Fatalf("unexpected unknown glyphs %v", s.Unknown)
	}
	if len(s.Labels) != 16 {
		t.Fatalf("labels = %d, want 16", len(s.Labels))
	}
	// primary: a8 in the top-left cell, h1 in the bottom-right cell
	if s.Cells[0].Square != sq("a8") || s.Cells[63].Square != sq("h1") {
		t.Fatalf("corner cells = %s, %s", s.Cells[0].Square, s.Cells[63].Square)
	}
	if s.Cell(sq("a1")).Light || !s.Cell(sq("h1")).Light {
		t.Fatal("a1 should be dark and h1 light")
	}
	for _, pc := range s.Pieces {
		if pc.Side == base.First && pc.Fill != LightTheme.PieceFirst {
			t.Fatalf("%s fill = %s", pc.Square, pc.Fill)
		}
	}
}

func TestComposeEmptyPositions(t *testing.T) {
	for _, pos := range []string{"", "garbage", "8/8/8 w - - 0 1"} {
		s := Compose(Options{Position: pos})
		if len(s.Pieces) != 0 {
			t.Errorf("Compose(%q) drew %d pieces, want 0", pos, len(s.Pieces))
		}
		if len(s.Primitives()) == 0 {
			t.Errorf("Compose(%q) should still draw the squares", pos)
		}
	}
}

func TestLayerIndependence(t *testing.T) {
	target := "e4"
	s := Compose(Options{
		Position:       startFEN,
		Selected:       target,
		Hovered:        target,
		LegalTargets:   []string{target, "e3"},
		LastMove:       &MoveRef{From: "e2", To: target},
		InProgressMove: "d2e4",
		Heatmap:        map[string]float64{target: 3, "d5": -2, "a1": 0},
	})

	c := s.Cell(sq(target))
	if !c.Selected || !c.Hovered || !c.LegalTarget || !c.HasHeat || !c.LastMove || !c.InProgress {
		t.Fatalf("e4 layers = %+v, want all set", *c)
	}
	if s.Cell(sq("a1")).HasHeat {
		t.Fatal("zero heat should not tint")
	}
	if !s.Cell(sq("d5")).HasHeat || s.Cell(sq("d5")).Heat >= 0 {
		t.Fatal("negative heat should tint d5")
	}

	seen := map[Layer]bool{}
	for _, p := range s.Primitives() {
		if p.Square == sq(target) {
			seen[p.Layer] = true
		}
	}
	for _, l := range []Layer{LayerBase, LayerHeat, LayerLastMove, LayerInProgress, LayerSelection, LayerLegal, LayerHover} {
		if !seen[l] {
			t.Errorf("layer %s missing on %s", l, target)
		}
	}
}

func TestPrimitivesZOrder(t *testing.T) {
	s := Compose(Options{
		Position:     startFEN,
		Selected:     "e2",
		Hovered:      "e3",
		LegalTargets: []string{"e3", "e4"},
		LastMove:     &MoveRef{From: "g8", To: "f6"},
		Heatmap:      map[string]float64{"d4": 1},
		Arrows:       []ArrowSpec{{From: "e2", To: "e4"}},
	})
	prims := s.Primitives()
	last := LayerBase
	for i, p := range prims {
		if p.Layer < last {
			t.Fatalf("primitive %d on layer %s after layer %s", i, p.Layer, last)
		}
		last = p.Layer
	}
	if prims[0].Layer != LayerBase || prims[len(prims)-1].Layer != LayerLabels {
		t.Fatalf("first/last layers = %s/%s", prims[0].Layer, prims[len(prims)-1].Layer)
	}
	if len(Layers()) != 10 {
		t.Fatalf("Layers = %d, want 10", len(Layers()))
	}
}

func TestLegalMarkerShape(t *testing.T) {
	s := Compose(Options{Position: startFEN, LegalTargets: []string{"e4", "d7"}})
	kinds := map[base.Square]Kind{}
	for _, p := range s.Primitives() {
		if p.Layer == LayerLegal {
			kinds[p.Square] = p.Kind
		}
	}
	if kinds[sq("e4")] != KindDisc || kinds[sq("d7")] != KindCircle {
		t.Fatalf("legal marker kinds = %v", kinds)
	}
}

func TestArrows(t *testing.T) {
	s := Compose(Options{
		Position: startFEN,
		Arrows: []ArrowSpec{
			{From: "e2", To: "e4"},
			{From: "zz", To: "e4"},
			{From: "g1", To: "f3", Color: "#ff0000", Width: 6, Opacity: 0.3},
			{From: "a1", To: "a1"},
		},
	})
	if len(s.Arrows) != 2 || s.SkippedArrows != 2 {
		t.Fatalf("arrows = %d, skipped = %d, want 2 and 2", len(s.Arrows), s.SkippedArrows)
	}
	a := s.Arrows[0]
	if a.Arrow.Color != base.DefaultArrowColor || a.Arrow.Width != base.DefaultArrowWidth || a.Arrow.Opacity != base.DefaultArrowOpacity {
		t.Fatalf("first arrow styling = %+v, want defaults", a.Arrow)
	}
	x, y := geometry.SquareToPixel(sq("e4"), s.Size, s.Orientation)
	if a.X2 != x || a.Y2 != y {
		t.Fatalf("arrow tip = (%v,%v), want e4 center (%v,%v)", a.X2, a.Y2, x, y)
	}
	if s.Arrows[1].Arrow.Color != "#ff0000" || s.Arrows[1].Arrow.Width != 6 {
		t.Fatalf("second arrow styling = %+v", s.Arrows[1].Arrow)
	}

	for _, p := range s.Primitives() {
		if p.Kind != KindArrow {
			continue
		}
		tip, left, right, shaft := p.ArrowHead()
		if tip.X != p.X2 || tip.Y != p.Y2 {
			t.Fatalf("head tip = %+v, want (%v,%v)", tip, p.X2, p.Y2)
		}
		if left == right {
			t.Fatal("head corners should differ")
		}
		// e2 -> e4 runs straight up the screen in the primary orientation
		if p.X == p.X2 && (shaft.Y <= p.Y2 || shaft.Y >= p.Y) {
			t.Fatalf("shaft end %+v not between %v and %v", shaft, p.Y, p.Y2)
		}
	}
}

func TestLabelsFollowOrientation(t *testing.T) {
	texts := func(o geometry.Orientation) (files, ranks string) {
		s := Compose(Options{Position: startFEN, Orientation: o})
		var f, r strings.Builder
		for _, lb := range s.Labels {
			if lb.Text[0] >= 'a' {
				f.WriteString(lb.Text)
			} else {
				r.WriteString(lb.Text)
			}
		}
		return f.String(), r.String()
	}

	files, ranks := texts(geometry.Primary)
	if files != "abcdefgh" || ranks != "87654321" {
		t.Fatalf("primary labels = %s %s", files, ranks)
	}
	files, ranks = texts(geometry.Flipped)
	if files != "hgfedcba" || ranks != "12345678" {
		t.Fatalf("flipped labels = %s %s", files, ranks)
	}

	if s := Compose(Options{Position: startFEN, HideCoordinates: true}); len(s.Labels) != 0 {
		t.Fatalf("hidden coordinates still drew %d labels", len(s.Labels))
	}
}

func TestFlippedPlacement(t *testing.T) {
	s := Compose(Options{Position: startFEN, Orientation: geometry.Flipped})
	if s.Cells[0].Square != sq("h1") || s.Cells[0].Piece != 'R' {
		t.Fatalf("flipped top-left = %s %s, want h1 R", s.Cells[0].Square, s.Cells[0].Piece)
	}
	x, y := geometry.SquareToPixel(sq("h1"), s.Size, geometry.Flipped)
	for _, pc := range s.Pieces {
		if pc.Square == sq("h1") && (pc.X != x || pc.Y != y) {
			t.Fatalf("h1 glyph at (%v,%v), want (%v,%v)", pc.X, pc.Y, x, y)
		}
	}
}

func TestUnknownGlyphs(t *testing.T) {
	s := Compose(Options{Position: "4k3/8/8/3x4/8/8/8/4K3 w - - 0 1"})
	if len(s.Unknown) != 1 || s.Unknown[0] != sq("d5") {
		t.Fatalf("Unknown = %v, want [d5]", s.Unknown)
	}
	if len(s.Pieces) != 2 {
		t.Fatalf("pieces = %d, want 2", len(s.Pieces))
	}
}

func TestCustomGlyphTable(t *testing.T) {
	s := Compose(Options{Position: startFEN, Glyphs: LetterGlyphs()})
	for _, pc := range s.Pieces {
		if pc.Glyph != pc.Piece.String() {
			t.Fatalf("%s glyph = %q, want %q", pc.Square, pc.Glyph, pc.Piece.String())
		}
	}
	if DefaultGlyphs().Len() != 12 {
		t.Fatalf("default glyph table has %d entries, want 12", DefaultGlyphs().Len())
	}
}

func TestGlyphTableIsCopied(t *testing.T) {
	m := map[base.Piece]string{'K': "K"}
	g := NewGlyphTable(m)
	m['K'] = "changed"
	if got, _ := g.Glyph('K'); got != "K" {
		t.Fatalf("glyph table changed with its source map: %q", got)
	}
}

func TestInvalidSquaresAreAbsent(t *testing.T) {
	s := Compose(Options{
		Position:       startFEN,
		Selected:       "x9",
		Hovered:        "",
		LegalTargets:   []string{"", "j2"},
		LastMove:       &MoveRef{From: "??", To: ""},
		InProgressMove: "e2",
		Heatmap:        map[string]float64{"nope": 4},
	})
	for _, c := range s.Cells {
		if c.Selected || c.Hovered || c.LegalTarget || c.LastMove || c.InProgress || c.HasHeat {
			t.Fatalf("cell %s unexpectedly annotated: %+v", c.Square, c)
		}
	}
}

func TestThemeSelection(t *testing.T) {
	if s := Compose(Options{}); s.Theme != LightTheme {
		t.Fatal("zero theme should fall back to LightTheme")
	}
	for name, want := range map[string]Theme{"dark": DarkTheme, "light": LightTheme, "": LightTheme, "neon": LightTheme} {
		if s := Compose(Options{Theme: ThemeFromString(name)}); s.Theme != want {
			t.Errorf("theme %q = %s, want %s", name, s.Theme.Name, want.Name)
		}
	}
}

func BenchmarkCompose(b *testing.B) {
	opts := Options{
		Position:     startFEN,
		Selected:     "e2",
		LegalTargets: []string{"e3", "e4"},
		Heatmap:      map[string]float64{"e4": 2, "d4": 1},
		Arrows:       []ArrowSpec{{From: "e2", To: "e4"}},
	}
	for i := 0; i < b.N; i++ {
		Compose(opts).Primitives()
	}
}
