// Package gui hosts the board in an ebiten window.
package gui

import (
	"context"
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"evilboard/src"
	"evilboard/src/analysis"
	"evilboard/src/base"
	"evilboard/src/engine"
	"evilboard/src/logx"
	"evilboard/ui/raster"
)

// previewTicks is how long a previewed move stays on screen, in updates.
const previewTicks = 20

const analyzeTimeout = 30 * time.Second

type analyzed struct {
	fen  string
	snap *analysis.Snapshot
	err  error
}

type GUIProcessing struct {
	builder  *src.ViewBuilder
	renderer *raster.Renderer
	logx     logx.Logger
	size     int

	frame   *ebiten.Image
	dirty   bool
	hovered base.Square
	waiting int

	engine     engine.Engine
	params     engine.SearchParams
	candidates int
	analyzing  bool
	results    chan analyzed
}

func NewGUI(b *src.ViewBuilder, r *raster.Renderer, size int, logger logx.Logger) *GUIProcessing {
	if logger == nil {
		logger = logx.Nop()
	}
	if size <= 0 {
		size = 640
	}
	return &GUIProcessing{
		builder: b, renderer: r, logx: logger, size: size,
		dirty: true, hovered: base.NoSquare,
		results: make(chan analyzed, 1),
	}
}

// SetEngine enables the A key: analyse the shown position in the background.
func (gp *GUIProcessing) SetEngine(e engine.Engine, prm engine.SearchParams, candidates int) {
	gp.engine, gp.params, gp.candidates = e, prm, candidates
}

func (gp *GUIProcessing) analyze() {
	if gp.engine == nil {
		gp.logx.Warnf("no engine configured")
		return
	}
	if gp.analyzing {
		return
	}
	gp.analyzing = true
	fen := gp.builder.FEN()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
		defer cancel()
		snap, err := engine.Analyze(ctx, gp.engine, fen, gp.params)
		gp.results <- analyzed{fen: fen, snap: snap, err: err}
	}()
}

// collect applies a finished analysis if its position is still shown.
func (gp *GUIProcessing) collect() {
	select {
	case res := <-gp.results:
		gp.analyzing = false
		if res.err != nil {
			gp.logx.Errorf("analyze: %v", res.err)
			return
		}
		gp.logx.Infof("analysis: %s", res.snap.Summary())
		if res.fen != gp.builder.FEN() {
			return
		}
		ov := res.snap.Overlay(gp.candidates)
		gp.builder.SetOverlay(&ov)
		gp.dirty = true
	default:
	}
}

func (gp *GUIProcessing) Run() error {
	ebiten.SetWindowSize(gp.size, gp.size)
	ebiten.SetWindowTitle("EvilBoard")
	err := ebiten.RunGame(gp)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

func (gp *GUIProcessing) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		gp.builder.Flip()
		gp.dirty = true
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		gp.dirty = gp.builder.Undo() || gp.dirty
	case inpututil.IsKeyJustPressed(ebiten.KeyRight):
		gp.dirty = gp.builder.Redo() || gp.dirty
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		gp.export()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		gp.copyFEN()
	case inpututil.IsKeyJustPressed(ebiten.KeyV):
		gp.dirty = gp.pasteFEN() || gp.dirty
	case inpututil.IsKeyJustPressed(ebiten.KeyA):
		gp.analyze()
	}
	gp.collect()

	if gp.builder.Pending() != "" {
		gp.waiting++
		if gp.waiting >= previewTicks {
			gp.waiting = 0
			gp.builder.Commit()
			gp.dirty = true
		}
	}

	s := gp.builder.Scene()
	k := s.Size / float64(gp.size)
	x, y := ebiten.CursorPosition()
	sq, ok := s.Events.PointerAt(float64(x)*k, float64(y)*k)
	if !ok {
		sq = base.NoSquare
	}
	if sq != gp.hovered {
		if sq == base.NoSquare {
			s.Events.Leave(gp.hovered)
		} else {
			s.Events.Enter(sq)
		}
		gp.hovered = sq
		gp.dirty = true
	}
	if ok && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		gp.waiting = 0
		s.Events.Click(sq)
		gp.dirty = true
	}
	return nil
}

func (gp *GUIProcessing) Draw(screen *ebiten.Image) {
	if gp.dirty || gp.frame == nil {
		img, err := gp.renderer.Image(gp.builder.Scene(), gp.size)
		if err != nil {
			gp.logx.Errorf("render frame: %v", err)
			return
		}
		if gp.frame != nil {
			gp.frame.Deallocate()
		}
		gp.frame = ebiten.NewImageFromImage(img)
		gp.dirty = false
	}
	screen.DrawImage(gp.frame, &ebiten.DrawImageOptions{})
}

func (gp *GUIProcessing) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return gp.size, gp.size
}
