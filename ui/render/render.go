// Package render turns render command input into scene options and output files.
package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"evilboard/src/analysis"
	"evilboard/src/base"
	"evilboard/src/engine"
	"evilboard/src/engine/uci"
	"evilboard/src/geometry"
	"evilboard/src/logic/rules"
	"evilboard/src/logx"
	"evilboard/src/scene"
	"evilboard/ui/cli"
	"evilboard/ui/gconf"
	"evilboard/ui/raster"
	"evilboard/ui/svgr"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrNoSnapshot    = errors.New("no snapshot")
)

// RenderRequest is the render command line after flag parsing.
type RenderRequest struct {
	FEN        string
	Moves      []string
	Flip       bool
	Selected   string
	Hovered    string
	Legal      []string
	Heat       []string // square=value
	Arrows     []string // e2e4 or e2e4:#rrggbb
	Snapshot   string   // path to analysis messages, the last one is used
	Engine     string   // UCI engine binary analysed live
	Depth      int
	MoveTime   int64 // ms
	Candidates int
	NoCoords   bool
	Theme      string
	Format     string // svg, png or text
	Size       int
	PieceFont  string
	Color      bool // colour text output
}

// RequestDefaults fills what the flags left unset from the config.
func RequestDefaults(r RenderRequest, cfg *gconf.Config, flipSet bool) RenderRequest {
	if r.Theme == "" {
		r.Theme = cfg.Theme
	}
	if r.Size <= 0 {
		r.Size = cfg.Size
	}
	if r.PieceFont == "" {
		r.PieceFont = cfg.PieceFont
	}
	if r.Candidates < 0 {
		r.Candidates = cfg.Candidates
	}
	if !flipSet && cfg.Orientation == geometry.Flipped.String() {
		r.Flip = true
	}
	if !cfg.Coordinates {
		r.NoCoords = true
	}
	if r.Format == "" {
		r.Format = "svg"
	}
	return r
}

// Options turns the request into render input. Position problems are
// errors here, the composer itself would only degrade to an empty board.
func (r RenderRequest) Options(ctx context.Context, logger logx.Logger) (scene.Options, error) {
	opts := scene.Options{
		Position:        r.FEN,
		Selected:        r.Selected,
		Hovered:         r.Hovered,
		LegalTargets:    r.Legal,
		HideCoordinates: r.NoCoords,
		Theme:           scene.ThemeFromString(r.Theme),
	}
	if r.Flip {
		opts.Orientation = geometry.Flipped
	}

	if len(r.Moves) > 0 {
		res, err := rules.Replay(r.FEN, r.Moves)
		if err != nil {
			return opts, err
		}
		opts.Position = res.FEN
		if res.LastFrom != "" {
			opts.LastMove = &scene.MoveRef{From: res.LastFrom, To: res.LastTo}
		}
	} else if strings.TrimSpace(r.FEN) == "" {
		opts.Position = base.FEN_START_GAME
	}

	if r.Selected != "" && len(r.Legal) == 0 {
		legal, err := rules.LegalTargets(opts.Position, r.Selected)
		if err != nil {
			logger.Warnf("no legal targets for %s: %v", r.Selected, err)
		}
		opts.LegalTargets = legal
	}

	heat, err := parseHeat(r.Heat)
	if err != nil {
		return opts, err
	}
	opts.Heatmap = heat

	for _, a := range r.Arrows {
		opts.Arrows = append(opts.Arrows, parseArrow(a))
	}

	var snap *analysis.Snapshot
	switch {
	case r.Snapshot != "":
		snap, err = ReadSnapshot(r.Snapshot)
	case r.Engine != "":
		snap, err = r.analyze(ctx, opts.Position, logger)
	}
	if err != nil {
		return opts, err
	}
	if snap != nil {
		logger.Infof("snapshot: %s", snap.Summary())
		snap.Overlay(r.Candidates).Apply(&opts)
	}
	return opts, nil
}

// SearchParams are the engine limits of the request; without any the
// search is bounded to depth 12.
func (r RenderRequest) SearchParams() engine.SearchParams {
	prm := engine.SearchParams{MaxDepth: r.Depth, MaxTimeMs: r.MoveTime, MultiPV: r.Candidates + 1}
	if prm.MaxDepth <= 0 && prm.MaxTimeMs <= 0 {
		prm.MaxDepth = 12
	}
	return prm
}

func (r RenderRequest) analyze(ctx context.Context, fen string, logger logx.Logger) (*analysis.Snapshot, error) {
	e := uci.NewUCIExec(logger, r.Engine)
	if err := e.Init(); err != nil {
		return nil, err
	}
	defer e.Close()
	return engine.Analyze(ctx, e, fen, r.SearchParams())
}

func parseHeat(items []string) (map[string]float64, error) {
	if len(items) == 0 {
		return nil, nil
	}
	heat := make(map[string]float64, len(items))
	for _, it := range items {
		sq, val, ok := strings.Cut(it, "=")
		if !ok {
			return nil, fmt.Errorf("heat %q: want square=value", it)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("heat %q: %w", it, err)
		}
		heat[strings.TrimSpace(sq)] = v
	}
	return heat, nil
}

// parseArrow reads e2e4 or e2e4:#15781b; bad squares are left for the
// composer to skip.
func parseArrow(s string) scene.ArrowSpec {
	code, col, _ := strings.Cut(strings.TrimSpace(s), ":")
	spec := scene.ArrowSpec{Color: col}
	if len(code) >= 4 {
		spec.From, spec.To = code[0:2], code[2:4]
	}
	return spec
}

// ReadSnapshot returns the last message of a file of analysis messages.
func ReadSnapshot(path string) (*analysis.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	var last *analysis.Snapshot
	err = analysis.DecodeStream(f, func(s *analysis.Snapshot) error {
		last = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("%w: no messages in %s", ErrNoSnapshot, path)
	}
	return last, nil
}

// Write renders s to w in the requested format.
func (r RenderRequest) Write(w io.Writer, s *scene.Scene) error {
	switch r.Format {
	case "svg":
		return svgr.Render(w, s, r.Size)
	case "png":
		rr, err := raster.NewRenderer(raster.Options{PieceFont: r.PieceFont})
		if err != nil {
			return err
		}
		return rr.EncodePNG(w, s, r.Size)
	case "text", "txt":
		return cli.Print(w, s, r.Color)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, r.Format)
}
