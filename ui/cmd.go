package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"evilboard/src"
	"evilboard/src/analysis"
	"evilboard/src/base"
	"evilboard/src/engine"
	"evilboard/src/engine/uci"
	"evilboard/src/geometry"
	"evilboard/src/logic/rules"
	"evilboard/src/logx"
	"evilboard/src/scene"
	clic "evilboard/ui/cli"
	"evilboard/ui/gconf"
	"evilboard/ui/gui"
	"evilboard/ui/raster"
	"evilboard/ui/render"
)

const logfile string = "evilboard.log"

func GetLogger(file *os.File, c *cli.Command, cfg *gconf.Config) *logx.Logx {
	level := cfg.LogLevel
	if c.IsSet("level") {
		level = c.String("level")
	}
	l := logx.NewLogx(
		logx.GetLoggerLevelByString(level),
		c.Bool("debug") || cfg.Debug,
		c.Bool("console"),
	)
	l.InitLogger(file)
	return l
}

func GetConfig(c *cli.Command) (*gconf.Config, error) {
	if path := c.String("config"); path != "" {
		return gconf.Load(path)
	}
	return gconf.NewConfig()
}

// withRuntime opens the config and the log file and hands both to fn.
func withRuntime(c *cli.Command, fn func(cfg *gconf.Config, logger *logx.Logx) error) error {
	cfg, err := GetConfig(c)
	if err != nil {
		return err
	}
	file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("error open logfile: %w", err)
	}
	defer file.Close()
	logger := GetLogger(file, c, cfg)
	defer logger.Sync() //nolint:errcheck
	return fn(cfg, logger)
}

func runRender(ctx context.Context, c *cli.Command) error {
	return withRuntime(c, func(cfg *gconf.Config, logger *logx.Logx) error {
		req := render.RequestDefaults(render.RenderRequest{
			FEN:        c.String("fen"),
			Moves:      c.StringSlice("moves"),
			Flip:       c.Bool("flip"),
			Selected:   c.String("select"),
			Hovered:    c.String("hover"),
			Legal:      c.StringSlice("legal"),
			Heat:       c.StringSlice("heat"),
			Arrows:     c.StringSlice("arrow"),
			Snapshot:   c.String("snapshot"),
			Engine:     c.String("engine"),
			Depth:      int(c.Int("depth")),
			MoveTime:   int64(c.Int("movetime")),
			Candidates: int(c.Int("candidates")),
			NoCoords:   c.Bool("no-coords"),
			Theme:      c.String("theme"),
			Format:     c.String("format"),
			Size:       int(c.Int("size")),
		}, cfg, c.IsSet("flip"))

		opts, err := req.Options(ctx, logger)
		if err != nil {
			return err
		}
		started := time.Now()
		s := scene.Compose(opts)
		logger.Debugf("composed scene in %v", time.Since(started))
		if s.Board.Count() == 0 && opts.Position != "" {
			logger.Warnf("position %q decoded to an empty board", opts.Position)
		}
		if len(s.Unknown) > 0 {
			logger.Warnf("no glyph for pieces on %v", s.Unknown)
		}
		if s.SkippedArrows > 0 {
			logger.Warnf("skipped %d malformed arrows", s.SkippedArrows)
		}

		out := os.Stdout
		if path := c.String("out"); path != "" && path != "-" {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("error create output: %w", err)
			}
			defer f.Close()
			out = f
		} else {
			clic.EnableANSI()
			req.Color = clic.ColorEnabled(os.Stdout)
		}
		logger.Debugf("render %s %dpx", req.Format, req.Size)
		return req.Write(out, s)
	})
}

func newViewBuilder(c *cli.Command, cfg *gconf.Config, logger *logx.Logx) (*src.ViewBuilder, error) {
	vb := src.NewViewBuilder(logger)
	if fen := c.String("fen"); fen != "" {
		if err := vb.CreateFromFEN(fen); err != nil {
			return nil, err
		}
	} else {
		vb.CreateClassic()
	}
	if moves := c.StringSlice("moves"); len(moves) > 0 {
		if err := vb.Play(moves...); err != nil {
			return nil, err
		}
	}

	o, err := geometry.ParseOrientation(cfg.Orientation)
	if err != nil {
		return nil, err
	}
	if c.IsSet("flip") && c.Bool("flip") {
		o = geometry.Flipped
	}
	vb.SetOrientation(o)
	vb.SetTheme(scene.ThemeFromString(cfg.Theme))
	vb.SetHideCoordinates(!cfg.Coordinates)

	if path := c.String("snapshot"); path != "" {
		snap, err := render.ReadSnapshot(path)
		if err != nil {
			return nil, err
		}
		ov := snap.Overlay(cfg.Candidates)
		vb.SetOverlay(&ov)
	}
	return vb, nil
}

func runView(c *cli.Command) error {
	return withRuntime(c, func(cfg *gconf.Config, logger *logx.Logx) error {
		vb, err := newViewBuilder(c, cfg, logger)
		if err != nil {
			return err
		}
		var e engine.Engine
		path := c.String("engine")
		if path == "" {
			path = cfg.UCIPath
		}
		if path != "" {
			ue := uci.NewUCIExec(logger, path)
			if err := ue.Init(); err != nil {
				return err
			}
			defer ue.Close()
			e = ue
		}
		prm := searchParams(c, cfg)

		if c.Bool("tty") {
			clic.EnableANSI()
			host := clic.NewCLI(vb, clic.ColorEnabled(os.Stdout))
			if e != nil {
				host.SetEngine(e, prm, cfg.Candidates)
			}
			return host.Run()
		}
		rr, err := raster.NewRenderer(raster.Options{PieceFont: cfg.PieceFont})
		if err != nil {
			return err
		}
		host := gui.NewGUI(vb, rr, cfg.Size, logger)
		if e != nil {
			host.SetEngine(e, prm, cfg.Candidates)
		}
		return host.Run()
	})
}

func searchParams(c *cli.Command, cfg *gconf.Config) engine.SearchParams {
	return render.RenderRequest{
		Depth:      int(c.Int("depth")),
		MoveTime:   int64(c.Int("movetime")),
		Candidates: cfg.Candidates,
	}.SearchParams()
}

// runAnalyze streams the engine's snapshots as JSON lines, the format
// render --snapshot reads back.
func runAnalyze(ctx context.Context, c *cli.Command) error {
	return withRuntime(c, func(cfg *gconf.Config, logger *logx.Logx) error {
		fen := c.String("fen")
		if moves := c.StringSlice("moves"); len(moves) > 0 {
			res, err := rules.Replay(fen, moves)
			if err != nil {
				return err
			}
			fen = res.FEN
		} else if fen == "" {
			fen = base.FEN_START_GAME
		}

		e := uci.NewUCIExec(logger, c.String("engine"))
		if err := e.Init(); err != nil {
			return err
		}
		defer e.Close()

		prm := searchParams(c, cfg)
		if c.Bool("infinite") {
			prm = engine.SearchParams{Infinite: true, MultiPV: prm.MultiPV}
		}

		enc := json.NewEncoder(os.Stdout)
		snaps := make(chan *analysis.Snapshot, 64)
		unsubscribe := e.Subscribe(snaps)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for s := range snaps {
				if err := enc.Encode(s); err != nil {
					logger.Errorf("write snapshot: %v", err)
				}
			}
		}()

		snap, err := engine.Analyze(ctx, e, fen, prm)
		unsubscribe()
		close(snaps)
		<-done
		if err != nil {
			return err
		}
		logger.Infof("analysis: %s", snap.Summary())
		return nil
	})
}

func runConfig(c *cli.Command) error {
	cfg, err := GetConfig(c)
	if err != nil {
		return err
	}
	path, err := cfg.Save()
	if err != nil {
		return fmt.Errorf("error save config: %w", err)
	}
	fmt.Println(path)
	return nil
}

func RunEvilBoard() error {
	ff := &cli.StringFlag{
		Name:  "fen",
		Usage: "position in FEN (blank: start position)",
	}
	mf := &cli.StringSliceFlag{
		Name:  "moves",
		Usage: "UCI moves played from the position",
	}
	flf := &cli.BoolFlag{
		Name:  "flip",
		Usage: "draw the board from the second side",
	}
	sf := &cli.StringFlag{
		Name:  "snapshot",
		Usage: "path to an analysis message (JSON)",
	}
	df := &cli.BoolFlag{
		Name:    "debug",
		Aliases: []string{"d"},
		Usage:   "enable debug mod",
	}
	lf := &cli.StringFlag{
		Name:    "level",
		Aliases: []string{"l"},
		Usage:   "logger level",
	}
	cf := &cli.BoolFlag{
		Name:    "console",
		Aliases: []string{"c"},
		Usage:   "console logger encoding",
	}
	cfgf := &cli.StringFlag{
		Name:  "config",
		Usage: "path to config file",
	}

	ef := &cli.StringFlag{
		Name:  "engine",
		Usage: "path to a UCI engine binary for live analysis",
	}
	dpf := &cli.IntFlag{
		Name:  "depth",
		Usage: "engine search depth (default 12 without --movetime)",
	}
	mtf := &cli.IntFlag{
		Name:  "movetime",
		Usage: "engine search time in ms",
	}

	renderff := []cli.Flag{ff, mf, flf, sf, ef, dpf, mtf,
		&cli.StringFlag{Name: "select", Usage: "selected square"},
		&cli.StringFlag{Name: "hover", Usage: "hovered square"},
		&cli.StringSliceFlag{Name: "legal", Usage: "legal target squares (default: computed for --select)"},
		&cli.StringSliceFlag{Name: "heat", Usage: "heat value as square=value"},
		&cli.StringSliceFlag{Name: "arrow", Usage: "arrow as e2e4 or e2e4:#rrggbb"},
		&cli.IntFlag{Name: "candidates", Value: -1, Usage: "candidate arrows from --snapshot (default: config)"},
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "svg", Usage: "svg, png or text"},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: stdout)"},
		&cli.IntFlag{Name: "size", Usage: "output side in pixels (default: config)"},
		&cli.StringFlag{Name: "theme", Usage: "light or dark (default: config)"},
		&cli.BoolFlag{Name: "no-coords", Usage: "hide file and rank labels"},
	}
	viewff := []cli.Flag{ff, mf, flf, sf, ef, dpf, mtf,
		&cli.BoolFlag{Name: "tty", Usage: "interactive board in the terminal instead of a window"},
	}
	analyzeff := []cli.Flag{ff, mf, dpf, mtf,
		&cli.StringFlag{Name: "engine", Required: true, Usage: "path to a UCI engine binary"},
		&cli.BoolFlag{Name: "infinite", Usage: "search until interrupted"},
	}

	return (&cli.Command{
		Name:  "evilboard",
		Usage: "chess board renderer",
		Flags: []cli.Flag{df, lf, cf, cfgf},
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "render a position to svg, png or text",
				Flags: renderff,
				Action: func(ctx context.Context, c *cli.Command) error {
					return runRender(ctx, c)
				},
			},
			{
				Name:  "view",
				Usage: "interactive board",
				Flags: viewff,
				Action: func(ctx context.Context, c *cli.Command) error {
					return runView(c)
				},
			},
			{
				Name:  "analyze",
				Usage: "stream engine analysis as JSON lines",
				Flags: analyzeff,
				Action: func(ctx context.Context, c *cli.Command) error {
					return runAnalyze(ctx, c)
				},
			},
			{
				Name:  "config",
				Usage: "write the effective config to the user config dir",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runConfig(c)
				},
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runView(c)
		},
	}).Run(context.Background(), os.Args)
}
