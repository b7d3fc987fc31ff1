// Package svgr writes a composed scene as an SVG document.
package svgr

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"evilboard/src/scene"
)

const fontFamily = "font-family:'DejaVu Sans','Segoe UI Symbol','Noto Sans Symbols2',sans-serif"

// Render writes s as a size x size SVG whose viewBox is the scene canvas.
// Base squares carry a data-square attribute so an embedding page can
// attach pointer handlers per square.
func Render(w io.Writer, s *scene.Scene, size int) error {
	if size <= 0 {
		size = int(s.Size)
	}
	cw := &errWriter{w: w}
	canvas := svg.New(cw)
	view := px(s.Size)
	canvas.Startview(size, size, 0, 0, view, view)
	canvas.Title(fmt.Sprintf("board (%s)", s.Orientation))

	prims := s.Primitives()
	i := 0
	for _, l := range scene.Layers() {
		canvas.Gid(l.String())
		for ; i < len(prims) && prims[i].Layer == l; i++ {
			draw(canvas, prims[i])
		}
		canvas.Gend()
	}
	canvas.End()
	return cw.err
}

func draw(canvas *svg.SVG, p scene.Primitive) {
	switch p.Kind {
	case scene.KindRect:
		attrs := []string{fmt.Sprintf("fill:%s;fill-opacity:%s", p.Fill, num(p.Opacity))}
		if p.Layer == scene.LayerBase {
			attrs = append(attrs, fmt.Sprintf(`data-square="%s"`, p.Square))
		}
		canvas.Rect(px(p.X), px(p.Y), px(p.W), px(p.H), attrs...)
	case scene.KindFrame:
		canvas.Rect(px(p.X), px(p.Y), px(p.W), px(p.H),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-opacity:%s", p.Stroke, num(p.StrokeWidth), num(p.Opacity)))
	case scene.KindDisc:
		canvas.Circle(px(p.X), px(p.Y), px(p.R),
			fmt.Sprintf("fill:%s;fill-opacity:%s", p.Fill, num(p.Opacity)))
	case scene.KindCircle:
		canvas.Circle(px(p.X), px(p.Y), px(p.R),
			fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-opacity:%s", p.Stroke, num(p.StrokeWidth), num(p.Opacity)))
	case scene.KindArrow:
		tip, left, right, shaft := p.ArrowHead()
		canvas.Group(fmt.Sprintf("opacity:%s", num(p.Opacity)))
		canvas.Line(px(p.X), px(p.Y), px(shaft.X), px(shaft.Y),
			fmt.Sprintf("stroke:%s;stroke-width:%s;stroke-linecap:round", p.Stroke, num(p.StrokeWidth)))
		canvas.Polygon(
			[]int{px(tip.X), px(left.X), px(right.X)},
			[]int{px(tip.Y), px(left.Y), px(right.Y)},
			fmt.Sprintf("fill:%s", p.Fill))
		canvas.Gend()
	case scene.KindText:
		canvas.Text(px(p.X), px(p.Y), p.Text,
			fmt.Sprintf("%s;font-size:%spx;fill:%s;text-anchor:%s", fontFamily, num(p.FontSize), p.Fill, anchor(p.Anchor)))
	}
}

func anchor(a scene.Anchor) string {
	switch a {
	case scene.AnchorMiddle:
		return "middle"
	case scene.AnchorEnd:
		return "end"
	default:
		return "start"
	}
}

func px(v float64) int { return int(math.Round(v)) }

func num(v float64) string { return fmt.Sprintf("%.3g", v) }

// errWriter keeps the first write error; svgo ignores them.
type errWriter struct {
	w   io.Writer
	err error
}

func (c *errWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.err = err
	return n, err
}
