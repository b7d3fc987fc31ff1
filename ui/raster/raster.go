// Package raster draws a composed scene into an RGBA image with gg.
package raster

import (
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"strings"
	"unicode"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"evilboard/src/base"
	"evilboard/src/scene"
)

type Options struct {
	// PieceFont is a TTF/OTF file with the unicode chess glyphs. Without
	// it pieces are drawn as lettered tokens, the Go fonts have no chess glyphs.
	PieceFont string
}

// Renderer caches parsed fonts and faces; use it from one goroutine.
type Renderer struct {
	regular *opentype.Font
	bold    *opentype.Font
	pieces  *opentype.Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	f    *opentype.Font
	size int
}

func NewRenderer(opts Options) (*Renderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, err
	}
	r := &Renderer{regular: regular, bold: bold, faces: map[faceKey]font.Face{}}

	if opts.PieceFont != "" {
		data, err := os.ReadFile(opts.PieceFont)
		if err != nil {
			return nil, fmt.Errorf("read piece font: %w", err)
		}
		if r.pieces, err = opentype.Parse(data); err != nil {
			return nil, fmt.Errorf("parse piece font %s: %w", opts.PieceFont, err)
		}
	}
	return r, nil
}

func (r *Renderer) face(f *opentype.Font, size float64) (font.Face, error) {
	key := faceKey{f: f, size: int(size + 0.5)}
	if key.size < 1 {
		key.size = 1
	}
	if face, ok := r.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(key.size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, err
	}
	r.faces[key] = face
	return face, nil
}

// Image draws s on a size x size image.
func (r *Renderer) Image(s *scene.Scene, size int) (image.Image, error) {
	dc, err := r.context(s, size)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// EncodePNG draws s and writes it as PNG.
func (r *Renderer) EncodePNG(w io.Writer, s *scene.Scene, size int) error {
	dc, err := r.context(s, size)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func (r *Renderer) context(s *scene.Scene, size int) (*gg.Context, error) {
	if size <= 0 {
		size = int(s.Size)
	}
	k := float64(size) / s.Size
	dc := gg.NewContext(size, size)

	for _, p := range s.Primitives() {
		if err := r.draw(dc, s, p, k); err != nil {
			return nil, err
		}
	}
	return dc, nil
}

func (r *Renderer) draw(dc *gg.Context, s *scene.Scene, p scene.Primitive, k float64) error {
	switch p.Kind {
	case scene.KindRect:
		dc.DrawRectangle(p.X*k, p.Y*k, p.W*k, p.H*k)
		setColor(dc, p.Fill, p.Opacity)
		dc.Fill()
	case scene.KindFrame:
		dc.DrawRectangle(p.X*k, p.Y*k, p.W*k, p.H*k)
		setColor(dc, p.Stroke, p.Opacity)
		dc.SetLineWidth(p.StrokeWidth * k)
		dc.Stroke()
	case scene.KindDisc:
		dc.DrawCircle(p.X*k, p.Y*k, p.R*k)
		setColor(dc, p.Fill, p.Opacity)
		dc.Fill()
	case scene.KindCircle:
		dc.DrawCircle(p.X*k, p.Y*k, p.R*k)
		setColor(dc, p.Stroke, p.Opacity)
		dc.SetLineWidth(p.StrokeWidth * k)
		dc.Stroke()
	case scene.KindArrow:
		tip, left, right, shaft := p.ArrowHead()
		setColor(dc, p.Stroke, p.Opacity)
		dc.SetLineWidth(p.StrokeWidth * k)
		dc.SetLineCapRound()
		dc.DrawLine(p.X*k, p.Y*k, shaft.X*k, shaft.Y*k)
		dc.Stroke()
		dc.MoveTo(tip.X*k, tip.Y*k)
		dc.LineTo(left.X*k, left.Y*k)
		dc.LineTo(right.X*k, right.Y*k)
		dc.ClosePath()
		dc.Fill()
	case scene.KindText:
		if p.Layer == scene.LayerPieces {
			return r.drawPiece(dc, s, p, k)
		}
		face, err := r.face(r.regular, p.FontSize*k)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		setColor(dc, p.Fill, p.Opacity)
		dc.DrawStringAnchored(p.Text, p.X*k, p.Y*k, anchorX(p.Anchor), 0)
	}
	return nil
}

func (r *Renderer) drawPiece(dc *gg.Context, s *scene.Scene, p scene.Primitive, k float64) error {
	pc := s.Board.Piece(p.Square)
	side := base.SideOf(pc)
	cx, cy := p.X*k, (p.Y-p.FontSize*0.35)*k

	if r.pieces != nil {
		face, err := r.face(r.pieces, p.FontSize*k)
		if err != nil {
			return err
		}
		dc.SetFontFace(face)
		setColor(dc, p.Fill, 1)
		dc.DrawStringAnchored(p.Text, cx, cy, 0.5, 0.5)
		return nil
	}

	// lettered token
	radius := p.FontSize * 0.42 * k
	dc.DrawCircle(cx, cy, radius)
	setColor(dc, p.Fill, 1)
	dc.FillPreserve()
	outline := s.Theme.PieceSecond
	if side == base.Second {
		outline = s.Theme.PieceFirst
	}
	setColor(dc, outline, 1)
	dc.SetLineWidth(2 * k)
	dc.Stroke()

	face, err := r.face(r.bold, p.FontSize*0.5*k)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	setColor(dc, outline, 1)
	dc.DrawStringAnchored(string(unicode.ToUpper(rune(pc))), cx, cy, 0.5, 0.35)
	return nil
}

func anchorX(a scene.Anchor) float64 {
	switch a {
	case scene.AnchorMiddle:
		return 0.5
	case scene.AnchorEnd:
		return 1
	default:
		return 0
	}
}

func setColor(dc *gg.Context, hex string, opacity float64) {
	dc.SetHexColor(withAlpha(hex, opacity))
}

// withAlpha appends opacity as the alpha byte of a #rgb or #rrggbb colour;
// other strings become black.
func withAlpha(hex string, opacity float64) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		hex = "000000"
	}
	opacity = math.Max(0, math.Min(1, opacity))
	return fmt.Sprintf("#%s%02x", hex, int(math.Round(opacity*255)))
}
