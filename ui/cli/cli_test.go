package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"evilboard/src"
	"evilboard/src/base"
	"evilboard/src/geometry"
	"evilboard/src/logx"
	"evilboard/src/scene"
)

func TestPrintPlain(t *testing.T) {
	s := scene.Compose(scene.Options{
		Position:     base.FEN_START_GAME,
		Selected:     "e2",
		LegalTargets: []string{"e3", "e4"},
		LastMove:     &scene.MoveRef{From: "g8", To: "f6"},
		Arrows:       []scene.ArrowSpec{{From: "e2", To: "e4"}},
	})
	var buf bytes.Buffer
	if err := Print(&buf, s, false); err != nil {
		t.Fatalf("Print: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Fatal("plain output must not contain escape codes")
	}
	for _, want := range []string{"[♙]", " · ", "(♞)", "arrows: e2e4", "8  ♜ "} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[1], "   a  b") {
		t.Fatalf("first line = %q, want files a..h", lines[1])
	}
}

func TestPrintFlippedOrder(t *testing.T) {
	s := scene.Compose(scene.Options{Position: base.FEN_START_GAME, Orientation: geometry.Flipped})
	var buf bytes.Buffer
	if err := Print(&buf, s, false); err != nil {
		t.Fatalf("Print: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[1], "   h  g") {
		t.Fatalf("files = %q, want h first", lines[1])
	}
	if !strings.HasPrefix(lines[2], "1 ") {
		t.Fatalf("top rank = %q, want 1", lines[2])
	}
}

func TestPrintHiddenCoordinates(t *testing.T) {
	s := scene.Compose(scene.Options{Position: base.FEN_START_GAME, HideCoordinates: true})
	var buf bytes.Buffer
	if err := Print(&buf, s, false); err != nil {
		t.Fatalf("Print: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if len(lines) != 10 {
		t.Fatalf("got %d lines, want the 8 rows only:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], " ♜ ") || !strings.HasSuffix(lines[8], " ♖ ") {
		t.Fatalf("rows should carry no rank labels:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "a  b") {
		t.Fatalf("file labels should be hidden:\n%s", buf.String())
	}
}

func TestPrintColor(t *testing.T) {
	s := scene.Compose(scene.Options{Position: base.FEN_START_GAME, Hovered: "a1"})
	var buf bytes.Buffer
	if err := Print(&buf, s, true); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatal("colour output should contain escape codes")
	}
}

func TestPrintUnknownGlyph(t *testing.T) {
	s := scene.Compose(scene.Options{Position: "8/8/8/8/8/8/8/X7"})
	var buf bytes.Buffer
	if err := Print(&buf, s, false); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if !strings.Contains(buf.String(), "1  ? ") {
		t.Fatalf("unknown glyph should print as ?:\n%s", buf.String())
	}
}

func newTestCLI(t *testing.T, input string) (*CLIProcessing, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input")
	if err := os.WriteFile(path, []byte(input), 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open input: %v", err)
	}
	t.Cleanup(func() { f.Close() })

	vb := src.NewViewBuilder(logx.Nop())
	vb.CreateClassic()
	var out bytes.Buffer
	return &CLIProcessing{builder: vb, in: f, out: &out}, &out
}

func TestLineMode(t *testing.T) {
	c, out := newTestCLI(t, "e2\ne4\ne7e5\nbogus\nanalyze\nflip\nundo\nq\nd2d4\n")
	if err := c.RunLineMode(); err != nil {
		t.Fatalf("RunLineMode: %v", err)
	}
	if got := c.builder.Moves(); len(got) != 1 || got[0] != "e2e4" {
		t.Fatalf("moves = %v, want [e2e4]", got)
	}
	if c.builder.Orientation() != geometry.Flipped {
		t.Fatal("flip not applied")
	}
	if !strings.Contains(out.String(), "Invalid move: bogus") {
		t.Fatal("bad input should be reported")
	}
	if !strings.Contains(out.String(), "Analyze: no engine configured") {
		t.Fatal("analyze without an engine should be reported")
	}
	if !strings.Contains(out.String(), "Quitting") {
		t.Fatal("q should quit before the last line")
	}
}

func TestCursor(t *testing.T) {
	c, _ := newTestCLI(t, "")
	c.cursor = 0
	c.moveCursor('A')
	if c.cursor != 0 {
		t.Fatal("cursor must stay on the board")
	}
	c.moveCursor('B')
	c.moveCursor('C')
	if c.cursor != 9 {
		t.Fatalf("cursor = %d, want 9", c.cursor)
	}
	if c.builder.Options().Hovered != "b7" {
		t.Fatalf("hovered = %q, want b7", c.builder.Options().Hovered)
	}
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := crlfWriter{&buf}.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if buf.String() != "a\r\nb\r\n" {
		t.Fatalf("got %q", buf.String())
	}
}
