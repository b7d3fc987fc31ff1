// Package cli is the terminal host: it prints scenes as coloured text and
// drives a ViewBuilder from the keyboard.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"evilboard/src"
	"evilboard/src/base"
	"evilboard/src/engine"
)

type CLIProcessing struct {
	builder  *src.ViewBuilder
	in       *os.File
	out      io.Writer
	colorize bool
	cursor   int // display index driven by the arrow keys

	engine     engine.Engine
	params     engine.SearchParams
	candidates int
}

func NewCLI(b *src.ViewBuilder, colorize bool) *CLIProcessing {
	return &CLIProcessing{builder: b, in: os.Stdin, out: os.Stdout, colorize: colorize, cursor: 52}
}

// SetEngine enables the analyze command.
func (c *CLIProcessing) SetEngine(e engine.Engine, prm engine.SearchParams, candidates int) {
	c.engine, c.params, c.candidates = e, prm, candidates
}

const help = "Type a square to click it, a UCI move to play it, or flip/undo/redo/analyze/moves/q. Arrow keys move the cursor, Enter clicks it."

const analyzeTimeout = 30 * time.Second

// Run reads single keys in raw mode and falls back to RunLineMode when the
// input is not a terminal.
func (c *CLIProcessing) Run() error {
	fd := int(c.in.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return c.RunLineMode()
	}
	defer term.Restore(fd, oldState) //nolint:errcheck

	out := c.out
	c.out = crlfWriter{out}
	defer func() { c.out = out }()

	r := bufio.NewReader(c.in)
	var inputBuf strings.Builder
	c.hover()
	c.redraw()

	for {
		b, err := r.ReadByte()
		if err != nil {
			return err
		}

		if b == 3 { // Ctrl+C
			fmt.Fprintln(c.out, "\nInterrupted")
			return nil
		}
		if b == 0x1b {
			b1, err := r.ReadByte()
			if err != nil {
				continue
			}
			b2, err := r.ReadByte()
			if err != nil || b1 != '[' {
				continue
			}
			c.moveCursor(b2)
			c.redraw()
			continue
		}

		if b == '\r' || b == '\n' {
			line := strings.TrimSpace(inputBuf.String())
			inputBuf.Reset()
			if line == "" {
				c.click(c.builder.Scene().Cells[c.cursor].Square)
				continue
			}
			if quit := c.exec(line); quit {
				return nil
			}
			continue
		}
		if b == 0x7f && inputBuf.Len() > 0 { // backspace
			s := inputBuf.String()
			inputBuf.Reset()
			inputBuf.WriteString(s[:len(s)-1])
			fmt.Fprint(c.out, "\b \b")
			continue
		}
		if b >= 32 && b <= 126 {
			inputBuf.WriteByte(b)
			fmt.Fprintf(c.out, "%c", b)
		}
	}
}

func (c *CLIProcessing) RunLineMode() error {
	scanner := bufio.NewScanner(c.in)
	c.redraw()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quit := c.exec(line); quit {
			return nil
		}
	}
	return scanner.Err()
}

// exec runs one typed command and reports whether to quit.
func (c *CLIProcessing) exec(line string) bool {
	switch strings.ToLower(line) {
	case "q", "quit":
		fmt.Fprintln(c.out, "\nQuitting")
		return true
	case "flip":
		c.builder.Flip()
		c.hover()
	case "undo":
		c.builder.Undo()
	case "redo":
		c.builder.Redo()
	case "moves":
		fmt.Fprintf(c.out, "\nMoves: %s\n", strings.Join(c.builder.Moves(), " "))
		return false
	case "analyze", "a":
		if err := c.analyze(); err != nil {
			fmt.Fprintf(c.out, "\nAnalyze: %v\n", err)
			return false
		}
	default:
		if sq := base.ParseSquare(line); sq != base.NoSquare {
			c.click(sq)
			return false
		}
		if err := c.builder.Play(line); err != nil {
			fmt.Fprintf(c.out, "\nInvalid move: %s\n", line)
		}
	}
	c.redraw()
	return false
}

// click activates sq through the scene events; a previewed move is drawn
// once and then played.
func (c *CLIProcessing) click(sq base.Square) {
	c.builder.Scene().Events.Click(sq)
	c.redraw()
	if c.builder.Pending() != "" {
		c.builder.Commit()
		c.redraw()
	}
}

func (c *CLIProcessing) analyze() error {
	if c.engine == nil {
		return fmt.Errorf("no engine configured")
	}
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()
	snap, err := engine.Analyze(ctx, c.engine, c.builder.FEN(), c.params)
	if err != nil {
		return err
	}
	ov := snap.Overlay(c.candidates)
	c.builder.SetOverlay(&ov)
	fmt.Fprintf(c.out, "\n%s\n", snap.Summary())
	return nil
}

func (c *CLIProcessing) moveCursor(key byte) {
	row, col := c.cursor/8, c.cursor%8
	switch key {
	case 'A':
		row--
	case 'B':
		row++
	case 'C':
		col++
	case 'D':
		col--
	default:
		return
	}
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return
	}
	c.cursor = row*8 + col
	c.hover()
}

func (c *CLIProcessing) hover() {
	s := c.builder.Scene()
	s.Events.Enter(s.Cells[c.cursor].Square)
}

func (c *CLIProcessing) redraw() {
	if _, ok := c.out.(crlfWriter); ok {
		fmt.Fprint(c.out, "\033[H\033[2J")
	}
	if err := Print(c.out, c.builder.Scene(), c.colorize); err != nil {
		return
	}
	fmt.Fprintf(c.out, "\nFEN: %s\nMoves: %s\n%s\n", c.builder.FEN(), strings.Join(c.builder.Moves(), " "), help)
}

// crlfWriter restores carriage returns that raw mode stops adding.
type crlfWriter struct{ w io.Writer }

func (cw crlfWriter) Write(p []byte) (int, error) {
	if _, err := cw.w.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
