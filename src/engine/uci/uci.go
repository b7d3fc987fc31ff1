// Package uci runs an external UCI engine and reports its search as
// analysis snapshots.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"evilboard/src/analysis"
	"evilboard/src/engine"
	"evilboard/src/logic/rules"
	"evilboard/src/logx"
)

type UCIExecutor struct {
	// init
	path string
	args []string
	name string

	// process
	cmd *exec.Cmd
	in  io.WriteCloser
	out io.ReadCloser

	// read stdout
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	feed   chan string

	// subscribers
	submu sync.Mutex
	subs  map[int]chan<- *analysis.Snapshot
	subid int

	// runtime
	mu          sync.RWMutex
	running     bool
	lines       map[int]engine.Line // by multipv
	best        string
	firstToMove bool
	started     time.Time
	bestMoveCh  chan struct{}
	logx        logx.Logger
}

// to open a process, call Init()
func NewUCIExec(logger logx.Logger, enginePath string, engineArgs ...string) *UCIExecutor {
	if logger == nil {
		logger = logx.Nop()
	}
	return &UCIExecutor{
		path: enginePath, args: engineArgs, logx: logger,
		subs:        make(map[int]chan<- *analysis.Snapshot),
		lines:       make(map[int]engine.Line),
		firstToMove: true,
		bestMoveCh:  make(chan struct{}, 1), // buffered: send won't block if nobody waits yet
	}
}

// Init starts the process and runs the uci/isready handshake.
func (e *UCIExecutor) Init() error {
	if e.path == "" {
		return errors.New("engine path is empty")
	}

	cmd := exec.Command(e.path, e.args...)
	in, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("error connect to stdin of engine %s: %w", e.path, err)
	}
	out, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("error connect to stdout of engine %s: %w", e.path, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("error open %s engine: %w", e.path, err)
	}

	e.cmd, e.in, e.out = cmd, in, out
	e.feed = make(chan string, 256)
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.wg.Add(1)
	go e.stdoutLoop(e.ctx)

	if err := e.Exec("uci"); err != nil {
		e.Close()
		return err
	}
	if err := e.waitCompare("uciok", engine.UCIHandshakeTimeout); err != nil {
		e.Close()
		return fmt.Errorf("error read uciok: %w", err)
	}
	if err := e.checkReady(); err != nil {
		e.Close()
		return err
	}
	e.logx.Infof("open engine: %s (pid %d)", e.name, cmd.Process.Pid)
	return nil
}

// Name is the engine's "id name", empty before Init.
func (e *UCIExecutor) Name() string { return e.name }

func (e *UCIExecutor) Exec(cmd string) error {
	if e.in == nil {
		return errors.New("stdin not available")
	}
	_, err := io.WriteString(e.in, cmd+"\n")
	return err
}

func (e *UCIExecutor) SetPositionFEN(fen string) error {
	first, err := rules.FirstToMove(fen)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.firstToMove = first
	e.lines = make(map[int]engine.Line)
	e.best = ""
	e.mu.Unlock()

	e.logx.Debugf("init position FEN: %s", fen)
	if err := e.Exec("ucinewgame"); err != nil {
		return err
	}
	if err := e.Exec("position fen " + fen); err != nil {
		return err
	}
	return e.checkReady()
}

func (e *UCIExecutor) StartAnalysis(prm engine.SearchParams) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cmd == nil {
		return errors.New("no running uci-process")
	}
	if e.running {
		return errors.New("already running")
	}

	multiPV := prm.MultiPV
	if multiPV < 1 {
		multiPV = 1
	}
	if err := e.Exec(fmt.Sprintf("setoption name MultiPV value %d", multiPV)); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString("go")
	if prm.Infinite {
		b.WriteString(" infinite")
	} else {
		if prm.MaxDepth > 0 {
			fmt.Fprintf(&b, " depth %d", prm.MaxDepth)
		}
		if prm.MaxTimeMs > 0 {
			fmt.Fprintf(&b, " movetime %d", prm.MaxTimeMs)
		}
	}

	select { // stale signal from an earlier search
	case <-e.bestMoveCh:
	default:
	}
	e.lines = make(map[int]engine.Line)
	e.best = ""
	e.running = true
	e.started = time.Now()

	e.logx.Infof("start analyze: %s", b.String())
	if err := e.Exec(b.String()); err != nil {
		e.running = false
		return err
	}
	return nil
}

func (e *UCIExecutor) StopAnalysis() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.cmd == nil {
		return errors.New("no running uci-process")
	}
	if !e.running {
		return nil
	}
	e.logx.Infof("stop analyze")
	return e.Exec("stop")
}

// WaitDone blocks until the engine reports its best move. When ctx ends
// first the search is stopped and the final bestmove still awaited.
func (e *UCIExecutor) WaitDone(ctx context.Context) error {
	e.mu.RLock()
	running := e.running
	e.mu.RUnlock()
	if !running {
		return nil
	}

	select {
	case <-e.bestMoveCh:
		return nil
	case <-e.ctx.Done():
		return errors.New("engine stopped")
	case <-ctx.Done():
	}

	if err := e.StopAnalysis(); err != nil {
		return err
	}
	timer := time.NewTimer(engine.StopAnalyzeTimeout)
	defer timer.Stop()
	select {
	case <-e.bestMoveCh:
		return nil
	case <-timer.C:
		return errors.New("timeout waiting for bestmove")
	case <-e.ctx.Done():
		return errors.New("engine stopped")
	}
}

// Snapshot is the search state so far. Candidate evaluations are in pawns
// from the side to move's view, so higher is better for the mover; the
// headline evaluation is from the first side's view.
func (e *UCIExecutor) Snapshot() *analysis.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot()
}

func (e *UCIExecutor) snapshot() *analysis.Snapshot {
	s := &analysis.Snapshot{Type: analysis.TypeSnapshot}
	if !e.running && e.best != "" {
		s.Type = analysis.TypeComplete
	}
	if top, ok := e.lines[1]; ok {
		s.Depth, s.Nodes, s.NPS = top.Depth, top.Nodes, top.NPS
		s.PV = append([]string{}, top.PV...)
		s.CurrentMove = top.PV[0]
		cp := float64(top.Centipawns())
		if !e.firstToMove {
			cp = -cp
		}
		s.EvalCP = &cp
	}
	if len(e.lines) > 0 {
		s.CandidateMoves = make(map[string]float64, len(e.lines))
		for _, l := range e.lines {
			s.CandidateMoves[l.PV[0]] = float64(l.Centipawns()) / 100
		}
	}
	if e.best != "" {
		best := e.best
		s.BestMove = &best
	}
	if len(s.PV) > 0 || len(s.CandidateMoves) > 0 {
		s.Heatmap = analysis.BuildHeatmap(s.CandidateMoves, s.PV)
	}
	if !e.started.IsZero() {
		s.ElapsedMS = float64(time.Since(e.started).Milliseconds())
	}
	return s
}

func (e *UCIExecutor) Subscribe(ch chan<- *analysis.Snapshot) (unsubscribe func()) {
	e.submu.Lock()
	defer e.submu.Unlock()

	id := e.subid
	e.subs[id] = ch
	e.subid++

	return func() {
		e.submu.Lock()
		defer e.submu.Unlock()
		delete(e.subs, id)
	}
}

// Close terminates the process, killing it if it ignores quit.
func (e *UCIExecutor) Close() {
	if e.cmd == nil {
		return
	}
	_ = e.Exec("quit")
	_ = e.in.Close()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		if e.cmd.Process != nil {
			_ = e.cmd.Process.Kill()
		}
		<-done
	}
	e.cancel()
	_ = e.cmd.Wait()
	e.cmd = nil
	e.logx.Infof("uci-process terminated")
}

func (e *UCIExecutor) checkReady() error {
	if err := e.Exec("isready"); err != nil {
		return err
	}
	if err := e.waitCompare("readyok", engine.UCIHandshakeTimeout); err != nil {
		return fmt.Errorf("error read readyok: %w", err)
	}
	return nil
}

func (e *UCIExecutor) waitCompare(str string, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case line := <-e.feed:
			if name, ok := strings.CutPrefix(line, "id name "); ok {
				e.name = name
			}
			if strings.HasPrefix(line, str) {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("timeout waiting for %s", str)
		case <-e.ctx.Done():
			return errors.New("stopped")
		}
	}
}

func (e *UCIExecutor) stdoutLoop(ctx context.Context) {
	defer e.wg.Done()
	scr := bufio.NewScanner(e.out)
	for scr.Scan() {
		line := strings.TrimSpace(scr.Text())
		e.logx.Debugf("ENGINE: %s", line)

		switch {
		case strings.HasPrefix(line, "info "):
			e.saveInfo(line)
		case strings.HasPrefix(line, "bestmove "):
			e.saveBest(line)
		default:
			select {
			case e.feed <- line:
			default:
				e.logx.Debugf("drop engine line (buffer full)")
			}
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (e *UCIExecutor) saveInfo(info string) {
	l, ok := engine.ParseInfo(info)
	if !ok {
		return
	}
	e.mu.Lock()
	e.lines[l.MultiPV] = l
	snap := e.snapshot()
	e.mu.Unlock()
	e.publish(snap)
}

func (e *UCIExecutor) saveBest(best string) {
	e.logx.Debugf("save best move: %s", best)
	f := strings.Fields(best)
	if len(f) < 2 {
		return
	}

	e.mu.Lock()
	e.running = false
	if f[1] != "(none)" && f[1] != "0000" {
		e.best = f[1]
	}
	snap := e.snapshot()
	snap.Type = analysis.TypeComplete
	e.mu.Unlock()

	e.publish(snap)
	select { // signal to WaitDone()
	case e.bestMoveCh <- struct{}{}:
	default:
	}
}

func (e *UCIExecutor) publish(s *analysis.Snapshot) {
	e.submu.Lock()
	defer e.submu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- s:
		default:
		}
	}
}
