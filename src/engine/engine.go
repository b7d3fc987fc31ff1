// Package engine describes an external search backend and the UCI info
// lines it reports while searching.
package engine

import (
	"context"
	"strconv"
	"strings"
	"time"

	"evilboard/src/analysis"
)

// Line is one "info" report for a principal variation.
type Line struct {
	MultiPV int // 1 is the best line
	Depth   int
	TimeMs  int64
	Nodes   int64
	NPS     int64
	ScoreCP int // side to move's view
	MateIn  int // plies, signed; 0 if none
	PV      []string
}

// Centipawns folds a mate score into a large centipawn value.
func (l Line) Centipawns() int {
	switch {
	case l.MateIn > 0:
		return MateScore - l.MateIn
	case l.MateIn < 0:
		return -MateScore - l.MateIn
	}
	return l.ScoreCP
}

const MateScore = 100000

type SearchParams struct {
	MaxDepth  int   // 0 = unlimited (but bounded by MaxTimeMs)
	MaxTimeMs int64 // 0 = no time limit
	Infinite  bool  // search until StopAnalysis
	MultiPV   int   // lines reported, 0 or 1 = best only
}

type LevelAnalyze int

const (
	LevelOne LevelAnalyze = iota + 1
	LevelTwo
	LevelThree
	LevelFour
	LevelFive
	LevelSix
	LevelSeven
	LevelEight
	LevelNine
	LevelTen
)

const (
	UCIHandshakeTimeout = 2 * time.Second // uci / isready
	StopAnalyzeTimeout  = 5 * time.Second // bestmove after stop
)

type Engine interface {
	Init() error
	SetPositionFEN(fen string) error
	StartAnalysis(params SearchParams) error
	StopAnalysis() error
	WaitDone(ctx context.Context) error
	Snapshot() *analysis.Snapshot
	Subscribe(ch chan<- *analysis.Snapshot) (unsubscribe func())
	Close()
}

var levels = map[LevelAnalyze]SearchParams{
	LevelOne:   {MaxDepth: 1, MaxTimeMs: 500},
	LevelTwo:   {MaxDepth: 2, MaxTimeMs: 800},
	LevelThree: {MaxDepth: 3, MaxTimeMs: 1000},
	LevelFour:  {MaxDepth: 5, MaxTimeMs: 1500},
	LevelFive:  {MaxDepth: 7, MaxTimeMs: 2500},
	LevelSix:   {MaxDepth: 9, MaxTimeMs: 4000},
	LevelSeven: {MaxDepth: 11, MaxTimeMs: 6000},
	LevelEight: {MaxDepth: 13, MaxTimeMs: 8000},
	LevelNine:  {MaxDepth: 16, MaxTimeMs: 10000},
	LevelTen:   {MaxDepth: 18, MaxTimeMs: 15000},
}

// LevelToParams maps a 1..10 strength to limits; anything else searches
// until stopped.
func LevelToParams(lvl LevelAnalyze, multiPV int) SearchParams {
	p, ok := levels[lvl]
	if !ok {
		p = SearchParams{Infinite: true}
	}
	p.MultiPV = multiPV
	return p
}

// ParseInfo reads an "info" line. Lines without a pv (currmove, string,
// hashfull reports) are not search results and report false.
func ParseInfo(info string) (Line, bool) {
	l := Line{MultiPV: 1}
	fld := strings.Fields(info)
	if len(fld) == 0 || fld[0] != "info" {
		return l, false
	}
	n := len(fld)
	for i := 1; i < n; i++ {
		switch fld[i] {
		case "depth":
			if i+1 < n {
				l.Depth, _ = strconv.Atoi(fld[i+1])
				i++
			}
		case "multipv":
			if i+1 < n {
				l.MultiPV, _ = strconv.Atoi(fld[i+1])
				i++
			}
		case "nodes":
			if i+1 < n {
				l.Nodes, _ = strconv.ParseInt(fld[i+1], 10, 64)
				i++
			}
		case "nps":
			if i+1 < n {
				l.NPS, _ = strconv.ParseInt(fld[i+1], 10, 64)
				i++
			}
		case "time":
			if i+1 < n {
				l.TimeMs, _ = strconv.ParseInt(fld[i+1], 10, 64)
				i++
			}
		case "score":
			if i+2 < n {
				v, err := strconv.Atoi(fld[i+2])
				if err == nil {
					switch fld[i+1] {
					case "cp":
						l.ScoreCP, l.MateIn = v, 0
					case "mate":
						l.MateIn = v
					}
				}
				i += 2
			}
		case "pv":
			l.PV = append([]string{}, fld[i+1:]...)
			i = n // pv is always last
		case "string":
			return l, false
		}
	}
	return l, len(l.PV) > 0 && l.MultiPV > 0
}

// Analyze searches fen once and returns the final snapshot. An infinite
// search runs until ctx ends.
func Analyze(ctx context.Context, e Engine, fen string, prm SearchParams) (*analysis.Snapshot, error) {
	if err := e.SetPositionFEN(fen); err != nil {
		return nil, err
	}
	if err := e.StartAnalysis(prm); err != nil {
		return nil, err
	}
	if err := e.WaitDone(ctx); err != nil {
		return nil, err
	}
	return e.Snapshot(), nil
}
