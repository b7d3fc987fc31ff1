// Package analysis turns search telemetry messages into board overlays.
//
// The messages are the JSON objects streamed by the search backend: a
// "snapshot" while the search runs, one "complete" when it ends, or an
// "error". Only the fields the board can show are decoded.
package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"evilboard/src/base"
	"evilboard/src/scene"
)

var ErrSearchFailed = errors.New("search failed")

const (
	TypeSnapshot = "snapshot"
	TypeComplete = "complete"
	TypeError    = "error"
)

const (
	BestArrowColor      = "#15781b"
	CandidateArrowColor = "#003088"
	bestArrowWidth      = 14.0
	candidateArrowWidth = 9.0
)

type Snapshot struct {
	Type           string             `json:"type"`
	Depth          int                `json:"depth"`
	Nodes          int64              `json:"nodes"`
	NPS            int64              `json:"nps"`
	CurrentMove    string             `json:"current_move"`
	PV             []string           `json:"pv"`
	Eval           *float64           `json:"eval"`
	EvalCP         *float64           `json:"eval_cp"`
	CandidateMoves map[string]float64 `json:"candidate_moves"`
	Heatmap        map[string]float64 `json:"heatmap"`
	Cutoffs        int64              `json:"cutoffs"`
	ElapsedMS      float64            `json:"elapsed_ms"`
	BestMove       *string            `json:"best_move"`
	Message        string             `json:"message"`
}

// Decode reads a single message.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := s.check(); err != nil {
		return nil, err
	}
	return &s, nil
}

// DecodeStream calls fn for every message of a stream of concatenated or
// newline separated messages, stopping at the first error.
func DecodeStream(r io.Reader, fn func(*Snapshot) error) error {
	dec := json.NewDecoder(r)
	for {
		var s Snapshot
		err := dec.Decode(&s)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode snapshot: %w", err)
		}
		if err := s.check(); err != nil {
			return err
		}
		if err := fn(&s); err != nil {
			return err
		}
	}
}

func (s *Snapshot) check() error {
	if s.Type == TypeError {
		return fmt.Errorf("%w: %s", ErrSearchFailed, s.Message)
	}
	return nil
}

// Score returns the evaluation in centipawns, nil when the message has none.
func (s *Snapshot) Score() *float64 {
	if s.EvalCP != nil {
		v := *s.EvalCP
		return &v
	}
	if s.Eval != nil {
		v := *s.Eval * 100
		return &v
	}
	return nil
}

// Best is the best move so far, falling back to the head of the PV.
func (s *Snapshot) Best() string {
	if s.BestMove != nil && *s.BestMove != "" {
		return *s.BestMove
	}
	if len(s.PV) > 0 {
		return s.PV[0]
	}
	return ""
}

func (s *Snapshot) Summary() string {
	best := s.Best()
	if best == "" {
		best = base.ScorePlaceholder
	}
	pv := strings.Join(s.PV, " ")
	if pv == "" {
		pv = "-"
	}
	return fmt.Sprintf("depth %d eval %s best %s nodes %d pv %s",
		s.Depth, base.FormatScore(s.Score(), base.Centipawns), best, s.Nodes, pv)
}

type Overlay struct {
	Heatmap map[string]float64
	Arrows  []scene.ArrowSpec
}

type candidate struct {
	move string
	eval float64
}

// Overlay converts the message into heat and arrows: the best move first,
// then up to maxCandidates other candidates by descending evaluation with
// fading opacity. Malformed move codes are skipped.
func (s *Snapshot) Overlay(maxCandidates int) Overlay {
	ov := Overlay{Heatmap: make(map[string]float64, len(s.Heatmap))}
	for sq, v := range s.Heatmap {
		ov.Heatmap[sq] = v
	}

	best := s.Best()
	if a, ok := base.ArrowFromMove(best, BestArrowColor, bestArrowWidth, 0.85); ok {
		ov.Arrows = append(ov.Arrows, scene.SpecFromArrow(a))
	}

	added := 0
	for _, c := range rank(s.CandidateMoves) {
		if added >= maxCandidates {
			break
		}
		if c.move == best {
			continue
		}
		opacity := 0.7 - 0.15*float64(added)
		if opacity < 0.25 {
			opacity = 0.25
		}
		a, ok := base.ArrowFromMove(c.move, CandidateArrowColor, candidateArrowWidth, opacity)
		if !ok {
			continue
		}
		ov.Arrows = append(ov.Arrows, scene.SpecFromArrow(a))
		added++
	}
	return ov
}

// rank orders candidate moves by descending evaluation, ties by move.
func rank(moves map[string]float64) []candidate {
	cands := make([]candidate, 0, len(moves))
	for m, v := range moves {
		cands = append(cands, candidate{move: m, eval: v})
	}
	slices.SortFunc(cands, func(a, b candidate) int {
		switch {
		case a.eval > b.eval:
			return -1
		case a.eval < b.eval:
			return 1
		}
		return strings.Compare(a.move, b.move)
	})
	return cands
}

const (
	heatPVPlies      = 8
	heatCandidateTop = 10
)

// BuildHeatmap weights the squares a search looks at: the target squares
// of the first plies of pv, then both squares of the best ranked candidate
// moves, earlier entries weighing more. Codes shorter than a move are
// ignored.
func BuildHeatmap(candidates map[string]float64, pv []string) map[string]float64 {
	heat := make(map[string]float64)
	for i, m := range pv {
		if i >= heatPVPlies {
			break
		}
		if len(m) < 4 {
			continue
		}
		heat[m[2:4]] += float64(max(1, 5-i))
	}
	for i, c := range rank(candidates) {
		if i >= heatCandidateTop {
			break
		}
		if len(c.move) < 4 {
			continue
		}
		heat[c.move[0:2]] += float64(max(1, 3-i))
		heat[c.move[2:4]] += float64(max(1, 4-i))
	}
	return heat
}

// Apply merges the overlay into opts; arrows already present stay first.
func (ov Overlay) Apply(opts *scene.Options) {
	if len(ov.Heatmap) > 0 {
		merged := make(map[string]float64, len(opts.Heatmap)+len(ov.Heatmap))
		for sq, v := range opts.Heatmap {
			merged[sq] = v
		}
		for sq, v := range ov.Heatmap {
			merged[sq] += v
		}
		opts.Heatmap = merged
	}
	opts.Arrows = append(opts.Arrows, ov.Arrows...)
}
