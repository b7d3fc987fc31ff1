package base

import "fmt"

// ScorePlaceholder is shown when no evaluation is available.
const ScorePlaceholder = "--"

type Unit uint8

const (
	Centipawns Unit = iota
	Pawns
)

func (u Unit) divisor() float64 {
	if u == Centipawns {
		return 100
	}
	return 1
}

// FormatScore prints an evaluation in pawns with an explicit sign and two decimals.
func FormatScore(v *float64, unit Unit) string {
	if v == nil {
		return ScorePlaceholder
	}
	return fmt.Sprintf("%+.2f", *v/unit.divisor())
}

func FormatCentipawns(cp int) string {
	v := float64(cp)
	return FormatScore(&v, Centipawns)
}
