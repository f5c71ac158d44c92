package domain

import (
	"fmt"
	"math"
	"time"
)

// Outcome is the settled result of a bet against the official statistic.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomePush Outcome = "push"
)

// Settle compares the achieved statistic to the line under the given side.
// It is deterministic and side-effect free.
func Settle(stat, line float64, side Side) Outcome {
	switch side {
	case SideExact:
		if stat == line {
			return OutcomeWin
		}
		return OutcomeLoss
	case SideUnder:
		switch {
		case stat < line:
			return OutcomeWin
		case stat > line:
			return OutcomeLoss
		}
	default: // SideOver
		switch {
		case stat > line:
			return OutcomeWin
		case stat < line:
			return OutcomeLoss
		}
	}
	return OutcomePush
}

// ReturnDelta converts an outcome and American odds into a realized return,
// normalized so every bet is staked to win 100 units: a win nets +100, a
// push nets 0, and a loss costs the stake (|odds| for favorites, 10000/odds
// rounded for underdogs).
func ReturnDelta(outcome Outcome, odds int) float64 {
	switch outcome {
	case OutcomeWin:
		return 100
	case OutcomePush:
		return 0
	}
	if odds < 0 {
		return float64(odds)
	}
	return -math.Round(10000 / float64(odds))
}

// Score buckets are fixed 5-point ranges starting at the extraction
// threshold; everything at or above 50 collapses into one bucket.
const (
	bucketFloor = 20
	bucketWidth = 5
	bucketCap   = 50
)

// ScoreBucket maps a score to its aggregation bucket label ("20-25" ...
// "45-50", "50+"). Scores below the extraction threshold yield "".
func ScoreBucket(score float64) string {
	if score < bucketFloor {
		return ""
	}
	if score >= bucketCap {
		return fmt.Sprintf("%d+", bucketCap)
	}
	low := bucketFloor + bucketWidth*int((score-bucketFloor)/bucketWidth)
	return fmt.Sprintf("%d-%d", low, low+bucketWidth)
}

// BetResult is the resolved outcome of exactly one RawBet.
type BetResult struct {
	ID          int64
	RawBetID    string
	PlayerRefID int64
	BetType     StatCategory
	Outcome     Outcome
	Delta       float64
	Bucket      string
	Stat        float64
	Line        float64
	Side        Side
	Odds        int
	Uploaded    bool
	ResolvedAt  time.Time
}

// AggregatedGroup is one dashboard rollup cell: cumulative return and
// volume for a (bet type, score bucket) pair.
type AggregatedGroup struct {
	BetType   StatCategory
	Bucket    string
	Return    float64
	Volume    int
	UpdatedTo time.Time
}
