package domain

import "time"

// StatCategory names a statistic a prop bet can be wagered on, including
// the combo categories derived from base ones.
type StatCategory string

const (
	CatPoints    StatCategory = "points"
	CatRebounds  StatCategory = "rebounds"
	CatAssists   StatCategory = "assists"
	CatBlocks    StatCategory = "blocks"
	CatSteals    StatCategory = "steals"
	CatTurnovers StatCategory = "turnovers"
	CatThrees    StatCategory = "three_pointers"
	CatPtsRebAst StatCategory = "pts_rebs_asts"
	CatPtsReb    StatCategory = "pts_rebs"
	CatPtsAst    StatCategory = "pts_asts"
	CatRebAst    StatCategory = "rebs_asts"
)

// Categories lists every known category; used by validation.
var Categories = []StatCategory{
	CatPoints, CatRebounds, CatAssists, CatBlocks, CatSteals,
	CatTurnovers, CatThrees, CatPtsRebAst, CatPtsReb, CatPtsAst, CatRebAst,
}

// KnownCategory reports whether c is a category the resolver can settle.
func KnownCategory(c StatCategory) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// StatLine is one player's official box-score line for a single game.
type StatLine struct {
	Points    float64
	Rebounds  float64
	Assists   float64
	Blocks    float64
	Steals    float64
	Turnovers float64
	Threes    float64
}

// Value returns the statistic for a category, deriving combo values from
// the base fields.
func (l StatLine) Value(c StatCategory) (float64, bool) {
	switch c {
	case CatPoints:
		return l.Points, true
	case CatRebounds:
		return l.Rebounds, true
	case CatAssists:
		return l.Assists, true
	case CatBlocks:
		return l.Blocks, true
	case CatSteals:
		return l.Steals, true
	case CatTurnovers:
		return l.Turnovers, true
	case CatThrees:
		return l.Threes, true
	case CatPtsRebAst:
		return l.Points + l.Rebounds + l.Assists, true
	case CatPtsReb:
		return l.Points + l.Rebounds, true
	case CatPtsAst:
		return l.Points + l.Assists, true
	case CatRebAst:
		return l.Rebounds + l.Assists, true
	default:
		return 0, false
	}
}

// GameStat is a cached official stat line keyed by (player, game date).
type GameStat struct {
	PlayerRefID int64
	Date        time.Time
	Line        StatLine
	CachedAt    time.Time
}

// UnplayedBet caches a (player, date) pair confirmed to have no game, so
// resolution passes stop asking the provider for it. Mutually exclusive
// with GameStat for the same pair.
type UnplayedBet struct {
	PlayerRefID int64
	Date        time.Time
	RawBetID    string
	AddedAt     time.Time
}
