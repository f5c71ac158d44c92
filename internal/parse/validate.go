package parse

import (
	"fmt"
	"time"

	"PropScanner/internal/domain"
)

// Plausibility ranges for OCR-derived numerics. Values outside these came
// from a misread, not a real slip.
const (
	MinScore = 20.0
	MaxScore = 100.0
	MinOdds  = -1000
	MaxOdds  = 1000
	// American odds never have a magnitude below 100.
	MinOddsMagnitude = 100
	MaxLine          = 200.0
)

// ValidateBet range-checks the fields that are set; unset fields are the
// parser's concern. Returns review reasons, empty when plausible.
func ValidateBet(bet domain.RawBet) []string {
	var reasons []string

	if bet.Score < MinScore || bet.Score > MaxScore {
		reasons = append(reasons, fmt.Sprintf("score %.2f outside [%.0f,%.0f]", bet.Score, MinScore, MaxScore))
	}
	if bet.Odds != 0 && (bet.Odds < MinOdds || bet.Odds > MaxOdds ||
		(bet.Odds > -MinOddsMagnitude && bet.Odds < MinOddsMagnitude)) {
		reasons = append(reasons, fmt.Sprintf("odds %d outside [%d,-%d] and [%d,%d]",
			bet.Odds, MinOdds, MinOddsMagnitude, MinOddsMagnitude, MaxOdds))
	}
	if bet.Line != 0 && (bet.Line < 0 || bet.Line > MaxLine) {
		reasons = append(reasons, fmt.Sprintf("bet line %.1f outside (0,%.0f]", bet.Line, MaxLine))
	}
	if bet.BetType != "" && !domain.KnownCategory(bet.BetType) {
		reasons = append(reasons, fmt.Sprintf("unknown bet type %q", bet.BetType))
	}
	if !bet.GameDate.IsZero() && bet.GameDate.After(time.Now().Add(24*time.Hour)) {
		reasons = append(reasons, "game date in the future")
	}

	return reasons
}

// ValidateComplete checks a record is fully populated and plausible —
// the bar a correction must clear before the record leaves review.
func ValidateComplete(bet domain.RawBet) []string {
	var reasons []string

	if !bet.Resolved() {
		reasons = append(reasons, "player not resolved")
	}
	if bet.BetType == "" {
		reasons = append(reasons, "missing bet type")
	}
	if bet.Side == "" {
		reasons = append(reasons, "missing line side")
	}
	if bet.Line == 0 {
		reasons = append(reasons, "missing bet line")
	}
	if bet.Odds == 0 {
		reasons = append(reasons, "missing odds")
	}
	if bet.GameDate.IsZero() {
		reasons = append(reasons, "missing game date")
	}

	return append(reasons, ValidateBet(bet)...)
}
