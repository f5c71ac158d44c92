package domain

import "time"

// DateLayout is the canonical wire/storage format for game dates.
const DateLayout = "2006-01-02"

// Status is the closed set of bet-record lifecycle states.
type Status string

const (
	// StatusNeedsReview marks a record quarantined for human correction.
	StatusNeedsReview Status = "needs_review"
	// StatusReady marks a review-clean record awaiting outcome resolution.
	StatusReady Status = "ready"
	// StatusVoided marks a record permanently excluded from processing.
	StatusVoided Status = "voided"
	// StatusResolved marks a record whose outcome has been computed.
	StatusResolved Status = "resolved"
)

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	return s == StatusVoided || s == StatusResolved
}

// CanTransition reports whether s -> to is an allowed lifecycle move.
// Voided and resolved are terminal; an unplayed game keeps the record
// ready so it resurfaces on the next resolution pass.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusNeedsReview:
		return to == StatusReady || to == StatusVoided
	case StatusReady:
		return to == StatusResolved
	default:
		return false
	}
}

// Side is the comparison rule a line is wagered against.
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
	// SideExact wins only when the statistic equals the line. Never produced
	// by extraction; reachable through review corrections.
	SideExact Side = "exact"
)

// RawBet is one candidate bet extracted from a slip image.
type RawBet struct {
	ID          string
	ImageSource string
	RawSpan     string
	RawPlayer   string
	PlayerID    int64 // 0 until name resolution succeeds
	BetType     StatCategory
	Side        Side
	Line        float64
	Odds        int
	Score       float64
	GameDate    time.Time
	Status      Status
	Reasons     []string
	CreatedAt   time.Time
}

// Resolved reports whether the player identity has been established.
func (b RawBet) Resolved() bool {
	return b.PlayerID != 0
}

// Correction carries reviewer input for a single flagged record.
// Nil field pointers mean "leave as is"; Delete voids the record.
type Correction struct {
	RecordID string
	Delete   bool
	Player   *string
	BetType  *StatCategory
	Side     *Side
	Line     *float64
	Odds     *int
	Score    *float64
	GameDate *time.Time
}

// ReviewItem bundles a flagged record with the context a human needs.
type ReviewItem struct {
	Bet     RawBet
	Player  string // resolved canonical name, empty when unresolved
	Reasons []string
}
