package ports

import (
	"context"
	"errors"
	"time"

	"PropScanner/internal/domain"
)

// ErrNoGame is returned by StatsProvider when the player verifiably had no
// game on the requested date (inactive, postponed, DNP). Any other error is
// treated as transient and leaves the record eligible for retry.
var ErrNoGame = errors.New("no game for player on date")

// SlipLine is one OCR output line with its recognition confidence.
type SlipLine struct {
	Text       string
	Confidence float64
}

// SlipText is the OCR engine's output for one image. Lines preserve the
// engine's ordering; Text is the joined form the extractor consumes.
type SlipText struct {
	Text  string
	Lines []SlipLine
}

// SlipReader runs optical character recognition on a slip image.
type SlipReader interface {
	ReadSlip(ctx context.Context, imagePath string) (SlipText, error)
}

// RosterProvider fetches the current canonical roster.
type RosterProvider interface {
	FetchRoster(ctx context.Context) ([]domain.Player, error)
}

// StatsProvider looks up a player's official stat line for one game date.
// Returns ErrNoGame when the absence of a game is confirmed.
type StatsProvider interface {
	GameStat(ctx context.Context, playerRef int64, date time.Time) (domain.StatLine, error)
}

// ReviewMedium exports flagged records for human correction and imports
// the corrected values back.
type ReviewMedium interface {
	ExportFlagged(ctx context.Context, items []domain.ReviewItem) (string, error)
	ImportCorrections(ctx context.Context, path string) ([]domain.Correction, error)
}

// DashboardTarget receives aggregated rollups. Pushing must succeed before
// any consumed result is marked uploaded.
type DashboardTarget interface {
	PushRollups(ctx context.Context, groups []domain.AggregatedGroup) error
}

// BetRepository is the durable record store for raw bets. Status
// transitions are conditional on the current status so re-running a stage
// can never regress a terminal record.
type BetRepository interface {
	// HasSettledImage reports whether the image already has records that
	// left review (ready, resolved, or voided); such images are skipped.
	HasSettledImage(ctx context.Context, imageSource string) (bool, error)
	// ReplaceImage drops any still-flagged records for the image and
	// inserts the freshly extracted set in one transaction.
	ReplaceImage(ctx context.Context, imageSource string, bets []domain.RawBet) error
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.RawBet, error)
	Get(ctx context.Context, id string) (domain.RawBet, error)
	// Transition moves a record from one status to another; it is a no-op
	// returning false when the record is no longer in the from status.
	Transition(ctx context.Context, id string, from, to domain.Status) (bool, error)
	// UpdateCorrected overwrites the corrected fields and moves the record
	// out of review in one statement, guarded on status = needs_review.
	UpdateCorrected(ctx context.Context, bet domain.RawBet) (bool, error)
}

// StatCache memoizes provider lookups per (player, date). A pair lives in
// at most one of the two tables.
type StatCache interface {
	CachedStat(ctx context.Context, playerRef int64, date time.Time) (*domain.StatLine, error)
	MarkedUnplayed(ctx context.Context, playerRef int64, date time.Time) (bool, error)
	PutStat(ctx context.Context, stat domain.GameStat) error
	PutUnplayed(ctx context.Context, unplayed domain.UnplayedBet) error
}

// ResultStore persists settled outcomes and the aggregation rollups.
type ResultStore interface {
	InsertResult(ctx context.Context, result domain.BetResult) error
	UnuploadedResults(ctx context.Context) ([]domain.BetResult, error)
	// ConsumeBatch folds the group deltas into the rollup table and marks
	// the source results consumed atomically, so a retried batch is either
	// folded exactly once or not at all.
	ConsumeBatch(ctx context.Context, ids []int64, groups []domain.AggregatedGroup) error
}

// PlayerStore maintains roster reference data and the alias override table.
type PlayerStore interface {
	SyncRoster(ctx context.Context, roster []domain.Player) (added, deactivated int, err error)
	ActivePlayers(ctx context.Context) ([]domain.Player, error)
	Aliases(ctx context.Context) ([]domain.PlayerAlias, error)
	AddAlias(ctx context.Context, alias domain.PlayerAlias) error
}

// AuditStore runs read-only integrity checks over the store; findings are
// logged, never fatal.
type AuditStore interface {
	IntegrityIssues(ctx context.Context) ([]string, error)
}
