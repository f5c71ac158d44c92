package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

// ResolveDeps wires the adapters used by outcome resolution.
type ResolveDeps struct {
	Bets    ports.BetRepository
	Cache   ports.StatCache
	Stats   ports.StatsProvider
	Results ports.ResultStore
	Audit   ports.AuditStore
	Logger  *slog.Logger
	Now     func() time.Time
}

// Resolve settles ready records against official stat lines.
type Resolve struct {
	bets    ports.BetRepository
	cache   ports.StatCache
	stats   ports.StatsProvider
	results ports.ResultStore
	audit   ports.AuditStore
	log     *slog.Logger
	now     func() time.Time
}

// ResolveSummary reports what one resolution pass did.
type ResolveSummary struct {
	Examined int
	Settled  int
	Unplayed int
	Deferred int
}

// NewResolve constructs the resolution workflow.
func NewResolve(deps ResolveDeps) *Resolve {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Resolve{
		bets:    deps.Bets,
		cache:   deps.Cache,
		stats:   deps.Stats,
		results: deps.Results,
		audit:   deps.Audit,
		log:     log,
		now:     now,
	}
}

// Run settles every ready record whose game date has passed. A confirmed
// no-game is cached and leaves the record ready, so it resurfaces if stats
// appear later; transient provider failures defer the record untouched.
func (r *Resolve) Run(ctx context.Context) (ResolveSummary, error) {
	r.logAudit(ctx, "before")

	ready, err := r.bets.ListByStatus(ctx, domain.StatusReady)
	if err != nil {
		return ResolveSummary{}, fmt.Errorf("list ready: %w", err)
	}

	today := r.now().UTC().Truncate(24 * time.Hour)

	var summary ResolveSummary
	for _, bet := range ready {
		if !bet.GameDate.Before(today) {
			continue
		}
		summary.Examined++

		line, err := r.statLine(ctx, bet)
		if errors.Is(err, ports.ErrNoGame) {
			summary.Unplayed++
			continue
		}
		if err != nil {
			summary.Deferred++
			r.log.Warn("stat lookup deferred", "id", bet.ID, "player", bet.PlayerID,
				"date", bet.GameDate.Format(domain.DateLayout), "err", err)
			continue
		}

		if err := r.settle(ctx, bet, line); err != nil {
			return summary, err
		}
		summary.Settled++
	}

	r.logAudit(ctx, "after")
	r.log.Info("resolution pass finished", "examined", summary.Examined,
		"settled", summary.Settled, "unplayed", summary.Unplayed, "deferred", summary.Deferred)
	return summary, nil
}

// statLine returns the cached stat line for the record's (player, date),
// consulting the provider on a cache miss and caching whichever answer
// comes back.
func (r *Resolve) statLine(ctx context.Context, bet domain.RawBet) (domain.StatLine, error) {
	cached, err := r.cache.CachedStat(ctx, bet.PlayerID, bet.GameDate)
	if err != nil {
		return domain.StatLine{}, err
	}
	if cached != nil {
		return *cached, nil
	}

	unplayed, err := r.cache.MarkedUnplayed(ctx, bet.PlayerID, bet.GameDate)
	if err != nil {
		return domain.StatLine{}, err
	}
	if unplayed {
		return domain.StatLine{}, ports.ErrNoGame
	}

	line, err := r.stats.GameStat(ctx, bet.PlayerID, bet.GameDate)
	if errors.Is(err, ports.ErrNoGame) {
		marker := domain.UnplayedBet{PlayerRefID: bet.PlayerID, Date: bet.GameDate, RawBetID: bet.ID}
		if cacheErr := r.cache.PutUnplayed(ctx, marker); cacheErr != nil {
			r.log.Warn("cache unplayed failed", "id", bet.ID, "err", cacheErr)
		}
		return domain.StatLine{}, ports.ErrNoGame
	}
	if err != nil {
		return domain.StatLine{}, err
	}

	stat := domain.GameStat{PlayerRefID: bet.PlayerID, Date: bet.GameDate, Line: line}
	if err := r.cache.PutStat(ctx, stat); err != nil {
		r.log.Warn("cache stat failed", "id", bet.ID, "err", err)
	}
	return line, nil
}

// settle computes and persists the outcome, then moves the record to
// resolved. The result insert is conflict-safe, so a crash between the two
// steps is repaired by the next pass.
func (r *Resolve) settle(ctx context.Context, bet domain.RawBet, line domain.StatLine) error {
	value, ok := line.Value(bet.BetType)
	if !ok {
		return fmt.Errorf("record %s: unknown bet type %q", bet.ID, bet.BetType)
	}

	outcome := domain.Settle(value, bet.Line, bet.Side)
	result := domain.BetResult{
		RawBetID:    bet.ID,
		PlayerRefID: bet.PlayerID,
		BetType:     bet.BetType,
		Outcome:     outcome,
		Delta:       domain.ReturnDelta(outcome, bet.Odds),
		Bucket:      domain.ScoreBucket(bet.Score),
		Stat:        value,
		Line:        bet.Line,
		Side:        bet.Side,
		Odds:        bet.Odds,
	}

	if err := r.results.InsertResult(ctx, result); err != nil {
		return fmt.Errorf("insert result %s: %w", bet.ID, err)
	}

	moved, err := r.bets.Transition(ctx, bet.ID, domain.StatusReady, domain.StatusResolved)
	if err != nil {
		return fmt.Errorf("mark resolved %s: %w", bet.ID, err)
	}
	if !moved {
		r.log.Warn("record left ready state during settlement", "id", bet.ID)
	}

	r.log.Info("record settled", "id", bet.ID, "outcome", outcome,
		"stat", value, "line", bet.Line, "delta", result.Delta)
	return nil
}

func (r *Resolve) logAudit(ctx context.Context, phase string) {
	if r.audit == nil {
		return
	}
	issues, err := r.audit.IntegrityIssues(ctx)
	if err != nil {
		r.log.Warn("integrity audit failed", "phase", phase, "err", err)
		return
	}
	for _, issue := range issues {
		r.log.Warn("integrity issue", "phase", phase, "issue", issue)
	}
}
