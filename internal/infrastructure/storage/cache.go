package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

var _ ports.StatCache = (*Repository)(nil)

// CachedStat returns the cached stat line for (player, date), or nil when
// the pair has not been looked up successfully before.
func (r *Repository) CachedStat(ctx context.Context, playerRef int64, date time.Time) (*domain.StatLine, error) {
	query := r.builder.
		Select("points", "rebounds", "assists", "blocks", "steals", "turnovers", "three_pointers").
		From("game_stats").
		Where(sq.Eq{"player_ref": playerRef, "game_date": date.Format(domain.DateLayout)})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var line domain.StatLine
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(
		&line.Points, &line.Rebounds, &line.Assists,
		&line.Blocks, &line.Steals, &line.Turnovers, &line.Threes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cached stat %d/%s: %w", playerRef, date.Format(domain.DateLayout), err)
	}
	return &line, nil
}

// MarkedUnplayed reports whether (player, date) is cached as having no game.
func (r *Repository) MarkedUnplayed(ctx context.Context, playerRef int64, date time.Time) (bool, error) {
	query := r.builder.
		Select("1").
		From("unplayed_bets").
		Where(sq.Eq{"player_ref": playerRef, "game_date": date.Format(domain.DateLayout)})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check unplayed %d: %w", playerRef, err)
	}
	return true, nil
}

// PutStat caches a stat line and, in the same transaction, evicts any
// unplayed marker for the pair — a (player, date) lives in exactly one of
// the two tables.
func (r *Repository) PutStat(ctx context.Context, stat domain.GameStat) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	date := stat.Date.Format(domain.DateLayout)

	del, args, err := r.builder.
		Delete("unplayed_bets").
		Where(sq.Eq{"player_ref": stat.PlayerRefID, "game_date": date}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("evict unplayed marker: %w", err)
	}

	insert := `INSERT INTO game_stats (player_ref, game_date, points, rebounds, assists, blocks, steals, turnovers, three_pointers)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
               ON CONFLICT (player_ref, game_date) DO NOTHING`
	_, err = tx.ExecContext(ctx, insert, stat.PlayerRefID, date,
		stat.Line.Points, stat.Line.Rebounds, stat.Line.Assists,
		stat.Line.Blocks, stat.Line.Steals, stat.Line.Turnovers, stat.Line.Threes)
	if err != nil {
		return fmt.Errorf("cache stat %d/%s: %w", stat.PlayerRefID, date, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stat cache: %w", err)
	}
	return nil
}

// PutUnplayed caches a confirmed no-game pair. Refused when a stat line is
// already cached for it.
func (r *Repository) PutUnplayed(ctx context.Context, unplayed domain.UnplayedBet) error {
	date := unplayed.Date.Format(domain.DateLayout)

	cached, err := r.CachedStat(ctx, unplayed.PlayerRefID, unplayed.Date)
	if err != nil {
		return err
	}
	if cached != nil {
		return fmt.Errorf("stat already cached for %d/%s", unplayed.PlayerRefID, date)
	}

	insert := `INSERT INTO unplayed_bets (player_ref, game_date, raw_bet_id)
               VALUES ($1, $2, $3)
               ON CONFLICT (player_ref, game_date) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, unplayed.PlayerRefID, date, unplayed.RawBetID); err != nil {
		return fmt.Errorf("cache unplayed %d/%s: %w", unplayed.PlayerRefID, date, err)
	}
	return nil
}
