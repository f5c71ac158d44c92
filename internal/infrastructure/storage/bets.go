package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

var _ ports.BetRepository = (*Repository)(nil)

const betColumns = "id, image_source, raw_span, raw_player, player_ref, bet_type, side, line_value, odds, score, game_date, status, reasons, created_at"

// HasSettledImage reports whether the image already produced records that
// left review; re-scanning such an image is a no-op.
func (r *Repository) HasSettledImage(ctx context.Context, imageSource string) (bool, error) {
	query := r.builder.
		Select("1").
		From("raw_bets").
		Where(sq.Eq{"image_source": imageSource}).
		Where(sq.NotEq{"status": domain.StatusNeedsReview}).
		Limit(1)

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
		return false, fmt.Errorf("check image %s: %w", imageSource, err)
	}
	return true, nil
}

// ReplaceImage deletes still-flagged records of the image and inserts the
// fresh extraction in one transaction. Settled records are never touched.
func (r *Repository) ReplaceImage(ctx context.Context, imageSource string, bets []domain.RawBet) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	del, args, err := r.builder.
		Delete("raw_bets").
		Where(sq.Eq{"image_source": imageSource, "status": domain.StatusNeedsReview}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return fmt.Errorf("clear flagged rows for %s: %w", imageSource, err)
	}

	for _, bet := range bets {
		insert := r.builder.
			Insert("raw_bets").
			Columns("id", "image_source", "raw_span", "raw_player", "player_ref",
				"bet_type", "side", "line_value", "odds", "score", "game_date",
				"status", "reasons").
			Values(bet.ID, bet.ImageSource, bet.RawSpan, bet.RawPlayer,
				nullInt(bet.PlayerID), nullStr(string(bet.BetType)), nullStr(string(bet.Side)),
				nullFloat(bet.Line), nullIntVal(bet.Odds), bet.Score, nullDate(bet),
				bet.Status, pq.Array(bet.Reasons))

		sqlStr, insArgs, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlStr, insArgs...); err != nil {
			return fmt.Errorf("insert bet %s: %w", bet.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit image %s: %w", imageSource, err)
	}
	return nil
}

// ListByStatus returns every record in the given lifecycle state, oldest
// first so processing order is stable across runs.
func (r *Repository) ListByStatus(ctx context.Context, status domain.Status) ([]domain.RawBet, error) {
	query := r.builder.
		Select(betColumns).
		From("raw_bets").
		Where(sq.Eq{"status": status}).
		OrderBy("created_at", "id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s bets: %w", status, err)
	}
	defer rows.Close()

	var bets []domain.RawBet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return bets, nil
}

// Get fetches one record by id.
func (r *Repository) Get(ctx context.Context, id string) (domain.RawBet, error) {
	query := r.builder.
		Select(betColumns).
		From("raw_bets").
		Where(sq.Eq{"id": id})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return domain.RawBet{}, fmt.Errorf("build query: %w", err)
	}

	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	bet, err := scanBet(row)
	if err != nil {
		return domain.RawBet{}, fmt.Errorf("get bet %s: %w", id, err)
	}
	return bet, nil
}

// Transition performs a guarded status move. Zero rows affected means the
// record was not in the from state — already moved, already terminal, or
// unknown — and is reported as ok=false rather than an error.
func (r *Repository) Transition(ctx context.Context, id string, from, to domain.Status) (bool, error) {
	if !from.CanTransition(to) {
		return false, fmt.Errorf("illegal transition %s -> %s", from, to)
	}

	update := r.builder.
		Update("raw_bets").
		Set("status", to).
		Where(sq.Eq{"id": id, "status": from})

	sqlStr, args, err := update.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("transition bet %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

// UpdateCorrected overwrites reviewer-corrected fields and releases the
// record from review in one guarded statement.
func (r *Repository) UpdateCorrected(ctx context.Context, bet domain.RawBet) (bool, error) {
	update := r.builder.
		Update("raw_bets").
		Set("player_ref", nullInt(bet.PlayerID)).
		Set("bet_type", nullStr(string(bet.BetType))).
		Set("side", nullStr(string(bet.Side))).
		Set("line_value", nullFloat(bet.Line)).
		Set("odds", nullIntVal(bet.Odds)).
		Set("score", bet.Score).
		Set("game_date", nullDate(bet)).
		Set("status", domain.StatusReady).
		Set("reasons", pq.Array([]string{})).
		Where(sq.Eq{"id": bet.ID, "status": domain.StatusNeedsReview})

	sqlStr, args, err := update.ToSql()
	if err != nil {
		return false, fmt.Errorf("build update: %w", err)
	}

	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, fmt.Errorf("apply correction %s: %w", bet.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBet(row rowScanner) (domain.RawBet, error) {
	var (
		bet       domain.RawBet
		playerRef sql.NullInt64
		betType   sql.NullString
		side      sql.NullString
		line      sql.NullFloat64
		odds      sql.NullInt64
		gameDate  sql.NullTime
		reasons   pq.StringArray
		status    string
	)

	err := row.Scan(&bet.ID, &bet.ImageSource, &bet.RawSpan, &bet.RawPlayer,
		&playerRef, &betType, &side, &line, &odds, &bet.Score, &gameDate,
		&status, &reasons, &bet.CreatedAt)
	if err != nil {
		return domain.RawBet{}, fmt.Errorf("scan bet: %w", err)
	}

	bet.PlayerID = playerRef.Int64
	bet.BetType = domain.StatCategory(betType.String)
	bet.Side = domain.Side(side.String)
	bet.Line = line.Float64
	bet.Odds = int(odds.Int64)
	if gameDate.Valid {
		bet.GameDate = gameDate.Time
	}
	bet.Status = domain.Status(status)
	bet.Reasons = reasons
	return bet, nil
}

func nullInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullIntVal(v int) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullStr(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullFloat(v float64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nullDate(bet domain.RawBet) any {
	if bet.GameDate.IsZero() {
		return nil
	}
	return bet.GameDate
}
