package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

var _ ports.ResultStore = (*Repository)(nil)

// InsertResult records a settled outcome. The unique raw_bet_id constraint
// makes a second result for the same bet a conflict, not a duplicate.
func (r *Repository) InsertResult(ctx context.Context, result domain.BetResult) error {
	insert := r.builder.
		Insert("bet_results").
		Columns("raw_bet_id", "player_ref", "bet_type", "outcome", "delta",
			"bucket", "stat_value", "line_value", "side", "odds").
		Values(result.RawBetID, result.PlayerRefID, result.BetType, result.Outcome,
			result.Delta, result.Bucket, result.Stat, result.Line, result.Side, result.Odds).
		Suffix("ON CONFLICT (raw_bet_id) DO NOTHING")

	sqlStr, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("insert result for %s: %w", result.RawBetID, err)
	}
	return nil
}

// UnuploadedResults returns every result not yet consumed by aggregation,
// oldest first for stable batch composition.
func (r *Repository) UnuploadedResults(ctx context.Context) ([]domain.BetResult, error) {
	query := r.builder.
		Select("id", "raw_bet_id", "player_ref", "bet_type", "outcome", "delta",
			"bucket", "stat_value", "line_value", "side", "odds", "is_uploaded", "resolved_at").
		From("bet_results").
		Where(sq.Eq{"is_uploaded": false}).
		OrderBy("id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list unuploaded results: %w", err)
	}
	defer rows.Close()

	var results []domain.BetResult
	for rows.Next() {
		var res domain.BetResult
		err := rows.Scan(&res.ID, &res.RawBetID, &res.PlayerRefID, &res.BetType,
			&res.Outcome, &res.Delta, &res.Bucket, &res.Stat, &res.Line,
			&res.Side, &res.Odds, &res.Uploaded, &res.ResolvedAt)
		if err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return results, nil
}

// ConsumeBatch folds the group deltas into the rollup table and marks the
// source results consumed in one transaction. The mark is guarded on
// is_uploaded = FALSE and must cover the whole batch; anything less means
// another consumer already folded some of these rows, and the transaction
// rolls back so the additive upsert never double-counts a result.
func (r *Repository) ConsumeBatch(ctx context.Context, ids []int64, groups []domain.AggregatedGroup) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin consume: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `INSERT INTO aggregated_results (bet_type, bucket, return_sum, volume, updated_to)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (bet_type, bucket) DO UPDATE SET
                   return_sum = aggregated_results.return_sum + EXCLUDED.return_sum,
                   volume     = aggregated_results.volume + EXCLUDED.volume,
                   updated_to = GREATEST(aggregated_results.updated_to, EXCLUDED.updated_to),
                   updated_at = NOW()`

	for _, group := range groups {
		_, err := tx.ExecContext(ctx, upsert, group.BetType, group.Bucket,
			group.Return, group.Volume, group.UpdatedTo.Format(domain.DateLayout))
		if err != nil {
			return fmt.Errorf("upsert aggregate %s/%s: %w", group.BetType, group.Bucket, err)
		}
	}

	mark := `UPDATE bet_results SET is_uploaded = TRUE WHERE id = ANY($1) AND is_uploaded = FALSE`
	res, err := tx.ExecContext(ctx, mark, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("mark consumed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark consumed: %w", err)
	}
	if affected != int64(len(ids)) {
		return fmt.Errorf("consume batch: marked %d of %d results, batch already partially consumed", affected, len(ids))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit consume: %w", err)
	}
	return nil
}
