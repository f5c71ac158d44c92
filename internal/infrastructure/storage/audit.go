package storage

import (
	"context"
	"fmt"

	"PropScanner/internal/ports"
)

var _ ports.AuditStore = (*Repository)(nil)

// Read-only integrity checks run around resolution passes. Each query
// returns offending identifiers; findings are logged by the caller, never
// fatal — the flag mechanism, not the audit, is the quality gate.
var auditChecks = []struct {
	label string
	query string
}{
	{
		"resolved bets missing a result",
		`SELECT id FROM raw_bets
		 WHERE status = 'resolved'
		 AND id NOT IN (SELECT raw_bet_id FROM bet_results)`,
	},
	{
		"results for non-resolved bets",
		`SELECT br.raw_bet_id FROM bet_results br
		 JOIN raw_bets rb ON rb.id = br.raw_bet_id
		 WHERE rb.status <> 'resolved'`,
	},
	{
		"player/date pairs cached as both played and unplayed",
		`SELECT gs.player_ref, gs.game_date FROM game_stats gs
		 JOIN unplayed_bets ub ON ub.player_ref = gs.player_ref AND ub.game_date = gs.game_date`,
	},
	{
		"ready bets referencing unknown players",
		`SELECT rb.id FROM raw_bets rb
		 LEFT JOIN players p ON p.ref_id = rb.player_ref
		 WHERE rb.status = 'ready' AND p.ref_id IS NULL`,
	},
	{
		"duplicate bets for the same player, date, type, and score",
		`SELECT player_ref, game_date, bet_type, score, COUNT(*) FROM raw_bets
		 WHERE status IN ('ready', 'resolved')
		 GROUP BY player_ref, game_date, bet_type, score
		 HAVING COUNT(*) > 1`,
	},
	{
		"ready bets with a game date in the future",
		`SELECT id FROM raw_bets WHERE status = 'ready' AND game_date > CURRENT_DATE`,
	},
	{
		"orphaned results",
		`SELECT br.id FROM bet_results br
		 LEFT JOIN raw_bets rb ON rb.id = br.raw_bet_id
		 WHERE rb.id IS NULL`,
	},
}

// IntegrityIssues runs every audit query and describes any rows found.
func (r *Repository) IntegrityIssues(ctx context.Context) ([]string, error) {
	var issues []string

	for _, check := range auditChecks {
		rows, err := r.db.QueryContext(ctx, check.query)
		if err != nil {
			return nil, fmt.Errorf("audit %q: %w", check.label, err)
		}

		count := 0
		for rows.Next() {
			count++
		}
		if err := rows.Err(); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("audit %q rows: %w", check.label, err)
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("audit %q close: %w", check.label, err)
		}

		if count > 0 {
			issues = append(issues, fmt.Sprintf("%s: %d row(s)", check.label, count))
		}
	}

	return issues, nil
}
