package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"PropScanner/internal/domain"
	"PropScanner/internal/ports"
)

var _ ports.PlayerStore = (*Repository)(nil)

// SyncRoster reconciles the players table with the provider's current
// roster: unseen players are inserted, players missing from the feed are
// marked inactive, returning players are reactivated.
func (r *Repository) SyncRoster(ctx context.Context, roster []domain.Player) (int, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	upsert := `INSERT INTO players (ref_id, name, is_active)
               VALUES ($1, $2, TRUE)
               ON CONFLICT (ref_id) DO UPDATE SET name = EXCLUDED.name, is_active = TRUE
               RETURNING (xmax = 0)`

	added := 0
	refIDs := make([]int64, 0, len(roster))
	for _, player := range roster {
		refIDs = append(refIDs, player.RefID)

		var inserted bool
		if err := tx.QueryRowContext(ctx, upsert, player.RefID, player.Name).Scan(&inserted); err != nil {
			return 0, 0, fmt.Errorf("upsert player %s: %w", player.Name, err)
		}
		if inserted {
			added++
		}
	}

	deactivate := `UPDATE players SET is_active = FALSE WHERE is_active AND NOT (ref_id = ANY($1))`
	res, err := tx.ExecContext(ctx, deactivate, pq.Array(refIDs))
	if err != nil {
		return 0, 0, fmt.Errorf("deactivate departed players: %w", err)
	}
	deactivated, err := res.RowsAffected()
	if err != nil {
		return 0, 0, fmt.Errorf("rows affected: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit roster sync: %w", err)
	}
	return added, int(deactivated), nil
}

// ActivePlayers returns the roster slice name resolution matches against.
func (r *Repository) ActivePlayers(ctx context.Context) ([]domain.Player, error) {
	query := r.builder.
		Select("ref_id", "name", "is_active").
		From("players").
		Where(sq.Eq{"is_active": true}).
		OrderBy("name")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list active players: %w", err)
	}
	defer rows.Close()

	var players []domain.Player
	for rows.Next() {
		var p domain.Player
		if err := rows.Scan(&p.RefID, &p.Name, &p.Active); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return players, nil
}

// Aliases returns the full override table, oldest first.
func (r *Repository) Aliases(ctx context.Context) ([]domain.PlayerAlias, error) {
	query := r.builder.
		Select("alias", "ref_id", "source", "added_at").
		From("player_aliases").
		OrderBy("added_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list aliases: %w", err)
	}
	defer rows.Close()

	var aliases []domain.PlayerAlias
	for rows.Next() {
		var a domain.PlayerAlias
		if err := rows.Scan(&a.Alias, &a.RefID, &a.Source, &a.AddedAt); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		aliases = append(aliases, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return aliases, nil
}

// AddAlias appends to the override table; an existing alias is left as is
// so the mapping history stays stable.
func (r *Repository) AddAlias(ctx context.Context, alias domain.PlayerAlias) error {
	insert := `INSERT INTO player_aliases (alias, ref_id, source)
               VALUES ($1, $2, $3)
               ON CONFLICT (alias) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, insert, alias.Alias, alias.RefID, alias.Source); err != nil {
		return fmt.Errorf("add alias %q: %w", alias.Alias, err)
	}
	return nil
}
