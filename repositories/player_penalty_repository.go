package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bowlhaus/strafenkatalog/models"
)

var (
	ErrPlayerPenaltyNotFound   = errors.New("player penalty not found")
	ErrPlayerPenaltyNoRules    = errors.New("no rules to initialize player penalties from")
	ErrPlayerPenaltyRuleAbsent = errors.New("player penalty references an unknown rule")
)

type PlayerPenaltyRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, gamePlayerID int, ruleIDs []int) error
	ListByGamePlayer(ctx context.Context, exec SQLExecutor, gamePlayerID int) ([]*models.PlayerPenalty, error)
	UpdateValue(ctx context.Context, exec SQLExecutor, id, value int) error
}

type postgresPlayerPenaltyRepository struct {
	db *sql.DB
}

func NewPostgresPlayerPenaltyRepository(db *sql.DB) PlayerPenaltyRepository {
	return &postgresPlayerPenaltyRepository{db: db}
}

func (r *postgresPlayerPenaltyRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// BatchCreate inserts a zero-valued row per rule for a freshly created game
// player. Callers run this inside the same transaction as the game player
// insert so a record never exists without its penalty rows.
func (r *postgresPlayerPenaltyRepository) BatchCreate(ctx context.Context, exec SQLExecutor, gamePlayerID int, ruleIDs []int) error {
	if len(ruleIDs) == 0 {
		return ErrPlayerPenaltyNoRules
	}
	executor := r.getExecutor(exec)
	query := `INSERT INTO player_penalties (game_player_id, penalty_id, value) VALUES ($1, $2, 0)`
	for _, ruleID := range ruleIDs {
		if _, err := executor.ExecContext(ctx, query, gamePlayerID, ruleID); err != nil {
			return fmt.Errorf("failed to create player penalty for rule %d: %w", ruleID, err)
		}
	}
	return nil
}

// ListByGamePlayer loads the penalty rows with rule and kind joined in one
// query, so the aggregate comes out of the loader fully navigable.
func (r *postgresPlayerPenaltyRepository) ListByGamePlayer(ctx context.Context, exec SQLExecutor, gamePlayerID int) ([]*models.PlayerPenalty, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT pp.id, pp.game_player_id, pp.penalty_id, pp.value,
		       p.id, p.description, p.kind_id, p.penalty, p.lower_limit, p.upper_limit,
		       p.get_value_by_parent, p.active,
		       k.id, k.description, k.is_range
		FROM player_penalties pp
		JOIN penalties p ON pp.penalty_id = p.id
		JOIN penalty_kinds k ON p.kind_id = k.id
		WHERE pp.game_player_id = $1
		ORDER BY pp.penalty_id ASC`

	rows, err := executor.QueryContext(ctx, query, gamePlayerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list player penalties for game player %d: %w", gamePlayerID, err)
	}
	defer rows.Close()

	penalties := make([]*models.PlayerPenalty, 0)
	for rows.Next() {
		var pp models.PlayerPenalty
		var p models.Penalty
		var k models.PenaltyKind
		err := rows.Scan(
			&pp.ID, &pp.GamePlayerID, &pp.PenaltyID, &pp.Value,
			&p.ID, &p.Description, &p.KindID, &p.Penalty, &p.LowerLimit, &p.UpperLimit,
			&p.GetValueByParent, &p.Active,
			&k.ID, &k.Description, &k.IsRange,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player penalty row: %w", err)
		}
		p.Kind = &k
		pp.Penalty = &p
		penalties = append(penalties, &pp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return penalties, nil
}

func (r *postgresPlayerPenaltyRepository) UpdateValue(ctx context.Context, exec SQLExecutor, id, value int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE player_penalties SET value = $1 WHERE id = $2`
	result, err := executor.ExecContext(ctx, query, value, id)
	if err != nil {
		return fmt.Errorf("failed to update player penalty %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPlayerPenaltyNotFound)
}
