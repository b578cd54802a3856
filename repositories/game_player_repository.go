package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/lib/pq"
)

var (
	ErrGamePlayerNotFound      = errors.New("game player not found")
	ErrGamePlayerConflict      = errors.New("player already recorded for this game")
	ErrGamePlayerGameInvalid   = errors.New("game player references an unknown game")
	ErrGamePlayerPlayerInvalid = errors.New("game player references an unknown player")
)

type GamePlayerRepository interface {
	Create(ctx context.Context, exec SQLExecutor, gp *models.GamePlayer) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.GamePlayer, error)
	ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]*models.GamePlayer, error)
	Update(ctx context.Context, exec SQLExecutor, gp *models.GamePlayer) error
}

type postgresGamePlayerRepository struct {
	db *sql.DB
}

func NewPostgresGamePlayerRepository(db *sql.DB) GamePlayerRepository {
	return &postgresGamePlayerRepository{db: db}
}

func (r *postgresGamePlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGamePlayerRepository) Create(ctx context.Context, exec SQLExecutor, gp *models.GamePlayer) error {
	executor := r.getExecutor(exec)
	// "full" is a reserved word in postgres and must stay quoted.
	query := `
		INSERT INTO game_players (game_id, player_id, paid, sum_points, "full", clear, errors, played)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := executor.QueryRowContext(ctx, query,
		gp.GameID, gp.PlayerID, gp.Paid, gp.SumPoints, gp.Full, gp.Clear, gp.Errors, gp.Played,
	).Scan(&gp.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505": // unique_violation
				if pqErr.Constraint == "game_players_game_id_player_id_key" {
					return ErrGamePlayerConflict
				}
			case "23503": // foreign_key_violation
				switch pqErr.Constraint {
				case "game_players_game_id_fkey":
					return ErrGamePlayerGameInvalid
				case "game_players_player_id_fkey":
					return ErrGamePlayerPlayerInvalid
				}
			}
		}
		return fmt.Errorf("failed to create game player: %w", err)
	}
	return nil
}

func (r *postgresGamePlayerRepository) scanGamePlayer(rowScanner interface{ Scan(...interface{}) error }, gp *models.GamePlayer) error {
	return rowScanner.Scan(
		&gp.ID, &gp.GameID, &gp.PlayerID, &gp.Paid, &gp.SumPoints,
		&gp.Full, &gp.Clear, &gp.Errors, &gp.Played,
	)
}

func (r *postgresGamePlayerRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.GamePlayer, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, game_id, player_id, paid, sum_points, "full", clear, errors, played
		FROM game_players WHERE id = $1`

	gp := &models.GamePlayer{}
	err := r.scanGamePlayer(executor.QueryRowContext(ctx, query, id), gp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGamePlayerNotFound
		}
		return nil, fmt.Errorf("failed to get game player %d: %w", id, err)
	}
	return gp, nil
}

func (r *postgresGamePlayerRepository) ListByGame(ctx context.Context, exec SQLExecutor, gameID int) ([]*models.GamePlayer, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT gp.id, gp.game_id, gp.player_id, gp.paid, gp.sum_points,
		       gp."full", gp.clear, gp.errors, gp.played,
		       p.id, p.name
		FROM game_players gp
		JOIN players p ON gp.player_id = p.id
		WHERE gp.game_id = $1
		ORDER BY p.name ASC`

	rows, err := executor.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game players for game %d: %w", gameID, err)
	}
	defer rows.Close()

	gamePlayers := make([]*models.GamePlayer, 0)
	for rows.Next() {
		var gp models.GamePlayer
		var p models.Player
		err := rows.Scan(
			&gp.ID, &gp.GameID, &gp.PlayerID, &gp.Paid, &gp.SumPoints,
			&gp.Full, &gp.Clear, &gp.Errors, &gp.Played,
			&p.ID, &p.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game player row: %w", err)
		}
		gp.Player = &p
		gamePlayers = append(gamePlayers, &gp)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return gamePlayers, nil
}

// Update writes the scalar fields only. The penalty rows hang off their own
// repository and are written in the same transaction by the service.
func (r *postgresGamePlayerRepository) Update(ctx context.Context, exec SQLExecutor, gp *models.GamePlayer) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE game_players SET
			paid = $1, sum_points = $2, "full" = $3, clear = $4, errors = $5, played = $6
		WHERE id = $7`

	result, err := executor.ExecContext(ctx, query,
		gp.Paid, gp.SumPoints, gp.Full, gp.Clear, gp.Errors, gp.Played, gp.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update game player %d: %w", gp.ID, err)
	}
	return checkAffectedRows(result, ErrGamePlayerNotFound)
}
