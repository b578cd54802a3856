package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bowlhaus/strafenkatalog/models"
)

// SummaryRepository reads the aggregate SQL views. The views join games,
// game players, player penalties and the rule table; they are never written
// to and always reflect the latest committed state.
type SummaryRepository interface {
	SumPerPlayer(ctx context.Context, seasonID int) ([]*models.SumPerPlayer, error)
	SumPerTeam(ctx context.Context, seasonID int) ([]*models.SumPerTeam, error)
	SumPerGame(ctx context.Context, seasonID int) ([]*models.SumPerGame, error)
	ResultOfGame(ctx context.Context, gameID int) (*models.ResultOfGame, error)
	SumPerPlayerByGame(ctx context.Context, gameID int) ([]*models.SumPerPlayer, error)
}

type postgresSummaryRepository struct {
	db *sql.DB
}

func NewPostgresSummaryRepository(db *sql.DB) SummaryRepository {
	return &postgresSummaryRepository{db: db}
}

// "full" is a reserved word in postgres and must stay quoted.
const sumPerPlayerSelect = `
	SELECT game_id, date, team_name, player_id, player_name, penalty_sum,
	       "full", clear, errors, played
	FROM sum_per_player`

func (r *postgresSummaryRepository) scanSumPerPlayer(rows *sql.Rows) ([]*models.SumPerPlayer, error) {
	defer rows.Close()

	sums := make([]*models.SumPerPlayer, 0)
	for rows.Next() {
		var s models.SumPerPlayer
		err := rows.Scan(
			&s.GameID, &s.Date, &s.TeamName, &s.PlayerID, &s.PlayerName,
			&s.PenaltySum, &s.Full, &s.Clear, &s.Errors, &s.Played,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player sum row: %w", err)
		}
		sums = append(sums, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}

func (r *postgresSummaryRepository) SumPerPlayer(ctx context.Context, seasonID int) ([]*models.SumPerPlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		sumPerPlayerSelect+` WHERE season_id = $1 ORDER BY date ASC, player_name ASC`, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sum_per_player: %w", err)
	}
	return r.scanSumPerPlayer(rows)
}

func (r *postgresSummaryRepository) SumPerPlayerByGame(ctx context.Context, gameID int) ([]*models.SumPerPlayer, error) {
	rows, err := r.db.QueryContext(ctx,
		sumPerPlayerSelect+` WHERE game_id = $1 ORDER BY player_name ASC`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sum_per_player for game %d: %w", gameID, err)
	}
	return r.scanSumPerPlayer(rows)
}

func (r *postgresSummaryRepository) SumPerTeam(ctx context.Context, seasonID int) ([]*models.SumPerTeam, error) {
	query := `
		SELECT team_name, penalty_sum
		FROM sum_per_team
		WHERE season_id = $1
		ORDER BY team_name ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sum_per_team: %w", err)
	}
	defer rows.Close()

	sums := make([]*models.SumPerTeam, 0)
	for rows.Next() {
		var s models.SumPerTeam
		if err := rows.Scan(&s.TeamName, &s.PenaltySum); err != nil {
			return nil, fmt.Errorf("failed to scan team sum row: %w", err)
		}
		sums = append(sums, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}

func (r *postgresSummaryRepository) SumPerGame(ctx context.Context, seasonID int) ([]*models.SumPerGame, error) {
	query := `
		SELECT game_id, date, team_name, penalty_sum
		FROM sum_per_game
		WHERE season_id = $1
		ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sum_per_game: %w", err)
	}
	defer rows.Close()

	sums := make([]*models.SumPerGame, 0)
	for rows.Next() {
		var s models.SumPerGame
		if err := rows.Scan(&s.GameID, &s.Date, &s.TeamName, &s.PenaltySum); err != nil {
			return nil, fmt.Errorf("failed to scan game sum row: %w", err)
		}
		sums = append(sums, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return sums, nil
}

func (r *postgresSummaryRepository) ResultOfGame(ctx context.Context, gameID int) (*models.ResultOfGame, error) {
	query := `
		SELECT game_id, team_name, opponent, sum_points, "full", clear, errors
		FROM result_of_game
		WHERE game_id = $1`

	var res models.ResultOfGame
	err := r.db.QueryRowContext(ctx, query, gameID).Scan(
		&res.GameID, &res.TeamName, &res.Opponent, &res.SumPoints,
		&res.Full, &res.Clear, &res.Errors,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to query result_of_game for game %d: %w", gameID, err)
	}
	return &res, nil
}
