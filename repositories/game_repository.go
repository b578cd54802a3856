package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/lib/pq"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameTeamInvalid   = errors.New("game references an unknown team")
	ErrGameSeasonInvalid = errors.New("game references an unknown season")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListBySeason(ctx context.Context, seasonID int, teamID *int) ([]*models.Game, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (team_id, date, opponent, gameday, season_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		game.TeamID, game.Date, game.Opponent, game.Gameday, game.SeasonID,
	).Scan(&game.ID)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "games_team_id_fkey":
				return ErrGameTeamInvalid
			case "games_season_id_fkey":
				return ErrGameSeasonInvalid
			}
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `
		SELECT g.id, g.team_id, g.date, g.opponent, g.gameday, g.season_id,
		       t.id, t.name, t.logo_key
		FROM games g
		JOIN teams t ON g.team_id = t.id
		WHERE g.id = $1`

	var g models.Game
	var t models.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID, &g.TeamID, &g.Date, &g.Opponent, &g.Gameday, &g.SeasonID,
		&t.ID, &t.Name, &t.LogoKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	g.Team = &t
	return &g, nil
}

func (r *postgresGameRepository) ListBySeason(ctx context.Context, seasonID int, teamID *int) ([]*models.Game, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT g.id, g.team_id, g.date, g.opponent, g.gameday, g.season_id,
		       t.id, t.name, t.logo_key
		FROM games g
		JOIN teams t ON g.team_id = t.id
		WHERE g.season_id = $1`)

	args := []interface{}{seasonID}
	if teamID != nil {
		queryBuilder.WriteString(" AND g.team_id = $2")
		args = append(args, *teamID)
	}
	queryBuilder.WriteString(" ORDER BY g.gameday ASC, g.date ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for season %d: %w", seasonID, err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	for rows.Next() {
		var g models.Game
		var t models.Team
		err := rows.Scan(
			&g.ID, &g.TeamID, &g.Date, &g.Opponent, &g.Gameday, &g.SeasonID,
			&t.ID, &t.Name, &t.LogoKey,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", err)
		}
		g.Team = &t
		games = append(games, &g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}
