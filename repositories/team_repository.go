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
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name is already taken")
	ErrRosterEntryInvalid = errors.New("roster entry references an unknown player or team")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	UpdateLogoKey(ctx context.Context, id int, logoKey *string) error
	AddRosterPlayer(ctx context.Context, entry *models.DefaultTeamPlayer) error
	ListRoster(ctx context.Context, teamID int) ([]*models.DefaultTeamPlayer, error)
}

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `INSERT INTO teams (name) VALUES ($1) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, team.Name).Scan(&team.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, id int) (*models.Team, error) {
	query := `SELECT id, name, logo_key FROM teams WHERE id = $1`
	var t models.Team
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.LogoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", id, err)
	}
	return &t, nil
}

func (r *postgresTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, logo_key FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.LogoKey); err != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", err)
		}
		teams = append(teams, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *postgresTeamRepository) UpdateLogoKey(ctx context.Context, id int, logoKey *string) error {
	query := `UPDATE teams SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, id)
	if err != nil {
		return fmt.Errorf("failed to update team logo: %w", err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *postgresTeamRepository) AddRosterPlayer(ctx context.Context, entry *models.DefaultTeamPlayer) error {
	query := `
		INSERT INTO default_team_players (player_id, team_id)
		VALUES ($1, $2)
		RETURNING id`

	err := r.db.QueryRowContext(ctx, query, entry.PlayerID, entry.TeamID).Scan(&entry.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return ErrRosterEntryInvalid
		}
		return fmt.Errorf("failed to add roster player: %w", err)
	}
	return nil
}

func (r *postgresTeamRepository) ListRoster(ctx context.Context, teamID int) ([]*models.DefaultTeamPlayer, error) {
	query := `
		SELECT dtp.id, dtp.player_id, dtp.team_id, p.id, p.name
		FROM default_team_players dtp
		JOIN players p ON dtp.player_id = p.id
		WHERE dtp.team_id = $1
		ORDER BY p.name ASC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster for team %d: %w", teamID, err)
	}
	defer rows.Close()

	roster := make([]*models.DefaultTeamPlayer, 0)
	for rows.Next() {
		var entry models.DefaultTeamPlayer
		var p models.Player
		if err := rows.Scan(&entry.ID, &entry.PlayerID, &entry.TeamID, &p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan roster row: %w", err)
		}
		entry.Player = &p
		roster = append(roster, &entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return roster, nil
}
