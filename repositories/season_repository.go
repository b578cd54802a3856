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
	ErrSeasonNotFound     = errors.New("season not found")
	ErrSeasonNameConflict = errors.New("season name is already taken")
)

type SeasonRepository interface {
	Create(ctx context.Context, season *models.Season) error
	GetByID(ctx context.Context, id int) (*models.Season, error)
	List(ctx context.Context) ([]*models.Season, error)
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) Create(ctx context.Context, season *models.Season) error {
	query := `INSERT INTO seasons (name) VALUES ($1) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, season.Name).Scan(&season.ID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrSeasonNameConflict
		}
		return fmt.Errorf("failed to create season: %w", err)
	}
	return nil
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.Season, error) {
	var s models.Season
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM seasons WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to get season %d: %w", id, err)
	}
	return &s, nil
}

func (r *postgresSeasonRepository) List(ctx context.Context) ([]*models.Season, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM seasons ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	defer rows.Close()

	seasons := make([]*models.Season, 0)
	for rows.Next() {
		var s models.Season
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan season row: %w", err)
		}
		seasons = append(seasons, &s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return seasons, nil
}
