package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bowlhaus/strafenkatalog/models"
)

var (
	ErrPenaltyNotFound     = errors.New("penalty rule not found")
	ErrPenaltyKindNotFound = errors.New("penalty kind not found")
)

// PenaltyRepository serves the rule table. Rules are reference data: the
// service layer reads a consistent snapshot and builds its calculators from
// it; administrative editing is not part of this application.
type PenaltyRepository interface {
	ListActive(ctx context.Context, exec SQLExecutor) ([]*models.Penalty, error)
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Penalty, error)
	ListKinds(ctx context.Context, exec SQLExecutor) ([]*models.PenaltyKind, error)
}

type postgresPenaltyRepository struct {
	db *sql.DB
}

func NewPostgresPenaltyRepository(db *sql.DB) PenaltyRepository {
	return &postgresPenaltyRepository{db: db}
}

func (r *postgresPenaltyRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const penaltySelect = `
	SELECT p.id, p.description, p.kind_id, p.penalty, p.lower_limit, p.upper_limit,
	       p.get_value_by_parent, p.active,
	       k.id, k.description, k.is_range
	FROM penalties p
	JOIN penalty_kinds k ON p.kind_id = k.id`

func (r *postgresPenaltyRepository) scanPenalty(rowScanner interface{ Scan(...interface{}) error }) (*models.Penalty, error) {
	var p models.Penalty
	var k models.PenaltyKind
	err := rowScanner.Scan(
		&p.ID, &p.Description, &p.KindID, &p.Penalty, &p.LowerLimit, &p.UpperLimit,
		&p.GetValueByParent, &p.Active,
		&k.ID, &k.Description, &k.IsRange,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPenaltyNotFound
		}
		return nil, err
	}
	p.Kind = &k
	return &p, nil
}

// ListActive returns the active rules with their kinds joined up front. The
// kind is never back-filled after loading; a rule without a kind does not
// leave this layer.
func (r *postgresPenaltyRepository) ListActive(ctx context.Context, exec SQLExecutor) ([]*models.Penalty, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, penaltySelect+` WHERE p.active ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active penalties: %w", err)
	}
	defer rows.Close()

	penalties := make([]*models.Penalty, 0)
	for rows.Next() {
		p, errScan := r.scanPenalty(rows)
		if errScan != nil {
			return nil, errScan
		}
		penalties = append(penalties, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return penalties, nil
}

func (r *postgresPenaltyRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Penalty, error) {
	executor := r.getExecutor(exec)
	row := executor.QueryRowContext(ctx, penaltySelect+` WHERE p.id = $1`, id)
	return r.scanPenalty(row)
}

func (r *postgresPenaltyRepository) ListKinds(ctx context.Context, exec SQLExecutor) ([]*models.PenaltyKind, error) {
	executor := r.getExecutor(exec)
	rows, err := executor.QueryContext(ctx, `SELECT id, description, is_range FROM penalty_kinds ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list penalty kinds: %w", err)
	}
	defer rows.Close()

	kinds := make([]*models.PenaltyKind, 0)
	for rows.Next() {
		var k models.PenaltyKind
		if err := rows.Scan(&k.ID, &k.Description, &k.IsRange); err != nil {
			return nil, err
		}
		kinds = append(kinds, &k)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return kinds, nil
}
