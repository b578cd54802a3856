package repositories

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGamePlayerRepo(t *testing.T) (GamePlayerRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresGamePlayerRepository(db), mock
}

func TestGamePlayerCreateAssignsID(t *testing.T) {
	repo, mock := newGamePlayerRepo(t)

	mock.ExpectQuery(`INSERT INTO game_players \(game_id, player_id, paid, sum_points, "full", clear, errors, played\)`).
		WithArgs(3, 5, 0.0, 0, 0, 0, 0, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	gp := &models.GamePlayer{GameID: 3, PlayerID: 5, Played: true}
	require.NoError(t, repo.Create(context.Background(), nil, gp))
	assert.Equal(t, 42, gp.ID)
}

func TestGamePlayerCreateConstraintMapping(t *testing.T) {
	tests := []struct {
		name    string
		pqErr   *pq.Error
		wantErr error
	}{
		{
			name:    "duplicate player in game",
			pqErr:   &pq.Error{Code: "23505", Constraint: "game_players_game_id_player_id_key"},
			wantErr: ErrGamePlayerConflict,
		},
		{
			name:    "unknown game",
			pqErr:   &pq.Error{Code: "23503", Constraint: "game_players_game_id_fkey"},
			wantErr: ErrGamePlayerGameInvalid,
		},
		{
			name:    "unknown player",
			pqErr:   &pq.Error{Code: "23503", Constraint: "game_players_player_id_fkey"},
			wantErr: ErrGamePlayerPlayerInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newGamePlayerRepo(t)
			mock.ExpectQuery(`INSERT INTO game_players`).WillReturnError(tt.pqErr)

			err := repo.Create(context.Background(), nil, &models.GamePlayer{GameID: 3, PlayerID: 5})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGamePlayerGetByIDNotFound(t *testing.T) {
	repo, mock := newGamePlayerRepo(t)

	mock.ExpectQuery(`FROM game_players WHERE id`).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "game_id", "player_id", "paid", "sum_points", "full", "clear", "errors", "played",
		}))

	_, err := repo.GetByID(context.Background(), nil, 404)
	assert.ErrorIs(t, err, ErrGamePlayerNotFound)
}

func TestGamePlayerUpdateMissingRow(t *testing.T) {
	repo, mock := newGamePlayerRepo(t)

	mock.ExpectExec(`UPDATE game_players SET\s+paid = \$1, sum_points = \$2, "full" = \$3`).
		WithArgs(0.0, 0, 280, 110, 1, true, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	gp := &models.GamePlayer{ID: 99, Full: 280, Clear: 110, Errors: 1, Played: true}
	err := repo.Update(context.Background(), nil, gp)
	assert.ErrorIs(t, err, ErrGamePlayerNotFound)
}

func TestPlayerPenaltyBatchCreateRequiresRules(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewPostgresPlayerPenaltyRepository(db)

	err = repo.BatchCreate(context.Background(), nil, 42, nil)
	assert.ErrorIs(t, err, ErrPlayerPenaltyNoRules)
	assert.NoError(t, mock.ExpectationsWereMet())
}
