package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/bowlhaus/strafenkatalog/live"
	"github.com/bowlhaus/strafenkatalog/repositories"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The patterns spell out the full column lists so a statement that would not
// parse against postgres (the "full" column is a reserved word and must stay
// quoted) fails the expectation instead of slipping through the mock.
const (
	gamePlayerSelectPattern    = `SELECT id, game_id, player_id, paid, sum_points, "full", clear, errors, played\s+FROM game_players WHERE id`
	gamePlayerInsertPattern    = `INSERT INTO game_players \(game_id, player_id, paid, sum_points, "full", clear, errors, played\)`
	gamePlayerUpdatePattern    = `UPDATE game_players SET\s+paid = \$1, sum_points = \$2, "full" = \$3, clear = \$4, errors = \$5, played = \$6`
	playerPenaltyListPattern   = `FROM player_penalties pp`
	playerPenaltyInsertPattern = `INSERT INTO player_penalties`
	playerPenaltyUpdatePattern = `UPDATE player_penalties SET value`
	activeRulesPattern         = `WHERE p.active ORDER BY p.id`
	sumPerPlayerPattern        = `SELECT game_id, date, team_name, player_id, player_name, penalty_sum,\s+"full", clear, errors, played\s+FROM sum_per_player`
)

func newTestService(t *testing.T) (GamePlayerService, sqlmock.Sqlmock) {
	svc, mock, _ := newTestServiceWithHub(t)
	return svc, mock
}

func newTestServiceWithHub(t *testing.T) (GamePlayerService, sqlmock.Sqlmock, *live.Hub) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hub := live.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewGamePlayerService(
		db,
		repositories.NewPostgresGamePlayerRepository(db),
		repositories.NewPostgresPlayerPenaltyRepository(db),
		repositories.NewPostgresPenaltyRepository(db),
		repositories.NewPostgresSummaryRepository(db),
		hub,
		logger,
	)
	return svc, mock, hub
}

func penaltyColumns() []string {
	return []string{
		"id", "description", "kind_id", "penalty", "lower_limit", "upper_limit",
		"get_value_by_parent", "active",
		"kind_id", "kind_description", "is_range",
	}
}

// Two active rules: rule 1 mirrors the errors count at 0.5 per error, rule 2
// is a plain 2.0 per occurrence quantity rule.
func activeRuleRows() *sqlmock.Rows {
	return sqlmock.NewRows(penaltyColumns()).
		AddRow(1, "Fehlwurf", 1, 0.5, 0, 0, true, true, 1, "Quantity", false).
		AddRow(2, "Ball in die Gosse", 1, 2.0, 0, 0, false, true, 1, "Quantity", false)
}

// expectEditLoad queues the three reads BeginEdit performs: the record, its
// penalty rows and the active rule snapshot. The record starts with full 300,
// clear 120, errors 2; row 71 mirrors the errors count, row 72 is untouched.
func expectEditLoad(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(gamePlayerSelectPattern).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "game_id", "player_id", "paid", "sum_points", "full", "clear", "errors", "played",
		}).AddRow(7, 3, 5, 0.0, 0, 300, 120, 2, true))

	mock.ExpectQuery(playerPenaltyListPattern).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "game_player_id", "penalty_id", "value",
			"p_id", "p_description", "p_kind_id", "p_penalty", "p_lower", "p_upper",
			"p_get_value_by_parent", "p_active",
			"k_id", "k_description", "k_is_range",
		}).
			AddRow(71, 7, 1, 2, 1, "Fehlwurf", 1, 0.5, 0, 0, true, true, 1, "Quantity", false).
			AddRow(72, 7, 2, 0, 2, "Ball in die Gosse", 1, 2.0, 0, 0, false, true, 1, "Quantity", false))

	mock.ExpectQuery(activeRulesPattern).WillReturnRows(activeRuleRows())
}

func expectSummaryRefresh(mock sqlmock.Sqlmock, gameID int) {
	mock.ExpectQuery(sumPerPlayerPattern).
		WithArgs(gameID).
		WillReturnRows(sqlmock.NewRows([]string{
			"game_id", "date", "team_name", "player_id", "player_name", "penalty_sum",
			"full", "clear", "errors", "played",
		}))
}

func TestCommitWritesScalarsAndChangedRows(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	expectEditLoad(mock)
	session, err := svc.BeginEdit(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, session.SetFull(310))
	require.NoError(t, session.SetErrors(4))
	require.NoError(t, session.SetPenaltyValue(2, 3))

	mock.ExpectBegin()
	mock.ExpectExec(gamePlayerUpdatePattern).
		WithArgs(0.0, 0, 310, 120, 4, true, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(playerPenaltyUpdatePattern).
		WithArgs(4, 71).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(playerPenaltyUpdatePattern).
		WithArgs(3, 72).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectSummaryRefresh(mock, 3)

	require.NoError(t, svc.Commit(ctx, session))

	assert.ErrorIs(t, session.SetFull(1), ErrSessionClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitSkipsUnchangedRows(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	expectEditLoad(mock)
	session, err := svc.BeginEdit(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, session.SetClear(130))

	mock.ExpectBegin()
	mock.ExpectExec(gamePlayerUpdatePattern).
		WithArgs(0.0, 0, 300, 130, 2, true, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectSummaryRefresh(mock, 3)

	require.NoError(t, svc.Commit(ctx, session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitRollsBackAndStaysRetryable(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	expectEditLoad(mock)
	session, err := svc.BeginEdit(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, session.SetErrors(4))
	require.NoError(t, session.SetPenaltyValue(2, 3))

	mock.ExpectBegin()
	mock.ExpectExec(gamePlayerUpdatePattern).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(playerPenaltyUpdatePattern).
		WithArgs(4, 71).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(playerPenaltyUpdatePattern).
		WithArgs(3, 72).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = svc.Commit(ctx, session)
	require.Error(t, err)

	// The session survives a failed commit, edits intact.
	require.NoError(t, session.SetPaid(5.0))

	mock.ExpectBegin()
	mock.ExpectExec(gamePlayerUpdatePattern).
		WithArgs(5.0, 0, 300, 120, 4, true, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(playerPenaltyUpdatePattern).
		WithArgs(4, 71).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(playerPenaltyUpdatePattern).
		WithArgs(3, 72).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectSummaryRefresh(mock, 3)

	require.NoError(t, svc.Commit(ctx, session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetErrorsWritesThroughToMirrorRow(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	expectEditLoad(mock)
	session, err := svc.BeginEdit(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, session.SetErrors(5))

	var mirror, plain int
	for _, pp := range session.Penalties() {
		switch pp.ID {
		case 71:
			mirror = pp.Value
		case 72:
			plain = pp.Value
		}
	}
	assert.Equal(t, 5, mirror)
	assert.Equal(t, 0, plain)
	assert.Equal(t, 5, session.GamePlayer().Errors)
}

func TestSetPenaltyValueGuards(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	expectEditLoad(mock)
	session, err := svc.BeginEdit(ctx, 7)
	require.NoError(t, err)

	assert.ErrorIs(t, session.SetPenaltyValue(1, 9), ErrRuleNotEditable)
	assert.ErrorIs(t, session.SetPenaltyValue(99, 1), ErrRuleUnknown)
	assert.ErrorIs(t, session.SetPenaltyValue(2, -1), ErrNegativeCount)
	assert.ErrorIs(t, session.SetErrors(-1), ErrNegativeCount)
	assert.ErrorIs(t, session.SetFull(-1), ErrNegativeCount)
}

func TestPenaltyTotalPricesWorkingValues(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	expectEditLoad(mock)
	session, err := svc.BeginEdit(ctx, 7)
	require.NoError(t, err)

	// errors 2 at 0.5 each, loaded from the record
	assert.InDelta(t, 1.0, session.PenaltyTotal(), 1e-9)

	require.NoError(t, session.SetErrors(4))
	require.NoError(t, session.SetPenaltyValue(2, 3))
	// 4*0.5 + 3*2.0
	assert.InDelta(t, 8.0, session.PenaltyTotal(), 1e-9)
	assert.Equal(t, 420, session.Total())
}

func TestCancelMakesNoDatabaseCalls(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	expectEditLoad(mock)
	session, err := svc.BeginEdit(ctx, 7)
	require.NoError(t, err)

	require.NoError(t, session.SetFull(999))
	require.NoError(t, svc.Cancel(session))

	assert.ErrorIs(t, svc.Commit(ctx, session), ErrSessionClosed)
	assert.ErrorIs(t, svc.Cancel(session), ErrSessionClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateExplodesRuleRowsInOneTransaction(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(gamePlayerInsertPattern).
		WithArgs(3, 5, 0.0, 0, 0, 0, 0, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(activeRulesPattern).WillReturnRows(activeRuleRows())
	mock.ExpectExec(playerPenaltyInsertPattern).
		WithArgs(42, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(playerPenaltyInsertPattern).
		WithArgs(42, 2).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	gp, err := svc.Create(ctx, CreateGamePlayerInput{GameID: 3, PlayerID: 5, Played: true})
	require.NoError(t, err)
	assert.Equal(t, 42, gp.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateMapsToConflict(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(gamePlayerInsertPattern).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "game_players_game_id_player_id_key"})
	mock.ExpectRollback()

	_, err := svc.Create(ctx, CreateGamePlayerInput{GameID: 3, PlayerID: 5})
	assert.ErrorIs(t, err, ErrGamePlayerConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// waitForRoom broadcasts marker messages until the hub has the client's room
// registered, then drains the markers it queued.
func waitForRoom(t *testing.T, hub *live.Hub, client *live.Client, room string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.BroadcastToRoom(room, live.Message{Type: "sync"})
		select {
		case <-client.Send:
			for {
				select {
				case <-client.Send:
				default:
					return
				}
			}
		default:
			time.Sleep(time.Millisecond)
		}
	}
	t.Fatal("hub did not register the room in time")
}

func readRoomEvent(t *testing.T, client *live.Client) live.Message {
	t.Helper()
	select {
	case raw := <-client.Send:
		var msg live.Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no broadcast received")
		return live.Message{}
	}
}

func TestCommitBroadcastsSaveAndSummaryToGameRoom(t *testing.T) {
	svc, mock, hub := newTestServiceWithHub(t)
	go hub.Run()
	ctx := context.Background()

	room := live.GameRoom(3)
	client := &live.Client{Hub: hub, Send: make(chan []byte, 16), Room: room}
	hub.Register <- client
	waitForRoom(t, hub, client, room)

	expectEditLoad(mock)
	session, err := svc.BeginEdit(ctx, 7)
	require.NoError(t, err)
	require.NoError(t, session.SetErrors(4))

	mock.ExpectBegin()
	mock.ExpectExec(gamePlayerUpdatePattern).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(playerPenaltyUpdatePattern).
		WithArgs(4, 71).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	expectSummaryRefresh(mock, 3)

	require.NoError(t, svc.Commit(ctx, session))

	saved := readRoomEvent(t, client)
	assert.Equal(t, live.EventGamePlayerSaved, saved.Type)
	assert.Equal(t, room, saved.RoomID)

	summary := readRoomEvent(t, client)
	assert.Equal(t, live.EventSummaryUpdated, summary.Type)
}

func TestBeginEditUnknownRecord(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	mock.ExpectQuery(gamePlayerSelectPattern).
		WithArgs(404).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "game_id", "player_id", "paid", "sum_points", "full", "clear", "errors", "played",
		}))

	_, err := svc.BeginEdit(ctx, 404)
	assert.ErrorIs(t, err, ErrGamePlayerNotFound)
}
