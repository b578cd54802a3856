package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bowlhaus/strafenkatalog/live"
	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/bowlhaus/strafenkatalog/repositories"
	"github.com/bowlhaus/strafenkatalog/scoring"
)

type sessionState int

const (
	sessionEditing sessionState = iota
	sessionCommitted
	sessionCancelled
)

// EditSession is one in-memory editing pass over a game player record and
// its penalty rows. It is created by BeginEdit and ends in exactly one of
// Commit or Cancel; afterwards every mutation fails with ErrSessionClosed
// and a new session must be started by reloading.
//
// The session owns working copies; nothing touches the database until
// Commit. A failed commit leaves the session open so the caller can retry
// or cancel.
type EditSession struct {
	gamePlayer models.GamePlayer
	original   models.GamePlayer

	penalties      []*models.PlayerPenalty
	originalValues map[int]int // player penalty row id -> value at load

	parentRow *models.PlayerPenalty // the row mirroring the errors count

	calc  *scoring.PenaltyCalculator
	state sessionState
}

func (es *EditSession) ensureOpen() error {
	if es.state != sessionEditing {
		return ErrSessionClosed
	}
	return nil
}

func (es *EditSession) GamePlayerID() int { return es.gamePlayer.ID }
func (es *EditSession) GameID() int       { return es.gamePlayer.GameID }

// GamePlayer returns a copy of the working record.
func (es *EditSession) GamePlayer() models.GamePlayer { return es.gamePlayer }

// Penalties returns the working penalty rows. Callers must not mutate them
// directly; edits go through SetPenaltyValue and SetErrors.
func (es *EditSession) Penalties() []*models.PlayerPenalty { return es.penalties }

// Total is the displayed pin total, full + clear.
func (es *EditSession) Total() int { return es.gamePlayer.Total() }

// PenaltyTotal prices the working penalty values. Stale rows whose rule left
// the active set are skipped; this is the display fallback, not the strict
// calculation.
func (es *EditSession) PenaltyTotal() float64 {
	return es.calc.DisplayTotal(es.values())
}

func (es *EditSession) values() map[int]int {
	values := make(map[int]int, len(es.penalties))
	for _, pp := range es.penalties {
		values[pp.PenaltyID] = pp.Value
	}
	return values
}

func (es *EditSession) SetFull(full int) error {
	if err := es.ensureOpen(); err != nil {
		return err
	}
	if full < 0 {
		return ErrNegativeCount
	}
	es.gamePlayer.Full = full
	return nil
}

func (es *EditSession) SetClear(clear int) error {
	if err := es.ensureOpen(); err != nil {
		return err
	}
	if clear < 0 {
		return ErrNegativeCount
	}
	es.gamePlayer.Clear = clear
	return nil
}

// SetErrors updates the errors count and writes through to the penalty row
// whose rule mirrors it, so the scalar and its shadow row cannot diverge at
// commit time.
func (es *EditSession) SetErrors(errCount int) error {
	if err := es.ensureOpen(); err != nil {
		return err
	}
	if errCount < 0 {
		return ErrNegativeCount
	}
	es.gamePlayer.Errors = errCount
	if es.parentRow != nil {
		es.parentRow.Value = errCount
	}
	return nil
}

func (es *EditSession) SetPaid(paid float64) error {
	if err := es.ensureOpen(); err != nil {
		return err
	}
	es.gamePlayer.Paid = paid
	return nil
}

func (es *EditSession) SetPlayed(played bool) error {
	if err := es.ensureOpen(); err != nil {
		return err
	}
	es.gamePlayer.Played = played
	return nil
}

func (es *EditSession) SetSumPoints(points int) error {
	if err := es.ensureOpen(); err != nil {
		return err
	}
	es.gamePlayer.SumPoints = points
	return nil
}

// SetPenaltyValue updates the occurrence count of one rule. Rows whose rule
// mirrors the errors count are not directly editable; change SetErrors
// instead. The parent flag is the only gate, rule ids carry no special
// meaning here.
func (es *EditSession) SetPenaltyValue(ruleID, value int) error {
	if err := es.ensureOpen(); err != nil {
		return err
	}
	if value < 0 {
		return ErrNegativeCount
	}
	for _, pp := range es.penalties {
		if pp.PenaltyID != ruleID {
			continue
		}
		if pp.Penalty != nil && pp.Penalty.GetValueByParent {
			return ErrRuleNotEditable
		}
		pp.Value = value
		return nil
	}
	return fmt.Errorf("rule %d: %w", ruleID, ErrRuleUnknown)
}

type GamePlayerService interface {
	Create(ctx context.Context, input CreateGamePlayerInput) (*models.GamePlayer, error)
	GetWithPenalties(ctx context.Context, id int) (*models.GamePlayer, float64, error)
	ListByGame(ctx context.Context, gameID int) ([]*models.GamePlayer, error)
	BeginEdit(ctx context.Context, id int) (*EditSession, error)
	Commit(ctx context.Context, session *EditSession) error
	Cancel(session *EditSession) error
}

type CreateGamePlayerInput struct {
	GameID   int  `json:"game_id"`
	PlayerID int  `json:"player_id"`
	Played   bool `json:"played"`
}

type gamePlayerService struct {
	db                *sql.DB
	gamePlayerRepo    repositories.GamePlayerRepository
	playerPenaltyRepo repositories.PlayerPenaltyRepository
	penaltyRepo       repositories.PenaltyRepository
	summaryRepo       repositories.SummaryRepository
	hub               *live.Hub
	logger            *slog.Logger
}

func NewGamePlayerService(
	db *sql.DB,
	gamePlayerRepo repositories.GamePlayerRepository,
	playerPenaltyRepo repositories.PlayerPenaltyRepository,
	penaltyRepo repositories.PenaltyRepository,
	summaryRepo repositories.SummaryRepository,
	hub *live.Hub,
	logger *slog.Logger,
) GamePlayerService {
	return &gamePlayerService{
		db:                db,
		gamePlayerRepo:    gamePlayerRepo,
		playerPenaltyRepo: playerPenaltyRepo,
		penaltyRepo:       penaltyRepo,
		summaryRepo:       summaryRepo,
		hub:               hub,
		logger:            logger,
	}
}

func (s *gamePlayerService) withinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Error("rollback failed", slog.Any("error", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Create inserts the game player together with one zero-valued penalty row
// per active rule, in a single transaction: a record never becomes visible
// without its exploded rows.
func (s *gamePlayerService) Create(ctx context.Context, input CreateGamePlayerInput) (*models.GamePlayer, error) {
	gp := &models.GamePlayer{
		GameID:   input.GameID,
		PlayerID: input.PlayerID,
		Played:   input.Played,
	}

	err := s.withinTx(ctx, func(tx *sql.Tx) error {
		if err := s.gamePlayerRepo.Create(ctx, tx, gp); err != nil {
			return err
		}
		rules, err := s.penaltyRepo.ListActive(ctx, tx)
		if err != nil {
			return err
		}
		ruleIDs := make([]int, 0, len(rules))
		for _, rule := range rules {
			ruleIDs = append(ruleIDs, rule.ID)
		}
		return s.playerPenaltyRepo.BatchCreate(ctx, tx, gp.ID, ruleIDs)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrGamePlayerConflict):
			return nil, ErrGamePlayerConflict
		case errors.Is(err, repositories.ErrGamePlayerGameInvalid):
			return nil, ErrGameNotFound
		case errors.Is(err, repositories.ErrGamePlayerPlayerInvalid):
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to create game player: %w", err)
	}

	s.hub.BroadcastToRoom(live.GameRoom(gp.GameID), live.Message{
		Type:    live.EventGamePlayerJoined,
		Payload: gp,
		RoomID:  live.GameRoom(gp.GameID),
	})
	return gp, nil
}

func (s *gamePlayerService) load(ctx context.Context, id int) (*models.GamePlayer, error) {
	gp, err := s.gamePlayerRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGamePlayerNotFound) {
			return nil, ErrGamePlayerNotFound
		}
		return nil, err
	}
	penalties, err := s.playerPenaltyRepo.ListByGamePlayer(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	gp.Penalties = penalties
	return gp, nil
}

// GetWithPenalties returns the record, its penalty rows and the derived
// display total.
func (s *gamePlayerService) GetWithPenalties(ctx context.Context, id int) (*models.GamePlayer, float64, error) {
	gp, err := s.load(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	calc, err := s.activeCalculator(ctx)
	if err != nil {
		return nil, 0, err
	}
	values := make(map[int]int, len(gp.Penalties))
	for _, pp := range gp.Penalties {
		values[pp.PenaltyID] = pp.Value
	}
	return gp, calc.DisplayTotal(values), nil
}

func (s *gamePlayerService) ListByGame(ctx context.Context, gameID int) ([]*models.GamePlayer, error) {
	gamePlayers, err := s.gamePlayerRepo.ListByGame(ctx, nil, gameID)
	if err != nil {
		return nil, err
	}
	return gamePlayers, nil
}

func (s *gamePlayerService) activeCalculator(ctx context.Context) (*scoring.PenaltyCalculator, error) {
	rules, err := s.penaltyRepo.ListActive(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load rule snapshot: %w", err)
	}
	return scoring.NewPenaltyCalculator(rules)
}

// BeginEdit loads the record with its penalty rows (rules joined by the
// loader) and snapshots everything into a new edit session.
func (s *gamePlayerService) BeginEdit(ctx context.Context, id int) (*EditSession, error) {
	gp, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	calc, err := s.activeCalculator(ctx)
	if err != nil {
		return nil, err
	}

	session := &EditSession{
		gamePlayer:     *gp,
		original:       *gp,
		penalties:      make([]*models.PlayerPenalty, 0, len(gp.Penalties)),
		originalValues: make(map[int]int, len(gp.Penalties)),
		calc:           calc,
		state:          sessionEditing,
	}
	for _, pp := range gp.Penalties {
		working := *pp
		session.penalties = append(session.penalties, &working)
		session.originalValues[pp.ID] = pp.Value
		if pp.Penalty != nil && pp.Penalty.GetValueByParent {
			if session.parentRow != nil {
				s.logger.Warn("multiple parent-derived penalty rows",
					slog.Int("game_player_id", id), slog.Int("row_id", pp.ID))
				continue
			}
			session.parentRow = &working
		}
	}
	if session.parentRow == nil {
		s.logger.Warn("no parent-derived penalty row, errors count will not write through",
			slog.Int("game_player_id", id))
	}
	session.gamePlayer.Penalties = nil
	session.original.Penalties = nil
	return session, nil
}

// Commit persists the scalar fields and every changed penalty row inside one
// transaction. On any failure the whole batch rolls back and the session
// stays open with its in-memory edits intact.
func (s *gamePlayerService) Commit(ctx context.Context, session *EditSession) error {
	if err := session.ensureOpen(); err != nil {
		return err
	}

	err := s.withinTx(ctx, func(tx *sql.Tx) error {
		if err := s.gamePlayerRepo.Update(ctx, tx, &session.gamePlayer); err != nil {
			return err
		}
		for _, pp := range session.penalties {
			if pp.Value == session.originalValues[pp.ID] {
				continue
			}
			if err := s.playerPenaltyRepo.UpdateValue(ctx, tx, pp.ID, pp.Value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("game player commit failed",
			slog.Int("game_player_id", session.gamePlayer.ID), slog.Any("error", err))
		return fmt.Errorf("failed to commit game player %d: %w", session.gamePlayer.ID, err)
	}

	session.state = sessionCommitted
	s.logger.Info("game player committed",
		slog.Int("game_player_id", session.gamePlayer.ID),
		slog.Int("game_id", session.gamePlayer.GameID))

	room := live.GameRoom(session.gamePlayer.GameID)
	s.hub.BroadcastToRoom(room, live.Message{
		Type:    live.EventGamePlayerSaved,
		Payload: session.gamePlayer,
		RoomID:  room,
	})
	s.notifySummaryChanged(ctx, session.gamePlayer.GameID)
	return nil
}

// Cancel discards the in-memory edits. No persistence calls are made.
func (s *gamePlayerService) Cancel(session *EditSession) error {
	if err := session.ensureOpen(); err != nil {
		return err
	}
	session.state = sessionCancelled
	return nil
}

// notifySummaryChanged re-queries the game's aggregate rows and pushes them
// to watching clients. Aggregates are never patched in memory; a failed
// refresh only costs the push, the committed data is already durable.
func (s *gamePlayerService) notifySummaryChanged(ctx context.Context, gameID int) {
	sums, err := s.summaryRepo.SumPerPlayerByGame(ctx, gameID)
	if err != nil {
		s.logger.Error("failed to reload game summary after commit",
			slog.Int("game_id", gameID), slog.Any("error", err))
		return
	}
	s.hub.BroadcastToRoom(live.GameRoom(gameID), live.Message{
		Type:    live.EventSummaryUpdated,
		Payload: sums,
		RoomID:  live.GameRoom(gameID),
	})
}
