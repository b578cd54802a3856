package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/bowlhaus/strafenkatalog/repositories"
)

var ErrGameDateRequired = errors.New("game date is required")

type CreateGameInput struct {
	TeamID   int       `json:"team_id"`
	Date     time.Time `json:"date"`
	Opponent string    `json:"opponent"`
	Gameday  int       `json:"gameday"`
	SeasonID int       `json:"season_id"`
}

type GameService interface {
	CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error)
	GetGameByID(ctx context.Context, id int) (*models.Game, error)
	ListGamesBySeason(ctx context.Context, seasonID int, teamID *int) ([]*models.Game, error)
	CreateSeason(ctx context.Context, name string) (*models.Season, error)
	ListSeasons(ctx context.Context) ([]*models.Season, error)
}

type gameService struct {
	gameRepo   repositories.GameRepository
	seasonRepo repositories.SeasonRepository
}

func NewGameService(gameRepo repositories.GameRepository, seasonRepo repositories.SeasonRepository) GameService {
	return &gameService{gameRepo: gameRepo, seasonRepo: seasonRepo}
}

func (s *gameService) CreateGame(ctx context.Context, input CreateGameInput) (*models.Game, error) {
	if strings.TrimSpace(input.Opponent) == "" {
		return nil, ErrGameOpponentMissing
	}
	if input.Date.IsZero() {
		return nil, ErrGameDateRequired
	}

	game := &models.Game{
		TeamID:   input.TeamID,
		Date:     input.Date,
		Opponent: strings.TrimSpace(input.Opponent),
		Gameday:  input.Gameday,
		SeasonID: input.SeasonID,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameTeamInvalid):
			return nil, ErrTeamNotFound
		case errors.Is(err, repositories.ErrGameSeasonInvalid):
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

func (s *gameService) GetGameByID(ctx context.Context, id int) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

func (s *gameService) ListGamesBySeason(ctx context.Context, seasonID int, teamID *int) ([]*models.Game, error) {
	games, err := s.gameRepo.ListBySeason(ctx, seasonID, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return games, nil
}

func (s *gameService) CreateSeason(ctx context.Context, name string) (*models.Season, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrSeasonNameRequired
	}
	season := &models.Season{Name: name}
	if err := s.seasonRepo.Create(ctx, season); err != nil {
		if errors.Is(err, repositories.ErrSeasonNameConflict) {
			return nil, ErrSeasonNameConflict
		}
		return nil, fmt.Errorf("failed to create season: %w", err)
	}
	return season, nil
}

func (s *gameService) ListSeasons(ctx context.Context) ([]*models.Season, error) {
	seasons, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasons, nil
}
