package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/bowlhaus/strafenkatalog/models"
	"github.com/bowlhaus/strafenkatalog/repositories"
	"golang.org/x/sync/errgroup"
)

// SeasonSummary bundles the three season-wide projections for the overview
// screen.
type SeasonSummary struct {
	PerPlayer []*models.SumPerPlayer `json:"per_player"`
	PerTeam   []*models.SumPerTeam   `json:"per_team"`
	PerGame   []*models.SumPerGame   `json:"per_game"`
}

type SummaryService interface {
	SumPerPlayer(ctx context.Context, seasonID int) ([]*models.SumPerPlayer, error)
	SumPerTeam(ctx context.Context, seasonID int) ([]*models.SumPerTeam, error)
	SumPerGame(ctx context.Context, seasonID int) ([]*models.SumPerGame, error)
	ResultOfGame(ctx context.Context, gameID int) (*models.ResultOfGame, error)
	SeasonOverview(ctx context.Context, seasonID int) (*SeasonSummary, error)
}

type summaryService struct {
	summaryRepo repositories.SummaryRepository
}

func NewSummaryService(summaryRepo repositories.SummaryRepository) SummaryService {
	return &summaryService{summaryRepo: summaryRepo}
}

func (s *summaryService) SumPerPlayer(ctx context.Context, seasonID int) ([]*models.SumPerPlayer, error) {
	return s.summaryRepo.SumPerPlayer(ctx, seasonID)
}

func (s *summaryService) SumPerTeam(ctx context.Context, seasonID int) ([]*models.SumPerTeam, error) {
	return s.summaryRepo.SumPerTeam(ctx, seasonID)
}

func (s *summaryService) SumPerGame(ctx context.Context, seasonID int) ([]*models.SumPerGame, error) {
	return s.summaryRepo.SumPerGame(ctx, seasonID)
}

func (s *summaryService) ResultOfGame(ctx context.Context, gameID int) (*models.ResultOfGame, error) {
	res, err := s.summaryRepo.ResultOfGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return res, nil
}

// SeasonOverview loads the three season projections concurrently. Each view
// query is independent and read-only, so partial ordering does not matter;
// any failure fails the whole overview.
func (s *summaryService) SeasonOverview(ctx context.Context, seasonID int) (*SeasonSummary, error) {
	summary := &SeasonSummary{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		perPlayer, err := s.summaryRepo.SumPerPlayer(gCtx, seasonID)
		if err != nil {
			return fmt.Errorf("per-player sums: %w", err)
		}
		summary.PerPlayer = perPlayer
		return nil
	})
	g.Go(func() error {
		perTeam, err := s.summaryRepo.SumPerTeam(gCtx, seasonID)
		if err != nil {
			return fmt.Errorf("per-team sums: %w", err)
		}
		summary.PerTeam = perTeam
		return nil
	})
	g.Go(func() error {
		perGame, err := s.summaryRepo.SumPerGame(gCtx, seasonID)
		if err != nil {
			return fmt.Errorf("per-game sums: %w", err)
		}
		summary.PerGame = perGame
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load season overview: %w", err)
	}
	return summary, nil
}
